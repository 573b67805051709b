package category

import (
	"fmt"
	"strings"
)

// maxBreakdownRows caps each dimension breakdown in the text report.
// Long country tails add noise without changing the picture.
const maxBreakdownRows = 8

// RenderText formats the result as a plain-text report.
//
// Output is deterministic for a given Result: map-backed breakdowns are
// ordered by descending count with key tie-breaks. Undefined rates
// render as "n/a".
func RenderText(r Result) string {
	var b strings.Builder

	total := r.Total()
	fmt.Fprintf(&b, "SESSION RECONCILIATION\n")
	fmt.Fprintf(&b, "%-12s %8s %8s\n", "category", "sessions", "share")
	writeCategoryRow(&b, "both", len(r.Both), total)
	writeCategoryRow(&b, "a-only", len(r.AOnly), total)
	writeCategoryRow(&b, "b-only", len(r.BOnly), total)
	fmt.Fprintf(&b, "%-12s %8d\n", "total", total)

	writeProfile(&b, "both", r.Profiles.Both)
	writeProfile(&b, "a-only", r.Profiles.AOnly)
	writeProfile(&b, "b-only", r.Profiles.BOnly)

	if len(r.Daily) > 0 {
		fmt.Fprintf(&b, "\nDAILY\n")
		fmt.Fprintf(&b, "%-12s %8s %8s %8s\n", "day", "both", "a-only", "b-only")
		for _, d := range r.Daily {
			fmt.Fprintf(&b, "%-12s %8d %8d %8d\n",
				d.Day.Format("2006-01-02"), d.Both, d.AOnly, d.BOnly)
		}
	}

	return b.String()
}

func writeCategoryRow(b *strings.Builder, name string, n, total int) {
	if total == 0 {
		fmt.Fprintf(b, "%-12s %8d %8s\n", name, n, "n/a")
		return
	}
	fmt.Fprintf(b, "%-12s %8d %7.1f%%\n", name, n, 100*float64(n)/float64(total))
}

func writeProfile(b *strings.Builder, name string, p Profile) {
	fmt.Fprintf(b, "\nPROFILE %s\n", name)
	if !p.Defined {
		fmt.Fprintf(b, "  (no sessions)\n")
		return
	}
	fmt.Fprintf(b, "  purchase rate:  %.1f%%\n", 100*p.PurchaseRate)
	fmt.Fprintf(b, "  avg engagement: %.1fs\n", p.AvgEngagement.Seconds())
	writeBreakdown(b, "device", p, p.Device)
	writeBreakdown(b, "os", p, p.OS)
	writeBreakdown(b, "country", p, p.Country)
}

func writeBreakdown(b *strings.Builder, dim string, p Profile, dist map[string]int) {
	if len(dist) == 0 {
		return
	}
	fmt.Fprintf(b, "  %s:\n", dim)
	for i, k := range sortedKeys(dist) {
		if i >= maxBreakdownRows {
			break
		}
		fmt.Fprintf(b, "    %-20s %6d %6.1f%%\n", k, dist[k], 100*p.Share(dist, k))
	}
}
