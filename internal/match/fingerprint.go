package match

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"

	"golang.org/x/text/unicode/norm"
)

// Domain prefix for assignment fingerprints.
// Version suffix enables future algorithm migration.
const domainAssignment = "sessionmatch/assignment/v1"

// fingerprintPairs computes a content hash over the pair set.
//
// The serialization is canonical: pairs sorted by A identifier, each
// identifier NFC-normalized, fields separated by an unambiguous control
// byte. Identifiers are opaque upstream tokens and may carry non-ASCII;
// NFC normalization keeps byte-equal hashes for codepoint-equivalent
// input.
//
// Format: SHA256(domain + 0x00 + lines), line = NFC(aID) 0x1F NFC(bID) 0x0A
func fingerprintPairs(pairs []Pair) string {
	sorted := make([]Pair, len(pairs))
	copy(sorted, pairs)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].AID < sorted[j].AID
	})

	h := sha256.New()
	h.Write([]byte(domainAssignment))
	h.Write([]byte{0x00}) // domain/data separator
	for _, p := range sorted {
		h.Write([]byte(norm.NFC.String(p.AID)))
		h.Write([]byte{0x1F})
		h.Write([]byte(norm.NFC.String(p.BID)))
		h.Write([]byte{0x0A})
	}
	return hex.EncodeToString(h.Sum(nil))
}
