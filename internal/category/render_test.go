package category

import (
	"testing"
	"time"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fenwick-labs/sessionmatch/internal/match"
	"github.com/fenwick-labs/sessionmatch/internal/session"
	"github.com/fenwick-labs/sessionmatch/internal/testutil"
)

func TestRenderText_Golden(t *testing.T) {
	a := []session.Session{
		testutil.A("a1", testutil.Purchases(1, 4999), testutil.Engaged(90*time.Second)),
		testutil.A("a2", testutil.At(10*time.Minute), testutil.Engaged(30*time.Second)),
		testutil.A("a3", testutil.At(24*time.Hour), testutil.Device(session.DeviceMobile), testutil.OS("iOS")),
	}
	b := []session.Session{
		testutil.B("b1", testutil.At(30*time.Second)),
		testutil.B("b2", testutil.At(30*time.Hour)),
	}

	asn, err := match.Match(a, b, match.Options{Window: match.DefaultWindow})
	require.NoError(t, err)
	res := Categorize(a, b, asn)

	g := goldie.New(t,
		goldie.WithFixtureDir("testdata/golden"),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, "report", []byte(RenderText(res)))
}

func TestRenderText_EmptyResult(t *testing.T) {
	out := RenderText(Result{})

	assert.Contains(t, out, "SESSION RECONCILIATION")
	assert.Contains(t, out, "n/a")
	assert.Contains(t, out, "(no sessions)")
	assert.NotContains(t, out, "DAILY")
}

func TestRenderText_Deterministic(t *testing.T) {
	sessions := []session.Session{
		testutil.A("a1"),
		testutil.A("a2", testutil.Device(session.DeviceMobile)),
		testutil.A("a3", testutil.Country("DE")),
	}
	res := Result{AOnly: sessions, Profiles: ProfileSet{AOnly: BuildProfile(sessions)}}

	first := RenderText(res)
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, RenderText(res))
	}
}
