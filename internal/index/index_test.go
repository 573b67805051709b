package index

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fenwick-labs/sessionmatch/internal/session"
	"github.com/fenwick-labs/sessionmatch/internal/testutil"
)

func ids(sessions []session.Session) []string {
	out := make([]string, len(sessions))
	for i, s := range sessions {
		out[i] = s.Identifier
	}
	return out
}

func TestBuild_Empty(t *testing.T) {
	ix := Build(nil)
	assert.Equal(t, 0, ix.Len())
	assert.Empty(t, ix.Query(testutil.BaseTime, time.Minute))
}

func TestBuild_DoesNotMutateInput(t *testing.T) {
	in := []session.Session{
		testutil.B("b2", testutil.At(10*time.Second)),
		testutil.B("b1"),
	}
	Build(in)

	assert.Equal(t, "b2", in[0].Identifier, "input order preserved")
}

func TestQuery_WindowIsInclusive(t *testing.T) {
	ix := Build([]session.Session{
		testutil.B("before", testutil.At(-61*time.Second)),
		testutil.B("low-edge", testutil.At(-60*time.Second)),
		testutil.B("inside", testutil.At(5*time.Second)),
		testutil.B("high-edge", testutil.At(60*time.Second)),
		testutil.B("after", testutil.At(61*time.Second)),
	})

	got := ix.Query(testutil.BaseTime, time.Minute)
	assert.Equal(t, []string{"low-edge", "inside", "high-edge"}, ids(got))
}

func TestQuery_OrderedByTimeThenIdentifier(t *testing.T) {
	ix := Build([]session.Session{
		testutil.B("z", testutil.At(time.Second)),
		testutil.B("a", testutil.At(time.Second)),
		testutil.B("m"),
	})

	got := ix.Query(testutil.BaseTime, time.Minute)
	assert.Equal(t, []string{"m", "a", "z"}, ids(got))
}

func TestQuery_NoCandidates(t *testing.T) {
	ix := Build([]session.Session{
		testutil.B("far", testutil.At(time.Hour)),
	})

	assert.Empty(t, ix.Query(testutil.BaseTime, time.Minute))
}

func TestQuery_NegativeWindow(t *testing.T) {
	ix := Build([]session.Session{testutil.B("b1")})
	assert.Empty(t, ix.Query(testutil.BaseTime, -time.Second))
}

func TestQuery_ZeroWindowExactOnly(t *testing.T) {
	ix := Build([]session.Session{
		testutil.B("exact"),
		testutil.B("off", testutil.At(time.Microsecond)),
	})

	got := ix.Query(testutil.BaseTime, 0)
	assert.Equal(t, []string{"exact"}, ids(got))
}

func TestQuery_ReturnsCopy(t *testing.T) {
	ix := Build([]session.Session{testutil.B("b1")})

	got := ix.Query(testutil.BaseTime, time.Minute)
	require.Len(t, got, 1)
	got[0].Identifier = "mutated"

	again := ix.Query(testutil.BaseTime, time.Minute)
	assert.Equal(t, "b1", again[0].Identifier)
}
