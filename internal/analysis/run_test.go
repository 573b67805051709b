package analysis

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fenwick-labs/sessionmatch/internal/match"
	"github.com/fenwick-labs/sessionmatch/internal/session"
	"github.com/fenwick-labs/sessionmatch/internal/store"
	"github.com/fenwick-labs/sessionmatch/internal/testutil"
)

func seededRunner(t *testing.T, sessions []session.Session) (*Runner, *store.Store) {
	t.Helper()
	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	require.NoError(t, st.WriteSessions(context.Background(), sessions))
	return NewRunner(st), st
}

func defaultOptions() Options {
	return Options{
		Window:     match.DefaultWindow,
		RangeStart: testutil.BaseTime.Add(-24 * time.Hour),
		RangeEnd:   testutil.BaseTime.Add(24 * time.Hour),
	}
}

func TestRun_EndToEnd(t *testing.T) {
	runner, _ := seededRunner(t, []session.Session{
		testutil.A("a1"),
		testutil.A("a2", testutil.At(time.Hour)),
		testutil.B("b1", testutil.At(time.Minute)),
		testutil.B("b2", testutil.At(12*time.Hour)),
	})

	run, err := runner.Run(context.Background(), defaultOptions())
	require.NoError(t, err)

	assert.NotEmpty(t, run.ID)
	assert.Equal(t, "greedy-nearest", run.Strategy)
	assert.Equal(t, 2, run.ACount)
	assert.Equal(t, 2, run.BCount)

	require.Len(t, run.Result.Both, 1)
	assert.Equal(t, "a1", run.Result.Both[0].A.Identifier)
	assert.Len(t, run.Result.AOnly, 1)
	assert.Len(t, run.Result.BOnly, 1)
	assert.NotEmpty(t, run.Assignment.Fingerprint())
}

func TestRun_RangeFiltersInput(t *testing.T) {
	runner, _ := seededRunner(t, []session.Session{
		testutil.A("in-range"),
		testutil.A("out-of-range", testutil.At(72*time.Hour)),
	})

	run, err := runner.Run(context.Background(), defaultOptions())
	require.NoError(t, err)

	assert.Equal(t, 1, run.ACount)
	require.Len(t, run.Result.AOnly, 1)
	assert.Equal(t, "in-range", run.Result.AOnly[0].Identifier)
}

func TestRun_InvalidWindow(t *testing.T) {
	runner, _ := seededRunner(t, []session.Session{testutil.A("a1")})

	opts := defaultOptions()
	opts.Window = 0
	_, err := runner.Run(context.Background(), opts)
	require.Error(t, err)
	assert.True(t, match.IsConfigError(err))
}

func TestRun_EmptyWarehouse(t *testing.T) {
	runner, _ := seededRunner(t, nil)

	run, err := runner.Run(context.Background(), defaultOptions())
	require.NoError(t, err)
	assert.Equal(t, 0, run.Result.Total())
}

func TestRun_ReproducibleFingerprint(t *testing.T) {
	sessions := []session.Session{
		testutil.A("a1"),
		testutil.A("a2", testutil.At(40*time.Second)),
		testutil.B("b1", testutil.At(10*time.Second)),
		testutil.B("b2", testutil.At(50*time.Second)),
	}
	runner, _ := seededRunner(t, sessions)

	first, err := runner.Run(context.Background(), defaultOptions())
	require.NoError(t, err)
	second, err := runner.Run(context.Background(), defaultOptions())
	require.NoError(t, err)

	assert.NotEqual(t, first.ID, second.ID, "run ids are unique")
	assert.Equal(t, first.Assignment.Fingerprint(), second.Assignment.Fingerprint())
	assert.Equal(t, first.Assignment.Pairs(), second.Assignment.Pairs())
}

func TestMaterialize_RoundTrip(t *testing.T) {
	runner, st := seededRunner(t, []session.Session{
		testutil.A("a1"),
		testutil.A("a2", testutil.At(time.Hour)),
		testutil.B("b1", testutil.At(time.Minute)),
	})
	ctx := context.Background()

	run, err := runner.Run(ctx, defaultOptions())
	require.NoError(t, err)

	rec, err := runner.Materialize(ctx, run)
	require.NoError(t, err)
	assert.Equal(t, run.ID, rec.ID)

	stored, err := st.ReadRun(ctx, run.ID)
	require.NoError(t, err)
	assert.Equal(t, run.Assignment.Fingerprint(), stored.Fingerprint)
	assert.Equal(t, 1, stored.BothCount)
	assert.Equal(t, 1, stored.AOnlyCount)
	assert.Equal(t, 0, stored.BOnlyCount)

	rows, err := st.ReadRunCategories(ctx, run.ID)
	require.NoError(t, err)
	// A matched pair materializes one row per side.
	require.Len(t, rows, 3)
	assert.Equal(t, "a1", rows[0].Identifier)
	assert.Equal(t, "both", rows[0].Category)
	assert.Equal(t, "b1", rows[0].MatchedIdentifier)
	assert.Equal(t, "a2", rows[1].Identifier)
	assert.Equal(t, "a-only", rows[1].Category)
	assert.Equal(t, "b1", rows[2].Identifier)
	assert.Equal(t, "a1", rows[2].MatchedIdentifier)
}

func TestSweep_BothCountsNonDecreasing(t *testing.T) {
	runner, _ := seededRunner(t, []session.Session{
		testutil.A("a1"),
		testutil.A("a2", testutil.At(10*time.Minute)),
		testutil.B("b1", testutil.At(2*time.Minute)),
		testutil.B("b2", testutil.At(18*time.Minute)),
	})

	windows := []time.Duration{time.Minute, 2 * time.Minute, 5 * time.Minute, 10 * time.Minute}
	points, err := runner.Sweep(context.Background(), windows, defaultOptions())
	require.NoError(t, err)
	require.Len(t, points, len(windows))

	prev := -1
	for _, p := range points {
		assert.GreaterOrEqual(t, p.Both, prev, "window %s", p.Window)
		prev = p.Both
	}
	assert.Equal(t, 0, points[0].Both)
	assert.Equal(t, 2, points[len(points)-1].Both)
}

func TestSweep_PropagatesInvalidWindow(t *testing.T) {
	runner, _ := seededRunner(t, []session.Session{testutil.A("a1")})

	_, err := runner.Sweep(context.Background(), []time.Duration{-time.Second}, defaultOptions())
	require.Error(t, err)
}
