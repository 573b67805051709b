package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fenwick-labs/sessionmatch/internal/session"
)

func testRunRecord(id string) RunRecord {
	return RunRecord{
		ID:          id,
		CreatedAt:   time.Date(2024, 5, 2, 8, 0, 0, 0, time.UTC),
		Window:      5 * time.Minute,
		RangeStart:  time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		RangeEnd:    time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC),
		Strategy:    "greedy-nearest",
		Fingerprint: "abc123",
		BothCount:   2,
		AOnlyCount:  1,
		BOnlyCount:  1,
	}
}

func TestSaveReadRun_RoundTrip(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rec := testRunRecord("run-1")
	rows := []CategoryRow{
		{Source: session.SourceA, Identifier: "a1", Category: "both", MatchedIdentifier: "b1"},
		{Source: session.SourceB, Identifier: "b1", Category: "both", MatchedIdentifier: "a1"},
		{Source: session.SourceA, Identifier: "a2", Category: "a-only"},
	}

	if err := s.SaveRun(ctx, rec, rows); err != nil {
		t.Fatalf("SaveRun() failed: %v", err)
	}

	got, err := s.ReadRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("ReadRun() failed: %v", err)
	}
	if got.Window != rec.Window || got.Strategy != rec.Strategy || got.Fingerprint != rec.Fingerprint {
		t.Errorf("metadata did not round trip: %+v", got)
	}
	if !got.RangeStart.Equal(rec.RangeStart) || !got.RangeEnd.Equal(rec.RangeEnd) {
		t.Errorf("range did not round trip: %+v", got)
	}
	if got.BothCount != 2 || got.AOnlyCount != 1 || got.BOnlyCount != 1 {
		t.Errorf("counts did not round trip: %+v", got)
	}
}

func TestReadRun_NotFound(t *testing.T) {
	s := openTestStore(t)

	_, err := s.ReadRun(context.Background(), "missing")
	if !errors.Is(err, ErrRunNotFound) {
		t.Errorf("err = %v, want ErrRunNotFound", err)
	}
}

func TestReadRunCategories_OrderedBySourceThenIdentifier(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	rows := []CategoryRow{
		{Source: session.SourceB, Identifier: "b1", Category: "b-only"},
		{Source: session.SourceA, Identifier: "a2", Category: "a-only"},
		{Source: session.SourceA, Identifier: "a1", Category: "a-only"},
	}
	if err := s.SaveRun(ctx, testRunRecord("run-1"), rows); err != nil {
		t.Fatalf("SaveRun() failed: %v", err)
	}

	got, err := s.ReadRunCategories(ctx, "run-1")
	if err != nil {
		t.Fatalf("ReadRunCategories() failed: %v", err)
	}

	wantOrder := []string{"a1", "a2", "b1"}
	if len(got) != len(wantOrder) {
		t.Fatalf("got %d rows, want %d", len(got), len(wantOrder))
	}
	for i, id := range wantOrder {
		if got[i].Identifier != id {
			t.Errorf("position %d: got %q, want %q", i, got[i].Identifier, id)
		}
	}
}

func TestReadRunCategories_EmptyRunID(t *testing.T) {
	s := openTestStore(t)

	got, err := s.ReadRunCategories(context.Background(), "missing")
	if err != nil {
		t.Fatalf("ReadRunCategories() failed: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("got %v, want empty non-nil slice", got)
	}
}

func TestSaveRun_DuplicateIDRejected(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	if err := s.SaveRun(ctx, testRunRecord("run-1"), nil); err != nil {
		t.Fatalf("first SaveRun() failed: %v", err)
	}
	if err := s.SaveRun(ctx, testRunRecord("run-1"), nil); err == nil {
		t.Error("expected primary key violation on duplicate run id, got nil")
	}
}

func TestSaveRun_Atomic(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	// A category row violating the CHECK constraint must roll back the
	// runs row too.
	rows := []CategoryRow{
		{Source: session.SourceA, Identifier: "a1", Category: "not-a-category"},
	}
	if err := s.SaveRun(ctx, testRunRecord("run-1"), rows); err == nil {
		t.Fatal("expected CHECK violation, got nil")
	}

	_, err := s.ReadRun(ctx, "run-1")
	if !errors.Is(err, ErrRunNotFound) {
		t.Errorf("run row survived a failed transaction: err = %v", err)
	}
}
