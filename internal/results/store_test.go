package results

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	db, err := OpenDB(filepath.Join(t.TempDir(), "data", "results.db"))
	if err != nil {
		t.Fatalf("OpenDB: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := Migrate(context.Background(), db); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	// A second run is a no-op.
	if err := Migrate(context.Background(), db); err != nil {
		t.Fatalf("Migrate again: %v", err)
	}
	return NewStore(db)
}

func TestRecordAndTop(t *testing.T) {
	ctx := context.Background()
	st := openTestStore(t)
	date := "2026-10-19"

	for _, r := range []Result{
		{WorldID: "lost", Size: 4, Score: -3, Moves: 3, Date: date},
		{WorldID: "slow", Size: 4, Score: 980, Won: true, Moves: 20, Date: date},
		{WorldID: "fast", Size: 4, Score: 994, Won: true, Moves: 6, Date: date},
		{WorldID: "other-day", Size: 4, Score: 999, Won: true, Moves: 1, Date: "2026-10-18"},
	} {
		if err := st.Record(ctx, r); err != nil {
			t.Fatalf("Record(%s): %v", r.WorldID, err)
		}
	}
	// Duplicate is ignored.
	if err := st.Record(ctx, Result{WorldID: "fast", Size: 4, Score: -100, Date: date}); err != nil {
		t.Fatalf("duplicate Record: %v", err)
	}

	top, err := st.Top(ctx, date, 0)
	if err != nil {
		t.Fatalf("Top: %v", err)
	}
	var ids []string
	for _, r := range top {
		ids = append(ids, r.WorldID)
	}
	want := []string{"fast", "slow", "lost"}
	if len(ids) != len(want) {
		t.Fatalf("ids = %v, want %v", ids, want)
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Fatalf("ids = %v, want %v", ids, want)
		}
	}
	if !top[0].Won || top[0].Score != 994 {
		t.Errorf("top[0] = %+v", top[0])
	}

	limited, _ := st.Top(ctx, date, 1)
	if len(limited) != 1 {
		t.Errorf("limit ignored: %d rows", len(limited))
	}
}

func TestDateKey(t *testing.T) {
	ts := time.Date(2026, 10, 19, 23, 30, 0, 0, time.FixedZone("x", -3*3600))
	if got := DateKey(ts); got != "2026-10-20" {
		t.Errorf("DateKey = %q", got)
	}
}
