package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	logx "birdsweep/pkg/logx"
)

func sampleRun(i int) RunRecord {
	base := time.Date(2025, 4, 1, 3, 0, 0, 0, time.UTC)
	return RunRecord{
		StartedAt:      base.Add(time.Duration(i) * time.Hour),
		FinishedAt:     base.Add(time.Duration(i)*time.Hour + 30*time.Minute),
		Mode:           "archive",
		PostsCompleted: 10 + i,
		LikesCompleted: 5 + i,
	}
}

func TestOpenDisabled(t *testing.T) {
	for _, driver := range []string{"", "none"} {
		st, err := Open(Config{Driver: driver}, logx.Nop())
		if err != nil || st != nil {
			t.Fatalf("driver %q: st=%v err=%v, want nil/nil", driver, st, err)
		}
	}
	if _, err := Open(Config{Driver: "bogus", Path: "x"}, logx.Nop()); err == nil {
		t.Fatalf("expected unknown driver error")
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.jsonl")
	st, err := Open(Config{Driver: "file", Path: path}, logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		if err := st.AppendRun(ctx, sampleRun(i)); err != nil {
			t.Fatalf("AppendRun %d: %v", i, err)
		}
	}
	runs, err := st.RecentRuns(ctx, 2)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	if runs[1].PostsCompleted != 12 {
		t.Fatalf("last run = %+v", runs[1])
	}
	if err := st.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// Reopen and confirm persistence.
	st2, err := Open(Config{Driver: "file", Path: path}, logx.Nop())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer st2.Close()
	runs, err = st2.RecentRuns(ctx, 10)
	if err != nil || len(runs) != 3 {
		t.Fatalf("after reopen: runs=%d err=%v", len(runs), err)
	}
}

func TestSQLiteStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	st, err := Open(Config{Driver: "sqlite", Path: path, BusyTimeout: time.Second}, logx.Nop())
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer st.Close()

	ctx := context.Background()
	r := sampleRun(0)
	r.Error = "cancelled"
	if err := st.AppendRun(ctx, r); err != nil {
		t.Fatalf("AppendRun: %v", err)
	}
	if err := st.AppendRun(ctx, sampleRun(1)); err != nil {
		t.Fatalf("AppendRun: %v", err)
	}

	runs, err := st.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("RecentRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("got %d runs, want 2", len(runs))
	}
	if runs[0].Error != "cancelled" || runs[1].Error != "" {
		t.Fatalf("runs = %+v", runs)
	}
	if !runs[0].StartedAt.Equal(sampleRun(0).StartedAt) {
		t.Fatalf("started_at = %v, want %v", runs[0].StartedAt, sampleRun(0).StartedAt)
	}
}
