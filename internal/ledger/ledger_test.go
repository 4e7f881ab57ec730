package ledger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"birdsweep/internal/sweep"
)

func testConfig(t *testing.T) Config {
	t.Helper()
	dir := t.TempDir()
	return Config{
		PostsPath: filepath.Join(dir, "progress_posts.txt"),
		LikesPath: filepath.Join(dir, "progress_likes.txt"),
	}
}

func TestLedgerRecordAndReload(t *testing.T) {
	cfg := testConfig(t)

	l, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := l.Record(sweep.ClassRemoval, "111"); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if err := l.Record(sweep.ClassUnlike, "222"); err != nil {
		t.Fatalf("Record: %v", err)
	}
	if !l.Contains(sweep.ClassRemoval, "111") {
		t.Fatalf("Contains after Record = false")
	}
	if l.Contains(sweep.ClassRemoval, "222") {
		t.Fatalf("classes leaked into each other")
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	// Reopen: the marks must survive the restart.
	l2, err := Open(cfg)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer l2.Close()
	if !l2.Contains(sweep.ClassRemoval, "111") || !l2.Contains(sweep.ClassUnlike, "222") {
		t.Fatalf("marks lost across restart")
	}
	if l2.Count(sweep.ClassRemoval) != 1 || l2.Count(sweep.ClassUnlike) != 1 {
		t.Fatalf("counts = %d/%d, want 1/1", l2.Count(sweep.ClassRemoval), l2.Count(sweep.ClassUnlike))
	}
}

func TestLedgerRecordIsIdempotent(t *testing.T) {
	cfg := testConfig(t)
	l, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer l.Close()

	for i := 0; i < 3; i++ {
		if err := l.Record(sweep.ClassRemoval, "dup"); err != nil {
			t.Fatalf("Record #%d: %v", i, err)
		}
	}

	b, err := os.ReadFile(cfg.PostsPath)
	if err != nil {
		t.Fatalf("read file: %v", err)
	}
	if got := strings.Count(string(b), "dup"); got != 1 {
		t.Fatalf("id written %d times, want 1", got)
	}
}

func TestLedgerFilterExcludesDoneIDs(t *testing.T) {
	cfg := testConfig(t)
	l, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer l.Close()

	if err := l.Record(sweep.ClassRemoval, "done"); err != nil {
		t.Fatalf("Record: %v", err)
	}
	items := []sweep.Item{
		{ID: "done", Kind: sweep.KindPost},
		{ID: "pending", Kind: sweep.KindPost},
	}
	q := sweep.BuildQueue(sweep.ClassRemoval, items, l.Filter(sweep.ClassRemoval))
	if q.Len() != 1 {
		t.Fatalf("queue len = %d, want 1", q.Len())
	}
	it, _ := q.Peek()
	if it.ID != "pending" {
		t.Fatalf("queue head = %q, want pending", it.ID)
	}
}

func TestLedgerToleratesBlankLines(t *testing.T) {
	cfg := testConfig(t)
	if err := os.WriteFile(cfg.PostsPath, []byte("111\n\n222\n"), 0o644); err != nil {
		t.Fatalf("seed file: %v", err)
	}
	l, err := Open(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer l.Close()
	if !l.Contains(sweep.ClassRemoval, "111") || !l.Contains(sweep.ClassRemoval, "222") {
		t.Fatalf("seeded ids missing")
	}
	if l.Count(sweep.ClassRemoval) != 2 {
		t.Fatalf("count = %d, want 2", l.Count(sweep.ClassRemoval))
	}
}
