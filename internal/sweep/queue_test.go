package sweep

import (
	"testing"
	"time"
)

func TestBuildQueueFiltersAndSorts(t *testing.T) {
	base := time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC)
	items := []Item{
		{ID: "3", Kind: KindPost, Timestamp: base.Add(2 * time.Hour)},
		{ID: "done", Kind: KindPost, Timestamp: base},
		{ID: "1", Kind: KindPost, Timestamp: base},
		{ID: "kept", Kind: KindPost, Timestamp: base.Add(time.Hour)},
		{ID: "like", Kind: KindLike},
		{ID: "", Kind: KindPost},
		{ID: "2", Kind: KindRepost, Timestamp: base.Add(time.Hour)},
	}

	ledger := map[string]bool{"done": true}
	whitelist := map[string]bool{"kept": true}

	q := BuildQueue(ClassRemoval, items,
		func(id string) bool { return whitelist[id] },
		func(id string) bool { return ledger[id] },
	)

	var got []string
	for q.Len() > 0 {
		it, _ := q.Peek()
		got = append(got, it.ID)
		q.Advance()
	}
	want := []string{"1", "2", "3"}
	if len(got) != len(want) {
		t.Fatalf("queue = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("queue = %v, want %v", got, want)
		}
	}
}

func TestBuildQueueStableForUnknownTimestamps(t *testing.T) {
	items := []Item{
		{ID: "a", Kind: KindLike},
		{ID: "b", Kind: KindLike},
		{ID: "c", Kind: KindLike},
	}
	q := BuildQueue(ClassUnlike, items)
	for _, want := range []string{"a", "b", "c"} {
		it, ok := q.Peek()
		if !ok || it.ID != want {
			t.Fatalf("got %q, want %q", it.ID, want)
		}
		q.Advance()
	}
}

func TestQueuePeekDoesNotAdvance(t *testing.T) {
	q := BuildQueue(ClassRemoval, []Item{{ID: "x", Kind: KindPost}})
	for i := 0; i < 3; i++ {
		it, ok := q.Peek()
		if !ok || it.ID != "x" {
			t.Fatalf("peek %d: got %v %v", i, it.ID, ok)
		}
	}
	if q.Len() != 1 {
		t.Fatalf("peek advanced the cursor")
	}
	q.Advance()
	if q.Len() != 0 {
		t.Fatalf("advance did not consume")
	}
	if _, ok := q.Peek(); ok {
		t.Fatalf("peek on drained queue returned an item")
	}
}
