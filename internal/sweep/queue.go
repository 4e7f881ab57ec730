package sweep

import "sort"

// Queue is an ordered cursor over one class's pending items.
//
// The cursor only moves forward: on terminal success or on unrecoverable
// per-item error. A rate-limited attempt leaves it in place so the same item
// is retried once the class's window passes.
type Queue struct {
	class Class
	items []Item
	pos   int
}

// Filter excludes an item from a queue at build time.
type Filter func(id string) bool

// BuildQueue constructs the pending queue for class from items, dropping any
// item a filter matches (whitelist, ledger) and sorting oldest-first by
// timestamp. The sort is stable, so items with unknown timestamps keep their
// input order (and sort ahead of dated items, matching the export layout).
func BuildQueue(class Class, items []Item, filters ...Filter) *Queue {
	pending := make([]Item, 0, len(items))
next:
	for _, it := range items {
		if it.Kind.Class() != class || it.ID == "" {
			continue
		}
		for _, f := range filters {
			if f != nil && f(it.ID) {
				continue next
			}
		}
		pending = append(pending, it)
	}

	sort.SliceStable(pending, func(i, j int) bool {
		return pending[i].Timestamp.Before(pending[j].Timestamp)
	})

	return &Queue{class: class, items: pending}
}

func (q *Queue) Class() Class { return q.class }

// Len returns the number of items not yet passed by the cursor.
func (q *Queue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.items) - q.pos
}

// Total returns the queue size at build time.
func (q *Queue) Total() int {
	if q == nil {
		return 0
	}
	return len(q.items)
}

// Peek returns the head without advancing, so an interrupted attempt cannot
// lose the item.
func (q *Queue) Peek() (Item, bool) {
	if q.Len() == 0 {
		return Item{}, false
	}
	return q.items[q.pos], true
}

// Advance moves the cursor past the current head.
func (q *Queue) Advance() {
	if q.Len() > 0 {
		q.pos++
	}
}
