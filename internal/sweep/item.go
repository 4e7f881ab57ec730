package sweep

import (
	"strings"
	"time"
)

// Kind identifies what a work item is on the remote service.
type Kind string

const (
	KindPost   Kind = "post"
	KindRepost Kind = "repost"
	KindLike   Kind = "like"
)

// Class is one of the two independently rate-limited action categories.
// Posts and reposts share the removal endpoint (and its limit); likes use the
// unlike endpoint.
type Class int

const (
	ClassRemoval Class = iota
	ClassUnlike

	numClasses
)

func (c Class) String() string {
	switch c {
	case ClassRemoval:
		return "removal"
	case ClassUnlike:
		return "unlike"
	default:
		return "unknown"
	}
}

// Class maps a kind to its action class.
func (k Kind) Class() Class {
	if k == KindLike {
		return ClassUnlike
	}
	return ClassRemoval
}

// Item is one deletable unit of work.
type Item struct {
	ID   string
	Kind Kind
	Text string

	// Timestamp is the item's creation time when the source knows it.
	// Zero means unknown; unknown items keep their input order.
	Timestamp time.Time
}

// Preview returns a short single-line excerpt of the item text for logs.
func (it Item) Preview() string {
	s := strings.ReplaceAll(it.Text, "\n", " ")
	s = strings.TrimSpace(s)
	if len(s) > 40 {
		s = s[:40] + "..."
	}
	return s
}
