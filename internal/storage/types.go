package storage

import (
	"errors"
	"time"
)

var ErrDisabled = errors.New("storage disabled")

// Config configures run-history storage.
//
// Driver values:
//   - "file": dependency-free append-only JSONL
//   - "sqlite": SQLite database file
//
// If Driver is empty or "none", storage is disabled.
type Config struct {
	Driver      string
	Path        string
	BusyTimeout time.Duration // sqlite only; 0 means default
}

// RunRecord summarizes one completed (or aborted) sweep.
// Keep it compact and schema-stable.
type RunRecord struct {
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Mode       string    `json:"mode"`
	DryRun     bool      `json:"dry_run,omitempty"`

	PostsCompleted int `json:"posts_completed"`
	PostsSkipped   int `json:"posts_skipped"`
	LikesCompleted int `json:"likes_completed"`
	LikesSkipped   int `json:"likes_skipped"`
	RateLimitHits  int `json:"rate_limit_hits"`

	Error string `json:"error,omitempty"`
}
