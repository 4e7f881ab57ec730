package notify

import (
	"strings"
	"testing"
	"time"

	"birdsweep/internal/storage"
	logx "birdsweep/pkg/logx"
)

func TestNewDisabledReturnsNil(t *testing.T) {
	n, err := New(Config{Enabled: false}, logx.Nop())
	if err != nil || n != nil {
		t.Fatalf("disabled: n=%v err=%v", n, err)
	}
	// A nil notifier must be callable.
	n.RunFinished(t.Context(), storage.RunRecord{})
}

func TestNewRejectsMissingTarget(t *testing.T) {
	if _, err := New(Config{Enabled: true}, logx.Nop()); err == nil {
		t.Fatalf("expected error for missing token/chat")
	}
}

func TestFormatRun(t *testing.T) {
	base := time.Date(2025, 4, 1, 3, 0, 0, 0, time.UTC)
	rec := storage.RunRecord{
		StartedAt:      base,
		FinishedAt:     base.Add(90 * time.Minute),
		Mode:           "archive",
		PostsCompleted: 120,
		PostsSkipped:   2,
		LikesCompleted: 340,
		RateLimitHits:  4,
	}
	msg := formatRun(rec)
	for _, want := range []string{
		"run finished",
		"mode: archive",
		"posts: 120 done, 2 skipped",
		"likes: 340 done, 0 skipped",
		"rate limit hits: 4",
		"took: 1h30m0s",
	} {
		if !strings.Contains(msg, want) {
			t.Fatalf("message missing %q:\n%s", want, msg)
		}
	}

	rec.Error = "context canceled"
	msg = formatRun(rec)
	if !strings.Contains(msg, "ended with error") || !strings.Contains(msg, "error: context canceled") {
		t.Fatalf("error message = %q", msg)
	}

	rec.Error = ""
	rec.DryRun = true
	if msg = formatRun(rec); !strings.Contains(msg, "dry run finished") {
		t.Fatalf("dry run message = %q", msg)
	}
}
