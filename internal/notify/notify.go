// Package notify pushes run summaries to Telegram. Sweeps run unattended for
// hours (often from a timer unit), so the summary message is how the operator
// learns a run finished, was cancelled, or kept hitting rate limits.
package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/time/rate"
	tele "gopkg.in/telebot.v4"

	"birdsweep/internal/storage"
	logx "birdsweep/pkg/logx"
)

type Config struct {
	Enabled    bool
	Token      string
	ChatID     int64
	RatePerSec int
}

// Notifier is send-only: no poller, no update handling.
type Notifier struct {
	bot     *tele.Bot
	chat    tele.ChatID
	limiter *rate.Limiter
	log     logx.Logger
}

// New returns (nil, nil) when notifications are disabled; a nil Notifier is
// safe to call.
func New(cfg Config, log logx.Logger) (*Notifier, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	if strings.TrimSpace(cfg.Token) == "" || cfg.ChatID == 0 {
		return nil, errors.New("notify: token and chat_id are required")
	}
	if log.IsZero() {
		log = logx.Nop()
	}
	bot, err := tele.NewBot(tele.Settings{Token: cfg.Token})
	if err != nil {
		return nil, fmt.Errorf("notify: %w", err)
	}
	rps := cfg.RatePerSec
	if rps <= 0 {
		rps = 1
	}
	return &Notifier{
		bot:     bot,
		chat:    tele.ChatID(cfg.ChatID),
		limiter: rate.NewLimiter(rate.Limit(rps), rps),
		log:     log,
	}, nil
}

// RunFinished sends the end-of-run summary. Failures are logged, never
// propagated: a lost notification must not taint an otherwise clean run.
func (n *Notifier) RunFinished(ctx context.Context, rec storage.RunRecord) {
	if n == nil {
		return
	}
	if err := n.limiter.Wait(ctx); err != nil {
		return
	}
	msg := formatRun(rec)
	if _, err := n.bot.Send(n.chat, msg); err != nil {
		n.log.Warn("summary notification failed", logx.Err(err))
	}
}

func formatRun(r storage.RunRecord) string {
	var b strings.Builder
	if r.Error != "" {
		b.WriteString("birdsweep run ended with error\n")
	} else if r.DryRun {
		b.WriteString("birdsweep dry run finished\n")
	} else {
		b.WriteString("birdsweep run finished\n")
	}
	fmt.Fprintf(&b, "mode: %s\n", r.Mode)
	fmt.Fprintf(&b, "posts: %d done, %d skipped\n", r.PostsCompleted, r.PostsSkipped)
	fmt.Fprintf(&b, "likes: %d done, %d skipped\n", r.LikesCompleted, r.LikesSkipped)
	if r.RateLimitHits > 0 {
		fmt.Fprintf(&b, "rate limit hits: %d\n", r.RateLimitHits)
	}
	if !r.StartedAt.IsZero() && !r.FinishedAt.IsZero() {
		fmt.Fprintf(&b, "took: %s\n", r.FinishedAt.Sub(r.StartedAt).Round(time.Second))
	}
	if r.Error != "" {
		fmt.Fprintf(&b, "error: %s", r.Error)
	}
	return strings.TrimRight(b.String(), "\n")
}
