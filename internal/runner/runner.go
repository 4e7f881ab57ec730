// Package runner wires one sweep together: inputs, whitelist, ledger,
// scheduler, and the post-run bookkeeping (history store, notification).
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"birdsweep/internal/archive"
	"birdsweep/internal/config"
	"birdsweep/internal/ledger"
	"birdsweep/internal/notify"
	"birdsweep/internal/storage"
	"birdsweep/internal/sweep"
	"birdsweep/internal/twitter"
	"birdsweep/internal/whitelist"
	logx "birdsweep/pkg/logx"
)

const previewLimit = 15

type Runner struct {
	cfg      *config.Config
	log      logx.Logger
	store    storage.Store    // may be nil (disabled)
	notifier *notify.Notifier // may be nil (disabled)
}

func New(cfg *config.Config, log logx.Logger, store storage.Store, notifier *notify.Notifier) *Runner {
	if log.IsZero() {
		log = logx.Nop()
	}
	return &Runner{cfg: cfg, log: log, store: store, notifier: notifier}
}

// RunOnce performs a single sweep to completion or cancellation.
// context.Canceled comes back unwrapped so the caller can treat an operator
// interrupt as a clean stop.
func (r *Runner) RunOnce(ctx context.Context) error {
	cfg := r.cfg

	led, err := ledger.Open(ledger.Config{
		PostsPath: cfg.Ledger.PostsPath,
		LikesPath: cfg.Ledger.LikesPath,
	})
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}
	defer led.Close()
	r.log.Info("ledger loaded",
		logx.Int("posts_done", led.Count(sweep.ClassRemoval)),
		logx.Int("likes_done", led.Count(sweep.ClassUnlike)),
	)

	wl, err := whitelist.Load(cfg.Input.WhitelistFile)
	if err != nil {
		return fmt.Errorf("load whitelist: %w", err)
	}
	r.log.Info("whitelist loaded",
		logx.String("path", cfg.Input.WhitelistFile),
		logx.Int("entries", wl.Len()),
	)

	var client *twitter.Client
	var userID string
	needAPI := cfg.Input.Mode == config.ModeAPI || !cfg.DryRun
	if needAPI {
		client = twitter.NewClient(twitter.Config{
			APIKey:            cfg.Twitter.APIKey,
			APISecret:         cfg.Twitter.APISecret,
			AccessToken:       cfg.Twitter.AccessToken,
			AccessTokenSecret: cfg.Twitter.AccessTokenSecret,
		}, r.log)
		me, err := client.Me(ctx)
		if err != nil {
			return fmt.Errorf("authenticate: %w", err)
		}
		userID = me.ID
		r.log.Info("authenticated", logx.String("username", me.Username), logx.String("user_id", me.ID))
	}

	posts, likes, err := r.loadItems(ctx, client, userID)
	if err != nil {
		return err
	}
	r.log.Info("inputs loaded", logx.Int("posts", len(posts)), logx.Int("likes", len(likes)))

	removalQ := sweep.BuildQueue(sweep.ClassRemoval, posts, wl.Contains, led.Filter(sweep.ClassRemoval))
	unlikeQ := sweep.BuildQueue(sweep.ClassUnlike, likes, led.Filter(sweep.ClassUnlike))

	total := removalQ.Len() + unlikeQ.Len()
	spacing, _ := cfg.SpacingDuration()
	r.log.Info("queues built",
		logx.Int("removal", removalQ.Len()),
		logx.Int("unlike", unlikeQ.Len()),
		// Interleaving halves the effective per-item wait.
		logx.Duration("estimated", time.Duration(total)*spacing/2),
	)

	if total == 0 {
		r.log.Info("nothing to do")
		return nil
	}

	if cfg.DryRun {
		r.preview(removalQ, unlikeQ)
		return nil
	}

	fallback, _ := cfg.ThrottleFallbackDuration()
	pollCap, _ := cfg.PollCapDuration()
	sched := sweep.New(
		sweep.Config{Spacing: spacing, ThrottleFallback: fallback, PollCap: pollCap},
		twitter.NewExecutor(client, userID),
		led, removalQ, unlikeQ, r.log,
	)

	if cfg.Input.WatchWhitelist {
		wctx, wcancel := context.WithCancel(ctx)
		defer wcancel()
		go whitelist.NewWatcher(cfg.Input.WhitelistFile, wl, r.log).Watch(wctx)
		sched.SetProtected(func(item sweep.Item) bool {
			return item.Kind != sweep.KindLike && wl.Contains(item.ID)
		})
	}

	sum, runErr := sched.Run(ctx)
	r.finish(ctx, sum, runErr)
	return runErr
}

func (r *Runner) loadItems(ctx context.Context, client *twitter.Client, userID string) (posts, likes []sweep.Item, err error) {
	cfg := r.cfg
	switch cfg.Input.Mode {
	case config.ModeAPI:
		posts, err = client.UserTweets(ctx, userID)
		if err != nil {
			return nil, nil, fmt.Errorf("fetch posts: %w", err)
		}
		if cfg.Input.IncludeLikes {
			likes, err = client.LikedTweets(ctx, userID)
			if err != nil {
				return nil, nil, fmt.Errorf("fetch likes: %w", err)
			}
		}
	default:
		posts, err = archive.LoadTweets(cfg.Input.TweetsFile)
		if err != nil {
			return nil, nil, fmt.Errorf("load archive: %w", err)
		}
		if cfg.Input.IncludeLikes {
			likes, err = archive.LoadLikes(cfg.Input.LikesFile)
			if err != nil {
				return nil, nil, fmt.Errorf("load likes archive: %w", err)
			}
		}
	}
	return posts, likes, nil
}

func (r *Runner) preview(queues ...*sweep.Queue) {
	shown := 0
	rest := 0
	for _, q := range queues {
		for q.Len() > 0 {
			item, _ := q.Peek()
			q.Advance()
			if shown >= previewLimit {
				rest++
				continue
			}
			shown++
			r.log.Info("would remove",
				logx.String("kind", string(item.Kind)),
				logx.String("id", item.ID),
				logx.String("text", item.Preview()),
			)
		}
	}
	if rest > 0 {
		r.log.Info("preview truncated", logx.Int("more", rest))
	}
	r.log.Info("dry run complete; no changes made")
}

// finish records the run summary and sends the notification. Neither may
// fail the run: the ledger already holds the ground truth.
func (r *Runner) finish(ctx context.Context, sum sweep.Summary, runErr error) {
	rec := storage.RunRecord{
		StartedAt:      sum.Started,
		FinishedAt:     sum.Finished,
		Mode:           r.cfg.Input.Mode,
		DryRun:         r.cfg.DryRun,
		PostsCompleted: sum.Removal.Completed,
		PostsSkipped:   sum.Removal.Skipped + sum.Removal.Protected,
		LikesCompleted: sum.Unlike.Completed,
		LikesSkipped:   sum.Unlike.Skipped,
		RateLimitHits:  sum.Removal.RateLimitHits + sum.Unlike.RateLimitHits,
	}
	if runErr != nil {
		rec.Error = runErr.Error()
	}

	r.log.Info("run finished",
		logx.Int("posts_completed", rec.PostsCompleted),
		logx.Int("posts_skipped", rec.PostsSkipped),
		logx.Int("likes_completed", rec.LikesCompleted),
		logx.Int("likes_skipped", rec.LikesSkipped),
		logx.Int("rate_limit_hits", rec.RateLimitHits),
		logx.Err(runErr),
	)

	if r.store != nil {
		// Use a fresh context: the run context is usually already cancelled
		// when we get here via an interrupt.
		sctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := r.store.AppendRun(sctx, rec); err != nil && !errors.Is(err, storage.ErrDisabled) {
			r.log.Warn("recording run history failed", logx.Err(err))
		}
	}

	nctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	r.notifier.RunFinished(nctx, rec)
}
