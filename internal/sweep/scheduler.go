package sweep

import (
	"context"
	"fmt"
	"time"

	logx "birdsweep/pkg/logx"
)

// Ledger is the durable record of completed work. Record must not return
// until the id is safely on disk; a Record failure aborts the run because
// resumption correctness depends on it.
type Ledger interface {
	Record(class Class, id string) error
}

// Config holds the pacing knobs. All three are fixed per run.
type Config struct {
	// Spacing is the minimum gap between two attempts of the same class.
	Spacing time.Duration
	// ThrottleFallback is the pause applied when a rate-limit signal carries
	// no reset instant.
	ThrottleFallback time.Duration
	// PollCap bounds any single wait so cancellation stays responsive even
	// when the next eligible instant is far away.
	PollCap time.Duration
}

func (c Config) withDefaults() Config {
	if c.Spacing <= 0 {
		c.Spacing = 20 * time.Second
	}
	if c.ThrottleFallback <= 0 {
		c.ThrottleFallback = 60 * time.Second
	}
	if c.PollCap <= 0 {
		c.PollCap = 5 * time.Second
	}
	return c
}

// ClassStats counts what happened to one class during a run.
type ClassStats struct {
	Completed     int // removed, or already gone / forbidden
	Skipped       int // unrecoverable per-item errors
	Protected     int // pulled by the live whitelist mid-run
	RateLimitHits int // throttled attempts (each implies a later retry)
}

// Summary is the per-run result reported to the operator.
type Summary struct {
	Started  time.Time
	Finished time.Time
	Removal  ClassStats
	Unlike   ClassStats
}

func (s Summary) Completed() int { return s.Removal.Completed + s.Unlike.Completed }
func (s Summary) Skipped() int   { return s.Removal.Skipped + s.Unlike.Skipped }

// Scheduler drives both queues to empty with rate-aware interleaving.
// It is single-threaded: at most one Perform is outstanding at any time,
// since both classes mutate the same account and serializing keeps partial
// failures attributable.
type Scheduler struct {
	cfg    Config
	log    logx.Logger
	clock  Clock
	exec   Executor
	ledger Ledger

	queues  [numClasses]*Queue
	windows [numClasses]window
	stats   [numClasses]ClassStats

	// protected is consulted at dispatch time so whitelist additions made
	// mid-run still take effect. Nil means no live checking.
	protected func(item Item) bool
}

func New(cfg Config, exec Executor, ledger Ledger, removal, unlike *Queue, log logx.Logger) *Scheduler {
	if log.IsZero() {
		log = logx.Nop()
	}
	s := &Scheduler{
		cfg:    cfg.withDefaults(),
		log:    log,
		clock:  SystemClock(),
		exec:   exec,
		ledger: ledger,
	}
	s.queues[ClassRemoval] = removal
	s.queues[ClassUnlike] = unlike
	return s
}

// SetClock replaces the wall clock; used by tests.
func (s *Scheduler) SetClock(c Clock) {
	if c != nil {
		s.clock = c
	}
}

// SetProtected installs the live whitelist hook.
func (s *Scheduler) SetProtected(fn func(item Item) bool) { s.protected = fn }

// Run executes dispatch ticks until both queues drain or ctx is cancelled.
// On cancellation it returns after the in-flight attempt settles, with the
// ledger reflecting exactly the work that completed. The only error returned
// besides ctx.Err() is a ledger write failure, which is fatal.
func (s *Scheduler) Run(ctx context.Context) (Summary, error) {
	sum := Summary{Started: s.clock.Now()}

	for {
		if err := ctx.Err(); err != nil {
			return s.summarize(sum), err
		}
		if s.remaining() == 0 {
			// Drained.
			return s.summarize(sum), nil
		}

		class, ok := s.chooseClass(s.clock.Now())
		if !ok {
			if err := s.waitNextEligible(ctx); err != nil {
				return s.summarize(sum), err
			}
			continue
		}

		if err := s.dispatch(ctx, class); err != nil {
			return s.summarize(sum), err
		}
	}
}

func (s *Scheduler) remaining() int {
	n := 0
	for _, q := range s.queues {
		n += q.Len()
	}
	return n
}

// chooseClass picks the eligible class to dispatch, or reports none. When
// both are eligible, the one whose last attempt is older goes first; a tie
// goes to removal. This bounds how far either class can run ahead of the
// other while both have work.
func (s *Scheduler) chooseClass(now time.Time) (Class, bool) {
	chosen := Class(-1)
	for c := Class(0); c < numClasses; c++ {
		if s.queues[c].Len() == 0 || !s.windows[c].eligible(now, s.cfg.Spacing) {
			continue
		}
		if chosen < 0 || s.windows[c].lastAttemptAt.Before(s.windows[chosen].lastAttemptAt) {
			chosen = c
		}
	}
	return chosen, chosen >= 0
}

// waitNextEligible suspends until the earliest instant any non-empty class
// becomes eligible, capped at PollCap so cancellation is never delayed by a
// long throttle window.
func (s *Scheduler) waitNextEligible(ctx context.Context) error {
	now := s.clock.Now()
	var earliest time.Time
	for c := Class(0); c < numClasses; c++ {
		if s.queues[c].Len() == 0 {
			continue
		}
		at := s.windows[c].nextEligibleAt(now, s.cfg.Spacing)
		if earliest.IsZero() || at.Before(earliest) {
			earliest = at
		}
	}
	wait := earliest.Sub(now)
	if wait <= 0 {
		return ctx.Err()
	}
	if wait > s.cfg.PollCap {
		wait = s.cfg.PollCap
	}
	return s.clock.Sleep(ctx, wait)
}

func (s *Scheduler) dispatch(ctx context.Context, class Class) error {
	q := s.queues[class]
	item, ok := q.Peek()
	if !ok {
		return nil
	}

	if s.protected != nil && s.protected(item) {
		// Whitelisted since the queues were built. No attempt, no ledger
		// credit; the build-time filter excludes it on the next run.
		s.stats[class].Protected++
		q.Advance()
		s.log.Info("skipping protected item",
			logx.String("class", class.String()),
			logx.String("id", item.ID),
		)
		return nil
	}

	s.log.Info("dispatching",
		logx.String("class", class.String()),
		logx.String("kind", string(item.Kind)),
		logx.String("id", item.ID),
		logx.String("text", item.Preview()),
		logx.Int("remaining_removal", s.queues[ClassRemoval].Len()),
		logx.Int("remaining_unlike", s.queues[ClassUnlike].Len()),
	)

	out := s.exec.Perform(ctx, item)
	now := s.clock.Now()
	w := &s.windows[class]

	switch {
	case out.done():
		if err := s.ledger.Record(class, item.ID); err != nil {
			return fmt.Errorf("record progress (%s %s): %w", class, item.ID, err)
		}
		q.Advance()
		w.markAttempted(now)
		w.clearThrottle()
		s.stats[class].Completed++
		if out.Status != StatusSuccess {
			s.log.Debug("counted as done", logx.String("id", item.ID), logx.String("status", out.Status.String()))
		}

	case out.Status == StatusRateLimited:
		w.markThrottled(now, out.ResetAt, s.cfg.ThrottleFallback)
		w.markAttempted(now)
		s.stats[class].RateLimitHits++
		s.log.Warn("rate limited",
			logx.String("class", class.String()),
			logx.Time("until", w.throttledUntil),
		)

	default:
		// Unrecoverable for this item: skip it so one bad entry cannot block
		// the whole queue. No ledger credit, so a later run may try again.
		q.Advance()
		s.stats[class].Skipped++
		s.log.Warn("skipping item after error",
			logx.String("class", class.String()),
			logx.String("id", item.ID),
			logx.Err(out.Err),
		)
	}
	return nil
}

func (s *Scheduler) summarize(sum Summary) Summary {
	sum.Finished = s.clock.Now()
	sum.Removal = s.stats[ClassRemoval]
	sum.Unlike = s.stats[ClassUnlike]
	return sum
}
