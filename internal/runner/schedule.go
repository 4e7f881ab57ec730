package runner

import (
	"context"
	"strings"
	"sync/atomic"
	"time"

	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/robfig/cron/v3"

	logx "birdsweep/pkg/logx"
)

// RunScheduled runs sweeps on the configured cron spec until ctx is done.
// This is the shape the tool deploys in under a systemd service: readiness is
// signalled via sd_notify once the schedule is armed.
func (r *Runner) RunScheduled(ctx context.Context) error {
	sc := r.cfg.Schedule

	loc := time.Local
	if tz := strings.TrimSpace(sc.Timezone); tz != "" {
		l, err := time.LoadLocation(tz)
		if err != nil {
			return err
		}
		loc = l
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	c := cron.New(cron.WithParser(parser), cron.WithLocation(loc))

	// A sweep can outlast its own interval; skip ticks instead of stacking runs.
	var running atomic.Bool
	_, err := c.AddFunc(sc.Spec, func() {
		if !running.CompareAndSwap(false, true) {
			r.log.Warn("previous sweep still running; skipping this tick")
			return
		}
		defer running.Store(false)

		r.log.Info("scheduled sweep starting", logx.String("spec", sc.Spec))
		if err := r.RunOnce(ctx); err != nil && ctx.Err() == nil {
			r.log.Error("scheduled sweep failed", logx.Err(err))
		}
	})
	if err != nil {
		return err
	}

	c.Start()
	r.log.Info("schedule armed", logx.String("spec", sc.Spec), logx.String("tz", loc.String()))
	if ok, err := daemon.SdNotify(false, daemon.SdNotifyReady); err != nil {
		r.log.Debug("sd_notify failed", logx.Err(err))
	} else if ok {
		r.log.Debug("sd_notify ready sent")
	}

	<-ctx.Done()
	_, _ = daemon.SdNotify(false, daemon.SdNotifyStopping)
	// Let an in-flight sweep observe the cancelled ctx and settle.
	<-c.Stop().Done()
	return nil
}
