package app

import (
	"context"
	"time"

	pkgcron "github.com/interview-replay/core/internal/pkg/cron"
	sessionpkg "github.com/interview-replay/core/internal/pkg/session"
	"go.uber.org/zap"
)

func (a *App) registerCronJobs() {
	a.sched.Register(pkgcron.Job{
		Name:        "cleanup_auth_sessions",
		Description: "Revoke expired login sessions",
		Interval:    time.Hour,
		Fn: func(ctx context.Context) error {
			n, err := sessionpkg.CleanupExpired(a.db)
			if err != nil {
				return err
			}
			if n > 0 {
				a.logger.Info("expired auth sessions revoked", zap.Int64("count", n))
			}
			return nil
		},
	})

	a.sched.Register(pkgcron.Job{
		Name:        "deactivate_expired_shares",
		Description: "Deactivate share links past their expiry",
		Interval:    15 * time.Minute,
		Fn: func(ctx context.Context) error {
			n, err := a.sharingSvc.DeactivateExpired()
			if err != nil {
				return err
			}
			if n > 0 {
				a.logger.Info("expired shares deactivated", zap.Int64("count", n))
			}
			return nil
		},
	})

	a.sched.Register(pkgcron.Job{
		Name:        "sweep_stale_ai_jobs",
		Description: "Fail AI jobs stuck in processing past the timeout",
		Interval:    5 * time.Minute,
		Fn: func(ctx context.Context) error {
			n, err := a.aiSvc.SweepStale(a.jobTimeout())
			if err != nil {
				return err
			}
			if n > 0 {
				a.logger.Warn("stale ai jobs failed by sweeper", zap.Int64("count", n))
			}
			return nil
		},
	})
}
