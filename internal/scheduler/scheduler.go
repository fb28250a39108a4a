// Package scheduler runs the periodic auction jobs.
package scheduler

import (
	"context"

	"auction-backend/internal/logger"
	"auction-backend/internal/models"

	"github.com/robfig/cron/v3"
)

// AuctionCloser finalizes auctions whose end time has passed.
type AuctionCloser interface {
	CloseEndedAuctions(ctx context.Context) ([]models.Auction, error)
}

type Runner struct {
	cron    *cron.Cron
	baseCtx context.Context
}

// New creates a runner whose specs carry a seconds field. A job still running
// when its next tick arrives is skipped.
func New(baseCtx context.Context) *Runner {
	if baseCtx == nil {
		baseCtx = context.Background()
	}
	return &Runner{
		cron: cron.New(
			cron.WithSeconds(),
			cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)),
		),
		baseCtx: baseCtx,
	}
}

func (r *Runner) Add(spec string, job func(context.Context)) (cron.EntryID, error) {
	return r.cron.AddFunc(spec, func() {
		job(r.baseCtx)
	})
}

func (r *Runner) Start() {
	logger.Info("scheduler started", map[string]any{"jobs": len(r.cron.Entries())})
	r.cron.Start()
}

// Stop waits for running jobs to finish.
func (r *Runner) Stop() {
	ctx := r.cron.Stop()
	<-ctx.Done()
	logger.Info("scheduler stopped", nil)
}

// CloseAuctionsJob returns a job that closes every ended auction.
func CloseAuctionsJob(closer AuctionCloser) func(context.Context) {
	return func(ctx context.Context) {
		closed, err := closer.CloseEndedAuctions(ctx)
		if err != nil {
			logger.Error("failed to close ended auctions", map[string]any{"error": err.Error()})
			return
		}
		if len(closed) > 0 {
			logger.Info("closed ended auctions", map[string]any{"count": len(closed)})
		}
	}
}
