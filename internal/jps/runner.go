package jps

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Run executes one search bounded by cfg.MaxTime on the calling goroutine. A
// non-positive MaxTime fails immediately without consulting the oracle.
func Run(ctx context.Context, cfg Config, log *zap.Logger) (Result, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.MaxTime <= 0 {
		return Result{}, nil
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.MaxTime)
	defer cancel()

	begin := time.Now()
	res, err := NewSearcher(log).Search(ctx, cfg)
	res.Stats.Elapsed = time.Since(begin)

	log.Debug("尋路完成",
		zap.Stringer("start", cfg.Start),
		zap.Stringer("goal", cfg.Goal),
		zap.Bool("found", res.Found),
		zap.Int("points", len(res.Path)),
		zap.Int("expansions", res.Stats.Expansions),
		zap.Duration("elapsed", res.Stats.Elapsed),
		zap.Error(err))
	return res, err
}
