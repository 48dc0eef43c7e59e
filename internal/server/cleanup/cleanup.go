// Package cleanup reclaims temporary uploads abandoned by admin sessions
// that never finalized, e.g. a closed browser tab or a crashed client.
package cleanup

import (
	"context"
	"errors"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/dmitrijs2005/trophyshop/internal/common"
	"github.com/dmitrijs2005/trophyshop/internal/logging"
)

// Sweeper removes temporary objects older than a TTL.
type Sweeper interface {
	SweepStale(ctx context.Context, ttl time.Duration) (int, int64, error)
}

// Sweep runs one pass over every sweeper.
func Sweep(ctx context.Context, sweepers map[string]Sweeper, ttl time.Duration, logger logging.Logger) {
	for area, s := range sweepers {
		count, freed, err := s.SweepStale(ctx, ttl)
		if err != nil {
			var ce *common.CleanupError
			if errors.As(err, &ce) && len(ce.Keys) > 0 {
				logger.Warn(ctx, "cleanup: some temporary files left behind", "area", area, "keys", ce.Keys, "error", err)
			} else {
				logger.Warn(ctx, "cleanup: sweep failed", "area", area, "error", err)
			}
		}
		if count > 0 {
			logger.Info(ctx, "cleanup: removed stale uploads", "area", area, "count", count, "freed", humanize.IBytes(uint64(freed)))
		}
	}
}

// RunPeriodic sweeps immediately, then on every interval until ctx is
// cancelled. It blocks. A non-positive interval leaves only the first pass.
func RunPeriodic(ctx context.Context, sweepers map[string]Sweeper, ttl, interval time.Duration, logger logging.Logger) {
	logger = logger.With("module", "cleanup")

	Sweep(ctx, sweepers, ttl, logger)

	if interval <= 0 {
		logger.Warn(ctx, "cleanup: periodic sweep disabled", "interval", interval)
		<-ctx.Done()
		return
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			Sweep(ctx, sweepers, ttl, logger)
		case <-ctx.Done():
			return
		}
	}
}
