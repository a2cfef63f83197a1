package services

import (
	"context"
	"sync"
	"time"

	"github.com/gigbridge/gigbridge/internal/logger"
)

// DefaultSweepInterval is how often the settlement worker runs when no
// interval is configured
const DefaultSweepInterval = time.Minute

// LaunchSettlementWorker launches a goroutine that runs the settlement sweep
// on a fixed interval until the context is cancelled. The sweep runs
// independently of request handling; both sides rely on the optimistic
// transition guards for consistency.
func LaunchSettlementWorker(ctx context.Context, wg *sync.WaitGroup, settlement *Settlement, interval time.Duration) {
	defer wg.Done()
	if interval <= 0 {
		interval = DefaultSweepInterval
	}

	logger.Infof("Settlement worker started (interval: %s)", interval)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Info("Settlement worker received shutdown signal, stopping...")
			return
		case now := <-ticker.C:
			stats := settlement.Sweep(ctx, now)
			if stats.AutoConfirmed > 0 || stats.EntriesReleased > 0 || stats.Errors > 0 {
				logger.InfoWithFields("Settlement sweep finished", map[string]interface{}{
					"auto_confirmed":   stats.AutoConfirmed,
					"entries_released": stats.EntriesReleased,
					"errors":           stats.Errors,
				})
			}
		}
	}
}
