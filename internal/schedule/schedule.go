// Package schedule runs periodic background tasks.
package schedule

import (
	"context"
	"time"

	"github.com/deusflow/pabot/internal/logger"
	"github.com/deusflow/pabot/internal/metrics"
)

// Task is one iteration of a periodic job.
type Task func(ctx context.Context) error

// Every runs task immediately and then once per interval until ctx is done.
// Task errors are logged and do not stop the loop.
func Every(ctx context.Context, name string, interval time.Duration, task Task) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	logger.Info("Background task started", "task", name, "interval", interval)
	for ctx.Err() == nil {
		if err := task(ctx); err != nil && ctx.Err() == nil {
			logger.Warn("Background task failed", "task", name, "err", err)
			metrics.Global.SetError(name + ": " + err.Error())
		}

		select {
		case <-ctx.Done():
		case <-ticker.C:
		}
	}
	logger.Info("Background task stopped", "task", name)
}
