package sheets

import (
	"context"
	"slices"
	"strings"
	"time"

	"github.com/deusflow/pabot/internal/logger"
	"github.com/deusflow/pabot/internal/metrics"
	"github.com/deusflow/pabot/internal/schedule"
)

// Notifier delivers a text to whoever should receive background alerts.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// Watcher compares the sheet with its last snapshot and reports new rows.
// Tick is not safe for concurrent use; Run calls it from one goroutine.
type Watcher struct {
	table    Table
	notifier Notifier
	snapshot [][]string
	primed   bool
}

func NewWatcher(table Table, notifier Notifier) *Watcher {
	return &Watcher{table: table, notifier: notifier}
}

func (w *Watcher) Run(ctx context.Context, interval time.Duration) {
	schedule.Every(ctx, "sheets", interval, w.Tick)
}

// Tick reads the sheet once. The first successful read only records the snapshot.
func (w *Watcher) Tick(ctx context.Context) error {
	rows, err := w.table.ReadAll(ctx)
	if err != nil {
		return err
	}

	if !w.primed {
		w.snapshot, w.primed = rows, true
		logger.Debug("Sheet snapshot taken", "rows", len(rows))
		return nil
	}
	if len(rows) == 0 || equalRows(rows, w.snapshot) {
		return nil
	}

	for _, r := range DiffRows(w.snapshot, rows) {
		if err := w.notifier.Notify(ctx, "У список додано: "+itemLabel(r)); err != nil {
			logger.Warn("Sheet notification not delivered", "err", err)
			continue
		}
		metrics.Global.Inc(metrics.SheetsNotification)
	}
	w.snapshot = rows
	return nil
}

// DiffRows returns the rows of curr that are new relative to prev. Appended rows are
// taken positionally; otherwise any row not present in prev counts as new.
func DiffRows(prev, curr [][]string) [][]string {
	if len(curr) > len(prev) {
		return curr[len(prev):]
	}

	old := make(map[string]struct{}, len(prev))
	for _, r := range prev {
		old[rowKey(r)] = struct{}{}
	}
	var added [][]string
	for _, r := range curr {
		if _, ok := old[rowKey(r)]; !ok {
			added = append(added, r)
		}
	}
	return added
}

func rowKey(r []string) string {
	return strings.Join(r, "\x1f")
}

func equalRows(a, b [][]string) bool {
	return slices.EqualFunc(a, b, func(x, y []string) bool { return slices.Equal(x, y) })
}
