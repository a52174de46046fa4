package mail

import (
	"context"
	"errors"
	"time"

	"github.com/deusflow/pabot/internal/cache"
	"github.com/deusflow/pabot/internal/logger"
	"github.com/deusflow/pabot/internal/metrics"
	"github.com/deusflow/pabot/internal/schedule"
)

// SeenTTL is how long a notified message id is remembered; longer than the query window.
const SeenTTL = 48 * time.Hour

// Notifier delivers a text to whoever should receive background alerts.
type Notifier interface {
	Notify(ctx context.Context, text string) error
}

// Watcher polls for unread mail and notifies once per message.
type Watcher struct {
	mailbox  Mailbox
	notifier Notifier
	seen     *cache.Cache[struct{}]
	query    string
}

func NewWatcher(mailbox Mailbox, notifier Notifier, query string) *Watcher {
	if query == "" {
		query = QueryUnread12h
	}
	return &Watcher{
		mailbox:  mailbox,
		notifier: notifier,
		seen:     cache.New[struct{}](),
		query:    query,
	}
}

// Run polls every interval until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context, interval time.Duration) {
	schedule.Every(ctx, "mail", interval, w.Tick)
}

// Tick performs one poll. A mailbox that is not yet authorized is not an error.
func (w *Watcher) Tick(ctx context.Context) error {
	defer w.seen.Cleanup()

	ids, err := w.mailbox.ListIDs(ctx, w.query, MaxListed)
	if errors.Is(err, ErrNotAuthorized) {
		logger.Debug("Mail watcher waiting for authorization")
		return nil
	}
	if err != nil {
		return err
	}

	for _, id := range ids {
		if w.seen.Has(id) {
			continue
		}
		msg, err := w.mailbox.Get(ctx, id)
		if err != nil {
			logger.Warn("Failed to load new message", "id", id, "err", err)
			continue
		}
		if err := w.notifier.Notify(ctx, FormatNotification(msg)); err != nil {
			logger.Warn("Mail notification not delivered", "id", id, "err", err)
		} else {
			metrics.Global.Inc(metrics.MailNotification)
		}
		w.seen.Set(id, struct{}{}, SeenTTL)
	}
	return nil
}
