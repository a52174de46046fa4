package bot

import (
	"context"
	"errors"

	"github.com/deusflow/pabot/internal/session"
)

// ErrNoTarget means nobody has talked to the bot yet and no fallback chat is configured.
var ErrNoTarget = errors.New("no notification target")

// Notifier sends background alerts to the session's current chat.
type Notifier struct {
	session   *session.Session
	deliverer Deliverer
}

func NewNotifier(s *session.Session, deliverer Deliverer) *Notifier {
	return &Notifier{session: s, deliverer: deliverer}
}

func (n *Notifier) Notify(ctx context.Context, text string) error {
	chatID, ok := n.session.Target()
	if !ok {
		return ErrNoTarget
	}
	n.deliverer.Deliver(ctx, chatID, text)
	return nil
}
