// Package mail lists Gmail messages and notifies about new unread ones.
package mail

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/deusflow/pabot/internal/logger"
)

const (
	QueryUnread12h = "label:inbox is:unread newer_than:12h"
	QueryInbox12h  = "label:inbox newer_than:12h"

	MaxListed = 10
	NoSubject = "(без теми)"
)

// ErrNotAuthorized means there is no OAuth token yet; the user has to authorize first.
var ErrNotAuthorized = errors.New("gmail: not authorized")

// Message is the summary of one mail shown to the user.
type Message struct {
	ID      string
	Subject string
	From    string
	Date    string
	Snippet string
}

// Mailbox is the mailbox collaborator.
type Mailbox interface {
	ListIDs(ctx context.Context, query string, max int64) ([]string, error)
	Get(ctx context.Context, id string) (Message, error)
}

// Fetch lists messages matching query and loads their details. Messages that fail
// to load are skipped.
func Fetch(ctx context.Context, mb Mailbox, query string, max int64) ([]Message, error) {
	ids, err := mb.ListIDs(ctx, query, max)
	if err != nil {
		return nil, err
	}

	msgs := make([]Message, 0, len(ids))
	for _, id := range ids {
		msg, err := mb.Get(ctx, id)
		if err != nil {
			logger.Warn("Failed to load message", "id", id, "err", err)
			continue
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

// FormatList renders messages for a chat reply.
func FormatList(msgs []Message) string {
	var b strings.Builder
	for i, m := range msgs {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "• %s\nВід: %s\nДата: %s\n%s\n", subjectOrDefault(m.Subject), m.From, m.Date, m.Snippet)
	}
	return b.String()
}

// FormatNotification renders the new-mail alert.
func FormatNotification(m Message) string {
	return fmt.Sprintf("Новий лист!\nВід: %s\nТема: %s\n%s", m.From, subjectOrDefault(m.Subject), m.Snippet)
}

func subjectOrDefault(s string) string {
	if strings.TrimSpace(s) == "" {
		return NoSubject
	}
	return s
}
