// Package session holds the chat that background notifications go to.
package session

import "sync/atomic"

// Session is safe for concurrent use. The zero value has no target.
type Session struct {
	target   atomic.Int64
	fallback int64
}

// New returns a session that falls back to the given chat until a user interacts.
// A fallback of 0 means none.
func New(fallback int64) *Session {
	return &Session{fallback: fallback}
}

// SetTarget records the chat that last talked to the bot.
func (s *Session) SetTarget(chatID int64) {
	s.target.Store(chatID)
}

// Target returns the notification chat and whether one is known.
func (s *Session) Target() (int64, bool) {
	if id := s.target.Load(); id != 0 {
		return id, true
	}
	if s.fallback != 0 {
		return s.fallback, true
	}
	return 0, false
}
