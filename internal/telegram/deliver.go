package telegram

import (
	"context"
	"time"

	"github.com/deusflow/pabot/internal/logger"
)

const (
	MaxMessageRunes = 4096
	DefaultPause    = time.Second
)

// TextSender sends one message to a chat.
type TextSender interface {
	SendText(ctx context.Context, chatID int64, text string) error
}

// Deliverer splits long texts into message-sized chunks and sends them in order.
type Deliverer struct {
	sender TextSender
	size   int
	pause  time.Duration
	sleep  func(ctx context.Context, d time.Duration) error
}

func NewDeliverer(sender TextSender, size int, pause time.Duration) *Deliverer {
	if size <= 0 || size > MaxMessageRunes {
		size = MaxMessageRunes
	}
	if pause < 0 {
		pause = DefaultPause
	}
	return &Deliverer{sender: sender, size: size, pause: pause, sleep: sleepContext}
}

// WithSleep replaces the pause function used between chunks.
func (d *Deliverer) WithSleep(sleep func(ctx context.Context, d time.Duration) error) *Deliverer {
	d.sleep = sleep
	return d
}

// Deliver sends text to the chat. A failed chunk is logged and the rest still go out;
// cancellation stops delivery between chunks.
func (d *Deliverer) Deliver(ctx context.Context, chatID int64, text string) {
	if text == "" {
		return
	}

	chunks := Chunk(text, d.size)
	for i, chunk := range chunks {
		if i > 0 {
			if err := d.sleep(ctx, d.pause); err != nil {
				logger.Warn("Delivery interrupted", "chat_id", chatID, "sent", i, "total", len(chunks), "err", err)
				return
			}
		}
		if err := d.sender.SendText(ctx, chatID, chunk); err != nil {
			logger.Error("Failed to send chunk", "chat_id", chatID, "chunk", i+1, "total", len(chunks), "err", err)
		}
	}
}

// Chunk splits text into consecutive slices of at most size runes.
func Chunk(text string, size int) []string {
	runes := []rune(text)
	if len(runes) <= size {
		return []string{text}
	}

	chunks := make([]string, 0, (len(runes)+size-1)/size)
	for start := 0; start < len(runes); start += size {
		end := start + size
		if end > len(runes) {
			end = len(runes)
		}
		chunks = append(chunks, string(runes[start:end]))
	}
	return chunks
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
