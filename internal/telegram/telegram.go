// Package telegram sends messages through the Bot API with retries and splits long texts.
package telegram

import (
	"context"
	"errors"
	"net/http"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/deusflow/pabot/internal/logger"
	"github.com/deusflow/pabot/internal/metrics"
	"github.com/deusflow/pabot/internal/retry"
)

// API is the subset of *tgbotapi.BotAPI used for outgoing calls.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

type Client struct {
	api   API
	retry retry.RetryConfig
}

func NewClient(api API) *Client {
	return &Client{api: api, retry: retry.Telegram}
}

// WithRetryConfig replaces the send retry policy.
func (c *Client) WithRetryConfig(cfg retry.RetryConfig) *Client {
	c.retry = cfg
	return c
}

// SendText sends plain text to a chat.
func (c *Client) SendText(ctx context.Context, chatID int64, text string) error {
	return c.Send(ctx, tgbotapi.NewMessage(chatID, text))
}

// Send delivers any message config, retrying transient failures.
func (c *Client) Send(ctx context.Context, msg tgbotapi.Chattable) error {
	attempt := 0
	err := retry.WithRetry(ctx, c.retry, func(ctx context.Context) error {
		attempt++
		_, err := c.api.Send(msg)
		if err == nil {
			return nil
		}
		logger.Warn("Telegram send failed", "attempt", attempt, "err", err)
		if isPermanent(err) {
			return retry.Permanent(err)
		}
		return err
	})
	if err != nil {
		metrics.Global.Inc(metrics.TelegramFailed)
		return err
	}
	metrics.Global.Inc(metrics.TelegramSent)
	return nil
}

// AnswerCallback acknowledges an inline button press, optionally with a toast text.
func (c *Client) AnswerCallback(callbackID, text string) error {
	_, err := c.api.Request(tgbotapi.NewCallback(callbackID, text))
	return err
}

// SetCommands registers the bot's command menu.
func (c *Client) SetCommands(commands ...tgbotapi.BotCommand) error {
	_, err := c.api.Request(tgbotapi.NewSetMyCommands(commands...))
	return err
}

// isPermanent treats client errors as final, except rate limiting.
func isPermanent(err error) bool {
	var apiErr *tgbotapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Code >= 400 && apiErr.Code < 500 && apiErr.Code != http.StatusTooManyRequests
}
