// Package gpt generates digest text with OpenAI chat models.
package gpt

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
)

var ErrEmptyResponse = errors.New("no response from OpenAI")

type Client struct {
	client  *openai.Client
	model   string
	timeout time.Duration
}

func NewClient(apiKey, model string) *Client {
	return NewClientWithConfig(openai.DefaultConfig(apiKey), model)
}

func NewClientWithConfig(cfg openai.ClientConfig, model string) *Client {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &Client{client: openai.NewClientWithConfig(cfg), model: model, timeout: 90 * time.Second}
}

func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", ErrEmptyResponse
	}

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
