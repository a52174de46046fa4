// Package digest turns collected articles into one generated summary.
package digest

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/deusflow/pabot/internal/logger"
	"github.com/deusflow/pabot/internal/metrics"
	"github.com/deusflow/pabot/internal/news"
	"github.com/deusflow/pabot/internal/ratelimit"
)

const (
	NoRecentMessage = "За останні 24 години свіжих публікацій не знайдено на наданих джерелах."
	FailureMessage  = "Не вдалося сформувати підсумок."

	DefaultMaxChars = 25000
	DefaultWindow   = 24 * time.Hour
)

const noRecentTemplate = "За останні %s свіжих публікацій не знайдено на наданих джерелах."

const promptTemplate = `Ось добірка найсвіжіших матеріалів (не старших за %s) з категорії '%s'.
Склади стислий дайджест: 10-15 маркованих пунктів із конкретними фактами (дати, цифри, імена).
Після списку додай абзац, що починається з 'Висновок: ', з власною оцінкою подій і прогнозом там, де це доречно.

Матеріали:
%s`

// Generator is a generative text model.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Synthesizer builds the prompt and calls the generator. It never returns an error;
// every failure becomes FailureMessage.
type Synthesizer struct {
	gen      Generator
	budget   *ratelimit.Budget
	maxChars int
}

// NewSynthesizer creates a synthesizer. budget may be nil for unlimited generation.
func NewSynthesizer(gen Generator, budget *ratelimit.Budget, maxChars int) *Synthesizer {
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	return &Synthesizer{gen: gen, budget: budget, maxChars: maxChars}
}

// Summarize builds a digest of articles collected over the default 24 hour window.
func (s *Synthesizer) Summarize(ctx context.Context, category string, articles []news.Article) string {
	return s.SummarizeWithin(ctx, category, articles, DefaultWindow)
}

// SummarizeWithin is Summarize for articles collected over window; the window is
// named in the prompt and in the no-news message.
func (s *Synthesizer) SummarizeWithin(ctx context.Context, category string, articles []news.Article, window time.Duration) string {
	if len(articles) == 0 {
		return NoRecentText(window)
	}

	if err := s.budget.Use(); err != nil {
		logger.Warn("Digest generation skipped", "category", category, "err", err)
		metrics.Global.Inc(metrics.GenerationFailed)
		return FailureMessage
	}

	prompt := BuildPrompt(category, articles, s.maxChars, window)
	resp, err := s.gen.Generate(ctx, prompt)
	if err != nil {
		logger.Error("Digest generation failed", "category", category, "err", err)
		metrics.Global.Inc(metrics.GenerationFailed)
		return FailureMessage
	}

	resp = strings.TrimSpace(resp)
	if resp == "" {
		logger.Warn("Digest generation returned empty text", "category", category)
		metrics.Global.Inc(metrics.GenerationFailed)
		return FailureMessage
	}
	return resp
}

// NoRecentText is the reply for a run that found nothing within window.
func NoRecentText(window time.Duration) string {
	return fmt.Sprintf(noRecentTemplate, hoursPhrase(window))
}

// hoursPhrase renders a window in whole hours in the accusative case:
// 1 годину, 3 години, 24 години, 48 годин.
func hoursPhrase(window time.Duration) string {
	n := int(window.Round(time.Hour) / time.Hour)
	if n <= 0 {
		n = int(DefaultWindow / time.Hour)
	}
	switch {
	case n%10 == 1 && n%100 != 11:
		return fmt.Sprintf("%d годину", n)
	case n%10 >= 2 && n%10 <= 4 && (n%100 < 12 || n%100 > 14):
		return fmt.Sprintf("%d години", n)
	default:
		return fmt.Sprintf("%d годин", n)
	}
}

// BuildPrompt serializes the articles, truncates the material to maxChars runes
// and wraps it in the instruction template.
func BuildPrompt(category string, articles []news.Article, maxChars int, window time.Duration) string {
	blocks := make([]string, 0, len(articles))
	for _, a := range articles {
		blocks = append(blocks, Block(a))
	}
	material := strings.Join(blocks, "\n\n")
	if r := []rune(material); len(r) > maxChars {
		material = string(r[:maxChars])
	}
	return fmt.Sprintf(promptTemplate, hoursPhrase(window), category, material)
}

// Block renders one article for the prompt.
func Block(a news.Article) string {
	published := "unknown"
	if a.PublishedAt != nil {
		published = a.PublishedAt.UTC().Format(time.RFC3339)
	}
	return fmt.Sprintf("- %s\n%s\nОпубліковано: %s\n\n%s", a.Title, a.URL, published, a.Excerpt)
}
