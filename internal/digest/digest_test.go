package digest

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deusflow/pabot/internal/news"
	"github.com/deusflow/pabot/internal/ratelimit"
)

type fakeGenerator struct {
	resp    string
	err     error
	prompts []string
}

func (f *fakeGenerator) Generate(_ context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	return f.resp, f.err
}

func sampleArticles() []news.Article {
	ts := time.Date(2024, 1, 2, 9, 30, 0, 0, time.UTC)
	return []news.Article{
		{URL: "https://news.example/a", Title: "First", PublishedAt: &ts, Excerpt: "Body A"},
		{URL: "https://news.example/b", Title: "Second", Excerpt: "Body B"},
	}
}

func TestSummarizeEmptySkipsModel(t *testing.T) {
	gen := &fakeGenerator{resp: "should not be used"}
	s := NewSynthesizer(gen, nil, 0)

	got := s.Summarize(context.Background(), "ai_news", nil)

	assert.Equal(t, NoRecentMessage, got)
	assert.Len(t, gen.prompts, 0)
}

func TestSummarizeWithinNamesTheWindow(t *testing.T) {
	gen := &fakeGenerator{resp: "digest"}
	s := NewSynthesizer(gen, nil, 0)

	assert.Equal(t, NoRecentMessage, s.SummarizeWithin(context.Background(), "ai_news", nil, 24*time.Hour))
	assert.Equal(t, "За останні 48 годин свіжих публікацій не знайдено на наданих джерелах.",
		s.SummarizeWithin(context.Background(), "ai_news", nil, 48*time.Hour))
	assert.Empty(t, gen.prompts)

	s.SummarizeWithin(context.Background(), "ai_news", sampleArticles(), 72*time.Hour)
	require.Len(t, gen.prompts, 1)
	assert.Contains(t, gen.prompts[0], "не старших за 72 години")
}

func TestNoRecentTextPlurals(t *testing.T) {
	tests := []struct {
		window time.Duration
		want   string
	}{
		{time.Hour, "1 годину"},
		{3 * time.Hour, "3 години"},
		{12 * time.Hour, "12 годин"},
		{21 * time.Hour, "21 годину"},
		{48 * time.Hour, "48 годин"},
		{0, "24 години"},
	}
	for _, tt := range tests {
		assert.Equal(t, "За останні "+tt.want+" свіжих публікацій не знайдено на наданих джерелах.", NoRecentText(tt.window))
	}
}

func TestSummarizeReturnsTrimmedResponse(t *testing.T) {
	gen := &fakeGenerator{resp: "\n• point\nВисновок: ok  \n"}
	s := NewSynthesizer(gen, nil, 0)

	got := s.Summarize(context.Background(), "ai_news", sampleArticles())

	assert.Equal(t, "• point\nВисновок: ok", got)
	require.Len(t, gen.prompts, 1)
	prompt := gen.prompts[0]
	assert.Contains(t, prompt, "'ai_news'")
	assert.Contains(t, prompt, "не старших за 24 години")
	assert.Contains(t, prompt, "10-15")
	assert.Contains(t, prompt, "Висновок")
	assert.Contains(t, prompt, "- First\nhttps://news.example/a\nОпубліковано: 2024-01-02T09:30:00Z\n\nBody A\n\n- Second")
	assert.Contains(t, prompt, "Опубліковано: unknown")
}

func TestSummarizeFailures(t *testing.T) {
	tests := []struct {
		name string
		gen  *fakeGenerator
	}{
		{name: "model error", gen: &fakeGenerator{err: errors.New("quota")}},
		{name: "blank response", gen: &fakeGenerator{resp: "  \n\t"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSynthesizer(tt.gen, nil, 0)
			assert.Equal(t, FailureMessage, s.Summarize(context.Background(), "it_news", sampleArticles()))
			assert.Len(t, tt.gen.prompts, 1)
		})
	}
}

func TestSummarizeBudgetExhausted(t *testing.T) {
	gen := &fakeGenerator{resp: "digest"}
	budget := ratelimit.NewBudget("gemini", 1, time.Hour)
	s := NewSynthesizer(gen, budget, 0)

	assert.Equal(t, "digest", s.Summarize(context.Background(), "it_news", sampleArticles()))
	assert.Equal(t, FailureMessage, s.Summarize(context.Background(), "it_news", sampleArticles()))
	assert.Len(t, gen.prompts, 1)
}

func TestBuildPromptTruncatesMaterial(t *testing.T) {
	articles := []news.Article{{URL: "https://news.example/a", Title: "T", Excerpt: strings.Repeat("я", 30000)}}

	prompt := BuildPrompt("world_news", articles, 25000, DefaultWindow)

	_, material, found := strings.Cut(prompt, "Матеріали:\n")
	require.True(t, found)
	assert.Len(t, []rune(material), 25000)
}
