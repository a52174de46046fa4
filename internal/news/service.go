package news

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/deusflow/pabot/internal/logger"
	"github.com/deusflow/pabot/internal/metrics"
)

// Summarizer turns articles collected over window into the digest text. It never
// fails; problems surface as a fallback message.
type Summarizer interface {
	SummarizeWithin(ctx context.Context, category string, articles []Article, window time.Duration) string
}

// Service runs the full collect-and-summarize pipeline for one category.
type Service struct {
	aggregator *Aggregator
	summarizer Summarizer
}

func NewService(aggregator *Aggregator, summarizer Summarizer) *Service {
	return &Service{aggregator: aggregator, summarizer: summarizer}
}

// RunCategoryDigest collects recent articles for the category and summarizes them.
func (s *Service) RunCategoryDigest(ctx context.Context, category Category, window time.Duration) Digest {
	startTime := time.Now()
	runID := uuid.NewString()
	log := logger.With("run_id", runID, "category", category.ID)

	defer func() {
		metrics.Global.RecordProcessingTime(time.Since(startTime))
		metrics.Global.SetLastRun()
	}()

	log.Info("Digest run started", "sources", len(category.Sources), "window", window)

	articles := s.aggregator.Collect(ctx, category.ID, category.Sources, window)
	if len(articles) == 0 {
		metrics.Global.Inc(metrics.DigestEmpty)
	}

	body := s.summarizer.SummarizeWithin(ctx, category.ID, articles, window)
	metrics.Global.Inc(metrics.DigestBuilt)

	log.Info("Digest run finished", "articles", len(articles), "chars", len([]rune(body)), "took", time.Since(startTime).Round(time.Millisecond))

	return Digest{
		Category: category.ID,
		Body:     body,
		Articles: len(articles),
		RunID:    runID,
	}
}
