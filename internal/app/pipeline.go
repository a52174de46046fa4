package app

import (
	"context"
	"fmt"
	"time"

	"github.com/mmcdole/gofeed"
	"github.com/sashabaranov/go-openai"

	"github.com/deusflow/pabot/internal/anycrawl"
	"github.com/deusflow/pabot/internal/config"
	"github.com/deusflow/pabot/internal/digest"
	"github.com/deusflow/pabot/internal/gemini"
	"github.com/deusflow/pabot/internal/gpt"
	"github.com/deusflow/pabot/internal/logger"
	"github.com/deusflow/pabot/internal/news"
	"github.com/deusflow/pabot/internal/ratelimit"
	"github.com/deusflow/pabot/internal/scraper"
)

// Pipeline is the wired news pipeline.
type Pipeline struct {
	Catalog *news.Catalog
	Service *news.Service
	Budget  *ratelimit.Budget

	closeFn func()
}

func (p *Pipeline) Close() {
	if p.closeFn != nil {
		p.closeFn()
	}
}

// BuildPipeline loads the categories and connects scraper, date resolver and generator.
func BuildPipeline(ctx context.Context, cfg *config.Config) (*Pipeline, error) {
	categories, err := news.LoadCategories(cfg.SourcesConfigPath)
	if err != nil {
		return nil, fmt.Errorf("load categories: %w", err)
	}
	logger.Info("Categories loaded", "path", cfg.SourcesConfigPath, "count", len(categories))

	gen, closeGen, err := newGenerator(ctx, cfg)
	if err != nil {
		return nil, err
	}

	crawler := anycrawl.NewClient(cfg.AnyCrawlBaseURL, cfg.AnyCrawlAPIKey, cfg.RequestTimeout)
	listings := scraper.NewListingFetcher(crawler, gofeed.NewParser(), cfg.ListingEngines, cfg.RequestTimeout)
	articles := scraper.NewArticleFetcher(crawler, cfg.ArticleEngine, cfg.RequestTimeout, cfg.ExcerptChars)
	aggregator := news.NewAggregator(listings, scraper.ExtractLinks, articles, news.Limits{
		LinksPerListing:    cfg.LinksPerListing,
		ArticlesPerListing: cfg.ArticlesPerListing,
		MaxArticles:        cfg.MaxDigestArticles,
	})

	budget := ratelimit.NewBudget(cfg.LLMProvider, cfg.MaxGeminiRequests, 24*time.Hour)
	synth := digest.NewSynthesizer(gen, budget, cfg.PromptChars)

	return &Pipeline{
		Catalog: news.NewCatalog(categories),
		Service: news.NewService(aggregator, synth),
		Budget:  budget,
		closeFn: closeGen,
	}, nil
}

func newGenerator(ctx context.Context, cfg *config.Config) (digest.Generator, func(), error) {
	switch cfg.LLMProvider {
	case config.ProviderOpenAI:
		oc := openai.DefaultConfig(cfg.OpenAIAPIKey)
		if cfg.OpenAIBaseURL != "" {
			oc.BaseURL = cfg.OpenAIBaseURL
		}
		logger.Info("Using OpenAI generator", "model", cfg.OpenAIModel)
		return gpt.NewClientWithConfig(oc, cfg.OpenAIModel), func() {}, nil
	default:
		client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Using Gemini generator", "model", cfg.GeminiModel)
		return client, client.Close, nil
	}
}
