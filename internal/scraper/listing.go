package scraper

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/deusflow/pabot/internal/anycrawl"
	"github.com/deusflow/pabot/internal/logger"
	"github.com/deusflow/pabot/internal/news"
)

// Scraper renders a URL through a hosted scrape provider.
type Scraper interface {
	Scrape(ctx context.Context, req anycrawl.ScrapeRequest) (*anycrawl.ScrapeData, error)
}

// FeedParser is satisfied by *gofeed.Parser.
type FeedParser interface {
	ParseURLWithContext(feedURL string, ctx context.Context) (*gofeed.Feed, error)
}

// ListingFetcher renders listing pages, trying each engine in order.
type ListingFetcher struct {
	scraper Scraper
	feeds   FeedParser
	engines []string
	timeout time.Duration
}

func NewListingFetcher(scraper Scraper, feeds FeedParser, engines []string, timeout time.Duration) *ListingFetcher {
	if len(engines) == 0 {
		engines = []string{anycrawl.EngineCheerio, anycrawl.EnginePlaywright}
	}
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	if feeds == nil {
		feeds = gofeed.NewParser()
	}
	return &ListingFetcher{scraper: scraper, feeds: feeds, engines: engines, timeout: timeout}
}

// FetchListing returns markdown-like text for the source, or "" when every attempt failed.
func (f *ListingFetcher) FetchListing(ctx context.Context, src news.Source) string {
	if src.Feed {
		return f.fetchFeed(ctx, src.URL)
	}

	for _, engine := range f.engines {
		text, err := f.scrapeWith(ctx, src.URL, engine)
		if err != nil {
			logger.Warn("Listing attempt failed", "url", src.URL, "engine", engine, "err", err)
			continue
		}
		logger.Debug("Listing fetched", "url", src.URL, "engine", engine, "chars", len(text))
		return text
	}

	logger.Warn("All engines failed for listing", "url", src.URL, "engines", f.engines)
	return ""
}

func (f *ListingFetcher) scrapeWith(ctx context.Context, url, engine string) (string, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	data, err := f.scraper.Scrape(attemptCtx, anycrawl.ScrapeRequest{
		URL:     url,
		Engine:  engine,
		Formats: []string{anycrawl.FormatMarkdown},
	})
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(data.Markdown) == "" {
		return "", fmt.Errorf("empty markdown")
	}
	return data.Markdown, nil
}

// fetchFeed renders feed items as markdown links so the regular extractor can read them.
func (f *ListingFetcher) fetchFeed(ctx context.Context, url string) string {
	feedCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	feed, err := f.feeds.ParseURLWithContext(url, feedCtx)
	if err != nil {
		logger.Warn("Feed parse failed", "url", url, "err", err)
		return ""
	}

	var b strings.Builder
	for _, item := range feed.Items {
		if item == nil || item.Link == "" {
			continue
		}
		title := strings.TrimSpace(item.Title)
		if title == "" {
			title = item.Link
		}
		title = strings.NewReplacer("[", "(", "]", ")").Replace(title)
		fmt.Fprintf(&b, "[%s](%s)\n", title, item.Link)
	}
	logger.Debug("Feed fetched", "url", url, "items", len(feed.Items))
	return b.String()
}
