package news

import (
	"context"
	"time"

	"github.com/deusflow/pabot/internal/logger"
	"github.com/deusflow/pabot/internal/metrics"
)

// ListingFetcher returns the rendered text of a listing page, or "" when nothing could be fetched.
type ListingFetcher interface {
	FetchListing(ctx context.Context, src Source) string
}

// ArticleFetcher fetches one article and reports whether it is recent enough to keep.
type ArticleFetcher interface {
	FetchIfRecent(ctx context.Context, url string, window time.Duration) (*Article, bool)
}

// LinkExtractor turns rendered listing text into candidate links.
type LinkExtractor func(text string) []CandidateLink

type Limits struct {
	LinksPerListing    int // candidate links examined per listing page
	ArticlesPerListing int // qualifying articles kept per listing page
	MaxArticles        int // qualifying articles kept per run
}

var DefaultLimits = Limits{LinksPerListing: 20, ArticlesPerListing: 5, MaxArticles: 10}

type Aggregator struct {
	listings ListingFetcher
	extract  LinkExtractor
	articles ArticleFetcher
	limits   Limits
}

func NewAggregator(listings ListingFetcher, extract LinkExtractor, articles ArticleFetcher, limits Limits) *Aggregator {
	if limits.LinksPerListing <= 0 {
		limits.LinksPerListing = DefaultLimits.LinksPerListing
	}
	if limits.ArticlesPerListing <= 0 {
		limits.ArticlesPerListing = DefaultLimits.ArticlesPerListing
	}
	if limits.MaxArticles <= 0 {
		limits.MaxArticles = DefaultLimits.MaxArticles
	}
	return &Aggregator{listings: listings, extract: extract, articles: articles, limits: limits}
}

// Collect walks the sources in order and returns the recent articles, in source order
// and then discovery order. An empty result is a normal outcome.
func (a *Aggregator) Collect(ctx context.Context, category string, sources []Source, window time.Duration) []Article {
	var all []Article

	for _, src := range sources {
		if len(all) >= a.limits.MaxArticles {
			break
		}
		if ctx.Err() != nil {
			logger.Warn("Collect cancelled", "category", category, "err", ctx.Err())
			break
		}

		found := a.collectSource(ctx, src, window, a.limits.MaxArticles-len(all))
		logger.Info("Source collected", "category", category, "url", src.URL, "articles", len(found))
		all = append(all, found...)
	}

	return all
}

// collectSource fetches one listing and keeps at most ArticlesPerListing (and at most remaining) articles.
func (a *Aggregator) collectSource(ctx context.Context, src Source, window time.Duration, remaining int) []Article {
	text := a.listings.FetchListing(ctx, src)
	if text == "" {
		metrics.Global.Inc(metrics.ListingFailed)
		return nil
	}
	metrics.Global.Inc(metrics.ListingFetched)

	links := a.extract(text)
	if len(links) > a.limits.LinksPerListing {
		links = links[:a.limits.LinksPerListing]
	}

	want := a.limits.ArticlesPerListing
	if remaining < want {
		want = remaining
	}

	var results []Article
	for _, link := range links {
		if ctx.Err() != nil {
			break
		}
		art, ok := a.articles.FetchIfRecent(ctx, link.URL, window)
		if !ok {
			continue
		}
		results = append(results, *art)
		if len(results) >= want {
			break
		}
	}
	return results
}
