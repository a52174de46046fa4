package scraper

import (
	"context"
	"strings"
	"time"

	"github.com/deusflow/pabot/internal/anycrawl"
	"github.com/deusflow/pabot/internal/logger"
	"github.com/deusflow/pabot/internal/metrics"
	"github.com/deusflow/pabot/internal/news"
	"github.com/deusflow/pabot/internal/pubdate"
)

const maxTitleRunes = 160

// ArticleFetcher fetches single articles and applies the recency filter.
type ArticleFetcher struct {
	scraper      Scraper
	engine       string
	timeout      time.Duration
	excerptChars int
	now          func() time.Time
	resolver     *pubdate.Resolver
}

func NewArticleFetcher(scraper Scraper, engine string, timeout time.Duration, excerptChars int) *ArticleFetcher {
	if engine == "" {
		engine = anycrawl.EngineCheerio
	}
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	if excerptChars <= 0 {
		excerptChars = 4000
	}
	f := &ArticleFetcher{scraper: scraper, engine: engine, timeout: timeout, excerptChars: excerptChars}
	return f.WithClock(time.Now)
}

// WithClock replaces the time source used for the recency check and relative dates.
func (f *ArticleFetcher) WithClock(now func() time.Time) *ArticleFetcher {
	f.now = now
	f.resolver = pubdate.NewResolver(now)
	return f
}

// FetchIfRecent returns the article when its publication time is within window of
// now. Articles with no resolvable date are kept. Fetch failures are not errors;
// they simply yield no article.
func (f *ArticleFetcher) FetchIfRecent(ctx context.Context, url string, window time.Duration) (*news.Article, bool) {
	data, err := f.fetch(ctx, url)
	if err != nil {
		logger.Debug("Article fetch failed", "url", url, "err", err)
		metrics.Global.Inc(metrics.ArticleFailed)
		return nil, false
	}

	if strings.TrimSpace(data.HTML) == "" && strings.TrimSpace(data.Markdown) == "" {
		logger.Debug("Article is empty", "url", url)
		metrics.Global.Inc(metrics.ArticleFailed)
		return nil, false
	}

	doc := &pubdate.Document{URL: url, HTML: data.HTML, Text: data.Markdown}
	if strings.TrimSpace(doc.Text) == "" {
		doc.Text = textFromHTML(doc)
	}

	var publishedAt *time.Time
	if ts, ok := f.resolve(doc); ok {
		if age := f.now().UTC().Sub(ts); age > window {
			logger.Debug("Article is stale", "url", url, "published_at", ts, "age", age)
			metrics.Global.Inc(metrics.ArticleStale)
			return nil, false
		}
		publishedAt = &ts
	}

	metrics.Global.Inc(metrics.ArticleFetched)
	return &news.Article{
		URL:         url,
		Title:       titleFrom(doc.Text, url),
		PublishedAt: publishedAt,
		Excerpt:     truncateRunes(doc.Text, f.excerptChars),
	}, true
}

func (f *ArticleFetcher) fetch(ctx context.Context, url string) (*anycrawl.ScrapeData, error) {
	attemptCtx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	return f.scraper.Scrape(attemptCtx, anycrawl.ScrapeRequest{
		URL:     url,
		Engine:  f.engine,
		Formats: []string{anycrawl.FormatHTML, anycrawl.FormatMarkdown},
	})
}

// resolve never panics; a failing resolver counts as "no date".
func (f *ArticleFetcher) resolve(doc *pubdate.Document) (ts time.Time, ok bool) {
	defer func() {
		if r := recover(); r != nil {
			logger.Warn("Date resolution failed", "url", doc.URL, "panic", r)
			ts, ok = time.Time{}, false
		}
	}()

	var strategy string
	ts, strategy, ok = f.resolver.Resolve(doc)
	if ok {
		logger.Debug("Publication date resolved", "url", doc.URL, "strategy", strategy, "published_at", ts)
	}
	return ts, ok
}

// textFromHTML derives a plain-text body when the provider returned markup only.
// The headline goes on the first line.
func textFromHTML(doc *pubdate.Document) string {
	if art := doc.Readable(); art != nil && strings.TrimSpace(art.TextContent) != "" {
		return joinTitle(art.Title, art.TextContent)
	}
	if dom := doc.DOM(); dom != nil {
		return joinTitle(headline(dom), paragraphText(dom))
	}
	return ""
}

func joinTitle(title, body string) string {
	title = strings.TrimSpace(title)
	body = strings.TrimSpace(body)
	if title == "" {
		return body
	}
	return title + "\n\n" + body
}

// titleFrom uses the first line of the text when it is short enough, otherwise the URL.
func titleFrom(text, url string) string {
	first, _, _ := strings.Cut(strings.TrimSpace(text), "\n")
	first = strings.TrimSpace(first)
	if first == "" || len([]rune(first)) >= maxTitleRunes {
		return url
	}
	if title := strings.TrimLeft(first, "# "); title != "" {
		return title
	}
	return url
}

func truncateRunes(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit])
}
