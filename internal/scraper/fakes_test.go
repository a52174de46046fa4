package scraper

import (
	"context"
	"errors"

	"github.com/deusflow/pabot/internal/anycrawl"
)

type scrapeResult struct {
	data *anycrawl.ScrapeData
	err  error
}

// fakeScraper answers by "engine url" key; unknown keys fail.
type fakeScraper struct {
	results map[string]scrapeResult
	calls   []anycrawl.ScrapeRequest
}

func (f *fakeScraper) Scrape(ctx context.Context, req anycrawl.ScrapeRequest) (*anycrawl.ScrapeData, error) {
	f.calls = append(f.calls, req)
	if _, ok := ctx.Deadline(); !ok {
		return nil, errors.New("scrape called without a deadline")
	}
	r, ok := f.results[req.Engine+" "+req.URL]
	if !ok {
		return nil, errors.New("no such page")
	}
	return r.data, r.err
}
