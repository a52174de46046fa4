// Package pubdate infers an article's publication time from its HTML and plain text.
//
// Signals are tried through an ordered list of strategies; each strategy yields
// candidate strings and the first candidate that parses wins.
package pubdate

import (
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
)

// Document is one fetched article. HTML and Text may each be empty.
type Document struct {
	URL  string
	HTML string
	Text string

	domOnce sync.Once
	dom     *goquery.Document

	readOnce sync.Once
	article  *readability.Article
}

// DOM returns the parsed HTML, or nil when there is no usable markup.
func (d *Document) DOM() *goquery.Document {
	d.domOnce.Do(func() {
		if strings.TrimSpace(d.HTML) == "" {
			return
		}
		doc, err := goquery.NewDocumentFromReader(strings.NewReader(d.HTML))
		if err == nil {
			d.dom = doc
		}
	})
	return d.dom
}

// Readable returns go-readability's view of the HTML, or nil if it cannot be parsed.
func (d *Document) Readable() *readability.Article {
	d.readOnce.Do(func() {
		if strings.TrimSpace(d.HTML) == "" {
			return
		}
		pageURL, _ := url.Parse(d.URL)
		art, err := readability.FromReader(strings.NewReader(d.HTML), pageURL)
		if err == nil {
			d.article = &art
		}
	})
	return d.article
}

// Strategy produces candidate date strings from one kind of signal.
type Strategy interface {
	Name() string
	Candidates(doc *Document) []string
}

// Resolver walks its strategies in order.
type Resolver struct {
	strategies []Strategy
	now        func() time.Time
}

// DefaultStrategies is the fallback chain used for articles.
func DefaultStrategies() []Strategy {
	return []Strategy{
		TimeAttr{},
		TimeText{},
		MetaTags{Selectors: DefaultMetaSelectors},
		TextScan{Limit: 2000},
		ReadabilityMeta{},
	}
}

func NewResolver(now func() time.Time, strategies ...Strategy) *Resolver {
	if now == nil {
		now = time.Now
	}
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	return &Resolver{strategies: strategies, now: now}
}

// Resolve returns the first parseable candidate and the strategy that produced it.
func (r *Resolver) Resolve(doc *Document) (time.Time, string, bool) {
	now := r.now()
	for _, s := range r.strategies {
		for _, c := range s.Candidates(doc) {
			if t, err := Parse(c, now); err == nil {
				return t, s.Name(), true
			}
		}
	}
	return time.Time{}, "", false
}
