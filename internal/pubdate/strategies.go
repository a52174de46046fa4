package pubdate

import (
	"regexp"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
)

// DefaultMetaSelectors are the metadata tags checked for a publication date, in order.
var DefaultMetaSelectors = []string{
	`meta[property="article:published_time"]`,
	`meta[name="article:published_time"]`,
	`meta[name="pubdate"]`,
	`meta[name="date"]`,
}

// TimeAttr reads machine-readable datetime attributes of <time> elements.
type TimeAttr struct{}

func (TimeAttr) Name() string { return "time_datetime" }

func (TimeAttr) Candidates(doc *Document) []string {
	dom := doc.DOM()
	if dom == nil {
		return nil
	}
	var out []string
	dom.Find("time").Each(func(_ int, s *goquery.Selection) {
		if v, ok := s.Attr("datetime"); ok && strings.TrimSpace(v) != "" {
			out = append(out, strings.TrimSpace(v))
		}
	})
	return out
}

// TimeText reads the visible text of <time> elements.
type TimeText struct{}

func (TimeText) Name() string { return "time_text" }

func (TimeText) Candidates(doc *Document) []string {
	dom := doc.DOM()
	if dom == nil {
		return nil
	}
	var out []string
	dom.Find("time").Each(func(_ int, s *goquery.Selection) {
		if v := strings.TrimSpace(s.Text()); v != "" {
			out = append(out, v)
		}
	})
	return out
}

// MetaTags reads the content attribute of the first element matching each selector.
type MetaTags struct {
	Selectors []string
}

func (MetaTags) Name() string { return "meta" }

func (m MetaTags) Candidates(doc *Document) []string {
	dom := doc.DOM()
	if dom == nil {
		return nil
	}
	var out []string
	for _, sel := range m.Selectors {
		if v, ok := dom.Find(sel).First().Attr("content"); ok && strings.TrimSpace(v) != "" {
			out = append(out, strings.TrimSpace(v))
		}
	}
	return out
}

var datePhrasePatterns = []*regexp.Regexp{
	// 2024-01-02, 2024-01-02T15:04:05Z, 2024-01-02 15:04 +02:00
	regexp.MustCompile(`\b\d{4}-\d{2}-\d{2}(?:[T ]\d{2}:\d{2}(?::\d{2}(?:\.\d+)?)?(?:Z|\s?[+-]\d{2}:?\d{2})?)?\b`),
	// 2024/01/02
	regexp.MustCompile(`\b\d{4}/\d{2}/\d{2}\b`),
	// January 2, 2024 / Jan 2 2024
	regexp.MustCompile(`(?i)\b(?:jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec)[a-z]*\.?\s+\d{1,2},?\s+\d{4}\b`),
	// 2 January 2024
	regexp.MustCompile(`(?i)\b\d{1,2}\s+(?:jan|feb|mar|apr|may|jun|jul|aug|sep|sept|oct|nov|dec)[a-z]*\.?\s+\d{4}\b`),
	// 3 hours ago
	relativePattern,
	// 12 жовтня 2023, 14:30
	ukDatePattern,
	// 3 години тому
	ukRelativePattern,
}

// TextScan looks for date-like phrases near the top of the plain-text body.
// Matches are returned in the order they appear.
type TextScan struct {
	Limit int // runes of text to scan
}

func (TextScan) Name() string { return "text" }

func (t TextScan) Candidates(doc *Document) []string {
	text := doc.Text
	if text == "" {
		return nil
	}
	if t.Limit > 0 {
		if r := []rune(text); len(r) > t.Limit {
			text = string(r[:t.Limit])
		}
	}

	type match struct {
		pos int
		s   string
	}
	var matches []match
	for _, re := range datePhrasePatterns {
		for _, loc := range re.FindAllStringIndex(text, -1) {
			matches = append(matches, match{pos: loc[0], s: text[loc[0]:loc[1]]})
		}
	}
	// insertion sort keeps the earliest phrase first; lists are tiny
	for i := 1; i < len(matches); i++ {
		for j := i; j > 0 && matches[j].pos < matches[j-1].pos; j-- {
			matches[j], matches[j-1] = matches[j-1], matches[j]
		}
	}

	out := make([]string, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.s)
	}
	return out
}

// ReadabilityMeta uses the publication time go-readability finds in JSON-LD and
// OpenGraph metadata.
type ReadabilityMeta struct{}

func (ReadabilityMeta) Name() string { return "readability" }

func (ReadabilityMeta) Candidates(doc *Document) []string {
	art := doc.Readable()
	if art == nil || art.PublishedTime == nil || art.PublishedTime.IsZero() {
		return nil
	}
	return []string{art.PublishedTime.UTC().Format(time.RFC3339)}
}
