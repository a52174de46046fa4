package scraper

import (
	"regexp"
	"strings"

	"github.com/deusflow/pabot/internal/news"
)

// markdownLink also accepts an optional link title: [text](url "title").
var markdownLink = regexp.MustCompile(`\[([^\]]+)\]\((https?://[^)\s]+)(?:\s+(?:"[^"]*"|'[^']*'))?\s*\)`)

// ExtractLinks returns every [title](url) reference with an http(s) target, in
// document order. Duplicates are kept.
func ExtractLinks(text string) []news.CandidateLink {
	matches := markdownLink.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return nil
	}
	links := make([]news.CandidateLink, 0, len(matches))
	for _, m := range matches {
		links = append(links, news.CandidateLink{
			Title: strings.TrimSpace(m[1]),
			URL:   m[2],
		})
	}
	return links
}
