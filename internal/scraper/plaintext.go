package scraper

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// paragraphSelectors are tried in order until enough body paragraphs are found.
var paragraphSelectors = []string{
	"article p",
	".article p",
	".article-body p",
	".content p",
	".post-content p",
	".entry-content p",
	"main p",
	"#content p",
	"p",
}

// titleSelectors locate a headline when the text body has none.
var titleSelectors = []string{
	"h1",
	".article-title",
	".headline",
	".entry-title",
	"title",
}

// paragraphText builds a plain-text body from the page paragraphs. It is the
// last resort when neither the provider nor readability produced text.
func paragraphText(doc *goquery.Document) string {
	var paragraphs []string

	for _, selector := range paragraphSelectors {
		doc.Find(selector).Each(func(i int, s *goquery.Selection) {
			text := strings.TrimSpace(s.Text())
			if len(text) > 20 {
				paragraphs = append(paragraphs, text)
			}
		})
		if len(paragraphs) >= 3 {
			break
		}
	}

	return strings.Join(paragraphs, "\n\n")
}

func headline(doc *goquery.Document) string {
	for _, selector := range titleSelectors {
		if title := strings.TrimSpace(doc.Find(selector).First().Text()); title != "" {
			return title
		}
	}
	return ""
}
