package news

import "time"

// Category is a named topic with its ordered listing sources.
type Category struct {
	ID      string   `yaml:"id"`
	Label   string   `yaml:"label"`
	Sources []Source `yaml:"sources"`
}

// Source is one listing page. Feed sources are parsed as RSS/Atom instead of scraped.
type Source struct {
	URL  string `yaml:"url"`
	Feed bool   `yaml:"feed"`
}

// CandidateLink is an article reference found on a listing page.
type CandidateLink struct {
	Title string
	URL   string
}

// Article is a fetched article that passed the recency filter.
type Article struct {
	URL         string
	Title       string
	PublishedAt *time.Time // nil when no date signal could be resolved
	Excerpt     string
}

// Digest is the generated summary of one aggregation run.
type Digest struct {
	Category string
	Body     string
	Articles int
	RunID    string
}
