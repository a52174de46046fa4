// Package anycrawl is a small client for the AnyCrawl scrape API.
package anycrawl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

const (
	EngineCheerio    = "cheerio"
	EnginePlaywright = "playwright"
	EnginePuppeteer  = "puppeteer"

	FormatMarkdown = "markdown"
	FormatHTML     = "html"

	StatusCompleted = "completed"
)

var ErrNotCompleted = errors.New("scrape not completed")

// StatusError is returned for non-200 responses.
type StatusError struct {
	Code int
	Body string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("anycrawl: HTTP %d", e.Code)
	}
	return fmt.Sprintf("anycrawl: HTTP %d: %s", e.Code, e.Body)
}

type ScrapeRequest struct {
	URL     string   `json:"url"`
	Engine  string   `json:"engine"`
	Formats []string `json:"formats"`
}

type ScrapeData struct {
	URL      string `json:"url"`
	Status   string `json:"status"`
	Title    string `json:"title"`
	Markdown string `json:"markdown"`
	HTML     string `json:"html"`
}

type scrapeResponse struct {
	Success bool       `json:"success"`
	Error   string     `json:"error"`
	Data    ScrapeData `json:"data"`
}

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient builds a client. Timeouts are expected on the caller's context; the
// http.Client timeout is only a backstop.
func NewClient(baseURL, apiKey string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 45 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: timeout + 5*time.Second},
	}
}

// Scrape renders one URL with the requested engine and formats.
func (c *Client) Scrape(ctx context.Context, req ScrapeRequest) (*ScrapeData, error) {
	if c.apiKey == "" {
		return nil, errors.New("anycrawl: API key is not set")
	}

	req.URL = RequoteURL(req.URL)
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("anycrawl: encode request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/scrape", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("anycrawl: build request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("anycrawl: request %s via %s: %w", req.URL, req.Engine, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 200))
		return nil, &StatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}

	var out scrapeResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("anycrawl: decode response: %w", err)
	}

	if !out.Success || out.Data.Status != StatusCompleted {
		status := out.Data.Status
		if out.Error != "" {
			status += " " + out.Error
		}
		return nil, fmt.Errorf("%w: status=%q", ErrNotCompleted, strings.TrimSpace(status))
	}

	return &out.Data, nil
}

// RequoteURL escapes characters that are not allowed in a URL while leaving
// already-escaped sequences alone.
func RequoteURL(raw string) string {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	return u.String()
}
