// Package extract fetches external pages and pulls readable body text out of
// them for use as rewrite context.
package extract

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html/charset"

	"github.com/articlekit/enrich/internal/cache"
)

// contentSelectors is the prioritized list of content containers. The first
// selector whose text clears the minimum length wins; order matters.
var contentSelectors = []string{
	"main",
	"article",
	".content",
	".post-content",
	".entry-content",
	"body",
}

// boilerplateSelector matches elements removed before text extraction.
const boilerplateSelector = "script, style, nav, header, footer, aside"

// Extractor fetches URLs and extracts readable text
type Extractor struct {
	httpClient *http.Client
	userAgent  string
	maxBytes   int64

	selectorMin int
	maxChars    int

	robots *RobotsChecker
	cache  cache.Cache
	ttl    time.Duration
}

// Option configures an Extractor
type Option func(*Extractor)

// WithRobots enables robots.txt checks before fetching
func WithRobots(userAgent string, timeout time.Duration) Option {
	return func(e *Extractor) {
		e.robots = NewRobotsChecker(userAgent, timeout)
	}
}

// WithCache caches extracted text by URL with the given TTL
func WithCache(c cache.Cache, ttl time.Duration) Option {
	return func(e *Extractor) {
		e.cache = c
		e.ttl = ttl
	}
}

// NewExtractor creates an extractor. timeout bounds each fetch; selectorMin is
// the minimum text length for a content selector to be accepted; maxChars caps
// the returned text.
func NewExtractor(timeout time.Duration, userAgent string, maxBytes int64, selectorMin, maxChars int, opts ...Option) *Extractor {
	e := &Extractor{
		httpClient: &http.Client{
			Timeout: timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 3 {
					return fmt.Errorf("stopped after 3 redirects")
				}
				return nil
			},
		},
		userAgent:   userAgent,
		maxBytes:    maxBytes,
		selectorMin: selectorMin,
		maxChars:    maxChars,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract fetches the URL and returns readable text, capped at maxChars.
// Fetch and parse failures return ("", err); the caller treats empty text as
// a skipped source, never as a fatal condition.
func (e *Extractor) Extract(ctx context.Context, rawURL string) (string, error) {
	if e.cache != nil {
		if cached, ok := e.cache.Get(cache.Key(rawURL)); ok {
			return string(cached), nil
		}
	}

	if e.robots != nil {
		allowed, _, err := e.robots.CanFetch(ctx, rawURL)
		if err == nil && !allowed {
			return "", fmt.Errorf("disallowed by robots.txt: %s", rawURL)
		}
	}

	body, err := e.fetch(ctx, rawURL)
	if err != nil {
		return "", err
	}

	text, err := e.extractText(body)
	if err != nil {
		return "", fmt.Errorf("parse %s: %w", rawURL, err)
	}

	if e.cache != nil && text != "" {
		_ = e.cache.Set(cache.Key(rawURL), []byte(text), e.ttl)
	}
	return text, nil
}

func (e *Extractor) fetch(ctx context.Context, rawURL string) (io.Reader, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", e.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("fetch %s: unexpected status: %d %s", rawURL, resp.StatusCode, resp.Status)
	}

	// Decode non-UTF8 pages before parsing
	reader, err := charset.NewReader(io.LimitReader(resp.Body, e.maxBytes), resp.Header.Get("Content-Type"))
	if err != nil {
		return nil, fmt.Errorf("charset %s: %w", rawURL, err)
	}

	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("read body: %w", err)
	}
	return strings.NewReader(string(body)), nil
}

// extractText strips boilerplate, then tries the content selectors in
// priority order, accepting the first whose text exceeds selectorMin chars.
// Falls back to full body text when none qualify.
func (e *Extractor) extractText(body io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(body)
	if err != nil {
		return "", err
	}

	doc.Find(boilerplateSelector).Remove()

	var content string
	for _, selector := range contentSelectors {
		sel := doc.Find(selector)
		if sel.Length() == 0 {
			continue
		}
		content = normalizeWhitespace(sel.First().Text())
		if len(content) > e.selectorMin {
			break
		}
	}

	if content == "" {
		content = normalizeWhitespace(doc.Find("body").Text())
	}

	return truncate(content, e.maxChars), nil
}

// normalizeWhitespace collapses runs of whitespace and newlines into single
// spaces.
func normalizeWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// truncate cuts s to at most max characters without splitting a rune.
func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}

// Snippet returns the first n characters of text followed by an ellipsis,
// used for reference entries.
func Snippet(text string, n int) string {
	return truncate(text, n) + "..."
}
