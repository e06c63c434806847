// Package search issues queries against a search engine's rendered results
// page and extracts external result URLs.
package search

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"
)

// Client scrapes a search engine's HTML results page. The default endpoint
// serves fully rendered results without JavaScript, which keeps the client a
// plain HTTP consumer.
type Client struct {
	endpoint   string
	engineHost string
	maxResults int
	userAgent  string
	timeout    time.Duration
	limiter    *rate.Limiter
}

// NewClient creates a search client. maxResults caps the number of returned
// URLs; ratePerSec throttles queries against the engine host.
func NewClient(endpoint string, maxResults int, userAgent string, timeout time.Duration, ratePerSec float64) (*Client, error) {
	parsed, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse search endpoint: %w", err)
	}
	if maxResults <= 0 {
		maxResults = 3
	}
	if ratePerSec <= 0 {
		ratePerSec = 1
	}

	return &Client{
		endpoint:   endpoint,
		engineHost: baseDomain(parsed.Host),
		maxResults: maxResults,
		userAgent:  userAgent,
		timeout:    timeout,
		limiter:    rate.NewLimiter(rate.Limit(ratePerSec), 1),
	}, nil
}

// session is a transient browsing context: one cookie jar, one connection
// pool, released on every exit path.
type session struct {
	client *http.Client
}

// release tears the session down. Safe to call on a partially built session.
func (s *session) release() {
	if s.client != nil {
		s.client.CloseIdleConnections()
	}
}

// withSession acquires a rate-limit token and a fresh browsing context, runs
// fn, and guarantees release even when fn fails mid-navigation.
func (c *Client) withSession(ctx context.Context, fn func(s *session) error) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit: %w", err)
	}

	jar, err := cookiejar.New(nil)
	if err != nil {
		return fmt.Errorf("cookie jar: %w", err)
	}

	s := &session{
		client: &http.Client{
			Timeout: c.timeout,
			Jar:     jar,
		},
	}
	defer s.release()

	return fn(s)
}

// Search renders the results page for the query and returns up to maxResults
// external URLs in page order. Engine-internal links and non-absolute
// non-HTTP(S) links are excluded. Any failure returns an empty slice along
// with the error; callers treat search failure as non-fatal.
func (c *Client) Search(ctx context.Context, query string) ([]string, error) {
	var links []string

	err := c.withSession(ctx, func(s *session) error {
		searchURL := c.endpoint
		if strings.Contains(searchURL, "?") {
			searchURL += "&q=" + url.QueryEscape(query)
		} else {
			searchURL += "?q=" + url.QueryEscape(query)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
		if err != nil {
			return fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
		req.Header.Set("Accept-Language", "en-US,en;q=0.9")

		resp, err := s.client.Do(req)
		if err != nil {
			return fmt.Errorf("search request: %w", err)
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("search returned %s", resp.Status)
		}

		doc, err := goquery.NewDocumentFromReader(resp.Body)
		if err != nil {
			return fmt.Errorf("parse results page: %w", err)
		}

		links = c.extractLinks(doc)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return links, nil
}

// extractLinks walks result anchors in page order and collects acceptable
// external URLs until the cap is reached.
func (c *Client) extractLinks(doc *goquery.Document) []string {
	var links []string
	seen := map[string]struct{}{}

	collect := func(_ int, a *goquery.Selection) bool {
		href, ok := a.Attr("href")
		if !ok {
			return true
		}
		resolved := c.resolveResultURL(href)
		if resolved == "" {
			return true
		}
		if _, dup := seen[resolved]; dup {
			return true
		}
		seen[resolved] = struct{}{}
		links = append(links, resolved)
		return len(links) < c.maxResults
	}

	// Result anchors first, then any anchor as a fallback for engines
	// without the dedicated result class.
	doc.Find("a.result__a").EachWithBreak(collect)
	if len(links) < c.maxResults {
		doc.Find("div.result a, div.g a").EachWithBreak(collect)
	}
	if len(links) == 0 {
		doc.Find("a[href]").EachWithBreak(collect)
	}

	return links
}

// resolveResultURL normalizes a raw result href. Engine redirect wrappers
// (the uddg parameter) are unwrapped; everything that is not an absolute
// HTTP(S) URL on an external host is rejected with "".
func (c *Client) resolveResultURL(href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}

	parsed, err := url.Parse(href)
	if err != nil {
		return ""
	}

	// Unwrap the engine's redirect link
	if target := parsed.Query().Get("uddg"); target != "" {
		if inner, err := url.Parse(target); err == nil {
			parsed = inner
		}
	}

	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return ""
	}
	if parsed.Host == "" {
		return ""
	}
	if c.isEngineHost(parsed.Host) {
		return ""
	}

	return parsed.String()
}

// isEngineHost reports whether host belongs to the search engine itself.
// Any subdomain of the engine's registered domain counts as self-referential.
func (c *Client) isEngineHost(host string) bool {
	host = strings.ToLower(host)
	if ip := net.ParseIP(stripPort(host)); ip != nil {
		// IP-hosted engines (local setups) match on host:port exactly
		return host == c.engineHost
	}
	h := stripPort(host)
	return h == c.engineHost || strings.HasSuffix(h, "."+c.engineHost)
}

// baseDomain reduces the engine endpoint's host to its registered domain so
// sibling subdomains are recognized as self-referential. IP hosts keep their
// port.
func baseDomain(host string) string {
	host = strings.ToLower(host)
	h := stripPort(host)
	if ip := net.ParseIP(h); ip != nil {
		return host
	}
	parts := strings.Split(h, ".")
	if len(parts) > 2 {
		return strings.Join(parts[len(parts)-2:], ".")
	}
	return h
}

func stripPort(host string) string {
	if idx := strings.LastIndex(host, ":"); idx > 0 && !strings.Contains(host[idx:], "]") {
		return host[:idx]
	}
	return host
}
