// Package store is the HTTP/JSON client for the article store API.
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/articlekit/enrich/internal/model"
)

// Client talks to the article store over HTTP/JSON
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a store client for the given base URL (e.g.
// "http://localhost:8000/api")
func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// List retrieves all articles. The store returns them in reverse-chronological
// order.
func (c *Client) List(ctx context.Context) ([]model.Article, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/articles", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list articles: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list articles: unexpected status: %d %s", resp.StatusCode, resp.Status)
	}

	var articles []model.Article
	if err := json.NewDecoder(resp.Body).Decode(&articles); err != nil {
		return nil, fmt.Errorf("decode articles: %w", err)
	}
	return articles, nil
}

// Get retrieves a single article by id
func (c *Client) Get(ctx context.Context, id int) (*model.Article, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("%s/articles/%d", c.baseURL, id), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get article %d: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("article %d not found", id)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("get article %d: unexpected status: %d %s", id, resp.StatusCode, resp.Status)
	}

	var article model.Article
	if err := json.NewDecoder(resp.Body).Decode(&article); err != nil {
		return nil, fmt.Errorf("decode article: %w", err)
	}
	return &article, nil
}

// Update applies a partial update to an article and returns the stored result.
// Fields left nil in the update are not touched by the store.
func (c *Client) Update(ctx context.Context, id int, update model.ArticleUpdate) (*model.Article, error) {
	body, err := json.Marshal(update)
	if err != nil {
		return nil, fmt.Errorf("marshal update: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, fmt.Sprintf("%s/articles/%d", c.baseURL, id), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("update article %d: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Include the store's error body so validation failures are diagnosable
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("update article %d: unexpected status: %d %s: %s", id, resp.StatusCode, resp.Status, strings.TrimSpace(string(msg)))
	}

	var article model.Article
	if err := json.NewDecoder(resp.Body).Decode(&article); err != nil {
		return nil, fmt.Errorf("decode article: %w", err)
	}
	return &article, nil
}

// Delete removes an article. The enhancement pipeline never deletes; this
// exists for administrative use.
func (c *Client) Delete(ctx context.Context, id int) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, fmt.Sprintf("%s/articles/%d", c.baseURL, id), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("delete article %d: %w", id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusOK {
		return fmt.Errorf("delete article %d: unexpected status: %d %s", id, resp.StatusCode, resp.Status)
	}
	return nil
}

// SelectNextUnprocessed returns the first article without enhanced content,
// or nil when every article has been processed. List order is store-defined
// (latest first), so the newest unprocessed article wins.
func (c *Client) SelectNextUnprocessed(ctx context.Context) (*model.Article, error) {
	articles, err := c.List(ctx)
	if err != nil {
		return nil, err
	}

	for i := range articles {
		if !articles[i].IsProcessed() {
			return &articles[i], nil
		}
	}
	return nil, nil
}
