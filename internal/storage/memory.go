package storage

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/articlekit/enrich/internal/model"
)

// Memory is an in-process backend, sufficient for the demo store and tests
type Memory struct {
	mu       sync.RWMutex
	articles map[int]model.Article
	nextID   int
}

// NewMemory creates an empty in-memory backend
func NewMemory() *Memory {
	return &Memory{
		articles: make(map[int]model.Article),
		nextID:   1,
	}
}

// List returns all articles, newest first
func (m *Memory) List(ctx context.Context) ([]model.Article, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	articles := make([]model.Article, 0, len(m.articles))
	for _, a := range m.articles {
		articles = append(articles, a)
	}
	sort.Slice(articles, func(i, j int) bool {
		if !articles[i].CreatedAt.Equal(articles[j].CreatedAt) {
			return articles[i].CreatedAt.After(articles[j].CreatedAt)
		}
		return articles[i].ID > articles[j].ID
	})
	return articles, nil
}

// Get returns one article or ErrNotFound
func (m *Memory) Get(ctx context.Context, id int) (*model.Article, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	article, ok := m.articles[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &article, nil
}

// Create inserts an article, assigning id and timestamps
func (m *Memory) Create(ctx context.Context, article model.Article) (*model.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now().UTC()
	article.ID = m.nextID
	m.nextID++
	if article.CreatedAt.IsZero() {
		article.CreatedAt = now
	}
	article.UpdatedAt = now

	m.articles[article.ID] = article
	return &article, nil
}

// Update applies a partial update or returns ErrNotFound
func (m *Memory) Update(ctx context.Context, id int, update model.ArticleUpdate) (*model.Article, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	article, ok := m.articles[id]
	if !ok {
		return nil, ErrNotFound
	}

	applyUpdate(&article, update, time.Now().UTC())
	m.articles[id] = article
	return &article, nil
}

// Delete removes an article or returns ErrNotFound
func (m *Memory) Delete(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.articles[id]; !ok {
		return ErrNotFound
	}
	delete(m.articles, id)
	return nil
}

// Close is a no-op for the memory backend
func (m *Memory) Close() error {
	return nil
}
