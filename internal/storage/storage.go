// Package storage provides the persistence backends for the demo article
// store server.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/articlekit/enrich/internal/model"
)

// ErrNotFound is returned when an article id does not exist
var ErrNotFound = errors.New("article not found")

// Storage is the backend interface for the article store
type Storage interface {
	// List returns all articles, newest first
	List(ctx context.Context) ([]model.Article, error)

	// Get returns one article or ErrNotFound
	Get(ctx context.Context, id int) (*model.Article, error)

	// Create inserts an article, assigning its id and timestamps
	Create(ctx context.Context, article model.Article) (*model.Article, error)

	// Update applies non-nil fields of the update, bumps updated_at, and
	// returns the stored article or ErrNotFound
	Update(ctx context.Context, id int, update model.ArticleUpdate) (*model.Article, error)

	// Delete removes an article or returns ErrNotFound
	Delete(ctx context.Context, id int) error

	// Close releases backend resources
	Close() error
}

// applyUpdate merges a partial update into an article in place
func applyUpdate(article *model.Article, update model.ArticleUpdate, now time.Time) {
	if update.Title != nil {
		article.Title = *update.Title
	}
	if update.Content != nil {
		article.Content = *update.Content
	}
	if update.SourceURL != nil {
		article.SourceURL = *update.SourceURL
	}
	if update.UpdatedContent != nil {
		article.UpdatedContent = update.UpdatedContent
	}
	if update.References != nil {
		article.References = *update.References
	}
	article.UpdatedAt = now
}

// SeedArticles returns the demo fixture set loaded by `enrich serve --seed`
func SeedArticles() []model.Article {
	return []model.Article{
		{
			Title:     "The Future of AI in Content Creation",
			Content:   "Artificial intelligence is revolutionizing how we create and consume content. From automated writing to image generation, AI tools are becoming increasingly sophisticated. This article explores the current state of AI in content creation and what we can expect in the coming years.",
			SourceURL: "https://beyondchats.com/blog/future-ai-content-creation",
		},
		{
			Title:     "Building Scalable Web Applications",
			Content:   "Creating web applications that can handle growth requires careful planning and architecture. This guide covers essential principles for building scalable applications, including database optimization, caching strategies, and microservices architecture.",
			SourceURL: "https://beyondchats.com/blog/scalable-web-applications",
		},
		{
			Title:     "Modern JavaScript Frameworks Comparison",
			Content:   "JavaScript frameworks continue to evolve rapidly. This comprehensive comparison covers React, Vue, Angular, and emerging frameworks like Svelte and Solid.js. We examine performance, developer experience, and ecosystem maturity.",
			SourceURL: "https://beyondchats.com/blog/javascript-frameworks-comparison",
		},
		{
			Title:     "The Rise of No-Code Development",
			Content:   "No-code and low-code platforms are democratizing software development. This article explores how these tools are changing the landscape, their limitations, and when traditional coding is still necessary.",
			SourceURL: "https://beyondchats.com/blog/no-code-development",
		},
		{
			Title:     "Cybersecurity Best Practices for Developers",
			Content:   "Security should be a primary concern for every developer. This article covers essential cybersecurity practices including secure coding guidelines, common vulnerabilities, and tools for maintaining application security.",
			SourceURL: "https://beyondchats.com/blog/cybersecurity-best-practices",
		},
	}
}

// Seed loads the fixture articles into an empty backend
func Seed(ctx context.Context, s Storage) error {
	existing, err := s.List(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	for _, article := range SeedArticles() {
		if _, err := s.Create(ctx, article); err != nil {
			return err
		}
	}
	return nil
}
