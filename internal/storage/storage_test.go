package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/articlekit/enrich/internal/model"
)

func backends(t *testing.T) map[string]Storage {
	t.Helper()

	sqlite, err := NewSQLite(filepath.Join(t.TempDir(), "articles.db"))
	if err != nil {
		t.Fatalf("NewSQLite failed: %v", err)
	}
	t.Cleanup(func() { _ = sqlite.Close() })

	return map[string]Storage{
		"memory": NewMemory(),
		"sqlite": sqlite,
	}
}

func strPtr(s string) *string { return &s }

func TestCreateAndGet(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			created, err := backend.Create(ctx, model.Article{Title: "T", Content: "C", SourceURL: "https://example.com"})
			if err != nil {
				t.Fatalf("Create failed: %v", err)
			}
			if created.ID == 0 {
				t.Error("Expected assigned id")
			}
			if created.CreatedAt.IsZero() || created.UpdatedAt.IsZero() {
				t.Error("Expected timestamps to be set")
			}

			got, err := backend.Get(ctx, created.ID)
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if got.Title != "T" || got.Content != "C" {
				t.Errorf("Unexpected article: %+v", got)
			}
			if got.UpdatedContent != nil {
				t.Error("New article should have no enhanced content")
			}
		})
	}
}

func TestGet_NotFound(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := backend.Get(context.Background(), 999); !errors.Is(err, ErrNotFound) {
				t.Errorf("Expected ErrNotFound, got %v", err)
			}
		})
	}
}

func TestUpdate_RoundTrip(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			created, err := backend.Create(ctx, model.Article{Title: "T", Content: "C"})
			if err != nil {
				t.Fatalf("Create failed: %v", err)
			}

			refs := []model.Reference{
				{URL: "https://a.example.com", Title: "Source 1", Snippet: "first snippet..."},
				{URL: "https://b.example.com", Title: "Source 2", Snippet: "second snippet..."},
			}
			updated, err := backend.Update(ctx, created.ID, model.ArticleUpdate{
				UpdatedContent: strPtr("enhanced"),
				References:     &refs,
			})
			if err != nil {
				t.Fatalf("Update failed: %v", err)
			}
			if updated.Content != "C" {
				t.Error("Partial update must not touch unset fields")
			}

			// Re-fetch: persisted state must match what was written
			got, err := backend.Get(ctx, created.ID)
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if got.UpdatedContent == nil || *got.UpdatedContent != "enhanced" {
				t.Errorf("Unexpected updated_content: %v", got.UpdatedContent)
			}
			if len(got.References) != 2 {
				t.Fatalf("Expected 2 references, got %d", len(got.References))
			}
			for i := range refs {
				if got.References[i] != refs[i] {
					t.Errorf("References[%d] = %+v, want %+v", i, got.References[i], refs[i])
				}
			}
			if !got.UpdatedAt.After(created.UpdatedAt) && !got.UpdatedAt.Equal(created.UpdatedAt) {
				t.Error("updated_at should not go backwards")
			}
		})
	}
}

func TestUpdate_ReplacesReferences(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			created, err := backend.Create(ctx, model.Article{Title: "T", Content: "C"})
			if err != nil {
				t.Fatalf("Create failed: %v", err)
			}

			first := []model.Reference{{URL: "https://old.example.com", Title: "Source 1", Snippet: "old..."}}
			if _, err := backend.Update(ctx, created.ID, model.ArticleUpdate{References: &first}); err != nil {
				t.Fatalf("First update failed: %v", err)
			}

			second := []model.Reference{}
			if _, err := backend.Update(ctx, created.ID, model.ArticleUpdate{References: &second}); err != nil {
				t.Fatalf("Second update failed: %v", err)
			}

			got, err := backend.Get(ctx, created.ID)
			if err != nil {
				t.Fatalf("Get failed: %v", err)
			}
			if len(got.References) != 0 {
				t.Errorf("References must be fully replaced, got %+v", got.References)
			}
		})
	}
}

func TestDelete(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			created, err := backend.Create(ctx, model.Article{Title: "T", Content: "C"})
			if err != nil {
				t.Fatalf("Create failed: %v", err)
			}
			if err := backend.Delete(ctx, created.ID); err != nil {
				t.Fatalf("Delete failed: %v", err)
			}
			if _, err := backend.Get(ctx, created.ID); !errors.Is(err, ErrNotFound) {
				t.Errorf("Expected ErrNotFound after delete, got %v", err)
			}
			if err := backend.Delete(ctx, created.ID); !errors.Is(err, ErrNotFound) {
				t.Errorf("Expected ErrNotFound for double delete, got %v", err)
			}
		})
	}
}

func TestList_NewestFirst(t *testing.T) {
	for name, backend := range backends(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			for _, title := range []string{"first", "second", "third"} {
				if _, err := backend.Create(ctx, model.Article{Title: title, Content: "c"}); err != nil {
					t.Fatalf("Create failed: %v", err)
				}
			}

			articles, err := backend.List(ctx)
			if err != nil {
				t.Fatalf("List failed: %v", err)
			}
			if len(articles) != 3 {
				t.Fatalf("Expected 3 articles, got %d", len(articles))
			}
			if articles[0].Title != "third" || articles[2].Title != "first" {
				t.Errorf("Expected newest first, got %s...%s", articles[0].Title, articles[2].Title)
			}
		})
	}
}

func TestSeed(t *testing.T) {
	backend := NewMemory()
	ctx := context.Background()

	if err := Seed(ctx, backend); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}
	articles, err := backend.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(articles) != len(SeedArticles()) {
		t.Errorf("Expected %d seeded articles, got %d", len(SeedArticles()), len(articles))
	}

	// Seeding twice must not duplicate
	if err := Seed(ctx, backend); err != nil {
		t.Fatalf("Second seed failed: %v", err)
	}
	articles, _ = backend.List(ctx)
	if len(articles) != len(SeedArticles()) {
		t.Errorf("Seed is not idempotent: %d articles", len(articles))
	}
}
