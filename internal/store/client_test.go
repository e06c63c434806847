package store

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/articlekit/enrich/internal/model"
)

func strPtr(s string) *string { return &s }

func TestSelectNextUnprocessed_SkipsProcessed(t *testing.T) {
	articles := []model.Article{
		{ID: 3, Title: "Newest", UpdatedContent: strPtr("enhanced")},
		{ID: 2, Title: "Middle"},
		{ID: 1, Title: "Oldest"},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/articles" {
			t.Errorf("Expected path /articles, got %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(articles)
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	article, err := client.SelectNextUnprocessed(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if article == nil {
		t.Fatal("Expected an article, got nil")
	}
	if article.ID != 2 {
		t.Errorf("Expected first unprocessed article (id 2), got id %d", article.ID)
	}
}

func TestSelectNextUnprocessed_AllProcessed(t *testing.T) {
	articles := []model.Article{
		{ID: 2, Title: "A", UpdatedContent: strPtr("enhanced")},
		{ID: 1, Title: "B", UpdatedContent: strPtr("also enhanced")},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(articles)
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	article, err := client.SelectNextUnprocessed(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if article != nil {
		t.Errorf("Expected nil, got article %d", article.ID)
	}
}

func TestSelectNextUnprocessed_EmptyUpdatedContentIsUnprocessed(t *testing.T) {
	articles := []model.Article{
		{ID: 1, Title: "A", UpdatedContent: strPtr("")},
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(articles)
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	article, err := client.SelectNextUnprocessed(context.Background())
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if article == nil || article.ID != 1 {
		t.Errorf("Expected article 1, got %v", article)
	}
}

func TestSelectNextUnprocessed_StoreUnreachable(t *testing.T) {
	// A closed server makes every call fail at the transport level
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close()

	client := NewClient(server.URL, 2*time.Second)
	_, err := client.SelectNextUnprocessed(context.Background())
	if err == nil {
		t.Fatal("Expected error for unreachable store")
	}
}

func TestUpdate_SendsPartialBody(t *testing.T) {
	var received map[string]json.RawMessage

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPut {
			t.Errorf("Expected PUT, got %s", r.Method)
		}
		if r.URL.Path != "/articles/7" {
			t.Errorf("Expected path /articles/7, got %s", r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&received); err != nil {
			t.Fatalf("Decode request body: %v", err)
		}
		_ = json.NewEncoder(w).Encode(model.Article{ID: 7, Title: "T", UpdatedContent: strPtr("new")})
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	refs := []model.Reference{{URL: "https://example.com", Title: "Source 1", Snippet: "snip..."}}
	article, err := client.Update(context.Background(), 7, model.ArticleUpdate{
		UpdatedContent: strPtr("new"),
		References:     &refs,
	})
	if err != nil {
		t.Fatalf("Update failed: %v", err)
	}
	if article.ID != 7 {
		t.Errorf("Expected article 7, got %d", article.ID)
	}

	// Only the set fields may appear in the payload
	if _, ok := received["updated_content"]; !ok {
		t.Error("Expected updated_content in payload")
	}
	if _, ok := received["references"]; !ok {
		t.Error("Expected references in payload")
	}
	if _, ok := received["title"]; ok {
		t.Error("Did not expect title in partial payload")
	}
	if _, ok := received["content"]; ok {
		t.Error("Did not expect content in partial payload")
	}
}

func TestUpdate_ValidationRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = fmt.Fprint(w, `{"error":"title must not exceed 255 characters"}`)
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	_, err := client.Update(context.Background(), 1, model.ArticleUpdate{Title: strPtr("x")})
	if err == nil {
		t.Fatal("Expected error for rejected update")
	}
}

func TestGet_NotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	_, err := client.Get(context.Background(), 42)
	if err == nil {
		t.Fatal("Expected error for missing article")
	}
}

func TestDelete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodDelete {
			t.Errorf("Expected DELETE, got %s", r.Method)
		}
		w.WriteHeader(http.StatusNoContent)
	}))
	defer server.Close()

	client := NewClient(server.URL, 5*time.Second)
	if err := client.Delete(context.Background(), 3); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
}
