package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sashabaranov/go-openai"
)

func TestOpenAIProvider_Rewrite_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("Expected path /chat/completions, got %s", r.URL.Path)
		}
		if r.Header.Get("Authorization") != "Bearer test-key" {
			t.Errorf("Expected Authorization header Bearer test-key, got %s", r.Header.Get("Authorization"))
		}

		var chatReq openai.ChatCompletionRequest
		if err := json.NewDecoder(r.Body).Decode(&chatReq); err != nil {
			t.Fatalf("Decode request: %v", err)
		}
		if len(chatReq.Messages) != 2 {
			t.Errorf("Expected system + user messages, got %d", len(chatReq.Messages))
		}
		if !strings.Contains(chatReq.Messages[1].Content, "Original Article Title: Test Title") {
			t.Error("Prompt missing the article title")
		}

		resp := openai.ChatCompletionResponse{
			ID:     "chatcmpl-123",
			Object: "chat.completion",
			Model:  "gpt-4o-mini",
			Choices: []openai.ChatCompletionChoice{
				{
					Index: 0,
					Message: openai.ChatCompletionMessage{
						Role:    "assistant",
						Content: "The enhanced article text.",
					},
					FinishReason: "stop",
				},
			},
			Usage: openai.Usage{TotalTokens: 100},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Model:   "gpt-4o-mini",
		Timeout: 5,
	})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	resp, err := provider.Rewrite(context.Background(), RewriteRequest{
		Title:           "Test Title",
		Original:        "Original content.",
		ExternalContext: "Source 1 (https://example.com):\nexternal text",
	})
	if err != nil {
		t.Fatalf("Rewrite failed: %v", err)
	}
	if resp.Content != "The enhanced article text." {
		t.Errorf("Unexpected content: %s", resp.Content)
	}
	if resp.TokensUsed != 100 {
		t.Errorf("Expected 100 tokens, got %d", resp.TokensUsed)
	}
}

func TestOpenAIProvider_Rewrite_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error": {"message": "Internal Server Error", "type": "server_error"}}`))
	}))
	defer server.Close()

	provider, err := NewOpenAIProvider(Config{
		APIKey:  "test-key",
		BaseURL: server.URL,
		Timeout: 5,
	})
	if err != nil {
		t.Fatalf("Failed to create provider: %v", err)
	}

	if _, err := provider.Rewrite(context.Background(), RewriteRequest{Title: "T", Original: "O"}); err == nil {
		t.Fatal("Expected error for API failure")
	}
}

func TestOpenAIProvider_RequiresAPIKey(t *testing.T) {
	if _, err := NewOpenAIProvider(Config{APIKey: ""}); err == nil {
		t.Fatal("Expected error for missing API key")
	}
}

func TestRewriter_OpenAIFailureFallsBack(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	rewriter, err := NewRewriter(Config{
		Provider: "openai",
		APIKey:   "test-key",
		BaseURL:  server.URL,
		Timeout:  5,
	})
	if err != nil {
		t.Fatalf("NewRewriter failed: %v", err)
	}

	original := "Content that must not be lost."
	got := rewriter.Rewrite(context.Background(), "Title", original, "")
	if !strings.Contains(got, original) {
		t.Errorf("Fallback must preserve the original content: %q", got)
	}
}
