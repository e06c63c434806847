// Package llm rewrites article content through a text-generation provider,
// with a deterministic offline fallback when no provider is configured.
package llm

import (
	"context"
	"fmt"

	"github.com/articlekit/enrich/internal/model"
)

// Provider defines the interface for text-generation providers
type Provider interface {
	// Name returns the provider name
	Name() string

	// Rewrite generates an enhanced version of the article content
	Rewrite(ctx context.Context, req RewriteRequest) (*RewriteResponse, error)

	// IsAvailable checks if the provider is properly configured and accessible
	IsAvailable(ctx context.Context) bool
}

// RewriteRequest contains the input for content rewriting
type RewriteRequest struct {
	// Title of the article being enhanced
	Title string

	// Original article content, preserved verbatim on any failure
	Original string

	// ExternalContext is the aggregated scraped text from search-derived
	// sources, already labeled per source
	ExternalContext string

	// Model is the specific model to use (provider-specific)
	Model string

	// MaxTokens limits the response length
	MaxTokens int
}

// RewriteResponse contains the provider's output
type RewriteResponse struct {
	// Content is the generated text
	Content string

	// Model is the model that generated the response
	Model string

	// TokensUsed tracks token consumption
	TokensUsed int
}

// Config holds provider configuration
type Config struct {
	// Provider name: "openai", "ollama", ""
	Provider string

	// Model name (provider-specific)
	Model string

	// APIKey for OpenAI
	APIKey string

	// BaseURL for custom endpoints (e.g. Ollama)
	BaseURL string

	// Timeout for API requests
	Timeout int // seconds

	// MaxTokens for response generation
	MaxTokens int

	// Temperature for sampling
	Temperature float32
}

// DefaultConfig returns sensible defaults
func DefaultConfig() Config {
	return Config{
		Provider:    "", // Disabled by default
		Model:       "",
		Timeout:     30,
		MaxTokens:   1500,
		Temperature: 0.7,
	}
}

// ConfigFromModel converts model.LLMConfig to llm.Config
func ConfigFromModel(mc model.LLMConfig) Config {
	return Config{
		Provider:    mc.Provider,
		Model:       mc.Model,
		APIKey:      mc.APIKey,
		BaseURL:     mc.BaseURL,
		Timeout:     mc.Timeout,
		MaxTokens:   mc.MaxTokens,
		Temperature: mc.Temperature,
	}
}

// systemPrompt frames the rewrite task for chat-style providers
const systemPrompt = "You are a skilled content editor and researcher. Your task is to enhance articles by incorporating information from external sources while maintaining the original message and improving accuracy, readability, and value."

// BuildPrompt constructs the rewrite instruction prompt from the original
// content, title, and aggregated external context.
func BuildPrompt(title, original, externalContext string) string {
	if externalContext == "" {
		externalContext = "(No external sources available)"
	}

	return fmt.Sprintf(`Please rewrite and enhance the following article using the provided external sources for additional context and accuracy. Maintain the original message but improve it with:

1. More current information from the external sources
2. Better structure and readability
3. Additional insights and perspectives
4. Fact-checking and accuracy improvements

Original Article Title: %s

Original Content:
%s

External Sources Context:
%s

Please provide an enhanced version that combines the best of both sources while maintaining accuracy and adding value.`, title, original, externalContext)
}
