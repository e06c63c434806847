package model

import "time"

// Config holds the complete pipeline configuration
type Config struct {
	Store   StoreConfig   `yaml:"store"`
	HTTP    HTTPConfig    `yaml:"http"`
	Search  SearchConfig  `yaml:"search"`
	Extract ExtractConfig `yaml:"extract"`
	LLM     LLMConfig     `yaml:"llm"`
	Cache   CacheConfig   `yaml:"cache"`
	Output  OutputConfig  `yaml:"output"`
}

// StoreConfig targets the article store API
type StoreConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// HTTPConfig controls outbound scraping requests
type HTTPConfig struct {
	Timeout      time.Duration `yaml:"timeout"`
	UserAgent    string        `yaml:"user_agent"`
	MaxBodyBytes int64         `yaml:"max_body_bytes"`
}

// SearchConfig controls the web search client
type SearchConfig struct {
	Endpoint   string        `yaml:"endpoint"`
	MaxResults int           `yaml:"max_results"`
	RatePerSec float64       `yaml:"rate_per_sec"`
	Timeout    time.Duration `yaml:"timeout"`
}

// ExtractConfig controls content extraction thresholds.
// SelectorMinChars and AcceptMinChars must stay aligned with the store's
// downstream consumers; MaxChars bounds prompt size deterministically.
type ExtractConfig struct {
	SelectorMinChars int  `yaml:"selector_min_chars"`
	AcceptMinChars   int  `yaml:"accept_min_chars"`
	MaxChars         int  `yaml:"max_chars"`
	SnippetChars     int  `yaml:"snippet_chars"`
	RespectRobots    bool `yaml:"respect_robots"`
}

// LLMConfig configures the rewrite provider
type LLMConfig struct {
	Provider    string  `yaml:"provider"` // "openai", "ollama", "" (disabled)
	Model       string  `yaml:"model"`
	APIKey      string  `yaml:"-"`
	BaseURL     string  `yaml:"base_url"`
	Timeout     int     `yaml:"timeout"` // seconds
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float32 `yaml:"temperature"`
}

// CacheConfig controls the extraction page cache
type CacheConfig struct {
	Enabled bool          `yaml:"enabled"`
	TTL     time.Duration `yaml:"ttl"`
}

// OutputConfig controls progress logging
type OutputConfig struct {
	Verbose bool `yaml:"verbose"`
}

// DefaultConfig returns the built-in defaults. A flagless `enrich process`
// runs with exactly this configuration plus environment credentials.
func DefaultConfig() *Config {
	return &Config{
		Store: StoreConfig{
			BaseURL: "http://localhost:8000/api",
			Timeout: 15 * time.Second,
		},
		HTTP: HTTPConfig{
			Timeout:      10 * time.Second,
			UserAgent:    "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
			MaxBodyBytes: 2_000_000,
		},
		Search: SearchConfig{
			Endpoint:   "https://html.duckduckgo.com/html/",
			MaxResults: 3,
			RatePerSec: 0.5,
			Timeout:    20 * time.Second,
		},
		Extract: ExtractConfig{
			SelectorMinChars: 200,
			AcceptMinChars:   100,
			MaxChars:         1500,
			SnippetChars:     200,
			RespectRobots:    false,
		},
		LLM: LLMConfig{
			Provider:    "",
			Model:       "",
			Timeout:     30,
			MaxTokens:   1500,
			Temperature: 0.7,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     1 * time.Hour,
		},
		Output: OutputConfig{
			Verbose: false,
		},
	}
}
