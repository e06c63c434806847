package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/articlekit/enrich/internal/model"
	"github.com/articlekit/enrich/internal/pipeline"
)

var (
	storeURL       string
	runTimeout     time.Duration
	fetchTimeout   time.Duration
	userAgent      string
	searchEndpoint string
	llmProvider    string
	llmModel       string
	respectRobots  bool
	noCache        bool
)

// processCmd represents the process command
var processCmd = &cobra.Command{
	Use:   "process",
	Short: "Enhance the next unprocessed article",
	Long: `Process runs one enhancement pass:
- Select the newest article without enhanced content
- Search the web using the article title as query
- Scrape up to three result pages for external context
- Rewrite the article with the configured generation service
- Persist the enhanced content and references back to the store

One article is processed per invocation; scheduling repeated runs is left
to an external caller (cron, systemd timers).

The generation-service credential is read from OPENAI_API_KEY. Without it
the rewrite step produces a deterministic placeholder, so a flagless,
credential-less run still completes.

Example:
  enrich process
  enrich process --store http://localhost:8000/api
  enrich process --llm-provider ollama --llm-model llama3.1:8b`,
	Args: cobra.NoArgs,
	RunE: runProcess,
}

func init() {
	rootCmd.AddCommand(processCmd)

	processCmd.Flags().StringVar(&storeURL, "store", "", "article store base URL (default from config)")
	processCmd.Flags().DurationVar(&runTimeout, "timeout", 5*time.Minute, "overall run timeout")
	processCmd.Flags().DurationVar(&fetchTimeout, "fetch-timeout", 10*time.Second, "per-page fetch timeout")
	processCmd.Flags().StringVar(&userAgent, "ua", "", "HTTP User-Agent override")
	processCmd.Flags().StringVar(&searchEndpoint, "search-endpoint", "", "search engine HTML endpoint override")
	processCmd.Flags().BoolVar(&respectRobots, "respect-robots", false, "check robots.txt before scraping sources")
	processCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the extraction page cache")

	// LLM flags
	processCmd.Flags().StringVar(&llmProvider, "llm-provider", "openai", "generation provider (openai, ollama)")
	processCmd.Flags().StringVar(&llmModel, "llm-model", "", "generation model name")
}

func runProcess(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()

	cfg := buildConfig()

	p, err := pipeline.New(cfg)
	if err != nil {
		return fmt.Errorf("create pipeline: %w", err)
	}

	result, err := p.Run(ctx)
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}

	if result.NoOp {
		fmt.Fprintln(os.Stderr, "Nothing to process. All done!")
	}
	return nil
}

// buildConfig layers flags and environment over the defaults
func buildConfig() *model.Config {
	cfg := model.DefaultConfig()

	if storeURL != "" {
		cfg.Store.BaseURL = storeURL
	} else if env := viper.GetString("store_url"); env != "" {
		cfg.Store.BaseURL = env
	}
	if fetchTimeout > 0 {
		cfg.HTTP.Timeout = fetchTimeout
	}
	if userAgent != "" {
		cfg.HTTP.UserAgent = userAgent
	}
	if searchEndpoint != "" {
		cfg.Search.Endpoint = searchEndpoint
	}
	cfg.Extract.RespectRobots = respectRobots
	cfg.Cache.Enabled = !noCache
	cfg.Output.Verbose = verbose

	// A provider only goes live with a credential; otherwise the rewriter
	// stays in placeholder mode so the run never depends on external keys.
	switch llmProvider {
	case "openai":
		if key := os.Getenv("OPENAI_API_KEY"); key != "" {
			cfg.LLM.Provider = "openai"
			cfg.LLM.APIKey = key
		} else {
			fmt.Fprintln(os.Stderr, "OPENAI_API_KEY not set. Using placeholder content.")
		}
	case "ollama":
		cfg.LLM.Provider = "ollama"
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" {
			cfg.LLM.BaseURL = baseURL
		}
	case "":
		// Placeholder mode requested explicitly
	default:
		fmt.Fprintf(os.Stderr, "Unknown provider %q. Using placeholder content.\n", llmProvider)
	}
	if llmModel != "" {
		cfg.LLM.Model = llmModel
	}

	return cfg
}
