// Package pipeline orchestrates one enhancement run: select an unprocessed
// article, search, scrape the results, rewrite, persist.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/articlekit/enrich/internal/cache"
	"github.com/articlekit/enrich/internal/extract"
	"github.com/articlekit/enrich/internal/llm"
	"github.com/articlekit/enrich/internal/model"
	"github.com/articlekit/enrich/internal/search"
	"github.com/articlekit/enrich/internal/store"
)

// Pipeline sequences the enhancement steps. Execution is strictly
// sequential: one article per run, one source fetch in flight at a time, so
// external-context ordering stays deterministic.
type Pipeline struct {
	store     *store.Client
	search    *search.Client
	extractor *extract.Extractor
	rewriter  *llm.Rewriter
	config    *model.Config

	// Progress log destination; stderr by default, overridable in tests
	Out io.Writer
}

// New wires a pipeline from configuration
func New(cfg *model.Config) (*Pipeline, error) {
	searchClient, err := search.NewClient(cfg.Search.Endpoint, cfg.Search.MaxResults, cfg.HTTP.UserAgent, cfg.Search.Timeout, cfg.Search.RatePerSec)
	if err != nil {
		return nil, fmt.Errorf("create search client: %w", err)
	}

	var opts []extract.Option
	if cfg.Extract.RespectRobots {
		opts = append(opts, extract.WithRobots(cfg.HTTP.UserAgent, cfg.HTTP.Timeout))
	}
	if cfg.Cache.Enabled {
		opts = append(opts, extract.WithCache(cache.NewMemoryCache(cfg.Cache.TTL, cfg.Cache.TTL), cfg.Cache.TTL))
	}
	extractor := extract.NewExtractor(cfg.HTTP.Timeout, cfg.HTTP.UserAgent, cfg.HTTP.MaxBodyBytes, cfg.Extract.SelectorMinChars, cfg.Extract.MaxChars, opts...)

	rewriter, err := llm.NewRewriter(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		return nil, fmt.Errorf("create rewriter: %w", err)
	}

	return &Pipeline{
		store:     store.NewClient(cfg.Store.BaseURL, cfg.Store.Timeout),
		search:    searchClient,
		extractor: extractor,
		rewriter:  rewriter,
		config:    cfg,
		Out:       os.Stderr,
	}, nil
}

// Result summarizes a completed run
type Result struct {
	// NoOp is true when no unprocessed article existed
	NoOp bool

	// Article is the processed article (nil on a no-op run)
	Article *model.Article

	// LinksFound is the number of search results considered
	LinksFound int

	// SourcesAccepted counts extractions that cleared the acceptance
	// threshold and produced a reference
	SourcesAccepted int

	// Enhanced reports whether the stored content is longer than the
	// original
	Enhanced bool
}

// Run processes at most one unprocessed article. Search, extraction, and
// rewrite failures degrade to empty or fallback values; only store access
// failures (selection or persistence) are returned as errors.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	// 1. Select the next unprocessed article
	article, err := p.store.SelectNextUnprocessed(ctx)
	if err != nil {
		return nil, fmt.Errorf("select article: %w", err)
	}
	if article == nil {
		p.logf("No unprocessed articles found.")
		return &Result{NoOp: true}, nil
	}

	p.logf("Processing article: %q", article.Title)

	// 2. Search for related content using the title as query
	p.logf("Searching for related content...")
	links, err := p.search.Search(ctx, article.Title)
	if err != nil {
		p.logf("Warning: search failed: %v", err)
		links = nil
	}
	p.logf("Found %d relevant links", len(links))

	// 3. Scrape each result in order, aggregating accepted sources
	var contextBuf strings.Builder
	references := []model.Reference{}

	for i, link := range links {
		p.logf("Scraping source %d: %s", i+1, link)

		text, err := p.extractor.Extract(ctx, link)
		if err != nil {
			p.logf("Warning: scrape failed for %s: %v", link, err)
			continue
		}
		if len(text) <= p.config.Extract.AcceptMinChars {
			continue
		}

		label := fmt.Sprintf("Source %d", len(references)+1)
		fmt.Fprintf(&contextBuf, "\n\n%s (%s):\n%s", label, link, text)
		references = append(references, model.Reference{
			URL:     link,
			Title:   label,
			Snippet: extract.Snippet(text, p.config.Extract.SnippetChars),
		})
	}

	// 4. Rewrite; never fails, degrades to placeholder or fallback
	p.logf("Rewriting content...")
	updated := p.rewriter.Rewrite(ctx, article.Title, article.Content, contextBuf.String())

	// 5. Persist the enhanced content and the full reference list in one
	// update; partial state is never written
	p.logf("Updating article in store...")
	stored, err := p.store.Update(ctx, article.ID, model.ArticleUpdate{
		UpdatedContent: &updated,
		References:     &references,
	})
	if err != nil {
		return nil, fmt.Errorf("persist article %d: %w", article.ID, err)
	}

	result := &Result{
		Article:         stored,
		LinksFound:      len(links),
		SourcesAccepted: len(references),
		Enhanced:        len(updated) > len(article.Content),
	}

	// 6. Summary
	p.logf("Article processed successfully!")
	p.logf("Summary:")
	p.logf("  - Title: %s", article.Title)
	p.logf("  - Sources accepted: %d", result.SourcesAccepted)
	p.logf("  - Content enhanced: %v", result.Enhanced)

	return result, nil
}

func (p *Pipeline) logf(format string, args ...any) {
	if p.Out == nil {
		return
	}
	fmt.Fprintf(p.Out, format+"\n", args...)
}
