package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/articlekit/enrich/internal/server"
	"github.com/articlekit/enrich/internal/storage"
)

var (
	serveAddr string
	dbPath    string
	seed      bool
)

// serveCmd represents the serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the demo article store API",
	Long: `Serve starts an HTTP article store implementing the API the
pipeline consumes:

  GET    /api/articles        list articles (newest first)
  GET    /api/articles/{id}   fetch one article
  PUT    /api/articles/{id}   partial update
  DELETE /api/articles/{id}   remove an article

Articles live in memory by default; pass --db for a SQLite file.

Example:
  enrich serve --seed
  enrich serve --addr :8000 --db articles.db --seed`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8000", "listen address")
	serveCmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path (empty = in-memory)")
	serveCmd.Flags().BoolVar(&seed, "seed", false, "load sample articles into an empty store")
}

func runServe(cmd *cobra.Command, args []string) error {
	logger, err := newLogger(verbose)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	var backend storage.Storage
	if dbPath != "" {
		backend, err = storage.NewSQLite(dbPath)
		if err != nil {
			return fmt.Errorf("open storage: %w", err)
		}
		logger.Info("using sqlite storage", zap.String("path", dbPath))
	} else {
		backend = storage.NewMemory()
		logger.Info("using in-memory storage")
	}
	defer func() { _ = backend.Close() }()

	if seed {
		if err := storage.Seed(context.Background(), backend); err != nil {
			return fmt.Errorf("seed storage: %w", err)
		}
		logger.Info("seeded sample articles")
	}

	srv := server.New(backend, logger)

	// Shut down cleanly on SIGINT/SIGTERM
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start(serveAddr)
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case sig := <-sigCh:
		logger.Info("shutting down", zap.String("signal", sig.String()))
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Stop(ctx)
	}
}

// newLogger returns a zap logger; development config when verbose
func newLogger(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
