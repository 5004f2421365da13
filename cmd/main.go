// Package main provides the eventmatch command: the HTTP service plus
// offline résumé extraction and recommendation commands.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	service "github.com/okian/eventmatch/internal/app"
	"github.com/okian/eventmatch/internal/config"
	"github.com/okian/eventmatch/pkg/logger"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "eventmatch",
	Short:         "Résumé skill extraction and event recommendation service",
	Long:          "eventmatch parses résumés into skills, experience and education, and recommends catalog events by TF-IDF similarity, category history and popularity.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup loads configuration and initializes the global logger writing to out.
func setup(ctx context.Context, out io.Writer) (*config.Config, error) {
	cfg, err := config.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := logger.Init(logger.WithFormat(cfg.LogFormat), logger.WithOutput(out)); err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}
	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		logger.Get().Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}
	return cfg, nil
}

// newService builds and starts a service from configuration.
func newService(ctx context.Context, cfg *config.Config) (*service.Service, error) {
	svc := service.New(
		service.WithLogger(logger.Named("service")),
		service.WithCatalogPath(cfg.CatalogPath),
		service.WithTopN(cfg.TopN),
		service.WithSimilarityThreshold(cfg.SimilarityThreshold),
		service.WithCollaborativeScore(cfg.CollaborativeScore),
		service.WithEntityExtraction(cfg.EntityExtraction),
		service.WithParseCacheSize(cfg.ParseCacheSize),
	)
	if err := svc.Start(ctx); err != nil {
		return nil, fmt.Errorf("start service: %w", err)
	}
	return svc, nil
}
