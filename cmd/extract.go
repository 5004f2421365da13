package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/okian/eventmatch/internal/domain/model"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var extractCmd = &cobra.Command{
	Use:   "extract FILE...",
	Short: "Parse résumé files into structured JSON",
	Long:  "Parse plain text, PDF, DOCX or HTML résumés and print skills, experience and education as JSON. The format is detected from the file extension.",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runExtract,
}

var extractParallel int

func init() {
	extractCmd.Flags().IntVarP(&extractParallel, "parallel", "p", 4, "Number of files parsed concurrently")
	rootCmd.AddCommand(extractCmd)
}

// extractResult is one parsed file.
type extractResult struct {
	File   string             `json:"file"`
	Resume model.ParsedResume `json:"resume"`
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	cfg, err := setup(ctx, os.Stderr)
	if err != nil {
		return err
	}
	svc, err := newService(ctx, cfg)
	if err != nil {
		return err
	}
	defer svc.Stop()

	results := make([]extractResult, len(args))
	g, gCtx := errgroup.WithContext(ctx)
	if extractParallel > 0 {
		g.SetLimit(extractParallel)
	}
	for i, path := range args {
		i, path := i, path
		g.Go(func() error {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("read %s: %w", path, err)
			}
			parsed, err := svc.ParseDocument(gCtx, "", filepath.Base(path), data)
			if err != nil {
				return fmt.Errorf("parse %s: %w", path, err)
			}
			results[i] = extractResult{File: path, Resume: parsed}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}
