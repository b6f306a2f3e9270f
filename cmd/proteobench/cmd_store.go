package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/Proteobench/Proteobench/internal/export"
	"github.com/Proteobench/Proteobench/internal/extract/engines"
	"github.com/Proteobench/Proteobench/internal/ingest"
	"github.com/Proteobench/Proteobench/internal/metrics"
	"github.com/Proteobench/Proteobench/internal/repository"
	"github.com/Proteobench/Proteobench/internal/server"
)

func (a *app) openRuns(ctx context.Context) (*repository.DB, repository.RunRepository, error) {
	db, err := server.ConnectDB(ctx, a.cfg.Database, a.logger)
	if err != nil {
		return nil, nil, err
	}
	return db, repository.NewRunRepository(db, a.logger), nil
}

func ingestCmd(a *app) *cobra.Command {
	var opts ingest.DirOptions
	cmd := &cobra.Command{
		Use:   "ingest <dir>",
		Short: "Extract and store every parameter file under a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			db, runs, err := a.openRuns(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			if opts.Pattern == "" {
				opts.Pattern = a.cfg.Ingest.Pattern
			}
			if opts.Workers <= 0 {
				opts.Workers = a.cfg.Ingest.Workers
			}
			ing := ingest.NewFSIngestor(engines.Default(a.logger), runs, metrics.NewRecorder(prometheus.NewRegistry()), a.logger)
			results, stats, err := ing.IngestDirectory(ctx, args[0], opts)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for _, r := range results {
				if r.Err != "" {
					fmt.Fprintf(out, "%-12s %s: %s\n", r.Status, r.SourcePath, r.Err)
					continue
				}
				fmt.Fprintf(out, "%-12s %s -> %s (%s)\n", r.Status, r.SourcePath, r.RunID, r.Engine)
			}
			fmt.Fprintf(out, "matched=%d succeeded=%d deduplicated=%d failed=%d\n",
				stats.Matched, stats.Succeeded, stats.Deduplicated, stats.Failed)
			if stats.Failed > 0 {
				return fmt.Errorf("%d of %d files failed", stats.Failed, stats.Matched)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&opts.Pattern, "pattern", "p", "", "Doublestar pattern relative to the directory")
	cmd.Flags().BoolVar(&opts.SkipHidden, "skip-hidden", true, "Skip dot files and directories")
	cmd.Flags().IntVarP(&opts.Workers, "workers", "w", 0, "Files ingested in parallel")
	cmd.Flags().StringVarP(&opts.Engine, "engine", "e", "", "Force an extractor instead of detecting the format")
	return cmd
}

func exportCmd(a *app) *cobra.Command {
	var (
		outPath string
		limit   int
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write stored runs to an XLSX or JSON file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			db, runs, err := a.openRuns(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			if filepath.Ext(outPath) == ".json" {
				list, err := runs.List(ctx, limit)
				if err != nil {
					return err
				}
				f, err := os.Create(outPath)
				if err != nil {
					return fmt.Errorf("create %s: %w", outPath, err)
				}
				defer f.Close()
				if err := export.WriteJSON(f, list); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %d runs to %s\n", len(list), outPath)
				return nil
			}

			data, err := export.NewService(runs, a.logger).ExportRunsXLSX(ctx, limit)
			if err != nil {
				return err
			}
			if err := os.WriteFile(outPath, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", outPath, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", outPath)
			return nil
		},
	}
	cmd.Flags().StringVarP(&outPath, "out", "o", "parameters.xlsx", "Output file; .json writes JSON, anything else XLSX")
	cmd.Flags().IntVar(&limit, "limit", 0, "Newest runs to export; 0 exports all")
	return cmd
}
