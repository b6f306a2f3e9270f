package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/Proteobench/Proteobench/constants"
	"github.com/Proteobench/Proteobench/internal/common"
)

// IngestDirectory walks root, keeps files matching opts.Pattern, skips hidden
// entries if requested, and ingests matches with at most opts.Workers in
// flight. Per-file failures are reported in the results, not as an error.
// Results come back in walk order.
func (i *FSIngestor) IngestDirectory(ctx context.Context, root string, opts DirOptions) ([]IngestionResult, DirStats, error) {
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, fmt.Errorf("%w: root path is required", common.ErrInvalidInput)
	}
	pattern := opts.Pattern
	if pattern == "" {
		pattern = constants.DefaultIncludePattern
	}
	workers := opts.Workers
	if workers <= 0 {
		workers = 1
	}

	var (
		stats   DirStats
		matched []string
		results []IngestionResult
	)

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		stats.Scanned++
		if walkErr != nil {
			if path == root {
				return walkErr
			}
			results = append(results, IngestionResult{SourcePath: path, Status: constants.RunStatusFailed, Err: walkErr.Error()})
			stats.Failed++
			return nil
		}
		if opts.SkipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if !MatchPattern(pattern, root, path) {
			return nil
		}
		stats.Matched++
		matched = append(matched, path)
		return nil
	})
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, stats, common.NewFileNotFound(root)
		}
		return results, stats, fmt.Errorf("walk: %w", err)
	}

	perFile := make([]IngestionResult, len(matched))
	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for idx, path := range matched {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r, err := i.ingest(gctx, path, opts.Engine)
			if err != nil {
				r.Err = err.Error()
			}
			perFile[idx] = r

			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				stats.Failed++
				return nil
			}
			stats.Succeeded++
			if r.Deduplicated {
				stats.Deduplicated++
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return append(results, perFile...), stats, fmt.Errorf("ingest directory: %w", err)
	}

	i.logger.Info("ingest.directory.done", "root", root, "pattern", pattern,
		"scanned", stats.Scanned, "matched", stats.Matched, "succeeded", stats.Succeeded,
		"deduplicated", stats.Deduplicated, "failed", stats.Failed)
	return append(results, perFile...), stats, nil
}
