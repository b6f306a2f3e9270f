package ingest

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/Proteobench/Proteobench/constants"
	"github.com/Proteobench/Proteobench/internal/common"
	"github.com/Proteobench/Proteobench/internal/extract"
	"github.com/Proteobench/Proteobench/internal/metrics"
	"github.com/Proteobench/Proteobench/internal/params"
	"github.com/Proteobench/Proteobench/internal/repository"
)

// FSIngestor reads parameter files from the local filesystem and stores one
// run per distinct (content, engine).
type FSIngestor struct {
	Registry *extract.Registry
	Runs     repository.RunRepository
	Metrics  *metrics.Recorder
	logger   *slog.Logger
}

func NewFSIngestor(reg *extract.Registry, runs repository.RunRepository, rec *metrics.Recorder, logger *slog.Logger) *FSIngestor {
	if logger == nil {
		logger = slog.Default()
	}
	return &FSIngestor{
		Registry: reg,
		Runs:     runs,
		Metrics:  rec,
		logger:   logger,
	}
}

// IngestPath detects the format of path, extracts and validates its record,
// and stores it unless identical content was already stored for that engine.
func (i *FSIngestor) IngestPath(ctx context.Context, path string) (IngestionResult, error) {
	return i.ingest(ctx, path, "")
}

// IngestPathAs is IngestPath with the extractor chosen by name.
func (i *FSIngestor) IngestPathAs(ctx context.Context, path, engine string) (IngestionResult, error) {
	return i.ingest(ctx, path, engine)
}

func (i *FSIngestor) ingest(ctx context.Context, path, engine string) (IngestionResult, error) {
	started := time.Now()
	out := IngestionResult{SourcePath: path, Status: constants.RunStatusFailed}

	abs, err := filepath.Abs(path)
	if err != nil {
		i.logger.Error("ingest.abs.error", "path", path, "error", err)
		return out, fmt.Errorf("abs path: %w", err)
	}
	out.SourcePath = abs

	ext := constants.NormalizeExt(filepath.Ext(abs))
	if ext == "" || !AllowedExt(ext) {
		i.logger.Warn("ingest.ext.unsupported", "path", abs, "ext", ext)
		out.Status = constants.RunStatusUnsupported
		i.Metrics.Extraction(engine, string(out.Status), time.Since(started))
		return out, &common.FileError{Path: abs, Cause: fmt.Errorf("%w: extension %q", common.ErrUnsupportedFormat, ext)}
	}

	sum, err := hashFile(abs)
	if err != nil {
		i.logger.Error("ingest.hash.error", "path", abs, "error", err)
		i.Metrics.Extraction(engine, string(out.Status), time.Since(started))
		return out, err
	}
	out.HashHex = hex.EncodeToString(sum)

	ex, err := i.Registry.Resolve(abs, engine)
	if err != nil {
		if errors.Is(err, common.ErrUnsupportedFormat) {
			out.Status = constants.RunStatusUnsupported
		}
		i.logger.Warn("ingest.detect.failed", "path", abs, "error", err)
		i.Metrics.Extraction(engine, string(out.Status), time.Since(started))
		return out, err
	}
	out.Engine = ex.Name()

	rec, err := ex.Extract(abs)
	if err != nil {
		i.logger.Error("ingest.extract.failed", "path", abs, "engine", out.Engine, "error", err)
		i.Metrics.Extraction(out.Engine, string(out.Status), time.Since(started))
		return out, err
	}
	if err := params.Validate(rec); err != nil {
		i.logger.Error("ingest.validate.failed", "path", abs, "engine", out.Engine, "error", err)
		i.Metrics.Extraction(out.Engine, string(out.Status), time.Since(started))
		return out, &common.FileError{Path: abs, Cause: err}
	}

	run, dedup, err := i.Runs.UpsertByHash(ctx, repository.Run{
		SourcePath:  abs,
		Engine:      out.Engine,
		ContentHash: out.HashHex,
		Record:      rec,
	})
	if err != nil {
		i.Metrics.Extraction(out.Engine, string(out.Status), time.Since(started))
		return out, err
	}

	out.RunID = run.ID.String()
	out.Deduplicated = dedup
	out.IngestedAt = run.CreatedAt
	out.Record = run.Record
	out.Status = constants.RunStatusOK
	if dedup {
		out.Status = constants.RunStatusDeduplicated
	}
	i.Metrics.Extraction(out.Engine, string(out.Status), time.Since(started))
	i.logger.Info("ingest.file.ok", "path", abs, "engine", out.Engine, "run_id", out.RunID,
		"deduplicated", dedup, "request_id", common.RequestIDFromContext(ctx))
	return out, nil
}

func hashFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, common.NewFileNotFound(path)
		}
		return nil, &common.FileError{Path: path, Cause: err}
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return nil, &common.FileError{Path: path, Cause: fmt.Errorf("hash: %w", err)}
	}
	return h.Sum(nil), nil
}
