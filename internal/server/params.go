package server

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Proteobench/Proteobench/internal/common"
	"github.com/Proteobench/Proteobench/internal/export"
	"github.com/Proteobench/Proteobench/internal/extract"
	"github.com/Proteobench/Proteobench/internal/ingest"
	"github.com/Proteobench/Proteobench/internal/repository"
)

const defaultListLimit = 100

// Ingestor is what ParamsService needs from the ingest layer.
type Ingestor interface {
	ingest.Ingestor
	IngestPathAs(ctx context.Context, path, engine string) (ingest.IngestionResult, error)
}

type ParamsService struct {
	registry *extract.Registry
	ingestor Ingestor
	runs     repository.RunRepository
	logger   *slog.Logger
}

func NewParamsService(reg *extract.Registry, ing Ingestor, runs repository.RunRepository, logger *slog.Logger) *ParamsService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ParamsService{registry: reg, ingestor: ing, runs: runs, logger: logger}
}

func (s *ParamsService) Extract(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	path := stringField(req, "path")
	if err := common.ValidateAndReturnError(common.NewValidator().Field("path", path, common.Required)); err != nil {
		return nil, err
	}
	engine := stringField(req, "engine")

	ex, err := s.registry.Resolve(path, engine)
	if err != nil {
		s.logger.Warn("grpc.extract.resolve.failed", "path", path, "engine", engine, "error", err)
		return nil, common.ToStatus(err)
	}
	rec, err := ex.Extract(path)
	if err != nil {
		s.logger.Warn("grpc.extract.failed", "path", path, "engine", ex.Name(), "error", err)
		return nil, common.ToStatus(err)
	}
	return newStruct(map[string]any{
		"engine":     ex.Name(),
		"parameters": export.Map(rec),
	})
}

func (s *ParamsService) Ingest(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	path := stringField(req, "path")
	if err := common.ValidateAndReturnError(common.NewValidator().Field("path", path, common.Required)); err != nil {
		return nil, err
	}
	res, err := s.ingestor.IngestPathAs(ctx, path, stringField(req, "engine"))
	if err != nil {
		return nil, common.ToStatus(err)
	}
	return newStruct(map[string]any{
		"run_id":       res.RunID,
		"engine":       res.Engine,
		"status":       string(res.Status),
		"deduplicated": res.Deduplicated,
		"content_hash": res.HashHex,
		"parameters":   export.Map(res.Record),
	})
}

func (s *ParamsService) IngestDirectory(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	root := stringField(req, "root")
	if err := common.ValidateAndReturnError(common.NewValidator().Field("root", root, common.Required)); err != nil {
		return nil, err
	}
	opts := ingest.DirOptions{
		Pattern:    stringField(req, "pattern"),
		SkipHidden: req.GetFields()["skip_hidden"].GetBoolValue(),
		Workers:    int(req.GetFields()["workers"].GetNumberValue()),
		Engine:     stringField(req, "engine"),
	}
	results, stats, err := s.ingestor.IngestDirectory(ctx, root, opts)
	if err != nil {
		return nil, common.ToStatus(err)
	}

	files := make([]any, 0, len(results))
	for _, r := range results {
		files = append(files, map[string]any{
			"path":         r.SourcePath,
			"status":       string(r.Status),
			"run_id":       r.RunID,
			"engine":       r.Engine,
			"deduplicated": r.Deduplicated,
			"error":        r.Err,
		})
	}
	return newStruct(map[string]any{
		"scanned":      int(stats.Scanned),
		"matched":      int(stats.Matched),
		"succeeded":    int(stats.Succeeded),
		"deduplicated": int(stats.Deduplicated),
		"failed":       int(stats.Failed),
		"results":      files,
	})
}

func (s *ParamsService) GetRun(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	raw := stringField(req, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, common.InvalidArgumentErrorf("id must be a UUID, got %q", raw)
	}
	run, err := s.runs.GetByID(ctx, id)
	if err != nil {
		if !errors.Is(err, common.ErrNotFound) {
			s.logger.Error("grpc.get_run.failed", "run_id", id, "error", err)
		}
		return nil, common.ToStatus(err)
	}
	return newStruct(runMap(run))
}

func (s *ParamsService) ListRuns(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	limit := int(req.GetFields()["limit"].GetNumberValue())
	if limit < 0 {
		return nil, common.InvalidArgumentError("limit must not be negative")
	}
	if limit == 0 {
		limit = defaultListLimit
	}
	runs, err := s.runs.List(ctx, limit)
	if err != nil {
		s.logger.Error("grpc.list_runs.failed", "error", err)
		return nil, common.ToStatus(err)
	}
	total, err := s.runs.Count(ctx)
	if err != nil {
		return nil, common.ToStatus(err)
	}

	out := make([]any, 0, len(runs))
	for _, run := range runs {
		out = append(out, runMap(run))
	}
	return newStruct(map[string]any{"runs": out, "total": total})
}

func runMap(run *repository.Run) map[string]any {
	return map[string]any{
		"id":             run.ID.String(),
		"source_path":    run.SourcePath,
		"engine":         run.Engine,
		"content_hash":   run.ContentHash,
		"schema_version": run.SchemaVersion,
		"created_at":     run.CreatedAt.UTC().Format(time.RFC3339Nano),
		"parameters":     export.Map(run.Record),
	}
}

func stringField(s *structpb.Struct, name string) string {
	return strings.TrimSpace(s.GetFields()[name].GetStringValue())
}

func newStruct(m map[string]any) (*structpb.Struct, error) {
	out, err := structpb.NewStruct(m)
	if err != nil {
		return nil, common.InternalErrorf("encode response: %v", err)
	}
	return out, nil
}

var _ ParamsServiceServer = (*ParamsService)(nil)
