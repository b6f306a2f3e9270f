package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"

	"github.com/Proteobench/Proteobench/internal/common"
	"github.com/Proteobench/Proteobench/internal/params"
)

// Run is one stored extraction.
type Run struct {
	ID            uuid.UUID
	SourcePath    string
	Engine        string
	ContentHash   string
	SchemaVersion string
	Record        *params.Record
	CreatedAt     time.Time
}

type RunRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Run, error)
	GetByHash(ctx context.Context, engine, hash string) (*Run, error)
	Create(ctx context.Context, run Run) (*Run, error)
	// UpsertByHash returns the stored run for the same content and engine
	// when there is one (deduplicated=true), otherwise inserts run.
	UpsertByHash(ctx context.Context, run Run) (*Run, bool, error)
	List(ctx context.Context, limit int) ([]*Run, error)
	Count(ctx context.Context) (int, error)
}

type runRepo struct {
	db     *DB
	logger *slog.Logger
}

func NewRunRepository(db *DB, logger *slog.Logger) RunRepository {
	if logger == nil {
		logger = slog.Default()
	}
	return &runRepo{db: db, logger: logger}
}

func (r *runRepo) builder() *entsql.DialectBuilder {
	return entsql.Dialect(r.db.Dialect())
}

func (r *runRepo) selectRuns() *entsql.Selector {
	b := r.builder()
	return b.Select(runColumns...).From(b.Table(runsTable))
}

func (r *runRepo) GetByID(ctx context.Context, id uuid.UUID) (*Run, error) {
	q, args := r.selectRuns().Where(entsql.EQ(colID, id)).Limit(1).Query()
	run, err := r.queryOne(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}
	return run, nil
}

func (r *runRepo) GetByHash(ctx context.Context, engine, hash string) (*Run, error) {
	q, args := r.selectRuns().
		Where(entsql.And(
			entsql.EQ(colContentHash, hash),
			entsql.EQ(colEngine, engine),
		)).
		Limit(1).
		Query()
	run, err := r.queryOne(ctx, q, args)
	if err != nil {
		return nil, fmt.Errorf("get run by hash: %w", err)
	}
	return run, nil
}

func (r *runRepo) Create(ctx context.Context, run Run) (*Run, error) {
	if run.Record == nil {
		return nil, fmt.Errorf("%w: run has no record", common.ErrInvalidInput)
	}
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now()
	}
	run.CreatedAt = run.CreatedAt.UTC().Truncate(time.Microsecond)
	if run.SchemaVersion == "" {
		run.SchemaVersion = params.SchemaVersion
	}

	body, err := json.Marshal(run.Record)
	if err != nil {
		return nil, fmt.Errorf("encode record: %w", err)
	}

	q, args := r.builder().Insert(runsTable).
		Columns(runColumns...).
		Values(
			run.ID,
			run.SourcePath,
			run.Engine,
			run.ContentHash,
			run.SchemaVersion,
			nullable(run.Record.SoftwareName),
			nullable(run.Record.SoftwareVersion),
			string(body),
			run.CreatedAt,
		).
		Query()
	if _, err := r.db.conn().ExecContext(ctx, q, args...); err != nil {
		r.logger.Error("failed to create run", "source_path", run.SourcePath, "engine", run.Engine, "error", err)
		return nil, fmt.Errorf("%w: insert run: %v", common.ErrDatabase, err)
	}
	run.Record = run.Record.Clone()
	return &run, nil
}

func (r *runRepo) UpsertByHash(ctx context.Context, run Run) (*Run, bool, error) {
	existing, err := r.GetByHash(ctx, run.Engine, run.ContentHash)
	if err == nil {
		return existing, true, nil
	}
	if !errors.Is(err, common.ErrNotFound) {
		return nil, false, err
	}
	created, err := r.Create(ctx, run)
	if err != nil {
		// a concurrent ingest of the same content may have won the unique index
		if existing, getErr := r.GetByHash(ctx, run.Engine, run.ContentHash); getErr == nil {
			return existing, true, nil
		}
		r.logger.Error("failed to upsert run by hash", "source_path", run.SourcePath, "engine", run.Engine, "error", err)
		return nil, false, err
	}
	return created, false, nil
}

func (r *runRepo) List(ctx context.Context, limit int) ([]*Run, error) {
	s := r.selectRuns().OrderBy(entsql.Desc(colCreatedAt), colID)
	if limit > 0 {
		s = s.Limit(limit)
	}
	q, args := s.Query()
	rows, err := r.db.conn().QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: list runs: %v", common.ErrDatabase, err)
	}
	defer rows.Close()

	var out []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list runs: %v", common.ErrDatabase, err)
	}
	return out, nil
}

func (r *runRepo) Count(ctx context.Context) (int, error) {
	b := r.builder()
	q, args := b.Select().Count().From(b.Table(runsTable)).Query()
	var n int
	if err := r.db.conn().QueryRowContext(ctx, q, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("%w: count runs: %v", common.ErrDatabase, err)
	}
	return n, nil
}

func (r *runRepo) queryOne(ctx context.Context, q string, args []any) (*Run, error) {
	rows, err := r.db.conn().QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("%w: %v", common.ErrDatabase, err)
		}
		return nil, common.ErrNotFound
	}
	return scanRun(rows)
}

func scanRun(rows *sql.Rows) (*Run, error) {
	var (
		run             Run
		softwareName    sql.NullString
		softwareVersion sql.NullString
		body            string
	)
	if err := rows.Scan(
		&run.ID,
		&run.SourcePath,
		&run.Engine,
		&run.ContentHash,
		&run.SchemaVersion,
		&softwareName,
		&softwareVersion,
		&body,
		&run.CreatedAt,
	); err != nil {
		return nil, fmt.Errorf("%w: scan run: %v", common.ErrDatabase, err)
	}
	run.Record = params.New()
	if err := json.Unmarshal([]byte(body), run.Record); err != nil {
		return nil, fmt.Errorf("decode record of run %s: %w", run.ID, err)
	}
	return &run, nil
}

func nullable(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}
