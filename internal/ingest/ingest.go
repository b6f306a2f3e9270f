package ingest

import (
	"context"
	"time"

	"github.com/Proteobench/Proteobench/constants"
	"github.com/Proteobench/Proteobench/internal/params"
)

// IngestionResult is the per-file ingest outcome.
type IngestionResult struct {
	SourcePath   string
	RunID        string
	Engine       string
	Status       constants.RunStatus
	Deduplicated bool
	HashHex      string
	IngestedAt   time.Time
	Record       *params.Record
	Err          string
}

// DirStats summarizes a directory ingest.
type DirStats struct {
	Scanned      uint32
	Matched      uint32
	Succeeded    uint32
	Deduplicated uint32
	Failed       uint32
}

// DirOptions narrows a directory ingest.
type DirOptions struct {
	// Pattern is a doublestar glob relative to root; constants.DefaultIncludePattern when empty.
	Pattern    string
	SkipHidden bool
	// Workers bounds concurrent file ingests; 1 when <= 0.
	Workers int
	// Engine forces an extractor instead of detecting the format.
	Engine string
}

// Ingestor is the behavior the service depends on.
type Ingestor interface {
	// IngestPath extracts and stores a single file.
	IngestPath(ctx context.Context, path string) (IngestionResult, error)
	// IngestDirectory ingests all matching files under root.
	IngestDirectory(ctx context.Context, root string, opts DirOptions) ([]IngestionResult, DirStats, error)
}
