package async

import (
	"context"
	"time"
)

// Job is one parameter file waiting to be ingested.
type Job struct {
	Path        string
	Engine      string // forces an extractor; detected from content when empty
	SubmittedAt time.Time
	TraceID     string
}

type Queue interface {
	Enqueue(ctx context.Context, job Job) error
	Shutdown(ctx context.Context)
}
