// Package engines wires the built-in extractors into a registry.
package engines

import (
	"log/slog"

	"github.com/Proteobench/Proteobench/internal/extract"
	"github.com/Proteobench/Proteobench/internal/extract/i2masschroq"
	"github.com/Proteobench/Proteobench/internal/extract/spectronaut"
)

// Default returns a registry holding every supported format.
func Default(logger *slog.Logger) *extract.Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return extract.NewRegistry(
		i2masschroq.New(logger),
		spectronaut.New(logger),
	)
}
