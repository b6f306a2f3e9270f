package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/Proteobench/Proteobench/internal/repository"
)

// SheetName is the worksheet holding one row per run.
const SheetName = "Parameters"

var runColumns = []string{"Run ID", "Source Path", "Engine", "Ingested At"}

// Service produces XLSX bytes from stored runs.
type Service struct {
	runs   repository.RunRepository
	logger *slog.Logger
}

func NewService(runs repository.RunRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{runs: runs, logger: logger}
}

// ExportRunsXLSX returns a workbook with the newest runs first. limit <= 0
// exports every run.
func (s *Service) ExportRunsXLSX(ctx context.Context, limit int) ([]byte, error) {
	start := time.Now()
	runs, err := s.runs.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	out, err := WriteXLSX(runs)
	if err != nil {
		return nil, err
	}
	s.logger.Info("export.xlsx.ok",
		"rows", len(runs),
		"bytes", len(out),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return out, nil
}

// WriteXLSX lays runs out as run columns followed by the record columns.
func WriteXLSX(runs []*repository.Run) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return nil, fmt.Errorf("xlsx sheet: %w", err)
	}

	headers := append(append([]string{}, runColumns...), Header()...)
	if err := writeRow(f, 1, headers); err != nil {
		return nil, err
	}

	for i, run := range runs {
		cells := []string{
			run.ID.String(),
			run.SourcePath,
			run.Engine,
			run.CreatedAt.UTC().Format(time.RFC3339),
		}
		cells = append(cells, Row(run.Record)...)
		if err := writeRow(f, i+2, cells); err != nil {
			return nil, err
		}
	}

	_ = f.SetColWidth(SheetName, "A", "A", 38) // uuid
	_ = f.SetColWidth(SheetName, "B", "B", 60) // path
	_ = f.SetColWidth(SheetName, "C", "D", 22)
	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return nil, fmt.Errorf("xlsx panes: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}
	return buf.Bytes(), nil
}

func writeRow(f *excelize.File, row int, cells []string) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("xlsx cell: %w", err)
	}
	values := make([]any, len(cells))
	for i, c := range cells {
		values[i] = c
	}
	if err := f.SetSheetRow(SheetName, cell, &values); err != nil {
		return fmt.Errorf("xlsx row %d: %w", row, err)
	}
	return nil
}
