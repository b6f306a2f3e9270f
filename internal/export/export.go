// Package export flattens parameter records for spreadsheets, JSON and
// protobuf consumers. Every layout follows the field catalog order.
package export

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"time"

	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Proteobench/Proteobench/internal/common"
	"github.com/Proteobench/Proteobench/internal/params"
	"github.com/Proteobench/Proteobench/internal/repository"
)

// Header returns the record columns in catalog order.
func Header() []string {
	return params.Names()
}

// Row renders r as text aligned with Header; unset fields are empty cells.
func Row(r *params.Record) []string {
	names := params.Names()
	out := make([]string, len(names))
	if r == nil {
		return out
	}
	for i, name := range names {
		if v, ok := r.Get(name); ok {
			out[i] = params.FormatValue(v)
		}
	}
	return out
}

// Map returns the set fields of r keyed by field name.
func Map(r *params.Record) map[string]any {
	m := map[string]any{}
	if r != nil {
		for _, fv := range r.Values() {
			m[fv.Name] = fv.Value
		}
	}
	return m
}

// ToStruct converts the set fields of r into a protobuf Struct.
func ToStruct(r *params.Record) (*structpb.Struct, error) {
	s, err := structpb.NewStruct(Map(r))
	if err != nil {
		return nil, fmt.Errorf("record to struct: %w", err)
	}
	return s, nil
}

// FromStruct is the inverse of ToStruct. Numbers are narrowed to int for
// integer fields; unknown names are rejected.
func FromStruct(s *structpb.Struct) (*params.Record, error) {
	rec := params.New()
	for name, v := range s.GetFields() {
		f, ok := params.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("%w: %q", common.ErrUnknownField, name)
		}
		val, err := fromValue(f, v)
		if err != nil {
			return nil, err
		}
		if err := rec.Set(name, val); err != nil {
			return nil, err
		}
	}
	return rec, nil
}

func fromValue(f params.Field, v *structpb.Value) (any, error) {
	switch f.Kind {
	case params.KindString:
		if _, ok := v.GetKind().(*structpb.Value_StringValue); ok {
			return v.GetStringValue(), nil
		}
	case params.KindFloat:
		if _, ok := v.GetKind().(*structpb.Value_NumberValue); ok {
			return v.GetNumberValue(), nil
		}
	case params.KindInt:
		if _, ok := v.GetKind().(*structpb.Value_NumberValue); ok {
			n := v.GetNumberValue()
			if n == math.Trunc(n) {
				return int(n), nil
			}
		}
	case params.KindBool:
		if _, ok := v.GetKind().(*structpb.Value_BoolValue); ok {
			return v.GetBoolValue(), nil
		}
	}
	return nil, fmt.Errorf("%w: %s expects %s", common.ErrInvalidValue, f.Name, f.Kind)
}

// RunDocument is the JSON shape of one stored run.
type RunDocument struct {
	ID            string         `json:"id"`
	SourcePath    string         `json:"source_path"`
	Engine        string         `json:"engine"`
	ContentHash   string         `json:"content_hash"`
	SchemaVersion string         `json:"schema_version"`
	CreatedAt     time.Time      `json:"created_at"`
	Parameters    *params.Record `json:"parameters"`
}

func Document(run *repository.Run) RunDocument {
	return RunDocument{
		ID:            run.ID.String(),
		SourcePath:    run.SourcePath,
		Engine:        run.Engine,
		ContentHash:   run.ContentHash,
		SchemaVersion: run.SchemaVersion,
		CreatedAt:     run.CreatedAt,
		Parameters:    run.Record,
	}
}

// WriteJSON writes runs as an indented JSON array.
func WriteJSON(w io.Writer, runs []*repository.Run) error {
	docs := make([]RunDocument, 0, len(runs))
	for _, run := range runs {
		docs = append(docs, Document(run))
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(docs); err != nil {
		return fmt.Errorf("json write: %w", err)
	}
	return nil
}
