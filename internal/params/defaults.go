package params

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sort"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/Proteobench/Proteobench/constants"
	"github.com/Proteobench/Proteobench/internal/common"
)

// descriptor is one entry of a field-definition document. Keys other than
// value and placeholder (type, name, ...) belong to the form renderer.
type descriptor struct {
	Value       any `json:"value"`
	Placeholder any `json:"placeholder"`
}

// LoadDefaults builds a record from a field-definition document
// (field name -> {"value": ..., "placeholder": ...}). A present value wins over
// a placeholder; the placeholder "-" means no default; fields absent from the
// document stay unset.
//
// A missing document is logged and yields an empty record with a nil error.
// Field names outside the catalog are rejected.
func LoadDefaults(path string, logger *slog.Logger) (*Record, error) {
	if logger == nil {
		logger = slog.Default()
	}
	rec := New()

	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logger.Warn("params.defaults.missing", "path", path, "error", common.ErrConfigurationMissing)
			return rec, nil
		}
		return nil, fmt.Errorf("read field definitions: %w", err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, common.NewAppError("SCHEMA_INVALID", "field definitions are not a JSON object", err)
	}

	if unknown := unknownKeys(doc); len(unknown) > 0 {
		logger.Error("params.defaults.unknown_fields", "path", path, "fields", unknown)
		return nil, common.NewAppError("SCHEMA_DRIFT",
			fmt.Sprintf("field definitions name fields outside the catalog: %v", unknown),
			common.ErrUnknownField)
	}

	if err := validateDocument(raw); err != nil {
		return nil, common.NewAppError("SCHEMA_INVALID", "field definitions do not match the catalog schema", err)
	}

	set := 0
	for _, b := range catalog {
		entry, ok := doc[b.Name]
		if !ok {
			continue
		}
		var d descriptor
		if err := json.Unmarshal(entry, &d); err != nil {
			return nil, fmt.Errorf("decode %s: %w", b.Name, err)
		}
		text, ok := pickDefault(d)
		if !ok {
			continue
		}
		if err := rec.SetString(b.Name, text); err != nil {
			return nil, common.NewAppError("SCHEMA_INVALID", "default does not fit field kind", err)
		}
		set++
	}

	logger.Debug("params.defaults.loaded", "path", path, "fields_set", set)
	return rec, nil
}

func pickDefault(d descriptor) (string, bool) {
	if d.Value != nil {
		return scalarText(d.Value), true
	}
	if d.Placeholder != nil {
		p := scalarText(d.Placeholder)
		if p != constants.NoValuePlaceholder {
			return p, true
		}
	}
	return "", false
}

func scalarText(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		return FormatValue(t)
	case float64:
		return FormatValue(t)
	default:
		return fmt.Sprint(t)
	}
}

func unknownKeys(doc map[string]json.RawMessage) []string {
	var out []string
	for k := range doc {
		if _, ok := byName[k]; !ok {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}

// FieldsJSONSchema describes a valid field-definition document for the catalog.
func FieldsJSONSchema() map[string]any {
	// null is an explicit "no value" and falls through to the placeholder
	scalar := map[string]any{"type": []string{"string", "number", "boolean", "null"}}
	props := make(map[string]any, len(catalog))
	for _, b := range catalog {
		props[b.Name] = map[string]any{
			"type": "object",
			"properties": map[string]any{
				"value":       scalar,
				"placeholder": scalar,
			},
		}
	}
	return map[string]any{
		"type":                 "object",
		"additionalProperties": false,
		"properties":           props,
	}
}

func validateDocument(data []byte) error {
	b, err := json.Marshal(FieldsJSONSchema())
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("fields.schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	schema, err := compiler.Compile("fields.schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := schema.Validate(v); err != nil {
		return fmt.Errorf("%w: %v", common.ErrInvalidValue, err)
	}
	return nil
}
