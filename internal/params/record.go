package params

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Proteobench/Proteobench/internal/common"
)

// Record is the canonical parameter set of one benchmark run.
// A nil field is unset; a pointer to "" is an explicitly empty value.
type Record struct {
	SoftwareName               *string  `json:"software_name,omitempty"`
	SoftwareVersion            *string  `json:"software_version,omitempty"`
	SearchEngine               *string  `json:"search_engine,omitempty"`
	SearchEngineVersion        *string  `json:"search_engine_version,omitempty"`
	IdentFDRPSM                *float64 `json:"ident_fdr_psm,omitempty"`
	IdentFDRPeptide            *float64 `json:"ident_fdr_peptide,omitempty"`
	IdentFDRProtein            *float64 `json:"ident_fdr_protein,omitempty"`
	EnableMatchBetweenRuns     *bool    `json:"enable_match_between_runs,omitempty"`
	PrecursorMassTolerance     *string  `json:"precursor_mass_tolerance,omitempty"`
	FragmentMassTolerance      *string  `json:"fragment_mass_tolerance,omitempty"`
	Enzyme                     *string  `json:"enzyme,omitempty"`
	AllowedMiscleavages        *int     `json:"allowed_miscleavages,omitempty"`
	MinPeptideLength           *int     `json:"min_peptide_length,omitempty"`
	MaxPeptideLength           *int     `json:"max_peptide_length,omitempty"`
	FixedMods                  *string  `json:"fixed_mods,omitempty"`
	VariableMods               *string  `json:"variable_mods,omitempty"`
	MaxMods                    *int     `json:"max_mods,omitempty"`
	MinPrecursorCharge         *int     `json:"min_precursor_charge,omitempty"`
	MaxPrecursorCharge         *int     `json:"max_precursor_charge,omitempty"`
	SpectralLibraryGeneration  *string  `json:"spectral_library_generation,omitempty"`
	ScanWindow                 *int     `json:"scan_window,omitempty"`
	QuantificationMethod       *string  `json:"quantification_method,omitempty"`
	SecondPass                 *bool    `json:"second_pass,omitempty"`
	ProteinInference           *string  `json:"protein_inference,omitempty"`
	AbundanceNormalizationIons *string  `json:"abundance_normalization_ions,omitempty"`
}

// FieldValue is one set field of a record.
type FieldValue struct {
	Field
	Value any
}

type binding struct {
	Field
	get   func(r *Record) (any, bool)
	set   func(r *Record, v any) error
	clone func(dst, src *Record)
}

func bind[T string | float64 | int | bool](name string, kind Kind, slot func(r *Record) **T) binding {
	return binding{
		Field: Field{Name: name, Kind: kind},
		get: func(r *Record) (any, bool) {
			p := *slot(r)
			if p == nil {
				return nil, false
			}
			return *p, true
		},
		set: func(r *Record, v any) error {
			t, ok := v.(T)
			if !ok {
				return fmt.Errorf("%w: %s expects %s, got %T", common.ErrInvalidValue, name, kind, v)
			}
			*slot(r) = &t
			return nil
		},
		clone: func(dst, src *Record) {
			if p := *slot(src); p != nil {
				v := *p
				*slot(dst) = &v
			}
		},
	}
}

// Ptr returns a pointer to v, for filling Record fields directly.
func Ptr[T any](v T) *T {
	return &v
}

// New returns an empty record.
func New() *Record {
	return &Record{}
}

func lookupBinding(name string) (binding, error) {
	i, ok := byName[name]
	if !ok {
		return binding{}, fmt.Errorf("%w: %q", common.ErrUnknownField, name)
	}
	return catalog[i], nil
}

// Get returns the value of a field and whether it is set.
func (r *Record) Get(name string) (any, bool) {
	b, err := lookupBinding(name)
	if err != nil {
		return nil, false
	}
	return b.get(r)
}

// Set assigns a typed value; the Go type must match the field kind.
func (r *Record) Set(name string, v any) error {
	b, err := lookupBinding(name)
	if err != nil {
		return err
	}
	return b.set(r, v)
}

// SetString coerces raw to the field kind and assigns it.
func (r *Record) SetString(name, raw string) error {
	b, err := lookupBinding(name)
	if err != nil {
		return err
	}
	v, err := Coerce(b.Kind, raw)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return b.set(r, v)
}

// Values lists set fields in catalog order.
func (r *Record) Values() []FieldValue {
	var out []FieldValue
	for _, b := range catalog {
		if v, ok := b.get(r); ok {
			out = append(out, FieldValue{Field: b.Field, Value: v})
		}
	}
	return out
}

// Clone returns a deep copy.
func (r *Record) Clone() *Record {
	out := New()
	for _, b := range catalog {
		b.clone(out, r)
	}
	return out
}

// FillFrom copies the fields set in src that are unset in r.
func (r *Record) FillFrom(src *Record) {
	if src == nil {
		return
	}
	for _, b := range catalog {
		if _, ok := b.get(r); ok {
			continue
		}
		b.clone(r, src)
	}
}

// String renders only the fields that are set.
func (r *Record) String() string {
	var b strings.Builder
	b.WriteString("{")
	for i, fv := range r.Values() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(fv.Name)
		b.WriteString(": ")
		if s, ok := fv.Value.(string); ok {
			b.WriteString(strconv.Quote(s))
		} else {
			b.WriteString(FormatValue(fv.Value))
		}
	}
	b.WriteString("}")
	return b.String()
}

// FormatValue renders a field value as text; floats use the shortest form.
func FormatValue(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	default:
		return fmt.Sprint(t)
	}
}

// Coerce parses raw into the Go type of kind.
func Coerce(kind Kind, raw string) (any, error) {
	s := strings.TrimSpace(raw)
	switch kind {
	case KindString:
		return raw, nil
	case KindFloat:
		f, err := strconv.ParseFloat(s, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %q is not a number", common.ErrInvalidValue, raw)
		}
		return f, nil
	case KindInt:
		if n, err := strconv.Atoi(s); err == nil {
			return n, nil
		}
		// integral floats such as "2.0" show up in spreadsheet-edited dumps
		if f, err := strconv.ParseFloat(s, 64); err == nil && f == math.Trunc(f) {
			return int(f), nil
		}
		return nil, fmt.Errorf("%w: %q is not an integer", common.ErrInvalidValue, raw)
	case KindBool:
		b, err := ParseBool(s)
		if err != nil {
			return nil, err
		}
		return b, nil
	default:
		return nil, fmt.Errorf("%w: unknown kind %s", common.ErrInvalidValue, kind)
	}
}

// ParseBool accepts the boolean spellings found in search-engine dumps.
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "t", "yes", "y", "1", "on", "enabled":
		return true, nil
	case "false", "f", "no", "n", "0", "off", "disabled":
		return false, nil
	}
	return false, fmt.Errorf("%w: %q is not a boolean", common.ErrInvalidValue, s)
}
