// Package params holds the canonical parameter record every extractor populates.
//
// Field names are a closed, versioned catalog shared by extractors, the
// field-definition defaults loader and tabular export. Adding a field is
// backward compatible; renaming or removing one bumps SchemaVersion.
package params

import "fmt"

// SchemaVersion identifies the field catalog stored alongside each run.
const SchemaVersion = "1"

// Kind is the semantic type of a field's value.
type Kind int

const (
	KindString Kind = iota
	KindFloat
	KindInt
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindFloat:
		return "float"
	case KindInt:
		return "int"
	case KindBool:
		return "bool"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Field describes one catalog entry.
type Field struct {
	Name string
	Kind Kind
}

// Catalog names.
const (
	SoftwareName               = "software_name"
	SoftwareVersion            = "software_version"
	SearchEngine               = "search_engine"
	SearchEngineVersion        = "search_engine_version"
	IdentFDRPSM                = "ident_fdr_psm"
	IdentFDRPeptide            = "ident_fdr_peptide"
	IdentFDRProtein            = "ident_fdr_protein"
	EnableMatchBetweenRuns     = "enable_match_between_runs"
	PrecursorMassTolerance     = "precursor_mass_tolerance"
	FragmentMassTolerance      = "fragment_mass_tolerance"
	Enzyme                     = "enzyme"
	AllowedMiscleavages        = "allowed_miscleavages"
	MinPeptideLength           = "min_peptide_length"
	MaxPeptideLength           = "max_peptide_length"
	FixedMods                  = "fixed_mods"
	VariableMods               = "variable_mods"
	MaxMods                    = "max_mods"
	MinPrecursorCharge         = "min_precursor_charge"
	MaxPrecursorCharge         = "max_precursor_charge"
	SpectralLibraryGeneration  = "spectral_library_generation"
	ScanWindow                 = "scan_window"
	QuantificationMethod       = "quantification_method"
	SecondPass                 = "second_pass"
	ProteinInference           = "protein_inference"
	AbundanceNormalizationIons = "abundance_normalization_ions"
)

var catalog = []binding{
	bind(SoftwareName, KindString, func(r *Record) **string { return &r.SoftwareName }),
	bind(SoftwareVersion, KindString, func(r *Record) **string { return &r.SoftwareVersion }),
	bind(SearchEngine, KindString, func(r *Record) **string { return &r.SearchEngine }),
	bind(SearchEngineVersion, KindString, func(r *Record) **string { return &r.SearchEngineVersion }),
	bind(IdentFDRPSM, KindFloat, func(r *Record) **float64 { return &r.IdentFDRPSM }),
	bind(IdentFDRPeptide, KindFloat, func(r *Record) **float64 { return &r.IdentFDRPeptide }),
	bind(IdentFDRProtein, KindFloat, func(r *Record) **float64 { return &r.IdentFDRProtein }),
	bind(EnableMatchBetweenRuns, KindBool, func(r *Record) **bool { return &r.EnableMatchBetweenRuns }),
	bind(PrecursorMassTolerance, KindString, func(r *Record) **string { return &r.PrecursorMassTolerance }),
	bind(FragmentMassTolerance, KindString, func(r *Record) **string { return &r.FragmentMassTolerance }),
	bind(Enzyme, KindString, func(r *Record) **string { return &r.Enzyme }),
	bind(AllowedMiscleavages, KindInt, func(r *Record) **int { return &r.AllowedMiscleavages }),
	bind(MinPeptideLength, KindInt, func(r *Record) **int { return &r.MinPeptideLength }),
	bind(MaxPeptideLength, KindInt, func(r *Record) **int { return &r.MaxPeptideLength }),
	bind(FixedMods, KindString, func(r *Record) **string { return &r.FixedMods }),
	bind(VariableMods, KindString, func(r *Record) **string { return &r.VariableMods }),
	bind(MaxMods, KindInt, func(r *Record) **int { return &r.MaxMods }),
	bind(MinPrecursorCharge, KindInt, func(r *Record) **int { return &r.MinPrecursorCharge }),
	bind(MaxPrecursorCharge, KindInt, func(r *Record) **int { return &r.MaxPrecursorCharge }),
	bind(SpectralLibraryGeneration, KindString, func(r *Record) **string { return &r.SpectralLibraryGeneration }),
	bind(ScanWindow, KindInt, func(r *Record) **int { return &r.ScanWindow }),
	bind(QuantificationMethod, KindString, func(r *Record) **string { return &r.QuantificationMethod }),
	bind(SecondPass, KindBool, func(r *Record) **bool { return &r.SecondPass }),
	bind(ProteinInference, KindString, func(r *Record) **string { return &r.ProteinInference }),
	bind(AbundanceNormalizationIons, KindString, func(r *Record) **string { return &r.AbundanceNormalizationIons }),
}

var byName = func() map[string]int {
	m := make(map[string]int, len(catalog))
	for i, b := range catalog {
		m[b.Name] = i
	}
	return m
}()

// Fields returns the catalog in display order.
func Fields() []Field {
	out := make([]Field, len(catalog))
	for i, b := range catalog {
		out[i] = b.Field
	}
	return out
}

// Names returns the catalog field names in display order.
func Names() []string {
	out := make([]string, len(catalog))
	for i, b := range catalog {
		out[i] = b.Name
	}
	return out
}

// Lookup finds a catalog field by name.
func Lookup(name string) (Field, bool) {
	i, ok := byName[name]
	if !ok {
		return Field{}, false
	}
	return catalog[i].Field, true
}
