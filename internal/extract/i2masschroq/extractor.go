// Package i2masschroq reads the tab-delimited parameter dump i2MassChroQ
// writes next to its results.
package i2masschroq

import (
	"bytes"
	"log/slog"
	"strings"

	"github.com/Proteobench/Proteobench/constants"
	"github.com/Proteobench/Proteobench/internal/common"
	"github.com/Proteobench/Proteobench/internal/extract"
	"github.com/Proteobench/Proteobench/internal/params"
)

// Keys of the dump.
const (
	keyVersion         = "i2MassChroQ_VERSION"
	keyEngine          = "AnalysisSoftware_name"
	keyEngineVersion   = "AnalysisSoftware_version"
	keyPSMFDR          = "psm_fdr"
	keyPeptideFDR      = "peptide_fdr"
	keyProteinFDR      = "protein_fdr"
	keyMBR             = "mcq_mbr"
	keyFragError       = "spectrum, fragment monoisotopic mass error"
	keyFragUnits       = "spectrum, fragment monoisotopic mass error units"
	keyParentMinus     = "spectrum, parent monoisotopic mass error minus"
	keyParentPlus      = "spectrum, parent monoisotopic mass error plus"
	keyParentUnits     = "spectrum, parent monoisotopic mass error units"
	keyCleavageSite    = "protein, cleavage site"
	keyScoringMissed   = "scoring, maximum missed cleavage sites"
	keyRefine          = "refine"
	keyRefineMissed    = "refine, maximum missed cleavage sites"
	keyFixedMods       = "residue, modification mass"
	keyVariableMods    = "residue, potential modification mass"
	keyQuickAcetyl     = "protein, quick acetyl"
	keyQuickPyrolidone = "protein, quick pyrolidone"
	keyMaxParentCharge = "spectrum, maximum parent charge"
)

const (
	quickAcetylMod     = "Acetyl(N-term)"
	quickPyrolidoneMod = "Pyrolidone(N-term)"
	mbrEnabled         = "T"
	refineEnabled      = "yes"
	quickOptionEnabled = "yes"

	// X!Tandem does not expose a lower charge bound.
	minPrecursorCharge = 1
)

// Name is the registry name of this extractor.
const Name = constants.SoftwareI2MassChroQ

// Extractor implements extract.Extractor for i2MassChroQ dumps.
type Extractor struct {
	logger *slog.Logger
}

// New returns an i2MassChroQ extractor.
func New(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger}
}

func (e *Extractor) Name() string { return Name }

// Sniff accepts dumps carrying the version row.
func (e *Extractor) Sniff(head []byte) bool {
	for _, line := range bytes.Split(head, []byte("\n")) {
		if bytes.HasPrefix(line, []byte(keyVersion+"\t")) {
			return true
		}
	}
	return false
}

// Extract reads path into a new record. Missing mandatory rows fail with a
// *common.FieldError naming the key.
func (e *Extractor) Extract(path string) (*params.Record, error) {
	kv, err := extract.ReadKeyValues(path)
	if err != nil {
		return nil, err
	}
	return e.fromKeyValues(kv)
}

func (e *Extractor) fromKeyValues(kv *extract.KeyValues) (*params.Record, error) {
	rec := params.New()
	version, err := kv.Require(keyVersion)
	if err != nil {
		return nil, err
	}
	engine, err := kv.Require(keyEngine)
	if err != nil {
		return nil, err
	}
	engineVersion, _ := kv.Get(keyEngineVersion)

	rec.SoftwareName = params.Ptr(Name)
	rec.SoftwareVersion = params.Ptr(version)
	rec.SearchEngine = params.Ptr(engine)
	rec.SearchEngineVersion = params.Ptr(engineVersion)

	for _, f := range []struct{ key, field string }{
		{keyPSMFDR, params.IdentFDRPSM},
		{keyPeptideFDR, params.IdentFDRPeptide},
		{keyProteinFDR, params.IdentFDRProtein},
	} {
		if err := requireInto(rec, kv, f.key, f.field); err != nil {
			return nil, err
		}
	}

	mbr, _ := kv.Get(keyMBR)
	rec.EnableMatchBetweenRuns = params.Ptr(mbr == mbrEnabled)

	if width, ok := kv.Get(keyFragError); ok {
		unit, _ := kv.Get(keyFragUnits)
		rec.FragmentMassTolerance = params.Ptr(extract.SymmetricTolerance(width, unit))
	}
	minus, okMinus := kv.Get(keyParentMinus)
	plus, okPlus := kv.Get(keyParentPlus)
	if okMinus && okPlus {
		unit, _ := kv.Get(keyParentUnits)
		rec.PrecursorMassTolerance = params.Ptr(extract.FormatTolerance(minus, plus, unit))
	}

	if site, ok := kv.Get(keyCleavageSite); ok {
		enzyme, known := constants.CanonicalEnzyme(site)
		if !known {
			e.logger.Debug("i2masschroq.enzyme.unrecognized", "path", kv.Path(), "value", site,
				"error", common.ErrUnrecognizedVocabulary)
		}
		rec.Enzyme = params.Ptr(enzyme)
	}

	if err := e.missedCleavages(rec, kv); err != nil {
		return nil, err
	}

	fixed := kv.Matching(keyFixedMods)
	variable := kv.Matching(keyVariableMods)
	if constants.IsXTandem(engine) {
		if v, _ := kv.Get(keyQuickAcetyl); v == quickOptionEnabled {
			variable = extract.AppendUnique(variable, quickAcetylMod)
		}
		if v, _ := kv.Get(keyQuickPyrolidone); v == quickOptionEnabled {
			variable = extract.AppendUnique(variable, quickPyrolidoneMod)
		}
	}
	rec.FixedMods = params.Ptr(extract.JoinList(fixed))
	rec.VariableMods = params.Ptr(extract.JoinList(variable))

	rec.MinPrecursorCharge = params.Ptr(minPrecursorCharge)
	if err := requireInto(rec, kv, keyMaxParentCharge, params.MaxPrecursorCharge); err != nil {
		return nil, err
	}

	e.logger.Debug("i2masschroq.extract.ok", "path", kv.Path(), "rows", kv.Len(), "fields", len(rec.Values()))
	return rec, nil
}

// missedCleavages prefers the refinement stage's limit when refinement is on;
// that row is then mandatory.
func (e *Extractor) missedCleavages(rec *params.Record, kv *extract.KeyValues) error {
	if v, _ := kv.Get(keyRefine); strings.EqualFold(v, refineEnabled) {
		return requireInto(rec, kv, keyRefineMissed, params.AllowedMiscleavages)
	}
	raw, ok := kv.Get(keyScoringMissed)
	if !ok {
		return nil
	}
	if err := rec.SetString(params.AllowedMiscleavages, raw); err != nil {
		e.logger.Warn("i2masschroq.value.unparsed", "path", kv.Path(), "key", keyScoringMissed, "value", raw, "error", err)
	}
	return nil
}

func requireInto(rec *params.Record, kv *extract.KeyValues, key, field string) error {
	raw, err := kv.Require(key)
	if err != nil {
		return err
	}
	if err := rec.SetString(field, raw); err != nil {
		return &common.FieldError{File: kv.Path(), Field: key, Cause: err}
	}
	return nil
}
