// Package spectronaut reads the indented "Experiment Setup Overview" report
// Spectronaut exports alongside its results.
package spectronaut

import (
	"bytes"
	"log/slog"
	"regexp"
	"strconv"
	"strings"

	"github.com/Proteobench/Proteobench/constants"
	"github.com/Proteobench/Proteobench/internal/common"
	"github.com/Proteobench/Proteobench/internal/extract"
	"github.com/Proteobench/Proteobench/internal/params"
)

// Name is the registry name of this extractor.
const Name = constants.SoftwareSpectronaut

type rule struct {
	field    string
	matchers []extract.Matcher
	// optional rewrite of the raw text before it is coerced
	clean func(string) string
}

var rules = []rule{
	{field: params.IdentFDRPSM, matchers: labels("Precursor Qvalue Cutoff:")},
	{field: params.IdentFDRProtein, matchers: labels("Protein Qvalue Cutoff (Experiment):")},
	{field: params.PrecursorMassTolerance, matchers: labels("MS1 Mass Tolerance Strategy:")},
	{field: params.FragmentMassTolerance, matchers: labels("MS2 Mass Tolerance Strategy:")},
	{field: params.Enzyme, matchers: labels("Enzymes / Cleavage Rules:")},
	{field: params.AllowedMiscleavages, matchers: labels("Missed Cleavages:")},
	{field: params.MaxPeptideLength, matchers: labels("Max Peptide Length:")},
	{field: params.MinPeptideLength, matchers: labels("Min Peptide Length:")},
	{field: params.FixedMods, matchers: labels("Fixed Modifications:"), clean: joinReportList},
	{field: params.VariableMods, matchers: []extract.Matcher{extract.Anchored(`^Variable Modifications:`)}, clean: joinReportList},
	{field: params.MaxMods, matchers: labels("Max Variable Modifications:")},
	{field: params.ScanWindow, matchers: labels("XIC IM Extraction Window:")},
	{field: params.QuantificationMethod, matchers: labels("Quantity MS Level:", "Protein LFQ Method:", "Quantity Type:")},
	{field: params.SecondPass, matchers: labels("directDIA Workflow:")},
	{field: params.ProteinInference, matchers: labels("Inference Algorithm:", "Protein Inference Workflow:")},
	{field: params.SpectralLibraryGeneration, matchers: labels("Hybrid (DDA + DIA) Library"), clean: trimColon},
}

var chargeLabel = extract.Label("Peptide Charge:")

// "2", "2-4", "2 - 4"
var reChargeRange = regexp.MustCompile(`^(\d+)(?:\s*-\s*(\d+))?$`)

func labels(ls ...string) []extract.Matcher {
	out := make([]extract.Matcher, len(ls))
	for i, l := range ls {
		out[i] = extract.Label(l)
	}
	return out
}

func joinReportList(s string) string {
	return extract.JoinList(extract.SplitList(s))
}

func trimColon(s string) string {
	return strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(s), ":"))
}

// Extractor implements extract.Extractor for Spectronaut setup reports.
type Extractor struct {
	logger *slog.Logger
}

// New returns a Spectronaut extractor.
func New(logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{logger: logger}
}

func (e *Extractor) Name() string { return Name }

// Sniff accepts reports whose first line names Spectronaut.
func (e *Extractor) Sniff(head []byte) bool {
	first, _, _ := bytes.Cut(head, []byte("\n"))
	first = bytes.TrimPrefix(first, []byte("\xef\xbb\xbf"))
	return bytes.HasPrefix(bytes.TrimSpace(first), []byte(Name))
}

// Extract reads path into a new record. The version on the first line is
// mandatory; every other field is optional.
func (e *Extractor) Extract(path string) (*params.Record, error) {
	lines, err := extract.ReadLines(path)
	if err != nil {
		return nil, err
	}

	version, ok := readVersion(lines)
	if !ok {
		return nil, common.NewFieldNotFound(path, params.SoftwareVersion)
	}

	rec := params.New()
	rec.SoftwareName = params.Ptr(Name)
	rec.SoftwareVersion = params.Ptr(version)
	rec.SearchEngine = params.Ptr(Name)
	rec.SearchEngineVersion = params.Ptr(version)

	stripped := extract.StripAll(lines)
	for _, r := range rules {
		raw, ok := extract.Lookup(stripped, r.matchers...)
		if !ok {
			continue
		}
		if r.clean != nil {
			raw = r.clean(raw)
		}
		if r.field == params.Enzyme {
			raw = e.canonicalEnzyme(path, raw)
		}
		e.assign(rec, path, r.field, raw)
	}

	if raw, ok := extract.Lookup(stripped, chargeLabel); ok {
		e.charges(rec, path, raw)
	}

	e.logger.Debug("spectronaut.extract.ok", "path", path, "lines", len(lines), "fields", len(rec.Values()))
	return rec, nil
}

func readVersion(lines []string) (string, bool) {
	if len(lines) == 0 {
		return "", false
	}
	tokens := strings.Fields(strings.TrimPrefix(lines[0], "\ufeff"))
	if len(tokens) < 2 {
		return "", false
	}
	return tokens[1], true
}

func (e *Extractor) canonicalEnzyme(path, raw string) string {
	enzyme, ok := constants.CanonicalEnzyme(raw)
	if !ok && raw != "" {
		e.logger.Debug("spectronaut.enzyme.unrecognized", "path", path, "value", raw,
			"error", common.ErrUnrecognizedVocabulary)
	}
	return enzyme
}

// assign stores raw under field. Text that does not fit a typed field leaves
// it unset.
func (e *Extractor) assign(rec *params.Record, path, field, raw string) {
	f, _ := params.Lookup(field)
	if f.Kind != params.KindString && raw == "" {
		return
	}
	if err := rec.SetString(field, raw); err != nil {
		e.logger.Warn("spectronaut.value.unparsed", "path", path, "field", field, "value", raw, "error", err)
	}
}

func (e *Extractor) charges(rec *params.Record, path, raw string) {
	m := reChargeRange.FindStringSubmatch(strings.TrimSpace(raw))
	if m == nil {
		e.logger.Warn("spectronaut.value.unparsed", "path", path, "field", params.MaxPrecursorCharge, "value", raw)
		return
	}
	lo, _ := strconv.Atoi(m[1])
	hi := lo
	if m[2] != "" {
		hi, _ = strconv.Atoi(m[2])
	}
	rec.MinPrecursorCharge = params.Ptr(lo)
	rec.MaxPrecursorCharge = params.Ptr(hi)
}
