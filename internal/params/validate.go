package params

import (
	"regexp"
	"strings"

	"github.com/Proteobench/Proteobench/constants"
	"github.com/Proteobench/Proteobench/internal/common"
)

// "[-10 ppm, 10 ppm]"
var reInterval = regexp.MustCompile(`^\[[+-]\S+ \S+, [+-]?\S+ \S+\]$`)

var intervalRule = common.MatchesPattern(reInterval, "must be formatted as [<lower> <unit>, <upper> <unit>] with a signed lower bound")

// Validate checks schema conformance of a record. It does not judge whether the
// values are scientifically sensible.
func Validate(r *Record) error {
	v := common.NewValidator()

	for _, name := range []string{PrecursorMassTolerance, FragmentMassTolerance} {
		val, ok := r.Get(name)
		if !ok {
			continue
		}
		// strategy names ("Dynamic") are kept verbatim; only bracketed values are intervals
		if s := val.(string); strings.HasPrefix(s, "[") {
			v.Field(name, s, intervalRule)
		}
	}

	for _, name := range []string{FixedMods, VariableMods} {
		val, ok := r.Get(name)
		if !ok {
			continue
		}
		s := val.(string)
		v.Check(!(strings.Contains(s, constants.ListSeparator) && strings.Contains(s, "|")), name, s,
			"mixes list separators")
	}

	for _, fv := range r.Values() {
		if fv.Kind == KindInt {
			v.Field(fv.Name, fv.Value, common.NonNegative)
		}
	}

	if r.MinPrecursorCharge != nil && r.MaxPrecursorCharge != nil {
		v.Check(*r.MinPrecursorCharge <= *r.MaxPrecursorCharge, MinPrecursorCharge, *r.MinPrecursorCharge,
			"exceeds max_precursor_charge")
	}
	if r.MinPeptideLength != nil && r.MaxPeptideLength != nil {
		v.Check(*r.MinPeptideLength <= *r.MaxPeptideLength, MinPeptideLength, *r.MinPeptideLength,
			"exceeds max_peptide_length")
	}

	return v.Error()
}
