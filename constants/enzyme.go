package constants

import (
	"strings"
)

type Enzyme string

const (
	Trypsin  Enzyme = "Trypsin"
	TrypsinP Enzyme = "Trypsin/P"
	LysC     Enzyme = "LysC"
	LysCP    Enzyme = "LysC/P"
	ArgC     Enzyme = "ArgC"
	AspN     Enzyme = "AspN"
	GluC     Enzyme = "GluC"
	Chymo    Enzyme = "Chymotrypsin"
)

var allEnzymes = []Enzyme{
	Trypsin,
	TrypsinP,
	LysC,
	LysCP,
	ArgC,
	AspN,
	GluC,
	Chymo,
}

// cleavage-site patterns as written by X!Tandem-style parameter dumps
var cleavagePatterns = map[string]Enzyme{
	"[RK]|{P}": Trypsin,
	"[RK]":     TrypsinP,
}

func EnzymesAsStringSlice() []string {
	result := make([]string, len(allEnzymes))
	for i, e := range allEnzymes {
		result[i] = string(e)
	}
	return result
}

// CanonicalEnzyme maps a cleavage-site pattern or an enzyme label to the canonical
// enzyme name. Unknown input comes back verbatim with ok=false; callers keep it as-is.
func CanonicalEnzyme(input string) (string, bool) {
	if input == "" {
		return input, false
	}

	if e, ok := cleavagePatterns[input]; ok {
		return string(e), true
	}

	// labels that already name a canonical enzyme, modulo case/whitespace
	normalized := strings.ToLower(strings.TrimSpace(input))
	for _, e := range allEnzymes {
		if normalized == strings.ToLower(string(e)) {
			return string(e), true
		}
	}

	return input, false
}
