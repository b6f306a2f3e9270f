package constants

import "strings"

// ListSeparator joins multi-valued parameters (modifications) into one string.
const ListSeparator = ";"

// NoValuePlaceholder marks a field-definition placeholder that carries no default.
const NoValuePlaceholder = "-"

const (
	UnitDalton = "Da"
	UnitPPM    = "ppm"
)

var unitSynonyms = map[string]string{
	"daltons": UnitDalton,
	"dalton":  UnitDalton,
	"da":      UnitDalton,
	"ppm":     UnitPPM,
}

// NormalizeUnit maps a mass unit token to its canonical spelling.
// Unknown tokens are returned unchanged with ok=false.
func NormalizeUnit(tok string) (string, bool) {
	t := strings.TrimSpace(tok)
	if u, ok := unitSynonyms[strings.ToLower(t)]; ok {
		return u, true
	}
	return t, false
}
