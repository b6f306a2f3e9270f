package constants

// Software and engine names written into records.
const (
	SoftwareI2MassChroQ = "i2MassChroQ"
	SoftwareSpectronaut = "Spectronaut"
)

// XTandemNames are the spellings i2MassChroQ uses for its X!Tandem back end.
var XTandemNames = map[string]struct{}{
	"X!Tandem":  {},
	"X! Tandem": {},
}

// IsXTandem reports whether an AnalysisSoftware_name denotes X!Tandem.
func IsXTandem(name string) bool {
	_, ok := XTandemNames[name]
	return ok
}
