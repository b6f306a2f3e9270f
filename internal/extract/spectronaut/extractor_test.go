package spectronaut

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Proteobench/Proteobench/internal/common"
	"github.com/Proteobench/Proteobench/internal/params"
)

const fixture = "testdata/ExperimentSetupOverview.txt"

func writeReport(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "report.txt")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func get(t *testing.T, r *params.Record, field string) any {
	t.Helper()
	v, ok := r.Get(field)
	require.True(t, ok, "%s should be set", field)
	return v
}

func TestExtract(t *testing.T) {
	rec, err := New(nil).Extract(fixture)
	require.NoError(t, err)

	assert.Equal(t, "Spectronaut", get(t, rec, params.SoftwareName))
	assert.Equal(t, "19.0.240606.62635", get(t, rec, params.SoftwareVersion))
	assert.Equal(t, "Spectronaut", get(t, rec, params.SearchEngine))
	assert.Equal(t, "19.0.240606.62635", get(t, rec, params.SearchEngineVersion))
	assert.Equal(t, 0.01, get(t, rec, params.IdentFDRPSM))
	assert.Equal(t, 0.01, get(t, rec, params.IdentFDRProtein))
	assert.Equal(t, "Dynamic", get(t, rec, params.PrecursorMassTolerance))
	assert.Equal(t, "Dynamic", get(t, rec, params.FragmentMassTolerance))
	assert.Equal(t, "Trypsin/P", get(t, rec, params.Enzyme))
	assert.Equal(t, 2, get(t, rec, params.AllowedMiscleavages))
	assert.Equal(t, 52, get(t, rec, params.MaxPeptideLength))
	assert.Equal(t, 7, get(t, rec, params.MinPeptideLength))
	assert.Equal(t, "Carbamidomethyl (C)", get(t, rec, params.FixedMods))
	assert.Equal(t, "Acetyl (Protein N-term);Oxidation (M)", get(t, rec, params.VariableMods))
	assert.Equal(t, 5, get(t, rec, params.MaxMods))
	assert.Equal(t, 2, get(t, rec, params.MinPrecursorCharge))
	assert.Equal(t, 4, get(t, rec, params.MaxPrecursorCharge))
	assert.Equal(t, "MS2", get(t, rec, params.QuantificationMethod))
	assert.Equal(t, true, get(t, rec, params.SecondPass))
	assert.Equal(t, "IDPicker", get(t, rec, params.ProteinInference))
	assert.Equal(t, "False", get(t, rec, params.SpectralLibraryGeneration))

	_, ok := rec.Get(params.ScanWindow)
	assert.False(t, ok, "a strategy name does not fit an integer field")
	_, ok = rec.Get(params.IdentFDRPeptide)
	assert.False(t, ok)
	_, ok = rec.Get(params.EnableMatchBetweenRuns)
	assert.False(t, ok)

	assert.NoError(t, params.Validate(rec))
}

func TestExtractBoxDrawingLine(t *testing.T) {
	path := writeReport(t, "Spectronaut 18.7\n│  Precursor Qvalue Cutoff: 0.01\n")
	rec, err := New(nil).Extract(path)
	require.NoError(t, err)
	assert.Equal(t, 0.01, get(t, rec, params.IdentFDRPSM))
	assert.Equal(t, "0.01", params.FormatValue(get(t, rec, params.IdentFDRPSM)))
}

func TestExtractVariableModsAnchored(t *testing.T) {
	path := writeReport(t, "Spectronaut 18.7\n"+
		"├─ Max Variable Modifications: 3\n"+
		"├─ Variable Modifications: Oxidation (M)\n")
	rec, err := New(nil).Extract(path)
	require.NoError(t, err)
	assert.Equal(t, "Oxidation (M)", get(t, rec, params.VariableMods))
	assert.Equal(t, 3, get(t, rec, params.MaxMods))
}

func TestExtractPeptideCharge(t *testing.T) {
	tests := []struct {
		value  string
		lo, hi int
		ok     bool
	}{
		{"3", 3, 3, true},
		{"2-4", 2, 4, true},
		{"1 - 5", 1, 5, true},
		{"Automatic", 0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			rec, err := New(nil).Extract(writeReport(t, "Spectronaut 18.7\n│  Peptide Charge: "+tt.value+"\n"))
			require.NoError(t, err)
			if !tt.ok {
				_, set := rec.Get(params.MinPrecursorCharge)
				assert.False(t, set)
				return
			}
			assert.Equal(t, tt.lo, get(t, rec, params.MinPrecursorCharge))
			assert.Equal(t, tt.hi, get(t, rec, params.MaxPrecursorCharge))
		})
	}
}

func TestExtractUnknownEnzymePassesThrough(t *testing.T) {
	rec, err := New(nil).Extract(writeReport(t, "Spectronaut 18.7\n│  Enzymes / Cleavage Rules: Trypsin/P, LysC\n"))
	require.NoError(t, err)
	assert.Equal(t, "Trypsin/P, LysC", get(t, rec, params.Enzyme))
}

func TestExtractVersionIsMandatory(t *testing.T) {
	for name, body := range map[string]string{
		"empty file":  "",
		"single word": "Spectronaut\n│  Precursor Qvalue Cutoff: 0.01\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := New(nil).Extract(writeReport(t, body))
			require.ErrorIs(t, err, common.ErrFieldNotFound)

			var fe *common.FieldError
			require.ErrorAs(t, err, &fe)
			assert.Equal(t, params.SoftwareVersion, fe.Field)
		})
	}
}

func TestExtractMissingFile(t *testing.T) {
	_, err := New(nil).Extract(filepath.Join(t.TempDir(), "missing.txt"))
	assert.ErrorIs(t, err, common.ErrFileNotFound)
}

func TestExtractIsIdempotent(t *testing.T) {
	e := New(nil)
	a, err := e.Extract(fixture)
	require.NoError(t, err)
	b, err := e.Extract(fixture)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestSniff(t *testing.T) {
	e := New(nil)
	assert.True(t, e.Sniff([]byte("Spectronaut 19.0 (Experiment Setup Overview)\nAnalysis\n")))
	assert.True(t, e.Sniff([]byte("\xef\xbb\xbfSpectronaut 19.0\n")))
	assert.False(t, e.Sniff([]byte("i2MassChroQ_VERSION\t1.0\n")))
}
