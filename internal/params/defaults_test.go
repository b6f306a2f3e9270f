package params

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Proteobench/Proteobench/internal/common"
)

func writeFields(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "fields.json")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	path := writeFields(t, `{
		"enzyme": {"type": "text_input", "placeholder": "Trypsin"},
		"allowed_miscleavages": {"type": "number_input", "value": "2", "placeholder": "1"},
		"fixed_mods": {"type": "text_input", "placeholder": "-"},
		"ident_fdr_psm": {"value": 0.01},
		"enable_match_between_runs": {"value": false},
		"max_mods": {"value": null, "placeholder": "3"}
	}`)

	rec, err := LoadDefaults(path, nil)
	require.NoError(t, err)

	v, ok := rec.Get(Enzyme)
	require.True(t, ok)
	assert.Equal(t, "Trypsin", v)

	v, ok = rec.Get(AllowedMiscleavages)
	require.True(t, ok)
	assert.Equal(t, 2, v, "value wins over placeholder")

	_, ok = rec.Get(FixedMods)
	assert.False(t, ok, "dash placeholder means no default")

	v, ok = rec.Get(IdentFDRPSM)
	require.True(t, ok)
	assert.Equal(t, 0.01, v)

	v, ok = rec.Get(EnableMatchBetweenRuns)
	require.True(t, ok)
	assert.Equal(t, false, v)

	v, ok = rec.Get(MaxMods)
	require.True(t, ok)
	assert.Equal(t, 3, v, "null value falls back to placeholder")

	_, ok = rec.Get(SoftwareName)
	assert.False(t, ok, "fields absent from the document stay unset")
}

func TestLoadDefaultsMissingFile(t *testing.T) {
	rec, err := LoadDefaults(filepath.Join(t.TempDir(), "nope.json"), nil)
	require.NoError(t, err)
	assert.Empty(t, rec.Values())
}

func TestLoadDefaultsRejectsUnknownField(t *testing.T) {
	path := writeFields(t, `{"enzyme": {"value": "Trypsin"}, "colour": {"value": "red"}}`)

	_, err := LoadDefaults(path, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrUnknownField)

	var appErr *common.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, "SCHEMA_DRIFT", appErr.Code)
	assert.Contains(t, err.Error(), "colour")
}

func TestLoadDefaultsRejectsBadShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not an object", `[1, 2]`},
		{"descriptor not an object", `{"enzyme": "Trypsin"}`},
		{"value is a list", `{"enzyme": {"value": ["Trypsin"]}}`},
		{"value does not coerce", `{"max_mods": {"value": "many"}}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadDefaults(writeFields(t, tt.body), nil)
			assert.Error(t, err)
		})
	}
}

func TestLoadDefaultsNullValues(t *testing.T) {
	path := writeFields(t, `{
		"max_mods": {"value": null, "placeholder": "3"},
		"enzyme": {"value": null, "placeholder": null},
		"min_peptide_length": {"placeholder": 7}
	}`)

	rec, err := LoadDefaults(path, nil)
	require.NoError(t, err)

	v, ok := rec.Get(MaxMods)
	require.True(t, ok)
	assert.Equal(t, 3, v)

	_, ok = rec.Get(Enzyme)
	assert.False(t, ok, "null value and placeholder leave the field unset")

	v, ok = rec.Get(MinPeptideLength)
	require.True(t, ok)
	assert.Equal(t, 7, v)
}
