package params

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Proteobench/Proteobench/internal/common"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		set     map[string]any
		wantErr bool
	}{
		{"empty record", nil, false},
		{"interval", map[string]any{PrecursorMassTolerance: "[-10 ppm, 10 ppm]"}, false},
		{"strategy text", map[string]any{FragmentMassTolerance: "Dynamic"}, false},
		{"unsigned lower bound", map[string]any{PrecursorMassTolerance: "[10 ppm, 10 ppm]"}, true},
		{"joined list", map[string]any{FixedMods: "Carbamidomethyl (C);Oxidation (M)"}, false},
		{"mixed separators", map[string]any{VariableMods: "a;b|c"}, true},
		{"negative int", map[string]any{AllowedMiscleavages: -1}, true},
		{"charge range", map[string]any{MinPrecursorCharge: 1, MaxPrecursorCharge: 4}, false},
		{"inverted charge range", map[string]any{MinPrecursorCharge: 5, MaxPrecursorCharge: 2}, true},
		{"inverted length range", map[string]any{MinPeptideLength: 30, MaxPeptideLength: 7}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New()
			for k, v := range tt.set {
				require.NoError(t, r.Set(k, v))
			}
			err := Validate(r)
			if tt.wantErr {
				assert.ErrorIs(t, err, common.ErrValidation)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
