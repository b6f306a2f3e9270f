package engines

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Proteobench/Proteobench/internal/common"
	"github.com/Proteobench/Proteobench/internal/extract/i2masschroq"
	"github.com/Proteobench/Proteobench/internal/extract/spectronaut"
)

func TestDefaultRegistry(t *testing.T) {
	r := Default(nil)
	assert.Equal(t, []string{"Spectronaut", "i2MassChroQ"}, r.Names())

	e, err := r.Get(i2masschroq.Name)
	require.NoError(t, err)
	assert.Equal(t, i2masschroq.Name, e.Name())

	_, err = r.Get("MaxQuant")
	assert.ErrorIs(t, err, common.ErrUnsupportedFormat)
}

func TestDetect(t *testing.T) {
	r := Default(nil)

	tests := []struct {
		name   string
		target string
		want   string
	}{
		{"i2masschroq dump", "../i2masschroq/testdata/xtandem_params.tsv", i2masschroq.Name},
		{"spectronaut report", "../spectronaut/testdata/ExperimentSetupOverview.txt", spectronaut.Name},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := r.Detect(tt.target)
			require.NoError(t, err)
			assert.Equal(t, tt.want, e.Name())

			rec, err := e.Extract(tt.target)
			require.NoError(t, err)
			assert.NotEmpty(t, rec.Values())
		})
	}

	t.Run("unknown format", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "mystery.txt")
		require.NoError(t, os.WriteFile(path, []byte("MaxQuant 2.4\n"), 0o644))
		_, err := r.Detect(path)
		assert.ErrorIs(t, err, common.ErrUnsupportedFormat)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := r.Detect(filepath.Join(t.TempDir(), "nope.txt"))
		assert.ErrorIs(t, err, common.ErrFileNotFound)
	})
}

func TestResolvePrefersExplicitName(t *testing.T) {
	r := Default(nil)
	e, err := r.Resolve("../spectronaut/testdata/ExperimentSetupOverview.txt", i2masschroq.Name)
	require.NoError(t, err)
	assert.Equal(t, i2masschroq.Name, e.Name())
}
