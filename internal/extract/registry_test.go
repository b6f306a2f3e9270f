package extract

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Proteobench/Proteobench/internal/common"
	"github.com/Proteobench/Proteobench/internal/params"
)

type stubExtractor struct {
	name   string
	prefix string
	tag    string
}

func (s stubExtractor) Name() string { return s.name }

func (s stubExtractor) Sniff(head []byte) bool { return bytes.HasPrefix(head, []byte(s.prefix)) }

func (s stubExtractor) Extract(string) (*params.Record, error) {
	rec := params.New()
	rec.SoftwareName = params.Ptr(s.tag)
	return rec, nil
}

func TestNewRegistry(t *testing.T) {
	r := NewRegistry(
		stubExtractor{name: "beta", prefix: "B", tag: "first"},
		stubExtractor{name: "alpha", prefix: "A"},
		stubExtractor{name: "beta", prefix: "B", tag: "second"},
	)
	assert.Equal(t, []string{"alpha", "beta"}, r.Names())

	e, err := r.Get("beta")
	require.NoError(t, err)
	rec, err := e.Extract("")
	require.NoError(t, err)
	assert.Equal(t, "second", *rec.SoftwareName, "later extractor replaces the earlier one")

	_, err = r.Get("gamma")
	assert.ErrorIs(t, err, common.ErrUnsupportedFormat)
}

func TestRegistryResolve(t *testing.T) {
	r := NewRegistry(stubExtractor{name: "alpha", prefix: "A"}, stubExtractor{name: "beta", prefix: "B"})
	path := filepath.Join(t.TempDir(), "run.txt")
	require.NoError(t, os.WriteFile(path, []byte("B header\n"), 0o644))

	e, err := r.Resolve(path, "")
	require.NoError(t, err)
	assert.Equal(t, "beta", e.Name())

	e, err = r.Resolve(path, "alpha")
	require.NoError(t, err)
	assert.Equal(t, "alpha", e.Name(), "a named extractor skips detection")

	_, err = NewRegistry().Resolve(path, "")
	assert.ErrorIs(t, err, common.ErrUnsupportedFormat)
}
