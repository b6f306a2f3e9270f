package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Proteobench/Proteobench/constants"
	"github.com/Proteobench/Proteobench/internal/common"
	"github.com/Proteobench/Proteobench/internal/extract/engines"
	"github.com/Proteobench/Proteobench/internal/metrics"
	"github.com/Proteobench/Proteobench/internal/params"
	"github.com/Proteobench/Proteobench/internal/repository"
)

const (
	i2mFixture         = "../extract/i2masschroq/testdata/xtandem_params.tsv"
	spectronautFixture = "../extract/spectronaut/testdata/ExperimentSetupOverview.txt"
)

func newTestIngestor(t *testing.T) (*FSIngestor, repository.RunRepository) {
	t.Helper()
	ctx := context.Background()
	dsn := "file:" + filepath.Join(t.TempDir(), "ingest.db") + "?_pragma=busy_timeout(5000)"
	db, err := repository.Open(ctx, repository.Config{DSN: dsn, MaxConns: 4}, nil)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, repository.Migrate(ctx, db))

	runs := repository.NewRunRepository(db, nil)
	rec := metrics.NewRecorder(prometheus.NewRegistry())
	return NewFSIngestor(engines.Default(nil), runs, rec, nil), runs
}

func copyFixture(t *testing.T, src, dir, name string) string {
	t.Helper()
	raw, err := os.ReadFile(src)
	require.NoError(t, err)
	dst := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(dst), 0o755))
	require.NoError(t, os.WriteFile(dst, raw, 0o644))
	return dst
}

func TestIngestPath(t *testing.T) {
	ctx := context.Background()
	ing, runs := newTestIngestor(t)
	dir := t.TempDir()
	path := copyFixture(t, i2mFixture, dir, "params.tsv")

	res, err := ing.IngestPath(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, constants.RunStatusOK, res.Status)
	assert.Equal(t, "i2MassChroQ", res.Engine)
	assert.False(t, res.Deduplicated)
	assert.Len(t, res.HashHex, 64)
	require.NotNil(t, res.Record)
	v, ok := res.Record.Get(params.MaxPrecursorCharge)
	require.True(t, ok)
	assert.Equal(t, 4, v)

	again, err := ing.IngestPath(ctx, copyFixture(t, i2mFixture, dir, "renamed.tsv"))
	require.NoError(t, err)
	assert.True(t, again.Deduplicated)
	assert.Equal(t, constants.RunStatusDeduplicated, again.Status)
	assert.Equal(t, res.RunID, again.RunID)

	n, err := runs.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestIngestPathFailures(t *testing.T) {
	ctx := context.Background()
	ing, _ := newTestIngestor(t)
	dir := t.TempDir()

	t.Run("unsupported extension", func(t *testing.T) {
		path := filepath.Join(dir, "results.csv")
		require.NoError(t, os.WriteFile(path, []byte("a,b\n"), 0o644))
		res, err := ing.IngestPath(ctx, path)
		assert.ErrorIs(t, err, common.ErrUnsupportedFormat)
		assert.Equal(t, constants.RunStatusUnsupported, res.Status)
	})

	t.Run("unknown format", func(t *testing.T) {
		path := filepath.Join(dir, "maxquant.txt")
		require.NoError(t, os.WriteFile(path, []byte("MaxQuant 2.4\n"), 0o644))
		res, err := ing.IngestPath(ctx, path)
		assert.ErrorIs(t, err, common.ErrUnsupportedFormat)
		assert.Equal(t, constants.RunStatusUnsupported, res.Status)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := ing.IngestPath(ctx, filepath.Join(dir, "gone.tsv"))
		assert.ErrorIs(t, err, common.ErrFileNotFound)
	})

	t.Run("mandatory field missing", func(t *testing.T) {
		path := filepath.Join(dir, "partial.tsv")
		require.NoError(t, os.WriteFile(path, []byte("i2MassChroQ_VERSION\t1.0\n"), 0o644))
		res, err := ing.IngestPath(ctx, path)
		assert.ErrorIs(t, err, common.ErrFieldNotFound)
		assert.Equal(t, constants.RunStatusFailed, res.Status)
	})
}

func TestIngestPathAsForcesEngine(t *testing.T) {
	ing, _ := newTestIngestor(t)
	_, err := ing.IngestPathAs(context.Background(), spectronautFixture, "i2MassChroQ")
	assert.ErrorIs(t, err, common.ErrFieldNotFound, "the dump reader finds none of its keys in a report")
}

func TestIngestDirectory(t *testing.T) {
	ctx := context.Background()
	ing, _ := newTestIngestor(t)
	root := t.TempDir()

	copyFixture(t, i2mFixture, root, "a/params.tsv")
	copyFixture(t, i2mFixture, root, "b/same-params.tsv")
	copyFixture(t, spectronautFixture, root, "b/deep/report.txt")
	copyFixture(t, spectronautFixture, root, ".hidden/report.txt")
	require.NoError(t, os.WriteFile(filepath.Join(root, "notes.md"), []byte("# notes"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "junk.txt"), []byte("nothing to see"), 0o644))

	results, stats, err := ing.IngestDirectory(ctx, root, DirOptions{SkipHidden: true, Workers: 3})
	require.NoError(t, err)

	assert.Equal(t, uint32(4), stats.Matched)
	assert.Equal(t, uint32(3), stats.Succeeded)
	assert.Equal(t, uint32(1), stats.Deduplicated)
	assert.Equal(t, uint32(1), stats.Failed)
	require.Len(t, results, 4)

	for _, r := range results {
		if filepath.Base(r.SourcePath) == "junk.txt" {
			assert.NotEmpty(t, r.Err)
			assert.Equal(t, constants.RunStatusUnsupported, r.Status)
		}
	}
}

func TestIngestDirectoryPattern(t *testing.T) {
	ing, _ := newTestIngestor(t)
	root := t.TempDir()
	copyFixture(t, i2mFixture, root, "runs/params.tsv")
	copyFixture(t, spectronautFixture, root, "runs/report.txt")

	_, stats, err := ing.IngestDirectory(context.Background(), root, DirOptions{Pattern: "runs/*.tsv"})
	require.NoError(t, err)
	assert.Equal(t, uint32(1), stats.Matched)
	assert.Equal(t, uint32(1), stats.Succeeded)
}

func TestIngestDirectoryErrors(t *testing.T) {
	ing, _ := newTestIngestor(t)

	_, _, err := ing.IngestDirectory(context.Background(), " ", DirOptions{})
	assert.ErrorIs(t, err, common.ErrInvalidInput)

	_, _, err = ing.IngestDirectory(context.Background(), filepath.Join(t.TempDir(), "nope"), DirOptions{})
	assert.ErrorIs(t, err, common.ErrFileNotFound)
}

func TestMatchPattern(t *testing.T) {
	assert.True(t, MatchPattern("**/*.{tsv,txt}", "/data", "/data/params.tsv"))
	assert.True(t, MatchPattern("**/*.{tsv,txt}", "/data", "/data/a/b/report.txt"))
	assert.False(t, MatchPattern("**/*.{tsv,txt}", "/data", "/data/a/notes.md"))
	assert.False(t, MatchPattern("runs/*.tsv", "/data", "/data/other/params.tsv"))
	assert.True(t, IsHidden("/data/.cache"))
	assert.False(t, IsHidden("/data/cache"))
}

func TestStartWatcher(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	root := t.TempDir()
	existing := copyFixture(t, i2mFixture, root, "existing.tsv")

	events, _, err := StartWatcher(ctx, WatchConfig{
		Roots:       []string{root},
		InitialScan: true,
		Debounce:    20 * time.Millisecond,
	}, nil)
	require.NoError(t, err)

	select {
	case p := <-events:
		assert.Equal(t, existing, p)
	case <-time.After(2 * time.Second):
		t.Fatal("initial scan did not emit the existing file")
	}

	created := filepath.Join(root, "new.txt")
	require.NoError(t, os.WriteFile(filepath.Join(root, "ignored.md"), []byte("x"), 0o644))
	require.NoError(t, os.WriteFile(created, []byte("Spectronaut 19.0\n"), 0o644))

	select {
	case p := <-events:
		assert.Equal(t, created, p)
	case <-time.After(5 * time.Second):
		t.Fatal("watcher did not emit the new file")
	}

	cancel()
	for range events {
	}
}

func TestStartWatcherNeedsRoots(t *testing.T) {
	_, _, err := StartWatcher(context.Background(), WatchConfig{}, nil)
	assert.Error(t, err)
}
