package server

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Proteobench/Proteobench/internal/common"
	"github.com/Proteobench/Proteobench/internal/extract/engines"
	"github.com/Proteobench/Proteobench/internal/ingest"
	"github.com/Proteobench/Proteobench/internal/metrics"
	"github.com/Proteobench/Proteobench/internal/params"
	"github.com/Proteobench/Proteobench/internal/repository"
)

const (
	i2mFixture         = "../extract/i2masschroq/testdata/xtandem_params.tsv"
	spectronautFixture = "../extract/spectronaut/testdata/ExperimentSetupOverview.txt"
)

func startServer(t *testing.T) (*ParamsClient, *grpc.ClientConn) {
	t.Helper()
	ctx := context.Background()

	db, err := ConnectDB(ctx, common.DatabaseConfig{DSN: "file:" + filepath.Join(t.TempDir(), "grpc.db")}, nil)
	require.NoError(t, err)
	t.Cleanup(db.Close)

	reg := engines.Default(nil)
	runs := repository.NewRunRepository(db, nil)
	ing := ingest.NewFSIngestor(reg, runs, metrics.NewRecorder(prometheus.NewRegistry()), nil)
	srv, _ := NewGRPCServer(NewParamsService(reg, ing, runs, nil), nil)

	lis := bufconn.Listen(1 << 20)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return NewParamsClient(conn), conn
}

func req(t *testing.T, m map[string]any) *structpb.Struct {
	t.Helper()
	s, err := structpb.NewStruct(m)
	require.NoError(t, err)
	return s
}

func TestExtract(t *testing.T) {
	client, _ := startServer(t)
	ctx := context.Background()

	out, err := client.Extract(ctx, req(t, map[string]any{"path": spectronautFixture}))
	require.NoError(t, err)
	assert.Equal(t, "Spectronaut", out.Fields["engine"].GetStringValue())
	p := out.Fields["parameters"].GetStructValue().GetFields()
	assert.Equal(t, "19.0.240606.62635", p[params.SoftwareVersion].GetStringValue())
	assert.Equal(t, 0.01, p[params.IdentFDRPSM].GetNumberValue())
}

func TestExtractErrors(t *testing.T) {
	client, _ := startServer(t)
	ctx := context.Background()
	dir := t.TempDir()

	unknown := filepath.Join(dir, "maxquant.txt")
	require.NoError(t, os.WriteFile(unknown, []byte("MaxQuant 2.4\n"), 0o644))

	cases := []struct {
		name string
		in   map[string]any
		code codes.Code
	}{
		{"no path", map[string]any{}, codes.InvalidArgument},
		{"missing file", map[string]any{"path": filepath.Join(dir, "gone.tsv")}, codes.NotFound},
		{"unknown format", map[string]any{"path": unknown}, codes.InvalidArgument},
		{"unknown engine", map[string]any{"path": i2mFixture, "engine": "MaxQuant"}, codes.InvalidArgument},
		{"mandatory field", map[string]any{"path": spectronautFixture, "engine": "i2MassChroQ"}, codes.InvalidArgument},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := client.Extract(ctx, req(t, tc.in))
			assert.Equal(t, tc.code, status.Code(err), "error: %v", err)
		})
	}
}

func TestIngestAndRuns(t *testing.T) {
	client, _ := startServer(t)
	ctx := context.Background()

	out, err := client.Ingest(ctx, req(t, map[string]any{"path": i2mFixture}))
	require.NoError(t, err)
	runID := out.Fields["run_id"].GetStringValue()
	require.NotEmpty(t, runID)
	assert.Equal(t, "OK", out.Fields["status"].GetStringValue())

	again, err := client.Ingest(ctx, req(t, map[string]any{"path": i2mFixture}))
	require.NoError(t, err)
	assert.True(t, again.Fields["deduplicated"].GetBoolValue())

	got, err := client.GetRun(ctx, req(t, map[string]any{"id": runID}))
	require.NoError(t, err)
	assert.Equal(t, "i2MassChroQ", got.Fields["engine"].GetStringValue())
	assert.Equal(t, 4.0, got.Fields["parameters"].GetStructValue().GetFields()[params.MaxPrecursorCharge].GetNumberValue())

	list, err := client.ListRuns(ctx, req(t, map[string]any{}))
	require.NoError(t, err)
	assert.Equal(t, 1.0, list.Fields["total"].GetNumberValue())
	assert.Len(t, list.Fields["runs"].GetListValue().GetValues(), 1)

	_, err = client.GetRun(ctx, req(t, map[string]any{"id": "nope"}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
	_, err = client.GetRun(ctx, req(t, map[string]any{"id": uuid.NewString()}))
	assert.Equal(t, codes.NotFound, status.Code(err))
	_, err = client.ListRuns(ctx, req(t, map[string]any{"limit": -1}))
	assert.Equal(t, codes.InvalidArgument, status.Code(err))
}

func TestIngestDirectoryRPC(t *testing.T) {
	client, _ := startServer(t)
	root := t.TempDir()
	for name, src := range map[string]string{"a/params.tsv": i2mFixture, "b/report.txt": spectronautFixture} {
		raw, err := os.ReadFile(src)
		require.NoError(t, err)
		dst := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(dst), 0o755))
		require.NoError(t, os.WriteFile(dst, raw, 0o644))
	}

	out, err := client.IngestDirectory(context.Background(), req(t, map[string]any{"root": root, "workers": 2}))
	require.NoError(t, err)
	assert.Equal(t, 2.0, out.Fields["matched"].GetNumberValue())
	assert.Equal(t, 2.0, out.Fields["succeeded"].GetNumberValue())
	assert.Len(t, out.Fields["results"].GetListValue().GetValues(), 2)

	_, err = client.IngestDirectory(context.Background(), req(t, map[string]any{"root": filepath.Join(root, "nope")}))
	assert.Equal(t, codes.NotFound, status.Code(err))
}

func TestHealth(t *testing.T) {
	_, conn := startServer(t)
	resp, err := healthpb.NewHealthClient(conn).Check(context.Background(), &healthpb.HealthCheckRequest{Service: ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.GetStatus())
}
