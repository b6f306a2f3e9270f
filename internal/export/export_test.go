package export

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/Proteobench/Proteobench/internal/common"
	"github.com/Proteobench/Proteobench/internal/params"
	"github.com/Proteobench/Proteobench/internal/repository"
)

func sampleRecord() *params.Record {
	r := params.New()
	r.SoftwareName = params.Ptr("Spectronaut")
	r.SoftwareVersion = params.Ptr("19.0")
	r.IdentFDRPSM = params.Ptr(0.01)
	r.EnableMatchBetweenRuns = params.Ptr(false)
	r.MaxPrecursorCharge = params.Ptr(4)
	r.VariableMods = params.Ptr("")
	return r
}

func TestRow(t *testing.T) {
	header := Header()
	row := Row(sampleRecord())
	require.Len(t, row, len(header))

	at := func(name string) string {
		for i, h := range header {
			if h == name {
				return row[i]
			}
		}
		t.Fatalf("no column %s", name)
		return ""
	}
	assert.Equal(t, "Spectronaut", at(params.SoftwareName))
	assert.Equal(t, "0.01", at(params.IdentFDRPSM))
	assert.Equal(t, "false", at(params.EnableMatchBetweenRuns))
	assert.Equal(t, "4", at(params.MaxPrecursorCharge))
	assert.Equal(t, "", at(params.Enzyme))

	assert.Len(t, Row(nil), len(header))
}

func TestStructRoundTrip(t *testing.T) {
	s, err := ToStruct(sampleRecord())
	require.NoError(t, err)
	assert.Equal(t, 4.0, s.Fields[params.MaxPrecursorCharge].GetNumberValue())
	assert.NotContains(t, s.Fields, params.Enzyme)

	back, err := FromStruct(s)
	require.NoError(t, err)
	assert.Equal(t, sampleRecord(), back)
}

func TestFromStructRejects(t *testing.T) {
	_, err := FromStruct(&structpb.Struct{Fields: map[string]*structpb.Value{
		"colour": structpb.NewStringValue("blue"),
	}})
	assert.ErrorIs(t, err, common.ErrUnknownField)

	_, err = FromStruct(&structpb.Struct{Fields: map[string]*structpb.Value{
		params.MaxPrecursorCharge: structpb.NewNumberValue(2.5),
	}})
	assert.ErrorIs(t, err, common.ErrInvalidValue)

	_, err = FromStruct(&structpb.Struct{Fields: map[string]*structpb.Value{
		params.EnableMatchBetweenRuns: structpb.NewStringValue("yes"),
	}})
	assert.ErrorIs(t, err, common.ErrInvalidValue)
}

func sampleRun() *repository.Run {
	return &repository.Run{
		ID:            uuid.MustParse("6f1c1f0e-7a59-4d7e-9b55-3c1f1d2a8e10"),
		SourcePath:    "/data/ExperimentSetupOverview.txt",
		Engine:        "Spectronaut",
		ContentHash:   "abc",
		SchemaVersion: params.SchemaVersion,
		Record:        sampleRecord(),
		CreatedAt:     time.Date(2024, 6, 6, 12, 0, 0, 0, time.UTC),
	}
}

func TestWriteXLSX(t *testing.T) {
	out, err := WriteXLSX([]*repository.Run{sampleRun()})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Run ID", rows[0][0])
	assert.Equal(t, params.SoftwareName, rows[0][len(runColumns)])
	assert.Equal(t, "6f1c1f0e-7a59-4d7e-9b55-3c1f1d2a8e10", rows[1][0])
	assert.Equal(t, "2024-06-06T12:00:00Z", rows[1][3])
	assert.Equal(t, "Spectronaut", rows[1][len(runColumns)])
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, []*repository.Run{sampleRun()}))

	var docs []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &docs))
	require.Len(t, docs, 1)
	assert.Equal(t, "Spectronaut", docs[0]["engine"])
	p := docs[0]["parameters"].(map[string]any)
	assert.Equal(t, 0.01, p[params.IdentFDRPSM])
	assert.Equal(t, "", p[params.VariableMods])
	assert.NotContains(t, p, params.Enzyme)
}

func TestServiceExportRunsXLSX(t *testing.T) {
	ctx := context.Background()
	db, err := repository.Open(ctx, repository.Config{DSN: "file:" + filepath.Join(t.TempDir(), "export.db")}, nil)
	require.NoError(t, err)
	t.Cleanup(db.Close)
	require.NoError(t, repository.Migrate(ctx, db))

	runs := repository.NewRunRepository(db, nil)
	run := sampleRun()
	_, err = runs.Create(ctx, *run)
	require.NoError(t, err)

	out, err := NewService(runs, nil).ExportRunsXLSX(ctx, 0)
	require.NoError(t, err)
	f, err := excelize.OpenReader(bytes.NewReader(out))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 2)
}
