package repository

import (
	"context"
	"fmt"

	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"

	"github.com/Proteobench/Proteobench/internal/common"
)

const runsTable = "parameter_runs"

// Run columns.
const (
	colID              = "id"
	colSourcePath      = "source_path"
	colEngine          = "engine"
	colContentHash     = "content_hash"
	colSchemaVersion   = "schema_version"
	colSoftwareName    = "software_name"
	colSoftwareVersion = "software_version"
	colRecordJSON      = "record_json"
	colCreatedAt       = "created_at"
)

var runColumns = []string{
	colID,
	colSourcePath,
	colEngine,
	colContentHash,
	colSchemaVersion,
	colSoftwareName,
	colSoftwareVersion,
	colRecordJSON,
	colCreatedAt,
}

func runsSchema() *schema.Table {
	text := map[string]string{dialect.Postgres: "text", dialect.SQLite: "text"}
	t := schema.NewTable(runsTable).
		AddPrimary(&schema.Column{Name: colID, Type: field.TypeUUID}).
		AddColumn(&schema.Column{Name: colSourcePath, Type: field.TypeString, SchemaType: text}).
		AddColumn(&schema.Column{Name: colEngine, Type: field.TypeString, Size: 64}).
		AddColumn(&schema.Column{Name: colContentHash, Type: field.TypeString, Size: 64}).
		AddColumn(&schema.Column{Name: colSchemaVersion, Type: field.TypeString, Size: 16}).
		AddColumn(&schema.Column{Name: colSoftwareName, Type: field.TypeString, Size: 128, Nullable: true}).
		AddColumn(&schema.Column{Name: colSoftwareVersion, Type: field.TypeString, Size: 128, Nullable: true}).
		AddColumn(&schema.Column{Name: colRecordJSON, Type: field.TypeString, SchemaType: text}).
		AddColumn(&schema.Column{Name: colCreatedAt, Type: field.TypeTime})
	t.AddIndex("parameterruns_content_hash_engine", true, []string{colContentHash, colEngine})
	t.AddIndex("parameterruns_created_at", false, []string{colCreatedAt})
	return t
}

// Migrate creates or extends the run table. It only ever adds.
func Migrate(ctx context.Context, db *DB) error {
	m, err := schema.NewMigrate(db.drv)
	if err != nil {
		return fmt.Errorf("%w: init migrate: %v", common.ErrDatabase, err)
	}
	if err := m.Create(ctx, runsSchema()); err != nil {
		db.logger.Error("migration failed", "error", err)
		return fmt.Errorf("%w: migrate: %v", common.ErrDatabase, err)
	}
	db.logger.Info("schema migrated", "table", runsTable)
	return nil
}
