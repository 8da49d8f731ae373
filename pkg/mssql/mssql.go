// Package mssql provides the SQL Server dialect configuration for relq.
package mssql

import (
	"fmt"

	"github.com/zoobzio/relq"
	"github.com/zoobzio/relq/internal/render"
)

// Dialect implements relq.Dialect for SQL Server.
type Dialect struct{}

// New creates the SQL Server dialect.
func New() *Dialect { return &Dialect{} }

// Name returns the dialect name.
func (*Dialect) Name() string { return "mssql" }

// Placeholder renders go-mssqldb-style numbered markers.
func (*Dialect) Placeholder(n int) string { return fmt.Sprintf("@p%d", n) }

var types = map[relq.ColumnType]string{
	relq.TypeText:        "NVARCHAR(MAX)",
	relq.TypeInt:         "INT",
	relq.TypeBigInt:      "BIGINT",
	relq.TypeFloat:       "FLOAT",
	relq.TypeTimestamp:   "DATETIME2",
	relq.TypeTimestampTZ: "DATETIMEOFFSET",
	relq.TypeDate:        "DATE",
	relq.TypeBool:        "BIT",
	relq.TypeUUID:        "UNIQUEIDENTIFIER",
	relq.TypeJSON:        "NVARCHAR(MAX)",
	relq.TypeBlob:        "VARBINARY(MAX)",
}

// TypeName maps a column to its native type. SQL Server has no arrays; an
// array-typed column degrades to a JSON-encoded representation.
func (*Dialect) TypeName(c relq.Column) (string, error) {
	if c.Dims > 0 {
		return "NVARCHAR(MAX)", nil
	}
	base, ok := types[c.Type]
	if !ok {
		return "", fmt.Errorf("mssql: unknown column type %q", c.Type)
	}
	return base, nil
}

// ConflictUpdate is not available: SQL Server upserts need MERGE, which this
// compiler does not emit.
func (*Dialect) ConflictUpdate(_, _ []string) (string, error) {
	return "", render.NewUnsupportedFeatureError("mssql", "upsert", "use separate insert and update statements")
}

// ConflictNothing is not available, as ConflictUpdate.
func (*Dialect) ConflictNothing(_ []string) (string, error) {
	return "", render.NewUnsupportedFeatureError("mssql", "upsert", "use separate insert and update statements")
}
