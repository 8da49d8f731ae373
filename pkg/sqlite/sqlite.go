// Package sqlite provides the SQLite dialect configuration for relq.
package sqlite

import (
	"fmt"
	"strings"

	"github.com/zoobzio/relq"
)

// Dialect implements relq.Dialect for SQLite.
type Dialect struct{}

// New creates the SQLite dialect.
func New() *Dialect { return &Dialect{} }

// Name returns the dialect name.
func (*Dialect) Name() string { return "sqlite" }

// Placeholder renders database/sql-style anonymous markers.
func (*Dialect) Placeholder(int) string { return "?" }

var types = map[relq.ColumnType]string{
	relq.TypeText:        "TEXT",
	relq.TypeInt:         "INTEGER",
	relq.TypeBigInt:      "INTEGER",
	relq.TypeFloat:       "FLOAT",
	relq.TypeTimestamp:   "DATETIME",
	relq.TypeTimestampTZ: "DATETIME",
	relq.TypeDate:        "DATE",
	relq.TypeBool:        "BOOL",
	relq.TypeUUID:        "TEXT",
	relq.TypeJSON:        "JSON",
	relq.TypeBlob:        "BLOB",
}

// TypeName maps a column to its native type. SQLite has no arrays; an
// array-typed column degrades to a JSON-encoded representation.
func (*Dialect) TypeName(c relq.Column) (string, error) {
	if c.Dims > 0 {
		return "JSON", nil
	}
	base, ok := types[c.Type]
	if !ok {
		return "", fmt.Errorf("sqlite: unknown column type %q", c.Type)
	}
	return base, nil
}

// ConflictUpdate renders ON CONFLICT ... DO UPDATE (SQLite 3.24+ syntax,
// same shape as PostgreSQL).
func (*Dialect) ConflictUpdate(key, update []string) (string, error) {
	var b strings.Builder
	writeConflictTarget(&b, key)
	b.WriteString(" DO UPDATE SET ")
	for i, col := range update {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(relq.Quote(col))
		b.WriteString(" = EXCLUDED.")
		b.WriteString(relq.Quote(col))
	}
	return b.String(), nil
}

// ConflictNothing renders ON CONFLICT ... DO NOTHING on the key columns.
func (*Dialect) ConflictNothing(key []string) (string, error) {
	var b strings.Builder
	writeConflictTarget(&b, key)
	b.WriteString(" DO NOTHING")
	return b.String(), nil
}

func writeConflictTarget(b *strings.Builder, key []string) {
	b.WriteString("ON CONFLICT (")
	for i, col := range key {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(relq.Quote(col))
	}
	b.WriteByte(')')
}
