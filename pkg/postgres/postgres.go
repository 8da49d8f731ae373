// Package postgres provides the PostgreSQL dialect configuration for relq.
package postgres

import (
	"fmt"
	"strings"

	"github.com/zoobzio/relq"
)

// Dialect implements relq.Dialect for PostgreSQL.
type Dialect struct{}

// New creates the PostgreSQL dialect.
func New() *Dialect { return &Dialect{} }

// Name returns the dialect name.
func (*Dialect) Name() string { return "postgresql" }

// Placeholder renders pgx-style numbered markers.
func (*Dialect) Placeholder(n int) string { return fmt.Sprintf("$%d", n) }

var types = map[relq.ColumnType]string{
	relq.TypeText:        "VARCHAR",
	relq.TypeInt:         "INTEGER",
	relq.TypeBigInt:      "BIGINT",
	relq.TypeFloat:       "FLOAT",
	relq.TypeTimestamp:   "TIMESTAMP",
	relq.TypeTimestampTZ: "TIMESTAMPTZ",
	relq.TypeDate:        "DATE",
	relq.TypeBool:        "BOOL",
	relq.TypeUUID:        "UUID",
	relq.TypeJSON:        "JSON",
	relq.TypeBlob:        "BYTEA",
}

// TypeName maps a column to its native type. Arrays are native here.
func (*Dialect) TypeName(c relq.Column) (string, error) {
	base, ok := types[c.Type]
	if !ok {
		return "", fmt.Errorf("postgresql: unknown column type %q", c.Type)
	}
	return base + strings.Repeat("[]", c.Dims), nil
}

// ConflictUpdate renders ON CONFLICT ... DO UPDATE on the key columns.
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
