// Package mysql provides the MySQL/MariaDB dialect configuration for relq.
//
// relq quotes identifiers with double quotes on every dialect; sessions must
// run with sql_mode ANSI_QUOTES (or ANSI) for the generated text to parse.
package mysql

import (
	"fmt"

	"github.com/zoobzio/relq"
)

// Dialect implements relq.Dialect for MySQL and MariaDB.
type Dialect struct{}

// New creates the MySQL dialect.
func New() *Dialect { return &Dialect{} }

// Name returns the dialect name.
func (*Dialect) Name() string { return "mysql" }

// Placeholder renders database/sql-style anonymous markers.
func (*Dialect) Placeholder(int) string { return "?" }

var types = map[relq.ColumnType]string{
	relq.TypeText:        "TEXT",
	relq.TypeInt:         "INT",
	relq.TypeBigInt:      "BIGINT",
	relq.TypeFloat:       "DOUBLE",
	relq.TypeTimestamp:   "DATETIME",
	relq.TypeTimestampTZ: "TIMESTAMP",
	relq.TypeDate:        "DATE",
	relq.TypeBool:        "BOOLEAN",
	relq.TypeUUID:        "CHAR(36)",
	relq.TypeJSON:        "JSON",
	relq.TypeBlob:        "BLOB",
}

// TypeName maps a column to its native type. MySQL has no arrays; an
// array-typed column degrades to a JSON-encoded representation.
func (*Dialect) TypeName(c relq.Column) (string, error) {
	if c.Dims > 0 {
		return "JSON", nil
	}
	base, ok := types[c.Type]
	if !ok {
		return "", fmt.Errorf("mysql: unknown column type %q", c.Type)
	}
	return base, nil
}

// ConflictUpdate renders ON DUPLICATE KEY UPDATE. MySQL picks the violated
// unique key itself, so the key columns only matter through the table's
// unique constraint on them.
func (*Dialect) ConflictUpdate(_, update []string) (string, error) {
	clause := "ON DUPLICATE KEY UPDATE "
	for i, col := range update {
		if i > 0 {
			clause += ", "
		}
		clause += relq.Quote(col) + " = VALUES(" + relq.Quote(col) + ")"
	}
	return clause, nil
}

// ConflictNothing renders the no-op assignment trick MySQL uses in place of
// DO NOTHING.
func (*Dialect) ConflictNothing(key []string) (string, error) {
	k := relq.Quote(key[0])
	return "ON DUPLICATE KEY UPDATE " + k + " = " + k, nil
}
