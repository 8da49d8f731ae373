package relq

import (
	"fmt"
	"strings"
)

// ColumnType is a semantic column type tag. The set is closed; declarations
// use any of the recognized aliases (e.g. "varchar", "character varying" and
// "text" all map to TypeText).
type ColumnType string

const (
	TypeText        ColumnType = "text"
	TypeInt         ColumnType = "int"
	TypeBigInt      ColumnType = "bigint"
	TypeFloat       ColumnType = "float"
	TypeTimestamp   ColumnType = "timestamp"
	TypeTimestampTZ ColumnType = "timestamptz"
	TypeDate        ColumnType = "date"
	TypeBool        ColumnType = "bool"
	TypeUUID        ColumnType = "uuid"
	TypeJSON        ColumnType = "json"
	TypeBlob        ColumnType = "blob"
)

var typeAliases = map[string]ColumnType{
	"str":                         TypeText,
	"text":                        TypeText,
	"varchar":                     TypeText,
	"character varying":           TypeText,
	"int":                         TypeInt,
	"integer":                     TypeInt,
	"bigint":                      TypeBigInt,
	"float":                       TypeFloat,
	"real":                        TypeFloat,
	"double precision":            TypeFloat,
	"numeric":                     TypeFloat,
	"timestamp":                   TypeTimestamp,
	"timestamp without time zone": TypeTimestamp,
	"timestamptz":                 TypeTimestampTZ,
	"timestamp with time zone":    TypeTimestampTZ,
	"date":                        TypeDate,
	"bool":                        TypeBool,
	"boolean":                     TypeBool,
	"uuid":                        TypeUUID,
	"json":                        TypeJSON,
	"blob":                        TypeBlob,
	"bytea":                       TypeBlob,
}

// Column is one column of a table: a name, a semantic type and an array
// dimension count (0 for scalars). Immutable after schema definition.
type Column struct {
	Name string
	Type ColumnType
	Dims int
}

// newColumn parses a declared type such as "varchar" or "int[][]" into a
// semantic type tag plus array dimensions.
func newColumn(table, name, declared string) (Column, error) {
	base := strings.TrimSpace(declared)
	dims := 0
	for strings.HasSuffix(base, "[]") {
		base = strings.TrimSpace(strings.TrimSuffix(base, "[]"))
		dims++
	}
	ctype, ok := typeAliases[strings.ToLower(base)]
	if !ok {
		return Column{}, &SchemaError{
			Table: table,
			Msg:   fmt.Sprintf("type %q not supported (for column %q)", declared, name),
		}
	}
	return Column{Name: strings.TrimSpace(name), Type: ctype, Dims: dims}, nil
}
