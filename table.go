package relq

import (
	"fmt"
	"slices"
	"sync"
)

// TableDef declares a table. Column order is significant: it drives the
// default column set and the default natural key.
type TableDef struct {
	Name string
	// Columns declares name/type pairs, in order.
	Columns []ColumnDef
	// NaturalKey uniquely identifies a row; defaults to all columns.
	NaturalKey []string
	// ForeignKeys maps a local column to the table it references.
	ForeignKeys map[string]string
	// OneToMany maps a relation alias to "table.column", exposing rows of
	// another table that point back at this one.
	OneToMany map[string]string
	// NotNull lists non-nullable columns in addition to the natural key.
	NotNull []string
	// PrimaryKey defaults to "id".
	PrimaryKey string
}

// ColumnDef is one column declaration.
type ColumnDef struct {
	Name string
	Type string
}

// Table is immutable table metadata. Tables are built once through
// Schema.Define and never mutated afterward, which is what makes join-path
// memoization and lock-free sharing across statement compilations safe.
type Table struct {
	Name        string
	Columns     []Column
	NaturalKey  []string
	ForeignKeys map[string]string
	OneToMany   map[string]string
	NotNull     map[string]bool
	PrimaryKey  string

	schema      *Schema
	columnIndex map[string]int

	joinMu    sync.RWMutex
	joinCache map[string]joinTarget
}

// newTable validates a definition. Registration into the schema is
// Schema.Define's job.
func newTable(def TableDef, schema *Schema) (*Table, error) {
	if def.Name == "" {
		return nil, &SchemaError{Table: def.Name, Msg: "missing table name"}
	}
	if len(def.Columns) == 0 {
		return nil, &SchemaError{Table: def.Name, Msg: "table has no columns"}
	}

	t := &Table{
		Name:        def.Name,
		Columns:     make([]Column, 0, len(def.Columns)),
		ForeignKeys: make(map[string]string, len(def.ForeignKeys)),
		OneToMany:   make(map[string]string, len(def.OneToMany)),
		NotNull:     make(map[string]bool),
		PrimaryKey:  def.PrimaryKey,
		schema:      schema,
		columnIndex: make(map[string]int, len(def.Columns)),
		joinCache:   make(map[string]joinTarget),
	}
	if t.PrimaryKey == "" {
		t.PrimaryKey = "id"
	}

	for _, cd := range def.Columns {
		col, err := newColumn(def.Name, cd.Name, cd.Type)
		if err != nil {
			return nil, err
		}
		if _, dup := t.columnIndex[col.Name]; dup {
			return nil, &SchemaError{Table: def.Name, Msg: fmt.Sprintf("duplicate column %q", col.Name)}
		}
		t.columnIndex[col.Name] = len(t.Columns)
		t.Columns = append(t.Columns, col)
	}

	if len(def.NaturalKey) > 0 {
		t.NaturalKey = slices.Clone(def.NaturalKey)
	} else {
		for _, col := range t.Columns {
			t.NaturalKey = append(t.NaturalKey, col.Name)
		}
	}
	for _, name := range t.NaturalKey {
		if _, ok := t.columnIndex[name]; !ok {
			return nil, &SchemaError{Table: def.Name, Msg: fmt.Sprintf("natural key column %q not declared", name)}
		}
		t.NotNull[name] = true
	}
	for _, name := range def.NotNull {
		if _, ok := t.columnIndex[name]; !ok {
			return nil, &SchemaError{Table: def.Name, Msg: fmt.Sprintf("not-null column %q not declared", name)}
		}
		t.NotNull[name] = true
	}

	for local, target := range def.ForeignKeys {
		if _, ok := t.columnIndex[local]; !ok {
			return nil, &SchemaError{Table: def.Name, Msg: fmt.Sprintf("foreign key column %q not declared", local)}
		}
		t.ForeignKeys[local] = target
	}
	for alias, target := range def.OneToMany {
		t.OneToMany[alias] = target
	}

	// A single-column natural key that is also a self-referential foreign
	// key collapses the key into the reference it is supposed to anchor.
	if len(t.NaturalKey) == 1 {
		nk := t.NaturalKey[0]
		if target, ok := t.ForeignKeys[nk]; ok && target == t.Name {
			return nil, &SchemaError{
				Table: def.Name,
				Msg:   fmt.Sprintf("foreign key %q refers to the table natural key", nk),
			}
		}
	}

	return t, nil
}

// Column returns the named column.
func (t *Table) Column(name string) (Column, bool) {
	i, ok := t.columnIndex[name]
	if !ok {
		return Column{}, false
	}
	return t.Columns[i], true
}

// DefaultColumns returns the column set used when a statement names none.
// Foreign-key columns expand into the dotted natural-key columns of their
// target table; with nkOnly set, only the natural key is returned, without
// expansion.
func (t *Table) DefaultColumns(nkOnly bool) []string {
	if nkOnly {
		return slices.Clone(t.NaturalKey)
	}
	var out []string
	for _, col := range t.Columns {
		target, isFK := t.ForeignKeys[col.Name]
		if !isFK {
			out = append(out, col.Name)
			continue
		}
		ft, ok := t.schema.Get(target)
		if !ok {
			out = append(out, col.Name)
			continue
		}
		for _, k := range ft.DefaultColumns(true) {
			out = append(out, col.Name+"."+k)
		}
	}
	return out
}

// ColumnTypes maps the named columns to their native type keyword for the
// given dialect; engines without array support receive a JSON fallback.
func (t *Table) ColumnTypes(d Dialect, names ...string) (map[string]string, error) {
	out := make(map[string]string, len(names))
	for _, name := range names {
		col, ok := t.Column(name)
		if !ok {
			return nil, &SchemaError{Table: t.Name, Msg: fmt.Sprintf("unknown column %q", name)}
		}
		native, err := d.TypeName(col)
		if err != nil {
			return nil, err
		}
		out[name] = native
	}
	return out, nil
}
