package relq

import (
	"fmt"

	"github.com/zoobzio/dbml"
)

// Schema is a caller-owned table registry. There is no implicit process-wide
// default: construction always goes through an explicit instance, so tests
// can hold independent schemas without shared state.
type Schema struct {
	tables map[string]*Table
	order  []string
}

// NewSchema creates an empty registry.
func NewSchema() *Schema {
	return &Schema{tables: make(map[string]*Table)}
}

// Define validates a table declaration and registers it. Definition errors
// are returned, not panicked, so callers can collect several of them.
func (s *Schema) Define(def TableDef) (*Table, error) {
	if _, exists := s.tables[def.Name]; exists {
		return nil, &SchemaError{Table: def.Name, Msg: "already defined"}
	}
	t, err := newTable(def, s)
	if err != nil {
		return nil, err
	}
	s.tables[t.Name] = t
	s.order = append(s.order, t.Name)
	return t, nil
}

// Get returns the named table.
func (s *Schema) Get(name string) (*Table, bool) {
	t, ok := s.tables[name]
	return t, ok
}

// Tables returns all tables in definition order.
func (s *Schema) Tables() []*Table {
	out := make([]*Table, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.tables[name])
	}
	return out
}

// TableRels carries the relationship metadata a DBML project does not encode
// for us: natural keys, foreign keys, reverse relations.
type TableRels struct {
	NaturalKey  []string
	ForeignKeys map[string]string
	OneToMany   map[string]string
	NotNull     []string
	PrimaryKey  string
}

// FromDBML builds a schema from a DBML project. The project supplies table
// names and column types; rels (keyed by table name) supplies the relation
// metadata for each table that has any.
func FromDBML(project *dbml.Project, rels map[string]TableRels) (*Schema, error) {
	if project == nil {
		return nil, fmt.Errorf("project cannot be nil")
	}
	s := NewSchema()
	for _, table := range project.Tables {
		def := TableDef{Name: table.Name}
		for _, col := range table.Columns {
			def.Columns = append(def.Columns, ColumnDef{Name: col.Name, Type: col.Type})
		}
		if r, ok := rels[table.Name]; ok {
			def.NaturalKey = r.NaturalKey
			def.ForeignKeys = r.ForeignKeys
			def.OneToMany = r.OneToMany
			def.NotNull = r.NotNull
			def.PrimaryKey = r.PrimaryKey
		}
		if _, err := s.Define(def); err != nil {
			return nil, err
		}
	}
	return s, nil
}
