package relq

import (
	"fmt"
	"strings"
)

// Ref is one registered relation path and the table alias allocated for it.
type Ref struct {
	Prefix []string
	Alias  string
}

// Env is the alias environment of a single statement compilation. It is
// bound to one root table and allocates one stable alias per distinct
// relation-path prefix, in the order joins must later be emitted (a join's
// ON clause may anchor on an earlier join's alias). An Env is created fresh
// per compilation and never shared between statements.
type Env struct {
	table   *Table
	refs    []Ref
	index   map[string]int
	marker  func(n int) string
	nparams *int
}

// NewEnv creates an environment bound to table. Placeholders render as "?";
// statement builders substitute the dialect's marker.
func NewEnv(table *Table) *Env {
	n := 0
	return newEnv(table, func(int) string { return "?" }, &n)
}

func newEnv(table *Table, marker func(int) string, counter *int) *Env {
	return &Env{
		table:   table,
		index:   make(map[string]int),
		marker:  marker,
		nparams: counter,
	}
}

// Table returns the root table the environment is bound to.
func (e *Env) Table() *Table { return e.table }

// Refs returns the registered relation paths in insertion order.
func (e *Env) Refs() []Ref { return e.refs }

// Params returns how many placeholders have been rendered so far.
func (e *Env) Params() int { return *e.nparams }

// Placeholder renders the next positional parameter marker.
func (e *Env) Placeholder() string {
	*e.nparams++
	return e.marker(*e.nparams)
}

// Resolve renders a column reference. A bare column renders against the root
// table's own name; a dotted path allocates (or reuses) an alias for its
// relation prefix.
func (e *Env) Resolve(path []string) (string, error) {
	switch len(path) {
	case 0:
		return "", &PathShapeError{Table: e.table.Name, Path: path, Msg: "empty reference"}
	case 1:
		return Quote(e.table.Name) + "." + Quote(path[0]), nil
	}
	alias, err := e.ref(path[:len(path)-1])
	if err != nil {
		return "", err
	}
	return Quote(alias) + "." + Quote(path[len(path)-1]), nil
}

// ref returns the alias for a relation prefix, allocating one if needed.
// Ancestor prefixes are registered first so join emission always finds each
// join's anchor already present. Ordinals are the registry size at
// allocation time: monotonic, never reused within this Env.
func (e *Env) ref(prefix []string) (string, error) {
	key := strings.Join(prefix, ".")
	if i, ok := e.index[key]; ok {
		return e.refs[i].Alias, nil
	}
	// Fail now, not at join emission, if the chain cannot be resolved.
	if _, err := e.table.joinOn(prefix); err != nil {
		return "", err
	}
	if len(prefix) >= 2 {
		if _, err := e.ref(prefix[:len(prefix)-1]); err != nil {
			return "", err
		}
	}
	alias := fmt.Sprintf("%s_%d", prefix[len(prefix)-1], len(e.refs))
	e.index[key] = len(e.refs)
	e.refs = append(e.refs, Ref{Prefix: prefix, Alias: alias})
	return alias, nil
}
