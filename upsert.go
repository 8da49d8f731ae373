package relq

import (
	"fmt"
	"strings"

	"github.com/zoobzio/relq/sexpr"
)

// Upsert builds an INSERT statement with a conflict clause on the natural
// key. Dotted columns write a foreign key by its target's natural key,
// resolved through a scalar subquery at execution time.
type Upsert struct {
	table      *Table
	columns    []string
	lenient    map[string]bool
	lenientAll bool
	insertOnly bool
}

// Upsert starts an upsert on the given columns (default column set when
// none are named). The natural-key columns must all be present.
func (t *Table) Upsert(columns ...string) *Upsert {
	if len(columns) == 0 {
		columns = t.DefaultColumns(false)
	}
	return &Upsert{table: t, columns: columns, lenient: make(map[string]bool)}
}

// Insert is an insert-only upsert: an existing row with the same key is left
// untouched instead of updated.
func (t *Table) Insert(columns ...string) *Upsert {
	return t.Upsert(columns...).InsertOnly()
}

// Lenient marks foreign-key columns whose values are written through
// directly, skipping the existence check. Without arguments every foreign
// key is treated leniently.
func (u *Upsert) Lenient(columns ...string) *Upsert {
	if len(columns) == 0 {
		u.lenientAll = true
		return u
	}
	for _, c := range columns {
		u.lenient[c] = true
	}
	return u
}

// InsertOnly switches the conflict clause to ignore existing rows.
func (u *Upsert) InsertOnly() *Upsert {
	u.insertOnly = true
	return u
}

func (u *Upsert) isLenient(column string) bool {
	return u.lenientAll || u.lenient[column]
}

// Compile assembles the INSERT ... ON CONFLICT statement for the dialect.
func (u *Upsert) Compile(d Dialect) (*Statement, error) {
	groups, err := groupColumns(u.columns)
	if err != nil {
		return nil, fmt.Errorf("upsert on %q: %w", u.table.Name, err)
	}

	counter := 0
	names := make([]string, 0, len(groups))
	exprs := make([]string, 0, len(groups))
	var argOrder []int
	for _, g := range groups {
		expr, order, err := u.table.valueExpr(g, d, &counter, u.isLenient(g.name))
		if err != nil {
			return nil, err
		}
		names = append(names, g.name)
		exprs = append(exprs, expr)
		argOrder = append(argOrder, order...)
	}

	present := make(map[string]bool, len(names))
	for _, n := range names {
		present[n] = true
	}
	key := u.table.NaturalKey
	for _, k := range key {
		if !present[k] {
			return nil, fmt.Errorf("upsert on %q: natural key column %q missing from column list", u.table.Name, k)
		}
	}
	var updates []string
	keySet := make(map[string]bool, len(key))
	for _, k := range key {
		keySet[k] = true
	}
	for _, n := range names {
		if !keySet[n] {
			updates = append(updates, n)
		}
	}

	var clause string
	if u.insertOnly || len(updates) == 0 {
		clause, err = d.ConflictNothing(key)
	} else {
		clause, err = d.ConflictUpdate(key, updates)
	}
	if err != nil {
		return nil, err
	}

	var sql strings.Builder
	sql.WriteString("INSERT INTO ")
	sql.WriteString(Quote(u.table.Name))
	sql.WriteString(" (")
	for i, n := range names {
		if i > 0 {
			sql.WriteString(", ")
		}
		sql.WriteString(Quote(n))
	}
	sql.WriteString(") VALUES (")
	sql.WriteString(strings.Join(exprs, ", "))
	sql.WriteByte(')')
	if clause != "" {
		sql.WriteByte(' ')
		sql.WriteString(clause)
	}

	return &Statement{SQL: sql.String(), Columns: u.columns, argOrder: argOrder, params: counter}, nil
}

// leaf is one caller-supplied value inside a column group: the path below
// the group's own column and the index of the value in caller order.
type leaf struct {
	rest []string
	src  int
}

// colGroup gathers the caller columns that feed one inserted column. A
// dotted column like "city.name" groups under "city"; several dotted columns
// with the same head share one group (and one resolving subquery).
type colGroup struct {
	name   string
	leaves []leaf
	direct bool
	src    int
}

func groupColumns(columns []string) ([]colGroup, error) {
	var groups []colGroup
	index := make(map[string]int)
	for src, col := range columns {
		path := strings.Split(col, ".")
		name, rest := path[0], path[1:]
		i, ok := index[name]
		if !ok {
			i = len(groups)
			index[name] = i
			groups = append(groups, colGroup{name: name})
		}
		g := &groups[i]
		if len(rest) == 0 {
			if g.direct || len(g.leaves) > 0 {
				return nil, fmt.Errorf("column %q given more than once", name)
			}
			g.direct = true
			g.src = src
			continue
		}
		if g.direct {
			return nil, fmt.Errorf("column %q mixes direct and dotted forms", name)
		}
		g.leaves = append(g.leaves, leaf{rest: rest, src: src})
	}
	return groups, nil
}

// valueExpr compiles the value expression for one column group and reports
// which caller values its placeholders consume, in order of appearance.
//
// A plain non-key column is a bare placeholder. A strict foreign-key column
// is wrapped in an existence subquery so an unknown reference cannot be
// written; lenient skips the check. A dotted group resolves the target row
// by natural key through a scalar subquery.
func (t *Table) valueExpr(g colGroup, d Dialect, counter *int, lenient bool) (string, []int, error) {
	if g.direct {
		if _, ok := t.Column(g.name); !ok {
			return "", nil, &SchemaError{Table: t.Name, Msg: fmt.Sprintf("unknown column %q", g.name)}
		}
		*counter++
		ph := d.Placeholder(*counter)
		target, isFK := t.ForeignKeys[g.name]
		if !isFK || lenient {
			return ph, []int{g.src}, nil
		}
		ft, ok := t.schema.Get(target)
		if !ok {
			return "", nil, &UnresolvedRelationError{Table: target, Segment: g.name, Path: []string{g.name}}
		}
		pk := Quote(ft.Name) + "." + Quote(ft.PrimaryKey)
		return fmt.Sprintf("(SELECT %s FROM %s WHERE %s = %s)", pk, Quote(ft.Name), pk, ph),
			[]int{g.src}, nil
	}

	target, isFK := t.ForeignKeys[g.name]
	if !isFK {
		return "", nil, &UnresolvedRelationError{Table: t.Name, Segment: g.name, Path: []string{g.name}}
	}
	ft, ok := t.schema.Get(target)
	if !ok {
		return "", nil, &UnresolvedRelationError{Table: target, Segment: g.name, Path: []string{g.name}}
	}

	env := newEnv(ft, d.Placeholder, counter)
	conds := make([]string, 0, len(g.leaves))
	order := make([]int, 0, len(g.leaves))
	for _, lf := range g.leaves {
		ast := &sexpr.AST{Tokens: []sexpr.Token{sexpr.BuiltinToken{
			Op:   "=",
			Args: []sexpr.Token{sexpr.VarToken{Path: lf.rest}, sexpr.ParamToken{}},
		}}}
		frag, err := ast.Eval(env)
		if err != nil {
			return "", nil, err
		}
		conds = append(conds, frag)
		order = append(order, lf.src)
	}
	joins, err := ft.Joins(env)
	if err != nil {
		return "", nil, err
	}

	var sub strings.Builder
	sub.WriteString("(SELECT ")
	sub.WriteString(Quote(ft.Name))
	sub.WriteByte('.')
	sub.WriteString(Quote(ft.PrimaryKey))
	sub.WriteString(" FROM ")
	sub.WriteString(Quote(ft.Name))
	for _, j := range joins {
		sub.WriteByte(' ')
		sub.WriteString(j.sql())
	}
	sub.WriteString(" WHERE ")
	sub.WriteString(combineAnd(conds))
	sub.WriteByte(')')
	return sub.String(), order, nil
}
