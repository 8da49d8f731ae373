package relq

import (
	"fmt"
	"strings"

	"github.com/zoobzio/relq/sexpr"
)

// Direction is an ORDER BY sort direction.
type Direction string

const (
	Asc  Direction = "ASC"
	Desc Direction = "DESC"
)

type orderTerm struct {
	expr string
	dir  Direction
}

// Select builds a SELECT statement. Columns and conditions are condition-
// language expressions; dotted relation paths pull in the joins they imply.
type Select struct {
	table   *Table
	columns []string
	where   []string
	order   []orderTerm
	limit   int
	offset  int
}

// Select starts a SELECT. Without explicit columns the default column set is
// used, with foreign keys expanded into the natural key of their target.
func (t *Table) Select(columns ...string) *Select {
	if len(columns) == 0 {
		columns = t.DefaultColumns(false)
	}
	return &Select{table: t, columns: columns, limit: -1, offset: -1}
}

// Where adds conditions; multiple conditions combine with AND.
func (s *Select) Where(conditions ...string) *Select {
	s.where = append(s.where, conditions...)
	return s
}

// OrderBy appends a sort term. The column may be a dotted relation path.
func (s *Select) OrderBy(column string, dir Direction) *Select {
	s.order = append(s.order, orderTerm{expr: column, dir: dir})
	return s
}

// Limit caps the row count. Negative means no limit.
func (s *Select) Limit(n int) *Select {
	s.limit = n
	return s
}

// Offset skips the first n rows. Negative means no offset.
func (s *Select) Offset(n int) *Select {
	s.offset = n
	return s
}

// Compile assembles the statement for the given dialect. Each compilation
// owns a fresh alias environment; placeholders in conditions bind values by
// order of appearance.
func (s *Select) Compile(d Dialect) (*Statement, error) {
	counter := 0
	env := newEnv(s.table, d.Placeholder, &counter)

	cols, err := evalExprs(s.columns, env)
	if err != nil {
		return nil, err
	}
	conds, err := evalExprs(s.where, env)
	if err != nil {
		return nil, err
	}
	orders := make([]string, 0, len(s.order))
	for _, term := range s.order {
		frag, err := evalExpr(term.expr, env)
		if err != nil {
			return nil, err
		}
		orders = append(orders, frag+" "+string(term.dir))
	}

	joins, err := s.table.Joins(env)
	if err != nil {
		return nil, err
	}

	var sql strings.Builder
	sql.WriteString("SELECT ")
	sql.WriteString(strings.Join(cols, ", "))
	sql.WriteString(" FROM ")
	sql.WriteString(Quote(s.table.Name))
	for _, j := range joins {
		sql.WriteByte(' ')
		sql.WriteString(j.sql())
	}
	if len(conds) > 0 {
		sql.WriteString(" WHERE ")
		sql.WriteString(combineAnd(conds))
	}
	if len(orders) > 0 {
		sql.WriteString(" ORDER BY ")
		sql.WriteString(strings.Join(orders, ", "))
	}
	if s.limit >= 0 {
		fmt.Fprintf(&sql, " LIMIT %d", s.limit)
	}
	if s.offset >= 0 {
		fmt.Fprintf(&sql, " OFFSET %d", s.offset)
	}

	return &Statement{SQL: sql.String(), params: counter}, nil
}

func evalExpr(expr string, env *Env) (string, error) {
	ast, err := sexpr.Parse(expr)
	if err != nil {
		return "", err
	}
	return ast.Eval(env)
}

func evalExprs(exprs []string, env *Env) ([]string, error) {
	out := make([]string, 0, len(exprs))
	for _, expr := range exprs {
		frag, err := evalExpr(expr, env)
		if err != nil {
			return nil, err
		}
		out = append(out, frag)
	}
	return out, nil
}

// combineAnd joins condition fragments with AND, parenthesizing each one
// when there is more than one.
func combineAnd(conds []string) string {
	if len(conds) == 1 {
		return conds[0]
	}
	parts := make([]string, len(conds))
	for i, c := range conds {
		parts[i] = "(" + c + ")"
	}
	return strings.Join(parts, " AND ")
}
