package relq

import "strings"

// Delete builds a DELETE statement. SQL DELETE cannot join, so conditions
// that reference relations compile to a primary-key subquery carrying the
// joins.
type Delete struct {
	table *Table
	where []string
}

// Delete starts a delete; without conditions it compiles to a full-table
// delete.
func (t *Table) Delete(conditions ...string) *Delete {
	return &Delete{table: t, where: conditions}
}

// Where adds conditions; multiple conditions combine with AND.
func (del *Delete) Where(conditions ...string) *Delete {
	del.where = append(del.where, conditions...)
	return del
}

// Compile assembles the statement for the given dialect.
func (del *Delete) Compile(d Dialect) (*Statement, error) {
	counter := 0
	env := newEnv(del.table, d.Placeholder, &counter)

	conds, err := evalExprs(del.where, env)
	if err != nil {
		return nil, err
	}
	joins, err := del.table.Joins(env)
	if err != nil {
		return nil, err
	}

	var sql strings.Builder
	sql.WriteString("DELETE FROM ")
	sql.WriteString(Quote(del.table.Name))

	switch {
	case len(conds) == 0:
	case len(joins) == 0:
		sql.WriteString(" WHERE ")
		sql.WriteString(combineAnd(conds))
	default:
		pk := Quote(del.table.Name) + "." + Quote(del.table.PrimaryKey)
		sql.WriteString(" WHERE ")
		sql.WriteString(pk)
		sql.WriteString(" IN (SELECT ")
		sql.WriteString(pk)
		sql.WriteString(" FROM ")
		sql.WriteString(Quote(del.table.Name))
		for _, j := range joins {
			sql.WriteByte(' ')
			sql.WriteString(j.sql())
		}
		sql.WriteString(" WHERE ")
		sql.WriteString(combineAnd(conds))
		sql.WriteByte(')')
	}

	return &Statement{SQL: sql.String(), params: counter}, nil
}
