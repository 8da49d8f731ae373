package relq

import (
	"fmt"
	"strings"
)

// Update builds an UPDATE statement: the given natural-key columns select
// the row, every other given column is written. Dotted and foreign-key
// columns resolve the way Upsert resolves them.
type Update struct {
	table      *Table
	columns    []string
	lenient    map[string]bool
	lenientAll bool
}

// Update starts an update on the given columns (default column set when none
// are named). The natural-key columns must all be present.
func (t *Table) Update(columns ...string) *Update {
	if len(columns) == 0 {
		columns = t.DefaultColumns(false)
	}
	return &Update{table: t, columns: columns, lenient: make(map[string]bool)}
}

// Lenient marks foreign-key columns whose values are written through
// directly, skipping the existence check. Without arguments every foreign
// key is treated leniently.
func (u *Update) Lenient(columns ...string) *Update {
	if len(columns) == 0 {
		u.lenientAll = true
		return u
	}
	for _, c := range columns {
		u.lenient[c] = true
	}
	return u
}

func (u *Update) isLenient(column string) bool {
	return u.lenientAll || u.lenient[column]
}

// Compile assembles the UPDATE statement. SET expressions bind before WHERE
// expressions; the statement reorders caller values accordingly.
func (u *Update) Compile(d Dialect) (*Statement, error) {
	groups, err := groupColumns(u.columns)
	if err != nil {
		return nil, fmt.Errorf("update on %q: %w", u.table.Name, err)
	}

	keySet := make(map[string]bool, len(u.table.NaturalKey))
	for _, k := range u.table.NaturalKey {
		keySet[k] = true
	}
	present := make(map[string]bool, len(groups))
	var setGroups, keyGroups []colGroup
	for _, g := range groups {
		present[g.name] = true
		if keySet[g.name] {
			keyGroups = append(keyGroups, g)
		} else {
			setGroups = append(setGroups, g)
		}
	}
	for _, k := range u.table.NaturalKey {
		if !present[k] {
			return nil, fmt.Errorf("update on %q: natural key column %q missing from column list", u.table.Name, k)
		}
	}
	if len(setGroups) == 0 {
		return nil, fmt.Errorf("update on %q: no columns to set besides the natural key", u.table.Name)
	}

	counter := 0
	var argOrder []int

	setParts := make([]string, 0, len(setGroups))
	for _, g := range setGroups {
		expr, order, err := u.table.valueExpr(g, d, &counter, u.isLenient(g.name))
		if err != nil {
			return nil, err
		}
		setParts = append(setParts, Quote(g.name)+" = "+expr)
		argOrder = append(argOrder, order...)
	}
	whereParts := make([]string, 0, len(keyGroups))
	for _, g := range keyGroups {
		expr, order, err := u.table.valueExpr(g, d, &counter, u.isLenient(g.name))
		if err != nil {
			return nil, err
		}
		whereParts = append(whereParts, Quote(g.name)+" = "+expr)
		argOrder = append(argOrder, order...)
	}

	var sql strings.Builder
	sql.WriteString("UPDATE ")
	sql.WriteString(Quote(u.table.Name))
	sql.WriteString(" SET ")
	sql.WriteString(strings.Join(setParts, ", "))
	sql.WriteString(" WHERE ")
	sql.WriteString(strings.Join(whereParts, " AND "))

	return &Statement{SQL: sql.String(), Columns: u.columns, argOrder: argOrder, params: counter}, nil
}
