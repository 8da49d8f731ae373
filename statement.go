package relq

import (
	"context"
	"database/sql"
	"fmt"
)

// Executor runs compiled statements. *sql.DB and *sql.Tx satisfy it; the
// compiler itself never opens a connection. Transactions are passed in
// explicitly; there is no ambient "current transaction".
type Executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// Statement is a compiled statement: SQL text plus the positional-parameter
// contract. Values are bound strictly by order of appearance in the text.
type Statement struct {
	SQL string

	// Columns names the values the caller supplies, in caller order. It is
	// set by upsert/update compilations, where the caller hands one value
	// per given column; select/delete placeholders bind positionally and
	// leave it nil.
	Columns []string

	// argOrder maps each placeholder, in order of appearance, to the
	// caller-supplied value it consumes (builders may reorder: UPDATE binds
	// SET before WHERE). nil means values pass through unchanged.
	argOrder []int

	params int
}

// NumParams returns how many values the statement expects.
func (st *Statement) NumParams() int {
	if st.argOrder != nil {
		return len(st.Columns)
	}
	return st.params
}

// Bind checks the value count and reorders values into placeholder order.
func (st *Statement) Bind(values ...any) ([]any, error) {
	if want := st.NumParams(); len(values) != want {
		return nil, fmt.Errorf("statement wants %d values, got %d", want, len(values))
	}
	if st.argOrder == nil {
		return values, nil
	}
	args := make([]any, len(st.argOrder))
	for i, src := range st.argOrder {
		args[i] = values[src]
	}
	return args, nil
}

// Exec binds values and runs the statement.
func (st *Statement) Exec(ctx context.Context, ex Executor, values ...any) (sql.Result, error) {
	args, err := st.Bind(values...)
	if err != nil {
		return nil, err
	}
	return ex.ExecContext(ctx, st.SQL, args...)
}

// ExecMany runs the statement once per row of values.
func (st *Statement) ExecMany(ctx context.Context, ex Executor, rows [][]any) error {
	for i, row := range rows {
		if _, err := st.Exec(ctx, ex, row...); err != nil {
			return fmt.Errorf("row %d: %w", i, err)
		}
	}
	return nil
}

// Query binds values and runs the statement as a query.
func (st *Statement) Query(ctx context.Context, ex Executor, values ...any) (*sql.Rows, error) {
	args, err := st.Bind(values...)
	if err != nil {
		return nil, err
	}
	return ex.QueryContext(ctx, st.SQL, args...)
}
