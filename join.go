package relq

import (
	"fmt"
	"strings"
)

// joinTarget is the resolution of one relation path: the table it lands on,
// the join column on that table, and the anchor column on the local side.
type joinTarget struct {
	table       *Table
	joinColumn  string
	localColumn string
}

// JoinKind fixes the join policy: reverse relations are optional rows and
// join LEFT; a forward foreign key joins INNER when its column is not-null,
// LEFT otherwise.
type JoinKind string

const (
	InnerJoin JoinKind = "INNER JOIN"
	LeftJoin  JoinKind = "LEFT JOIN"
)

// Join is one emitted join descriptor: join Table aliased as Alias where
// Anchor.LocalColumn = Alias.JoinColumn.
type Join struct {
	Table       string
	Alias       string
	Anchor      string
	JoinColumn  string
	LocalColumn string
	Kind        JoinKind
}

// joinOn resolves a relation path against the table. Metadata is immutable
// after definition, so results are memoized per (table, path) and the cache
// only needs protection against concurrent first writes.
func (t *Table) joinOn(path []string) (joinTarget, error) {
	if len(path) == 0 {
		return joinTarget{}, &PathShapeError{Table: t.Name, Path: path, Msg: "empty relation path"}
	}

	key := strings.Join(path, ".")
	t.joinMu.RLock()
	cached, ok := t.joinCache[key]
	t.joinMu.RUnlock()
	if ok {
		return cached, nil
	}

	target, err := t.resolveJoin(path)
	if err != nil {
		return joinTarget{}, err
	}

	t.joinMu.Lock()
	t.joinCache[key] = target
	t.joinMu.Unlock()
	return target, nil
}

func (t *Table) resolveJoin(path []string) (joinTarget, error) {
	if len(path) > 1 {
		mid, err := t.joinOn(path[:len(path)-1])
		if err != nil {
			return joinTarget{}, err
		}
		return mid.table.joinOn(path[len(path)-1:])
	}

	head := path[0]
	if rel, ok := t.OneToMany[head]; ok {
		// A reverse relation encodes "table.column": rows of that table
		// whose column points back at this table's primary key.
		targetTable, targetColumn, ok := strings.Cut(rel, ".")
		if !ok {
			return joinTarget{}, &PathShapeError{
				Table: t.Name,
				Path:  path,
				Msg:   fmt.Sprintf(`reverse relation %q must be declared as "table.column"`, head),
			}
		}
		ft, ok := t.schema.Get(targetTable)
		if !ok {
			return joinTarget{}, &UnresolvedRelationError{Table: targetTable, Segment: head, Path: path}
		}
		return joinTarget{table: ft, joinColumn: targetColumn, localColumn: t.PrimaryKey}, nil
	}

	if targetTable, ok := t.ForeignKeys[head]; ok {
		ft, ok := t.schema.Get(targetTable)
		if !ok {
			return joinTarget{}, &UnresolvedRelationError{Table: targetTable, Segment: head, Path: path}
		}
		return joinTarget{table: ft, joinColumn: ft.PrimaryKey, localColumn: head}, nil
	}

	return joinTarget{}, &UnresolvedRelationError{Table: t.Name, Segment: head, Path: path}
}

// Joins emits one descriptor per relation path registered in env, in
// insertion order. Each join anchors on the alias of its parent prefix, or
// on the root table's own name for single-segment prefixes.
func (t *Table) Joins(env *Env) ([]Join, error) {
	refs := env.Refs()
	joins := make([]Join, 0, len(refs))
	for _, ref := range refs {
		prefix := ref.Prefix

		anchor := t.Name
		anchorTable := t
		if len(prefix) > 1 {
			parent := prefix[:len(prefix)-1]
			a, err := env.ref(parent)
			if err != nil {
				return nil, err
			}
			anchor = a
			mid, err := t.joinOn(parent)
			if err != nil {
				return nil, err
			}
			anchorTable = mid.table
		}

		target, err := t.joinOn(prefix)
		if err != nil {
			return nil, err
		}

		head := prefix[len(prefix)-1]
		kind := LeftJoin
		if _, reverse := anchorTable.OneToMany[head]; !reverse && anchorTable.NotNull[head] {
			kind = InnerJoin
		}

		joins = append(joins, Join{
			Table:       target.table.Name,
			Alias:       ref.Alias,
			Anchor:      anchor,
			JoinColumn:  target.joinColumn,
			LocalColumn: target.localColumn,
			Kind:        kind,
		})
	}
	return joins, nil
}

// sql renders the descriptor as a JOIN clause.
func (j Join) sql() string {
	var b strings.Builder
	b.WriteString(string(j.Kind))
	b.WriteByte(' ')
	b.WriteString(Quote(j.Table))
	b.WriteString(" AS ")
	b.WriteString(Quote(j.Alias))
	b.WriteString(" ON (")
	b.WriteString(Quote(j.Alias))
	b.WriteByte('.')
	b.WriteString(Quote(j.JoinColumn))
	b.WriteString(" = ")
	b.WriteString(Quote(j.Anchor))
	b.WriteByte('.')
	b.WriteString(Quote(j.LocalColumn))
	b.WriteByte(')')
	return b.String()
}
