package relq

import (
	"fmt"
	"strings"
)

// SchemaError reports an invalid table declaration: an unrecognized column
// type, a missing column, or a foreign key that collapses the natural key.
// It is surfaced at definition time and never recovered.
type SchemaError struct {
	Table string
	Msg   string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("table %q: %s", e.Table, e.Msg)
}

// UnresolvedRelationError reports a relation-path segment that matches
// neither a foreign key nor a reverse relation on the table it is applied to.
type UnresolvedRelationError struct {
	Table   string
	Segment string
	Path    []string
}

func (e *UnresolvedRelationError) Error() string {
	return fmt.Sprintf("table %q has no foreign key or reverse relation %q (in path %q)",
		e.Table, e.Segment, strings.Join(e.Path, "."))
}

// PathShapeError reports a relation path the resolver cannot handle, such as
// an empty path or a malformed reverse-relation declaration.
type PathShapeError struct {
	Table string
	Path  []string
	Msg   string
}

func (e *PathShapeError) Error() string {
	return fmt.Sprintf("table %q, path %q: %s", e.Table, strings.Join(e.Path, "."), e.Msg)
}
