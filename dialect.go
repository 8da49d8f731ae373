package relq

// Dialect is the per-engine configuration consumed by statement compilation:
// the positional parameter marker, the native type map, and the conflict
// clause used by upserts. Implementations live under pkg/.
type Dialect interface {
	Name() string

	// Placeholder renders the n-th positional parameter marker (1-based).
	Placeholder(n int) string

	// TypeName maps a column to the engine's native type keyword. Engines
	// without native array support return a JSON-encoded fallback for
	// array-typed columns.
	TypeName(c Column) (string, error)

	// ConflictUpdate renders the upsert clause that updates the given
	// columns when a row with the same key already exists.
	ConflictUpdate(key, update []string) (string, error)

	// ConflictNothing renders the upsert clause that ignores an existing
	// row with the same key.
	ConflictNothing(key []string) (string, error)
}

// Quote renders an SQL identifier. Double quotes on every dialect; the
// MySQL/MariaDB dialect expects ANSI_QUOTES mode.
func Quote(ident string) string {
	return `"` + ident + `"`
}
