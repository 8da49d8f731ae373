// Package sexpr implements the condition mini-language: parenthesized
// prefix-operator expressions over dotted column references, integer and
// string literals, and positional placeholders.
//
//	(and (= parent.name 'Roger') (> age {}))
//
// Parse turns an expression into an immutable AST; Eval renders it as an SQL
// fragment against a Scope that resolves column references and allocates
// table aliases for relation paths.
package sexpr

import (
	"iter"
	"strings"
)

// AST is a parsed condition expression. It is immutable and may be evaluated
// against any number of scopes.
type AST struct {
	Tokens []Token
}

// Eval renders the expression as an SQL fragment. Relation paths encountered
// during evaluation are registered on the scope as a side effect.
func (a *AST) Eval(s Scope) (string, error) {
	var sql strings.Builder
	for i, tok := range a.Tokens {
		if i > 0 {
			sql.WriteByte(' ')
		}
		if err := tok.eval(s, &sql); err != nil {
			return "", err
		}
	}
	return sql.String(), nil
}

// Relations yields every column reference in the expression as a path of
// segments, deduplicated in first-occurrence order. The sequence is lazy and
// can be iterated more than once.
func (a *AST) Relations() iter.Seq[[]string] {
	return func(yield func([]string) bool) {
		seen := make(map[string]bool)
		for _, tok := range a.Tokens {
			ok := tok.walk(func(t Token) bool {
				v, isVar := t.(VarToken)
				if !isVar {
					return true
				}
				key := strings.Join(v.Path, ".")
				if seen[key] {
					return true
				}
				seen[key] = true
				return yield(v.Path)
			})
			if !ok {
				return
			}
		}
	}
}

func (a *AST) String() string {
	parts := make([]string, len(a.Tokens))
	for i, tok := range a.Tokens {
		parts[i] = tok.String()
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
