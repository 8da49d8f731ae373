package sexpr

import (
	"fmt"
	"strconv"
	"strings"
)

// Scope provides the table context an AST is evaluated against. It is
// implemented by relq.Env; tests can supply their own.
type Scope interface {
	// Resolve renders a column reference. A single-segment path is a bare
	// column on the root table; longer paths carry a relation prefix that
	// resolves to a table alias.
	Resolve(path []string) (string, error)

	// Placeholder returns the next positional parameter marker.
	Placeholder() string
}

// Token is one node of a parsed condition expression.
type Token interface {
	// eval writes the SQL rendering of the token.
	eval(s Scope, sql *strings.Builder) error

	// walk visits the token and its children in source order. It returns
	// false when the visitor stopped early.
	walk(visit func(Token) bool) bool

	String() string
}

// IntToken is an integer literal.
type IntToken struct {
	Value int64
}

func (t IntToken) eval(_ Scope, sql *strings.Builder) error {
	sql.WriteString(strconv.FormatInt(t.Value, 10))
	return nil
}

func (t IntToken) walk(visit func(Token) bool) bool { return visit(t) }

func (t IntToken) String() string { return fmt.Sprintf("<IntToken %d>", t.Value) }

// StrToken is a single-quoted string literal. Value holds the unescaped text.
type StrToken struct {
	Value string
}

func (t StrToken) eval(_ Scope, sql *strings.Builder) error {
	sql.WriteByte('\'')
	sql.WriteString(strings.ReplaceAll(t.Value, "'", "''"))
	sql.WriteByte('\'')
	return nil
}

func (t StrToken) walk(visit func(Token) bool) bool { return visit(t) }

func (t StrToken) String() string { return fmt.Sprintf("<StrToken %s>", t.Value) }

// ParamToken is a `{}` placeholder whose value is bound at execution time,
// strictly by order of appearance in the compiled text.
type ParamToken struct{}

func (t ParamToken) eval(s Scope, sql *strings.Builder) error {
	sql.WriteString(s.Placeholder())
	return nil
}

func (t ParamToken) walk(visit func(Token) bool) bool { return visit(t) }

func (t ParamToken) String() string { return "<ParamToken>" }

// NullToken is the `null` keyword.
type NullToken struct{}

func (t NullToken) eval(_ Scope, sql *strings.Builder) error {
	sql.WriteString("NULL")
	return nil
}

func (t NullToken) walk(visit func(Token) bool) bool { return visit(t) }

func (t NullToken) String() string { return "<NullToken>" }

// VarToken is a dotted column reference. The last segment is always a column
// name; any preceding segments form a relation path traversed via foreign
// keys or reverse relations.
type VarToken struct {
	Path []string
}

// Relation returns the relation prefix, i.e. the path without the final
// column segment.
func (t VarToken) Relation() []string { return t.Path[:len(t.Path)-1] }

// Column returns the final column segment.
func (t VarToken) Column() string { return t.Path[len(t.Path)-1] }

func (t VarToken) eval(s Scope, sql *strings.Builder) error {
	ref, err := s.Resolve(t.Path)
	if err != nil {
		return err
	}
	sql.WriteString(ref)
	return nil
}

func (t VarToken) walk(visit func(Token) bool) bool { return visit(t) }

func (t VarToken) String() string {
	return fmt.Sprintf("<VarToken %s>", strings.Join(t.Path, "."))
}

// BuiltinToken is an operator node with a child expression per argument.
type BuiltinToken struct {
	Op   string
	Args []Token
}

func (t BuiltinToken) eval(s Scope, sql *strings.Builder) error {
	return builtins[t.Op].render(t, s, sql)
}

func (t BuiltinToken) walk(visit func(Token) bool) bool {
	if !visit(t) {
		return false
	}
	for _, arg := range t.Args {
		if !arg.walk(visit) {
			return false
		}
	}
	return true
}

func (t BuiltinToken) String() string { return fmt.Sprintf("<BuiltinToken %s>", t.Op) }

// evalArg renders a child expression, wrapping nested operator nodes in
// parentheses. Parenthesization from the source expression is authoritative;
// no precedence is inferred.
func evalArg(arg Token, s Scope, sql *strings.Builder) error {
	if _, nested := arg.(BuiltinToken); nested {
		sql.WriteByte('(')
		if err := arg.eval(s, sql); err != nil {
			return err
		}
		sql.WriteByte(')')
		return nil
	}
	return arg.eval(s, sql)
}

// builtin describes the fixed arity and rendering rule of one operator.
type builtin struct {
	render func(t BuiltinToken, s Scope, sql *strings.Builder) error
	// arity: exact argument count, or -1 with min for variadic operators.
	arity int
	min   int
}

func infix(sqlOp string) builtin {
	return builtin{
		arity: 2,
		render: func(t BuiltinToken, s Scope, sql *strings.Builder) error {
			if err := evalArg(t.Args[0], s, sql); err != nil {
				return err
			}
			sql.WriteString(" " + sqlOp + " ")
			return evalArg(t.Args[1], s, sql)
		},
	}
}

func naryInfix(sqlOp string) builtin {
	return builtin{
		arity: -1,
		min:   1,
		render: func(t BuiltinToken, s Scope, sql *strings.Builder) error {
			for i, arg := range t.Args {
				if i > 0 {
					sql.WriteString(" " + sqlOp + " ")
				}
				if err := evalArg(arg, s, sql); err != nil {
					return err
				}
			}
			return nil
		},
	}
}

func prefix(sqlOp string) builtin {
	return builtin{
		arity: 1,
		render: func(t BuiltinToken, s Scope, sql *strings.Builder) error {
			sql.WriteString(sqlOp + " ")
			return evalArg(t.Args[0], s, sql)
		},
	}
}

// listOp renders `lhs OP (a, b, ...)`, used by `in`.
func listOp(sqlOp string) builtin {
	return builtin{
		arity: -1,
		min:   2,
		render: func(t BuiltinToken, s Scope, sql *strings.Builder) error {
			if err := evalArg(t.Args[0], s, sql); err != nil {
				return err
			}
			sql.WriteString(" " + sqlOp + " (")
			for i, arg := range t.Args[1:] {
				if i > 0 {
					sql.WriteString(", ")
				}
				if err := evalArg(arg, s, sql); err != nil {
					return err
				}
			}
			sql.WriteByte(')')
			return nil
		},
	}
}

// builtins is the closed operator set of the condition language.
var builtins = map[string]builtin{
	"=":     infix("="),
	"!=":    infix("!="),
	"<":     infix("<"),
	"<=":    infix("<="),
	">":     infix(">"),
	">=":    infix(">="),
	"like":  infix("LIKE"),
	"ilike": infix("ILIKE"),
	"is":    infix("IS"),
	"and":   naryInfix("AND"),
	"or":    naryInfix("OR"),
	"not":   prefix("NOT"),
	"in":    listOp("IN"),
}
