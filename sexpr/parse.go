package sexpr

import (
	"fmt"
	"strconv"
	"strings"
)

// ParseError reports malformed condition text. Parsing produces no partial
// result.
type ParseError struct {
	Msg string
	Pos int
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse error at offset %d: %s", e.Pos, e.Msg)
}

// Parse compiles a condition expression into an AST. It fails with a
// *ParseError when parentheses are unbalanced, an operator is unknown, or a
// token is unrecognized.
func Parse(expr string) (*AST, error) {
	lexemes, err := scan(expr)
	if err != nil {
		return nil, err
	}
	p := &parser{lexemes: lexemes}
	tok, err := p.parseExpr()
	if err != nil {
		return nil, err
	}
	if next, ok := p.peek(); ok {
		return nil, &ParseError{Pos: next.pos, Msg: fmt.Sprintf("unexpected %q after expression", next.text)}
	}
	return &AST{Tokens: []Token{tok}}, nil
}

type lexKind int

const (
	lexLParen lexKind = iota
	lexRParen
	lexWord
	lexString
)

type lexeme struct {
	text string
	pos  int
	kind lexKind
}

// scan splits the source into parens, quoted strings and words. Strings are
// single-quoted; an embedded quote is escaped by doubling it.
func scan(src string) ([]lexeme, error) {
	var out []lexeme
	i := 0
	for i < len(src) {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++
		case c == '(':
			out = append(out, lexeme{kind: lexLParen, pos: i, text: "("})
			i++
		case c == ')':
			out = append(out, lexeme{kind: lexRParen, pos: i, text: ")"})
			i++
		case c == '\'':
			var val strings.Builder
			start := i
			i++
			for {
				if i >= len(src) {
					return nil, &ParseError{Pos: start, Msg: "unterminated string literal"}
				}
				if src[i] == '\'' {
					if i+1 < len(src) && src[i+1] == '\'' {
						val.WriteByte('\'')
						i += 2
						continue
					}
					i++
					break
				}
				val.WriteByte(src[i])
				i++
			}
			out = append(out, lexeme{kind: lexString, pos: start, text: val.String()})
		default:
			start := i
			for i < len(src) && !strings.ContainsRune(" \t\n\r()'", rune(src[i])) {
				i++
			}
			out = append(out, lexeme{kind: lexWord, pos: start, text: src[start:i]})
		}
	}
	return out, nil
}

type parser struct {
	lexemes []lexeme
	next    int
}

func (p *parser) peek() (lexeme, bool) {
	if p.next >= len(p.lexemes) {
		return lexeme{}, false
	}
	return p.lexemes[p.next], true
}

func (p *parser) parseExpr() (Token, error) {
	lx, ok := p.peek()
	if !ok {
		return nil, &ParseError{Pos: 0, Msg: "empty expression"}
	}
	p.next++

	switch lx.kind {
	case lexString:
		return StrToken{Value: lx.text}, nil
	case lexRParen:
		return nil, &ParseError{Pos: lx.pos, Msg: "unbalanced ')'"}
	case lexLParen:
		return p.parseBuiltin(lx)
	default:
		return atom(lx)
	}
}

// parseBuiltin parses `( OP expr* )` where lparen is the already-consumed
// opening parenthesis.
func (p *parser) parseBuiltin(lparen lexeme) (Token, error) {
	op, ok := p.peek()
	if !ok {
		return nil, &ParseError{Pos: lparen.pos, Msg: "unbalanced '('"}
	}
	if op.kind != lexWord {
		return nil, &ParseError{Pos: op.pos, Msg: fmt.Sprintf("expected operator, got %q", op.text)}
	}
	spec, known := builtins[op.text]
	if !known {
		return nil, &ParseError{Pos: op.pos, Msg: fmt.Sprintf("unknown operator %q", op.text)}
	}
	p.next++

	var args []Token
	for {
		lx, ok := p.peek()
		if !ok {
			return nil, &ParseError{Pos: lparen.pos, Msg: "unbalanced '('"}
		}
		if lx.kind == lexRParen {
			p.next++
			break
		}
		arg, err := p.parseExpr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
	}

	if spec.arity >= 0 && len(args) != spec.arity {
		return nil, &ParseError{
			Pos: op.pos,
			Msg: fmt.Sprintf("operator %q takes %d arguments, got %d", op.text, spec.arity, len(args)),
		}
	}
	if spec.arity < 0 && len(args) < spec.min {
		return nil, &ParseError{
			Pos: op.pos,
			Msg: fmt.Sprintf("operator %q takes at least %d arguments, got %d", op.text, spec.min, len(args)),
		}
	}
	return BuiltinToken{Op: op.text, Args: args}, nil
}

// atom classifies a bare word: placeholder, integer, null keyword or dotted
// column reference.
func atom(lx lexeme) (Token, error) {
	switch {
	case lx.text == "{}":
		return ParamToken{}, nil
	case lx.text == "null":
		return NullToken{}, nil
	case isInteger(lx.text):
		v, err := strconv.ParseInt(lx.text, 10, 64)
		if err != nil {
			return nil, &ParseError{Pos: lx.pos, Msg: fmt.Sprintf("integer out of range: %s", lx.text)}
		}
		return IntToken{Value: v}, nil
	default:
		path := strings.Split(lx.text, ".")
		for _, seg := range path {
			if !isIdentifier(seg) {
				return nil, &ParseError{Pos: lx.pos, Msg: fmt.Sprintf("unrecognized token %q", lx.text)}
			}
		}
		return VarToken{Path: path}, nil
	}
}

func isInteger(s string) bool {
	if strings.HasPrefix(s, "-") {
		s = s[1:]
	}
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func isIdentifier(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		c := s[i]
		letter := (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '_'
		if i == 0 && !letter {
			return false
		}
		if !letter && (c < '0' || c > '9') {
			return false
		}
	}
	return true
}
