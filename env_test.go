package relq

import (
	"errors"
	"reflect"
	"testing"

	"github.com/zoobzio/relq/sexpr"
)

func spamTable(t *testing.T) *Table {
	t.Helper()
	s := NewSchema()
	return mustDefine(t, s, TableDef{
		Name: "spam",
		Columns: []ColumnDef{
			{Name: "a", Type: "bool"},
			{Name: "b", Type: "int"},
		},
	})
}

func evalOn(t *testing.T, env *Env, expr string) string {
	t.Helper()
	ast, err := sexpr.Parse(expr)
	if err != nil {
		t.Fatalf("Parse(%q) error = %v", expr, err)
	}
	got, err := ast.Eval(env)
	if err != nil {
		t.Fatalf("Eval(%q) error = %v", expr, err)
	}
	return got
}

func TestEnvResolve(t *testing.T) {
	cases := []struct {
		expr string
		want string
	}{
		{"a", `"spam"."a"`},
		{"(= a 1)", `"spam"."a" = 1`},
		{"(= a (= 1 1))", `"spam"."a" = (1 = 1)`},
		{"(and (= a 1) (= b {}))", `("spam"."a" = 1) AND ("spam"."b" = ?)`},
	}
	for _, tc := range cases {
		t.Run(tc.expr, func(t *testing.T) {
			env := NewEnv(spamTable(t))
			if got := evalOn(t, env, tc.expr); got != tc.want {
				t.Errorf("eval = %s, want %s", got, tc.want)
			}
		})
	}
}

func TestEnvAliases(t *testing.T) {
	s := testSchema(t)
	person, _ := s.Get("person")

	t.Run("one alias per prefix", func(t *testing.T) {
		env := NewEnv(person)
		got := evalOn(t, env, "(and (= parent.name 'Roger') (= parent.parent.name 'George'))")
		want := `("parent_0"."name" = 'Roger') AND ("parent_1"."name" = 'George')`
		if got != want {
			t.Errorf("eval = %s, want %s", got, want)
		}
		refs := env.Refs()
		wantRefs := []Ref{
			{Prefix: []string{"parent"}, Alias: "parent_0"},
			{Prefix: []string{"parent", "parent"}, Alias: "parent_1"},
		}
		if !reflect.DeepEqual(refs, wantRefs) {
			t.Errorf("Refs() = %v, want %v", refs, wantRefs)
		}
	})

	t.Run("alias reused across conditions", func(t *testing.T) {
		env := NewEnv(person)
		evalOn(t, env, "(= parent.name 'Roger')")
		evalOn(t, env, "(= parent.id 1)")
		refs := env.Refs()
		if len(refs) != 1 || refs[0].Alias != "parent_0" {
			t.Errorf("Refs() = %v, want single parent_0", refs)
		}
	})

	t.Run("ancestors registered first", func(t *testing.T) {
		env := NewEnv(person)
		got := evalOn(t, env, "(= parent.parent.name 'George')")
		want := `"parent_1"."name" = 'George'`
		if got != want {
			t.Errorf("eval = %s, want %s", got, want)
		}
		refs := env.Refs()
		if len(refs) != 2 || refs[0].Alias != "parent_0" || refs[1].Alias != "parent_1" {
			t.Errorf("Refs() = %v, want parent_0 then parent_1", refs)
		}
	})
}

func TestEnvResolveErrors(t *testing.T) {
	s := testSchema(t)
	person, _ := s.Get("person")

	t.Run("empty path", func(t *testing.T) {
		env := NewEnv(person)
		_, err := env.Resolve(nil)
		var perr *PathShapeError
		if !errors.As(err, &perr) {
			t.Errorf("Resolve(nil) error = %v, want *PathShapeError", err)
		}
	})

	t.Run("unresolved relation fails eagerly", func(t *testing.T) {
		env := NewEnv(person)
		ast, err := sexpr.Parse("(= sibling.name 'Roger')")
		if err != nil {
			t.Fatalf("Parse() error = %v", err)
		}
		_, err = ast.Eval(env)
		var uerr *UnresolvedRelationError
		if !errors.As(err, &uerr) {
			t.Fatalf("Eval() error = %v, want *UnresolvedRelationError", err)
		}
		if uerr.Segment != "sibling" {
			t.Errorf("Segment = %q, want %q", uerr.Segment, "sibling")
		}
		if len(env.Refs()) != 0 {
			t.Errorf("failed resolution registered refs: %v", env.Refs())
		}
	})
}

func TestEnvPlaceholders(t *testing.T) {
	s := testSchema(t)
	person, _ := s.Get("person")

	t.Run("counter shared across environments", func(t *testing.T) {
		counter := 0
		marker := func(n int) string { return "?" }
		first := newEnv(person, marker, &counter)
		second := newEnv(person, marker, &counter)
		first.Placeholder()
		first.Placeholder()
		second.Placeholder()
		if got := second.Params(); got != 3 {
			t.Errorf("Params() = %d, want 3", got)
		}
	})

	t.Run("marker receives ordinal", func(t *testing.T) {
		counter := 0
		var seen []int
		env := newEnv(person, func(n int) string {
			seen = append(seen, n)
			return "?"
		}, &counter)
		env.Placeholder()
		env.Placeholder()
		if !reflect.DeepEqual(seen, []int{1, 2}) {
			t.Errorf("marker ordinals = %v, want [1 2]", seen)
		}
	})
}
