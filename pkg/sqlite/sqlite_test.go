package sqlite

import (
	"testing"

	"github.com/zoobzio/relq"
)

func TestNew(t *testing.T) {
	d := New()
	if d == nil {
		t.Fatal("New() returned nil")
	}
	if d.Name() != "sqlite" {
		t.Errorf("Name() = %q, want %q", d.Name(), "sqlite")
	}
}

func TestPlaceholder(t *testing.T) {
	d := New()
	if got := d.Placeholder(3); got != "?" {
		t.Errorf("Placeholder(3) = %q, want %q", got, "?")
	}
}

func TestTypeName(t *testing.T) {
	d := New()
	cases := []struct {
		col  relq.Column
		want string
	}{
		{relq.Column{Name: "name", Type: relq.TypeText}, "TEXT"},
		{relq.Column{Name: "n", Type: relq.TypeBigInt}, "INTEGER"},
		{relq.Column{Name: "at", Type: relq.TypeTimestamp}, "DATETIME"},
		{relq.Column{Name: "token", Type: relq.TypeUUID}, "TEXT"},
		{relq.Column{Name: "scores", Type: relq.TypeFloat, Dims: 1}, "JSON"},
	}
	for _, tc := range cases {
		got, err := d.TypeName(tc.col)
		if err != nil {
			t.Fatalf("TypeName(%s) error = %v", tc.col.Name, err)
		}
		if got != tc.want {
			t.Errorf("TypeName(%s) = %q, want %q", tc.col.Name, got, tc.want)
		}
	}
}

func TestConflictClauses(t *testing.T) {
	d := New()

	update, err := d.ConflictUpdate([]string{"name"}, []string{"population", "region"})
	if err != nil {
		t.Fatalf("ConflictUpdate() error = %v", err)
	}
	want := `ON CONFLICT ("name") DO UPDATE SET "population" = EXCLUDED."population", "region" = EXCLUDED."region"`
	if update != want {
		t.Errorf("ConflictUpdate() = %q, want %q", update, want)
	}

	nothing, err := d.ConflictNothing([]string{"name"})
	if err != nil {
		t.Fatalf("ConflictNothing() error = %v", err)
	}
	if nothing != `ON CONFLICT ("name") DO NOTHING` {
		t.Errorf("ConflictNothing() = %q", nothing)
	}
}
