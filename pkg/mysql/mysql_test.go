package mysql

import (
	"testing"

	"github.com/zoobzio/relq"
)

func TestNew(t *testing.T) {
	d := New()
	if d == nil {
		t.Fatal("New() returned nil")
	}
	if d.Name() != "mysql" {
		t.Errorf("Name() = %q, want %q", d.Name(), "mysql")
	}
}

func TestPlaceholder(t *testing.T) {
	d := New()
	if got := d.Placeholder(7); got != "?" {
		t.Errorf("Placeholder(7) = %q, want %q", got, "?")
	}
}

func TestTypeName(t *testing.T) {
	d := New()
	cases := []struct {
		col  relq.Column
		want string
	}{
		{relq.Column{Name: "name", Type: relq.TypeText}, "TEXT"},
		{relq.Column{Name: "n", Type: relq.TypeInt}, "INT"},
		{relq.Column{Name: "at", Type: relq.TypeTimestampTZ}, "TIMESTAMP"},
		{relq.Column{Name: "token", Type: relq.TypeUUID}, "CHAR(36)"},
		{relq.Column{Name: "tags", Type: relq.TypeText, Dims: 1}, "JSON"},
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

	update, err := d.ConflictUpdate([]string{"city", "timestamp"}, []string{"value"})
	if err != nil {
		t.Fatalf("ConflictUpdate() error = %v", err)
	}
	want := `ON DUPLICATE KEY UPDATE "value" = VALUES("value")`
	if update != want {
		t.Errorf("ConflictUpdate() = %q, want %q", update, want)
	}

	nothing, err := d.ConflictNothing([]string{"city", "timestamp"})
	if err != nil {
		t.Fatalf("ConflictNothing() error = %v", err)
	}
	if nothing != `ON DUPLICATE KEY UPDATE "city" = "city"` {
		t.Errorf("ConflictNothing() = %q", nothing)
	}
}
