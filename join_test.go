package relq

import (
	"errors"
	"reflect"
	"sync"
	"testing"
)

func TestJoinOn(t *testing.T) {
	s := testSchema(t)
	person, _ := s.Get("person")
	city, _ := s.Get("city")
	temperature, _ := s.Get("temperature")

	t.Run("foreign key", func(t *testing.T) {
		target, err := temperature.joinOn([]string{"city"})
		if err != nil {
			t.Fatalf("joinOn() error = %v", err)
		}
		if target.table != city || target.joinColumn != "id" || target.localColumn != "city" {
			t.Errorf("joinOn() = {%s %s %s}, want {city id city}",
				target.table.Name, target.joinColumn, target.localColumn)
		}
	})

	t.Run("reverse relation", func(t *testing.T) {
		target, err := city.joinOn([]string{"temperatures"})
		if err != nil {
			t.Fatalf("joinOn() error = %v", err)
		}
		if target.table != temperature || target.joinColumn != "city" || target.localColumn != "id" {
			t.Errorf("joinOn() = {%s %s %s}, want {temperature city id}",
				target.table.Name, target.joinColumn, target.localColumn)
		}
	})

	t.Run("chained path", func(t *testing.T) {
		target, err := person.joinOn([]string{"parent", "parent"})
		if err != nil {
			t.Fatalf("joinOn() error = %v", err)
		}
		if target.table != person || target.joinColumn != "id" || target.localColumn != "parent" {
			t.Errorf("joinOn() = {%s %s %s}, want {person id parent}",
				target.table.Name, target.joinColumn, target.localColumn)
		}
	})

	t.Run("crosses tables", func(t *testing.T) {
		target, err := temperature.joinOn([]string{"city", "temperatures"})
		if err != nil {
			t.Fatalf("joinOn() error = %v", err)
		}
		if target.table != temperature || target.joinColumn != "city" || target.localColumn != "id" {
			t.Errorf("joinOn() = {%s %s %s}, want {temperature city id}",
				target.table.Name, target.joinColumn, target.localColumn)
		}
	})

	t.Run("unknown segment", func(t *testing.T) {
		_, err := person.joinOn([]string{"sibling"})
		var uerr *UnresolvedRelationError
		if !errors.As(err, &uerr) {
			t.Fatalf("joinOn() error = %v, want *UnresolvedRelationError", err)
		}
		if uerr.Table != "person" || uerr.Segment != "sibling" {
			t.Errorf("error = %v, want table person, segment sibling", uerr)
		}
	})

	t.Run("unknown target table", func(t *testing.T) {
		s := NewSchema()
		orphan := mustDefine(t, s, TableDef{
			Name:        "orphan",
			Columns:     []ColumnDef{{Name: "owner", Type: "bigint"}},
			ForeignKeys: map[string]string{"owner": "missing"},
		})
		_, err := orphan.joinOn([]string{"owner"})
		var uerr *UnresolvedRelationError
		if !errors.As(err, &uerr) {
			t.Errorf("joinOn() error = %v, want *UnresolvedRelationError", err)
		}
	})

	t.Run("malformed reverse relation", func(t *testing.T) {
		s := NewSchema()
		bad := mustDefine(t, s, TableDef{
			Name:      "bad",
			Columns:   []ColumnDef{{Name: "name", Type: "varchar"}},
			OneToMany: map[string]string{"things": "nodot"},
		})
		_, err := bad.joinOn([]string{"things"})
		var perr *PathShapeError
		if !errors.As(err, &perr) {
			t.Errorf("joinOn() error = %v, want *PathShapeError", err)
		}
	})

	t.Run("empty path", func(t *testing.T) {
		_, err := person.joinOn(nil)
		var perr *PathShapeError
		if !errors.As(err, &perr) {
			t.Errorf("joinOn(nil) error = %v, want *PathShapeError", err)
		}
	})
}

func TestJoinOnMemoized(t *testing.T) {
	s := testSchema(t)
	person, _ := s.Get("person")

	first, err := person.joinOn([]string{"parent", "parent"})
	if err != nil {
		t.Fatalf("joinOn() error = %v", err)
	}
	second, err := person.joinOn([]string{"parent", "parent"})
	if err != nil {
		t.Fatalf("joinOn() error = %v", err)
	}
	if first != second {
		t.Errorf("repeated resolutions differ: %v vs %v", first, second)
	}
}

func TestJoinOnConcurrent(t *testing.T) {
	s := testSchema(t)
	person, _ := s.Get("person")

	var wg sync.WaitGroup
	results := make([]joinTarget, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			target, err := person.joinOn([]string{"parent", "parent", "parent"})
			if err != nil {
				t.Errorf("joinOn() error = %v", err)
				return
			}
			results[i] = target
		}(i)
	}
	wg.Wait()
	for i := 1; i < len(results); i++ {
		if results[i] != results[0] {
			t.Fatalf("resolution %d = %v, differs from %v", i, results[i], results[0])
		}
	}
}

func TestJoins(t *testing.T) {
	s := testSchema(t)
	person, _ := s.Get("person")
	city, _ := s.Get("city")
	temperature, _ := s.Get("temperature")

	t.Run("anchors chain through aliases", func(t *testing.T) {
		env := NewEnv(person)
		evalOn(t, env, "(= parent.parent.name 'George')")
		joins, err := person.Joins(env)
		if err != nil {
			t.Fatalf("Joins() error = %v", err)
		}
		want := []Join{
			{Table: "person", Alias: "parent_0", Anchor: "person", JoinColumn: "id", LocalColumn: "parent", Kind: LeftJoin},
			{Table: "person", Alias: "parent_1", Anchor: "parent_0", JoinColumn: "id", LocalColumn: "parent", Kind: LeftJoin},
		}
		if !reflect.DeepEqual(joins, want) {
			t.Errorf("Joins() = %v, want %v", joins, want)
		}
	})

	t.Run("not-null foreign key joins inner", func(t *testing.T) {
		env := NewEnv(temperature)
		evalOn(t, env, "(= city.name 'Brussels')")
		joins, err := temperature.Joins(env)
		if err != nil {
			t.Fatalf("Joins() error = %v", err)
		}
		if len(joins) != 1 || joins[0].Kind != InnerJoin {
			t.Errorf("Joins() = %v, want single INNER JOIN", joins)
		}
	})

	t.Run("reverse relation joins left", func(t *testing.T) {
		env := NewEnv(city)
		evalOn(t, env, "(> temperatures.value 20)")
		joins, err := city.Joins(env)
		if err != nil {
			t.Fatalf("Joins() error = %v", err)
		}
		want := Join{Table: "temperature", Alias: "temperatures_0", Anchor: "city",
			JoinColumn: "city", LocalColumn: "id", Kind: LeftJoin}
		if len(joins) != 1 || joins[0] != want {
			t.Errorf("Joins() = %v, want [%v]", joins, want)
		}
	})

	t.Run("no refs no joins", func(t *testing.T) {
		env := NewEnv(person)
		evalOn(t, env, "(= name 'Roger')")
		joins, err := person.Joins(env)
		if err != nil {
			t.Fatalf("Joins() error = %v", err)
		}
		if len(joins) != 0 {
			t.Errorf("Joins() = %v, want none", joins)
		}
	})
}

func TestJoinSQL(t *testing.T) {
	j := Join{Table: "person", Alias: "parent_0", Anchor: "person",
		JoinColumn: "id", LocalColumn: "parent", Kind: LeftJoin}
	want := `LEFT JOIN "person" AS "parent_0" ON ("parent_0"."id" = "person"."parent")`
	if got := j.sql(); got != want {
		t.Errorf("sql() = %s, want %s", got, want)
	}
}
