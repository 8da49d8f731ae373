// Package relq compiles declared table metadata and a compact condition
// language into dialect-specific SQL text. Dotted relation paths pull in the
// joins they imply; the compiler never touches a connection.
//
// # Basic Usage
//
// Tables are declared once on a caller-owned schema:
//
//	schema := relq.NewSchema()
//	city, err := schema.Define(relq.TableDef{
//		Name: "city",
//		Columns: []relq.ColumnDef{
//			{Name: "name", Type: "varchar"},
//			{Name: "lat", Type: "float"},
//			{Name: "long", Type: "float"},
//		},
//		NaturalKey: []string{"name"},
//		OneToMany:  map[string]string{"temperatures": "temperature.city"},
//	})
//
// Statements compile against a dialect from pkg/:
//
//	stmt, err := city.Select("name", "temperatures.value").
//		Where("(> temperatures.value {})").
//		Compile(postgres.New())
//	// stmt.SQL: SELECT "city"."name", "temperatures_0"."value" FROM "city"
//	//   LEFT JOIN "temperature" AS "temperatures_0" ON (...) WHERE ...
//
// Conditions use the sexpr mini-language: parenthesized prefix-operator
// expressions over dotted column references, integer/string literals and
// `{}` placeholders bound by order of appearance.
//
// # Execution
//
// A compiled Statement is plain data: SQL text plus a positional-parameter
// contract. Running it is the caller's business, through anything that
// satisfies Executor (such as *sql.DB or *sql.Tx).
package relq
