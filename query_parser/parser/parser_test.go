package parser

import (
	"testing"

	"SharpHSQL/dberror"
	"SharpHSQL/types"

	"github.com/cockroachdb/errors"
)

// TestParse_InvalidSQL_ReturnsError ensures invalid SQL returns an error instead of panicking.
func TestParse_InvalidSQL_ReturnsError(t *testing.T) {
	tests := []struct {
		name string
		sql  string
	}{
		{"missing FROM", "SELECT * students"},
		{"INSERT missing VALUES", "INSERT INTO students ('S001', 'Alice')"},
		{"INSERT missing parens", "INSERT INTO students VALUES 'S001', 'Alice'"},
		{"CREATE TABLE missing paren", "CREATE TABLE students id int"},
		{"WHERE without value", "DELETE FROM students WHERE id"},
		{"unterminated string", "INSERT INTO t VALUES('abc)"},
		{"unknown statement", "UPDATE t SET a=1"},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stmt, err := Parse(tt.sql)
			if err == nil {
				t.Fatalf("Parse(%q) expected error, got stmt %#v", tt.sql, stmt)
			}
			if !errors.Is(err, dberror.ErrInvalid) {
				t.Errorf("Parse(%q) error not marked invalid: %v", tt.sql, err)
			}
		})
	}
}

// TestParse_Kinds checks that every statement form the engine writes parses
// to the expected kind, in any letter case.
func TestParse_Kinds(t *testing.T) {
	tests := []struct {
		sql  string
		kind string
	}{
		{"CREATE CACHED TABLE T(ID INTEGER NOT NULL,NAME VARCHAR,PRIMARY KEY(ID))", "CREATE TABLE"},
		{"create memory table t (a int primary key, b varchar(20) null)", "CREATE TABLE"},
		{"CREATE UNIQUE INDEX IDX_NAME ON T(NAME)", "CREATE INDEX"},
		{"DROP TABLE T IF EXISTS", "DROP TABLE"},
		{"INSERT INTO T VALUES(1,'it''s',NULL,-2.5,TRUE)", "INSERT"},
		{"DELETE FROM T WHERE ID=1 AND NAME IS NULL", "DELETE"},
		{"SELECT * FROM T WHERE ID >= 3", "SELECT"},
		{"select id, name from t", "SELECT"},
		{"SET AUTOCOMMIT FALSE", "SET"},
		{"SET WRITE_DELAY TRUE", "SET"},
		{"SET TABLE T INDEX '4 120 7'", "SET"},
		{"COMMIT", "COMMIT"},
		{"commit work;", "COMMIT"},
		{"ROLLBACK", "ROLLBACK"},
		{"CHECKPOINT", "CHECKPOINT"},
		{"SHUTDOWN COMPACT", "SHUTDOWN"},
	}
	for _, tt := range tests {
		stmt, err := Parse(tt.sql)
		if err != nil {
			t.Errorf("Parse(%q) unexpected error: %v", tt.sql, err)
			continue
		}
		if stmt.Kind() != tt.kind {
			t.Errorf("Kind mismatch for %q: expected %s, got %s", tt.sql, tt.kind, stmt.Kind())
		}
	}
}

// TestCreateTableSchema checks column types, nullability and a table level
// primary key.
func TestCreateTableSchema(t *testing.T) {
	stmt, err := Parse("CREATE CACHED TABLE Person(Id BIGINT, Name VARCHAR(40) NOT NULL, Score DOUBLE, PRIMARY KEY(Id))")
	if err != nil {
		t.Fatalf("Failed to parse: %v", err)
	}
	schema, err := stmt.Create.Table.Schema()
	if err != nil {
		t.Fatalf("Failed to build schema: %v", err)
	}
	if !schema.Cached || schema.TableName != "Person" {
		t.Errorf("Table mismatch: got %+v", schema)
	}
	want := []types.ColumnDef{
		{Name: "Id", Type: types.TypeBigInt, PrimaryKey: true},
		{Name: "Name", Type: types.TypeVarchar},
		{Name: "Score", Type: types.TypeDouble, Nullable: true},
	}
	if len(schema.Columns) != len(want) {
		t.Fatalf("Column count mismatch: expected %d, got %d", len(want), len(schema.Columns))
	}
	for i, c := range want {
		if schema.Columns[i] != c {
			t.Errorf("Column %d mismatch: expected %+v, got %+v", i, c, schema.Columns[i])
		}
	}

	stmt, err = Parse("CREATE TABLE T(A INTEGER, A VARCHAR)")
	if err != nil {
		t.Fatalf("Failed to parse: %v", err)
	}
	if _, err := stmt.Create.Table.Schema(); !errors.Is(err, dberror.ErrInvalid) {
		t.Errorf("Expected duplicate column to be invalid, got %v", err)
	}
}

// TestInsertRow checks literal conversion, string escapes and column lists.
func TestInsertRow(t *testing.T) {
	schema := types.TableSchema{TableName: "T", Columns: []types.ColumnDef{
		{Name: "ID", Type: types.TypeInteger},
		{Name: "NAME", Type: types.TypeVarchar, Nullable: true},
		{Name: "OK", Type: types.TypeBoolean, Nullable: true},
	}}

	stmt, err := Parse(`INSERT INTO T VALUES(7,'a''b\nc',TRUE)`)
	if err != nil {
		t.Fatalf("Failed to parse: %v", err)
	}
	row, err := stmt.Insert.Row(&schema)
	if err != nil {
		t.Fatalf("Failed to build row: %v", err)
	}
	if row[0] != int32(7) || row[1] != "a'b\nc" || row[2] != true {
		t.Errorf("Row mismatch: got %#v", row)
	}

	stmt, err = Parse("INSERT INTO T (OK, ID) VALUES (false, 3)")
	if err != nil {
		t.Fatalf("Failed to parse: %v", err)
	}
	row, err = stmt.Insert.Row(&schema)
	if err != nil {
		t.Fatalf("Failed to build row: %v", err)
	}
	if row[0] != int32(3) || row[1] != nil || row[2] != false {
		t.Errorf("Row mismatch: got %#v", row)
	}
}

// TestLiteralRoundTrip checks that every rendered literal parses back to
// the same value.
func TestLiteralRoundTrip(t *testing.T) {
	values := []struct {
		v   any
		typ types.ColumnType
	}{
		{int32(-5), types.TypeInteger},
		{int64(1) << 40, types.TypeBigInt},
		{float64(3), types.TypeDouble},
		{1.25e-7, types.TypeDouble},
		{"tab\there\\ 'quoted'\r\n", types.TypeVarchar},
		{true, types.TypeBoolean},
		{nil, types.TypeVarchar},
	}
	for _, tt := range values {
		sql := "INSERT INTO T VALUES(" + types.Literal(tt.v) + ")"
		stmt, err := Parse(sql)
		if err != nil {
			t.Fatalf("Failed to parse %q: %v", sql, err)
		}
		lit, err := stmt.Insert.Values[0].Literal()
		if err != nil {
			t.Fatalf("Failed to read literal of %q: %v", sql, err)
		}
		got, err := types.Convert(lit, tt.typ)
		if err != nil {
			t.Fatalf("Failed to convert %v: %v", lit, err)
		}
		if got != tt.v {
			t.Errorf("Literal mismatch: expected %#v, got %#v", tt.v, got)
		}
	}
}

// TestFilters checks condition resolution and matching.
func TestFilters(t *testing.T) {
	schema := types.TableSchema{TableName: "T", Columns: []types.ColumnDef{
		{Name: "ID", Type: types.TypeInteger},
		{Name: "NAME", Type: types.TypeVarchar, Nullable: true},
	}}
	stmt, err := Parse("SELECT * FROM T WHERE id > 2 AND name IS NOT NULL")
	if err != nil {
		t.Fatalf("Failed to parse: %v", err)
	}
	filters, err := Filters(stmt.Select.Where, &schema)
	if err != nil {
		t.Fatalf("Failed to resolve filters: %v", err)
	}
	match := func(data []any) bool {
		for _, f := range filters {
			if !f.Match(data, schema.Columns[f.Column].Type) {
				return false
			}
		}
		return true
	}
	if !match([]any{int32(3), "x"}) {
		t.Errorf("Expected (3,'x') to match")
	}
	if match([]any{int32(2), "x"}) || match([]any{int32(5), nil}) {
		t.Errorf("Expected (2,'x') and (5,NULL) not to match")
	}

	stmt, _ = Parse("SELECT * FROM T WHERE MISSING = 1")
	if _, err := Filters(stmt.Select.Where, &schema); !errors.Is(err, dberror.ErrNotFound) {
		t.Errorf("Expected unknown column to be not found, got %v", err)
	}
}
