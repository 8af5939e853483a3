package types

import (
	"strings"

	"SharpHSQL/dberror"
)

type ColumnDef struct {
	Name       string
	Type       ColumnType
	Nullable   bool
	PrimaryKey bool
}

type IndexDef struct {
	Name    string
	Columns []int
	Unique  bool
}

// TableSchema is the definition of a table as written to the script.
// Cached tables keep their rows in the data file, memory tables only in the
// script.
type TableSchema struct {
	TableName string
	Columns   []ColumnDef
	Cached    bool
}

// ColumnIndex returns the position of the named column or -1.
func (s *TableSchema) ColumnIndex(name string) int {
	for i, c := range s.Columns {
		if strings.EqualFold(c.Name, name) {
			return i
		}
	}
	return -1
}

// MustColumns resolves column names to positions.
func (s *TableSchema) MustColumns(names []string) ([]int, error) {
	cols := make([]int, len(names))
	for i, n := range names {
		c := s.ColumnIndex(n)
		if c < 0 {
			return nil, dberror.NotFound("column", s.TableName+"."+n)
		}
		cols[i] = c
	}
	return cols, nil
}

// PrimaryKey returns the positions of the declared primary key columns.
func (s *TableSchema) PrimaryKey() []int {
	var pk []int
	for i, c := range s.Columns {
		if c.PrimaryKey {
			pk = append(pk, i)
		}
	}
	return pk
}

func (s *TableSchema) Types() []ColumnType {
	t := make([]ColumnType, len(s.Columns))
	for i, c := range s.Columns {
		t[i] = c.Type
	}
	return t
}
