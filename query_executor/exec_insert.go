package executor

import (
	"SharpHSQL/query_parser/parser"
)

func (s *Session) insert(stmt *parser.InsertStmt) (*Result, error) {
	t, err := s.db.catalog.GetTable(stmt.Table)
	if err != nil {
		return nil, err
	}
	schema := t.Schema()
	row, err := stmt.Row(&schema)
	if err != nil {
		return nil, err
	}
	if err := t.Insert(row, s); err != nil {
		return nil, err
	}
	return &Result{Updated: 1}, nil
}

// delete removes every matching row. Each row is logged on its own, by
// primary key or by value.
func (s *Session) delete(stmt *parser.DeleteStmt) (*Result, error) {
	t, err := s.db.catalog.GetTable(stmt.Table)
	if err != nil {
		return nil, err
	}
	schema := t.Schema()
	filters, err := parser.Filters(stmt.Where, &schema)
	if err != nil {
		return nil, err
	}
	rows, err := matchingRows(t, filters)
	if err != nil {
		return nil, err
	}
	for _, data := range rows {
		if err := t.Delete(data, s); err != nil {
			return nil, err
		}
	}
	return &Result{Updated: len(rows)}, nil
}
