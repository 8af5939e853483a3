package executor

import (
	"slices"

	"SharpHSQL/query_parser/parser"
	"SharpHSQL/storage_engine/access/index"
	"SharpHSQL/storage_engine/access/table"
	"SharpHSQL/types"
)

func (s *Session) selectRows(stmt *parser.SelectStmt) (*Result, error) {
	t, err := s.db.catalog.GetTable(stmt.Table)
	if err != nil {
		return nil, err
	}
	schema := t.Schema()

	var cols []int
	if stmt.All {
		for i := range schema.Columns {
			cols = append(cols, i)
		}
	} else if cols, err = schema.MustColumns(stmt.Columns); err != nil {
		return nil, err
	}
	filters, err := parser.Filters(stmt.Where, &schema)
	if err != nil {
		return nil, err
	}
	rows, err := matchingRows(t, filters)
	if err != nil {
		return nil, err
	}

	res := &Result{Columns: make([]string, len(cols)), Rows: make([][]any, 0, len(rows))}
	for i, c := range cols {
		res.Columns[i] = schema.Columns[c].Name
	}
	for _, data := range rows {
		out := make([]any, len(cols))
		for i, c := range cols {
			out[i] = data[c]
		}
		res.Rows = append(res.Rows, out)
	}
	return res, nil
}

// matchingRows returns copies of the full rows of t that pass every filter.
func matchingRows(t *table.Table, filters []parser.Filter) ([][]any, error) {
	colTypes := t.ColumnTypes()
	it, done := plan(t, filters)

	var rows [][]any
	for ; it.Valid(); it.Next() {
		data := it.Row().Data()
		if done != nil && done(data) {
			break
		}
		if matchAll(filters, data, colTypes) {
			rows = append(rows, slices.Clone(data))
		}
	}
	return rows, it.Err()
}

// plan picks where to start reading: at the first candidate of an index on
// a column compared with =, > or >=, or at the start of the primary index.
// done reports the end of the candidates, when there is one before the end
// of the index.
func plan(t *table.Table, filters []parser.Filter) (it *index.Iterator, done func([]any) bool) {
	colTypes := t.ColumnTypes()
	for _, f := range filters {
		if f.IsNull || f.Value == nil {
			continue
		}
		if f.Op != types.OpEqual && f.Op != types.OpGreater && f.Op != types.OpGreaterEqual {
			continue
		}
		idx := t.GetIndexForColumns([]int{f.Column})
		if idx == nil {
			continue
		}
		it = idx.Seek(f.Value, f.Op)
		if f.Op == types.OpEqual {
			done = func(data []any) bool {
				return types.Compare(data[f.Column], f.Value, colTypes[f.Column]) != 0
			}
		}
		return it, done
	}
	return t.PrimaryIndex().Scan(), nil
}

func matchAll(filters []parser.Filter, data []any, colTypes []types.ColumnType) bool {
	for _, f := range filters {
		if !f.Match(data, colTypes[f.Column]) {
			return false
		}
	}
	return true
}
