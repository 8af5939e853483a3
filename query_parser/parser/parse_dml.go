package parser

import (
	"strconv"
	"strings"

	"SharpHSQL/dberror"
	"SharpHSQL/types"
)

// Literal returns the Go value of v: int64 or float64 for numbers, string,
// bool, or nil for NULL. Column conversion happens later.
func (v *Value) Literal() (any, error) {
	switch {
	case v.Number != nil:
		n := *v.Number
		if strings.ContainsAny(n, ".eE") {
			f, err := strconv.ParseFloat(n, 64)
			if err != nil {
				return nil, dberror.Invalid("bad number %s", n)
			}
			return f, nil
		}
		i, err := strconv.ParseInt(n, 10, 64)
		if err != nil {
			return nil, dberror.Invalid("bad number %s", n)
		}
		return i, nil
	case v.String != nil:
		return types.Unquote(*v.String)
	case v.Bool != nil:
		return strings.EqualFold(*v.Bool, "TRUE"), nil
	}
	return nil, nil
}

// Row builds the visible column values of an INSERT for schema, converted
// to the column types. Columns missing from an explicit column list are
// NULL.
func (s *InsertStmt) Row(schema *types.TableSchema) ([]any, error) {
	positions := make([]int, len(s.Values))
	if len(s.Columns) == 0 {
		if len(s.Values) != len(schema.Columns) {
			return nil, dberror.Invalid("table %s has %d columns, got %d values", schema.TableName, len(schema.Columns), len(s.Values))
		}
		for i := range positions {
			positions[i] = i
		}
	} else {
		if len(s.Columns) != len(s.Values) {
			return nil, dberror.Invalid("%d columns but %d values", len(s.Columns), len(s.Values))
		}
		cols, err := schema.MustColumns(s.Columns)
		if err != nil {
			return nil, err
		}
		positions = cols
	}

	row := make([]any, len(schema.Columns))
	for i, v := range s.Values {
		lit, err := v.Literal()
		if err != nil {
			return nil, err
		}
		col := schema.Columns[positions[i]]
		if row[positions[i]], err = types.Convert(lit, col.Type); err != nil {
			return nil, err
		}
	}
	return row, nil
}
