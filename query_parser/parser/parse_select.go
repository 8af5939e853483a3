package parser

import (
	"SharpHSQL/types"
)

// Filter is a WHERE condition resolved against a table.
type Filter struct {
	Column int
	Op     types.CompareOp
	Value  any // converted to the column type
	IsNull bool
	Not    bool // IS NOT NULL
}

// Match reports whether data satisfies the filter.
func (f Filter) Match(data []any, colType types.ColumnType) bool {
	v := data[f.Column]
	if f.IsNull {
		return (v == nil) != f.Not
	}
	if v == nil || f.Value == nil {
		return false
	}
	return f.Op.Test(types.Compare(v, f.Value, colType))
}

// Filters resolves conditions against schema, converting every literal to
// its column's type.
func Filters(conds []*Condition, schema *types.TableSchema) ([]Filter, error) {
	out := make([]Filter, 0, len(conds))
	for _, c := range conds {
		cols, err := schema.MustColumns([]string{c.Column})
		if err != nil {
			return nil, err
		}
		f := Filter{Column: cols[0]}
		if c.Is != nil {
			f.IsNull = true
			f.Not = c.Is.Not
			out = append(out, f)
			continue
		}
		if f.Op, err = types.ParseCompareOp(c.Op); err != nil {
			return nil, err
		}
		lit, err := c.Value.Literal()
		if err != nil {
			return nil, err
		}
		if lit == nil {
			// a comparison with NULL matches nothing
			out = append(out, f)
			continue
		}
		if f.Value, err = types.Convert(lit, schema.Columns[f.Column].Type); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, nil
}
