package types

import "SharpHSQL/dberror"

// CompareOp is a comparison between a column value and a literal.
type CompareOp uint8

const (
	OpEqual CompareOp = iota
	OpNotEqual
	OpGreater
	OpGreaterEqual
	OpSmaller
	OpSmallerEqual
)

func ParseCompareOp(s string) (CompareOp, error) {
	switch s {
	case "=":
		return OpEqual, nil
	case "<>", "!=":
		return OpNotEqual, nil
	case ">":
		return OpGreater, nil
	case ">=":
		return OpGreaterEqual, nil
	case "<":
		return OpSmaller, nil
	case "<=":
		return OpSmallerEqual, nil
	}
	return OpEqual, dberror.Invalid("unknown comparison %q", s)
}

// Test reports whether a comparison result c = Compare(value, literal)
// satisfies the operator.
func (op CompareOp) Test(c int) bool {
	switch op {
	case OpEqual:
		return c == 0
	case OpNotEqual:
		return c != 0
	case OpGreater:
		return c > 0
	case OpGreaterEqual:
		return c >= 0
	case OpSmaller:
		return c < 0
	case OpSmallerEqual:
		return c <= 0
	}
	return false
}

func (op CompareOp) String() string {
	return [...]string{"=", "<>", ">", ">=", "<", "<="}[op]
}
