package types

import (
	"math"
	"strconv"
	"strings"

	"SharpHSQL/dberror"
)

/*
Column values travel through the engine as plain Go values:

	INTEGER -> int32    BIGINT  -> int64    DOUBLE -> float64
	VARCHAR -> string   BOOLEAN -> bool     NULL   -> nil

Convert is the only way a literal enters a row, so the rest of the engine
can type-switch without defaults.
*/

// Convert coerces a literal (int64, float64, string, bool or nil as produced
// by the statement parser) to the representation of column type t.
func Convert(v any, t ColumnType) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch t {
	case TypeInteger:
		switch x := v.(type) {
		case int32:
			return x, nil
		case int64:
			if x < math.MinInt32 || x > math.MaxInt32 {
				return nil, dberror.Invalid("value %d out of INTEGER range", x)
			}
			return int32(x), nil
		case int:
			return Convert(int64(x), t)
		case float64:
			return Convert(int64(x), t)
		case string:
			i, err := strconv.ParseInt(strings.TrimSpace(x), 10, 32)
			if err != nil {
				return nil, dberror.Invalid("cannot convert %q to INTEGER", x)
			}
			return int32(i), nil
		}
	case TypeBigInt:
		switch x := v.(type) {
		case int32:
			return int64(x), nil
		case int64:
			return x, nil
		case int:
			return int64(x), nil
		case float64:
			return int64(x), nil
		case string:
			i, err := strconv.ParseInt(strings.TrimSpace(x), 10, 64)
			if err != nil {
				return nil, dberror.Invalid("cannot convert %q to BIGINT", x)
			}
			return i, nil
		}
	case TypeDouble:
		switch x := v.(type) {
		case float64:
			return x, nil
		case int32:
			return float64(x), nil
		case int64:
			return float64(x), nil
		case int:
			return float64(x), nil
		case string:
			f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
			if err != nil {
				return nil, dberror.Invalid("cannot convert %q to DOUBLE", x)
			}
			return f, nil
		}
	case TypeVarchar:
		switch x := v.(type) {
		case string:
			return x, nil
		case int32, int64, int:
			return strconv.FormatInt(toInt64(x), 10), nil
		case float64:
			return strconv.FormatFloat(x, 'g', -1, 64), nil
		case bool:
			return strconv.FormatBool(x), nil
		}
	case TypeBoolean:
		switch x := v.(type) {
		case bool:
			return x, nil
		case string:
			b, err := strconv.ParseBool(strings.TrimSpace(x))
			if err != nil {
				return nil, dberror.Invalid("cannot convert %q to BOOLEAN", x)
			}
			return b, nil
		case int32, int64, int:
			return toInt64(x) != 0, nil
		}
	}
	return nil, dberror.Invalid("cannot convert %T to %s", v, t)
}

func toInt64(v any) int64 {
	switch x := v.(type) {
	case int32:
		return int64(x)
	case int64:
		return x
	case int:
		return int64(x)
	}
	return 0
}

// Compare orders two values of the same column type. NULL sorts first and
// equals NULL.
func Compare(a, b any, t ColumnType) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}
	switch t {
	case TypeInteger:
		return cmpOrdered(a.(int32), b.(int32))
	case TypeBigInt:
		return cmpOrdered(a.(int64), b.(int64))
	case TypeDouble:
		return cmpOrdered(a.(float64), b.(float64))
	case TypeVarchar:
		return strings.Compare(a.(string), b.(string))
	case TypeBoolean:
		x, y := a.(bool), b.(bool)
		switch {
		case x == y:
			return 0
		case !x:
			return -1
		default:
			return 1
		}
	}
	return 0
}

func cmpOrdered[T int32 | int64 | float64](a, b T) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Literal renders v as a SQL literal that Convert accepts back unchanged.
func Literal(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case int64:
		return strconv.FormatInt(x, 10)
	case float64:
		s := strconv.FormatFloat(x, 'g', -1, 64)
		if !strings.ContainsAny(s, ".eEn") {
			s += ".0"
		}
		return s
	case bool:
		if x {
			return "TRUE"
		}
		return "FALSE"
	case string:
		return Quote(x)
	}
	return "NULL"
}

// Quote wraps s in single quotes, doubling quotes and escaping line breaks
// and backslashes so a statement always fits on one script line.
func Quote(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\'':
			b.WriteString("''")
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('\'')
	return b.String()
}

// Unquote reverses Quote.
func Unquote(lit string) (string, error) {
	if len(lit) < 2 || lit[0] != '\'' || lit[len(lit)-1] != '\'' {
		return "", dberror.Invalid("malformed string literal %s", lit)
	}
	body := lit[1 : len(lit)-1]
	var b strings.Builder
	b.Grow(len(body))
	for i := 0; i < len(body); i++ {
		c := body[i]
		switch {
		case c == '\'' && i+1 < len(body) && body[i+1] == '\'':
			b.WriteByte('\'')
			i++
		case c == '\\' && i+1 < len(body):
			i++
			switch body[i] {
			case 'n':
				b.WriteByte('\n')
			case 'r':
				b.WriteByte('\r')
			default:
				b.WriteByte(body[i])
			}
		default:
			b.WriteByte(c)
		}
	}
	return b.String(), nil
}
