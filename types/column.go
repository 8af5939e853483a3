package types

import (
	"strings"

	"SharpHSQL/dberror"
)

// ColumnType is the SQL type of a column. The numeric value is also the tag
// written in front of every non-null value in the data file.
type ColumnType uint8

const (
	TypeNull ColumnType = iota
	TypeInteger
	TypeBigInt
	TypeDouble
	TypeVarchar
	TypeBoolean
)

func ParseColumnType(s string) (ColumnType, error) {
	switch strings.ToUpper(s) {
	case "INT", "INTEGER":
		return TypeInteger, nil
	case "BIGINT":
		return TypeBigInt, nil
	case "DOUBLE", "FLOAT", "REAL":
		return TypeDouble, nil
	case "VARCHAR", "CHAR", "LONGVARCHAR", "VARCHAR_IGNORECASE":
		return TypeVarchar, nil
	case "BOOLEAN", "BIT":
		return TypeBoolean, nil
	}
	return TypeNull, dberror.Invalid("unsupported column type %s", s)
}

func (t ColumnType) String() string {
	switch t {
	case TypeInteger:
		return "INTEGER"
	case TypeBigInt:
		return "BIGINT"
	case TypeDouble:
		return "DOUBLE"
	case TypeVarchar:
		return "VARCHAR"
	case TypeBoolean:
		return "BOOLEAN"
	}
	return "NULL"
}
