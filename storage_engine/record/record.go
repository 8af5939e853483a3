package record

import (
	"encoding/binary"
	"math"

	"SharpHSQL/dberror"
	"SharpHSQL/types"
)

/*
Binary layout helpers for data file records.

Integers are 32-bit big endian. A column value is a one byte type tag
followed by the value; tag 0 is NULL and carries nothing.

	INTEGER  tag | int32
	BIGINT   tag | int64
	DOUBLE   tag | float64 bits
	VARCHAR  tag | int32 length | UTF-8 bytes
	BOOLEAN  tag | 1 byte
*/

const IntSize = 4

// Writer appends to a byte slice sized up front.
type Writer struct {
	buf []byte
}

func NewWriter(capacity int) *Writer {
	return &Writer{buf: make([]byte, 0, capacity)}
}

func (w *Writer) WriteInt(v int32) {
	w.buf = binary.BigEndian.AppendUint32(w.buf, uint32(v))
}

// WriteData writes one tagged value per column.
func (w *Writer) WriteData(data []any, colTypes []types.ColumnType) error {
	if len(data) != len(colTypes) {
		return dberror.Invalid("row has %d values for %d columns", len(data), len(colTypes))
	}
	for i, v := range data {
		if v == nil {
			w.buf = append(w.buf, byte(types.TypeNull))
			continue
		}
		t := colTypes[i]
		w.buf = append(w.buf, byte(t))
		switch t {
		case types.TypeInteger:
			x, ok := v.(int32)
			if !ok {
				return dberror.Invalid("column %d: %T is not INTEGER", i, v)
			}
			w.WriteInt(x)
		case types.TypeBigInt:
			x, ok := v.(int64)
			if !ok {
				return dberror.Invalid("column %d: %T is not BIGINT", i, v)
			}
			w.buf = binary.BigEndian.AppendUint64(w.buf, uint64(x))
		case types.TypeDouble:
			x, ok := v.(float64)
			if !ok {
				return dberror.Invalid("column %d: %T is not DOUBLE", i, v)
			}
			w.buf = binary.BigEndian.AppendUint64(w.buf, math.Float64bits(x))
		case types.TypeVarchar:
			x, ok := v.(string)
			if !ok {
				return dberror.Invalid("column %d: %T is not VARCHAR", i, v)
			}
			w.WriteInt(int32(len(x)))
			w.buf = append(w.buf, x...)
		case types.TypeBoolean:
			x, ok := v.(bool)
			if !ok {
				return dberror.Invalid("column %d: %T is not BOOLEAN", i, v)
			}
			if x {
				w.buf = append(w.buf, 1)
			} else {
				w.buf = append(w.buf, 0)
			}
		default:
			return dberror.Invalid("column %d: unsupported type %s", i, t)
		}
	}
	return nil
}

func (w *Writer) Len() int      { return len(w.buf) }
func (w *Writer) Bytes() []byte { return w.buf }

// DataSize returns the number of bytes WriteData produces for data.
func DataSize(data []any, colTypes []types.ColumnType) int {
	n := 0
	for i, v := range data {
		n++
		if v == nil {
			continue
		}
		switch colTypes[i] {
		case types.TypeInteger:
			n += 4
		case types.TypeBigInt, types.TypeDouble:
			n += 8
		case types.TypeVarchar:
			s, _ := v.(string)
			n += IntSize + len(s)
		case types.TypeBoolean:
			n++
		}
	}
	return n
}

// Reader consumes a record produced by Writer.
type Reader struct {
	buf []byte
	off int
}

func NewReader(b []byte) *Reader {
	return &Reader{buf: b}
}

func (r *Reader) need(n int) error {
	if r.off+n > len(r.buf) {
		return dberror.Corrupted("record truncated at byte %d (need %d of %d)", r.off, n, len(r.buf))
	}
	return nil
}

func (r *Reader) ReadInt() (int32, error) {
	if err := r.need(IntSize); err != nil {
		return 0, err
	}
	v := int32(binary.BigEndian.Uint32(r.buf[r.off:]))
	r.off += IntSize
	return v, nil
}

// ReadData reads one tagged value per column, checking tags against the
// expected column types.
func (r *Reader) ReadData(colTypes []types.ColumnType) ([]any, error) {
	data := make([]any, len(colTypes))
	for i, t := range colTypes {
		if err := r.need(1); err != nil {
			return nil, err
		}
		tag := types.ColumnType(r.buf[r.off])
		r.off++
		if tag == types.TypeNull {
			continue
		}
		if tag != t {
			return nil, dberror.Corrupted("column %d tagged %s, expected %s", i, tag, t)
		}
		switch t {
		case types.TypeInteger:
			v, err := r.ReadInt()
			if err != nil {
				return nil, err
			}
			data[i] = v
		case types.TypeBigInt, types.TypeDouble:
			if err := r.need(8); err != nil {
				return nil, err
			}
			bits := binary.BigEndian.Uint64(r.buf[r.off:])
			r.off += 8
			if t == types.TypeBigInt {
				data[i] = int64(bits)
			} else {
				data[i] = math.Float64frombits(bits)
			}
		case types.TypeVarchar:
			n, err := r.ReadInt()
			if err != nil {
				return nil, err
			}
			if n < 0 {
				return nil, dberror.Corrupted("negative string length %d", n)
			}
			if err := r.need(int(n)); err != nil {
				return nil, err
			}
			data[i] = string(r.buf[r.off : r.off+int(n)])
			r.off += int(n)
		case types.TypeBoolean:
			if err := r.need(1); err != nil {
				return nil, err
			}
			data[i] = r.buf[r.off] != 0
			r.off++
		default:
			return nil, dberror.Corrupted("unknown type tag %d", tag)
		}
	}
	return data, nil
}

func (r *Reader) Offset() int    { return r.off }
func (r *Reader) Remaining() int { return len(r.buf) - r.off }
