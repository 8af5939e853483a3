package table

import (
	"strconv"
	"strings"

	"SharpHSQL/dberror"
	"SharpHSQL/types"
)

// InsertStatement renders the script line that re-inserts data.
func (t *Table) InsertStatement(data []any) string {
	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(t.Name())
	sb.WriteString(" VALUES(")
	for i := 0; i < t.visible; i++ {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(types.Literal(data[i]))
	}
	sb.WriteByte(')')
	return sb.String()
}

// DeleteStatement renders the script line that deletes data: by primary key
// when one is declared, by every column otherwise.
func (t *Table) DeleteStatement(data []any) string {
	cols := t.schema.PrimaryKey()
	if t.hidden {
		cols = make([]int, t.visible)
		for i := range cols {
			cols[i] = i
		}
	}

	var sb strings.Builder
	sb.WriteString("DELETE FROM ")
	sb.WriteString(t.Name())
	sb.WriteString(" WHERE ")
	for i, c := range cols {
		if i > 0 {
			sb.WriteString(" AND ")
		}
		sb.WriteString(t.schema.Columns[c].Name)
		if data[c] == nil {
			sb.WriteString(" IS NULL")
			continue
		}
		sb.WriteByte('=')
		sb.WriteString(types.Literal(data[c]))
	}
	return sb.String()
}

// CreateStatement renders the table definition.
func (t *Table) CreateStatement() string {
	var sb strings.Builder
	sb.WriteString("CREATE ")
	if t.schema.Cached {
		sb.WriteString("CACHED ")
	}
	sb.WriteString("TABLE ")
	sb.WriteString(t.Name())
	sb.WriteByte('(')
	for i, c := range t.schema.Columns {
		if i > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(c.Name)
		sb.WriteByte(' ')
		sb.WriteString(c.Type.String())
		if !c.Nullable || c.PrimaryKey {
			sb.WriteString(" NOT NULL")
		}
	}
	if pk := t.schema.PrimaryKey(); len(pk) > 0 {
		sb.WriteString(",PRIMARY KEY(")
		sb.WriteString(t.columnList(pk))
		sb.WriteByte(')')
	}
	sb.WriteByte(')')
	return sb.String()
}

// IndexStatements renders one CREATE INDEX per declared index.
func (t *Table) IndexStatements() []string {
	out := make([]string, 0, len(t.indexDefs))
	for _, d := range t.indexDefs {
		s := "CREATE INDEX "
		if d.Unique {
			s = "CREATE UNIQUE INDEX "
		}
		out = append(out, s+d.Name+" ON "+t.Name()+"("+t.columnList(d.Columns)+")")
	}
	return out
}

func (t *Table) columnList(cols []int) string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = t.schema.Columns[c].Name
	}
	return strings.Join(names, ",")
}

// IndexRoots renders the data file positions of the index roots followed
// by the next identity value.
func (t *Table) IndexRoots() string {
	parts := make([]string, 0, len(t.indexes)+1)
	for _, idx := range t.indexes {
		var pos int32
		if r := idx.Root(); r != nil {
			pos = r.Row().Position()
		}
		parts = append(parts, strconv.Itoa(int(pos)))
	}
	parts = append(parts, strconv.FormatInt(t.identity, 10))
	return strings.Join(parts, " ")
}

// SetIndexRoots reattaches the index roots of a cached table from the form
// written by IndexRoots.
func (t *Table) SetIndexRoots(s string) error {
	if t.cache == nil {
		return dberror.Invalid("table %s is not cached", t.Name())
	}
	fields := strings.Fields(s)
	if len(fields) != len(t.indexes)+1 {
		return dberror.Invalid("table %s: %d index roots for %d indexes", t.Name(), len(fields)-1, len(t.indexes))
	}

	for i, idx := range t.indexes {
		pos, err := strconv.ParseInt(fields[i], 10, 32)
		if err != nil {
			return dberror.Invalid("table %s: bad index root %q", t.Name(), fields[i])
		}
		if pos == 0 {
			idx.SetRoot(nil)
			continue
		}
		r, err := t.cache.GetRow(int32(pos), t)
		if err != nil {
			return err
		}
		idx.SetRoot(r.Node(i))
	}

	id, err := strconv.ParseInt(fields[len(fields)-1], 10, 64)
	if err != nil {
		return dberror.Invalid("table %s: bad identity %q", t.Name(), fields[len(fields)-1])
	}
	t.identity = id
	return nil
}

// ForEach calls fn with the data of every row in primary key order.
func (t *Table) ForEach(fn func(data []any) error) error {
	it := t.indexes[0].Scan()
	for ; it.Valid(); it.Next() {
		if err := fn(it.Row().Data()); err != nil {
			return err
		}
	}
	return it.Err()
}

// AllRows collects the data of every row.
func (t *Table) AllRows() ([][]any, error) {
	var rows [][]any
	err := t.ForEach(func(data []any) error {
		rows = append(rows, data)
		return nil
	})
	return rows, err
}
