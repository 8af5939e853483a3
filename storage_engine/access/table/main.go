package table

import (
	"slices"

	"SharpHSQL/dberror"
	"SharpHSQL/logging"
	"SharpHSQL/storage_engine/access/index"
	"SharpHSQL/storage_engine/cache"
	"SharpHSQL/types"

	"github.com/cockroachdb/errors"
)

/*
Table keeps every index of a table in step.

Index 0 is the primary index: the declared primary key, or the hidden
identity column when none is declared. Each row carries one node per index
in the same order.

A row is inserted into the indexes in order and, on a unique violation, taken
out of those it already joined. Deletion goes the other way: secondary
indexes first, the primary index last, and only that last step releases the
row's space.
*/

// New creates an empty table. c is nil for memory tables; a cached schema
// needs a cache.
func New(schema types.TableSchema, c *cache.Cache) (*Table, error) {
	if schema.Cached && c == nil {
		return nil, dberror.Invalid("cached table %s needs a data file", schema.TableName)
	}
	if !schema.Cached {
		c = nil
	}

	t := &Table{
		schema:   schema,
		colTypes: schema.Types(),
		visible:  len(schema.Columns),
		cache:    c,
		log:      logging.WithTable(schema.TableName),
	}

	pk := schema.PrimaryKey()
	if len(pk) == 0 {
		t.hidden = true
		t.colTypes = append(t.colTypes, types.TypeBigInt)
		pk = []int{t.visible}
	}
	t.indexes = []*index.Index{
		index.New("SYS_PK_"+schema.TableName, 0, pk, true, nil, t.colTypes),
	}
	return t, nil
}

func (t *Table) Name() string                    { return t.schema.TableName }
func (t *Table) ColumnTypes() []types.ColumnType { return t.colTypes }
func (t *Table) IndexCount() int                 { return len(t.indexes) }
func (t *Table) Schema() types.TableSchema       { return t.schema }
func (t *Table) IsCached() bool                  { return t.cache != nil }
func (t *Table) VisibleColumns() int             { return t.visible }
func (t *Table) HasHiddenKey() bool              { return t.hidden }
func (t *Table) PrimaryIndex() *index.Index      { return t.indexes[0] }
func (t *Table) Indexes() []*index.Index         { return t.indexes }
func (t *Table) IndexDefs() []types.IndexDef     { return t.indexDefs }

// IsEmpty reports whether the table holds no rows.
func (t *Table) IsEmpty() bool { return t.indexes[0].Root() == nil }

// GetIndexForColumns returns the index whose declared columns start with
// cols, preferring an exact match, or nil.
func (t *Table) GetIndexForColumns(cols []int) *index.Index {
	var prefix *index.Index
	for _, idx := range t.indexes {
		ic := idx.Columns()
		if len(ic) < len(cols) || !slices.Equal(ic[:len(cols)], cols) {
			continue
		}
		if len(ic) == len(cols) {
			return idx
		}
		if prefix == nil {
			prefix = idx
		}
	}
	return prefix
}

// GetIndex returns the named index.
func (t *Table) GetIndex(name string) *index.Index {
	for _, idx := range t.indexes {
		if idx.Name() == name {
			return idx
		}
	}
	return nil
}

// AddIndex returns a copy of t with one more index, holding the same rows.
// Rows change shape with a new index, so every row is rebuilt and the old
// ones are released.
func (t *Table) AddIndex(def types.IndexDef) (*Table, error) {
	if t.GetIndex(def.Name) != nil {
		return nil, dberror.Invalid("index %s already exists", def.Name)
	}
	for _, c := range def.Columns {
		if c < 0 || c >= t.visible {
			return nil, dberror.Invalid("index %s: column %d out of range", def.Name, c)
		}
	}

	nt := &Table{
		schema:    t.schema,
		colTypes:  t.colTypes,
		visible:   t.visible,
		hidden:    t.hidden,
		indexDefs: append(slices.Clone(t.indexDefs), def),
		cache:     t.cache,
		identity:  t.identity,
		log:       t.log,
	}
	pk := t.indexes[0].Columns()
	nt.indexes = []*index.Index{index.New(t.indexes[0].Name(), 0, pk, true, nil, nt.colTypes)}
	for i, d := range nt.indexDefs {
		nt.indexes = append(nt.indexes, index.New(d.Name, i+1, d.Columns, d.Unique, pk, nt.colTypes))
	}

	rows, err := t.AllRows()
	if err != nil {
		return nil, err
	}
	for i, data := range rows {
		if _, err := nt.InsertNoCheck(data); err != nil {
			// undo the partial copy, the old table is untouched
			for _, done := range rows[:i] {
				_ = nt.DeleteNoCheck(done)
			}
			return nil, errors.Wrapf(err, "failed to build index %s", def.Name)
		}
		if err := nt.cleanUp(); err != nil {
			return nil, err
		}
	}
	for _, data := range rows {
		if err := t.DeleteNoCheck(data); err != nil {
			return nil, err
		}
	}
	t.log.Debug("index created", "index", def.Name, "rows", len(rows))
	return nt, nil
}

// NewRow prepares data for insertion: the hidden identity is appended and
// NOT NULL columns are checked.
func (t *Table) NewRow(data []any) ([]any, error) {
	if len(data) != t.visible {
		return nil, dberror.Invalid("table %s has %d columns, got %d values", t.Name(), t.visible, len(data))
	}
	for i, c := range t.schema.Columns {
		if data[i] == nil && (!c.Nullable || c.PrimaryKey) {
			return nil, dberror.Invalid("column %s.%s may not be NULL", t.Name(), c.Name)
		}
	}
	if t.hidden {
		data = append(slices.Clone(data), t.identity)
		t.identity++
	}
	return data, nil
}

// Insert adds a row of visible values on behalf of s, records the undo
// entry and logs the statement.
func (t *Table) Insert(data []any, s Session) error {
	row, err := t.NewRow(data)
	if err != nil {
		return err
	}
	if _, err := t.InsertNoCheck(row); err != nil {
		return err
	}
	if s != nil {
		s.AddInsert(t, row)
		if err := s.Log(t.InsertStatement(row)); err != nil {
			return err
		}
	}
	return t.cleanUp()
}

// InsertNoCheck adds a full row (hidden identity included) to every index.
func (t *Table) InsertNoCheck(data []any) (*cache.Row, error) {
	r, err := cache.NewRow(t, t.cache, data)
	if err != nil {
		return nil, err
	}
	for i, idx := range t.indexes {
		if err := idx.Insert(idx.Node(r)); err != nil {
			for j := i - 1; j >= 0; j-- {
				if derr := t.indexes[j].Delete(data, false); derr != nil {
					return nil, errors.WithSecondaryError(derr, err)
				}
			}
			r.Delete()
			return nil, err
		}
	}
	if t.hidden {
		if id := data[t.visible].(int64); id >= t.identity {
			t.identity = id + 1
		}
	}
	return r, nil
}

// Delete removes the row holding data on behalf of s.
func (t *Table) Delete(data []any, s Session) error {
	if err := t.DeleteNoCheck(data); err != nil {
		return err
	}
	if s != nil {
		s.AddDelete(t, data)
		if err := s.Log(t.DeleteStatement(data)); err != nil {
			return err
		}
	}
	return t.cleanUp()
}

// DeleteNoCheck removes the row holding data from every index and frees it.
func (t *Table) DeleteNoCheck(data []any) error {
	for i := len(t.indexes) - 1; i >= 1; i-- {
		if err := t.indexes[i].Delete(data, false); err != nil {
			return err
		}
	}
	return t.indexes[0].Delete(data, true)
}

func (t *Table) cleanUp() error {
	if t.cache == nil {
		return nil
	}
	return t.cache.CleanUpIfNeeded()
}
