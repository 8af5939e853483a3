package cache

import (
	"bytes"
	"path/filepath"
	"testing"

	"SharpHSQL/dberror"
	"SharpHSQL/types"

	"github.com/cockroachdb/errors"
)

type testOwner struct {
	cols    []types.ColumnType
	indexes int
}

func (o *testOwner) Name() string                    { return "T" }
func (o *testOwner) ColumnTypes() []types.ColumnType { return o.cols }
func (o *testOwner) IndexCount() int                 { return o.indexes }

var flat = &testOwner{cols: []types.ColumnType{types.TypeInteger, types.TypeVarchar}}

func openCache(t *testing.T, cfg Config) *Cache {
	t.Helper()
	c := New(filepath.Join(t.TempDir(), "test.data"), cfg)
	if err := c.Open(false); err != nil {
		t.Fatalf("Failed to open cache: %v", err)
	}
	t.Cleanup(func() { _ = c.Shutdown() })
	return c
}

func addRow(t *testing.T, c *Cache, owner Owner, data ...any) *Row {
	t.Helper()
	r, err := NewRow(owner, c, data)
	if err != nil {
		t.Fatalf("Failed to create row: %v", err)
	}
	return r
}

// TestRowRoundTrip checks that a serialized row reads back with the same
// links, balance and values.
func TestRowRoundTrip(t *testing.T) {
	c := openCache(t, Config{})
	owner := &testOwner{
		cols:    []types.ColumnType{types.TypeInteger, types.TypeVarchar, types.TypeDouble, types.TypeBoolean},
		indexes: 2,
	}

	a := addRow(t, c, owner, int32(7), "it's", 2.5, nil)
	b := addRow(t, c, owner, int32(8), nil, -1.0, true)
	b.Node(0).SetLeft(a.Node(0))
	b.Node(1).SetParent(a.Node(1))
	b.Node(1).SetBalance(-1)

	raw, err := b.Write()
	if err != nil {
		t.Fatalf("Failed to write row: %v", err)
	}
	if len(raw) != int(b.Size()) {
		t.Fatalf("Size mismatch: expected %d, got %d", b.Size(), len(raw))
	}

	back, err := readRow(owner, c, b.Position(), raw)
	if err != nil {
		t.Fatalf("Failed to read row: %v", err)
	}
	for i, v := range b.Data() {
		if back.Data()[i] != v {
			t.Errorf("Column %d mismatch: expected %v, got %v", i, v, back.Data()[i])
		}
	}
	if got := back.Node(0).left.pos; got != a.Position() {
		t.Errorf("Left link mismatch: expected %d, got %d", a.Position(), got)
	}
	if got := back.Node(1).parent.pos; got != a.Position() {
		t.Errorf("Parent link mismatch: expected %d, got %d", a.Position(), got)
	}
	if got := back.Node(1).Balance(); got != -1 {
		t.Errorf("Balance mismatch: expected -1, got %d", got)
	}

	if _, err := readRow(owner, c, b.Position()+1, raw); !errors.Is(err, dberror.ErrCorrupted) {
		t.Errorf("Expected corruption for wrong position, got %v", err)
	}
}

// TestAddGetRow checks that a resident row is returned as the same object.
func TestAddGetRow(t *testing.T) {
	c := openCache(t, Config{})

	var rows []*Row
	for i := 0; i < 100; i++ {
		rows = append(rows, addRow(t, c, flat, int32(i), "v"))
	}
	for _, r := range rows {
		got, err := c.GetRow(r.Position(), flat)
		if err != nil {
			t.Fatalf("Failed to get row at %d: %v", r.Position(), err)
		}
		if got != r {
			t.Errorf("Row at %d: expected the resident object", r.Position())
		}
	}
	if got := c.Stats().Hits; got != 100 {
		t.Errorf("Hits mismatch: expected 100, got %d", got)
	}
	if rows[1].Position() != rows[0].Position()+rows[0].Size() {
		t.Errorf("Rows are not appended at the free position")
	}
}

// TestEvictedRowReloads checks that a dirty row written back by CleanUp
// reads back byte-identical.
func TestEvictedRowReloads(t *testing.T) {
	for _, blockBytes := range []int64{0, 1 << 20} {
		c := openCache(t, Config{Scale: 4, BlockCacheBytes: blockBytes})

		before := map[int32][]byte{}
		var written []*Row
		c.evicted = func(r *Row, w bool) {
			if w {
				written = append(written, r)
			}
		}
		for i := 0; i < 12; i++ {
			r := addRow(t, c, flat, int32(i), "row")
			raw, err := r.Write()
			if err != nil {
				t.Fatalf("Failed to write row: %v", err)
			}
			before[r.Position()] = raw
		}

		if err := c.CleanUpIfNeeded(); err != nil {
			t.Fatalf("Failed to clean up: %v", err)
		}
		if len(written) == 0 {
			t.Fatalf("Expected dirty rows to be written back")
		}
		if c.Stats().Resident != 12-len(written) {
			t.Errorf("Resident mismatch: expected %d, got %d", 12-len(written), c.Stats().Resident)
		}

		for _, old := range written {
			r, err := c.GetRow(old.Position(), flat)
			if err != nil {
				t.Fatalf("Failed to reload row at %d: %v", old.Position(), err)
			}
			if r == old {
				t.Errorf("Row at %d was not evicted", old.Position())
			}
			raw, err := r.Write()
			if err != nil {
				t.Fatalf("Failed to write row: %v", err)
			}
			if !bytes.Equal(raw, before[r.Position()]) {
				t.Errorf("Row at %d reloaded differently", r.Position())
			}
		}
	}
}

// TestCleanUpOrder fills the default cache past its threshold and checks
// that clean rows leave before dirty ones and that dirty rows are written
// in file order.
func TestCleanUpOrder(t *testing.T) {
	c := openCache(t, Config{})

	var rows []*Row
	for i := 0; i < 13000; i++ {
		rows = append(rows, addRow(t, c, flat, int32(i), "x"))
	}
	if err := c.Flush(); err != nil {
		t.Fatalf("Failed to flush: %v", err)
	}
	for i, r := range rows {
		if i%3 == 0 {
			r.changed = true
		}
	}

	var clean, dirty int
	var lastPos int32
	c.evicted = func(r *Row, written bool) {
		if !written {
			if dirty > 0 {
				t.Errorf("Clean row at %d evicted after dirty rows", r.Position())
			}
			clean++
			return
		}
		if r.Position() < lastPos {
			t.Errorf("Dirty rows out of order: %d after %d", r.Position(), lastPos)
		}
		lastPos = r.Position()
		dirty++
	}

	if err := c.CleanUpIfNeeded(); err != nil {
		t.Fatalf("Failed to clean up: %v", err)
	}
	if clean == 0 || dirty == 0 {
		t.Fatalf("Expected both clean and dirty evictions, got %d clean, %d dirty", clean, dirty)
	}
	if dirty > writerLength {
		t.Errorf("Batch too large: %d", dirty)
	}
	if got := c.Stats().Resident; got != 13000-clean-dirty {
		t.Errorf("Resident mismatch: expected %d, got %d", 13000-clean-dirty, got)
	}
}

// TestRootsStayResident checks that rows holding an index root are never
// evicted.
func TestRootsStayResident(t *testing.T) {
	c := openCache(t, Config{Scale: 3})
	owner := &testOwner{cols: []types.ColumnType{types.TypeInteger}, indexes: 1}
	for i := 0; i < 8; i++ {
		addRow(t, c, owner, int32(i))
	}
	if err := c.CleanUp(); err != nil {
		t.Fatalf("Failed to clean up: %v", err)
	}
	if got := c.Stats().Resident; got != 8 {
		t.Errorf("Resident mismatch: expected 8, got %d", got)
	}
}

// TestCleanUpSkipsPinnedWindow checks that a sampling window holding only
// index roots does not end the pass: the rows after it are still evicted.
func TestCleanUpSkipsPinnedWindow(t *testing.T) {
	c := openCache(t, Config{Scale: 4})
	owner := &testOwner{cols: []types.ColumnType{types.TypeInteger}, indexes: 1}
	for i := 0; i < 12; i++ {
		addRow(t, c, owner, int32(i))
	}

	var ring []*Row
	for r := c.first; ; {
		ring = append(ring, r)
		r = r.next
		if r == c.first {
			break
		}
	}
	if len(ring) != 12 {
		t.Fatalf("Ring length mismatch: expected 12, got %d", len(ring))
	}
	// the first window stays roots, every later row hangs below ring[0]
	for _, r := range ring[sampleWidth:] {
		r.Node(0).SetParent(ring[0].Node(0))
	}

	evicted := 0
	c.evicted = func(*Row, bool) { evicted++ }
	if err := c.CleanUp(); err != nil {
		t.Fatalf("Failed to clean up: %v", err)
	}
	if evicted == 0 {
		t.Fatalf("Expected rows past the pinned window to be evicted")
	}
	if got := c.Stats().Resident; got != 12-evicted {
		t.Errorf("Resident mismatch: expected %d, got %d", 12-evicted, got)
	}
	for _, r := range ring[:sampleWidth] {
		if r.next == nil {
			t.Errorf("Root row at %d was evicted", r.Position())
		}
	}
}

// TestBlockCacheFollowsWrites rewrites one record many times at the same
// offset and checks every reload sees the latest bytes, not a cached copy.
func TestBlockCacheFollowsWrites(t *testing.T) {
	c := openCache(t, Config{Scale: 4, BlockCacheBytes: 1 << 20})
	r := addRow(t, c, flat, int32(0), "row")
	pos := r.Position()
	if err := c.saveSorted([]*Row{r}); err != nil {
		t.Fatalf("Failed to write row: %v", err)
	}
	c.remove(r)

	for i := 0; i < 200; i++ {
		loaded, err := c.GetRow(pos, flat)
		if err != nil {
			t.Fatalf("Failed to reload row: %v", err)
		}
		if got := loaded.Data()[0].(int32); got != int32(i) {
			t.Fatalf("Stale record in round %d: expected %d, got %d", i, i, got)
		}
		loaded.data[0] = int32(i + 1)
		loaded.changed = true
		if err := c.saveSorted([]*Row{loaded}); err != nil {
			t.Fatalf("Failed to write row: %v", err)
		}
		c.remove(loaded)
	}

	// an unchanged record is served from the block cache
	r, err := c.GetRow(pos, flat)
	if err != nil {
		t.Fatalf("Failed to reload row: %v", err)
	}
	c.remove(r)
	hits := c.Stats().BlockHits
	r, err = c.GetRow(pos, flat)
	if err != nil {
		t.Fatalf("Failed to reload row: %v", err)
	}
	if got := r.Data()[0].(int32); got != 200 {
		t.Errorf("Value mismatch: expected 200, got %d", got)
	}
	if c.Stats().BlockHits != hits+1 {
		t.Errorf("Expected a block cache hit for an unchanged record")
	}
}

// TestFreeList tests first-fit reuse, whole-block consumption and the reset
// past the list limit.
func TestFreeList(t *testing.T) {
	c := openCache(t, Config{})

	a := addRow(t, c, flat, int32(1), "abc")
	pos, size := a.Position(), a.Size()
	a.Delete()
	if c.Stats().Resident != 0 {
		t.Fatalf("Deleted row still resident")
	}

	b := addRow(t, c, flat, int32(2), "xyz")
	if b.Position() != pos {
		t.Errorf("Position mismatch: expected reuse of %d, got %d", pos, b.Position())
	}
	if c.Stats().FreeBlocks != 0 {
		t.Errorf("Exact fit should consume the block")
	}

	c.Free(&Row{}, 1000, size+minFreeBlock-1)
	d := addRow(t, c, flat, int32(3), "def")
	if d.Position() != 1000 || c.Stats().FreeBlocks != 0 {
		t.Errorf("Small remainder should be swallowed: pos %d, blocks %d", d.Position(), c.Stats().FreeBlocks)
	}

	c.Free(&Row{}, 2000, size+20)
	e := addRow(t, c, flat, int32(4), "ghi")
	if e.Position() != 2000 {
		t.Errorf("Position mismatch: expected 2000, got %d", e.Position())
	}
	if c.freeRoot == nil || c.freeRoot.pos != 2000+size || c.freeRoot.length != 20 {
		t.Errorf("Remainder block mismatch: %+v", c.freeRoot)
	}

	for i := 0; i < freeListLimit; i++ {
		c.Free(&Row{}, int32(10000+i*100), 50)
	}
	if got := c.Stats().FreeBlocks; got != 1 {
		t.Errorf("Free-list should restart past %d entries, has %d", freeListLimit, got)
	}
}

// TestReopen checks rows and the free position survive Close and Open.
func TestReopen(t *testing.T) {
	c := openCache(t, Config{})
	var positions []int32
	for i := 0; i < 10; i++ {
		positions = append(positions, addRow(t, c, flat, int32(i), "persist").Position())
	}
	freePos := c.FreePos()
	if err := c.Close(); err != nil {
		t.Fatalf("Failed to close: %v", err)
	}
	if err := c.Open(true); err != nil {
		t.Fatalf("Failed to reopen: %v", err)
	}
	if c.FreePos() != freePos {
		t.Errorf("Free position mismatch: expected %d, got %d", freePos, c.FreePos())
	}
	for i, pos := range positions {
		r, err := c.GetRow(pos, flat)
		if err != nil {
			t.Fatalf("Failed to read row at %d: %v", pos, err)
		}
		if r.Data()[0] != int32(i) || r.Data()[1] != "persist" {
			t.Errorf("Row at %d mismatch: %v", pos, r.Data())
		}
	}
}

// TestCorruptedEcho checks that a record whose position echo was damaged is
// rejected.
func TestCorruptedEcho(t *testing.T) {
	c := openCache(t, Config{})
	r := addRow(t, c, flat, int32(1), "a")
	pos, size := r.Position(), r.Size()
	if err := c.Close(); err != nil {
		t.Fatalf("Failed to close: %v", err)
	}
	if err := c.Open(false); err != nil {
		t.Fatalf("Failed to reopen: %v", err)
	}
	if err := c.file.WriteAt(pos+size-4, []byte{0, 0, 0, 99}); err != nil {
		t.Fatalf("Failed to damage record: %v", err)
	}
	if _, err := c.GetRow(pos, flat); !errors.Is(err, dberror.ErrCorrupted) {
		t.Errorf("Expected corruption error, got %v", err)
	}
}

// TestDeletedNodePanics checks that touching a deleted node is caught.
func TestDeletedNodePanics(t *testing.T) {
	owner := &testOwner{cols: []types.ColumnType{types.TypeInteger}, indexes: 1}
	r, err := NewRow(owner, nil, []any{int32(1)})
	if err != nil {
		t.Fatalf("Failed to create row: %v", err)
	}
	n := r.Node(0)
	n.Delete()
	if !n.IsDeleted() {
		t.Fatalf("Node not marked deleted")
	}

	defer func() {
		if recover() == nil {
			t.Errorf("Expected panic on deleted node")
		}
	}()
	_, _ = n.Left()
}
