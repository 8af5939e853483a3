package cache

import (
	"SharpHSQL/dberror"
	"SharpHSQL/storage_engine/record"
)

/*
Record layout of a row in the data file:

	───────────────────────────────────────────────────────────────────
	| size (4) | per index: balance, left, right, parent (4×4) | data | pos (4) |
	───────────────────────────────────────────────────────────────────

left/right/parent hold the offset of the row carrying the linked node, or 0
for none. The trailing pos echoes the record's own offset and is checked on
every read.
*/

const nodeRecordSize = 4 * record.IntSize

// NewRow builds a row for owner. When c is not nil the row is placed in the
// data file at once and every link it takes part in is stored as an offset.
func NewRow(owner Owner, c *Cache, data []any) (*Row, error) {
	r := &Row{data: data, owner: owner, cache: c, changed: true}
	r.makeNodes()

	if c != nil {
		size := recordSize(owner, data)
		if size <= 0 {
			return nil, dberror.Invalid("row of %s does not fit a record", owner.Name())
		}
		r.size = int32(size)
		c.Add(r)
	}
	return r, nil
}

func recordSize(owner Owner, data []any) int {
	return record.IntSize + owner.IndexCount()*nodeRecordSize +
		record.DataSize(data, owner.ColumnTypes()) + record.IntSize
}

func (r *Row) makeNodes() {
	var last *Node
	for i := 0; i < r.owner.IndexCount(); i++ {
		n := &Node{row: r, index: i}
		if last == nil {
			r.firstNode = n
		} else {
			last.nextNode = n
		}
		last = n
	}
}

// readRow rebuilds the row stored at pos from its record bytes.
func readRow(owner Owner, c *Cache, pos int32, b []byte) (*Row, error) {
	in := record.NewReader(b)

	size, err := in.ReadInt()
	if err != nil {
		return nil, err
	}
	if int(size) != len(b) {
		return nil, dberror.Corrupted("record at %d: size field %d, read %d bytes", pos, size, len(b))
	}

	r := &Row{owner: owner, cache: c, pos: pos, size: size}
	r.makeNodes()
	for n := r.firstNode; n != nil; n = n.nextNode {
		var v [4]int32
		for i := range v {
			if v[i], err = in.ReadInt(); err != nil {
				return nil, err
			}
		}
		n.balance = int(v[0])
		n.left = link{pos: v[1]}
		n.right = link{pos: v[2]}
		n.parent = link{pos: v[3]}
	}

	if r.data, err = in.ReadData(owner.ColumnTypes()); err != nil {
		return nil, err
	}

	echo, err := in.ReadInt()
	if err != nil {
		return nil, err
	}
	if echo != pos || in.Remaining() != 0 {
		return nil, dberror.Corrupted("record at %d of %s echoes position %d", pos, owner.Name(), echo)
	}
	return r, nil
}

// Write serializes the row in record layout.
func (r *Row) Write() ([]byte, error) {
	out := record.NewWriter(int(r.size))
	out.WriteInt(r.size)
	for n := r.firstNode; n != nil; n = n.nextNode {
		out.WriteInt(int32(n.balance))
		out.WriteInt(n.left.pos)
		out.WriteInt(n.right.pos)
		out.WriteInt(n.parent.pos)
	}
	if err := out.WriteData(r.data, r.owner.ColumnTypes()); err != nil {
		return nil, err
	}
	out.WriteInt(r.pos)

	if out.Len() != int(r.size) {
		return nil, dberror.SizeMismatch(r.pos, int(r.size), out.Len())
	}
	return out.Bytes(), nil
}

func (r *Row) Data() []any       { return r.data }
func (r *Row) Owner() Owner      { return r.owner }
func (r *Row) Position() int32   { return r.pos }
func (r *Row) Size() int32       { return r.size }
func (r *Row) Changed() bool     { return r.changed }
func (r *Row) LastAccess() int64 { return r.lastAccess }

// Node returns the node of the given index.
func (r *Row) Node(index int) *Node {
	n := r.firstNode
	for i := 0; i < index && n != nil; i++ {
		n = n.nextNode
	}
	return n
}

// Delete releases the row's space in the data file. Its nodes must already
// be unlinked from every index.
func (r *Row) Delete() {
	if r.cache != nil && r.pos != 0 {
		r.cache.Free(r, r.pos, r.size)
	}
	for n := r.firstNode; n != nil; n = n.nextNode {
		n.markDeleted()
	}
}

// CleanUpCache gives the cache holding r a chance to evict.
func (r *Row) CleanUpCache() error {
	if r.cache == nil {
		return nil
	}
	return r.cache.CleanUpIfNeeded()
}

// canRemove reports whether the row may leave the cache: rows holding an
// index root stay resident.
func (r *Row) canRemove() bool {
	for n := r.firstNode; n != nil; n = n.nextNode {
		if n.state == nodeActive && n.parent.pos == 0 && n.parent.mem == nil {
			return false
		}
	}
	return true
}

// insertBefore links r into the resident ring in front of before.
func (r *Row) insertBefore(before *Row) {
	if before == nil {
		r.next, r.prev = r, r
		return
	}
	r.next = before
	r.prev = before.prev
	before.prev = r
	r.prev.next = r
}

func (r *Row) unlink() {
	if r.next != nil {
		r.prev.next = r.next
		r.next.prev = r.prev
	}
	r.next, r.prev = nil, nil
}
