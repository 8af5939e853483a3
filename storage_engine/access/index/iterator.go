package index

import (
	"SharpHSQL/storage_engine/cache"
	"SharpHSQL/types"
)

// Scan positions an iterator at the first node.
func (i *Index) Scan() *Iterator {
	it := &Iterator{idx: i}
	it.node, it.err = i.First()
	return it
}

// Seek positions an iterator with FindFirst semantics.
func (i *Index) Seek(value any, op types.CompareOp) *Iterator {
	it := &Iterator{idx: i}
	it.node, it.err = i.FindFirst(value, op)
	return it
}

func (it *Iterator) Valid() bool       { return it.err == nil && it.node != nil }
func (it *Iterator) Node() *cache.Node { return it.node }
func (it *Iterator) Row() *cache.Row   { return it.node.Row() }
func (it *Iterator) Err() error        { return it.err }

// Next advances the iterator. Returns false when exhausted or on error.
func (it *Iterator) Next() bool {
	if !it.Valid() {
		return false
	}
	it.node, it.err = it.idx.Next(it.node)
	return it.Valid()
}
