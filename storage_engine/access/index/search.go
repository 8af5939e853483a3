package index

import (
	"SharpHSQL/storage_engine/cache"
	"SharpHSQL/types"
)

// search finds the node whose row equals data on the full key.
func (i *Index) search(data []any) (*cache.Node, error) {
	x := i.root
	for x != nil {
		c := i.compareRow(data, x.Data())
		if c == 0 {
			return x, nil
		}
		var err error
		if c < 0 {
			x, err = x.Left()
		} else {
			x, err = x.Right()
		}
		if err != nil {
			return nil, err
		}
	}
	return nil, nil
}

// Find returns a node whose row matches data on the declared columns. data
// is a full row; only the indexed positions are read.
func (i *Index) Find(data []any) (*cache.Node, error) {
	x := i.root
	for x != nil {
		c := i.compareVisible(data, x.Data())
		if c == 0 {
			return x, nil
		}
		var err error
		if c < 0 {
			x, err = x.Left()
		} else {
			x, err = x.Right()
		}
		if err != nil {
			return nil, err
		}
	}
	return nil, nil
}

// FindFirst returns the first node, in key order, whose first column is
// greater than value (OpGreater), greater or equal (OpGreaterEqual) or equal
// (OpEqual). It descends towards the boundary and then walks forward over
// the nodes that still fall short of it.
func (i *Index) FindFirst(value any, op types.CompareOp) (*cache.Node, error) {
	test := 1
	if op == types.OpGreater {
		test = 0
	}

	x := i.root
	for x != nil {
		var next *cache.Node
		var err error
		if i.compareValue(value, x.Data()) >= test {
			next, err = x.Right()
		} else {
			next, err = x.Left()
		}
		if err != nil {
			return nil, err
		}
		if next == nil {
			break
		}
		x = next
	}

	for x != nil && i.compareValue(value, x.Data()) >= test {
		var err error
		if x, err = i.Next(x); err != nil {
			return nil, err
		}
	}

	if op == types.OpEqual && x != nil && i.compareValue(value, x.Data()) != 0 {
		return nil, nil
	}
	return x, nil
}

// First returns the smallest node or nil for an empty index.
func (i *Index) First() (*cache.Node, error) {
	x := i.root
	for x != nil {
		l, err := x.Left()
		if err != nil {
			return nil, err
		}
		if l == nil {
			break
		}
		x = l
	}
	return x, nil
}

// Next returns the in-order successor of x. Every cleanUpInterval calls it
// lets the cache shrink; x stays usable for reading afterwards.
func (i *Index) Next(x *cache.Node) (*cache.Node, error) {
	i.steps++
	if i.steps%cleanUpInterval == 0 {
		if err := x.Row().CleanUpCache(); err != nil {
			return nil, err
		}
	}

	r, err := x.Right()
	if err != nil {
		return nil, err
	}
	if r != nil {
		x = r
		for {
			l, err := x.Left()
			if err != nil {
				return nil, err
			}
			if l == nil {
				return x, nil
			}
			x = l
		}
	}

	ch := x
	if x, err = x.Parent(); err != nil {
		return nil, err
	}
	for x != nil {
		xr, err := x.Right()
		if err != nil {
			return nil, err
		}
		if !ch.Is(xr) {
			break
		}
		ch = x
		if x, err = x.Parent(); err != nil {
			return nil, err
		}
	}
	return x, nil
}

// Node returns the node of this index in row r.
func (i *Index) Node(r *cache.Row) *cache.Node {
	return r.Node(i.id)
}
