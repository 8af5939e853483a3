package index

import (
	"SharpHSQL/dberror"
	"SharpHSQL/storage_engine/cache"
)

// Check walks the whole tree and verifies parent links, balance factors and
// key order. It returns the number of nodes and the tree height.
func (i *Index) Check() (count, height int, err error) {
	if i.root == nil {
		return 0, 0, nil
	}
	if i.root.HasParent() {
		return 0, 0, dberror.Corrupted("index %s: root has a parent", i.name)
	}
	return i.check(i.root, nil, nil)
}

func (i *Index) check(x *cache.Node, low, high []any) (int, int, error) {
	if x == nil {
		return 0, 0, nil
	}
	data := x.Data()
	if low != nil && i.compareRow(low, data) >= 0 {
		return 0, 0, dberror.Corrupted("index %s: key out of order", i.name)
	}
	if high != nil && i.compareRow(data, high) >= 0 {
		return 0, 0, dberror.Corrupted("index %s: key out of order", i.name)
	}

	l, err := x.Left()
	if err != nil {
		return 0, 0, err
	}
	r, err := x.Right()
	if err != nil {
		return 0, 0, err
	}
	for _, c := range []*cache.Node{l, r} {
		if c == nil {
			continue
		}
		p, err := c.Parent()
		if err != nil {
			return 0, 0, err
		}
		if !p.Is(x) {
			return 0, 0, dberror.Corrupted("index %s: broken parent link", i.name)
		}
	}

	ln, lh, err := i.check(l, low, data)
	if err != nil {
		return 0, 0, err
	}
	rn, rh, err := i.check(r, data, high)
	if err != nil {
		return 0, 0, err
	}
	if x.Balance() != rh-lh {
		return 0, 0, dberror.Corrupted("index %s: balance %d, subtree heights %d/%d", i.name, x.Balance(), lh, rh)
	}
	return ln + rn + 1, max(lh, rh) + 1, nil
}
