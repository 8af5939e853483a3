package index

import (
	"SharpHSQL/dberror"
	"SharpHSQL/storage_engine/cache"
	"SharpHSQL/types"
)

// way true means left.
func wayToSign(way bool) int {
	if way {
		return 1
	}
	return -1
}

func pick(cond bool, a, b int) int {
	if cond {
		return a
	}
	return b
}

func uniqueViolation(name string) error {
	return dberror.UniqueViolation(name)
}

func (i *Index) child(x *cache.Node, way bool) (*cache.Node, error) {
	if way {
		return x.Left()
	}
	return x.Right()
}

func (i *Index) set(x *cache.Node, way bool, n *cache.Node) {
	if way {
		x.SetLeft(n)
	} else {
		x.SetRight(n)
	}
	if n != nil {
		n.SetParent(x)
	}
}

// replace puts n where x hangs in the tree.
func (i *Index) replace(x, n *cache.Node) error {
	if x.Is(i.root) {
		i.root = n
		if n != nil {
			n.SetParent(nil)
		}
		return nil
	}
	p, err := x.Parent()
	if err != nil {
		return err
	}
	way, err := i.from(x)
	if err != nil {
		return err
	}
	i.set(p, way, n)
	return nil
}

// from reports whether x is the left child of its parent. The root counts
// as a left child.
func (i *Index) from(x *cache.Node) (bool, error) {
	if x.Is(i.root) {
		return true, nil
	}
	p, err := x.Parent()
	if err != nil {
		return false, err
	}
	l, err := p.Left()
	if err != nil {
		return false, err
	}
	return x.Is(l), nil
}

// compareRow compares two rows on the full key.
func (i *Index) compareRow(a, b []any) int {
	for k, c := range i.columns {
		if r := types.Compare(a[c], b[c], i.types[k]); r != 0 {
			return r
		}
	}
	return 0
}

// compareVisible compares two rows on the declared columns only.
func (i *Index) compareVisible(a, b []any) int {
	for k := 0; k < i.visible; k++ {
		c := i.columns[k]
		if r := types.Compare(a[c], b[c], i.types[k]); r != 0 {
			return r
		}
	}
	return 0
}

// compareValue compares v with the first key column of a row.
func (i *Index) compareValue(v any, data []any) int {
	return types.Compare(v, data[i.columns[0]], i.types[0])
}
