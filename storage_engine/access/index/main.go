package index

import (
	"SharpHSQL/logging"
	"SharpHSQL/storage_engine/cache"
	"SharpHSQL/types"
)

/*
AVL tree index.

A node's balance is -1 when its left subtree is one level deeper, 1 when the
right one is. Every walk goes through the node accessors, so a link may fault
the row holding the target node in from the data file.

Non-unique indexes carry the primary key columns after their own; the stored
key is therefore unique in every index and a row can always be found again by
its data alone.
*/

// New creates an index on columns of a table with column types colTypes.
// pk lists the primary key columns appended to non-unique indexes.
func New(name string, id int, columns []int, unique bool, pk []int, colTypes []types.ColumnType) *Index {
	cols := append([]int(nil), columns...)
	if !unique {
		for _, c := range pk {
			if !contains(cols, c) {
				cols = append(cols, c)
			}
		}
	}
	ts := make([]types.ColumnType, len(cols))
	for i, c := range cols {
		ts[i] = colTypes[c]
	}
	return &Index{
		name:    name,
		id:      id,
		columns: cols,
		types:   ts,
		visible: len(columns),
		unique:  unique,
		log:     logging.WithComponent("index").With("index", name),
	}
}

func contains(s []int, v int) bool {
	for _, x := range s {
		if x == v {
			return true
		}
	}
	return false
}

func (i *Index) Name() string      { return i.name }
func (i *Index) ID() int           { return i.id }
func (i *Index) IsUnique() bool    { return i.unique }
func (i *Index) Root() *cache.Node { return i.root }

// Columns returns the visible key columns.
func (i *Index) Columns() []int { return i.columns[:i.visible] }

// SetRoot installs a root found by other means, e.g. read from the script
// of a cached table.
func (i *Index) SetRoot(n *cache.Node) { i.root = n }

// Insert links n into the tree. It fails with a unique violation when a
// node with an equal key exists.
func (i *Index) Insert(n *cache.Node) error {
	data := n.Data()
	x := i.root
	if x == nil {
		i.root = n
		return nil
	}

	var way bool
	for {
		c := i.compareRow(data, x.Data())
		if c == 0 {
			return uniqueViolation(i.name)
		}
		way = c < 0
		next, err := i.child(x, way)
		if err != nil {
			return err
		}
		if next == nil {
			break
		}
		x = next
	}
	i.set(x, way, n)

	for {
		sign := wayToSign(way)
		switch x.Balance() * sign {
		case 1:
			x.SetBalance(0)
			return nil
		case 0:
			x.SetBalance(-sign)
		case -1:
			return i.rebalanceInsert(x, way, sign)
		}

		if x.Is(i.root) {
			return nil
		}
		var err error
		if way, err = i.from(x); err != nil {
			return err
		}
		if x, err = x.Parent(); err != nil {
			return err
		}
	}
}

func (i *Index) rebalanceInsert(x *cache.Node, way bool, sign int) error {
	l, err := i.child(x, way)
	if err != nil {
		return err
	}

	if l.Balance() == -sign {
		// single rotation
		if err := i.replace(x, l); err != nil {
			return err
		}
		lc, err := i.child(l, !way)
		if err != nil {
			return err
		}
		i.set(x, way, lc)
		i.set(l, !way, x)
		x.SetBalance(0)
		l.SetBalance(0)
		return nil
	}

	// double rotation
	r, err := i.child(l, !way)
	if err != nil {
		return err
	}
	if err := i.replace(x, r); err != nil {
		return err
	}
	rw, err := i.child(r, way)
	if err != nil {
		return err
	}
	i.set(l, !way, rw)
	i.set(r, way, l)
	rn, err := i.child(r, !way)
	if err != nil {
		return err
	}
	i.set(x, way, rn)
	i.set(r, !way, x)

	rb := r.Balance()
	x.SetBalance(pick(rb == -sign, sign, 0))
	l.SetBalance(pick(rb == sign, -sign, 0))
	r.SetBalance(0)
	return nil
}

// Delete unlinks the node of the row holding data. With alsoFreeData the
// row's space in the data file is released as well.
func (i *Index) Delete(data []any, alsoFreeData bool) error {
	x, err := i.search(data)
	if err != nil || x == nil {
		return err
	}

	left, err := x.Left()
	if err != nil {
		return err
	}
	right, err := x.Right()
	if err != nil {
		return err
	}

	var n *cache.Node
	switch {
	case left == nil:
		n = right
	case right == nil:
		n = left
	default:
		if x, n, err = i.swapWithPredecessor(x, left); err != nil {
			return err
		}
	}

	way, err := i.from(x)
	if err != nil {
		return err
	}
	if err := i.replace(x, n); err != nil {
		return err
	}
	if n, err = x.Parent(); err != nil {
		return err
	}
	x.Delete()
	if alsoFreeData {
		x.Row().Delete()
	}

	for n != nil {
		x = n
		sign := wayToSign(way)
		switch x.Balance() * sign {
		case -1:
			x.SetBalance(0)
		case 0:
			x.SetBalance(sign)
			return nil
		case 1:
			var done bool
			if x, done, err = i.rebalanceDelete(x, way, sign); err != nil || done {
				return err
			}
		}

		if way, err = i.from(x); err != nil {
			return err
		}
		if n, err = x.Parent(); err != nil {
			return err
		}
	}
	return nil
}

// swapWithPredecessor moves d's in-order predecessor into d's place in the
// tree and d into the predecessor's. Balances are exchanged, the data stays
// with its row. It returns d, now with at most a left child, and that child.
func (i *Index) swapWithPredecessor(d, left *cache.Node) (*cache.Node, *cache.Node, error) {
	x := left
	for {
		r, err := x.Right()
		if err != nil {
			return nil, nil, err
		}
		if r == nil {
			break
		}
		x = r
	}

	n, err := x.Left()
	if err != nil {
		return nil, nil, err
	}
	b := x.Balance()
	x.SetBalance(d.Balance())
	d.SetBalance(b)

	xp, err := x.Parent()
	if err != nil {
		return nil, nil, err
	}
	dp, err := d.Parent()
	if err != nil {
		return nil, nil, err
	}
	dl, err := d.Left()
	if err != nil {
		return nil, nil, err
	}
	dr, err := d.Right()
	if err != nil {
		return nil, nil, err
	}

	if d.Is(i.root) {
		i.root = x
	}
	x.SetParent(dp)
	if dp != nil {
		dpr, err := dp.Right()
		if err != nil {
			return nil, nil, err
		}
		if dpr.Is(d) {
			dp.SetRight(x)
		} else {
			dp.SetLeft(x)
		}
	}

	if xp.Is(d) {
		// x was d's left child
		d.SetParent(x)
		x.SetLeft(d)
		x.SetRight(dr)
	} else {
		d.SetParent(xp)
		xp.SetRight(d)
		x.SetRight(dr)
		x.SetLeft(dl)
		dl.SetParent(x)
	}
	dr.SetParent(x)

	d.SetLeft(n)
	if n != nil {
		n.SetParent(d)
	}
	d.SetRight(nil)
	return d, n, nil
}

// rebalanceDelete rotates at x after its way side lost a level. It returns
// the subtree root to continue from and whether the height is unchanged.
func (i *Index) rebalanceDelete(x *cache.Node, way bool, sign int) (*cache.Node, bool, error) {
	r, err := i.child(x, !way)
	if err != nil {
		return nil, false, err
	}
	b := r.Balance()

	if b*sign >= 0 {
		if err := i.replace(x, r); err != nil {
			return nil, false, err
		}
		rc, err := i.child(r, way)
		if err != nil {
			return nil, false, err
		}
		i.set(x, !way, rc)
		i.set(r, way, x)
		if b == 0 {
			x.SetBalance(sign)
			r.SetBalance(-sign)
			return r, true, nil
		}
		x.SetBalance(0)
		r.SetBalance(0)
		return r, false, nil
	}

	l, err := i.child(r, way)
	if err != nil {
		return nil, false, err
	}
	if err := i.replace(x, l); err != nil {
		return nil, false, err
	}
	b = l.Balance()
	lc, err := i.child(l, !way)
	if err != nil {
		return nil, false, err
	}
	i.set(r, way, lc)
	i.set(l, !way, r)
	lw, err := i.child(l, way)
	if err != nil {
		return nil, false, err
	}
	i.set(x, !way, lw)
	i.set(l, way, x)
	x.SetBalance(pick(b == sign, -sign, 0))
	r.SetBalance(pick(b == -sign, sign, 0))
	l.SetBalance(0)
	return l, false, nil
}
