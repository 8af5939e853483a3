package cache

import "github.com/cockroachdb/errors"

func (n *Node) checkActive() {
	if n.state == nodeDeleted {
		panic(errors.AssertionFailedf("node %d of row at %d used after delete", n.index, n.row.pos))
	}
}

func (n *Node) Row() *Row   { return n.row }
func (n *Node) Data() []any { return n.row.data }
func (n *Node) Index() int  { return n.index }

func (n *Node) Balance() int {
	n.checkActive()
	return n.balance
}

func (n *Node) SetBalance(b int) {
	n.checkActive()
	if n.balance != b {
		n.row.changed = true
		n.balance = b
	}
}

func (n *Node) Left() (*Node, error)   { return n.resolve(n.left) }
func (n *Node) Right() (*Node, error)  { return n.resolve(n.right) }
func (n *Node) Parent() (*Node, error) { return n.resolve(n.parent) }

func (n *Node) SetLeft(o *Node)   { n.left = n.linkTo(o) }
func (n *Node) SetRight(o *Node)  { n.right = n.linkTo(o) }
func (n *Node) SetParent(o *Node) { n.parent = n.linkTo(o) }

// HasParent is the cheap test for "is this the root", it does not fault the
// parent row in.
func (n *Node) HasParent() bool {
	n.checkActive()
	return n.parent.pos != 0 || n.parent.mem != nil
}

func (n *Node) resolve(l link) (*Node, error) {
	n.checkActive()
	if l.mem != nil {
		return l.mem, nil
	}
	if l.pos == 0 {
		return nil, nil
	}
	r, err := n.row.cache.GetRow(l.pos, n.row.owner)
	if err != nil {
		return nil, err
	}
	return r.Node(n.index), nil
}

// linkTo marks the row changed before the link is replaced so the new value
// always reaches the data file.
func (n *Node) linkTo(o *Node) link {
	n.checkActive()
	n.row.changed = true
	if o == nil {
		return link{}
	}
	if n.row.cache != nil {
		return link{pos: o.row.pos}
	}
	return link{mem: o}
}

// Is reports whether n and o are the same node. Cached nodes are compared by
// their row's offset since a row may be reloaded as a new object.
func (n *Node) Is(o *Node) bool {
	if n == nil || o == nil {
		return n == o
	}
	if n.row.cache != nil {
		return n.row.pos == o.row.pos && n.index == o.index
	}
	return n == o
}

func (n *Node) IsDeleted() bool { return n.state == nodeDeleted }

// Delete unlinks the node. The row itself is released by Row.Delete.
func (n *Node) Delete() {
	n.checkActive()
	n.row.changed = true
	n.markDeleted()
}

func (n *Node) markDeleted() {
	n.state = nodeDeleted
	n.left, n.right, n.parent = link{}, link{}, link{}
	n.balance = 0
}
