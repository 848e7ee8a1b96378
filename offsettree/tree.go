// Package offsettree provides an AVL-balanced ordered set of 64-bit byte offsets.
//
// The dataset index keeps one tree per (class, descriptor) stream. Once every
// block offset of a stream has been inserted, together with the closing offset
// that marks the end of the last block, the in-order successor of a block's
// offset is the offset where that block ends.
package offsettree

import (
	"fmt"
	"iter"

	"github.com/arloliu/mgindex/errs"
)

// Node is one element of a Tree.
//
// Children are owned by their parent; the parent link is a back-reference used
// for successor walks and rebalancing.
type Node struct {
	value   uint64
	parent  *Node
	left    *Node
	right   *Node
	balance int8 // height(right) - height(left), always in [-1, 1]
}

// Value returns the offset stored in the node.
func (n *Node) Value() uint64 {
	return n.value
}

// Next returns the in-order successor of n, or nil when n holds the largest value.
func (n *Node) Next() *Node {
	if n == nil {
		return nil
	}
	if n.right != nil {
		return n.right.min()
	}

	child, p := n, n.parent
	for p != nil && child == p.right {
		child, p = p, p.parent
	}

	return p
}

// Prev returns the in-order predecessor of n, or nil when n holds the smallest value.
func (n *Node) Prev() *Node {
	if n == nil {
		return nil
	}
	if n.left != nil {
		return n.left.max()
	}

	child, p := n, n.parent
	for p != nil && child == p.left {
		child, p = p, p.parent
	}

	return p
}

func (n *Node) min() *Node {
	for n.left != nil {
		n = n.left
	}

	return n
}

func (n *Node) max() *Node {
	for n.right != nil {
		n = n.right
	}

	return n
}

// Tree is an ordered set of unique uint64 values. The zero value is an empty tree.
// A Tree is not safe for concurrent mutation.
type Tree struct {
	root *Node
	size int
}

// New returns an empty tree.
func New() *Tree {
	return &Tree{}
}

// Len returns the number of values tracked by insertions.
func (t *Tree) Len() int {
	return t.size
}

// Root returns the root node, or nil for an empty tree.
func (t *Tree) Root() *Node {
	return t.root
}

// Insert adds v to the set. It returns false, leaving the tree unchanged, when v
// is already present.
func (t *Tree) Insert(v uint64) bool {
	if t.root == nil {
		t.root = &Node{value: v}
		t.size++

		return true
	}

	cur := t.root
	var node *Node
	for node == nil {
		switch {
		case v == cur.value:
			return false
		case v < cur.value:
			if cur.left == nil {
				cur.left = &Node{value: v, parent: cur}
				node = cur.left
			} else {
				cur = cur.left
			}
		default:
			if cur.right == nil {
				cur.right = &Node{value: v, parent: cur}
				node = cur.right
			} else {
				cur = cur.right
			}
		}
	}
	t.size++
	t.retrace(node)

	return true
}

// retrace walks from a freshly inserted node towards the root, updating balance
// factors and rotating the first subtree that becomes unbalanced. The walk ends
// as soon as a subtree's height stops growing.
func (t *Tree) retrace(n *Node) {
	for p := n.parent; p != nil; p = n.parent {
		if n == p.left {
			if p.balance < 0 {
				g := p.parent
				var sub *Node
				if n.balance > 0 {
					sub = rotateLeftRight(p, n)
				} else {
					sub = rotateRight(p, n)
				}
				t.replaceChild(g, p, sub)

				return
			}
			if p.balance > 0 {
				p.balance = 0
				return
			}
			p.balance = -1
		} else {
			if p.balance > 0 {
				g := p.parent
				var sub *Node
				if n.balance < 0 {
					sub = rotateRightLeft(p, n)
				} else {
					sub = rotateLeft(p, n)
				}
				t.replaceChild(g, p, sub)

				return
			}
			if p.balance < 0 {
				p.balance = 0
				return
			}
			p.balance = 1
		}
		n = p
	}
}

func (t *Tree) replaceChild(g, old, sub *Node) {
	sub.parent = g
	switch {
	case g == nil:
		t.root = sub
	case g.left == old:
		g.left = sub
	default:
		g.right = sub
	}
}

// rotateLeft lifts z, the right child of x, above x.
func rotateLeft(x, z *Node) *Node {
	inner := z.left
	x.right = inner
	if inner != nil {
		inner.parent = x
	}
	z.left = x
	x.parent = z

	if z.balance == 0 {
		x.balance = 1
		z.balance = -1
	} else {
		x.balance = 0
		z.balance = 0
	}

	return z
}

// rotateRight lifts z, the left child of x, above x.
func rotateRight(x, z *Node) *Node {
	inner := z.right
	x.left = inner
	if inner != nil {
		inner.parent = x
	}
	z.right = x
	x.parent = z

	if z.balance == 0 {
		x.balance = -1
		z.balance = 1
	} else {
		x.balance = 0
		z.balance = 0
	}

	return z
}

// rotateRightLeft handles a right-heavy x whose right child z is left-heavy.
func rotateRightLeft(x, z *Node) *Node {
	y := z.left

	t3 := y.right
	z.left = t3
	if t3 != nil {
		t3.parent = z
	}
	y.right = z
	z.parent = y

	t2 := y.left
	x.right = t2
	if t2 != nil {
		t2.parent = x
	}
	y.left = x
	x.parent = y

	switch {
	case y.balance == 0:
		x.balance, z.balance = 0, 0
	case y.balance > 0:
		x.balance, z.balance = -1, 0
	default:
		x.balance, z.balance = 0, 1
	}
	y.balance = 0

	return y
}

// rotateLeftRight handles a left-heavy x whose left child z is right-heavy.
func rotateLeftRight(x, z *Node) *Node {
	y := z.right

	t3 := y.left
	z.right = t3
	if t3 != nil {
		t3.parent = z
	}
	y.left = z
	z.parent = y

	t2 := y.right
	x.left = t2
	if t2 != nil {
		t2.parent = x
	}
	y.right = x
	x.parent = y

	switch {
	case y.balance == 0:
		x.balance, z.balance = 0, 0
	case y.balance < 0:
		x.balance, z.balance = 1, 0
	default:
		x.balance, z.balance = 0, -1
	}
	y.balance = 0

	return y
}

// Find returns the node holding v, or nil.
func (t *Tree) Find(v uint64) *Node {
	cur := t.root
	for cur != nil {
		switch {
		case v == cur.value:
			return cur
		case v < cur.value:
			cur = cur.left
		default:
			cur = cur.right
		}
	}

	return nil
}

// Contains reports whether v is in the set.
func (t *Tree) Contains(v uint64) bool {
	return t.Find(v) != nil
}

// Min returns the node with the smallest value, or nil for an empty tree.
func (t *Tree) Min() *Node {
	if t.root == nil {
		return nil
	}

	return t.root.min()
}

// Max returns the node with the largest value, or nil for an empty tree.
func (t *Tree) Max() *Node {
	if t.root == nil {
		return nil
	}

	return t.root.max()
}

// Successor returns the smallest value strictly greater than v. v itself need
// not be present in the set.
func (t *Tree) Successor(v uint64) (uint64, bool) {
	var best *Node
	cur := t.root
	for cur != nil {
		if cur.value > v {
			best = cur
			cur = cur.left
		} else {
			cur = cur.right
		}
	}
	if best == nil {
		return 0, false
	}

	return best.value, true
}

// Count walks the whole tree and returns the number of nodes. Use it for
// consistency checks; Len is the constant-time equivalent.
func (t *Tree) Count() int {
	return countNodes(t.root)
}

func countNodes(n *Node) int {
	if n == nil {
		return 0
	}

	return 1 + countNodes(n.left) + countNodes(n.right)
}

// All yields every value in ascending order.
func (t *Tree) All() iter.Seq[uint64] {
	return func(yield func(uint64) bool) {
		for n := t.Min(); n != nil; n = n.Next() {
			if !yield(n.value) {
				return
			}
		}
	}
}

// Check validates parent links, strict ordering, the AVL height invariant and
// the stored balance factors. It returns the height of the tree.
func (t *Tree) Check() (int, error) {
	if t.root != nil && t.root.parent != nil {
		return 0, fmt.Errorf("%w: root has a parent", errs.ErrInconsistentTree)
	}

	h, _, _, err := checkNode(t.root, nil)

	return h, err
}

func checkNode(n, parent *Node) (height int, lo, hi uint64, err error) {
	if n == nil {
		return 0, 0, 0, nil
	}
	if n.parent != parent {
		return 0, 0, 0, fmt.Errorf("%w: broken parent link at %d", errs.ErrInconsistentTree, n.value)
	}

	lh, llo, lhi, err := checkNode(n.left, n)
	if err != nil {
		return 0, 0, 0, err
	}
	rh, rlo, rhi, err := checkNode(n.right, n)
	if err != nil {
		return 0, 0, 0, err
	}

	lo, hi = n.value, n.value
	if n.left != nil {
		if lhi >= n.value {
			return 0, 0, 0, fmt.Errorf("%w: left subtree of %d holds %d", errs.ErrInconsistentTree, n.value, lhi)
		}
		lo = llo
	}
	if n.right != nil {
		if rlo <= n.value {
			return 0, 0, 0, fmt.Errorf("%w: right subtree of %d holds %d", errs.ErrInconsistentTree, n.value, rlo)
		}
		hi = rhi
	}

	diff := rh - lh
	if diff < -1 || diff > 1 {
		return 0, 0, 0, fmt.Errorf("%w: node %d unbalanced by %d", errs.ErrInconsistentTree, n.value, diff)
	}
	if int(n.balance) != diff {
		return 0, 0, 0, fmt.Errorf("%w: node %d stores balance %d, actual %d", errs.ErrInconsistentTree, n.value, n.balance, diff)
	}

	return 1 + max(lh, rh), lo, hi, nil
}
