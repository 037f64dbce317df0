package force

import (
	"math"

	"github.com/recera/seurat/pkg/graph"
)

// quadcell is one cell of a quadtree. An internal cell has children; a
// leaf carries a node, with nodes at identical coordinates chained on
// next. Traversals stash their per-cell aggregates here: value/x/y for
// charge accumulation, r for the subtree's maximum collision radius.
type quadcell struct {
	kids [4]*quadcell
	node *graph.Node
	next *quadcell

	value float64
	x, y  float64
	r     float64
}

func (c *quadcell) leaf() bool { return c.node != nil }

// quadtree indexes nodes by point for Barnes-Hut traversal. The
// coordinate accessors are parameters so collision can index
// anticipated positions (x+vx) while charge uses current ones.
type quadtree struct {
	px, py         func(*graph.Node) float64
	x0, y0, x1, y1 float64
	root           *quadcell
}

func nodeX(n *graph.Node) float64 { return n.X }
func nodeY(n *graph.Node) float64 { return n.Y }

func anticipatedX(n *graph.Node) float64 { return n.X + n.VX }
func anticipatedY(n *graph.Node) float64 { return n.Y + n.VY }

func newQuadtree(nodes []*graph.Node, px, py func(*graph.Node) float64) *quadtree {
	t := &quadtree{
		px: px, py: py,
		x0: math.NaN(), y0: math.NaN(),
		x1: math.NaN(), y1: math.NaN(),
	}
	for _, n := range nodes {
		t.add(n)
	}
	return t
}

func (t *quadtree) add(n *graph.Node) {
	x, y := t.px(n), t.py(n)
	if math.IsNaN(x) || math.IsNaN(y) {
		return
	}
	t.cover(x, y)

	leaf := &quadcell{node: n}
	if t.root == nil {
		t.root = leaf
		return
	}

	// Descend to the quadrant the point belongs in.
	x0, y0, x1, y1 := t.x0, t.y0, t.x1, t.y1
	cell := t.root
	var parent *quadcell
	var i int
	for !cell.leaf() {
		xm, ym := (x0+x1)/2, (y0+y1)/2
		i = 0
		if x >= xm {
			i |= 1
			x0 = xm
		} else {
			x1 = xm
		}
		if y >= ym {
			i |= 2
			y0 = ym
		} else {
			y1 = ym
		}
		parent = cell
		cell = cell.kids[i]
		if cell == nil {
			parent.kids[i] = leaf
			return
		}
	}

	// Coincident with the occupying leaf: chain in front of it.
	xp, yp := t.px(cell.node), t.py(cell.node)
	if x == xp && y == yp {
		leaf.next = cell
		if parent == nil {
			t.root = leaf
		} else {
			parent.kids[i] = leaf
		}
		return
	}

	// Split until the new point and the old leaf separate.
	for {
		split := &quadcell{}
		if parent == nil {
			t.root = split
		} else {
			parent.kids[i] = split
		}
		parent = split

		xm, ym := (x0+x1)/2, (y0+y1)/2
		i = 0
		if x >= xm {
			i |= 1
			x0 = xm
		} else {
			x1 = xm
		}
		if y >= ym {
			i |= 2
			y0 = ym
		} else {
			y1 = ym
		}
		j := 0
		if xp >= xm {
			j |= 1
		}
		if yp >= ym {
			j |= 2
		}
		if i != j {
			parent.kids[i] = leaf
			parent.kids[j] = cell
			return
		}
	}
}

// cover grows the extent by doubling until it contains (x, y),
// re-rooting the existing tree into the matching quadrant.
func (t *quadtree) cover(x, y float64) {
	if math.IsNaN(t.x0) {
		t.x0 = math.Floor(x)
		t.y0 = math.Floor(y)
		t.x1 = t.x0 + 1
		t.y1 = t.y0 + 1
		return
	}

	z := t.x1 - t.x0
	if z == 0 {
		z = 1
	}
	node := t.root
	for x < t.x0 || x >= t.x1 || y < t.y0 || y >= t.y1 {
		i := 0
		if x < t.x0 {
			i |= 1
		}
		if y < t.y0 {
			i |= 2
		}
		parent := &quadcell{}
		parent.kids[i] = node
		node = parent
		z *= 2
		switch i {
		case 0:
			t.x1 = t.x0 + z
			t.y1 = t.y0 + z
		case 1:
			t.x0 = t.x1 - z
			t.y1 = t.y0 + z
		case 2:
			t.x1 = t.x0 + z
			t.y0 = t.y1 - z
		case 3:
			t.x0 = t.x1 - z
			t.y0 = t.y1 - z
		}
	}
	if t.root != nil && !t.root.leaf() {
		t.root = node
	}
}

type quadFrame struct {
	cell           *quadcell
	x0, y0, x1, y1 float64
}

// visit walks cells pre-order with their bounds. Returning true from
// fn prunes the cell's children.
func (t *quadtree) visit(fn func(c *quadcell, x0, y0, x1, y1 float64) bool) {
	if t.root == nil {
		return
	}
	stack := []quadFrame{{t.root, t.x0, t.y0, t.x1, t.y1}}
	for len(stack) > 0 {
		q := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if fn(q.cell, q.x0, q.y0, q.x1, q.y1) || q.cell.leaf() {
			continue
		}
		xm, ym := (q.x0+q.x1)/2, (q.y0+q.y1)/2
		if c := q.cell.kids[3]; c != nil {
			stack = append(stack, quadFrame{c, xm, ym, q.x1, q.y1})
		}
		if c := q.cell.kids[2]; c != nil {
			stack = append(stack, quadFrame{c, q.x0, ym, xm, q.y1})
		}
		if c := q.cell.kids[1]; c != nil {
			stack = append(stack, quadFrame{c, xm, q.y0, q.x1, ym})
		}
		if c := q.cell.kids[0]; c != nil {
			stack = append(stack, quadFrame{c, q.x0, q.y0, xm, ym})
		}
	}
}

// visitAfter walks cells post-order: children before their parent.
func (t *quadtree) visitAfter(fn func(c *quadcell)) {
	if t.root == nil {
		return
	}
	stack := []*quadcell{t.root}
	var ordered []*quadcell
	for len(stack) > 0 {
		c := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		ordered = append(ordered, c)
		if c.leaf() {
			continue
		}
		for _, k := range c.kids {
			if k != nil {
				stack = append(stack, k)
			}
		}
	}
	for i := len(ordered) - 1; i >= 0; i-- {
		fn(ordered[i])
	}
}
