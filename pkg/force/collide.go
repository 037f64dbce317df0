package force

import (
	"math"

	"github.com/recera/seurat/pkg/graph"
)

// DefaultCollideRadius is the minimum separation between node centers.
const DefaultCollideRadius = 60

// CollideForce treats each node as a circle and pushes overlapping
// pairs apart. Overlap is tested against anticipated positions
// (position plus velocity) so corrections land where nodes are about
// to be, and the correction is split in proportion to the squared
// radii, moving the smaller node more.
type CollideForce struct {
	nodes []*graph.Node

	radius     float64
	radiusFn   func(*graph.Node) float64
	radii      map[*graph.Node]float64
	order      map[*graph.Node]int
	strength   float64
	iterations int

	random func() float64
}

// NewCollideForce creates a collision force with the default radius,
// full strength, and one resolution pass per tick.
func NewCollideForce() *CollideForce {
	return &CollideForce{
		radius:     DefaultCollideRadius,
		strength:   1,
		iterations: 1,
	}
}

// SetRadius sets the uniform collision radius.
func (f *CollideForce) SetRadius(r float64) {
	f.radius = r
	f.initRadii()
}

// SetRadiusFunc derives each node's collision radius from the node.
func (f *CollideForce) SetRadiusFunc(fn func(*graph.Node) float64) {
	f.radiusFn = fn
	f.initRadii()
}

// SetStrength scales the overlap correction in (0, 1].
func (f *CollideForce) SetStrength(s float64) { f.strength = s }

// SetIterations sets resolution passes per tick; more passes resolve
// dense clusters faster at more cost.
func (f *CollideForce) SetIterations(n int) { f.iterations = n }

// Initialize indexes node order and radii.
func (f *CollideForce) Initialize(nodes []*graph.Node, random func() float64) {
	f.nodes = nodes
	f.random = random
	f.order = make(map[*graph.Node]int, len(nodes))
	for i, n := range nodes {
		f.order[n] = i
	}
	f.initRadii()
}

func (f *CollideForce) initRadii() {
	if f.nodes == nil {
		return
	}
	f.radii = make(map[*graph.Node]float64, len(f.nodes))
	for _, n := range f.nodes {
		if f.radiusFn != nil {
			f.radii[n] = f.radiusFn(n)
		} else {
			f.radii[n] = f.radius
		}
	}
}

// Apply rebuilds the quadtree over anticipated positions and resolves
// overlaps pairwise. Each pair is handled once, keyed by node order.
func (f *CollideForce) Apply(_ float64) {
	for k := 0; k < f.iterations; k++ {
		tree := newQuadtree(f.nodes, anticipatedX, anticipatedY)
		tree.visitAfter(f.prepare)
		for _, n := range f.nodes {
			f.applyNode(tree, n)
		}
	}
}

// prepare annotates every cell with the largest radius beneath it so
// traversal can prune whole subtrees by bounds.
func (f *CollideForce) prepare(c *quadcell) {
	if c.leaf() {
		c.r = f.radii[c.node]
		return
	}
	c.r = 0
	for _, k := range c.kids {
		if k != nil && k.r > c.r {
			c.r = k.r
		}
	}
}

func (f *CollideForce) applyNode(tree *quadtree, node *graph.Node) {
	ri := f.radii[node]
	ri2 := ri * ri
	xi := node.X + node.VX
	yi := node.Y + node.VY
	ni := f.order[node]

	tree.visit(func(c *quadcell, x0, y0, x1, y1 float64) bool {
		if !c.leaf() {
			r := ri + c.r
			return x0 > xi+r || x1 < xi-r || y0 > yi+r || y1 < yi-r
		}

		other := c.node
		if f.order[other] <= ni {
			return true
		}
		rj := c.r
		r := ri + rj
		x := xi - other.X - other.VX
		y := yi - other.Y - other.VY
		l := x*x + y*y
		if l < r*r {
			if x == 0 {
				x = jiggle(f.random)
				l += x * x
			}
			if y == 0 {
				y = jiggle(f.random)
				l += y * y
			}
			l = math.Sqrt(l)
			l = (r - l) / l * f.strength
			x *= l
			y *= l
			rj2 := rj * rj
			share := rj2 / (ri2 + rj2)
			node.VX += x * share
			node.VY += y * share
			other.VX -= x * (1 - share)
			other.VY -= y * (1 - share)
		}
		return true
	})
}
