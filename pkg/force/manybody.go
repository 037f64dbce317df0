package force

import (
	"math"

	"github.com/recera/seurat/pkg/graph"
)

// DefaultChargeStrength is the mutual repulsion between nodes.
// Negative pushes apart, positive attracts.
const DefaultChargeStrength = -300

// ManyBodyForce applies a charge between every pair of nodes,
// approximated with a Barnes-Hut quadtree: distant groups of nodes act
// as a single aggregate charge, bringing a tick to O(n log n).
type ManyBodyForce struct {
	nodes []*graph.Node

	strength   float64
	strengthFn func(*graph.Node) float64
	strengths  map[*graph.Node]float64

	distanceMin2 float64
	distanceMax2 float64
	theta2       float64

	random func() float64
}

// NewManyBodyForce creates a repulsive charge with the default
// strength and a 0.9 approximation threshold.
func NewManyBodyForce() *ManyBodyForce {
	return &ManyBodyForce{
		strength:     DefaultChargeStrength,
		distanceMin2: 1,
		distanceMax2: math.Inf(1),
		theta2:       0.81,
	}
}

// SetStrength sets the uniform charge.
func (f *ManyBodyForce) SetStrength(s float64) {
	f.strength = s
	f.initStrengths()
}

// SetStrengthFunc derives each node's charge from the node.
func (f *ManyBodyForce) SetStrengthFunc(fn func(*graph.Node) float64) {
	f.strengthFn = fn
	f.initStrengths()
}

// SetDistanceMin clamps how close two charges can act; avoids huge
// forces between near-coincident nodes.
func (f *ManyBodyForce) SetDistanceMin(d float64) { f.distanceMin2 = d * d }

// SetDistanceMax cuts the charge off beyond d.
func (f *ManyBodyForce) SetDistanceMax(d float64) { f.distanceMax2 = d * d }

// SetTheta sets the Barnes-Hut accuracy knob; smaller is more exact
// and more expensive.
func (f *ManyBodyForce) SetTheta(theta float64) { f.theta2 = theta * theta }

// Initialize indexes per-node charges.
func (f *ManyBodyForce) Initialize(nodes []*graph.Node, random func() float64) {
	f.nodes = nodes
	f.random = random
	f.initStrengths()
}

func (f *ManyBodyForce) initStrengths() {
	if f.nodes == nil {
		return
	}
	f.strengths = make(map[*graph.Node]float64, len(f.nodes))
	for _, n := range f.nodes {
		if f.strengthFn != nil {
			f.strengths[n] = f.strengthFn(n)
		} else {
			f.strengths[n] = f.strength
		}
	}
}

// Apply builds the quadtree for this tick, accumulates aggregate
// charges bottom-up, then adjusts every node's velocity top-down.
func (f *ManyBodyForce) Apply(alpha float64) {
	tree := newQuadtree(f.nodes, nodeX, nodeY)
	tree.visitAfter(f.accumulate)
	for _, n := range f.nodes {
		f.applyNode(tree, n, alpha)
	}
}

func (f *ManyBodyForce) accumulate(c *quadcell) {
	if c.leaf() {
		c.x = c.node.X
		c.y = c.node.Y
		var strength float64
		for q := c; q != nil; q = q.next {
			strength += f.strengths[q.node]
		}
		c.value = strength
		return
	}

	var strength, weight, x, y float64
	for _, k := range c.kids {
		if k == nil {
			continue
		}
		w := math.Abs(k.value)
		if w == 0 {
			continue
		}
		strength += k.value
		weight += w
		x += w * k.x
		y += w * k.y
	}
	c.x = x / weight
	c.y = y / weight
	c.value = strength
}

func (f *ManyBodyForce) applyNode(tree *quadtree, node *graph.Node, alpha float64) {
	tree.visit(func(c *quadcell, x0, _, x1, _ float64) bool {
		if c.value == 0 {
			return true
		}

		x := c.x - node.X
		y := c.y - node.Y
		w := x1 - x0
		l := x*x + y*y

		// Far enough that the whole cell acts as one charge.
		if w*w/f.theta2 < l {
			if l < f.distanceMax2 {
				if x == 0 {
					x = jiggle(f.random)
					l += x * x
				}
				if y == 0 {
					y = jiggle(f.random)
					l += y * y
				}
				if l < f.distanceMin2 {
					l = math.Sqrt(f.distanceMin2 * l)
				}
				node.VX += x * c.value * alpha / l
				node.VY += y * c.value * alpha / l
			}
			return true
		}
		if !c.leaf() || l >= f.distanceMax2 {
			return false
		}

		// Leaf in range: apply each occupant directly.
		if c.node != node || c.next != nil {
			if x == 0 {
				x = jiggle(f.random)
				l += x * x
			}
			if y == 0 {
				y = jiggle(f.random)
				l += y * y
			}
			if l < f.distanceMin2 {
				l = math.Sqrt(f.distanceMin2 * l)
			}
		}
		for q := c; q != nil; q = q.next {
			if q.node == node {
				continue
			}
			w := f.strengths[q.node] * alpha / l
			node.VX += x * w
			node.VY += y * w
		}
		return true
	})
}
