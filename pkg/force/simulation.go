// Package force implements a velocity-based force-directed layout
// simulation for call graphs.
//
// A Simulation advances node positions in discrete ticks. Each tick
// cools the alpha term toward its target, applies every registered
// force in registration order, then integrates velocities into
// positions. Nodes with a pinned position (graph.Node.FX/FY set) are
// snapped to the pin and their velocity is zeroed, so forces act on
// the rest of the graph around them.
//
// The simulation is deterministic: ties (coincident nodes, zero-length
// springs) are broken with a tiny jiggle drawn from a fixed-seed
// linear congruential generator, so the same snapshot and config
// produce the same layout on every run.
//
// Simulation is not safe for concurrent use; callers serialize access
// (the view engine runs it on a single goroutine).
package force

import (
	"math"

	"github.com/recera/seurat/pkg/graph"
)

const initialRadius = 10

// Golden angle. Spreads initial placements on a spiral so no two
// start coincident.
var initialAngle = math.Pi * (3 - math.Sqrt(5))

// Force is one layout rule applied every tick.
//
// Initialize is called when the force is added to a simulation and
// again whenever the node set changes. Apply adjusts node velocities
// (or, for positional forces, positions) scaled by the current alpha.
type Force interface {
	Initialize(nodes []*graph.Node, random func() float64)
	Apply(alpha float64)
}

type namedForce struct {
	name  string
	force Force
}

// Simulation owns the node list and the cooling schedule.
type Simulation struct {
	nodes       []*graph.Node
	alpha       float64
	alphaMin    float64
	alphaDecay  float64
	alphaTarget float64

	// velocityKeep is the fraction of velocity retained each tick,
	// 1 - the public friction value.
	velocityKeep float64

	random func() float64
	forces []namedForce
}

// New creates a simulation over nodes with the standard cooling
// schedule: alpha 1, minimum 0.001, decay tuned to settle in ~300
// ticks, friction 0.4. Unpositioned nodes are placed on a phyllotaxis
// spiral around the origin.
func New(nodes ...*graph.Node) *Simulation {
	s := &Simulation{
		nodes:        nodes,
		alpha:        1,
		alphaMin:     0.001,
		alphaDecay:   1 - math.Pow(0.001, 1.0/300),
		alphaTarget:  0,
		velocityKeep: 0.6,
		random:       lcg(),
	}
	s.placeNodes()
	return s
}

// placeNodes seeds positions for nodes that have none. A node at the
// exact origin with zero velocity counts as unplaced; pinned nodes
// snap to their pin.
func (s *Simulation) placeNodes() {
	for i, n := range s.nodes {
		if n.FX != nil {
			n.X = *n.FX
		}
		if n.FY != nil {
			n.Y = *n.FY
		}
		if unplaced(n) {
			radius := initialRadius * math.Sqrt(0.5+float64(i))
			angle := float64(i) * initialAngle
			n.X = radius * math.Cos(angle)
			n.Y = radius * math.Sin(angle)
		}
		if math.IsNaN(n.VX) || math.IsNaN(n.VY) {
			n.VX, n.VY = 0, 0
		}
	}
}

func unplaced(n *graph.Node) bool {
	if math.IsNaN(n.X) || math.IsNaN(n.Y) {
		return true
	}
	return n.X == 0 && n.Y == 0 && n.VX == 0 && n.VY == 0 && n.FX == nil && n.FY == nil
}

// Nodes returns the simulation's node list.
func (s *Simulation) Nodes() []*graph.Node { return s.nodes }

// SetNodes swaps the node list, re-seeds placements, and
// re-initializes every registered force against the new nodes.
func (s *Simulation) SetNodes(nodes []*graph.Node) {
	s.nodes = nodes
	s.placeNodes()
	for _, nf := range s.forces {
		nf.force.Initialize(s.nodes, s.random)
	}
}

// AddForce registers f under name, replacing any force previously
// registered under it. Forces apply in first-registration order.
func (s *Simulation) AddForce(name string, f Force) {
	f.Initialize(s.nodes, s.random)
	for i, nf := range s.forces {
		if nf.name == name {
			s.forces[i].force = f
			return
		}
	}
	s.forces = append(s.forces, namedForce{name: name, force: f})
}

// Force returns the force registered under name, or nil.
func (s *Simulation) Force(name string) Force {
	for _, nf := range s.forces {
		if nf.name == name {
			return nf.force
		}
	}
	return nil
}

// RemoveForce unregisters name. Removing an absent name is a no-op.
func (s *Simulation) RemoveForce(name string) {
	for i, nf := range s.forces {
		if nf.name == name {
			s.forces = append(s.forces[:i], s.forces[i+1:]...)
			return
		}
	}
}

// Step advances the simulation one tick and reports whether the
// simulation is still hot (alpha at or above the minimum). Callers
// stop scheduling ticks once Step returns false and resume after a
// disturbance (Reheat, SetAlphaTarget).
func (s *Simulation) Step() bool {
	s.alpha += (s.alphaTarget - s.alpha) * s.alphaDecay

	for _, nf := range s.forces {
		nf.force.Apply(s.alpha)
	}

	for _, n := range s.nodes {
		if n.FX == nil {
			n.VX *= s.velocityKeep
			n.X += n.VX
		} else {
			n.X = *n.FX
			n.VX = 0
		}
		if n.FY == nil {
			n.VY *= s.velocityKeep
			n.Y += n.VY
		} else {
			n.Y = *n.FY
			n.VY = 0
		}
	}

	return s.alpha >= s.alphaMin
}

// Settled reports whether alpha has cooled below the minimum and no
// target is holding the simulation hot.
func (s *Simulation) Settled() bool {
	return s.alpha < s.alphaMin && s.alphaTarget == 0
}

// Alpha returns the current energy term.
func (s *Simulation) Alpha() float64 { return s.alpha }

// SetAlpha sets the energy term directly.
func (s *Simulation) SetAlpha(v float64) { s.alpha = v }

// AlphaMin returns the settle threshold.
func (s *Simulation) AlphaMin() float64 { return s.alphaMin }

// AlphaTarget returns the value alpha decays toward.
func (s *Simulation) AlphaTarget() float64 { return s.alphaTarget }

// SetAlphaTarget changes the value alpha decays toward. A non-zero
// target keeps the simulation simmering (used while dragging).
func (s *Simulation) SetAlphaTarget(v float64) { s.alphaTarget = v }

// Reheat restores full energy, typically after new data or a resize.
func (s *Simulation) Reheat() { s.alpha = 1 }

// VelocityDecay returns the public friction value in [0, 1].
func (s *Simulation) VelocityDecay() float64 { return 1 - s.velocityKeep }

// SetVelocityDecay sets friction; higher values settle faster.
func (s *Simulation) SetVelocityDecay(v float64) { s.velocityKeep = 1 - v }
