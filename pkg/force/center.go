package force

import "github.com/recera/seurat/pkg/graph"

// CenterForce keeps the layout's centroid at a fixed point, typically
// the viewport center. It is positional: every tick it shifts all
// positions by the centroid error, ignoring alpha and velocities, so
// the graph cannot drift off screen.
type CenterForce struct {
	nodes    []*graph.Node
	x, y     float64
	strength float64
}

// NewCenterForce creates a centering force targeting (x, y).
func NewCenterForce(x, y float64) *CenterForce {
	return &CenterForce{x: x, y: y, strength: 1}
}

// SetCenter retargets the force, typically on viewport resize.
func (f *CenterForce) SetCenter(x, y float64) { f.x, f.y = x, y }

// Center returns the current target point.
func (f *CenterForce) Center() (x, y float64) { return f.x, f.y }

// SetStrength scales the per-tick correction; 1 snaps the centroid
// exactly, smaller values ease it in.
func (f *CenterForce) SetStrength(s float64) { f.strength = s }

// Initialize records the node list.
func (f *CenterForce) Initialize(nodes []*graph.Node, _ func() float64) {
	f.nodes = nodes
}

// Apply shifts all nodes so the centroid moves toward the target.
func (f *CenterForce) Apply(_ float64) {
	n := len(f.nodes)
	if n == 0 {
		return
	}
	var sx, sy float64
	for _, node := range f.nodes {
		sx += node.X
		sy += node.Y
	}
	sx = (sx/float64(n) - f.x) * f.strength
	sy = (sy/float64(n) - f.y) * f.strength
	for _, node := range f.nodes {
		node.X -= sx
		node.Y -= sy
	}
}
