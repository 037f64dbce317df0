package force

import (
	"fmt"
	"math"

	"github.com/recera/seurat/pkg/graph"
)

// DefaultLinkDistance is the rest length of a link spring.
const DefaultLinkDistance = 100

// LinkForce pulls each link's endpoints toward a fixed separation.
// The correction each tick is split between the endpoints in
// proportion to their degrees, so well-connected nodes move less.
//
// Links must carry resolved endpoints (graph.Snapshot.Resolve);
// LinkForce panics on an unresolved link since by then the snapshot
// contract is already broken.
type LinkForce struct {
	links []*graph.Link

	distance   float64
	distanceFn func(*graph.Link) float64
	strengthFn func(*graph.Link) float64
	iterations int

	count     map[*graph.Node]int
	bias      []float64
	strengths []float64
	distances []float64
	random    func() float64
}

// NewLinkForce creates a spring force over links with the default
// rest length and one relaxation pass per tick.
func NewLinkForce(links []*graph.Link) *LinkForce {
	return &LinkForce{
		links:      links,
		distance:   DefaultLinkDistance,
		iterations: 1,
	}
}

// SetDistance sets the uniform rest length.
func (f *LinkForce) SetDistance(d float64) {
	f.distance = d
	f.refresh()
}

// SetDistanceFunc derives each link's rest length from the link.
func (f *LinkForce) SetDistanceFunc(fn func(*graph.Link) float64) {
	f.distanceFn = fn
	f.refresh()
}

// SetStrengthFunc overrides the degree-derived spring strength.
func (f *LinkForce) SetStrengthFunc(fn func(*graph.Link) float64) {
	f.strengthFn = fn
	f.refresh()
}

// SetIterations sets relaxation passes per tick; more passes make a
// stiffer graph.
func (f *LinkForce) SetIterations(n int) { f.iterations = n }

// SetLinks swaps the link set, typically after a graph update.
func (f *LinkForce) SetLinks(links []*graph.Link) {
	f.links = links
	f.refresh()
}

// Initialize records the random source and indexes the link set.
func (f *LinkForce) Initialize(_ []*graph.Node, random func() float64) {
	f.random = random
	f.refresh()
}

func (f *LinkForce) refresh() {
	if f.random == nil {
		return
	}
	f.count = make(map[*graph.Node]int, 2*len(f.links))
	for i, l := range f.links {
		s, t := l.SourceNode(), l.TargetNode()
		if s == nil || t == nil {
			panic(fmt.Sprintf("force: link %d not resolved; Resolve the snapshot before layout", i))
		}
		f.count[s]++
		f.count[t]++
	}
	f.bias = make([]float64, len(f.links))
	f.strengths = make([]float64, len(f.links))
	f.distances = make([]float64, len(f.links))
	for i, l := range f.links {
		cs := float64(f.count[l.SourceNode()])
		ct := float64(f.count[l.TargetNode()])
		f.bias[i] = cs / (cs + ct)
		if f.strengthFn != nil {
			f.strengths[i] = f.strengthFn(l)
		} else {
			f.strengths[i] = 1 / math.Min(cs, ct)
		}
		if f.distanceFn != nil {
			f.distances[i] = f.distanceFn(l)
		} else {
			f.distances[i] = f.distance
		}
	}
}

// Apply relaxes every spring toward its rest length, scaled by alpha.
func (f *LinkForce) Apply(alpha float64) {
	for k := 0; k < f.iterations; k++ {
		for i, link := range f.links {
			s, t := link.SourceNode(), link.TargetNode()
			x := t.X + t.VX - s.X - s.VX
			if x == 0 {
				x = jiggle(f.random)
			}
			y := t.Y + t.VY - s.Y - s.VY
			if y == 0 {
				y = jiggle(f.random)
			}
			l := math.Sqrt(x*x + y*y)
			l = (l - f.distances[i]) / l * alpha * f.strengths[i]
			x *= l
			y *= l
			b := f.bias[i]
			t.VX -= x * b
			t.VY -= y * b
			s.VX += x * (1 - b)
			s.VY += y * (1 - b)
		}
	}
}
