// Package scene maintains the retained drawable tree for a graph
// view: one shape per link and node, with stable handle ids.
//
// The tree has two mutation rates. Rebuild runs on data change and
// replaces every shape (new handles, new styling). SyncFrame runs once
// per simulation tick and only refreshes coordinates. Display layers
// key their objects on shape ids, so a rebuild tells them to recreate
// everything while a frame sync is a cheap position patch.
package scene

import (
	"math"

	"github.com/recera/seurat/pkg/graph"
)

// Visual constants for node and link rendering.
const (
	DefaultNodeSize     = 5
	ChangedFill         = "#ff7f7f"
	DefaultStroke       = "#fff"
	DefaultStrokeWidth  = 1.5
	SelectedStroke      = "#f00"
	SelectedStrokeWidth = 3
	LinkStroke          = "#999"
	LinkStrokeOpacity   = 0.6
)

// NodeRadius returns the drawn radius for a node's base size.
// Non-positive sizes mean "unset" and take the default.
func NodeRadius(size float64) float64 {
	if size <= 0 {
		size = DefaultNodeSize
	}
	return size * 2
}

// LinkWidth returns the drawn stroke width for a link weight.
// Non-positive weights count as 1.
func LinkWidth(value float64) float64 {
	if value <= 0 {
		value = 1
	}
	return math.Sqrt(value) * 1.5
}

// LinkShape is the drawable for one link.
type LinkShape struct {
	ID     uint32  `json:"id"`
	Source string  `json:"source"`
	Target string  `json:"target"`
	Width  float64 `json:"width"`
	X1     float64 `json:"x1"`
	Y1     float64 `json:"y1"`
	X2     float64 `json:"x2"`
	Y2     float64 `json:"y2"`
}

// NodeShape is the drawable for one node.
type NodeShape struct {
	ID          uint32  `json:"id"`
	NodeID      string  `json:"nodeId"`
	Label       string  `json:"label"`
	Group       string  `json:"group,omitempty"`
	Radius      float64 `json:"radius"`
	Fill        string  `json:"fill"`
	Stroke      string  `json:"stroke"`
	StrokeWidth float64 `json:"strokeWidth"`
	Changed     bool    `json:"changed,omitempty"`
	Selected    bool    `json:"selected,omitempty"`
	Hovered     bool    `json:"-"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
}

// Frame is the per-tick coordinate patch sent to displays: endpoint
// pairs per link and centers per node, in shape order.
type Frame struct {
	Links [][4]float64 `json:"links"`
	Nodes [][2]float64 `json:"nodes"`
	Alpha float64      `json:"alpha"`
}

// Scene is the drawable tree. Links and Nodes are in snapshot order;
// handle ids come from a monotonic arena and are never reused for the
// life of the scene, even across rebuilds.
type Scene struct {
	Links []LinkShape
	Nodes []NodeShape

	palette  *Palette
	nextID   uint32
	byNode   map[string]int
	selected string
	hovered  string
}

// New returns an empty scene with a fresh palette.
func New() *Scene {
	return &Scene{
		palette: NewPalette(),
		byNode:  make(map[string]int),
	}
}

func (s *Scene) allocID() uint32 {
	s.nextID++
	return s.nextID
}

// Rebuild replaces every shape from the snapshot: links first, then
// nodes, each with a fresh handle id and freshly computed styling.
// Selection and hover are cleared since their targets may be gone; the
// palette persists so groups keep their colors.
func (s *Scene) Rebuild(snap *graph.Snapshot) {
	s.Links = s.Links[:0]
	s.Nodes = s.Nodes[:0]
	s.byNode = make(map[string]int, len(snap.Nodes))
	s.selected = ""
	s.hovered = ""

	for _, l := range snap.Links {
		shape := LinkShape{
			ID:     s.allocID(),
			Source: l.Source,
			Target: l.Target,
			Width:  LinkWidth(l.Value),
		}
		if src := l.SourceNode(); src != nil {
			shape.X1, shape.Y1 = src.X, src.Y
		}
		if tgt := l.TargetNode(); tgt != nil {
			shape.X2, shape.Y2 = tgt.X, tgt.Y
		}
		s.Links = append(s.Links, shape)
	}

	for i, n := range snap.Nodes {
		shape := NodeShape{
			ID:      s.allocID(),
			NodeID:  n.ID,
			Label:   n.DisplayLabel(),
			Group:   n.Group,
			Radius:  NodeRadius(n.Size),
			Changed: n.Changed,
			X:       n.X,
			Y:       n.Y,
		}
		// Register the group even when the changed fill wins, so
		// group colors depend only on node order, not change marks.
		shape.Fill = s.palette.Color(n.Group)
		if n.Changed {
			shape.Fill = ChangedFill
		}
		shape.Stroke = DefaultStroke
		shape.StrokeWidth = DefaultStrokeWidth
		s.byNode[n.ID] = i
		s.Nodes = append(s.Nodes, shape)
	}
}

// SyncFrame refreshes shape coordinates from the snapshot's layout
// state. Shape identity and styling are untouched; the snapshot must
// be the one the scene was last rebuilt from.
func (s *Scene) SyncFrame(snap *graph.Snapshot) {
	for i, l := range snap.Links {
		if i >= len(s.Links) {
			break
		}
		if src := l.SourceNode(); src != nil {
			s.Links[i].X1, s.Links[i].Y1 = src.X, src.Y
		}
		if tgt := l.TargetNode(); tgt != nil {
			s.Links[i].X2, s.Links[i].Y2 = tgt.X, tgt.Y
		}
	}
	for i, n := range snap.Nodes {
		if i >= len(s.Nodes) {
			break
		}
		s.Nodes[i].X, s.Nodes[i].Y = n.X, n.Y
	}
}

// SetSelected marks nodeID as the single selected node, restoring the
// previous selection's stroke. It reports whether the node exists; an
// unknown id clears the selection.
func (s *Scene) SetSelected(nodeID string) bool {
	s.clearSelected()
	i, ok := s.byNode[nodeID]
	if !ok {
		return false
	}
	s.Nodes[i].Selected = true
	s.Nodes[i].Stroke = SelectedStroke
	s.Nodes[i].StrokeWidth = SelectedStrokeWidth
	s.selected = nodeID
	return true
}

// ClearSelected removes any selection emphasis.
func (s *Scene) ClearSelected() { s.clearSelected() }

func (s *Scene) clearSelected() {
	if i, ok := s.byNode[s.selected]; ok {
		s.Nodes[i].Selected = false
		s.Nodes[i].Stroke = DefaultStroke
		s.Nodes[i].StrokeWidth = DefaultStrokeWidth
	}
	s.selected = ""
}

// Selected returns the selected node id, if any.
func (s *Scene) Selected() (string, bool) {
	return s.selected, s.selected != ""
}

// SetHovered marks nodeID as hovered; an unknown or empty id clears
// the hover.
func (s *Scene) SetHovered(nodeID string) bool {
	if i, ok := s.byNode[s.hovered]; ok {
		s.Nodes[i].Hovered = false
	}
	s.hovered = ""
	i, ok := s.byNode[nodeID]
	if !ok {
		return false
	}
	s.Nodes[i].Hovered = true
	s.hovered = nodeID
	return true
}

// ClearHovered removes the hover mark.
func (s *Scene) ClearHovered() { s.SetHovered("") }

// Hovered returns the hovered node id, if any.
func (s *Scene) Hovered() (string, bool) {
	return s.hovered, s.hovered != ""
}

// NodeAt hit-tests a world-space point against node circles and
// returns the topmost hit. Later shapes draw on top, so the scan runs
// back to front.
func (s *Scene) NodeAt(x, y float64) (string, bool) {
	for i := len(s.Nodes) - 1; i >= 0; i-- {
		n := &s.Nodes[i]
		dx := x - n.X
		dy := y - n.Y
		if dx*dx+dy*dy <= n.Radius*n.Radius {
			return n.NodeID, true
		}
	}
	return "", false
}

// Shape returns the node shape for a node id.
func (s *Scene) Shape(nodeID string) (*NodeShape, bool) {
	i, ok := s.byNode[nodeID]
	if !ok {
		return nil, false
	}
	return &s.Nodes[i], true
}

// Frame extracts the per-tick coordinate patch. Alpha is left for the
// caller to fill in from the simulation.
func (s *Scene) Frame() Frame {
	f := Frame{
		Links: make([][4]float64, len(s.Links)),
		Nodes: make([][2]float64, len(s.Nodes)),
	}
	for i, l := range s.Links {
		f.Links[i] = [4]float64{l.X1, l.Y1, l.X2, l.Y2}
	}
	for i, n := range s.Nodes {
		f.Nodes[i] = [2]float64{n.X, n.Y}
	}
	return f
}
