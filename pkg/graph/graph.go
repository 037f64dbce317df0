// Package graph defines the call-graph data model shared by the force
// simulation, the scene renderer, and the live wire protocol.
//
// A Snapshot is the unit of exchange with the hosting environment: the
// host produces nodes and links (typically as JSON), the engine resolves
// link endpoints and owns all derived layout state from then on. A new
// snapshot fully replaces the prior one; layout fields on the old nodes
// are simply abandoned with them.
package graph

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrDuplicateID reports two nodes sharing one identity.
	ErrDuplicateID = errors.New("duplicate node id")
	// ErrUnknownNode reports a link endpoint missing from the node set.
	ErrUnknownNode = errors.New("unknown node id")
)

// Node is one code entity (a function, in call-graph usage).
//
// ID, Label, Group, Size, and Changed come from the host. The layout
// fields are owned by the simulation: X/Y is the current position,
// VX/VY the current velocity, and FX/FY, when non-nil, pin the node to
// a fixed position (dragging) overriding force-driven movement.
type Node struct {
	ID      string  `json:"id"`
	Label   string  `json:"label,omitempty"`
	Group   string  `json:"group,omitempty"`
	Size    float64 `json:"size,omitempty"`
	Changed bool    `json:"changed,omitempty"`

	X  float64  `json:"-"`
	Y  float64  `json:"-"`
	VX float64  `json:"-"`
	VY float64  `json:"-"`
	FX *float64 `json:"-"`
	FY *float64 `json:"-"`
}

// DisplayLabel returns the label, falling back to the id.
func (n *Node) DisplayLabel() string {
	if n.Label != "" {
		return n.Label
	}
	return n.ID
}

// Pin fixes the node at (x, y) until Unpin.
func (n *Node) Pin(x, y float64) {
	fx, fy := x, y
	n.FX = &fx
	n.FY = &fy
}

// Unpin releases a pinned node back to force-driven movement.
func (n *Node) Unpin() {
	n.FX = nil
	n.FY = nil
}

// Link is a call/reference relationship between two nodes. Source and
// Target carry node identities on the wire; Resolve binds the endpoint
// pointers before layout begins.
type Link struct {
	Source string  `json:"source"`
	Target string  `json:"target"`
	Value  float64 `json:"value,omitempty"`

	source *Node
	target *Node
}

// SourceNode returns the resolved source endpoint, nil before Resolve.
func (l *Link) SourceNode() *Node { return l.source }

// TargetNode returns the resolved target endpoint, nil before Resolve.
func (l *Link) TargetNode() *Node { return l.target }

// Snapshot is one complete graph handed over by the host. An empty
// node set is valid and renders an empty scene.
type Snapshot struct {
	Nodes []*Node `json:"nodes"`
	Links []*Link `json:"links"`

	byID map[string]*Node
}

// Stats summarizes a snapshot for status surfaces.
type Stats struct {
	Nodes   int `json:"nodes"`
	Links   int `json:"links"`
	Changed int `json:"changed"`
}

// Parse decodes a JSON snapshot and resolves link endpoints. The
// returned snapshot is ready for simulation. On any error the input is
// rejected wholesale.
func Parse(data []byte) (*Snapshot, error) {
	var s Snapshot
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	if err := s.Resolve(); err != nil {
		return nil, err
	}
	return &s, nil
}

// Resolve indexes nodes by id and binds every link's endpoint
// pointers. It validates the whole snapshot before mutating it, so a
// snapshot that fails Resolve is left exactly as it was and the caller
// can keep using its previous graph.
func (s *Snapshot) Resolve() error {
	byID := make(map[string]*Node, len(s.Nodes))
	for _, n := range s.Nodes {
		if _, dup := byID[n.ID]; dup {
			return fmt.Errorf("node %q: %w", n.ID, ErrDuplicateID)
		}
		byID[n.ID] = n
	}
	for i, l := range s.Links {
		if _, ok := byID[l.Source]; !ok {
			return fmt.Errorf("link %d source %q: %w", i, l.Source, ErrUnknownNode)
		}
		if _, ok := byID[l.Target]; !ok {
			return fmt.Errorf("link %d target %q: %w", i, l.Target, ErrUnknownNode)
		}
	}
	for _, l := range s.Links {
		l.source = byID[l.Source]
		l.target = byID[l.Target]
	}
	s.byID = byID
	return nil
}

// Clone returns a deep copy sharing nothing with the original, so a
// cached snapshot can be handed out repeatedly without aliasing its
// layout state. A resolved original yields a resolved clone.
func (s *Snapshot) Clone() *Snapshot {
	c := &Snapshot{
		Nodes: make([]*Node, len(s.Nodes)),
		Links: make([]*Link, len(s.Links)),
	}
	for i, n := range s.Nodes {
		cn := *n
		if n.FX != nil {
			fx := *n.FX
			cn.FX = &fx
		}
		if n.FY != nil {
			fy := *n.FY
			cn.FY = &fy
		}
		c.Nodes[i] = &cn
	}
	for i, l := range s.Links {
		c.Links[i] = &Link{Source: l.Source, Target: l.Target, Value: l.Value}
	}
	if s.byID != nil {
		if err := c.Resolve(); err != nil {
			panic("graph: clone of resolved snapshot failed to resolve: " + err.Error())
		}
	}
	return c
}

// Node looks up a node by id. Valid after Resolve.
func (s *Snapshot) Node(id string) (*Node, bool) {
	n, ok := s.byID[id]
	return n, ok
}

// Degree counts links touching id in either direction.
func (s *Snapshot) Degree(id string) int {
	d := 0
	for _, l := range s.Links {
		if l.Source == id {
			d++
		}
		if l.Target == id {
			d++
		}
	}
	return d
}

// Neighbors splits the nodes adjacent to id into callers (links whose
// target is id) and callees (links whose source is id), in link order.
func (s *Snapshot) Neighbors(id string) (callers, callees []*Node) {
	for _, l := range s.Links {
		if l.Target == id && l.source != nil {
			callers = append(callers, l.source)
		}
		if l.Source == id && l.target != nil {
			callees = append(callees, l.target)
		}
	}
	return callers, callees
}

// Stats returns node, link, and changed-node counts.
func (s *Snapshot) Stats() Stats {
	st := Stats{Nodes: len(s.Nodes), Links: len(s.Links)}
	for _, n := range s.Nodes {
		if n.Changed {
			st.Changed++
		}
	}
	return st
}

// MarshalIndent encodes the snapshot as indented JSON for export.
func (s *Snapshot) MarshalIndent() ([]byte, error) {
	out, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return out, nil
}

// Sample returns the built-in demo call graph used by the demo command
// and the docs.
func Sample() *Snapshot {
	s := &Snapshot{
		Nodes: []*Node{
			{ID: "main", Label: "main()", Group: "main", Size: 8},
			{ID: "process_data", Label: "process_data()", Group: "core", Size: 6},
			{ID: "analyze_results", Label: "analyze_results()", Group: "analysis", Size: 5},
			{ID: "calculate_average", Label: "calculate_average()", Group: "error", Size: 4, Changed: true},
			{ID: "generate_report", Label: "generate_report()", Group: "io", Size: 5},
		},
		Links: []*Link{
			{Source: "main", Target: "process_data", Value: 2},
			{Source: "process_data", Target: "analyze_results", Value: 1},
			{Source: "main", Target: "calculate_average", Value: 1},
			{Source: "analyze_results", Target: "generate_report", Value: 1},
		},
	}
	if err := s.Resolve(); err != nil {
		panic("graph: sample snapshot invalid: " + err.Error())
	}
	return s
}
