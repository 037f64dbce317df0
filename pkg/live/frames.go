// Package live serves a view over WebSocket: JSON frames carry the
// scene to browsers and pointer input back to the engine.
//
// The protocol is small. On connect a session receives one "scene"
// message with the full drawable lists, then "frame" messages with
// bare coordinates while the layout is hot. Styling changes ride on
// their own messages ("nodeSelected", "tooltip") so clients restyle
// locally instead of re-receiving every shape.
package live

import (
	"encoding/json"

	"github.com/recera/seurat/pkg/graph"
	"github.com/recera/seurat/pkg/scene"
	"github.com/recera/seurat/pkg/view"
)

// Inbound message types.
const (
	MsgUpdateGraph = "updateGraph"
	MsgResize      = "resize"
	MsgPointerDown = "pointerdown"
	MsgPointerMove = "pointermove"
	MsgPointerUp   = "pointerup"
	MsgWheel       = "wheel"
	MsgSelect      = "select"
)

// Outbound message types.
const (
	MsgScene        = "scene"
	MsgFrame        = "frame"
	MsgTooltip      = "tooltip"
	MsgNodeSelected = "nodeSelected"
	MsgCamera       = "camera"
	MsgError        = "error"
)

// ClientMessage is one inbound frame. Type selects which fields are
// meaningful; the rest stay at their zero values.
type ClientMessage struct {
	Type   string          `json:"type"`
	Graph  json.RawMessage `json:"graph,omitempty"`
	Width  float64         `json:"width,omitempty"`
	Height float64         `json:"height,omitempty"`
	X      float64         `json:"x,omitempty"`
	Y      float64         `json:"y,omitempty"`
	DeltaY float64         `json:"deltaY,omitempty"`
	NodeID string          `json:"nodeId,omitempty"`
}

// SceneMessage carries the full drawable lists plus graph counts.
// Sent on connect and after every accepted graph update.
type SceneMessage struct {
	Type   string            `json:"type"`
	Width  float64           `json:"width"`
	Height float64           `json:"height"`
	Links  []scene.LinkShape `json:"links"`
	Nodes  []scene.NodeShape `json:"nodes"`
	Stats  graph.Stats       `json:"stats"`
}

// FrameMessage carries one tick's coordinates.
type FrameMessage struct {
	Type  string      `json:"type"`
	Frame scene.Frame `json:"frame"`
}

// TooltipMessage carries the hover readout, or a hidden tooltip when
// the pointer leaves a node.
type TooltipMessage struct {
	Type    string       `json:"type"`
	Tooltip view.Tooltip `json:"tooltip"`
}

// SelectedMessage announces the selected node so clients restyle it.
type SelectedMessage struct {
	Type   string `json:"type"`
	NodeID string `json:"nodeId"`
}

// CameraMessage carries the view transform after a pan or zoom.
type CameraMessage struct {
	Type string  `json:"type"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	K    float64 `json:"k"`
}

// ErrorMessage reports a rejected message to its sender.
type ErrorMessage struct {
	Type  string `json:"type"`
	Error string `json:"error"`
}

func encodeScene(v *view.View) ([]byte, error) {
	links, nodes := v.Shapes()
	cfg := v.Config()
	return json.Marshal(SceneMessage{
		Type:   MsgScene,
		Width:  cfg.Width,
		Height: cfg.Height,
		Links:  links,
		Nodes:  nodes,
		Stats:  v.Stats(),
	})
}

func encodeFrame(f scene.Frame) ([]byte, error) {
	return json.Marshal(FrameMessage{Type: MsgFrame, Frame: f})
}

func encodeTooltip(t view.Tooltip) ([]byte, error) {
	return json.Marshal(TooltipMessage{Type: MsgTooltip, Tooltip: t})
}

func encodeSelected(nodeID string) ([]byte, error) {
	return json.Marshal(SelectedMessage{Type: MsgNodeSelected, NodeID: nodeID})
}

func encodeCamera(x, y, k float64) ([]byte, error) {
	return json.Marshal(CameraMessage{Type: MsgCamera, X: x, Y: y, K: k})
}

func encodeError(err error) ([]byte, error) {
	return json.Marshal(ErrorMessage{Type: MsgError, Error: err.Error()})
}
