// Package view coordinates one interactive graph view: a snapshot, a
// force simulation, a retained scene, a camera, and the pointer state
// machine, glued together behind a single mutex.
//
// All mutation funnels through the View's methods, so the engine has
// one writer at a time. The frame driver (driver.go) paces simulation
// ticks on its own goroutine and parks while the layout is settled;
// every other caller (live sessions, the CLI, tests) uses the public
// methods and never touches the internals directly.
package view

import (
	"fmt"
	"log"
	"sync"

	"github.com/recera/seurat/pkg/force"
	"github.com/recera/seurat/pkg/graph"
	"github.com/recera/seurat/pkg/input"
	"github.com/recera/seurat/pkg/scene"
)

// Default canvas size before the first resize.
const (
	DefaultWidth  = 960
	DefaultHeight = 600
)

// dragAlphaTarget keeps the simulation simmering while a node is held.
const dragAlphaTarget = 0.3

const (
	eventBuffer    = 16
	tooltipOffsetX = 10
	tooltipOffsetY = -10
)

// EventNodeSelected tags selection notifications to the host.
const EventNodeSelected = "nodeSelected"

// Event is a notification emitted to the hosting environment.
type Event struct {
	Type   string `json:"type"`
	NodeID string `json:"nodeId"`
}

// Tooltip is the hover readout: the node id line, a detail line with
// the group (or a placeholder), anchored near the pointer.
type Tooltip struct {
	NodeID  string  `json:"nodeId,omitempty"`
	Detail  string  `json:"detail,omitempty"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
	Visible bool    `json:"visible"`
}

// Config sets the physics and viewport parameters. Zero values take
// the defaults.
type Config struct {
	LinkDistance    float64
	ChargeStrength  float64
	CollisionRadius float64
	ZoomMin         float64
	ZoomMax         float64
	Width           float64
	Height          float64
}

func (c Config) withDefaults() Config {
	if c.LinkDistance == 0 {
		c.LinkDistance = force.DefaultLinkDistance
	}
	if c.ChargeStrength == 0 {
		c.ChargeStrength = force.DefaultChargeStrength
	}
	if c.CollisionRadius == 0 {
		c.CollisionRadius = force.DefaultCollideRadius
	}
	if c.ZoomMin == 0 {
		c.ZoomMin = input.DefaultMinZoom
	}
	if c.ZoomMax == 0 {
		c.ZoomMax = input.DefaultMaxZoom
	}
	if c.Width == 0 {
		c.Width = DefaultWidth
	}
	if c.Height == 0 {
		c.Height = DefaultHeight
	}
	return c
}

// View is one interactive graph view instance.
type View struct {
	mu      sync.Mutex
	cfg     Config
	snap    *graph.Snapshot
	sim     *force.Simulation
	scene   *scene.Scene
	camera  *input.Camera
	pointer *input.Dispatcher

	linkForce    *force.LinkForce
	chargeForce  *force.ManyBodyForce
	centerForce  *force.CenterForce
	collideForce *force.CollideForce

	tooltip  Tooltip
	dragging bool
	frameFn  func(scene.Frame)

	events chan Event
	driver *driver
}

// New creates a view with an empty graph. Call Start to launch the
// frame driver, or drive the layout synchronously with Settle.
func New(cfg Config) *View {
	cfg = cfg.withDefaults()
	v := &View{
		cfg:    cfg,
		snap:   &graph.Snapshot{},
		scene:  scene.New(),
		camera: input.NewCamera(cfg.ZoomMin, cfg.ZoomMax),
		events: make(chan Event, eventBuffer),
	}
	v.pointer = input.NewDispatcher(v.camera, v.hitTest)

	v.sim = force.New()
	v.linkForce = force.NewLinkForce(nil)
	v.linkForce.SetDistance(cfg.LinkDistance)
	v.chargeForce = force.NewManyBodyForce()
	v.chargeForce.SetStrength(cfg.ChargeStrength)
	v.centerForce = force.NewCenterForce(cfg.Width/2, cfg.Height/2)
	v.collideForce = force.NewCollideForce()
	v.collideForce.SetRadius(cfg.CollisionRadius)

	v.sim.AddForce("link", v.linkForce)
	v.sim.AddForce("charge", v.chargeForce)
	v.sim.AddForce("center", v.centerForce)
	v.sim.AddForce("collide", v.collideForce)

	v.driver = newDriver(v, defaultFrameInterval)
	return v
}

// Start launches the frame driver goroutine. Safe to call once.
func (v *View) Start() { v.driver.start() }

// Close stops the frame driver. The view remains usable for
// synchronous calls.
func (v *View) Close() { v.driver.close() }

// Events returns the host notification channel. Emission never
// blocks the engine: when the buffer is full the oldest event is
// dropped in favor of the newest.
func (v *View) Events() <-chan Event { return v.events }

// OnFrame registers fn to receive a frame after every simulation
// tick. fn runs outside the engine lock.
func (v *View) OnFrame(fn func(scene.Frame)) {
	v.mu.Lock()
	v.frameFn = fn
	v.mu.Unlock()
}

// UpdateGraph replaces the graph from a JSON snapshot. On any decode
// or resolution error the update is rejected and the prior graph,
// scene, and selection stay exactly as they were.
func (v *View) UpdateGraph(data []byte) error {
	snap, err := graph.Parse(data)
	if err != nil {
		return err
	}
	return v.SetSnapshot(snap)
}

// SetSnapshot replaces the graph with an already-built snapshot. The
// snapshot is (re)resolved first; a resolution error rejects the
// update and leaves the prior state intact. On success the scene is
// rebuilt, in-flight interaction state is discarded, and the
// simulation reheats to full energy.
func (v *View) SetSnapshot(snap *graph.Snapshot) error {
	if snap == nil {
		snap = &graph.Snapshot{}
	}
	if err := snap.Resolve(); err != nil {
		return err
	}

	v.mu.Lock()
	v.snap = snap
	v.sim.SetNodes(snap.Nodes)
	v.linkForce.SetLinks(snap.Links)
	v.scene.Rebuild(snap)
	v.pointer.Reset()
	v.dragging = false
	v.tooltip = Tooltip{}
	v.sim.SetAlphaTarget(0)
	v.sim.Reheat()
	v.mu.Unlock()

	v.driver.wakeUp()
	return nil
}

// Resize moves the centering force to the new viewport center and
// reheats so the layout re-balances. Node positions are untouched. A
// zero-size viewport is degenerate but not an error.
func (v *View) Resize(w, h float64) {
	v.mu.Lock()
	v.cfg.Width, v.cfg.Height = w, h
	v.centerForce.SetCenter(w/2, h/2)
	v.sim.Reheat()
	v.mu.Unlock()

	v.driver.wakeUp()
}

// PointerDown feeds a press at screen (x, y).
func (v *View) PointerDown(x, y float64) {
	v.mu.Lock()
	wake := v.applyLocked(v.pointer.PointerDown(x, y))
	v.mu.Unlock()
	if wake {
		v.driver.wakeUp()
	}
}

// PointerMove feeds a pointer move at screen (x, y).
func (v *View) PointerMove(x, y float64) {
	v.mu.Lock()
	wake := v.applyLocked(v.pointer.PointerMove(x, y))
	v.mu.Unlock()
	if wake {
		v.driver.wakeUp()
	}
}

// PointerUp feeds a release at screen (x, y).
func (v *View) PointerUp(x, y float64) {
	v.mu.Lock()
	wake := v.applyLocked(v.pointer.PointerUp(x, y))
	v.mu.Unlock()
	if wake {
		v.driver.wakeUp()
	}
}

// Wheel feeds a wheel gesture at screen (x, y).
func (v *View) Wheel(x, y, deltaY float64) {
	v.mu.Lock()
	v.applyLocked(v.pointer.Wheel(x, y, deltaY))
	v.mu.Unlock()
}

// applyLocked executes interaction commands against the simulation,
// scene, and camera. Reports whether the frame driver needs a wake.
func (v *View) applyLocked(cmds []input.Command) (wake bool) {
	for _, cmd := range cmds {
		switch cmd.Kind {
		case input.CmdBeginDrag:
			node, ok := v.snap.Node(cmd.NodeID)
			if !ok {
				break
			}
			if !v.dragging {
				v.sim.SetAlphaTarget(dragAlphaTarget)
				wake = true
			}
			v.dragging = true
			node.Pin(node.X, node.Y)

		case input.CmdDragTo:
			if node, ok := v.snap.Node(cmd.NodeID); ok {
				node.Pin(cmd.X, cmd.Y)
				wake = true
			}

		case input.CmdEndDrag:
			if node, ok := v.snap.Node(cmd.NodeID); ok {
				node.Unpin()
			}
			if v.dragging {
				v.dragging = false
				v.sim.SetAlphaTarget(0)
			}

		case input.CmdClick:
			// Background clicks leave the selection alone.
			if cmd.NodeID != "" {
				v.selectLocked(cmd.NodeID)
			}

		case input.CmdPanBy:
			v.camera.Pan(cmd.X, cmd.Y)

		case input.CmdZoomAt:
			v.camera.ZoomAt(cmd.X, cmd.Y, cmd.Factor)

		case input.CmdHover:
			v.hoverLocked(cmd)
		}
	}
	return wake
}

func (v *View) selectLocked(id string) bool {
	if !v.scene.SetSelected(id) {
		return false
	}
	v.emitLocked(Event{Type: EventNodeSelected, NodeID: id})
	return true
}

func (v *View) hoverLocked(cmd input.Command) {
	if cmd.NodeID == "" {
		v.scene.ClearHovered()
		v.tooltip = Tooltip{}
		return
	}
	node, ok := v.snap.Node(cmd.NodeID)
	if !ok {
		return
	}
	v.scene.SetHovered(cmd.NodeID)
	detail := node.Group
	if detail == "" {
		detail = "Module: Unknown"
	}
	v.tooltip = Tooltip{
		NodeID:  node.ID,
		Detail:  detail,
		X:       cmd.X + tooltipOffsetX,
		Y:       cmd.Y + tooltipOffsetY,
		Visible: true,
	}
}

func (v *View) emitLocked(e Event) {
	select {
	case v.events <- e:
		return
	default:
	}
	select {
	case <-v.events:
		log.Printf("[View] event buffer full, dropping oldest")
	default:
	}
	select {
	case v.events <- e:
	default:
	}
}

// hitTest resolves a world point to a node id. Callers hold the
// engine lock (it runs inside dispatcher calls).
func (v *View) hitTest(wx, wy float64) (string, bool) {
	return v.scene.NodeAt(wx, wy)
}

// SelectNode selects a node programmatically and emits the same
// notification a click would.
func (v *View) SelectNode(id string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.selectLocked(id) {
		return fmt.Errorf("select node %q: %w", id, graph.ErrUnknownNode)
	}
	return nil
}

// ClearSelection removes any selection without emitting.
func (v *View) ClearSelection() {
	v.mu.Lock()
	v.scene.ClearSelected()
	v.mu.Unlock()
}

// Selected returns the selected node id, if any.
func (v *View) Selected() (string, bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.scene.Selected()
}

// Tooltip returns the current hover readout.
func (v *View) Tooltip() Tooltip {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.tooltip
}

// Shapes returns copies of the current drawable lists, links then
// nodes, for full scene serialization.
func (v *View) Shapes() ([]scene.LinkShape, []scene.NodeShape) {
	v.mu.Lock()
	defer v.mu.Unlock()
	links := append([]scene.LinkShape(nil), v.scene.Links...)
	nodes := append([]scene.NodeShape(nil), v.scene.Nodes...)
	return links, nodes
}

// Frame returns the current per-tick coordinate patch.
func (v *View) Frame() scene.Frame {
	v.mu.Lock()
	defer v.mu.Unlock()
	f := v.scene.Frame()
	f.Alpha = v.sim.Alpha()
	return f
}

// Stats returns counts for the current graph.
func (v *View) Stats() graph.Stats {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snap.Stats()
}

// Neighbors returns the callers and callees of a node for detail
// panels. The returned nodes are live; treat them as read-only.
func (v *View) Neighbors(id string) (callers, callees []*graph.Node) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.snap.Neighbors(id)
}

// Alpha returns the simulation's current energy term.
func (v *View) Alpha() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.sim.Alpha()
}

// Camera returns a copy of the current view transform.
func (v *View) Camera() input.Camera {
	v.mu.Lock()
	defer v.mu.Unlock()
	return *v.camera
}

// Config returns the effective configuration.
func (v *View) Config() Config {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.cfg
}

// Settle steps the simulation synchronously until it cools or
// maxSteps is reached, then syncs the scene. It returns the number of
// steps taken. Intended for headless rendering; do not mix with a
// started driver.
func (v *View) Settle(maxSteps int) int {
	v.mu.Lock()
	defer v.mu.Unlock()
	steps := 0
	for steps < maxSteps && v.hotLocked() {
		v.sim.Step()
		steps++
	}
	v.scene.SyncFrame(v.snap)
	return steps
}

func (v *View) hotLocked() bool {
	return v.sim.Alpha() >= v.sim.AlphaMin() || v.sim.AlphaTarget() > 0
}

func (v *View) hot() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.hotLocked()
}

// stepFrame advances one tick under the lock and hands back the frame
// plus the registered callback, which the driver invokes unlocked.
func (v *View) stepFrame() (scene.Frame, func(scene.Frame), bool) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if !v.hotLocked() {
		return scene.Frame{}, nil, false
	}
	v.sim.Step()
	v.scene.SyncFrame(v.snap)
	f := v.scene.Frame()
	f.Alpha = v.sim.Alpha()
	return f, v.frameFn, true
}
