package input

// CommandKind tags an interaction command.
type CommandKind uint8

const (
	CmdNone CommandKind = iota
	// CmdBeginDrag starts dragging NodeID; X, Y is the world grab point.
	CmdBeginDrag
	// CmdDragTo moves the dragged node's pin to world (X, Y).
	CmdDragTo
	// CmdEndDrag releases the dragged node.
	CmdEndDrag
	// CmdClick is a press-and-release without movement. NodeID is the
	// clicked node, empty for the background. X, Y is screen-space.
	CmdClick
	// CmdPanBy pans the camera by a screen-space delta (X, Y).
	CmdPanBy
	// CmdZoomAt scales the camera by Factor about screen (X, Y).
	CmdZoomAt
	// CmdHover enters a node (NodeID, pointer at screen X, Y) or, with
	// an empty NodeID, leaves it.
	CmdHover
)

// Command is one interaction outcome for the view engine to apply.
type Command struct {
	Kind   CommandKind
	NodeID string
	X, Y   float64
	Factor float64
}

// Pointer gesture tuning.
const (
	// clickSlop2 is the squared screen distance, in px, beyond which a
	// press counts as a drag rather than a click.
	clickSlop2 = 9
	// wheelScale divides wheel deltaY into a zoom step, clamped to a
	// half step either way.
	wheelScale = 500
)

type phase uint8

const (
	phaseIdle phase = iota
	phaseDragNode
	phasePan
)

// Dispatcher is the pointer state machine. It distinguishes node
// drags from background pans at pointer-down, tracks the 3px slop
// that separates clicks from drags, and reports hover transitions
// while idle.
type Dispatcher struct {
	camera *Camera
	hit    func(wx, wy float64) (string, bool)

	phase        phase
	dragID       string
	hoverID      string
	downX, downY float64
	lastX, lastY float64
	moved        bool
}

// NewDispatcher creates a dispatcher that resolves pointer positions
// through camera and hit-tests world points with hit.
func NewDispatcher(camera *Camera, hit func(wx, wy float64) (string, bool)) *Dispatcher {
	return &Dispatcher{camera: camera, hit: hit}
}

// PointerDown begins a node drag when the pointer lands on a node,
// otherwise a background pan. A drag begins immediately: even a
// click-in-place pins the node for its duration, and the click is
// reported at release.
func (d *Dispatcher) PointerDown(sx, sy float64) []Command {
	d.downX, d.downY = sx, sy
	d.lastX, d.lastY = sx, sy
	d.moved = false

	cmds := d.leaveHover(nil)
	wx, wy := d.camera.ScreenToWorld(sx, sy)
	if id, ok := d.hit(wx, wy); ok {
		d.phase = phaseDragNode
		d.dragID = id
		return append(cmds, Command{Kind: CmdBeginDrag, NodeID: id, X: wx, Y: wy})
	}
	d.phase = phasePan
	return cmds
}

// PointerMove continues the gesture in progress, or tracks hover when
// no button is down.
func (d *Dispatcher) PointerMove(sx, sy float64) []Command {
	dx, dy := sx-d.lastX, sy-d.lastY
	d.lastX, d.lastY = sx, sy

	if d.phase != phaseIdle {
		tx, ty := sx-d.downX, sy-d.downY
		if tx*tx+ty*ty > clickSlop2 {
			d.moved = true
		}
	}

	switch d.phase {
	case phaseDragNode:
		wx, wy := d.camera.ScreenToWorld(sx, sy)
		return []Command{{Kind: CmdDragTo, NodeID: d.dragID, X: wx, Y: wy}}
	case phasePan:
		if dx == 0 && dy == 0 {
			return nil
		}
		return []Command{{Kind: CmdPanBy, X: dx, Y: dy}}
	default:
		wx, wy := d.camera.ScreenToWorld(sx, sy)
		id, ok := d.hit(wx, wy)
		if !ok {
			return d.leaveHover(nil)
		}
		if id == d.hoverID {
			return nil
		}
		cmds := d.leaveHover(nil)
		d.hoverID = id
		return append(cmds, Command{Kind: CmdHover, NodeID: id, X: sx, Y: sy})
	}
}

// PointerUp ends the gesture. A drag always ends with CmdEndDrag; if
// the pointer never left the click slop, a CmdClick follows so the
// release also selects.
func (d *Dispatcher) PointerUp(sx, sy float64) []Command {
	ended := d.phase
	d.phase = phaseIdle

	switch ended {
	case phaseDragNode:
		id := d.dragID
		d.dragID = ""
		cmds := []Command{{Kind: CmdEndDrag, NodeID: id}}
		if !d.moved {
			cmds = append(cmds, Command{Kind: CmdClick, NodeID: id, X: sx, Y: sy})
		}
		return cmds
	case phasePan:
		if !d.moved {
			return []Command{{Kind: CmdClick, X: sx, Y: sy}}
		}
	}
	return nil
}

// Wheel converts a wheel delta into a zoom command about the pointer.
// Scrolling up (negative deltaY) zooms in.
func (d *Dispatcher) Wheel(sx, sy, deltaY float64) []Command {
	step := deltaY / wheelScale
	if step > 0.5 {
		step = 0.5
	} else if step < -0.5 {
		step = -0.5
	}
	return []Command{{Kind: CmdZoomAt, X: sx, Y: sy, Factor: 1 - step}}
}

// Dragging reports the node id of a drag in progress.
func (d *Dispatcher) Dragging() (string, bool) {
	return d.dragID, d.phase == phaseDragNode
}

// Reset drops gesture and hover state, used when the graph under the
// pointer is replaced.
func (d *Dispatcher) Reset() {
	d.phase = phaseIdle
	d.dragID = ""
	d.hoverID = ""
	d.moved = false
}

func (d *Dispatcher) leaveHover(cmds []Command) []Command {
	if d.hoverID == "" {
		return cmds
	}
	d.hoverID = ""
	return append(cmds, Command{Kind: CmdHover})
}
