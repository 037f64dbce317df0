// Package input translates raw pointer gestures into interaction
// commands and owns the view transform. It is pure state: no scene,
// no simulation, no display. The view engine feeds it events and
// applies the commands it returns, which keeps every gesture rule
// testable without a renderer.
package input

// Camera is the render transform: world to screen is a uniform scale
// by K followed by a translation by (X, Y). Node coordinates are
// world-space and never change under zoom or pan.
type Camera struct {
	X, Y float64
	K    float64

	minK, maxK float64
}

// Default zoom scale bounds.
const (
	DefaultMinZoom = 0.1
	DefaultMaxZoom = 10
)

// NewCamera returns an identity camera with scale clamped to
// [minK, maxK]. Non-positive bounds take the defaults.
func NewCamera(minK, maxK float64) *Camera {
	if minK <= 0 {
		minK = DefaultMinZoom
	}
	if maxK <= 0 {
		maxK = DefaultMaxZoom
	}
	return &Camera{K: 1, minK: minK, maxK: maxK}
}

// ScreenToWorld maps a screen point into world coordinates.
func (c *Camera) ScreenToWorld(sx, sy float64) (wx, wy float64) {
	return (sx - c.X) / c.K, (sy - c.Y) / c.K
}

// WorldToScreen maps a world point into screen coordinates.
func (c *Camera) WorldToScreen(wx, wy float64) (sx, sy float64) {
	return wx*c.K + c.X, wy*c.K + c.Y
}

// ZoomAt scales by factor about the screen point (sx, sy): the world
// point under the pointer stays under the pointer. The resulting
// scale is clamped to the camera's bounds.
func (c *Camera) ZoomAt(sx, sy, factor float64) {
	wx, wy := c.ScreenToWorld(sx, sy)
	c.K = c.clamp(c.K * factor)
	c.X = sx - wx*c.K
	c.Y = sy - wy*c.K
}

// SetScale sets the scale directly, clamped, keeping the world point
// at the screen origin fixed.
func (c *Camera) SetScale(k float64) {
	c.K = c.clamp(k)
}

// Pan translates the view by a screen-space delta.
func (c *Camera) Pan(dx, dy float64) {
	c.X += dx
	c.Y += dy
}

// Bounds returns the scale clamp range.
func (c *Camera) Bounds() (minK, maxK float64) { return c.minK, c.maxK }

func (c *Camera) clamp(k float64) float64 {
	if k < c.minK {
		return c.minK
	}
	if k > c.maxK {
		return c.maxK
	}
	return k
}
