// Package camera defines the narrow contract the controller uses to drive a
// camera it does not own, and a default implementation.
package camera

import (
	"math"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
)

// Rotation is an Euler orientation in radians. Yaw turns about +Y, pitch
// about the camera's right axis; zero looks down -Z.
type Rotation struct {
	Pitch float64
	Yaw   float64
	Roll  float64
}

// Handle is implemented by whatever owns the camera (usually the renderer).
type Handle interface {
	Position() mgl64.Vec3
	SetPosition(p mgl64.Vec3)
	Rotation() Rotation
	SetRotation(r Rotation)
	// WorldForward is the unit view direction in world space.
	WorldForward() mgl64.Vec3
}

var WorldUp = mgl64.Vec3{0, 1, 0}

// Forward derives the view direction for a yaw/pitch pair.
func Forward(r Rotation) mgl64.Vec3 {
	sy, cy := math.Sincos(r.Yaw)
	sp, cp := math.Sincos(r.Pitch)
	return mgl64.Vec3{-sy * cp, sp, -cy * cp}
}

// Camera is a free-standing Handle used by headless hosts and tests.
type Camera struct {
	mu       sync.RWMutex
	position mgl64.Vec3
	rotation Rotation
}

var _ Handle = (*Camera)(nil)

func New(position mgl64.Vec3) *Camera {
	return &Camera{position: position}
}

func (c *Camera) Position() mgl64.Vec3 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.position
}

func (c *Camera) SetPosition(p mgl64.Vec3) {
	c.mu.Lock()
	c.position = p
	c.mu.Unlock()
}

func (c *Camera) Rotation() Rotation {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.rotation
}

func (c *Camera) SetRotation(r Rotation) {
	c.mu.Lock()
	c.rotation = r
	c.mu.Unlock()
}

func (c *Camera) WorldForward() mgl64.Vec3 {
	return Forward(c.Rotation())
}

// View returns the world-to-camera matrix.
func (c *Camera) View() mgl64.Mat4 {
	c.mu.RLock()
	pos, rot := c.position, c.rotation
	c.mu.RUnlock()
	return mgl64.LookAtV(pos, pos.Add(Forward(rot)), WorldUp)
}

// HorizontalBasis returns the forward and right directions projected onto the
// ground plane. When the view is vertical the heading comes from yaw alone.
// Both are zero without a camera.
func HorizontalBasis(h Handle) (forward, right mgl64.Vec3) {
	if h == nil {
		return mgl64.Vec3{}, mgl64.Vec3{}
	}
	f := h.WorldForward()
	f[1] = 0
	if l := f.Len(); l >= 1e-9 {
		forward = f.Mul(1 / l)
	} else {
		sy, cy := math.Sincos(h.Rotation().Yaw)
		forward = mgl64.Vec3{-sy, 0, -cy}
	}
	return forward, forward.Cross(WorldUp)
}
