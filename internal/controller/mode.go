package controller

import (
	"github.com/Versifine/walker/internal/camera"
	"github.com/Versifine/walker/internal/event"
	"github.com/Versifine/walker/internal/input"
	"github.com/Versifine/walker/internal/world"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

type Mode int

const (
	Overview Mode = iota
	FirstPerson
)

func (m Mode) String() string {
	switch m {
	case Overview:
		return "overview"
	case FirstPerson:
		return "first-person"
	default:
		return "unknown"
	}
}

func (c *Controller) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// SetFirstPersonMode switches between Overview and FirstPerson. Entering
// first person on a touch host shows the joystick and enables touch look.
// Leaving it hides the joystick and cancels any look gesture before
// returning, so touch moves after the call no longer rotate the camera.
func (c *Controller) SetFirstPersonMode(firstPerson bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if firstPerson {
		c.mode = FirstPerson
		if c.touch {
			c.input.ShowJoystick()
			c.input.EnableTouchLook()
			c.publishJoystick(true)
		}
	} else {
		c.mode = Overview
		c.input.HideJoystick()
		c.input.DisableTouchLook()
		c.publishJoystick(false)
	}

	c.log.Info("Camera mode set", "mode", c.mode.String(), "touch", c.touch)
	c.bus.Publish(event.EventModeChanged, &event.ModeChangedEvent{
		ControllerID: c.id,
		FirstPerson:  firstPerson,
		TouchInput:   c.touch,
	})
}

// UpdateCameraReference points the controller at another camera without
// changing mode. A nil camera makes look input inert.
func (c *Controller) UpdateCameraReference(cam camera.Handle) {
	c.mu.Lock()
	c.cam = cam
	c.mu.Unlock()
	c.log.Debug("Camera reference updated", "attached", cam != nil)
}

func (c *Controller) ShowMobileControls() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.input.ShowJoystick()
	c.publishJoystick(true)
}

func (c *Controller) HideMobileControls() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.input.HideJoystick()
	c.publishJoystick(false)
}

func (c *Controller) publishJoystick(visible bool) {
	c.bus.Publish(event.EventJoystickVisibility, &event.JoystickVisibilityEvent{
		ControllerID: c.id,
		Visible:      visible,
	})
}

// DebugState is a diagnostic dump of the controller.
type DebugState struct {
	ID             uuid.UUID
	Mode           Mode
	TouchInput     bool
	TouchLook      input.TouchLookState
	Joystick       input.JoystickState
	PointerEngaged bool
	CameraAttached bool
	Position       mgl64.Vec3
	Velocity       mgl64.Vec3
	OnFloor        bool
	Respawns       int
	Ticks          uint64
	Octree         world.OctreeStats
}

func (c *Controller) DebugState() DebugState {
	c.mu.Lock()
	defer c.mu.Unlock()
	ds := DebugState{
		ID:             c.id,
		Mode:           c.mode,
		TouchInput:     c.touch,
		TouchLook:      c.input.TouchLook(),
		Joystick:       c.input.Joystick(),
		PointerEngaged: c.input.PointerEngaged(),
		CameraAttached: c.cam != nil,
		Position:       c.state.Capsule.End,
		Velocity:       c.state.Velocity,
		OnFloor:        c.state.OnFloor,
		Respawns:       c.respawns,
		Ticks:          c.ticks,
	}
	if tree, ok := c.index.(*world.Octree); ok {
		ds.Octree = tree.Stats()
	}
	return ds
}
