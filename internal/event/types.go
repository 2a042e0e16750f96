package event

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

const (
	EventModeChanged        = "mode.changed"
	EventRespawn            = "player.respawn"
	EventJoystickVisibility = "joystick.visibility"
	EventPointerCapture     = "pointer.capture"
)

// Names lists every event the controller publishes.
var Names = []string{
	EventModeChanged,
	EventRespawn,
	EventJoystickVisibility,
	EventPointerCapture,
}

type ModeChangedEvent struct {
	ControllerID uuid.UUID
	FirstPerson  bool
	TouchInput   bool
}

type RespawnEvent struct {
	ControllerID uuid.UUID
	// From is the camera position that triggered the reset.
	From mgl64.Vec3
	To   mgl64.Vec3
}

type JoystickVisibilityEvent struct {
	ControllerID uuid.UUID
	Visible      bool
}

type PointerCaptureEvent struct {
	ControllerID uuid.UUID
}
