// Package controller drives a first-person player capsule: it merges desktop
// and touch input, integrates motion against a static world and keeps the
// camera on the player.
package controller

import (
	"log/slog"
	"math"
	"sync"

	"github.com/Versifine/walker/internal/camera"
	"github.com/Versifine/walker/internal/event"
	"github.com/Versifine/walker/internal/input"
	"github.com/Versifine/walker/internal/physics"
	"github.com/Versifine/walker/internal/world"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/google/uuid"
)

const maxPitch = math.Pi / 2

type Controller struct {
	mu sync.Mutex

	id       uuid.UUID
	log      *slog.Logger
	bus      *event.Bus
	cam      camera.Handle
	index    physics.Index
	input    *input.State
	capturer PointerCapturer
	touch    bool

	params   physics.Params
	recovery Recovery

	mode     Mode
	state    physics.State
	respawns int
	ticks    uint64
}

// State is a copy of the player's physical state.
type State struct {
	Capsule  physics.Capsule
	Velocity mgl64.Vec3
	OnFloor  bool
	Mode     Mode
}

// New builds the collision index from geom once and places the capsule at
// the spawn point. cam may be nil; look input is ignored until a camera is
// supplied through UpdateCameraReference.
func New(cam camera.Handle, geom world.Geometry, opts ...Option) *Controller {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	c := &Controller{
		id:       uuid.New(),
		bus:      o.bus,
		cam:      cam,
		capturer: o.capturer,
		touch:    o.touch,
		params:   o.params.Sanitized(),
		recovery: o.recovery,
		mode:     Overview,
		state:    physics.State{Capsule: o.spawn.Capsule()},
	}
	c.log = o.log.With("controller", c.id.String())

	if o.index != nil {
		c.index = o.index
	} else {
		tree := world.FromGeometry(geom)
		stats := tree.Stats()
		c.log.Info("Collision index built",
			"triangles", stats.Triangles,
			"skipped", stats.Skipped,
			"nodes", stats.Nodes,
			"depth", stats.Depth,
		)
		c.index = tree
	}

	c.input = input.NewState(o.tuning)
	c.input.SetLogger(c.log)
	c.input.SetSurface(o.surface)
	c.input.SetHitTester(o.hitTester)
	if o.viewport[0] > 0 && o.viewport[1] > 0 {
		c.input.SetJoystickBounds(input.JoystickBounds(o.viewport[0], o.viewport[1]))
	}
	return c
}

func (c *Controller) ID() uuid.UUID {
	return c.id
}

// Input is where the host delivers key, pointer and touch events.
func (c *Controller) Input() *input.State {
	return c.input
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Capsule:  c.state.Capsule,
		Velocity: c.state.Velocity,
		OnFloor:  c.state.OnFloor,
		Mode:     c.mode,
	}
}

// Tick advances the player by one frame of frameDelta seconds. Input is read
// once, look is applied, then the frame runs as fixed substeps. A
// non-positive or non-finite delta does nothing.
func (c *Controller) Tick(frameDelta float64) {
	if c == nil {
		return
	}
	dt, steps := physics.Substep(frameDelta, c.params)
	if steps == 0 {
		return
	}

	c.mu.Lock()
	snap := c.input.Snapshot()
	intent := snap.Intent(c.mode == FirstPerson, c.input.Tuning().Deadzone)

	c.applyLook(intent.Look)
	for i := 0; i < steps; i++ {
		c.applyIntent(intent, dt)
		physics.Step(&c.state, dt, c.index, c.params)
		if c.cam != nil {
			c.cam.SetPosition(c.state.Capsule.End)
		}
		if c.recovery.PerSubstep {
			c.recoverIfOutOfBounds()
		}
	}
	if !c.recovery.PerSubstep {
		c.recoverIfOutOfBounds()
	}
	c.ticks++

	capture := intent.Moving() && !c.touch && !snap.PointerEngaged
	capturer := c.capturer
	c.mu.Unlock()

	if capture {
		c.log.Debug("Requesting pointer capture")
		c.bus.Publish(event.EventPointerCapture, &event.PointerCaptureEvent{ControllerID: c.id})
		if capturer != nil {
			capturer.RequestPointerCapture()
		}
	}
}

// applyLook rotates the camera one delta at a time, clamping pitch after
// each. Must be called with mu held.
func (c *Controller) applyLook(look []input.LookDelta) {
	if c.cam == nil || len(look) == 0 {
		return
	}
	rot := c.cam.Rotation()
	for _, d := range look {
		rot.Yaw += d.Yaw
		rot.Pitch = mgl64.Clamp(rot.Pitch+d.Pitch, -maxPitch, maxPitch)
	}
	c.cam.SetRotation(rot)
}

// applyIntent adds key and stick movement along the camera's horizontal
// axes, then jumps. Must be called with mu held.
func (c *Controller) applyIntent(in input.Intent, dt float64) {
	speed := physics.SpeedDelta(dt, c.state.OnFloor, c.params)
	forward, right := camera.HorizontalBasis(c.cam)

	fwd := (in.Forward + in.StickForward) * speed
	side := (in.Strafe + in.StickStrafe) * speed
	c.state.Velocity = c.state.Velocity.
		Add(forward.Mul(fwd)).
		Add(right.Mul(side))

	if in.Jump {
		physics.Jump(&c.state, c.params)
	}
}
