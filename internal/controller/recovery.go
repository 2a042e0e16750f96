package controller

import (
	"github.com/Versifine/walker/internal/camera"
	"github.com/Versifine/walker/internal/event"
	"github.com/Versifine/walker/internal/physics"
	"github.com/go-gl/mathgl/mgl64"
)

// Spawn is a capsule placement.
type Spawn struct {
	Start  mgl64.Vec3
	End    mgl64.Vec3
	Radius float64
}

func (s Spawn) Capsule() physics.Capsule {
	return physics.NewCapsule(s.Start, s.End, s.Radius)
}

var (
	spawnStart = mgl64.Vec3{0, 1.35, 15}
	spawnEnd   = mgl64.Vec3{0, 2.8, 15}
)

// DefaultSpawn is where the player starts. Its radius is smaller than the
// one DefaultRecovery resets to.
func DefaultSpawn() Spawn {
	return Spawn{Start: spawnStart, End: spawnEnd, Radius: physics.SpawnRadius}
}

const DefaultFallThreshold = -25.0

// Recovery puts the player back at Reset once the camera falls to
// Threshold or below. The velocity is left alone.
type Recovery struct {
	Threshold float64
	Reset     Spawn
	// PerSubstep checks after every substep instead of once per tick.
	PerSubstep bool
}

func DefaultRecovery() Recovery {
	return Recovery{
		Threshold: DefaultFallThreshold,
		Reset:     Spawn{Start: spawnStart, End: spawnEnd, Radius: physics.ResetRadius},
	}
}

// height is the camera y, or the capsule end y when no camera is attached.
// Must be called with mu held.
func (c *Controller) height() float64 {
	if c.cam != nil {
		return c.cam.Position().Y()
	}
	return c.state.Capsule.End.Y()
}

// recoverIfOutOfBounds must be called with mu held.
func (c *Controller) recoverIfOutOfBounds() bool {
	if c.height() > c.recovery.Threshold {
		return false
	}

	from := c.state.Capsule.End
	if c.cam != nil {
		from = c.cam.Position()
	}
	c.state.Capsule = c.recovery.Reset.Capsule()
	if c.cam != nil {
		c.cam.SetPosition(c.state.Capsule.End)
		c.cam.SetRotation(camera.Rotation{})
	}
	c.respawns++

	c.log.Info("Player out of bounds, respawning", "y", from.Y(), "respawns", c.respawns)
	c.bus.Publish(event.EventRespawn, &event.RespawnEvent{
		ControllerID: c.id,
		From:         from,
		To:           c.state.Capsule.End,
	})
	return true
}
