package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

type State struct {
	Capsule  Capsule
	Velocity mgl64.Vec3
	OnFloor  bool
}

// Substep splits a frame delta into equal substeps. The delta is clamped to
// MaxFrameDelta first; a non-positive or non-finite delta yields zero steps.
func Substep(frameDelta float64, p Params) (float64, int) {
	if math.IsNaN(frameDelta) || math.IsInf(frameDelta, 0) || frameDelta <= 0 {
		return 0, 0
	}
	return math.Min(p.MaxFrameDelta, frameDelta) / float64(p.StepsPerFrame), p.StepsPerFrame
}

// Damping returns the factor applied as v += v*damping for one substep.
// It lies in (-1, 0] so a component never changes sign in a single step.
func Damping(dt float64, onFloor bool, p Params) float64 {
	damping := math.Exp(-p.GroundDampingRate*dt) - 1
	if !onFloor {
		damping *= p.AirDampingFactor
	}
	return damping
}

// Integrate applies gravity, damping and translation for one substep.
func Integrate(state *State, dt float64, p Params) {
	if state == nil || dt <= 0 {
		return
	}
	if !state.OnFloor {
		state.Velocity[1] -= p.Gravity * dt
	}
	state.Velocity = state.Velocity.Add(state.Velocity.Mul(Damping(dt, state.OnFloor, p)))
	state.Capsule.Translate(state.Velocity.Mul(dt))
}

// Step runs one full substep: integration followed by a single collision pass.
func Step(state *State, dt float64, index Index, p Params) {
	Integrate(state, dt, p)
	Resolve(state, index)
}

// SpeedDelta is the velocity a fully deflected input adds in one substep.
func SpeedDelta(dt float64, onFloor bool, p Params) float64 {
	if onFloor {
		return dt * p.GroundAcceleration
	}
	return dt * p.AirAcceleration
}

// Jump sets the vertical velocity when standing. It reports whether it fired.
func Jump(state *State, p Params) bool {
	if state == nil || !state.OnFloor {
		return false
	}
	state.Velocity[1] = p.JumpVelocity
	return true
}
