package input

import "github.com/go-gl/mathgl/mgl64"

const (
	DefaultTouchSensitivity   = 0.002
	DefaultPointerSensitivity = 1.0 / 500
)

type LookSource int

const (
	LookPointer LookSource = iota
	LookTouch
)

// LookDelta is one rotation request in radians. Deltas are applied in order
// and the pitch is clamped after each one.
type LookDelta struct {
	Yaw    float64
	Pitch  float64
	Source LookSource
}

// TouchLookState is exposed for diagnostics.
type TouchLookState struct {
	Enabled     bool
	Looking     bool
	Last        mgl64.Vec2
	Sensitivity float64
}

type touchLook struct {
	TouchLookState
	seq int64
}

func (t *touchLook) begin(seq int64, x, y float64) {
	t.Looking = true
	t.seq = seq
	t.Last = mgl64.Vec2{x, y}
}

// move returns the rotation for a drag to (x, y).
func (t *touchLook) move(x, y float64) LookDelta {
	dx := x - t.Last.X()
	dy := y - t.Last.Y()
	t.Last = mgl64.Vec2{x, y}
	return LookDelta{
		Yaw:    -dx * t.Sensitivity,
		Pitch:  -dy * t.Sensitivity,
		Source: LookTouch,
	}
}

func (t *touchLook) cancel() {
	t.Looking = false
	t.seq = 0
}
