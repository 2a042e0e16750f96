package input

import "github.com/go-gl/mathgl/mgl64"

const (
	DefaultJoystickTravel = 30.0
	DefaultDeadzone       = 0.1

	joystickSize   = 100.0
	joystickMargin = 50.0
)

// JoystickState is the virtual stick as seen by the rest of the controller.
// Direction has length at most 1; +Y points down the screen.
type JoystickState struct {
	Visible   bool
	Active    bool
	Center    mgl64.Vec2
	Direction mgl64.Vec2
}

type joystick struct {
	JoystickState
	bounds Rect
	seq    int64
	travel float64
}

// JoystickBounds places the widget in the bottom-left corner of a viewport.
func JoystickBounds(viewportW, viewportH float64) Rect {
	return Rect{
		X: joystickMargin,
		Y: viewportH - joystickMargin - joystickSize,
		W: joystickSize,
		H: joystickSize,
	}
}

func (j *joystick) hit(x, y float64) bool {
	return j.Visible && !j.Active && !j.bounds.Empty() && j.bounds.Contains(x, y)
}

func (j *joystick) start(seq int64) {
	cx, cy := j.bounds.Center()
	j.Active = true
	j.seq = seq
	j.Center = mgl64.Vec2{cx, cy}
	j.Direction = mgl64.Vec2{}
}

func (j *joystick) move(x, y float64) {
	offset := mgl64.Vec2{x, y}.Sub(j.Center)
	dist := offset.Len()
	if dist == 0 {
		j.Direction = mgl64.Vec2{}
		return
	}
	travel := min(j.travel, dist)
	j.Direction = offset.Mul(travel / dist / j.travel)
}

func (j *joystick) release() {
	j.Active = false
	j.seq = 0
	j.Direction = mgl64.Vec2{}
}

// Axes converts the stick into forward/strafe. Inside the deadzone on both
// axes it reports false.
func (s JoystickState) Axes(deadzone float64) (forward, strafe float64, ok bool) {
	x, y := s.Direction.X(), s.Direction.Y()
	if abs(x) <= deadzone && abs(y) <= deadzone {
		return 0, 0, false
	}
	return -y, x, true
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
