package input

// Snapshot is the input state for one tick.
type Snapshot struct {
	Keys           [keyCount]bool
	PointerEngaged bool
	Joystick       JoystickState
	Look           []LookDelta
}

func (s Snapshot) Pressed(k Key) bool {
	return k.valid() && s.Keys[k]
}

// Intent is the movement request derived from a snapshot. Key and stick axes
// are kept apart; the controller adds both so touch and keys stack.
type Intent struct {
	Forward      float64
	Strafe       float64
	StickForward float64
	StickStrafe  float64
	KeysHeld     bool
	Jump         bool
	Look         []LookDelta
}

// Intent resolves the snapshot. The stick counts only in first-person mode
// and outside the deadzone.
func (s Snapshot) Intent(firstPerson bool, deadzone float64) Intent {
	in := Intent{Jump: s.Pressed(KeyJump), KeysHeld: s.KeyMovement(), Look: s.Look}
	if s.Pressed(KeyForward) {
		in.Forward++
	}
	if s.Pressed(KeyBack) {
		in.Forward--
	}
	if s.Pressed(KeyStrafeRight) {
		in.Strafe++
	}
	if s.Pressed(KeyStrafeLeft) {
		in.Strafe--
	}
	if firstPerson {
		if fwd, strafe, ok := s.Joystick.Axes(deadzone); ok {
			in.StickForward, in.StickStrafe = fwd, strafe
		}
	}
	return in
}

// KeyMovement reports whether any movement key is held.
func (s Snapshot) KeyMovement() bool {
	return s.Pressed(KeyForward) || s.Pressed(KeyBack) || s.Pressed(KeyStrafeLeft) || s.Pressed(KeyStrafeRight)
}

// Moving reports whether a movement key is held or the stick is deflected
// past the deadzone. Opposing keys still count as movement.
func (in Intent) Moving() bool {
	return in.KeysHeld || in.StickForward != 0 || in.StickStrafe != 0
}

// LookTotal sums the queued rotation without clamping.
func (in Intent) LookTotal() (yaw, pitch float64) {
	for _, d := range in.Look {
		yaw += d.Yaw
		pitch += d.Pitch
	}
	return yaw, pitch
}
