package input

import (
	"log/slog"
	"sync"

	"github.com/go-gl/mathgl/mgl64"
	"golang.org/x/mobile/event/key"
	"golang.org/x/mobile/event/touch"
)

// Tuning holds the input constants.
type Tuning struct {
	TouchSensitivity   float64
	PointerSensitivity float64
	JoystickTravel     float64
	Deadzone           float64
}

func DefaultTuning() Tuning {
	return Tuning{
		TouchSensitivity:   DefaultTouchSensitivity,
		PointerSensitivity: DefaultPointerSensitivity,
		JoystickTravel:     DefaultJoystickTravel,
		Deadzone:           DefaultDeadzone,
	}
}

func (t Tuning) sanitized() Tuning {
	def := DefaultTuning()
	if t.TouchSensitivity <= 0 {
		t.TouchSensitivity = def.TouchSensitivity
	}
	if t.PointerSensitivity <= 0 {
		t.PointerSensitivity = def.PointerSensitivity
	}
	if t.JoystickTravel <= 0 {
		t.JoystickTravel = def.JoystickTravel
	}
	if t.Deadzone < 0 || t.Deadzone >= 1 {
		t.Deadzone = def.Deadzone
	}
	return t
}

// State collects host input events. Handlers may be called from any
// goroutine; the controller reads everything at once through Snapshot.
type State struct {
	mu sync.Mutex

	tuning    Tuning
	surface   Surface
	hitTester HitTester
	log       *slog.Logger

	keys    [keyCount]bool
	engaged bool
	look    []LookDelta
	touches map[int64]mgl64.Vec2

	touchLook touchLook
	stick     joystick
}

func NewState(tuning Tuning) *State {
	tuning = tuning.sanitized()
	return &State{
		tuning:    tuning,
		log:       slog.Default(),
		touches:   make(map[int64]mgl64.Vec2),
		touchLook: touchLook{TouchLookState: TouchLookState{Sensitivity: tuning.TouchSensitivity}},
		stick:     joystick{travel: tuning.JoystickTravel},
	}
}

func (s *State) Tuning() Tuning {
	return s.tuning
}

func (s *State) SetLogger(l *slog.Logger) {
	if l == nil {
		return
	}
	s.mu.Lock()
	s.log = l
	s.mu.Unlock()
}

// SetSurface restricts touch look to the given surface. With no surface the
// hit tester decides which touches belong to the UI.
func (s *State) SetSurface(surface Surface) {
	s.mu.Lock()
	s.surface = surface
	s.mu.Unlock()
}

func (s *State) SetHitTester(h HitTester) {
	s.mu.Lock()
	s.hitTester = h
	s.mu.Unlock()
}

func (s *State) SetJoystickBounds(r Rect) {
	s.mu.Lock()
	s.stick.bounds = r
	s.mu.Unlock()
}

// --- keyboard and pointer ---

func (s *State) KeyDown(k Key) {
	s.setKey(k, true)
}

func (s *State) KeyUp(k Key) {
	s.setKey(k, false)
}

func (s *State) setKey(k Key, down bool) {
	if !k.valid() {
		return
	}
	s.mu.Lock()
	s.keys[k] = down
	s.mu.Unlock()
}

func (s *State) HandleKeyEvent(e key.Event) {
	k, ok := KeyFromCode(e.Code)
	if !ok {
		return
	}
	switch e.Direction {
	case key.DirPress:
		s.KeyDown(k)
	case key.DirRelease:
		s.KeyUp(k)
	}
}

// SetPointerEngaged reports whether the host currently holds exclusive
// pointer capture. Pointer look is ignored otherwise.
func (s *State) SetPointerEngaged(engaged bool) {
	s.mu.Lock()
	s.engaged = engaged
	s.mu.Unlock()
}

func (s *State) PointerEngaged() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engaged
}

func (s *State) PointerMove(dx, dy float64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.engaged {
		return
	}
	s.look = append(s.look, LookDelta{
		Yaw:    -dx * s.tuning.PointerSensitivity,
		Pitch:  -dy * s.tuning.PointerSensitivity,
		Source: LookPointer,
	})
}

// --- touch ---

func (s *State) HandleTouchEvent(e touch.Event) {
	seq, x, y := int64(e.Sequence), float64(e.X), float64(e.Y)
	switch e.Type {
	case touch.TypeBegin:
		s.TouchStart(seq, x, y)
	case touch.TypeMove:
		s.TouchMove(seq, x, y)
	case touch.TypeEnd:
		s.TouchEnd(seq)
	}
}

func (s *State) TouchStart(seq int64, x, y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.touches[seq] = mgl64.Vec2{x, y}

	if s.stick.hit(x, y) {
		s.stick.start(seq)
		return
	}

	if !s.touchLook.Enabled {
		s.log.Debug("touch look disabled, ignoring touch", "seq", seq)
		return
	}
	if s.surface != nil && !s.surface.Contains(x, y) {
		s.log.Debug("touch outside look surface", "seq", seq, "x", x, "y", y)
		return
	}
	if s.surface == nil && s.onUI(x, y) {
		s.log.Debug("touch on ui element", "seq", seq, "x", x, "y", y)
		return
	}
	if len(s.touches) == 1 {
		s.touchLook.begin(seq, x, y)
	}
}

// onUI must be called with mu held.
func (s *State) onUI(x, y float64) bool {
	if s.stick.Visible && s.stick.bounds.Contains(x, y) {
		return true
	}
	return s.hitTester != nil && s.hitTester.IsInteractive(x, y)
}

func (s *State) TouchMove(seq int64, x, y float64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.touches[seq]; ok {
		s.touches[seq] = mgl64.Vec2{x, y}
	}

	if s.stick.Active && s.stick.seq == seq {
		s.stick.move(x, y)
		return
	}

	if !s.touchLook.Enabled || !s.touchLook.Looking || len(s.touches) != 1 || s.touchLook.seq != seq {
		return
	}
	s.look = append(s.look, s.touchLook.move(x, y))
}

func (s *State) TouchEnd(seq int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.touches, seq)
	if s.stick.Active && s.stick.seq == seq {
		s.stick.release()
	}
	s.touchLook.cancel()
}

// TouchCount is the number of touches currently down.
func (s *State) TouchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.touches)
}

// --- mode hooks ---

func (s *State) EnableTouchLook() {
	s.mu.Lock()
	s.touchLook.Enabled = true
	s.mu.Unlock()
}

// DisableTouchLook stops touch look synchronously. Rotation queued while
// look was enabled is still applied by the next tick; moves after this call
// are ignored.
func (s *State) DisableTouchLook() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.touchLook.Enabled = false
	s.touchLook.cancel()
}

func (s *State) TouchLook() TouchLookState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.touchLook.TouchLookState
}

func (s *State) ShowJoystick() {
	s.mu.Lock()
	s.stick.Visible = true
	s.mu.Unlock()
}

// HideJoystick hides the widget and releases a stick held at the time.
func (s *State) HideJoystick() {
	s.mu.Lock()
	s.stick.Visible = false
	s.stick.release()
	s.mu.Unlock()
}

func (s *State) Joystick() JoystickState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stick.JoystickState
}

// Snapshot captures all input atomically and consumes pending look deltas.
func (s *State) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot{
		Keys:           s.keys,
		PointerEngaged: s.engaged,
		Joystick:       s.stick.JoystickState,
		Look:           s.look,
	}
	s.look = nil
	return snap
}
