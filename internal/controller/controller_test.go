package controller

import (
	"math"
	"sync/atomic"
	"testing"

	"github.com/Versifine/walker/internal/camera"
	"github.com/Versifine/walker/internal/event"
	"github.com/Versifine/walker/internal/input"
	"github.com/Versifine/walker/internal/physics"
	"github.com/Versifine/walker/internal/world"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const frame = 1.0 / 60

// restingFloor reports a zero-depth floor contact for every query, which
// keeps the player grounded without moving it.
type restingFloor struct{}

func (restingFloor) CapsuleIntersect(physics.Capsule) (physics.Contact, bool) {
	return physics.Contact{Normal: mgl64.Vec3{0, 1, 0}}, true
}

func grounded(t *testing.T, opts ...Option) (*Controller, *camera.Camera) {
	t.Helper()
	cam := camera.New(mgl64.Vec3{})
	c := New(cam, nil, append([]Option{WithIndex(restingFloor{})}, opts...)...)
	c.state.OnFloor = true
	return c, cam
}

func collect(bus *event.Bus, name string) *atomic.Int32 {
	var n atomic.Int32
	bus.Subscribe(name, func(any) { n.Add(1) })
	return &n
}

func TestNew_Defaults(t *testing.T) {
	c := New(nil, nil)
	require.NotNil(t, c)

	st := c.State()
	assert.Equal(t, Overview, st.Mode)
	assert.Equal(t, mgl64.Vec3{0, 1.35, 15}, st.Capsule.Start)
	assert.Equal(t, mgl64.Vec3{0, 2.8, 15}, st.Capsule.End)
	assert.Equal(t, physics.SpawnRadius, st.Capsule.Radius)
	assert.False(t, c.Input().Joystick().Visible)
	assert.NotEqual(t, c.ID(), New(nil, nil).ID())
}

func TestTick_ForwardKeyOnFloor(t *testing.T) {
	c, _ := grounded(t)
	c.Input().KeyDown(input.KeyForward)
	c.Tick(frame)

	dt := frame / physics.StepsPerFrame
	want := 0.0
	for i := 0; i < physics.StepsPerFrame; i++ {
		want += dt * physics.GroundAcceleration
		want += want * (math.Exp(-physics.GroundDampingRate*dt) - 1)
	}

	v := c.State().Velocity
	assert.InDelta(t, -want, v.Z(), 1e-12)
	assert.InDelta(t, 0, v.X(), 1e-12)
	assert.InDelta(t, 5*25.0/300, -v.Z(), 0.02)
}

func TestTick_ForwardKeyAtPitchLimit(t *testing.T) {
	for _, dy := range []float64{-10000, 10000} {
		c, cam := grounded(t)
		in := c.Input()
		in.SetPointerEngaged(true)
		in.PointerMove(0, dy)
		in.KeyDown(input.KeyForward)
		c.Tick(frame)

		require.InDelta(t, math.Pi/2, math.Abs(cam.Rotation().Pitch), 1e-12)
		v := c.State().Velocity
		assert.InDelta(t, 5*25.0/300, -v.Z(), 0.02, "dy=%v", dy)
		assert.InDelta(t, 0, v.X(), 1e-12)
	}
}

func TestTick_OpposingKeysCancel(t *testing.T) {
	c, _ := grounded(t)
	c.Input().KeyDown(input.KeyStrafeLeft)
	c.Input().KeyDown(input.KeyStrafeRight)
	c.Tick(frame)
	assert.InDelta(t, 0, c.State().Velocity.Len(), 1e-12)
}

func TestTick_StrafeFollowsCameraYaw(t *testing.T) {
	c, cam := grounded(t)
	cam.SetRotation(camera.Rotation{Yaw: math.Pi / 2})
	c.Input().KeyDown(input.KeyStrafeRight)
	c.Tick(frame)

	// yawed left by 90 degrees, right points down -Z
	v := c.State().Velocity
	assert.Less(t, v.Z(), 0.0)
	assert.InDelta(t, 0, v.X(), 1e-9)
}

func TestTick_DampingDecaysOnFloor(t *testing.T) {
	c, _ := grounded(t)
	c.state.Velocity = mgl64.Vec3{5, 0, -3}

	prev := c.State().Velocity
	for i := 0; i < 120; i++ {
		c.Tick(frame)
		v := c.State().Velocity
		require.LessOrEqual(t, v.Len(), prev.Len())
		require.Greater(t, v.X(), 0.0)
		require.Less(t, v.Z(), 0.0)
		prev = v
	}
	assert.InDelta(t, math.Sqrt(34)*math.Exp(-8), prev.Len(), 1e-9)
}

func TestTick_JumpFromFloor(t *testing.T) {
	c, _ := grounded(t)
	c.Input().KeyDown(input.KeyJump)
	c.Tick(frame)
	assert.Greater(t, c.State().Velocity.Y(), 14.0)
}

func TestTick_InvalidDeltaIsNoop(t *testing.T) {
	for _, dt := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		c, cam := grounded(t)
		c.Input().KeyDown(input.KeyForward)
		before := c.State()
		c.Tick(dt)
		assert.Equal(t, before, c.State(), "dt=%v", dt)
		assert.Equal(t, mgl64.Vec3{}, cam.Position())
	}

	var nilController *Controller
	nilController.Tick(frame)
}

func TestTick_CameraFollowsCapsule(t *testing.T) {
	cam := camera.New(mgl64.Vec3{})
	c := New(cam, world.MustGround(50, 0))
	c.Tick(frame)
	assert.Equal(t, c.State().Capsule.End, cam.Position())
}

func TestTick_LandsOnGround(t *testing.T) {
	cam := camera.New(mgl64.Vec3{})
	c := New(cam, world.MustGround(50, 0))
	for i := 0; i < 180; i++ {
		c.Tick(frame)
	}
	st := c.State()
	assert.InDelta(t, physics.SpawnRadius, st.Capsule.Start.Y(), 0.05)
	assert.Zero(t, c.DebugState().Respawns)
	assert.Positive(t, c.DebugState().Octree.Triangles)
}

func TestTick_PitchClampedUnderTouchLook(t *testing.T) {
	cam := camera.New(mgl64.Vec3{})
	cam.SetRotation(camera.Rotation{Pitch: 1.5})
	c := New(cam, nil, WithTouchInput(true), WithIndex(restingFloor{}))
	c.SetFirstPersonMode(true)

	in := c.Input()
	in.TouchStart(1, 400, 300)
	in.TouchMove(1, 400, -700)
	c.Tick(frame)
	assert.InDelta(t, math.Pi/2, cam.Rotation().Pitch, 1e-12)

	in.TouchMove(1, 400, 100)
	c.Tick(frame)
	assert.InDelta(t, math.Pi/2-1.6, cam.Rotation().Pitch, 1e-12)

	for y := 100.0; y < 5000; y += 700 {
		in.TouchMove(1, 400, y)
		c.Tick(frame)
		p := cam.Rotation().Pitch
		require.GreaterOrEqual(t, p, -math.Pi/2)
		require.LessOrEqual(t, p, math.Pi/2)
	}
	assert.InDelta(t, -math.Pi/2, cam.Rotation().Pitch, 1e-12)
}

func TestTick_PointerLook(t *testing.T) {
	c, cam := grounded(t)
	in := c.Input()
	in.SetPointerEngaged(true)
	in.PointerMove(50, 0)
	in.PointerMove(0, -2000)
	c.Tick(frame)

	rot := cam.Rotation()
	assert.InDelta(t, -0.1, rot.Yaw, 1e-12)
	assert.InDelta(t, math.Pi/2, rot.Pitch, 1e-12)
}

func TestPointerCapture(t *testing.T) {
	var requests atomic.Int32
	bus := event.NewBus()
	published := collect(bus, event.EventPointerCapture)
	c, _ := grounded(t,
		WithBus(bus),
		WithPointerCapturer(PointerCaptureFunc(func() { requests.Add(1) })),
	)
	in := c.Input()

	c.Tick(frame)
	assert.Zero(t, requests.Load(), "no movement")

	in.KeyDown(input.KeyForward)
	c.Tick(frame)
	c.Tick(frame)
	assert.EqualValues(t, 2, requests.Load(), "once per tick")

	in.SetPointerEngaged(true)
	c.Tick(frame)
	assert.EqualValues(t, 2, requests.Load(), "already engaged")

	bus.Wait()
	assert.EqualValues(t, 2, published.Load())
}

func TestPointerCapture_TouchHostNeverRequests(t *testing.T) {
	var requests atomic.Int32
	c, _ := grounded(t,
		WithTouchInput(true),
		WithPointerCapturer(PointerCaptureFunc(func() { requests.Add(1) })),
	)
	c.Input().KeyDown(input.KeyBack)
	c.Tick(frame)
	assert.Zero(t, requests.Load())
}

func TestJoystickMovesOnlyInFirstPerson(t *testing.T) {
	c, _ := grounded(t, WithTouchInput(true), WithViewport(800, 600))
	c.ShowMobileControls()

	in := c.Input()
	in.TouchStart(1, 100, 500)
	in.TouchMove(1, 100, 470)
	c.Tick(frame)
	assert.InDelta(t, 0, c.State().Velocity.Len(), 1e-12)

	c.SetFirstPersonMode(true)
	require.True(t, in.Joystick().Active, "entering first person keeps the held stick")
	c.Tick(frame)
	v := c.State().Velocity
	assert.Less(t, v.Z(), 0.0)
	assert.InDelta(t, 0, v.X(), 1e-12)
}

func TestUpdateCameraReference(t *testing.T) {
	c, oldCam := grounded(t)
	newCam := camera.New(mgl64.Vec3{})
	c.UpdateCameraReference(newCam)

	in := c.Input()
	in.SetPointerEngaged(true)
	in.PointerMove(100, 0)
	c.Tick(frame)

	assert.Equal(t, camera.Rotation{}, oldCam.Rotation())
	assert.InDelta(t, -0.2, newCam.Rotation().Yaw, 1e-12)
	assert.Equal(t, c.State().Capsule.End, newCam.Position())
	assert.Equal(t, Overview, c.Mode())
}

func TestNilCameraMakesLookInert(t *testing.T) {
	c, _ := grounded(t)
	c.UpdateCameraReference(nil)

	in := c.Input()
	in.SetPointerEngaged(true)
	in.PointerMove(100, 100)
	in.KeyDown(input.KeyForward)
	assert.NotPanics(t, func() { c.Tick(frame) })
	assert.InDelta(t, 0, c.State().Velocity.Len(), 1e-12, "no camera, no horizontal basis")
	assert.False(t, c.DebugState().CameraAttached)
}
