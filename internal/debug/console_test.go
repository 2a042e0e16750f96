package debug

import (
	"bufio"
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/Versifine/walker/internal/camera"
	"github.com/Versifine/walker/internal/controller"
	"github.com/Versifine/walker/internal/input"
	"github.com/Versifine/walker/internal/world"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestConsole(t *testing.T) (*Console, *controller.Controller, *bytes.Buffer) {
	t.Helper()
	ctrl := controller.New(camera.New(mgl64.Vec3{}), world.MustGround(50, 0))
	c := NewConsole(ctrl, Options{})
	var out bytes.Buffer
	c.out = &out
	return c, ctrl, &out
}

func feed(c *Console, keys string) {
	r := bufio.NewReader(strings.NewReader(keys))
	for {
		b, err := r.ReadByte()
		if err != nil {
			return
		}
		c.handleKey(r, b)
	}
}

func TestNewConsole_Defaults(t *testing.T) {
	c := NewConsole(nil, Options{})
	assert.Equal(t, defaultTickInterval, c.tickInterval)
	assert.Equal(t, defaultMovePulse, c.movePulse)
	assert.Equal(t, defaultLookStep, c.lookStep)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	var nilConsole *Console
	assert.Error(t, nilConsole.Start(ctx))
	assert.Error(t, c.Start(ctx), "no target")
}

func TestConsole_MovementPulse(t *testing.T) {
	c, ctrl, _ := newTestConsole(t)
	feed(c, "w")
	assert.True(t, ctrl.Input().Snapshot().Pressed(input.KeyForward))

	feed(c, "s")
	snap := ctrl.Input().Snapshot()
	assert.False(t, snap.Pressed(input.KeyForward), "opposite key is released")
	assert.True(t, snap.Pressed(input.KeyBack))

	c.step(time.Now().Add(c.movePulse + time.Millisecond))
	assert.False(t, ctrl.Input().Snapshot().Pressed(input.KeyBack))
	assert.EqualValues(t, 1, ctrl.DebugState().Ticks)
}

func TestConsole_ClearInput(t *testing.T) {
	c, ctrl, _ := newTestConsole(t)
	feed(c, "a ")
	require.True(t, ctrl.Input().Snapshot().Pressed(input.KeyJump))
	feed(c, "x")
	snap := ctrl.Input().Snapshot()
	assert.False(t, snap.Pressed(input.KeyStrafeLeft))
	assert.False(t, snap.Pressed(input.KeyJump))
}

func TestConsole_ArrowsLook(t *testing.T) {
	c, ctrl, _ := newTestConsole(t)
	ctrl.Input().SetPointerEngaged(true)

	feed(c, "\x1b[C\x1b[A")
	look := ctrl.Input().Snapshot().Look
	require.Len(t, look, 2)
	assert.InDelta(t, -defaultLookStep, look[0].Yaw, 1e-12)
	assert.InDelta(t, defaultLookStep, look[1].Pitch, 1e-12)
	assert.Equal(t, input.LookPointer, look[0].Source)
}

func TestConsole_ToggleFirstPerson(t *testing.T) {
	c, ctrl, _ := newTestConsole(t)
	feed(c, "f")
	assert.Equal(t, controller.FirstPerson, ctrl.Mode())
	feed(c, "F")
	assert.Equal(t, controller.Overview, ctrl.Mode())
}

func TestConsole_Commands(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
		check func(t *testing.T, ctrl *controller.Controller)
	}{
		{
			name:  "mode",
			input: ":mode fp\r",
			want:  "mode set to fp",
			check: func(t *testing.T, ctrl *controller.Controller) {
				assert.Equal(t, controller.FirstPerson, ctrl.Mode())
			},
		},
		{
			name:  "mode usage",
			input: ":mode\r",
			want:  "usage: :mode fp|overview",
		},
		{
			name:  "stick",
			input: ":stick on\r",
			check: func(t *testing.T, ctrl *controller.Controller) {
				assert.True(t, ctrl.Input().Joystick().Visible)
			},
		},
		{
			name:  "key hold",
			input: ":key right down\r",
			check: func(t *testing.T, ctrl *controller.Controller) {
				assert.True(t, ctrl.Input().Snapshot().Pressed(input.KeyStrafeRight))
			},
		},
		{
			name:  "bad key",
			input: ":key crouch down\r",
			want:  `unknown key "crouch"`,
		},
		{
			name:  "state",
			input: ":state\r",
			want:  "capsule end=(0.000,2.800,15.000)",
		},
		{
			name:  "dump",
			input: ":dump\r",
			want:  "octree triangles=2",
		},
		{
			name:  "help",
			input: ":help\r",
			want:  ":mode fp|overview",
		},
		{
			name:  "unknown",
			input: ":fly\r",
			want:  "unknown command: fly",
		},
		{
			name:  "backspace",
			input: ":helpx\x7f\r",
			want:  "[debug] keys:",
		},
		{
			name:  "cancel",
			input: ":mode fp\x1b",
			want:  "command cancelled",
			check: func(t *testing.T, ctrl *controller.Controller) {
				assert.Equal(t, controller.Overview, ctrl.Mode())
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, ctrl, out := newTestConsole(t)
			feed(c, tt.input)
			assert.False(t, c.isCommandMode())
			if tt.want != "" {
				assert.Contains(t, out.String(), tt.want)
			}
			if tt.check != nil {
				tt.check(t, ctrl)
			}
		})
	}
}

func TestConsole_CommandModeSwallowsKeys(t *testing.T) {
	c, ctrl, _ := newTestConsole(t)
	feed(c, ":w")
	assert.True(t, c.isCommandMode())
	assert.False(t, ctrl.Input().Snapshot().Pressed(input.KeyForward))
}

func TestConsole_StatusLine(t *testing.T) {
	c, _, out := newTestConsole(t)
	c.renderStatusLine()
	assert.Contains(t, out.String(), "[overview | X:0.00 Y:2.80 Z:15.00")
}

func TestConsole_LogsThroughOwnLogger(t *testing.T) {
	ctrl := controller.New(camera.New(mgl64.Vec3{}), world.MustGround(50, 0))
	var logs bytes.Buffer
	log := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})).
		With("component", "console")
	c := NewConsole(ctrl, Options{Logger: log})
	c.out = &bytes.Buffer{}

	feed(c, ":key jump down\r")
	require.True(t, ctrl.Input().Snapshot().Pressed(input.KeyJump))
	assert.Contains(t, logs.String(), "Console key command")
	assert.Contains(t, logs.String(), "component=console")
	assert.Contains(t, logs.String(), "key=jump")

	assert.Same(t, slog.Default(), NewConsole(ctrl, Options{}).log)
}
