package controller

import (
	"log/slog"

	"github.com/Versifine/walker/internal/event"
	"github.com/Versifine/walker/internal/input"
	"github.com/Versifine/walker/internal/physics"
)

// PointerCapturer asks the host for exclusive pointer capture, the desktop
// equivalent of pointer lock.
type PointerCapturer interface {
	RequestPointerCapture()
}

type PointerCaptureFunc func()

func (f PointerCaptureFunc) RequestPointerCapture() {
	f()
}

type Option func(*options)

type options struct {
	surface   input.Surface
	hitTester input.HitTester
	touch     bool
	capturer  PointerCapturer
	bus       *event.Bus
	params    physics.Params
	spawn     Spawn
	recovery  Recovery
	tuning    input.Tuning
	viewport  [2]float64
	index     physics.Index
	log       *slog.Logger
}

func defaultOptions() options {
	return options{
		params:   physics.DefaultParams(),
		spawn:    DefaultSpawn(),
		recovery: DefaultRecovery(),
		tuning:   input.DefaultTuning(),
		log:      slog.Default(),
	}
}

// WithTouchSurface restricts touch look to a surface, usually the canvas.
func WithTouchSurface(s input.Surface) Option {
	return func(o *options) { o.surface = s }
}

// WithHitTester classifies touches on UI when no touch surface is set.
func WithHitTester(h input.HitTester) Option {
	return func(o *options) { o.hitTester = h }
}

// WithTouchInput marks the host as touch-primary. Touch hosts get the
// joystick and touch look in first person and never request pointer capture.
func WithTouchInput(touch bool) Option {
	return func(o *options) { o.touch = touch }
}

func WithPointerCapturer(p PointerCapturer) Option {
	return func(o *options) { o.capturer = p }
}

func WithBus(b *event.Bus) Option {
	return func(o *options) { o.bus = b }
}

func WithParams(p physics.Params) Option {
	return func(o *options) { o.params = p }
}

func WithSpawn(s Spawn) Option {
	return func(o *options) { o.spawn = s }
}

func WithRecovery(r Recovery) Option {
	return func(o *options) { o.recovery = r }
}

func WithInputTuning(t input.Tuning) Option {
	return func(o *options) { o.tuning = t }
}

// WithViewport sizes the screen so the joystick widget can be placed.
func WithViewport(width, height float64) Option {
	return func(o *options) { o.viewport = [2]float64{width, height} }
}

// WithIndex replaces the octree built from the geometry with another
// collision index.
func WithIndex(idx physics.Index) Option {
	return func(o *options) { o.index = idx }
}

func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}
