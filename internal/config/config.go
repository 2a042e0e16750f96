package config

import (
	"fmt"
	"os"
	"time"

	"github.com/Versifine/walker/internal/controller"
	"github.com/Versifine/walker/internal/input"
	"github.com/Versifine/walker/internal/physics"
	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

const (
	ModeConsole = "console"
	ModeBridge  = "bridge"
)

type Config struct {
	Mode    string        `yaml:"mode"`
	Logging LoggingConfig `yaml:"logging"`
	Physics PhysicsConfig `yaml:"physics"`
	Player  PlayerConfig  `yaml:"player"`
	Input   InputConfig   `yaml:"input"`
	Scene   SceneConfig   `yaml:"scene"`
	Console ConsoleConfig `yaml:"console"`
	Bridge  BridgeConfig  `yaml:"bridge"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

type PhysicsConfig struct {
	Gravity            float64 `yaml:"gravity"`
	StepsPerFrame      int     `yaml:"steps_per_frame"`
	MaxFrameDelta      float64 `yaml:"max_frame_delta"`
	GroundDampingRate  float64 `yaml:"ground_damping_rate"`
	AirDampingFactor   float64 `yaml:"air_damping_factor"`
	GroundAcceleration float64 `yaml:"ground_acceleration"`
	AirAcceleration    float64 `yaml:"air_acceleration"`
	JumpVelocity       float64 `yaml:"jump_velocity"`
}

type CapsuleConfig struct {
	Start  [3]float64 `yaml:"start"`
	End    [3]float64 `yaml:"end"`
	Radius float64    `yaml:"radius"`
}

type PlayerConfig struct {
	Spawn             CapsuleConfig `yaml:"spawn"`
	Reset             CapsuleConfig `yaml:"reset"`
	FallThreshold     float64       `yaml:"fall_threshold"`
	RecoverPerSubstep bool          `yaml:"recover_per_substep"`
	TouchInput        bool          `yaml:"touch_input"`
	FirstPerson       bool          `yaml:"first_person"`
}

type InputConfig struct {
	TouchSensitivity   float64 `yaml:"touch_sensitivity"`
	PointerSensitivity float64 `yaml:"pointer_sensitivity"`
	JoystickTravel     float64 `yaml:"joystick_travel"`
	Deadzone           float64 `yaml:"deadzone"`
	ViewportWidth      float64 `yaml:"viewport_width"`
	ViewportHeight     float64 `yaml:"viewport_height"`
}

// SceneConfig points at a YAML scene. With no path a flat ground of
// GroundHalfExtent is used.
type SceneConfig struct {
	Path             string  `yaml:"path"`
	GroundHalfExtent float64 `yaml:"ground_half_extent"`
	GroundY          float64 `yaml:"ground_y"`
}

type ConsoleConfig struct {
	TickInterval time.Duration `yaml:"tick_interval"`
	MovePulse    time.Duration `yaml:"move_pulse"`
	// LookStep is the rotation of one arrow key press, in radians.
	LookStep float64 `yaml:"look_step"`
}

type BridgeConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	Path         string        `yaml:"path"`
	TickInterval time.Duration `yaml:"tick_interval"`
}

func (b BridgeConfig) Addr() string {
	return fmt.Sprintf("%s:%d", b.Host, b.Port)
}

func Default() *Config {
	params := physics.DefaultParams()
	tuning := input.DefaultTuning()
	spawn := controller.DefaultSpawn()
	recovery := controller.DefaultRecovery()
	return &Config{
		Mode: ModeConsole,
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
		Physics: PhysicsConfig{
			Gravity:            params.Gravity,
			StepsPerFrame:      params.StepsPerFrame,
			MaxFrameDelta:      params.MaxFrameDelta,
			GroundDampingRate:  params.GroundDampingRate,
			AirDampingFactor:   params.AirDampingFactor,
			GroundAcceleration: params.GroundAcceleration,
			AirAcceleration:    params.AirAcceleration,
			JumpVelocity:       params.JumpVelocity,
		},
		Player: PlayerConfig{
			Spawn:         capsuleConfig(spawn),
			Reset:         capsuleConfig(recovery.Reset),
			FallThreshold: recovery.Threshold,
		},
		Input: InputConfig{
			TouchSensitivity:   tuning.TouchSensitivity,
			PointerSensitivity: tuning.PointerSensitivity,
			JoystickTravel:     tuning.JoystickTravel,
			Deadzone:           tuning.Deadzone,
			ViewportWidth:      1280,
			ViewportHeight:     720,
		},
		Scene: SceneConfig{
			GroundHalfExtent: 50,
		},
		Console: ConsoleConfig{
			TickInterval: 16 * time.Millisecond,
			MovePulse:    180 * time.Millisecond,
			LookStep:     0.05,
		},
		Bridge: BridgeConfig{
			Host:         "127.0.0.1",
			Port:         8765,
			Path:         "/ws",
			TickInterval: 16 * time.Millisecond,
		},
	}
}

// Load reads a YAML file over Default. Keys missing from the file keep their
// default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

func Parse(data []byte) (*Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Mode {
	case ModeConsole, ModeBridge:
	default:
		return fmt.Errorf("invalid mode %q", c.Mode)
	}
	if c.Player.Spawn.Radius <= 0 {
		return fmt.Errorf("player.spawn.radius must be positive, got %v", c.Player.Spawn.Radius)
	}
	if c.Player.Reset.Radius <= 0 {
		return fmt.Errorf("player.reset.radius must be positive, got %v", c.Player.Reset.Radius)
	}
	if c.Scene.Path == "" && c.Scene.GroundHalfExtent <= 0 {
		return fmt.Errorf("scene needs a path or a positive ground_half_extent")
	}
	if c.Mode == ModeBridge && (c.Bridge.Port <= 0 || c.Bridge.Port > 65535) {
		return fmt.Errorf("invalid bridge port %d", c.Bridge.Port)
	}
	return nil
}

// Params converts the physics section. Out-of-range values fall back to the
// defaults.
func (p PhysicsConfig) Params() physics.Params {
	return physics.Params{
		Gravity:            p.Gravity,
		StepsPerFrame:      p.StepsPerFrame,
		MaxFrameDelta:      p.MaxFrameDelta,
		GroundDampingRate:  p.GroundDampingRate,
		AirDampingFactor:   p.AirDampingFactor,
		GroundAcceleration: p.GroundAcceleration,
		AirAcceleration:    p.AirAcceleration,
		JumpVelocity:       p.JumpVelocity,
	}.Sanitized()
}

func (i InputConfig) Tuning() input.Tuning {
	return input.Tuning{
		TouchSensitivity:   i.TouchSensitivity,
		PointerSensitivity: i.PointerSensitivity,
		JoystickTravel:     i.JoystickTravel,
		Deadzone:           i.Deadzone,
	}
}

func (p PlayerConfig) SpawnPoint() controller.Spawn {
	return p.Spawn.spawn()
}

func (p PlayerConfig) Recovery() controller.Recovery {
	return controller.Recovery{
		Threshold:  p.FallThreshold,
		Reset:      p.Reset.spawn(),
		PerSubstep: p.RecoverPerSubstep,
	}
}

func (c CapsuleConfig) spawn() controller.Spawn {
	return controller.Spawn{
		Start:  mgl64.Vec3(c.Start),
		End:    mgl64.Vec3(c.End),
		Radius: c.Radius,
	}
}

func capsuleConfig(s controller.Spawn) CapsuleConfig {
	return CapsuleConfig{
		Start:  [3]float64(s.Start),
		End:    [3]float64(s.End),
		Radius: s.Radius,
	}
}
