package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/Versifine/walker/internal/controller"
	"github.com/Versifine/walker/internal/input"
	"github.com/Versifine/walker/internal/physics"
	"github.com/go-gl/mathgl/mgl64"
)

// TestLoad 使用表驱动测试覆盖配置加载的核心场景
func TestLoad(t *testing.T) {
	tests := []struct {
		name       string
		createFile bool
		content    string
		wantErr    bool
		validate   func(t *testing.T, cfg *Config, err error)
	}{
		{
			name:       "正常加载有效YAML",
			createFile: true,
			content: `mode: bridge
logging:
  level: "debug"
  format: "json"
  file: "walker.log"
physics:
  gravity: 9.8
  steps_per_frame: 8
player:
  spawn:
    start: [1, 2, 3]
    end: [1, 3.5, 3]
    radius: 0.3
  fall_threshold: -40
  recover_per_substep: true
  touch_input: true
input:
  deadzone: 0.2
scene:
  path: "scenes/courtyard.yaml"
console:
  tick_interval: 20ms
bridge:
  host: "0.0.0.0"
  port: 9000
`,
			wantErr: false,
			validate: func(t *testing.T, cfg *Config, err error) {
				if cfg.Mode != ModeBridge {
					t.Errorf("Mode = %q, 期望 %q", cfg.Mode, ModeBridge)
				}
				if cfg.Logging.Level != "debug" || cfg.Logging.Format != "json" || cfg.Logging.File != "walker.log" {
					t.Errorf("Logging = %+v", cfg.Logging)
				}
				if cfg.Physics.Gravity != 9.8 || cfg.Physics.StepsPerFrame != 8 {
					t.Errorf("Physics = %+v", cfg.Physics)
				}
				if cfg.Physics.JumpVelocity != physics.JumpVelocity {
					t.Errorf("未设置的 JumpVelocity 应保留默认值, 实际 %v", cfg.Physics.JumpVelocity)
				}
				if cfg.Player.Spawn.Start != [3]float64{1, 2, 3} || cfg.Player.Spawn.Radius != 0.3 {
					t.Errorf("Player.Spawn = %+v", cfg.Player.Spawn)
				}
				if cfg.Player.Reset.Radius != physics.ResetRadius {
					t.Errorf("Player.Reset.Radius = %v, 期望 %v", cfg.Player.Reset.Radius, physics.ResetRadius)
				}
				if !cfg.Player.TouchInput || !cfg.Player.RecoverPerSubstep {
					t.Errorf("Player 标志未解析: %+v", cfg.Player)
				}
				if cfg.Input.Deadzone != 0.2 || cfg.Input.TouchSensitivity != input.DefaultTouchSensitivity {
					t.Errorf("Input = %+v", cfg.Input)
				}
				if cfg.Scene.Path != "scenes/courtyard.yaml" {
					t.Errorf("Scene.Path = %q", cfg.Scene.Path)
				}
				if cfg.Console.TickInterval != 20*time.Millisecond {
					t.Errorf("Console.TickInterval = %v, 期望 20ms", cfg.Console.TickInterval)
				}
				if cfg.Bridge.Addr() != "0.0.0.0:9000" || cfg.Bridge.Path != "/ws" {
					t.Errorf("Bridge = %+v", cfg.Bridge)
				}
			},
		},
		{
			name:       "文件不存在",
			createFile: false,
			wantErr:    true,
			validate: func(t *testing.T, cfg *Config, err error) {
				if !errors.Is(err, fs.ErrNotExist) {
					t.Errorf("期望文件不存在错误，实际: %v", err)
				}
			},
		},
		{
			name:       "YAML格式错误",
			createFile: true,
			content: `player:
  spawn:
    start: [0, 1
bridge:
  port: 9000
`,
			wantErr: true,
			validate: func(t *testing.T, cfg *Config, err error) {
				if err == nil || !strings.Contains(err.Error(), "yaml") {
					t.Errorf("期望返回YAML解析错误，实际: %v", err)
				}
			},
		},
		{
			name:       "数组长度错误",
			createFile: true,
			content: `player:
  spawn:
    start: [0, 1]
`,
			wantErr: true,
		},
		{
			name:       "无效模式",
			createFile: true,
			content:    "mode: vr\n",
			wantErr:    true,
			validate: func(t *testing.T, cfg *Config, err error) {
				if err == nil || !strings.Contains(err.Error(), "invalid mode") {
					t.Errorf("期望返回模式错误，实际: %v", err)
				}
			},
		},
		{
			name:       "半径非正",
			createFile: true,
			content: `player:
  reset:
    radius: 0
`,
			wantErr: true,
		},
		{
			name:       "空文件",
			createFile: true,
			content:    "",
			wantErr:    false,
			validate: func(t *testing.T, cfg *Config, err error) {
				// 空文件得到默认配置
				def := Default()
				if cfg.Mode != def.Mode || cfg.Physics != def.Physics || cfg.Player != def.Player {
					t.Errorf("空文件应得到默认配置, 实际 %+v", cfg)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempDir := t.TempDir()
			configPath := filepath.Join(tempDir, "config.yaml")

			if tt.createFile {
				if err := os.WriteFile(configPath, []byte(tt.content), 0o644); err != nil {
					t.Fatalf("创建测试配置文件失败: %v", err)
				}
			}

			cfg, err := Load(configPath)

			if (err != nil) != tt.wantErr {
				t.Fatalf("Load() error = %v, wantErr %v", err, tt.wantErr)
			}

			if err == nil && cfg == nil {
				t.Fatalf("Load() 返回了 nil 配置")
			}

			if tt.validate != nil {
				tt.validate(t, cfg, err)
			}
		})
	}
}

// TestDefaultsMatchPackages 测试默认配置与各包默认值一致
func TestDefaultsMatchPackages(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("默认配置无效: %v", err)
	}
	if got := cfg.Physics.Params(); got != physics.DefaultParams() {
		t.Errorf("Params() = %+v, 期望 %+v", got, physics.DefaultParams())
	}
	if got := cfg.Input.Tuning(); got != input.DefaultTuning() {
		t.Errorf("Tuning() = %+v, 期望 %+v", got, input.DefaultTuning())
	}
	if got := cfg.Player.SpawnPoint(); got != controller.DefaultSpawn() {
		t.Errorf("SpawnPoint() = %+v, 期望 %+v", got, controller.DefaultSpawn())
	}
	if got := cfg.Player.Recovery(); got != controller.DefaultRecovery() {
		t.Errorf("Recovery() = %+v, 期望 %+v", got, controller.DefaultRecovery())
	}
}

// TestParamsSanitized 测试越界物理参数回退到默认值
func TestParamsSanitized(t *testing.T) {
	p := PhysicsConfig{Gravity: 12, StepsPerFrame: -1, AirDampingFactor: 3}.Params()
	if p.Gravity != 12 {
		t.Errorf("Gravity = %v, 期望 12", p.Gravity)
	}
	if p.StepsPerFrame != physics.StepsPerFrame {
		t.Errorf("StepsPerFrame = %d, 期望 %d", p.StepsPerFrame, physics.StepsPerFrame)
	}
	if p.AirDampingFactor != physics.AirDampingFactor {
		t.Errorf("AirDampingFactor = %v, 期望 %v", p.AirDampingFactor, physics.AirDampingFactor)
	}
}

// TestRecoveryConversion 测试玩家配置转换为重生参数
func TestRecoveryConversion(t *testing.T) {
	p := PlayerConfig{
		Reset:             CapsuleConfig{Start: [3]float64{1, 0, 1}, End: [3]float64{1, 2, 1}, Radius: 0.5},
		FallThreshold:     -10,
		RecoverPerSubstep: true,
	}
	rec := p.Recovery()
	if rec.Threshold != -10 || !rec.PerSubstep {
		t.Errorf("Recovery() = %+v", rec)
	}
	if rec.Reset.End != (mgl64.Vec3{1, 2, 1}) || rec.Reset.Radius != 0.5 {
		t.Errorf("Recovery().Reset = %+v", rec.Reset)
	}
}

// TestShippedConfig 测试仓库自带的配置文件可以加载
func TestShippedConfig(t *testing.T) {
	cfg, err := Load(filepath.Join("..", "..", "configs", "config.yaml"))
	if err != nil {
		t.Fatalf("Load() 返回错误: %v", err)
	}
	if got := cfg.Physics.Params(); got != physics.DefaultParams() {
		t.Errorf("Params() = %+v, 期望默认值", got)
	}
	if cfg.Player.Recovery() != controller.DefaultRecovery() {
		t.Errorf("Recovery() = %+v, 期望默认值", cfg.Player.Recovery())
	}
	if cfg.Scene.Path == "" {
		t.Error("Scene.Path 不应为空")
	}
}
