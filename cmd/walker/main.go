package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Versifine/walker/internal/bridge"
	"github.com/Versifine/walker/internal/camera"
	"github.com/Versifine/walker/internal/config"
	"github.com/Versifine/walker/internal/controller"
	"github.com/Versifine/walker/internal/debug"
	"github.com/Versifine/walker/internal/event"
	"github.com/Versifine/walker/internal/logger"
	"github.com/Versifine/walker/internal/world"
)

func main() {
	configPath := flag.String("config", "configs/config.yaml", "path to the YAML config")
	mode := flag.String("mode", "", "override the run mode (console or bridge)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("Failed to load config", "error", err)
		os.Exit(1)
	}
	if *mode != "" {
		cfg.Mode = *mode
		if err := cfg.Validate(); err != nil {
			slog.Error("Invalid mode override", "error", err)
			os.Exit(1)
		}
	}

	out, closeLog, err := logger.FileOutput(cfg.Logging.File)
	if err != nil {
		slog.Error("Failed to open log file", "error", err)
		os.Exit(1)
	}
	defer closeLog()
	logger.Init(logger.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Output: out,
	})

	if err := run(cfg); err != nil {
		logger.L().Error("Walker stopped", "error", err)
		closeLog()
		os.Exit(1)
	}
}

func run(cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	geom, err := loadGeometry(cfg.Scene)
	if err != nil {
		return err
	}

	bus := event.NewBus()
	event.LogEvents(bus, logger.With("event"))

	spawn := cfg.Player.SpawnPoint()
	cam := camera.New(spawn.End)
	ctrl := controller.New(cam, geom,
		controller.WithBus(bus),
		controller.WithParams(cfg.Physics.Params()),
		controller.WithSpawn(spawn),
		controller.WithRecovery(cfg.Player.Recovery()),
		controller.WithInputTuning(cfg.Input.Tuning()),
		controller.WithTouchInput(cfg.Player.TouchInput),
		controller.WithViewport(cfg.Input.ViewportWidth, cfg.Input.ViewportHeight),
		controller.WithLogger(logger.With("controller")),
	)
	if cfg.Player.FirstPerson {
		ctrl.SetFirstPersonMode(true)
	}

	switch cfg.Mode {
	case config.ModeBridge:
		srv := bridge.NewServer(ctrl, cam, bus, bridge.Config{
			Path:         cfg.Bridge.Path,
			TickInterval: cfg.Bridge.TickInterval,
			Logger:       logger.With("bridge"),
		})
		return srv.Serve(ctx, cfg.Bridge.Addr())
	default:
		console := debug.NewConsole(ctrl, debug.Options{
			TickInterval: cfg.Console.TickInterval,
			MovePulse:    cfg.Console.MovePulse,
			LookStep:     cfg.Console.LookStep,
			Logger:       logger.With("console"),
		})
		return console.Start(ctx)
	}
}

func loadGeometry(sc config.SceneConfig) (world.Geometry, error) {
	if sc.Path == "" {
		ground, err := world.Ground(sc.GroundHalfExtent, sc.GroundY)
		if err != nil {
			return nil, err
		}
		return ground, nil
	}
	scene, err := world.LoadScene(sc.Path)
	if err != nil {
		return nil, err
	}
	mesh, err := scene.Mesh()
	if err != nil {
		return nil, err
	}
	logger.L().Info("Scene loaded", "name", scene.Name, "path", sc.Path, "triangles", mesh.Len())
	return mesh, nil
}
