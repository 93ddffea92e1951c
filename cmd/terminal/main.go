package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/cbodonnell/watermelon/client/terminal"
	"github.com/cbodonnell/watermelon/pkg/config"
	"github.com/cbodonnell/watermelon/pkg/game"
	"github.com/cbodonnell/watermelon/pkg/game/constants"
	"github.com/cbodonnell/watermelon/pkg/log"
	"github.com/cbodonnell/watermelon/pkg/telemetry"
	"github.com/cbodonnell/watermelon/pkg/version"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}
	logFile := flag.String("log-file", "watermelon.log", "File to write logs to, the terminal is used for drawing")
	config.RegisterFlags(flag.CommandLine, &cfg)
	flag.Parse()
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("Invalid config: %v", err))
	}

	out, err := os.OpenFile(*logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		panic(fmt.Sprintf("Failed to open log file: %v", err))
	}
	defer out.Close()

	logger := log.New(out, "", log.DefaultLoggerFlag, cfg.LogLevel)
	log.SetDefaultLogger(logger)
	log.Info("Log level set to %s", cfg.LogLevel)
	log.Info("Starting terminal client version %s", version.Get())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	tracer := telemetry.NoopTracer()
	if cfg.Telemetry {
		shutdown, err := telemetry.Setup(ctx, "terminal")
		if err != nil {
			log.Warn("Telemetry setup failed, continuing without traces: %v", err)
		} else {
			defer func() {
				if err := shutdown(context.Background()); err != nil {
					log.Error("Failed to shut down telemetry: %v", err)
				}
			}()
			tracer = telemetry.Tracer("game")
		}
	}

	screen, err := terminal.NewScreen()
	if err != nil {
		panic(fmt.Sprintf("Failed to create screen: %v", err))
	}
	defer screen.Fini()

	t, err := terminal.NewTerminal(terminal.NewTerminalOptions{
		Screen:       screen,
		Spawner:      newSpawner(cfg),
		TickInterval: cfg.TickInterval(),
		Tracer:       tracer,
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to create terminal: %v", err))
	}

	if err := t.Run(ctx); err != nil {
		log.Error("Terminal exited with error: %v", err)
	}
}

func newSpawner(cfg config.Config) *game.SpawnController {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	policy, err := game.ParseTierPolicy(cfg.TierPolicy, seed)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse tier policy: %v", err))
	}
	log.Info("Spawning with policy %s", policy)
	return game.NewSpawnController(game.SpawnControllerOptions{
		Policy:   policy,
		Interval: cfg.SpawnInterval,
		MoveStep: cfg.MoveStep,
		MinX:     constants.WallThickness,
		MaxX:     constants.BoardWidth - constants.WallThickness,
	})
}
