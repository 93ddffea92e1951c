package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	clientgame "github.com/cbodonnell/watermelon/client/game"
	"github.com/cbodonnell/watermelon/pkg/config"
	"github.com/cbodonnell/watermelon/pkg/game"
	"github.com/cbodonnell/watermelon/pkg/game/constants"
	"github.com/cbodonnell/watermelon/pkg/log"
	"github.com/cbodonnell/watermelon/pkg/telemetry"
	"github.com/cbodonnell/watermelon/pkg/version"
	"github.com/hajimehoshi/ebiten/v2"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}
	config.RegisterFlags(flag.CommandLine, &cfg)
	flag.Parse()
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("Invalid config: %v", err))
	}

	logger := log.New(os.Stdout, "", log.DefaultLoggerFlag, cfg.LogLevel)
	log.SetDefaultLogger(logger)
	log.Info("Log level set to %s", cfg.LogLevel)
	log.Info("Starting client version %s", version.Get())

	ctx := context.Background()
	tracer := telemetry.NoopTracer()
	if cfg.Telemetry {
		shutdown, err := telemetry.Setup(ctx, "client")
		if err != nil {
			log.Warn("Telemetry setup failed, continuing without traces: %v", err)
		} else {
			defer func() {
				if err := shutdown(ctx); err != nil {
					log.Error("Failed to shut down telemetry: %v", err)
				}
			}()
			tracer = telemetry.Tracer("game")
		}
	}

	ebiten.SetTPS(cfg.TPS)
	g, err := clientgame.NewGame(clientgame.NewGameOptions{
		Debug:        cfg.Debug,
		Spawner:      newSpawner(cfg),
		TickInterval: cfg.TickInterval(),
		Tracer:       tracer,
	})
	if err != nil {
		panic(fmt.Sprintf("Failed to create game: %v", err))
	}

	ebiten.SetWindowSize(int(constants.BoardWidth), int(constants.BoardHeight))
	ebiten.SetWindowTitle("Watermelon")
	if err := ebiten.RunGame(g); err != nil {
		log.Error("Game exited with error: %v", err)
		os.Exit(1)
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
