package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/cbodonnell/watermelon/pkg/config"
	"github.com/cbodonnell/watermelon/pkg/fruit"
	"github.com/cbodonnell/watermelon/pkg/game"
	"github.com/cbodonnell/watermelon/pkg/game/constants"
	"github.com/cbodonnell/watermelon/pkg/log"
	"github.com/cbodonnell/watermelon/pkg/sim"
	"github.com/cbodonnell/watermelon/pkg/telemetry"
	"github.com/cbodonnell/watermelon/pkg/version"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(fmt.Sprintf("Failed to load config: %v", err))
	}
	ticks := flag.Int("ticks", 3600, "Number of ticks to simulate")
	realtime := flag.Bool("realtime", false, "Run at the configured tick rate instead of as fast as possible")
	config.RegisterFlags(flag.CommandLine, &cfg)
	flag.Parse()
	if err := cfg.Validate(); err != nil {
		panic(fmt.Sprintf("Invalid config: %v", err))
	}

	logger := log.New(os.Stdout, "", log.DefaultLoggerFlag, cfg.LogLevel)
	log.SetDefaultLogger(logger)
	log.Info("Log level set to %s", cfg.LogLevel)
	log.Info("Starting simulation version %s", version.Get())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	tracer := telemetry.NoopTracer()
	if cfg.Telemetry {
		shutdown, err := telemetry.Setup(ctx, "sim")
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

	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	policy, err := game.ParseTierPolicy(cfg.TierPolicy, seed)
	if err != nil {
		panic(fmt.Sprintf("Failed to parse tier policy: %v", err))
	}

	summary, err := sim.Run(ctx, sim.Options{
		Ticks:        *ticks,
		TickInterval: cfg.TickInterval(),
		Seed:         seed,
		Realtime:     *realtime,
		Tracer:       tracer,
		Spawner: game.NewSpawnController(game.SpawnControllerOptions{
			Policy:   policy,
			Interval: cfg.SpawnInterval,
			MoveStep: cfg.MoveStep,
			MinX:     constants.WallThickness,
			MaxX:     constants.BoardWidth - constants.WallThickness,
		}),
	})
	if err != nil {
		log.Error("Simulation failed: %v", err)
		os.Exit(1)
	}

	for _, tier := range fruit.Tiers() {
		if n := summary.Counts[tier]; n > 0 {
			log.Info("%s: %d", tier, n)
		}
	}
}
