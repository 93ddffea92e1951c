// Package config loads runtime settings from a .env file and WATERMELON_*
// environment variables.
package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/cbodonnell/watermelon/pkg/game/constants"
	"github.com/cbodonnell/watermelon/pkg/log"
	"github.com/joho/godotenv"
)

const (
	EnvLogLevel      = "WATERMELON_LOG_LEVEL"
	EnvSpawnInterval = "WATERMELON_SPAWN_INTERVAL"
	EnvTierPolicy    = "WATERMELON_TIER_POLICY"
	EnvSeed          = "WATERMELON_SEED"
	EnvMoveStep      = "WATERMELON_MOVE_STEP"
	EnvTPS           = "WATERMELON_TPS"
	EnvDebug         = "WATERMELON_DEBUG"
	EnvTelemetry     = "WATERMELON_TELEMETRY"
)

type Config struct {
	LogLevel      log.LogLevel
	SpawnInterval time.Duration
	// TierPolicy is parsed by game.ParseTierPolicy
	TierPolicy string
	// Seed drives the random tier policy. Zero picks a time based seed.
	Seed     int64
	MoveStep float64
	// TPS is the number of game ticks per second
	TPS       int
	Debug     bool
	Telemetry bool
}

func Default() Config {
	return Config{
		LogLevel:      log.LogLevelInfo,
		SpawnInterval: constants.SpawnInterval,
		TierPolicy:    "fixed:Grape",
		MoveStep:      constants.MoveStep,
		TPS:           60,
	}
}

// Load reads the given .env files (".env" when none are named) and then the
// environment. A missing .env file is not an error.
func Load(files ...string) (Config, error) {
	if err := godotenv.Load(files...); err != nil {
		log.Debug("No .env file loaded: %v", err)
	}
	return FromEnv()
}

// FromEnv overrides the defaults with any WATERMELON_* variables that are set.
func FromEnv() (Config, error) {
	cfg := Default()

	if v, ok := os.LookupEnv(EnvLogLevel); ok {
		level, err := log.ParseLogLevel(v)
		if err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %v", EnvLogLevel, err)
		}
		cfg.LogLevel = level
	}

	if v, ok := os.LookupEnv(EnvSpawnInterval); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %v", EnvSpawnInterval, err)
		}
		if d <= 0 {
			return cfg, fmt.Errorf("%s must be positive, got %s", EnvSpawnInterval, d)
		}
		cfg.SpawnInterval = d
	}

	cfg.TierPolicy = GetEnv(EnvTierPolicy, cfg.TierPolicy)

	if v, ok := os.LookupEnv(EnvSeed); ok {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %v", EnvSeed, err)
		}
		cfg.Seed = seed
	}

	if v, ok := os.LookupEnv(EnvMoveStep); ok {
		step, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %v", EnvMoveStep, err)
		}
		if step <= 0 {
			return cfg, fmt.Errorf("%s must be positive, got %v", EnvMoveStep, step)
		}
		cfg.MoveStep = step
	}

	if v, ok := os.LookupEnv(EnvTPS); ok {
		tps, err := strconv.Atoi(v)
		if err != nil {
			return cfg, fmt.Errorf("failed to parse %s: %v", EnvTPS, err)
		}
		if tps <= 0 {
			return cfg, fmt.Errorf("%s must be positive, got %d", EnvTPS, tps)
		}
		cfg.TPS = tps
	}

	var err error
	if cfg.Debug, err = getBool(EnvDebug, cfg.Debug); err != nil {
		return cfg, err
	}
	if cfg.Telemetry, err = getBool(EnvTelemetry, cfg.Telemetry); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// RegisterFlags binds command line flags to cfg. Values already in cfg are
// the flag defaults, so flags override the environment.
func RegisterFlags(fs *flag.FlagSet, cfg *Config) {
	fs.Func("log-level", fmt.Sprintf("Log level (default %s)", cfg.LogLevel), func(s string) error {
		level, err := log.ParseLogLevel(s)
		if err != nil {
			return err
		}
		cfg.LogLevel = level
		return nil
	})
	fs.DurationVar(&cfg.SpawnInterval, "spawn-interval", cfg.SpawnInterval, "Delay between a drop and the next fruit")
	fs.StringVar(&cfg.TierPolicy, "tier-policy", cfg.TierPolicy, "Spawn tier policy: fixed:<tier> or random:<max tier>")
	fs.Int64Var(&cfg.Seed, "seed", cfg.Seed, "Random seed, 0 for time based")
	fs.Float64Var(&cfg.MoveStep, "move-step", cfg.MoveStep, "Distance the fruit moves per tick")
	fs.IntVar(&cfg.TPS, "tps", cfg.TPS, "Game ticks per second")
	fs.BoolVar(&cfg.Debug, "debug", cfg.Debug, "Show debug information")
	fs.BoolVar(&cfg.Telemetry, "telemetry", cfg.Telemetry, "Export traces over OTLP/HTTP")
}

// Validate checks values that flags may have changed.
func (c Config) Validate() error {
	if c.SpawnInterval <= 0 {
		return fmt.Errorf("spawn interval must be positive, got %s", c.SpawnInterval)
	}
	if c.MoveStep <= 0 {
		return fmt.Errorf("move step must be positive, got %v", c.MoveStep)
	}
	if c.TPS <= 0 {
		return fmt.Errorf("tps must be positive, got %d", c.TPS)
	}
	return nil
}

// TickInterval is the duration of one game tick.
func (c Config) TickInterval() time.Duration {
	return time.Second / time.Duration(c.TPS)
}

// GetEnv returns the value of the environment variable named by the key,
// or fallback if the variable is not set.
func GetEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getBool(key string, fallback bool) (bool, error) {
	v, ok := os.LookupEnv(key)
	if !ok {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback, fmt.Errorf("failed to parse %s: %v", key, err)
	}
	return b, nil
}
