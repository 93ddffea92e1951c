package sim

import (
	"context"
	"fmt"
	"time"

	"github.com/cbodonnell/watermelon/pkg/fruit"
	"github.com/cbodonnell/watermelon/pkg/game"
	"github.com/cbodonnell/watermelon/pkg/game/constants"
	"github.com/cbodonnell/watermelon/pkg/game/types"
	"github.com/cbodonnell/watermelon/pkg/log"
	"github.com/cbodonnell/watermelon/pkg/physics"
	"github.com/cbodonnell/watermelon/pkg/queue"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"
)

type Options struct {
	// Ticks is the number of frames to simulate.
	Ticks int
	// TickInterval is the simulated time per frame.
	TickInterval time.Duration
	// Seed drives the bot.
	Seed int64
	// Spawner drives the controllable fruit. Optional.
	Spawner *game.SpawnController
	// Realtime runs the game manager's own loop instead of ticking as fast as possible.
	Realtime bool
	// Tracer is passed to the game manager. Optional.
	Tracer trace.Tracer
}

// Summary describes the board at the end of a run.
type Summary struct {
	RunID   string
	Ticks   uint64
	Merges  int
	Largest fruit.Tier
	// Counts is the number of free fruits per tier.
	Counts map[fruit.Tier]int
}

func (s Summary) Fruits() int {
	n := 0
	for _, c := range s.Counts {
		n += c
	}
	return n
}

func Run(ctx context.Context, opts Options) (Summary, error) {
	if opts.Ticks <= 0 {
		return Summary{}, fmt.Errorf("ticks must be positive")
	}
	if opts.TickInterval <= 0 {
		return Summary{}, fmt.Errorf("tick interval must be positive")
	}

	summary := Summary{
		RunID:  uuid.New().String(),
		Counts: make(map[fruit.Tier]int),
	}
	logger := log.WithField("run", summary.RunID)

	collisionEventQueue := queue.NewInMemoryQueue[types.CollisionEvent](queue.DefaultQueueBufferSize)
	contactForceEventQueue := queue.NewInMemoryQueue[types.ContactForceEvent](queue.DefaultQueueBufferSize)
	world := physics.NewWorld(physics.NewWorldOptions{
		CollisionEventQueue:    collisionEventQueue,
		ContactForceEventQueue: contactForceEventQueue,
	})

	spawner := opts.Spawner
	if spawner == nil {
		spawner = game.NewSpawnController(game.SpawnControllerOptions{
			MinX: constants.WallThickness,
			MaxX: constants.BoardWidth - constants.WallThickness,
		})
	}

	state := types.NewGameState(constants.InitialSpawnDelay)
	bot := NewBot(opts.Seed, state, constants.WallThickness, constants.BoardWidth-constants.WallThickness, spawner.MoveStep())
	gm := game.NewGameManager(game.NewGameManagerOptions{
		World:                  world,
		CollisionEventQueue:    collisionEventQueue,
		ContactForceEventQueue: contactForceEventQueue,
		GameState:              state,
		Spawner:                spawner,
		InputSource:            bot,
		GameLoopInterval:       opts.TickInterval,
		Tracer:                 opts.Tracer,
		OnMerge: func(merge types.MergeEvent) {
			summary.Merges++
			if merge.To > summary.Largest {
				summary.Largest = merge.To
			}
			logger.Info("Tick %d: merged two %s into %s at (%0.1f, %0.1f)", merge.Tick, merge.From, merge.To, merge.Position.X, merge.Position.Y)
		},
	})

	logger.Info("Starting simulation of %d ticks with seed %d", opts.Ticks, opts.Seed)
	if opts.Realtime {
		runCtx, cancel := context.WithTimeout(ctx, time.Duration(opts.Ticks)*opts.TickInterval)
		defer cancel()
		if err := gm.Start(runCtx); err != nil {
			return summary, fmt.Errorf("failed to run game loop: %v", err)
		}
	} else {
		for i := 0; i < opts.Ticks; i++ {
			if err := ctx.Err(); err != nil {
				return summary, err
			}
			if err := gm.Tick(ctx, bot.Sample(), opts.TickInterval); err != nil {
				return summary, fmt.Errorf("failed to run tick %d: %v", i, err)
			}
		}
	}

	summary.Ticks = state.Tick
	for _, body := range world.Bodies() {
		if body.Kind == types.BodyKindDynamic {
			summary.Counts[body.Tier]++
		}
	}
	logger.Info("Simulation finished after %d ticks: %d merges, %d fruits, largest %s", summary.Ticks, summary.Merges, summary.Fruits(), summary.Largest)
	return summary, nil
}
