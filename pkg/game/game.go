package game

import (
	"context"
	"fmt"
	"time"

	"github.com/cbodonnell/watermelon/pkg/game/constants"
	"github.com/cbodonnell/watermelon/pkg/game/types"
	"github.com/cbodonnell/watermelon/pkg/log"
	"github.com/cbodonnell/watermelon/pkg/queue"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
)

type GameManager struct {
	world                  World
	collisionEventQueue    queue.Queue[types.CollisionEvent]
	contactForceEventQueue queue.Queue[types.ContactForceEvent]
	gameState              *types.GameState
	spawner                *SpawnController
	processor              *CollisionBatchProcessor
	guard                  *LifecycleGuard
	inputSource            InputSource
	gameLoopInterval       time.Duration
	tracer                 trace.Tracer
	onMerge                func(types.MergeEvent)
}

// NewGameManagerOptions contains options for creating a new GameManager.
type NewGameManagerOptions struct {
	// World is the physics/render collaborator.
	World World
	// CollisionEventQueue receives the collaborator's collision events.
	CollisionEventQueue queue.Queue[types.CollisionEvent]
	// ContactForceEventQueue receives the collaborator's contact force events. Optional.
	ContactForceEventQueue queue.Queue[types.ContactForceEvent]
	// GameState defaults to a fresh state with the initial spawn delay.
	GameState *types.GameState
	// Spawner defaults to a SpawnController with default options.
	Spawner *SpawnController
	// Resolver defaults to a MergeResolver with default merge parameters.
	Resolver *MergeResolver
	// InputSource is sampled by Start. Optional.
	InputSource InputSource
	// GameLoopInterval is the tick interval used by Start.
	GameLoopInterval time.Duration
	// Tracer defaults to a no-op tracer.
	Tracer trace.Tracer
	// OnMerge is called for every completed merge. Optional.
	OnMerge func(types.MergeEvent)
}

func NewGameManager(opts NewGameManagerOptions) *GameManager {
	gm := &GameManager{
		world:                  opts.World,
		collisionEventQueue:    opts.CollisionEventQueue,
		contactForceEventQueue: opts.ContactForceEventQueue,
		gameState:              opts.GameState,
		spawner:                opts.Spawner,
		processor:              NewCollisionBatchProcessor(opts.Resolver),
		guard:                  NewLifecycleGuard(opts.World),
		inputSource:            opts.InputSource,
		gameLoopInterval:       opts.GameLoopInterval,
		tracer:                 opts.Tracer,
		onMerge:                opts.OnMerge,
	}
	if gm.gameState == nil {
		gm.gameState = types.NewGameState(constants.InitialSpawnDelay)
	}
	if gm.spawner == nil {
		gm.spawner = NewSpawnController(SpawnControllerOptions{})
	}
	if gm.gameLoopInterval <= 0 {
		gm.gameLoopInterval = time.Second / 60
	}
	if gm.tracer == nil {
		gm.tracer = noop.NewTracerProvider().Tracer("watermelon/game")
	}
	return gm
}

// State returns the live game state. Callers must not mutate it.
func (gm *GameManager) State() *types.GameState {
	return gm.gameState
}

// Start runs the game loop at the configured interval until ctx is done.
func (gm *GameManager) Start(ctx context.Context) error {
	if gm.inputSource == nil {
		return fmt.Errorf("game manager has no input source")
	}

	ticker := time.NewTicker(gm.gameLoopInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if err := gm.Tick(ctx, gm.inputSource.Sample(), gm.gameLoopInterval); err != nil {
				log.Error("Failed to run game tick: %v", err)
			}
		}
	}
}

// Tick runs one frame: spawn and input handling, the physics step, then the
// collision batch.
func (gm *GameManager) Tick(ctx context.Context, input types.Input, dt time.Duration) error {
	gm.gameState.Tick++
	gm.guard.BeginTick()

	spawnIntents := gm.spawner.Update(gm.gameState, input, dt)
	gm.guard.Apply(gm.gameState, spawnIntents)

	gm.world.Step(dt)

	if err := gm.processContactForceEvents(); err != nil {
		return fmt.Errorf("failed to process contact force events: %v", err)
	}

	if err := gm.processCollisionEvents(ctx); err != nil {
		return fmt.Errorf("failed to process collision events: %v", err)
	}

	return nil
}

// processCollisionEvents drains the frame's collision batch, resolves merges
// and applies them through the lifecycle guard.
func (gm *GameManager) processCollisionEvents(ctx context.Context) error {
	if gm.collisionEventQueue == nil {
		return nil
	}
	events, err := gm.collisionEventQueue.ReadAllMessages()
	if err != nil {
		return fmt.Errorf("failed to read collision events: %v", err)
	}
	if len(events) == 0 {
		return nil
	}

	_, span := gm.tracer.Start(ctx, "game.processCollisionEvents", trace.WithAttributes(
		attribute.Int64("game.tick", int64(gm.gameState.Tick)),
		attribute.Int("game.collision_events", len(events)),
	))
	defer span.End()

	intents := gm.processor.Process(gm.gameState, events, gm.world, gm.guard)
	merges := gm.guard.Apply(gm.gameState, intents)
	span.SetAttributes(attribute.Int("game.merges", len(merges)))

	for _, merge := range merges {
		log.Debug("Merged %s", merge)
		if gm.onMerge != nil {
			gm.onMerge(merge)
		}
	}

	return nil
}

// processContactForceEvents logs contact forces. They have no effect on merging.
func (gm *GameManager) processContactForceEvents() error {
	if gm.contactForceEventQueue == nil {
		return nil
	}
	events, err := gm.contactForceEventQueue.ReadAllMessages()
	if err != nil {
		return fmt.Errorf("failed to read contact force events: %v", err)
	}
	for _, event := range events {
		log.Trace("Contact force between %d and %d: %0.2f", event.A, event.B, event.TotalForceMagnitude)
	}
	return nil
}
