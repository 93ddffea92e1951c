package game

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/cbodonnell/watermelon/pkg/fruit"
	"github.com/cbodonnell/watermelon/pkg/game/types"
	"github.com/cbodonnell/watermelon/pkg/kinematic"
	"github.com/cbodonnell/watermelon/pkg/queue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

type testManager struct {
	gm             *GameManager
	world          *fakeWorld
	collisions     *queue.InMemoryQueue[types.CollisionEvent]
	contactForces  *queue.InMemoryQueue[types.ContactForceEvent]
	merges         []types.MergeEvent
	spawnInterval  time.Duration
	initialSpawnIn time.Duration
}

func newTestManager(tier fruit.Tier) *testManager {
	tm := &testManager{
		world:          newFakeWorld(),
		collisions:     queue.NewInMemoryQueue[types.CollisionEvent](64),
		contactForces:  queue.NewInMemoryQueue[types.ContactForceEvent](64),
		spawnInterval:  time.Second,
		initialSpawnIn: time.Second,
	}
	tm.gm = NewGameManager(NewGameManagerOptions{
		World:                  tm.world,
		CollisionEventQueue:    tm.collisions,
		ContactForceEventQueue: tm.contactForces,
		GameState:              types.NewGameState(tm.initialSpawnIn),
		Spawner: NewSpawnController(SpawnControllerOptions{
			Policy:   FixedTierPolicy{Tier: tier},
			Interval: tm.spawnInterval,
		}),
		OnMerge: func(merge types.MergeEvent) {
			tm.merges = append(tm.merges, merge)
		},
	})
	return tm
}

func TestGameManager_Tick_spawnDropMerge(t *testing.T) {
	ctx := context.Background()
	tm := newTestManager(fruit.Cherry)
	state := tm.gm.State()

	// first fruit appears once the initial delay elapses
	require.NoError(t, tm.gm.Tick(ctx, types.Input{}, time.Second))
	require.NotNil(t, state.Current)
	first := state.Current.Entity
	assert.Equal(t, 1, tm.world.steps)

	// drop it
	require.NoError(t, tm.gm.Tick(ctx, types.Input{Drop: true}, time.Second/60))
	assert.Nil(t, state.Current)
	dropped := tm.world.handlesOfKind(types.BodyKindDynamic)
	require.Len(t, dropped, 1)
	assert.Contains(t, tm.world.despawned, first)

	// second fruit, dropped next to the first
	require.NoError(t, tm.gm.Tick(ctx, types.Input{}, time.Second))
	require.NotNil(t, state.Current)
	require.NoError(t, tm.gm.Tick(ctx, types.Input{Drop: true}, time.Second/60))
	dropped = tm.world.handlesOfKind(types.BodyKindDynamic)
	require.Len(t, dropped, 2)

	// the collaborator reports the contact, plus a wall contact that must be ignored
	require.NoError(t, tm.collisions.Enqueue(types.CollisionEvent{A: dropped[0], B: 1, Kind: types.CollisionStarted}))
	require.NoError(t, tm.collisions.Enqueue(types.CollisionEvent{A: dropped[0], B: dropped[1], Kind: types.CollisionStarted}))
	require.NoError(t, tm.contactForces.Enqueue(types.ContactForceEvent{A: dropped[0], B: dropped[1], TotalForceMagnitude: 42}))
	require.NoError(t, tm.gm.Tick(ctx, types.Input{}, time.Second/60))

	require.Len(t, tm.merges, 1)
	merge := tm.merges[0]
	assert.Equal(t, fruit.Cherry, merge.From)
	assert.Equal(t, fruit.Strawberry, merge.To)
	assert.Equal(t, dropped[0], merge.A)
	assert.Equal(t, dropped[1], merge.B)

	remaining := tm.world.handlesOfKind(types.BodyKindDynamic)
	assert.Equal(t, []types.EntityHandle{merge.Result}, remaining)
	assert.Equal(t, fruit.Strawberry, tm.world.bodies[merge.Result].tier)
	assert.Equal(t, DefaultMergeParams(), tm.world.bodies[merge.Result].params)
	assert.Equal(t, 0, tm.collisions.Size())
	assert.Equal(t, 0, tm.contactForces.Size())
}

func TestGameManager_Tick_consumedAcrossBatch(t *testing.T) {
	ctx := context.Background()
	tm := newTestManager(fruit.Cherry)
	state := tm.gm.State()
	state.SpawnTimer.Stop()

	a := addFreeFruit(state, tm.world, fruit.Grape, kinematic.Vector{X: 100})
	b := addFreeFruit(state, tm.world, fruit.Grape, kinematic.Vector{X: 120})
	c := addFreeFruit(state, tm.world, fruit.Grape, kinematic.Vector{X: 80})

	require.NoError(t, tm.collisions.Enqueue(types.CollisionEvent{A: a, B: b, Kind: types.CollisionStarted}))
	require.NoError(t, tm.collisions.Enqueue(types.CollisionEvent{A: a, B: c, Kind: types.CollisionStarted}))
	require.NoError(t, tm.gm.Tick(ctx, types.Input{}, time.Second/60))

	require.Len(t, tm.merges, 1)
	assert.ElementsMatch(t, []types.EntityHandle{a, b}, tm.world.despawned)
	tag, ok := state.Tag(c)
	require.True(t, ok, "c is untouched")
	assert.Equal(t, fruit.Grape, tag.Tier)
	assert.Len(t, state.Fruits, 2)
}

func TestGameManager_Tick_collisionSpan(t *testing.T) {
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	tm := newTestManager(fruit.Cherry)
	tm.gm.tracer = provider.Tracer("test")
	state := tm.gm.State()
	state.SpawnTimer.Stop()

	// no events, no span
	require.NoError(t, tm.gm.Tick(context.Background(), types.Input{}, time.Second/60))
	assert.Empty(t, recorder.Ended())

	a := addFreeFruit(state, tm.world, fruit.Grape, kinematic.Vector{X: 100})
	b := addFreeFruit(state, tm.world, fruit.Grape, kinematic.Vector{X: 120})
	require.NoError(t, tm.collisions.Enqueue(types.CollisionEvent{A: a, B: b, Kind: types.CollisionStarted}))
	require.NoError(t, tm.gm.Tick(context.Background(), types.Input{}, time.Second/60))

	spans := recorder.Ended()
	require.Len(t, spans, 1)
	assert.Equal(t, "game.processCollisionEvents", spans[0].Name())
	assert.Contains(t, spans[0].Attributes(), attribute.Int64("game.tick", 2))
	assert.Contains(t, spans[0].Attributes(), attribute.Int("game.collision_events", 1))
	assert.Contains(t, spans[0].Attributes(), attribute.Int("game.merges", 1))
}

func TestGameManager_Tick_recoversFromFailedSpawn(t *testing.T) {
	ctx := context.Background()
	tm := newTestManager(fruit.Cherry)
	tm.world.failSpawns = 1
	state := tm.gm.State()

	for i := 0; i < 600; i++ {
		require.NoError(t, tm.gm.Tick(ctx, types.Input{}, time.Second/60))
	}

	require.NotNil(t, state.Current, "a controllable fruit spawns after the failed attempt")
	assert.Equal(t, SpawnStateControllable, SpawnStateOf(state))
	assert.Len(t, tm.world.handlesOfKind(types.BodyKindControllable), 1)
}

func TestGameManager_Tick_atMostOneControllable(t *testing.T) {
	ctx := context.Background()
	tm := newTestManager(fruit.Cherry)
	state := tm.gm.State()
	rng := rand.New(rand.NewSource(7))

	for i := 0; i < 2000; i++ {
		input := types.Input{
			MoveLeft:  rng.Intn(3) == 0,
			MoveRight: rng.Intn(3) == 0,
			Drop:      rng.Intn(10) == 0,
		}
		// occasionally report contacts between random free fruits
		free := tm.world.handlesOfKind(types.BodyKindDynamic)
		if len(free) >= 2 && rng.Intn(4) == 0 {
			x, y := free[rng.Intn(len(free))], free[rng.Intn(len(free))]
			require.NoError(t, tm.collisions.Enqueue(types.CollisionEvent{A: x, B: y, Kind: types.CollisionStarted}))
		}
		dt := time.Duration(rng.Intn(100)) * time.Millisecond
		require.NoError(t, tm.gm.Tick(ctx, input, dt))

		controllables := 0
		for _, tag := range state.Fruits {
			if tag.Role == types.RoleControllable {
				controllables++
			}
		}
		require.LessOrEqual(t, controllables, 1, "tick %d", i)
		require.LessOrEqual(t, len(tm.world.handlesOfKind(types.BodyKindControllable)), 1, "tick %d", i)
		if state.Current != nil {
			tag, ok := state.Tag(state.Current.Entity)
			require.True(t, ok)
			require.Equal(t, types.RoleControllable, tag.Role)
		}
		// every tracked entity is alive in the world
		for entity := range state.Fruits {
			_, ok := tm.world.bodies[entity]
			require.True(t, ok, "tick %d: entity %d tracked but not alive", i, entity)
		}
	}
	assert.NotEmpty(t, tm.merges)
}

func TestGameManager_Start(t *testing.T) {
	tm := newTestManager(fruit.Cherry)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.Error(t, tm.gm.Start(ctx), "no input source")

	gm := NewGameManager(NewGameManagerOptions{
		World:            tm.world,
		InputSource:      InputFunc(func() types.Input { return types.Input{} }),
		GameLoopInterval: time.Millisecond,
	})
	assert.NoError(t, gm.Start(ctx))
}

func TestGameManager_Start_runsTicks(t *testing.T) {
	world := newFakeWorld()
	gm := NewGameManager(NewGameManagerOptions{
		World:            world,
		InputSource:      InputFunc(func() types.Input { return types.Input{} }),
		GameLoopInterval: time.Millisecond,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	require.NoError(t, gm.Start(ctx))
	assert.Greater(t, gm.State().Tick, uint64(0))
	assert.Equal(t, int(gm.State().Tick), world.steps)
}
