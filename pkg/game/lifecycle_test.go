package game

import (
	"testing"
	"time"

	"github.com/cbodonnell/watermelon/pkg/fruit"
	"github.com/cbodonnell/watermelon/pkg/game/types"
	"github.com/cbodonnell/watermelon/pkg/kinematic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestLifecycleGuard_Despawn_idempotent(t *testing.T) {
	world := &mockWorld{}
	world.On("Despawn", types.EntityHandle(5)).Return().Once()

	state := types.NewGameState(time.Second)
	state.SetTag(5, types.FruitTag{Tier: fruit.Cherry, Role: types.RoleFree})
	guard := NewLifecycleGuard(world)
	guard.BeginTick()

	assert.True(t, guard.Despawn(state, 5))
	assert.False(t, guard.Despawn(state, 5))

	guard.BeginTick()
	assert.False(t, guard.Despawn(state, 5), "entity is no longer tracked in the next tick")

	world.AssertExpectations(t)
	world.AssertNumberOfCalls(t, "Despawn", 1)
}

func TestLifecycleGuard_Despawn_untracked(t *testing.T) {
	world := &mockWorld{}
	state := types.NewGameState(time.Second)
	guard := NewLifecycleGuard(world)

	assert.False(t, guard.Despawn(state, 9))
	world.AssertNotCalled(t, "Despawn", mock.Anything)
}

func TestLifecycleGuard_Apply_duplicateDespawnIntents(t *testing.T) {
	world := &mockWorld{}
	world.On("Despawn", types.EntityHandle(1)).Return().Once()

	state := types.NewGameState(time.Second)
	state.SetTag(1, types.FruitTag{Tier: fruit.Cherry, Role: types.RoleFree})
	guard := NewLifecycleGuard(world)

	var intents types.Intents
	intents.Despawn(1)
	intents.Despawn(1)
	guard.Apply(state, intents)

	world.AssertNumberOfCalls(t, "Despawn", 1)
	_, ok := state.Tag(1)
	assert.False(t, ok)
}

func TestLifecycleGuard_Apply_controllable(t *testing.T) {
	position := kinematic.Vector{X: 320, Y: 640}
	world := &mockWorld{}
	world.On("SpawnBody", fruit.Grape, position, types.BodyKindControllable, types.BodyParams{}).Return(types.EntityHandle(11)).Once()

	state := types.NewGameState(time.Second)
	guard := NewLifecycleGuard(world)

	var intents types.Intents
	intents.Spawn(types.SpawnIntent{Tier: fruit.Grape, Position: position, Kind: types.BodyKindControllable})
	guard.Apply(state, intents)

	require.NotNil(t, state.Current)
	assert.Equal(t, types.EntityHandle(11), state.Current.Entity)
	assert.Equal(t, position, state.Current.Position)
	tag, ok := state.Tag(11)
	require.True(t, ok)
	assert.Equal(t, types.RoleControllable, tag.Role)

	// a second controllable is refused while one exists
	guard.Apply(state, intents)
	world.AssertNumberOfCalls(t, "SpawnBody", 1)
	assert.Equal(t, types.EntityHandle(11), state.Current.Entity)
}

func TestLifecycleGuard_Apply_merge(t *testing.T) {
	state := types.NewGameState(time.Second)
	world := newFakeWorld()
	guard := NewLifecycleGuard(world)

	a := addFreeFruit(state, world, fruit.Cherry, kinematic.Vector{X: 10, Y: 10})
	b := addFreeFruit(state, world, fruit.Cherry, kinematic.Vector{X: 30, Y: 10})

	intents, ok := NewMergeResolver(nil).Merge(1, Candidate{Entity: a, Tier: fruit.Cherry}, Candidate{Entity: b, Tier: fruit.Cherry}, world, guard)
	require.True(t, ok)

	merges := guard.Apply(state, intents)
	require.Len(t, merges, 1)
	merge := merges[0]
	assert.Equal(t, fruit.Cherry, merge.From)
	assert.Equal(t, fruit.Strawberry, merge.To)

	assert.ElementsMatch(t, []types.EntityHandle{a, b}, world.despawned)
	tag, ok := state.Tag(merge.Result)
	require.True(t, ok)
	assert.Equal(t, types.FruitTag{Tier: fruit.Strawberry, Role: types.RoleFree}, tag)
	assert.Len(t, state.Fruits, 1)
}

func TestLifecycleGuard_Apply_mergeWithStaleInput(t *testing.T) {
	state := types.NewGameState(time.Second)
	world := newFakeWorld()
	guard := NewLifecycleGuard(world)

	a := addFreeFruit(state, world, fruit.Cherry, kinematic.Vector{})
	// b was never tracked, so its despawn is a no-op and the merge must not materialize
	var intents types.Intents
	intents.Despawn(a)
	intents.Despawn(999)
	intents.Spawn(types.SpawnIntent{
		Tier:  fruit.Strawberry,
		Kind:  types.BodyKindDynamic,
		Merge: &types.MergeEvent{A: a, B: 999, From: fruit.Cherry, To: fruit.Strawberry},
	})

	merges := guard.Apply(state, intents)
	assert.Empty(t, merges)
	assert.Empty(t, state.Fruits)
	assert.Empty(t, world.bodies)
}

func TestLifecycleGuard_Apply_moves(t *testing.T) {
	world := &mockWorld{}
	world.On("Despawn", types.EntityHandle(2)).Return().Once()
	world.On("SetPosition", types.EntityHandle(1), kinematic.Vector{X: 5}).Return().Once()

	state := types.NewGameState(time.Second)
	state.SetTag(1, types.FruitTag{Tier: fruit.Grape, Role: types.RoleControllable})
	state.SetTag(2, types.FruitTag{Tier: fruit.Grape, Role: types.RoleFree})
	guard := NewLifecycleGuard(world)

	var intents types.Intents
	intents.Despawn(2)
	intents.Move(1, kinematic.Vector{X: 5})
	intents.Move(2, kinematic.Vector{X: 6})
	intents.Move(3, kinematic.Vector{X: 7})
	guard.Apply(state, intents)

	world.AssertExpectations(t)
	world.AssertNumberOfCalls(t, "SetPosition", 1)
}

func TestLifecycleGuard_Apply_spawnFailure(t *testing.T) {
	world := &mockWorld{}
	world.On("SpawnBody", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(types.InvalidEntity)

	state := types.NewGameState(time.Second)
	guard := NewLifecycleGuard(world)

	var intents types.Intents
	intents.Spawn(types.SpawnIntent{Tier: fruit.Grape, Kind: types.BodyKindControllable})
	guard.Apply(state, intents)

	assert.Nil(t, state.Current)
	assert.Empty(t, state.Fruits)
	remaining, active := state.SpawnTimer.Remaining()
	assert.True(t, active, "countdown restarts after a failed controllable spawn")
	assert.Equal(t, time.Duration(0), remaining)
}

func TestLifecycleGuard_Apply_spawnFailureThenRetry(t *testing.T) {
	world := &mockWorld{}
	world.On("SpawnBody", fruit.Grape, mock.Anything, types.BodyKindControllable, mock.Anything).Return(types.InvalidEntity).Once()
	world.On("SpawnBody", fruit.Grape, mock.Anything, types.BodyKindControllable, mock.Anything).Return(types.EntityHandle(7)).Once()

	state := types.NewGameState(0)
	spawner := NewSpawnController(SpawnControllerOptions{
		Policy:   FixedTierPolicy{Tier: fruit.Grape},
		Interval: time.Second,
	})
	guard := NewLifecycleGuard(world)

	guard.BeginTick()
	guard.Apply(state, spawner.Update(state, types.Input{}, time.Second/60))
	require.Nil(t, state.Current)
	assert.Equal(t, SpawnStateCountingDown, SpawnStateOf(state))

	guard.BeginTick()
	guard.Apply(state, spawner.Update(state, types.Input{}, time.Second/60))
	require.NotNil(t, state.Current)
	assert.Equal(t, types.EntityHandle(7), state.Current.Entity)
	world.AssertNumberOfCalls(t, "SpawnBody", 2)
}
