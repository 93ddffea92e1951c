package game

import (
	"sort"
	"time"

	"github.com/cbodonnell/watermelon/pkg/fruit"
	"github.com/cbodonnell/watermelon/pkg/game/types"
	"github.com/cbodonnell/watermelon/pkg/kinematic"
	"github.com/stretchr/testify/mock"
)

// mockWorld is a testify mock of the World collaborator.
type mockWorld struct {
	mock.Mock
}

func (m *mockWorld) SpawnBody(tier fruit.Tier, position kinematic.Vector, kind types.BodyKind, params types.BodyParams) types.EntityHandle {
	args := m.Called(tier, position, kind, params)
	return args.Get(0).(types.EntityHandle)
}

func (m *mockWorld) Despawn(entity types.EntityHandle) {
	m.Called(entity)
}

func (m *mockWorld) SetPosition(entity types.EntityHandle, position kinematic.Vector) {
	m.Called(entity, position)
}

func (m *mockWorld) Position(entity types.EntityHandle) (kinematic.Vector, bool) {
	args := m.Called(entity)
	return args.Get(0).(kinematic.Vector), args.Bool(1)
}

func (m *mockWorld) Step(dt time.Duration) {
	m.Called(dt)
}

// fakeWorld is an in-memory World that records what it was asked to do.
type fakeWorld struct {
	next      types.EntityHandle
	bodies    map[types.EntityHandle]fakeBody
	despawned []types.EntityHandle
	steps     int
	// failSpawns makes the next n SpawnBody calls return InvalidEntity
	failSpawns int
}

type fakeBody struct {
	tier     fruit.Tier
	position kinematic.Vector
	kind     types.BodyKind
	params   types.BodyParams
}

var _ World = &fakeWorld{}

func newFakeWorld() *fakeWorld {
	return &fakeWorld{
		next:   100,
		bodies: make(map[types.EntityHandle]fakeBody),
	}
}

func (w *fakeWorld) SpawnBody(tier fruit.Tier, position kinematic.Vector, kind types.BodyKind, params types.BodyParams) types.EntityHandle {
	if w.failSpawns > 0 {
		w.failSpawns--
		return types.InvalidEntity
	}
	w.next++
	w.bodies[w.next] = fakeBody{tier: tier, position: position, kind: kind, params: params}
	return w.next
}

func (w *fakeWorld) Despawn(entity types.EntityHandle) {
	w.despawned = append(w.despawned, entity)
	delete(w.bodies, entity)
}

func (w *fakeWorld) SetPosition(entity types.EntityHandle, position kinematic.Vector) {
	if body, ok := w.bodies[entity]; ok {
		body.position = position
		w.bodies[entity] = body
	}
}

func (w *fakeWorld) Position(entity types.EntityHandle) (kinematic.Vector, bool) {
	body, ok := w.bodies[entity]
	return body.position, ok
}

func (w *fakeWorld) Step(_ time.Duration) {
	w.steps++
}

func (w *fakeWorld) handlesOfKind(kind types.BodyKind) []types.EntityHandle {
	var handles []types.EntityHandle
	for handle, body := range w.bodies {
		if body.kind == kind {
			handles = append(handles, handle)
		}
	}
	sort.Slice(handles, func(i, j int) bool { return handles[i] < handles[j] })
	return handles
}

// addFreeFruit places a tracked free fruit in the world.
func addFreeFruit(state *types.GameState, world *fakeWorld, tier fruit.Tier, position kinematic.Vector) types.EntityHandle {
	entity := world.SpawnBody(tier, position, types.BodyKindDynamic, DefaultDropParams())
	state.SetTag(entity, types.FruitTag{Tier: tier, Role: types.RoleFree})
	return entity
}
