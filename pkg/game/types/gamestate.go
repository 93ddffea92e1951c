package types

import "time"

// SpawnTimer counts down to the next controllable fruit. An inactive timer
// means no countdown is running.
type SpawnTimer struct {
	remaining time.Duration
	active    bool
}

func NewSpawnTimer(d time.Duration) SpawnTimer {
	return SpawnTimer{remaining: d, active: true}
}

func (t *SpawnTimer) Start(d time.Duration) {
	t.remaining = d
	t.active = true
}

func (t *SpawnTimer) Stop() {
	t.remaining = 0
	t.active = false
}

func (t SpawnTimer) Active() bool {
	return t.active
}

// Remaining returns the time left and whether a countdown is running.
func (t SpawnTimer) Remaining() (time.Duration, bool) {
	return t.remaining, t.active
}

// Advance decrements an active countdown by dt and reports whether it
// elapsed. An elapsed timer becomes inactive.
func (t *SpawnTimer) Advance(dt time.Duration) bool {
	if !t.active {
		return false
	}
	t.remaining -= dt
	if t.remaining > 0 {
		return false
	}
	t.Stop()
	return true
}

type GameState struct {
	// Tick is the number of frames processed
	Tick uint64
	// Current is the controllable fruit, or nil
	Current *ControllableFruit
	// SpawnTimer counts down to the next controllable fruit
	SpawnTimer SpawnTimer
	// Fruits maps tracked entities to their tier tags
	Fruits map[EntityHandle]FruitTag
}

func NewGameState(initialSpawnDelay time.Duration) *GameState {
	return &GameState{
		SpawnTimer: NewSpawnTimer(initialSpawnDelay),
		Fruits:     make(map[EntityHandle]FruitTag),
	}
}

// Tag returns the tier tag of a tracked entity.
func (g *GameState) Tag(entity EntityHandle) (FruitTag, bool) {
	tag, ok := g.Fruits[entity]
	return tag, ok
}

func (g *GameState) SetTag(entity EntityHandle, tag FruitTag) {
	g.Fruits[entity] = tag
}

func (g *GameState) RemoveTag(entity EntityHandle) {
	delete(g.Fruits, entity)
}

// Copy returns a deep copy of the game state.
func (g *GameState) Copy() *GameState {
	newGameState := &GameState{
		Tick:       g.Tick,
		SpawnTimer: g.SpawnTimer,
		Fruits:     make(map[EntityHandle]FruitTag, len(g.Fruits)),
	}
	if g.Current != nil {
		current := *g.Current
		newGameState.Current = &current
	}
	for entity, tag := range g.Fruits {
		newGameState.Fruits[entity] = tag
	}
	return newGameState
}
