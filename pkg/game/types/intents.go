package types

import (
	"github.com/cbodonnell/watermelon/pkg/fruit"
	"github.com/cbodonnell/watermelon/pkg/kinematic"
)

// SpawnIntent asks the collaborator to create a body.
type SpawnIntent struct {
	Tier     fruit.Tier
	Position kinematic.Vector
	Kind     BodyKind
	Params   BodyParams
	// Merge is set when the spawn is the result of a promotion.
	Merge *MergeEvent
}

// DespawnIntent asks the collaborator to destroy a body.
type DespawnIntent struct {
	Entity EntityHandle
}

// MoveIntent asks the collaborator to place a body.
type MoveIntent struct {
	Entity   EntityHandle
	Position kinematic.Vector
}

// Intents is the ordered set of side effects produced by one stage of a tick.
// Despawns are applied before spawns.
type Intents struct {
	Despawns []DespawnIntent
	Spawns   []SpawnIntent
	Moves    []MoveIntent
}

func (i *Intents) Despawn(entity EntityHandle) {
	i.Despawns = append(i.Despawns, DespawnIntent{Entity: entity})
}

func (i *Intents) Spawn(intent SpawnIntent) {
	i.Spawns = append(i.Spawns, intent)
}

func (i *Intents) Move(entity EntityHandle, position kinematic.Vector) {
	i.Moves = append(i.Moves, MoveIntent{Entity: entity, Position: position})
}

func (i *Intents) Append(other Intents) {
	i.Despawns = append(i.Despawns, other.Despawns...)
	i.Spawns = append(i.Spawns, other.Spawns...)
	i.Moves = append(i.Moves, other.Moves...)
}

func (i Intents) Empty() bool {
	return len(i.Despawns) == 0 && len(i.Spawns) == 0 && len(i.Moves) == 0
}
