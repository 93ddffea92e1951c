package game

import (
	"time"

	"github.com/cbodonnell/watermelon/pkg/fruit"
	"github.com/cbodonnell/watermelon/pkg/game/types"
	"github.com/cbodonnell/watermelon/pkg/kinematic"
)

// PositionReader reads body transforms owned by the collaborator.
type PositionReader interface {
	// Position returns the center of a live body.
	Position(entity types.EntityHandle) (kinematic.Vector, bool)
}

// World is the physics/render collaborator. It owns transforms and
// velocities; the game core owns only the tier tags.
type World interface {
	PositionReader

	// SpawnBody creates a body and returns its handle, or types.InvalidEntity on failure.
	SpawnBody(tier fruit.Tier, position kinematic.Vector, kind types.BodyKind, params types.BodyParams) types.EntityHandle
	// Despawn destroys a body. Unknown handles are ignored.
	Despawn(entity types.EntityHandle)
	// SetPosition places a body.
	SetPosition(entity types.EntityHandle, position kinematic.Vector)
	// Step advances the simulation and reports contact changes to the collaborator's event queues.
	Step(dt time.Duration)
}

// InputSource samples the player's signals once per frame.
type InputSource interface {
	Sample() types.Input
}

// InputFunc adapts a function to InputSource.
type InputFunc func() types.Input

func (f InputFunc) Sample() types.Input {
	return f()
}
