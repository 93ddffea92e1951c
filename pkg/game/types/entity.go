package types

import (
	"github.com/cbodonnell/watermelon/pkg/fruit"
	"github.com/cbodonnell/watermelon/pkg/kinematic"
)

// EntityHandle identifies a body owned by the physics/render collaborator.
type EntityHandle uint32

// InvalidEntity is never handed out by a collaborator.
const InvalidEntity EntityHandle = 0

type BodyKind uint8

const (
	// BodyKindControllable is positioned by the player; no gravity, no collision events.
	BodyKindControllable BodyKind = iota
	// BodyKindDynamic is fully simulated.
	BodyKindDynamic
	// BodyKindStatic collides but never moves.
	BodyKindStatic
)

func (k BodyKind) String() string {
	switch k {
	case BodyKindControllable:
		return "controllable"
	case BodyKindDynamic:
		return "dynamic"
	case BodyKindStatic:
		return "static"
	}
	return "unknown"
}

// BodyParams are the physical parameters requested for a new body.
type BodyParams struct {
	Mass                  float64
	GravityScale          float64
	CollisionEvents       bool
	CCD                   bool
	ContactForceThreshold float64
}

// Role distinguishes the player-held fruit from free fruits in the tag map.
type Role uint8

const (
	RoleControllable Role = iota
	RoleFree
)

func (r Role) String() string {
	switch r {
	case RoleControllable:
		return "controllable"
	case RoleFree:
		return "free"
	}
	return "unknown"
}

// FruitTag is the core-owned association of an entity to its tier.
type FruitTag struct {
	Tier fruit.Tier
	Role Role
}

// ControllableFruit is the single player-steered fruit awaiting release.
type ControllableFruit struct {
	Tier     fruit.Tier
	Entity   EntityHandle
	Position kinematic.Vector
}
