package types

import (
	"fmt"

	"github.com/cbodonnell/watermelon/pkg/fruit"
	"github.com/cbodonnell/watermelon/pkg/kinematic"
)

type CollisionEventKind uint8

const (
	CollisionStarted CollisionEventKind = iota
	CollisionStopped
)

func (k CollisionEventKind) String() string {
	switch k {
	case CollisionStarted:
		return "started"
	case CollisionStopped:
		return "stopped"
	}
	return "unknown"
}

// CollisionEvent is reported by the physics collaborator once per contact change.
type CollisionEvent struct {
	A    EntityHandle
	B    EntityHandle
	Kind CollisionEventKind
}

func (e CollisionEvent) String() string {
	return fmt.Sprintf("%s(%d, %d)", e.Kind, e.A, e.B)
}

// ContactForceEvent is reported when a contact pushes harder than the body's threshold.
type ContactForceEvent struct {
	A                   EntityHandle
	B                   EntityHandle
	TotalForceMagnitude float64
}

// Input holds the level-triggered signals sampled once per frame.
type Input struct {
	MoveLeft  bool
	MoveRight bool
	Drop      bool
}

// MergeEvent describes a completed promotion.
type MergeEvent struct {
	Tick     uint64
	A        EntityHandle
	B        EntityHandle
	From     fruit.Tier
	To       fruit.Tier
	Position kinematic.Vector
	Result   EntityHandle
}

func (m MergeEvent) String() string {
	return fmt.Sprintf("tick %d: %s %d + %s %d -> %s %d", m.Tick, m.From, m.A, m.From, m.B, m.To, m.Result)
}
