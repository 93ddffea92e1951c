package game

import (
	"github.com/cbodonnell/watermelon/pkg/fruit"
	"github.com/cbodonnell/watermelon/pkg/game/constants"
	"github.com/cbodonnell/watermelon/pkg/game/types"
	"github.com/cbodonnell/watermelon/pkg/log"
)

// Candidate is one endpoint of a collision with its resolved tier.
type Candidate struct {
	Entity types.EntityHandle
	Tier   fruit.Tier
}

type MergeOutcome uint8

const (
	// MergeOutcomeMismatch means the tiers differ.
	MergeOutcomeMismatch MergeOutcome = iota
	// MergeOutcomeTerminal means both fruits are the terminal tier.
	MergeOutcomeTerminal
	// MergeOutcomePromote means the pair merges into Tier.
	MergeOutcomePromote
)

func (o MergeOutcome) String() string {
	switch o {
	case MergeOutcomeMismatch:
		return "mismatch"
	case MergeOutcomeTerminal:
		return "terminal"
	case MergeOutcomePromote:
		return "promote"
	}
	return "unknown"
}

type MergeResult struct {
	Outcome MergeOutcome
	Tier    fruit.Tier
}

// MergeResolver turns a qualifying pair into despawn and spawn intents.
type MergeResolver struct {
	params types.BodyParams
	logger *log.Logger
}

// DefaultMergeParams are the physics parameters of a promoted fruit.
func DefaultMergeParams() types.BodyParams {
	return types.BodyParams{
		Mass:                  constants.FruitMass,
		GravityScale:          constants.MergedGravityScale,
		CollisionEvents:       true,
		CCD:                   true,
		ContactForceThreshold: constants.ContactForceThreshold,
	}
}

func NewMergeResolver(params *types.BodyParams) *MergeResolver {
	r := &MergeResolver{
		params: DefaultMergeParams(),
		logger: log.WithField("component", "merge"),
	}
	if params != nil {
		r.params = *params
	}
	return r
}

// Resolve classifies a pair without side effects.
func (r *MergeResolver) Resolve(a, b Candidate) MergeResult {
	if a.Tier != b.Tier {
		return MergeResult{Outcome: MergeOutcomeMismatch}
	}
	next, ok := fruit.Promote(a.Tier, b.Tier)
	if !ok {
		return MergeResult{Outcome: MergeOutcomeTerminal}
	}
	return MergeResult{Outcome: MergeOutcomePromote, Tier: next}
}

// Merge resolves a pair and, when it promotes, consumes both entities and
// emits their despawns plus one spawn of the successor at the first entity's
// position. It reports whether a merge happened.
func (r *MergeResolver) Merge(tick uint64, a, b Candidate, positions PositionReader, guard *LifecycleGuard) (types.Intents, bool) {
	var intents types.Intents

	result := r.Resolve(a, b)
	if result.Outcome != MergeOutcomePromote {
		r.logger.Trace("No merge for %s(%d) and %s(%d): %s", a.Tier, a.Entity, b.Tier, b.Entity, result.Outcome)
		return intents, false
	}

	position, ok := positions.Position(a.Entity)
	if !ok {
		r.logger.Warn("No position for entity %d, skipping merge", a.Entity)
		return intents, false
	}

	if guard.IsConsumed(a.Entity) || guard.IsConsumed(b.Entity) {
		return intents, false
	}
	guard.Consume(a.Entity)
	guard.Consume(b.Entity)

	r.logger.Debug("Merging %s(%d) and %s(%d) into %s", a.Tier, a.Entity, b.Tier, b.Entity, result.Tier)
	intents.Despawn(a.Entity)
	intents.Despawn(b.Entity)
	intents.Spawn(types.SpawnIntent{
		Tier:     result.Tier,
		Position: position,
		Kind:     types.BodyKindDynamic,
		Params:   r.params,
		Merge: &types.MergeEvent{
			Tick:     tick,
			A:        a.Entity,
			B:        b.Entity,
			From:     a.Tier,
			To:       result.Tier,
			Position: position,
		},
	})
	return intents, true
}
