package game

import (
	"github.com/cbodonnell/watermelon/pkg/game/types"
	"github.com/cbodonnell/watermelon/pkg/log"
)

// CollisionBatchProcessor turns one frame's collision events into merge intents.
// Events are evaluated in arrival order and the first pair to claim an entity
// wins it for the rest of the batch.
type CollisionBatchProcessor struct {
	resolver *MergeResolver
	logger   *log.Logger
}

func NewCollisionBatchProcessor(resolver *MergeResolver) *CollisionBatchProcessor {
	if resolver == nil {
		resolver = NewMergeResolver(nil)
	}
	return &CollisionBatchProcessor{
		resolver: resolver,
		logger:   log.WithField("component", "collisions"),
	}
}

// Process evaluates a batch. Entities consumed by a merge are recorded in the guard.
func (p *CollisionBatchProcessor) Process(state *types.GameState, events []types.CollisionEvent, positions PositionReader, guard *LifecycleGuard) types.Intents {
	var intents types.Intents

	for _, event := range events {
		if event.Kind != types.CollisionStarted {
			continue
		}
		if event.A == event.B {
			continue
		}
		if guard.IsConsumed(event.A) || guard.IsConsumed(event.B) {
			p.logger.Trace("Skipping %s: endpoint already consumed", event)
			continue
		}

		a, ok := p.candidate(state, event.A)
		if !ok {
			p.logger.Trace("Skipping %s: entity %d is not a free fruit", event, event.A)
			continue
		}
		b, ok := p.candidate(state, event.B)
		if !ok {
			p.logger.Trace("Skipping %s: entity %d is not a free fruit", event, event.B)
			continue
		}

		merged, ok := p.resolver.Merge(state.Tick, a, b, positions, guard)
		if !ok {
			continue
		}
		intents.Append(merged)
	}

	return intents
}

func (p *CollisionBatchProcessor) candidate(state *types.GameState, entity types.EntityHandle) (Candidate, bool) {
	tag, ok := state.Tag(entity)
	if !ok || tag.Role != types.RoleFree {
		return Candidate{}, false
	}
	return Candidate{Entity: entity, Tier: tag.Tier}, true
}
