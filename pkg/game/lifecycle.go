package game

import (
	"github.com/cbodonnell/watermelon/pkg/game/types"
	"github.com/cbodonnell/watermelon/pkg/log"
)

// LifecycleGuard applies intents to the collaborator so that every entity is
// despawned at most once per tick and stale handles are never acted on.
type LifecycleGuard struct {
	world     World
	consumed  map[types.EntityHandle]struct{}
	despawned map[types.EntityHandle]struct{}
	logger    *log.Logger
}

func NewLifecycleGuard(world World) *LifecycleGuard {
	return &LifecycleGuard{
		world:     world,
		consumed:  make(map[types.EntityHandle]struct{}),
		despawned: make(map[types.EntityHandle]struct{}),
		logger:    log.WithField("component", "lifecycle"),
	}
}

// BeginTick clears the per-tick bookkeeping.
func (g *LifecycleGuard) BeginTick() {
	clear(g.consumed)
	clear(g.despawned)
}

// Consume marks an entity as taken by a merge in this tick. It returns false
// if the entity was already consumed.
func (g *LifecycleGuard) Consume(entity types.EntityHandle) bool {
	if _, ok := g.consumed[entity]; ok {
		return false
	}
	g.consumed[entity] = struct{}{}
	return true
}

func (g *LifecycleGuard) IsConsumed(entity types.EntityHandle) bool {
	_, ok := g.consumed[entity]
	return ok
}

// Despawn removes a tracked entity. Repeated requests in the same tick and
// requests for untracked entities are no-ops.
func (g *LifecycleGuard) Despawn(state *types.GameState, entity types.EntityHandle) bool {
	if _, ok := g.despawned[entity]; ok {
		g.logger.Trace("Entity %d already despawned this tick", entity)
		return false
	}
	if _, ok := state.Tag(entity); !ok {
		g.logger.Trace("Entity %d is not tracked, ignoring despawn", entity)
		return false
	}
	g.despawned[entity] = struct{}{}
	state.RemoveTag(entity)
	if state.Current != nil && state.Current.Entity == entity {
		state.Current = nil
	}
	g.world.Despawn(entity)
	return true
}

// Apply materializes intents: despawns first, then spawns, then moves. It
// returns the merges that produced a new entity.
func (g *LifecycleGuard) Apply(state *types.GameState, intents types.Intents) []types.MergeEvent {
	var merges []types.MergeEvent

	for _, despawn := range intents.Despawns {
		g.Despawn(state, despawn.Entity)
	}

	for _, spawn := range intents.Spawns {
		if spawn.Merge != nil && !g.mergeInputsDespawned(spawn.Merge) {
			g.logger.Warn("Skipping %s spawn: merge inputs %d and %d were not despawned", spawn.Tier, spawn.Merge.A, spawn.Merge.B)
			continue
		}
		if spawn.Kind == types.BodyKindControllable && state.Current != nil {
			g.logger.Warn("Refusing to spawn a second controllable fruit (current entity %d)", state.Current.Entity)
			continue
		}

		entity := g.world.SpawnBody(spawn.Tier, spawn.Position, spawn.Kind, spawn.Params)
		if entity == types.InvalidEntity {
			g.logger.Warn("Collaborator failed to spawn %s %s", spawn.Kind, spawn.Tier)
			if spawn.Kind == types.BodyKindControllable && state.Current == nil && !state.SpawnTimer.Active() {
				// retry on the next frame
				state.SpawnTimer.Start(0)
			}
			continue
		}

		switch spawn.Kind {
		case types.BodyKindControllable:
			state.Current = &types.ControllableFruit{
				Tier:     spawn.Tier,
				Entity:   entity,
				Position: spawn.Position,
			}
			state.SetTag(entity, types.FruitTag{Tier: spawn.Tier, Role: types.RoleControllable})
		default:
			state.SetTag(entity, types.FruitTag{Tier: spawn.Tier, Role: types.RoleFree})
		}

		if spawn.Merge != nil {
			merge := *spawn.Merge
			merge.Result = entity
			merges = append(merges, merge)
		}
	}

	for _, move := range intents.Moves {
		if _, ok := g.despawned[move.Entity]; ok {
			continue
		}
		if _, ok := state.Tag(move.Entity); !ok {
			continue
		}
		g.world.SetPosition(move.Entity, move.Position)
	}

	return merges
}

func (g *LifecycleGuard) mergeInputsDespawned(merge *types.MergeEvent) bool {
	_, a := g.despawned[merge.A]
	_, b := g.despawned[merge.B]
	return a && b
}
