package game

import (
	"math"
	"time"

	"github.com/cbodonnell/watermelon/pkg/fruit"
	"github.com/cbodonnell/watermelon/pkg/game/constants"
	"github.com/cbodonnell/watermelon/pkg/game/types"
	"github.com/cbodonnell/watermelon/pkg/kinematic"
	"github.com/cbodonnell/watermelon/pkg/log"
)

// SpawnState is the state of the controllable slot.
type SpawnState uint8

const (
	SpawnStateEmpty SpawnState = iota
	SpawnStateCountingDown
	SpawnStateControllable
)

func (s SpawnState) String() string {
	switch s {
	case SpawnStateEmpty:
		return "Empty"
	case SpawnStateCountingDown:
		return "CountingDown"
	case SpawnStateControllable:
		return "Controllable"
	}
	return "Unknown"
}

// SpawnStateOf derives the spawn state from the game state.
func SpawnStateOf(state *types.GameState) SpawnState {
	if state.Current != nil {
		return SpawnStateControllable
	}
	if state.SpawnTimer.Active() {
		return SpawnStateCountingDown
	}
	return SpawnStateEmpty
}

// SpawnController owns the controllable fruit and the respawn countdown.
type SpawnController struct {
	policy        TierPolicy
	interval      time.Duration
	spawnPosition kinematic.Vector
	moveStep      float64
	minX          float64
	maxX          float64
	dropParams    types.BodyParams
	logger        *log.Logger
}

// SpawnControllerOptions contains options for creating a new SpawnController.
// Zero values fall back to the defaults in the constants package.
type SpawnControllerOptions struct {
	Policy        TierPolicy
	Interval      time.Duration
	SpawnPosition *kinematic.Vector
	MoveStep      float64
	// MinX and MaxX bound the controllable fruit's edges; unbounded when MaxX <= MinX.
	MinX       float64
	MaxX       float64
	DropParams *types.BodyParams
}

// DefaultDropParams are the physics parameters of a released fruit.
func DefaultDropParams() types.BodyParams {
	return types.BodyParams{
		Mass:                  constants.FruitMass,
		GravityScale:          constants.DropGravityScale,
		CollisionEvents:       true,
		CCD:                   true,
		ContactForceThreshold: constants.ContactForceThreshold,
	}
}

func NewSpawnController(opts SpawnControllerOptions) *SpawnController {
	s := &SpawnController{
		policy:        opts.Policy,
		interval:      opts.Interval,
		spawnPosition: constants.SpawnPosition,
		moveStep:      opts.MoveStep,
		minX:          opts.MinX,
		maxX:          opts.MaxX,
		dropParams:    DefaultDropParams(),
		logger:        log.WithField("component", "spawn"),
	}
	if s.policy == nil {
		s.policy = FixedTierPolicy{Tier: DefaultSpawnTier}
	}
	if s.interval <= 0 {
		s.interval = constants.SpawnInterval
	}
	if opts.SpawnPosition != nil {
		s.spawnPosition = *opts.SpawnPosition
	}
	if s.moveStep <= 0 {
		s.moveStep = constants.MoveStep
	}
	if opts.DropParams != nil {
		s.dropParams = *opts.DropParams
	}
	return s
}

// Interval returns the delay between a release and the next spawn.
func (s *SpawnController) Interval() time.Duration {
	return s.interval
}

// Update runs one frame of the spawn state machine. Input is handled before
// the countdown, so a release never spawns its successor in the same frame.
func (s *SpawnController) Update(state *types.GameState, input types.Input, dt time.Duration) types.Intents {
	var intents types.Intents

	if current := state.Current; current != nil {
		s.move(current, input, &intents)
		if input.Drop {
			intents.Append(s.Release(state))
		}
		return intents
	}

	if input.Drop {
		s.logger.Trace("Drop ignored: no controllable fruit")
	}

	if state.SpawnTimer.Advance(dt) {
		tier := s.policy.NextTier(state)
		s.logger.Debug("Spawning controllable %s", tier)
		intents.Spawn(types.SpawnIntent{
			Tier:     tier,
			Position: s.spawnPosition,
			Kind:     types.BodyKindControllable,
		})
	}

	return intents
}

func (s *SpawnController) move(current *types.ControllableFruit, input types.Input, intents *types.Intents) {
	step := 0.0
	if input.MoveLeft {
		step -= s.moveStep
	} else if input.MoveRight {
		step += s.moveStep
	}
	if step == 0 {
		return
	}
	x := s.clampX(current.Position.X+step, current.Tier)
	if x == current.Position.X {
		return
	}
	current.Position.X = x
	intents.Move(current.Entity, current.Position)
}

func (s *SpawnController) clampX(x float64, tier fruit.Tier) float64 {
	if s.maxX <= s.minX {
		return x
	}
	r := fruit.Radius(tier)
	lo, hi := s.minX+r, s.maxX-r
	if lo > hi {
		return (s.minX + s.maxX) / 2
	}
	return math.Max(lo, math.Min(hi, x))
}

// MoveStep returns how far the controllable fruit moves per tick.
func (s *SpawnController) MoveStep() float64 {
	return s.moveStep
}

// Release converts the controllable fruit into a free body and restarts the
// countdown. It is a no-op when no controllable fruit exists.
func (s *SpawnController) Release(state *types.GameState) types.Intents {
	var intents types.Intents
	current := state.Current
	if current == nil {
		return intents
	}

	s.logger.Debug("Dropping %s (entity %d) at x=%0.1f", current.Tier, current.Entity, current.Position.X)
	intents.Despawn(current.Entity)
	intents.Spawn(types.SpawnIntent{
		Tier:     current.Tier,
		Position: current.Position,
		Kind:     types.BodyKindDynamic,
		Params:   s.dropParams,
	})

	state.Current = nil
	state.SpawnTimer.Start(s.interval)
	return intents
}
