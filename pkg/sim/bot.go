// Package sim runs the game headless with a scripted player.
package sim

import (
	"math"
	"math/rand"

	"github.com/cbodonnell/watermelon/pkg/fruit"
	"github.com/cbodonnell/watermelon/pkg/game"
	"github.com/cbodonnell/watermelon/pkg/game/types"
)

// Bot steers each controllable fruit to a random x inside [minX, maxX] and
// drops it there.
type Bot struct {
	rng       *rand.Rand
	state     *types.GameState
	minX      float64
	maxX      float64
	step      float64
	target    float64
	targetFor types.EntityHandle
	lastX     float64
	moving    bool
}

var _ game.InputSource = &Bot{}

// NewBot creates a bot for a fruit that moves step units per tick.
func NewBot(seed int64, state *types.GameState, minX, maxX, step float64) *Bot {
	return &Bot{
		rng:   rand.New(rand.NewSource(seed)),
		state: state,
		minX:  minX,
		maxX:  maxX,
		step:  math.Max(step, 1),
	}
}

func (b *Bot) Sample() types.Input {
	current := b.state.Current
	if current == nil {
		return types.Input{}
	}

	x := current.Position.X
	if b.targetFor != current.Entity {
		r := fruit.Radius(current.Tier)
		lo, hi := b.minX+r, b.maxX-r
		b.target = x
		if hi > lo {
			b.target = lo + b.rng.Float64()*(hi-lo)
		}
		b.targetFor = current.Entity
		b.moving = false
	} else if b.moving && x == b.lastX {
		// blocked, drop where we are
		return types.Input{Drop: true}
	}

	b.lastX = x
	dx := b.target - x
	switch {
	case math.Abs(dx) <= b.step/2:
		b.moving = false
		return types.Input{Drop: true}
	case dx < 0:
		b.moving = true
		return types.Input{MoveLeft: true}
	default:
		b.moving = true
		return types.Input{MoveRight: true}
	}
}
