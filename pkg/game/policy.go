package game

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"

	"github.com/cbodonnell/watermelon/pkg/fruit"
	"github.com/cbodonnell/watermelon/pkg/game/types"
)

// TierPolicy chooses the tier of each new controllable fruit.
type TierPolicy interface {
	NextTier(state *types.GameState) fruit.Tier
}

// DefaultSpawnTier is the tier used when no policy is configured.
const DefaultSpawnTier = fruit.Grape

// FixedTierPolicy always spawns the same tier.
type FixedTierPolicy struct {
	Tier fruit.Tier
}

func (p FixedTierPolicy) NextTier(_ *types.GameState) fruit.Tier {
	return p.Tier
}

func (p FixedTierPolicy) String() string {
	return fmt.Sprintf("fixed:%s", p.Tier)
}

// RandomTierPolicy spawns a uniformly chosen tier between Cherry and Max.
type RandomTierPolicy struct {
	lock sync.Mutex
	rng  *rand.Rand
	max  fruit.Tier
	seed int64
}

func NewRandomTierPolicy(seed int64, max fruit.Tier) *RandomTierPolicy {
	return &RandomTierPolicy{
		rng:  rand.New(rand.NewSource(seed)),
		max:  max,
		seed: seed,
	}
}

func (p *RandomTierPolicy) NextTier(_ *types.GameState) fruit.Tier {
	p.lock.Lock()
	defer p.lock.Unlock()
	return fruit.Tier(p.rng.Intn(int(p.max) + 1))
}

func (p *RandomTierPolicy) String() string {
	return fmt.Sprintf("random:%s", p.max)
}

// ParseTierPolicy parses "fixed:<tier>", "random:<max tier>" or a bare tier name.
func ParseTierPolicy(s string, seed int64) (TierPolicy, error) {
	kind, arg, found := strings.Cut(strings.TrimSpace(s), ":")
	if !found {
		arg = kind
		kind = "fixed"
	}
	if arg == "" {
		return nil, fmt.Errorf("tier policy %q is missing a tier", s)
	}
	tier, err := fruit.ParseTier(arg)
	if err != nil {
		return nil, fmt.Errorf("failed to parse tier policy %q: %v", s, err)
	}
	switch strings.ToLower(kind) {
	case "fixed":
		return FixedTierPolicy{Tier: tier}, nil
	case "random":
		return NewRandomTierPolicy(seed, tier), nil
	default:
		return nil, fmt.Errorf("unknown tier policy: %s", kind)
	}
}
