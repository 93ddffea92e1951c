package types

import (
	"testing"
	"time"

	"github.com/cbodonnell/watermelon/pkg/fruit"
	"github.com/stretchr/testify/assert"
)

func TestSpawnTimer_Advance(t *testing.T) {
	timer := NewSpawnTimer(time.Second)

	assert.False(t, timer.Advance(400*time.Millisecond))
	remaining, active := timer.Remaining()
	assert.True(t, active)
	assert.Equal(t, 600*time.Millisecond, remaining)

	assert.True(t, timer.Advance(600*time.Millisecond))
	assert.False(t, timer.Active())

	// an inactive timer never elapses again
	assert.False(t, timer.Advance(time.Hour))
}

func TestGameState_Copy(t *testing.T) {
	state := NewGameState(time.Second)
	state.Current = &ControllableFruit{Tier: fruit.Grape, Entity: 7}
	state.SetTag(7, FruitTag{Tier: fruit.Grape, Role: RoleControllable})

	copied := state.Copy()
	copied.Current.Tier = fruit.Apple
	copied.RemoveTag(7)

	assert.Equal(t, fruit.Grape, state.Current.Tier)
	_, ok := state.Tag(7)
	assert.True(t, ok)
}
