package game

import (
	"testing"

	"github.com/cbodonnell/watermelon/pkg/fruit"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFixedTierPolicy(t *testing.T) {
	p := FixedTierPolicy{Tier: fruit.Grape}
	for i := 0; i < 5; i++ {
		assert.Equal(t, fruit.Grape, p.NextTier(nil))
	}
}

func TestRandomTierPolicy(t *testing.T) {
	a := NewRandomTierPolicy(42, fruit.Persimmon)
	b := NewRandomTierPolicy(42, fruit.Persimmon)
	for i := 0; i < 200; i++ {
		got := a.NextTier(nil)
		assert.LessOrEqual(t, got, fruit.Persimmon)
		assert.Equal(t, got, b.NextTier(nil), "same seed must give the same sequence")
	}
}

func TestParseTierPolicy(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{name: "bare tier", input: "grape", want: "fixed:Grape"},
		{name: "fixed", input: "fixed:cherry", want: "fixed:Cherry"},
		{name: "random", input: "random:persimmon", want: "random:Persimmon"},
		{name: "unknown tier", input: "fixed:durian", wantErr: true},
		{name: "unknown kind", input: "escalating:grape", wantErr: true},
		{name: "missing tier", input: "random:", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseTierPolicy(tt.input, 1)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.(interface{ String() string }).String())
		})
	}
}
