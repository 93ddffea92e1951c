// Package fruit holds the static tier catalog: the progression order, the
// physical radius and render color of each tier, and its successor.
package fruit

import (
	"fmt"
	"image/color"
	"math"
	"strings"
)

// Tier is one rank in the fruit progression. Higher ranks are larger fruits.
type Tier uint8

const (
	Cherry Tier = iota
	Strawberry
	Grape
	Decopon
	Persimmon
	Apple
	Pear
	Peach
	Pineapple
	Melon
	Watermelon
)

const (
	// TierCount is the number of tiers in the progression.
	TierCount = int(Watermelon) + 1
	// Terminal is the highest tier, which cannot be promoted.
	Terminal = Watermelon

	baseRadius       = 10.0
	radiusMultiplier = 1.3
)

// RGB is a render color with channels in [0, 1].
type RGB struct {
	R float32
	G float32
	B float32
}

var _ color.Color = RGB{}

// RGBA implements color.Color with full opacity.
func (c RGB) RGBA() (r, g, b, a uint32) {
	return channel(c.R), channel(c.G), channel(c.B), 0xffff
}

func channel(v float32) uint32 {
	if v <= 0 {
		return 0
	}
	if v >= 1 {
		return 0xffff
	}
	return uint32(v*0xffff + 0.5)
}

// Entry is the catalog row for a tier.
type Entry struct {
	Tier   Tier
	Name   string
	Radius float64
	Color  RGB
	// HasSuccessor is false only for the terminal tier.
	HasSuccessor bool
	Successor    Tier
}

var catalog [TierCount]Entry

var names = [TierCount]string{
	"Cherry",
	"Strawberry",
	"Grape",
	"Decopon",
	"Persimmon",
	"Apple",
	"Pear",
	"Peach",
	"Pineapple",
	"Melon",
	"Watermelon",
}

var colors = [TierCount]RGB{
	{0.9375, 0.0, 0.0},
	{0.9375, 0.42578125, 0.33203125},
	{0.57421875, 0.28515625, 1.0},
	{0.98828125, 0.58984375, 0.03515625},
	{0.9765625, 0.0, 0.0},
	{0.92578125, 0.0, 0.0},
	{0.9765625, 0.9765625, 0.40234375},
	{0.98828125, 0.7578125, 0.73828125},
	{0.92578125, 0.91796875, 0.05859375},
	{0.45703125, 0.78125, 0.0859375},
	{0.078125, 0.33984375, 0.0625},
}

func init() {
	for i := 0; i < TierCount; i++ {
		t := Tier(i)
		catalog[i] = Entry{
			Tier:         t,
			Name:         names[i],
			Radius:       baseRadius * math.Pow(radiusMultiplier, float64(i+1)),
			Color:        colors[i],
			HasSuccessor: t != Terminal,
		}
		if t != Terminal {
			catalog[i].Successor = t + 1
		}
	}
}

// Valid reports whether t is one of the defined tiers.
func (t Tier) Valid() bool {
	return int(t) < TierCount
}

func (t Tier) String() string {
	if !t.Valid() {
		return fmt.Sprintf("Tier(%d)", uint8(t))
	}
	return names[t]
}

// Rank is the position of the tier in the progression, starting at 0.
func (t Tier) Rank() int {
	return int(t)
}

// Lookup returns the catalog entry for t. It panics on an undefined tier.
func Lookup(t Tier) Entry {
	if !t.Valid() {
		panic(fmt.Sprintf("fruit: undefined tier %d", uint8(t)))
	}
	return catalog[t]
}

func Radius(t Tier) float64 {
	return Lookup(t).Radius
}

func Color(t Tier) RGB {
	return Lookup(t).Color
}

// Successor returns the next tier, or false for the terminal tier.
func Successor(t Tier) (Tier, bool) {
	e := Lookup(t)
	return e.Successor, e.HasSuccessor
}

// Promote returns the tier produced by merging a and b. Only equal,
// non-terminal tiers promote.
func Promote(a, b Tier) (Tier, bool) {
	if a != b {
		return 0, false
	}
	return Successor(a)
}

// Tiers returns every tier in progression order.
func Tiers() []Tier {
	tiers := make([]Tier, TierCount)
	for i := range tiers {
		tiers[i] = Tier(i)
	}
	return tiers
}

// ParseTier parses a tier name, case-insensitively.
func ParseTier(name string) (Tier, error) {
	for i, n := range names {
		if strings.EqualFold(n, strings.TrimSpace(name)) {
			return Tier(i), nil
		}
	}
	return 0, fmt.Errorf("unknown fruit tier: %s", name)
}
