package constants

import (
	"time"

	"github.com/cbodonnell/watermelon/pkg/kinematic"
)

const (
	// BoardWidth is the width of the play area, walls included
	BoardWidth float64 = 640.0
	// BoardHeight is the height of the play area
	BoardHeight float64 = 720.0
	// WallThickness is the thickness of the ground and side walls
	WallThickness float64 = 16.0
	// CellSize is the cell size of the collision space
	CellSize int = 16

	// SpawnInterval is the delay between releasing a fruit and the next spawn
	SpawnInterval time.Duration = time.Second
	// InitialSpawnDelay is the delay before the first fruit appears
	InitialSpawnDelay time.Duration = time.Second
	// MoveStep is how far the controllable fruit moves per tick while a direction is held
	MoveStep float64 = 1.0

	// FruitMass is the additional mass given to every free fruit
	FruitMass float64 = 10.0
	// DropGravityScale is the gravity scale of a released fruit
	DropGravityScale float64 = 10.0
	// MergedGravityScale is the gravity scale of a promoted fruit
	MergedGravityScale float64 = 1.0
	// GravityMultiplier scales kinematic.Gravity into board units per second squared
	GravityMultiplier float64 = 30.0
	// ContactForceThreshold is the force above which contact force events are reported
	ContactForceThreshold float64 = 10.0
)

// SpawnPosition is where every controllable fruit appears.
var SpawnPosition = kinematic.Vector{
	X: BoardWidth / 2,
	Y: BoardHeight - 80,
}
