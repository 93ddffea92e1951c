package objects

import "github.com/hajimehoshi/ebiten/v2"

// Lifecycle is driven by the object tree: Init when attached, Update once per
// ebiten tick, Draw once per frame and Destroy when detached.
type Lifecycle interface {
	Init() error
	Destroy() error
	Update() error
	Draw(screen *ebiten.Image)
}
