package objects

import (
	"image/color"

	"github.com/cbodonnell/watermelon/pkg/physics"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

var (
	BackgroundColor = color.RGBA{0xF9, 0xF9, 0xFF, 0xff}
	LevelColor      = color.RGBA{0x9A, 0x8C, 0x7A, 0xff}
)

// LevelObject draws the ground and walls. Board coordinates grow upwards.
type LevelObject struct {
	*BaseObject

	pieces      []physics.Rect
	boardHeight float32
	clr         color.Color
}

type NewLevelObjectOptions struct {
	// Pieces are the level rects in board coordinates.
	Pieces []physics.Rect
	// BoardHeight flips board coordinates into screen coordinates.
	BoardHeight float64
	// Color is the color of the level pieces. Defaults to LevelColor.
	Color color.Color
	// ZIndex is the z-index of the level object.
	ZIndex int
}

func NewLevelObject(id string, opts NewLevelObjectOptions) *LevelObject {
	clr := opts.Color
	if clr == nil {
		clr = LevelColor
	}
	return &LevelObject{
		BaseObject: NewBaseObject(id, &NewBaseObjectOpts{
			ZIndex: opts.ZIndex,
		}),
		pieces:      opts.Pieces,
		boardHeight: float32(opts.BoardHeight),
		clr:         clr,
	}
}

func (o *LevelObject) Draw(screen *ebiten.Image) {
	for _, p := range o.pieces {
		y := o.boardHeight - float32(p.Y) - float32(p.H)
		vector.DrawFilledRect(screen, float32(p.X), y, float32(p.W), float32(p.H), o.clr, false)
	}
}
