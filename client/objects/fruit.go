package objects

import (
	"image/color"

	"github.com/cbodonnell/watermelon/pkg/fruit"
	"github.com/cbodonnell/watermelon/pkg/game/types"
	"github.com/cbodonnell/watermelon/pkg/physics"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// BodySource provides the bodies to draw each frame.
type BodySource interface {
	Bodies() []physics.Body
}

var outlineColor = color.RGBA{0x40, 0x40, 0x40, 0xff}

// FruitsObject draws every body as a filled circle in its tier color. The
// controllable fruit also gets an outline and a drop guide.
type FruitsObject struct {
	*BaseObject

	source      BodySource
	boardHeight float32
}

func NewFruitsObject(id string, source BodySource, boardHeight float64, zIndex int) *FruitsObject {
	return &FruitsObject{
		BaseObject:  NewBaseObject(id, &NewBaseObjectOpts{ZIndex: zIndex}),
		source:      source,
		boardHeight: float32(boardHeight),
	}
}

func (o *FruitsObject) Draw(screen *ebiten.Image) {
	for _, b := range o.source.Bodies() {
		cx := float32(b.Position.X)
		cy := o.boardHeight - float32(b.Position.Y)
		r := float32(b.Radius)
		if b.Kind == types.BodyKindControllable {
			vector.StrokeLine(screen, cx, cy+r, cx, o.boardHeight, 1, color.RGBA{0xC0, 0xC0, 0xD0, 0xff}, false)
		}
		vector.DrawFilledCircle(screen, cx, cy, r, fruit.Color(b.Tier), true)
		if b.Kind == types.BodyKindControllable {
			vector.StrokeCircle(screen, cx, cy, r, 2, outlineColor, true)
		}
	}
}
