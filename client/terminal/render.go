package terminal

import (
	"fmt"

	"github.com/cbodonnell/watermelon/pkg/fruit"
	"github.com/cbodonnell/watermelon/pkg/game/types"
	"github.com/cbodonnell/watermelon/pkg/physics"
	"github.com/gdamore/tcell/v2"
)

var (
	backgroundStyle = tcell.StyleDefault.Background(tcell.NewRGBColor(0xF9, 0xF9, 0xFF)).Foreground(tcell.ColorBlack)
	levelStyle      = tcell.StyleDefault.Background(tcell.NewRGBColor(0x9A, 0x8C, 0x7A))
	hudStyle        = tcell.StyleDefault.Foreground(tcell.ColorWhite).Background(tcell.ColorBlack)
)

// hudRows is the number of rows above the board.
const hudRows = 1

// Renderer draws the board scaled to the terminal, one body per cell.
type Renderer struct {
	screen tcell.Screen
}

func NewRenderer(screen tcell.Screen) *Renderer {
	return &Renderer{screen: screen}
}

func tierStyle(t fruit.Tier) tcell.Style {
	c := fruit.Color(t)
	return tcell.StyleDefault.
		Background(tcell.NewRGBColor(int32(c.R*255), int32(c.G*255), int32(c.B*255))).
		Foreground(tcell.ColorBlack)
}

// Render draws the level, the bodies and a status line.
func (r *Renderer) Render(world *physics.World, status string) {
	r.screen.Clear()
	cols, rows := r.screen.Size()
	rows -= hudRows
	if cols <= 0 || rows <= 0 {
		r.screen.Show()
		return
	}

	cellW := world.Width() / float64(cols)
	cellH := world.Height() / float64(rows)
	level := world.Level()
	bodies := world.Bodies()

	for row := 0; row < rows; row++ {
		// board y grows upwards
		y := world.Height() - (float64(row)+0.5)*cellH
		for col := 0; col < cols; col++ {
			x := (float64(col) + 0.5) * cellW
			ch, style := ' ', backgroundStyle
			for _, p := range level {
				if x >= p.X && x < p.X+p.W && y >= p.Y && y < p.Y+p.H {
					style = levelStyle
				}
			}
			for _, b := range bodies {
				dx, dy := x-b.Position.X, y-b.Position.Y
				if dx*dx+dy*dy <= b.Radius*b.Radius {
					ch, style = ' ', tierStyle(b.Tier)
					if b.Kind == types.BodyKindControllable {
						ch = '·'
					}
				}
			}
			r.screen.SetContent(col, row+hudRows, ch, nil, style)
		}
	}

	r.drawText(0, 0, fmt.Sprintf("%-*s", cols, status), hudStyle)
	r.screen.Show()
}

func (r *Renderer) drawText(x, y int, s string, style tcell.Style) {
	cols, _ := r.screen.Size()
	for _, ch := range s {
		if x >= cols {
			return
		}
		r.screen.SetContent(x, y, ch, nil, style)
		x++
	}
}
