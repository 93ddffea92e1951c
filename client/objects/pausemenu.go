package objects

import (
	"image/color"

	"github.com/cbodonnell/watermelon/client/fonts"
	"github.com/ebitenui/ebitenui"
	"github.com/ebitenui/ebitenui/image"
	"github.com/ebitenui/ebitenui/widget"
	"github.com/hajimehoshi/ebiten/v2"
)

// PauseMenuObject dims the board and offers a resume button while visible.
type PauseMenuObject struct {
	*BaseObject

	ui       *ebitenui.UI
	onResume func()
	visible  bool
}

type NewPauseMenuObjectOptions struct {
	// OnResume is called when the resume button is clicked.
	OnResume func()
	// ZIndex is the z-index of the menu.
	ZIndex int
}

func NewPauseMenuObject(id string, opts NewPauseMenuObjectOptions) *PauseMenuObject {
	return &PauseMenuObject{
		BaseObject: NewBaseObject(id, &NewBaseObjectOpts{ZIndex: opts.ZIndex}),
		onResume:   opts.OnResume,
	}
}

func (o *PauseMenuObject) Init() error {
	o.renderUI()
	return nil
}

func (o *PauseMenuObject) renderUI() {
	buttonImage := &widget.ButtonImage{
		Idle:    image.NewNineSliceColor(color.NRGBA{R: 170, G: 170, B: 180, A: 255}),
		Hover:   image.NewNineSliceColor(color.NRGBA{R: 135, G: 135, B: 150, A: 255}),
		Pressed: image.NewNineSliceColor(color.NRGBA{R: 100, G: 100, B: 120, A: 255}),
	}
	textColor := color.NRGBA{254, 255, 255, 255}

	rootContainer := widget.NewContainer(
		widget.ContainerOpts.BackgroundImage(image.NewNineSliceColor(color.NRGBA{A: 0x80})),
		widget.ContainerOpts.Layout(widget.NewAnchorLayout()),
	)

	menu := widget.NewContainer(
		widget.ContainerOpts.Layout(widget.NewRowLayout(
			widget.RowLayoutOpts.Direction(widget.DirectionVertical),
			widget.RowLayoutOpts.Spacing(20),
		)),
		widget.ContainerOpts.WidgetOpts(
			widget.WidgetOpts.LayoutData(widget.AnchorLayoutData{
				HorizontalPosition: widget.AnchorLayoutPositionCenter,
				VerticalPosition:   widget.AnchorLayoutPositionCenter,
			}),
		),
	)
	rootContainer.AddChild(menu)

	menu.AddChild(widget.NewText(
		widget.TextOpts.Text("PAUSED", fonts.TTFLargeFont, textColor),
		widget.TextOpts.WidgetOpts(
			widget.WidgetOpts.LayoutData(widget.RowLayoutData{
				Position: widget.RowLayoutPositionCenter,
			}),
		),
	))

	button := widget.NewButton(
		widget.ButtonOpts.WidgetOpts(
			widget.WidgetOpts.LayoutData(widget.RowLayoutData{
				Position: widget.RowLayoutPositionCenter,
				Stretch:  true,
			}),
		),
		widget.ButtonOpts.Image(buttonImage),
		widget.ButtonOpts.Text("Resume", fonts.TTFNormalFont, &widget.ButtonTextColor{
			Idle:     textColor,
			Disabled: color.NRGBA{R: 200, G: 200, B: 200, A: 255},
		}),
		widget.ButtonOpts.TextPadding(widget.Insets{
			Left:   30,
			Right:  30,
			Top:    5,
			Bottom: 5,
		}),
	)
	button.ClickedEvent.AddHandler(func(args interface{}) {
		if o.visible && o.onResume != nil {
			o.onResume()
		}
	})
	menu.AddChild(button)

	o.ui = &ebitenui.UI{
		Container: rootContainer,
	}
}

func (o *PauseMenuObject) SetVisible(visible bool) {
	o.visible = visible
}

func (o *PauseMenuObject) Visible() bool {
	return o.visible
}

func (o *PauseMenuObject) Update() error {
	if o.visible && o.ui != nil {
		o.ui.Update()
	}
	return nil
}

func (o *PauseMenuObject) Draw(screen *ebiten.Image) {
	if !o.visible || o.ui == nil {
		return
	}
	o.ui.Draw(screen)
}
