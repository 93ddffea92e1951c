package objects

import (
	"fmt"
	"image/color"
	"strings"
	"time"

	"github.com/cbodonnell/watermelon/client/fonts"
	"github.com/cbodonnell/watermelon/pkg/fruit"
	"github.com/cbodonnell/watermelon/pkg/kinematic"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"golang.org/x/image/font"
)

// mergePopupRise is how far a popup drifts upwards per second, in board units.
const mergePopupRise = 60.0

// MergePopup names the fruit a merge produced, rising from where it spawned
// and fading out. It removes itself from its parent once its TTL runs out.
type MergePopup struct {
	*BaseObject

	label    string
	color    fruit.RGB
	position kinematic.Vector
	ttl      time.Duration
	left     time.Duration
}

type NewMergePopupOptions struct {
	// Tier is the fruit the merge produced.
	Tier fruit.Tier
	// Position is where the merged fruit spawned, in board coordinates.
	Position kinematic.Vector
	// TTL is how long the popup stays visible.
	TTL time.Duration
	// ZIndex is the z-index of the popup.
	ZIndex int
}

func NewMergePopup(id string, opts NewMergePopupOptions) *MergePopup {
	return &MergePopup{
		BaseObject: NewBaseObject(id, &NewBaseObjectOpts{
			ZIndex: opts.ZIndex,
		}),
		label:    strings.ToUpper(opts.Tier.String()),
		color:    fruit.Color(opts.Tier),
		position: opts.Position,
		ttl:      opts.TTL,
		left:     opts.TTL,
	}
}

func (o *MergePopup) Update() error {
	dt := time.Second / time.Duration(ebiten.TPS())
	o.position.Y += mergePopupRise * dt.Seconds()
	o.left -= dt
	if o.left > 0 {
		return nil
	}
	if err := o.BaseObject.RemoveFromParent(); err != nil {
		return fmt.Errorf("failed to remove merge popup from parent: %v", err)
	}
	return nil
}

// alpha fades linearly over the last half of the TTL.
func (o *MergePopup) alpha() float32 {
	if o.ttl <= 0 || o.left >= o.ttl/2 {
		return 1
	}
	if o.left <= 0 {
		return 0
	}
	return float32(o.left) / float32(o.ttl/2)
}

func (o *MergePopup) Draw(screen *ebiten.Image) {
	f := fonts.TTFSmallFont
	bounds, _ := font.BoundString(f, o.label)
	width := float64((bounds.Max.X - bounds.Min.X).Ceil())

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Translate(o.position.X-width/2, float64(screen.Bounds().Dy())-o.position.Y)
	op.ColorScale.ScaleWithColor(color.Color(o.color))
	op.ColorScale.ScaleAlpha(o.alpha())
	text.DrawWithOptions(screen, o.label, f, op)
}
