package scenes

import (
	"context"
	"fmt"
	"image/color"
	"time"

	"github.com/cbodonnell/watermelon/client/fonts"
	"github.com/cbodonnell/watermelon/client/input"
	"github.com/cbodonnell/watermelon/client/objects"
	"github.com/cbodonnell/watermelon/pkg/fruit"
	"github.com/cbodonnell/watermelon/pkg/game"
	"github.com/cbodonnell/watermelon/pkg/game/types"
	"github.com/cbodonnell/watermelon/pkg/log"
	"github.com/cbodonnell/watermelon/pkg/physics"
	"github.com/cbodonnell/watermelon/pkg/queue"
	"github.com/google/uuid"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text"
	"go.opentelemetry.io/otel/trace"
)

const (
	zIndexLevel   = 0
	zIndexFruits  = 10
	zIndexEffects = 20
	zIndexOverlay = 100

	// mergePopupTTL is how long a merge popup stays on screen
	mergePopupTTL = 800 * time.Millisecond
)

var hudColor = color.RGBA{0x30, 0x30, 0x40, 0xff}

type GameScene struct {
	*BaseScene

	world        *physics.World
	manager      *game.GameManager
	overlay      *objects.PauseMenuObject
	tickInterval time.Duration
	paused       bool
	merges       int
	largest      fruit.Tier
}

var _ Scene = &GameScene{}

type NewGameSceneOptions struct {
	// Spawner drives the controllable fruit. Defaults to game.NewSpawnController with default options.
	Spawner *game.SpawnController
	// TickInterval is the simulated time per ebiten update.
	TickInterval time.Duration
	// Tracer is passed to the game manager.
	Tracer trace.Tracer
}

func NewGameScene(opts NewGameSceneOptions) (*GameScene, error) {
	if opts.TickInterval <= 0 {
		return nil, fmt.Errorf("tick interval must be positive")
	}

	collisionEventQueue := queue.NewInMemoryQueue[types.CollisionEvent](queue.DefaultQueueBufferSize)
	contactForceEventQueue := queue.NewInMemoryQueue[types.ContactForceEvent](queue.DefaultQueueBufferSize)
	world := physics.NewWorld(physics.NewWorldOptions{
		CollisionEventQueue:    collisionEventQueue,
		ContactForceEventQueue: contactForceEventQueue,
	})

	root := objects.NewSortedZIndexObject("game-root")
	s := &GameScene{
		BaseScene:    NewBaseScene(root),
		world:        world,
		tickInterval: opts.TickInterval,
	}
	s.overlay = objects.NewPauseMenuObject("pause-menu", objects.NewPauseMenuObjectOptions{
		OnResume: s.TogglePause,
		ZIndex:   zIndexOverlay,
	})

	s.manager = game.NewGameManager(game.NewGameManagerOptions{
		World:                  world,
		CollisionEventQueue:    collisionEventQueue,
		ContactForceEventQueue: contactForceEventQueue,
		Spawner:                opts.Spawner,
		GameLoopInterval:       opts.TickInterval,
		Tracer:                 opts.Tracer,
		OnMerge:                s.onMerge,
	})

	if err := root.AddChild("level", objects.NewLevelObject("level", objects.NewLevelObjectOptions{
		Pieces:      world.Level(),
		BoardHeight: world.Height(),
		ZIndex:      zIndexLevel,
	})); err != nil {
		return nil, fmt.Errorf("failed to add level object: %v", err)
	}
	if err := root.AddChild("fruits", objects.NewFruitsObject("fruits", world, world.Height(), zIndexFruits)); err != nil {
		return nil, fmt.Errorf("failed to add fruits object: %v", err)
	}
	if err := root.AddChild(s.overlay.GetID(), s.overlay); err != nil {
		return nil, fmt.Errorf("failed to add pause menu object: %v", err)
	}

	return s, nil
}

// TogglePause stops or resumes the simulation. Effects keep animating.
func (s *GameScene) TogglePause() {
	s.paused = !s.paused
	s.overlay.SetVisible(s.paused)
	log.Debug("Game paused: %v", s.paused)
}

func (s *GameScene) Paused() bool {
	return s.paused
}

func (s *GameScene) Manager() *game.GameManager {
	return s.manager
}

func (s *GameScene) World() *physics.World {
	return s.world
}

func (s *GameScene) Update() error {
	if !s.paused {
		if err := s.manager.Tick(context.Background(), input.Sample(), s.tickInterval); err != nil {
			return fmt.Errorf("failed to tick game: %v", err)
		}
	}

	if err := s.BaseScene.Update(); err != nil {
		return fmt.Errorf("failed to update base scene: %v", err)
	}

	return nil
}

func (s *GameScene) onMerge(merge types.MergeEvent) {
	s.merges++
	if merge.To > s.largest {
		s.largest = merge.To
	}

	id := fmt.Sprintf("merge-%s", uuid.New().String())
	popup := objects.NewMergePopup(id, objects.NewMergePopupOptions{
		Tier:     merge.To,
		Position: merge.Position,
		TTL:      mergePopupTTL,
		ZIndex:   zIndexEffects,
	})
	if err := s.GetRoot().AddChild(id, popup); err != nil {
		log.Error("Failed to add merge popup: %v", err)
	}
}

func (s *GameScene) Draw(screen *ebiten.Image) {
	screen.Fill(objects.BackgroundColor)
	s.BaseScene.Draw(screen)
	s.drawHUD(screen)
}

func (s *GameScene) drawHUD(screen *ebiten.Image) {
	lines := []string{fmt.Sprintf("Merges: %d", s.merges)}
	if s.merges > 0 {
		lines = append(lines, fmt.Sprintf("Largest: %s", s.largest))
	}
	state := s.manager.State()
	if state.Current == nil {
		if remaining, ok := state.SpawnTimer.Remaining(); ok {
			lines = append(lines, fmt.Sprintf("Next fruit in %0.1fs", remaining.Seconds()))
		}
	}

	for i, line := range lines {
		op := &ebiten.DrawImageOptions{}
		op.GeoM.Translate(24, float64(32+20*i))
		op.ColorScale.ScaleWithColor(hudColor)
		text.DrawWithOptions(screen, line, fonts.TTFSmallFont, op)
	}
}
