// Package terminal is a tcell front end for the game.
package terminal

import (
	"context"
	"fmt"
	"time"

	"github.com/cbodonnell/watermelon/pkg/fruit"
	"github.com/cbodonnell/watermelon/pkg/game"
	"github.com/cbodonnell/watermelon/pkg/game/types"
	"github.com/cbodonnell/watermelon/pkg/log"
	"github.com/cbodonnell/watermelon/pkg/physics"
	"github.com/cbodonnell/watermelon/pkg/queue"
	"github.com/gdamore/tcell/v2"
	"go.opentelemetry.io/otel/trace"
)

// NewScreen creates and initializes a terminal screen. Callers must Fini it.
func NewScreen() (tcell.Screen, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, fmt.Errorf("failed to create screen: %v", err)
	}
	if err := s.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize screen: %v", err)
	}
	s.SetStyle(backgroundStyle)
	s.Clear()
	return s, nil
}

type Terminal struct {
	screen       tcell.Screen
	renderer     *Renderer
	world        *physics.World
	manager      *game.GameManager
	keys         *heldKeys
	tickInterval time.Duration
	now          func() time.Time
	paused       bool
	merges       int
	largest      fruit.Tier
}

type NewTerminalOptions struct {
	// Screen must already be initialized.
	Screen tcell.Screen
	// Spawner drives the controllable fruit. Optional.
	Spawner *game.SpawnController
	// TickInterval is the wall clock and simulated time per tick.
	TickInterval time.Duration
	// HoldWindow defaults to DefaultHoldWindow.
	HoldWindow time.Duration
	// Tracer is passed to the game manager. Optional.
	Tracer trace.Tracer
}

func NewTerminal(opts NewTerminalOptions) (*Terminal, error) {
	if opts.Screen == nil {
		return nil, fmt.Errorf("terminal requires a screen")
	}
	if opts.TickInterval <= 0 {
		return nil, fmt.Errorf("tick interval must be positive")
	}

	collisionEventQueue := queue.NewInMemoryQueue[types.CollisionEvent](queue.DefaultQueueBufferSize)
	contactForceEventQueue := queue.NewInMemoryQueue[types.ContactForceEvent](queue.DefaultQueueBufferSize)
	world := physics.NewWorld(physics.NewWorldOptions{
		CollisionEventQueue:    collisionEventQueue,
		ContactForceEventQueue: contactForceEventQueue,
	})

	t := &Terminal{
		screen:       opts.Screen,
		renderer:     NewRenderer(opts.Screen),
		world:        world,
		keys:         newHeldKeys(opts.HoldWindow),
		tickInterval: opts.TickInterval,
		now:          time.Now,
	}
	t.manager = game.NewGameManager(game.NewGameManagerOptions{
		World:                  world,
		CollisionEventQueue:    collisionEventQueue,
		ContactForceEventQueue: contactForceEventQueue,
		Spawner:                opts.Spawner,
		GameLoopInterval:       opts.TickInterval,
		Tracer:                 opts.Tracer,
		OnMerge: func(merge types.MergeEvent) {
			t.merges++
			if merge.To > t.largest {
				t.largest = merge.To
			}
		},
	})
	return t, nil
}

// Run polls terminal events and ticks the game until ctx is done or the
// player quits.
func (t *Terminal) Run(ctx context.Context) error {
	events := make(chan tcell.Event)
	done := make(chan struct{})
	defer close(done)
	go func() {
		for {
			ev := t.screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	ticker := time.NewTicker(t.tickInterval)
	defer ticker.Stop()

	t.renderer.Render(t.world, t.status())
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev := <-events:
			if t.handleEvent(ev) {
				return nil
			}
		case <-ticker.C:
			if err := t.Step(ctx); err != nil {
				return err
			}
		}
	}
}

// handleEvent reports whether the player asked to quit.
func (t *Terminal) handleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventResize:
		t.screen.Sync()
	case *tcell.EventKey:
		switch a := keyAction(ev); a {
		case actionQuit:
			return true
		case actionPause:
			t.paused = !t.paused
			log.Debug("Game paused: %v", t.paused)
		case actionNone:
		default:
			t.keys.Press(a, t.now())
		}
	}
	return false
}

// Step runs one game tick and redraws the screen.
func (t *Terminal) Step(ctx context.Context) error {
	if !t.paused {
		if err := t.manager.Tick(ctx, t.keys.Sample(t.now()), t.tickInterval); err != nil {
			return fmt.Errorf("failed to tick game: %v", err)
		}
	}
	t.renderer.Render(t.world, t.status())
	return nil
}

func (t *Terminal) status() string {
	s := fmt.Sprintf(" Merges: %d", t.merges)
	if t.merges > 0 {
		s += fmt.Sprintf("  Largest: %s", t.largest)
	}
	if t.paused {
		s += "  [paused]"
	}
	return s + "  ←/→ move  s drop  p pause  q quit"
}
