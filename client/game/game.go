package game

import (
	"fmt"
	"time"

	"github.com/cbodonnell/watermelon/client/input"
	"github.com/cbodonnell/watermelon/client/scenes"
	"github.com/cbodonnell/watermelon/pkg/game"
	"github.com/cbodonnell/watermelon/pkg/game/constants"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"go.opentelemetry.io/otel/trace"
)

// Game implements ebiten.Game interface, which has Update, Draw and Layout methods.
type Game struct {
	// debug is a boolean value indicating whether debug mode is enabled.
	debug bool
	// mode is the current game mode.
	mode GameMode
	// scene is the play scene.
	scene *scenes.GameScene
}

type GameMode int

const (
	GameModePlay GameMode = iota
	GameModePaused
)

func (m GameMode) String() string {
	switch m {
	case GameModePlay:
		return "Play"
	case GameModePaused:
		return "Paused"
	}
	return "Unknown"
}

type NewGameOptions struct {
	Debug bool
	// Spawner drives the controllable fruit. Optional.
	Spawner *game.SpawnController
	// TickInterval is the simulated time per update. Defaults to 1/TPS.
	TickInterval time.Duration
	// Tracer is passed to the game manager. Optional.
	Tracer trace.Tracer
}

func NewGame(opts NewGameOptions) (ebiten.Game, error) {
	tickInterval := opts.TickInterval
	if tickInterval <= 0 {
		tickInterval = time.Second / time.Duration(ebiten.TPS())
	}

	scene, err := scenes.NewGameScene(scenes.NewGameSceneOptions{
		Spawner:      opts.Spawner,
		TickInterval: tickInterval,
		Tracer:       opts.Tracer,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create game scene: %v", err)
	}
	if err := scene.Init(); err != nil {
		return nil, fmt.Errorf("failed to initialize scene: %v", err)
	}

	return &Game{
		debug: opts.Debug,
		scene: scene,
	}, nil
}

func (g *Game) Update() error {
	if err := g.handleInput(); err != nil {
		return fmt.Errorf("failed to handle input: %v", err)
	}

	if err := g.scene.Update(); err != nil {
		return fmt.Errorf("failed to update scene: %v", err)
	}

	// the pause menu can resume the scene on its own
	if g.mode == GameModePaused && !g.scene.Paused() {
		g.mode = GameModePlay
	}

	return nil
}

func (g *Game) handleInput() error {
	if input.IsDebugJustPressed() {
		g.debug = !g.debug
	}

	switch g.mode {
	case GameModePlay:
		if input.IsNegativeJustPressed() {
			g.scene.TogglePause()
			g.mode = GameModePaused
		}
	case GameModePaused:
		if input.IsNegativeJustPressed() || input.IsPositiveJustPressed() {
			g.scene.TogglePause()
			g.mode = GameModePlay
		}
	}

	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	g.scene.Draw(screen)
	if g.debug {
		g.drawDebugOverlay(screen)
	}
}

func (g *Game) drawDebugOverlay(screen *ebiten.Image) {
	state := g.scene.Manager().State()
	ebitenutil.DebugPrint(screen, fmt.Sprintf("\n\n\n\n\n\n   FPS: %0.1f", ebiten.ActualFPS()))
	ebitenutil.DebugPrint(screen, fmt.Sprintf("\n\n\n\n\n\n\n   TPS: %0.1f", ebiten.ActualTPS()))
	ebitenutil.DebugPrint(screen, fmt.Sprintf("\n\n\n\n\n\n\n\n   Tick: %d", state.Tick))
	ebitenutil.DebugPrint(screen, fmt.Sprintf("\n\n\n\n\n\n\n\n\n   Fruits: %d", len(state.Fruits)))
	ebitenutil.DebugPrint(screen, fmt.Sprintf("\n\n\n\n\n\n\n\n\n\n   Mode: %s", g.mode))
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (screenWidth, screenHeight int) {
	return int(constants.BoardWidth), int(constants.BoardHeight)
}
