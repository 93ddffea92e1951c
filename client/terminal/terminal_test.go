package terminal

import (
	"context"
	"testing"
	"time"

	"github.com/cbodonnell/watermelon/pkg/game/types"
	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSimulationScreen(t *testing.T, w, h int) tcell.SimulationScreen {
	t.Helper()
	screen := tcell.NewSimulationScreen("")
	require.NoError(t, screen.Init())
	screen.SetSize(w, h)
	t.Cleanup(screen.Fini)
	return screen
}

func TestKeyAction(t *testing.T) {
	tests := []struct {
		name string
		ev   *tcell.EventKey
		want action
	}{
		{"left arrow", tcell.NewEventKey(tcell.KeyLeft, 0, tcell.ModNone), actionLeft},
		{"a", tcell.NewEventKey(tcell.KeyRune, 'a', tcell.ModNone), actionLeft},
		{"right arrow", tcell.NewEventKey(tcell.KeyRight, 0, tcell.ModNone), actionRight},
		{"D", tcell.NewEventKey(tcell.KeyRune, 'D', tcell.ModNone), actionRight},
		{"s", tcell.NewEventKey(tcell.KeyRune, 's', tcell.ModNone), actionDrop},
		{"space", tcell.NewEventKey(tcell.KeyRune, ' ', tcell.ModNone), actionDrop},
		{"p", tcell.NewEventKey(tcell.KeyRune, 'p', tcell.ModNone), actionPause},
		{"escape", tcell.NewEventKey(tcell.KeyEscape, 0, tcell.ModNone), actionQuit},
		{"q", tcell.NewEventKey(tcell.KeyRune, 'q', tcell.ModNone), actionQuit},
		{"other", tcell.NewEventKey(tcell.KeyRune, 'x', tcell.ModNone), actionNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, keyAction(tt.ev))
		})
	}
}

func TestHeldKeys_Sample(t *testing.T) {
	start := time.Unix(1000, 0)
	keys := newHeldKeys(100 * time.Millisecond)

	assert.Equal(t, types.Input{}, keys.Sample(start))

	keys.Press(actionDrop, start)
	keys.Press(actionLeft, start)
	assert.Equal(t, types.Input{MoveLeft: true, Drop: true}, keys.Sample(start.Add(50*time.Millisecond)))
	assert.Equal(t, types.Input{}, keys.Sample(start.Add(100*time.Millisecond)), "released after the hold window")

	// the most recent direction wins
	keys.Press(actionRight, start.Add(10*time.Millisecond))
	assert.Equal(t, types.Input{MoveRight: true, Drop: true}, keys.Sample(start.Add(20*time.Millisecond)))
	keys.Press(actionLeft, start.Add(30*time.Millisecond))
	assert.Equal(t, types.Input{MoveLeft: true, Drop: true}, keys.Sample(start.Add(40*time.Millisecond)))
}

func TestTerminal_Step(t *testing.T) {
	screen := newSimulationScreen(t, 40, 30)
	term, err := NewTerminal(NewTerminalOptions{
		Screen:       screen,
		TickInterval: time.Second / 60,
	})
	require.NoError(t, err)

	ctx := context.Background()
	for i := 0; i < 61; i++ {
		require.NoError(t, term.Step(ctx))
	}
	require.NotNil(t, term.manager.State().Current, "first fruit spawned")

	cells, w, h := screen.GetContents()
	require.Equal(t, 40, w)
	require.Equal(t, 30, h)
	found := false
	for _, cell := range cells {
		if len(cell.Runes) > 0 && cell.Runes[0] == '·' {
			found = true
		}
	}
	assert.True(t, found, "controllable fruit is drawn")
	assert.Equal(t, 'M', cells[1].Runes[0], "status line")
}

func TestTerminal_Step_paused(t *testing.T) {
	screen := newSimulationScreen(t, 20, 10)
	term, err := NewTerminal(NewTerminalOptions{
		Screen:       screen,
		TickInterval: time.Second / 60,
	})
	require.NoError(t, err)

	assert.False(t, term.handleEvent(tcell.NewEventKey(tcell.KeyRune, 'p', tcell.ModNone)))
	require.NoError(t, term.Step(context.Background()))
	assert.Equal(t, uint64(0), term.manager.State().Tick)
}

func TestTerminal_Run_quit(t *testing.T) {
	screen := newSimulationScreen(t, 20, 10)
	term, err := NewTerminal(NewTerminalOptions{
		Screen:       screen,
		TickInterval: 10 * time.Millisecond,
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	screen.InjectKey(tcell.KeyRune, 'q', tcell.ModNone)
	require.NoError(t, term.Run(ctx))
	assert.NoError(t, ctx.Err(), "returned before the timeout")
}

func TestNewTerminal_validation(t *testing.T) {
	_, err := NewTerminal(NewTerminalOptions{TickInterval: time.Second})
	assert.Error(t, err)

	_, err = NewTerminal(NewTerminalOptions{Screen: newSimulationScreen(t, 10, 10)})
	assert.Error(t, err)
}
