package terminal

import (
	"time"

	"github.com/cbodonnell/watermelon/pkg/game/types"
	"github.com/gdamore/tcell/v2"
)

// DefaultHoldWindow is how long a key counts as held after its last press or
// auto-repeat. Terminals report presses, never releases.
const DefaultHoldWindow = 150 * time.Millisecond

type action int

const (
	actionNone action = iota
	actionLeft
	actionRight
	actionDrop
	actionPause
	actionQuit
)

// keyAction maps a key event to a game action.
func keyAction(ev *tcell.EventKey) action {
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return actionQuit
	case tcell.KeyLeft:
		return actionLeft
	case tcell.KeyRight:
		return actionRight
	case tcell.KeyDown:
		return actionDrop
	case tcell.KeyRune:
		switch ev.Rune() {
		case 'a', 'A':
			return actionLeft
		case 'd', 'D':
			return actionRight
		case 's', 'S', ' ':
			return actionDrop
		case 'p', 'P':
			return actionPause
		case 'q', 'Q':
			return actionQuit
		}
	}
	return actionNone
}

// heldKeys turns discrete key presses into level triggered signals.
type heldKeys struct {
	window  time.Duration
	pressed map[action]time.Time
}

func newHeldKeys(window time.Duration) *heldKeys {
	if window <= 0 {
		window = DefaultHoldWindow
	}
	return &heldKeys{
		window:  window,
		pressed: make(map[action]time.Time),
	}
}

func (h *heldKeys) Press(a action, now time.Time) {
	h.pressed[a] = now
}

func (h *heldKeys) held(a action, now time.Time) bool {
	at, ok := h.pressed[a]
	return ok && now.Sub(at) < h.window
}

// Sample returns the signals held at now. A direction pressed after the
// opposite one releases it.
func (h *heldKeys) Sample(now time.Time) types.Input {
	left, right := h.held(actionLeft, now), h.held(actionRight, now)
	if left && right {
		if h.pressed[actionRight].After(h.pressed[actionLeft]) {
			left = false
		} else {
			right = false
		}
	}
	return types.Input{
		MoveLeft:  left,
		MoveRight: right,
		Drop:      h.held(actionDrop, now),
	}
}
