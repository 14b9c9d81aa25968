// Package teatest drives bubbletea models synchronously in tests: messages
// go straight to Update and returned commands are run in place.
package teatest

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// maxDepth bounds how many chained commands one Send may run.
const maxDepth = 50

// cmdTimeout skips commands that wait on timers.
const cmdTimeout = 10 * time.Millisecond

// Driver holds a model between messages.
type Driver struct {
	T     *testing.T
	Model tea.Model

	// Quit is set once a command produced tea.QuitMsg.
	Quit bool
}

// New wraps model and sends it an initial window size of w by h.
func New(t *testing.T, model tea.Model, w, h int) *Driver {
	t.Helper()
	d := &Driver{T: t, Model: model}
	d.run(model.Init(), 0)
	d.Send(tea.WindowSizeMsg{Width: w, Height: h})
	return d
}

// Send dispatches msg through Update and runs the resulting commands.
func (d *Driver) Send(msg tea.Msg) {
	d.T.Helper()
	if d.Quit {
		return
	}
	next, cmd := d.Model.Update(msg)
	d.Model = next
	d.run(cmd, 0)
}

// Press sends a key by name: "up", "down", "esc", "ctrl+c", "pgdown" or a
// single rune such as "q".
func (d *Driver) Press(name string) {
	d.T.Helper()
	d.Send(keyMsg(name))
}

// View renders the current model.
func (d *Driver) View() string {
	return d.Model.View()
}

func keyMsg(name string) tea.KeyMsg {
	switch name {
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "ctrl+c":
		return tea.KeyMsg{Type: tea.KeyCtrlC}
	case "pgdown":
		return tea.KeyMsg{Type: tea.KeyPgDown}
	case "pgup":
		return tea.KeyMsg{Type: tea.KeyPgUp}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(name)}
	}
}

func (d *Driver) run(cmd tea.Cmd, depth int) {
	if cmd == nil {
		return
	}
	if depth >= maxDepth {
		d.T.Logf("teatest: command chain deeper than %d, stopping", maxDepth)
		return
	}

	var msg tea.Msg
	done := make(chan tea.Msg, 1)
	go func() { done <- cmd() }()
	select {
	case msg = <-done:
	case <-time.After(cmdTimeout):
		return
	}

	switch m := msg.(type) {
	case nil:
	case tea.QuitMsg:
		d.Quit = true
	case tea.BatchMsg:
		for _, c := range m {
			d.run(c, depth+1)
		}
	default:
		next, nextCmd := d.Model.Update(m)
		d.Model = next
		d.run(nextCmd, depth+1)
	}
}
