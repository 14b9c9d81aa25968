package cli

import (
	"fmt"

	"github.com/alexanderramin/sprintdesk/internal/cli/formatter"
	"github.com/alexanderramin/sprintdesk/internal/domain"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
)

// treeBrowser is a read-only, scrollable view of a project's task tree.
type treeBrowser struct {
	title   string
	content string
	vp      viewport.Model
	ready   bool
}

func newTreeBrowser(projectName string, nodes []domain.TaskNode) treeBrowser {
	vp := viewport.New(0, 0)
	vp.KeyMap = browserKeyMap()
	vp.MouseWheelEnabled = true
	vp.MouseWheelDelta = 3
	return treeBrowser{
		title:   projectName,
		content: formatter.RenderTaskTree(projectName, nodes),
		vp:      vp,
	}
}

func browserKeyMap() viewport.KeyMap {
	return viewport.KeyMap{
		PageDown:     key.NewBinding(key.WithKeys("pgdown", " ")),
		PageUp:       key.NewBinding(key.WithKeys("pgup")),
		HalfPageUp:   key.NewBinding(key.WithKeys("ctrl+u")),
		HalfPageDown: key.NewBinding(key.WithKeys("ctrl+d")),
		Up:           key.NewBinding(key.WithKeys("up", "k")),
		Down:         key.NewBinding(key.WithKeys("down", "j")),
	}
}

func (m treeBrowser) Init() tea.Cmd { return nil }

func (m treeBrowser) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.vp.Width = msg.Width
		m.vp.Height = msg.Height - 1
		m.vp.SetContent(m.content)
		m.ready = true
		return m, nil
	}
	var cmd tea.Cmd
	m.vp, cmd = m.vp.Update(msg)
	return m, cmd
}

func (m treeBrowser) View() string {
	if !m.ready {
		return m.content
	}
	return m.vp.View() + "\n" + m.status()
}

func (m treeBrowser) status() string {
	pos := "[TOP]"
	switch {
	case m.vp.AtBottom():
		pos = "[END]"
	case !m.vp.AtTop():
		pos = fmt.Sprintf("[%d%%]", int(m.vp.ScrollPercent()*100))
	}
	return formatter.Dim(pos + "  ↑/↓ scroll · q quit")
}

func runTreeBrowser(projectName string, nodes []domain.TaskNode) error {
	_, err := tea.NewProgram(newTreeBrowser(projectName, nodes), tea.WithAltScreen()).Run()
	if err != nil {
		return fmt.Errorf("running task browser: %w", err)
	}
	return nil
}
