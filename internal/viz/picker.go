package viz

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/edaniels/golog"

	"github.com/chantakan/2d-drone-sim/internal/config"
	"github.com/chantakan/2d-drone-sim/internal/sim"
)

var presetBlurbs = map[string]string{
	"cartpole/balance":  "hold the pole upright",
	"cartpole/recover":  "recover from a hard tilt",
	"cartpole/freefall": "no control, watch it fall",
	"drone/hover":       "hold position at the target",
	"drone/crosswind":   "gusting side wind",
	"drone/flutter":     "noisy rotors",
	"drone/worn-rotor":  "asymmetric vehicle trim",
}

const (
	stateMenu = iota
	stateLive
)

type launchEntry struct {
	model, preset string
}

// App is the launcher: a preset menu that hands off to the live view.
// It owns the runner of whichever session is on screen.
type App struct {
	state   int
	cursor  int
	entries []launchEntry
	logger  golog.Logger
	runner  *sim.Runner
	live    Model
	err     error
}

func NewApp(logger golog.Logger) App {
	var entries []launchEntry
	for _, model := range []string{sim.ModelCartPole, sim.ModelDrone} {
		for _, preset := range config.ListPresets(model) {
			entries = append(entries, launchEntry{model, preset})
		}
	}
	return App{entries: entries, logger: logger}
}

func (a App) Init() tea.Cmd { return nil }

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return a.handleKey(msg)
	default:
		if a.state == stateLive {
			newLive, cmd := a.live.Update(msg)
			a.live = newLive.(Model)
			return a, cmd
		}
	}
	return a, nil
}

func (a App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch a.state {
	case stateMenu:
		switch msg.String() {
		case "q", "ctrl+c":
			return a, tea.Quit
		case "up", "k":
			if a.cursor > 0 {
				a.cursor--
			}
		case "down", "j":
			if a.cursor < len(a.entries)-1 {
				a.cursor++
			}
		case "enter", " ":
			return a.launch()
		}
	case stateLive:
		switch msg.String() {
		case "q", "ctrl+c":
			a.runner.Stop()
			return a, tea.Quit
		case "esc":
			a.runner.Stop()
			a.runner = nil
			a.state = stateMenu
			return a, nil
		}
		newLive, cmd := a.live.Update(msg)
		a.live = newLive.(Model)
		return a, cmd
	}
	return a, nil
}

func (a App) launch() (tea.Model, tea.Cmd) {
	e := a.entries[a.cursor]
	cfg := config.GetPreset(e.model, e.preset)
	session, err := cfg.NewSession()
	if err != nil {
		a.err = err
		return a, nil
	}
	a.err = nil
	a.runner = sim.NewRunner(session, a.logger)
	a.live = NewModel(a.runner, session)
	a.state = stateLive
	a.runner.Start()
	return a, a.live.Init()
}

func (a App) View() string {
	if a.state == stateLive {
		return a.live.View()
	}
	return a.viewMenu()
}

func (a App) viewMenu() string {
	var b strings.Builder
	h, sub := lipgloss.NewStyle().Foreground(lipgloss.Color("#00cccc")).Bold(true), lipgloss.NewStyle().Foreground(lipgloss.Color("#666688"))
	b.WriteString("\n\n    " + h.Render("DRONESIM") + "\n    " + sub.Render("control loop playground") + "\n    " + sub.Render("─────────────────────────") + "\n\n")
	for i, e := range a.entries {
		name := e.model + "/" + e.preset
		desc := presetBlurbs[name]
		if i == a.cursor {
			b.WriteString(fmt.Sprintf("    %s %s  %s\n", lipgloss.NewStyle().Foreground(lipgloss.Color("#00ffff")).Bold(true).Render("▸"), lipgloss.NewStyle().Foreground(lipgloss.Color("#ffffff")).Bold(true).Render(fmt.Sprintf("%-20s", name)), lipgloss.NewStyle().Foreground(lipgloss.Color("#ff88ff")).Render(desc)))
		} else {
			b.WriteString(fmt.Sprintf("    %s  %s\n", lipgloss.NewStyle().Foreground(lipgloss.Color("#555566")).Render(fmt.Sprintf("  %-20s", name)), lipgloss.NewStyle().Foreground(lipgloss.Color("#444455")).Render(desc)))
		}
	}
	if a.err != nil {
		b.WriteString("\n    " + lipgloss.NewStyle().Foreground(lipgloss.Color("#ff5555")).Render(a.err.Error()) + "\n")
	}
	b.WriteString("\n    " + lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true).Render("j/k") + lipgloss.NewStyle().Foreground(lipgloss.Color("#555566")).Render(" navigate  ") + lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true).Render("enter") + lipgloss.NewStyle().Foreground(lipgloss.Color("#555566")).Render(" select  ") + lipgloss.NewStyle().Foreground(lipgloss.Color("#00aaaa")).Bold(true).Render("q") + lipgloss.NewStyle().Foreground(lipgloss.Color("#555566")).Render(" quit") + "\n")
	return b.String()
}

// RunPicker opens the launcher in the alternate screen and blocks until
// the user quits.
func RunPicker(logger golog.Logger) error {
	_, err := tea.NewProgram(NewApp(logger), tea.WithAltScreen()).Run()
	return err
}
