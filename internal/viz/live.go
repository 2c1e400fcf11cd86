package viz

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"

	"github.com/chantakan/2d-drone-sim/internal/control"
	"github.com/chantakan/2d-drone-sim/internal/sim"
)

const (
	width           = 80
	height          = 24
	historyCapacity = 600

	// flight domain of the drone model, in world units
	worldWidth  = 600.0
	worldHeight = 300.0
	wallMargin  = 10.0

	trackLimit = 2.4 // cart track half-width in meters
)

var (
	canvasStyle     = lipgloss.NewStyle().Padding(1, 2)
	statsStyle      = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(lipgloss.Color("240")).Padding(1, 2).Width(45)
	headerStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("86")).Bold(true).MarginBottom(1)
	labelStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(12)
	valueStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	activeGainStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	graphStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("49")).Padding(1, 0)
	helpStyle       = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(2)
)

type frameMsg time.Time

func frameTick() tea.Cmd {
	return tea.Tick(time.Second/60, func(t time.Time) tea.Msg { return frameMsg(t) })
}

// gainRef binds one tunable PID gain to a name for the tuning panel. The
// setter runs inside the runner's command queue, never directly.
type gainRef struct {
	name string
	set  func(float64)
}

// Model is the terminal front end over a Runner. It never touches the
// session directly while the loop runs; every mutation goes through
// Runner.Do and every read comes from the published snapshot.
type Model struct {
	runner *sim.Runner
	cart   *sim.CartPoleSession
	drone  *sim.DroneSession

	snap          sim.Snapshot
	history       []sim.Snapshot
	playHead      int
	autoplay      bool
	energyHistory []float64

	canvas *Canvas
	trail  []struct{ x, y int }

	gains     []gainRef
	gainVals  []float64
	gainInits []float64
	selected  int

	force       float64 // commanded manual force, cart only
	left, right float64 // commanded manual thrusts, drone only

	showHelp bool
}

// NewModel wires the view to a runner. The session must be the one the
// runner owns; it is only read directly here, before the loop starts.
func NewModel(r *sim.Runner, s sim.Session) Model {
	m := Model{
		runner:        r,
		snap:          r.Snapshot(),
		history:       make([]sim.Snapshot, 0, historyCapacity),
		playHead:      -1,
		energyHistory: make([]float64, 0, historyCapacity),
		canvas:        NewCanvas(width, height),
		trail:         make([]struct{ x, y int }, 0, 100),
	}

	switch s := s.(type) {
	case *sim.CartPoleSession:
		m.cart = s
		m.force = s.ManualForce()
		g := s.Gains()
		m.gains = []gainRef{
			{"kp", func(v float64) { g := s.Gains(); g.Kp = v; s.SetGains(g) }},
			{"ki", func(v float64) { g := s.Gains(); g.Ki = v; s.SetGains(g) }},
			{"kd", func(v float64) { g := s.Gains(); g.Kd = v; s.SetGains(g) }},
		}
		m.gainVals = []float64{g.Kp, g.Ki, g.Kd}
	case *sim.DroneSession:
		m.drone = s
		m.left, m.right = s.ManualThrust()
		for _, l := range []control.Loop{control.LoopVertical, control.LoopHorizontal, control.LoopAttitude} {
			l := l
			g := s.Gains(l)
			for _, f := range []struct {
				suffix string
				val    float64
				set    func(*control.Gains, float64)
			}{
				{"kp", g.Kp, func(g *control.Gains, v float64) { g.Kp = v }},
				{"ki", g.Ki, func(g *control.Gains, v float64) { g.Ki = v }},
				{"kd", g.Kd, func(g *control.Gains, v float64) { g.Kd = v }},
			} {
				assign := f.set
				m.gains = append(m.gains, gainRef{
					name: l.String() + "." + f.suffix,
					set: func(v float64) {
						g := s.Gains(l)
						assign(&g, v)
						s.SetGains(l, g)
					},
				})
				m.gainVals = append(m.gainVals, f.val)
			}
		}
	}

	m.gainInits = make([]float64, len(m.gainVals))
	copy(m.gainInits, m.gainVals)
	for i, v := range m.gainInits {
		if v == 0 {
			m.gainInits[i] = 1e-6
		}
	}

	m.draw(m.snap)
	return m
}

func (m Model) Init() tea.Cmd {
	return frameTick()
}

// Update handles input events and frame ticks.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case " ":
			if m.playHead != -1 {
				m.autoplay = !m.autoplay
			} else {
				m.runner.Toggle()
			}
		case "r":
			m.reset()
		case "p":
			m.togglePID()
		case "w":
			m.toggleWind()
		case "n":
			m.toggleNoise()
		case "[":
			m.scrub(-1)
		case "]":
			m.scrub(1)
		case "tab":
			m.cycleGain()
		case "k", "+":
			m.adjustGain(1.05)
		case "j", "-":
			m.adjustGain(0.95)
		case "left":
			m.nudge(-1, 0)
		case "right":
			m.nudge(1, 0)
		case "up":
			m.nudge(0, 1)
		case "down":
			m.nudge(0, -1)
		case "shift+left":
			m.moveTarget(-10, 0)
		case "shift+right":
			m.moveTarget(10, 0)
		case "shift+up":
			m.moveTarget(0, 10)
		case "shift+down":
			m.moveTarget(0, -10)
		case "?":
			m.showHelp = !m.showHelp
		}
		m.draw(m.current())
		return m, nil
	case frameMsg:
		m.snap = m.runner.Snapshot()
		if len(m.history) == 0 || m.snap.Tick != m.history[len(m.history)-1].Tick {
			m.record(m.snap)
		}
		if m.playHead != -1 && m.autoplay {
			m.playHead++
			if m.playHead >= len(m.history) {
				m.playHead = -1
				m.autoplay = false
				m.runner.Start()
			}
		}
		m.draw(m.current())
		return m, frameTick()
	}
	return m, nil
}

// current is the snapshot on display: the live one, or the replay
// position while time travel is active.
func (m *Model) current() sim.Snapshot {
	if m.playHead >= 0 && m.playHead < len(m.history) {
		return m.history[m.playHead]
	}
	return m.snap
}

func (m *Model) record(snap sim.Snapshot) {
	m.history = append(m.history, snap)
	if len(m.history) > historyCapacity {
		m.history = m.history[1:]
		if m.playHead > 0 {
			m.playHead--
		}
	}
	m.energyHistory = append(m.energyHistory, snap.Energy)
	if len(m.energyHistory) > historyCapacity {
		m.energyHistory = m.energyHistory[1:]
	}
}

// scrub changes the playback position in history.
func (m *Model) scrub(dir int) {
	if m.playHead == -1 {
		if len(m.history) == 0 {
			return
		}
		m.runner.Stop()
		m.autoplay = false
		m.playHead = len(m.history) - 1
	}
	m.playHead += dir
	if m.playHead < 0 {
		m.playHead = 0
	}
	if m.playHead >= len(m.history) {
		m.playHead = -1
	}
}

// reset rewinds the session and clears the view's buffers. Gains and
// manual commands survive, same as they do in the session.
func (m *Model) reset() {
	m.runner.Reset()
	m.snap = m.runner.Snapshot()
	m.history = m.history[:0]
	m.energyHistory = m.energyHistory[:0]
	m.trail = m.trail[:0]
	m.playHead = -1
	m.autoplay = false
}

func (m *Model) cycleGain() {
	if len(m.gains) == 0 {
		return
	}
	m.selected = (m.selected + 1) % len(m.gains)
}

func (m *Model) adjustGain(factor float64) {
	if len(m.gains) == 0 {
		return
	}
	i := m.selected
	m.gainVals[i] *= factor
	v := m.gainVals[i]
	set := m.gains[i].set
	m.runner.Do(func() { set(v) })
}

func (m *Model) togglePID() {
	switch {
	case m.cart != nil:
		s := m.cart
		m.runner.Do(func() { s.SetPIDEnabled(!s.PIDEnabled()) })
	case m.drone != nil:
		s := m.drone
		m.runner.Do(func() { s.SetPIDEnabled(!s.PIDEnabled()) })
	}
}

func (m *Model) toggleWind() {
	if m.drone == nil {
		return
	}
	s := m.drone
	m.runner.Do(func() {
		cfg := s.Disturbance()
		cfg.Wind.Enabled = !cfg.Wind.Enabled
		s.SetDisturbance(cfg)
	})
}

func (m *Model) toggleNoise() {
	if m.drone == nil {
		return
	}
	s := m.drone
	m.runner.Do(func() {
		cfg := s.Disturbance()
		cfg.ThrustNoise.Enabled = !cfg.ThrustNoise.Enabled
		s.SetDisturbance(cfg)
	})
}

// nudge adjusts the manual actuation: horizontal arrows push the cart,
// vertical arrows are collective and horizontal ones differential thrust
// on the drone.
func (m *Model) nudge(dx, dy int) {
	switch {
	case m.cart != nil:
		if dx == 0 {
			return
		}
		m.force = clampF(m.force+float64(dx), -100, 100)
		v := m.force
		s := m.cart
		m.runner.Do(func() { s.SetManualForce(v) })
	case m.drone != nil:
		m.left = clampF(m.left+0.5*float64(dy)-0.25*float64(dx), 0, 20)
		m.right = clampF(m.right+0.5*float64(dy)+0.25*float64(dx), 0, 20)
		l, r := m.left, m.right
		s := m.drone
		m.runner.Do(func() { s.SetManualThrust(l, r) })
	}
}

func (m *Model) moveTarget(dx, dy float64) {
	if m.drone == nil {
		return
	}
	snap := m.runner.Snapshot()
	tx := clampF(snap.TargetX+dx, wallMargin, worldWidth-wallMargin)
	ty := clampF(snap.TargetY+dy, wallMargin, worldHeight-wallMargin)
	s := m.drone
	m.runner.Do(func() { s.SetTarget(tx, ty) })
}

// View renders the TUI interface.
func (m Model) View() string {
	snap := m.current()
	canvasView := canvasStyle.Render(m.canvas.String())

	var s strings.Builder
	s.WriteString(headerStyle.Render(strings.ToUpper(snap.Model)) + "\n")
	s.WriteString(m.status(snap) + "\n\n")

	if len(m.energyHistory) > 1 {
		chart := asciigraph.Plot(m.energyHistory, asciigraph.Height(4), asciigraph.Width(30), asciigraph.Caption("Energy"))
		s.WriteString(graphStyle.Render(chart) + "\n\n")
	}

	s.WriteString(labelStyle.Render("Time") + valueStyle.Render(fmt.Sprintf("%.2fs", snap.Time)) + "\n")
	s.WriteString(labelStyle.Render("Tick") + valueStyle.Render(fmt.Sprintf("%d", snap.Tick)) + "\n")
	s.WriteString(labelStyle.Render("Energy") + valueStyle.Render(fmt.Sprintf("%.2f", snap.Energy)) + "\n")

	if m.cart != nil {
		s.WriteString(labelStyle.Render("Position") + valueStyle.Render(fmt.Sprintf("%+.3f m", snap.Cart.Position)) + "\n")
		s.WriteString(labelStyle.Render("Angle") + valueStyle.Render(fmt.Sprintf("%+.3f rad", snap.Cart.Angle)) + "\n")
		s.WriteString(labelStyle.Render("Force") + valueStyle.Render(fmt.Sprintf("%+.2f N", snap.Force)) + "\n")
		s.WriteString(labelStyle.Render("Score") + valueStyle.Render(fmt.Sprintf("%d", snap.Cart.Score)) + "\n")
		s.WriteString(labelStyle.Render("PID") + valueStyle.Render(onOff(snap.PIDOn)) + "\n")
	}
	if m.drone != nil {
		s.WriteString(labelStyle.Render("Position") + valueStyle.Render(fmt.Sprintf("%.1f, %.1f", snap.Drone.X, snap.Drone.Y)) + "\n")
		s.WriteString(labelStyle.Render("Target") + valueStyle.Render(fmt.Sprintf("%.0f, %.0f", snap.TargetX, snap.TargetY)) + "\n")
		s.WriteString(labelStyle.Render("Rotation") + valueStyle.Render(fmt.Sprintf("%+.3f rad", snap.Drone.Rotation)) + "\n")
		s.WriteString(labelStyle.Render("Thrust L/R") + valueStyle.Render(fmt.Sprintf("%.2f / %.2f N", snap.Left, snap.Right)) + "\n")
		s.WriteString(labelStyle.Render("Wind") + valueStyle.Render(fmt.Sprintf("%+.2f N %s", snap.Wind, onOff(snap.WindEnabled))) + "\n")
		s.WriteString(labelStyle.Render("Noise") + valueStyle.Render(onOff(snap.NoiseEnabled)) + "\n")
		s.WriteString(labelStyle.Render("PID") + valueStyle.Render(onOff(snap.PIDOn)) + "\n")
	}

	s.WriteString("\nGAINS\n")
	if len(m.gains) > 0 {
		for i, g := range m.gains {
			val, initial := m.gainVals[i], m.gainInits[i]
			barWidth, ratio := 10, math.Abs(val)/(2.0*math.Abs(initial))
			if ratio > 1 {
				ratio = 1
			}
			filled := int(ratio * float64(barWidth))
			bar := "[" + strings.Repeat("=", filled) + strings.Repeat("-", barWidth-filled) + "]"
			line := fmt.Sprintf("%-14s %s %.3f", g.name, bar, val)
			if i == m.selected {
				s.WriteString(activeGainStyle.Render("> "+line) + "\n")
			} else {
				s.WriteString("  " + labelStyle.Render(line) + "\n")
			}
		}
	} else {
		s.WriteString(labelStyle.Render("  (none)") + "\n")
	}

	s.WriteString(helpStyle.Render("\n─────────────────────\nSP:Pause R:Reset Q:Quit\nP:PID W:Wind N:Noise ?:Help\n[ ]:Time-Travel K/J:Tune"))
	statsView := statsStyle.Render(s.String())
	mainView := lipgloss.JoinHorizontal(lipgloss.Top, canvasView, statsView)
	if m.showHelp {
		return helpOverlay + "\n\n" + mainView
	}
	return mainView
}

const helpOverlay = `
╔══════════════════════════════════════╗
║          KEYBOARD SHORTCUTS          ║
╠══════════════════════════════════════╣
║  Space    - Pause/Resume simulation  ║
║  R        - Reset simulation         ║
║  Q        - Quit                     ║
║  P        - Toggle PID control       ║
║  W        - Toggle wind (drone)      ║
║  N        - Toggle rotor noise       ║
║  Arrows   - Manual force / thrust    ║
║  Shift+Ar - Move drone target        ║
║  Tab      - Cycle gains              ║
║  K / +    - Raise gain (+5%)         ║
║  J / -    - Lower gain (-5%)         ║
║  [        - Rewind (time travel)     ║
║  ]        - Forward (time travel)    ║
║  ?        - Toggle this help         ║
╚══════════════════════════════════════╝`

func (m *Model) status(snap sim.Snapshot) string {
	if m.playHead != -1 {
		delta := snap.Time - m.history[len(m.history)-1].Time
		if m.autoplay {
			return fmt.Sprintf("REPLAYING (%.1fs)", delta)
		}
		return fmt.Sprintf("REPLAY (%.1fs)", delta)
	}
	if snap.Halted {
		return "HALTED  press r to reset"
	}
	if !m.runner.Running() {
		return "PAUSED"
	}
	return "RUNNING"
}

// Frame renders a single snapshot the way the live view would draw it,
// for use outside the TUI.
func Frame(snap sim.Snapshot) *Canvas {
	m := Model{canvas: NewCanvas(width, height)}
	m.draw(snap)
	return m.canvas
}

// draw renders the given snapshot onto the canvas.
func (m *Model) draw(snap sim.Snapshot) {
	m.canvas.Clear()
	switch snap.Model {
	case sim.ModelCartPole:
		m.drawCartpole(snap)
	case sim.ModelDrone:
		m.drawDrone(snap)
	}
}

func (m *Model) drawCartpole(snap sim.Snapshot) {
	cw, ch := m.canvas.DotWidth(), m.canvas.DotHeight()
	cx := cw / 2
	groundY := ch - 12
	scale := 20.0 // dots per meter

	m.canvas.Line(0, groundY+4, cw, groundY+4)

	// track limit posts
	lim := int(trackLimit * scale)
	m.canvas.Line(cx-lim, groundY-2, cx-lim, groundY+4)
	m.canvas.Line(cx+lim, groundY-2, cx+lim, groundY+4)

	cartX := cx + int(snap.Cart.Position*scale)
	for dy := 0; dy < 4; dy++ {
		for dx := -6; dx <= 6; dx++ {
			m.canvas.Set(cartX+dx, groundY+dy)
		}
	}

	poleLen := float64(ch) * 0.6
	px := cartX + int(poleLen*math.Sin(snap.Cart.Angle))
	py := groundY - int(poleLen*math.Cos(snap.Cart.Angle))
	m.canvas.Line(cartX, groundY, px, py)
	m.canvas.Blob(px, py, 1)
}

func (m *Model) drawDrone(snap sim.Snapshot) {
	cw, ch := m.canvas.DotWidth(), m.canvas.DotHeight()
	sx := float64(cw-2) / worldWidth
	sy := float64(ch-2) / worldHeight
	toDot := func(wx, wy float64) (int, int) {
		return 1 + int(wx*sx), ch - 2 - int(wy*sy)
	}

	// walls of the flight domain
	x0, y0 := toDot(wallMargin, worldHeight-wallMargin)
	x1, y1 := toDot(worldWidth-wallMargin, wallMargin)
	m.canvas.Box(x0, y0, x1, y1)

	// target crosshair
	tx, ty := toDot(snap.TargetX, snap.TargetY)
	m.canvas.Line(tx-3, ty, tx+3, ty)
	m.canvas.Line(tx, ty-2, tx, ty+2)

	dx, dy := toDot(snap.Drone.X, snap.Drone.Y)
	m.trail = append(m.trail, struct{ x, y int }{dx, dy})
	if len(m.trail) > 100 {
		m.trail = m.trail[1:]
	}
	for _, pt := range m.trail {
		m.canvas.Set(pt.x, pt.y)
	}

	arm, c, s := 8.0, math.Cos(snap.Drone.Rotation), math.Sin(snap.Drone.Rotation)
	lx, ly := dx-int(arm*c), dy-int(arm*s)
	rx, ry := dx+int(arm*c), dy+int(arm*s)
	m.canvas.Line(lx, ly, rx, ry)
	m.canvas.Line(lx-3, ly-2, lx+3, ly-2)
	m.canvas.Line(rx-3, ry-2, rx+3, ry-2)
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}

func clampF(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
