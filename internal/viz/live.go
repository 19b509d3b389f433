package viz

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/radialsim/internal/config"
	"github.com/san-kum/radialsim/internal/dynamo"
	"github.com/san-kum/radialsim/internal/experiment"
	"github.com/san-kum/radialsim/internal/metrics"
	"github.com/san-kum/radialsim/internal/sim"
)

const (
	// DefaultScale is the number of world units per braille sub-pixel.
	DefaultScale = 4.0

	defaultWidth    = 80
	defaultHeight   = 24
	historyCapacity = 120
	frameRate       = 60
	// maxFrameDt caps wall-clock steps after a stall.
	maxFrameDt = 1.0 / 15.0
	graphWidth = 28
)

var orders = []sim.Order{sim.OrderInsertion, sim.OrderReverse, sim.OrderShuffle}

type TickMsg time.Time

type Options struct {
	Config   *config.Config
	Scale    float64
	Theme    string
	Renderer *lipgloss.Renderer
	Logger   *log.Logger
}

// Model is the interactive host: it owns a world, steps it with wall-clock
// dt, and maps pointer and key input onto the spawn and decay
// collaborators.
type Model struct {
	opts     Options
	registry *experiment.Registry
	exp      *experiment.Experiment
	canvas   *Canvas
	styles   styles
	theme    int

	width, height int
	t             float64
	last          time.Time
	running       bool
	showPerf      bool
	fps           float64
	stats         dynamo.StepStats
	energy        []float64
	contacts      []float64
	err           error
}

func NewModel(opts Options) (Model, error) {
	if opts.Config == nil {
		opts.Config = config.DefaultConfig()
	}
	if opts.Scale <= 0 {
		opts.Scale = DefaultScale
	}
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}

	m := Model{
		opts:     opts,
		registry: experiment.NewRegistry(),
		canvas:   NewCanvas(defaultWidth, defaultHeight-1),
		theme:    themeIndex(opts.Theme),
		width:    defaultWidth,
		height:   defaultHeight,
		running:  true,
		energy:   make([]float64, 0, historyCapacity),
		contacts: make([]float64, 0, historyCapacity),
	}
	m.styles = newStyles(opts.Renderer, Themes[m.theme])
	if err := m.reset(); err != nil {
		return Model{}, err
	}
	return m, nil
}

// ProgramOptions are the options the live view needs from its program:
// the alternate screen and mouse motion while a button is held.
func ProgramOptions() []tea.ProgramOption {
	return []tea.ProgramOption{tea.WithAltScreen(), tea.WithMouseCellMotion()}
}

// Run opens the live view in the current terminal.
func Run(opts Options) error {
	m, err := NewModel(opts)
	if err != nil {
		return err
	}
	_, err = tea.NewProgram(m, ProgramOptions()...).Run()
	return err
}

func tick() tea.Cmd {
	return tea.Tick(time.Second/frameRate, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "p":
			m.running = !m.running
		case " ":
			decay := m.exp.Decay()
			decay.Active = !decay.Active
		case "`":
			m.showPerf = !m.showPerf
		case "o":
			s := m.exp.GetSimulator()
			s.SetPolicy(s.Policy().Next())
		case "s":
			s := m.exp.GetSimulator()
			s.SetOrder(nextOrder(s.Order()))
		case "t":
			m.theme = (m.theme + 1) % len(Themes)
			m.styles = newStyles(m.opts.Renderer, Themes[m.theme])
		case "c":
			m.exp.World().Clear()
		case "r":
			if err := m.reset(); err != nil {
				m.err = err
			}
		}
	case tea.MouseMsg:
		m.pointer(msg)
	case TickMsg:
		m.frame(time.Time(msg))
		return m, tick()
	}
	return m, nil
}

func nextOrder(o sim.Order) sim.Order {
	for i, cand := range orders {
		if cand == o {
			return orders[(i+1)%len(orders)]
		}
	}
	return sim.OrderInsertion
}

// pointer maps the left button onto the emitter: pressing starts spawning
// at the cursor, dragging moves the spawn point, releasing stops.
func (m *Model) pointer(msg tea.MouseMsg) {
	if msg.Button != tea.MouseButtonLeft {
		return
	}
	emitter := m.exp.Emitter()
	switch msg.Action {
	case tea.MouseActionPress, tea.MouseActionMotion:
		emitter.Position = m.toWorld(msg.X, msg.Y)
		emitter.Enabled = true
	case tea.MouseActionRelease:
		emitter.Enabled = false
	}
}

func (m *Model) frame(now time.Time) {
	dt := 1.0 / frameRate
	if !m.last.IsZero() {
		dt = now.Sub(m.last).Seconds()
	}
	m.last = now
	if dt <= 0 {
		return
	}

	inst := 1 / dt
	if m.fps == 0 {
		m.fps = inst
	} else {
		m.fps = 0.9*m.fps + 0.1*inst
	}

	if !m.running {
		return
	}
	if dt > maxFrameDt {
		dt = maxFrameDt
	}
	m.step(dt)
}

func (m *Model) step(dt float64) {
	w := m.exp.World()
	m.stats = m.exp.GetSimulator().Advance(w, dt, m.t)
	m.t += dt

	m.energy = pushHistory(m.energy, metrics.KineticEnergy(w.Particles()))
	m.contacts = pushHistory(m.contacts, float64(m.stats.Contacts))
}

func pushHistory(h []float64, v float64) []float64 {
	h = append(h, v)
	if len(h) > historyCapacity {
		h = h[1:]
	}
	return h
}

// reset rebuilds the scene from the config, sized to the current window.
func (m *Model) reset() error {
	cfg := m.opts.Config.Clone()
	cfg.Bounds = m.bounds()

	exp := experiment.New(cfg)
	exp.SetLogger(m.opts.Logger)
	if err := exp.Setup(m.registry, nil); err != nil {
		return err
	}
	m.exp = exp
	m.t = 0
	m.stats = dynamo.StepStats{}
	m.energy = m.energy[:0]
	m.contacts = m.contacts[:0]
	m.err = nil
	return nil
}

func (m *Model) resize(w, h int) {
	m.width, m.height = w, h
	m.canvas.Resize(w, h-1)
	m.exp.World().SetBounds(m.bounds())
}

// bounds covers the canvas, one status line excluded.
func (m *Model) bounds() dynamo.Bounds {
	return dynamo.Bounds{
		Width:  float64(m.canvas.SubWidth()) * m.opts.Scale,
		Height: float64(m.canvas.SubHeight()) * m.opts.Scale,
	}
}

// toWorld maps a terminal cell to the world point at its center.
func (m *Model) toWorld(col, row int) dynamo.Vec3 {
	b := m.bounds()
	sx := float64(col*2 + 1)
	sy := float64(row*4 + 2)
	return dynamo.Vec3{X: b.Left() + sx*m.opts.Scale, Y: b.Top() - sy*m.opts.Scale}
}

func (m *Model) toCanvas(p dynamo.Vec3) (int, int) {
	b := m.bounds()
	return int((p.X - b.Left()) / m.opts.Scale), int((b.Top() - p.Y) / m.opts.Scale)
}

func (m *Model) draw() {
	m.canvas.Clear()
	for _, p := range m.exp.World().Particles() {
		x, y := m.toCanvas(p.Position)
		r := int(p.Radius()/m.opts.Scale + 0.5)
		if r <= 1 {
			m.canvas.Disc(x, y, r)
		} else {
			m.canvas.Circle(x, y, r)
		}
	}
}

func (m Model) View() string {
	m.draw()
	lines := m.canvas.Lines()

	var overlay []string
	if m.showPerf {
		overlay = strings.Split(m.perfPanel(), "\n")
	}

	var b strings.Builder
	for i, line := range lines {
		if i < len(overlay) {
			left := overlay[i]
			rest := []rune(line)
			if w := lipgloss.Width(left); w < len(rest) {
				rest = rest[w:]
			} else {
				rest = nil
			}
			b.WriteString(left + m.styles.canvas.Render(string(rest)))
		} else {
			b.WriteString(m.styles.canvas.Render(line))
		}
		b.WriteByte('\n')
	}
	b.WriteString(m.statusLine())
	return b.String()
}

func (m Model) statusLine() string {
	state := m.styles.running.Render("RUNNING")
	if !m.running {
		state = m.styles.paused.Render("PAUSED")
	}
	if m.err != nil {
		state = m.styles.high.Render(m.err.Error())
	}

	s := m.exp.GetSimulator()
	decay := "off"
	if m.exp.Decay().Active {
		decay = "on"
	}
	info := fmt.Sprintf(" %s %s  decay %s  %d particles ", s.Policy(), s.Order(), decay, m.exp.World().Len())
	keys := "p pause  o policy  s order  space decay  ` perf  t theme  c clear  r reset  q quit"

	line := state + m.styles.value.Render(info) + m.styles.help.Render(keys)
	return lipgloss.NewStyle().MaxWidth(m.width).Render(line)
}

func (m Model) perfPanel() string {
	s := m.exp.GetSimulator()
	row := func(label, value string) string {
		return m.styles.label.Render(label) + m.styles.value.Render(value) + "\n"
	}

	var b strings.Builder
	b.WriteString(m.styles.header.Render("PERF") + "\n")
	b.WriteString(row("fps", fmt.Sprintf("%.0f", m.fps)))
	b.WriteString(row("time", fmt.Sprintf("%.1fs", m.t)))
	b.WriteString(row("particles", fmt.Sprintf("%d", m.exp.World().Len())))
	b.WriteString(row("contacts", fmt.Sprintf("%d (%d coincident)", m.stats.Contacts, m.stats.Degenerate)))
	b.WriteString(row("walls", fmt.Sprintf("%d", m.stats.WallHits)))
	b.WriteString(row("policy", s.Policy().String()))
	b.WriteString(row("order", s.Order().String()))
	b.WriteString(row("theme", Themes[m.theme].Name))
	if len(m.energy) > 1 {
		chart := asciigraph.Plot(m.energy, asciigraph.Height(4), asciigraph.Width(graphWidth), asciigraph.Caption("kinetic energy"))
		b.WriteString(m.styles.graph.Render(chart) + "\n")
	}
	b.WriteString(m.styles.sparkline(m.contacts, graphWidth))
	return m.styles.panel.Render(b.String())
}

// World exposes the live world for hosts that embed the model.
func (m Model) World() *sim.World { return m.exp.World() }
