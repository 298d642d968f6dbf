package cli

import (
	"fmt"
	"math"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/polarcoaster/pkg/cart"
	"github.com/matzehuels/polarcoaster/pkg/geom"
	"github.com/matzehuels/polarcoaster/pkg/layout"
	"github.com/matzehuels/polarcoaster/pkg/scene"
	"github.com/matzehuels/polarcoaster/pkg/trace"
)

// Player settings.
const (
	frameInterval = 33 * time.Millisecond

	// textRows is the space below the canvas: three lines of node text and
	// the key help.
	textRows = 4

	// terminalHitRadius is the hover radius in cells.
	terminalHitRadius = 1.5
)

// Player glyphs.
const (
	glyphNode = '●'
	glyphCart = '█'
)

// Player styles
var (
	playerTrackStyle = lipgloss.NewStyle().Foreground(colorGray)
	playerNodeStyle  = lipgloss.NewStyle().Foreground(colorBlue)
	playerHoverStyle = lipgloss.NewStyle().Foreground(colorCyan).Bold(true)
	playerCartStyle  = lipgloss.NewStyle().Foreground(colorRed)
	playerTextStyle  = lipgloss.NewStyle().Foreground(colorWhite)
)

// playCommand creates the play command for the terminal animation.
func (c *CLI) playCommand() *cobra.Command {
	var lf layoutFlags

	cmd := &cobra.Command{
		Use:   "play [trace.json]",
		Short: "Ride the coaster in the terminal",
		Long: `Ride the coaster in the terminal.

The trace's tree is laid out to fit the terminal and the cart runs along the
track in real time. Point at a node with the mouse to read its text.

Keys: space pauses, r sends the cart back to the root, q quits.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tr, err := trace.ImportFile(args[0])
			if err != nil {
				return err
			}

			opts := c.baseOptions()
			lf.apply(cmd, &opts)
			so := opts.SceneOptions()
			so.Track.Gauge = 0
			so.Track.Thickness = 1
			so.Track.Ties = []float64{}
			so.HitRadius = terminalHitRadius

			c.Logger.Debug("starting player", "nodes", tr.Len(), "speed", so.TimePerSegment)
			m := newPlayerModel(tr, so, time.Now)
			final, err := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion()).Run()
			if err != nil {
				return fmt.Errorf("player: %w", err)
			}
			if pm, ok := final.(playerModel); ok && pm.err != nil {
				return pm.err
			}
			return nil
		},
	}

	lf.register(cmd)

	return cmd
}

// =============================================================================
// playerModel - Terminal animation
// =============================================================================

type frameMsg time.Time

// playerModel is the bubbletea model of the player. The scene is rebuilt
// whenever the terminal is resized; the cart state carries over because it
// indexes the walk, which does not depend on the viewport.
type playerModel struct {
	trace   *trace.Trace
	opts    scene.Options
	scene   *scene.Scene
	state   cart.State
	pointer *geom.Point

	now    func() time.Time
	start  time.Time
	paused bool

	width, height int
	err           error
}

func newPlayerModel(tr *trace.Trace, opts scene.Options, now func() time.Time) playerModel {
	return playerModel{
		trace: tr,
		opts:  opts,
		state: cart.State{From: 0, To: 1},
		now:   now,
		start: now(),
	}
}

// clock is the reading passed to the animator: time since the player started.
func (m playerModel) clock() time.Duration { return m.now().Sub(m.start) }

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return frameMsg(t) })
}

func (m playerModel) Init() tea.Cmd {
	return tick()
}

func (m playerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "r":
			if m.scene != nil {
				m.state = m.scene.Animator().Reset(m.state)
			}
		case " ", "space":
			m.paused = !m.paused
			if !m.paused {
				m.state.Last = m.clock()
			}
		}
	case tea.MouseMsg:
		p := geom.Pt(float64(msg.X), float64(msg.Y))
		m.pointer = &p
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		sc, err := m.build()
		if err != nil {
			m.err = err
			return m, tea.Quit
		}
		m.scene = sc
	case frameMsg:
		if m.scene != nil && !m.paused {
			m.state = m.scene.Animator().Sample(m.state, m.clock())
		}
		return m, tick()
	}
	return m, nil
}

// build lays the trace out on the terminal grid, one unit per cell.
func (m playerModel) build() (*scene.Scene, error) {
	opts := m.opts
	opts.Viewport = layout.Viewport{
		Width:  float64(max(m.width, 1)),
		Height: float64(max(m.height-textRows, 1)),
	}
	return scene.Build(m.trace, opts)
}

func (m playerModel) View() string {
	if m.scene == nil {
		return StyleDim.Render("Loading...")
	}

	cols := max(m.width, 1)
	rows := max(m.height-textRows, 1)
	frame := m.scene.Frame(m.state, m.pointer)

	c := newCanvas(cols, rows)
	for _, s := range m.scene.Track() {
		c.line(s.From, s.To, playerTrackStyle)
	}
	for i, p := range m.scene.Positions() {
		style := playerNodeStyle
		if i == frame.Hover {
			style = playerHoverStyle
		}
		c.set(p, glyphNode, style)
	}
	c.set(frame.Cart, glyphCart, playerCartStyle)

	var b strings.Builder
	b.WriteString(c.String())
	lines := strings.Split(frame.Text, "\n")
	for i := range textRows - 1 {
		b.WriteString("\n")
		if i < len(lines) {
			b.WriteString(playerTextStyle.Render(truncate(lines[i], cols)))
		}
	}
	b.WriteString("\n")
	help := "space pause · r reset · q quit"
	if m.paused {
		help = "paused · " + help
	}
	b.WriteString(StyleDim.Render(truncate(help, cols)))
	return b.String()
}

// =============================================================================
// Canvas
// =============================================================================

type cell struct {
	r     rune
	style *lipgloss.Style
}

// canvas is a grid of styled runes addressed in layout coordinates.
type canvas struct {
	cols, rows int
	cells      [][]cell
}

func newCanvas(cols, rows int) *canvas {
	cells := make([][]cell, rows)
	for y := range cells {
		cells[y] = make([]cell, cols)
	}
	return &canvas{cols: cols, rows: rows, cells: cells}
}

func (c *canvas) set(p geom.Point, r rune, style lipgloss.Style) {
	x, y := int(math.Floor(p.X)), int(math.Floor(p.Y))
	if x < 0 || y < 0 || x >= c.cols || y >= c.rows {
		return
	}
	c.cells[y][x] = cell{r: r, style: &style}
}

// line draws a segment with the box-drawing rune closest to its direction.
func (c *canvas) line(from, to geom.Point, style lipgloss.Style) {
	d := to.Sub(from)
	r := lineRune(d)
	steps := int(math.Ceil(math.Max(math.Abs(d.X), math.Abs(d.Y)) * 2))
	for i := 0; i <= steps; i++ {
		t := 0.0
		if steps > 0 {
			t = float64(i) / float64(steps)
		}
		c.set(from.Lerp(to, t), r, style)
	}
}

func lineRune(d geom.Point) rune {
	ax, ay := math.Abs(d.X), math.Abs(d.Y)
	switch {
	case ay <= ax/3:
		return '─'
	case ax <= ay/3:
		return '│'
	case (d.X > 0) == (d.Y > 0):
		return '╲'
	default:
		return '╱'
	}
}

func (c *canvas) String() string {
	var b strings.Builder
	for y, row := range c.cells {
		if y > 0 {
			b.WriteString("\n")
		}
		for _, cl := range row {
			switch {
			case cl.r == 0:
				b.WriteByte(' ')
			case cl.style != nil:
				b.WriteString(cl.style.Render(string(cl.r)))
			default:
				b.WriteRune(cl.r)
			}
		}
	}
	return b.String()
}

func truncate(s string, width int) string {
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	if width <= 1 {
		return string(r[:width])
	}
	return string(r[:width-1]) + "…"
}
