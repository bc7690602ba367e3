// Package tui is the interactive treemap viewer.
package tui

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/lu-zhengda/pytestmap/internal/config"
	"github.com/lu-zhengda/pytestmap/internal/engine"
	"github.com/lu-zhengda/pytestmap/internal/palette"
	"github.com/lu-zhengda/pytestmap/internal/session"
	"github.com/lu-zhengda/pytestmap/internal/treemap"
	"github.com/lu-zhengda/pytestmap/internal/zoom"
)

// frameInterval paces transition frames at about 60 fps.
const frameInterval = 16 * time.Millisecond

const (
	headerRows = 1
	footerRows = 2
)

type loadDoneMsg struct {
	batches []engine.Batch
	err     error
}

type loadProgressMsg struct {
	progress engine.LoadProgress
}

// frameMsg is one animation tick. Ticks from an older generation belong
// to a cancelled transition and are dropped.
type frameMsg struct {
	gen int
	at  time.Time
}

// ReloadMsg asks the model to reload its sources. The file watcher sends it
// through tea.Program.Send.
type ReloadMsg struct{}

type Model struct {
	sess   *session.Session
	engine *engine.Engine
	logger *zap.Logger

	loading    bool
	total      int
	done       int
	failed     int
	current    string
	waiting    int
	progressCh chan engine.LoadProgress
	warnings   []string

	mode      palette.Mode
	cursor    int
	animating bool
	lastFrame time.Time
	frameGen  int
	status    string

	help    help.Model
	spinner spinner.Model

	width  int
	height int
}

// New returns a viewer over sess. With a non-nil engine the model loads its
// sources on start and on reload; with nil it shows what sess already holds.
func New(sess *session.Session, e *engine.Engine, logger *zap.Logger) Model {
	if logger == nil {
		logger = zap.NewNop()
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(colorPrimary)

	// Terminal cells carry no margins; the header bar takes the top row.
	o := sess.Options()
	o.Margin = config.Margin{}
	sess.SetOptions(o)

	m := Model{
		sess:    sess,
		engine:  e,
		logger:  logger,
		mode:    o.Color,
		help:    help.New(),
		spinner: sp,
	}
	if e != nil {
		m.loading = true
		m.total = len(e.Sources())
		m.progressCh = newProgressCh(e)
	}
	return m
}

func (m Model) Init() tea.Cmd {
	if m.engine == nil {
		return nil
	}
	return tea.Batch(m.spinner.Tick, startLoad(m.engine, m.progressCh))
}

// newProgressCh is sized so progress sends never block: each source
// reports waiting, started and done.
func newProgressCh(e *engine.Engine) chan engine.LoadProgress {
	return make(chan engine.LoadProgress, 3*len(e.Sources())+1)
}

func startLoad(e *engine.Engine, ch chan engine.LoadProgress) tea.Cmd {
	loadCmd := func() tea.Msg {
		batches, err := e.LoadAllWithProgress(context.Background(), func(p engine.LoadProgress) {
			ch <- p
		})
		close(ch)
		return loadDoneMsg{batches: batches, err: err}
	}

	return tea.Batch(loadCmd, listenLoadProgress(ch))
}

func listenLoadProgress(ch chan engine.LoadProgress) tea.Cmd {
	return func() tea.Msg {
		p, ok := <-ch
		if !ok {
			return nil
		}
		return loadProgressMsg{progress: p}
	}
}

func frameTick(gen int) tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg { return frameMsg{gen: gen, at: t} })
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.resize()
		return m, nil

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case loadProgressMsg:
		p := msg.progress
		switch p.Status {
		case engine.LoadWaiting:
			m.waiting++
		case engine.LoadStarted:
			m.waiting = max(m.waiting-1, 0)
			m.current = p.Name
		case engine.LoadDone:
			m.done++
			if p.Error != nil {
				m.failed++
			}
		}
		if m.progressCh != nil {
			return m, listenLoadProgress(m.progressCh)
		}
		return m, nil

	case loadDoneMsg:
		m.loading = false
		m.progressCh = nil
		m.current = ""
		m.warnings = errorLines(msg.err)
		if msg.err != nil && len(engine.Records(msg.batches)) == 0 && m.hasData() {
			m.status = "reload failed, keeping previous data"
			m.logger.Warn("reload produced no records", zap.Error(msg.err))
			return m, nil
		}
		m.sess.Ingest(msg.batches)
		m.resetView()
		m.logger.Info("loaded",
			zap.Int("sources", len(msg.batches)),
			zap.Int("records", len(m.sess.Records())),
			zap.Int("skipped", m.sess.Skipped()),
		)
		return m, nil

	case ReloadMsg:
		return m.reload()

	case frameMsg:
		if msg.gen != m.frameGen {
			return m, nil
		}
		t := msg.at
		running := m.sess.Controller().Advance(t.Sub(m.lastFrame))
		m.lastFrame = t
		if running {
			return m, frameTick(m.frameGen)
		}
		m.animating = false
		m.cursor = 0
		return m, nil

	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			return m, tea.Quit
		}
		if m.loading {
			return m, nil
		}
		return m.updateTreemap(msg)
	}
	return m, nil
}

func (m Model) updateTreemap(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	ctrl := m.sess.Controller()

	switch {
	case key.Matches(msg, keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		m.resize()

	case key.Matches(msg, keys.Color):
		m.mode = m.mode.Toggle()

	case key.Matches(msg, keys.Reload):
		return m.reload()

	case key.Matches(msg, keys.Dim):
		slot := int(msg.String()[0] - '1')
		if err := m.sess.CycleDimension(slot); err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.resetView()

	case m.animating:
		// Navigation waits for the transition to finish.

	case key.Matches(msg, keys.Enter):
		if id, ok := m.selected(); ok && ctrl.ZoomIn(id) {
			return m.startAnimation()
		}

	case key.Matches(msg, keys.Back):
		if ctrl.ZoomOut() {
			return m.startAnimation()
		}

	case key.Matches(msg, keys.Next):
		if n := len(m.focusChildren()); n > 0 {
			m.cursor = (m.cursor + 1) % n
		}

	case key.Matches(msg, keys.Left):
		m.move(-1, 0)
	case key.Matches(msg, keys.Right):
		m.move(1, 0)
	case key.Matches(msg, keys.Up):
		m.move(0, -1)
	case key.Matches(msg, keys.Down):
		m.move(0, 1)
	}
	return m, nil
}

func (m Model) reload() (tea.Model, tea.Cmd) {
	if m.engine == nil || m.loading {
		return m, nil
	}
	m.loading = true
	m.done, m.failed, m.waiting = 0, 0, 0
	m.total = len(m.engine.Sources())
	m.progressCh = newProgressCh(m.engine)
	return m, tea.Batch(m.spinner.Tick, startLoad(m.engine, m.progressCh))
}

// hasData reports whether the session holds a dataset worth keeping.
func (m Model) hasData() bool {
	return len(m.sess.Records()) > 0 || m.sess.Pregrouped()
}

func (m Model) startAnimation() (tea.Model, tea.Cmd) {
	m.animating = true
	m.frameGen++
	m.lastFrame = time.Now()
	return m, frameTick(m.frameGen)
}

func (m *Model) resetView() {
	m.cursor = 0
	m.animating = false
	m.frameGen++
}

func (m *Model) resize() {
	w, h := m.chartSize()
	m.sess.Resize(float64(w), float64(h*CellAspect))
	m.resetView()
}

func (m Model) chartSize() (int, int) {
	rows := footerRows
	if m.help.ShowAll {
		rows += len(keys.FullHelp()[0]) - 1
	}
	return max(m.width, 0), max(m.height-headerRows-rows, 0)
}

func (m Model) focusChildren() []int {
	n := m.sess.Tree().Node(m.sess.Controller().Focus())
	if n == nil {
		return nil
	}
	return n.Children
}

func (m Model) selected() (int, bool) {
	children := m.focusChildren()
	if m.cursor < 0 || m.cursor >= len(children) {
		return 0, false
	}
	return children[m.cursor], true
}

// move shifts the cursor to the nearest focus child whose center lies in
// direction (dx, dy) from the current one.
func (m *Model) move(dx, dy float64) {
	children := m.focusChildren()
	cur, ok := m.selected()
	if !ok {
		return
	}
	x, y := m.sess.Controller().Scales()
	cx, cy := center(zoom.Project(m.sess.Tree().Nodes[cur].Rect, x, y))

	best, bestDist := -1, math.Inf(1)
	for i, c := range children {
		if c == cur {
			continue
		}
		ox, oy := center(zoom.Project(m.sess.Tree().Nodes[c].Rect, x, y))
		vx, vy := ox-cx, oy-cy
		if vx*dx+vy*dy <= 0 {
			continue
		}
		// Off-axis distance counts double so the cursor prefers straight moves.
		along := math.Abs(vx*dx + vy*dy)
		across := math.Abs(vx*dy - vy*dx)
		if d := along + 2*across; d < bestDist {
			best, bestDist = i, d
		}
	}
	if best >= 0 {
		m.cursor = best
	}
}

func center(r treemap.Rect) (float64, float64) {
	return r.X + r.DX/2, r.Y + r.DY/2
}

func errorLines(err error) []string {
	if err == nil {
		return nil
	}
	var lines []string
	for _, l := range strings.Split(err.Error(), "\n") {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

func (m Model) View() string {
	if m.loading {
		return m.viewLoading()
	}
	if m.width == 0 {
		return ""
	}

	ctrl := m.sess.Controller()
	title := m.sess.Breadcrumb()
	if t := m.sess.Options().Title; t != "" {
		title = t + " | " + title
	}
	s := renderHeader(title, m.width)

	w, h := m.chartSize()
	sel := -1
	if id, ok := m.selected(); ok && !m.animating {
		sel = id
	}
	var total float64
	if n := m.sess.Tree().Node(ctrl.Target()); n != nil {
		total = n.Duration
	}
	s += RenderGrid(m.sess.Tree(), ctrl.Frame(), w, h, GridOptions{
		Mode:      m.mode,
		Scale:     palette.NewDurationScale(total),
		Precision: m.sess.Precision(),
		Selected:  sel,
		Color:     true,
	})
	s += m.viewStatus() + "\n"
	s += renderFooter(m.help.View(keys))
	return s
}

func (m Model) viewStatus() string {
	var parts []string
	parts = append(parts, fmt.Sprintf("%d records", len(m.sess.Records())))
	if n := m.sess.Skipped(); n > 0 {
		parts = append(parts, warnStyle.Render(fmt.Sprintf("%d skipped", n)))
	}
	if len(m.warnings) > 0 {
		parts = append(parts, errorStyle.Render(fmt.Sprintf("%d failed sources", len(m.warnings))))
	}

	if !m.sess.Pregrouped() {
		var dims []string
		for i, d := range m.sess.Dimensions() {
			dims = append(dims, dimSlotStyle.Render(fmt.Sprintf("%d:", i+1))+string(d))
		}
		parts = append(parts, "dims "+strings.Join(dims, " "))
	}
	parts = append(parts, "color "+string(m.mode))
	if m.status != "" {
		parts = append(parts, warnStyle.Render(m.status))
	}
	return dimStyle.Render(strings.Join(parts, " · "))
}

func (m Model) viewLoading() string {
	s := titleStyle.Render("pytestmap") + "\n\n"
	s += m.spinner.View() + " Loading reports...\n"
	total := m.total
	if total > 0 {
		ratio := float64(m.done) / float64(total)
		s += "  " + renderProgressBar(ratio, 30, m.failed > 0) + fmt.Sprintf(" %d/%d", m.done, total) + "\n"
	}
	if m.current != "" {
		s += dimStyle.Render("  "+m.current) + "\n"
	}
	if m.waiting > 0 {
		s += dimStyle.Render(fmt.Sprintf("  %d queued", m.waiting)) + "\n"
	}
	return s
}

// Warnings returns the per-source load failures of the last load.
func (m Model) Warnings() []string {
	return m.warnings
}

// Run starts the viewer and blocks until it exits. onStart, when set,
// receives the program so callers can Send it ReloadMsg.
func Run(m Model, onStart func(*tea.Program)) error {
	p := tea.NewProgram(m, tea.WithAltScreen())
	if onStart != nil {
		onStart(p)
	}
	final, err := p.Run()
	if err != nil {
		return fmt.Errorf("viewer: %w", err)
	}
	if fm, ok := final.(Model); ok {
		for _, w := range fm.Warnings() {
			fmt.Println("warning: " + w)
		}
	}
	return nil
}
