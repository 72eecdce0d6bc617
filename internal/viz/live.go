package viz

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/guptarohit/asciigraph"
	"github.com/san-kum/intervalo/internal/field"
	"github.com/san-kum/intervalo/internal/motion"
	"github.com/san-kum/intervalo/internal/narrative"
	"github.com/san-kum/intervalo/internal/raster"
	"github.com/san-kum/intervalo/internal/session"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

const (
	sidebarWidth    = 36
	sidebarInner    = sidebarWidth - 4
	historyCapacity = 240
	trailCapacity   = 12
	discoverRadius  = CellH * 1.5
	gaugeEase       = 0.35
)

type TickMsg time.Time

type Options struct {
	// SnapshotDir receives PNG snapshots and GIF recordings.
	SnapshotDir string
	// Threshold is the CIE L* above which a braille dot lights up.
	Threshold float64
	Clock     func() time.Time
}

// Model is the terminal host: it forwards mouse and keys to the session,
// steps it on every tick and samples the raster into braille.
type Model struct {
	sess   *session.Session
	img    *raster.Image
	canvas *Canvas
	opts   Options
	ft     time.Duration

	cols, rows int
	started    bool
	running    bool
	pointerIn  bool
	showGraph  bool
	showHelp   bool

	hint      session.Hint
	fragments []string
	speeds    []float64
	trail     []image.Point

	gauge    *gween.Tween
	gaugeVal float32
	lastTick time.Time

	rec    *Recorder
	status string
}

func NewModel(sess *session.Session, opts Options) *Model {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Threshold <= 0 {
		opts.Threshold = 0.12
	}
	if opts.SnapshotDir == "" {
		opts.SnapshotDir = "."
	}
	cfg := sess.Config()
	bg, err := field.ParseColor(cfg.Field.TrailColor)
	if err != nil {
		bg = color.RGBA{A: 0xff}
	}

	m := &Model{
		sess:      sess,
		img:       raster.New(0, 0, bg),
		canvas:    NewCanvas(0, 0),
		opts:      opts,
		ft:        cfg.FrameTime(),
		running:   true,
		fragments: sess.Fragments(),
		speeds:    make([]float64, 0, historyCapacity),
	}
	SetTheme(cfg.Render.Theme)
	sess.Observe(session.Funcs{
		Reading: m.onReading,
		Hint:    func(h session.Hint) { m.hint = h },
	})
	return m
}

func (m *Model) tick() tea.Cmd {
	return tea.Tick(m.ft, func(t time.Time) tea.Msg { return TickMsg(t) })
}

func (m *Model) Init() tea.Cmd { return m.tick() }

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
	case tea.MouseMsg:
		m.mouse(msg)
	case tea.BlurMsg:
		m.leave()
	case tea.KeyMsg:
		return m, m.key(msg)
	case TickMsg:
		m.step(time.Time(msg))
		return m, m.tick()
	}
	return m, nil
}

func (m *Model) resize(w, h int) {
	m.cols = max(w-sidebarWidth-1, 10)
	m.rows = max(h-1, 4)
	pw, ph := m.cols*CellW, m.rows*CellH
	m.img.Resize(pw, ph)
	m.canvas.Resize(m.cols, m.rows)

	if !m.started {
		m.started = true
		m.sess.Attach(m.img)
		m.sess.Start(float64(pw), float64(ph), m.opts.Clock())
		return
	}
	m.sess.Resize(float64(pw), float64(ph))
}

// cellCentre maps a terminal cell to the raster pixel at its centre.
func cellCentre(col, row int) (float64, float64) {
	return float64(col*CellW + CellW/2), float64(row*CellH + CellH/2)
}

func (m *Model) mouse(msg tea.MouseMsg) {
	if !m.started {
		return
	}
	if msg.X < 0 || msg.Y < 0 || msg.X >= m.cols || msg.Y >= m.rows {
		m.leave()
		return
	}
	now := m.opts.Clock()
	x, y := cellCentre(msg.X, msg.Y)

	switch msg.Action {
	case tea.MouseActionMotion:
		m.pointerIn = true
		m.sess.Pointer(x, y, now)
	case tea.MouseActionPress:
		if msg.Button != tea.MouseButtonLeft {
			return
		}
		if _, ok := m.sess.DiscoverAt(x, y, discoverRadius, now); !ok {
			m.sess.Interact(now)
		}
	}
}

func (m *Model) leave() {
	if m.pointerIn {
		m.pointerIn = false
		m.sess.PointerLeave()
		m.trail = m.trail[:0]
	}
}

func (m *Model) key(msg tea.KeyMsg) tea.Cmd {
	now := m.opts.Clock()
	switch k := msg.String(); k {
	case "q", "ctrl+c":
		return tea.Quit
	case " ", "left":
		m.fragments = m.sess.Cycle(now)
	case "1", "2", "3", "4":
		for _, p := range m.sess.SecretPoints() {
			if p.ID == k {
				m.sess.Discover(p.ID, p.X, p.Y, now)
			}
		}
	case "l":
		m.nextPath()
		m.sess.Interact(now)
	case "m":
		m.sess.SetMood(m.sess.Mood().Next())
	case "t":
		NextTheme()
	case "p":
		m.running = !m.running
	case "g":
		m.showGraph = !m.showGraph
	case "s":
		m.snapshot(now)
	case "r":
		m.toggleRecording(now)
	case "?":
		m.showHelp = !m.showHelp
	}
	return nil
}

func (m *Model) nextPath() {
	cur := m.sess.Path()
	for i, p := range narrative.Paths {
		if p == cur {
			next := narrative.Paths[(i+1)%len(narrative.Paths)]
			if m.sess.SetPath(next) == nil {
				SetTheme(next)
				m.fragments = m.sess.Fragments()
			}
			return
		}
	}
}

func (m *Model) onReading(r motion.Reading) {
	m.speeds = append(m.speeds, r.Speed)
	if len(m.speeds) > historyCapacity {
		m.speeds = m.speeds[1:]
	}
	m.trail = append(m.trail, image.Pt(int(r.X)/dotW, int(r.Y)/dotH))
	if len(m.trail) > trailCapacity {
		m.trail = m.trail[1:]
	}
	m.gauge = gween.New(m.gaugeVal, float32(r.Gauge), gaugeEase, ease.OutCubic)
}

func (m *Model) step(now time.Time) {
	if m.started && m.running {
		m.sess.Frame(now)
		if m.rec != nil {
			m.rec.Capture(m.img)
		}
	}

	if m.gauge != nil && !m.lastTick.IsZero() {
		val, done := m.gauge.Update(float32(now.Sub(m.lastTick).Seconds()))
		m.gaugeVal = val
		if done {
			m.gauge = nil
		}
	}
	m.lastTick = now

	m.canvas.FromRaster(m.img, m.opts.Threshold)
	m.drawOverlay()
}

// drawOverlay marks the undiscovered secret points and the pointer trail.
func (m *Model) drawOverlay() {
	accent := themeRGBA(CurrentTheme.Accent)
	for _, p := range m.sess.SecretPoints() {
		if p.Found {
			continue
		}
		sx, sy := int(p.X)/dotW, int(p.Y)/dotH
		m.canvas.SetColor(sx, sy-1, accent)
		m.canvas.SetColor(sx-1, sy, accent)
		m.canvas.SetColor(sx+1, sy, accent)
		m.canvas.SetColor(sx, sy+1, accent)
	}

	muted := themeRGBA(CurrentTheme.Muted)
	for i := 1; i < len(m.trail); i++ {
		a, b := m.trail[i-1], m.trail[i]
		m.canvas.DrawLine(a.X, a.Y, b.X, b.Y, muted)
	}
}

func themeRGBA(c lipgloss.Color) color.RGBA {
	rgba, err := field.ParseColor(string(c))
	if err != nil {
		return color.RGBA{R: 0xff, G: 0xff, B: 0xff, A: 0xff}
	}
	return rgba
}

func (m *Model) snapshot(now time.Time) {
	path := filepath.Join(m.opts.SnapshotDir, fmt.Sprintf("intervalo_%s.png", now.Format("20060102_150405")))
	f, err := os.Create(path)
	if err != nil {
		m.status = "snapshot failed: " + err.Error()
		return
	}
	defer f.Close()
	if err := m.img.WritePNG(f); err != nil {
		m.status = "snapshot failed: " + err.Error()
		return
	}
	m.status = "saved " + path
}

func (m *Model) toggleRecording(now time.Time) {
	if m.rec == nil {
		m.rec = NewRecorder(3, 2)
		m.status = "recording"
		return
	}
	rec := m.rec
	m.rec = nil
	if rec.Len() == 0 {
		m.status = ""
		return
	}

	path := filepath.Join(m.opts.SnapshotDir, fmt.Sprintf("intervalo_%s.gif", now.Format("20060102_150405")))
	f, err := os.Create(path)
	if err != nil {
		m.status = "recording failed: " + err.Error()
		return
	}
	defer f.Close()
	delay := max(int(3*m.ft/(10*time.Millisecond)), 1)
	if err := rec.Encode(f, delay); err != nil {
		m.status = "recording failed: " + err.Error()
		return
	}
	m.status = fmt.Sprintf("saved %s (%d frames)", path, rec.Len())
}

func (m *Model) View() string {
	if !m.started {
		return "waiting for the terminal size...\n"
	}
	t := CurrentTheme
	row := func(label, value string) string {
		return labelStyle.Render(label) + valueStyle.Render(value) + "\n"
	}

	var s strings.Builder
	s.WriteString(GradientText("INTERVALO DE LUZ", t.Primary, t.Secondary) + "\n")
	status := "RUNNING"
	switch {
	case !m.running:
		status = "PAUSED"
	case m.rec != nil:
		status = fmt.Sprintf("REC %d", m.rec.Len())
	}
	s.WriteString(lipgloss.NewStyle().Foreground(t.Muted).Render(status) + "\n")
	s.WriteString(Separator(sidebarInner, t.Muted) + "\n")

	band := m.sess.Classifier().Band()
	s.WriteString(row("Path", m.sess.Path()))
	s.WriteString(row("Mood", string(m.sess.Mood())))
	s.WriteString(row("Band", lipgloss.NewStyle().Foreground(t.BandColor(band)).Render(band.Label())))
	s.WriteString(row("Speed", fmt.Sprintf("%.3f", m.sess.Classifier().Speed())))
	s.WriteString(ProgressBar(float64(m.gaugeVal)/100, sidebarInner-5, t.BandColor(band)))
	s.WriteString(fmt.Sprintf(" %3.0f\n", m.gaugeVal))
	s.WriteString(SparklineChart(m.speeds, sidebarInner, 0, t.Primary) + "\n")
	if m.showGraph && len(m.speeds) > 1 {
		chart := asciigraph.Plot(m.speeds, asciigraph.Height(5), asciigraph.Width(sidebarInner-8), asciigraph.Caption("speed"))
		s.WriteString(graphStyle.Render(chart) + "\n")
	}

	st := m.sess.Field().Stats()
	s.WriteString(row("Particles", fmt.Sprintf("%d", st.Population)))
	s.WriteString(row("Life", fmt.Sprintf("%.2f", st.MeanLife)))
	s.WriteString(row("Secrets", fmt.Sprintf("%d/%d", m.sess.Discovered(), len(m.sess.SecretPoints()))))
	s.WriteString(Separator(sidebarInner, t.Muted) + "\n")

	if m.hint.Text != "" {
		s.WriteString(lipgloss.NewStyle().Foreground(t.Text).Italic(true).Width(sidebarInner).Render(m.hint.Text) + "\n\n")
	}
	frag := lipgloss.NewStyle().Foreground(t.Muted).Width(sidebarInner)
	for _, line := range m.fragments {
		s.WriteString(frag.Render(line) + "\n")
	}
	if m.status != "" {
		s.WriteString("\n" + valueStyle.Render(m.status) + "\n")
	}

	help := "SP:Cycle 1-4:Secret L:Path M:Mood\nT:Theme P:Pause G:Graph\nS:PNG R:GIF ?:Help Q:Quit"
	if m.showHelp {
		help = "mouse     move to stir the field\n" +
			"click     reveal a secret point\n" +
			"space/←   next fragment set\n" +
			"1-4       reveal secret n\n" +
			"l         next path\n" +
			"m         next mood\n" +
			"t         next theme\n" +
			"p         pause\n" +
			"g         speed graph\n" +
			"s         PNG snapshot\n" +
			"r         start/stop GIF\n" +
			"q         quit"
	}
	s.WriteString(helpStyle.Render(help))

	side := sidebarStyle.Width(sidebarWidth).Render(s.String())
	return lipgloss.JoinHorizontal(lipgloss.Top, m.canvas.Render(), side)
}

// Run starts the terminal host with mouse motion and focus reporting.
func Run(sess *session.Session, opts Options) error {
	p := tea.NewProgram(NewModel(sess, opts),
		tea.WithAltScreen(),
		tea.WithMouseAllMotion(),
		tea.WithReportFocus(),
	)
	_, err := p.Run()
	return err
}
