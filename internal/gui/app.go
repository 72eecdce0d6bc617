package gui

import (
	"fmt"
	"image/color"
	"log"
	"os"
	"path/filepath"
	"time"

	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/san-kum/intervalo/internal/field"
	"github.com/san-kum/intervalo/internal/motion"
	"github.com/san-kum/intervalo/internal/narrative"
	"github.com/san-kum/intervalo/internal/raster"
	"github.com/san-kum/intervalo/internal/session"
	"github.com/san-kum/intervalo/internal/viz"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

const (
	maxTelemetry   = 200
	discoverRadius = 24
)

type App struct {
	sess *session.Session
	img  *raster.Image
	tex  rl.Texture2D
	buf  []color.RGBA
	Font rl.Font

	Running  bool
	ShowHelp bool
	quit     bool
	hovering bool
	lastPos  rl.Vector2

	hint      session.Hint
	fragments []string
	Telemetry []float64

	gauge    *gween.Tween
	gaugeVal float32

	SnapshotDir string
}

func initWindow(width, height, fps int) {
	rl.SetConfigFlags(rl.FlagWindowResizable)
	rl.InitWindow(int32(width), int32(height), "intervalo de luz")
	rl.SetTargetFPS(int32(fps))
	rl.SetExitKey(0)
}

func loadFont() rl.Font {
	font := rl.LoadFontEx("/usr/share/fonts/liberation/LiberationMono-Regular.ttf", 32, nil, 0)
	if font.Texture.ID == 0 {
		return rl.GetFontDefault()
	}
	rl.SetTextureFilter(font.Texture, rl.FilterBilinear)
	return font
}

// NewApp starts the session on a raster the size of the window. The window
// must already be open.
func NewApp(sess *session.Session, snapshotDir string) *App {
	cfg := sess.Config()
	bg, err := field.ParseColor(cfg.Field.TrailColor)
	if err != nil {
		bg = color.RGBA{A: 0xff}
	}
	viz.SetTheme(cfg.Render.Theme)

	w, h := rl.GetScreenWidth(), rl.GetScreenHeight()
	a := &App{
		sess:        sess,
		img:         raster.New(w, h, bg),
		Font:        loadFont(),
		Running:     true,
		Telemetry:   make([]float64, 0, maxTelemetry),
		SnapshotDir: snapshotDir,
	}
	a.tex = loadTexture(w, h, bg)

	sess.Observe(session.Funcs{
		Reading: a.onReading,
		Hint:    func(h session.Hint) { a.hint = h },
	})
	sess.Attach(a.img)
	sess.Start(float64(w), float64(h), time.Now())
	a.fragments = sess.Fragments()
	return a
}

func loadTexture(w, h int, bg color.RGBA) rl.Texture2D {
	img := rl.GenImageColor(w, h, bg)
	tex := rl.LoadTextureFromImage(img)
	rl.UnloadImage(img)
	return tex
}

// Run opens the window and blocks until it is closed.
func Run(sess *session.Session, snapshotDir string) {
	cfg := sess.Config()
	initWindow(cfg.Render.Width, cfg.Render.Height, cfg.Render.FPS)
	defer rl.CloseWindow()

	app := NewApp(sess, snapshotDir)
	defer app.Unload()
	app.RunLoop()
}

func (a *App) RunLoop() {
	for !rl.WindowShouldClose() && !a.quit {
		a.Update()
		a.Draw()
	}
}

func (a *App) Unload() {
	rl.UnloadTexture(a.tex)
}

func (a *App) onReading(r motion.Reading) {
	a.Telemetry = append(a.Telemetry, r.Speed)
	if len(a.Telemetry) > maxTelemetry {
		a.Telemetry = a.Telemetry[1:]
	}
	a.gauge = gween.New(a.gaugeVal, float32(r.Gauge), 0.35, ease.OutCubic)
}

func (a *App) resize() {
	w, h := rl.GetScreenWidth(), rl.GetScreenHeight()
	a.img.Resize(w, h)
	rl.UnloadTexture(a.tex)
	a.tex = loadTexture(w, h, a.img.At(0, 0))
	a.buf = nil
	a.sess.Resize(float64(w), float64(h))
}

func (a *App) Update() {
	now := time.Now()
	if rl.IsWindowResized() {
		a.resize()
	}

	a.handlePointer(now)
	a.handleKeys(now)

	if a.Running {
		a.sess.Frame(now)
	}
	if a.gauge != nil {
		val, done := a.gauge.Update(rl.GetFrameTime())
		a.gaugeVal = val
		if done {
			a.gauge = nil
		}
	}
}

func (a *App) handlePointer(now time.Time) {
	if !rl.IsCursorOnScreen() || !rl.IsWindowFocused() {
		if a.hovering {
			a.hovering = false
			a.sess.PointerLeave()
		}
		return
	}

	pos := rl.GetMousePosition()
	if !a.hovering || pos != a.lastPos {
		a.hovering = true
		a.lastPos = pos
		a.sess.Pointer(float64(pos.X), float64(pos.Y), now)
	}

	if rl.IsMouseButtonPressed(rl.MouseLeftButton) {
		if _, ok := a.sess.DiscoverAt(float64(pos.X), float64(pos.Y), discoverRadius, now); !ok {
			a.sess.Interact(now)
		}
	}
}

func (a *App) handleKeys(now time.Time) {
	if rl.IsKeyPressed(rl.KeyQ) {
		a.quit = true
	}
	if rl.IsKeyPressed(rl.KeySpace) || rl.IsKeyPressed(rl.KeyLeft) {
		a.fragments = a.sess.Cycle(now)
	}
	for i, key := range []int32{rl.KeyOne, rl.KeyTwo, rl.KeyThree, rl.KeyFour} {
		if !rl.IsKeyPressed(key) {
			continue
		}
		id := fmt.Sprint(i + 1)
		for _, p := range a.sess.SecretPoints() {
			if p.ID == id {
				a.sess.Discover(p.ID, p.X, p.Y, now)
			}
		}
	}
	if rl.IsKeyPressed(rl.KeyL) {
		a.nextPath()
		a.sess.Interact(now)
	}
	if rl.IsKeyPressed(rl.KeyM) {
		a.sess.SetMood(a.sess.Mood().Next())
	}
	if rl.IsKeyPressed(rl.KeyT) {
		viz.NextTheme()
	}
	if rl.IsKeyPressed(rl.KeyP) {
		a.Running = !a.Running
	}
	if rl.IsKeyPressed(rl.KeyS) {
		a.snapshot(now)
	}
	if rl.IsKeyPressed(rl.KeyH) {
		a.ShowHelp = !a.ShowHelp
	}
}

func (a *App) nextPath() {
	cur := a.sess.Path()
	for i, p := range narrative.Paths {
		if p != cur {
			continue
		}
		next := narrative.Paths[(i+1)%len(narrative.Paths)]
		if a.sess.SetPath(next) == nil {
			viz.SetTheme(next)
			a.fragments = a.sess.Fragments()
		}
		return
	}
}

func (a *App) snapshot(now time.Time) {
	path := filepath.Join(a.SnapshotDir, fmt.Sprintf("intervalo_%s.png", now.Format("20060102_150405")))
	f, err := os.Create(path)
	if err != nil {
		log.Printf("snapshot: %v", err)
		return
	}
	defer f.Close()
	if err := a.img.WritePNG(f); err != nil {
		log.Printf("snapshot: %v", err)
		return
	}
	log.Printf("saved %s", path)
}
