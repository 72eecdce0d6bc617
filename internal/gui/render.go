package gui

import (
	"fmt"
	"image/color"

	"github.com/charmbracelet/lipgloss"
	rl "github.com/gen2brain/raylib-go/raylib"
	"github.com/san-kum/intervalo/internal/field"
	"github.com/san-kum/intervalo/internal/viz"
)

// themeColor converts a theme entry to a raylib colour with alpha a.
func themeColor(c lipgloss.Color, a uint8) rl.Color {
	rgba, err := field.ParseColor(string(c))
	if err != nil {
		return rl.NewColor(255, 255, 255, a)
	}
	return rl.NewColor(rgba.R, rgba.G, rgba.B, a)
}

func (a *App) Draw() {
	a.buf = a.img.CopyColors(a.buf)
	rl.UpdateTexture(a.tex, a.buf)

	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)
	rl.DrawTexture(a.tex, 0, 0, rl.White)

	a.drawSecrets()
	a.DrawHUD()
	if a.ShowHelp {
		a.drawHelp()
	}
	rl.EndDrawing()
}

func (a *App) drawSecrets() {
	t := viz.CurrentTheme
	for _, p := range a.sess.SecretPoints() {
		if p.Found {
			continue
		}
		x, y := int32(p.X), int32(p.Y)
		rl.DrawCircleLines(x, y, 6, themeColor(t.Accent, 90))
		rl.DrawCircle(x, y, 1.5, themeColor(t.Accent, 140))
	}
}

func (a *App) DrawHUD() {
	t := viz.CurrentTheme
	w, h := rl.GetScreenWidth(), rl.GetScreenHeight()

	a.drawText("intervalo de luz", 30, 30, 24, themeColor(t.Primary, 255))
	a.drawText(fmt.Sprintf(":: %s / %s", a.sess.Path(), a.sess.Mood()), 250, 34, 16, themeColor(t.Muted, 255))

	status := "RUNNING"
	if !a.Running {
		status = "PAUSED"
	}
	a.drawText(status, w-130, 30, 16, themeColor(t.Text, 200))

	band := a.sess.Classifier().Band()
	bandCol := themeColor(t.BandColor(band), 255)
	a.drawText(band.Label(), 30, 70, 18, bandCol)
	rl.DrawRectangle(30, 96, 200, 6, themeColor(t.Muted, 80))
	rl.DrawRectangle(30, 96, int32(2*min(max(a.gaugeVal, 0), 100)), 6, bandCol)

	a.DrawTelemetry(30, h-140, 300, 50)
	a.drawText(fmt.Sprintf("%d/%d", a.sess.Discovered(), len(a.sess.SecretPoints())), w-80, h-40, 14, themeColor(t.Muted, 255))
	a.drawText(fmt.Sprintf("%d FPS", int32(rl.GetFPS())), 30, h-40, 14, themeColor(t.Muted, 255))

	if a.hint.Text != "" {
		size := float32(22)
		m := rl.MeasureTextEx(a.Font, a.hint.Text, size, 1)
		a.drawText(a.hint.Text, int(float32(w)/2-m.X/2), h/2+120, int(size), themeColor(t.Text, 230))
	}
	for i, line := range a.fragments {
		a.drawText(line, w-460, 80+i*26, 18, themeColor(t.Secondary, 220))
	}
}

// DrawTelemetry plots the recent pointer speeds as a line strip.
func (a *App) DrawTelemetry(x, y, width, height int) {
	if len(a.Telemetry) < 2 {
		return
	}

	maxVal := a.Telemetry[0]
	for _, v := range a.Telemetry {
		maxVal = max(maxVal, v)
	}
	if maxVal == 0 {
		maxVal = 1
	}

	points := make([]rl.Vector2, len(a.Telemetry))
	for i, val := range a.Telemetry {
		px := float32(x) + float32(i)/float32(maxTelemetry)*float32(width)
		py := float32(y+height) - float32(val/maxVal)*float32(height)
		points[i] = rl.NewVector2(px, py)
	}

	rl.DrawLineStrip(points, themeColor(viz.CurrentTheme.Primary, 180))
	a.drawText(fmt.Sprintf("v %.2f", a.Telemetry[len(a.Telemetry)-1]), x+width+10, y+height-10, 14, themeColor(viz.CurrentTheme.Muted, 255))
}

func (a *App) drawHelp() {
	lines := []string{
		"mouse   stir the field",
		"click   reveal a secret point",
		"space   next fragment set",
		"1-4     reveal secret n",
		"l       next path",
		"m       next mood",
		"t       next theme",
		"p       pause",
		"s       PNG snapshot",
		"h       help",
		"q       quit",
	}
	rl.DrawRectangle(20, 130, 330, int32(len(lines)*22+20), color.RGBA{A: 180})
	for i, l := range lines {
		a.drawText(l, 32, 140+i*22, 16, themeColor(viz.CurrentTheme.Text, 220))
	}
}

func (a *App) drawText(text string, x, y int, size int, c rl.Color) {
	rl.DrawTextEx(a.Font, text, rl.NewVector2(float32(x), float32(y)), float32(size), 1, c)
}
