package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

var (
	sidebarStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder(), false, false, false, true).
			BorderForeground(lipgloss.Color("240")).
			Padding(0, 2)

	labelStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Width(11)
	valueStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	helpStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("240")).MarginTop(1)
	graphStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("179"))
)

// GradientText colours each rune along a Lab blend from start to end.
func GradientText(text string, start, end lipgloss.Color) string {
	runes := []rune(text)
	if len(runes) == 0 {
		return ""
	}
	c0, err0 := colorful.Hex(string(start))
	c1, err1 := colorful.Hex(string(end))
	if err0 != nil || err1 != nil {
		return text
	}

	var sb strings.Builder
	n := len(runes)
	for i, r := range runes {
		t := 0.0
		if n > 1 {
			t = float64(i) / float64(n-1)
		}
		c := c0.BlendLab(c1, t).Clamped()
		sb.WriteString(lipgloss.NewStyle().Foreground(lipgloss.Color(c.Hex())).Render(string(r)))
	}
	return sb.String()
}

// ProgressBar renders a bar filled to percent (0-1) in colour c.
func ProgressBar(percent float64, width int, c lipgloss.Color) string {
	filled := int(percent * float64(width))
	filled = max(0, min(filled, width))
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	return lipgloss.NewStyle().Foreground(c).Render(bar)
}

// SparklineChart renders the last width values as a sparkline scaled to
// [0, ceil]. A non-positive ceil scales to the largest value.
func SparklineChart(values []float64, width int, ceil float64, c lipgloss.Color) string {
	if len(values) == 0 || width <= 0 {
		return strings.Repeat("─", max(width, 0))
	}
	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	if len(values) > width {
		values = values[len(values)-width:]
	}
	if ceil <= 0 {
		for _, v := range values {
			ceil = max(ceil, v)
		}
		if ceil == 0 {
			ceil = 1
		}
	}

	var sb strings.Builder
	for _, v := range values {
		idx := int(v / ceil * float64(len(chars)-1))
		idx = max(0, min(idx, len(chars)-1))
		sb.WriteRune(chars[idx])
	}
	return lipgloss.NewStyle().Foreground(c).Render(sb.String())
}

// Separator draws a decorative rule
func Separator(width int, c lipgloss.Color) string {
	mid := width / 2
	left := strings.Repeat("─", max(mid-3, 0))
	right := strings.Repeat("─", max(width-mid-3, 0))
	return lipgloss.NewStyle().Foreground(c).Render(left + " ◆ " + right)
}
