package annotate

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var waveformLevels = []rune("▁▂▃▄▅▆▇█")

var (
	playedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#5f87ff"))
	unplayedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#555555"))
)

// waveformBars сжимает пики до width столбцов; каждый столбец берет максимум своего интервала
func waveformBars(peaks []float64, width int) string {
	if len(peaks) == 0 || width <= 0 {
		return ""
	}

	bars := make([]rune, width)
	for i := range bars {
		from := i * len(peaks) / width
		to := (i + 1) * len(peaks) / width
		if to <= from {
			to = from + 1
		}

		peak := 0.0
		for _, v := range peaks[from:to] {
			peak = math.Max(peak, v)
		}
		peak = math.Min(math.Max(peak, 0), 1)

		level := int(math.Round(peak * float64(len(waveformLevels)-1)))
		bars[i] = waveformLevels[level]
	}
	return string(bars)
}

// renderWaveform раскрашивает проигранную часть волновой формы
func renderWaveform(peaks []float64, width int, played float64) string {
	bars := []rune(waveformBars(peaks, width))
	if len(bars) == 0 {
		return ""
	}

	split := int(math.Round(math.Min(math.Max(played, 0), 1) * float64(len(bars))))

	var b strings.Builder
	b.WriteString(playedStyle.Render(string(bars[:split])))
	b.WriteString(unplayedStyle.Render(string(bars[split:])))
	return b.String()
}
