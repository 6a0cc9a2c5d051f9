package tui

import (
	"fmt"
	"strings"

	"github.com/Cathesth/SHELF/internal/app"
)

const chartMaxRows = 12

// RenderChart draws the genre distribution as horizontal bars. Bars scale
// against the largest genre so the layout holds at any terminal width.
func RenderChart(shares []app.GenreShare, width int, t Theme) string {
	if len(shares) == 0 {
		return t.TableDim.Render("No analyzed genres yet.")
	}
	if len(shares) > chartMaxRows {
		shares = shares[:chartMaxRows]
	}

	labelW := 0
	maxCount := 0
	for _, s := range shares {
		if w := len([]rune(s.Genre)); w > labelW {
			labelW = w
		}
		if s.Count > maxCount {
			maxCount = s.Count
		}
	}
	if labelW > 18 {
		labelW = 18
	}
	if maxCount == 0 {
		maxCount = 1
	}

	// label + space + bar + space + "NN (PP%)"
	barW := width - labelW - 11
	if barW < 5 {
		barW = 5
	}

	var b strings.Builder
	for i, s := range shares {
		n := int(float64(barW) * float64(s.Count) / float64(maxCount))
		if n < 1 {
			n = 1
		}
		label := truncateRunes(s.Genre, labelW)
		b.WriteString(t.BarLabel.Render(fmt.Sprintf("%-*s", labelW, label)))
		b.WriteString(" ")
		b.WriteString(t.Bar.Render(strings.Repeat("█", n)))
		b.WriteString(" ")
		b.WriteString(t.BarValue.Render(fmt.Sprintf("%d (%.0f%%)", s.Count, s.Share*100)))
		if i != len(shares)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}
