package clima

import (
	"fmt"
	"math"
	"strings"
)

const (
	maxGlyph = "█"
	minGlyph = "░"
)

// RenderSeries produces a bar chart of a daily series, one line per day with
// the max-temperature bar stacked above the min-temperature bar. Bar length
// is the rounded temperature clamped at zero, so negative and missing values
// render as an empty bar rather than panicking on a negative repeat count.
func RenderSeries(series DailySeries) string {
	var b strings.Builder
	for i, date := range series.Dates {
		b.WriteString(fmt.Sprintf("%s max %s %s\n", date, bar(maxGlyph, at(series.TempMax, i)), label(at(series.TempMax, i))))
		b.WriteString(fmt.Sprintf("%s min %s %s\n", date, bar(minGlyph, at(series.TempMin, i)), label(at(series.TempMin, i))))
	}
	return b.String()
}

func at(vals []*float64, i int) *float64 {
	if i < len(vals) {
		return vals[i]
	}
	return nil
}

// BarLength converts a temperature to a repeat count, never negative.
func BarLength(temp *float64) int {
	if temp == nil {
		return 0
	}
	n := int(math.Round(*temp))
	if n < 0 {
		return 0
	}
	return n
}

func bar(glyph string, temp *float64) string {
	return strings.Repeat(glyph, BarLength(temp))
}

func label(temp *float64) string {
	if temp == nil {
		return "n/a"
	}
	return fmt.Sprintf("%.1f°C", *temp)
}
