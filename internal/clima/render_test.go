package clima

import (
	"strings"
	"testing"
)

func ptr(v float64) *float64 { return &v }

func TestBarLengthNeverNegative(t *testing.T) {
	cases := []struct {
		temp *float64
		want int
	}{
		{ptr(-3), 0},
		{ptr(-0.4), 0},
		{ptr(0), 0},
		{ptr(0.5), 1},
		{ptr(21.4), 21},
		{ptr(21.5), 22},
		{nil, 0},
	}
	for _, tc := range cases {
		if got := BarLength(tc.temp); got != tc.want {
			t.Errorf("BarLength(%v): expected %d, got %d", tc.temp, tc.want, got)
		}
	}
}

func TestRenderSeriesNegativeTemperatures(t *testing.T) {
	series := DailySeries{
		Dates:   []string{"2026-01-10", "2026-01-11"},
		TempMax: []*float64{ptr(-3), ptr(2)},
		TempMin: []*float64{ptr(-8), nil},
	}

	// Must not panic on negative repeat counts.
	out := RenderSeries(series)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected 4 lines (2 days x max/min), got %d:\n%s", len(lines), out)
	}
	if !strings.Contains(lines[0], "-3.0°C") {
		t.Errorf("expected max label on first line, got %q", lines[0])
	}
	if strings.Contains(lines[0], maxGlyph) {
		t.Errorf("expected empty bar for negative max, got %q", lines[0])
	}
	if !strings.Contains(lines[2], strings.Repeat(maxGlyph, 2)) {
		t.Errorf("expected 2-glyph bar for 2°C, got %q", lines[2])
	}
	if !strings.Contains(lines[3], "n/a") {
		t.Errorf("expected n/a label for missing min, got %q", lines[3])
	}
}
