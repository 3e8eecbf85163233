package window

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arnvidr/lined/pkg/buffer"
)

func TestCompute(t *testing.T) {
	tests := []struct {
		name    string
		total   int
		cursor  int
		size    int
		overlap int
		mode    Mode
		want    Span
	}{
		{"whole buffer when small", 3, 0, 100, 2, ModeTop, Span{0, 3}},
		{"whole buffer exact fit", 4, 2, 4, 1, ModeTop, Span{0, 4}},
		{"top keeps overlap above cursor", 100, 50, 10, 2, ModeTop, Span{48, 58}},
		{"top clamps at start", 100, 1, 10, 2, ModeTop, Span{0, 10}},
		{"top clamps at end", 100, 99, 10, 2, ModeTop, Span{90, 100}},
		{"center centers cursor", 100, 50, 10, 2, ModeCenter, Span{45, 55}},
		{"center clamps at start", 100, 2, 10, 2, ModeCenter, Span{0, 10}},
		{"center clamps at end", 100, 98, 10, 2, ModeCenter, Span{90, 100}},
		{"empty buffer", 0, 0, 10, 2, ModeTop, Span{0, 0}},
		{"zero size", 10, 0, 0, 0, ModeTop, Span{0, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Compute(tt.total, tt.cursor, tt.size, tt.overlap, tt.mode)
			assert.Equal(t, tt.want, got)

			// Window always lies within buffer bounds.
			assert.GreaterOrEqual(t, got.Start, 0)
			assert.LessOrEqual(t, got.End, tt.total)
		})
	}
}

func TestSpanContains(t *testing.T) {
	s := Span{Start: 2, End: 5}
	assert.True(t, s.Contains(2))
	assert.True(t, s.Contains(4))
	assert.False(t, s.Contains(5))
	assert.False(t, s.Contains(1))
}

func TestRender(t *testing.T) {
	buf := buffer.FromString("a\nb\nc\nd\n")

	t.Run("numbered with markers and status", func(t *testing.T) {
		got := Render(buf, Span{Start: 1, End: 3}, Options{
			LineNumbers: true,
			StatusLine:  true,
			Markers:     true,
		})

		want := "(1 more lines above)\n" +
			"2:b\n" +
			"3:c\n" +
			"(1 more lines below)\n" +
			"[lines 2-3 of 4 total]\n"
		assert.Equal(t, want, got)
	})

	t.Run("plain lines", func(t *testing.T) {
		got := Render(buf, Span{Start: 0, End: 2}, Options{})
		assert.Equal(t, "a\nb\n", got)
	})

	t.Run("no markers when window covers buffer", func(t *testing.T) {
		got := Render(buf, Span{Start: 0, End: 4}, Options{Markers: true, StatusLine: true})
		assert.NotContains(t, got, "more lines")
		assert.Contains(t, got, "[lines 1-4 of 4 total]")
	})

	t.Run("span clamped to buffer", func(t *testing.T) {
		got := Render(buf, Span{Start: -2, End: 99}, Options{LineNumbers: true})
		assert.Contains(t, got, "1:a")
		assert.Contains(t, got, "4:d")
	})

	t.Run("empty buffer status", func(t *testing.T) {
		got := Render(buffer.FromString(""), Span{}, Options{StatusLine: true})
		assert.Equal(t, "[empty file: 0 lines total]\n", got)
	})
}
