// Package window computes and renders the visible slice of an open buffer.
package window

import (
	"fmt"
	"strings"

	"github.com/arnvidr/lined/pkg/buffer"
)

// Mode controls where the cursor lands inside the computed window.
type Mode int

const (
	// ModeTop places the cursor at the top of the window, keeping Overlap
	// lines of context above it. Used right after an edit so the changed
	// region is immediately visible.
	ModeTop Mode = iota
	// ModeCenter centers the window on the cursor. Used for goto.
	ModeCenter
)

// Span is a half-open [Start, End) line range visible to the caller.
type Span struct {
	Start int
	End   int
}

// Contains reports whether the 0-based line index falls inside the span.
func (s Span) Contains(line int) bool {
	return line >= s.Start && line < s.End
}

// Compute returns the visible span for a buffer of total lines, clamped to
// [0, total). When total <= size the span covers the whole buffer.
func Compute(total, cursor, size, overlap int, mode Mode) Span {
	if total <= 0 || size <= 0 {
		return Span{}
	}
	if total <= size {
		return Span{Start: 0, End: total}
	}

	var start int
	switch mode {
	case ModeCenter:
		start = cursor - size/2
	default:
		start = cursor - overlap
	}

	if start > total-size {
		start = total - size
	}
	if start < 0 {
		start = 0
	}

	return Span{Start: start, End: start + size}
}

// Options controls window rendering.
type Options struct {
	LineNumbers bool
	StatusLine  bool
	Markers     bool
}

// Render formats the span of the buffer as text. Line numbers are 1-based.
// Markers announce how many lines exist above and below the window, and the
// status line reports the window bounds against the total line count.
func Render(buf *buffer.Buffer, span Span, opts Options) string {
	var sb strings.Builder

	total := buf.LineCount()
	if span.Start < 0 {
		span.Start = 0
	}
	if span.End > total {
		span.End = total
	}

	if opts.Markers && span.Start > 0 {
		fmt.Fprintf(&sb, "(%d more lines above)\n", span.Start)
	}

	for i, line := range buf.Slice(span.Start, span.End) {
		if opts.LineNumbers {
			fmt.Fprintf(&sb, "%d:%s\n", span.Start+i+1, line)
		} else {
			sb.WriteString(line)
			sb.WriteByte('\n')
		}
	}

	if opts.Markers && span.End < total {
		fmt.Fprintf(&sb, "(%d more lines below)\n", total-span.End)
	}

	if opts.StatusLine {
		if total == 0 {
			sb.WriteString("[empty file: 0 lines total]\n")
		} else {
			fmt.Fprintf(&sb, "[lines %d-%d of %d total]\n", span.Start+1, span.End, total)
		}
	}

	return sb.String()
}
