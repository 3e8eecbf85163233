package buffer

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// RangeError reports a line range that does not address the buffer.
// Start and End are 0-based inclusive, as passed to Replace.
type RangeError struct {
	Start int
	End   int
	Lines int
}

// Error implements the error interface.
func (e *RangeError) Error() string {
	if e.Start > e.End {
		return fmt.Sprintf("invalid range: start line %d is after end line %d", e.Start+1, e.End+1)
	}
	return fmt.Sprintf("invalid range: lines %d-%d outside file bounds (1-%d)", e.Start+1, e.End+1, e.Lines)
}

// Buffer is an immutable ordered sequence of text lines.
type Buffer struct {
	lines           []string
	trailingNewline bool
}

// New creates an empty buffer.
func New() *Buffer {
	return &Buffer{trailingNewline: true}
}

// FromString builds a buffer from raw file content.
func FromString(content string) *Buffer {
	if content == "" {
		return &Buffer{trailingNewline: true}
	}

	trailing := strings.HasSuffix(content, "\n")
	if trailing {
		content = content[:len(content)-1]
	}

	return &Buffer{
		lines:           strings.Split(content, "\n"),
		trailingNewline: trailing,
	}
}

// FromReader builds a buffer from a reader.
func FromReader(r io.Reader) (*Buffer, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read content: %w", err)
	}
	return FromString(string(data)), nil
}

// FromFile builds a buffer from a file on disk.
func FromFile(path string) (*Buffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return FromString(string(data)), nil
}

// LineCount returns the number of lines in the buffer.
func (b *Buffer) LineCount() int {
	return len(b.lines)
}

// Line returns the line at the given 0-based index.
// The second return value is false when the index is out of bounds.
func (b *Buffer) Line(i int) (string, bool) {
	if i < 0 || i >= len(b.lines) {
		return "", false
	}
	return b.lines[i], true
}

// Lines returns a copy of all lines.
func (b *Buffer) Lines() []string {
	out := make([]string, len(b.lines))
	copy(out, b.lines)
	return out
}

// Slice returns a copy of lines in [from, to), clamped to buffer bounds.
// It never fails; out-of-range requests yield a shorter (possibly empty) slice.
func (b *Buffer) Slice(from, to int) []string {
	if from < 0 {
		from = 0
	}
	if to > len(b.lines) {
		to = len(b.lines)
	}
	if from >= to {
		return nil
	}
	out := make([]string, to-from)
	copy(out, b.lines[from:to])
	return out
}

// Replace returns a new buffer with lines [start, end] inclusive removed and
// replacement spliced in their place. Lines outside the range keep their
// relative order. The receiver is not modified.
func (b *Buffer) Replace(start, end int, replacement []string) (*Buffer, error) {
	if start < 0 || start > end || end >= len(b.lines) {
		return nil, &RangeError{Start: start, End: end, Lines: len(b.lines)}
	}

	lines := make([]string, 0, len(b.lines)-(end-start+1)+len(replacement))
	lines = append(lines, b.lines[:start]...)
	lines = append(lines, replacement...)
	lines = append(lines, b.lines[end+1:]...)

	return &Buffer{lines: lines, trailingNewline: b.trailingNewline}, nil
}

// String returns the full buffer content, preserving the presence or absence
// of the original trailing newline.
func (b *Buffer) String() string {
	if len(b.lines) == 0 {
		return ""
	}
	content := strings.Join(b.lines, "\n")
	if b.trailingNewline {
		content += "\n"
	}
	return content
}

// WriteTo writes the full buffer content to w.
func (b *Buffer) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, b.String())
	return int64(n), err
}

// Equal reports whether two buffers have byte-identical content.
func (b *Buffer) Equal(other *Buffer) bool {
	if other == nil {
		return false
	}
	return b.String() == other.String()
}
