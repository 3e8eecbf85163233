package session

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/arnvidr/lined/pkg/buffer"
	"github.com/arnvidr/lined/pkg/lint"
	"github.com/arnvidr/lined/pkg/window"
)

// Default window geometry, used when Config leaves the fields zero.
const (
	DefaultWindowSize = 100
	DefaultOverlap    = 2
)

// Config holds session construction options.
type Config struct {
	WindowSize int
	Overlap    int
	// Gate is the optional validation gate. Nil means every range-valid
	// edit commits unconditionally.
	Gate lint.Gate
	// WatchFile enables flagging of external modifications to the open file.
	WatchFile bool
}

// Session is a windowed editing session over at most one open file.
type Session struct {
	id         string
	windowSize int
	overlap    int
	gate       lint.Gate
	watchFile  bool
	logger     zerolog.Logger

	// Open-file state, all nil/zero while closed.
	path     string
	fileMode fs.FileMode
	buf      *buffer.Buffer
	cursor   int
	undo     []undoRecord
	watcher  *fileWatcher

	lastSelfWrite atomic.Int64
	externalEdit  atomic.Bool
}

// undoRecord is a snapshot of the pre-edit buffer. Buffers are immutable, so
// holding the old pointer restores content byte-identically.
type undoRecord struct {
	buf    *buffer.Buffer
	cursor int
}

// New creates a closed session.
func New(cfg Config) *Session {
	if cfg.WindowSize <= 0 {
		cfg.WindowSize = DefaultWindowSize
	}
	if cfg.Overlap < 0 || cfg.Overlap >= cfg.WindowSize {
		cfg.Overlap = DefaultOverlap
	}

	id := uuid.New().String()
	return &Session{
		id:         id,
		windowSize: cfg.WindowSize,
		overlap:    cfg.Overlap,
		gate:       cfg.Gate,
		watchFile:  cfg.WatchFile,
		logger:     log.With().Str("session_id", id).Logger(),
	}
}

// ID returns the session identifier.
func (s *Session) ID() string {
	return s.id
}

// IsOpen reports whether a file is currently open.
func (s *Session) IsOpen() bool {
	return s.buf != nil
}

// Path returns the path of the open file, or "" while closed.
func (s *Session) Path() string {
	return s.path
}

// Buffer returns the live buffer, or nil while closed.
func (s *Session) Buffer() *buffer.Buffer {
	return s.buf
}

// Open reads path into a fresh session state, implicitly closing any prior
// file. The cursor starts at the top. Returns the rendered window.
func (s *Session) Open(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("failed to open %s: %w", path, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("failed to open %s: is a directory", path)
	}

	buf, err := buffer.FromFile(path)
	if err != nil {
		return "", err
	}

	s.Close()

	s.path = path
	s.fileMode = info.Mode().Perm()
	s.buf = buf
	s.cursor = 0
	s.undo = nil
	s.externalEdit.Store(false)

	if s.watchFile {
		watcher, err := newFileWatcher(path, s.onExternalChange)
		if err != nil {
			// Watching is best-effort; the session works without it.
			s.logger.Warn().Err(err).Str("path", path).Msg("File watcher unavailable")
		} else {
			s.watcher = watcher
		}
	}

	s.logger.Info().
		Str("path", path).
		Int("lines", buf.LineCount()).
		Msg("File opened")

	return s.header() + s.renderAt(s.cursor, window.ModeTop), nil
}

// ApplyEdit replaces lines [start, end] inclusive (0-based) with replacement,
// gated by the validation gate when one is configured. On success the edit is
// committed to the buffer and the file on disk, an undo record is pushed, and
// the window repositions to the start of the edit.
func (s *Session) ApplyEdit(ctx context.Context, start, end int, replacement []string) (string, error) {
	if !s.IsOpen() {
		return "", ErrNotOpen
	}

	proposed, err := s.buf.Replace(start, end, replacement)
	if err != nil {
		return "", err
	}

	if s.gate != nil {
		pre, err := s.gate.Check(ctx, s.path, s.buf)
		if err != nil {
			return "", fmt.Errorf("pre-edit check failed: %w", err)
		}
		post, err := s.gate.Check(ctx, s.path, proposed)
		if err != nil {
			return "", fmt.Errorf("post-edit check failed: %w", err)
		}

		if fresh := lint.NewSince(pre, post); len(fresh) > 0 {
			s.logger.Info().
				Int("new_diagnostics", len(fresh)).
				Int("start", start).
				Int("end", end).
				Msg("Edit rejected by validation gate")
			return "", &RejectedError{
				Diagnostics: fresh,
				Proposed:    renderWindow(proposed, start, s.windowSize, s.overlap),
				Current:     renderWindow(s.buf, start, s.windowSize, s.overlap),
			}
		}
	}

	if err := s.writeFile(proposed); err != nil {
		return "", err
	}

	s.undo = append(s.undo, undoRecord{buf: s.buf, cursor: s.cursor})
	s.buf = proposed
	s.cursor = start

	s.logger.Info().
		Int("start", start).
		Int("end", end).
		Int("replacement_lines", len(replacement)).
		Int("lines", s.buf.LineCount()).
		Msg("Edit applied")

	return s.renderAt(s.cursor, window.ModeTop), nil
}

// Undo restores the buffer to its state before the most recent committed
// edit. Undo is itself not undoable.
func (s *Session) Undo() (string, error) {
	if !s.IsOpen() {
		return "", ErrNotOpen
	}
	if len(s.undo) == 0 {
		return "", ErrNothingToUndo
	}

	rec := s.undo[len(s.undo)-1]
	if err := s.writeFile(rec.buf); err != nil {
		return "", err
	}

	s.undo = s.undo[:len(s.undo)-1]
	s.buf = rec.buf
	s.cursor = rec.cursor

	s.logger.Info().
		Int("lines", s.buf.LineCount()).
		Int("undo_depth", len(s.undo)).
		Msg("Edit undone")

	return s.renderAt(s.cursor, window.ModeTop), nil
}

// Goto repositions the window on a 0-based line without touching content.
func (s *Session) Goto(line int, mode window.Mode) (string, error) {
	if !s.IsOpen() {
		return "", ErrNotOpen
	}
	if line < 0 || line >= s.buf.LineCount() {
		return "", &buffer.RangeError{Start: line, End: line, Lines: s.buf.LineCount()}
	}

	s.cursor = line
	return s.renderAt(s.cursor, mode), nil
}

// ScrollDown advances the window by its size minus the overlap.
func (s *Session) ScrollDown() (string, error) {
	return s.scroll(s.windowSize - s.overlap)
}

// ScrollUp moves the window back by its size minus the overlap.
func (s *Session) ScrollUp() (string, error) {
	return s.scroll(-(s.windowSize - s.overlap))
}

func (s *Session) scroll(delta int) (string, error) {
	if !s.IsOpen() {
		return "", ErrNotOpen
	}

	cursor := s.cursor + delta
	if max := s.buf.LineCount() - 1; cursor > max {
		cursor = max
	}
	if cursor < 0 {
		cursor = 0
	}

	s.cursor = cursor
	return s.renderAt(s.cursor, window.ModeTop), nil
}

// Window renders the current window without repositioning.
func (s *Session) Window() (string, error) {
	if !s.IsOpen() {
		return "", ErrNotOpen
	}
	return s.renderAt(s.cursor, window.ModeTop), nil
}

// ExternallyModified reports whether the open file changed on disk outside
// this session since it was opened. Re-opening the file clears the flag.
func (s *Session) ExternallyModified() bool {
	return s.externalEdit.Load()
}

// Close discards all session state and releases the file watcher. Subsequent
// operations fail with ErrNotOpen until a new Open.
func (s *Session) Close() {
	if s.watcher != nil {
		s.watcher.Stop()
		s.watcher = nil
	}
	if s.buf != nil {
		s.logger.Info().Str("path", s.path).Msg("File closed")
	}

	s.path = ""
	s.fileMode = 0
	s.buf = nil
	s.cursor = 0
	s.undo = nil
	s.externalEdit.Store(false)
}

// selfWriteWindow is how long after our own write file events are attributed
// to the session rather than an external editor.
const selfWriteWindow = 500 * time.Millisecond

func (s *Session) onExternalChange() {
	last := time.Unix(0, s.lastSelfWrite.Load())
	if time.Since(last) < selfWriteWindow {
		return
	}

	if s.externalEdit.CompareAndSwap(false, true) {
		s.logger.Warn().Str("path", s.path).Msg("File modified outside session")
	}
}

func (s *Session) writeFile(buf *buffer.Buffer) error {
	mode := s.fileMode
	if mode == 0 {
		mode = 0644
	}

	s.lastSelfWrite.Store(time.Now().UnixNano())
	if err := os.WriteFile(s.path, []byte(buf.String()), mode); err != nil {
		return fmt.Errorf("failed to write %s: %w", s.path, err)
	}
	return nil
}

func (s *Session) header() string {
	return fmt.Sprintf("[File: %s (%d lines total)]\n", s.path, s.buf.LineCount())
}

func (s *Session) renderAt(cursor int, mode window.Mode) string {
	span := window.Compute(s.buf.LineCount(), cursor, s.windowSize, s.overlap, mode)
	return window.Render(s.buf, span, window.Options{
		LineNumbers: true,
		StatusLine:  true,
		Markers:     true,
	})
}

// renderWindow renders an arbitrary buffer, used for the pre/post views of a
// rejected edit before anything is committed.
func renderWindow(buf *buffer.Buffer, cursor, size, overlap int) string {
	span := window.Compute(buf.LineCount(), cursor, size, overlap, window.ModeTop)
	return window.Render(buf, span, window.Options{
		LineNumbers: true,
		StatusLine:  true,
		Markers:     true,
	})
}
