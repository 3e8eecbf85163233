package adapter

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/arnvidr/lined/pkg/buffer"
	"github.com/arnvidr/lined/pkg/session"
	"github.com/arnvidr/lined/pkg/window"
)

// Config holds adapter options.
type Config struct {
	// Sentinels terminate a streamed replacement payload. Defaults to
	// DefaultSentinels when empty.
	Sentinels []string
}

// Adapter executes the line-oriented command protocol against one session.
type Adapter struct {
	sess      *session.Session
	in        *bufio.Reader
	sentinels []string
	logger    zerolog.Logger
}

// New creates an adapter over sess. Streamed replacement payloads are read
// from in.
func New(sess *session.Session, in io.Reader, cfg Config) *Adapter {
	sentinels := cfg.Sentinels
	if len(sentinels) == 0 {
		sentinels = DefaultSentinels
	}

	return &Adapter{
		sess:      sess,
		in:        bufio.NewReader(in),
		sentinels: sentinels,
		logger:    log.With().Str("session_id", sess.ID()).Logger(),
	}
}

// Run reads command lines from the adapter's input until end of stream or an
// "exit" command, writing each response to out. It returns the exit code of
// the last executed command.
func (a *Adapter) Run(ctx context.Context, out io.Writer) int {
	code := ExitOK
	for {
		line, err := a.in.ReadString('\n')
		trimmed := strings.TrimRight(line, "\r\n")

		atEOF := errors.Is(err, io.EOF)
		if trimmed == "exit" || trimmed == "quit" {
			return code
		}

		if trimmed != "" {
			resp := a.Execute(ctx, trimmed)
			fmt.Fprint(out, resp.Text)
			code = resp.Code
		}

		if err != nil {
			if !atEOF {
				a.logger.Error().Err(err).Msg("Failed to read command stream")
				return ExitFailure
			}
			return code
		}
	}
}

// Execute runs a single command line, reading any streamed payload from the
// adapter's input.
func (a *Adapter) Execute(ctx context.Context, line string) Response {
	return a.execute(ctx, line, a.in)
}

// ExecuteDetached runs a single command line with a self-contained payload,
// for transports that deliver command and payload together.
func (a *Adapter) ExecuteDetached(ctx context.Context, line, payload string) Response {
	return a.execute(ctx, line, bufio.NewReader(strings.NewReader(payload)))
}

func (a *Adapter) execute(ctx context.Context, line string, payload *bufio.Reader) Response {
	reqID, err := gonanoid.New()
	if err != nil {
		reqID = "unknown"
	}
	logger := a.logger.With().Str("request_id", reqID).Logger()

	name, rest, _ := strings.Cut(strings.TrimSpace(line), " ")
	rest = strings.TrimSpace(rest)

	logger.Debug().Str("command", name).Msg("Command received")

	var resp Response
	switch name {
	case "open":
		resp = a.open(rest)
	case "change", "edit":
		resp = a.change(ctx, rest, payload)
	case "goto":
		resp = a.gotoLine(rest)
	case "scroll_down":
		resp = a.scroll(rest, a.sess.ScrollDown)
	case "scroll_up":
		resp = a.scroll(rest, a.sess.ScrollUp)
	case "undo":
		resp = a.undo()
	case "close":
		a.sess.Close()
		resp = ok("File closed.")
	case "":
		resp = usage("open|change|goto|scroll_up|scroll_down|undo|close")
	default:
		resp = failf("unknown command %q\nusage: open|change|goto|scroll_up|scroll_down|undo|close", name)
	}

	if resp.Code == ExitOK && a.sess.ExternallyModified() {
		resp.Text = ensureNewline(resp.Text) + externalWarning + "\n"
	}

	logger.Debug().Int("exit_code", resp.Code).Msg("Command finished")
	return resp
}

func (a *Adapter) open(rest string) Response {
	path, lineArg, _ := strings.Cut(rest, " ")
	if path == "" {
		return usage("open <path> [line]")
	}

	text, err := a.sess.Open(path)
	if err != nil {
		return fail(err.Error())
	}

	if lineArg = strings.TrimSpace(lineArg); lineArg != "" {
		n, convErr := strconv.Atoi(lineArg)
		if convErr != nil || n < 1 {
			return usage("open <path> [line]")
		}
		if text, err = a.sess.Goto(n-1, window.ModeCenter); err != nil {
			return fail(err.Error())
		}
	}

	return ok(text)
}

func (a *Adapter) change(ctx context.Context, rest string, payload *bufio.Reader) Response {
	rangeToken, inline, _ := strings.Cut(rest, " ")
	if rangeToken == "" {
		return usage("change <start>:<end> [text]  (or stream lines ending with " + a.sentinels[0] + ")")
	}

	start, end, err := parseRange(rangeToken)
	if err != nil {
		return fail(err.Error() + "\nusage: change <start>:<end> [text]")
	}

	var replacement []string
	if inline != "" {
		replacement = splitInline(inline)
	} else {
		if replacement, err = readPayload(payload, a.sentinels); err != nil {
			return fail(err.Error())
		}
	}

	text, err := a.sess.ApplyEdit(ctx, start, end, replacement)
	if err != nil {
		var rej *session.RejectedError
		var rng *buffer.RangeError
		switch {
		case errors.As(err, &rej):
			return fail(editRejected(rej))
		case errors.As(err, &rng):
			return fail(err.Error())
		case errors.Is(err, session.ErrNotOpen):
			return fail(err.Error() + "; use: open <path>")
		default:
			return fail(err.Error())
		}
	}

	return ok(editApplied(text))
}

func (a *Adapter) gotoLine(rest string) Response {
	if rest == "" {
		return usage("goto <line>")
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n < 1 {
		return usage("goto <line>")
	}

	text, err := a.sess.Goto(n-1, window.ModeCenter)
	if err != nil {
		if errors.Is(err, session.ErrNotOpen) {
			return fail(err.Error() + "; use: open <path>")
		}
		return fail(err.Error())
	}
	return ok(text)
}

func (a *Adapter) scroll(rest string, move func() (string, error)) Response {
	if rest != "" {
		return usage("scroll_up|scroll_down take no arguments")
	}

	text, err := move()
	if err != nil {
		if errors.Is(err, session.ErrNotOpen) {
			return fail(err.Error() + "; use: open <path>")
		}
		return fail(err.Error())
	}
	return ok(text)
}

func (a *Adapter) undo() Response {
	text, err := a.sess.Undo()
	if err != nil {
		if errors.Is(err, session.ErrNotOpen) {
			return fail(err.Error() + "; use: open <path>")
		}
		return fail(err.Error())
	}
	return ok("Last edit undone.\n" + text)
}
