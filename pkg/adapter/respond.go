package adapter

import (
	"fmt"
	"strings"

	"github.com/arnvidr/lined/pkg/lint"
	"github.com/arnvidr/lined/pkg/session"
)

// Exit codes surfaced per command.
const (
	ExitOK      = 0
	ExitFailure = 1
)

// Response is the textual outcome of one command.
type Response struct {
	Text string
	Code int
}

// successMessage is the fixed confirmation emitted after a committed edit.
const successMessage = "File updated. Please review the changes and make sure they are correct (correct indentation, no duplicate lines, etc). Edit the file again if necessary."

// rejectedMessage is the fixed header for a gate-vetoed edit. It explicitly
// forbids resubmitting the identical command to break retry loops.
const rejectedMessage = "Your proposed edit introduced new problems and has NOT been applied. Read the diagnostics carefully, then submit a corrected edit. Do NOT resubmit the identical edit command."

const divider = "-------------------------------------------------"

func ok(text string) Response {
	return Response{Text: ensureNewline(text), Code: ExitOK}
}

func fail(text string) Response {
	return Response{Text: ensureNewline(text), Code: ExitFailure}
}

func failf(format string, args ...interface{}) Response {
	return fail(fmt.Sprintf(format, args...))
}

func usage(text string) Response {
	return fail("usage: " + text)
}

func editApplied(window string) string {
	return successMessage + "\n" + window
}

func editRejected(rej *session.RejectedError) string {
	var sb strings.Builder
	sb.WriteString(rejectedMessage)
	sb.WriteString("\n\nDIAGNOSTICS:\n")
	sb.WriteString(lint.FormatDiagnostics(rej.Diagnostics))
	sb.WriteString("\nThis is how your edit would have looked if applied:\n")
	sb.WriteString(divider + "\n")
	sb.WriteString(rej.Proposed)
	sb.WriteString(divider + "\n")
	sb.WriteString("\nThis is the file as it currently stands (edit not applied):\n")
	sb.WriteString(divider + "\n")
	sb.WriteString(rej.Current)
	sb.WriteString(divider + "\n")
	return sb.String()
}

// externalWarning is appended when the open file changed on disk outside
// the session.
const externalWarning = "Warning: the open file has been modified outside this session; re-open it to pick up the external changes."

func ensureNewline(text string) string {
	if text == "" || strings.HasSuffix(text, "\n") {
		return text
	}
	return text + "\n"
}
