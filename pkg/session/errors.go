package session

import (
	"errors"
	"fmt"

	"github.com/arnvidr/lined/pkg/lint"
)

// Errors returned by session operations.
var (
	// ErrNotOpen is returned when an operation requires an open file.
	ErrNotOpen = errors.New("no file is currently open")
	// ErrNothingToUndo is returned when the undo stack is empty.
	ErrNothingToUndo = errors.New("nothing to undo")
)

// RejectedError reports an edit vetoed by the validation gate. The edit was
// computed but never committed; Current is the window as it stands and
// Proposed is how it would have looked applied.
type RejectedError struct {
	Diagnostics []lint.Diagnostic
	Proposed    string
	Current     string
}

// Error implements the error interface.
func (e *RejectedError) Error() string {
	return fmt.Sprintf("edit rejected: %d new diagnostic(s) introduced", len(e.Diagnostics))
}
