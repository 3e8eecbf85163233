package lint

import (
	"context"

	"github.com/arnvidr/lined/pkg/buffer"
)

// Gate checks buffer content and reports diagnostics. A nil Gate on the
// session means every range-valid edit commits unconditionally.
//
// name is the path of the open file; gates that shell out use it to pick a
// temp-file extension and to normalize paths in their output. Check must not
// modify the file behind name.
type Gate interface {
	Check(ctx context.Context, name string, buf *buffer.Buffer) ([]Diagnostic, error)
}

// GateFunc adapts a function to the Gate interface.
type GateFunc func(ctx context.Context, name string, buf *buffer.Buffer) ([]Diagnostic, error)

// Check implements Gate.
func (f GateFunc) Check(ctx context.Context, name string, buf *buffer.Buffer) ([]Diagnostic, error) {
	return f(ctx, name, buf)
}
