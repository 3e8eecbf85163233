package lint

import (
	"fmt"
	"strings"
)

// Diagnostic is a single issue reported by a checker.
type Diagnostic struct {
	Path    string `json:"path,omitempty"`
	Line    int    `json:"line"`
	Column  int    `json:"column,omitempty"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message"`
}

// Key returns the stable identity used to compare diagnostics across runs.
func (d Diagnostic) Key() string {
	return fmt.Sprintf("%s:%d", d.Code, d.Line)
}

// String formats the diagnostic for caller-facing output.
func (d Diagnostic) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "line %d", d.Line)
	if d.Column > 0 {
		fmt.Fprintf(&sb, ", col %d", d.Column)
	}
	if d.Code != "" {
		fmt.Fprintf(&sb, " [%s]", d.Code)
	}
	sb.WriteString(": ")
	sb.WriteString(d.Message)
	return sb.String()
}

// NewSince returns the diagnostics present in post but absent from pre,
// compared by Key. Order follows post.
func NewSince(pre, post []Diagnostic) []Diagnostic {
	if len(post) == 0 {
		return nil
	}

	seen := make(map[string]struct{}, len(pre))
	for _, d := range pre {
		seen[d.Key()] = struct{}{}
	}

	var fresh []Diagnostic
	for _, d := range post {
		if _, ok := seen[d.Key()]; !ok {
			fresh = append(fresh, d)
		}
	}
	return fresh
}

// FormatDiagnostics renders a diagnostic list one per line.
func FormatDiagnostics(diags []Diagnostic) string {
	var sb strings.Builder
	for _, d := range diags {
		sb.WriteString("- ")
		sb.WriteString(d.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}
