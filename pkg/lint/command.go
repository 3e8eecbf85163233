package lint

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/xeipuuv/gojsonschema"

	"github.com/arnvidr/lined/pkg/buffer"
)

// Format selects how CommandGate parses checker output.
type Format string

const (
	// FormatText expects "file:line[:col][: CODE] message" lines.
	FormatText Format = "text"
	// FormatJSON expects a JSON array of diagnostic objects.
	FormatJSON Format = "json"
)

// FilePlaceholder in the argv is replaced with the temp file path. When the
// argv contains no placeholder the path is appended as the last argument.
const FilePlaceholder = "{file}"

// DefaultTimeout bounds a single checker run.
const DefaultTimeout = 30 * time.Second

// textLine matches one text-format diagnostic, e.g.
// "example.py:3:1: E999 SyntaxError: invalid syntax".
var textLine = regexp.MustCompile(`^([^:\n]+):(\d+):(?:(\d+):)?\s*(.*)$`)

// textCode splits a leading rule code off the message tail.
var textCode = regexp.MustCompile(`^([A-Z][A-Z0-9]{0,15}\d)\s+(.*)$`)

// diagnosticsSchema validates JSON checker output before decoding.
var diagnosticsSchema = map[string]interface{}{
	"type": "array",
	"items": map[string]interface{}{
		"type":     "object",
		"required": []interface{}{"line", "message"},
		"properties": map[string]interface{}{
			"path":    map[string]interface{}{"type": "string"},
			"line":    map[string]interface{}{"type": "integer", "minimum": 1},
			"column":  map[string]interface{}{"type": "integer", "minimum": 0},
			"code":    map[string]interface{}{"type": "string"},
			"message": map[string]interface{}{"type": "string"},
		},
	},
}

// CommandGate runs an external checker command against a temp copy of the
// buffer and parses its output into diagnostics.
type CommandGate struct {
	argv    []string
	format  Format
	timeout time.Duration
	schema  *gojsonschema.Schema
}

// NewCommandGate creates a gate that shells out to argv.
func NewCommandGate(argv []string, format Format, timeout time.Duration) (*CommandGate, error) {
	if len(argv) == 0 {
		return nil, errors.New("checker command is required")
	}
	if format == "" {
		format = FormatText
	}
	if format != FormatText && format != FormatJSON {
		return nil, fmt.Errorf("unknown checker output format: %s", format)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	g := &CommandGate{
		argv:    append([]string(nil), argv...),
		format:  format,
		timeout: timeout,
	}

	if format == FormatJSON {
		schema, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(diagnosticsSchema))
		if err != nil {
			return nil, fmt.Errorf("failed to compile diagnostics schema: %w", err)
		}
		g.schema = schema
	}

	return g, nil
}

// Check implements Gate. A non-zero exit from the checker is a normal
// "diagnostics found" outcome, not an error; only a command that cannot run
// or produces undecodable output fails.
func (g *CommandGate) Check(ctx context.Context, name string, buf *buffer.Buffer) ([]Diagnostic, error) {
	tmp, err := os.CreateTemp("", "lined-check-*"+filepath.Ext(name))
	if err != nil {
		return nil, fmt.Errorf("failed to create check file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := buf.WriteTo(tmp); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("failed to write check file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("failed to close check file: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	argv := g.expandArgv(tmpPath)
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()
	if runErr != nil {
		var exitErr *exec.ExitError
		if !errors.As(runErr, &exitErr) {
			return nil, fmt.Errorf("checker failed to run: %w", runErr)
		}
		if ctx.Err() != nil {
			return nil, fmt.Errorf("checker timed out after %s", g.timeout)
		}
		// Non-zero exit: the checker found something. Fall through to parse.
	}

	log.Debug().
		Str("checker", argv[0]).
		Int("stdout_bytes", stdout.Len()).
		Int("stderr_bytes", stderr.Len()).
		Msg("Checker run complete")

	diags, err := g.parse(stdout.String())
	if err != nil {
		return nil, err
	}

	// Checker output points at the temp copy; report against the open file.
	for i := range diags {
		if diags[i].Path == tmpPath || diags[i].Path == filepath.Base(tmpPath) {
			diags[i].Path = name
		}
	}

	return diags, nil
}

func (g *CommandGate) expandArgv(path string) []string {
	argv := make([]string, 0, len(g.argv)+1)
	replaced := false
	for _, arg := range g.argv {
		if strings.Contains(arg, FilePlaceholder) {
			arg = strings.ReplaceAll(arg, FilePlaceholder, path)
			replaced = true
		}
		argv = append(argv, arg)
	}
	if !replaced {
		argv = append(argv, path)
	}
	return argv
}

func (g *CommandGate) parse(output string) ([]Diagnostic, error) {
	if g.format == FormatJSON {
		return g.parseJSON(output)
	}
	return parseText(output), nil
}

func (g *CommandGate) parseJSON(output string) ([]Diagnostic, error) {
	output = strings.TrimSpace(output)
	if output == "" {
		return nil, nil
	}

	result, err := g.schema.Validate(gojsonschema.NewStringLoader(output))
	if err != nil {
		return nil, fmt.Errorf("checker output is not valid JSON: %w", err)
	}
	if !result.Valid() {
		details := make([]string, 0, len(result.Errors()))
		for _, desc := range result.Errors() {
			details = append(details, desc.String())
		}
		return nil, fmt.Errorf("checker output failed schema validation: %s", strings.Join(details, "; "))
	}

	var diags []Diagnostic
	if err := json.Unmarshal([]byte(output), &diags); err != nil {
		return nil, fmt.Errorf("failed to decode checker output: %w", err)
	}
	return diags, nil
}

func parseText(output string) []Diagnostic {
	var diags []Diagnostic
	for _, line := range strings.Split(output, "\n") {
		m := textLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}

		lineNo, err := strconv.Atoi(m[2])
		if err != nil || lineNo < 1 {
			continue
		}

		d := Diagnostic{Path: m[1], Line: lineNo}
		if m[3] != "" {
			d.Column, _ = strconv.Atoi(m[3])
		}

		rest := strings.TrimSpace(m[4])
		if cm := textCode.FindStringSubmatch(rest); cm != nil {
			d.Code = cm[1]
			d.Message = cm[2]
		} else {
			d.Message = rest
		}
		if d.Message == "" {
			continue
		}

		diags = append(diags, d)
	}
	return diags
}
