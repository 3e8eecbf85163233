package adapter

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// DefaultSentinels terminate a streamed replacement payload.
var DefaultSentinels = []string{"end_of_change", "end_of_edit"}

// parseRange translates the caller's 1-based inclusive "<start>:<end>" token
// into the 0-based form the session expects. Malformed tokens fail before
// any session interaction.
func parseRange(token string) (start, end int, err error) {
	first, second, ok := strings.Cut(token, ":")
	if !ok {
		return 0, 0, fmt.Errorf("range must be <start>:<end>, got %q", token)
	}

	s, err := strconv.Atoi(first)
	if err != nil {
		return 0, 0, fmt.Errorf("range start %q is not a number", first)
	}
	e, err := strconv.Atoi(second)
	if err != nil {
		return 0, 0, fmt.Errorf("range end %q is not a number", second)
	}
	if s < 1 || e < 1 {
		return 0, 0, fmt.Errorf("line numbers are 1-based, got %s", token)
	}

	return s - 1, e - 1, nil
}

// readPayload collects replacement lines from in until a sentinel line or
// end of stream. The sentinel itself is not part of the payload.
func readPayload(in *bufio.Reader, sentinels []string) ([]string, error) {
	var lines []string
	for {
		line, err := in.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("failed to read replacement text: %w", err)
		}

		done := errors.Is(err, io.EOF) && line == ""
		if !done {
			trimmed := strings.TrimRight(line, "\r\n")
			if isSentinel(trimmed, sentinels) {
				done = true
			} else {
				lines = append(lines, trimmed)
				done = errors.Is(err, io.EOF)
			}
		}

		if done {
			return lines, nil
		}
	}
}

func isSentinel(line string, sentinels []string) bool {
	for _, s := range sentinels {
		if line == s {
			return true
		}
	}
	return false
}

// splitInline turns an inline replacement argument into payload lines. A
// single trailing newline is stripped so quoting "x\n" means one line.
func splitInline(text string) []string {
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}
