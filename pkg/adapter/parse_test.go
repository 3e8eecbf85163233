package adapter

import (
	"bufio"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRange(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		start, end, err := parseRange("2:3")
		require.NoError(t, err)
		assert.Equal(t, 1, start)
		assert.Equal(t, 2, end)

		start, end, err = parseRange("1:1")
		require.NoError(t, err)
		assert.Equal(t, 0, start)
		assert.Equal(t, 0, end)
	})

	t.Run("malformed", func(t *testing.T) {
		for _, token := range []string{"", "2", "a:b", "2:", ":3", "2:3:4", "1.5:2"} {
			_, _, err := parseRange(token)
			assert.Error(t, err, "token %q", token)
		}
	})

	t.Run("not one-based", func(t *testing.T) {
		for _, token := range []string{"0:3", "1:0", "-1:2"} {
			_, _, err := parseRange(token)
			require.Error(t, err, "token %q", token)
			assert.Contains(t, err.Error(), "1-based")
		}
	})
}

func TestReadPayload(t *testing.T) {
	read := func(input string) []string {
		t.Helper()
		lines, err := readPayload(bufio.NewReader(strings.NewReader(input)), DefaultSentinels)
		require.NoError(t, err)
		return lines
	}

	t.Run("sentinel terminates", func(t *testing.T) {
		assert.Equal(t, []string{"x", "y"}, read("x\ny\nend_of_change\nleftover\n"))
	})

	t.Run("alternate sentinel", func(t *testing.T) {
		assert.Equal(t, []string{"x"}, read("x\nend_of_edit\n"))
	})

	t.Run("end of stream terminates without sentinel", func(t *testing.T) {
		assert.Equal(t, []string{"x", "y"}, read("x\ny"))
		assert.Equal(t, []string{"x", "y"}, read("x\ny\n"))
	})

	t.Run("empty payload", func(t *testing.T) {
		assert.Empty(t, read("end_of_change\n"))
		assert.Empty(t, read(""))
	})

	t.Run("blank lines are part of the payload", func(t *testing.T) {
		assert.Equal(t, []string{"x", "", "y"}, read("x\n\ny\nend_of_change\n"))
	})

	t.Run("crlf input", func(t *testing.T) {
		assert.Equal(t, []string{"x", "y"}, read("x\r\ny\r\nend_of_change\r\n"))
	})

	t.Run("leftover input stays unread", func(t *testing.T) {
		in := bufio.NewReader(strings.NewReader("x\nend_of_change\nnext command\n"))
		lines, err := readPayload(in, DefaultSentinels)
		require.NoError(t, err)
		assert.Equal(t, []string{"x"}, lines)

		rest, err := in.ReadString('\n')
		require.NoError(t, err)
		assert.Equal(t, "next command\n", rest)
	})
}

func TestSplitInline(t *testing.T) {
	assert.Equal(t, []string{"one line"}, splitInline("one line"))
	assert.Equal(t, []string{"one line"}, splitInline("one line\n"))
	assert.Equal(t, []string{"a", "b"}, splitInline("a\nb"))
	assert.Equal(t, []string{"a", ""}, splitInline("a\n\n"))
	assert.Equal(t, []string{""}, splitInline(""))
}
