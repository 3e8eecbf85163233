package cli

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	t.Run("help text", func(t *testing.T) {
		cmd := GetRootCmd()
		cmd.SetArgs([]string{"--help"})

		output := &bytes.Buffer{}
		cmd.SetOut(output)

		err := cmd.Execute()
		require.NoError(t, err)

		// Reset the help flag so later tests reusing the shared root
		// command don't print help instead of running.
		t.Cleanup(func() { _ = cmd.Flags().Set("help", "false") })

		helpText := output.String()
		assert.Contains(t, helpText, "windowed file-editing session")
		assert.Contains(t, helpText, "change <start>:<end>")
	})

	t.Run("serve command exists", func(t *testing.T) {
		found := false
		for _, c := range GetRootCmd().Commands() {
			if c.Name() == "serve" {
				found = true
				break
			}
		}
		assert.True(t, found, "serve command should exist")
	})
}

func TestOneShotCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file.txt")
	require.NoError(t, os.WriteFile(path, []byte("a\nb\nc\nd\n"), 0644))

	cmd := GetRootCmd()
	cmd.SetArgs([]string{
		"--config", filepath.Join(dir, "no-config.json"),
		"--file", path,
		"change", "2:3", "swapped",
	})

	output := &bytes.Buffer{}
	cmd.SetOut(output)
	cmd.SetIn(strings.NewReader(""))

	err := cmd.Execute()
	require.NoError(t, err)

	assert.Contains(t, output.String(), "File updated.")

	onDisk, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a\nswapped\nd\n", string(onDisk))
}

func TestOneShotFailureExitCode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file.txt")
	require.NoError(t, os.WriteFile(path, []byte("a\n"), 0644))

	cmd := GetRootCmd()
	cmd.SetArgs([]string{
		"--config", filepath.Join(dir, "no-config.json"),
		"--file", path,
		"change", "5:9", "x",
	})

	output := &bytes.Buffer{}
	cmd.SetOut(output)
	cmd.SetIn(strings.NewReader(""))

	err := cmd.Execute()
	require.ErrorIs(t, err, ErrCommandFailed)
	assert.Equal(t, 1, exitCode(err))
	assert.Contains(t, output.String(), "outside file bounds")
}

func TestExitCode(t *testing.T) {
	assert.Equal(t, 0, exitCode(nil))
	assert.Equal(t, 1, exitCode(ErrCommandFailed))
	assert.Equal(t, 1, exitCode(os.ErrNotExist))
}
