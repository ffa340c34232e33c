package cli

import (
	"bytes"
	"context"
	stderrors "errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/huh"
	"github.com/r3dlabs/termkit/internal/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptLauncher replaces the menu with a fixed sequence of choices.
func scriptLauncher(t *testing.T, choices []int, dirs ...string) {
	t.Helper()
	oldTool, oldDir := chooseTool, chooseDir
	t.Cleanup(func() { chooseTool, chooseDir = oldTool, oldDir })

	chooseTool = func() (int, error) {
		if len(choices) == 0 {
			return launcherQuit, huh.ErrUserAborted
		}
		c := choices[0]
		choices = choices[1:]
		return c, nil
	}
	chooseDir = func() (string, error) {
		if len(dirs) == 0 {
			return "", huh.ErrUserAborted
		}
		d := dirs[0]
		dirs = dirs[1:]
		return d, nil
	}
}

func launcherIndex(t *testing.T, label string) int {
	t.Helper()
	for i, item := range launcherItems {
		if item.Label == label {
			return i
		}
	}
	t.Fatalf("no launcher item %q", label)
	return -1
}

func runTestLauncher(t *testing.T) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&errOut)
	rootCmd.SetContext(context.Background())
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		for _, item := range launcherItems {
			if cmd, _, err := rootCmd.Find(item.Args); err == nil {
				cmd.SetOut(nil)
				cmd.SetErr(nil)
			}
		}
	})
	err := runLauncher(rootCmd)
	return out.String(), errOut.String(), err
}

func TestLauncher_RunsChosenToolThenQuits(t *testing.T) {
	useFakeMachine(t)
	scriptLauncher(t, []int{launcherIndex(t, "System info"), launcherQuit})

	stdout, _, err := runTestLauncher(t)
	require.NoError(t, err)
	assert.Contains(t, stdout, "devbox")
}

func TestLauncher_AbortQuits(t *testing.T) {
	useFakeMachine(t)
	scriptLauncher(t, nil)

	stdout, _, err := runTestLauncher(t)
	require.NoError(t, err)
	assert.Empty(t, stdout)
}

func TestLauncher_MenuFailure(t *testing.T) {
	useFakeMachine(t)
	old := chooseTool
	defer func() { chooseTool = old }()
	chooseTool = func() (int, error) { return launcherQuit, stderrors.New("no tty") }

	_, _, err := runTestLauncher(t)
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrRender))
}

func TestLauncher_FilesAsksForDirectory(t *testing.T) {
	useFakeMachine(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("hi"), 0644))

	files := launcherIndex(t, "Files")
	scriptLauncher(t, []int{files, files}, dir)

	stdout, _, err := runTestLauncher(t)
	require.NoError(t, err)
	assert.Contains(t, stdout, "notes.txt")
}

func TestLauncher_ToolErrorReturnsToMenu(t *testing.T) {
	m := useFakeMachine(t)
	m.CPUErr = stderrors.New("no cpu stats")
	scriptLauncher(t, []int{launcherIndex(t, "System info"), launcherIndex(t, "Session history")})

	_, stderr, err := runTestLauncher(t)
	require.NoError(t, err)
	assert.Contains(t, stderr, "Can't read system info")
}
