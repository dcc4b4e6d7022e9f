package testutil

import (
	"path/filepath"
	"testing"

	"github.com/adrg/xdg"
)

// TestEnvironment is an isolated set of XDG directories.
type TestEnvironment struct {
	Root       string
	ConfigHome string
	StateHome  string

	t *testing.T
}

// NewTestEnvironment points XDG_CONFIG_HOME and XDG_STATE_HOME at a temp
// dir and disables colors. Everything is restored when the test ends.
func NewTestEnvironment(t *testing.T) *TestEnvironment {
	t.Helper()
	root := t.TempDir()
	env := &TestEnvironment{
		Root:       root,
		ConfigHome: filepath.Join(root, "config"),
		StateHome:  filepath.Join(root, "state"),
		t:          t,
	}
	t.Setenv("XDG_CONFIG_HOME", env.ConfigHome)
	t.Setenv("XDG_STATE_HOME", env.StateHome)
	t.Setenv("NO_COLOR", "1")
	xdg.Reload()
	t.Cleanup(xdg.Reload)
	return env
}

// Path returns a path under the environment root.
func (e *TestEnvironment) Path(rel string) string {
	return filepath.Join(e.Root, rel)
}

// WriteFile creates a file under the environment root.
func (e *TestEnvironment) WriteFile(rel, content string) string {
	e.t.Helper()
	return CreateFile(e.t, e.Root, rel, content)
}

// WriteUserConfig writes the user config file with the given name, e.g.
// "config.toml".
func (e *TestEnvironment) WriteUserConfig(name, content string) string {
	e.t.Helper()
	return CreateFile(e.t, filepath.Join(e.ConfigHome, "spanruler"), name, content)
}
