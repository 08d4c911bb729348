//go:build e2e && unix

package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWorkspace(t *testing.T) *TUITestFramework {
	t.Helper()
	tf := NewTUITest(t)
	t.Cleanup(tf.Cleanup)
	_, err := tf.CreateTestWorkspace()
	require.NoError(t, err)
	return tf
}

func runToExit(t *testing.T, tf *TUITestFramework, args ...string) int {
	t.Helper()
	require.NoError(t, tf.StartApp(args...))
	code, exited := tf.WaitExit(10 * time.Second)
	require.True(t, exited, "gorg %s did not exit; output:\n%s", strings.Join(args, " "), tf.SnapshotPlain())
	return code
}

func TestUpdateIndexThenList(t *testing.T) {
	tf := newWorkspace(t)
	require.NoError(t, tf.CreateProjects(
		"github.com/acme/alpha",
		"github.com/acme/tools/cli",
		"sr.ht/bob/zed",
	))
	// Not a project
	require.NoError(t, os.MkdirAll(filepath.Join(tf.ProjectsPath(), "scratch"), 0o755))

	assert.Equal(t, 0, runToExit(t, tf, "update-index"))
	data, err := os.ReadFile(tf.IndexPath())
	require.NoError(t, err)
	assert.Equal(t,
		"github.com/acme/alpha\ngithub.com/acme/tools/cli\nsr.ht/bob/zed\n",
		string(data))

	list := newWorkspaceSharing(t, tf)
	assert.Equal(t, 0, runToExit(t, list, "list", "acme"))
	out := list.SnapshotPlain()
	assert.Contains(t, out, "github.com/acme/alpha")
	assert.Contains(t, out, "github.com/acme/tools/cli")
	assert.NotContains(t, out, "sr.ht/bob/zed")
}

// newWorkspaceSharing returns a fresh driver over an existing workspace
func newWorkspaceSharing(t *testing.T, tf *TUITestFramework) *TUITestFramework {
	t.Helper()
	next := NewTUITest(t)
	next.workspace = tf.workspace
	t.Cleanup(next.Cleanup)
	return next
}

func TestListPrefix(t *testing.T) {
	tf := newWorkspace(t)
	require.NoError(t, tf.WriteIndex("github.com/acme/alpha", "gitlab.com/zed/beta"))

	assert.Equal(t, 0, runToExit(t, tf, "ls", "-p", "gitlab"))
	out := tf.SnapshotPlain()
	assert.Contains(t, out, "gitlab.com/zed/beta")
	assert.NotContains(t, out, "github.com/acme/alpha")
}

func TestListWithoutIndex(t *testing.T) {
	tf := newWorkspace(t)

	assert.Equal(t, 1, runToExit(t, tf, "list"))
	assert.Contains(t, tf.SnapshotPlain(), "Error:")
}

func TestRunInProjects(t *testing.T) {
	tf := newWorkspace(t)
	require.NoError(t, tf.CreateProjects("github.com/acme/alpha", "sr.ht/bob/zed"))
	require.NoError(t, tf.WriteIndex("github.com/acme/alpha", "sr.ht/bob/zed"))

	assert.Equal(t, 0, runToExit(t, tf, "run", "-q", "acme", "pwd"))
	out := tf.SnapshotPlain()
	assert.Contains(t, out, filepath.Join(tf.ProjectsPath(), "github.com", "acme", "alpha"))
	assert.NotContains(t, out, filepath.Join(tf.ProjectsPath(), "sr.ht"))
}
