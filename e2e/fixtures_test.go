//go:build e2e && unix

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// CreateTestWorkspace creates a temporary home directory holding the config
// file and an empty projects directory
func (tf *TUITestFramework) CreateTestWorkspace() (string, error) {
	tf.workspace = tf.t.TempDir()
	if err := os.MkdirAll(tf.ProjectsPath(), 0o755); err != nil {
		return "", err
	}
	cfg := fmt.Sprintf("projects_path = %q\n", tf.ProjectsPath())
	if err := os.WriteFile(tf.ConfigPath(), []byte(cfg), 0o644); err != nil {
		return "", err
	}
	return tf.workspace, nil
}

// ConfigPath is the config file the application is started with
func (tf *TUITestFramework) ConfigPath() string {
	return filepath.Join(tf.workspace, "config.toml")
}

// ProjectsPath is the projects directory of the workspace
func (tf *TUITestFramework) ProjectsPath() string {
	return filepath.Join(tf.workspace, "Projects")
}

// IndexPath is where the index file lives by default
func (tf *TUITestFramework) IndexPath() string {
	return filepath.Join(tf.ProjectsPath(), ".gorg-db")
}

// CreateProjects creates a directory with an empty .git directory for each
// slash-separated record
func (tf *TUITestFramework) CreateProjects(records ...string) error {
	for _, record := range records {
		dir := filepath.Join(tf.ProjectsPath(), filepath.FromSlash(record), ".git")
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	return nil
}

// WriteIndex writes records to the index file verbatim, one per line
func (tf *TUITestFramework) WriteIndex(records ...string) error {
	content := strings.Join(records, "\n") + "\n"
	return os.WriteFile(tf.IndexPath(), []byte(content), 0o644)
}
