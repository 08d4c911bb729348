package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	log "github.com/sirupsen/logrus"
)

// Runner performs the git operations needed to register a repository
type Runner interface {
	Init(ctx context.Context, dir string) error
	Clone(ctx context.Context, url, dir string) error
	Remotes(ctx context.Context, dir string) ([]string, error)
	AddRemote(ctx context.Context, dir, name, url string) error
	SetRemoteURL(ctx context.Context, dir, name, url string) error
}

// Option configures a Runner
type Option func(*runner)

// WithOutput sets where the output of git commands goes. Both default to the
// process' own stdout and stderr.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(r *runner) {
		r.stdout = stdout
		r.stderr = stderr
	}
}

// runner is the concrete implementation
type runner struct {
	command string
	stdout  io.Writer
	stderr  io.Writer
}

// New creates a runner invoking the given git executable
func New(command string, opts ...Option) Runner {
	if command == "" {
		command = "git"
	}
	r := &runner{
		command: command,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Init creates an empty repository in dir, which must exist
func (r *runner) Init(ctx context.Context, dir string) error {
	if err := r.run(ctx, dir, "init"); err != nil {
		return fmt.Errorf("failed to init git in %s: %w", dir, err)
	}
	return nil
}

// Clone clones url into dir
func (r *runner) Clone(ctx context.Context, url, dir string) error {
	if err := r.run(ctx, "", "clone", "--", url, dir); err != nil {
		return fmt.Errorf("failed to clone %s to %s: %w", url, dir, err)
	}
	return nil
}

// Remotes lists the remote names configured in dir
func (r *runner) Remotes(ctx context.Context, dir string) ([]string, error) {
	cmd := exec.CommandContext(ctx, r.command, "remote")
	cmd.Dir = dir

	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("failed to list remotes in %s: %w: %s", dir, describe(err), strings.TrimSpace(stderr.String()))
	}

	var remotes []string
	for _, line := range strings.Split(string(output), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			remotes = append(remotes, line)
		}
	}
	return remotes, nil
}

// AddRemote adds a remote called name pointing at url
func (r *runner) AddRemote(ctx context.Context, dir, name, url string) error {
	if err := r.run(ctx, dir, "remote", "add", name, url); err != nil {
		return fmt.Errorf("failed to add remote URL %s for %s: %w", url, dir, err)
	}
	return nil
}

// SetRemoteURL points the existing remote called name at url
func (r *runner) SetRemoteURL(ctx context.Context, dir, name, url string) error {
	if err := r.run(ctx, dir, "remote", "set-url", name, url); err != nil {
		return fmt.Errorf("failed to set remote URL %s for %s: %w", url, dir, err)
	}
	return nil
}

// run executes git with its output attached to the configured writers
func (r *runner) run(ctx context.Context, dir string, args ...string) error {
	log.Debugf("Running %s %s in %q", r.command, strings.Join(args, " "), dir)

	cmd := exec.CommandContext(ctx, r.command, args...)
	cmd.Dir = dir
	cmd.Stdout = r.stdout
	cmd.Stderr = r.stderr

	if err := cmd.Run(); err != nil {
		return describe(err)
	}
	return nil
}

// describe turns a failed exit into an error carrying the exit code
func describe(err error) error {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return fmt.Errorf("exit code = %d", exitErr.ExitCode())
	}
	return err
}
