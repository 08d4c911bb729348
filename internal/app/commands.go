package app

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"iter"
	"os"
	"os/exec"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"sync/atomic"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"gorg/internal/discovery"
	"gorg/internal/finder"
	"gorg/internal/giturl"
	"gorg/internal/index"
	"gorg/internal/pager"
)

func fullPathFlag() cli.Flag {
	return &cli.BoolFlag{
		Name:    "full-path",
		Aliases: []string{"f"},
		Usage:   "Print full path instead of just the project name",
	}
}

func (e *env) findCommand() *cli.Command {
	return &cli.Command{
		Name:      "find",
		Usage:     "Find a project using a fuzzy matcher (interactive)",
		ArgsUsage: "[query...]",
		Flags:     []cli.Flag{fullPathFlag()},
		Action:    e.find,
	}
}

func (e *env) initCommand() *cli.Command {
	return &cli.Command{
		Name:      "init",
		Usage:     "Initialize a repository for the given remote",
		ArgsUsage: "<remote...>",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "no-clone",
				Usage: "Create an empty repository instead of cloning",
			},
		},
		Action: e.initProject,
	}
}

func (e *env) listCommand() *cli.Command {
	return &cli.Command{
		Name:      "list",
		Aliases:   []string{"ls"},
		Usage:     "List all projects that match the given fuzzy query",
		ArgsUsage: "[query...]",
		Flags: []cli.Flag{
			fullPathFlag(),
			&cli.BoolFlag{
				Name:    "prefix",
				Aliases: []string{"p"},
				Usage:   "Use a prefix query instead of a fuzzy query",
			},
			&cli.BoolFlag{
				Name:  "pager",
				Usage: "Show the list in a pager when writing to a terminal",
			},
		},
		Action: e.list,
	}
}

func (e *env) runCommand() *cli.Command {
	return &cli.Command{
		Name:      "run",
		Usage:     "Run a command in all (matching) projects",
		ArgsUsage: "[--] <command> [args...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "query",
				Aliases: []string{"q"},
				Usage:   "Fuzzy query selecting the projects; all projects when not set",
			},
			&cli.BoolFlag{
				Name:    "dry",
				Aliases: []string{"d"},
				Usage:   "Only print the projects the command would run in",
			},
			&cli.BoolFlag{
				Name:  "quiet",
				Usage: "Do not print the project name before running the command",
			},
			&cli.IntFlag{
				Name:    "jobs",
				Aliases: []string{"j"},
				Usage:   "Number of projects to run the command in at once",
				Value:   1,
			},
		},
		Action: e.run,
	}
}

func (e *env) updateIndexCommand() *cli.Command {
	return &cli.Command{
		Name:   "update-index",
		Usage:  "Scan the projects directory for Git projects and update the index file",
		Action: e.updateIndex,
	}
}

func (e *env) loadIndex() (*index.Index, error) {
	idx, err := index.Load(e.cfg.IndexFilePath)
	if err != nil {
		return nil, cli.Exit(err.Error(), 1)
	}
	return idx, nil
}

func (e *env) saveIndex(idx *index.Index) error {
	if err := os.MkdirAll(filepath.Dir(e.cfg.IndexFilePath), 0o755); err != nil {
		return fmt.Errorf("failed to create index directory: %w", err)
	}
	return idx.Save(e.cfg.IndexFilePath)
}

func (e *env) projectPath(record string) string {
	return filepath.Join(e.cfg.ProjectsPath, filepath.FromSlash(record))
}

func (e *env) writeProject(w io.Writer, record string, fullPath bool) error {
	if fullPath {
		record = e.projectPath(record)
	}
	_, err := fmt.Fprintln(w, record)
	return err
}

func (e *env) find(c *cli.Context) error {
	idx, err := e.loadIndex()
	if err != nil {
		return err
	}
	query := strings.Join(c.Args().Slice(), " ")
	log.Debugf("Find with query: %s", query)

	// The prompt draws on stderr so stdout carries only the result.
	tty, _ := e.streams.Err.(*os.File)
	choice, ok, err := finder.Run(c.Context, idx.View(), query, finder.Options{
		In:       e.streams.In,
		Out:      tty,
		MaxItems: e.cfg.MaxFindItems,
	})
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}
	return e.writeProject(e.streams.Out, choice, c.Bool("full-path"))
}

func (e *env) initProject(c *cli.Context) error {
	url, err := giturl.FromParts(c.Args().Slice())
	if err != nil {
		return err
	}
	segments, err := giturl.ToPath(url)
	if err != nil {
		return err
	}
	record := strings.Join(segments, "/")
	dir := e.projectPath(record)
	log.Debugf("Git URL = %s, Git path = %s", url, record)

	runner := e.git(e.cfg.GitCommand)
	ctx := c.Context

	_, err = os.Stat(filepath.Join(dir, ".git"))
	switch {
	case errors.Is(err, fs.ErrNotExist):
		log.Debugf("Directory %s not found", dir)
		if c.Bool("no-clone") {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return fmt.Errorf("failed to create project directory: %w", err)
			}
			if err := runner.Init(ctx, dir); err != nil {
				return err
			}
		} else {
			if err := os.MkdirAll(filepath.Dir(dir), 0o755); err != nil {
				return fmt.Errorf("failed to create project directory: %w", err)
			}
			if err := runner.Clone(ctx, url, dir); err != nil {
				return err
			}
		}
	case err != nil:
		return fmt.Errorf("failed to inspect %s: %w", dir, err)
	}

	remotes, err := runner.Remotes(ctx, dir)
	if err != nil {
		return err
	}
	remote := e.cfg.GitRemoteName
	if slices.Contains(remotes, remote) {
		log.Debugf("Git set remote %s=%s for %s", remote, url, dir)
		err = runner.SetRemoteURL(ctx, dir, remote, url)
	} else {
		log.Debugf("Git add remote %s=%s for %s", remote, url, dir)
		err = runner.AddRemote(ctx, dir, remote, url)
	}
	if err != nil {
		return err
	}

	idx, err := index.Load(e.cfg.IndexFilePath)
	if errors.Is(err, index.ErrNotFound) {
		idx = index.Empty()
	} else if err != nil {
		return err
	}
	if err := idx.Add(record); err != nil {
		return err
	}
	log.Debugf("Saving project to index %s", e.cfg.IndexFilePath)
	return e.saveIndex(idx)
}

func (e *env) list(c *cli.Context) error {
	idx, err := e.loadIndex()
	if err != nil {
		return err
	}
	query := strings.Join(c.Args().Slice(), " ")
	log.Debugf("List with query: %s", query)

	var matches iter.Seq[string]
	if c.Bool("prefix") {
		matches = idx.FindByPrefix(query)
	} else {
		matches = idx.FindMatches(query)
	}

	fullPath := c.Bool("full-path")
	if c.Bool("pager") {
		var buf bytes.Buffer
		for record := range matches {
			_ = e.writeProject(&buf, record, fullPath)
		}
		return pager.Show(&buf, e.streams.Out, "gorg list "+query)
	}

	w := bufio.NewWriter(e.streams.Out)
	for record := range matches {
		if err := e.writeProject(w, record, fullPath); err != nil {
			return fmt.Errorf("failed to write output: %w", err)
		}
	}
	return w.Flush()
}

func (e *env) run(c *cli.Context) error {
	command := c.Args().Slice()
	if len(command) == 0 {
		return cli.Exit("no command specified", 1)
	}
	idx, err := e.loadIndex()
	if err != nil {
		return err
	}
	display := strings.Join(command, " ")
	matches := idx.FindMatches(c.String("query"))

	if c.Bool("dry") {
		for record := range matches {
			fmt.Fprintf(e.streams.Err, "dry! %s: %s\n", record, display)
		}
		return nil
	}

	jobs := max(c.Int("jobs"), 1)
	quiet := c.Bool("quiet")

	var (
		g      errgroup.Group
		mu     sync.Mutex
		failed atomic.Bool
	)
	g.SetLimit(jobs)

	for record := range matches {
		g.Go(func() error {
			var out io.Writer = e.streams.Out
			var errOut io.Writer = e.streams.Err
			var buf bytes.Buffer
			if jobs > 1 {
				// Keep each project's output in one piece.
				out, errOut = &buf, &buf
			} else if !quiet {
				fmt.Fprintf(e.streams.Err, "%s: %s\n", record, display)
			}

			cmd := exec.CommandContext(c.Context, command[0], command[1:]...)
			cmd.Dir = e.projectPath(record)
			cmd.Stdout = out
			cmd.Stderr = errOut
			if jobs == 1 && e.streams.In != nil {
				cmd.Stdin = e.streams.In
			}
			runErr := cmd.Run()
			if runErr != nil {
				failed.Store(true)
			}

			if jobs > 1 {
				mu.Lock()
				if !quiet {
					fmt.Fprintf(e.streams.Err, "%s: %s\n", record, display)
				}
				_, _ = buf.WriteTo(e.streams.Out)
				mu.Unlock()
			}
			if runErr != nil {
				log.Warnf("Command failed in %s: %v", record, runErr)
			}
			return nil
		})
	}
	_ = g.Wait()

	if failed.Load() {
		return cli.Exit("", 1)
	}
	return nil
}

func (e *env) updateIndex(c *cli.Context) error {
	root := e.cfg.ProjectsPath
	if _, err := os.Stat(root); err != nil {
		return cli.Exit(fmt.Sprintf("project directory does not exist: %s", root), 1)
	}

	scanner, err := discovery.New(discovery.Options{
		MaxDepth: e.cfg.ScanMaxDepth,
		Ignore:   e.cfg.ScanIgnore,
	})
	if err != nil {
		return err
	}
	repos, err := scanner.Scan(c.Context, root)
	if err != nil {
		return err
	}

	idx := index.FromEntries(slices.Values(repos))
	if old, err := index.Load(e.cfg.IndexFilePath); err == nil && old.Checksum() == idx.Checksum() {
		log.Infof("Index unchanged with %d projects", idx.Len())
		return nil
	}
	if err := e.saveIndex(idx); err != nil {
		return err
	}
	log.Infof("Indexed %d projects", idx.Len())
	return nil
}
