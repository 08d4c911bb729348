// Package app wires the command line interface to the index, the finder and
// the git helpers.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"

	"gorg/internal/config"
	"gorg/internal/git"
)

// Version is reported by --version.
var Version = "dev"

// Streams are the standard streams commands read from and write to.
type Streams struct {
	In  *os.File
	Out io.Writer
	Err io.Writer
}

// StdStreams returns the process' standard streams.
func StdStreams() Streams {
	return Streams{In: os.Stdin, Out: os.Stdout, Err: os.Stderr}
}

// env holds what the commands share once the global flags are parsed.
type env struct {
	streams Streams
	cfg     *config.Config
	configs config.ConfigService
	git     func(command string) git.Runner
}

// New builds the command line application.
func New(streams Streams) *cli.App {
	e := &env{
		streams: streams,
		configs: config.NewConfigService(),
		git: func(command string) git.Runner {
			return git.New(command, git.WithOutput(streams.Err, streams.Err))
		},
	}
	return e.app()
}

func (e *env) app() *cli.App {
	return &cli.App{
		Name:                   "gorg",
		Usage:                  "Find and organise local Git repositories",
		Version:                Version,
		UseShortOptionHandling: true,
		Reader:                 e.streams.In,
		Writer:                 e.streams.Out,
		ErrWriter:              e.streams.Err,
		// Exit codes are decided by Run, never inside the library.
		ExitErrHandler: func(*cli.Context, error) {},
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:      "config",
				Aliases:   []string{"c"},
				Usage:     "Path to the gorg configuration file",
				TakesFile: true,
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (trace, debug, info, warn, error)",
				Value:   "warn",
				EnvVars: []string{"GORG_LOG"},
			},
		},
		Before: e.setup,
		Commands: []*cli.Command{
			e.findCommand(),
			e.initCommand(),
			e.listCommand(),
			e.runCommand(),
			e.updateIndexCommand(),
		},
	}
}

func (e *env) setup(c *cli.Context) error {
	level, err := log.ParseLevel(c.String("log-level"))
	if err != nil {
		return cli.Exit(fmt.Sprintf("invalid log level: %v", err), 2)
	}
	log.SetOutput(e.streams.Err)
	log.SetLevel(level)
	log.SetFormatter(&log.TextFormatter{DisableTimestamp: true})

	var cfg *config.Config
	if path := c.String("config"); path != "" {
		cfg, err = e.configs.LoadFromPath(path)
	} else {
		cfg, err = e.configs.Load()
	}
	if err != nil {
		return err
	}
	log.Debugf("Projects in %s, index at %s", cfg.ProjectsPath, cfg.IndexFilePath)
	e.cfg = cfg
	return nil
}

// Run executes the application with args and returns the process exit code.
func Run(ctx context.Context, args []string, streams Streams) int {
	err := New(streams).RunContext(ctx, args)
	if err == nil {
		return 0
	}

	code := 1
	var exitErr cli.ExitCoder
	if errors.As(err, &exitErr) {
		code = exitErr.ExitCode()
	}
	if msg := err.Error(); msg != "" {
		fmt.Fprintf(streams.Err, "Error: %s\n", msg)
	}
	return code
}
