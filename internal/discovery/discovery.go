// Package discovery finds git working copies below a projects directory.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/bmatcuk/doublestar/v4"
	log "github.com/sirupsen/logrus"
)

// DefaultMaxDepth is used when Options.MaxDepth is not set.
const DefaultMaxDepth = 8

// Options configures a Scanner.
type Options struct {
	// MaxDepth is the deepest directory level, relative to the scan root,
	// that is inspected.
	MaxDepth int
	// Ignore holds doublestar patterns matched against slash-separated paths
	// relative to the scan root. Matching directories are not descended into.
	Ignore []string
}

// Scanner walks a directory tree looking for repositories.
type Scanner struct {
	maxDepth int
	ignore   []string
}

// New creates a scanner. It fails if an ignore pattern is malformed.
func New(opts Options) (*Scanner, error) {
	for _, pattern := range opts.Ignore {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid ignore pattern %q", pattern)
		}
	}
	maxDepth := opts.MaxDepth
	if maxDepth <= 0 {
		maxDepth = DefaultMaxDepth
	}
	return &Scanner{maxDepth: maxDepth, ignore: opts.Ignore}, nil
}

// Scan returns the slash-separated paths, relative to root, of every
// directory that holds a .git entry. Repositories are not searched for
// nested repositories. Entries that cannot be read are logged and skipped.
func (s *Scanner) Scan(ctx context.Context, root string) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("failed to scan %s: not a directory", root)
	}

	var repos []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err := ctx.Err(); err != nil {
			return err
		}

		if err != nil {
			log.Warnf("Error walking path %s: %v", path, err)
			return nil
		}
		if !d.IsDir() || path == root {
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			log.Warnf("Skipping %s: %v", path, err)
			return filepath.SkipDir
		}
		rel = filepath.ToSlash(rel)

		if !utf8.ValidString(rel) {
			log.Warnf("Skipping directory with a name that is not valid UTF-8: %q", rel)
			return filepath.SkipDir
		}
		if s.skip(rel, d.Name()) {
			return filepath.SkipDir
		}

		if isRepository(path) {
			log.Debugf("Found repository %s", rel)
			repos = append(repos, rel)
			return filepath.SkipDir
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan %s: %w", root, err)
	}
	return repos, nil
}

func (s *Scanner) skip(rel, name string) bool {
	if strings.HasPrefix(name, ".") {
		return true
	}
	if strings.Count(rel, "/")+1 > s.maxDepth {
		return true
	}
	for _, pattern := range s.ignore {
		if ok, _ := doublestar.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

func isRepository(dir string) bool {
	_, err := os.Lstat(filepath.Join(dir, ".git"))
	return err == nil
}
