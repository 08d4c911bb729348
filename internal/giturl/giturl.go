// Package giturl builds git remote URLs from short command line forms and
// maps remote URLs to project paths.
package giturl

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnsupported is returned for file URLs and local paths.
	ErrUnsupported = errors.New("file URLs are not supported")
	// ErrInvalid is returned for URLs that cannot be mapped to a path.
	ErrInvalid = errors.New("invalid URL")
)

type scheme string

const (
	schemeSSH   scheme = "ssh"
	schemeGit   scheme = "git"
	schemeRsync scheme = "rsync"
	schemeFile  scheme = "file"
	schemeHTTP  scheme = "http"
	schemeHTTPS scheme = "https"
)

func parseScheme(s string) (scheme, bool) {
	switch sc := scheme(s); sc {
	case schemeSSH, schemeGit, schemeRsync, schemeFile, schemeHTTP, schemeHTTPS:
		return sc, true
	}
	return "", false
}

func hasScheme(s string) bool {
	prefix, _, ok := strings.Cut(s, ":")
	if !ok {
		return false
	}
	_, known := parseScheme(prefix)
	return known
}

// FromParts builds a remote URL. A single part is used verbatim. Otherwise
// the first part is either a scheme followed by the host, a URL prefix that
// already carries a scheme, or a host reached over https. The remaining
// non-blank parts form the path, which always ends in ".git".
//
//	FromParts([]string{"github.com", "jpallari", "gorg"})
//	// https://github.com/jpallari/gorg.git
func FromParts(parts []string) (string, error) {
	switch len(parts) {
	case 0:
		return "", errors.New("not enough parameters to build a remote URL")
	case 1:
		return parts[0], nil
	}

	first := parts[0]
	if strings.HasPrefix(first, "/") || strings.HasPrefix(first, "~") {
		return "", ErrUnsupported
	}

	var b strings.Builder
	rest := parts[1:]

	sc, ok := parseScheme(first)
	switch {
	case !ok && hasScheme(first):
		b.WriteString(first)
	case !ok:
		b.WriteString("https://")
		b.WriteString(first)
	case sc == schemeFile:
		return "", ErrUnsupported
	default:
		b.WriteString(first)
		b.WriteString("://")
		host := parts[1]
		if (sc == schemeSSH || sc == schemeRsync) && !strings.Contains(host, "@") {
			b.WriteString("git@")
		}
		b.WriteString(host)
		rest = parts[2:]
	}

	b.WriteByte('/')
	b.WriteString(joinNonBlank(rest, "/"))

	url := b.String()
	if !strings.HasSuffix(url, ".git") {
		url += ".git"
	}
	return url, nil
}

func joinNonBlank(parts []string, sep string) string {
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		if strings.TrimSpace(part) != "" {
			kept = append(kept, part)
		}
	}
	return strings.Join(kept, sep)
}

// ToPath splits a remote URL into the host followed by the path segments.
// User info and ports are dropped, "~" prefixes are stripped from segments
// and ".git" from the last one.
//
//	ToPath("git@github.com:jpallari/gorg.git")
//	// [github.com jpallari gorg]
func ToPath(url string) ([]string, error) {
	url = strings.TrimSpace(url)
	if url == "" {
		return nil, fmt.Errorf("%w: empty URL cannot be converted to a path", ErrInvalid)
	}

	left, right, ok := strings.Cut(url, ":")
	if !ok {
		return nil, fmt.Errorf("%w: unsupported URL: %s", ErrInvalid, url)
	}

	var host, path string
	sc, known := parseScheme(left)
	switch {
	case known && sc == schemeFile:
		return nil, fmt.Errorf("%w: %s", ErrUnsupported, url)
	case known:
		authority, ok := strings.CutPrefix(right, "//")
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrInvalid, url)
		}
		authority, path, ok = strings.Cut(authority, "/")
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrInvalid, url)
		}
		host = leftOf(rightOf(authority, "@"), ":")
	default:
		// scp-like syntax: [user@]host:path
		host = rightOf(left, "@")
		path = right
	}

	segments := []string{host}
	parts := strings.Split(path, "/")
	for i, part := range parts {
		part = strings.TrimPrefix(strings.TrimSpace(part), "~")
		if i == len(parts)-1 {
			part = strings.TrimSuffix(part, ".git")
		}
		if part != "" {
			segments = append(segments, part)
		}
	}

	if len(segments) <= 1 {
		return nil, fmt.Errorf("%w: not enough parts in %s to convert it to a path", ErrInvalid, url)
	}
	return segments, nil
}

func leftOf(s, sep string) string {
	left, _, _ := strings.Cut(s, sep)
	return left
}

func rightOf(s, sep string) string {
	if _, right, ok := strings.Cut(s, sep); ok {
		return right
	}
	return s
}
