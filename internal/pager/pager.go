// Package pager shows long listings in the ov pager.
package pager

import (
	"fmt"
	"io"
	"os"

	"github.com/noborus/ov/oviewer"
	"golang.org/x/term"
)

// Page shows the content of r in an interactive pager that takes over the
// terminal until the user quits.
func Page(r io.Reader, title string) error {
	root, err := oviewer.NewRoot(r)
	if err != nil {
		return fmt.Errorf("failed to open pager: %w", err)
	}
	root.Doc.Caption = title

	// Leave the screen as it was once the pager exits
	config := oviewer.NewConfig()
	config.IsWriteOnExit = false
	config.IsWriteOriginal = false
	root.SetConfig(config)

	if err := root.Run(); err != nil {
		return fmt.Errorf("failed to run pager: %w", err)
	}
	return nil
}

// Show pages r when out is a terminal and copies r to out otherwise.
func Show(r io.Reader, out io.Writer, title string) error {
	if IsTerminal(out) {
		return Page(r, title)
	}
	if _, err := io.Copy(out, r); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// IsTerminal reports whether w is a file attached to a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
