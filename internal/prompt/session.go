// Package prompt implements the interactive query line: a raw-mode terminal
// session that draws the query and a ranked list below it and turns key
// presses into editing and selection events.
package prompt

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

const (
	marker         = ">>> "
	rowPrefix      = "    "
	selectedPrefix = "  * "

	defaultWidth  = 80
	defaultHeight = 24
	minWidth      = 10
)

// Session owns the prompt state and the terminal it is drawn on.
type Session struct {
	state  State
	keys   KeyMap
	styles Styles
	size   func() (width, height int)

	buf *bufio.Writer
	out *termenv.Output

	// lines is the number of terminal lines the last frame occupies.
	lines int

	release func() error
}

// Option configures a Session.
type Option func(*Session)

// WithSize sets the function used to query the terminal size on every render.
func WithSize(size func() (width, height int)) Option {
	return func(s *Session) {
		s.size = size
	}
}

// WithStyles overrides the default styles.
func WithStyles(styles Styles) Option {
	return func(s *Session) {
		s.styles = styles
	}
}

// WithKeyMap overrides the default key bindings.
func WithKeyMap(keys KeyMap) Option {
	return func(s *Session) {
		s.keys = keys
	}
}

// New creates a session drawing on w without changing any terminal mode.
func New(w io.Writer, seed string, opts ...Option) *Session {
	buf := bufio.NewWriter(w)
	s := &Session{
		state:  NewState(seed),
		keys:   DefaultKeyMap(),
		styles: NewStyles(lipgloss.NewRenderer(w)),
		size:   func() (int, int) { return defaultWidth, defaultHeight },
		buf:    buf,
		out:    termenv.NewOutput(buf, termenv.WithProfile(termenv.Ascii)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Open puts the terminal behind in into raw mode and creates a session
// drawing on out. The terminal is restored by Close.
func Open(in, out *os.File, seed string, opts ...Option) (*Session, error) {
	if in == nil || out == nil {
		return nil, errors.New("prompt needs a terminal for input and output")
	}
	fd := int(in.Fd())
	previous, err := term.MakeRaw(fd)
	if err != nil {
		return nil, fmt.Errorf("failed to enter raw mode: %w", err)
	}

	opts = append([]Option{WithSize(terminalSize(out))}, opts...)
	s := New(out, seed, opts...)
	s.release = func() error {
		return term.Restore(fd, previous)
	}
	return s, nil
}

// Close erases the prompt and restores the terminal mode. It is safe to call
// more than once.
func (s *Session) Close() error {
	s.erase()
	err := s.buf.Flush()
	if s.release != nil {
		if rerr := s.release(); rerr != nil {
			err = errors.Join(err, fmt.Errorf("failed to restore terminal: %w", rerr))
		}
		s.release = nil
	}
	return err
}

// HandleKey applies a key press to the prompt state.
func (s *Session) HandleKey(msg tea.KeyMsg) Event {
	var ev Event
	s.state, ev = s.state.Update(msg, s.keys)
	return ev
}

// State returns the current prompt state.
func (s *Session) State() State {
	return s.state
}

// Query returns the current query text.
func (s *Session) Query() string {
	return s.state.Query()
}

// Selected returns the index of the selected row.
func (s *Session) Selected() int {
	return s.state.Selected()
}

// Render redraws the prompt line and as many of items as fit the terminal,
// then parks the cursor inside the query.
func (s *Session) Render(items []string) error {
	width, height := s.size()

	s.erase()

	s.buf.WriteString(s.styles.Marker.Render(marker))
	s.buf.WriteString(s.state.Query())
	s.finishLine()

	limit := max(height-2, 0)
	cells := max(width, minWidth) - len(rowPrefix)
	rows := 0
	for i, item := range items {
		if rows >= limit {
			break
		}
		item = runewidth.Truncate(item, cells, "")
		if i == s.state.selected {
			s.buf.WriteString(s.styles.Selected.Render(selectedPrefix + item))
		} else {
			s.buf.WriteString(s.styles.Row.Render(rowPrefix + item))
		}
		s.finishLine()
		rows++
	}
	s.state = s.state.WithRows(rows)

	s.placeCursor()
	return s.buf.Flush()
}

func (s *Session) finishLine() {
	s.buf.WriteString("\r\n")
	s.lines++
}

// erase clears every line of the previous frame and returns to its first
// line.
func (s *Session) erase() {
	s.buf.WriteString("\r")
	s.out.ClearLine()
	for range s.lines {
		s.buf.WriteString("\r")
		s.out.ClearLine()
		s.out.CursorDown(1)
	}
	if s.lines > 0 {
		s.out.CursorUp(s.lines)
	}
	s.lines = 0
}

// placeCursor moves from below the frame to the cursor column of the query
// line. Columns are counted in bytes of the encoded query.
func (s *Session) placeCursor() {
	if s.lines > 0 {
		s.out.CursorUp(s.lines)
	}
	column := len(marker) + len(string(s.state.text[:s.state.cursor]))
	if column > 0 {
		s.out.CursorForward(column)
	}
}

func terminalSize(f *os.File) func() (int, int) {
	return func() (int, int) {
		width, height, err := term.GetSize(int(f.Fd()))
		if err != nil || width <= 0 || height <= 0 {
			return defaultWidth, defaultHeight
		}
		return width, height
	}
}
