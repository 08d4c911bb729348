package prompt

import (
	"slices"
	"unicode"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// MaxQueryLen is the maximum number of characters in a query. Input past the
// limit is dropped.
const MaxQueryLen = 1000

// Event tells the caller what changed after a key press.
type Event int

const (
	// EventNone means nothing visible changed.
	EventNone Event = iota
	// EventExit means the user cancelled the prompt.
	EventExit
	// EventPromptUpdated means the query text changed.
	EventPromptUpdated
	// EventCursorUpdated means only the cursor moved.
	EventCursorUpdated
	// EventSelectionUpdated means a different row is selected.
	EventSelectionUpdated
	// EventSelectionDone means the user confirmed the selected row.
	EventSelectionDone
)

func (e Event) String() string {
	switch e {
	case EventNone:
		return "none"
	case EventExit:
		return "exit"
	case EventPromptUpdated:
		return "prompt_updated"
	case EventCursorUpdated:
		return "cursor_updated"
	case EventSelectionUpdated:
		return "selection_updated"
	case EventSelectionDone:
		return "selection_done"
	default:
		return "unknown"
	}
}

// State is the editable query line and the list selection.
type State struct {
	text     []rune
	cursor   int
	selected int
	rows     int
}

// NewState returns a state holding seed with the cursor at its end.
func NewState(seed string) State {
	text := []rune(seed)
	if len(text) > MaxQueryLen {
		text = text[:MaxQueryLen]
	}
	return State{text: text, cursor: len(text)}
}

// Query returns the query text.
func (s State) Query() string {
	return string(s.text)
}

// Len returns the query length in characters.
func (s State) Len() int {
	return len(s.text)
}

// Cursor returns the cursor position in characters.
func (s State) Cursor() int {
	return s.cursor
}

// Selected returns the index of the selected row.
func (s State) Selected() int {
	return s.selected
}

// Rows returns the number of rows shown by the last render.
func (s State) Rows() int {
	return s.rows
}

// WithRows records how many rows are on screen, which bounds the selection.
func (s State) WithRows(rows int) State {
	s.rows = rows
	return s
}

// Update applies one key press. The receiver is never modified.
func (s State) Update(msg tea.KeyMsg, keys KeyMap) (State, Event) {
	switch {
	case key.Matches(msg, keys.Confirm):
		return s, EventSelectionDone
	case key.Matches(msg, keys.Cancel):
		return s, EventExit
	case key.Matches(msg, keys.DeleteChar):
		if s.cursor == 0 {
			return s, EventNone
		}
		return s.deleteRange(s.cursor-1, s.cursor)
	case key.Matches(msg, keys.DeleteWord):
		edge := prevWordEdge(s.text, s.cursor)
		if edge == s.cursor {
			return s, EventNone
		}
		return s.deleteRange(edge, s.cursor)
	case key.Matches(msg, keys.Up):
		if s.selected == 0 {
			return s, EventNone
		}
		s.selected--
		return s, EventSelectionUpdated
	case key.Matches(msg, keys.Down):
		if s.selected+1 >= s.rows {
			return s, EventNone
		}
		s.selected++
		return s, EventSelectionUpdated
	case key.Matches(msg, keys.Left):
		return s.moveTo(s.cursor - 1)
	case key.Matches(msg, keys.Right):
		return s.moveTo(s.cursor + 1)
	case key.Matches(msg, keys.WordLeft):
		return s.moveTo(prevWordEdge(s.text, s.cursor))
	case key.Matches(msg, keys.WordRight):
		return s.moveTo(nextWordEdge(s.text, s.cursor))
	case key.Matches(msg, keys.Home):
		return s.moveTo(0)
	case key.Matches(msg, keys.End):
		return s.moveTo(len(s.text))
	}

	if msg.Alt {
		return s, EventNone
	}
	switch msg.Type {
	case tea.KeyRunes:
		return s.insert(msg.Runes)
	case tea.KeySpace:
		return s.insert([]rune{' '})
	}
	return s, EventNone
}

func (s State) insert(runes []rune) (State, Event) {
	printable := make([]rune, 0, len(runes))
	for _, r := range runes {
		if !unicode.IsControl(r) {
			printable = append(printable, r)
		}
	}
	room := MaxQueryLen - len(s.text)
	if room <= 0 || len(printable) == 0 {
		return s, EventNone
	}
	if len(printable) > room {
		printable = printable[:room]
	}

	s.text = slices.Insert(slices.Clone(s.text), s.cursor, printable...)
	s.cursor += len(printable)
	s.selected = 0
	return s, EventPromptUpdated
}

func (s State) deleteRange(from, to int) (State, Event) {
	s.text = slices.Delete(slices.Clone(s.text), from, to)
	s.cursor = from
	s.selected = 0
	return s, EventPromptUpdated
}

// moveTo places the cursor at pos, clamped to the text. Staying in place is
// not reported.
func (s State) moveTo(pos int) (State, Event) {
	pos = max(0, min(pos, len(s.text)))
	if pos == s.cursor {
		return s, EventNone
	}
	s.cursor = pos
	return s, EventCursorUpdated
}
