// Package finder runs the interactive repository search: it ranks index
// records against the query on every edit and redraws the prompt until a
// record is chosen or the search is cancelled.
package finder

import (
	"context"
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	log "github.com/sirupsen/logrus"

	"gorg/internal/index"
	"gorg/internal/prompt"
)

// DefaultMaxItems is the result cap used when Options.MaxItems is not set.
const DefaultMaxItems = 50

// Prompt is the query line the finder drives.
type Prompt interface {
	HandleKey(msg tea.KeyMsg) prompt.Event
	Query() string
	Selected() int
	Render(items []string) error
}

// Options configures Run.
type Options struct {
	// In and Out must refer to a terminal for interactive searches.
	In  *os.File
	Out *os.File

	MaxItems int
}

// Model is the bubbletea model of a search session. All drawing is done by
// the prompt, so View always returns an empty string.
type Model struct {
	prompt   Prompt
	view     *index.View
	maxItems int

	matches []index.Match
	results []string

	choice string
	chosen bool
	err    error
}

// NewModel creates a model ranking view against the prompt query. The initial
// results are computed for query.
func NewModel(p Prompt, view *index.View, query string, maxItems int) *Model {
	if maxItems <= 0 {
		maxItems = DefaultMaxItems
	}
	m := &Model{
		prompt:   p,
		view:     view,
		maxItems: maxItems,
	}
	m.search(query)
	return m
}

// Results returns the records currently shown, best match first.
func (m *Model) Results() []string {
	return m.results
}

// Choice returns the confirmed record, if any.
func (m *Model) Choice() (string, bool) {
	return m.choice, m.chosen
}

// Err returns the error that ended the session, if any.
func (m *Model) Err() error {
	return m.err
}

func (m *Model) Init() tea.Cmd {
	return nil
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m, m.handleKey(msg)
	case tea.WindowSizeMsg:
		return m, m.render()
	}
	return m, nil
}

func (m *Model) View() string {
	return ""
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	ev := m.prompt.HandleKey(msg)
	log.WithField("event", ev).Trace("key handled")

	switch ev {
	case prompt.EventSelectionDone:
		// The selection may point past the results if the last edit
		// shrank them.
		if sel := m.prompt.Selected(); sel >= 0 && sel < len(m.results) {
			m.choice = m.results[sel]
			m.chosen = true
		}
		return tea.Quit
	case prompt.EventExit:
		return tea.Quit
	case prompt.EventPromptUpdated:
		m.search(m.prompt.Query())
		return m.render()
	case prompt.EventCursorUpdated, prompt.EventSelectionUpdated:
		return m.render()
	}
	return nil
}

// Render draws the current results.
func (m *Model) Render() error {
	return m.prompt.Render(m.results)
}

func (m *Model) render() tea.Cmd {
	if err := m.Render(); err != nil {
		m.err = fmt.Errorf("failed to render prompt: %w", err)
		return tea.Quit
	}
	return nil
}

func (m *Model) search(query string) {
	m.view.FindMatches(query, &m.matches)
	n := min(len(m.matches), m.maxItems)
	m.results = m.results[:0]
	for _, match := range m.matches[:n] {
		m.results = append(m.results, match.Record)
	}
}

// Run searches view interactively starting from seed and returns the chosen
// record. When seed matches exactly one record it is returned without
// touching the terminal.
func Run(ctx context.Context, view *index.View, seed string, opts Options) (string, bool, error) {
	var matches []index.Match
	view.FindMatches(seed, &matches)
	if len(matches) == 1 {
		log.WithField("record", matches[0].Record).Debug("single match for seed query")
		return matches[0].Record, true, nil
	}

	session, err := prompt.Open(opts.In, opts.Out, seed)
	if err != nil {
		return "", false, fmt.Errorf("failed to open prompt: %w", err)
	}
	defer func() {
		if err := session.Close(); err != nil {
			log.WithError(err).Warn("failed to close prompt")
		}
	}()

	m := NewModel(session, view, seed, opts.MaxItems)
	if err := m.Render(); err != nil {
		return "", false, fmt.Errorf("failed to render prompt: %w", err)
	}

	p := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithInput(opts.In),
		tea.WithOutput(opts.Out),
		tea.WithoutRenderer(),
		tea.WithoutSignalHandler(),
	)
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return "", false, ctx.Err()
		}
		return "", false, fmt.Errorf("failed to read input: %w", err)
	}
	if err := m.Err(); err != nil {
		return "", false, err
	}

	choice, ok := m.Choice()
	return choice, ok, nil
}
