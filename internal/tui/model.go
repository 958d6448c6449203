// Package tui implements the interactive misinformation review queue.
// It lists every record the classifier flagged and lets a reviewer
// confirm or dismiss each flag, writing the decision back to the store.
package tui

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mkamanzi/farepulse/internal/model"
	"github.com/mkamanzi/farepulse/internal/service"
)

// storeTimeout bounds every store call issued from the UI loop.
const storeTimeout = 10 * time.Second

// State represents the current state of the review queue UI.
type State int

const (
	StateLoading State = iota
	StateList
	StateDetail
)

// Model holds the review queue state.
type Model struct {
	store       service.Store
	items       []flagItem
	status      string
	err         error
	keymap      KeyMap
	theme       Theme
	help        help.Model
	width       int
	height      int
	cursor      int
	resolved    int
	state       State
	busy        bool
	statusIsErr bool
	quitting    bool
}

// New creates a review queue model backed by the given store.
func New(store service.Store) Model {
	return Model{
		store:  store,
		keymap: DefaultKeyMap(),
		theme:  DefaultTheme,
		help:   help.New(),
		state:  StateLoading,
	}
}

// Init loads the open flags.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tea.EnterAltScreen, m.loadFlags())
}

// Update handles messages and updates the model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		return m, nil

	case flagsLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			m.quitting = true
			return m, tea.Quit
		}
		m.items = msg.items
		m.state = StateList
		return m, nil

	case resolvedMsg:
		return m.handleResolved(msg), nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.ForceQuit), key.Matches(msg, m.keymap.Quit):
		m.quitting = true
		return m, tea.Quit
	case key.Matches(msg, m.keymap.ToggleHelp):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	switch m.state {
	case StateList:
		return m.updateList(msg)
	case StateDetail:
		return m.updateDetail(msg)
	default:
		return m, nil
	}
}

func (m Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keymap.Down):
		if m.cursor < len(m.items)-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keymap.Open):
		if len(m.items) > 0 {
			m.state = StateDetail
		}
	case key.Matches(msg, m.keymap.Confirm):
		return m.startResolve(model.ReviewConfirmed)
	case key.Matches(msg, m.keymap.Dismiss):
		return m.startResolve(model.ReviewDismissed)
	}
	return m, nil
}

func (m Model) updateDetail(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keymap.Back):
		m.state = StateList
	case key.Matches(msg, m.keymap.Confirm):
		return m.startResolve(model.ReviewConfirmed)
	case key.Matches(msg, m.keymap.Dismiss):
		return m.startResolve(model.ReviewDismissed)
	}
	return m, nil
}

// startResolve dispatches a review decision for the record under the
// cursor. One decision in flight at a time; extra keypresses are
// dropped until the store answers.
func (m Model) startResolve(status model.ReviewStatus) (tea.Model, tea.Cmd) {
	if m.busy || len(m.items) == 0 {
		return m, nil
	}
	item := m.items[m.cursor]
	m.busy = true
	return m, m.resolve(item.review.RecordID, status)
}

func (m Model) handleResolved(msg resolvedMsg) Model {
	m.busy = false
	if msg.err != nil {
		m.status = fmt.Sprintf("failed to resolve %s: %v", msg.recordID, msg.err)
		m.statusIsErr = true
		return m
	}

	m.removeItem(msg.recordID)
	m.resolved++
	verb := "Dismissed flag on"
	if msg.status == model.ReviewConfirmed {
		verb = "Confirmed misinformation in"
	}
	m.status = fmt.Sprintf("%s %s", verb, msg.recordID)
	m.statusIsErr = false

	if m.state == StateDetail {
		m.state = StateList
	}
	return m
}

func (m *Model) removeItem(recordID string) {
	for i, item := range m.items {
		if item.review.RecordID == recordID {
			m.items = append(m.items[:i], m.items[i+1:]...)
			break
		}
	}
	if m.cursor >= len(m.items) && m.cursor > 0 {
		m.cursor = len(m.items) - 1
	}
}

// loadFlags fetches the open reviews and joins them with their record
// content. A record reclassified as clean since it was flagged still
// has a pending review, so the flagged-only query can miss it; those
// fall back to the raw record with an empty verdict.
func (m Model) loadFlags() tea.Cmd {
	store := m.store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()

		reviews, err := store.GetOpenFlagReviews(ctx)
		if err != nil {
			return flagsLoadedMsg{err: fmt.Errorf("failed to load review queue: %w", err)}
		}

		flagged, err := store.GetClassifiedRecords(ctx, service.RecordFilter{FlaggedOnly: true})
		if err != nil {
			return flagsLoadedMsg{err: fmt.Errorf("failed to load flagged records: %w", err)}
		}

		byID := make(map[string]model.ClassifiedRecord, len(flagged))
		for _, rec := range flagged {
			byID[rec.Record.ID] = rec
		}

		items := make([]flagItem, 0, len(reviews))
		for _, review := range reviews {
			rec, ok := byID[review.RecordID]
			if !ok {
				raw, rawErr := store.GetRecordByID(ctx, review.RecordID)
				if rawErr != nil {
					continue
				}
				rec = model.ClassifiedRecord{Record: *raw}
			}
			items = append(items, flagItem{review: review, record: rec})
		}

		// Oldest record first, matching the store's queue order
		sort.SliceStable(items, func(i, j int) bool {
			return items[i].record.Record.Timestamp.Before(items[j].record.Record.Timestamp)
		})

		return flagsLoadedMsg{items: items}
	}
}

func (m Model) resolve(recordID string, status model.ReviewStatus) tea.Cmd {
	store := m.store
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()

		err := store.ResolveFlagReview(ctx, recordID, status, "")
		return resolvedMsg{err: err, recordID: recordID, status: status}
	}
}
