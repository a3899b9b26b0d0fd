// Package ui owns the dashboard's event loop: one bubbletea model that
// reconciles the fast snapshot path and the slow intelligence path
// into a single surface, and runs the rotation timer, modal viewer,
// conversational assistant, and sync control.
package ui

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"adpulse/internal/api"
	"adpulse/internal/insight"
	"adpulse/internal/store"
	"adpulse/internal/view"
)

// Backend is the remote data access surface the model depends on.
// *api.Client implements it.
type Backend interface {
	FetchLatestSnapshot(ctx context.Context) *insight.Snapshot
	FetchIntelligence(ctx context.Context) *insight.Intelligence
	TriggerSync(ctx context.Context, dateRange string, force bool) (*api.SyncResult, error)
	AskQuestion(ctx context.Context, question string) (string, error)
}

// History persists dashboard state across sessions. May be nil.
type History interface {
	store.SnapshotStore
	store.TurnStore
	store.SyncStore
}

// apologyText replaces the answer when a question fails.
const apologyText = "Sorry, I couldn't generate an answer right now. Try again in a moment."

// Messages.
type snapshotMsg struct {
	gen  int
	snap *insight.Snapshot
}

type intelMsg struct {
	gen   int
	intel *insight.Intelligence
}

type rotateMsg struct{ gen int }

type syncDoneMsg struct{ err error }

type answerMsg struct {
	id   int
	text string
	err  error
}

type autoRefreshMsg time.Time
type clockMsg time.Time

// turn is one conversation entry on the surface.
type turn struct {
	id        int
	role      string // "user" | "assistant"
	text      string
	loading   bool
	panel     []string // supporting signals, assistant turns only
	panelOpen bool
}

// modalState is the open detail viewer; nil when closed.
type modalState struct {
	title string
	body  string
}

// Options configures the model.
type Options struct {
	RotationInterval time.Duration
	AutoRefresh      time.Duration // 0 disables
	SyncDateRange    string
}

// Focus targets.
const (
	focusDashboard = iota
	focusInput
)

// Model is the dashboard controller. All mutable state lives here and
// is only touched from Update; commands communicate through messages.
type Model struct {
	client  Backend
	history History
	logger  *slog.Logger
	opts    Options

	// Snapshot store. previous rotates exactly once per successful
	// fetch, immediately before current is replaced.
	current  *insight.Snapshot
	previous *insight.Snapshot
	intel    *insight.Intelligence
	lastSync time.Time

	// Guards. refreshGen pairs async results with the refresh cycle
	// that issued them; stale generations are dropped on arrival.
	refreshGen   int
	syncing      bool
	asking       bool
	intelPending bool
	emptyState   bool
	syncLabel    string

	// Hero rotation. rotationGen invalidates ticks from torn-down
	// timers so at most one rotation chain is ever live.
	heroLines   []string
	rotationIdx int
	rotationGen int

	// Conversation.
	turns      []turn
	nextTurnID int

	modal *modalState

	dashboard viewport.Model
	convo     viewport.Model
	input     textinput.Model
	focus     int

	ready         bool
	width, height int
}

// New creates the dashboard model. history may be nil; previousSeed,
// when non-nil, pre-populates the previous-snapshot reference from
// stored history.
func New(client Backend, history History, logger *slog.Logger, previousSeed *insight.Snapshot, opts Options) *Model {
	if opts.RotationInterval <= 0 {
		opts.RotationInterval = 6 * time.Second
	}
	if opts.SyncDateRange == "" {
		opts.SyncDateRange = "last_7d"
	}
	input := textinput.New()
	input.Placeholder = "Ask about your data…"
	input.CharLimit = 500
	return &Model{
		client:     client,
		history:    history,
		logger:     logger,
		opts:       opts,
		previous:   previousSeed,
		input:      input,
		nextTurnID: 1,
		syncLabel:  "Sync",
	}
}

// RestoreTurns preloads persisted conversation history. Call before
// the program starts.
func (m *Model) RestoreTurns(turns []store.Turn) {
	for _, t := range turns {
		m.turns = append(m.turns, turn{id: m.nextID(), role: t.Role, text: t.Text})
	}
}

// Init starts the first refresh cycle and the background clocks.
func (m *Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.refreshCmd(), clockCmd()}
	if m.opts.AutoRefresh > 0 {
		cmds = append(cmds, autoRefreshCmd(m.opts.AutoRefresh))
	}
	return tea.Batch(cmds...)
}

// ---------------------------------------------------------------------------
// Commands
// ---------------------------------------------------------------------------

// refreshCmd begins a new refresh cycle. Bumping the generation here
// invalidates every in-flight result from earlier cycles.
func (m *Model) refreshCmd() tea.Cmd {
	m.refreshGen++
	gen := m.refreshGen
	c := m.client
	return func() tea.Msg {
		return snapshotMsg{gen: gen, snap: c.FetchLatestSnapshot(context.Background())}
	}
}

// intelCmd fetches intelligence for the cycle identified by gen.
func (m *Model) intelCmd(gen int) tea.Cmd {
	c := m.client
	return func() tea.Msg {
		return intelMsg{gen: gen, intel: c.FetchIntelligence(context.Background())}
	}
}

func (m *Model) syncCmd() tea.Cmd {
	c := m.client
	dateRange := m.opts.SyncDateRange
	return func() tea.Msg {
		_, err := c.TriggerSync(context.Background(), dateRange, true)
		return syncDoneMsg{err: err}
	}
}

func (m *Model) askCmd(id int, question string) tea.Cmd {
	c := m.client
	return func() tea.Msg {
		text, err := c.AskQuestion(context.Background(), question)
		return answerMsg{id: id, text: text, err: err}
	}
}

func (m *Model) rotateCmd() tea.Cmd {
	gen := m.rotationGen
	return tea.Tick(m.opts.RotationInterval, func(time.Time) tea.Msg {
		return rotateMsg{gen: gen}
	})
}

func clockCmd() tea.Cmd {
	return tea.Tick(time.Minute, func(t time.Time) tea.Msg {
		return clockMsg(t)
	})
}

func autoRefreshCmd(every time.Duration) tea.Cmd {
	return tea.Tick(every, func(t time.Time) tea.Msg {
		return autoRefreshMsg(t)
	})
}

// saveSnapshotCmd persists a fetched snapshot off the event loop.
func (m *Model) saveSnapshotCmd(snap *insight.Snapshot) tea.Cmd {
	if m.history == nil {
		return nil
	}
	h := m.history
	logger := m.logger
	return func() tea.Msg {
		if err := h.SaveSnapshot(context.Background(), snap); err != nil {
			logger.Warn("saving snapshot", "error", err)
		}
		return nil
	}
}

func (m *Model) saveTurnCmd(role, text string) tea.Cmd {
	if m.history == nil {
		return nil
	}
	h := m.history
	logger := m.logger
	return func() tea.Msg {
		if err := h.SaveTurn(context.Background(), role, text); err != nil {
			logger.Warn("saving turn", "error", err)
		}
		return nil
	}
}

func (m *Model) markSyncCmd(at time.Time) tea.Cmd {
	if m.history == nil {
		return nil
	}
	h := m.history
	logger := m.logger
	return func() tea.Msg {
		if err := h.MarkSync(context.Background(), at); err != nil {
			logger.Warn("recording sync", "error", err)
		}
		return nil
	}
}

// ---------------------------------------------------------------------------
// Update
// ---------------------------------------------------------------------------

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.updateKey(msg)

	case tea.MouseMsg:
		return m.updateMouse(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.layout()
		m.refreshSurfaces()
		return m, nil

	case snapshotMsg:
		return m.applySnapshot(msg)

	case intelMsg:
		return m.applyIntelligence(msg)

	case rotateMsg:
		// Ticks from a torn-down rotation carry a stale generation
		// and end their chain here.
		if msg.gen != m.rotationGen || len(m.heroLines) < 2 {
			return m, nil
		}
		m.rotationIdx = (m.rotationIdx + 1) % len(m.heroLines)
		m.refreshSurfaces()
		return m, m.rotateCmd()

	case syncDoneMsg:
		m.syncing = false
		if msg.err != nil {
			m.logger.Warn("sync failed", "error", msg.err)
			m.syncLabel = "Retry"
			m.refreshSurfaces()
			return m, nil
		}
		m.syncLabel = "Sync"
		m.lastSync = time.Now()
		return m, tea.Batch(m.markSyncCmd(m.lastSync), m.refreshCmd())

	case answerMsg:
		return m.applyAnswer(msg)

	case autoRefreshMsg:
		cmds := []tea.Cmd{autoRefreshCmd(m.opts.AutoRefresh)}
		if !m.syncing {
			cmds = append(cmds, m.refreshCmd())
		}
		return m, tea.Batch(cmds...)

	case clockMsg:
		// Keep the "Xm ago" freshness line moving.
		m.refreshSurfaces()
		return m, clockCmd()
	}

	return m.updateViewports(msg)
}

func (m *Model) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.modal != nil {
		switch msg.String() {
		case "esc", "q", "enter":
			m.modal = nil
		}
		return m, nil
	}

	switch msg.String() {
	case "ctrl+c":
		return m, tea.Quit
	case "tab":
		if m.focus == focusDashboard {
			m.focus = focusInput
			m.input.Focus()
		} else {
			m.focus = focusDashboard
			m.input.Blur()
		}
		return m, nil
	}

	if m.focus == focusInput {
		switch msg.String() {
		case "enter":
			return m.submitQuestion()
		case "esc":
			m.focus = focusDashboard
			m.input.Blur()
			return m, nil
		default:
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			return m, cmd
		}
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "s":
		return m.startSync()
	case "r":
		if !m.syncing {
			return m, m.refreshCmd()
		}
		return m, nil
	case "p":
		m.togglePanel()
		return m, nil
	case "1", "2", "3", "4":
		m.openCardModal(int(msg.String()[0] - '1'))
		return m, nil
	}

	return m.updateViewports(msg)
}

func (m *Model) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if m.modal != nil {
		if msg.Action == tea.MouseActionPress && !m.insideModal(msg.X, msg.Y) {
			m.modal = nil
		}
		return m, nil
	}
	return m.updateViewports(msg)
}

func (m *Model) updateViewports(msg tea.Msg) (tea.Model, tea.Cmd) {
	if !m.ready {
		return m, nil
	}
	var cmds []tea.Cmd
	var cmd tea.Cmd
	m.dashboard, cmd = m.dashboard.Update(msg)
	cmds = append(cmds, cmd)
	m.convo, cmd = m.convo.Update(msg)
	cmds = append(cmds, cmd)
	return m, tea.Batch(cmds...)
}

// ---------------------------------------------------------------------------
// Refresh sequence
// ---------------------------------------------------------------------------

// applySnapshot is step 2-5 of the refresh sequence: rotate the
// previous reference, render the baseline layers with the enrichment
// fallbacks, then kick off the background intelligence fetch.
func (m *Model) applySnapshot(msg snapshotMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.refreshGen {
		m.logger.Info("dropping snapshot from superseded refresh", "gen", msg.gen, "current", m.refreshGen)
		return m, nil
	}

	if msg.snap == nil {
		m.emptyState = true
		m.intelPending = false
		m.refreshSurfaces()
		return m, nil
	}

	// On the very first fetch current is nil and previous may hold the
	// seed restored from history; keep it as the baseline reference.
	if m.current != nil {
		m.previous = m.current
	}
	m.current = msg.snap
	m.intel = nil
	m.emptyState = false
	m.intelPending = true

	m.startRotation()
	m.refreshSurfaces()

	return m, tea.Batch(
		m.saveSnapshotCmd(msg.snap),
		m.intelCmd(msg.gen),
	)
}

// applyIntelligence is step 6: pair the payload with the snapshot that
// requested it, or drop it when a newer refresh has taken over.
func (m *Model) applyIntelligence(msg intelMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.refreshGen {
		m.logger.Info("dropping stale intelligence", "gen", msg.gen, "current", m.refreshGen)
		return m, nil
	}
	m.intelPending = false
	if msg.intel != nil {
		m.intel = msg.intel
	}
	m.startRotation()
	m.refreshSurfaces()
	if len(m.heroLines) > 1 {
		return m, m.rotateCmd()
	}
	return m, nil
}

// startRotation recomputes the hero lines and tears down any running
// rotation by bumping the generation. The caller decides whether a
// new tick chain is needed.
func (m *Model) startRotation() {
	m.rotationGen++
	m.rotationIdx = 0
	if m.current == nil {
		m.heroLines = nil
		return
	}
	m.heroLines = view.BuildHero(m.current, m.intel)
}

// ---------------------------------------------------------------------------
// Sync control
// ---------------------------------------------------------------------------

// startSync triggers a backend sync unless one is already running.
func (m *Model) startSync() (tea.Model, tea.Cmd) {
	if m.syncing {
		return m, nil
	}
	m.syncing = true
	m.syncLabel = "Syncing…"
	m.refreshSurfaces()
	return m, m.syncCmd()
}

// ---------------------------------------------------------------------------
// Conversation
// ---------------------------------------------------------------------------

func (m *Model) submitQuestion() (tea.Model, tea.Cmd) {
	question := strings.TrimSpace(m.input.Value())
	if question == "" {
		return m, nil
	}
	if m.asking {
		return m, nil
	}
	m.asking = true
	m.input.SetValue("")

	m.turns = append(m.turns, turn{id: m.nextID(), role: "user", text: question})
	loadingID := m.nextID()
	m.turns = append(m.turns, turn{id: loadingID, role: "assistant", text: "Thinking…", loading: true})
	m.scrollConvoToBottom()

	return m, tea.Batch(
		m.saveTurnCmd("user", question),
		m.askCmd(loadingID, question),
	)
}

func (m *Model) applyAnswer(msg answerMsg) (tea.Model, tea.Cmd) {
	m.asking = false
	m.removeTurn(msg.id)

	text := msg.text
	if msg.err != nil {
		m.logger.Warn("question failed", "error", msg.err)
		text = apologyText
	}

	entry := turn{id: m.nextID(), role: "assistant", text: text}
	if msg.err == nil && m.current != nil {
		entry.panel = view.SignalPanel(m.current)
	}
	m.turns = append(m.turns, entry)
	m.scrollConvoToBottom()

	if msg.err != nil {
		return m, nil
	}
	return m, m.saveTurnCmd("assistant", text)
}

func (m *Model) nextID() int {
	id := m.nextTurnID
	m.nextTurnID++
	return id
}

func (m *Model) removeTurn(id int) {
	for i := range m.turns {
		if m.turns[i].id == id {
			m.turns = append(m.turns[:i], m.turns[i+1:]...)
			return
		}
	}
}

// togglePanel flips the supporting-signals panel of the latest
// assistant turn that has one.
func (m *Model) togglePanel() {
	for i := len(m.turns) - 1; i >= 0; i-- {
		if len(m.turns[i].panel) > 0 {
			m.turns[i].panelOpen = !m.turns[i].panelOpen
			m.scrollConvoToBottom()
			return
		}
	}
}

// ---------------------------------------------------------------------------
// Modal
// ---------------------------------------------------------------------------

// openCardModal opens the detail viewer for the idx-th signal card.
// Cards without enough deep analysis never open.
func (m *Model) openCardModal(idx int) {
	if m.current == nil {
		return
	}
	cards := view.BuildCards(m.current, m.intel)
	if idx < 0 || idx >= len(cards) {
		return
	}
	card := cards[idx]
	if !card.Expandable || card.DeepAnalysis == "" {
		return
	}
	m.modal = &modalState{title: card.Title, body: card.DeepAnalysis}
}
