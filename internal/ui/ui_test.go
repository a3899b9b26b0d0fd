package ui

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"adpulse/internal/api"
	"adpulse/internal/insight"
)

type fakeBackend struct {
	snap      *insight.Snapshot
	intel     *insight.Intelligence
	syncErr   error
	syncCalls int
	answer    string
	answerErr error
}

func (f *fakeBackend) FetchLatestSnapshot(context.Context) *insight.Snapshot { return f.snap }

func (f *fakeBackend) FetchIntelligence(context.Context) *insight.Intelligence { return f.intel }

func (f *fakeBackend) TriggerSync(context.Context, string, bool) (*api.SyncResult, error) {
	f.syncCalls++
	if f.syncErr != nil {
		return nil, f.syncErr
	}
	return &api.SyncResult{Status: "completed"}, nil
}

func (f *fakeBackend) AskQuestion(context.Context, string) (string, error) {
	return f.answer, f.answerErr
}

func testSnapshot() *insight.Snapshot {
	return &insight.Snapshot{
		GeneratedAt:    time.Now().UTC().Format(time.RFC3339),
		Currency:       "INR",
		DateRangeStart: "2026-08-18",
		DateRangeEnd:   "2026-08-25",
		MetaSummary: insight.MetaSummary{
			TotalSpend:       45000,
			TotalImpressions: 120000,
			TotalClicks:      3000,
			TotalConversions: 85,
			ROASContext:      insight.ROASContext{Applicable: true},
		},
		KPIs: []insight.KPI{
			{Name: "ctr", Value: 2.5, Unit: "%"},
			{Name: "cpc", Value: 15, Unit: "INR"},
			{Name: "engagement_rate", Value: 11, Unit: "%"},
			{Name: "video_completion_rate", Value: 25, Unit: "%"},
		},
		ConfidenceScore: 0.85,
	}
}

func testIntelligence() *insight.Intelligence {
	return &insight.Intelligence{
		HeroLines: []string{"Line A", "Line B", "Line C"},
		CardInsights: map[string]insight.CardInsight{
			"creative_resonance": {
				OneLiner:     "Creative is landing well.",
				DeepAnalysis: "## Why\nThe click-through rate is well above the account baseline.",
			},
		},
	}
}

func newTestModel(t *testing.T, b Backend) *Model {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := New(b, nil, logger, nil, Options{RotationInterval: time.Second})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return m
}

// runRefresh drives one full refresh cycle against the fake backend.
func runRefresh(t *testing.T, m *Model, b *fakeBackend) {
	t.Helper()
	cmd := m.refreshCmd()
	m.Update(cmd())
	if b.snap != nil {
		m.Update(intelMsg{gen: m.refreshGen, intel: b.intel})
	}
}

func TestRefreshRotatesPrevious(t *testing.T) {
	first := testSnapshot()
	second := testSnapshot()
	second.ConfidenceScore = 0.9

	b := &fakeBackend{snap: first}
	m := newTestModel(t, b)
	runRefresh(t, m, b)
	if m.current != first {
		t.Fatal("first snapshot not applied")
	}
	if m.previous != nil {
		t.Fatalf("previous = %v, want nil on first fetch", m.previous)
	}

	b.snap = second
	runRefresh(t, m, b)
	if m.current != second || m.previous != first {
		t.Fatal("previous reference did not rotate on second fetch")
	}
}

func TestSeededPreviousSurvivesFirstFetch(t *testing.T) {
	seed := testSnapshot()
	fresh := testSnapshot()
	fresh.ConfidenceScore = 0.9

	b := &fakeBackend{snap: fresh}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := New(b, nil, logger, seed, Options{RotationInterval: time.Second})
	m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})

	runRefresh(t, m, b)
	if m.current != fresh {
		t.Fatal("fresh snapshot not applied")
	}
	if m.previous != seed {
		t.Fatal("seeded previous reference was wiped by the first fetch")
	}
}

func TestFailedFetchShowsEmptyState(t *testing.T) {
	b := &fakeBackend{snap: nil}
	m := newTestModel(t, b)
	runRefresh(t, m, b)

	if !m.emptyState {
		t.Fatal("emptyState not set after nil snapshot")
	}
	if got := m.renderDashboard(); !strings.Contains(got, "No analysis available") {
		t.Errorf("dashboard missing empty state, got %q", got)
	}
}

func TestEmptyStateClearsOnRecovery(t *testing.T) {
	b := &fakeBackend{snap: nil}
	m := newTestModel(t, b)
	runRefresh(t, m, b)

	b.snap = testSnapshot()
	runRefresh(t, m, b)
	if m.emptyState {
		t.Fatal("emptyState still set after successful fetch")
	}
}

func TestRotationCyclesThroughHeroLines(t *testing.T) {
	b := &fakeBackend{snap: testSnapshot(), intel: testIntelligence()}
	m := newTestModel(t, b)
	runRefresh(t, m, b)

	if len(m.heroLines) != 3 {
		t.Fatalf("heroLines = %d, want 3", len(m.heroLines))
	}
	want := []int{1, 2, 0, 1}
	for i, idx := range want {
		_, cmd := m.Update(rotateMsg{gen: m.rotationGen})
		if m.rotationIdx != idx {
			t.Fatalf("tick %d: rotationIdx = %d, want %d", i, m.rotationIdx, idx)
		}
		if cmd == nil {
			t.Fatalf("tick %d: rotation chain ended early", i)
		}
	}
}

func TestStaleRotationTickDies(t *testing.T) {
	b := &fakeBackend{snap: testSnapshot(), intel: testIntelligence()}
	m := newTestModel(t, b)
	runRefresh(t, m, b)

	stale := m.rotationGen
	// New intelligence arrival tears the old rotation down.
	m.Update(intelMsg{gen: m.refreshGen, intel: testIntelligence()})
	if m.rotationGen == stale {
		t.Fatal("rotation generation did not advance")
	}

	idx := m.rotationIdx
	_, cmd := m.Update(rotateMsg{gen: stale})
	if m.rotationIdx != idx {
		t.Error("stale tick advanced the rotation")
	}
	if cmd != nil {
		t.Error("stale tick scheduled a successor")
	}
}

func TestSingleHeroLineNeedsNoTimer(t *testing.T) {
	b := &fakeBackend{snap: testSnapshot()}
	m := newTestModel(t, b)
	cmd := m.refreshCmd()
	m.Update(cmd())

	_, tick := m.Update(intelMsg{gen: m.refreshGen, intel: nil})
	if len(m.heroLines) != 1 {
		t.Fatalf("heroLines = %d, want 1 fallback line", len(m.heroLines))
	}
	if tick != nil {
		t.Error("rotation timer scheduled for a single line")
	}
}

func TestStaleIntelligenceDropped(t *testing.T) {
	b := &fakeBackend{snap: testSnapshot()}
	m := newTestModel(t, b)

	cmd := m.refreshCmd()
	m.Update(cmd())
	staleGen := m.refreshGen

	// A second refresh supersedes the first before its intelligence
	// lands.
	cmd = m.refreshCmd()
	m.Update(cmd())

	m.Update(intelMsg{gen: staleGen, intel: testIntelligence()})
	if m.intel != nil {
		t.Fatal("stale intelligence was applied")
	}
	if !m.intelPending {
		t.Fatal("pending flag cleared by a stale payload")
	}

	m.Update(intelMsg{gen: m.refreshGen, intel: testIntelligence()})
	if m.intel == nil {
		t.Fatal("current-generation intelligence was not applied")
	}
}

func TestStaleSnapshotDropped(t *testing.T) {
	b := &fakeBackend{snap: testSnapshot()}
	m := newTestModel(t, b)

	cmd := m.refreshCmd()
	staleSnap := cmd()
	m.refreshCmd() // supersede

	m.Update(staleSnap)
	if m.current != nil {
		t.Fatal("snapshot from superseded refresh was applied")
	}
}

func TestSyncMutualExclusion(t *testing.T) {
	b := &fakeBackend{snap: testSnapshot()}
	m := newTestModel(t, b)

	_, cmd := m.startSync()
	if !m.syncing || m.syncLabel != "Syncing…" {
		t.Fatalf("syncing=%v label=%q after start", m.syncing, m.syncLabel)
	}
	if cmd == nil {
		t.Fatal("no sync command issued")
	}
	cmd()
	if b.syncCalls != 1 {
		t.Fatalf("syncCalls = %d, want 1", b.syncCalls)
	}

	_, cmd = m.startSync()
	if cmd != nil {
		t.Fatal("second sync started while one was in flight")
	}
}

func TestSyncFailureShowsRetry(t *testing.T) {
	b := &fakeBackend{snap: testSnapshot(), syncErr: errors.New("backend down")}
	m := newTestModel(t, b)

	_, cmd := m.startSync()
	m.Update(cmd())
	if m.syncing {
		t.Error("syncing flag still set after failure")
	}
	if m.syncLabel != "Retry" {
		t.Errorf("syncLabel = %q, want Retry", m.syncLabel)
	}
}

func TestSyncSuccessTriggersRefresh(t *testing.T) {
	b := &fakeBackend{snap: testSnapshot()}
	m := newTestModel(t, b)

	_, cmd := m.startSync()
	_, after := m.Update(cmd())
	if m.syncLabel != "Sync" {
		t.Errorf("syncLabel = %q, want Sync", m.syncLabel)
	}
	if m.lastSync.IsZero() {
		t.Error("lastSync not recorded")
	}
	if after == nil {
		t.Fatal("no follow-up command after successful sync")
	}
	if m.refreshGen != 1 {
		t.Errorf("refreshGen = %d, want 1 (new cycle started)", m.refreshGen)
	}
}

func TestBlankQuestionIgnored(t *testing.T) {
	b := &fakeBackend{}
	m := newTestModel(t, b)

	m.input.SetValue("   ")
	_, cmd := m.submitQuestion()
	if cmd != nil || len(m.turns) != 0 || m.asking {
		t.Fatal("whitespace question was submitted")
	}
}

func TestQuestionAppendsUserAndLoadingTurns(t *testing.T) {
	b := &fakeBackend{answer: "CTR is healthy."}
	m := newTestModel(t, b)

	m.input.SetValue("How is CTR trending?")
	m.submitQuestion()

	if len(m.turns) != 2 {
		t.Fatalf("turns = %d, want user + loading", len(m.turns))
	}
	if m.turns[0].role != "user" || m.turns[0].text != "How is CTR trending?" {
		t.Errorf("user turn = %+v", m.turns[0])
	}
	if !m.turns[1].loading {
		t.Error("second turn is not the loading placeholder")
	}
	if m.input.Value() != "" {
		t.Error("input not cleared after submit")
	}
	if !m.asking {
		t.Error("asking flag not set")
	}
}

func TestSecondQuestionBlockedWhileAsking(t *testing.T) {
	b := &fakeBackend{answer: "ok"}
	m := newTestModel(t, b)

	m.input.SetValue("first?")
	m.submitQuestion()
	m.input.SetValue("second?")
	_, cmd := m.submitQuestion()
	if cmd != nil || len(m.turns) != 2 {
		t.Fatal("second question submitted while first in flight")
	}
}

func TestAnswerReplacesLoadingTurn(t *testing.T) {
	b := &fakeBackend{snap: testSnapshot(), answer: "Spend is pacing evenly."}
	m := newTestModel(t, b)
	runRefresh(t, m, b)

	m.input.SetValue("How is spend pacing?")
	m.submitQuestion()
	loadingID := m.turns[len(m.turns)-1].id

	m.Update(answerMsg{id: loadingID, text: b.answer})
	last := m.turns[len(m.turns)-1]
	if last.loading {
		t.Fatal("loading placeholder survived the answer")
	}
	if last.text != "Spend is pacing evenly." {
		t.Errorf("answer text = %q", last.text)
	}
	if len(last.panel) == 0 {
		t.Error("supporting signals panel missing on success")
	}
	if m.asking {
		t.Error("asking flag still set")
	}
}

func TestFailedAnswerShowsApology(t *testing.T) {
	b := &fakeBackend{answerErr: errors.New("llm timeout")}
	m := newTestModel(t, b)

	m.input.SetValue("why?")
	m.submitQuestion()
	loadingID := m.turns[len(m.turns)-1].id

	m.Update(answerMsg{id: loadingID, err: b.answerErr})
	last := m.turns[len(m.turns)-1]
	if last.text != apologyText {
		t.Errorf("apology turn = %q", last.text)
	}
	if len(last.panel) != 0 {
		t.Error("failed answer carries a signals panel")
	}
	for _, turn := range m.turns {
		if turn.loading {
			t.Fatal("loading placeholder not removed")
		}
	}
	if m.asking {
		t.Error("asking flag still set after failure")
	}
}

func TestModalOpensOnlyWithDeepAnalysis(t *testing.T) {
	b := &fakeBackend{snap: testSnapshot(), intel: testIntelligence()}
	m := newTestModel(t, b)
	runRefresh(t, m, b)

	m.openCardModal(1) // cost efficiency: fallback only, not expandable
	if m.modal != nil {
		t.Fatal("modal opened for a card without deep analysis")
	}

	m.openCardModal(0) // creative resonance has deep analysis
	if m.modal == nil {
		t.Fatal("modal did not open for expandable card")
	}
	if !strings.Contains(m.modal.body, "click-through rate") {
		t.Errorf("modal body = %q", m.modal.body)
	}

	m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.modal != nil {
		t.Error("esc did not close the modal")
	}
}

func TestModalClosesOnOutsideClick(t *testing.T) {
	b := &fakeBackend{snap: testSnapshot(), intel: testIntelligence()}
	m := newTestModel(t, b)
	runRefresh(t, m, b)
	m.openCardModal(0)

	m.Update(tea.MouseMsg{X: 0, Y: 0, Action: tea.MouseActionPress, Button: tea.MouseButtonLeft})
	if m.modal != nil {
		t.Error("click outside the modal did not close it")
	}
}

func TestDashboardRendersIntelligenceOverFallback(t *testing.T) {
	b := &fakeBackend{snap: testSnapshot(), intel: testIntelligence()}
	m := newTestModel(t, b)
	runRefresh(t, m, b)

	out := m.renderDashboard()
	if !strings.Contains(out, "Line A") {
		t.Error("hero line missing from dashboard")
	}
	if !strings.Contains(out, "Creative is landing well.") {
		t.Error("intelligence narrative missing from card")
	}
	if strings.Contains(out, "Generating intelligence") {
		t.Error("generating placeholder shown after intelligence arrived")
	}
}

func TestGeneratingPlaceholderShownWhilePending(t *testing.T) {
	b := &fakeBackend{snap: testSnapshot()}
	m := newTestModel(t, b)
	cmd := m.refreshCmd()
	m.Update(cmd())

	if out := m.renderDashboard(); !strings.Contains(out, "Generating intelligence") {
		t.Error("generating placeholder missing while intelligence pending")
	}
}
