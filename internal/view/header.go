// Package view computes display-ready view models from a Snapshot and
// an optional Intelligence payload. Every function here is pure: the
// same inputs always produce the same view model, independent of any
// display mechanism.
package view

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"adpulse/internal/format"
	"adpulse/internal/insight"
)

// Severity grades the header status indicator.
type Severity int

const (
	SeverityNormal Severity = iota
	SeverityBuilding
	SeverityRisk
)

// BreakdownLine is one named confidence sub-score, as a percentage.
type BreakdownLine struct {
	Name string
	Pct  string
}

// HeaderView is the deterministic status header.
type HeaderView struct {
	Freshness      string
	StabilityLabel string
	Severity       Severity
	DateRange      string
	ConfidencePct  string
	Breakdown      []BreakdownLine
}

// BuildHeader derives the status header from the snapshot alone.
// Stability flips at confidence 0.8; the indicator goes risk below
// 0.6 and building below 0.8.
func BuildHeader(s *insight.Snapshot, now time.Time) HeaderView {
	h := HeaderView{
		StabilityLabel: "Data building",
		Severity:       SeverityBuilding,
		DateRange:      dateRange(s.DateRangeStart, s.DateRangeEnd),
		ConfidencePct:  fmt.Sprintf("%.0f%%", s.ConfidenceScore*100),
	}
	if s.ConfidenceScore >= 0.8 {
		h.StabilityLabel = "Data stable"
		h.Severity = SeverityNormal
	} else if s.ConfidenceScore < 0.6 {
		h.Severity = SeverityRisk
	}

	if t, err := time.Parse(time.RFC3339, s.GeneratedAt); err == nil {
		h.Freshness = format.RelativeTime(t, now)
	} else {
		h.Freshness = "unknown"
	}

	names := make([]string, 0, len(s.ConfidenceBreakdown))
	for name := range s.ConfidenceBreakdown {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		h.Breakdown = append(h.Breakdown, BreakdownLine{
			Name: titleize(name),
			Pct:  fmt.Sprintf("%.0f%%", s.ConfidenceBreakdown[name]*100),
		})
	}
	return h
}

// DeltaRow is one fixed metric in the delta strip.
type DeltaRow struct {
	Label string
	Value string
	Trend string
}

// BuildDeltaStrip renders the four fixed metrics with their trends.
// A metric with no comparable previous period always reads "Baseline
// building", whatever its signal says.
func BuildDeltaStrip(s *insight.Snapshot) []DeltaRow {
	sym := format.Currency(s.Currency)

	ctr, _ := s.KPI("ctr")
	cpc, _ := s.KPI("cpc")
	eng, _ := s.KPI("engagement_rate")

	return []DeltaRow{
		{Label: "CTR", Value: format.Number(ctr, 2) + "%", Trend: trendCell(s.Trend("ctr"))},
		{Label: "CPC", Value: sym + format.Number(cpc, 2), Trend: trendCell(s.Trend("cpc"))},
		{Label: "Engagement rate", Value: format.Number(eng, 2) + "%", Trend: trendCell(s.Trend("engagement_rate"))},
		{Label: "Spend", Value: sym + format.Number(s.MetaSummary.TotalSpend, 2), Trend: trendCell(s.Trend("spend"))},
	}
}

func trendCell(t *insight.TrendSignal) string {
	if t == nil || !t.PreviousPeriodAvailable {
		return "Baseline building"
	}
	switch t.Direction {
	case "up":
		return fmt.Sprintf("↑ %+.1f%%", t.ChangePct)
	case "down":
		return fmt.Sprintf("↓ %+.1f%%", t.ChangePct)
	default:
		return "Stable"
	}
}

// Chip is a compact status badge computed from snapshot data alone.
type Chip struct {
	Label    string
	Severity Severity
}

// BuildChips computes the engagement, ROAS-applicability, and momentum
// chips. These never depend on the intelligence payload.
func BuildChips(s *insight.Snapshot) []Chip {
	var chips []Chip

	eng, _ := s.KPI("engagement_rate")
	switch {
	case eng >= 10:
		chips = append(chips, Chip{Label: "🟢 Engagement Strong", Severity: SeverityNormal})
	case eng >= 5:
		chips = append(chips, Chip{Label: "🟡 Engagement Moderate", Severity: SeverityBuilding})
	default:
		chips = append(chips, Chip{Label: "⚪ Engagement Building", Severity: SeverityBuilding})
	}

	if !s.MetaSummary.ROASContext.Applicable {
		chips = append(chips, Chip{Label: roasReasonLabel(s.MetaSummary.ROASContext.Reason), Severity: SeverityBuilding})
	}

	chips = append(chips, momentumChip(s))
	return chips
}

func roasReasonLabel(reason string) string {
	switch reason {
	case insight.ReasonLeadGen:
		return "Lead Gen Objective"
	case insight.ReasonAwareness:
		return "Awareness Objective"
	case insight.ReasonNoConversionValue:
		return "No Conversion Value Tracked"
	default:
		return "ROAS Not Applicable"
	}
}

func momentumChip(s *insight.Snapshot) Chip {
	total := 0
	improving := 0
	comparable := 0
	for i := range s.TrendSignals {
		total++
		if s.TrendSignals[i].PreviousPeriodAvailable {
			comparable++
		}
		if s.TrendSignals[i].Signal == insight.SignalImproving {
			improving++
		}
	}
	switch {
	case comparable == 0:
		return Chip{Label: "📊 Baseline building", Severity: SeverityBuilding}
	case improving*2 > total:
		return Chip{Label: "📈 Momentum Positive", Severity: SeverityNormal}
	default:
		return Chip{Label: "➡️ Momentum Steady", Severity: SeverityBuilding}
	}
}

func dateRange(start, end string) string {
	st, errS := time.Parse("2006-01-02", start)
	en, errE := time.Parse("2006-01-02", end)
	if errS != nil || errE != nil {
		return start + " → " + end
	}
	if st.Year() == en.Year() {
		return st.Format("Jan 2") + " – " + en.Format("Jan 2, 2006")
	}
	return st.Format("Jan 2, 2006") + " – " + en.Format("Jan 2, 2006")
}

// titleize converts a snake_case metric name to a display label.
func titleize(s string) string {
	words := strings.Split(s, "_")
	for i, w := range words {
		if w == "" {
			continue
		}
		if i == 0 {
			words[i] = strings.ToUpper(w[:1]) + w[1:]
		}
	}
	return strings.Join(words, " ")
}
