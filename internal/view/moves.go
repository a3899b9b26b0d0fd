package view

import (
	"fmt"

	"adpulse/internal/format"
	"adpulse/internal/insight"
)

// maxMoves caps the strategic moves list.
const maxMoves = 3

// MovesEmptyState is shown when neither the intelligence payload nor
// the fallback rules produce a recommendation.
const MovesEmptyState = "No strategic moves yet. Sync more data to unlock recommendations."

// MoveView is one ranked strategic recommendation.
type MoveView struct {
	Rank        int
	Title       string
	Reasoning   string
	ActionItems []string
	Confidence  string
}

// BuildHero returns the headline candidates: the intelligence hero
// lines when present, else one static sentence derived from the
// snapshot.
func BuildHero(s *insight.Snapshot, intel *insight.Intelligence) []string {
	if intel != nil && len(intel.HeroLines) > 0 {
		lines := make([]string, 0, len(intel.HeroLines))
		for _, l := range intel.HeroLines {
			lines = append(lines, format.EscapeText(l))
		}
		return lines
	}
	ctr, _ := s.KPI("ctr")
	return []string{fmt.Sprintf(
		"Delivered %s impressions at %s%% CTR for %s%s over %s.",
		format.Number(float64(s.MetaSummary.TotalImpressions), 0),
		format.Number(ctr, 2),
		format.Currency(s.Currency),
		format.Number(s.MetaSummary.TotalSpend, 2),
		dateRange(s.DateRangeStart, s.DateRangeEnd),
	)}
}

// BuildMoves returns up to three ranked strategic moves. With no
// intelligence, deterministic rules over the snapshot KPIs decide.
func BuildMoves(s *insight.Snapshot, intel *insight.Intelligence) []MoveView {
	if intel != nil && len(intel.StrategicMoves) > 0 {
		moves := intel.StrategicMoves
		if len(moves) > maxMoves {
			moves = moves[:maxMoves]
		}
		out := make([]MoveView, 0, len(moves))
		for i, m := range moves {
			items := make([]string, 0, len(m.ActionItems))
			for _, it := range m.ActionItems {
				items = append(items, format.EscapeText(it))
			}
			out = append(out, MoveView{
				Rank:        i + 1,
				Title:       format.EscapeText(m.Title),
				Reasoning:   format.EscapeText(m.Reasoning),
				ActionItems: items,
				Confidence:  m.Confidence,
			})
		}
		return out
	}
	return fallbackMoves(s)
}

func fallbackMoves(s *insight.Snapshot) []MoveView {
	ctr, _ := s.KPI("ctr")
	_, hasCPC := s.KPI("cpc")
	eng, _ := s.KPI("engagement_rate")
	vcr, hasVCR := s.KPI("video_completion_rate")

	var moves []MoveView
	add := func(title, reasoning, confidence string) {
		moves = append(moves, MoveView{
			Rank:       len(moves) + 1,
			Title:      title,
			Reasoning:  reasoning,
			Confidence: confidence,
		})
	}

	if ctr > 2 && hasCPC {
		add("Scale Budget Gradually",
			"Click-through is above the 2% threshold with cost data in place; a measured budget increase can capture more of this demand.",
			"High")
	}
	if eng > 10 && vcr > 15 {
		add("Launch Retargeting Audience",
			"Engagement and video completion are both strong enough to seed a warm retargeting audience.",
			"High")
	}
	if hasVCR && vcr < 30 {
		add("Improve Video Opening",
			"Most viewers drop off before the video completes; a stronger first three seconds should lift completion.",
			"Medium")
	}
	if !s.MetaSummary.ROASContext.Applicable {
		add("Enable Conversion Tracking",
			"Revenue attribution is not measurable for this objective; conversion tracking would unlock ROAS reporting.",
			"High")
	}

	if len(moves) > maxMoves {
		moves = moves[:maxMoves]
	}
	return moves
}

// SignalPanel summarizes the active snapshot for a conversation turn's
// collapsible supporting-signals panel.
func SignalPanel(s *insight.Snapshot) []string {
	sym := format.Currency(s.Currency)
	lines := []string{
		"Range: " + dateRange(s.DateRangeStart, s.DateRangeEnd),
		"Currency: " + s.Currency,
		fmt.Sprintf("Confidence: %.0f%%", s.ConfidenceScore*100),
		fmt.Sprintf("Spend: %s%s · Impressions: %s · Clicks: %s",
			sym,
			format.Number(s.MetaSummary.TotalSpend, 2),
			format.Number(float64(s.MetaSummary.TotalImpressions), 0),
			format.Number(float64(s.MetaSummary.TotalClicks), 0)),
	}
	if !s.MetaSummary.ROASContext.Applicable {
		lines = append(lines, "ROAS: not applicable ("+roasReasonLabel(s.MetaSummary.ROASContext.Reason)+")")
	}
	return lines
}
