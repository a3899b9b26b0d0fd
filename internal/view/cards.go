package view

import (
	"fmt"

	"adpulse/internal/format"
	"adpulse/internal/insight"
)

// Signal card keys, matching the intelligence payload's card_insights.
const (
	CardCreativeResonance   = "creative_resonance"
	CardCostEfficiency      = "cost_efficiency"
	CardConversionAlignment = "conversion_alignment"
	CardGrowthMomentum      = "growth_momentum"
)

// expandableMinChars is the minimum deep-analysis length before a card
// offers a detail view.
const expandableMinChars = 20

// MetricLine is one labelled raw value on a card.
type MetricLine struct {
	Label string
	Value string
}

// CardView is one of the four fixed signal card slots.
type CardView struct {
	Key          string
	Title        string
	Status       string
	Metrics      []MetricLine
	Narrative    string
	DeepAnalysis string
	Expandable   bool
}

var cardFallbacks = map[string]string{
	CardCreativeResonance:   "Creative performance is tracking against baseline metrics.",
	CardCostEfficiency:      "Cost metrics are within expected ranges for this period.",
	CardConversionAlignment: "Conversion context determines what this campaign should measure.",
	CardGrowthMomentum:      "Trend intelligence builds as more sync cycles complete.",
}

// BuildCards computes the four signal cards. Status tiers come from
// the snapshot alone; the narrative line comes from the matching card
// insight when the intelligence payload supplies one.
func BuildCards(s *insight.Snapshot, intel *insight.Intelligence) []CardView {
	cards := []CardView{
		creativeResonance(s),
		costEfficiency(s),
		conversionAlignment(s),
		growthMomentum(s),
	}
	for i := range cards {
		cards[i].Narrative = cardFallbacks[cards[i].Key]
		if intel == nil {
			continue
		}
		ci, ok := intel.CardInsights[cards[i].Key]
		if !ok {
			continue
		}
		if ci.OneLiner != "" {
			cards[i].Narrative = format.EscapeText(ci.OneLiner)
		}
		cards[i].DeepAnalysis = ci.DeepAnalysis
		cards[i].Expandable = len(ci.DeepAnalysis) > expandableMinChars
	}
	return cards
}

func creativeResonance(s *insight.Snapshot) CardView {
	ctr, _ := s.KPI("ctr")
	eng, _ := s.KPI("engagement_rate")
	vcr, _ := s.KPI("video_completion_rate")

	status := "Building"
	switch {
	case ctr >= 2 && eng >= 5:
		status = "Strong"
	case ctr >= 1:
		status = "Moderate"
	}

	return CardView{
		Key:    CardCreativeResonance,
		Title:  "Creative Resonance",
		Status: status,
		Metrics: []MetricLine{
			{Label: "CTR", Value: format.Number(ctr, 2) + "%"},
			{Label: "Engagement", Value: format.Number(eng, 2) + "%"},
			{Label: "Video completion", Value: format.Number(vcr, 2) + "%"},
		},
	}
}

func costEfficiency(s *insight.Snapshot) CardView {
	cpc, _ := s.KPI("cpc")
	cpm, _ := s.KPI("cpm")
	sym := format.Currency(s.Currency)

	status := "Building"
	if t := s.Trend("cpc"); t != nil && t.PreviousPeriodAvailable {
		switch t.Signal {
		case insight.SignalImproving, insight.SignalStable:
			status = "Healthy"
		default:
			status = "Watch"
		}
	}

	return CardView{
		Key:    CardCostEfficiency,
		Title:  "Cost Efficiency",
		Status: status,
		Metrics: []MetricLine{
			{Label: "CPC", Value: sym + format.Number(cpc, 2)},
			{Label: "CPM", Value: sym + format.Number(cpm, 2)},
			{Label: "Spend", Value: sym + format.Number(s.MetaSummary.TotalSpend, 2)},
		},
	}
}

func conversionAlignment(s *insight.Snapshot) CardView {
	roas, _ := s.KPI("roas")

	status := "Building"
	roasValue := format.Number(roas, 2) + "x"
	switch {
	case !s.MetaSummary.ROASContext.Applicable:
		status = "Not Applicable"
		roasValue = "—"
	case s.MetaSummary.TotalConversions > 0:
		status = "Active"
	}

	return CardView{
		Key:    CardConversionAlignment,
		Title:  "Conversion Alignment",
		Status: status,
		Metrics: []MetricLine{
			{Label: "Conversions", Value: format.Number(float64(s.MetaSummary.TotalConversions), 0)},
			{Label: "ROAS", Value: roasValue},
		},
	}
}

func growthMomentum(s *insight.Snapshot) CardView {
	comparable := 0
	improving := 0
	for i := range s.TrendSignals {
		if s.TrendSignals[i].PreviousPeriodAvailable {
			comparable++
		}
		if s.TrendSignals[i].Signal == insight.SignalImproving {
			improving++
		}
	}

	status := "Building"
	if comparable > 0 {
		status = "Active"
	}

	return CardView{
		Key:    CardGrowthMomentum,
		Title:  "Growth Momentum",
		Status: status,
		Metrics: []MetricLine{
			{Label: "Signals tracked", Value: fmt.Sprintf("%d", len(s.TrendSignals))},
			{Label: "Improving", Value: fmt.Sprintf("%d", improving)},
		},
	}
}
