// Package insight defines the wire model shared with the analytics
// backend: the computed Snapshot for a date range and the optional
// generative Intelligence produced from it.
package insight

// ROAS applicability reasons reported by the backend.
const (
	ReasonApplicable        = "applicable"
	ReasonLeadGen           = "lead_generation_campaign"
	ReasonAwareness         = "awareness_objective"
	ReasonNoConversionValue = "no_conversion_value_tracked"
)

// Trend signal classifications.
const (
	SignalImproving        = "improving"
	SignalDeclining        = "declining"
	SignalStable           = "stable"
	SignalAlert            = "alert"
	SignalInsufficientData = "insufficient_data"
)

// KPI is a single computed metric, e.g. ctr, cpc, engagement_rate.
type KPI struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
}

// TrendSignal compares a metric against the previous period of equal
// length. PreviousPeriodAvailable is false while the baseline is still
// building; ChangePct and Direction are meaningless in that case.
type TrendSignal struct {
	MetricName              string  `json:"metric_name"`
	CurrentValue            float64 `json:"current_value"`
	PreviousValue           float64 `json:"previous_value"`
	ChangePct               float64 `json:"change_pct"`
	Direction               string  `json:"direction"` // "up" | "down" | "flat"
	Signal                  string  `json:"signal"`
	PreviousPeriodAvailable bool    `json:"previous_period_available"`
}

// ROASContext explains whether return-on-ad-spend applies to the
// campaign objective, and why not when it doesn't.
type ROASContext struct {
	Applicable bool   `json:"applicable"`
	Reason     string `json:"reason"`
}

// MetaSummary is the account-level rollup for the analysis window.
type MetaSummary struct {
	TotalSpend        float64     `json:"total_spend"`
	TotalImpressions  int64       `json:"total_impressions"`
	TotalClicks       int64       `json:"total_clicks"`
	TotalConversions  int64       `json:"total_conversions"`
	CampaignObjective string      `json:"campaign_objective"`
	ROASContext       ROASContext `json:"roas_context"`
}

// Snapshot is one analysis result. It is immutable once received: a
// refresh replaces the whole value rather than mutating it.
type Snapshot struct {
	GeneratedAt         string             `json:"generated_at"`
	Currency            string             `json:"currency"`
	DateRangeStart      string             `json:"date_range_start"`
	DateRangeEnd        string             `json:"date_range_end"`
	MetaSummary         MetaSummary        `json:"meta_summary"`
	KPIs                []KPI              `json:"kpis"`
	TrendSignals        []TrendSignal      `json:"trend_signals"`
	ConfidenceScore     float64            `json:"confidence_score"`
	ConfidenceBreakdown map[string]float64 `json:"confidence_breakdown"`
}

// KPI returns the value of the named account-level KPI.
func (s *Snapshot) KPI(name string) (float64, bool) {
	for i := range s.KPIs {
		if s.KPIs[i].Name == name {
			return s.KPIs[i].Value, true
		}
	}
	return 0, false
}

// Trend returns the trend signal for a metric, or nil if the backend
// didn't report one.
func (s *Snapshot) Trend(metric string) *TrendSignal {
	for i := range s.TrendSignals {
		if s.TrendSignals[i].MetricName == metric {
			return &s.TrendSignals[i]
		}
	}
	return nil
}

// CardInsight is the generative commentary for one signal card.
type CardInsight struct {
	OneLiner     string `json:"one_liner"`
	DeepAnalysis string `json:"deep_analysis"`
}

// StrategicMove is a ranked recommendation from the intelligence layer.
type StrategicMove struct {
	Title       string   `json:"title"`
	Reasoning   string   `json:"reasoning"`
	ActionItems []string `json:"action_items"`
	Confidence  string   `json:"confidence"` // "Low" | "Medium" | "High"
}

// Intelligence is the generative enrichment for one Snapshot. It is
// only ever rendered over the Snapshot that requested it.
type Intelligence struct {
	HeroLines      []string               `json:"hero_lines"`
	CardInsights   map[string]CardInsight `json:"card_insights"`
	StrategicMoves []StrategicMove        `json:"strategic_moves"`
}
