// Package decision implements the activity risk decision engine: it converts
// an AQI reading, optional pollutant concentrations, and an optional hourly
// forecast into per-activity risk scores, classifications, best-time-window
// recommendations, and advice text.
package decision

// Intensity represents the physical intensity of an activity.
type Intensity string

const (
	IntensityLow    Intensity = "low"
	IntensityMedium Intensity = "medium"
	IntensityHigh   Intensity = "high"
)

// ActivityTemplate describes an outdoor activity the engine can evaluate.
// Templates are static configuration: created once at startup, never mutated.
type ActivityTemplate struct {
	// ID uniquely identifies the activity within a catalog.
	ID string

	// Name is the display name (e.g. "慢跑").
	Name string

	// Icon is an opaque display hint for UI consumers.
	Icon string

	// Description is display metadata; the engine never reads it.
	Description string

	// BaseRiskFactor is the activity-specific risk multiplier contribution,
	// in [0,1]. Higher means the activity is more sensitive to air quality.
	BaseRiskFactor float64

	// DurationMinutes is the typical duration of one session.
	DurationMinutes int

	// Intensity affects pollutant-specific penalties (ozone at high intensity).
	Intensity Intensity
}

// Concentration is a measured pollutant concentration.
type Concentration struct {
	Value float64 `json:"value"`
	Units string  `json:"units"`
}

// PollutantSample is a single pollutant reading supplied by the caller.
// Samples are ephemeral and read-only; the engine never retains them.
type PollutantSample struct {
	// Code identifies the pollutant (e.g. "pm25", "o3"). Unknown codes are
	// scored with weight 0 and a mid-risk normalized concentration.
	Code string

	// DisplayName is the human label for the pollutant.
	DisplayName string

	// Concentration is the measured value with units.
	Concentration Concentration
}

// AQIIndex is a single index entry within a forecast slot. The engine reads
// only the first entry of each slot.
type AQIIndex struct {
	AQI float64 `json:"aqi"`
}

// ForecastSlot is one hourly entry of an AQI forecast. Callers supply slots
// in chronological order; the engine does not sort.
type ForecastSlot struct {
	// DateTime is the slot timestamp in RFC 3339 format.
	DateTime string `json:"dateTime"`

	// Indexes holds AQI index entries; the first entry is authoritative.
	Indexes []AQIIndex `json:"indexes"`
}

// RiskLevel classifies a risk score into one of four bands.
type RiskLevel string

const (
	LevelSafe      RiskLevel = "safe"
	LevelCaution   RiskLevel = "caution"
	LevelUnhealthy RiskLevel = "unhealthy"
	LevelDangerous RiskLevel = "dangerous"
)

// RiskScore is a classified 0-100 risk value. Derived, never persisted.
type RiskScore struct {
	// Score is the final risk value, an integer in [0,100].
	Score int `json:"score"`

	// Level is determined solely by Score via fixed thresholds.
	Level RiskLevel `json:"level"`

	// Color is the display color tied 1:1 to Level.
	Color string `json:"color"`

	// Label is the bilingual human-readable level name.
	Label string `json:"label"`

	// Recommendation is the generic level-based message. Decide overrides it
	// with activity- and window-aware text in ActivityDecision.
	Recommendation string `json:"recommendation"`
}

// TimeWindow describes a forecasted interval judged meaningfully safer than
// the present moment for a given activity.
type TimeWindow struct {
	// Start is the window start in RFC 3339 format.
	Start string `json:"start"`

	// End is Start plus the activity duration.
	End string `json:"end"`

	// Reason cites the forecast AQI behind the recommendation.
	Reason string `json:"reason"`
}

// PollutantContribution is one display-breakdown entry. Contribution is the
// static importance weight of the pollutant code expressed as a percentage,
// not a measured share of the computed score.
type PollutantContribution struct {
	Pollutant    string  `json:"pollutant"`
	DisplayName  string  `json:"displayName"`
	Contribution float64 `json:"contribution"`
}

// ActivityDecision is the engine's output unit: one evaluated activity under
// the supplied conditions. Produced fresh on every call, never cached.
type ActivityDecision struct {
	// Activity is the template that was evaluated.
	Activity ActivityTemplate `json:"activity"`

	// RiskScore is the classified score for Activity under current conditions.
	RiskScore RiskScore `json:"riskScore"`

	// Recommendation is the final activity- and time-window-aware advice.
	Recommendation string `json:"recommendation"`

	// BestTimeWindow is present only when the forecast contains a slot
	// materially better than now.
	BestTimeWindow *TimeWindow `json:"bestTimeWindow,omitempty"`

	// PollutantBreakdown has one entry per supplied pollutant sample, in
	// input order.
	PollutantBreakdown []PollutantContribution `json:"pollutantBreakdown"`
}
