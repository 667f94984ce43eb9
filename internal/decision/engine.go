package decision

import (
	"fmt"
	"math"
	"time"
)

// ScoringConfig holds the numeric constants of the scoring algorithm.
// Two historical constant sets exist for the blend ratio; DefaultScoringConfig
// is the canonical one and LegacyScoringConfig preserves the older variant
// for callers that need parity with it.
type ScoringConfig struct {
	// AQIDivisor maps raw AQI onto the 0-100 base scale (AQI/divisor,
	// saturating at MaxNormalizedAQI). Default: 3.
	AQIDivisor float64

	// MaxNormalizedAQI is the saturation ceiling of the normalized AQI.
	// Default: 100.
	MaxNormalizedAQI float64

	// DurationReferenceMinutes is the duration at which the full duration
	// boost applies. Default: 120.
	DurationReferenceMinutes float64

	// DurationMaxBoost is the maximum relative risk increase from duration.
	// Default: 0.3 (+30% at the reference duration).
	DurationMaxBoost float64

	// BlendAQIWeight and BlendPollutantWeight control how the AQI-based
	// score and the pollutant detail score are combined when pollutant
	// samples are supplied. Defaults: 0.7 / 0.3.
	BlendAQIWeight       float64
	BlendPollutantWeight float64

	// HighIntensityOzonePenalty multiplies the ozone term for high-intensity
	// activities, reflecting elevated ventilation rate during exertion.
	// Default: 1.3.
	HighIntensityOzonePenalty float64

	// WindowImprovementRatio gates best-time-window recommendations: a
	// forecast slot is surfaced only when its score is below the current
	// score times this ratio. Default: 0.8 (at least 20% better).
	WindowImprovementRatio float64

	// GoodRangeCap, when positive, caps the final score at this value for
	// readings with AQI at or below GoodRangeAQIMax. Disabled by default;
	// present only for parity with the legacy constant set.
	GoodRangeCap    int
	GoodRangeAQIMax float64
}

// DefaultScoringConfig returns the canonical scoring constants.
func DefaultScoringConfig() ScoringConfig {
	return ScoringConfig{
		AQIDivisor:                3,
		MaxNormalizedAQI:          100,
		DurationReferenceMinutes:  120,
		DurationMaxBoost:          0.3,
		BlendAQIWeight:            0.7,
		BlendPollutantWeight:      0.3,
		HighIntensityOzonePenalty: 1.3,
		WindowImprovementRatio:    0.8,
	}
}

// LegacyScoringConfig returns the older divergent constant set (75/25 blend
// with a good-range cap). Kept as configuration so deployments that shipped
// against that variant can reproduce its output exactly.
func LegacyScoringConfig() ScoringConfig {
	cfg := DefaultScoringConfig()
	cfg.BlendAQIWeight = 0.75
	cfg.BlendPollutantWeight = 0.25
	cfg.GoodRangeCap = 22
	cfg.GoodRangeAQIMax = 50
	return cfg
}

// Config holds configuration for the decision engine.
type Config struct {
	// Catalog is the set of activity templates EvaluateCatalog iterates.
	// Defaults to DefaultCatalog().
	Catalog []ActivityTemplate

	// Weights is the pollutant weight table. Defaults to DefaultWeights().
	Weights WeightTable

	// Scoring holds the algorithm constants. Zero value means
	// DefaultScoringConfig().
	Scoring ScoringConfig
}

// Engine evaluates activity risk. It is stateless apart from its immutable
// configuration, so a single Engine is safe for concurrent use.
type Engine struct {
	catalog []ActivityTemplate
	weights WeightTable
	scoring ScoringConfig
}

// NewEngine creates a decision engine, filling zero-value configuration with
// defaults.
func NewEngine(cfg Config) *Engine {
	catalog := cfg.Catalog
	if catalog == nil {
		catalog = DefaultCatalog()
	}

	weights := cfg.Weights
	if weights.weights == nil {
		weights = DefaultWeights()
	}

	scoring := cfg.Scoring
	if scoring.AQIDivisor == 0 {
		scoring = DefaultScoringConfig()
	}

	return &Engine{
		catalog: catalog,
		weights: weights,
		scoring: scoring,
	}
}

// Catalog returns the engine's activity templates as a copy.
func (e *Engine) Catalog() []ActivityTemplate {
	out := make([]ActivityTemplate, len(e.catalog))
	copy(out, e.catalog)
	return out
}

// Score computes the classified risk score for one activity under the given
// AQI and optional pollutant samples. It never fails: out-of-domain inputs
// saturate or clamp rather than erroring, because upstream AQI values are
// not guaranteed to stay in [0,500].
func (e *Engine) Score(aqi float64, activity ActivityTemplate, pollutants []PollutantSample) RiskScore {
	normalizedAQI := aqi / e.scoring.AQIDivisor
	if normalizedAQI > e.scoring.MaxNormalizedAQI {
		normalizedAQI = e.scoring.MaxNormalizedAQI
	}
	if normalizedAQI < 0 {
		normalizedAQI = 0
	}

	activityMultiplier := 1 + activity.BaseRiskFactor
	durationMultiplier := 1 + float64(activity.DurationMinutes)/e.scoring.DurationReferenceMinutes*e.scoring.DurationMaxBoost

	finalScore := normalizedAQI * activityMultiplier * durationMultiplier

	if len(pollutants) > 0 {
		pollutantRisk := e.pollutantRisk(activity, pollutants)
		finalScore = finalScore*e.scoring.BlendAQIWeight + pollutantRisk*e.scoring.BlendPollutantWeight
	}

	if finalScore > 100 {
		finalScore = 100
	}
	if finalScore < 0 {
		finalScore = 0
	}

	score := int(math.Round(finalScore))
	if e.scoring.GoodRangeCap > 0 && aqi <= e.scoring.GoodRangeAQIMax && score > e.scoring.GoodRangeCap {
		score = e.scoring.GoodRangeCap
	}

	return Classify(score)
}

// pollutantRisk computes the weighted pollutant detail score on the 0-100
// scale. Unknown codes carry weight 0 and drop out of the sum.
func (e *Engine) pollutantRisk(activity ActivityTemplate, pollutants []PollutantSample) float64 {
	var risk float64
	for _, p := range pollutants {
		weight := e.weights.Weight(p.Code)
		if weight == 0 {
			continue
		}

		normalized := e.weights.Normalize(p.Code, p.Concentration.Value)

		// Ozone uptake rises with ventilation rate during exertion.
		if p.Code == "o3" && activity.Intensity == IntensityHigh {
			weight *= e.scoring.HighIntensityOzonePenalty
		}

		risk += weight * normalized
	}
	return risk
}

// FindBestWindow searches an hourly forecast for a slot materially better
// than now for the given activity. It returns nil when the forecast is empty
// or no slot beats the current score by the configured improvement ratio.
// Forecast scores are AQI-only; hourly forecasts carry no pollutant detail.
func (e *Engine) FindBestWindow(forecast []ForecastSlot, activity ActivityTemplate) *TimeWindow {
	if len(forecast) == 0 {
		return nil
	}

	currentAQI, ok := slotAQI(forecast[0])
	if !ok {
		return nil
	}
	currentScore := e.Score(currentAQI, activity, nil)

	var (
		best      ForecastSlot
		bestAQI   float64
		bestScore = -1
	)
	for _, slot := range forecast {
		aqi, ok := slotAQI(slot)
		if !ok {
			continue
		}
		s := e.Score(aqi, activity, nil)
		// Strict comparison keeps the chronologically first slot on ties.
		if bestScore < 0 || s.Score < bestScore {
			best = slot
			bestAQI = aqi
			bestScore = s.Score
		}
	}
	if bestScore < 0 {
		return nil
	}

	if float64(bestScore) >= float64(currentScore.Score)*e.scoring.WindowImprovementRatio {
		return nil
	}

	return &TimeWindow{
		Start:  best.DateTime,
		End:    windowEnd(best.DateTime, activity.DurationMinutes),
		Reason: fmt.Sprintf("預測 AQI 約 %d，比現在更適合%s", int(math.Round(bestAQI)), activity.Name),
	}
}

// slotAQI reads the authoritative AQI of a forecast slot.
func slotAQI(slot ForecastSlot) (float64, bool) {
	if len(slot.Indexes) == 0 {
		return 0, false
	}
	return slot.Indexes[0].AQI, true
}

// windowEnd adds the activity duration to an RFC 3339 timestamp. If the
// timestamp does not parse, the window collapses to its start.
func windowEnd(start string, durationMinutes int) string {
	t, err := time.Parse(time.RFC3339, start)
	if err != nil {
		return start
	}
	return t.Add(time.Duration(durationMinutes) * time.Minute).Format(time.RFC3339)
}
