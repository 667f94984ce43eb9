package decision

import (
	"fmt"
	"time"
)

// recommendKey selects a message template by risk level and whether a better
// time window was found. Modeled as a lookup table rather than nested
// conditionals so every combination is visible and testable.
type recommendKey struct {
	level     RiskLevel
	hasWindow bool
}

type recommendTemplate func(d *ActivityDecision) string

var recommendTable = map[recommendKey]recommendTemplate{
	{LevelSafe, false}: func(d *ActivityDecision) string {
		return fmt.Sprintf("%s。現在是進行%s的好時機！", d.RiskScore.Recommendation, d.Activity.Name)
	},
	{LevelSafe, true}: func(d *ActivityDecision) string {
		return fmt.Sprintf("%s。現在是進行%s的好時機！", d.RiskScore.Recommendation, d.Activity.Name)
	},
	{LevelCaution, false}: func(d *ActivityDecision) string {
		return fmt.Sprintf("可以進行%s，但建議縮短時間或配戴口罩", d.Activity.Name)
	},
	{LevelCaution, true}: func(d *ActivityDecision) string {
		return fmt.Sprintf("空氣品質普通，建議改到 %s 進行%s會更好", windowClock(d.BestTimeWindow), d.Activity.Name)
	},
	{LevelUnhealthy, false}: func(d *ActivityDecision) string {
		return fmt.Sprintf("目前不適合%s，建議改為室內活動", d.Activity.Name)
	},
	{LevelUnhealthy, true}: func(d *ActivityDecision) string {
		return fmt.Sprintf("目前空氣品質不佳，強烈建議延後到 %s 再進行%s", windowClock(d.BestTimeWindow), d.Activity.Name)
	},
	{LevelDangerous, false}: func(d *ActivityDecision) string {
		return "空氣品質危險，請留在室內，避免任何戶外活動"
	},
	{LevelDangerous, true}: func(d *ActivityDecision) string {
		// Dangerous conditions always get the stay-indoors message, window or not.
		return "空氣品質危險，請留在室內，避免任何戶外活動"
	},
}

// recommend composes the final advice string for a partially built decision
// (risk score and best-time window already populated).
func recommend(d *ActivityDecision) string {
	tmpl := recommendTable[recommendKey{d.RiskScore.Level, d.BestTimeWindow != nil}]
	return tmpl(d)
}

// windowClock renders the window start as a local HH:MM clock time.
func windowClock(w *TimeWindow) string {
	t, err := time.Parse(time.RFC3339, w.Start)
	if err != nil {
		return w.Start
	}
	return t.Format("15:04")
}

// Decide evaluates one activity: it scores it, searches the forecast for a
// better window, derives the pollutant display breakdown, and composes the
// final recommendation.
func (e *Engine) Decide(activity ActivityTemplate, aqi float64, pollutants []PollutantSample, forecast []ForecastSlot) ActivityDecision {
	d := ActivityDecision{
		Activity:           activity,
		RiskScore:          e.Score(aqi, activity, pollutants),
		PollutantBreakdown: e.breakdown(pollutants),
	}

	if len(forecast) > 0 {
		d.BestTimeWindow = e.FindBestWindow(forecast, activity)
	}

	d.Recommendation = recommend(&d)
	return d
}

// breakdown maps each supplied sample to its static importance weight as a
// percentage. This is a display aid, not a measured share of the score.
func (e *Engine) breakdown(pollutants []PollutantSample) []PollutantContribution {
	out := make([]PollutantContribution, 0, len(pollutants))
	for _, p := range pollutants {
		out = append(out, PollutantContribution{
			Pollutant:    p.Code,
			DisplayName:  p.DisplayName,
			Contribution: e.weights.Weight(p.Code) * 100,
		})
	}
	return out
}

// EvaluateAll applies Decide to each activity independently. The output
// order matches the input order.
func (e *Engine) EvaluateAll(activities []ActivityTemplate, aqi float64, pollutants []PollutantSample, forecast []ForecastSlot) []ActivityDecision {
	decisions := make([]ActivityDecision, 0, len(activities))
	for _, a := range activities {
		decisions = append(decisions, e.Decide(a, aqi, pollutants, forecast))
	}
	return decisions
}

// EvaluateCatalog evaluates every activity in the engine's configured
// catalog.
func (e *Engine) EvaluateCatalog(aqi float64, pollutants []PollutantSample, forecast []ForecastSlot) []ActivityDecision {
	return e.EvaluateAll(e.catalog, aqi, pollutants, forecast)
}
