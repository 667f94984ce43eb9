// Package handler provides HTTP handlers for the AirLens API.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/airlens/airlens/internal/airquality"
	"github.com/airlens/airlens/internal/api/models"
	"github.com/airlens/airlens/internal/api/response"
	"github.com/airlens/airlens/internal/decision"
)

// DecisionHandler handles activity risk decision endpoints.
type DecisionHandler struct {
	engine     *decision.Engine
	airQuality *airquality.Service
}

// NewDecisionHandler creates a new DecisionHandler.
func NewDecisionHandler(engine *decision.Engine, aq *airquality.Service) *DecisionHandler {
	return &DecisionHandler{engine: engine, airQuality: aq}
}

// Evaluate handles POST /v1/decisions:evaluate - batch activity risk evaluation.
func (h *DecisionHandler) Evaluate(w http.ResponseWriter, r *http.Request) {
	var input models.DecisionEvaluateRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	if input.AQI == nil && input.Location == nil {
		response.BadRequest(w, r, "either aqi or location is required", []models.FieldError{
			{Field: "aqi", Message: "required if location not provided"},
			{Field: "location", Message: "required if aqi not provided"},
		})
		return
	}
	if input.AQI != nil && *input.AQI < 0 {
		response.BadRequest(w, r, "aqi must be non-negative", []models.FieldError{
			{Field: "aqi", Message: "must be >= 0"},
		})
		return
	}

	pollutants := toPollutantSamples(input.Pollutants)
	forecast := toForecastSlots(input.Forecast)

	aqi, ok := h.resolveAQI(w, r, &input, &pollutants, &forecast)
	if !ok {
		return
	}

	activities, ok := h.selectActivities(w, r, input.ActivityIDs)
	if !ok {
		return
	}

	decisions := h.engine.EvaluateAll(activities, aqi, pollutants, forecast)

	resp := models.DecisionEvaluateResponse{
		GeneratedAt: models.Timestamp(time.Now()),
		Location:    input.Location,
		AQI:         aqi,
		Decisions:   make([]models.ActivityDecision, 0, len(decisions)),
	}
	for i := range decisions {
		resp.Decisions = append(resp.Decisions, toAPIDecision(decisions[i]))
	}

	w.Header().Set("Cache-Control", "private, max-age=60")
	response.JSON(w, r, http.StatusOK, resp)
}

// ListActivities handles GET /v1/decisions/activities - activity catalog.
func (h *DecisionHandler) ListActivities(w http.ResponseWriter, r *http.Request) {
	catalog := h.engine.Catalog()

	resp := models.ActivityCatalog{
		Activities: make([]models.Activity, 0, len(catalog)),
	}
	for i := range catalog {
		resp.Activities = append(resp.Activities, toAPIActivity(catalog[i]))
	}

	w.Header().Set("Cache-Control", "public, max-age=3600")
	response.JSON(w, r, http.StatusOK, resp)
}

// resolveAQI returns the AQI to score against. An explicit reading wins; with
// only a location, current conditions and forecast are resolved server-side.
func (h *DecisionHandler) resolveAQI(w http.ResponseWriter, r *http.Request, input *models.DecisionEvaluateRequest, pollutants *[]decision.PollutantSample, forecast *[]decision.ForecastSlot) (float64, bool) {
	if input.AQI != nil {
		return *input.AQI, true
	}

	if h.airQuality == nil {
		response.ServiceUnavailable(w, r, "air quality lookup is not configured")
		return 0, false
	}

	cond, err := h.airQuality.GetConditions(r.Context(), input.Location.Lat, input.Location.Lon)
	if err != nil {
		if errors.Is(err, airquality.ErrProviderUnavailable) {
			response.ServiceUnavailable(w, r, "air quality data is temporarily unavailable")
			return 0, false
		}
		response.InternalError(w, r, "failed to resolve current conditions")
		return 0, false
	}

	if len(*pollutants) == 0 {
		*pollutants = toEnginePollutants(cond.Pollutants)
	}

	if len(*forecast) == 0 {
		fc, err := h.airQuality.GetForecast(r.Context(), input.Location.Lat, input.Location.Lon, 0)
		if err == nil {
			*forecast = toEngineForecast(fc.Slots)
		}
	}

	return cond.AQI, true
}

// selectActivities resolves the requested activity subset, defaulting to the
// whole catalog. Order of requested IDs is preserved.
func (h *DecisionHandler) selectActivities(w http.ResponseWriter, r *http.Request, ids []string) ([]decision.ActivityTemplate, bool) {
	catalog := h.engine.Catalog()
	if len(ids) == 0 {
		return catalog, true
	}

	selected := make([]decision.ActivityTemplate, 0, len(ids))
	for _, id := range ids {
		tpl, ok := decision.FindActivity(catalog, id)
		if !ok {
			response.NotFound(w, r, "unknown activity: "+id)
			return nil, false
		}
		selected = append(selected, tpl)
	}
	return selected, true
}

func toPollutantSamples(inputs []models.PollutantInput) []decision.PollutantSample {
	if len(inputs) == 0 {
		return nil
	}
	samples := make([]decision.PollutantSample, 0, len(inputs))
	for _, in := range inputs {
		samples = append(samples, decision.PollutantSample{
			Code:        in.Code,
			DisplayName: in.DisplayName,
			Concentration: decision.Concentration{
				Value: in.Concentration.Value,
				Units: in.Concentration.Units,
			},
		})
	}
	return samples
}

func toForecastSlots(inputs []models.ForecastSlotInput) []decision.ForecastSlot {
	if len(inputs) == 0 {
		return nil
	}
	slots := make([]decision.ForecastSlot, 0, len(inputs))
	for _, in := range inputs {
		slot := decision.ForecastSlot{DateTime: in.DateTime}
		for _, idx := range in.Indexes {
			slot.Indexes = append(slot.Indexes, decision.AQIIndex{AQI: idx.AQI})
		}
		slots = append(slots, slot)
	}
	return slots
}

func toEnginePollutants(readings []airquality.PollutantReading) []decision.PollutantSample {
	if len(readings) == 0 {
		return nil
	}
	samples := make([]decision.PollutantSample, 0, len(readings))
	for _, p := range readings {
		samples = append(samples, decision.PollutantSample{
			Code:        p.Code,
			DisplayName: p.DisplayName,
			Concentration: decision.Concentration{
				Value: p.Value,
				Units: p.Units,
			},
		})
	}
	return samples
}

func toEngineForecast(slots []airquality.ForecastSlot) []decision.ForecastSlot {
	if len(slots) == 0 {
		return nil
	}
	out := make([]decision.ForecastSlot, 0, len(slots))
	for _, s := range slots {
		out = append(out, decision.ForecastSlot{
			DateTime: s.Time.Format(time.RFC3339),
			Indexes:  []decision.AQIIndex{{AQI: s.AQI}},
		})
	}
	return out
}

func toAPIActivity(tpl decision.ActivityTemplate) models.Activity {
	return models.Activity{
		ID:              tpl.ID,
		Name:            tpl.Name,
		Icon:            tpl.Icon,
		Description:     tpl.Description,
		BaseRiskFactor:  tpl.BaseRiskFactor,
		DurationMinutes: tpl.DurationMinutes,
		Intensity:       models.Intensity(tpl.Intensity),
	}
}

func toAPIDecision(d decision.ActivityDecision) models.ActivityDecision {
	out := models.ActivityDecision{
		Activity: toAPIActivity(d.Activity),
		RiskScore: models.RiskScore{
			Score:          d.RiskScore.Score,
			Level:          models.RiskLevel(d.RiskScore.Level),
			Color:          d.RiskScore.Color,
			Label:          d.RiskScore.Label,
			Recommendation: d.RiskScore.Recommendation,
		},
		Recommendation:     d.Recommendation,
		PollutantBreakdown: make([]models.PollutantContribution, 0, len(d.PollutantBreakdown)),
	}
	if d.BestTimeWindow != nil {
		out.BestTimeWindow = &models.TimeWindow{
			Start:  d.BestTimeWindow.Start,
			End:    d.BestTimeWindow.End,
			Reason: d.BestTimeWindow.Reason,
		}
	}
	for _, c := range d.PollutantBreakdown {
		out.PollutantBreakdown = append(out.PollutantBreakdown, models.PollutantContribution{
			Pollutant:    c.Pollutant,
			DisplayName:  c.DisplayName,
			Contribution: c.Contribution,
		})
	}
	return out
}
