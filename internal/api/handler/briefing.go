package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/airlens/airlens/internal/airquality"
	"github.com/airlens/airlens/internal/api/models"
	"github.com/airlens/airlens/internal/api/response"
	"github.com/airlens/airlens/internal/briefing"
	"github.com/airlens/airlens/internal/decision"
	"github.com/airlens/airlens/internal/geo"
)

// BriefingHandler handles narrative briefing endpoints.
type BriefingHandler struct {
	briefings  *briefing.Service
	airQuality *airquality.Service
	engine     *decision.Engine
	locator    *geo.Locator
}

// NewBriefingHandler creates a new BriefingHandler.
func NewBriefingHandler(briefings *briefing.Service, aq *airquality.Service, engine *decision.Engine, locator *geo.Locator) *BriefingHandler {
	return &BriefingHandler{briefings: briefings, airQuality: aq, engine: engine, locator: locator}
}

// Generate handles POST /v1/briefings:generate - LLM narrative briefing.
// The briefing narrates current conditions plus the evaluated activity
// catalog for the resolved location.
func (h *BriefingHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var input models.BriefingGenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	var clientLat, clientLon *float64
	if input.Location != nil {
		clientLat, clientLon = &input.Location.Lat, &input.Location.Lon
	}
	loc := h.locator.Resolve(r.Context(), clientLat, clientLon, clientIP(r))

	cond, err := h.airQuality.GetConditions(r.Context(), loc.Lat, loc.Lon)
	if err != nil {
		if errors.Is(err, airquality.ErrProviderUnavailable) {
			response.ServiceUnavailable(w, r, "air quality data is temporarily unavailable")
			return
		}
		response.InternalError(w, r, "failed to resolve current conditions")
		return
	}

	var forecast []decision.ForecastSlot
	if fc, err := h.airQuality.GetForecast(r.Context(), loc.Lat, loc.Lon, 0); err == nil {
		forecast = toEngineForecast(fc.Slots)
	}

	decisions := h.engine.EvaluateCatalog(cond.AQI, toEnginePollutants(cond.Pollutants), forecast)

	req := briefing.Request{
		Lat:               loc.Lat,
		Lon:               loc.Lon,
		LocationName:      input.LocationName,
		AQI:               cond.AQI,
		DominantPollutant: cond.DominantPollutant,
		Locale:            input.Locale,
	}
	if req.LocationName == "" {
		req.LocationName = loc.City
	}
	for _, d := range decisions {
		req.Highlights = append(req.Highlights, briefing.ActivityHighlight{
			Name:           d.Activity.Name,
			Level:          string(d.RiskScore.Level),
			Score:          d.RiskScore.Score,
			Recommendation: d.Recommendation,
		})
	}

	brf, err := h.briefings.Generate(r.Context(), req)
	if err != nil {
		if errors.Is(err, briefing.ErrGeneratorUnavailable) {
			response.ServiceUnavailable(w, r, "briefing generation is temporarily unavailable")
			return
		}
		response.InternalError(w, r, "failed to generate briefing")
		return
	}

	resp := models.BriefingResponse{
		ID:          brf.ID,
		Text:        brf.Text,
		Model:       brf.Model,
		GeneratedAt: models.Timestamp(brf.GeneratedAt),
		Cached:      brf.Cached,
	}

	response.JSON(w, r, http.StatusOK, resp)
}
