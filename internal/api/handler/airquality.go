package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/airlens/airlens/internal/airquality"
	"github.com/airlens/airlens/internal/api/models"
	"github.com/airlens/airlens/internal/api/response"
)

// AirQualityHandler handles air quality data endpoints.
type AirQualityHandler struct {
	service *airquality.Service
}

// NewAirQualityHandler creates a new AirQualityHandler.
func NewAirQualityHandler(service *airquality.Service) *AirQualityHandler {
	return &AirQualityHandler{service: service}
}

// GetCurrent handles GET /v1/air-quality/current - cached current conditions.
func (h *AirQualityHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	lat, lon, ok := parseLatLon(w, r)
	if !ok {
		return
	}

	cond, err := h.service.GetConditions(r.Context(), lat, lon)
	if err != nil {
		writeAirQualityError(w, r, err)
		return
	}

	resp := models.CurrentConditions{
		Point:             models.Point{Lat: cond.Lat, Lon: cond.Lon},
		AQI:               cond.AQI,
		Category:          cond.Category,
		DominantPollutant: cond.DominantPollutant,
		FetchedAt:         models.Timestamp(cond.FetchedAt),
		Provider:          cond.Provider,
	}
	for _, p := range cond.Pollutants {
		resp.Pollutants = append(resp.Pollutants, models.PollutantReading{
			Code:        p.Code,
			DisplayName: p.DisplayName,
			Value:       p.Value,
			Units:       p.Units,
		})
	}

	w.Header().Set("Cache-Control", "public, max-age=300")
	response.JSON(w, r, http.StatusOK, resp)
}

// GetForecast handles GET /v1/air-quality/forecast - hourly AQI forecast.
func (h *AirQualityHandler) GetForecast(w http.ResponseWriter, r *http.Request) {
	lat, lon, ok := parseLatLon(w, r)
	if !ok {
		return
	}

	hours := 0
	if raw := r.URL.Query().Get("hours"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 || parsed > 48 {
			response.BadRequest(w, r, "hours must be an integer between 1 and 48", []models.FieldError{
				{Field: "hours", Message: "must be between 1 and 48"},
			})
			return
		}
		hours = parsed
	}

	fc, err := h.service.GetForecast(r.Context(), lat, lon, hours)
	if err != nil {
		writeAirQualityError(w, r, err)
		return
	}

	resp := models.AirQualityForecast{
		Point:     models.Point{Lat: fc.Lat, Lon: fc.Lon},
		Slots:     make([]models.ForecastEntry, 0, len(fc.Slots)),
		Simulated: fc.Simulated,
	}
	for _, s := range fc.Slots {
		resp.Slots = append(resp.Slots, models.ForecastEntry{
			Time: models.Timestamp(s.Time),
			AQI:  s.AQI,
		})
	}

	w.Header().Set("Cache-Control", "public, max-age=600")
	response.JSON(w, r, http.StatusOK, resp)
}

// parseLatLon reads and validates the lat/lon query parameters.
func parseLatLon(w http.ResponseWriter, r *http.Request) (float64, float64, bool) {
	lat, errLat := strconv.ParseFloat(r.URL.Query().Get("lat"), 64)
	lon, errLon := strconv.ParseFloat(r.URL.Query().Get("lon"), 64)
	if errLat != nil || errLon != nil || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
		response.BadRequest(w, r, "valid lat and lon query parameters are required", []models.FieldError{
			{Field: "lat", Message: "must be a number between -90 and 90"},
			{Field: "lon", Message: "must be a number between -180 and 180"},
		})
		return 0, 0, false
	}
	return lat, lon, true
}

func writeAirQualityError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, airquality.ErrNoData):
		response.NotFound(w, r, "no air quality data for this location")
	case errors.Is(err, airquality.ErrProviderUnavailable):
		response.ServiceUnavailable(w, r, "air quality data is temporarily unavailable")
	default:
		response.InternalError(w, r, "failed to fetch air quality data")
	}
}
