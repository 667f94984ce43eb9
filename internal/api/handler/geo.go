package handler

import (
	"net"
	"net/http"
	"strconv"

	"github.com/airlens/airlens/internal/api/models"
	"github.com/airlens/airlens/internal/api/response"
	"github.com/airlens/airlens/internal/geo"
)

// GeoHandler handles geolocation endpoints.
type GeoHandler struct {
	locator *geo.Locator
}

// NewGeoHandler creates a new GeoHandler.
func NewGeoHandler(locator *geo.Locator) *GeoHandler {
	return &GeoHandler{locator: locator}
}

// Locate handles GET /v1/geo/locate - resolve the caller's location.
// Optional lat/lon query parameters take precedence; otherwise the
// client IP is looked up, falling back to the configured default.
func (h *GeoHandler) Locate(w http.ResponseWriter, r *http.Request) {
	var clientLat, clientLon *float64

	rawLat := r.URL.Query().Get("lat")
	rawLon := r.URL.Query().Get("lon")
	if rawLat != "" || rawLon != "" {
		lat, errLat := strconv.ParseFloat(rawLat, 64)
		lon, errLon := strconv.ParseFloat(rawLon, 64)
		if errLat != nil || errLon != nil || lat < -90 || lat > 90 || lon < -180 || lon > 180 {
			response.BadRequest(w, r, "lat and lon must both be valid coordinates", []models.FieldError{
				{Field: "lat", Message: "must be a number between -90 and 90"},
				{Field: "lon", Message: "must be a number between -180 and 180"},
			})
			return
		}
		clientLat, clientLon = &lat, &lon
	}

	loc := h.locator.Resolve(r.Context(), clientLat, clientLon, clientIP(r))

	resp := models.GeoLocation{
		Lat:    loc.Lat,
		Lon:    loc.Lon,
		City:   loc.City,
		Source: string(loc.Source),
	}

	response.JSON(w, r, http.StatusOK, resp)
}

// clientIP extracts the caller's IP from RemoteAddr. RealIP middleware has
// already replaced RemoteAddr with the forwarded address when present.
func clientIP(r *http.Request) string {
	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}
