package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/airlens/airlens/internal/api/models"
	"github.com/airlens/airlens/internal/api/response"
	"github.com/airlens/airlens/internal/routing"
)

// RouteHandler handles routing endpoints.
type RouteHandler struct {
	service *routing.Service
}

// NewRouteHandler creates a new RouteHandler.
func NewRouteHandler(service *routing.Service) *RouteHandler {
	return &RouteHandler{service: service}
}

// ComputeRoutes handles POST /v1/routes:compute - compute commute route options.
func (h *RouteHandler) ComputeRoutes(w http.ResponseWriter, r *http.Request) {
	var input models.RouteComputeRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return
	}

	if input.Origin == nil || input.Destination == nil {
		response.BadRequest(w, r, "origin and destination are required", []models.FieldError{
			{Field: "origin", Message: "required"},
			{Field: "destination", Message: "required"},
		})
		return
	}

	plans, err := h.service.ComputeRoutes(r.Context(), routing.RouteRequest{
		Origin:      routing.Point{Lat: input.Origin.Lat, Lon: input.Origin.Lon},
		Destination: routing.Point{Lat: input.Destination.Lat, Lon: input.Destination.Lon},
		Mode:        routing.Mode(input.Mode),
	})
	if err != nil {
		switch {
		case errors.Is(err, routing.ErrInvalidCoordinates):
			response.BadRequest(w, r, "coordinates are out of range", nil)
		case errors.Is(err, routing.ErrNoRoute):
			response.NotFound(w, r, "no route found between origin and destination")
		case errors.Is(err, routing.ErrProviderUnavailable):
			response.ServiceUnavailable(w, r, "routing is temporarily unavailable")
		default:
			response.InternalError(w, r, "failed to compute routes")
		}
		return
	}

	mode := input.Mode
	if mode == "" {
		mode = models.ModeWalk
	}

	resp := models.RouteComputeResponse{
		GeneratedAt: models.Timestamp(time.Now()),
		Routes:      make([]models.RouteOption, 0, len(plans)),
	}
	for _, plan := range plans {
		opt := models.RouteOption{
			ID:              "rte_" + uuid.New().String()[:12],
			Mode:            mode,
			DistanceMeters:  plan.Route.DistanceMeters,
			DurationSeconds: plan.Route.DurationSeconds,
			Polyline:        plan.Route.EncodedPolyline,
		}
		if plan.Exposure != nil {
			opt.Exposure = &models.ExposureSummary{
				AverageAQI:      plan.Exposure.AverageAQI,
				PeakAQI:         plan.Exposure.PeakAQI,
				SampleCount:     plan.Exposure.SampleCount,
				SampledPolyline: plan.Exposure.SampledPolyline,
				Score:           plan.Exposure.Score,
				Level:           models.RiskLevel(plan.Exposure.Level),
			}
		}
		resp.Routes = append(resp.Routes, opt)
	}

	w.Header().Set("Cache-Control", "private, max-age=60")
	response.JSON(w, r, http.StatusOK, resp)
}
