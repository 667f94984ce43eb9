package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/airlens/airlens/internal/api/models"
	"github.com/airlens/airlens/internal/api/response"
)

// ReadinessProbe reports whether a named dependency is ready.
type ReadinessProbe struct {
	Name  string
	Check func(ctx context.Context) error
}

// OpsHandler handles operational endpoints.
type OpsHandler struct {
	version   string
	buildTime string
	probes    []ReadinessProbe
}

// NewOpsHandler creates a new OpsHandler.
func NewOpsHandler(version, buildTime string, probes ...ReadinessProbe) *OpsHandler {
	return &OpsHandler{
		version:   version,
		buildTime: buildTime,
		probes:    probes,
	}
}

// HealthCheck handles GET /v1/ops/health - liveness check.
func (h *OpsHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	health := models.Health{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
		Details: map[string]interface{}{
			"version":   h.version,
			"buildTime": h.buildTime,
		},
	}
	response.JSON(w, r, http.StatusOK, health)
}

// ReadinessCheck handles GET /v1/ops/ready - readiness check.
// Runs each configured probe; any failure degrades the overall status.
func (h *OpsHandler) ReadinessCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	ready := models.Readiness{
		Status: models.HealthStatusOK,
		Time:   models.Timestamp(time.Now()),
	}

	for _, probe := range h.probes {
		status := models.ProviderStatus{
			Provider: probe.Name,
			Status:   models.HealthStatusOK,
		}
		if err := probe.Check(ctx); err != nil {
			msg := err.Error()
			status.Status = models.HealthStatusFail
			status.Message = &msg
			ready.Status = models.HealthStatusDegraded
		}
		ready.Providers = append(ready.Providers, status)
	}

	code := http.StatusOK
	if ready.Status != models.HealthStatusOK {
		code = http.StatusServiceUnavailable
	}
	response.JSON(w, r, code, ready)
}
