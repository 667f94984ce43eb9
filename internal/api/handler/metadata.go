package handler

import (
	"net/http"

	"github.com/airlens/airlens/internal/api/models"
	"github.com/airlens/airlens/internal/api/response"
)

// MetadataHandler handles metadata endpoints.
type MetadataHandler struct{}

// NewMetadataHandler creates a new MetadataHandler.
func NewMetadataHandler() *MetadataHandler {
	return &MetadataHandler{}
}

// GetEnums handles GET /v1/metadata/enums - get enum values used by the API.
func (h *MetadataHandler) GetEnums(w http.ResponseWriter, r *http.Request) {
	enums := models.Enums{
		Modes: []models.Mode{
			models.ModeWalk,
			models.ModeBicycle,
			models.ModeDrive,
			models.ModeTransit,
		},
		RiskLevels: []models.RiskLevel{
			models.RiskLevelSafe,
			models.RiskLevelCaution,
			models.RiskLevelUnhealthy,
			models.RiskLevelDangerous,
		},
		Intensities: []models.Intensity{
			models.IntensityLow,
			models.IntensityMedium,
			models.IntensityHigh,
		},
		Pollutants: []models.Pollutant{
			models.PollutantPM25,
			models.PollutantPM10,
			models.PollutantO3,
			models.PollutantNO2,
			models.PollutantSO2,
			models.PollutantCO,
		},
	}

	w.Header().Set("Cache-Control", "public, max-age=86400")
	response.JSON(w, r, http.StatusOK, enums)
}
