package models

// Enums represents the enum values used by the API.
type Enums struct {
	Modes       []Mode      `json:"modes"`
	RiskLevels  []RiskLevel `json:"riskLevels"`
	Intensities []Intensity `json:"intensities"`
	Pollutants  []Pollutant `json:"pollutants"`
}
