package models

// ConcentrationInput is a measured pollutant concentration.
type ConcentrationInput struct {
	Value float64 `json:"value" validate:"required,gte=0"`
	Units string  `json:"units,omitempty"`
}

// PollutantInput is a single pollutant reading supplied by the client.
type PollutantInput struct {
	Code          string             `json:"code" validate:"required"`
	DisplayName   string             `json:"displayName,omitempty"`
	Concentration ConcentrationInput `json:"concentration"`
}

// ForecastIndexInput is one AQI index entry within a forecast slot.
type ForecastIndexInput struct {
	AQI float64 `json:"aqi"`
}

// ForecastSlotInput is one hourly forecast entry supplied by the client.
type ForecastSlotInput struct {
	DateTime string               `json:"dateTime" validate:"required"`
	Indexes  []ForecastIndexInput `json:"indexes"`
}

// DecisionEvaluateRequest is the request body for evaluating activity risk.
// Clients either supply an explicit AQI reading or a location; with only a
// location the server resolves current conditions and forecast itself.
type DecisionEvaluateRequest struct {
	Location    *Point              `json:"location,omitempty"`
	AQI         *float64            `json:"aqi,omitempty" validate:"omitempty,gte=0"`
	ActivityIDs []string            `json:"activityIds,omitempty"`
	Pollutants  []PollutantInput    `json:"pollutants,omitempty"`
	Forecast    []ForecastSlotInput `json:"forecast,omitempty"`
}

// Activity describes one activity template in API responses.
type Activity struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Icon            string    `json:"icon"`
	Description     string    `json:"description,omitempty"`
	BaseRiskFactor  float64   `json:"baseRiskFactor"`
	DurationMinutes int       `json:"durationMinutes"`
	Intensity       Intensity `json:"intensity"`
}

// RiskScore is a classified 0-100 risk value.
type RiskScore struct {
	Score          int       `json:"score"`
	Level          RiskLevel `json:"level"`
	Color          string    `json:"color"`
	Label          string    `json:"label"`
	Recommendation string    `json:"recommendation"`
}

// TimeWindow is a forecasted interval judged safer than the present.
type TimeWindow struct {
	Start  string `json:"start"`
	End    string `json:"end"`
	Reason string `json:"reason"`
}

// PollutantContribution is one display-breakdown entry.
type PollutantContribution struct {
	Pollutant    string  `json:"pollutant"`
	DisplayName  string  `json:"displayName"`
	Contribution float64 `json:"contribution"`
}

// ActivityDecision is one evaluated activity in a decision response.
type ActivityDecision struct {
	Activity           Activity                `json:"activity"`
	RiskScore          RiskScore               `json:"riskScore"`
	Recommendation     string                  `json:"recommendation"`
	BestTimeWindow     *TimeWindow             `json:"bestTimeWindow,omitempty"`
	PollutantBreakdown []PollutantContribution `json:"pollutantBreakdown"`
}

// DecisionEvaluateResponse is the response for a batch decision evaluation.
type DecisionEvaluateResponse struct {
	GeneratedAt Timestamp          `json:"generatedAt"`
	Location    *Point             `json:"location,omitempty"`
	AQI         float64            `json:"aqi"`
	Decisions   []ActivityDecision `json:"decisions"`
}

// ActivityCatalog is the response for the activity catalog endpoint.
type ActivityCatalog struct {
	Activities []Activity `json:"activities"`
}
