package models

// PollutantReading is one measured pollutant in a conditions response.
type PollutantReading struct {
	Code        string  `json:"code"`
	DisplayName string  `json:"displayName"`
	Value       float64 `json:"value"`
	Units       string  `json:"units,omitempty"`
}

// CurrentConditions is the response for the current air quality endpoint.
type CurrentConditions struct {
	Point             Point              `json:"point"`
	AQI               float64            `json:"aqi"`
	Category          string             `json:"category,omitempty"`
	DominantPollutant string             `json:"dominantPollutant,omitempty"`
	Pollutants        []PollutantReading `json:"pollutants,omitempty"`
	FetchedAt         Timestamp          `json:"fetchedAt"`
	Provider          string             `json:"provider"`
}

// ForecastEntry is one hourly slot in a forecast response.
type ForecastEntry struct {
	Time Timestamp `json:"time"`
	AQI  float64   `json:"aqi"`
}

// AirQualityForecast is the response for the forecast endpoint.
type AirQualityForecast struct {
	Point     Point           `json:"point"`
	Slots     []ForecastEntry `json:"slots"`
	Simulated bool            `json:"simulated"`
}
