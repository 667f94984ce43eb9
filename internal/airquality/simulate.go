package airquality

import (
	"math/rand"
	"time"
)

// SimulatorConfig holds configuration for the forecast simulator.
type SimulatorConfig struct {
	// MaxStepFraction bounds each hourly step relative to the anchor AQI
	// (default: 0.15, i.e. ±15% of the anchor per hour).
	MaxStepFraction float64

	// FloorAQI and CeilAQI clamp the walk (defaults: 5 and 500).
	FloorAQI float64
	CeilAQI  float64

	// Rand is the random source. If nil, a time-seeded source is used.
	// Tests inject a fixed seed for reproducible walks.
	Rand *rand.Rand

	// Now returns the current time; defaults to time.Now. Injected in tests.
	Now func() time.Time
}

// Simulator produces hourly AQI forecasts as a bounded random walk around a
// current reading. It stands in for a real forecast model, which this
// service deliberately does not have.
type Simulator struct {
	cfg SimulatorConfig
}

// NewSimulator creates a forecast simulator, filling zero-value
// configuration with defaults.
func NewSimulator(cfg SimulatorConfig) *Simulator {
	if cfg.MaxStepFraction == 0 {
		cfg.MaxStepFraction = 0.15
	}
	if cfg.FloorAQI == 0 {
		cfg.FloorAQI = 5
	}
	if cfg.CeilAQI == 0 {
		cfg.CeilAQI = 500
	}
	if cfg.Rand == nil {
		cfg.Rand = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Simulator{cfg: cfg}
}

// Forecast generates an hourly forecast of the given length anchored at the
// current AQI. The first slot always equals the anchor so downstream
// best-time-window comparisons treat it as "now".
func (s *Simulator) Forecast(lat, lon, anchorAQI float64, hours int) *Forecast {
	now := s.cfg.Now().Truncate(time.Hour)

	slots := make([]ForecastSlot, 0, hours)
	aqi := anchorAQI
	for i := 0; i < hours; i++ {
		if i > 0 {
			step := (s.cfg.Rand.Float64()*2 - 1) * s.cfg.MaxStepFraction * anchorAQI
			aqi += step
			if aqi < s.cfg.FloorAQI {
				aqi = s.cfg.FloorAQI
			}
			if aqi > s.cfg.CeilAQI {
				aqi = s.cfg.CeilAQI
			}
		}
		slots = append(slots, ForecastSlot{
			Time: now.Add(time.Duration(i) * time.Hour),
			AQI:  aqi,
		})
	}

	return &Forecast{
		Lat:       lat,
		Lon:       lon,
		Slots:     slots,
		FetchedAt: s.cfg.Now(),
		Simulated: true,
	}
}
