package decision

// WeightTable maps pollutant codes to their relative health-impact weight
// and the concentration divisor used to normalize raw readings.
type WeightTable struct {
	weights  map[string]float64
	divisors map[string]float64
}

// Normalization fallback for pollutants without a known health threshold.
const defaultNormalizedConcentration = 0.5

// DefaultWeights returns the built-in pollutant weight table.
// Weights reflect relative health impact; divisors are the concentration
// levels at which a pollutant is considered fully unhealthy.
func DefaultWeights() WeightTable {
	return WeightTable{
		weights: map[string]float64{
			"pm25": 0.30,
			"pm10": 0.20,
			"o3":   0.25,
			"no2":  0.10,
			"so2":  0.08,
			"co":   0.07,
		},
		divisors: map[string]float64{
			"pm25": 75,
			"pm10": 150,
			"o3":   100,
		},
	}
}

// Weight returns the relative health-impact weight for a pollutant code.
// Unknown codes return 0 and are thereby ignored in the weighted sum.
func (t WeightTable) Weight(code string) float64 {
	return t.weights[code]
}

// Normalize maps a raw concentration onto a 0-100 scale using the
// pollutant's health-threshold divisor. Codes without a divisor are assumed
// mid-risk regardless of the reading.
func (t WeightTable) Normalize(code string, value float64) float64 {
	d, ok := t.divisors[code]
	if !ok {
		return defaultNormalizedConcentration * 100
	}
	n := value / d * 100
	if n > 100 {
		n = 100
	}
	if n < 0 {
		n = 0
	}
	return n
}

// Codes returns the pollutant codes with a non-zero weight.
func (t WeightTable) Codes() []string {
	codes := make([]string, 0, len(t.weights))
	for code := range t.weights {
		codes = append(codes, code)
	}
	return codes
}
