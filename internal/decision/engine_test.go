package decision_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airlens/airlens/internal/decision"
)

func joggingTemplate() decision.ActivityTemplate {
	return decision.ActivityTemplate{
		ID:              "jogging",
		Name:            "慢跑",
		BaseRiskFactor:  0.7,
		DurationMinutes: 30,
		Intensity:       decision.IntensityHigh,
	}
}

func walkingTemplate() decision.ActivityTemplate {
	return decision.ActivityTemplate{
		ID:              "walking",
		Name:            "散步",
		BaseRiskFactor:  0.3,
		DurationMinutes: 30,
		Intensity:       decision.IntensityLow,
	}
}

func TestEngine_Score_MonotonicInAQI(t *testing.T) {
	engine := decision.NewEngine(decision.Config{})
	activity := joggingTemplate()

	prev := -1
	for aqi := 0.0; aqi <= 900; aqi += 10 {
		got := engine.Score(aqi, activity, nil)
		assert.GreaterOrEqual(t, got.Score, prev, "aqi %.0f", aqi)
		prev = got.Score
	}
}

func TestEngine_Score_DurationEffect(t *testing.T) {
	engine := decision.NewEngine(decision.Config{})

	short := walkingTemplate()
	long := walkingTemplate()
	long.DurationMinutes = 120

	for _, aqi := range []float64{0, 30, 75, 150, 300, 500} {
		shortScore := engine.Score(aqi, short, nil)
		longScore := engine.Score(aqi, long, nil)
		assert.GreaterOrEqual(t, longScore.Score, shortScore.Score, "aqi %.0f", aqi)
	}
}

func TestEngine_Score_PollutantBlendIsNoOpWhenAbsent(t *testing.T) {
	engine := decision.NewEngine(decision.Config{})
	activity := joggingTemplate()

	withNil := engine.Score(120, activity, nil)
	withEmpty := engine.Score(120, activity, []decision.PollutantSample{})

	assert.Equal(t, withNil, withEmpty)
}

func TestEngine_Score_PollutantsShiftScore(t *testing.T) {
	engine := decision.NewEngine(decision.Config{})
	activity := joggingTemplate()

	// A low blended detail score should pull a high AQI-only score down.
	clean := []decision.PollutantSample{
		{Code: "pm25", DisplayName: "PM2.5", Concentration: decision.Concentration{Value: 2, Units: "µg/m³"}},
	}
	base := engine.Score(250, activity, nil)
	blended := engine.Score(250, activity, clean)
	assert.Less(t, blended.Score, base.Score)
}

func TestEngine_Score_UnknownPollutantIgnored(t *testing.T) {
	engine := decision.NewEngine(decision.Config{})
	activity := joggingTemplate()

	known := []decision.PollutantSample{
		{Code: "pm25", Concentration: decision.Concentration{Value: 40, Units: "µg/m³"}},
	}
	withUnknown := append(known, decision.PollutantSample{
		Code:          "nh3",
		Concentration: decision.Concentration{Value: 999, Units: "ppb"},
	})

	assert.Equal(t,
		engine.Score(100, activity, known).Score,
		engine.Score(100, activity, withUnknown).Score,
		"unknown codes carry weight 0 and must not move the score")
}

func TestEngine_Score_HighIntensityOzonePenalty(t *testing.T) {
	engine := decision.NewEngine(decision.Config{})

	highIntensity := joggingTemplate()
	lowIntensity := joggingTemplate()
	lowIntensity.Intensity = decision.IntensityLow

	ozone := []decision.PollutantSample{
		{Code: "o3", DisplayName: "O₃", Concentration: decision.Concentration{Value: 90, Units: "ppb"}},
	}

	high := engine.Score(100, highIntensity, ozone)
	low := engine.Score(100, lowIntensity, ozone)
	assert.Greater(t, high.Score, low.Score)
}

func TestEngine_Score_SaturatesAndClamps(t *testing.T) {
	engine := decision.NewEngine(decision.Config{})
	activity := joggingTemplate()

	extreme := engine.Score(5000, activity, nil)
	assert.Equal(t, 100, extreme.Score)
	assert.Equal(t, decision.LevelDangerous, extreme.Level)

	negative := engine.Score(-50, activity, nil)
	assert.Equal(t, 0, negative.Score)
	assert.Equal(t, decision.LevelSafe, negative.Level)
}

func TestEngine_Score_ZeroAQINotFlooredByMultipliers(t *testing.T) {
	engine := decision.NewEngine(decision.Config{})

	// Multipliers scale the normalized AQI, so a zero reading stays zero
	// regardless of activity and duration.
	got := engine.Score(0, joggingTemplate(), nil)
	assert.Equal(t, 0, got.Score)
}

func TestEngine_Score_LegacyConfigGoodRangeCap(t *testing.T) {
	legacy := decision.NewEngine(decision.Config{Scoring: decision.LegacyScoringConfig()})

	// AQI 50 with jogging multipliers exceeds 22 uncapped; the legacy
	// variant caps good-range readings.
	got := legacy.Score(50, joggingTemplate(), nil)
	assert.Equal(t, 22, got.Score)

	// Above the good range the cap does not apply.
	above := legacy.Score(150, joggingTemplate(), nil)
	assert.Greater(t, above.Score, 22)
}

func TestNewEngine_Defaults(t *testing.T) {
	engine := decision.NewEngine(decision.Config{})
	require.NotEmpty(t, engine.Catalog())

	// Catalog IDs are unique.
	seen := map[string]bool{}
	for _, a := range engine.Catalog() {
		assert.False(t, seen[a.ID], "duplicate activity id %q", a.ID)
		seen[a.ID] = true
		assert.GreaterOrEqual(t, a.BaseRiskFactor, 0.0)
		assert.LessOrEqual(t, a.BaseRiskFactor, 1.0)
		assert.Greater(t, a.DurationMinutes, 0)
	}
}

func TestFindActivity(t *testing.T) {
	catalog := decision.DefaultCatalog()

	jogging, ok := decision.FindActivity(catalog, "jogging")
	require.True(t, ok)
	assert.InDelta(t, 0.7, jogging.BaseRiskFactor, 1e-9)

	_, ok = decision.FindActivity(catalog, "skydiving")
	assert.False(t, ok)
}
