package decision

// levelBand describes one classification band.
type levelBand struct {
	min            int
	level          RiskLevel
	color          string
	label          string
	recommendation string
}

// Classification bands, lower bound inclusive. Scores must already be
// clamped to [0,100] by the caller.
var levelBands = []levelBand{
	{75, LevelDangerous, "#ef4444", "危險/Dangerous", "空氣品質危險，請留在室內並關閉門窗"},
	{50, LevelUnhealthy, "#f97316", "不宜/Unhealthy", "空氣品質不佳，不建議進行戶外活動"},
	{25, LevelCaution, "#eab308", "注意/Caution", "空氣品質普通，敏感族群請注意身體狀況"},
	{0, LevelSafe, "#22c55e", "安全/Safe", "空氣品質良好，適合戶外活動"},
}

// Classify maps an integer score in [0,100] to its risk level, display
// color, label, and generic recommendation. Scores outside [0,100] are a
// caller contract violation; the caller clamps before classifying.
func Classify(score int) RiskScore {
	for _, b := range levelBands {
		if score >= b.min {
			return RiskScore{
				Score:          score,
				Level:          b.level,
				Color:          b.color,
				Label:          b.label,
				Recommendation: b.recommendation,
			}
		}
	}

	// Unreachable for clamped input; classify negative scores as safe so the
	// function stays total.
	b := levelBands[len(levelBands)-1]
	return RiskScore{
		Score:          score,
		Level:          b.level,
		Color:          b.color,
		Label:          b.label,
		Recommendation: b.recommendation,
	}
}
