package decision

// DefaultCatalog returns the built-in activity templates.
// The returned slice is a fresh copy on every call so callers cannot mutate
// the catalog another engine was configured with.
func DefaultCatalog() []ActivityTemplate {
	catalog := []ActivityTemplate{
		{
			ID:              "jogging",
			Name:            "慢跑",
			Icon:            "🏃",
			Description:     "中高強度有氧運動，呼吸量大",
			BaseRiskFactor:  0.7,
			DurationMinutes: 30,
			Intensity:       IntensityHigh,
		},
		{
			ID:              "cycling",
			Name:            "騎自行車",
			Icon:            "🚴",
			Description:     "戶外通勤或運動騎乘",
			BaseRiskFactor:  0.6,
			DurationMinutes: 45,
			Intensity:       IntensityHigh,
		},
		{
			ID:              "walking",
			Name:            "散步",
			Icon:            "🚶",
			Description:     "低強度步行",
			BaseRiskFactor:  0.3,
			DurationMinutes: 30,
			Intensity:       IntensityLow,
		},
		{
			ID:              "outdoor-yoga",
			Name:            "戶外瑜伽",
			Icon:            "🧘",
			Description:     "公園或露台的伸展運動",
			BaseRiskFactor:  0.4,
			DurationMinutes: 60,
			Intensity:       IntensityMedium,
		},
		{
			ID:              "picnic",
			Name:            "野餐",
			Icon:            "🧺",
			Description:     "長時間靜態戶外停留",
			BaseRiskFactor:  0.2,
			DurationMinutes: 120,
			Intensity:       IntensityLow,
		},
		{
			ID:              "kids-play",
			Name:            "兒童戶外遊戲",
			Icon:            "🛝",
			Description:     "孩童對空污較敏感",
			BaseRiskFactor:  0.8,
			DurationMinutes: 60,
			Intensity:       IntensityMedium,
		},
		{
			ID:              "commute",
			Name:            "戶外通勤",
			Icon:            "🚏",
			Description:     "步行或候車的日常通勤",
			BaseRiskFactor:  0.5,
			DurationMinutes: 40,
			Intensity:       IntensityMedium,
		},
	}

	out := make([]ActivityTemplate, len(catalog))
	copy(out, catalog)
	return out
}

// FindActivity returns the template with the given ID from a catalog, or
// false when no template matches.
func FindActivity(catalog []ActivityTemplate, id string) (ActivityTemplate, bool) {
	for _, a := range catalog {
		if a.ID == id {
			return a, true
		}
	}
	return ActivityTemplate{}, false
}
