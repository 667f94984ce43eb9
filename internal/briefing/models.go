// Package briefing produces LLM-generated narrative air quality briefings
// from evaluated activity decisions.
package briefing

import (
	"errors"
	"time"
)

// Briefing errors.
var (
	ErrGeneratorUnavailable = errors.New("briefing generator unavailable")
	ErrEmptyBriefing        = errors.New("generator returned an empty briefing")
)

// Request describes the conditions a briefing should narrate.
type Request struct {
	// Lat/Lon is the location the briefing covers.
	Lat float64
	Lon float64

	// LocationName is an optional display name woven into the prose.
	LocationName string

	// AQI is the current reading.
	AQI float64

	// DominantPollutant is the pollutant driving the AQI, if known.
	DominantPollutant string

	// Highlights summarize the evaluated activities (name, level,
	// recommendation) the briefing should cover.
	Highlights []ActivityHighlight

	// Locale selects the briefing language (default: "zh-TW").
	Locale string
}

// ActivityHighlight is one evaluated activity fed into the prompt.
type ActivityHighlight struct {
	Name           string
	Level          string
	Score          int
	Recommendation string
}

// Briefing is a generated narrative.
type Briefing struct {
	// ID is a short unique identifier for the briefing.
	ID string

	// Text is the narrative prose.
	Text string

	// Model names the generator model used.
	Model string

	// GeneratedAt is when the text was produced.
	GeneratedAt time.Time

	// Cached is true when the briefing was served from cache.
	Cached bool
}
