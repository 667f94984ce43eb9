package models

// BriefingGenerateRequest is the request body for generating a briefing.
type BriefingGenerateRequest struct {
	Location     *Point `json:"location,omitempty"`
	LocationName string `json:"locationName,omitempty"`
	Locale       string `json:"locale,omitempty"`
}

// BriefingResponse is a generated narrative air quality briefing.
type BriefingResponse struct {
	ID          string    `json:"id"`
	Text        string    `json:"text"`
	Model       string    `json:"model"`
	GeneratedAt Timestamp `json:"generatedAt"`
	Cached      bool      `json:"cached"`
}
