// Package google provides a client for the Google Air Quality API.
package google

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/airlens/airlens/internal/airquality"
	"github.com/airlens/airlens/internal/provider/resilience"
)

const (
	// DefaultBaseURL is the base URL for the Google Air Quality API.
	DefaultBaseURL = "https://airquality.googleapis.com/v1"

	// ProviderName identifies this provider.
	ProviderName = "google-air-quality"
)

// ClientConfig holds configuration for the Google Air Quality client.
type ClientConfig struct {
	// APIKey authenticates requests. Required.
	APIKey string

	// BaseURL is the API base URL (defaults to DefaultBaseURL).
	BaseURL string

	// HTTPClient is the HTTP client to use (must implement HTTPDoer).
	// If nil, a default resilient client will be created.
	HTTPClient HTTPDoer

	// Timeout for individual API requests (default: 10s).
	Timeout time.Duration
}

// HTTPDoer abstracts HTTP request execution.
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is a Google Air Quality API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient HTTPDoer
}

// NewClient creates a new Google Air Quality client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout == 0 {
			timeout = 10 * time.Second
		}
		httpClient = resilience.NewClient(resilience.ClientConfig{
			Name:            ProviderName,
			Timeout:         timeout,
			MaxRetries:      3,
			InitialInterval: 200 * time.Millisecond,
			MaxInterval:     5 * time.Second,
		})
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: httpClient,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// API request/response types (Google Air Quality API shapes).

type lookupRequest struct {
	Location          locationBody `json:"location"`
	ExtraComputations []string     `json:"extraComputations,omitempty"`
	UniversalAQI      bool         `json:"universalAqi"`
}

type forecastRequest struct {
	Location locationBody `json:"location"`
	Period   periodBody   `json:"period"`
}

type locationBody struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

type periodBody struct {
	StartTime string `json:"startTime"`
	EndTime   string `json:"endTime"`
}

type conditionsResponse struct {
	DateTime   string          `json:"dateTime"`
	Indexes    []indexData     `json:"indexes"`
	Pollutants []pollutantData `json:"pollutants"`
}

type forecastResponse struct {
	HourlyForecasts []hourlyForecastData `json:"hourlyForecasts"`
}

type hourlyForecastData struct {
	DateTime string      `json:"dateTime"`
	Indexes  []indexData `json:"indexes"`
}

type indexData struct {
	Code              string  `json:"code"`
	AQI               float64 `json:"aqi"`
	Category          string  `json:"category"`
	DominantPollutant string  `json:"dominantPollutant"`
}

type pollutantData struct {
	Code          string            `json:"code"`
	DisplayName   string            `json:"displayName"`
	Concentration concentrationData `json:"concentration"`
}

type concentrationData struct {
	Value float64 `json:"value"`
	Units string  `json:"units"`
}

// CurrentConditions fetches the current conditions for a location.
func (c *Client) CurrentConditions(ctx context.Context, lat, lon float64) (*airquality.Conditions, error) {
	reqBody := lookupRequest{
		Location:          locationBody{Latitude: lat, Longitude: lon},
		ExtraComputations: []string{"POLLUTANT_CONCENTRATION", "DOMINANT_POLLUTANT_CONCENTRATION"},
		UniversalAQI:      true,
	}

	var result conditionsResponse
	if err := c.post(ctx, "/currentConditions:lookup", reqBody, &result); err != nil {
		return nil, err
	}

	if len(result.Indexes) == 0 {
		return nil, airquality.ErrNoData
	}
	idx := result.Indexes[0]

	pollutants := make([]airquality.PollutantReading, 0, len(result.Pollutants))
	for _, p := range result.Pollutants {
		pollutants = append(pollutants, airquality.PollutantReading{
			Code:        normalizeCode(p.Code),
			DisplayName: p.DisplayName,
			Value:       p.Concentration.Value,
			Units:       p.Concentration.Units,
		})
	}

	return &airquality.Conditions{
		AQI:               idx.AQI,
		Category:          idx.Category,
		DominantPollutant: normalizeCode(idx.DominantPollutant),
		Pollutants:        pollutants,
		Lat:               lat,
		Lon:               lon,
		FetchedAt:         time.Now(),
		Provider:          ProviderName,
	}, nil
}

// HourlyForecast fetches an hourly forecast for a location.
func (c *Client) HourlyForecast(ctx context.Context, lat, lon float64, hours int) (*airquality.Forecast, error) {
	now := time.Now().UTC().Truncate(time.Hour)
	reqBody := forecastRequest{
		Location: locationBody{Latitude: lat, Longitude: lon},
		Period: periodBody{
			StartTime: now.Format(time.RFC3339),
			EndTime:   now.Add(time.Duration(hours) * time.Hour).Format(time.RFC3339),
		},
	}

	var result forecastResponse
	if err := c.post(ctx, "/forecast:lookup", reqBody, &result); err != nil {
		return nil, err
	}

	if len(result.HourlyForecasts) == 0 {
		return nil, airquality.ErrNoData
	}

	slots := make([]airquality.ForecastSlot, 0, len(result.HourlyForecasts))
	for _, h := range result.HourlyForecasts {
		if len(h.Indexes) == 0 {
			continue
		}
		t, err := time.Parse(time.RFC3339, h.DateTime)
		if err != nil {
			continue
		}
		slots = append(slots, airquality.ForecastSlot{
			Time: t,
			AQI:  h.Indexes[0].AQI,
		})
	}
	if len(slots) == 0 {
		return nil, airquality.ErrNoData
	}

	return &airquality.Forecast{
		Lat:       lat,
		Lon:       lon,
		Slots:     slots,
		FetchedAt: time.Now(),
	}, nil
}

// post executes a JSON POST against the API and decodes the response.
func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode request: %w", err)
	}

	url := fmt.Sprintf("%s%s?key=%s", c.baseURL, path, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("call %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return airquality.ErrNoData
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("unexpected status %d from %s", resp.StatusCode, path)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// normalizeCode lowercases provider pollutant codes and strips separators so
// they match the decision engine's weight table keys (e.g. "PM2.5" → "pm25").
func normalizeCode(code string) string {
	code = strings.ToLower(code)
	code = strings.ReplaceAll(code, ".", "")
	code = strings.ReplaceAll(code, "_", "")
	return code
}
