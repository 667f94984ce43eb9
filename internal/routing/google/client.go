// Package google provides a client for the Google Routes API.
package google

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/airlens/airlens/internal/provider/resilience"
	"github.com/airlens/airlens/internal/routing"
)

const (
	// DefaultBaseURL is the base URL for the Google Routes API.
	DefaultBaseURL = "https://routes.googleapis.com"

	// ProviderName identifies this provider.
	ProviderName = "google-routes"

	// fieldMask limits the response to the fields the service reads.
	fieldMask = "routes.distanceMeters,routes.duration,routes.polyline.encodedPolyline"
)

// ClientConfig holds configuration for the Google Routes client.
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

// Client is a Google Routes API client.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient HTTPDoer
}

// NewClient creates a new Google Routes client.
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

// API request/response types (Routes API v2 shapes).

type computeRequest struct {
	Origin      waypointBody `json:"origin"`
	Destination waypointBody `json:"destination"`
	TravelMode  string       `json:"travelMode"`
	// Alternatives give the caller a choice of exposure trade-offs.
	ComputeAlternativeRoutes bool `json:"computeAlternativeRoutes"`
}

type waypointBody struct {
	Location struct {
		LatLng struct {
			Latitude  float64 `json:"latitude"`
			Longitude float64 `json:"longitude"`
		} `json:"latLng"`
	} `json:"location"`
}

type computeResponse struct {
	Routes []routeData `json:"routes"`
}

type routeData struct {
	DistanceMeters int    `json:"distanceMeters"`
	Duration       string `json:"duration"`
	Polyline       struct {
		EncodedPolyline string `json:"encodedPolyline"`
	} `json:"polyline"`
}

// ComputeRoutes computes route alternatives between two points.
func (c *Client) ComputeRoutes(ctx context.Context, req routing.RouteRequest) ([]routing.Route, error) {
	body := computeRequest{
		TravelMode:               string(req.Mode),
		ComputeAlternativeRoutes: true,
	}
	body.Origin.Location.LatLng.Latitude = req.Origin.Lat
	body.Origin.Location.LatLng.Longitude = req.Origin.Lon
	body.Destination.Location.LatLng.Latitude = req.Destination.Lat
	body.Destination.Location.LatLng.Longitude = req.Destination.Lon

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	url := c.baseURL + "/directions/v2:computeRoutes"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("X-Goog-Api-Key", c.apiKey)
	httpReq.Header.Set("X-Goog-FieldMask", fieldMask)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("compute routes: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status %d from routes endpoint", resp.StatusCode)
	}

	var result computeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("decode routes response: %w", err)
	}
	if len(result.Routes) == 0 {
		return nil, routing.ErrNoRoute
	}

	routes := make([]routing.Route, 0, len(result.Routes))
	for _, r := range result.Routes {
		routes = append(routes, routing.Route{
			DistanceMeters:  r.DistanceMeters,
			DurationSeconds: parseDurationSeconds(r.Duration),
			EncodedPolyline: r.Polyline.EncodedPolyline,
		})
	}
	return routes, nil
}

// parseDurationSeconds parses the API's "1234s" duration format.
func parseDurationSeconds(d string) int {
	d = strings.TrimSuffix(d, "s")
	n, err := strconv.Atoi(d)
	if err != nil {
		return 0
	}
	return n
}
