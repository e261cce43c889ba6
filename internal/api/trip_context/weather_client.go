package tripcontext

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/itinera-ai/itinera/internal/types"
)

// WeatherClient fetches the current weather snapshot and active alerts.
// Implementations must be safe for concurrent use.
type WeatherClient interface {
	CurrentConditions(ctx context.Context) (types.WeatherInfo, []types.Alert, error)
}

// HTTPWeatherClient talks to the weather/alert provider's JSON endpoint.
type HTTPWeatherClient struct {
	client  *http.Client
	baseURL string
}

func NewHTTPWeatherClient(baseURL string, timeout time.Duration) *HTTPWeatherClient {
	return &HTTPWeatherClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

type weatherPayload struct {
	Condition       string  `json:"condition"`
	TemperatureC    float64 `json:"temperature_c"`
	UVIndex         float64 `json:"uv_index"`
	AirQualityScore int     `json:"air_quality_score"`
	Alerts          []struct {
		Event    string `json:"event"`
		Severity string `json:"severity"`
	} `json:"alerts"`
}

func (c *HTTPWeatherClient) CurrentConditions(ctx context.Context) (types.WeatherInfo, []types.Alert, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/current", nil)
	if err != nil {
		return types.WeatherInfo{}, nil, fmt.Errorf("failed to build weather request: %w", err)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return types.WeatherInfo{}, nil, fmt.Errorf("weather request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return types.WeatherInfo{}, nil, fmt.Errorf("weather provider returned status %d", resp.StatusCode)
	}

	var payload weatherPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return types.WeatherInfo{}, nil, fmt.Errorf("failed to decode weather payload: %w", err)
	}

	alerts := make([]types.Alert, 0, len(payload.Alerts))
	for _, a := range payload.Alerts {
		alerts = append(alerts, types.Alert{
			Event:    a.Event,
			Severity: parseSeverity(a.Severity),
		})
	}

	return types.WeatherInfo{
		Condition:       payload.Condition,
		TemperatureC:    payload.TemperatureC,
		UVIndex:         payload.UVIndex,
		AirQualityScore: payload.AirQualityScore,
	}, alerts, nil
}

func parseSeverity(s string) types.AlertSeverity {
	switch s {
	case "severe", "extreme":
		return types.SeveritySevere
	case "high", "warning":
		return types.SeverityHigh
	case "watch":
		return types.SeverityWatch
	}
	return types.SeverityAdvisory
}
