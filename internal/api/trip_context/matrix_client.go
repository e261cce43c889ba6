package tripcontext

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/itinera-ai/itinera/internal/types"
)

// MatrixClient fetches directional travel times between attraction pairs.
// The returned matrix may be sparse; absent pairs are not an error.
type MatrixClient interface {
	TravelTimes(ctx context.Context, points []MatrixPoint) (types.TravelTimeMatrix, error)
}

// MatrixPoint identifies one location sent to the traffic provider.
type MatrixPoint struct {
	ID        string  `json:"id"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// HTTPMatrixClient talks to the distance-matrix provider.
type HTTPMatrixClient struct {
	client  *http.Client
	baseURL string
}

func NewHTTPMatrixClient(baseURL string, timeout time.Duration) *HTTPMatrixClient {
	return &HTTPMatrixClient{
		client:  &http.Client{Timeout: timeout},
		baseURL: baseURL,
	}
}

type matrixPayload struct {
	// Durations maps origin id -> destination id -> minutes.
	Durations map[string]map[string]int `json:"durations"`
}

func (c *HTTPMatrixClient) TravelTimes(ctx context.Context, points []MatrixPoint) (types.TravelTimeMatrix, error) {
	if len(points) < 2 {
		return types.TravelTimeMatrix{}, nil
	}

	body, err := json.Marshal(map[string]interface{}{"points": points, "profile": "driving"})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal matrix request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/matrix", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build matrix request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("matrix request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("matrix provider returned status %d", resp.StatusCode)
	}

	var payload matrixPayload
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode matrix payload: %w", err)
	}

	matrix := make(types.TravelTimeMatrix, len(payload.Durations))
	for from, row := range payload.Durations {
		for to, mins := range row {
			if mins <= 0 {
				continue
			}
			if matrix[from] == nil {
				matrix[from] = make(map[string]int, len(row))
			}
			matrix[from][to] = mins
		}
	}
	return matrix, nil
}
