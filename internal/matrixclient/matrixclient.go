// Package matrixclient fetches duration/cost/distance matrices from an
// external routing-engine HTTP endpoint, rate-limited against the
// provider's request quota.
package matrixclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"gpsnav/internal/routing"
)

// Client calls an external matrix provider over HTTP, never exceeding rps
// requests per second.
type Client struct {
	baseURL string
	http    *http.Client
	limiter *rate.Limiter
}

// New returns a Client targeting baseURL, limited to rps requests/second
// with a burst of one.
func New(baseURL string, rps int) *Client {
	if rps <= 0 {
		rps = 1
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(rate.Limit(rps), 1),
	}
}

type coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type matrixRequest struct {
	Profile     string       `json:"profile"`
	Coordinates []coordinate `json:"coordinates"`
}

type matrixResponse struct {
	Durations [][]int64 `json:"durations"`
	Costs     [][]int64 `json:"costs"`
	Distances [][]int64 `json:"distances"`
}

// Fetch requests the duration/cost/distance matrices for profile over the
// given coordinates, blocking on the rate limiter before dialing out.
func (c *Client) Fetch(ctx context.Context, profile string, lats, lngs []float64) (duration, cost, distance routing.Matrix, err error) {
	if len(lats) != len(lngs) {
		return routing.Matrix{}, routing.Matrix{}, routing.Matrix{}, fmt.Errorf("matrixclient: %d lats but %d lngs", len(lats), len(lngs))
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return routing.Matrix{}, routing.Matrix{}, routing.Matrix{}, err
	}

	coords := make([]coordinate, len(lats))
	for i := range lats {
		coords[i] = coordinate{Lat: lats[i], Lng: lngs[i]}
	}
	body, err := json.Marshal(matrixRequest{Profile: profile, Coordinates: coords})
	if err != nil {
		return routing.Matrix{}, routing.Matrix{}, routing.Matrix{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/matrix", bytes.NewReader(body))
	if err != nil {
		return routing.Matrix{}, routing.Matrix{}, routing.Matrix{}, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return routing.Matrix{}, routing.Matrix{}, routing.Matrix{}, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return routing.Matrix{}, routing.Matrix{}, routing.Matrix{}, fmt.Errorf("matrixclient: provider returned %d", resp.StatusCode)
	}

	var out matrixResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return routing.Matrix{}, routing.Matrix{}, routing.Matrix{}, err
	}

	n := len(coords)
	duration = matrixFromRows(n, out.Durations)
	cost = matrixFromRows(n, out.Costs)
	distance = matrixFromRows(n, out.Distances)
	return duration, cost, distance, nil
}

func matrixFromRows(n int, rows [][]int64) routing.Matrix {
	m := routing.NewMatrix(n)
	for i := 0; i < n && i < len(rows); i++ {
		for j := 0; j < n && j < len(rows[i]); j++ {
			m.Set(i, j, rows[i][j])
		}
	}
	return m
}
