// Package osrm implements the routing collaborator against an OSRM HTTP
// endpoint (the public demo server by default).
package osrm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/lumeiq-app/lumeiq/internal/domain"
)

// DefaultBaseURL is the public OSRM demo server.
const DefaultBaseURL = "https://router.project-osrm.org"

// profiles maps transport modes to OSRM routing profiles. Bus and metro
// ride the road network, so they share the driving profile for geometry;
// their durations come from the emission table's average speeds instead.
var profiles = map[domain.TransportMode]string{
	domain.ModeCar:       "driving",
	domain.ModeMotorbike: "driving",
	domain.ModeBus:       "driving",
	domain.ModeMetro:     "driving",
	domain.ModeCycle:     "cycling",
	domain.ModeWalk:      "foot",
}

// ownDuration marks the modes whose OSRM duration is trustworthy. Shared
// and rail modes get speed-table durations at the call site.
var ownDuration = map[domain.TransportMode]bool{
	domain.ModeCar:       true,
	domain.ModeMotorbike: true,
	domain.ModeCycle:     true,
	domain.ModeWalk:      true,
}

// Client talks to an OSRM server. Implements domain.Router.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a client for the given base URL ("" uses the public
// demo server).
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type routeResponse struct {
	Code   string `json:"code"`
	Routes []struct {
		Distance float64 `json:"distance"` // meters
		Duration float64 `json:"duration"` // seconds
		Geometry string  `json:"geometry"`
	} `json:"routes"`
}

// Route fetches the route for one mode. ErrNoRoute when OSRM finds none,
// ErrRouterOffline on transport failure.
func (c *Client) Route(ctx context.Context, from, to domain.Position, mode domain.TransportMode) (*domain.RouteLeg, error) {
	profile, ok := profiles[mode]
	if !ok {
		return nil, fmt.Errorf("%w: unsupported mode %q", domain.ErrNoRoute, mode)
	}

	url := fmt.Sprintf("%s/route/v1/%s/%f,%f;%f,%f?overview=full&geometries=polyline",
		c.baseURL, profile, from.Lng, from.Lat, to.Lng, to.Lat)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build route request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRouterOffline, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: status %d: %s", domain.ErrRouterOffline, resp.StatusCode, body)
	}

	var rr routeResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		return nil, fmt.Errorf("decode route response: %w", err)
	}
	if rr.Code != "Ok" || len(rr.Routes) == 0 {
		return nil, fmt.Errorf("%w: %s → %s by %s", domain.ErrNoRoute, format(from), format(to), mode)
	}

	r := rr.Routes[0]
	leg := &domain.RouteLeg{
		DistanceKm: r.Distance / 1000,
		Polyline:   r.Geometry,
	}
	if ownDuration[mode] {
		leg.DurationMin = r.Duration / 60
	}
	return leg, nil
}

func format(p domain.Position) string {
	return fmt.Sprintf("%.4f,%.4f", p.Lat, p.Lng)
}
