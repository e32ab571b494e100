// Package nominatim implements reverse geocoding against a Nominatim
// endpoint. Failures are the caller's cue to fall back to raw coordinates.
package nominatim

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/lumeiq-app/lumeiq/internal/domain"
)

// DefaultBaseURL is the public Nominatim instance.
const DefaultBaseURL = "https://nominatim.openstreetmap.org"

// Client talks to a Nominatim server. Implements domain.Geocoder.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client
}

// NewClient creates a client. Nominatim's usage policy requires an
// identifying User-Agent.
func NewClient(baseURL, userAgent string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if userAgent == "" {
		userAgent = "lumeiq/1.0"
	}
	return &Client{
		baseURL:   baseURL,
		userAgent: userAgent,
		http:      &http.Client{Timeout: 8 * time.Second},
	}
}

type reverseResponse struct {
	DisplayName string `json:"display_name"`
	Address     struct {
		Road    string `json:"road"`
		Suburb  string `json:"suburb"`
		City    string `json:"city"`
		Town    string `json:"town"`
		Village string `json:"village"`
	} `json:"address"`
}

// ReverseGeocode resolves a position to a short human label, preferring
// "road, suburb" over the full display name.
func (c *Client) ReverseGeocode(ctx context.Context, pos domain.Position) (string, error) {
	q := url.Values{}
	q.Set("lat", fmt.Sprintf("%f", pos.Lat))
	q.Set("lon", fmt.Sprintf("%f", pos.Lng))
	q.Set("format", "jsonv2")
	q.Set("zoom", "16")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return "", fmt.Errorf("build reverse request: %w", err)
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("reverse geocode: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("reverse geocode: status %d", resp.StatusCode)
	}

	var rr reverseResponse
	if err := json.NewDecoder(resp.Body).Decode(&rr); err != nil {
		return "", fmt.Errorf("decode reverse response: %w", err)
	}

	var parts []string
	if rr.Address.Road != "" {
		parts = append(parts, rr.Address.Road)
	}
	locality := rr.Address.Suburb
	if locality == "" {
		locality = firstNonEmpty(rr.Address.City, rr.Address.Town, rr.Address.Village)
	}
	if locality != "" {
		parts = append(parts, locality)
	}
	if len(parts) > 0 {
		return strings.Join(parts, ", "), nil
	}
	if rr.DisplayName != "" {
		return rr.DisplayName, nil
	}
	return "", fmt.Errorf("reverse geocode: empty result")
}

func firstNonEmpty(ss ...string) string {
	for _, s := range ss {
		if s != "" {
			return s
		}
	}
	return ""
}
