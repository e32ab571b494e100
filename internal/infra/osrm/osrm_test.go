package osrm

import (
	"context"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/lumeiq-app/lumeiq/internal/domain"
)

func TestRoute_ParsesResponse(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"code":"Ok","routes":[{"distance":5400,"duration":900,"geometry":"abc123"}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	leg, err := c.Route(context.Background(),
		domain.Position{Lat: 12.97, Lng: 77.60},
		domain.Position{Lat: 12.93, Lng: 77.62},
		domain.ModeCar)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.HasPrefix(gotPath, "/route/v1/driving/") {
		t.Errorf("path = %q, want driving profile", gotPath)
	}
	if leg.DistanceKm != 5.4 {
		t.Errorf("distance = %.2f km, want 5.4", leg.DistanceKm)
	}
	if leg.DurationMin != 15 {
		t.Errorf("duration = %.1f min, want 15", leg.DurationMin)
	}
	if leg.Polyline != "abc123" {
		t.Errorf("polyline = %q", leg.Polyline)
	}
}

func TestRoute_TransitModesDropOSRMDuration(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"code":"Ok","routes":[{"distance":10000,"duration":1200,"geometry":""}]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	leg, err := c.Route(context.Background(), domain.Position{}, domain.Position{Lat: 1}, domain.ModeMetro)
	if err != nil {
		t.Fatal(err)
	}
	if leg.DurationMin != 0 {
		t.Errorf("metro duration = %.1f, want 0 (speed table decides)", leg.DurationMin)
	}
	if math.Abs(leg.DistanceKm-10) > 0.001 {
		t.Errorf("distance = %.2f, want 10", leg.DistanceKm)
	}
}

func TestRoute_NoRoute(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"code":"NoRoute","routes":[]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Route(context.Background(), domain.Position{}, domain.Position{Lat: 1}, domain.ModeCycle)
	if !errors.Is(err, domain.ErrNoRoute) {
		t.Errorf("got %v, want ErrNoRoute", err)
	}
}

func TestRoute_ServerDown(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewClient(srv.URL)
	_, err := c.Route(context.Background(), domain.Position{}, domain.Position{Lat: 1}, domain.ModeWalk)
	if !errors.Is(err, domain.ErrRouterOffline) {
		t.Errorf("got %v, want ErrRouterOffline", err)
	}
}
