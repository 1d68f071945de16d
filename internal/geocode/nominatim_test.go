package geocode

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/spotfinder/backend/internal/models"
)

func TestParseNominatimItems(t *testing.T) {
	items := []nominatimItem{
		{
			Lat:         "-23.5505",
			Lon:         "-46.6333",
			DisplayName: "São Paulo, Brasil",
			Importance:  0.72,
		},
	}
	res, err := parseNominatimItems(items)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Lat != -23.5505 || res.Lon != -46.6333 {
		t.Fatalf("unexpected coordinates: %+v", res)
	}
	if res.DisplayName != "São Paulo, Brasil" {
		t.Fatalf("unexpected display name: %s", res.DisplayName)
	}
}

func TestParseNominatimItemsEmpty(t *testing.T) {
	if _, err := parseNominatimItems(nil); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestReverseNormalizesTown(t *testing.T) {
	var gotUA string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		if r.URL.Path != "/reverse" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("lat") != "-23.5505" || r.URL.Query().Get("lon") != "-46.6333" {
			t.Errorf("unexpected query %s", r.URL.RawQuery)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"display_name":"x","address":{"town":"Embu das Artes","state":"São Paulo","country":"Brasil"}}`))
	}))
	defer srv.Close()

	g := NewNominatimGeocoder(srv.URL, "test-agent", time.Millisecond)
	info, err := g.Reverse(context.Background(), models.Coordinate{Latitude: -23.5505, Longitude: -46.6333})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.City != "Embu das Artes" {
		t.Fatalf("expected town as city, got %q", info.City)
	}
	if info.Road != RoadFallback {
		t.Fatalf("expected road fallback, got %q", info.Road)
	}
	if gotUA != "test-agent" {
		t.Fatalf("expected user agent header, got %q", gotUA)
	}
}

func TestReverseServiceUnavailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	g := NewNominatimGeocoder(srv.URL, "", time.Millisecond)
	_, err := g.Reverse(context.Background(), models.Coordinate{Latitude: 1, Longitude: 2})
	var gerr *GeocodingError
	if !errors.As(err, &gerr) {
		t.Fatalf("expected GeocodingError, got %v", err)
	}
	if gerr.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("expected status 503, got %d", gerr.StatusCode)
	}
}

func TestReverseTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	base := srv.URL
	srv.Close()

	g := NewNominatimGeocoder(base, "", time.Millisecond)
	_, err := g.Reverse(context.Background(), models.Coordinate{Latitude: 1, Longitude: 2})
	var gerr *GeocodingError
	if !errors.As(err, &gerr) || gerr.StatusCode != 0 {
		t.Fatalf("expected transport GeocodingError, got %v", err)
	}
}

func TestGeocodeCachesQuery(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		_, _ = w.Write([]byte(`[{"lat":"-23.55","lon":"-46.63","display_name":"São Paulo","importance":0.9}]`))
	}))
	defer srv.Close()

	g := NewNominatimGeocoder(srv.URL, "", time.Millisecond)
	for i := 0; i < 2; i++ {
		lat, lon, name, _, err := g.Geocode(context.Background(), "São Paulo")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if lat != -23.55 || lon != -46.63 || name != "São Paulo" {
			t.Fatalf("unexpected result: %f %f %s", lat, lon, name)
		}
	}
	if atomic.LoadInt32(&calls) != 1 {
		t.Fatalf("expected 1 upstream call, got %d", calls)
	}
}

func TestThrottleHonoursContext(t *testing.T) {
	g := NewNominatimGeocoder("http://127.0.0.1:0", "", time.Hour)
	if err := g.throttle(context.Background()); err != nil {
		t.Fatalf("first slot should be free: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := g.throttle(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline exceeded, got %v", err)
	}
}

func TestReverseUnaddressablePointFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"error":"Unable to geocode"}`))
	}))
	defer srv.Close()

	g := NewNominatimGeocoder(srv.URL, "test-agent", time.Millisecond)
	info, err := g.Reverse(context.Background(), models.Coordinate{Latitude: -30, Longitude: -20})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if info.Road != RoadFallback || info.City != "" {
		t.Fatalf("expected fallback address, got %+v", info)
	}
}

func TestParseNominatimItemsZeroResult(t *testing.T) {
	if _, err := parseNominatimItems([]nominatimItem{{Lat: "0", Lon: "0"}}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
