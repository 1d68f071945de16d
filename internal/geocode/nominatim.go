package geocode

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/spotfinder/backend/internal/models"
)

const (
	defaultNominatimURL = "https://nominatim.openstreetmap.org"
	defaultUserAgent    = "spotfinder-backend/1.0"
)

type NominatimGeocoder struct {
	BaseURL     string
	UserAgent   string
	MinInterval time.Duration
	Client      *http.Client

	mu        sync.Mutex
	lastReqAt time.Time
	cache     map[string]nominatimResult
}

type nominatimResult struct {
	Lat         float64
	Lon         float64
	DisplayName string
	Confidence  float64
}

type nominatimItem struct {
	Lat         string  `json:"lat"`
	Lon         string  `json:"lon"`
	DisplayName string  `json:"display_name"`
	Importance  float64 `json:"importance"`
}

type nominatimReverse struct {
	DisplayName string         `json:"display_name"`
	Address     map[string]any `json:"address"`
}

func NewNominatimGeocoder(baseURL string, userAgent string, minInterval time.Duration) *NominatimGeocoder {
	g := &NominatimGeocoder{BaseURL: baseURL, UserAgent: userAgent, MinInterval: minInterval}
	g.mu.Lock()
	g.setDefaultsLocked()
	g.mu.Unlock()
	return g
}

func (g *NominatimGeocoder) setDefaultsLocked() {
	if g.Client == nil {
		g.Client = &http.Client{Timeout: 10 * time.Second}
	}
	if g.BaseURL == "" {
		g.BaseURL = defaultNominatimURL
	}
	if g.UserAgent == "" {
		g.UserAgent = defaultUserAgent
	}
	if g.MinInterval <= 0 {
		g.MinInterval = time.Second
	}
	if g.cache == nil {
		g.cache = map[string]nominatimResult{}
	}
}

// throttle reserves the next request slot and waits for it.
func (g *NominatimGeocoder) throttle(ctx context.Context) error {
	g.mu.Lock()
	g.setDefaultsLocked()
	next := g.lastReqAt.Add(g.MinInterval)
	if now := time.Now(); next.Before(now) {
		next = now
	}
	g.lastReqAt = next
	g.mu.Unlock()

	wait := time.Until(next)
	if wait <= 0 {
		return nil
	}
	timer := time.NewTimer(wait)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (g *NominatimGeocoder) get(ctx context.Context, endpoint string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", g.UserAgent)
	return g.Client.Do(req)
}

func (g *NominatimGeocoder) Geocode(ctx context.Context, query string) (float64, float64, string, float64, error) {
	g.mu.Lock()
	g.setDefaultsLocked()
	if cached, ok := g.cache[query]; ok {
		g.mu.Unlock()
		return cached.Lat, cached.Lon, cached.DisplayName, cached.Confidence, nil
	}
	g.mu.Unlock()

	if err := g.throttle(ctx); err != nil {
		return 0, 0, "", 0, err
	}

	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("addressdetails", "1")
	params.Set("limit", "1")
	resp, err := g.get(ctx, fmt.Sprintf("%s/search?%s", g.BaseURL, params.Encode()))
	if err != nil {
		return 0, 0, "", 0, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return 0, 0, "", 0, fmt.Errorf("nominatim http error: %s", resp.Status)
	}

	var items []nominatimItem
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return 0, 0, "", 0, err
	}
	result, err := parseNominatimItems(items)
	if err != nil {
		return 0, 0, "", 0, err
	}

	g.mu.Lock()
	g.cache[query] = result
	g.mu.Unlock()

	return result.Lat, result.Lon, result.DisplayName, result.Confidence, nil
}

// Reverse performs a single reverse lookup. It never caches; see SessionCache.
func (g *NominatimGeocoder) Reverse(ctx context.Context, c models.Coordinate) (models.AddressInfo, error) {
	if err := g.throttle(ctx); err != nil {
		return models.AddressInfo{}, &GeocodingError{Coordinate: c, Err: err}
	}

	params := url.Values{}
	params.Set("format", "json")
	params.Set("lat", strconv.FormatFloat(c.Latitude, 'f', -1, 64))
	params.Set("lon", strconv.FormatFloat(c.Longitude, 'f', -1, 64))
	params.Set("addressdetails", "1")
	resp, err := g.get(ctx, fmt.Sprintf("%s/reverse?%s", g.BaseURL, params.Encode()))
	if err != nil {
		return models.AddressInfo{}, &GeocodingError{Coordinate: c, Err: err}
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return models.AddressInfo{}, &GeocodingError{
			Coordinate: c,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("nominatim http error: %s", resp.Status),
		}
	}

	var body nominatimReverse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return models.AddressInfo{}, &GeocodingError{Coordinate: c, StatusCode: resp.StatusCode, Err: err}
	}
	return NormalizeAddress(body.Address), nil
}

func parseNominatimItems(items []nominatimItem) (nominatimResult, error) {
	if len(items) == 0 {
		return nominatimResult{}, ErrNotFound
	}
	lat, err := strconv.ParseFloat(items[0].Lat, 64)
	if err != nil {
		return nominatimResult{}, err
	}
	lon, err := strconv.ParseFloat(items[0].Lon, 64)
	if err != nil {
		return nominatimResult{}, err
	}
	result := nominatimResult{
		Lat:         lat,
		Lon:         lon,
		DisplayName: items[0].DisplayName,
		Confidence:  items[0].Importance,
	}
	if result.Lat == 0 && result.Lon == 0 && result.DisplayName == "" {
		return nominatimResult{}, ErrNotFound
	}
	return result, nil
}
