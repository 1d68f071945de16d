package locationapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/spotfinder/backend/internal/auth"
	"github.com/spotfinder/backend/internal/models"
)

type HTTPSource struct {
	BaseURL string
	Client  *http.Client
}

func (h HTTPSource) client() *http.Client {
	if h.Client == nil {
		return &http.Client{Timeout: 15 * time.Second}
	}
	return h.Client
}

func (h HTTPSource) ListLocations(ctx context.Context, city string) ([]models.Location, error) {
	path := "/api/locations"
	if city = strings.TrimSpace(city); city != "" {
		path += "?" + url.Values{"city": {city}}.Encode()
	}
	var out []models.Location
	if err := h.do(ctx, "list locations", http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.Location{}
	}
	return out, nil
}

func (h HTTPSource) ListCities(ctx context.Context) ([]string, error) {
	var out []string
	if err := h.do(ctx, "list cities", http.MethodGet, "/api/locations/cities", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (h HTTPSource) GetLocation(ctx context.Context, id int64) (models.Location, error) {
	var out models.Location
	err := h.do(ctx, "get location", http.MethodGet, "/api/locations/"+strconv.FormatInt(id, 10), nil, &out)
	var aerr *APIError
	if errors.As(err, &aerr) && aerr.StatusCode == http.StatusNotFound {
		return models.Location{}, fmt.Errorf("%w: %d", ErrLocationNotFound, id)
	}
	if err != nil {
		return models.Location{}, err
	}
	return out, nil
}

func (h HTTPSource) CreateLocation(ctx context.Context, req models.NewLocation) (models.Location, error) {
	var out models.Location
	if err := h.do(ctx, "create location", http.MethodPost, "/api/locations", req, &out); err != nil {
		return models.Location{}, err
	}
	return out, nil
}

// Ping checks that the API answers at all; any HTTP response counts.
func (h HTTPSource) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, strings.TrimRight(h.BaseURL, "/")+"/api/locations/cities", nil)
	if err != nil {
		return err
	}
	resp, err := h.client().Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	return nil
}

func (h HTTPSource) do(ctx context.Context, op string, method string, path string, payload any, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, strings.TrimRight(h.BaseURL, "/")+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id, ok := auth.FromContext(ctx); ok && id.Token != "" {
		req.Header.Set("Authorization", "Bearer "+id.Token)
	}

	resp, err := h.client().Do(req)
	if err != nil {
		return fmt.Errorf("location api %s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return &APIError{Op: op, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(snippet))}
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("location api %s: decode: %w", op, err)
	}
	return nil
}
