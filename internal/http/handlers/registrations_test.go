package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	"github.com/spotfinder/backend/internal/geocode"
	"github.com/spotfinder/backend/internal/locationapi"
	"github.com/spotfinder/backend/internal/models"
	"github.com/spotfinder/backend/internal/registration"
)

func decodeSnapshot(t *testing.T, body []byte) registration.Snapshot {
	t.Helper()
	var snap registration.Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		t.Fatalf("decode snapshot: %v (%s)", err, body)
	}
	return snap
}

func TestRegistrationRequiresToken(t *testing.T) {
	r := newTestRouter(newTestHandler(locationapi.NewMemorySource(), &stubReverser{}))
	w := doJSON(t, r, http.MethodPost, "/api/registrations", "", nil)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestRegistrationHappyPathWithConfirmation(t *testing.T) {
	store := locationapi.NewMemorySource(models.Location{ID: 1, Name: "Sé crew", City: "São Paulo", Latitude: -23.5510, Longitude: -46.6330})
	rev := &stubReverser{info: models.AddressInfo{Road: "Praça da Sé", City: "São Paulo", State: "SP", Country: "Brasil"}}
	r := newTestRouter(newTestHandler(store, rev))
	authz := bearer(t, "uid-1")

	w := doJSON(t, r, http.MethodPost, "/api/registrations", authz, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("start: expected 201, got %d %s", w.Code, w.Body.String())
	}
	id := decodeSnapshot(t, w.Body.Bytes()).ID
	base := "/api/registrations/" + id

	w = doJSON(t, r, http.MethodPost, base+"/selection", authz, map[string]float64{"latitude": -23.5505, "longitude": -46.6333})
	if w.Code != http.StatusOK {
		t.Fatalf("select: expected 200, got %d %s", w.Code, w.Body.String())
	}
	snap := decodeSnapshot(t, w.Body.Bytes())
	if snap.State != registration.StateReady || snap.Draft.Address != "Praça da Sé" || len(snap.Nearby) != 1 {
		t.Fatalf("unexpected snapshot: %+v", snap)
	}

	w = doJSON(t, r, http.MethodPost, base+"/submit", authz, map[string]bool{"confirmed": true})
	if w.Code != http.StatusBadRequest || decodeError(t, w).Code != "VALIDATION_ERROR" {
		t.Fatalf("expected name validation error, got %d %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodPatch, base+"/draft", authz, map[string]string{"name": "Roda da Sé", "whatsapp": " +5511999 "})
	if w.Code != http.StatusOK {
		t.Fatalf("draft: expected 200, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodPost, base+"/submit", authz, nil)
	if w.Code != http.StatusConflict {
		t.Fatalf("expected 409, got %d %s", w.Code, w.Body.String())
	}
	if e := decodeError(t, w); e.Code != "CONFIRMATION_REQUIRED" {
		t.Fatalf("unexpected error: %+v", e)
	}

	w = doJSON(t, r, http.MethodPost, base+"/submit", authz, map[string]bool{"confirmed": true})
	if w.Code != http.StatusCreated {
		t.Fatalf("submit: expected 201, got %d %s", w.Code, w.Body.String())
	}
	snap = decodeSnapshot(t, w.Body.Bytes())
	if snap.State != registration.StateSubmitted || snap.Created == nil || snap.Created.ContactHandle != "+5511999" {
		t.Fatalf("unexpected submitted snapshot: %+v", snap)
	}

	w = doJSON(t, r, http.MethodGet, base, authz, nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected submitted flow gone, got %d", w.Code)
	}
}

func TestRegistrationGeocodingFailure(t *testing.T) {
	rev := &stubReverser{err: &geocode.GeocodingError{StatusCode: 503, Err: errors.New("unavailable")}}
	r := newTestRouter(newTestHandler(locationapi.NewMemorySource(), rev))
	authz := bearer(t, "uid-1")

	w := doJSON(t, r, http.MethodPost, "/api/registrations", authz, nil)
	base := "/api/registrations/" + decodeSnapshot(t, w.Body.Bytes()).ID

	w = doJSON(t, r, http.MethodPost, base+"/selection", authz, map[string]float64{"latitude": -23.55, "longitude": -46.63})
	if w.Code != http.StatusBadGateway || decodeError(t, w).Code != "GEOCODING_ERROR" {
		t.Fatalf("expected 502 GEOCODING_ERROR, got %d %s", w.Code, w.Body.String())
	}

	w = doJSON(t, r, http.MethodGet, base, authz, nil)
	snap := decodeSnapshot(t, w.Body.Bytes())
	if snap.State != registration.StateError || snap.Draft.Address != "" {
		t.Fatalf("unexpected snapshot after failure: %+v", snap)
	}
}

func TestRegistrationSelectionValidation(t *testing.T) {
	r := newTestRouter(newTestHandler(locationapi.NewMemorySource(), &stubReverser{}))
	authz := bearer(t, "uid-1")
	w := doJSON(t, r, http.MethodPost, "/api/registrations", authz, nil)
	base := "/api/registrations/" + decodeSnapshot(t, w.Body.Bytes()).ID

	w = doJSON(t, r, http.MethodPost, base+"/selection", authz, map[string]float64{"latitude": 95, "longitude": 0})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	w = doJSON(t, r, http.MethodPost, base+"/selection", authz, map[string]float64{"latitude": 0, "longitude": 0})
	if w.Code != http.StatusBadRequest || decodeError(t, w).Code != "VALIDATION_ERROR" {
		t.Fatalf("expected sentinel rejected, got %d %s", w.Code, w.Body.String())
	}
	w = doJSON(t, r, http.MethodPost, base+"/selection", authz, map[string]float64{"latitude": -23.5})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected missing longitude rejected, got %d", w.Code)
	}
}

func TestRegistrationOtherUserSeesNotFound(t *testing.T) {
	r := newTestRouter(newTestHandler(locationapi.NewMemorySource(), &stubReverser{}))
	w := doJSON(t, r, http.MethodPost, "/api/registrations", bearer(t, "owner"), nil)
	base := "/api/registrations/" + decodeSnapshot(t, w.Body.Bytes()).ID

	w = doJSON(t, r, http.MethodGet, base, bearer(t, "intruder"), nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	w = doJSON(t, r, http.MethodDelete, base, bearer(t, "owner"), nil)
	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}
	w = doJSON(t, r, http.MethodGet, base, bearer(t, "owner"), nil)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected abandoned flow gone, got %d", w.Code)
	}
}
