package registration

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/spotfinder/backend/internal/events"
	"github.com/spotfinder/backend/internal/locationapi"
	"github.com/spotfinder/backend/internal/models"
)

type recordingPublisher struct {
	events []events.LocationCreated
	err    error
}

func (r *recordingPublisher) PublishLocationCreated(ctx context.Context, ev events.LocationCreated) error {
	r.events = append(r.events, ev)
	return r.err
}

func (r *recordingPublisher) Close() error {
	return nil
}

type failingStore struct {
	locationapi.MemorySource
}

func (f *failingStore) ListLocations(ctx context.Context, city string) ([]models.Location, error) {
	return nil, errors.New("api down")
}

func TestManagerFullRegistration(t *testing.T) {
	store := locationapi.NewMemorySource(models.Location{ID: 1, Name: "Sé crew", Latitude: -23.5510, Longitude: -46.6330})
	pub := &recordingPublisher{}
	m := NewManager(store, &stubReverser{info: models.AddressInfo{Road: "Rua A", City: "São Paulo"}}, pub, ManagerConfig{RadiusMeters: 500}, zerolog.Nop())

	flow, err := m.Start(context.Background(), "uid-9")
	if err != nil {
		t.Fatalf("start: %v", err)
	}
	if len(flow.Existing()) != 1 || m.Active() != 1 {
		t.Fatalf("expected baseline loaded and flow tracked")
	}

	snap, err := m.Select(context.Background(), flow.ID(), saoPaulo)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if len(snap.Nearby) != 1 {
		t.Fatalf("expected nearby match, got %+v", snap.Nearby)
	}
	if _, err := m.UpdateDraft(flow.ID(), DraftUpdate{Name: strPtr("Roda nova")}); err != nil {
		t.Fatalf("update: %v", err)
	}

	var cerr *ConfirmationRequiredError
	if _, err := m.Submit(context.Background(), flow.ID(), false); !errors.As(err, &cerr) {
		t.Fatalf("expected confirmation required, got %v", err)
	}
	snap, err = m.Submit(context.Background(), flow.ID(), true)
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if snap.Created == nil || snap.Created.UserID != "uid-9" {
		t.Fatalf("expected created location owned by caller, got %+v", snap.Created)
	}

	if len(pub.events) != 1 || pub.events[0].RegistrationID != flow.ID() || pub.events[0].NearbyCount != 1 {
		t.Fatalf("unexpected events: %+v", pub.events)
	}
	if _, err := m.Get(flow.ID()); !errors.Is(err, ErrFlowNotFound) {
		t.Fatalf("expected submitted flow to be discarded, got %v", err)
	}
	all, _ := store.ListLocations(context.Background(), "")
	if len(all) != 2 {
		t.Fatalf("expected location stored, got %d", len(all))
	}
}

func TestManagerPublishFailureDoesNotFailSubmit(t *testing.T) {
	pub := &recordingPublisher{err: errors.New("broker down")}
	m := NewManager(locationapi.NewMemorySource(), &stubReverser{info: models.AddressInfo{Road: "Rua A"}}, pub, ManagerConfig{}, zerolog.Nop())
	flow, _ := m.Start(context.Background(), "")
	_, _ = m.Select(context.Background(), flow.ID(), saoPaulo)
	_, _ = m.UpdateDraft(flow.ID(), DraftUpdate{Name: strPtr("Roda")})
	if _, err := m.Submit(context.Background(), flow.ID(), false); err != nil {
		t.Fatalf("expected submit to succeed, got %v", err)
	}
}

func TestManagerStartFailsWhenBaselineUnavailable(t *testing.T) {
	m := NewManager(&failingStore{}, &stubReverser{}, nil, ManagerConfig{}, zerolog.Nop())
	if _, err := m.Start(context.Background(), ""); err == nil {
		t.Fatalf("expected error")
	}
	if m.Active() != 0 {
		t.Fatalf("expected no flow tracked")
	}
}

func TestManagerUnknownFlow(t *testing.T) {
	m := NewManager(locationapi.NewMemorySource(), &stubReverser{}, nil, ManagerConfig{}, zerolog.Nop())
	if _, err := m.Select(context.Background(), "missing", saoPaulo); !errors.Is(err, ErrFlowNotFound) {
		t.Fatalf("expected ErrFlowNotFound, got %v", err)
	}
	if m.Abandon("missing") {
		t.Fatalf("expected abandon of unknown flow to report false")
	}
}

func TestManagerSweepExpiresIdleFlows(t *testing.T) {
	m := NewManager(locationapi.NewMemorySource(), &stubReverser{}, nil, ManagerConfig{SessionTTL: time.Minute}, zerolog.Nop())
	now := time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	idle, _ := m.Start(context.Background(), "")
	now = now.Add(45 * time.Second)
	fresh, _ := m.Start(context.Background(), "")
	now = now.Add(30 * time.Second)

	if removed := m.Sweep(); removed != 1 {
		t.Fatalf("expected 1 expired flow, got %d", removed)
	}
	if _, err := m.Get(idle.ID()); !errors.Is(err, ErrFlowNotFound) {
		t.Fatalf("expected idle flow removed")
	}
	if _, err := m.Get(fresh.ID()); err != nil {
		t.Fatalf("expected fresh flow kept: %v", err)
	}
}

type gatedStore struct {
	*locationapi.MemorySource
	started chan struct{}
	release chan struct{}
}

func (g *gatedStore) CreateLocation(ctx context.Context, req models.NewLocation) (models.Location, error) {
	close(g.started)
	<-g.release
	return g.MemorySource.CreateLocation(ctx, req)
}

func TestManagerEventCountsMatchesOfSubmittedPoint(t *testing.T) {
	store := &gatedStore{
		MemorySource: locationapi.NewMemorySource(models.Location{ID: 1, Name: "Sé crew", Latitude: -23.5510, Longitude: -46.6330}),
		started:      make(chan struct{}),
		release:      make(chan struct{}),
	}
	pub := &recordingPublisher{}
	m := NewManager(store, &stubReverser{info: models.AddressInfo{Road: "Rua A"}}, pub, ManagerConfig{}, zerolog.Nop())

	flow, _ := m.Start(context.Background(), "uid-1")
	_, _ = m.Select(context.Background(), flow.ID(), saoPaulo)
	_, _ = m.UpdateDraft(flow.ID(), DraftUpdate{Name: strPtr("Roda")})

	done := make(chan error, 1)
	go func() {
		_, err := m.Submit(context.Background(), flow.ID(), true)
		done <- err
	}()
	<-store.started
	if _, err := m.Select(context.Background(), flow.ID(), rio); err != nil {
		t.Fatalf("re-click: %v", err)
	}
	close(store.release)
	if err := <-done; err != nil {
		t.Fatalf("submit: %v", err)
	}
	if len(pub.events) != 1 || pub.events[0].NearbyCount != 1 {
		t.Fatalf("expected event to count matches of the submitted point, got %+v", pub.events)
	}
}
