package registration

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/spotfinder/backend/internal/events"
	"github.com/spotfinder/backend/internal/geocode"
	"github.com/spotfinder/backend/internal/models"
)

type LocationStore interface {
	Creator
	ListLocations(ctx context.Context, city string) ([]models.Location, error)
}

type ManagerConfig struct {
	RadiusMeters float64
	SessionTTL   time.Duration
}

type entry struct {
	flow    *Flow
	touched time.Time
}

// Manager owns the active registration flows, one per started session.
type Manager struct {
	store     LocationStore
	reverser  geocode.Reverser
	publisher events.Publisher
	cfg       ManagerConfig
	logger    zerolog.Logger
	now       func() time.Time

	mu    sync.Mutex
	flows map[string]*entry
}

func NewManager(store LocationStore, reverser geocode.Reverser, publisher events.Publisher, cfg ManagerConfig, logger zerolog.Logger) *Manager {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 30 * time.Minute
	}
	if publisher == nil {
		publisher = events.NopPublisher{Logger: logger}
	}
	return &Manager{
		store:     store,
		reverser:  reverser,
		publisher: publisher,
		cfg:       cfg,
		logger:    logger,
		now:       time.Now,
		flows:     map[string]*entry{},
	}
}

// Start loads the existing-locations baseline once and opens a new flow.
func (m *Manager) Start(ctx context.Context, userID string) (*Flow, error) {
	existing, err := m.store.ListLocations(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("load existing locations: %w", err)
	}

	id := uuid.NewString()
	flow := NewFlow(id, existing, m.reverser, m.store, FlowOptions{
		RadiusMeters: m.cfg.RadiusMeters,
		UserID:       userID,
		Logger:       m.logger,
	})

	m.mu.Lock()
	m.flows[id] = &entry{flow: flow, touched: m.now()}
	active := len(m.flows)
	m.mu.Unlock()

	m.logger.Info().Str("registration_id", id).Int("existing", len(existing)).Int("active", active).Msg("registration started")
	return flow, nil
}

func (m *Manager) Get(id string) (*Flow, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.flows[id]
	if !ok {
		return nil, ErrFlowNotFound
	}
	e.touched = m.now()
	return e.flow, nil
}

func (m *Manager) Select(ctx context.Context, id string, c models.Coordinate) (Snapshot, error) {
	flow, err := m.Get(id)
	if err != nil {
		return Snapshot{}, err
	}
	return flow.SelectCoordinate(ctx, c)
}

func (m *Manager) UpdateDraft(id string, u DraftUpdate) (Snapshot, error) {
	flow, err := m.Get(id)
	if err != nil {
		return Snapshot{}, err
	}
	return flow.UpdateDraft(u)
}

// Submit submits the flow's draft. A submitted flow is published and discarded.
func (m *Manager) Submit(ctx context.Context, id string, confirmed bool) (Snapshot, error) {
	flow, err := m.Get(id)
	if err != nil {
		return Snapshot{}, err
	}
	snap, err := flow.Submit(ctx, confirmed)
	if err != nil {
		return snap, err
	}

	m.Abandon(id)
	ev := events.LocationCreated{
		RegistrationID: id,
		Location:       *snap.Created,
		NearbyCount:    snap.SubmittedNearby,
		OccurredAt:     m.now().UTC(),
	}
	if perr := m.publisher.PublishLocationCreated(ctx, ev); perr != nil {
		m.logger.Error().Err(perr).Str("registration_id", id).Int64("location_id", snap.Created.ID).Msg("failed to publish location event")
	}
	m.logger.Info().Str("registration_id", id).Int64("location_id", snap.Created.ID).Int("nearby", snap.SubmittedNearby).Msg("location registered")
	return snap, nil
}

func (m *Manager) Abandon(id string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.flows[id]; !ok {
		return false
	}
	delete(m.flows, id)
	return true
}

func (m *Manager) Active() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.flows)
}

// Sweep drops flows idle for longer than the session TTL.
func (m *Manager) Sweep() int {
	cutoff := m.now().Add(-m.cfg.SessionTTL)
	m.mu.Lock()
	defer m.mu.Unlock()
	removed := 0
	for id, e := range m.flows {
		if e.touched.Before(cutoff) {
			delete(m.flows, id)
			removed++
		}
	}
	return removed
}

// Run sweeps expired flows until ctx is done.
func (m *Manager) Run(ctx context.Context) {
	interval := m.cfg.SessionTTL / 2
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := m.Sweep(); n > 0 {
				m.logger.Info().Int("expired", n).Msg("registration sessions expired")
			}
		}
	}
}
