package registration

import (
	"context"
	"errors"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/spotfinder/backend/internal/geocode"
	"github.com/spotfinder/backend/internal/models"
	"github.com/spotfinder/backend/internal/proximity"
)

type State string

const (
	StateIdle               State = "idle"
	StateCoordinateSelected State = "coordinate_selected"
	StateGeocoding          State = "geocoding"
	StateReady              State = "ready"
	StateSubmitting         State = "submitting"
	StateSubmitted          State = "submitted"
	StateError              State = "error"
)

type Creator interface {
	CreateLocation(ctx context.Context, req models.NewLocation) (models.Location, error)
}

// DraftUpdate carries user edits; nil fields are left untouched.
type DraftUpdate struct {
	Name          *string
	Address       *string
	ContactHandle *string
}

type Snapshot struct {
	ID                 string                  `json:"id"`
	State              State                   `json:"state"`
	Draft              models.NewLocationDraft `json:"draft"`
	CoordinateSelected bool                    `json:"coordinateSelected"`
	Nearby             []models.ProximityMatch `json:"nearby"`
	Error              string                  `json:"error,omitempty"`
	Created            *models.Location        `json:"created,omitempty"`
	// SubmittedNearby is the match count confirmed by the last submit.
	SubmittedNearby int       `json:"submittedNearby"`
	UpdatedAt       time.Time `json:"updatedAt"`
}

type FlowOptions struct {
	RadiusMeters float64
	UserID       string
	Logger       zerolog.Logger
}

// Flow is one new-location registration session. Selections and submissions
// may overlap; only the outcome of the latest selection is applied.
type Flow struct {
	id       string
	userID   string
	radius   float64
	reverser geocode.Reverser
	creator  Creator
	logger   zerolog.Logger
	existing []models.Location

	mu         sync.Mutex
	state      State
	draft      models.NewLocationDraft
	selected   bool
	nearby     []models.ProximityMatch
	generation uint64
	lastErr    error
	created    *models.Location
	updatedAt  time.Time

	submittedNearby int
}

// NewFlow starts a flow over a snapshot of existing locations. Reverse lookups
// go through a cache private to this flow.
func NewFlow(id string, existing []models.Location, reverser geocode.Reverser, creator Creator, opts FlowOptions) *Flow {
	radius := opts.RadiusMeters
	if radius <= 0 {
		radius = proximity.DefaultRadiusMeters
	}
	snapshot := make([]models.Location, len(existing))
	copy(snapshot, existing)
	return &Flow{
		id:        id,
		userID:    opts.UserID,
		radius:    radius,
		reverser:  geocode.NewSessionCache(reverser),
		creator:   creator,
		logger:    opts.Logger.With().Str("registration_id", id).Logger(),
		existing:  snapshot,
		state:     StateIdle,
		nearby:    []models.ProximityMatch{},
		updatedAt: time.Now().UTC(),
	}
}

func (f *Flow) ID() string {
	return f.id
}

func (f *Flow) UserID() string {
	return f.userID
}

// Existing returns the baseline locations the flow checks against.
func (f *Flow) Existing() []models.Location {
	out := make([]models.Location, len(f.existing))
	copy(out, f.existing)
	return out
}

func (f *Flow) Snapshot() Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snapshotLocked()
}

func (f *Flow) snapshotLocked() Snapshot {
	s := Snapshot{
		ID:                 f.id,
		State:              f.state,
		Draft:              f.draft,
		CoordinateSelected: f.selected,
		Nearby:             append([]models.ProximityMatch{}, f.nearby...),
		SubmittedNearby:    f.submittedNearby,
		UpdatedAt:          f.updatedAt,
	}
	if f.lastErr != nil {
		s.Error = f.lastErr.Error()
	}
	if f.created != nil {
		c := *f.created
		s.Created = &c
	}
	return s
}

func (f *Flow) setStateLocked(s State) {
	f.logger.Debug().Str("from", string(f.state)).Str("to", string(s)).Msg("registration state")
	f.state = s
	f.updatedAt = time.Now().UTC()
}

// SelectCoordinate records a map selection, refreshes nearby matches and
// resolves the address. A lookup overtaken by a newer selection returns
// ErrSuperseded and leaves the flow untouched.
func (f *Flow) SelectCoordinate(ctx context.Context, c models.Coordinate) (Snapshot, error) {
	if err := validateCoordinate(c); err != nil {
		return f.Snapshot(), err
	}

	f.mu.Lock()
	if f.state == StateSubmitted {
		s := f.snapshotLocked()
		f.mu.Unlock()
		return s, ErrFlowClosed
	}
	f.generation++
	gen := f.generation
	f.selected = true
	f.draft.Coordinate = c
	f.draft.Address = ""
	f.draft.City = ""
	f.draft.State = ""
	f.draft.Country = ""
	f.lastErr = nil
	f.nearby = proximity.FindNearby(c, f.existing, f.radius)
	f.setStateLocked(StateCoordinateSelected)
	f.setStateLocked(StateGeocoding)
	f.mu.Unlock()

	info, err := f.reverser.Reverse(ctx, c)

	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.generation || f.state == StateSubmitted {
		f.logger.Debug().Uint64("generation", gen).Msg("discarding stale address lookup")
		return f.snapshotLocked(), ErrSuperseded
	}
	if err != nil {
		var gerr *geocode.GeocodingError
		if !errors.As(err, &gerr) {
			err = &geocode.GeocodingError{Coordinate: c, Err: err}
		}
		f.lastErr = err
		f.setStateLocked(StateError)
		return f.snapshotLocked(), err
	}

	f.draft.Address = info.Road
	f.draft.City = info.City
	f.draft.State = info.State
	f.draft.Country = info.Country
	f.setStateLocked(StateReady)
	return f.snapshotLocked(), nil
}

func (f *Flow) UpdateDraft(u DraftUpdate) (Snapshot, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state == StateSubmitted {
		return f.snapshotLocked(), ErrFlowClosed
	}
	if u.Name != nil {
		f.draft.Name = *u.Name
	}
	if u.Address != nil {
		f.draft.Address = *u.Address
	}
	if u.ContactHandle != nil {
		f.draft.ContactHandle = strings.TrimSpace(*u.ContactHandle)
	}
	f.updatedAt = time.Now().UTC()
	return f.snapshotLocked(), nil
}

// Submit sends the draft to the creator. Nearby matches require confirmed to
// be true; otherwise a ConfirmationRequiredError is returned and nothing is sent.
func (f *Flow) Submit(ctx context.Context, confirmed bool) (Snapshot, error) {
	f.mu.Lock()
	if err := f.checkSubmittableLocked(); err != nil {
		s := f.snapshotLocked()
		f.mu.Unlock()
		return s, err
	}
	if len(f.nearby) > 0 && !confirmed {
		s := f.snapshotLocked()
		f.mu.Unlock()
		return s, &ConfirmationRequiredError{Matches: s.Nearby}
	}
	gen := f.generation
	payload := f.draft.Payload()
	payload.UserID = f.userID
	f.submittedNearby = len(f.nearby)
	f.lastErr = nil
	f.setStateLocked(StateSubmitting)
	f.mu.Unlock()

	loc, err := f.creator.CreateLocation(ctx, payload)

	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		serr := &SubmissionError{Err: err}
		if gen == f.generation {
			f.lastErr = serr
			f.setStateLocked(StateError)
		}
		return f.snapshotLocked(), serr
	}
	f.created = &loc
	f.setStateLocked(StateSubmitted)
	return f.snapshotLocked(), nil
}

func (f *Flow) checkSubmittableLocked() error {
	if f.state == StateSubmitted {
		return ErrFlowClosed
	}
	if !f.selected || f.draft.Coordinate.IsZero() {
		return &ValidationError{Field: "coordinate", Message: "select a point on the map first"}
	}
	if strings.TrimSpace(f.draft.Name) == "" {
		return &ValidationError{Field: "name", Message: "location name is required"}
	}
	switch f.state {
	case StateCoordinateSelected, StateGeocoding:
		return &ValidationError{Field: "address", Message: "address lookup still in progress"}
	case StateSubmitting:
		return &ValidationError{Message: "submission already in progress"}
	}
	return nil
}

func validateCoordinate(c models.Coordinate) error {
	if math.IsNaN(c.Latitude) || math.IsNaN(c.Longitude) || c.Latitude < -90 || c.Latitude > 90 || c.Longitude < -180 || c.Longitude > 180 {
		return &ValidationError{Field: "coordinate", Message: "coordinate out of range"}
	}
	if c.IsZero() {
		return &ValidationError{Field: "coordinate", Message: "coordinate (0,0) is reserved for no selection"}
	}
	return nil
}
