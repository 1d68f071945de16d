package locationapi

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/spotfinder/backend/internal/models"
)

// MemorySource keeps locations in process. Used when no backend is configured.
type MemorySource struct {
	mu     sync.Mutex
	nextID int64
	items  []models.Location
}

func NewMemorySource(seed ...models.Location) *MemorySource {
	m := &MemorySource{}
	for _, l := range seed {
		if l.ID > m.nextID {
			m.nextID = l.ID
		}
		m.items = append(m.items, l)
	}
	return m
}

func (m *MemorySource) ListLocations(ctx context.Context, city string) ([]models.Location, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Location, 0, len(m.items))
	for _, l := range m.items {
		if city != "" && !strings.EqualFold(strings.TrimSpace(l.City), strings.TrimSpace(city)) {
			continue
		}
		out = append(out, l)
	}
	return out, nil
}

func (m *MemorySource) ListCities(ctx context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := map[string]struct{}{}
	out := []string{}
	for _, l := range m.items {
		if l.City == "" {
			continue
		}
		if _, ok := seen[l.City]; ok {
			continue
		}
		seen[l.City] = struct{}{}
		out = append(out, l.City)
	}
	sort.Strings(out)
	return out, nil
}

func (m *MemorySource) GetLocation(ctx context.Context, id int64) (models.Location, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, l := range m.items {
		if l.ID == id {
			return l, nil
		}
	}
	return models.Location{}, ErrLocationNotFound
}

func (m *MemorySource) CreateLocation(ctx context.Context, req models.NewLocation) (models.Location, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	now := time.Now().UTC()
	loc := models.Location{
		ID:            m.nextID,
		Name:          req.Name,
		Address:       req.Address,
		City:          req.City,
		State:         req.State,
		Country:       req.Country,
		Latitude:      req.Latitude,
		Longitude:     req.Longitude,
		ContactHandle: req.ContactHandle,
		UserID:        req.UserID,
		CreatedAt:     &now,
	}
	m.items = append(m.items, loc)
	return loc, nil
}
