package geocode

import (
	"context"
	"strconv"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/spotfinder/backend/internal/models"
)

// SessionCache memoizes successful reverse lookups for the lifetime of one
// registration flow. Entries are never evicted; failures are not stored.
type SessionCache struct {
	next Reverser

	mu      sync.Mutex
	entries map[string]models.AddressInfo
	group   singleflight.Group
}

func NewSessionCache(next Reverser) *SessionCache {
	return &SessionCache{next: next, entries: map[string]models.AddressInfo{}}
}

// CacheKey is the exact "lat,lng" key used for lookups.
func CacheKey(c models.Coordinate) string {
	return strconv.FormatFloat(c.Latitude, 'f', -1, 64) + "," + strconv.FormatFloat(c.Longitude, 'f', -1, 64)
}

func (s *SessionCache) Reverse(ctx context.Context, c models.Coordinate) (models.AddressInfo, error) {
	key := CacheKey(c)

	s.mu.Lock()
	if info, ok := s.entries[key]; ok {
		s.mu.Unlock()
		return info, nil
	}
	s.mu.Unlock()

	// The shared lookup must outlive any single caller; each caller still
	// stops waiting when its own ctx is done.
	shared := context.WithoutCancel(ctx)
	ch := s.group.DoChan(key, func() (any, error) {
		s.mu.Lock()
		if info, ok := s.entries[key]; ok {
			s.mu.Unlock()
			return info, nil
		}
		s.mu.Unlock()

		info, err := s.next.Reverse(shared, c)
		if err != nil {
			return models.AddressInfo{}, err
		}
		s.mu.Lock()
		s.entries[key] = info
		s.mu.Unlock()
		return info, nil
	})

	select {
	case <-ctx.Done():
		return models.AddressInfo{}, &GeocodingError{Coordinate: c, Err: ctx.Err()}
	case res := <-ch:
		if res.Err != nil {
			return models.AddressInfo{}, res.Err
		}
		return res.Val.(models.AddressInfo), nil
	}
}

// Len reports how many coordinates are cached.
func (s *SessionCache) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}
