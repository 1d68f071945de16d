package locationapi

import (
	"context"
	"errors"
	"fmt"

	"github.com/spotfinder/backend/internal/models"
)

var ErrLocationNotFound = errors.New("location not found")

// Source is the location directory the registration flow reads from and writes to.
type Source interface {
	ListLocations(ctx context.Context, city string) ([]models.Location, error)
	ListCities(ctx context.Context) ([]string, error)
	GetLocation(ctx context.Context, id int64) (models.Location, error)
	CreateLocation(ctx context.Context, req models.NewLocation) (models.Location, error)
}

// APIError is a non-2xx answer from the remote location API.
type APIError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("location api %s: status %d: %s", e.Op, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("location api %s: status %d", e.Op, e.StatusCode)
}
