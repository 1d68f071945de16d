package db

import (
	"context"
	_ "embed"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spotfinder/backend/internal/locationapi"
	"github.com/spotfinder/backend/internal/models"
)

//go:embed schema.sql
var schemaSQL string

var ErrLocationNotFound = locationapi.ErrLocationNotFound

type Store struct {
	Pool *pgxpool.Pool
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, err
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	s.Pool.Close()
}

func (s *Store) Ping(ctx context.Context) error {
	return s.Pool.Ping(ctx)
}

func (s *Store) EnsureSchema(ctx context.Context) error {
	_, err := s.Pool.Exec(ctx, schemaSQL)
	return err
}

func (s *Store) WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	tx, err := s.Pool.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback(ctx)
	}()
	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

const locationColumns = `id, name, address, city, state, country, whatsapp, latitude, longitude, user_id, created_at`

func scanLocation(row pgx.Row) (models.Location, error) {
	var l models.Location
	err := row.Scan(&l.ID, &l.Name, &l.Address, &l.City, &l.State, &l.Country, &l.ContactHandle, &l.Latitude, &l.Longitude, &l.UserID, &l.CreatedAt)
	return l, err
}

func (s *Store) ListLocations(ctx context.Context, city string) ([]models.Location, error) {
	query := `SELECT ` + locationColumns + ` FROM locations`
	var args []any
	if city = strings.TrimSpace(city); city != "" {
		args = append(args, strings.ToLower(city))
		query += ` WHERE lower(city) = $1`
	}
	query += ` ORDER BY id ASC`

	rows, err := s.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Location{}
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (s *Store) ListCities(ctx context.Context) ([]string, error) {
	rows, err := s.Pool.Query(ctx, `SELECT DISTINCT city FROM locations WHERE city <> '' ORDER BY city ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []string{}
	for rows.Next() {
		var city string
		if err := rows.Scan(&city); err != nil {
			return nil, err
		}
		out = append(out, city)
	}
	return out, rows.Err()
}

func (s *Store) CreateLocation(ctx context.Context, req models.NewLocation) (models.Location, error) {
	row := s.Pool.QueryRow(ctx, `
		INSERT INTO locations (name, address, city, state, country, whatsapp, latitude, longitude, user_id)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9)
		RETURNING `+locationColumns,
		req.Name, req.Address, req.City, req.State, req.Country, req.ContactHandle, req.Latitude, req.Longitude, req.UserID)
	return scanLocation(row)
}

func (s *Store) GetLocation(ctx context.Context, id int64) (models.Location, error) {
	l, err := scanLocation(s.Pool.QueryRow(ctx, `SELECT `+locationColumns+` FROM locations WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Location{}, ErrLocationNotFound
	}
	return l, err
}

// InsertPhoto records an uploaded attachment. The location must exist.
func (s *Store) InsertPhoto(ctx context.Context, p models.Photo) (models.Photo, error) {
	err := s.WithTx(ctx, func(tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM locations WHERE id = $1)`, p.LocationID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return ErrLocationNotFound
		}
		return tx.QueryRow(ctx, `
			INSERT INTO location_photos (location_id, object_key, url, content_type, size_bytes, user_id, uploaded_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7)
			RETURNING id
		`, p.LocationID, p.Key, p.URL, p.ContentType, p.Size, p.UserID, p.UploadedAt).Scan(&p.ID)
	})
	if err != nil {
		return models.Photo{}, err
	}
	return p, nil
}

func (s *Store) ListPhotos(ctx context.Context, locationID int64) ([]models.Photo, error) {
	rows, err := s.Pool.Query(ctx, `
		SELECT id, location_id, object_key, url, content_type, size_bytes, user_id, uploaded_at
		FROM location_photos
		WHERE location_id = $1
		ORDER BY uploaded_at, id
	`, locationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []models.Photo{}
	for rows.Next() {
		var p models.Photo
		if err := rows.Scan(&p.ID, &p.LocationID, &p.Key, &p.URL, &p.ContentType, &p.Size, &p.UserID, &p.UploadedAt); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
