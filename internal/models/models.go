package models

import (
	"strings"
	"time"
)

type Coordinate struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// IsZero reports whether the coordinate is the (0,0) "not yet selected" sentinel.
func (c Coordinate) IsZero() bool {
	return c.Latitude == 0 && c.Longitude == 0
}

type AddressInfo struct {
	Road    string `json:"road"`
	City    string `json:"city"`
	State   string `json:"state"`
	Country string `json:"country"`
}

type Location struct {
	ID            int64      `json:"id"`
	Name          string     `json:"name"`
	Address       string     `json:"address"`
	City          string     `json:"city"`
	State         string     `json:"state"`
	Country       string     `json:"country"`
	Latitude      float64    `json:"latitude"`
	Longitude     float64    `json:"longitude"`
	ContactHandle string     `json:"whatsapp,omitempty"`
	UserID        string     `json:"userId,omitempty"`
	CreatedAt     *time.Time `json:"createdAt,omitempty"`
}

func (l Location) Coordinate() Coordinate {
	return Coordinate{Latitude: l.Latitude, Longitude: l.Longitude}
}

type ProximityMatch struct {
	Location
	DistanceMeters float64 `json:"distance"`
}

type NewLocationDraft struct {
	Name          string     `json:"name"`
	Address       string     `json:"address"`
	City          string     `json:"city"`
	State         string     `json:"state"`
	Country       string     `json:"country"`
	ContactHandle string     `json:"whatsapp"`
	Coordinate    Coordinate `json:"coordinate"`
}

// Payload builds the create-location request body from the draft.
func (d NewLocationDraft) Payload() NewLocation {
	return NewLocation{
		Name:          strings.TrimSpace(d.Name),
		Address:       d.Address,
		City:          d.City,
		State:         d.State,
		Country:       d.Country,
		ContactHandle: d.ContactHandle,
		Latitude:      d.Coordinate.Latitude,
		Longitude:     d.Coordinate.Longitude,
	}
}

type NewLocation struct {
	Name          string  `json:"name"`
	Address       string  `json:"address"`
	City          string  `json:"city"`
	State         string  `json:"state"`
	Country       string  `json:"country"`
	ContactHandle string  `json:"whatsapp,omitempty"`
	Latitude      float64 `json:"latitude"`
	Longitude     float64 `json:"longitude"`
	UserID        string  `json:"-"`
}

type Photo struct {
	ID          int64     `json:"id,omitempty"`
	LocationID  int64     `json:"locationId"`
	Key         string    `json:"key"`
	URL         string    `json:"url"`
	ContentType string    `json:"contentType"`
	Size        int64     `json:"size"`
	UserID      string    `json:"userId,omitempty"`
	UploadedAt  time.Time `json:"uploadedAt"`
}

// LocationDetail is a location with its attached photos.
type LocationDetail struct {
	Location
	Photos []Photo `json:"photos"`
}
