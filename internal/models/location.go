package models

import (
	"time"

	"github.com/google/uuid"
)

// LocationType classifies where stock physically sits.
type LocationType string

const (
	LocationSupplyStation  LocationType = "supply_station"
	LocationStationCabinet LocationType = "station_cabinet"
	LocationVehicle        LocationType = "vehicle"
)

func (t LocationType) IsValid() bool {
	switch t {
	case LocationSupplyStation, LocationStationCabinet, LocationVehicle:
		return true
	}
	return false
}

// Location is a storage point: a station supply room, a cabinet inside a
// station, or a vehicle. The parent link is organizational only; stock never
// rolls up to the parent automatically.
type Location struct {
	ID               uuid.UUID    `json:"id" db:"id"`
	Name             string       `json:"name" db:"name"`
	Type             LocationType `json:"type" db:"type"`
	ParentLocationID *uuid.UUID   `json:"parent_location_id" db:"parent_location_id"`
	Address          *string      `json:"address" db:"address"`
	IsActive         bool         `json:"is_active" db:"is_active"`
	CreatedAt        time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time    `json:"updated_at" db:"updated_at"`
}
