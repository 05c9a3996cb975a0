package models

import (
	"time"

	"github.com/google/uuid"
)

// ParLevel defines the stocking thresholds for one item at one location.
// ReorderQuantity is the trigger threshold and must not exceed ParQuantity;
// MaxQuantity, when set, caps ParQuantity.
type ParLevel struct {
	ID              uuid.UUID `json:"id" db:"id"`
	ItemID          uuid.UUID `json:"item_id" db:"item_id"`
	LocationID      uuid.UUID `json:"location_id" db:"location_id"`
	ParQuantity     int       `json:"par_quantity" db:"par_quantity"`
	ReorderQuantity int       `json:"reorder_quantity" db:"reorder_quantity"`
	MaxQuantity     *int      `json:"max_quantity" db:"max_quantity"`
	CreatedAt       time.Time `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time `json:"updated_at" db:"updated_at"`
}

// Validate checks the threshold ordering invariants.
func (p *ParLevel) Validate() error {
	if p.ParQuantity < 0 || p.ReorderQuantity < 0 {
		return ErrNegativeThreshold
	}
	if p.ReorderQuantity > p.ParQuantity {
		return ErrReorderAbovePar
	}
	if p.MaxQuantity != nil && p.ParQuantity > *p.MaxQuantity {
		return ErrParAboveMax
	}
	return nil
}

// BulkParLevelUpdate applies the same thresholds to every (item, location)
// combination listed.
type BulkParLevelUpdate struct {
	ItemIDs         []uuid.UUID `json:"item_ids" validate:"required,min=1"`
	LocationIDs     []uuid.UUID `json:"location_ids" validate:"required,min=1"`
	ParQuantity     *int        `json:"par_quantity,omitempty"`
	ReorderQuantity *int        `json:"reorder_quantity,omitempty"`
}
