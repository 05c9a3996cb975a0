package models

import (
	"time"

	"github.com/google/uuid"
)

// MovementType classifies a stock-changing event.
type MovementType string

const (
	MovementReceipt    MovementType = "receipt"
	MovementTransfer   MovementType = "transfer"
	MovementAdjustment MovementType = "adjustment"
	MovementUse        MovementType = "use"
	MovementDispose    MovementType = "dispose"
)

// IsValid reports whether t is a known movement type.
func (t MovementType) IsValid() bool {
	switch t {
	case MovementReceipt, MovementTransfer, MovementAdjustment, MovementUse, MovementDispose:
		return true
	}
	return false
}

// Movement is an immutable ledger entry. Every successful mutation of
// InventoryCurrent writes exactly one Movement, so replaying movements from
// zero reconstructs the ledger.
type Movement struct {
	ID             uuid.UUID    `json:"id" db:"id"`
	ItemID         uuid.UUID    `json:"item_id" db:"item_id"`
	FromLocationID *uuid.UUID   `json:"from_location_id" db:"from_location_id"`
	ToLocationID   *uuid.UUID   `json:"to_location_id" db:"to_location_id"`
	Quantity       int          `json:"quantity" db:"quantity"`
	MovementType   MovementType `json:"movement_type" db:"movement_type"`
	Reference      *string      `json:"reference" db:"reference"`
	Notes          *string      `json:"notes" db:"notes"`
	PerformedBy    uuid.UUID    `json:"performed_by" db:"performed_by"`
	CreatedAt      time.Time    `json:"created_at" db:"created_at"`
}

// MovementView enriches a movement with catalog names for reporting.
type MovementView struct {
	Movement
	ItemCode         string  `json:"item_code"`
	ItemName         string  `json:"item_name"`
	FromLocationName *string `json:"from_location_name"`
	ToLocationName   *string `json:"to_location_name"`
}

// MovementFilter holds filter criteria for movement-history queries.
type MovementFilter struct {
	ItemID       *uuid.UUID    `json:"item_id,omitempty"`
	LocationID   *uuid.UUID    `json:"location_id,omitempty"` // matches either endpoint
	MovementType *MovementType `json:"movement_type,omitempty"`
	StartDate    *time.Time    `json:"start_date,omitempty"`
	EndDate      *time.Time    `json:"end_date,omitempty"`
	Limit        int           `json:"limit,omitempty"`
	Offset       int           `json:"offset,omitempty"`
}
