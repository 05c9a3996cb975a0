package models

import (
	"time"

	"github.com/google/uuid"
)

// InventoryCurrent is the aggregate ledger row for one (item, location) pair.
// It is only ever mutated through ledger operations that also append a
// Movement; the row persists once created, even at quantity zero.
type InventoryCurrent struct {
	ID                uuid.UUID  `json:"id" db:"id"`
	ItemID            uuid.UUID  `json:"item_id" db:"item_id"`
	LocationID        uuid.UUID  `json:"location_id" db:"location_id"`
	QuantityOnHand    int        `json:"quantity_on_hand" db:"quantity_on_hand"`
	QuantityAllocated int        `json:"quantity_allocated" db:"quantity_allocated"`
	LastCountedAt     *time.Time `json:"last_counted_at" db:"last_counted_at"`
	LastCountedBy     *uuid.UUID `json:"last_counted_by" db:"last_counted_by"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at" db:"updated_at"`
}

// QuantityAvailable is on-hand minus allocated. Ledger invariants keep it
// non-negative.
func (i *InventoryCurrent) QuantityAvailable() int {
	return i.QuantityOnHand - i.QuantityAllocated
}

// InventoryView is the enriched read model returned to callers; the raw
// ledger row carries no names.
type InventoryView struct {
	InventoryCurrent
	QuantityAvail int    `json:"quantity_available"`
	ItemCode      string `json:"item_code"`
	ItemName      string `json:"item_name"`
	LocationName  string `json:"location_name"`
	UnitOfMeasure string `json:"unit_of_measure"`
}

// InventoryFilter holds filter criteria for current-inventory queries.
type InventoryFilter struct {
	ItemID     *uuid.UUID `json:"item_id,omitempty"`
	LocationID *uuid.UUID `json:"location_id,omitempty"`
	BelowPar   bool       `json:"below_par,omitempty"`
	Limit      int        `json:"limit,omitempty"`
	Offset     int        `json:"offset,omitempty"`
}
