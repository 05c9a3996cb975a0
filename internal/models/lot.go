package models

import (
	"time"

	"github.com/google/uuid"
)

// LotStatus tracks the lifecycle of an individually tagged unit.
type LotStatus string

const (
	LotLive     LotStatus = "live"
	LotUsed     LotStatus = "used"
	LotDisposed LotStatus = "disposed"
)

// IsValid reports whether s is a known lot status.
func (s LotStatus) IsValid() bool {
	switch s {
	case LotLive, LotUsed, LotDisposed:
		return true
	}
	return false
}

// InventoryLot is one physical unit identified by an RFID tag or barcode.
// For items that require expiration tracking the count of live lots at a
// location must always equal the aggregate quantity on hand there.
type InventoryLot struct {
	ID             uuid.UUID  `json:"id" db:"id"`
	ItemID         uuid.UUID  `json:"item_id" db:"item_id"`
	LocationID     uuid.UUID  `json:"location_id" db:"location_id"`
	Tag            string     `json:"tag" db:"tag"`
	Status         LotStatus  `json:"status" db:"status"`
	ExpirationDate *time.Time `json:"expiration_date" db:"expiration_date"`
	LotNumber      *string    `json:"lot_number" db:"lot_number"`
	ReceivedDate   time.Time  `json:"received_date" db:"received_date"`
	CreatedAt      time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at" db:"updated_at"`
}

// ExpiringLot is the enriched view produced by expiration queries.
type ExpiringLot struct {
	InventoryLot
	DaysUntilExpiration int    `json:"days_until_expiration"`
	ItemCode            string `json:"item_code"`
	ItemName            string `json:"item_name"`
	LocationName        string `json:"location_name"`
}
