package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Item is one entry in the supply catalog. RequiresExpirationTracking marks
// items whose physical units carry tags and expiration dates; everything else
// is tracked purely as a count.
type Item struct {
	ID                           uuid.UUID        `json:"id" db:"id"`
	ItemCode                     string           `json:"item_code" db:"item_code"`
	Name                         string           `json:"name" db:"name"`
	Description                  *string          `json:"description" db:"description"`
	Category                     *string          `json:"category" db:"category"`
	UnitOfMeasure                string           `json:"unit_of_measure" db:"unit_of_measure"`
	RequiresExpirationTracking   bool             `json:"requires_expiration_tracking" db:"requires_expiration_tracking"`
	IsControlledSubstance        bool             `json:"is_controlled_substance" db:"is_controlled_substance"`
	CostPerUnit                  *decimal.Decimal `json:"cost_per_unit" db:"cost_per_unit"`
	LeadTimeDays                 *int             `json:"lead_time_days" db:"lead_time_days"`
	MaxReorderQuantityPerStation *int             `json:"max_reorder_quantity_per_station" db:"max_reorder_quantity_per_station"`
	PreferredVendorID            *uuid.UUID       `json:"preferred_vendor_id" db:"preferred_vendor_id"`
	IsActive                     bool             `json:"is_active" db:"is_active"`
	CreatedAt                    time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt                    time.Time        `json:"updated_at" db:"updated_at"`
}
