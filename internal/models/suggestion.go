package models

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Urgency is a coarse severity classification of how far stock has fallen
// below the reorder threshold, used to prioritize suggestions.
type Urgency string

const (
	UrgencyCritical Urgency = "critical"
	UrgencyHigh     Urgency = "high"
	UrgencyMedium   Urgency = "medium"
	UrgencyLow      Urgency = "low"
)

// Severity orders urgencies from most (0) to least (3) severe.
func (u Urgency) Severity() int {
	switch u {
	case UrgencyCritical:
		return 0
	case UrgencyHigh:
		return 1
	case UrgencyMedium:
		return 2
	default:
		return 3
	}
}

// ReorderSuggestion is one line of the reorder report. It is a pure function
// of ledger, par-level and catalog state at the time it was computed.
type ReorderSuggestion struct {
	ItemID             uuid.UUID        `json:"item_id"`
	ItemCode           string           `json:"item_code"`
	ItemName           string           `json:"item_name"`
	Category           *string          `json:"category,omitempty"`
	UnitOfMeasure      string           `json:"unit_of_measure"`
	TotalStock         int              `json:"total_stock"`
	TotalPar           int              `json:"total_par"`
	TotalReorder       int              `json:"total_reorder"`
	Shortage           int              `json:"shortage"`
	SuggestedOrderQty  int              `json:"suggested_order_qty"`
	LocationsBelow     int              `json:"locations_below"`
	Urgency            Urgency          `json:"urgency"`
	VendorID           *uuid.UUID       `json:"vendor_id"`
	VendorName         *string          `json:"vendor_name"`
	ProjectedOrderCost *decimal.Decimal `json:"projected_order_cost"`
}

// SuggestionFilter limits the reorder report.
type SuggestionFilter struct {
	ItemID   *uuid.UUID `json:"item_id,omitempty"`
	Urgency  *Urgency   `json:"urgency,omitempty"`
	Category *string    `json:"category,omitempty"`
}
