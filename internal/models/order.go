package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// OrderStatus tracks a purchase order through its lifecycle.
type OrderStatus string

const (
	OrderPending   OrderStatus = "pending"
	OrderOrdered   OrderStatus = "ordered"
	OrderPartial   OrderStatus = "partial"
	OrderReceived  OrderStatus = "received"
	OrderCancelled OrderStatus = "cancelled"
)

// IsValid reports whether s is a known order status.
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderPending, OrderOrdered, OrderPartial, OrderReceived, OrderCancelled:
		return true
	}
	return false
}

// Vendor is a supplier that items can be reordered from.
type Vendor struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Name        string    `json:"name" db:"name"`
	ContactName *string   `json:"contact_name" db:"contact_name"`
	Email       *string   `json:"email" db:"email"`
	Phone       *string   `json:"phone" db:"phone"`
	Website     *string   `json:"website" db:"website"`
	Notes       *string   `json:"notes" db:"notes"`
	IsActive    bool      `json:"is_active" db:"is_active"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

// AutoOrderRule configures automatic replenishment for a single item. An
// active rule's vendor takes priority over the item's preferred vendor, and
// its order quantity can raise, never lower, a computed suggestion.
type AutoOrderRule struct {
	ID                uuid.UUID  `json:"id" db:"id"`
	ItemID            uuid.UUID  `json:"item_id" db:"item_id"`
	TriggerQuantity   int        `json:"trigger_quantity" db:"trigger_quantity"`
	OrderQuantity     int        `json:"order_quantity" db:"order_quantity"`
	PreferredVendorID *uuid.UUID `json:"preferred_vendor_id" db:"preferred_vendor_id"`
	IsActive          bool       `json:"is_active" db:"is_active"`
	CreatedAt         time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at" db:"updated_at"`
}

// PurchaseOrder groups ordered lines for a single vendor.
type PurchaseOrder struct {
	ID                   uuid.UUID            `json:"id" db:"id"`
	PONumber             string               `json:"po_number" db:"po_number"`
	VendorID             uuid.UUID            `json:"vendor_id" db:"vendor_id"`
	Status               OrderStatus          `json:"status" db:"status"`
	OrderDate            time.Time            `json:"order_date" db:"order_date"`
	ExpectedDeliveryDate *time.Time           `json:"expected_delivery_date" db:"expected_delivery_date"`
	ReceivedDate         *time.Time           `json:"received_date" db:"received_date"`
	TotalCost            *decimal.Decimal     `json:"total_cost" db:"total_cost"`
	CreatedBy            uuid.UUID            `json:"created_by" db:"created_by"`
	CreatedAt            time.Time            `json:"created_at" db:"created_at"`
	UpdatedAt            time.Time            `json:"updated_at" db:"updated_at"`
	Items                []*PurchaseOrderItem `json:"items,omitempty" db:"-"`
}

// PurchaseOrderItem is one line of a purchase order.
type PurchaseOrderItem struct {
	ID               uuid.UUID        `json:"id" db:"id"`
	POID             uuid.UUID        `json:"po_id" db:"po_id"`
	ItemID           uuid.UUID        `json:"item_id" db:"item_id"`
	QuantityOrdered  int              `json:"quantity_ordered" db:"quantity_ordered"`
	QuantityReceived int              `json:"quantity_received" db:"quantity_received"`
	UnitCost         *decimal.Decimal `json:"unit_cost" db:"unit_cost"`
	TotalCost        *decimal.Decimal `json:"total_cost" db:"total_cost"`
}
