package services

import (
	"context"
	"fmt"

	"stationsupply/internal/models"
	"stationsupply/internal/repositories"

	"github.com/google/uuid"
)

// ReceiveLineRequest books a delivery against one purchase order line and
// receives the stock at the given location.
type ReceiveLineRequest struct {
	PurchaseOrderID uuid.UUID `json:"-"`
	ItemID          uuid.UUID `json:"item_id"`
	LocationID      uuid.UUID `json:"location_id"`
	Quantity        int       `json:"quantity"`
	Lot             *LotSpec  `json:"lot,omitempty"`
	ActorID         uuid.UUID `json:"-"`
}

// OrderService manages the purchase order lifecycle. Receiving a line feeds
// the ledger, which keeps counters and lots consistent; the purchase order
// bookkeeping is updated after the stock movement committed.
type OrderService interface {
	Get(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error)
	List(ctx context.Context, status *models.OrderStatus, limit, offset int) ([]*models.PurchaseOrder, error)
	MarkOrdered(ctx context.Context, id uuid.UUID) error
	ReceiveLine(ctx context.Context, req *ReceiveLineRequest) (*models.PurchaseOrder, error)
	Cancel(ctx context.Context, id uuid.UUID) error
}

type orderService struct {
	db     TxBeginner
	orders repositories.OrderRepository
	ledger LedgerService
}

func NewOrderService(db TxBeginner, orders repositories.OrderRepository, ledger LedgerService) OrderService {
	return &orderService{db: db, orders: orders, ledger: ledger}
}

func (s *orderService) Get(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error) {
	po, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return nil, mapNoRows(err, "purchase order")
	}
	return po, nil
}

func (s *orderService) List(ctx context.Context, status *models.OrderStatus, limit, offset int) ([]*models.PurchaseOrder, error) {
	return s.orders.List(ctx, status, limit, offset)
}

func (s *orderService) MarkOrdered(ctx context.Context, id uuid.UUID) error {
	po, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return mapNoRows(err, "purchase order")
	}
	if po.Status != models.OrderPending {
		return fmt.Errorf("order is %s, not pending: %w", po.Status, ErrConflict)
	}
	return s.orders.UpdateStatus(ctx, id, models.OrderOrdered)
}

func (s *orderService) ReceiveLine(ctx context.Context, req *ReceiveLineRequest) (*models.PurchaseOrder, error) {
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("receive quantity %d: %w", req.Quantity, ErrInvalidQuantity)
	}

	po, err := s.orders.GetByID(ctx, req.PurchaseOrderID)
	if err != nil {
		return nil, mapNoRows(err, "purchase order")
	}
	if po.Status == models.OrderCancelled || po.Status == models.OrderReceived {
		return nil, fmt.Errorf("order is %s: %w", po.Status, ErrConflict)
	}

	var line *models.PurchaseOrderItem
	for _, l := range po.Items {
		if l.ItemID == req.ItemID {
			line = l
			break
		}
	}
	if line == nil {
		return nil, fmt.Errorf("order line for item %s: %w", req.ItemID, ErrNotFound)
	}
	if line.QuantityReceived+req.Quantity > line.QuantityOrdered {
		return nil, fmt.Errorf("received %d of %d, cannot book %d more: %w",
			line.QuantityReceived, line.QuantityOrdered, req.Quantity, ErrInvalidQuantity)
	}

	// Stock first. If the bookkeeping below fails the ledger is still
	// correct and the line can be re-booked after investigation.
	reference := po.PONumber
	if _, err := s.ledger.Receive(ctx, &ReceiveRequest{
		ItemID:     req.ItemID,
		LocationID: req.LocationID,
		Quantity:   req.Quantity,
		Lot:        req.Lot,
		Reference:  &reference,
		ActorID:    req.ActorID,
	}); err != nil {
		return nil, err
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	orders := s.orders.WithTx(tx)
	locked, err := orders.GetItemForUpdate(ctx, po.ID, req.ItemID)
	if err != nil {
		return nil, mapNoRows(err, "order line")
	}
	locked.QuantityReceived += req.Quantity
	if err := orders.UpdateItemReceived(ctx, locked); err != nil {
		return nil, err
	}

	allReceived := true
	for _, l := range po.Items {
		received := l.QuantityReceived
		if l.ItemID == req.ItemID {
			received = locked.QuantityReceived
		}
		if received < l.QuantityOrdered {
			allReceived = false
			break
		}
	}
	status := models.OrderPartial
	if allReceived {
		status = models.OrderReceived
	}
	if err := orders.UpdateStatus(ctx, po.ID, status); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return s.orders.GetByID(ctx, po.ID)
}

func (s *orderService) Cancel(ctx context.Context, id uuid.UUID) error {
	po, err := s.orders.GetByID(ctx, id)
	if err != nil {
		return mapNoRows(err, "purchase order")
	}
	switch po.Status {
	case models.OrderPending, models.OrderOrdered:
		return s.orders.UpdateStatus(ctx, id, models.OrderCancelled)
	default:
		return fmt.Errorf("order is %s, cannot cancel: %w", po.Status, ErrConflict)
	}
}
