package repositories

import (
	"context"
	"fmt"

	"stationsupply/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type OrderRepository interface {
	WithTx(tx pgx.Tx) OrderRepository
	Create(ctx context.Context, po *models.PurchaseOrder) error
	CreateItem(ctx context.Context, line *models.PurchaseOrderItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error)
	GetItemForUpdate(ctx context.Context, poID, itemID uuid.UUID) (*models.PurchaseOrderItem, error)
	UpdateItemReceived(ctx context.Context, line *models.PurchaseOrderItem) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) error
	List(ctx context.Context, status *models.OrderStatus, limit, offset int) ([]*models.PurchaseOrder, error)
}

type orderRepo struct {
	db Querier
}

func NewOrderRepo(db Querier) OrderRepository {
	return &orderRepo{db: db}
}

func (r *orderRepo) WithTx(tx pgx.Tx) OrderRepository {
	return &orderRepo{db: tx}
}

const orderColumns = `id, po_number, vendor_id, status, order_date, expected_delivery_date, received_date, total_cost, created_by, created_at, updated_at`

func (r *orderRepo) Create(ctx context.Context, po *models.PurchaseOrder) error {
	query := `
		INSERT INTO purchase_orders (id, po_number, vendor_id, status, order_date, expected_delivery_date, total_cost, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, po.ID, po.PONumber, po.VendorID, po.Status, po.OrderDate,
		po.ExpectedDeliveryDate, po.TotalCost, po.CreatedBy)
	return err
}

func (r *orderRepo) CreateItem(ctx context.Context, line *models.PurchaseOrderItem) error {
	query := `
		INSERT INTO purchase_order_items (id, po_id, item_id, quantity_ordered, quantity_received, unit_cost, total_cost)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.Exec(ctx, query, line.ID, line.POID, line.ItemID, line.QuantityOrdered,
		line.QuantityReceived, line.UnitCost, line.TotalCost)
	return err
}

func (r *orderRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.PurchaseOrder, error) {
	po := &models.PurchaseOrder{}
	query := `SELECT ` + orderColumns + ` FROM purchase_orders WHERE id = $1`
	err := r.db.QueryRow(ctx, query, id).Scan(&po.ID, &po.PONumber, &po.VendorID, &po.Status, &po.OrderDate,
		&po.ExpectedDeliveryDate, &po.ReceivedDate, &po.TotalCost, &po.CreatedBy, &po.CreatedAt, &po.UpdatedAt)
	if err != nil {
		return nil, err
	}

	itemsQuery := `
		SELECT id, po_id, item_id, quantity_ordered, quantity_received, unit_cost, total_cost
		FROM purchase_order_items
		WHERE po_id = $1
	`
	rows, err := r.db.Query(ctx, itemsQuery, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		line := &models.PurchaseOrderItem{}
		if err := rows.Scan(&line.ID, &line.POID, &line.ItemID, &line.QuantityOrdered,
			&line.QuantityReceived, &line.UnitCost, &line.TotalCost); err != nil {
			return nil, err
		}
		po.Items = append(po.Items, line)
	}
	return po, rows.Err()
}

func (r *orderRepo) GetItemForUpdate(ctx context.Context, poID, itemID uuid.UUID) (*models.PurchaseOrderItem, error) {
	line := &models.PurchaseOrderItem{}
	query := `
		SELECT id, po_id, item_id, quantity_ordered, quantity_received, unit_cost, total_cost
		FROM purchase_order_items
		WHERE po_id = $1 AND item_id = $2
		FOR UPDATE
	`
	err := r.db.QueryRow(ctx, query, poID, itemID).Scan(&line.ID, &line.POID, &line.ItemID,
		&line.QuantityOrdered, &line.QuantityReceived, &line.UnitCost, &line.TotalCost)
	if err != nil {
		return nil, err
	}
	return line, nil
}

func (r *orderRepo) UpdateItemReceived(ctx context.Context, line *models.PurchaseOrderItem) error {
	query := `UPDATE purchase_order_items SET quantity_received = $1 WHERE id = $2`
	_, err := r.db.Exec(ctx, query, line.QuantityReceived, line.ID)
	return err
}

func (r *orderRepo) UpdateStatus(ctx context.Context, id uuid.UUID, status models.OrderStatus) error {
	query := `
		UPDATE purchase_orders
		SET status = $1,
			received_date = CASE WHEN $1 = 'received' THEN NOW() ELSE received_date END,
			updated_at = NOW()
		WHERE id = $2
	`
	_, err := r.db.Exec(ctx, query, status, id)
	return err
}

func (r *orderRepo) List(ctx context.Context, status *models.OrderStatus, limit, offset int) ([]*models.PurchaseOrder, error) {
	query := `SELECT ` + orderColumns + ` FROM purchase_orders`
	args := []any{}
	if status != nil {
		query += ` WHERE status = $1`
		args = append(args, *status)
	}
	query += ` ORDER BY order_date DESC`
	query += ` LIMIT $` + itoa(len(args)+1)
	args = append(args, limit)
	query += ` OFFSET $` + itoa(len(args)+1)
	args = append(args, offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []*models.PurchaseOrder
	for rows.Next() {
		po := &models.PurchaseOrder{}
		if err := rows.Scan(&po.ID, &po.PONumber, &po.VendorID, &po.Status, &po.OrderDate,
			&po.ExpectedDeliveryDate, &po.ReceivedDate, &po.TotalCost, &po.CreatedBy, &po.CreatedAt, &po.UpdatedAt); err != nil {
			return nil, err
		}
		orders = append(orders, po)
	}
	return orders, rows.Err()
}

func itoa(n int) string {
	return fmt.Sprintf("%d", n)
}
