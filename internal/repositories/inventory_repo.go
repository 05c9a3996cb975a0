package repositories

import (
	"context"
	"fmt"
	"time"

	"stationsupply/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type InventoryRepository interface {
	WithTx(tx pgx.Tx) InventoryRepository
	Create(ctx context.Context, inv *models.InventoryCurrent) error
	GetByItemAndLocation(ctx context.Context, itemID, locationID uuid.UUID) (*models.InventoryCurrent, error)
	GetForUpdate(ctx context.Context, itemID, locationID uuid.UUID) (*models.InventoryCurrent, error)
	UpdateQuantities(ctx context.Context, inv *models.InventoryCurrent) error
	SetCounted(ctx context.Context, inv *models.InventoryCurrent, countedAt time.Time, countedBy uuid.UUID) error
	ListByItem(ctx context.Context, itemID uuid.UUID) ([]*models.InventoryCurrent, error)
	ListViews(ctx context.Context, filter *models.InventoryFilter) ([]*models.InventoryView, error)
}

type inventoryRepo struct {
	db Querier
}

func NewInventoryRepo(db Querier) InventoryRepository {
	return &inventoryRepo{db: db}
}

func (r *inventoryRepo) WithTx(tx pgx.Tx) InventoryRepository {
	return &inventoryRepo{db: tx}
}

const inventoryColumns = `id, item_id, location_id, quantity_on_hand, quantity_allocated, last_counted_at, last_counted_by, created_at, updated_at`

func scanInventory(row pgx.Row) (*models.InventoryCurrent, error) {
	inv := &models.InventoryCurrent{}
	err := row.Scan(&inv.ID, &inv.ItemID, &inv.LocationID, &inv.QuantityOnHand, &inv.QuantityAllocated,
		&inv.LastCountedAt, &inv.LastCountedBy, &inv.CreatedAt, &inv.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return inv, nil
}

func (r *inventoryRepo) Create(ctx context.Context, inv *models.InventoryCurrent) error {
	query := `
		INSERT INTO inventory_current (id, item_id, location_id, quantity_on_hand, quantity_allocated, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, inv.ID, inv.ItemID, inv.LocationID, inv.QuantityOnHand, inv.QuantityAllocated)
	return err
}

func (r *inventoryRepo) GetByItemAndLocation(ctx context.Context, itemID, locationID uuid.UUID) (*models.InventoryCurrent, error) {
	query := `
		SELECT ` + inventoryColumns + `
		FROM inventory_current
		WHERE item_id = $1 AND location_id = $2
	`
	return scanInventory(r.db.QueryRow(ctx, query, itemID, locationID))
}

// GetForUpdate locks the row for the remainder of the enclosing transaction.
// Callers locking more than one row must lock in ascending location id order.
func (r *inventoryRepo) GetForUpdate(ctx context.Context, itemID, locationID uuid.UUID) (*models.InventoryCurrent, error) {
	query := `
		SELECT ` + inventoryColumns + `
		FROM inventory_current
		WHERE item_id = $1 AND location_id = $2
		FOR UPDATE
	`
	return scanInventory(r.db.QueryRow(ctx, query, itemID, locationID))
}

func (r *inventoryRepo) UpdateQuantities(ctx context.Context, inv *models.InventoryCurrent) error {
	query := `
		UPDATE inventory_current
		SET quantity_on_hand = $1, quantity_allocated = $2, updated_at = NOW()
		WHERE id = $3
	`
	_, err := r.db.Exec(ctx, query, inv.QuantityOnHand, inv.QuantityAllocated, inv.ID)
	return err
}

func (r *inventoryRepo) SetCounted(ctx context.Context, inv *models.InventoryCurrent, countedAt time.Time, countedBy uuid.UUID) error {
	query := `
		UPDATE inventory_current
		SET quantity_on_hand = $1, last_counted_at = $2, last_counted_by = $3, updated_at = NOW()
		WHERE id = $4
	`
	_, err := r.db.Exec(ctx, query, inv.QuantityOnHand, countedAt, countedBy, inv.ID)
	return err
}

func (r *inventoryRepo) ListByItem(ctx context.Context, itemID uuid.UUID) ([]*models.InventoryCurrent, error) {
	query := `
		SELECT ` + inventoryColumns + `
		FROM inventory_current
		WHERE item_id = $1
		ORDER BY location_id
	`
	rows, err := r.db.Query(ctx, query, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []*models.InventoryCurrent
	for rows.Next() {
		inv := &models.InventoryCurrent{}
		if err := rows.Scan(&inv.ID, &inv.ItemID, &inv.LocationID, &inv.QuantityOnHand, &inv.QuantityAllocated,
			&inv.LastCountedAt, &inv.LastCountedBy, &inv.CreatedAt, &inv.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, inv)
	}
	return result, rows.Err()
}

// ListViews returns enriched rows joined with catalog names. BelowPar keeps
// only rows whose available quantity is under the location's par quantity.
func (r *inventoryRepo) ListViews(ctx context.Context, filter *models.InventoryFilter) ([]*models.InventoryView, error) {
	if filter.Limit <= 0 {
		filter.Limit = 100
	}

	queryBase := `
		SELECT ic.id, ic.item_id, ic.location_id, ic.quantity_on_hand, ic.quantity_allocated,
			ic.last_counted_at, ic.last_counted_by, ic.created_at, ic.updated_at,
			i.item_code, i.name, l.name, i.unit_of_measure
		FROM inventory_current ic
		JOIN items i ON i.id = ic.item_id
		JOIN locations l ON l.id = ic.location_id
		WHERE i.is_active AND l.is_active
	`
	args := []any{}
	n := 0

	if filter.ItemID != nil {
		n++
		queryBase += fmt.Sprintf(" AND ic.item_id = $%d", n)
		args = append(args, *filter.ItemID)
	}
	if filter.LocationID != nil {
		n++
		queryBase += fmt.Sprintf(" AND ic.location_id = $%d", n)
		args = append(args, *filter.LocationID)
	}
	if filter.BelowPar {
		queryBase += `
		AND EXISTS (
			SELECT 1 FROM par_levels p
			WHERE p.item_id = ic.item_id AND p.location_id = ic.location_id
				AND ic.quantity_on_hand - ic.quantity_allocated < p.par_quantity
		)`
	}

	queryBase += " ORDER BY l.name, i.name"
	n++
	queryBase += fmt.Sprintf(" LIMIT $%d", n)
	args = append(args, filter.Limit)
	if filter.Offset > 0 {
		n++
		queryBase += fmt.Sprintf(" OFFSET $%d", n)
		args = append(args, filter.Offset)
	}

	rows, err := r.db.Query(ctx, queryBase, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var views []*models.InventoryView
	for rows.Next() {
		v := &models.InventoryView{}
		if err := rows.Scan(&v.ID, &v.ItemID, &v.LocationID, &v.QuantityOnHand, &v.QuantityAllocated,
			&v.LastCountedAt, &v.LastCountedBy, &v.CreatedAt, &v.UpdatedAt,
			&v.ItemCode, &v.ItemName, &v.LocationName, &v.UnitOfMeasure); err != nil {
			return nil, err
		}
		v.QuantityAvail = v.QuantityAvailable()
		views = append(views, v)
	}
	return views, rows.Err()
}
