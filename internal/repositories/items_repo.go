package repositories

import (
	"context"

	"stationsupply/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ItemRepository interface {
	WithTx(tx pgx.Tx) ItemRepository
	Create(ctx context.Context, item *models.Item) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error)
	GetByCode(ctx context.Context, code string) (*models.Item, error)
	Update(ctx context.Context, item *models.Item) error
	Deactivate(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*models.Item, error)
}

type itemRepo struct {
	db Querier
}

func NewItemRepo(db Querier) ItemRepository {
	return &itemRepo{db: db}
}

func (r *itemRepo) WithTx(tx pgx.Tx) ItemRepository {
	return &itemRepo{db: tx}
}

const itemColumns = `id, item_code, name, description, category, unit_of_measure,
		requires_expiration_tracking, is_controlled_substance, cost_per_unit, lead_time_days,
		max_reorder_quantity_per_station, preferred_vendor_id, is_active, created_at, updated_at`

func scanItem(row pgx.Row) (*models.Item, error) {
	item := &models.Item{}
	err := row.Scan(&item.ID, &item.ItemCode, &item.Name, &item.Description, &item.Category, &item.UnitOfMeasure,
		&item.RequiresExpirationTracking, &item.IsControlledSubstance, &item.CostPerUnit, &item.LeadTimeDays,
		&item.MaxReorderQuantityPerStation, &item.PreferredVendorID, &item.IsActive, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *itemRepo) Create(ctx context.Context, item *models.Item) error {
	query := `
		INSERT INTO items (id, item_code, name, description, category, unit_of_measure,
			requires_expiration_tracking, is_controlled_substance, cost_per_unit, lead_time_days,
			max_reorder_quantity_per_station, preferred_vendor_id, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, item.ID, item.ItemCode, item.Name, item.Description, item.Category,
		item.UnitOfMeasure, item.RequiresExpirationTracking, item.IsControlledSubstance, item.CostPerUnit,
		item.LeadTimeDays, item.MaxReorderQuantityPerStation, item.PreferredVendorID, item.IsActive)
	return err
}

func (r *itemRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE id = $1`
	return scanItem(r.db.QueryRow(ctx, query, id))
}

func (r *itemRepo) GetByCode(ctx context.Context, code string) (*models.Item, error) {
	query := `SELECT ` + itemColumns + ` FROM items WHERE item_code = $1`
	return scanItem(r.db.QueryRow(ctx, query, code))
}

func (r *itemRepo) Update(ctx context.Context, item *models.Item) error {
	query := `
		UPDATE items
		SET name = $1, description = $2, category = $3, unit_of_measure = $4,
			requires_expiration_tracking = $5, is_controlled_substance = $6, cost_per_unit = $7,
			lead_time_days = $8, max_reorder_quantity_per_station = $9, preferred_vendor_id = $10,
			is_active = $11, updated_at = NOW()
		WHERE id = $12
	`
	_, err := r.db.Exec(ctx, query, item.Name, item.Description, item.Category, item.UnitOfMeasure,
		item.RequiresExpirationTracking, item.IsControlledSubstance, item.CostPerUnit, item.LeadTimeDays,
		item.MaxReorderQuantityPerStation, item.PreferredVendorID, item.IsActive, item.ID)
	return err
}

func (r *itemRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE items SET is_active = false, updated_at = NOW() WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *itemRepo) List(ctx context.Context, limit, offset int) ([]*models.Item, error) {
	query := `
		SELECT ` + itemColumns + `
		FROM items
		WHERE is_active
		ORDER BY name
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*models.Item
	for rows.Next() {
		item := &models.Item{}
		if err := rows.Scan(&item.ID, &item.ItemCode, &item.Name, &item.Description, &item.Category, &item.UnitOfMeasure,
			&item.RequiresExpirationTracking, &item.IsControlledSubstance, &item.CostPerUnit, &item.LeadTimeDays,
			&item.MaxReorderQuantityPerStation, &item.PreferredVendorID, &item.IsActive, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}
