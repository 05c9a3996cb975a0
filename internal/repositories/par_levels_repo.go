package repositories

import (
	"context"

	"stationsupply/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type ParLevelRepository interface {
	WithTx(tx pgx.Tx) ParLevelRepository
	Upsert(ctx context.Context, p *models.ParLevel) error
	GetByItemAndLocation(ctx context.Context, itemID, locationID uuid.UUID) (*models.ParLevel, error)
	ListByItem(ctx context.Context, itemID uuid.UUID) ([]*models.ParLevel, error)
	ListAll(ctx context.Context) ([]*models.ParLevel, error)
	Delete(ctx context.Context, itemID, locationID uuid.UUID) error
}

type parLevelRepo struct {
	db Querier
}

func NewParLevelRepo(db Querier) ParLevelRepository {
	return &parLevelRepo{db: db}
}

func (r *parLevelRepo) WithTx(tx pgx.Tx) ParLevelRepository {
	return &parLevelRepo{db: tx}
}

const parLevelColumns = `id, item_id, location_id, par_quantity, reorder_quantity, max_quantity, created_at, updated_at`

func (r *parLevelRepo) Upsert(ctx context.Context, p *models.ParLevel) error {
	query := `
		INSERT INTO par_levels (id, item_id, location_id, par_quantity, reorder_quantity, max_quantity, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		ON CONFLICT (item_id, location_id) DO UPDATE
		SET par_quantity = EXCLUDED.par_quantity,
			reorder_quantity = EXCLUDED.reorder_quantity,
			max_quantity = EXCLUDED.max_quantity,
			updated_at = NOW()
	`
	_, err := r.db.Exec(ctx, query, p.ID, p.ItemID, p.LocationID, p.ParQuantity, p.ReorderQuantity, p.MaxQuantity)
	return err
}

func (r *parLevelRepo) GetByItemAndLocation(ctx context.Context, itemID, locationID uuid.UUID) (*models.ParLevel, error) {
	p := &models.ParLevel{}
	query := `
		SELECT ` + parLevelColumns + `
		FROM par_levels
		WHERE item_id = $1 AND location_id = $2
	`
	err := r.db.QueryRow(ctx, query, itemID, locationID).Scan(&p.ID, &p.ItemID, &p.LocationID,
		&p.ParQuantity, &p.ReorderQuantity, &p.MaxQuantity, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (r *parLevelRepo) ListByItem(ctx context.Context, itemID uuid.UUID) ([]*models.ParLevel, error) {
	query := `
		SELECT ` + parLevelColumns + `
		FROM par_levels
		WHERE item_id = $1
		ORDER BY location_id
	`
	rows, err := r.db.Query(ctx, query, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanParLevels(rows)
}

func (r *parLevelRepo) ListAll(ctx context.Context) ([]*models.ParLevel, error) {
	query := `
		SELECT ` + parLevelColumns + `
		FROM par_levels
		ORDER BY item_id, location_id
	`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanParLevels(rows)
}

func (r *parLevelRepo) Delete(ctx context.Context, itemID, locationID uuid.UUID) error {
	query := `DELETE FROM par_levels WHERE item_id = $1 AND location_id = $2`
	_, err := r.db.Exec(ctx, query, itemID, locationID)
	return err
}

func scanParLevels(rows pgx.Rows) ([]*models.ParLevel, error) {
	var levels []*models.ParLevel
	for rows.Next() {
		p := &models.ParLevel{}
		if err := rows.Scan(&p.ID, &p.ItemID, &p.LocationID, &p.ParQuantity, &p.ReorderQuantity,
			&p.MaxQuantity, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		levels = append(levels, p)
	}
	return levels, rows.Err()
}
