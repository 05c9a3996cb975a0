package repositories

import (
	"context"

	"stationsupply/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type LocationRepository interface {
	WithTx(tx pgx.Tx) LocationRepository
	Create(ctx context.Context, loc *models.Location) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Location, error)
	Update(ctx context.Context, loc *models.Location) error
	Deactivate(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*models.Location, error)
	ListChildren(ctx context.Context, parentID uuid.UUID) ([]*models.Location, error)
}

type locationRepo struct {
	db Querier
}

func NewLocationRepo(db Querier) LocationRepository {
	return &locationRepo{db: db}
}

func (r *locationRepo) WithTx(tx pgx.Tx) LocationRepository {
	return &locationRepo{db: tx}
}

const locationColumns = `id, name, type, parent_location_id, address, is_active, created_at, updated_at`

func (r *locationRepo) Create(ctx context.Context, loc *models.Location) error {
	query := `
		INSERT INTO locations (id, name, type, parent_location_id, address, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, loc.ID, loc.Name, loc.Type, loc.ParentLocationID, loc.Address, loc.IsActive)
	return err
}

func (r *locationRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Location, error) {
	loc := &models.Location{}
	query := `SELECT ` + locationColumns + ` FROM locations WHERE id = $1`
	err := r.db.QueryRow(ctx, query, id).Scan(&loc.ID, &loc.Name, &loc.Type, &loc.ParentLocationID,
		&loc.Address, &loc.IsActive, &loc.CreatedAt, &loc.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return loc, nil
}

func (r *locationRepo) Update(ctx context.Context, loc *models.Location) error {
	query := `
		UPDATE locations
		SET name = $1, type = $2, parent_location_id = $3, address = $4, is_active = $5, updated_at = NOW()
		WHERE id = $6
	`
	_, err := r.db.Exec(ctx, query, loc.Name, loc.Type, loc.ParentLocationID, loc.Address, loc.IsActive, loc.ID)
	return err
}

func (r *locationRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	query := `UPDATE locations SET is_active = false, updated_at = NOW() WHERE id = $1`
	_, err := r.db.Exec(ctx, query, id)
	return err
}

func (r *locationRepo) List(ctx context.Context, limit, offset int) ([]*models.Location, error) {
	query := `
		SELECT ` + locationColumns + `
		FROM locations
		WHERE is_active
		ORDER BY name
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.Query(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLocations(rows)
}

func (r *locationRepo) ListChildren(ctx context.Context, parentID uuid.UUID) ([]*models.Location, error) {
	query := `
		SELECT ` + locationColumns + `
		FROM locations
		WHERE parent_location_id = $1 AND is_active
		ORDER BY name
	`
	rows, err := r.db.Query(ctx, query, parentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanLocations(rows)
}

func scanLocations(rows pgx.Rows) ([]*models.Location, error) {
	var locations []*models.Location
	for rows.Next() {
		loc := &models.Location{}
		if err := rows.Scan(&loc.ID, &loc.Name, &loc.Type, &loc.ParentLocationID,
			&loc.Address, &loc.IsActive, &loc.CreatedAt, &loc.UpdatedAt); err != nil {
			return nil, err
		}
		locations = append(locations, loc)
	}
	return locations, rows.Err()
}
