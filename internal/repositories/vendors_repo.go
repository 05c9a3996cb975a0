package repositories

import (
	"context"

	"stationsupply/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type VendorRepository interface {
	WithTx(tx pgx.Tx) VendorRepository
	Create(ctx context.Context, v *models.Vendor) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Vendor, error)
	GetByName(ctx context.Context, name string) (*models.Vendor, error)
	Update(ctx context.Context, v *models.Vendor) error
	List(ctx context.Context, activeOnly bool) ([]*models.Vendor, error)
}

type vendorRepo struct {
	db Querier
}

func NewVendorRepo(db Querier) VendorRepository {
	return &vendorRepo{db: db}
}

func (r *vendorRepo) WithTx(tx pgx.Tx) VendorRepository {
	return &vendorRepo{db: tx}
}

const vendorColumns = `id, name, contact_name, email, phone, website, notes, is_active, created_at, updated_at`

func scanVendor(row pgx.Row) (*models.Vendor, error) {
	v := &models.Vendor{}
	err := row.Scan(&v.ID, &v.Name, &v.ContactName, &v.Email, &v.Phone, &v.Website, &v.Notes,
		&v.IsActive, &v.CreatedAt, &v.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (r *vendorRepo) Create(ctx context.Context, v *models.Vendor) error {
	query := `
		INSERT INTO vendors (id, name, contact_name, email, phone, website, notes, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, v.ID, v.Name, v.ContactName, v.Email, v.Phone, v.Website, v.Notes, v.IsActive)
	return err
}

func (r *vendorRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.Vendor, error) {
	query := `SELECT ` + vendorColumns + ` FROM vendors WHERE id = $1`
	return scanVendor(r.db.QueryRow(ctx, query, id))
}

func (r *vendorRepo) GetByName(ctx context.Context, name string) (*models.Vendor, error) {
	query := `SELECT ` + vendorColumns + ` FROM vendors WHERE name = $1`
	return scanVendor(r.db.QueryRow(ctx, query, name))
}

func (r *vendorRepo) Update(ctx context.Context, v *models.Vendor) error {
	query := `
		UPDATE vendors
		SET name = $1, contact_name = $2, email = $3, phone = $4, website = $5, notes = $6, is_active = $7, updated_at = NOW()
		WHERE id = $8
	`
	_, err := r.db.Exec(ctx, query, v.Name, v.ContactName, v.Email, v.Phone, v.Website, v.Notes, v.IsActive, v.ID)
	return err
}

func (r *vendorRepo) List(ctx context.Context, activeOnly bool) ([]*models.Vendor, error) {
	query := `SELECT ` + vendorColumns + ` FROM vendors`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY name`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var vendors []*models.Vendor
	for rows.Next() {
		v := &models.Vendor{}
		if err := rows.Scan(&v.ID, &v.Name, &v.ContactName, &v.Email, &v.Phone, &v.Website, &v.Notes,
			&v.IsActive, &v.CreatedAt, &v.UpdatedAt); err != nil {
			return nil, err
		}
		vendors = append(vendors, v)
	}
	return vendors, rows.Err()
}
