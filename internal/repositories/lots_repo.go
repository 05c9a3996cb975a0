package repositories

import (
	"context"
	"fmt"
	"time"

	"stationsupply/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type LotRepository interface {
	WithTx(tx pgx.Tx) LotRepository
	Create(ctx context.Context, lot *models.InventoryLot) error
	GetByTag(ctx context.Context, tag string) (*models.InventoryLot, error)
	TagExists(ctx context.Context, tag string) (bool, error)
	CountLive(ctx context.Context, itemID, locationID uuid.UUID) (int, error)
	// PickLive returns up to limit live lots at a location, earliest
	// expiration first (nulls last), then oldest received. This is the
	// ordering used when transfers and consumption pick which units move.
	PickLive(ctx context.Context, itemID, locationID uuid.UUID, limit int) ([]*models.InventoryLot, error)
	Relocate(ctx context.Context, lotIDs []uuid.UUID, newLocationID uuid.UUID) error
	Retire(ctx context.Context, lotIDs []uuid.UUID, status models.LotStatus) error
	ListExpiring(ctx context.Context, itemID, locationID *uuid.UUID, cutoff time.Time, limit, offset int) ([]*models.ExpiringLot, error)
	ListExpired(ctx context.Context, locationID *uuid.UUID, limit, offset int) ([]*models.ExpiringLot, error)
}

type lotRepo struct {
	db Querier
}

func NewLotRepo(db Querier) LotRepository {
	return &lotRepo{db: db}
}

func (r *lotRepo) WithTx(tx pgx.Tx) LotRepository {
	return &lotRepo{db: tx}
}

const lotColumns = `id, item_id, location_id, tag, status, expiration_date, lot_number, received_date, created_at, updated_at`

func (r *lotRepo) Create(ctx context.Context, lot *models.InventoryLot) error {
	query := `
		INSERT INTO inventory_lots (id, item_id, location_id, tag, status, expiration_date, lot_number, received_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NOW(), NOW())
	`
	_, err := r.db.Exec(ctx, query, lot.ID, lot.ItemID, lot.LocationID, lot.Tag, lot.Status,
		lot.ExpirationDate, lot.LotNumber, lot.ReceivedDate)
	return err
}

func (r *lotRepo) GetByTag(ctx context.Context, tag string) (*models.InventoryLot, error) {
	lot := &models.InventoryLot{}
	query := `
		SELECT ` + lotColumns + `
		FROM inventory_lots
		WHERE tag = $1
	`
	err := r.db.QueryRow(ctx, query, tag).Scan(&lot.ID, &lot.ItemID, &lot.LocationID, &lot.Tag, &lot.Status,
		&lot.ExpirationDate, &lot.LotNumber, &lot.ReceivedDate, &lot.CreatedAt, &lot.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return lot, nil
}

func (r *lotRepo) TagExists(ctx context.Context, tag string) (bool, error) {
	var exists bool
	query := `SELECT EXISTS (SELECT 1 FROM inventory_lots WHERE tag = $1 AND status = 'live')`
	if err := r.db.QueryRow(ctx, query, tag).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *lotRepo) CountLive(ctx context.Context, itemID, locationID uuid.UUID) (int, error) {
	var count int
	query := `
		SELECT COUNT(*) FROM inventory_lots
		WHERE item_id = $1 AND location_id = $2 AND status = 'live'
	`
	if err := r.db.QueryRow(ctx, query, itemID, locationID).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

func (r *lotRepo) PickLive(ctx context.Context, itemID, locationID uuid.UUID, limit int) ([]*models.InventoryLot, error) {
	query := `
		SELECT ` + lotColumns + `
		FROM inventory_lots
		WHERE item_id = $1 AND location_id = $2 AND status = 'live'
		ORDER BY expiration_date ASC NULLS LAST, received_date ASC
		LIMIT $3
		FOR UPDATE
	`
	rows, err := r.db.Query(ctx, query, itemID, locationID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lots []*models.InventoryLot
	for rows.Next() {
		lot := &models.InventoryLot{}
		if err := rows.Scan(&lot.ID, &lot.ItemID, &lot.LocationID, &lot.Tag, &lot.Status,
			&lot.ExpirationDate, &lot.LotNumber, &lot.ReceivedDate, &lot.CreatedAt, &lot.UpdatedAt); err != nil {
			return nil, err
		}
		lots = append(lots, lot)
	}
	return lots, rows.Err()
}

func (r *lotRepo) Relocate(ctx context.Context, lotIDs []uuid.UUID, newLocationID uuid.UUID) error {
	if len(lotIDs) == 0 {
		return nil
	}
	query := `
		UPDATE inventory_lots
		SET location_id = $1, updated_at = NOW()
		WHERE id = ANY($2)
	`
	_, err := r.db.Exec(ctx, query, newLocationID, lotIDs)
	return err
}

func (r *lotRepo) Retire(ctx context.Context, lotIDs []uuid.UUID, status models.LotStatus) error {
	if len(lotIDs) == 0 {
		return nil
	}
	query := `
		UPDATE inventory_lots
		SET status = $1, updated_at = NOW()
		WHERE id = ANY($2)
	`
	_, err := r.db.Exec(ctx, query, status, lotIDs)
	return err
}

func (r *lotRepo) ListExpiring(ctx context.Context, itemID, locationID *uuid.UUID, cutoff time.Time, limit, offset int) ([]*models.ExpiringLot, error) {
	queryBase := `
		SELECT il.id, il.item_id, il.location_id, il.tag, il.status, il.expiration_date, il.lot_number,
			il.received_date, il.created_at, il.updated_at, i.item_code, i.name, l.name
		FROM inventory_lots il
		JOIN items i ON i.id = il.item_id
		JOIN locations l ON l.id = il.location_id
		WHERE il.status = 'live'
			AND il.expiration_date IS NOT NULL
			AND il.expiration_date >= NOW()
			AND il.expiration_date <= $1
	`
	args := []any{cutoff}
	n := 1

	if itemID != nil {
		n++
		queryBase += fmt.Sprintf(" AND il.item_id = $%d", n)
		args = append(args, *itemID)
	}
	if locationID != nil {
		n++
		queryBase += fmt.Sprintf(" AND il.location_id = $%d", n)
		args = append(args, *locationID)
	}

	queryBase += " ORDER BY il.expiration_date ASC"
	n++
	queryBase += fmt.Sprintf(" LIMIT $%d", n)
	args = append(args, limit)
	n++
	queryBase += fmt.Sprintf(" OFFSET $%d", n)
	args = append(args, offset)

	return r.scanExpiring(ctx, queryBase, args...)
}

func (r *lotRepo) ListExpired(ctx context.Context, locationID *uuid.UUID, limit, offset int) ([]*models.ExpiringLot, error) {
	queryBase := `
		SELECT il.id, il.item_id, il.location_id, il.tag, il.status, il.expiration_date, il.lot_number,
			il.received_date, il.created_at, il.updated_at, i.item_code, i.name, l.name
		FROM inventory_lots il
		JOIN items i ON i.id = il.item_id
		JOIN locations l ON l.id = il.location_id
		WHERE il.status = 'live'
			AND il.expiration_date IS NOT NULL
			AND il.expiration_date < NOW()
	`
	args := []any{}
	n := 0

	if locationID != nil {
		n++
		queryBase += fmt.Sprintf(" AND il.location_id = $%d", n)
		args = append(args, *locationID)
	}

	queryBase += " ORDER BY il.expiration_date ASC"
	n++
	queryBase += fmt.Sprintf(" LIMIT $%d", n)
	args = append(args, limit)
	n++
	queryBase += fmt.Sprintf(" OFFSET $%d", n)
	args = append(args, offset)

	return r.scanExpiring(ctx, queryBase, args...)
}

func (r *lotRepo) scanExpiring(ctx context.Context, query string, args ...any) ([]*models.ExpiringLot, error) {
	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	now := time.Now()
	var lots []*models.ExpiringLot
	for rows.Next() {
		lot := &models.ExpiringLot{}
		if err := rows.Scan(&lot.ID, &lot.ItemID, &lot.LocationID, &lot.Tag, &lot.Status,
			&lot.ExpirationDate, &lot.LotNumber, &lot.ReceivedDate, &lot.CreatedAt, &lot.UpdatedAt,
			&lot.ItemCode, &lot.ItemName, &lot.LocationName); err != nil {
			return nil, err
		}
		if lot.ExpirationDate != nil {
			lot.DaysUntilExpiration = int(lot.ExpirationDate.Sub(now).Hours() / 24)
		}
		lots = append(lots, lot)
	}
	return lots, rows.Err()
}
