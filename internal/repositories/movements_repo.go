package repositories

import (
	"context"
	"fmt"

	"stationsupply/internal/models"

	"github.com/jackc/pgx/v5"
)

// MovementRepository appends and reads the immutable movement log. There is
// deliberately no update or delete.
type MovementRepository interface {
	WithTx(tx pgx.Tx) MovementRepository
	Append(ctx context.Context, m *models.Movement) error
	ListViews(ctx context.Context, filter *models.MovementFilter) ([]*models.MovementView, error)
}

type movementRepo struct {
	db Querier
}

func NewMovementRepo(db Querier) MovementRepository {
	return &movementRepo{db: db}
}

func (r *movementRepo) WithTx(tx pgx.Tx) MovementRepository {
	return &movementRepo{db: tx}
}

func (r *movementRepo) Append(ctx context.Context, m *models.Movement) error {
	query := `
		INSERT INTO movements (id, item_id, from_location_id, to_location_id, quantity, movement_type, reference, notes, performed_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, NOW())
	`
	_, err := r.db.Exec(ctx, query, m.ID, m.ItemID, m.FromLocationID, m.ToLocationID, m.Quantity,
		m.MovementType, m.Reference, m.Notes, m.PerformedBy)
	return err
}

func (r *movementRepo) ListViews(ctx context.Context, filter *models.MovementFilter) ([]*models.MovementView, error) {
	if filter.Limit <= 0 {
		filter.Limit = 100
	}

	queryBase := `
		SELECT m.id, m.item_id, m.from_location_id, m.to_location_id, m.quantity, m.movement_type,
			m.reference, m.notes, m.performed_by, m.created_at,
			i.item_code, i.name, fl.name, tl.name
		FROM movements m
		JOIN items i ON i.id = m.item_id
		LEFT JOIN locations fl ON fl.id = m.from_location_id
		LEFT JOIN locations tl ON tl.id = m.to_location_id
		WHERE 1=1
	`
	args := []any{}
	n := 0

	if filter.ItemID != nil {
		n++
		queryBase += fmt.Sprintf(" AND m.item_id = $%d", n)
		args = append(args, *filter.ItemID)
	}
	if filter.LocationID != nil {
		n++
		queryBase += fmt.Sprintf(" AND (m.from_location_id = $%d OR m.to_location_id = $%d)", n, n)
		args = append(args, *filter.LocationID)
	}
	if filter.MovementType != nil {
		n++
		queryBase += fmt.Sprintf(" AND m.movement_type = $%d", n)
		args = append(args, *filter.MovementType)
	}
	if filter.StartDate != nil {
		n++
		queryBase += fmt.Sprintf(" AND m.created_at >= $%d", n)
		args = append(args, *filter.StartDate)
	}
	if filter.EndDate != nil {
		n++
		queryBase += fmt.Sprintf(" AND m.created_at <= $%d", n)
		args = append(args, *filter.EndDate)
	}

	queryBase += " ORDER BY m.created_at DESC"
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

	var views []*models.MovementView
	for rows.Next() {
		v := &models.MovementView{}
		if err := rows.Scan(&v.ID, &v.ItemID, &v.FromLocationID, &v.ToLocationID, &v.Quantity, &v.MovementType,
			&v.Reference, &v.Notes, &v.PerformedBy, &v.CreatedAt,
			&v.ItemCode, &v.ItemName, &v.FromLocationName, &v.ToLocationName); err != nil {
			return nil, err
		}
		views = append(views, v)
	}
	return views, rows.Err()
}
