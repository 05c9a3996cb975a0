package repositories

import (
	"context"
	"errors"

	"stationsupply/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type AutoOrderRuleRepository interface {
	WithTx(tx pgx.Tx) AutoOrderRuleRepository
	Upsert(ctx context.Context, rule *models.AutoOrderRule) error
	// GetActiveByItem returns nil, nil when no active rule exists; an absent
	// rule is a normal condition for the reorder engine, not an error.
	GetActiveByItem(ctx context.Context, itemID uuid.UUID) (*models.AutoOrderRule, error)
	List(ctx context.Context) ([]*models.AutoOrderRule, error)
	Delete(ctx context.Context, itemID uuid.UUID) error
}

type autoOrderRuleRepo struct {
	db Querier
}

func NewAutoOrderRuleRepo(db Querier) AutoOrderRuleRepository {
	return &autoOrderRuleRepo{db: db}
}

func (r *autoOrderRuleRepo) WithTx(tx pgx.Tx) AutoOrderRuleRepository {
	return &autoOrderRuleRepo{db: tx}
}

const ruleColumns = `id, item_id, trigger_quantity, order_quantity, preferred_vendor_id, is_active, created_at, updated_at`

func (r *autoOrderRuleRepo) Upsert(ctx context.Context, rule *models.AutoOrderRule) error {
	query := `
		INSERT INTO auto_order_rules (id, item_id, trigger_quantity, order_quantity, preferred_vendor_id, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		ON CONFLICT (item_id) DO UPDATE
		SET trigger_quantity = EXCLUDED.trigger_quantity,
			order_quantity = EXCLUDED.order_quantity,
			preferred_vendor_id = EXCLUDED.preferred_vendor_id,
			is_active = EXCLUDED.is_active,
			updated_at = NOW()
	`
	_, err := r.db.Exec(ctx, query, rule.ID, rule.ItemID, rule.TriggerQuantity, rule.OrderQuantity,
		rule.PreferredVendorID, rule.IsActive)
	return err
}

func (r *autoOrderRuleRepo) GetActiveByItem(ctx context.Context, itemID uuid.UUID) (*models.AutoOrderRule, error) {
	rule := &models.AutoOrderRule{}
	query := `
		SELECT ` + ruleColumns + `
		FROM auto_order_rules
		WHERE item_id = $1 AND is_active
	`
	err := r.db.QueryRow(ctx, query, itemID).Scan(&rule.ID, &rule.ItemID, &rule.TriggerQuantity,
		&rule.OrderQuantity, &rule.PreferredVendorID, &rule.IsActive, &rule.CreatedAt, &rule.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return rule, nil
}

func (r *autoOrderRuleRepo) List(ctx context.Context) ([]*models.AutoOrderRule, error) {
	query := `SELECT ` + ruleColumns + ` FROM auto_order_rules ORDER BY created_at DESC`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rules []*models.AutoOrderRule
	for rows.Next() {
		rule := &models.AutoOrderRule{}
		if err := rows.Scan(&rule.ID, &rule.ItemID, &rule.TriggerQuantity, &rule.OrderQuantity,
			&rule.PreferredVendorID, &rule.IsActive, &rule.CreatedAt, &rule.UpdatedAt); err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return rules, rows.Err()
}

func (r *autoOrderRuleRepo) Delete(ctx context.Context, itemID uuid.UUID) error {
	query := `DELETE FROM auto_order_rules WHERE item_id = $1`
	_, err := r.db.Exec(ctx, query, itemID)
	return err
}
