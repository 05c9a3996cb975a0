package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"stationsupply/internal/models"
	"stationsupply/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// VendorService manages vendors and the per-item auto-order rules that feed
// the reorder engine.
type VendorService interface {
	CreateVendor(ctx context.Context, v *models.Vendor) (*models.Vendor, error)
	GetVendor(ctx context.Context, id uuid.UUID) (*models.Vendor, error)
	UpdateVendor(ctx context.Context, v *models.Vendor) (*models.Vendor, error)
	ListVendors(ctx context.Context, activeOnly bool) ([]*models.Vendor, error)

	SetRule(ctx context.Context, rule *models.AutoOrderRule) (*models.AutoOrderRule, error)
	GetRule(ctx context.Context, itemID uuid.UUID) (*models.AutoOrderRule, error)
	ListRules(ctx context.Context) ([]*models.AutoOrderRule, error)
	DeleteRule(ctx context.Context, itemID uuid.UUID) error
}

type vendorService struct {
	vendors repositories.VendorRepository
	rules   repositories.AutoOrderRuleRepository
	items   repositories.ItemRepository
}

func NewVendorService(vendors repositories.VendorRepository, rules repositories.AutoOrderRuleRepository, items repositories.ItemRepository) VendorService {
	return &vendorService{vendors: vendors, rules: rules, items: items}
}

func (s *vendorService) CreateVendor(ctx context.Context, v *models.Vendor) (*models.Vendor, error) {
	v.Name = strings.TrimSpace(v.Name)
	if v.Name == "" {
		return nil, fmt.Errorf("vendor name is required: %w", ErrInvalidInput)
	}
	existing, err := s.vendors.GetByName(ctx, v.Name)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("vendor %q already exists: %w", v.Name, ErrConflict)
	}
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	v.IsActive = true
	if err := s.vendors.Create(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *vendorService) GetVendor(ctx context.Context, id uuid.UUID) (*models.Vendor, error) {
	v, err := s.vendors.GetByID(ctx, id)
	if err != nil {
		return nil, mapNoRows(err, "vendor")
	}
	return v, nil
}

func (s *vendorService) UpdateVendor(ctx context.Context, v *models.Vendor) (*models.Vendor, error) {
	if _, err := s.vendors.GetByID(ctx, v.ID); err != nil {
		return nil, mapNoRows(err, "vendor")
	}
	if err := s.vendors.Update(ctx, v); err != nil {
		return nil, err
	}
	return v, nil
}

func (s *vendorService) ListVendors(ctx context.Context, activeOnly bool) ([]*models.Vendor, error) {
	return s.vendors.List(ctx, activeOnly)
}

func (s *vendorService) SetRule(ctx context.Context, rule *models.AutoOrderRule) (*models.AutoOrderRule, error) {
	if rule.TriggerQuantity < 0 || rule.OrderQuantity <= 0 {
		return nil, fmt.Errorf("rule quantities out of range: %w", ErrInvalidQuantity)
	}
	if _, err := s.items.GetByID(ctx, rule.ItemID); err != nil {
		return nil, mapNoRows(err, "item")
	}
	if rule.PreferredVendorID != nil {
		if _, err := s.vendors.GetByID(ctx, *rule.PreferredVendorID); err != nil {
			return nil, mapNoRows(err, "vendor")
		}
	}
	if rule.ID == uuid.Nil {
		rule.ID = uuid.New()
	}
	if err := s.rules.Upsert(ctx, rule); err != nil {
		return nil, err
	}
	return rule, nil
}

func (s *vendorService) GetRule(ctx context.Context, itemID uuid.UUID) (*models.AutoOrderRule, error) {
	rule, err := s.rules.GetActiveByItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if rule == nil {
		return nil, fmt.Errorf("auto order rule: %w", ErrNotFound)
	}
	return rule, nil
}

func (s *vendorService) ListRules(ctx context.Context) ([]*models.AutoOrderRule, error) {
	return s.rules.List(ctx)
}

func (s *vendorService) DeleteRule(ctx context.Context, itemID uuid.UUID) error {
	return s.rules.Delete(ctx, itemID)
}
