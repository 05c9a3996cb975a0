package services

import (
	"context"
	"errors"
	"time"

	"stationsupply/internal/caching"
	"stationsupply/internal/models"
	"stationsupply/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

const inventoryCacheTTL = 60 * time.Second

// InventoryService is the read side of the ledger: current stock, movement
// history and the below-par report. All mutations go through LedgerService.
type InventoryService interface {
	Current(ctx context.Context, filter *models.InventoryFilter) ([]*models.InventoryView, error)
	GetCurrent(ctx context.Context, itemID, locationID uuid.UUID) (*models.InventoryCurrent, error)
	Movements(ctx context.Context, filter *models.MovementFilter) ([]*models.MovementView, error)
	LowStock(ctx context.Context, limit, offset int) ([]*models.InventoryView, error)
}

type inventoryService struct {
	inventory repositories.InventoryRepository
	movements repositories.MovementRepository
	cache     caching.CacheService
}

func NewInventoryService(inventory repositories.InventoryRepository, movements repositories.MovementRepository, cache caching.CacheService) InventoryService {
	return &inventoryService{inventory: inventory, movements: movements, cache: cache}
}

func (s *inventoryService) Current(ctx context.Context, filter *models.InventoryFilter) ([]*models.InventoryView, error) {
	return s.inventory.ListViews(ctx, filter)
}

func (s *inventoryService) GetCurrent(ctx context.Context, itemID, locationID uuid.UUID) (*models.InventoryCurrent, error) {
	if s.cache != nil {
		cached, err := s.cache.GetInventory(ctx, itemID, locationID)
		if err != nil {
			log.Warn().Err(err).Msg("failed to read inventory cache")
		} else if cached != nil {
			return cached, nil
		}
	}

	inv, err := s.inventory.GetByItemAndLocation(ctx, itemID, locationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, mapNoRows(err, "inventory")
		}
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetInventory(ctx, inv, inventoryCacheTTL); err != nil {
			log.Warn().Err(err).Msg("failed to write inventory cache")
		}
	}
	return inv, nil
}

func (s *inventoryService) Movements(ctx context.Context, filter *models.MovementFilter) ([]*models.MovementView, error) {
	return s.movements.ListViews(ctx, filter)
}

func (s *inventoryService) LowStock(ctx context.Context, limit, offset int) ([]*models.InventoryView, error) {
	return s.inventory.ListViews(ctx, &models.InventoryFilter{
		BelowPar: true,
		Limit:    limit,
		Offset:   offset,
	})
}
