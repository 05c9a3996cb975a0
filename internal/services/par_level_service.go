package services

import (
	"context"
	"errors"
	"fmt"

	"stationsupply/internal/models"
	"stationsupply/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ParLevelService manages the stocking thresholds the reorder engine reads.
type ParLevelService interface {
	Set(ctx context.Context, p *models.ParLevel) (*models.ParLevel, error)
	BulkSet(ctx context.Context, update *models.BulkParLevelUpdate) (int, error)
	Get(ctx context.Context, itemID, locationID uuid.UUID) (*models.ParLevel, error)
	ListByItem(ctx context.Context, itemID uuid.UUID) ([]*models.ParLevel, error)
	Delete(ctx context.Context, itemID, locationID uuid.UUID) error
}

type parLevelService struct {
	db        TxBeginner
	parLevels repositories.ParLevelRepository
	items     repositories.ItemRepository
	locations repositories.LocationRepository
}

func NewParLevelService(db TxBeginner, parLevels repositories.ParLevelRepository, items repositories.ItemRepository, locations repositories.LocationRepository) ParLevelService {
	return &parLevelService{db: db, parLevels: parLevels, items: items, locations: locations}
}

func (s *parLevelService) Set(ctx context.Context, p *models.ParLevel) (*models.ParLevel, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if _, err := s.items.GetByID(ctx, p.ItemID); err != nil {
		return nil, mapNoRows(err, "item")
	}
	if _, err := s.locations.GetByID(ctx, p.LocationID); err != nil {
		return nil, mapNoRows(err, "location")
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if err := s.parLevels.Upsert(ctx, p); err != nil {
		return nil, err
	}
	return s.parLevels.GetByItemAndLocation(ctx, p.ItemID, p.LocationID)
}

// BulkSet applies the given thresholds to the cross product of items and
// locations in one transaction. Existing rows keep any threshold the update
// leaves unset. Returns the number of rows written.
func (s *parLevelService) BulkSet(ctx context.Context, update *models.BulkParLevelUpdate) (int, error) {
	if len(update.ItemIDs) == 0 || len(update.LocationIDs) == 0 {
		return 0, fmt.Errorf("bulk update needs at least one item and one location: %w", ErrInvalidInput)
	}
	if update.ParQuantity == nil && update.ReorderQuantity == nil {
		return 0, fmt.Errorf("bulk update changes nothing: %w", ErrInvalidInput)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	parLevels := s.parLevels.WithTx(tx)
	written := 0
	for _, itemID := range update.ItemIDs {
		for _, locationID := range update.LocationIDs {
			existing, err := parLevels.GetByItemAndLocation(ctx, itemID, locationID)
			if err != nil && !errors.Is(err, pgx.ErrNoRows) {
				return 0, err
			}
			p := existing
			if p == nil {
				p = &models.ParLevel{ID: uuid.New(), ItemID: itemID, LocationID: locationID}
			}
			if update.ParQuantity != nil {
				p.ParQuantity = *update.ParQuantity
			}
			if update.ReorderQuantity != nil {
				p.ReorderQuantity = *update.ReorderQuantity
			}
			if err := p.Validate(); err != nil {
				return 0, fmt.Errorf("item %s at location %s: %w", itemID, locationID, err)
			}
			if err := parLevels.Upsert(ctx, p); err != nil {
				return 0, err
			}
			written++
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return written, nil
}

func (s *parLevelService) Get(ctx context.Context, itemID, locationID uuid.UUID) (*models.ParLevel, error) {
	p, err := s.parLevels.GetByItemAndLocation(ctx, itemID, locationID)
	if err != nil {
		return nil, mapNoRows(err, "par level")
	}
	return p, nil
}

func (s *parLevelService) ListByItem(ctx context.Context, itemID uuid.UUID) ([]*models.ParLevel, error) {
	return s.parLevels.ListByItem(ctx, itemID)
}

func (s *parLevelService) Delete(ctx context.Context, itemID, locationID uuid.UUID) error {
	return s.parLevels.Delete(ctx, itemID, locationID)
}
