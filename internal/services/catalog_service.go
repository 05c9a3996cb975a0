package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"stationsupply/internal/caching"
	"stationsupply/internal/models"
	"stationsupply/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/rs/zerolog/log"
)

// CatalogService manages the item and location catalogs.
type CatalogService interface {
	CreateItem(ctx context.Context, item *models.Item) (*models.Item, error)
	GetItem(ctx context.Context, id uuid.UUID) (*models.Item, error)
	GetItemByCode(ctx context.Context, code string) (*models.Item, error)
	UpdateItem(ctx context.Context, item *models.Item) (*models.Item, error)
	DeactivateItem(ctx context.Context, id uuid.UUID) error
	ListItems(ctx context.Context, limit, offset int) ([]*models.Item, error)

	CreateLocation(ctx context.Context, loc *models.Location) (*models.Location, error)
	GetLocation(ctx context.Context, id uuid.UUID) (*models.Location, error)
	UpdateLocation(ctx context.Context, loc *models.Location) (*models.Location, error)
	DeactivateLocation(ctx context.Context, id uuid.UUID) error
	ListLocations(ctx context.Context, limit, offset int) ([]*models.Location, error)
	ListChildLocations(ctx context.Context, parentID uuid.UUID) ([]*models.Location, error)
}

type catalogService struct {
	items     repositories.ItemRepository
	locations repositories.LocationRepository
	cache     caching.CacheService
}

func NewCatalogService(items repositories.ItemRepository, locations repositories.LocationRepository, cache caching.CacheService) CatalogService {
	return &catalogService{items: items, locations: locations, cache: cache}
}

func (s *catalogService) CreateItem(ctx context.Context, item *models.Item) (*models.Item, error) {
	item.ItemCode = strings.TrimSpace(item.ItemCode)
	if item.ItemCode == "" || strings.TrimSpace(item.Name) == "" {
		return nil, fmt.Errorf("item code and name are required: %w", ErrInvalidInput)
	}
	existing, err := s.items.GetByCode(ctx, item.ItemCode)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("item code %q already in use: %w", item.ItemCode, ErrConflict)
	}
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	item.IsActive = true
	if err := s.items.Create(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *catalogService) GetItem(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	if s.cache != nil {
		cached, err := s.cache.GetItem(ctx, id)
		if err != nil {
			log.Warn().Err(err).Msg("failed to read item cache")
		} else if cached != nil {
			return cached, nil
		}
	}
	item, err := s.items.GetByID(ctx, id)
	if err != nil {
		return nil, mapNoRows(err, "item")
	}
	if s.cache != nil {
		if err := s.cache.SetItem(ctx, item, inventoryCacheTTL); err != nil {
			log.Warn().Err(err).Msg("failed to write item cache")
		}
	}
	return item, nil
}

func (s *catalogService) GetItemByCode(ctx context.Context, code string) (*models.Item, error) {
	item, err := s.items.GetByCode(ctx, code)
	if err != nil {
		return nil, mapNoRows(err, "item")
	}
	return item, nil
}

func (s *catalogService) UpdateItem(ctx context.Context, item *models.Item) (*models.Item, error) {
	if _, err := s.items.GetByID(ctx, item.ID); err != nil {
		return nil, mapNoRows(err, "item")
	}
	if err := s.items.Update(ctx, item); err != nil {
		return nil, err
	}
	s.dropItemCache(ctx, item.ID)
	return item, nil
}

func (s *catalogService) DeactivateItem(ctx context.Context, id uuid.UUID) error {
	if err := s.items.Deactivate(ctx, id); err != nil {
		return err
	}
	s.dropItemCache(ctx, id)
	return nil
}

func (s *catalogService) ListItems(ctx context.Context, limit, offset int) ([]*models.Item, error) {
	return s.items.List(ctx, limit, offset)
}

func (s *catalogService) CreateLocation(ctx context.Context, loc *models.Location) (*models.Location, error) {
	if !loc.Type.IsValid() {
		return nil, fmt.Errorf("location type %q: %w", loc.Type, ErrInvalidInput)
	}
	if strings.TrimSpace(loc.Name) == "" {
		return nil, fmt.Errorf("location name is required: %w", ErrInvalidInput)
	}
	if loc.ParentLocationID != nil {
		if _, err := s.locations.GetByID(ctx, *loc.ParentLocationID); err != nil {
			return nil, mapNoRows(err, "parent location")
		}
	}
	if loc.ID == uuid.Nil {
		loc.ID = uuid.New()
	}
	loc.IsActive = true
	if err := s.locations.Create(ctx, loc); err != nil {
		return nil, err
	}
	return loc, nil
}

func (s *catalogService) GetLocation(ctx context.Context, id uuid.UUID) (*models.Location, error) {
	loc, err := s.locations.GetByID(ctx, id)
	if err != nil {
		return nil, mapNoRows(err, "location")
	}
	return loc, nil
}

func (s *catalogService) UpdateLocation(ctx context.Context, loc *models.Location) (*models.Location, error) {
	if !loc.Type.IsValid() {
		return nil, fmt.Errorf("location type %q: %w", loc.Type, ErrInvalidInput)
	}
	if loc.ParentLocationID != nil && *loc.ParentLocationID == loc.ID {
		return nil, fmt.Errorf("location cannot be its own parent: %w", ErrInvalidInput)
	}
	if _, err := s.locations.GetByID(ctx, loc.ID); err != nil {
		return nil, mapNoRows(err, "location")
	}
	if err := s.locations.Update(ctx, loc); err != nil {
		return nil, err
	}
	return loc, nil
}

func (s *catalogService) DeactivateLocation(ctx context.Context, id uuid.UUID) error {
	return s.locations.Deactivate(ctx, id)
}

func (s *catalogService) ListLocations(ctx context.Context, limit, offset int) ([]*models.Location, error) {
	return s.locations.List(ctx, limit, offset)
}

func (s *catalogService) ListChildLocations(ctx context.Context, parentID uuid.UUID) ([]*models.Location, error) {
	return s.locations.ListChildren(ctx, parentID)
}

func (s *catalogService) dropItemCache(ctx context.Context, id uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteItem(ctx, id); err != nil {
		log.Warn().Err(err).Str("item_id", id.String()).Msg("failed to invalidate item cache")
	}
}
