package services

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"strings"
	"time"

	"stationsupply/internal/models"
	"stationsupply/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/gommon/random"
)

const expiringPageSize = 200

// RegisterLotRequest registers one physically tagged unit.
type RegisterLotRequest struct {
	ItemID     uuid.UUID  `json:"item_id"`
	LocationID uuid.UUID  `json:"location_id"`
	Tag        string     `json:"tag"`
	Expiration *time.Time `json:"expiration,omitempty"`
	LotNumber  *string    `json:"lot_number,omitempty"`
	Reference  *string    `json:"reference,omitempty"`
	ActorID    uuid.UUID  `json:"-"`
}

// BulkRegisterRequest registers a batch of units in one receipt. Tags are
// generated from TagPrefix when given, randomly otherwise.
type BulkRegisterRequest struct {
	ItemID     uuid.UUID  `json:"item_id"`
	LocationID uuid.UUID  `json:"location_id"`
	Quantity   int        `json:"quantity"`
	TagPrefix  string     `json:"tag_prefix,omitempty"`
	Expiration *time.Time `json:"expiration,omitempty"`
	LotNumber  *string    `json:"lot_number,omitempty"`
	Reference  *string    `json:"reference,omitempty"`
	ActorID    uuid.UUID  `json:"-"`
}

// LotService is the tag-level view of stock. Registration goes through the
// ledger so the lot rows and the aggregate counters move together.
type LotService interface {
	RegisterLot(ctx context.Context, req *RegisterLotRequest) (*models.InventoryLot, error)
	BulkRegister(ctx context.Context, req *BulkRegisterRequest) ([]string, *models.Movement, error)
	GetByTag(ctx context.Context, tag string) (*models.InventoryLot, error)
	// ExpiringLots walks lots expiring within windowDays, soonest first.
	// The sequence pages through the repository and is restartable.
	ExpiringLots(ctx context.Context, itemID, locationID *uuid.UUID, windowDays int) iter.Seq2[*models.ExpiringLot, error]
	ExpiredLots(ctx context.Context, locationID *uuid.UUID, limit, offset int) ([]*models.ExpiringLot, error)
	// DisposeExpired writes disposal movements for every expired live lot,
	// grouped per item and location, and returns how many units were retired.
	DisposeExpired(ctx context.Context, locationID *uuid.UUID, actorID uuid.UUID) (int, error)
}

type lotService struct {
	lots   repositories.LotRepository
	ledger LedgerService
}

func NewLotService(lots repositories.LotRepository, ledger LedgerService) LotService {
	return &lotService{lots: lots, ledger: ledger}
}

func (s *lotService) RegisterLot(ctx context.Context, req *RegisterLotRequest) (*models.InventoryLot, error) {
	if strings.TrimSpace(req.Tag) == "" {
		return nil, fmt.Errorf("tag must not be empty: %w", ErrInvalidInput)
	}
	_, err := s.ledger.Receive(ctx, &ReceiveRequest{
		ItemID:     req.ItemID,
		LocationID: req.LocationID,
		Quantity:   1,
		Lot: &LotSpec{
			Tags:       []string{req.Tag},
			Expiration: req.Expiration,
			LotNumber:  req.LotNumber,
		},
		Reference: req.Reference,
		ActorID:   req.ActorID,
	})
	if err != nil {
		return nil, err
	}
	return s.GetByTag(ctx, req.Tag)
}

func (s *lotService) BulkRegister(ctx context.Context, req *BulkRegisterRequest) ([]string, *models.Movement, error) {
	if req.Quantity <= 0 {
		return nil, nil, fmt.Errorf("bulk register quantity %d: %w", req.Quantity, ErrInvalidQuantity)
	}
	tags := make([]string, req.Quantity)
	for i := range tags {
		if req.TagPrefix != "" {
			tags[i] = fmt.Sprintf("%s-%03d", req.TagPrefix, i+1)
		} else {
			tags[i] = "TAG-" + strings.ToUpper(random.String(16, random.Hex))
		}
	}
	movement, err := s.ledger.Receive(ctx, &ReceiveRequest{
		ItemID:     req.ItemID,
		LocationID: req.LocationID,
		Quantity:   req.Quantity,
		Lot: &LotSpec{
			Tags:       tags,
			Expiration: req.Expiration,
			LotNumber:  req.LotNumber,
		},
		Reference: req.Reference,
		ActorID:   req.ActorID,
	})
	if err != nil {
		return nil, nil, err
	}
	return tags, movement, nil
}

func (s *lotService) GetByTag(ctx context.Context, tag string) (*models.InventoryLot, error) {
	lot, err := s.lots.GetByTag(ctx, tag)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("lot %q: %w", tag, ErrNotFound)
		}
		return nil, err
	}
	return lot, nil
}

func (s *lotService) ExpiringLots(ctx context.Context, itemID, locationID *uuid.UUID, windowDays int) iter.Seq2[*models.ExpiringLot, error] {
	cutoff := time.Now().UTC().AddDate(0, 0, windowDays)
	return func(yield func(*models.ExpiringLot, error) bool) {
		offset := 0
		for {
			page, err := s.lots.ListExpiring(ctx, itemID, locationID, cutoff, expiringPageSize, offset)
			if err != nil {
				yield(nil, err)
				return
			}
			for _, lot := range page {
				if !yield(lot, nil) {
					return
				}
			}
			if len(page) < expiringPageSize {
				return
			}
			offset += len(page)
		}
	}
}

func (s *lotService) ExpiredLots(ctx context.Context, locationID *uuid.UUID, limit, offset int) ([]*models.ExpiringLot, error) {
	return s.lots.ListExpired(ctx, locationID, limit, offset)
}

func (s *lotService) DisposeExpired(ctx context.Context, locationID *uuid.UUID, actorID uuid.UUID) (int, error) {
	type group struct {
		itemID     uuid.UUID
		locationID uuid.UUID
	}

	counts := make(map[group]int)
	var order []group
	offset := 0
	for {
		page, err := s.lots.ListExpired(ctx, locationID, expiringPageSize, offset)
		if err != nil {
			return 0, err
		}
		for _, lot := range page {
			g := group{itemID: lot.ItemID, locationID: lot.LocationID}
			if _, seen := counts[g]; !seen {
				order = append(order, g)
			}
			counts[g]++
		}
		if len(page) < expiringPageSize {
			break
		}
		offset += len(page)
	}

	reference := "expired"
	disposed := 0
	for _, g := range order {
		_, err := s.ledger.Dispose(ctx, &ConsumeRequest{
			ItemID:     g.itemID,
			LocationID: g.locationID,
			Quantity:   counts[g],
			Reference:  &reference,
			ActorID:    actorID,
		})
		if err != nil {
			return disposed, err
		}
		disposed += counts[g]
	}
	return disposed, nil
}
