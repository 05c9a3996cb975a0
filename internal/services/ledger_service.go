package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"stationsupply/internal/caching"
	"stationsupply/internal/config"
	"stationsupply/internal/models"
	"stationsupply/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/gommon/random"
	"github.com/rs/zerolog/log"
)

// TxBeginner starts a database transaction. *pgxpool.Pool satisfies it.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// LotSpec describes the lots created by a receipt of a tracked item. When
// Tags is set its length must equal the received quantity; otherwise tags are
// generated, sequentially from TagPrefix if given, randomly if not.
type LotSpec struct {
	Tags       []string   `json:"tags,omitempty"`
	TagPrefix  string     `json:"tag_prefix,omitempty"`
	Expiration *time.Time `json:"expiration,omitempty"`
	LotNumber  *string    `json:"lot_number,omitempty"`
}

// ReceiveRequest adds stock at a location.
type ReceiveRequest struct {
	ItemID     uuid.UUID `json:"item_id"`
	LocationID uuid.UUID `json:"location_id"`
	Quantity   int       `json:"quantity"`
	Lot        *LotSpec  `json:"lot,omitempty"`
	Reference  *string   `json:"reference,omitempty"`
	Notes      *string   `json:"notes,omitempty"`
	ActorID    uuid.UUID `json:"-"`
}

// TransferRequest moves stock between two locations.
type TransferRequest struct {
	ItemID         uuid.UUID `json:"item_id"`
	FromLocationID uuid.UUID `json:"from_location_id"`
	ToLocationID   uuid.UUID `json:"to_location_id"`
	Quantity       int       `json:"quantity"`
	Reference      *string   `json:"reference,omitempty"`
	Notes          *string   `json:"notes,omitempty"`
	ActorID        uuid.UUID `json:"-"`
}

// ConsumeRequest removes stock at a location (use or dispose).
type ConsumeRequest struct {
	ItemID     uuid.UUID `json:"item_id"`
	LocationID uuid.UUID `json:"location_id"`
	Quantity   int       `json:"quantity"`
	Reference  *string   `json:"reference,omitempty"`
	Notes      *string   `json:"notes,omitempty"`
	ActorID    uuid.UUID `json:"-"`
}

// CountRequest records a physical count.
type CountRequest struct {
	ItemID          uuid.UUID `json:"item_id"`
	LocationID      uuid.UUID `json:"location_id"`
	CountedQuantity int       `json:"counted_quantity"`
	Notes           *string   `json:"notes,omitempty"`
	ActorID         uuid.UUID `json:"-"`
}

// CountResult reports the outcome of a physical count. MovementID is nil
// when the count matched the recorded quantity exactly.
type CountResult struct {
	Variance    int        `json:"variance"`
	NewQuantity int        `json:"new_quantity"`
	MovementID  *uuid.UUID `json:"movement_id,omitempty"`
}

// LedgerService owns every mutation of aggregate stock counters. Each
// operation runs in one transaction covering the counter rows, the movement
// insert and any lot rows touched, so a failure can never leave the aggregate
// and the lots disagreeing.
type LedgerService interface {
	Receive(ctx context.Context, req *ReceiveRequest) (*models.Movement, error)
	Transfer(ctx context.Context, req *TransferRequest) (*models.Movement, error)
	Use(ctx context.Context, req *ConsumeRequest) (*models.Movement, error)
	Dispose(ctx context.Context, req *ConsumeRequest) (*models.Movement, error)
	Allocate(ctx context.Context, itemID, locationID uuid.UUID, qty int) error
	Release(ctx context.Context, itemID, locationID uuid.UUID, qty int) error
	Count(ctx context.Context, req *CountRequest) (*CountResult, error)
}

type ledgerService struct {
	db        TxBeginner
	items     repositories.ItemRepository
	locations repositories.LocationRepository
	inventory repositories.InventoryRepository
	lots      repositories.LotRepository
	movements repositories.MovementRepository
	cfg       config.TransferRestrictions
	cache     caching.CacheService
}

func NewLedgerService(
	db TxBeginner,
	items repositories.ItemRepository,
	locations repositories.LocationRepository,
	inventory repositories.InventoryRepository,
	lots repositories.LotRepository,
	movements repositories.MovementRepository,
	cfg config.TransferRestrictions,
	cache caching.CacheService,
) LedgerService {
	return &ledgerService{
		db:        db,
		items:     items,
		locations: locations,
		inventory: inventory,
		lots:      lots,
		movements: movements,
		cfg:       cfg,
		cache:     cache,
	}
}

func (s *ledgerService) Receive(ctx context.Context, req *ReceiveRequest) (*models.Movement, error) {
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("receive quantity %d: %w", req.Quantity, ErrInvalidQuantity)
	}
	if req.Lot != nil && len(req.Lot.Tags) > 0 && len(req.Lot.Tags) != req.Quantity {
		return nil, fmt.Errorf("got %d tags for quantity %d: %w", len(req.Lot.Tags), req.Quantity, ErrInvalidQuantity)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	items := s.items.WithTx(tx)
	inventory := s.inventory.WithTx(tx)
	lots := s.lots.WithTx(tx)
	movements := s.movements.WithTx(tx)

	item, err := items.GetByID(ctx, req.ItemID)
	if err != nil {
		return nil, mapNoRows(err, "item")
	}
	if _, err := s.locations.WithTx(tx).GetByID(ctx, req.LocationID); err != nil {
		return nil, mapNoRows(err, "location")
	}

	inv, err := s.lockOrCreate(ctx, inventory, req.ItemID, req.LocationID)
	if err != nil {
		return nil, err
	}
	inv.QuantityOnHand += req.Quantity
	if err := inventory.UpdateQuantities(ctx, inv); err != nil {
		return nil, err
	}

	if item.RequiresExpirationTracking {
		if err := s.createLots(ctx, lots, req); err != nil {
			return nil, err
		}
		if err := s.checkLotInvariant(ctx, lots, inv); err != nil {
			return nil, err
		}
	}

	movement := &models.Movement{
		ID:           uuid.New(),
		ItemID:       req.ItemID,
		ToLocationID: &req.LocationID,
		Quantity:     req.Quantity,
		MovementType: models.MovementReceipt,
		Reference:    req.Reference,
		Notes:        req.Notes,
		PerformedBy:  req.ActorID,
	}
	if err := movements.Append(ctx, movement); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	s.invalidate(ctx, req.ItemID, req.LocationID)
	return movement, nil
}

func (s *ledgerService) Transfer(ctx context.Context, req *TransferRequest) (*models.Movement, error) {
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("transfer quantity %d: %w", req.Quantity, ErrInvalidQuantity)
	}
	if req.FromLocationID == req.ToLocationID {
		return nil, ErrSameLocation
	}
	if s.cfg.MaxTransferQuantity > 0 && req.Quantity > s.cfg.MaxTransferQuantity {
		return nil, fmt.Errorf("quantity %d exceeds max %d: %w", req.Quantity, s.cfg.MaxTransferQuantity, ErrTransferRestricted)
	}
	if s.cfg.RequireReferenceAbove > 0 && req.Quantity > s.cfg.RequireReferenceAbove && req.Reference == nil {
		return nil, fmt.Errorf("reference required above quantity %d: %w", s.cfg.RequireReferenceAbove, ErrTransferRestricted)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	items := s.items.WithTx(tx)
	locations := s.locations.WithTx(tx)
	inventory := s.inventory.WithTx(tx)
	lots := s.lots.WithTx(tx)
	movements := s.movements.WithTx(tx)

	item, err := items.GetByID(ctx, req.ItemID)
	if err != nil {
		return nil, mapNoRows(err, "item")
	}
	if _, err := locations.GetByID(ctx, req.FromLocationID); err != nil {
		return nil, mapNoRows(err, "source location")
	}
	if _, err := locations.GetByID(ctx, req.ToLocationID); err != nil {
		return nil, mapNoRows(err, "destination location")
	}

	src, dst, err := s.lockPair(ctx, inventory, req.ItemID, req.FromLocationID, req.ToLocationID)
	if err != nil {
		return nil, err
	}
	if src.QuantityAvailable() < req.Quantity {
		return nil, fmt.Errorf("available %d, requested %d: %w", src.QuantityAvailable(), req.Quantity, ErrInsufficientStock)
	}

	src.QuantityOnHand -= req.Quantity
	dst.QuantityOnHand += req.Quantity
	if err := inventory.UpdateQuantities(ctx, src); err != nil {
		return nil, err
	}
	if err := inventory.UpdateQuantities(ctx, dst); err != nil {
		return nil, err
	}

	if item.RequiresExpirationTracking {
		picked, err := lots.PickLive(ctx, req.ItemID, req.FromLocationID, req.Quantity)
		if err != nil {
			return nil, err
		}
		if len(picked) != req.Quantity {
			return nil, fmt.Errorf("expected %d live lots, found %d: %w", req.Quantity, len(picked), ErrInvariantViolation)
		}
		if err := lots.Relocate(ctx, lotIDs(picked), req.ToLocationID); err != nil {
			return nil, err
		}
		if err := s.checkLotInvariant(ctx, lots, src); err != nil {
			return nil, err
		}
		if err := s.checkLotInvariant(ctx, lots, dst); err != nil {
			return nil, err
		}
	}

	movement := &models.Movement{
		ID:             uuid.New(),
		ItemID:         req.ItemID,
		FromLocationID: &req.FromLocationID,
		ToLocationID:   &req.ToLocationID,
		Quantity:       req.Quantity,
		MovementType:   models.MovementTransfer,
		Reference:      req.Reference,
		Notes:          req.Notes,
		PerformedBy:    req.ActorID,
	}
	if err := movements.Append(ctx, movement); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	s.invalidate(ctx, req.ItemID, req.FromLocationID)
	s.invalidate(ctx, req.ItemID, req.ToLocationID)
	return movement, nil
}

func (s *ledgerService) Use(ctx context.Context, req *ConsumeRequest) (*models.Movement, error) {
	return s.consume(ctx, req, models.MovementUse, models.LotUsed)
}

func (s *ledgerService) Dispose(ctx context.Context, req *ConsumeRequest) (*models.Movement, error) {
	return s.consume(ctx, req, models.MovementDispose, models.LotDisposed)
}

func (s *ledgerService) consume(ctx context.Context, req *ConsumeRequest, mt models.MovementType, ls models.LotStatus) (*models.Movement, error) {
	if req.Quantity <= 0 {
		return nil, fmt.Errorf("%s quantity %d: %w", mt, req.Quantity, ErrInvalidQuantity)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	items := s.items.WithTx(tx)
	inventory := s.inventory.WithTx(tx)
	lots := s.lots.WithTx(tx)
	movements := s.movements.WithTx(tx)

	item, err := items.GetByID(ctx, req.ItemID)
	if err != nil {
		return nil, mapNoRows(err, "item")
	}

	inv, err := inventory.GetForUpdate(ctx, req.ItemID, req.LocationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("no stock at location: %w", ErrInsufficientStock)
		}
		return nil, err
	}
	if inv.QuantityAvailable() < req.Quantity {
		return nil, fmt.Errorf("available %d, requested %d: %w", inv.QuantityAvailable(), req.Quantity, ErrInsufficientStock)
	}

	inv.QuantityOnHand -= req.Quantity
	if err := inventory.UpdateQuantities(ctx, inv); err != nil {
		return nil, err
	}

	if item.RequiresExpirationTracking {
		picked, err := lots.PickLive(ctx, req.ItemID, req.LocationID, req.Quantity)
		if err != nil {
			return nil, err
		}
		if len(picked) != req.Quantity {
			return nil, fmt.Errorf("expected %d live lots, found %d: %w", req.Quantity, len(picked), ErrInvariantViolation)
		}
		if err := lots.Retire(ctx, lotIDs(picked), ls); err != nil {
			return nil, err
		}
		if err := s.checkLotInvariant(ctx, lots, inv); err != nil {
			return nil, err
		}
	}

	movement := &models.Movement{
		ID:             uuid.New(),
		ItemID:         req.ItemID,
		FromLocationID: &req.LocationID,
		Quantity:       req.Quantity,
		MovementType:   mt,
		Reference:      req.Reference,
		Notes:          req.Notes,
		PerformedBy:    req.ActorID,
	}
	if err := movements.Append(ctx, movement); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	s.invalidate(ctx, req.ItemID, req.LocationID)
	return movement, nil
}

// Allocate reserves stock without changing on-hand. No movement is written
// because the physical quantity at the location does not change.
func (s *ledgerService) Allocate(ctx context.Context, itemID, locationID uuid.UUID, qty int) error {
	return s.adjustAllocated(ctx, itemID, locationID, qty)
}

// Release returns previously allocated stock to availability.
func (s *ledgerService) Release(ctx context.Context, itemID, locationID uuid.UUID, qty int) error {
	return s.adjustAllocated(ctx, itemID, locationID, -qty)
}

func (s *ledgerService) adjustAllocated(ctx context.Context, itemID, locationID uuid.UUID, delta int) error {
	if delta == 0 {
		return fmt.Errorf("allocation change must be nonzero: %w", ErrInvalidQuantity)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	inventory := s.inventory.WithTx(tx)
	inv, err := inventory.GetForUpdate(ctx, itemID, locationID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("no stock at location: %w", ErrInsufficientStock)
		}
		return err
	}

	next := inv.QuantityAllocated + delta
	if next < 0 {
		return fmt.Errorf("allocated %d, releasing %d: %w", inv.QuantityAllocated, -delta, ErrInvalidQuantity)
	}
	if next > inv.QuantityOnHand {
		return fmt.Errorf("available %d, allocating %d: %w", inv.QuantityAvailable(), delta, ErrInsufficientStock)
	}
	inv.QuantityAllocated = next
	if err := inventory.UpdateQuantities(ctx, inv); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return err
	}
	s.invalidate(ctx, itemID, locationID)
	return nil
}

// Count reconciles recorded stock with a physical count. A zero variance
// only refreshes the count audit fields; otherwise an adjustment movement is
// written and on-hand is set to the counted quantity; allocations that the
// count can no longer cover are released down to it. For tracked items a
// shrinkage retires the earliest-expiring lots in the same transaction, and a
// count above the live lot count is rejected: extra physical units must come
// in through a receipt that registers their tags.
func (s *ledgerService) Count(ctx context.Context, req *CountRequest) (*CountResult, error) {
	if req.CountedQuantity < 0 {
		return nil, fmt.Errorf("counted quantity %d: %w", req.CountedQuantity, ErrInvalidQuantity)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	items := s.items.WithTx(tx)
	inventory := s.inventory.WithTx(tx)
	lots := s.lots.WithTx(tx)
	movements := s.movements.WithTx(tx)

	item, err := items.GetByID(ctx, req.ItemID)
	if err != nil {
		return nil, mapNoRows(err, "item")
	}
	if _, err := s.locations.WithTx(tx).GetByID(ctx, req.LocationID); err != nil {
		return nil, mapNoRows(err, "location")
	}

	inv, err := s.lockOrCreate(ctx, inventory, req.ItemID, req.LocationID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	variance := req.CountedQuantity - inv.QuantityOnHand
	if variance == 0 {
		if err := inventory.SetCounted(ctx, inv, now, req.ActorID); err != nil {
			return nil, err
		}
		if err := tx.Commit(ctx); err != nil {
			return nil, err
		}
		s.invalidate(ctx, req.ItemID, req.LocationID)
		return &CountResult{Variance: 0, NewQuantity: inv.QuantityOnHand}, nil
	}

	if item.RequiresExpirationTracking {
		live, err := lots.CountLive(ctx, req.ItemID, req.LocationID)
		if err != nil {
			return nil, err
		}
		if req.CountedQuantity > live {
			return nil, fmt.Errorf("counted %d exceeds %d registered lots, receive the extra units with their tags: %w",
				req.CountedQuantity, live, ErrInvalidQuantity)
		}
		if variance < 0 {
			picked, err := lots.PickLive(ctx, req.ItemID, req.LocationID, -variance)
			if err != nil {
				return nil, err
			}
			if len(picked) != -variance {
				return nil, fmt.Errorf("expected %d live lots, found %d: %w", -variance, len(picked), ErrInvariantViolation)
			}
			if err := lots.Retire(ctx, lotIDs(picked), models.LotDisposed); err != nil {
				return nil, err
			}
		}
	}

	movement := &models.Movement{
		ID:           uuid.New(),
		ItemID:       req.ItemID,
		Quantity:     abs(variance),
		MovementType: models.MovementAdjustment,
		Notes:        req.Notes,
		PerformedBy:  req.ActorID,
	}
	if variance > 0 {
		movement.ToLocationID = &req.LocationID
	} else {
		movement.FromLocationID = &req.LocationID
	}
	if err := movements.Append(ctx, movement); err != nil {
		return nil, err
	}

	inv.QuantityOnHand = req.CountedQuantity
	if inv.QuantityAllocated > inv.QuantityOnHand {
		inv.QuantityAllocated = inv.QuantityOnHand
		if err := inventory.UpdateQuantities(ctx, inv); err != nil {
			return nil, err
		}
	}
	if err := inventory.SetCounted(ctx, inv, now, req.ActorID); err != nil {
		return nil, err
	}
	if item.RequiresExpirationTracking {
		if err := s.checkLotInvariant(ctx, lots, inv); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	s.invalidate(ctx, req.ItemID, req.LocationID)
	return &CountResult{Variance: variance, NewQuantity: req.CountedQuantity, MovementID: &movement.ID}, nil
}

// lockOrCreate locks the counter row, creating a zero row on first use of a
// (item, location) pair.
func (s *ledgerService) lockOrCreate(ctx context.Context, inventory repositories.InventoryRepository, itemID, locationID uuid.UUID) (*models.InventoryCurrent, error) {
	inv, err := inventory.GetForUpdate(ctx, itemID, locationID)
	if err == nil {
		return inv, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	inv = &models.InventoryCurrent{
		ID:         uuid.New(),
		ItemID:     itemID,
		LocationID: locationID,
	}
	if err := inventory.Create(ctx, inv); err != nil {
		return nil, err
	}
	return inv, nil
}

// lockPair locks source and destination counter rows in ascending location id
// order so two opposite-direction transfers cannot deadlock.
func (s *ledgerService) lockPair(ctx context.Context, inventory repositories.InventoryRepository, itemID, fromID, toID uuid.UUID) (src, dst *models.InventoryCurrent, err error) {
	lockSrc := func() error {
		src, err = inventory.GetForUpdate(ctx, itemID, fromID)
		if errors.Is(err, pgx.ErrNoRows) {
			return fmt.Errorf("no stock at source location: %w", ErrInsufficientStock)
		}
		return err
	}
	lockDst := func() error {
		dst, err = s.lockOrCreate(ctx, inventory, itemID, toID)
		return err
	}

	if strings.Compare(fromID.String(), toID.String()) < 0 {
		if err := lockSrc(); err != nil {
			return nil, nil, err
		}
		if err := lockDst(); err != nil {
			return nil, nil, err
		}
	} else {
		if err := lockDst(); err != nil {
			return nil, nil, err
		}
		if err := lockSrc(); err != nil {
			return nil, nil, err
		}
	}
	return src, dst, nil
}

func (s *ledgerService) createLots(ctx context.Context, lots repositories.LotRepository, req *ReceiveRequest) error {
	spec := req.Lot
	if spec == nil {
		spec = &LotSpec{}
	}
	now := time.Now().UTC()
	for i := 0; i < req.Quantity; i++ {
		tag := lotTag(spec, i)
		exists, err := lots.TagExists(ctx, tag)
		if err != nil {
			return err
		}
		if exists {
			return fmt.Errorf("tag %q: %w", tag, ErrDuplicateTag)
		}
		lot := &models.InventoryLot{
			ID:             uuid.New(),
			ItemID:         req.ItemID,
			LocationID:     req.LocationID,
			Tag:            tag,
			Status:         models.LotLive,
			ExpirationDate: spec.Expiration,
			LotNumber:      spec.LotNumber,
			ReceivedDate:   now,
		}
		if err := lots.Create(ctx, lot); err != nil {
			return err
		}
	}
	return nil
}

func (s *ledgerService) checkLotInvariant(ctx context.Context, lots repositories.LotRepository, inv *models.InventoryCurrent) error {
	live, err := lots.CountLive(ctx, inv.ItemID, inv.LocationID)
	if err != nil {
		return err
	}
	if live != inv.QuantityOnHand {
		return fmt.Errorf("on hand %d, live lots %d at location %s: %w",
			inv.QuantityOnHand, live, inv.LocationID, ErrInvariantViolation)
	}
	return nil
}

func (s *ledgerService) invalidate(ctx context.Context, itemID, locationID uuid.UUID) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteInventory(ctx, itemID, locationID); err != nil {
		log.Warn().Err(err).Str("item_id", itemID.String()).Str("location_id", locationID.String()).
			Msg("failed to invalidate inventory cache")
	}
	if err := s.cache.DeleteSuggestions(ctx); err != nil {
		log.Warn().Err(err).Msg("failed to invalidate suggestions cache")
	}
}

func lotTag(spec *LotSpec, i int) string {
	if len(spec.Tags) > 0 {
		return spec.Tags[i]
	}
	if spec.TagPrefix != "" {
		return fmt.Sprintf("%s-%03d", spec.TagPrefix, i+1)
	}
	return "TAG-" + strings.ToUpper(random.String(16, random.Hex))
}

func lotIDs(lots []*models.InventoryLot) []uuid.UUID {
	ids := make([]uuid.UUID, len(lots))
	for i, lot := range lots {
		ids[i] = lot.ID
	}
	return ids
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func mapNoRows(err error, entity string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", entity, ErrNotFound)
	}
	return err
}
