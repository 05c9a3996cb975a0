package services

import (
	"context"
	"testing"
	"time"

	"stationsupply/internal/config"
	"stationsupply/internal/models"
	"stationsupply/internal/repositories"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/suite"
)

type LedgerServiceTestSuite struct {
	suite.Suite
	mock    pgxmock.PgxPoolIface
	svc     LedgerService
	itemID  uuid.UUID
	fromID  uuid.UUID
	toID    uuid.UUID
	actorID uuid.UUID
	ctx     context.Context
}

func (suite *LedgerServiceTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock

	suite.svc = NewLedgerService(
		mock,
		repositories.NewItemRepo(mock),
		repositories.NewLocationRepo(mock),
		repositories.NewInventoryRepo(mock),
		repositories.NewLotRepo(mock),
		repositories.NewMovementRepo(mock),
		config.TransferRestrictions{},
		nil,
	)
	suite.itemID = uuid.New()
	// Fixed ids so the transfer lock order is deterministic in tests.
	suite.fromID = uuid.MustParse("11111111-1111-1111-1111-111111111111")
	suite.toID = uuid.MustParse("22222222-2222-2222-2222-222222222222")
	suite.actorID = uuid.New()
	suite.ctx = context.Background()
}

func (suite *LedgerServiceTestSuite) TearDownTest() {
	suite.mock.Close()
}

func TestLedgerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(LedgerServiceTestSuite))
}

func (suite *LedgerServiceTestSuite) itemRows(tracked bool) *pgxmock.Rows {
	now := time.Now()
	return pgxmock.NewRows([]string{"id", "item_code", "name", "description", "category", "unit_of_measure",
		"requires_expiration_tracking", "is_controlled_substance", "cost_per_unit", "lead_time_days",
		"max_reorder_quantity_per_station", "preferred_vendor_id", "is_active", "created_at", "updated_at"}).
		AddRow(suite.itemID, "GLV-M", "Exam Gloves M", nil, nil, "each", tracked, false, nil, nil, nil, nil, true, now, now)
}

func (suite *LedgerServiceTestSuite) locationRows(id uuid.UUID, name string) *pgxmock.Rows {
	now := time.Now()
	return pgxmock.NewRows([]string{"id", "name", "type", "parent_location_id", "address", "is_active", "created_at", "updated_at"}).
		AddRow(id, name, models.LocationSupplyStation, nil, nil, true, now, now)
}

func (suite *LedgerServiceTestSuite) inventoryRows(invID, locationID uuid.UUID, onHand, allocated int) *pgxmock.Rows {
	now := time.Now()
	return pgxmock.NewRows([]string{"id", "item_id", "location_id", "quantity_on_hand", "quantity_allocated",
		"last_counted_at", "last_counted_by", "created_at", "updated_at"}).
		AddRow(invID, suite.itemID, locationID, onHand, allocated, nil, nil, now, now)
}

func (suite *LedgerServiceTestSuite) lotRows(lots ...*models.InventoryLot) *pgxmock.Rows {
	now := time.Now()
	rows := pgxmock.NewRows([]string{"id", "item_id", "location_id", "tag", "status", "expiration_date",
		"lot_number", "received_date", "created_at", "updated_at"})
	for _, lot := range lots {
		rows.AddRow(lot.ID, lot.ItemID, lot.LocationID, lot.Tag, lot.Status, lot.ExpirationDate,
			lot.LotNumber, lot.ReceivedDate, now, now)
	}
	return rows
}

func (suite *LedgerServiceTestSuite) expectItemLookup(tracked bool) {
	suite.mock.ExpectQuery(`SELECT .+ FROM items WHERE id = \$1`).
		WithArgs(suite.itemID).
		WillReturnRows(suite.itemRows(tracked))
}

func (suite *LedgerServiceTestSuite) expectLocationLookup(id uuid.UUID, name string) {
	suite.mock.ExpectQuery(`SELECT .+ FROM locations WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(suite.locationRows(id, name))
}

func (suite *LedgerServiceTestSuite) expectLockRow(invID, locationID uuid.UUID, onHand, allocated int) {
	suite.mock.ExpectQuery(`SELECT .+ FROM inventory_current WHERE item_id = \$1 AND location_id = \$2 FOR UPDATE`).
		WithArgs(suite.itemID, locationID).
		WillReturnRows(suite.inventoryRows(invID, locationID, onHand, allocated))
}

func (suite *LedgerServiceTestSuite) TestReceive_ExistingRow() {
	invID := uuid.New()

	suite.mock.ExpectBegin()
	suite.expectItemLookup(false)
	suite.expectLocationLookup(suite.toID, "Station 4 Supply")
	suite.expectLockRow(invID, suite.toID, 5, 0)
	suite.mock.ExpectExec(`UPDATE inventory_current SET quantity_on_hand = \$1, quantity_allocated = \$2`).
		WithArgs(8, 0, invID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectExec(`INSERT INTO movements`).
		WithArgs(pgxmock.AnyArg(), suite.itemID, (*uuid.UUID)(nil), &suite.toID, 3,
			models.MovementReceipt, (*string)(nil), (*string)(nil), suite.actorID).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectCommit()

	movement, err := suite.svc.Receive(suite.ctx, &ReceiveRequest{
		ItemID:     suite.itemID,
		LocationID: suite.toID,
		Quantity:   3,
		ActorID:    suite.actorID,
	})
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.MovementReceipt, movement.MovementType)
	assert.Equal(suite.T(), 3, movement.Quantity)
	assert.Nil(suite.T(), movement.FromLocationID)
	assert.Equal(suite.T(), suite.toID, *movement.ToLocationID)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *LedgerServiceTestSuite) TestReceive_FirstStockCreatesRow() {
	suite.mock.ExpectBegin()
	suite.expectItemLookup(false)
	suite.expectLocationLookup(suite.toID, "Station 4 Supply")
	suite.mock.ExpectQuery(`SELECT .+ FROM inventory_current WHERE item_id = \$1 AND location_id = \$2 FOR UPDATE`).
		WithArgs(suite.itemID, suite.toID).
		WillReturnError(pgx.ErrNoRows)
	suite.mock.ExpectExec(`INSERT INTO inventory_current`).
		WithArgs(pgxmock.AnyArg(), suite.itemID, suite.toID, 0, 0).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectExec(`UPDATE inventory_current SET quantity_on_hand = \$1, quantity_allocated = \$2`).
		WithArgs(4, 0, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectExec(`INSERT INTO movements`).
		WithArgs(pgxmock.AnyArg(), suite.itemID, (*uuid.UUID)(nil), &suite.toID, 4,
			models.MovementReceipt, (*string)(nil), (*string)(nil), suite.actorID).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectCommit()

	movement, err := suite.svc.Receive(suite.ctx, &ReceiveRequest{
		ItemID:     suite.itemID,
		LocationID: suite.toID,
		Quantity:   4,
		ActorID:    suite.actorID,
	})
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 4, movement.Quantity)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *LedgerServiceTestSuite) TestReceive_TrackedItemCreatesLots() {
	invID := uuid.New()
	exp := time.Now().AddDate(1, 0, 0)

	suite.mock.ExpectBegin()
	suite.expectItemLookup(true)
	suite.expectLocationLookup(suite.toID, "Station 4 Supply")
	suite.expectLockRow(invID, suite.toID, 0, 0)
	suite.mock.ExpectExec(`UPDATE inventory_current SET quantity_on_hand = \$1, quantity_allocated = \$2`).
		WithArgs(2, 0, invID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	for _, tag := range []string{"RFID-0001", "RFID-0002"} {
		suite.mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs(tag).
			WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
		suite.mock.ExpectExec(`INSERT INTO inventory_lots`).
			WithArgs(pgxmock.AnyArg(), suite.itemID, suite.toID, tag, models.LotLive,
				&exp, (*string)(nil), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}
	suite.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM inventory_lots`).
		WithArgs(suite.itemID, suite.toID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(2))
	suite.mock.ExpectExec(`INSERT INTO movements`).
		WithArgs(pgxmock.AnyArg(), suite.itemID, (*uuid.UUID)(nil), &suite.toID, 2,
			models.MovementReceipt, (*string)(nil), (*string)(nil), suite.actorID).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectCommit()

	_, err := suite.svc.Receive(suite.ctx, &ReceiveRequest{
		ItemID:     suite.itemID,
		LocationID: suite.toID,
		Quantity:   2,
		Lot:        &LotSpec{Tags: []string{"RFID-0001", "RFID-0002"}, Expiration: &exp},
		ActorID:    suite.actorID,
	})
	assert.NoError(suite.T(), err)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *LedgerServiceTestSuite) TestReceive_DuplicateTagRollsBack() {
	invID := uuid.New()

	suite.mock.ExpectBegin()
	suite.expectItemLookup(true)
	suite.expectLocationLookup(suite.toID, "Station 4 Supply")
	suite.expectLockRow(invID, suite.toID, 0, 0)
	suite.mock.ExpectExec(`UPDATE inventory_current SET quantity_on_hand = \$1, quantity_allocated = \$2`).
		WithArgs(1, 0, invID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectQuery(`SELECT EXISTS`).
		WithArgs("RFID-0001").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	suite.mock.ExpectRollback()

	_, err := suite.svc.Receive(suite.ctx, &ReceiveRequest{
		ItemID:     suite.itemID,
		LocationID: suite.toID,
		Quantity:   1,
		Lot:        &LotSpec{Tags: []string{"RFID-0001"}},
		ActorID:    suite.actorID,
	})
	assert.ErrorIs(suite.T(), err, ErrDuplicateTag)
}

func (suite *LedgerServiceTestSuite) TestReceive_InvalidQuantity() {
	_, err := suite.svc.Receive(suite.ctx, &ReceiveRequest{
		ItemID: suite.itemID, LocationID: suite.toID, Quantity: 0, ActorID: suite.actorID,
	})
	assert.ErrorIs(suite.T(), err, ErrInvalidQuantity)

	_, err = suite.svc.Receive(suite.ctx, &ReceiveRequest{
		ItemID: suite.itemID, LocationID: suite.toID, Quantity: -5, ActorID: suite.actorID,
	})
	assert.ErrorIs(suite.T(), err, ErrInvalidQuantity)
}

func (suite *LedgerServiceTestSuite) TestReceive_TagCountMismatch() {
	_, err := suite.svc.Receive(suite.ctx, &ReceiveRequest{
		ItemID:     suite.itemID,
		LocationID: suite.toID,
		Quantity:   3,
		Lot:        &LotSpec{Tags: []string{"RFID-0001"}},
		ActorID:    suite.actorID,
	})
	assert.ErrorIs(suite.T(), err, ErrInvalidQuantity)
}

func (suite *LedgerServiceTestSuite) TestTransfer_MovesBetweenLocations() {
	srcInvID := uuid.New()
	dstInvID := uuid.New()

	suite.mock.ExpectBegin()
	suite.expectItemLookup(false)
	suite.expectLocationLookup(suite.fromID, "Station 4 Supply")
	suite.expectLocationLookup(suite.toID, "Medic 42")
	suite.expectLockRow(srcInvID, suite.fromID, 10, 0)
	suite.expectLockRow(dstInvID, suite.toID, 1, 0)
	suite.mock.ExpectExec(`UPDATE inventory_current SET quantity_on_hand = \$1, quantity_allocated = \$2`).
		WithArgs(7, 0, srcInvID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectExec(`UPDATE inventory_current SET quantity_on_hand = \$1, quantity_allocated = \$2`).
		WithArgs(4, 0, dstInvID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectExec(`INSERT INTO movements`).
		WithArgs(pgxmock.AnyArg(), suite.itemID, &suite.fromID, &suite.toID, 3,
			models.MovementTransfer, (*string)(nil), (*string)(nil), suite.actorID).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectCommit()

	movement, err := suite.svc.Transfer(suite.ctx, &TransferRequest{
		ItemID:         suite.itemID,
		FromLocationID: suite.fromID,
		ToLocationID:   suite.toID,
		Quantity:       3,
		ActorID:        suite.actorID,
	})
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.MovementTransfer, movement.MovementType)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *LedgerServiceTestSuite) TestTransfer_TrackedItemRelocatesLots() {
	srcInvID := uuid.New()
	dstInvID := uuid.New()
	lot := &models.InventoryLot{
		ID: uuid.New(), ItemID: suite.itemID, LocationID: suite.fromID,
		Tag: "RFID-0009", Status: models.LotLive, ReceivedDate: time.Now(),
	}

	suite.mock.ExpectBegin()
	suite.expectItemLookup(true)
	suite.expectLocationLookup(suite.fromID, "Station 4 Supply")
	suite.expectLocationLookup(suite.toID, "Medic 42")
	suite.expectLockRow(srcInvID, suite.fromID, 2, 0)
	suite.expectLockRow(dstInvID, suite.toID, 0, 0)
	suite.mock.ExpectExec(`UPDATE inventory_current SET quantity_on_hand = \$1, quantity_allocated = \$2`).
		WithArgs(1, 0, srcInvID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectExec(`UPDATE inventory_current SET quantity_on_hand = \$1, quantity_allocated = \$2`).
		WithArgs(1, 0, dstInvID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectQuery(`ORDER BY expiration_date ASC NULLS LAST, received_date ASC`).
		WithArgs(suite.itemID, suite.fromID, 1).
		WillReturnRows(suite.lotRows(lot))
	suite.mock.ExpectExec(`UPDATE inventory_lots SET location_id = \$1`).
		WithArgs(suite.toID, []uuid.UUID{lot.ID}).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM inventory_lots`).
		WithArgs(suite.itemID, suite.fromID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
	suite.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM inventory_lots`).
		WithArgs(suite.itemID, suite.toID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
	suite.mock.ExpectExec(`INSERT INTO movements`).
		WithArgs(pgxmock.AnyArg(), suite.itemID, &suite.fromID, &suite.toID, 1,
			models.MovementTransfer, (*string)(nil), (*string)(nil), suite.actorID).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectCommit()

	_, err := suite.svc.Transfer(suite.ctx, &TransferRequest{
		ItemID:         suite.itemID,
		FromLocationID: suite.fromID,
		ToLocationID:   suite.toID,
		Quantity:       1,
		ActorID:        suite.actorID,
	})
	assert.NoError(suite.T(), err)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *LedgerServiceTestSuite) TestTransfer_InsufficientStock() {
	srcInvID := uuid.New()
	dstInvID := uuid.New()

	suite.mock.ExpectBegin()
	suite.expectItemLookup(false)
	suite.expectLocationLookup(suite.fromID, "Station 4 Supply")
	suite.expectLocationLookup(suite.toID, "Medic 42")
	suite.expectLockRow(srcInvID, suite.fromID, 2, 1)
	suite.expectLockRow(dstInvID, suite.toID, 0, 0)
	suite.mock.ExpectRollback()

	_, err := suite.svc.Transfer(suite.ctx, &TransferRequest{
		ItemID:         suite.itemID,
		FromLocationID: suite.fromID,
		ToLocationID:   suite.toID,
		Quantity:       2, // only 1 available after allocation
		ActorID:        suite.actorID,
	})
	assert.ErrorIs(suite.T(), err, ErrInsufficientStock)
}

func (suite *LedgerServiceTestSuite) TestTransfer_SameLocation() {
	_, err := suite.svc.Transfer(suite.ctx, &TransferRequest{
		ItemID:         suite.itemID,
		FromLocationID: suite.fromID,
		ToLocationID:   suite.fromID,
		Quantity:       1,
		ActorID:        suite.actorID,
	})
	assert.ErrorIs(suite.T(), err, ErrSameLocation)
}

func (suite *LedgerServiceTestSuite) TestTransfer_MaxQuantityRestriction() {
	svc := NewLedgerService(
		suite.mock,
		repositories.NewItemRepo(suite.mock),
		repositories.NewLocationRepo(suite.mock),
		repositories.NewInventoryRepo(suite.mock),
		repositories.NewLotRepo(suite.mock),
		repositories.NewMovementRepo(suite.mock),
		config.TransferRestrictions{MaxTransferQuantity: 10},
		nil,
	)

	_, err := svc.Transfer(suite.ctx, &TransferRequest{
		ItemID:         suite.itemID,
		FromLocationID: suite.fromID,
		ToLocationID:   suite.toID,
		Quantity:       11,
		ActorID:        suite.actorID,
	})
	assert.ErrorIs(suite.T(), err, ErrTransferRestricted)
}

func (suite *LedgerServiceTestSuite) TestTransfer_ReferenceRequiredAboveThreshold() {
	svc := NewLedgerService(
		suite.mock,
		repositories.NewItemRepo(suite.mock),
		repositories.NewLocationRepo(suite.mock),
		repositories.NewInventoryRepo(suite.mock),
		repositories.NewLotRepo(suite.mock),
		repositories.NewMovementRepo(suite.mock),
		config.TransferRestrictions{RequireReferenceAbove: 5},
		nil,
	)

	_, err := svc.Transfer(suite.ctx, &TransferRequest{
		ItemID:         suite.itemID,
		FromLocationID: suite.fromID,
		ToLocationID:   suite.toID,
		Quantity:       6,
		ActorID:        suite.actorID,
	})
	assert.ErrorIs(suite.T(), err, ErrTransferRestricted)
}

func (suite *LedgerServiceTestSuite) TestUse_TrackedItemRetiresLots() {
	invID := uuid.New()
	lot := &models.InventoryLot{
		ID: uuid.New(), ItemID: suite.itemID, LocationID: suite.fromID,
		Tag: "RFID-0003", Status: models.LotLive, ReceivedDate: time.Now(),
	}

	suite.mock.ExpectBegin()
	suite.expectItemLookup(true)
	suite.expectLockRow(invID, suite.fromID, 3, 0)
	suite.mock.ExpectExec(`UPDATE inventory_current SET quantity_on_hand = \$1, quantity_allocated = \$2`).
		WithArgs(2, 0, invID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectQuery(`ORDER BY expiration_date ASC NULLS LAST, received_date ASC`).
		WithArgs(suite.itemID, suite.fromID, 1).
		WillReturnRows(suite.lotRows(lot))
	suite.mock.ExpectExec(`UPDATE inventory_lots SET status = \$1`).
		WithArgs(models.LotUsed, []uuid.UUID{lot.ID}).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM inventory_lots`).
		WithArgs(suite.itemID, suite.fromID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(2))
	suite.mock.ExpectExec(`INSERT INTO movements`).
		WithArgs(pgxmock.AnyArg(), suite.itemID, &suite.fromID, (*uuid.UUID)(nil), 1,
			models.MovementUse, (*string)(nil), (*string)(nil), suite.actorID).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectCommit()

	movement, err := suite.svc.Use(suite.ctx, &ConsumeRequest{
		ItemID:     suite.itemID,
		LocationID: suite.fromID,
		Quantity:   1,
		ActorID:    suite.actorID,
	})
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.MovementUse, movement.MovementType)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *LedgerServiceTestSuite) TestUse_NoStockRow() {
	suite.mock.ExpectBegin()
	suite.expectItemLookup(false)
	suite.mock.ExpectQuery(`SELECT .+ FROM inventory_current WHERE item_id = \$1 AND location_id = \$2 FOR UPDATE`).
		WithArgs(suite.itemID, suite.fromID).
		WillReturnError(pgx.ErrNoRows)
	suite.mock.ExpectRollback()

	_, err := suite.svc.Use(suite.ctx, &ConsumeRequest{
		ItemID:     suite.itemID,
		LocationID: suite.fromID,
		Quantity:   1,
		ActorID:    suite.actorID,
	})
	assert.ErrorIs(suite.T(), err, ErrInsufficientStock)
}

func (suite *LedgerServiceTestSuite) TestDispose_WritesDisposeMovement() {
	invID := uuid.New()

	suite.mock.ExpectBegin()
	suite.expectItemLookup(false)
	suite.expectLockRow(invID, suite.fromID, 5, 0)
	suite.mock.ExpectExec(`UPDATE inventory_current SET quantity_on_hand = \$1, quantity_allocated = \$2`).
		WithArgs(3, 0, invID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectExec(`INSERT INTO movements`).
		WithArgs(pgxmock.AnyArg(), suite.itemID, &suite.fromID, (*uuid.UUID)(nil), 2,
			models.MovementDispose, (*string)(nil), (*string)(nil), suite.actorID).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectCommit()

	movement, err := suite.svc.Dispose(suite.ctx, &ConsumeRequest{
		ItemID:     suite.itemID,
		LocationID: suite.fromID,
		Quantity:   2,
		ActorID:    suite.actorID,
	})
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.MovementDispose, movement.MovementType)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *LedgerServiceTestSuite) TestAllocate_ReservesStock() {
	invID := uuid.New()

	suite.mock.ExpectBegin()
	suite.expectLockRow(invID, suite.fromID, 5, 1)
	suite.mock.ExpectExec(`UPDATE inventory_current SET quantity_on_hand = \$1, quantity_allocated = \$2`).
		WithArgs(5, 3, invID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectCommit()

	err := suite.svc.Allocate(suite.ctx, suite.itemID, suite.fromID, 2)
	assert.NoError(suite.T(), err)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *LedgerServiceTestSuite) TestAllocate_BeyondOnHand() {
	invID := uuid.New()

	suite.mock.ExpectBegin()
	suite.expectLockRow(invID, suite.fromID, 5, 4)
	suite.mock.ExpectRollback()

	err := suite.svc.Allocate(suite.ctx, suite.itemID, suite.fromID, 2)
	assert.ErrorIs(suite.T(), err, ErrInsufficientStock)
}

func (suite *LedgerServiceTestSuite) TestRelease_BelowZero() {
	invID := uuid.New()

	suite.mock.ExpectBegin()
	suite.expectLockRow(invID, suite.fromID, 5, 1)
	suite.mock.ExpectRollback()

	err := suite.svc.Release(suite.ctx, suite.itemID, suite.fromID, 3)
	assert.ErrorIs(suite.T(), err, ErrInvalidQuantity)
}

func (suite *LedgerServiceTestSuite) TestCount_ZeroVariance() {
	invID := uuid.New()

	suite.mock.ExpectBegin()
	suite.expectItemLookup(false)
	suite.expectLocationLookup(suite.fromID, "Station 4 Supply")
	suite.expectLockRow(invID, suite.fromID, 7, 0)
	suite.mock.ExpectExec(`UPDATE inventory_current SET quantity_on_hand = \$1, last_counted_at = \$2`).
		WithArgs(7, pgxmock.AnyArg(), suite.actorID, invID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectCommit()

	result, err := suite.svc.Count(suite.ctx, &CountRequest{
		ItemID:          suite.itemID,
		LocationID:      suite.fromID,
		CountedQuantity: 7,
		ActorID:         suite.actorID,
	})
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 0, result.Variance)
	assert.Equal(suite.T(), 7, result.NewQuantity)
	assert.Nil(suite.T(), result.MovementID)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *LedgerServiceTestSuite) TestCount_ShrinkageRetiresLots() {
	invID := uuid.New()
	lot := &models.InventoryLot{
		ID: uuid.New(), ItemID: suite.itemID, LocationID: suite.fromID,
		Tag: "RFID-0007", Status: models.LotLive, ReceivedDate: time.Now(),
	}

	suite.mock.ExpectBegin()
	suite.expectItemLookup(true)
	suite.expectLocationLookup(suite.fromID, "Station 4 Supply")
	suite.expectLockRow(invID, suite.fromID, 6, 0)
	suite.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM inventory_lots`).
		WithArgs(suite.itemID, suite.fromID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(6))
	suite.mock.ExpectQuery(`ORDER BY expiration_date ASC NULLS LAST, received_date ASC`).
		WithArgs(suite.itemID, suite.fromID, 1).
		WillReturnRows(suite.lotRows(lot))
	suite.mock.ExpectExec(`UPDATE inventory_lots SET status = \$1`).
		WithArgs(models.LotDisposed, []uuid.UUID{lot.ID}).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectExec(`INSERT INTO movements`).
		WithArgs(pgxmock.AnyArg(), suite.itemID, &suite.fromID, (*uuid.UUID)(nil), 1,
			models.MovementAdjustment, (*string)(nil), (*string)(nil), suite.actorID).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectExec(`UPDATE inventory_current SET quantity_on_hand = \$1, last_counted_at = \$2`).
		WithArgs(5, pgxmock.AnyArg(), suite.actorID, invID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM inventory_lots`).
		WithArgs(suite.itemID, suite.fromID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(5))
	suite.mock.ExpectCommit()

	result, err := suite.svc.Count(suite.ctx, &CountRequest{
		ItemID:          suite.itemID,
		LocationID:      suite.fromID,
		CountedQuantity: 5,
		ActorID:         suite.actorID,
	})
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), -1, result.Variance)
	assert.Equal(suite.T(), 5, result.NewQuantity)
	assert.NotNil(suite.T(), result.MovementID)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *LedgerServiceTestSuite) TestCount_TrackedOverageRejected() {
	invID := uuid.New()

	suite.mock.ExpectBegin()
	suite.expectItemLookup(true)
	suite.expectLocationLookup(suite.fromID, "Station 4 Supply")
	suite.expectLockRow(invID, suite.fromID, 4, 0)
	suite.mock.ExpectQuery(`SELECT COUNT\(\*\) FROM inventory_lots`).
		WithArgs(suite.itemID, suite.fromID).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(4))
	suite.mock.ExpectRollback()

	_, err := suite.svc.Count(suite.ctx, &CountRequest{
		ItemID:          suite.itemID,
		LocationID:      suite.fromID,
		CountedQuantity: 6, // above the 4 registered lots
		ActorID:         suite.actorID,
	})
	assert.ErrorIs(suite.T(), err, ErrInvalidQuantity)
}

func (suite *LedgerServiceTestSuite) TestCount_UntrackedOverageAdjustsUp() {
	invID := uuid.New()

	suite.mock.ExpectBegin()
	suite.expectItemLookup(false)
	suite.expectLocationLookup(suite.fromID, "Station 4 Supply")
	suite.expectLockRow(invID, suite.fromID, 4, 0)
	suite.mock.ExpectExec(`INSERT INTO movements`).
		WithArgs(pgxmock.AnyArg(), suite.itemID, (*uuid.UUID)(nil), &suite.fromID, 2,
			models.MovementAdjustment, (*string)(nil), (*string)(nil), suite.actorID).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectExec(`UPDATE inventory_current SET quantity_on_hand = \$1, last_counted_at = \$2`).
		WithArgs(6, pgxmock.AnyArg(), suite.actorID, invID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectCommit()

	result, err := suite.svc.Count(suite.ctx, &CountRequest{
		ItemID:          suite.itemID,
		LocationID:      suite.fromID,
		CountedQuantity: 6,
		ActorID:         suite.actorID,
	})
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 2, result.Variance)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *LedgerServiceTestSuite) TestCount_BelowAllocationClampsAllocated() {
	invID := uuid.New()

	suite.mock.ExpectBegin()
	suite.expectItemLookup(false)
	suite.expectLocationLookup(suite.fromID, "Station 4 Supply")
	suite.expectLockRow(invID, suite.fromID, 5, 5)
	suite.mock.ExpectExec(`INSERT INTO movements`).
		WithArgs(pgxmock.AnyArg(), suite.itemID, &suite.fromID, (*uuid.UUID)(nil), 2,
			models.MovementAdjustment, (*string)(nil), (*string)(nil), suite.actorID).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	// The reservation of 5 can no longer be covered by 3 on the shelf, so
	// allocated is released down to the counted quantity.
	suite.mock.ExpectExec(`UPDATE inventory_current SET quantity_on_hand = \$1, quantity_allocated = \$2`).
		WithArgs(3, 3, invID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectExec(`UPDATE inventory_current SET quantity_on_hand = \$1, last_counted_at = \$2`).
		WithArgs(3, pgxmock.AnyArg(), suite.actorID, invID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectCommit()

	result, err := suite.svc.Count(suite.ctx, &CountRequest{
		ItemID:          suite.itemID,
		LocationID:      suite.fromID,
		CountedQuantity: 3,
		ActorID:         suite.actorID,
	})
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), -2, result.Variance)
	assert.Equal(suite.T(), 3, result.NewQuantity)
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
}

func (suite *LedgerServiceTestSuite) TestCount_NegativeCountRejected() {
	_, err := suite.svc.Count(suite.ctx, &CountRequest{
		ItemID:          suite.itemID,
		LocationID:      suite.fromID,
		CountedQuantity: -1,
		ActorID:         suite.actorID,
	})
	assert.ErrorIs(suite.T(), err, ErrInvalidQuantity)
}
