package services

import (
	"context"
	"testing"

	"stationsupply/internal/models"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type OrderServiceTestSuite struct {
	suite.Suite
	pool    pgxmock.PgxPoolIface
	orders  *MockOrderRepository
	ledger  *MockLedgerService
	svc     OrderService
	poID    uuid.UUID
	itemID  uuid.UUID
	locID   uuid.UUID
	actorID uuid.UUID
	ctx     context.Context
}

func (suite *OrderServiceTestSuite) SetupTest() {
	pool, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.pool = pool

	suite.orders = new(MockOrderRepository)
	suite.ledger = new(MockLedgerService)
	suite.svc = NewOrderService(pool, suite.orders, suite.ledger)
	suite.poID = uuid.New()
	suite.itemID = uuid.New()
	suite.locID = uuid.New()
	suite.actorID = uuid.New()
	suite.ctx = context.Background()
}

func (suite *OrderServiceTestSuite) TearDownTest() {
	suite.pool.Close()
}

func TestOrderServiceTestSuite(t *testing.T) {
	suite.Run(t, new(OrderServiceTestSuite))
}

func (suite *OrderServiceTestSuite) pendingOrder(ordered, received int) *models.PurchaseOrder {
	return &models.PurchaseOrder{
		ID:       suite.poID,
		PONumber: "PO-20260831-ABC123",
		VendorID: uuid.New(),
		Status:   models.OrderOrdered,
		Items: []*models.PurchaseOrderItem{
			{
				ID:               uuid.New(),
				POID:             suite.poID,
				ItemID:           suite.itemID,
				QuantityOrdered:  ordered,
				QuantityReceived: received,
			},
		},
	}
}

func (suite *OrderServiceTestSuite) TestMarkOrdered_PendingOnly() {
	po := suite.pendingOrder(10, 0)
	po.Status = models.OrderPending

	suite.orders.On("GetByID", suite.ctx, suite.poID).Return(po, nil)
	suite.orders.On("UpdateStatus", suite.ctx, suite.poID, models.OrderOrdered).Return(nil)

	err := suite.svc.MarkOrdered(suite.ctx, suite.poID)
	assert.NoError(suite.T(), err)
}

func (suite *OrderServiceTestSuite) TestMarkOrdered_AlreadyOrdered() {
	suite.orders.On("GetByID", suite.ctx, suite.poID).Return(suite.pendingOrder(10, 0), nil)

	err := suite.svc.MarkOrdered(suite.ctx, suite.poID)
	assert.ErrorIs(suite.T(), err, ErrConflict)
	suite.orders.AssertNotCalled(suite.T(), "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *OrderServiceTestSuite) TestReceiveLine_PartialDelivery() {
	po := suite.pendingOrder(10, 0)
	line := po.Items[0]

	suite.orders.On("GetByID", suite.ctx, suite.poID).Return(po, nil)
	suite.ledger.On("Receive", suite.ctx, mock.MatchedBy(func(req *ReceiveRequest) bool {
		return req.ItemID == suite.itemID &&
			req.LocationID == suite.locID &&
			req.Quantity == 4 &&
			req.Reference != nil && *req.Reference == po.PONumber
	})).Return(&models.Movement{ID: uuid.New()}, nil)
	suite.pool.ExpectBegin()
	suite.orders.On("GetItemForUpdate", suite.ctx, suite.poID, suite.itemID).
		Return(&models.PurchaseOrderItem{
			ID: line.ID, POID: suite.poID, ItemID: suite.itemID,
			QuantityOrdered: 10, QuantityReceived: 0,
		}, nil)
	suite.orders.On("UpdateItemReceived", suite.ctx, mock.MatchedBy(func(l *models.PurchaseOrderItem) bool {
		return l.QuantityReceived == 4
	})).Return(nil)
	suite.orders.On("UpdateStatus", suite.ctx, suite.poID, models.OrderPartial).Return(nil)
	suite.pool.ExpectCommit()

	updated, err := suite.svc.ReceiveLine(suite.ctx, &ReceiveLineRequest{
		PurchaseOrderID: suite.poID,
		ItemID:          suite.itemID,
		LocationID:      suite.locID,
		Quantity:        4,
		ActorID:         suite.actorID,
	})
	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), updated)
}

func (suite *OrderServiceTestSuite) TestReceiveLine_FinalDeliveryCompletesOrder() {
	po := suite.pendingOrder(10, 6)
	line := po.Items[0]

	suite.orders.On("GetByID", suite.ctx, suite.poID).Return(po, nil)
	suite.ledger.On("Receive", suite.ctx, mock.Anything).Return(&models.Movement{ID: uuid.New()}, nil)
	suite.pool.ExpectBegin()
	suite.orders.On("GetItemForUpdate", suite.ctx, suite.poID, suite.itemID).
		Return(&models.PurchaseOrderItem{
			ID: line.ID, POID: suite.poID, ItemID: suite.itemID,
			QuantityOrdered: 10, QuantityReceived: 6,
		}, nil)
	suite.orders.On("UpdateItemReceived", suite.ctx, mock.MatchedBy(func(l *models.PurchaseOrderItem) bool {
		return l.QuantityReceived == 10
	})).Return(nil)
	suite.orders.On("UpdateStatus", suite.ctx, suite.poID, models.OrderReceived).Return(nil)
	suite.pool.ExpectCommit()

	_, err := suite.svc.ReceiveLine(suite.ctx, &ReceiveLineRequest{
		PurchaseOrderID: suite.poID,
		ItemID:          suite.itemID,
		LocationID:      suite.locID,
		Quantity:        4,
		ActorID:         suite.actorID,
	})
	assert.NoError(suite.T(), err)
}

func (suite *OrderServiceTestSuite) TestReceiveLine_OverReceiveRejected() {
	suite.orders.On("GetByID", suite.ctx, suite.poID).Return(suite.pendingOrder(10, 8), nil)

	_, err := suite.svc.ReceiveLine(suite.ctx, &ReceiveLineRequest{
		PurchaseOrderID: suite.poID,
		ItemID:          suite.itemID,
		LocationID:      suite.locID,
		Quantity:        3,
		ActorID:         suite.actorID,
	})
	assert.ErrorIs(suite.T(), err, ErrInvalidQuantity)
	suite.ledger.AssertNotCalled(suite.T(), "Receive", mock.Anything, mock.Anything)
}

func (suite *OrderServiceTestSuite) TestReceiveLine_UnknownLine() {
	suite.orders.On("GetByID", suite.ctx, suite.poID).Return(suite.pendingOrder(10, 0), nil)

	_, err := suite.svc.ReceiveLine(suite.ctx, &ReceiveLineRequest{
		PurchaseOrderID: suite.poID,
		ItemID:          uuid.New(), // not on the order
		LocationID:      suite.locID,
		Quantity:        1,
		ActorID:         suite.actorID,
	})
	assert.ErrorIs(suite.T(), err, ErrNotFound)
}

func (suite *OrderServiceTestSuite) TestReceiveLine_CancelledOrder() {
	po := suite.pendingOrder(10, 0)
	po.Status = models.OrderCancelled
	suite.orders.On("GetByID", suite.ctx, suite.poID).Return(po, nil)

	_, err := suite.svc.ReceiveLine(suite.ctx, &ReceiveLineRequest{
		PurchaseOrderID: suite.poID,
		ItemID:          suite.itemID,
		LocationID:      suite.locID,
		Quantity:        1,
		ActorID:         suite.actorID,
	})
	assert.ErrorIs(suite.T(), err, ErrConflict)
}

func (suite *OrderServiceTestSuite) TestReceiveLine_LedgerFailureLeavesBookkeepingAlone() {
	suite.orders.On("GetByID", suite.ctx, suite.poID).Return(suite.pendingOrder(10, 0), nil)
	suite.ledger.On("Receive", suite.ctx, mock.Anything).Return(nil, ErrDuplicateTag)

	_, err := suite.svc.ReceiveLine(suite.ctx, &ReceiveLineRequest{
		PurchaseOrderID: suite.poID,
		ItemID:          suite.itemID,
		LocationID:      suite.locID,
		Quantity:        1,
		Lot:             &LotSpec{Tags: []string{"RFID-0001"}},
		ActorID:         suite.actorID,
	})
	assert.ErrorIs(suite.T(), err, ErrDuplicateTag)
	suite.orders.AssertNotCalled(suite.T(), "UpdateItemReceived", mock.Anything, mock.Anything)
}

func (suite *OrderServiceTestSuite) TestCancel_ReceivedOrder() {
	po := suite.pendingOrder(10, 10)
	po.Status = models.OrderReceived
	suite.orders.On("GetByID", suite.ctx, suite.poID).Return(po, nil)

	err := suite.svc.Cancel(suite.ctx, suite.poID)
	assert.ErrorIs(suite.T(), err, ErrConflict)
}

func (suite *OrderServiceTestSuite) TestCancel_PendingOrder() {
	po := suite.pendingOrder(10, 0)
	po.Status = models.OrderPending
	suite.orders.On("GetByID", suite.ctx, suite.poID).Return(po, nil)
	suite.orders.On("UpdateStatus", suite.ctx, suite.poID, models.OrderCancelled).Return(nil)

	err := suite.svc.Cancel(suite.ctx, suite.poID)
	assert.NoError(suite.T(), err)
}

func (suite *OrderServiceTestSuite) TestGet_NotFound() {
	suite.orders.On("GetByID", suite.ctx, suite.poID).Return(nil, pgx.ErrNoRows)

	_, err := suite.svc.Get(suite.ctx, suite.poID)
	assert.ErrorIs(suite.T(), err, ErrNotFound)
}
