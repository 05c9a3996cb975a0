package jobs

import (
	"context"
	"errors"
	"iter"
	"testing"

	"stationsupply/internal/models"
	"stationsupply/internal/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// MockInventoryService mocks the read side used by the low stock scan
type MockInventoryService struct {
	mock.Mock
}

func (m *MockInventoryService) Current(ctx context.Context, filter *models.InventoryFilter) ([]*models.InventoryView, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*models.InventoryView), args.Error(1)
}

func (m *MockInventoryService) GetCurrent(ctx context.Context, itemID, locationID uuid.UUID) (*models.InventoryCurrent, error) {
	args := m.Called(ctx, itemID, locationID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InventoryCurrent), args.Error(1)
}

func (m *MockInventoryService) Movements(ctx context.Context, filter *models.MovementFilter) ([]*models.MovementView, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]*models.MovementView), args.Error(1)
}

func (m *MockInventoryService) LowStock(ctx context.Context, limit, offset int) ([]*models.InventoryView, error) {
	args := m.Called(ctx, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.InventoryView), args.Error(1)
}

// MockLotService mocks the expiration scan source
type MockLotService struct {
	mock.Mock
}

func (m *MockLotService) RegisterLot(ctx context.Context, req *services.RegisterLotRequest) (*models.InventoryLot, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InventoryLot), args.Error(1)
}

func (m *MockLotService) BulkRegister(ctx context.Context, req *services.BulkRegisterRequest) ([]string, *models.Movement, error) {
	args := m.Called(ctx, req)
	if args.Get(1) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).([]string), args.Get(1).(*models.Movement), args.Error(2)
}

func (m *MockLotService) GetByTag(ctx context.Context, tag string) (*models.InventoryLot, error) {
	args := m.Called(ctx, tag)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.InventoryLot), args.Error(1)
}

func (m *MockLotService) ExpiringLots(ctx context.Context, itemID, locationID *uuid.UUID, windowDays int) iter.Seq2[*models.ExpiringLot, error] {
	args := m.Called(ctx, itemID, locationID, windowDays)
	return args.Get(0).(iter.Seq2[*models.ExpiringLot, error])
}

func (m *MockLotService) ExpiredLots(ctx context.Context, locationID *uuid.UUID, limit, offset int) ([]*models.ExpiringLot, error) {
	args := m.Called(ctx, locationID, limit, offset)
	return args.Get(0).([]*models.ExpiringLot), args.Error(1)
}

func (m *MockLotService) DisposeExpired(ctx context.Context, locationID *uuid.UUID, actorID uuid.UUID) (int, error) {
	args := m.Called(ctx, locationID, actorID)
	return args.Int(0), args.Error(1)
}

func lotSeq(lots []*models.ExpiringLot, err error) iter.Seq2[*models.ExpiringLot, error] {
	return func(yield func(*models.ExpiringLot, error) bool) {
		for _, lot := range lots {
			if !yield(lot, nil) {
				return
			}
		}
		if err != nil {
			yield(nil, err)
		}
	}
}

type StockAlertTestSuite struct {
	suite.Suite
	inventorySvc *MockInventoryService
	lotSvc       *MockLotService
	alerts       *StockAlertService
	ctx          context.Context
}

func (suite *StockAlertTestSuite) SetupTest() {
	suite.inventorySvc = new(MockInventoryService)
	suite.lotSvc = new(MockLotService)
	suite.alerts = NewStockAlertService(suite.inventorySvc, suite.lotSvc)
	suite.ctx = context.Background()
}

func TestStockAlertTestSuite(t *testing.T) {
	suite.Run(t, new(StockAlertTestSuite))
}

func (suite *StockAlertTestSuite) TestCheckLowStock_ReportsEachLocation() {
	itemID := uuid.New()
	locID := uuid.New()
	view := &models.InventoryView{
		QuantityAvail: 2,
		ItemName:      "Exam Gloves M",
		LocationName:  "Station 4 Supply",
	}
	view.ItemID = itemID
	view.LocationID = locID

	suite.inventorySvc.On("LowStock", suite.ctx, 1000, 0).
		Return([]*models.InventoryView{view}, nil)

	alerts, err := suite.alerts.CheckLowStock(suite.ctx)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), alerts, 1)
	assert.Equal(suite.T(), itemID, alerts[0].ItemID)
	assert.Equal(suite.T(), "Exam Gloves M", alerts[0].ItemName)
	assert.Equal(suite.T(), "Station 4 Supply", alerts[0].LocationName)
	assert.Equal(suite.T(), 2, alerts[0].Available)
}

func (suite *StockAlertTestSuite) TestCheckLowStock_Empty() {
	suite.inventorySvc.On("LowStock", suite.ctx, 1000, 0).
		Return([]*models.InventoryView{}, nil)

	alerts, err := suite.alerts.CheckLowStock(suite.ctx)
	assert.NoError(suite.T(), err)
	assert.Empty(suite.T(), alerts)
}

func (suite *StockAlertTestSuite) TestCheckLowStock_Error() {
	suite.inventorySvc.On("LowStock", suite.ctx, 1000, 0).
		Return(nil, errors.New("database unavailable"))

	_, err := suite.alerts.CheckLowStock(suite.ctx)
	assert.Error(suite.T(), err)
}

func (suite *StockAlertTestSuite) TestCheckExpiring_CollectsAlerts() {
	lot := &models.ExpiringLot{
		DaysUntilExpiration: 12,
		ItemName:            "Epinephrine 1mg",
		LocationName:        "Medic 42",
	}
	lot.Tag = "RFID-0042"

	suite.lotSvc.On("ExpiringLots", suite.ctx, (*uuid.UUID)(nil), (*uuid.UUID)(nil), 30).
		Return(lotSeq([]*models.ExpiringLot{lot}, nil))

	alerts, err := suite.alerts.CheckExpiring(suite.ctx, 30)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), alerts, 1)
	assert.Equal(suite.T(), "RFID-0042", alerts[0].Tag)
	assert.Equal(suite.T(), 12, alerts[0].DaysUntilExpiration)
}

func (suite *StockAlertTestSuite) TestCheckExpiring_ScanError() {
	suite.lotSvc.On("ExpiringLots", suite.ctx, (*uuid.UUID)(nil), (*uuid.UUID)(nil), 30).
		Return(lotSeq(nil, errors.New("connection lost")))

	_, err := suite.alerts.CheckExpiring(suite.ctx, 30)
	assert.Error(suite.T(), err)
}

func (suite *StockAlertTestSuite) TestLogAlerts_NoPanicOnEmpty() {
	suite.alerts.LogLowStockAlerts(nil)
	suite.alerts.LogExpiryAlerts(nil)
	suite.alerts.LogLowStockAlerts([]LowStockAlert{{ItemName: "Exam Gloves M", Available: 1}})
	suite.alerts.LogExpiryAlerts([]ExpiryAlert{{Tag: "RFID-0001", DaysUntilExpiration: -2}})
}
