package jobs

import (
	"context"

	"stationsupply/internal/services"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

// StockAlertService runs the periodic scans: locations below par and lots
// approaching expiration. Alerts are logged; paging or messaging integrations
// hang off the same report types.
type StockAlertService struct {
	inventorySvc services.InventoryService
	lotSvc       services.LotService
}

// LowStockAlert flags one item at one location sitting below its par level.
type LowStockAlert struct {
	ItemID       uuid.UUID
	ItemName     string
	LocationID   uuid.UUID
	LocationName string
	Available    int
}

// ExpiryAlert flags one tagged unit inside the expiry window.
type ExpiryAlert struct {
	ItemName            string
	LocationName        string
	Tag                 string
	DaysUntilExpiration int
}

func NewStockAlertService(inventorySvc services.InventoryService, lotSvc services.LotService) *StockAlertService {
	return &StockAlertService{
		inventorySvc: inventorySvc,
		lotSvc:       lotSvc,
	}
}

func (a *StockAlertService) CheckLowStock(ctx context.Context) ([]LowStockAlert, error) {
	views, err := a.inventorySvc.LowStock(ctx, 1000, 0)
	if err != nil {
		log.Error().Err(err).Msg("low stock scan failed")
		return nil, err
	}

	alerts := make([]LowStockAlert, 0, len(views))
	for _, v := range views {
		alerts = append(alerts, LowStockAlert{
			ItemID:       v.ItemID,
			ItemName:     v.ItemName,
			LocationID:   v.LocationID,
			LocationName: v.LocationName,
			Available:    v.QuantityAvail,
		})
	}
	return alerts, nil
}

func (a *StockAlertService) CheckExpiring(ctx context.Context, windowDays int) ([]ExpiryAlert, error) {
	var alerts []ExpiryAlert
	for lot, err := range a.lotSvc.ExpiringLots(ctx, nil, nil, windowDays) {
		if err != nil {
			log.Error().Err(err).Msg("expiring lot scan failed")
			return nil, err
		}
		alerts = append(alerts, ExpiryAlert{
			ItemName:            lot.ItemName,
			LocationName:        lot.LocationName,
			Tag:                 lot.Tag,
			DaysUntilExpiration: lot.DaysUntilExpiration,
		})
	}
	return alerts, nil
}

func (a *StockAlertService) LogLowStockAlerts(alerts []LowStockAlert) {
	if len(alerts) == 0 {
		log.Debug().Msg("no locations below par")
		return
	}
	for _, alert := range alerts {
		log.Warn().
			Str("item", alert.ItemName).
			Str("location", alert.LocationName).
			Int("available", alert.Available).
			Msg("stock below par level")
	}
}

func (a *StockAlertService) LogExpiryAlerts(alerts []ExpiryAlert) {
	if len(alerts) == 0 {
		log.Debug().Msg("no lots near expiration")
		return
	}
	for _, alert := range alerts {
		event := log.Warn()
		if alert.DaysUntilExpiration < 0 {
			event = log.Error()
		}
		event.
			Str("item", alert.ItemName).
			Str("location", alert.LocationName).
			Str("tag", alert.Tag).
			Int("days_until_expiration", alert.DaysUntilExpiration).
			Msg("lot near expiration")
	}
}
