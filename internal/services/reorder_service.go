package services

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
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
	"github.com/shopspring/decimal"
)

// ReorderService computes purchase suggestions from par levels and current
// stock. The computation is read-only; it never mutates counters or lots.
type ReorderService interface {
	Suggestions(ctx context.Context, filter *models.SuggestionFilter) ([]*models.ReorderSuggestion, error)
	CreatePurchaseOrders(ctx context.Context, suggestions []*models.ReorderSuggestion, createdBy uuid.UUID) ([]*models.PurchaseOrder, error)
}

type reorderService struct {
	db        TxBeginner
	items     repositories.ItemRepository
	inventory repositories.InventoryRepository
	parLevels repositories.ParLevelRepository
	rules     repositories.AutoOrderRuleRepository
	vendors   repositories.VendorRepository
	orders    repositories.OrderRepository
	cfg       config.ReorderEngine
	cache     caching.CacheService
}

func NewReorderService(
	db TxBeginner,
	items repositories.ItemRepository,
	inventory repositories.InventoryRepository,
	parLevels repositories.ParLevelRepository,
	rules repositories.AutoOrderRuleRepository,
	vendors repositories.VendorRepository,
	orders repositories.OrderRepository,
	cfg config.ReorderEngine,
	cache caching.CacheService,
) ReorderService {
	return &reorderService{
		db:        db,
		items:     items,
		inventory: inventory,
		parLevels: parLevels,
		rules:     rules,
		vendors:   vendors,
		orders:    orders,
		cfg:       cfg,
		cache:     cache,
	}
}

// Suggestions evaluates every item that has at least one par level. An item
// is suggested only when its summed available stock across par-level
// locations is strictly below the summed reorder thresholds.
func (s *reorderService) Suggestions(ctx context.Context, filter *models.SuggestionFilter) ([]*models.ReorderSuggestion, error) {
	unfiltered := filter == nil || (filter.ItemID == nil && filter.Urgency == nil && filter.Category == nil)
	if unfiltered && s.cache != nil {
		cached, err := s.cache.GetSuggestions(ctx)
		if err != nil {
			log.Warn().Err(err).Msg("failed to read suggestions cache")
		} else if cached != nil {
			return cached, nil
		}
	}

	pars, err := s.parLevels.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	byItem := make(map[uuid.UUID][]*models.ParLevel)
	for _, p := range pars {
		byItem[p.ItemID] = append(byItem[p.ItemID], p)
	}

	suggestions := make([]*models.ReorderSuggestion, 0)
	for itemID, itemPars := range byItem {
		if filter != nil && filter.ItemID != nil && *filter.ItemID != itemID {
			continue
		}
		sug, err := s.evaluate(ctx, itemID, itemPars)
		if err != nil {
			return nil, err
		}
		if sug == nil {
			continue
		}
		suggestions = append(suggestions, sug)
	}

	sort.Slice(suggestions, func(i, j int) bool {
		si, sj := suggestions[i].Urgency.Severity(), suggestions[j].Urgency.Severity()
		if si != sj {
			return si < sj
		}
		if suggestions[i].Shortage != suggestions[j].Shortage {
			return suggestions[i].Shortage > suggestions[j].Shortage
		}
		return suggestions[i].ItemCode < suggestions[j].ItemCode
	})

	if unfiltered && s.cache != nil && s.cfg.CacheTTLSecs > 0 {
		ttl := time.Duration(s.cfg.CacheTTLSecs) * time.Second
		if err := s.cache.SetSuggestions(ctx, suggestions, ttl); err != nil {
			log.Warn().Err(err).Msg("failed to write suggestions cache")
		}
	}

	if !unfiltered {
		suggestions = applySuggestionFilter(suggestions, filter)
	}
	return suggestions, nil
}

func (s *reorderService) evaluate(ctx context.Context, itemID uuid.UUID, pars []*models.ParLevel) (*models.ReorderSuggestion, error) {
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	if !item.IsActive {
		return nil, nil
	}

	stocks, err := s.inventory.ListByItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	available := make(map[uuid.UUID]int, len(stocks))
	onHand := make(map[uuid.UUID]int, len(stocks))
	for _, inv := range stocks {
		available[inv.LocationID] = inv.QuantityAvailable()
		onHand[inv.LocationID] = inv.QuantityOnHand
	}

	var totalStock, totalPar, totalReorder, locationsBelow int
	for _, p := range pars {
		totalPar += p.ParQuantity
		totalReorder += p.ReorderQuantity
		totalStock += available[p.LocationID]
		if onHand[p.LocationID] < p.ReorderQuantity {
			locationsBelow++
		}
	}
	if totalPar <= 0 || totalStock >= totalReorder {
		return nil, nil
	}

	shortage := totalPar - totalStock
	suggested := int(math.Ceil(float64(shortage) * (1 + s.cfg.BufferPercent)))
	if suggested < 1 {
		suggested = 1
	}
	if item.MaxReorderQuantityPerStation != nil {
		cap := *item.MaxReorderQuantityPerStation * locationsBelow
		if cap >= 1 && suggested > cap {
			suggested = cap
		}
	}

	rule, err := s.rules.GetActiveByItem(ctx, itemID)
	if err != nil {
		return nil, err
	}
	if rule != nil && rule.OrderQuantity > suggested {
		suggested = rule.OrderQuantity
	}

	sug := &models.ReorderSuggestion{
		ItemID:            itemID,
		ItemCode:          item.ItemCode,
		ItemName:          item.Name,
		Category:          item.Category,
		UnitOfMeasure:     item.UnitOfMeasure,
		TotalStock:        totalStock,
		TotalPar:          totalPar,
		TotalReorder:      totalReorder,
		Shortage:          shortage,
		SuggestedOrderQty: suggested,
		LocationsBelow:    locationsBelow,
		Urgency:           s.urgency(totalStock, totalReorder),
	}

	vendorID := item.PreferredVendorID
	if rule != nil && rule.PreferredVendorID != nil {
		vendorID = rule.PreferredVendorID
	}
	if vendorID != nil {
		vendor, err := s.vendors.GetByID(ctx, *vendorID)
		if err != nil && !errors.Is(err, pgx.ErrNoRows) {
			return nil, err
		}
		if vendor != nil {
			sug.VendorID = &vendor.ID
			sug.VendorName = &vendor.Name
		}
	}

	if item.CostPerUnit != nil {
		cost := item.CostPerUnit.Mul(decimal.NewFromInt(int64(suggested)))
		sug.ProjectedOrderCost = &cost
	}
	return sug, nil
}

func (s *reorderService) urgency(totalStock, totalReorder int) models.Urgency {
	if totalReorder <= 0 {
		return models.UrgencyLow
	}
	ratio := float64(totalStock) / float64(totalReorder)
	switch {
	case ratio <= s.cfg.CriticalRatio:
		return models.UrgencyCritical
	case ratio <= s.cfg.HighRatio:
		return models.UrgencyHigh
	case ratio <= s.cfg.MediumRatio:
		return models.UrgencyMedium
	default:
		return models.UrgencyLow
	}
}

func applySuggestionFilter(suggestions []*models.ReorderSuggestion, filter *models.SuggestionFilter) []*models.ReorderSuggestion {
	out := suggestions[:0]
	for _, sug := range suggestions {
		if filter.Urgency != nil && sug.Urgency != *filter.Urgency {
			continue
		}
		if filter.Category != nil && (sug.Category == nil || *sug.Category != *filter.Category) {
			continue
		}
		out = append(out, sug)
	}
	return out
}

// CreatePurchaseOrders turns accepted suggestions into pending purchase
// orders, one per vendor. Suggestions without a resolved vendor are skipped
// and reported back through the returned orders only.
func (s *reorderService) CreatePurchaseOrders(ctx context.Context, suggestions []*models.ReorderSuggestion, createdBy uuid.UUID) ([]*models.PurchaseOrder, error) {
	byVendor := make(map[uuid.UUID][]*models.ReorderSuggestion)
	var vendorOrder []uuid.UUID
	for _, sug := range suggestions {
		if sug.VendorID == nil {
			continue
		}
		if _, seen := byVendor[*sug.VendorID]; !seen {
			vendorOrder = append(vendorOrder, *sug.VendorID)
		}
		byVendor[*sug.VendorID] = append(byVendor[*sug.VendorID], sug)
	}
	if len(byVendor) == 0 {
		return nil, fmt.Errorf("no suggestion has a vendor: %w", ErrInvalidInput)
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	orders := s.orders.WithTx(tx)
	created := make([]*models.PurchaseOrder, 0, len(byVendor))
	now := time.Now().UTC()
	for _, vendorID := range vendorOrder {
		group := byVendor[vendorID]
		po := &models.PurchaseOrder{
			ID:        uuid.New(),
			PONumber:  newPONumber(now),
			VendorID:  vendorID,
			Status:    models.OrderPending,
			OrderDate: now,
			CreatedBy: createdBy,
		}
		total := decimal.Zero
		hasCost := false
		for _, sug := range group {
			line := &models.PurchaseOrderItem{
				ID:              uuid.New(),
				POID:            po.ID,
				ItemID:          sug.ItemID,
				QuantityOrdered: sug.SuggestedOrderQty,
			}
			if sug.ProjectedOrderCost != nil {
				lineTotal := *sug.ProjectedOrderCost
				unit := lineTotal.Div(decimal.NewFromInt(int64(sug.SuggestedOrderQty)))
				line.UnitCost = &unit
				line.TotalCost = &lineTotal
				total = total.Add(lineTotal)
				hasCost = true
			}
			po.Items = append(po.Items, line)
		}
		if hasCost {
			po.TotalCost = &total
		}
		if err := orders.Create(ctx, po); err != nil {
			return nil, err
		}
		for _, line := range po.Items {
			if err := orders.CreateItem(ctx, line); err != nil {
				return nil, err
			}
		}
		created = append(created, po)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.DeleteSuggestions(ctx); err != nil {
			log.Warn().Err(err).Msg("failed to invalidate suggestions cache")
		}
	}
	return created, nil
}

func newPONumber(t time.Time) string {
	return fmt.Sprintf("PO-%s-%s", t.Format("20060102"), strings.ToUpper(random.String(6, random.Alphanumeric)))
}
