package caching

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"stationsupply/internal/models"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

type CacheService interface {
	// Item caching
	GetItem(ctx context.Context, itemID uuid.UUID) (*models.Item, error)
	SetItem(ctx context.Context, item *models.Item, ttl time.Duration) error
	DeleteItem(ctx context.Context, itemID uuid.UUID) error

	// Per-location stock caching
	GetInventory(ctx context.Context, itemID, locationID uuid.UUID) (*models.InventoryCurrent, error)
	SetInventory(ctx context.Context, inventory *models.InventoryCurrent, ttl time.Duration) error
	DeleteInventory(ctx context.Context, itemID, locationID uuid.UUID) error

	// Reorder suggestion caching. The suggestion list is invalidated as a
	// whole on any stock mutation.
	GetSuggestions(ctx context.Context) ([]*models.ReorderSuggestion, error)
	SetSuggestions(ctx context.Context, suggestions []*models.ReorderSuggestion, ttl time.Duration) error
	DeleteSuggestions(ctx context.Context) error

	// Cache invalidation
	InvalidateAllCache(ctx context.Context) error
}

type redisCacheService struct {
	client *redis.Client
}

func NewRedisCacheService(addr, password string, db int) CacheService {
	parsedAddr := addr
	if strings.HasPrefix(addr, "redis://") || strings.HasPrefix(addr, "rediss://") {
		if hostPort := strings.TrimPrefix(strings.TrimPrefix(addr, "redis://"), "rediss://"); hostPort != addr {
			parsedAddr = hostPort
		}
	}

	client := redis.NewClient(&redis.Options{
		Addr:     parsedAddr,
		Password: password,
		DB:       db,
	})

	if pingErr := client.Ping(context.Background()).Err(); pingErr != nil {
		log.Warn().Err(pingErr).Str("addr", parsedAddr).Msg("redis ping failed on initialization")
	}

	return &redisCacheService{client: client}
}

func (r *redisCacheService) GetItem(ctx context.Context, itemID uuid.UUID) (*models.Item, error) {
	key := fmt.Sprintf("stationsupply:item:%s", itemID.String())
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var item models.Item
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *redisCacheService) SetItem(ctx context.Context, item *models.Item, ttl time.Duration) error {
	key := fmt.Sprintf("stationsupply:item:%s", item.ID.String())
	data, err := json.Marshal(item)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) DeleteItem(ctx context.Context, itemID uuid.UUID) error {
	key := fmt.Sprintf("stationsupply:item:%s", itemID.String())
	return r.client.Del(ctx, key).Err()
}

func (r *redisCacheService) GetInventory(ctx context.Context, itemID, locationID uuid.UUID) (*models.InventoryCurrent, error) {
	key := fmt.Sprintf("stationsupply:inventory:%s:%s", itemID.String(), locationID.String())
	data, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var inventory models.InventoryCurrent
	if err := json.Unmarshal(data, &inventory); err != nil {
		return nil, err
	}
	return &inventory, nil
}

func (r *redisCacheService) SetInventory(ctx context.Context, inventory *models.InventoryCurrent, ttl time.Duration) error {
	key := fmt.Sprintf("stationsupply:inventory:%s:%s", inventory.ItemID.String(), inventory.LocationID.String())
	data, err := json.Marshal(inventory)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, ttl).Err()
}

func (r *redisCacheService) DeleteInventory(ctx context.Context, itemID, locationID uuid.UUID) error {
	key := fmt.Sprintf("stationsupply:inventory:%s:%s", itemID.String(), locationID.String())
	return r.client.Del(ctx, key).Err()
}

func (r *redisCacheService) GetSuggestions(ctx context.Context) ([]*models.ReorderSuggestion, error) {
	data, err := r.client.Get(ctx, "stationsupply:reorder:suggestions").Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil // cache miss
		}
		return nil, err
	}

	var suggestions []*models.ReorderSuggestion
	if err := json.Unmarshal(data, &suggestions); err != nil {
		return nil, err
	}
	return suggestions, nil
}

func (r *redisCacheService) SetSuggestions(ctx context.Context, suggestions []*models.ReorderSuggestion, ttl time.Duration) error {
	data, err := json.Marshal(suggestions)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, "stationsupply:reorder:suggestions", data, ttl).Err()
}

func (r *redisCacheService) DeleteSuggestions(ctx context.Context) error {
	return r.client.Del(ctx, "stationsupply:reorder:suggestions").Err()
}

func (r *redisCacheService) InvalidateAllCache(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, "stationsupply:*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return err
	}
	if len(keys) == 0 {
		return nil
	}
	return r.client.Del(ctx, keys...).Err()
}
