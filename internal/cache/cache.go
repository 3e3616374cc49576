package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"unipick/backend/internal/models"
)

const (
	itemStatsTTL       = 30 * time.Second
	moderationStatsTTL = 60 * time.Second
)

// Cache is a thin Redis wrapper for hot counters. A nil *Cache is a valid
// disabled cache: every lookup misses and every write is dropped, so callers
// never branch on whether Redis is configured.
type Cache struct {
	rdb    *redis.Client
	logger *zap.Logger
}

// New connects to Redis and verifies the connection.
func New(addr, password string, db int, logger *zap.Logger) (*Cache, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	logger.Info("Redis connection established", zap.String("addr", addr))
	return &Cache{rdb: rdb, logger: logger}, nil
}

func itemStatsKey(itemID int64) string {
	return fmt.Sprintf("item_stats:%d", itemID)
}

// GetItemStats returns the cached stats for an item, or (nil, nil) on a miss.
func (c *Cache) GetItemStats(ctx context.Context, itemID int64) (*models.ItemStats, error) {
	if c == nil {
		return nil, nil
	}
	data, err := c.rdb.Get(ctx, itemStatsKey(itemID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var stats models.ItemStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *Cache) SetItemStats(ctx context.Context, itemID int64, stats *models.ItemStats) {
	if c == nil {
		return
	}
	data, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, itemStatsKey(itemID), data, itemStatsTTL).Err(); err != nil {
		c.logger.Warn("Failed to cache item stats", zap.Int64("item_id", itemID), zap.Error(err))
	}
}

// InvalidateItemStats drops the cached counters after a view or favorite
// mutation.
func (c *Cache) InvalidateItemStats(ctx context.Context, itemID int64) {
	if c == nil {
		return
	}
	if err := c.rdb.Del(ctx, itemStatsKey(itemID)).Err(); err != nil {
		c.logger.Warn("Failed to invalidate item stats", zap.Int64("item_id", itemID), zap.Error(err))
	}
}

const moderationStatsKey = "moderation_stats"

// GetModerationStats returns the cached admin dashboard counts, or (nil, nil)
// on a miss.
func (c *Cache) GetModerationStats(ctx context.Context) (*models.ModerationStats, error) {
	if c == nil {
		return nil, nil
	}
	data, err := c.rdb.Get(ctx, moderationStatsKey).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var stats models.ModerationStats
	if err := json.Unmarshal(data, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func (c *Cache) SetModerationStats(ctx context.Context, stats *models.ModerationStats) {
	if c == nil {
		return
	}
	data, err := json.Marshal(stats)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, moderationStatsKey, data, moderationStatsTTL).Err(); err != nil {
		c.logger.Warn("Failed to cache moderation stats", zap.Error(err))
	}
}
