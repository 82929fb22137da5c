package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	CatalogListCachePrefix = "products:v:"
	CatalogVersionKey      = "products:version"
	DefaultCatalogCacheTTL = 5 * time.Minute
)

// CatalogCache stores rendered catalog pages. A miss or a broken cache only
// costs a store read.
//
// GetList reports the catalog version it looked under. SetList stores the
// page under that same version, so a page read before an Invalidate can never
// land under the version that followed it. Version 0 disables the write.
type CatalogCache interface {
	GetList(ctx context.Context, params ListProductsParams) (*ProductPage, int64, bool)
	SetList(version int64, params ListProductsParams, page *ProductPage)
	Invalidate(ctx context.Context)
}

// RedisCatalogCache keys pages by a version counter; bumping the counter
// orphans every cached page at once.
type RedisCatalogCache struct {
	redis  *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func NewRedisCatalogCache(client *redis.Client, ttl time.Duration, logger *zap.Logger) *RedisCatalogCache {
	if ttl <= 0 {
		ttl = DefaultCatalogCacheTTL
	}
	return &RedisCatalogCache{redis: client, ttl: ttl, logger: logger}
}

func (c *RedisCatalogCache) GetList(ctx context.Context, params ListProductsParams) (*ProductPage, int64, bool) {
	version, err := c.version(ctx)
	if err != nil {
		return nil, 0, false
	}

	data, err := c.redis.Get(ctx, listKey(version, params)).Result()
	if err != nil {
		return nil, version, false
	}

	var page ProductPage
	if err := json.Unmarshal([]byte(data), &page); err != nil {
		c.logger.Warn("Failed to unmarshal cached product list", zap.Error(err))
		return nil, version, false
	}
	return &page, version, true
}

// SetList caches page under version in the background.
func (c *RedisCatalogCache) SetList(version int64, params ListProductsParams, page *ProductPage) {
	if version <= 0 {
		return
	}
	body, err := json.Marshal(page)
	if err != nil {
		c.logger.Warn("Failed to marshal product list for cache", zap.Error(err))
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := c.redis.Set(ctx, listKey(version, params), body, c.ttl).Err(); err != nil {
			c.logger.Warn("Failed to cache product list", zap.Error(err))
		}
	}()
}

func (c *RedisCatalogCache) Invalidate(ctx context.Context) {
	v, err := c.redis.Incr(ctx, CatalogVersionKey).Result()
	if err != nil {
		c.logger.Error("Failed to invalidate catalog cache", zap.Error(err))
		return
	}
	c.logger.Info("Catalog cache invalidated", zap.Int64("new_version", v))
}

func (c *RedisCatalogCache) version(ctx context.Context) (int64, error) {
	v, err := c.redis.Get(ctx, CatalogVersionKey).Int64()
	if err == nil && v > 0 {
		return v, nil
	}
	if err == redis.Nil {
		if err := c.redis.SetNX(ctx, CatalogVersionKey, 1, 0).Err(); err != nil {
			return 0, err
		}
		return c.redis.Get(ctx, CatalogVersionKey).Int64()
	}
	if err == nil {
		err = fmt.Errorf("invalid catalog cache version %d", v)
	}
	return 0, err
}

func listKey(version int64, p ListProductsParams) string {
	return fmt.Sprintf("%s%d:p:%d:l:%d:c:%s:s:%s",
		CatalogListCachePrefix,
		version,
		p.Page,
		p.Limit,
		strings.ToLower(p.Category),
		strings.ToLower(p.Search),
	)
}
