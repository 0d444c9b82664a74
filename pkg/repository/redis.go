package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/example/storefront/pkg/config"
	"github.com/example/storefront/pkg/models"
	"github.com/go-redis/redis/v8"
)

const catalogTTL = 5 * time.Minute

type RedisRepository struct {
	client *redis.Client
	config *config.RedisConfig
}

func NewRedisRepository(cfg *config.RedisConfig) *RedisRepository {
	return &RedisRepository{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
			PoolSize: cfg.PoolSize,
		}),
		config: cfg,
	}
}

func (r *RedisRepository) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

func (r *RedisRepository) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	return r.client.Set(ctx, key, value, expiration).Err()
}

func (r *RedisRepository) Get(ctx context.Context, key string) (string, error) {
	return r.client.Get(ctx, key).Result()
}

func (r *RedisRepository) Del(ctx context.Context, keys ...string) error {
	return r.client.Del(ctx, keys...).Err()
}

func (r *RedisRepository) SetJSON(ctx context.Context, key string, value interface{}, expiration time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, data, expiration).Err()
}

func (r *RedisRepository) GetJSON(ctx context.Context, key string, dest interface{}) error {
	data, err := r.client.Get(ctx, key).Result()
	if err != nil {
		return err
	}
	return json.Unmarshal([]byte(data), dest)
}

func (r *RedisRepository) Close() error {
	return r.client.Close()
}

// Catalog cache. Listing pages and the total count are read far more
// often than products change; any catalog write invalidates the lot.

func (r *RedisRepository) CacheCatalogPage(ctx context.Context, page int, products []models.Product) error {
	return r.SetJSON(ctx, catalogPageKey(page), products, catalogTTL)
}

func (r *RedisRepository) GetCatalogPage(ctx context.Context, page int) ([]models.Product, error) {
	var products []models.Product
	if err := r.GetJSON(ctx, catalogPageKey(page), &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (r *RedisRepository) CacheProductCount(ctx context.Context, total int64) error {
	return r.Set(ctx, "catalog:count", total, catalogTTL)
}

func (r *RedisRepository) GetProductCount(ctx context.Context) (int64, error) {
	return r.client.Get(ctx, "catalog:count").Int64()
}

func (r *RedisRepository) InvalidateCatalog(ctx context.Context) error {
	iter := r.client.Scan(ctx, 0, "catalog:*", 0).Iterator()
	keys := []string{}
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

func catalogPageKey(page int) string {
	return fmt.Sprintf("catalog:page:%d", page)
}
