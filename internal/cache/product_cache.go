package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"go-inventory-catalog/internal/model"
	"go-inventory-catalog/internal/repository"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const generationKey = "products:generation"

// Generation identifies the cache epoch a lookup ran in. The zero value means
// the epoch is unknown and nothing may be stored.
type Generation string

// ProductCache stores listing results. Implementations treat every failure as a miss.
// SetList must be given the generation GetList returned before the database was read,
// so a listing is never stored under an epoch that began after it was fetched.
type ProductCache interface {
	GetList(ctx context.Context, filter repository.ProductFilter) ([]model.Product, Generation, bool)
	SetList(ctx context.Context, gen Generation, filter repository.ProductFilter, products []model.Product)
	Invalidate(ctx context.Context)
}

// NewRedis creates and validates a go-redis client connection.
func NewRedis(redisURL string) (*redis.Client, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	rdb := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return rdb, nil
}

type redisProductCache struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewProductCache keys listings by a generation counter, so Invalidate is a single INCR
// and stale entries simply expire.
func NewProductCache(rdb *redis.Client, ttl time.Duration) ProductCache {
	return &redisProductCache{rdb: rdb, ttl: ttl}
}

func (c *redisProductCache) GetList(ctx context.Context, filter repository.ProductFilter) ([]model.Product, Generation, bool) {
	gen, err := c.generation(ctx)
	if err != nil {
		log.Warn().Err(err).Msg("cache: read generation")
		return nil, "", false
	}
	raw, err := c.rdb.Get(ctx, listKey(gen, filter)).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Msg("cache: get listing")
		}
		return nil, gen, false
	}
	var products []model.Product
	if err := json.Unmarshal(raw, &products); err != nil {
		log.Warn().Err(err).Msg("cache: decode listing")
		return nil, gen, false
	}
	return products, gen, true
}

func (c *redisProductCache) SetList(ctx context.Context, gen Generation, filter repository.ProductFilter, products []model.Product) {
	if gen == "" {
		return
	}
	raw, err := json.Marshal(products)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, listKey(gen, filter), raw, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Msg("cache: set listing")
	}
}

func (c *redisProductCache) Invalidate(ctx context.Context) {
	if err := c.rdb.Incr(ctx, generationKey).Err(); err != nil {
		log.Warn().Err(err).Msg("cache: invalidate listings")
	}
}

func (c *redisProductCache) generation(ctx context.Context) (Generation, error) {
	gen, err := c.rdb.Get(ctx, generationKey).Result()
	if errors.Is(err, redis.Nil) {
		return "0", nil
	}
	return Generation(gen), err
}

// listKey escapes each filter part so that no two filters share a key.
func listKey(gen Generation, filter repository.ProductFilter) string {
	return fmt.Sprintf("products:list:%s:%s:%s",
		gen, url.QueryEscape(strings.ToLower(filter.Name)), url.QueryEscape(filter.Category))
}

// Noop is used when REDIS_URL is not configured.
type Noop struct{}

func (Noop) GetList(context.Context, repository.ProductFilter) ([]model.Product, Generation, bool) {
	return nil, "", false
}

func (Noop) SetList(context.Context, Generation, repository.ProductFilter, []model.Product) {}

func (Noop) Invalidate(context.Context) {}
