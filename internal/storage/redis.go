package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"pricescout/internal/domain"
)

// RedisStore caches per-source search results so a query repeated within
// the TTL is answered without re-rendering the page.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(addr string) *RedisStore {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	return &RedisStore{client: rdb}
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func scrapeKey(sourceKey, query string) string {
	h := sha256.Sum256([]byte(query))
	return fmt.Sprintf("scrape:%s:%s", sourceKey, hex.EncodeToString(h[:8]))
}

// CacheResults stores one source's extracted products for a query.
func (s *RedisStore) CacheResults(ctx context.Context, sourceKey, query string, products []domain.Product, ttl time.Duration) error {
	payload, err := json.Marshal(products)
	if err != nil {
		return err
	}
	return s.client.Set(ctx, scrapeKey(sourceKey, query), payload, ttl).Err()
}

// GetCachedResults returns cached products for a source/query pair, or
// ok=false on a miss.
func (s *RedisStore) GetCachedResults(ctx context.Context, sourceKey, query string) ([]domain.Product, bool, error) {
	payload, err := s.client.Get(ctx, scrapeKey(sourceKey, query)).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var products []domain.Product
	if err := json.Unmarshal(payload, &products); err != nil {
		return nil, false, err
	}
	return products, true, nil
}
