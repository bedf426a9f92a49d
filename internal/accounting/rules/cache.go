package rules

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"github.com/dentex-erp/dentex-erp/internal/accounting/shared"
)

// CachedRepository is a read-through cache over a rule repository. Rules are
// looked up once per posting call, so a short TTL keeps the hot path off the
// database without making configuration changes invisible for long. Concurrent
// misses for the same key collapse into one database load.
type CachedRepository struct {
	inner  Repository
	client *redis.Client
	ttl    time.Duration
	group  singleflight.Group
}

func NewCachedRepository(inner Repository, client *redis.Client, ttl time.Duration) *CachedRepository {
	return &CachedRepository{inner: inner, client: client, ttl: ttl}
}

func cacheKey(companyID int64, docType shared.DocType) string {
	return fmt.Sprintf("rules:%d:%s", companyID, docType)
}

func (c *CachedRepository) Get(ctx context.Context, companyID int64, docType shared.DocType) (Rule, error) {
	if c.client == nil {
		return c.inner.Get(ctx, companyID, docType)
	}
	key := cacheKey(companyID, docType)
	payload, err := c.client.Get(ctx, key).Bytes()
	if err == nil {
		var rule Rule
		if jsonErr := json.Unmarshal(payload, &rule); jsonErr == nil {
			return rule, nil
		}
		// Corrupt payload: fall through to the database and rewrite.
	} else if !errors.Is(err, redis.Nil) {
		return c.inner.Get(ctx, companyID, docType)
	}

	v, err, _ := c.group.Do(key, func() (any, error) {
		rule, err := c.inner.Get(ctx, companyID, docType)
		if err != nil {
			return Rule{}, err
		}
		if data, jsonErr := json.Marshal(rule); jsonErr == nil {
			_ = c.client.Set(ctx, key, data, c.ttl).Err()
		}
		return rule, nil
	})
	if err != nil {
		return Rule{}, err
	}
	return v.(Rule), nil
}

func (c *CachedRepository) Upsert(ctx context.Context, in UpsertInput) (Rule, error) {
	rule, err := c.inner.Upsert(ctx, in)
	if err != nil {
		return Rule{}, err
	}
	if c.client != nil {
		_ = c.client.Del(ctx, cacheKey(in.CompanyID, in.DocType)).Err()
	}
	return rule, nil
}

var _ Repository = (*CachedRepository)(nil)
