package cache

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

var lookups = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "cache_lookups_total",
	Help: "Read-through cache lookups by outcome (hit, miss, error).",
}, []string{"prefix", "outcome"})

// Cache 读穿透缓存：命中直接返回；未命中时同 key 的并发回源只跑一次，
// 等待方各自受自己的 ctx 约束
type Cache struct {
	RDB    redis.UniversalClient
	Prefix string
	sf     singleflight.Group
}

func NewWithClient(rdb redis.UniversalClient, prefix string) *Cache {
	return &Cache{RDB: rdb, Prefix: prefix}
}

// jitter 把 ttl 随机拉长至多 10%，避免同一批 key 同时过期
func jitter(ttl time.Duration) time.Duration {
	if ttl <= 0 {
		return ttl
	}
	return ttl + time.Duration(rand.Int64N(int64(ttl)/10+1))
}

func (c *Cache) GetOrLoad(ctx context.Context, key string, ttl time.Duration, load func(context.Context) ([]byte, error)) ([]byte, error) {
	if ctx.Err() != nil {
		return nil, context.Cause(ctx)
	}
	key = c.Prefix + key
	b, err := c.RDB.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		lookups.WithLabelValues(c.Prefix, "hit").Inc()
		return b, nil
	case errors.Is(err, redis.Nil):
		lookups.WithLabelValues(c.Prefix, "miss").Inc()
	default:
		// redis 不可用时照常回源
		lookups.WithLabelValues(c.Prefix, "error").Inc()
	}

	ch := c.sf.DoChan(key, func() (any, error) {
		// 回源不跟随第一个调用方取消，结果仍能写回给后来者
		lctx := context.WithoutCancel(ctx)
		v, e := load(lctx)
		if e != nil {
			return nil, e
		}
		_ = c.RDB.Set(lctx, key, v, jitter(ttl)).Err()
		return v, nil
	})
	select {
	case <-ctx.Done():
		return nil, context.Cause(ctx)
	case r := <-ch:
		if r.Err != nil {
			return nil, r.Err
		}
		return r.Val.([]byte), nil
	}
}

// Forget 删除一个 key；下次读取重新回源
func (c *Cache) Forget(ctx context.Context, key string) error {
	return c.RDB.Del(ctx, c.Prefix+key).Err()
}

func (c *Cache) Close() error { return c.RDB.Close() }

// GetOrLoadJSON 是 GetOrLoad 的 JSON 版本；c 为 nil 时直接回源
func GetOrLoadJSON[T any](c *Cache, ctx context.Context, key string, ttl time.Duration, load func(ctx context.Context) (*T, error)) (*T, error) {
	if c == nil {
		return load(ctx)
	}
	b, err := c.GetOrLoad(ctx, key, ttl, func(ctx context.Context) ([]byte, error) {
		v, e := load(ctx)
		if e != nil {
			return nil, e
		}
		return json.Marshal(v)
	})
	if err != nil {
		return nil, err
	}
	var out *T
	if e := json.Unmarshal(b, &out); e != nil {
		return nil, e
	}
	return out, nil
}
