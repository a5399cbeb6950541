package repo

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisKV 以 prefix+key 存储，多个实例可共用一个 redis 库
type RedisKV struct {
	rdb    redis.UniversalClient
	prefix string
}

func NewRedisKV(rdb redis.UniversalClient, prefix string) *RedisKV {
	return &RedisKV{rdb: rdb, prefix: prefix}
}

func (k *RedisKV) Get(ctx context.Context, key string) ([]byte, error) {
	b, err := k.rdb.Get(ctx, k.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	return b, err
}

func (k *RedisKV) Set(ctx context.Context, key string, val []byte) error {
	return k.rdb.Set(ctx, k.prefix+key, val, 0).Err()
}

func (k *RedisKV) Delete(ctx context.Context, key string) error {
	return k.rdb.Del(ctx, k.prefix+key).Err()
}
