// Package repo persists the store's state as JSON values under a handful of keys.
package repo

import (
	"context"
	"errors"
	"strings"
	"sync"
)

var ErrNotFound = errors.New("repo: key not found")

// KV 最小持久化接口；所有后端实现它
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, val []byte) error
	Delete(ctx context.Context, key string) error
}

// MemoryKV keeps values in process memory. It is what tests and throwaway stores use.
type MemoryKV struct {
	mu sync.RWMutex
	m  map[string][]byte
}

func NewMemoryKV() *MemoryKV { return &MemoryKV{m: map[string][]byte{}} }

func (k *MemoryKV) Get(_ context.Context, key string) ([]byte, error) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	v, ok := k.m[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (k *MemoryKV) Set(_ context.Context, key string, val []byte) error {
	k.mu.Lock()
	k.m[key] = append([]byte(nil), val...)
	k.mu.Unlock()
	return nil
}

func (k *MemoryKV) Delete(_ context.Context, key string) error {
	k.mu.Lock()
	delete(k.m, key)
	k.mu.Unlock()
	return nil
}

func validKey(key string) error {
	if key == "" || strings.ContainsAny(key, `/\`) || key == "." || key == ".." {
		return errors.New("repo: invalid key " + key)
	}
	return nil
}
