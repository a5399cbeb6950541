// Package service exposes the whole store through one facade. Every call runs under a
// single lock and mutations are written through before the call returns.
package service

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"cinedeck/internal/domain"
	"cinedeck/internal/feature/directory"
	"cinedeck/internal/feature/featured"
	"cinedeck/internal/feature/policy"
	"cinedeck/internal/feature/session"
	"cinedeck/internal/repo"
	"cinedeck/pkg/utils"
)

var storeOps = prometheus.NewCounterVec(
	prometheus.CounterOpts{Name: "store_operations_total", Help: "Count of store facade operations"},
	[]string{"op", "result"},
)

func init() { prometheus.MustRegister(storeOps) }

// Result 统一返回结构；失败时 Code 为错误类别
type Result[T any] struct {
	Success bool        `json:"success"`
	Code    domain.Kind `json:"code,omitempty"`
	Message string      `json:"message,omitempty"`
	Data    T           `json:"data,omitzero"`
	err     error
}

// Err returns the underlying error of a failed result, nil on success.
func (r Result[T]) Err() error { return r.err }

func succeed[T any](v T) Result[T] { return Result[T]{Success: true, Data: v} }

func fail[T any](err error) Result[T] {
	return Result[T]{Code: domain.KindOf(err), Message: err.Error(), err: err}
}

// None 无返回数据的操作使用
type None struct{}

type Options struct {
	HashCost int
	// Detached 会话不从存储恢复，也不写回 currentUser（管理命令行用）
	Detached bool
	Now      func() time.Time
}

type Store struct {
	mu        sync.Mutex
	kv        repo.KV
	opts      Options
	log       *zap.Logger
	ids       *utils.IDGen
	dir       *directory.Directory
	overlay   *featured.Overlay
	sess      *session.Manager
	committed repo.Snapshot
	closed    bool
}

var errClosed = errors.New("store is closed")

// Open loads the persisted state or seeds the default accounts when there is none.
// Corrupt keys are logged and replaced; only an unreachable backend fails Open.
func Open(ctx context.Context, kv repo.KV, opts Options, log *zap.Logger) (*Store, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	st, raw, issues, err := repo.Load(ctx, kv)
	if err != nil {
		return nil, err
	}
	for _, is := range issues {
		log.Warn("store: discarding corrupt key", zap.String("key", is.Key), zap.Error(is.Err))
	}
	if len(st.Users) == 0 {
		seeds, err := directory.SeedUsers(opts.HashCost, opts.Now())
		if err != nil {
			return nil, err
		}
		log.Info("store: seeding default accounts", zap.Int("users", len(seeds)))
		st.Users = seeds
	}

	s := &Store{kv: kv, opts: opts, log: log, ids: utils.NewIDGen(opts.Now), committed: raw}
	s.build(st)
	if err := s.persist(ctx); err != nil {
		return nil, err
	}
	log.Info("store: opened", zap.Bool("detached", opts.Detached), zap.Int64("session", s.sess.Actor().ID))
	return s, nil
}

// build 用解码后的状态重建内存结构
func (s *Store) build(st repo.State) {
	s.dir = directory.New(st.Users, directory.Options{HashCost: s.opts.HashCost, IDs: s.ids, Now: s.opts.Now, Log: s.log})
	s.overlay = featured.New(st.Featured, st.Official, featured.Options{IDs: s.ids, Now: s.opts.Now, Log: s.log})
	s.overlay.Prune(s.dir)
	switch {
	case s.opts.Detached && s.sess != nil:
		s.sess.Refresh(s.dir)
	case s.opts.Detached:
		s.sess = session.New(s.log)
	default:
		s.sess = session.Restore(st.CurrentUser, s.dir, s.log)
	}
}

func (s *Store) snapshot() (repo.Snapshot, error) {
	featuredIDs, official := s.overlay.Export()
	current, err := s.sess.Snapshot()
	if err != nil {
		return nil, err
	}
	next, err := repo.Encode(repo.State{Users: s.dir.Export(), CurrentUser: current, Featured: featuredIDs, Official: official})
	if err != nil {
		return nil, err
	}
	if s.opts.Detached {
		if v, ok := s.committed[repo.KeyCurrentUser]; ok {
			next[repo.KeyCurrentUser] = v
		} else {
			delete(next, repo.KeyCurrentUser)
		}
	}
	return next, nil
}

func (s *Store) persist(ctx context.Context) error {
	next, err := s.snapshot()
	if err != nil {
		return err
	}
	changed, err := repo.Commit(ctx, s.kv, s.committed, next)
	if err != nil {
		return err
	}
	s.committed = next
	if len(changed) > 0 {
		s.log.Debug("store: committed", zap.Strings("keys", changed))
	}
	return nil
}

// rollback 内存回到最后一次成功提交的状态
func (s *Store) rollback() {
	st, _ := repo.Decode(s.committed)
	s.build(st)
}

// mutate runs fn as the current actor and writes the result through. A failed write
// rolls memory back so the caller never observes state that was not saved.
func mutate[T any](ctx context.Context, s *Store, op string, fn func(a policy.Actor) (T, error)) Result[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return record(op, fail[T](domain.Internal(errClosed.Error(), errClosed)))
	}
	v, err := fn(s.sess.Actor())
	if err != nil {
		return record(op, fail[T](err))
	}
	s.overlay.Prune(s.dir)
	s.sess.Refresh(s.dir)
	if err := s.persist(ctx); err != nil {
		s.log.Error("store: write failed, rolling back", zap.String("op", op), zap.Error(err))
		s.rollback()
		return record(op, fail[T](domain.Internal("failed to save changes", err)))
	}
	return record(op, succeed(v))
}

// read 只读操作，不写存储
func read[T any](s *Store, op string, fn func(a policy.Actor) (T, error)) Result[T] {
	return readAs(s, op, nil, fn)
}

// readAs 以指定身份读取；as 为 nil 时用会话身份
func readAs[T any](s *Store, op string, as *policy.Actor, fn func(a policy.Actor) (T, error)) Result[T] {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return record(op, fail[T](domain.Internal(errClosed.Error(), errClosed)))
	}
	a := s.sess.Actor()
	if as != nil {
		a = *as
	}
	v, err := fn(a)
	if err != nil {
		return record(op, fail[T](err))
	}
	return record(op, succeed(v))
}

func record[T any](op string, r Result[T]) Result[T] {
	result := "ok"
	if !r.Success {
		result = string(r.Code)
	}
	storeOps.WithLabelValues(op, result).Inc()
	return r
}

// Close flushes pending state; later calls fail.
func (s *Store) Close(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.persist(ctx); err != nil {
		return err
	}
	s.log.Info("store: closed")
	return nil
}
