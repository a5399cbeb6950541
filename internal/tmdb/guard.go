package tmdb

import (
	"context"
	"errors"
	"sync"
)

// ErrSuperseded 同一视图已经发起了更新的请求，旧响应作废
var ErrSuperseded = errors.New("tmdb: superseded by a newer request")

// Guard tracks the latest request per view. Starting a new request for a
// view cancels the one in flight, so only the newest result is delivered.
type Guard struct {
	mu    sync.Mutex
	seq   uint64
	views map[string]*Ticket
}

type Ticket struct {
	g      *Guard
	view   string
	seq    uint64
	cancel context.CancelFunc
}

func NewGuard() *Guard {
	return &Guard{views: map[string]*Ticket{}}
}

// Begin registers a request for view and returns a context that is cancelled
// once a newer request for the same view begins.
func (g *Guard) Begin(ctx context.Context, view string) (context.Context, *Ticket) {
	ctx, cancel := context.WithCancelCause(ctx)
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	t := &Ticket{g: g, view: view, seq: g.seq, cancel: func() { cancel(ErrSuperseded) }}
	if prev, ok := g.views[view]; ok {
		prev.cancel()
	}
	g.views[view] = t
	return ctx, t
}

// Current 是否仍是该视图最新的请求
func (t *Ticket) Current() bool {
	t.g.mu.Lock()
	defer t.g.mu.Unlock()
	cur, ok := t.g.views[t.view]
	return ok && cur == t
}

// Done 释放 ticket；只有最新的 ticket 会从表里移除
func (t *Ticket) Done() {
	t.g.mu.Lock()
	defer t.g.mu.Unlock()
	if cur, ok := t.g.views[t.view]; ok && cur == t {
		delete(t.g.views, t.view)
	}
	t.cancel()
}

// Deliver runs fetch under the guard and drops the result when a newer
// request for view started in the meantime.
func Deliver[T any](g *Guard, ctx context.Context, view string, fetch func(context.Context) (T, error)) (T, error) {
	var zero T
	if g == nil {
		return fetch(ctx)
	}
	rctx, t := g.Begin(ctx, view)
	defer t.Done()
	v, err := fetch(rctx)
	if !t.Current() || errors.Is(context.Cause(rctx), ErrSuperseded) {
		return zero, ErrSuperseded
	}
	if err != nil {
		return zero, err
	}
	return v, nil
}
