package tmdb

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuard_NewerRequestCancelsOlder(t *testing.T) {
	g := NewGuard()
	ctx1, t1 := g.Begin(context.Background(), "search")
	assert.True(t, t1.Current())

	ctx2, t2 := g.Begin(context.Background(), "search")
	assert.False(t, t1.Current())
	assert.True(t, t2.Current())
	assert.ErrorIs(t, context.Cause(ctx1), ErrSuperseded)
	assert.NoError(t, ctx2.Err())

	_, other := g.Begin(context.Background(), "details")
	assert.True(t, other.Current())
	assert.True(t, t2.Current())

	t1.Done()
	assert.True(t, t2.Current())
	t2.Done()
	assert.False(t, t2.Current())
	other.Done()
}

func TestDeliver_DropsStaleResult(t *testing.T) {
	g := NewGuard()
	started := make(chan struct{})
	release := make(chan struct{})
	errc := make(chan error, 1)
	go func() {
		_, err := Deliver(g, context.Background(), "search", func(ctx context.Context) (string, error) {
			close(started)
			<-release
			return "old", nil
		})
		errc <- err
	}()
	<-started

	v, err := Deliver(g, context.Background(), "search", func(ctx context.Context) (string, error) {
		return "new", nil
	})
	require.NoError(t, err)
	assert.Equal(t, "new", v)

	close(release)
	assert.ErrorIs(t, <-errc, ErrSuperseded)
}

func TestDeliver_PassesErrorsThrough(t *testing.T) {
	boom := errors.New("boom")
	_, err := Deliver(NewGuard(), context.Background(), "x", func(ctx context.Context) (int, error) { return 0, boom })
	assert.ErrorIs(t, err, boom)

	v, err := Deliver[int](nil, context.Background(), "x", func(ctx context.Context) (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, v)
}
