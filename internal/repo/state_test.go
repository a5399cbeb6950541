package repo

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"cinedeck/internal/domain"
)

// flakyKV 在指定键上写失败
type flakyKV struct {
	*MemoryKV
	failOn string
}

func (f *flakyKV) Set(ctx context.Context, key string, val []byte) error {
	if key == f.failOn {
		return errors.New("disk full")
	}
	return f.MemoryKV.Set(ctx, key, val)
}

func TestLoad_ReportsCorruptKeys(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()
	require.NoError(t, kv.Set(ctx, KeyUsers, []byte(`{broken`)))
	require.NoError(t, kv.Set(ctx, KeyCurrentUser, []byte(`nope`)))
	require.NoError(t, kv.Set(ctx, KeyFeatured, []byte(`[1,2]`)))

	st, raw, issues, err := Load(ctx, kv)
	require.NoError(t, err)
	assert.Nil(t, st.Users)
	assert.Nil(t, st.CurrentUser)
	assert.Equal(t, []int64{1, 2}, st.Featured)
	assert.Len(t, raw, 3)

	keys := []string{}
	for _, is := range issues {
		keys = append(keys, is.Key)
	}
	assert.ElementsMatch(t, []string{KeyUsers, KeyCurrentUser}, keys)
}

func TestEncodeLoadRoundTrip(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()
	st := State{
		Users:       []domain.User{{ID: 1, Username: "manuel", Password: "h", Active: false}},
		CurrentUser: []byte(`{"id":1}`),
		Featured:    []int64{9},
	}
	snap, err := Encode(st)
	require.NoError(t, err)
	_, err = Commit(ctx, kv, nil, snap)
	require.NoError(t, err)

	back, _, issues, err := Load(ctx, kv)
	require.NoError(t, err)
	assert.Empty(t, issues)
	require.Len(t, back.Users, 1)
	assert.False(t, back.Users[0].Active, "an explicit false survives the round trip")
	assert.Equal(t, []int64{9}, back.Featured)
	assert.NotNil(t, back.Official)
}

func TestCommit_WritesOnlyChangedKeys(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()
	prev, err := Encode(State{CurrentUser: []byte(`{"id":1}`)})
	require.NoError(t, err)
	_, err = Commit(ctx, kv, nil, prev)
	require.NoError(t, err)

	next, err := Encode(State{Featured: []int64{5}})
	require.NoError(t, err)
	changed, err := Commit(ctx, kv, prev, next)
	require.NoError(t, err)
	assert.Equal(t, []string{KeyCurrentUser, KeyFeatured}, changed)

	_, err = kv.Get(ctx, KeyCurrentUser)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCommit_RestoresWrittenKeysOnFailure(t *testing.T) {
	mem := NewMemoryKV()
	ctx := context.Background()
	prev, err := Encode(State{})
	require.NoError(t, err)
	_, err = Commit(ctx, mem, nil, prev)
	require.NoError(t, err)

	kv := &flakyKV{MemoryKV: mem, failOn: KeyUsers}
	next, err := Encode(State{Featured: []int64{1}, Users: []domain.User{{ID: 3}}})
	require.NoError(t, err)

	_, err = Commit(ctx, kv, prev, next)
	require.Error(t, err)

	b, err := mem.Get(ctx, KeyFeatured)
	require.NoError(t, err)
	assert.Equal(t, `[]`, string(b), "featuredLists was written first and then restored")
}
