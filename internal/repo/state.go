package repo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"cinedeck/internal/domain"
)

// 持久化布局中的键
const (
	KeyUsers       = "users"
	KeyCurrentUser = "currentUser"
	KeyFeatured    = "featuredLists"
	KeyOfficial    = "officialLists"
)

var Keys = []string{KeyUsers, KeyCurrentUser, KeyFeatured, KeyOfficial}

// State is the decoded form of everything the store persists.
type State struct {
	Users       []domain.User
	CurrentUser json.RawMessage
	Featured    []int64
	Official    []domain.List
}

// Snapshot maps keys to encoded values; a nil value means the key is absent.
type Snapshot map[string][]byte

// Issue 记录一个无法解码的键，加载时按空值处理
type Issue struct {
	Key string
	Err error
}

func (i Issue) Error() string { return fmt.Sprintf("decode %s: %v", i.Key, i.Err) }

// Load reads every key. Missing keys decode to zero values; undecodable ones are reported
// as issues and also decode to zero values. Only backend failures are returned as errors.
// The raw snapshot is returned so the first commit only writes what changed.
func Load(ctx context.Context, kv KV) (State, Snapshot, []Issue, error) {
	raw := Snapshot{}
	for _, key := range Keys {
		b, err := kv.Get(ctx, key)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return State{}, nil, nil, fmt.Errorf("repo: read %s: %w", key, err)
		}
		raw[key] = b
	}
	st, issues := Decode(raw)
	return st, raw, issues, nil
}

// Decode 解码快照，坏掉的键记为 Issue
func Decode(snap Snapshot) (State, []Issue) {
	var (
		st     State
		issues []Issue
	)
	for _, key := range Keys {
		b, ok := snap[key]
		if !ok || b == nil {
			continue
		}
		if err := decodeKey(key, b, &st); err != nil {
			issues = append(issues, Issue{Key: key, Err: err})
		}
	}
	return st, issues
}

func decodeKey(key string, b []byte, st *State) error {
	switch key {
	case KeyUsers:
		var users []domain.User
		if err := json.Unmarshal(b, &users); err != nil {
			return err
		}
		st.Users = users
	case KeyCurrentUser:
		if !json.Valid(b) {
			return errors.New("invalid json")
		}
		st.CurrentUser = b
	case KeyFeatured:
		var ids []int64
		if err := json.Unmarshal(b, &ids); err != nil {
			return err
		}
		st.Featured = ids
	case KeyOfficial:
		var lists []domain.List
		if err := json.Unmarshal(b, &lists); err != nil {
			return err
		}
		st.Official = lists
	}
	return nil
}

// Encode 把状态编码为快照；CurrentUser 为空表示匿名，对应键被删除
func Encode(st State) (Snapshot, error) {
	snap := Snapshot{}
	put := func(key string, v any) error {
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Errorf("repo: encode %s: %w", key, err)
		}
		snap[key] = b
		return nil
	}
	users := st.Users
	if users == nil {
		users = []domain.User{}
	}
	featured := st.Featured
	if featured == nil {
		featured = []int64{}
	}
	official := st.Official
	if official == nil {
		official = []domain.List{}
	}
	if err := put(KeyUsers, users); err != nil {
		return nil, err
	}
	if err := put(KeyFeatured, featured); err != nil {
		return nil, err
	}
	if err := put(KeyOfficial, official); err != nil {
		return nil, err
	}
	if len(st.CurrentUser) > 0 {
		snap[KeyCurrentUser] = append([]byte(nil), st.CurrentUser...)
	}
	return snap, nil
}

// Commit writes the keys whose value differs between prev and next. When a write fails
// the keys already written are put back to their prev value (best effort) and the
// original error is returned.
func Commit(ctx context.Context, kv KV, prev, next Snapshot) ([]string, error) {
	var changed []string
	for key := range union(prev, next) {
		if !bytes.Equal(prev[key], next[key]) || (prev[key] == nil) != (next[key] == nil) {
			changed = append(changed, key)
		}
	}
	sort.Strings(changed)

	for i, key := range changed {
		if err := put(ctx, kv, key, next[key]); err != nil {
			for _, done := range changed[:i] {
				_ = put(context.WithoutCancel(ctx), kv, done, prev[done])
			}
			return nil, fmt.Errorf("repo: write %s: %w", key, err)
		}
	}
	return changed, nil
}

func put(ctx context.Context, kv KV, key string, val []byte) error {
	if val == nil {
		return kv.Delete(ctx, key)
	}
	return kv.Set(ctx, key, val)
}

func union(a, b Snapshot) map[string]struct{} {
	out := make(map[string]struct{}, len(a)+len(b))
	for k := range a {
		out[k] = struct{}{}
	}
	for k := range b {
		out[k] = struct{}{}
	}
	return out
}
