package main

import (
	"bytes"
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"cinedeck/internal/domain"
	"cinedeck/internal/repo"
	"cinedeck/internal/service"
)

// memOpener 每次打开同一个内存后端，模拟多次命令行调用
func memOpener(t *testing.T) (opener, repo.KV) {
	t.Helper()
	kv := repo.NewMemoryKV()
	return func(ctx context.Context, _ string) (*service.Store, func() error, error) {
		s, err := service.Open(ctx, kv, service.Options{HashCost: bcrypt.MinCost, Detached: true}, nil)
		if err != nil {
			return nil, nil, err
		}
		return s, func() error { return s.Close(context.Background()) }, nil
	}, kv
}

func run(t *testing.T, open opener, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := execute(context.Background(), open, &out, append([]string{"--user", "jose", "--password", "admin123"}, args...))
	return out.String(), err
}

func TestUsersCommands(t *testing.T) {
	open, kv := memOpener(t)

	out, err := run(t, open, "users", "create", "--username", "alice", "--new-password", "pw", "--name", "Alice")
	require.NoError(t, err)
	assert.Contains(t, out, "alice")

	out, err = run(t, open, "users", "list")
	require.NoError(t, err)
	for _, name := range []string{"manuel", "jose", "alice"} {
		assert.Contains(t, out, name)
	}

	_, err = run(t, open, "users", "deactivate", "1")
	require.NoError(t, err)
	out, err = run(t, open, "users", "list", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"active": false`)

	_, err = run(t, open, "users", "delete", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "protected_account")

	_, err = run(t, open, "users", "activate", "x")
	assert.Error(t, err)

	// 分离会话：命令行登录不写 currentUser
	_, err = kv.Get(context.Background(), repo.KeyCurrentUser)
	assert.ErrorIs(t, err, repo.ErrNotFound)
}

func TestFeaturedCommands(t *testing.T) {
	open, kv := memOpener(t)

	// 以普通用户身份建一个公开列表
	s, err := service.Open(context.Background(), kv, service.Options{HashCost: bcrypt.MinCost}, nil)
	require.NoError(t, err)
	require.True(t, s.Login(context.Background(), "manuel", "senha123").Success)
	created := s.CreateList(context.Background(), domain.ListInput{Name: "Noir", IsPublic: true})
	require.True(t, created.Success, created.Message)
	require.NoError(t, s.Close(context.Background()))
	id := created.Data.ID

	out, err := run(t, open, "featured", "list", "--candidates")
	require.NoError(t, err)
	assert.Contains(t, out, "Noir")

	_, err = run(t, open, "featured", "add", strconv.FormatInt(id, 10))
	require.NoError(t, err)
	out, err = run(t, open, "featured", "list")
	require.NoError(t, err)
	assert.Contains(t, out, "Noir")
	assert.Contains(t, out, "true")

	_, err = run(t, open, "featured", "remove", strconv.FormatInt(id, 10))
	require.NoError(t, err)
	out, err = run(t, open, "featured", "list")
	require.NoError(t, err)
	assert.False(t, strings.Contains(out, "Noir"))
}

func TestRequiresCredentials(t *testing.T) {
	open, _ := memOpener(t)
	assert.Error(t, execute(context.Background(), open, &bytes.Buffer{}, []string{"--user", "", "--password", "", "users", "list"}))

	_, err := run(t, open, "--password", "wrong", "users", "list")
	assert.Error(t, err)
}
