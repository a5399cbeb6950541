package repo

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"cinedeck/internal/core/config"
)

func TestOpenKV(t *testing.T) {
	ctx := context.Background()
	log := zap.NewNop()

	kv, closeKV, err := OpenKV(ctx, &config.Config{Storage: config.Storage{Driver: "file", Dir: t.TempDir()}}, log)
	require.NoError(t, err)
	assert.IsType(t, &FileKV{}, kv)
	require.NoError(t, closeKV())

	mr := miniredis.RunT(t)
	c := &config.Config{Storage: config.Storage{Driver: "redis", Prefix: "t:"}, Redis: config.Redis{Addr: mr.Addr()}}
	kv, closeKV, err = OpenKV(ctx, c, log)
	require.NoError(t, err)
	require.NoError(t, kv.Set(ctx, KeyUsers, []byte("[]")))
	assert.True(t, mr.Exists("t:users"))
	require.NoError(t, closeKV())

	_, _, err = OpenKV(ctx, &config.Config{Storage: config.Storage{Driver: "bolt"}}, log)
	assert.Error(t, err)
}

func TestGormBackend_ClosesPoolWhenMigrateFails(t *testing.T) {
	db, _ := newMockGorm(t) // 没有任何期望，迁移语句全部失败
	sqlDB, err := db.DB()
	require.NoError(t, err)

	_, _, err = gormBackend(context.Background(), db, true, zap.NewNop())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "storage: migrate")
	assert.ErrorContains(t, sqlDB.PingContext(context.Background()), "database is closed")
}

func TestGormBackend_NoMigrate(t *testing.T) {
	db, mock := newMockGorm(t)
	kv, closeKV, err := gormBackend(context.Background(), db, false, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &GormKV{}, kv)

	mock.ExpectClose()
	require.NoError(t, closeKV())
	assert.NoError(t, mock.ExpectationsWereMet())
}
