package database

import (
	"testing"

	mysqldrv "github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"cinedeck/internal/core/config"
)

func TestNormalizeMySQLDSN_FromJDBCURL(t *testing.T) {
	got, err := normalizeMySQLDSN("jdbc:mysql://db.local:3306/cinedeck?useSSL=false&serverTimezone=UTC&characterEncoding=utf8&zeroDateTimeBehavior=convertToNull", "root", "pw")
	require.NoError(t, err)

	cfg, err := mysqldrv.ParseDSN(got)
	require.NoError(t, err)
	assert.Equal(t, "root", cfg.User)
	assert.Equal(t, "pw", cfg.Passwd)
	assert.Equal(t, "db.local:3306", cfg.Addr)
	assert.Equal(t, "cinedeck", cfg.DBName)
	assert.True(t, cfg.ParseTime)
	assert.Equal(t, "false", cfg.TLSConfig)
	assert.Equal(t, "UTC", cfg.Loc.String())
	assert.Contains(t, got, "charset=utf8")
	assert.NotContains(t, got, "zeroDateTimeBehavior")
}

func TestNormalizeMySQLDSN_Native(t *testing.T) {
	got, err := normalizeMySQLDSN("u:p@tcp(127.0.0.1:3306)/cinedeck", "", "")
	require.NoError(t, err)
	cfg, err := mysqldrv.ParseDSN(got)
	require.NoError(t, err)
	assert.Equal(t, "u", cfg.User)
	assert.True(t, cfg.ParseTime, "parseTime is always enabled")

	got, err = normalizeMySQLDSN("u:p@tcp(127.0.0.1:3306)/cinedeck", "admin", "")
	require.NoError(t, err)
	cfg, err = mysqldrv.ParseDSN(got)
	require.NoError(t, err)
	assert.Equal(t, "admin", cfg.User)
	assert.Equal(t, "p", cfg.Passwd)

	_, err = normalizeMySQLDSN("mysql://h/db?serverTimezone=Nowhere/Zone", "", "")
	assert.Error(t, err)
}

func TestMaskDSN(t *testing.T) {
	assert.Equal(t, "postgres://u:****@h:5432/db?sslmode=disable", maskDSN("postgres://u:secret@h:5432/db?sslmode=disable"))
	assert.Equal(t, "u:****@tcp(h:3306)/db", maskDSN("u:secret@tcp(h:3306)/db"))
	assert.Equal(t, "postgres://h/db", maskDSN("postgres://h/db"))
}

func TestNewGorm_UnsupportedDriver(t *testing.T) {
	_, err := NewGorm(config.DB{Driver: "sqlite"}, zap.NewNop())
	assert.ErrorIs(t, err, ErrUnsupportedDriver)
}

func TestGormLogLevel(t *testing.T) {
	assert.EqualValues(t, 1, gormLogLevel("SILENT"))
	assert.EqualValues(t, 3, gormLogLevel(""))
}
