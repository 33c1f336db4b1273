package bootstrap

import (
	"context"
	"fmt"
	"testing"

	"ajayblog/internal/auth"
	"ajayblog/internal/config"
	"ajayblog/internal/database"
	"ajayblog/internal/repository"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sqliteConfig() *config.Config {
	return &config.Config{
		Env:                  "test",
		DatabaseURL:          fmt.Sprintf("sqlite:file:%s?mode=memory&cache=shared", uuid.NewString()),
		DBSchemaMode:         "hybrid",
		DBMaxOpenConns:       1,
		DefaultAdminUsername: "admin",
		DefaultAdminPassword: "admin123",
	}
}

func TestInitRuntime(t *testing.T) {
	ctx := context.Background()
	cfg := sqliteConfig()
	mr := miniredis.RunT(t)
	cfg.RedisURL = mr.Addr()

	db, rdb, err := InitRuntime(ctx, cfg, Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	require.NotNil(t, rdb)
	t.Cleanup(func() { _ = rdb.Close() })

	admin, err := repository.NewAdminRepository(db).FindByUsername(ctx, "admin")
	require.NoError(t, err)
	require.NotNil(t, admin)
	assert.True(t, auth.CheckPassword(admin.Password, "admin123"))

	// A second run keeps the existing account.
	require.NoError(t, EnsureDefaultAdmin(ctx, cfg, db))
	admins, err := repository.NewAdminRepository(db).List(ctx)
	require.NoError(t, err)
	assert.Len(t, admins, 1)
}

func TestInitRuntime_NoRedisNoAdmin(t *testing.T) {
	ctx := context.Background()
	cfg := sqliteConfig()

	db, rdb, err := InitRuntime(ctx, cfg, Options{SkipDefaultAdmin: true})
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close(db) })
	assert.Nil(t, rdb)

	admin, err := repository.NewAdminRepository(db).FindByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Nil(t, admin)
}

func TestInitRuntime_BadSchemaMode(t *testing.T) {
	cfg := sqliteConfig()
	cfg.DBSchemaMode = "bogus"

	_, _, err := InitRuntime(context.Background(), cfg, Options{})
	assert.Error(t, err)
}
