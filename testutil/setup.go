package testutil

import (
	"testing"

	"github.com/emberworks/questengine/cache"
	"github.com/emberworks/questengine/config"
	"github.com/emberworks/questengine/db"
	"github.com/emberworks/questengine/model"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// SetupTestDB opens an in-memory SQLite database and runs AutoMigrate.
// It requires no external services and is safe to use in parallel tests.
func SetupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gdb, err := db.Open(config.DatabaseConfig{Mode: db.ModeMemory})
	require.NoError(t, err, "SetupTestDB: Open")
	require.NoError(t, model.AutoMigrate(gdb), "SetupTestDB: AutoMigrate")
	return gdb
}

// SetupTestCache creates a process-local cache (no Redis required).
func SetupTestCache(t *testing.T) cache.Cache {
	t.Helper()
	c, err := cache.New(config.CacheConfig{}) // empty RedisAddr, local cache
	require.NoError(t, err, "SetupTestCache: New")
	return c
}
