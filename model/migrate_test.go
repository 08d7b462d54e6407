package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func openMemDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db
}

func TestAutoMigrate_CreatesTables(t *testing.T) {
	db := openMemDB(t)
	require.NoError(t, AutoMigrate(db))

	for _, table := range []string{"player_quest_states", "objective_progress", "quest_history"} {
		assert.True(t, db.Migrator().HasTable(table), "missing table %s", table)
	}
}

func TestAutoMigrate_Idempotent(t *testing.T) {
	db := openMemDB(t)
	require.NoError(t, AutoMigrate(db))
	require.NoError(t, AutoMigrate(db))
}
