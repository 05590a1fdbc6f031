package payroll

import (
	"testing"
	"time"

	"github.com/integration-system/backend/internal/config"
	"github.com/integration-system/backend/internal/mirror"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) (*config.Config, *gorm.DB) {
	t.Helper()

	cfg := &config.Config{}
	cfg.Mirror.QueryTimeout = 5

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Discard,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, mirror.Migrate(db))
	return cfg, db
}

func month(year int, m time.Month) time.Time {
	return time.Date(year, m, 1, 0, 0, 0, 0, time.UTC)
}

func ptr[T any](v T) *T {
	return &v
}
