package mirror

import (
	"testing"

	"github.com/integration-system/backend/internal/config"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newTestDB(t *testing.T) (*config.Config, *gorm.DB) {
	t.Helper()

	cfg := &config.Config{}
	cfg.Mirror.QueryTimeout = 5
	cfg.Mirror.MaxOpenConns = 1

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Discard,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// 内存数据库跟随连接存在，只保留一个连接
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, Migrate(db))
	return cfg, db
}
