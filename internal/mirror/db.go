package mirror

import (
	"context"
	"time"

	"github.com/integration-system/backend/internal/config"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Open 打开副库连接并同步表结构
func Open(cfg *config.Config) (*gorm.DB, error) {
	db, err := gorm.Open(sqlite.Open(cfg.Mirror.DSN), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, err
	}
	// sqlite 同一时间只允许一个写者
	sqlDB.SetMaxOpenConns(cfg.Mirror.MaxOpenConns)

	if err := Migrate(db); err != nil {
		return nil, err
	}

	return db, nil
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(&Employee{}, &Salary{}, &Attendance{})
}

// QueryContext 为副库上的单次操作附加超时，工资、考勤存储同样使用
func QueryContext(ctx context.Context, cfg *config.Config) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, time.Duration(cfg.Mirror.QueryTimeout)*time.Second)
}
