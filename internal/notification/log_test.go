package notification

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/integration-system/backend/internal/config"
	"github.com/integration-system/backend/internal/domain"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 需要真实的 Redis，设置 REDIS_TEST_ADDR 后运行
func TestRedisLog(t *testing.T) {
	addr := os.Getenv("REDIS_TEST_ADDR")
	if addr == "" {
		t.Skip("REDIS_TEST_ADDR not set")
	}

	cfg := &config.Config{}
	cfg.Notification.Key = "test:notifications:" + time.Now().Format("150405.000000")
	cfg.Notification.TTL = 86400
	cfg.Redis.OperationExpiration = 5

	rdb := redis.NewClient(&redis.Options{Addr: addr})
	t.Cleanup(func() {
		rdb.Del(context.Background(), cfg.Notification.Key)
		_ = rdb.Close()
	})

	l := NewRedisLog(cfg, rdb)
	ctx := context.Background()

	first := domain.NotificationEntry{EmployeeID: 1, Message: "first", CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	second := domain.NotificationEntry{EmployeeID: 2, Message: "second", CreatedAt: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)}
	require.NoError(t, l.Append(ctx, first))
	require.NoError(t, l.Append(ctx, second))

	all, err := l.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, []domain.NotificationEntry{first, second}, all)

	ttl, err := rdb.TTL(ctx, cfg.Notification.Key).Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, 23*time.Hour)
}
