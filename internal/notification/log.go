package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/integration-system/backend/internal/config"
	"github.com/integration-system/backend/internal/domain"
	"github.com/redis/go-redis/v9"
)

// Log 是只追加的通知列表
type Log interface {
	Append(ctx context.Context, entry domain.NotificationEntry) error
	All(ctx context.Context) ([]domain.NotificationEntry, error)
}

// RedisLog 把通知以 JSON 形式保存在 Redis 列表中，每次写入都会刷新整个列表的过期时间
type RedisLog struct {
	cfg *config.Config
	rdb *redis.Client
}

func NewRedisLog(cfg *config.Config, rdb *redis.Client) *RedisLog {
	return &RedisLog{
		cfg: cfg,
		rdb: rdb,
	}
}

func (l *RedisLog) Append(ctx context.Context, entry domain.NotificationEntry) error {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(l.cfg.Redis.OperationExpiration)*time.Second)
	defer cancel()

	payload, err := json.Marshal(entry)
	if err != nil {
		return err
	}

	key := l.cfg.Notification.Key
	_, err = l.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.RPush(ctx, key, payload)
		pipe.Expire(ctx, key, time.Duration(l.cfg.Notification.TTL)*time.Second)
		return nil
	})
	if err != nil {
		return fmt.Errorf("append notification: %w", err)
	}

	return nil
}

func (l *RedisLog) All(ctx context.Context) ([]domain.NotificationEntry, error) {
	ctx, cancel := context.WithTimeout(ctx, time.Duration(l.cfg.Redis.OperationExpiration)*time.Second)
	defer cancel()

	values, err := l.rdb.LRange(ctx, l.cfg.Notification.Key, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("read notifications: %w", err)
	}

	entries := make([]domain.NotificationEntry, 0, len(values))
	for _, v := range values {
		var entry domain.NotificationEntry
		if err := json.Unmarshal([]byte(v), &entry); err != nil {
			return nil, fmt.Errorf("decode notification: %w", err)
		}
		entries = append(entries, entry)
	}

	return entries, nil
}
