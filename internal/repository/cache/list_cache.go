package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"MonitorNotify/internal/domain"
	"github.com/wb-go/wbf/redis"
	"github.com/wb-go/wbf/zlog"
)

const keyPrefix = "notification_list:"

// redisClient часть *redis.Client из wbf, используемая кэшем.
type redisClient interface {
	Get(ctx context.Context, key string) (string, error)
	SetWithExpiration(ctx context.Context, key string, value interface{}, expiration time.Duration) error
	Del(ctx context.Context, key string) error
}

// ListCache кэш списка уведомлений пользователя в Redis.
type ListCache struct {
	client     redisClient
	expiration time.Duration
}

// NewListCache создает новый экземпляр ListCache.
func NewListCache(client redisClient, expiration time.Duration) *ListCache {
	return &ListCache{client: client, expiration: expiration}
}

func key(userID int64) string {
	return keyPrefix + strconv.FormatInt(userID, 10)
}

// Get получает список уведомлений пользователя из кэша.
func (c *ListCache) Get(ctx context.Context, userID int64) ([]domain.Notification, bool, error) {
	data, err := c.client.Get(ctx, key(userID))
	if errors.Is(err, redis.NoMatches) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	var list []domain.Notification
	if err := json.Unmarshal([]byte(data), &list); err != nil {
		zlog.Logger.Warn().Err(err).Int64("user_id", userID).Msg("broken notification list in cache")
		return nil, false, nil
	}
	return list, true, nil
}

// Set сохраняет список уведомлений пользователя в кэш.
func (c *ListCache) Set(ctx context.Context, userID int64, list []domain.Notification) error {
	data, err := json.Marshal(list)
	if err != nil {
		return err
	}
	return c.client.SetWithExpiration(ctx, key(userID), data, c.expiration)
}

// Invalidate удаляет список уведомлений пользователя из кэша.
func (c *ListCache) Invalidate(ctx context.Context, userID int64) error {
	return c.client.Del(ctx, key(userID))
}
