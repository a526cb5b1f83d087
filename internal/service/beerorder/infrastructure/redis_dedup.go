// internal/service/beerorder/infrastructure/redis_dedup.go
package infrastructure

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"

	redispkg "brewery/internal/pkg/redis"
)

// RedisDeduplicator 用 SETNX + TTL 做回调消息的幂等守卫。
// 验证/配货结果至少投递一次；重复投递的消息在 TTL 窗口内被丢弃，
// 避免对同一订单重复驱动状态机。
type RedisDeduplicator struct {
	client *redispkg.Client
	ttl    time.Duration
}

func NewRedisDeduplicator(client *redispkg.Client, ttl time.Duration) *RedisDeduplicator {
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}
	return &RedisDeduplicator{client: client, ttl: ttl}
}

// Seen 报告消息是否已处理过；首次出现时原子地登记。
func (d *RedisDeduplicator) Seen(ctx context.Context, messageID string) (bool, error) {
	key := fmt.Sprintf("beerorder:msg:{%s}", messageID)
	fresh, err := d.client.GetClient().SetNX(ctx, key, 1, d.ttl).Result()
	if err != nil {
		return false, errors.Wrapf(err, "dedup check for message %s", messageID)
	}
	return !fresh, nil
}
