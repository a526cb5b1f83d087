// internal/pkg/redis/client.go
package redis

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
)

// Client 封装了 go-redis 客户端。
type Client struct {
	rdb *redis.Client
}

// NewClient 创建并 ping 一个 Redis 连接。
func NewClient(addr, password string, db int) (*Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, errors.Wrapf(err, "connect to redis at %s", addr)
	}
	return &Client{rdb: rdb}, nil
}

// GetClient 暴露底层客户端给需要高级命令的适配器。
func (c *Client) GetClient() *redis.Client {
	return c.rdb
}

// Close 关闭底层连接。
func (c *Client) Close() error {
	return c.rdb.Close()
}
