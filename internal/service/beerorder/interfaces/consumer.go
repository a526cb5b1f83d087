// internal/service/beerorder/interfaces/consumer.go
package interfaces

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
	"go.opentelemetry.io/otel"

	"brewery/internal/pkg/mq"
	"brewery/internal/service/beerorder/domain"
)

// orderManager 是消费者依赖的编排入口，由 application.BeerOrderManager 实现。
type orderManager interface {
	HandleValidationResult(ctx context.Context, orderID uuid.UUID, isValid bool) error
	HandleAllocationSuccess(ctx context.Context, snapshot *domain.BeerOrderSnapshot) error
	HandleAllocationPendingInventory(ctx context.Context, snapshot *domain.BeerOrderSnapshot) error
	HandleAllocationFailed(ctx context.Context, orderID uuid.UUID) error
}

// Deduplicator 是回调消息的幂等守卫。
type Deduplicator interface {
	Seen(ctx context.Context, messageID string) (bool, error)
}

// consumerLoop 封装了 FetchMessage / CommitMessages 的通用消费循环。
type consumerLoop struct {
	reader  *kafka.Reader
	dedup   Deduplicator
	handle  func(ctx context.Context, msg kafka.Message)
	wg      sync.WaitGroup
	stopped bool
}

// Start 开始监听主题。这是一个长期运行的方法，直到 ctx 取消或 Stop 被调用。
func (c *consumerLoop) Start(ctx context.Context) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		log.Info().Str("topic", c.reader.Config().Topic).Msg("kafka consumer started")
		for {
			if c.stopped {
				return
			}
			// 用 FetchMessage 而不是 ReadMessage，以便控制退出和提交时机
			msg, err := c.reader.FetchMessage(ctx)
			if err != nil {
				if ctx.Err() != nil {
					log.Info().Str("topic", c.reader.Config().Topic).Msg("kafka consumer shutting down")
					return
				}
				log.Error().Err(err).Msg("could not read message, retrying")
				time.Sleep(time.Second) // 避免快速失败循环
				continue
			}

			if !c.alreadySeen(ctx, msg) {
				c.handle(ctx, msg)
			}

			if err := c.reader.CommitMessages(ctx, msg); err != nil {
				log.Error().Err(err).Msg("failed to commit messages")
			}
		}
	}()
}

// Stop 优雅地停止消费者。
func (c *consumerLoop) Stop() {
	c.stopped = true
	c.reader.Close()
	c.wg.Wait()
}

// alreadySeen 按 topic/partition/offset 构造消息标识做幂等检查。
// 守卫不可用时按未见过处理：宁可重复驱动一次（状态机会拒绝越序事件），
// 也不丢消息。
func (c *consumerLoop) alreadySeen(ctx context.Context, msg kafka.Message) bool {
	if c.dedup == nil {
		return false
	}
	id := fmt.Sprintf("%s/%d/%d", msg.Topic, msg.Partition, msg.Offset)
	seen, err := c.dedup.Seen(ctx, id)
	if err != nil {
		log.Warn().Err(err).Str("messageId", id).Msg("dedup guard unavailable, processing anyway")
		return false
	}
	if seen {
		log.Debug().Str("messageId", id).Msg("duplicate callback message skipped")
	}
	return seen
}

// extractTraceContext 从消息头恢复上游注入的追踪上下文。
func extractTraceContext(parentCtx context.Context, msg kafka.Message) context.Context {
	carrier := mq.KafkaHeaderCarrier(msg.Headers)
	return otel.GetTextMapPropagator().Extract(parentCtx, &carrier)
}
