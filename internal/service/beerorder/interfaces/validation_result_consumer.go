// internal/service/beerorder/interfaces/validation_result_consumer.go
package interfaces

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"brewery/internal/service/beerorder/domain"
)

// ValidationResultConsumer 监听验证结果主题，并把回调交给编排者。
type ValidationResultConsumer struct {
	consumerLoop
	manager orderManager
}

func NewValidationResultConsumer(reader *kafka.Reader, manager orderManager, dedup Deduplicator) *ValidationResultConsumer {
	c := &ValidationResultConsumer{manager: manager}
	c.reader = reader
	c.dedup = dedup
	c.handle = c.processMessage
	return c
}

// processMessage 反序列化验证结果并调用编排者。
// 畸形消息记录日志后跳过（生产环境应移入死信队列）。
func (c *ValidationResultConsumer) processMessage(parentCtx context.Context, msg kafka.Message) {
	var result domain.ValidationResult
	if err := json.Unmarshal(msg.Value, &result); err != nil {
		log.Error().Err(err).Msg("malformed validation result, message skipped")
		return
	}

	ctx := extractTraceContext(parentCtx, msg)
	if err := c.manager.HandleValidationResult(ctx, result.OrderID, result.IsValid); err != nil {
		log.Error().Err(err).Str("orderId", result.OrderID.String()).Msg("failed to handle validation result")
	}
}
