// internal/service/beerorder/interfaces/allocation_result_consumer.go
package interfaces

import (
	"context"
	"encoding/json"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"

	"brewery/internal/service/beerorder/domain"
)

// AllocationResultConsumer 监听配货结果主题，按结果标志路由到
// 成功 / 部分配货 / 失败三条处理路径。
type AllocationResultConsumer struct {
	consumerLoop
	manager orderManager
}

func NewAllocationResultConsumer(reader *kafka.Reader, manager orderManager, dedup Deduplicator) *AllocationResultConsumer {
	c := &AllocationResultConsumer{manager: manager}
	c.reader = reader
	c.dedup = dedup
	c.handle = c.processMessage
	return c
}

func (c *AllocationResultConsumer) processMessage(parentCtx context.Context, msg kafka.Message) {
	var result domain.AllocationResult
	if err := json.Unmarshal(msg.Value, &result); err != nil {
		log.Error().Err(err).Msg("malformed allocation result, message skipped")
		return
	}
	if result.Order == nil {
		log.Error().Msg("allocation result carries no order snapshot, message skipped")
		return
	}

	ctx := extractTraceContext(parentCtx, msg)

	var err error
	switch {
	case result.AllocationError:
		err = c.manager.HandleAllocationFailed(ctx, result.Order.ID)
	case result.PendingInventory:
		err = c.manager.HandleAllocationPendingInventory(ctx, result.Order)
	default:
		err = c.manager.HandleAllocationSuccess(ctx, result.Order)
	}
	if err != nil {
		log.Error().Err(err).Str("orderId", result.Order.ID.String()).Msg("failed to handle allocation result")
	}
}
