// internal/service/beerorder/fsm/interceptor.go
package fsm

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"brewery/internal/service/beerorder/domain"
	"brewery/internal/statemachine"
)

// StatusChangeInterceptor 在每次转换提交前把目标状态持久化到订单上。
// 它是订单状态的唯一写入方；除初始创建外，任何其他组件都不得直接改写状态。
type StatusChangeInterceptor struct {
	repo domain.BeerOrderRepository
}

func NewStatusChangeInterceptor(repo domain.BeerOrderRepository) *StatusChangeInterceptor {
	return &StatusChangeInterceptor{repo: repo}
}

// PreStateChange 从事件元数据中解析订单 ID，加载订单并把状态写为目标状态。
// 元数据缺失或订单无法定位属于编程/集成错误：返回错误并由引擎记录，
// 转换仍然提交（持久化缺失保持可观测，不伪装成转换失败）。
func (i *StatusChangeInterceptor) PreStateChange(ctx context.Context, target domain.OrderStatus, ev statemachine.Event[domain.OrderEvent], _ statemachine.Transition[domain.OrderStatus, domain.OrderEvent]) error {
	rawID, ok := ev.Header(domain.OrderIDHeader)
	if !ok {
		return errors.Errorf("event %s carries no %s header", ev.Kind, domain.OrderIDHeader)
	}
	orderID, err := uuid.Parse(rawID)
	if err != nil {
		return errors.Wrapf(err, "event %s carries malformed order id %q", ev.Kind, rawID)
	}

	order, err := i.repo.FindByID(ctx, orderID)
	if err != nil {
		return errors.Wrapf(err, "load order %s for status persistence", orderID)
	}

	log.Debug().
		Str("orderId", orderID.String()).
		Str("status", string(target)).
		Msg("persisting order status before transition commit")

	order.Status = target
	if _, err := i.repo.Save(ctx, order); err != nil {
		return errors.Wrapf(err, "persist status %s for order %s", target, orderID)
	}
	return nil
}
