// internal/service/beerorder/fsm/actions.go
package fsm

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"

	"brewery/internal/service/beerorder/domain"
	"brewery/internal/service/beerorder/port"
	"brewery/internal/statemachine"
)

// 入口动作在转换提交后由引擎同步执行。
// 动作只发布出站消息，绝不改写订单状态——那是拦截器的专属职责。

type orderEvent = statemachine.Event[domain.OrderEvent]

func orderIDFromEvent(ev orderEvent) (uuid.UUID, error) {
	rawID, ok := ev.Header(domain.OrderIDHeader)
	if !ok {
		return uuid.Nil, errors.Errorf("event %s carries no %s header", ev.Kind, domain.OrderIDHeader)
	}
	return uuid.Parse(rawID)
}

// validateOrderAction 在进入 VALIDATION_PENDING 时，把订单序列化成验证请求并发布。
func validateOrderAction(repo domain.BeerOrderRepository, publisher port.ValidationRequestPublisher) statemachine.Action[domain.OrderEvent] {
	return func(ctx context.Context, ev orderEvent) error {
		orderID, err := orderIDFromEvent(ev)
		if err != nil {
			return err
		}
		order, err := repo.FindByID(ctx, orderID)
		if err != nil {
			return errors.Wrapf(err, "load order %s for validation request", orderID)
		}
		if err := publisher.PublishValidationRequest(ctx, &domain.ValidateOrderRequest{Order: order.Snapshot()}); err != nil {
			return errors.Wrapf(err, "publish validation request for order %s", orderID)
		}
		log.Debug().Str("orderId", orderID.String()).Msg("sent validation request")
		return nil
	}
}

// allocateOrderAction 在进入 ALLOCATION_PENDING 时发布配货请求。
func allocateOrderAction(repo domain.BeerOrderRepository, publisher port.AllocationRequestPublisher) statemachine.Action[domain.OrderEvent] {
	return func(ctx context.Context, ev orderEvent) error {
		orderID, err := orderIDFromEvent(ev)
		if err != nil {
			return err
		}
		order, err := repo.FindByID(ctx, orderID)
		if err != nil {
			return errors.Wrapf(err, "load order %s for allocation request", orderID)
		}
		if err := publisher.PublishAllocationRequest(ctx, &domain.AllocateOrderRequest{Order: order.Snapshot()}); err != nil {
			return errors.Wrapf(err, "publish allocation request for order %s", orderID)
		}
		log.Debug().Str("orderId", orderID.String()).Msg("sent allocation request")
		return nil
	}
}

// allocationFailureAction 在进入 ALLOCATION_EXCEPTION 时，
// 向独立的失败通知通道发布只含订单 ID 的事件。
func allocationFailureAction(publisher port.AllocationFailurePublisher) statemachine.Action[domain.OrderEvent] {
	return func(ctx context.Context, ev orderEvent) error {
		orderID, err := orderIDFromEvent(ev)
		if err != nil {
			return err
		}
		if err := publisher.PublishAllocationFailure(ctx, &domain.AllocationFailureEvent{OrderID: orderID}); err != nil {
			return errors.Wrapf(err, "publish allocation failure for order %s", orderID)
		}
		log.Debug().Str("orderId", orderID.String()).Msg("sent allocation failure notification")
		return nil
	}
}

// validationFailureAction 在进入 VALIDATION_EXCEPTION 时只记录一条补偿事务日志。
// 基础设计里不发出站消息；退款/取消通知是预留的扩展点。
func validationFailureAction() statemachine.Action[domain.OrderEvent] {
	return func(_ context.Context, ev orderEvent) error {
		orderID, err := orderIDFromEvent(ev)
		if err != nil {
			return err
		}
		log.Error().Str("orderId", orderID.String()).Msg("compensating transaction: order validation failed")
		return nil
	}
}
