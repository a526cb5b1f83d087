// internal/service/beerorder/application/manager.go
package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"brewery/internal/service/beerorder/domain"
	"brewery/internal/service/beerorder/fsm"
	"brewery/internal/statemachine"
)

const (
	defaultAwaitAttempts = 10
	defaultAwaitInterval = 100 * time.Millisecond
)

// ManagerConfig 控制轮询等待的节奏。零值使用 10 次 × 100ms。
type ManagerConfig struct {
	AwaitAttempts int
	AwaitInterval time.Duration
}

func (c ManagerConfig) withDefaults() ManagerConfig {
	if c.AwaitAttempts <= 0 {
		c.AwaitAttempts = defaultAwaitAttempts
	}
	if c.AwaitInterval <= 0 {
		c.AwaitInterval = defaultAwaitInterval
	}
	return c
}

// BeerOrderManager 是订单履约 Saga 的编排者。
// 它创建订单、在外部回调到达时驱动状态机，并在需要时
// 同步等待异步驱动的状态转换落库后再执行下一步。
//
// 状态机实例不常驻：每次事件发送都会以订单当前持久化的状态
// 重建一个一次性实例，处理完即丢弃。持久化的状态是唯一事实来源，
// 进程重启或多实例部署下不会出现内存与存储的漂移。
type BeerOrderManager struct {
	repo        domain.BeerOrderRepository
	def         *fsm.Definition
	interceptor statemachine.Interceptor[domain.OrderStatus, domain.OrderEvent]
	tracer      trace.Tracer
	cfg         ManagerConfig
}

func NewBeerOrderManager(repo domain.BeerOrderRepository, def *fsm.Definition, tracer trace.Tracer, cfg ManagerConfig) *BeerOrderManager {
	if tracer == nil {
		tracer = noop.NewTracerProvider().Tracer("beerorder")
	}
	return &BeerOrderManager{
		repo:        repo,
		def:         def,
		interceptor: fsm.NewStatusChangeInterceptor(repo),
		tracer:      tracer,
		cfg:         cfg.withDefaults(),
	}
}

// CreateOrder 持久化一个新订单并启动验证流程。
// 调用方提供的 ID 一律丢弃，状态强制为 NEW。存储错误向同步调用方传播。
func (m *BeerOrderManager) CreateOrder(ctx context.Context, order *domain.BeerOrder) (*domain.BeerOrder, error) {
	ctx, span := m.tracer.Start(ctx, "beerorder.CreateOrder")
	defer span.End()

	order.ID = uuid.New()
	order.Status = domain.StatusNew
	now := time.Now()
	order.CreatedAt = now
	order.UpdatedAt = now
	for i := range order.Lines {
		if order.Lines[i].ID == uuid.Nil {
			order.Lines[i].ID = uuid.New()
		}
	}

	saved, err := m.repo.Create(ctx, order)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.String("order.id", saved.ID.String()))

	m.sendEvent(ctx, saved, domain.EventValidateOrder)
	return saved, nil
}

// HandleValidationResult 处理验证方的回调。
// 订单未找到按 fail-soft 处理：记录错误日志，不向回调路径抛出。
// 验证通过时先等待 VALIDATED 落库，再重读订单并触发配货。
func (m *BeerOrderManager) HandleValidationResult(ctx context.Context, orderID uuid.UUID, isValid bool) error {
	ctx, span := m.tracer.Start(ctx, "beerorder.HandleValidationResult")
	defer span.End()
	span.SetAttributes(attribute.String("order.id", orderID.String()), attribute.Bool("valid", isValid))

	order, err := m.repo.FindByID(ctx, orderID)
	if err != nil {
		log.Error().Err(err).Str("orderId", orderID.String()).Msg("validation result for unknown order")
		return nil
	}

	if !isValid {
		return m.sendEvent(ctx, order, domain.EventValidationFailed)
	}

	if err := m.sendEvent(ctx, order, domain.EventValidationPassed); err != nil {
		return err
	}
	m.awaitStatus(ctx, orderID, domain.StatusValidated)

	validated, err := m.repo.FindByID(ctx, orderID)
	if err != nil {
		log.Error().Err(err).Str("orderId", orderID.String()).Msg("order vanished after validation")
		return nil
	}
	return m.sendEvent(ctx, validated, domain.EventAllocateOrder)
}

// HandleAllocationSuccess 处理配货成功回调：等待 ALLOCATED 落库后，
// 按行 ID 把快照中的已配货数量合并到订单行上并保存。
func (m *BeerOrderManager) HandleAllocationSuccess(ctx context.Context, snapshot *domain.BeerOrderSnapshot) error {
	ctx, span := m.tracer.Start(ctx, "beerorder.HandleAllocationSuccess")
	defer span.End()

	order, err := m.repo.FindByID(ctx, snapshot.ID)
	if err != nil {
		log.Error().Err(err).Str("orderId", snapshot.ID.String()).Msg("allocation success for unknown order")
		return nil
	}
	if err := m.sendEvent(ctx, order, domain.EventAllocationSuccess); err != nil {
		return err
	}
	m.awaitStatus(ctx, snapshot.ID, domain.StatusAllocated)
	return m.updateAllocatedQuantities(ctx, snapshot)
}

// HandleAllocationPendingInventory 处理部分配货回调，语义同配货成功，
// 只是目标状态为 PENDING_INVENTORY。
func (m *BeerOrderManager) HandleAllocationPendingInventory(ctx context.Context, snapshot *domain.BeerOrderSnapshot) error {
	ctx, span := m.tracer.Start(ctx, "beerorder.HandleAllocationPendingInventory")
	defer span.End()

	order, err := m.repo.FindByID(ctx, snapshot.ID)
	if err != nil {
		log.Error().Err(err).Str("orderId", snapshot.ID.String()).Msg("pending inventory for unknown order")
		return nil
	}
	if err := m.sendEvent(ctx, order, domain.EventAllocationNoInventory); err != nil {
		return err
	}
	m.awaitStatus(ctx, snapshot.ID, domain.StatusPendingInventory)
	return m.updateAllocatedQuantities(ctx, snapshot)
}

// HandleAllocationFailed 处理配货失败回调。无等待。
func (m *BeerOrderManager) HandleAllocationFailed(ctx context.Context, orderID uuid.UUID) error {
	ctx, span := m.tracer.Start(ctx, "beerorder.HandleAllocationFailed")
	defer span.End()

	order, err := m.repo.FindByID(ctx, orderID)
	if err != nil {
		log.Error().Err(err).Str("orderId", orderID.String()).Msg("allocation failure for unknown order")
		return nil
	}
	return m.sendEvent(ctx, order, domain.EventAllocationFailed)
}

// HandlePickedUp 处理提货回调。无等待。
func (m *BeerOrderManager) HandlePickedUp(ctx context.Context, orderID uuid.UUID) error {
	ctx, span := m.tracer.Start(ctx, "beerorder.HandlePickedUp")
	defer span.End()

	order, err := m.repo.FindByID(ctx, orderID)
	if err != nil {
		log.Error().Err(err).Str("orderId", orderID.String()).Msg("pickup for unknown order")
		return nil
	}
	return m.sendEvent(ctx, order, domain.EventBeerOrderPickedUp)
}

// CancelOrder 从任意非终态取消订单。无等待。
func (m *BeerOrderManager) CancelOrder(ctx context.Context, orderID uuid.UUID) error {
	ctx, span := m.tracer.Start(ctx, "beerorder.CancelOrder")
	defer span.End()

	order, err := m.repo.FindByID(ctx, orderID)
	if err != nil {
		log.Error().Err(err).Str("orderId", orderID.String()).Msg("cancel for unknown order")
		return nil
	}
	return m.sendEvent(ctx, order, domain.EventCancelOrder)
}

// updateAllocatedQuantities 把回调快照中的已配货数量应用到持久化订单上。
// 只更新行上的数量，状态由拦截器独占维护。
func (m *BeerOrderManager) updateAllocatedQuantities(ctx context.Context, snapshot *domain.BeerOrderSnapshot) error {
	order, err := m.repo.FindByID(ctx, snapshot.ID)
	if err != nil {
		log.Error().Err(err).Str("orderId", snapshot.ID.String()).Msg("order vanished before quantity update")
		return nil
	}
	order.ApplyAllocation(snapshot)
	if _, err := m.repo.Save(ctx, order); err != nil {
		log.Error().Err(err).Str("orderId", snapshot.ID.String()).Msg("failed to save allocated quantities")
		return err
	}
	return nil
}

// sendEvent 以订单当前持久化的状态重建一个一次性状态机实例，
// 注册持久化拦截器，发送事件，然后丢弃实例。
// 被转换表拒绝的事件记录日志并返回 ErrInvalidTransition（必须可感知）。
func (m *BeerOrderManager) sendEvent(ctx context.Context, order *domain.BeerOrder, event domain.OrderEvent) error {
	machine := m.def.NewMachine(order.Status, m.interceptor)
	ev := statemachine.NewEvent(event).WithHeader(domain.OrderIDHeader, order.ID.String())

	next, err := machine.Send(ctx, ev)
	if err != nil {
		invalidTransitionsTotal.WithLabelValues(string(event)).Inc()
		log.Error().Err(err).
			Str("orderId", order.ID.String()).
			Str("status", string(order.Status)).
			Str("event", string(event)).
			Msg("event rejected by state machine")
		return err
	}

	transitionsTotal.WithLabelValues(string(event), string(next)).Inc()
	log.Info().
		Str("orderId", order.ID.String()).
		Str("from", string(order.Status)).
		Str("to", string(next)).
		Str("event", string(event)).
		Msg("order state transition committed")
	return nil
}

// awaitStatus 是有界轮询等待：反复重读订单的持久化状态，直到等到期望值
// 或尝试次数触顶。触顶后不报错，带着当前落库的状态继续执行——这是一个
// 尽力而为的同步原语，不是保证；降级路径通过日志和指标保持可观测。
func (m *BeerOrderManager) awaitStatus(ctx context.Context, orderID uuid.UUID, expected domain.OrderStatus) {
	for attempt := 1; attempt <= m.cfg.AwaitAttempts; attempt++ {
		order, err := m.repo.FindByID(ctx, orderID)
		if err != nil {
			log.Debug().Str("orderId", orderID.String()).Msg("order not found while awaiting status")
		} else if order.Status == expected {
			log.Debug().Str("orderId", orderID.String()).Str("status", string(expected)).Msg("expected status reached")
			return
		} else {
			log.Debug().
				Str("orderId", orderID.String()).
				Str("expected", string(expected)).
				Str("found", string(order.Status)).
				Msg("status not yet persisted, retrying")
		}

		if attempt == m.cfg.AwaitAttempts {
			break
		}
		select {
		case <-ctx.Done():
			log.Warn().Str("orderId", orderID.String()).Msg("context cancelled while awaiting status")
			return
		case <-time.After(m.cfg.AwaitInterval):
		}
	}

	pollTimeoutsTotal.Inc()
	log.Warn().
		Str("orderId", orderID.String()).
		Str("expected", string(expected)).
		Int("attempts", m.cfg.AwaitAttempts).
		Msg("status poll-wait ceiling reached, proceeding with stale status")
}
