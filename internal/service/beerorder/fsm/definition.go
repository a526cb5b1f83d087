// internal/service/beerorder/fsm/definition.go
package fsm

import (
	"brewery/internal/service/beerorder/domain"
	"brewery/internal/service/beerorder/port"
	"brewery/internal/statemachine"
)

// Publishers 汇总了入口动作需要的全部出站端口。
type Publishers struct {
	Validation        port.ValidationRequestPublisher
	Allocation        port.AllocationRequestPublisher
	AllocationFailure port.AllocationFailurePublisher
}

// Definition 是订单履约 Saga 的状态图别名。
type Definition = statemachine.Definition[domain.OrderStatus, domain.OrderEvent]

type transition = statemachine.Transition[domain.OrderStatus, domain.OrderEvent]

// NewDefinition 构建订单履约的转换表。
//
// 主干: NEW → VALIDATION_PENDING → VALIDATED → ALLOCATION_PENDING → ALLOCATED → PICKED_UP
// 分支: VALIDATION_EXCEPTION、ALLOCATION_EXCEPTION、PENDING_INVENTORY，
// 以及从所有非终态可达的 CANCELLED。
// 终态: VALIDATION_EXCEPTION、ALLOCATION_EXCEPTION、PICKED_UP、CANCELLED。
func NewDefinition(repo domain.BeerOrderRepository, pubs Publishers) *Definition {
	transitions := []transition{
		{From: domain.StatusNew, Event: domain.EventValidateOrder, To: domain.StatusValidationPending,
			Action: validateOrderAction(repo, pubs.Validation)},
		{From: domain.StatusValidationPending, Event: domain.EventValidationPassed, To: domain.StatusValidated},
		{From: domain.StatusValidationPending, Event: domain.EventValidationFailed, To: domain.StatusValidationException,
			Action: validationFailureAction()},
		{From: domain.StatusValidated, Event: domain.EventAllocateOrder, To: domain.StatusAllocationPending,
			Action: allocateOrderAction(repo, pubs.Allocation)},
		{From: domain.StatusAllocationPending, Event: domain.EventAllocationSuccess, To: domain.StatusAllocated},
		{From: domain.StatusAllocationPending, Event: domain.EventAllocationNoInventory, To: domain.StatusPendingInventory},
		{From: domain.StatusAllocationPending, Event: domain.EventAllocationFailed, To: domain.StatusAllocationException,
			Action: allocationFailureAction(pubs.AllocationFailure)},
		{From: domain.StatusAllocated, Event: domain.EventBeerOrderPickedUp, To: domain.StatusPickedUp},
	}

	// 取消: 所有非终态都可以直接进入 CANCELLED。
	for _, from := range []domain.OrderStatus{
		domain.StatusNew,
		domain.StatusValidationPending,
		domain.StatusValidated,
		domain.StatusAllocationPending,
		domain.StatusAllocated,
		domain.StatusPendingInventory,
	} {
		transitions = append(transitions, transition{From: from, Event: domain.EventCancelOrder, To: domain.StatusCancelled})
	}

	return statemachine.NewDefinition(transitions...)
}
