// internal/service/beerorder/domain/status.go
package domain

// OrderStatus 定义了啤酒订单的生命周期状态。
type OrderStatus string

const (
	StatusNew                 OrderStatus = "NEW"                  // 订单已创建，尚未验证
	StatusValidationPending   OrderStatus = "VALIDATION_PENDING"   // 验证请求已发出，等待回调
	StatusValidated           OrderStatus = "VALIDATED"            // 验证通过
	StatusValidationException OrderStatus = "VALIDATION_EXCEPTION" // 验证失败（终态）
	StatusAllocationPending   OrderStatus = "ALLOCATION_PENDING"   // 配货请求已发出，等待回调
	StatusAllocated           OrderStatus = "ALLOCATED"            // 配货完成
	StatusAllocationException OrderStatus = "ALLOCATION_EXCEPTION" // 配货失败（终态）
	StatusPendingInventory    OrderStatus = "PENDING_INVENTORY"    // 库存不足，部分配货
	StatusPickedUp            OrderStatus = "PICKED_UP"            // 已提货（终态）
	StatusCancelled           OrderStatus = "CANCELLED"            // 已取消（终态）
)

// OrderEvent 是驱动订单状态转换的事件类型。
// 事件是状态变更的唯一触发方式。
type OrderEvent string

const (
	EventValidateOrder         OrderEvent = "VALIDATE_ORDER"
	EventValidationPassed      OrderEvent = "VALIDATION_PASSED"
	EventValidationFailed      OrderEvent = "VALIDATION_FAILED"
	EventAllocateOrder         OrderEvent = "ALLOCATE_ORDER"
	EventAllocationSuccess     OrderEvent = "ALLOCATION_SUCCESS"
	EventAllocationNoInventory OrderEvent = "ALLOCATION_NO_INVENTORY"
	EventAllocationFailed      OrderEvent = "ALLOCATION_FAILED"
	EventBeerOrderPickedUp     OrderEvent = "BEERORDER_PICKED_UP"
	EventCancelOrder           OrderEvent = "CANCEL_ORDER"
)

// OrderIDHeader 是事件元数据中携带目标订单 ID 的键。
// 它属于事件契约的一部分，拦截器和入口动作都依赖它定位订单。
const OrderIDHeader = "BEER_ORDER_ID"
