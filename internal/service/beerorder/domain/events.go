// internal/service/beerorder/domain/events.go
package domain

import "github.com/google/uuid"

// BeerOrderSnapshot 是订单在消息通道上的线上表示。
type BeerOrderSnapshot struct {
	ID          uuid.UUID                `json:"orderId"`
	CustomerRef string                   `json:"customerRef"`
	Status      OrderStatus              `json:"status,omitempty"`
	Lines       []BeerOrderLineSnapshot  `json:"lines"`
}

// BeerOrderLineSnapshot 是订单行的线上表示。
type BeerOrderLineSnapshot struct {
	ID                uuid.UUID `json:"id"`
	UPC               string    `json:"upc,omitempty"`
	OrderQuantity     int       `json:"qtyOrdered,omitempty"`
	QuantityAllocated int       `json:"qtyAllocated,omitempty"`
}

// ValidateOrderRequest 在订单进入 VALIDATION_PENDING 时发布到验证请求通道。
type ValidateOrderRequest struct {
	Order *BeerOrderSnapshot `json:"beerOrder"`
}

// ValidationResult 是验证方回调的消息体。
type ValidationResult struct {
	OrderID uuid.UUID `json:"orderId"`
	IsValid bool      `json:"isValid"`
}

// AllocateOrderRequest 在订单进入 ALLOCATION_PENDING 时发布到配货请求通道。
type AllocateOrderRequest struct {
	Order *BeerOrderSnapshot `json:"beerOrder"`
}

// AllocationResult 是配货方回调的消息体。
// AllocationError 为 true 表示配货失败；PendingInventory 为 true 表示部分配货。
type AllocationResult struct {
	Order            *BeerOrderSnapshot `json:"beerOrder"`
	AllocationError  bool               `json:"allocationError"`
	PendingInventory bool               `json:"pendingInventory"`
}

// AllocationFailureEvent 在订单进入 ALLOCATION_EXCEPTION 时发布到失败通知通道，
// 由外部的补偿/告警服务消费。
type AllocationFailureEvent struct {
	OrderID uuid.UUID `json:"orderId"`
}
