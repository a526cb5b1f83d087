// internal/service/beerorder/port/publisher.go
package port

import (
	"context"

	"brewery/internal/service/beerorder/domain"
)

// ValidationRequestPublisher 是出站端口：向验证请求通道发布消息。
type ValidationRequestPublisher interface {
	PublishValidationRequest(ctx context.Context, req *domain.ValidateOrderRequest) error
}

// AllocationRequestPublisher 是出站端口：向配货请求通道发布消息。
type AllocationRequestPublisher interface {
	PublishAllocationRequest(ctx context.Context, req *domain.AllocateOrderRequest) error
}

// AllocationFailurePublisher 是出站端口：向独立的失败通知通道发布消息。
type AllocationFailurePublisher interface {
	PublishAllocationFailure(ctx context.Context, ev *domain.AllocationFailureEvent) error
}
