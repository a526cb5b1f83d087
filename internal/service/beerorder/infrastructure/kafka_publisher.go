// internal/service/beerorder/infrastructure/kafka_publisher.go
package infrastructure

import (
	"context"
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/segmentio/kafka-go"

	"brewery/internal/pkg/mq"
	"brewery/internal/service/beerorder/domain"
)

// Kafka 出站适配器。每个适配器持有一个绑定到具体主题的 writer，
// 主题名由组装根从配置注入，不使用进程级常量。

// ValidationRequestKafkaPublisher 实现 port.ValidationRequestPublisher。
type ValidationRequestKafkaPublisher struct {
	writer *kafka.Writer
}

func NewValidationRequestKafkaPublisher(writer *kafka.Writer) *ValidationRequestKafkaPublisher {
	return &ValidationRequestKafkaPublisher{writer: writer}
}

func (p *ValidationRequestKafkaPublisher) PublishValidationRequest(ctx context.Context, req *domain.ValidateOrderRequest) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return errors.Wrap(err, "marshal validation request")
	}
	return mq.ProduceMessage(ctx, p.writer, []byte(req.Order.ID.String()), payload)
}

func (p *ValidationRequestKafkaPublisher) Close() error {
	return p.writer.Close()
}

// AllocationRequestKafkaPublisher 实现 port.AllocationRequestPublisher。
type AllocationRequestKafkaPublisher struct {
	writer *kafka.Writer
}

func NewAllocationRequestKafkaPublisher(writer *kafka.Writer) *AllocationRequestKafkaPublisher {
	return &AllocationRequestKafkaPublisher{writer: writer}
}

func (p *AllocationRequestKafkaPublisher) PublishAllocationRequest(ctx context.Context, req *domain.AllocateOrderRequest) error {
	payload, err := json.Marshal(req)
	if err != nil {
		return errors.Wrap(err, "marshal allocation request")
	}
	return mq.ProduceMessage(ctx, p.writer, []byte(req.Order.ID.String()), payload)
}

func (p *AllocationRequestKafkaPublisher) Close() error {
	return p.writer.Close()
}

// AllocationFailureKafkaPublisher 实现 port.AllocationFailurePublisher。
// 失败通知走独立通道，由外部补偿/告警服务消费。
type AllocationFailureKafkaPublisher struct {
	writer *kafka.Writer
}

func NewAllocationFailureKafkaPublisher(writer *kafka.Writer) *AllocationFailureKafkaPublisher {
	return &AllocationFailureKafkaPublisher{writer: writer}
}

func (p *AllocationFailureKafkaPublisher) PublishAllocationFailure(ctx context.Context, ev *domain.AllocationFailureEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return errors.Wrap(err, "marshal allocation failure event")
	}
	return mq.ProduceMessage(ctx, p.writer, []byte(ev.OrderID.String()), payload)
}

func (p *AllocationFailureKafkaPublisher) Close() error {
	return p.writer.Close()
}
