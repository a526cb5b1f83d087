// internal/service/beerorder/domain/order.go
package domain

import (
	"time"

	"github.com/google/uuid"
)

// BeerOrder 是订单聚合的根实体。
// Status 只能由状态机的持久化拦截器写入（初始创建为 NEW 除外）；
// 配货回调只更新行上的已配货数量，不触碰 Status。
type BeerOrder struct {
	ID          uuid.UUID
	CustomerRef string
	Status      OrderStatus
	Lines       []BeerOrderLine
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// BeerOrderLine 是订单中的一行，归属且仅归属于一个订单。
type BeerOrderLine struct {
	ID                uuid.UUID
	UPC               string
	OrderQuantity     int
	QuantityAllocated *int // 配货完成前为 nil
}

// ApplyAllocation 按行 ID 匹配，把快照中的已配货数量合并到订单行上。
// 快照中没有对应的行保持不变。只更新数量，不更新状态。
func (o *BeerOrder) ApplyAllocation(snapshot *BeerOrderSnapshot) {
	for i := range o.Lines {
		for _, lineDto := range snapshot.Lines {
			if o.Lines[i].ID == lineDto.ID {
				qty := lineDto.QuantityAllocated
				o.Lines[i].QuantityAllocated = &qty
			}
		}
	}
	o.UpdatedAt = time.Now()
}

// Snapshot 生成订单当前内容的线上快照（用于对外发布请求消息）。
func (o *BeerOrder) Snapshot() *BeerOrderSnapshot {
	lines := make([]BeerOrderLineSnapshot, 0, len(o.Lines))
	for _, l := range o.Lines {
		s := BeerOrderLineSnapshot{ID: l.ID, UPC: l.UPC, OrderQuantity: l.OrderQuantity}
		if l.QuantityAllocated != nil {
			s.QuantityAllocated = *l.QuantityAllocated
		}
		lines = append(lines, s)
	}
	return &BeerOrderSnapshot{
		ID:          o.ID,
		CustomerRef: o.CustomerRef,
		Status:      o.Status,
		Lines:       lines,
	}
}
