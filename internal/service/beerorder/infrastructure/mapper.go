// internal/service/beerorder/infrastructure/mapper.go
package infrastructure

import (
	"github.com/google/uuid"
	"github.com/pkg/errors"

	"brewery/internal/service/beerorder/domain"
)

// ToDomainBeerOrder 把数据库模型转换为领域模型。
func ToDomainBeerOrder(model *BeerOrderModel) (*domain.BeerOrder, error) {
	id, err := uuid.Parse(model.ID)
	if err != nil {
		return nil, errors.Wrapf(err, "malformed order id %q in storage", model.ID)
	}

	lines := make([]domain.BeerOrderLine, 0, len(model.Lines))
	for _, lm := range model.Lines {
		lineID, err := uuid.Parse(lm.ID)
		if err != nil {
			return nil, errors.Wrapf(err, "malformed line id %q in storage", lm.ID)
		}
		lines = append(lines, domain.BeerOrderLine{
			ID:                lineID,
			UPC:               lm.UPC,
			OrderQuantity:     lm.OrderQuantity,
			QuantityAllocated: lm.QuantityAllocated,
		})
	}

	return &domain.BeerOrder{
		ID:          id,
		CustomerRef: model.CustomerRef,
		Status:      domain.OrderStatus(model.Status),
		Lines:       lines,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}, nil
}

// ToBeerOrderModel 把领域模型转换为数据库模型。
func ToBeerOrderModel(order *domain.BeerOrder) *BeerOrderModel {
	lines := make([]BeerOrderLineModel, 0, len(order.Lines))
	for _, l := range order.Lines {
		lines = append(lines, BeerOrderLineModel{
			ID:                l.ID.String(),
			BeerOrderID:       order.ID.String(),
			UPC:               l.UPC,
			OrderQuantity:     l.OrderQuantity,
			QuantityAllocated: l.QuantityAllocated,
		})
	}
	return &BeerOrderModel{
		ID:          order.ID.String(),
		CustomerRef: order.CustomerRef,
		Status:      string(order.Status),
		Lines:       lines,
		CreatedAt:   order.CreatedAt,
		UpdatedAt:   order.UpdatedAt,
	}
}
