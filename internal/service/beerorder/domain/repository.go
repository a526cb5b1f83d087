// internal/service/beerorder/domain/repository.go
package domain

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// ErrOrderNotFound 表示按 ID 查找订单未命中。
var ErrOrderNotFound = errors.New("beer order not found")

// BeerOrderRepository 定义了订单聚合的持久化接口。
// 它位于领域层，由基础设施层实现。
// 实现必须保证同进程内写后读一致：拦截器刚写入的状态
// 必须能被随后的 FindByID 读到（轮询等待依赖这一点）。
type BeerOrderRepository interface {
	// Create 持久化一个新订单（连同订单行）。
	Create(ctx context.Context, order *BeerOrder) (*BeerOrder, error)

	// FindByID 按 ID 查找订单；未命中返回 ErrOrderNotFound。
	FindByID(ctx context.Context, id uuid.UUID) (*BeerOrder, error)

	// Save 原子地保存订单的当前内容（状态与订单行）。
	Save(ctx context.Context, order *BeerOrder) (*BeerOrder, error)
}
