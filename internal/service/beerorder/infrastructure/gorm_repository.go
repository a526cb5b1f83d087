// internal/service/beerorder/infrastructure/gorm_repository.go
package infrastructure

import (
	"context"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"brewery/internal/service/beerorder/domain"
)

// GormBeerOrderRepository 是 BeerOrderRepository 的 GORM/MySQL 实现。
// Save 在单个事务中完成订单行与状态的写入，
// 订单行是唯一的共享可变资源，靠行级事务隔离避免丢失更新。
type GormBeerOrderRepository struct {
	db *gorm.DB
}

// NewGormBeerOrderRepository 创建一个新的 GORM 仓储实例。
func NewGormBeerOrderRepository(db *gorm.DB) *GormBeerOrderRepository {
	return &GormBeerOrderRepository{db: db}
}

// Create 持久化一个新订单，级联写入订单行。
func (r *GormBeerOrderRepository) Create(ctx context.Context, order *domain.BeerOrder) (*domain.BeerOrder, error) {
	model := ToBeerOrderModel(order)
	if err := r.db.WithContext(ctx).Create(model).Error; err != nil {
		return nil, errors.Wrap(err, "create beer order")
	}
	return ToDomainBeerOrder(model)
}

// FindByID 按 ID 查找订单并预加载订单行；未命中返回 domain.ErrOrderNotFound。
func (r *GormBeerOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.BeerOrder, error) {
	var model BeerOrderModel
	err := r.db.WithContext(ctx).Preload("Lines").Where("id = ?", id.String()).First(&model).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrOrderNotFound
		}
		return nil, errors.Wrap(err, "find beer order")
	}
	return ToDomainBeerOrder(&model)
}

// Save 在一个事务中保存订单的当前内容：整行更新订单，按主键 upsert 订单行。
func (r *GormBeerOrderRepository) Save(ctx context.Context, order *domain.BeerOrder) (*domain.BeerOrder, error) {
	model := ToBeerOrderModel(order)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Lines").Save(&BeerOrderModel{
			ID:          model.ID,
			CustomerRef: model.CustomerRef,
			Status:      model.Status,
			CreatedAt:   model.CreatedAt,
			UpdatedAt:   model.UpdatedAt,
		}).Error; err != nil {
			return err
		}
		if len(model.Lines) == 0 {
			return nil
		}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			UpdateAll: true,
		}).Create(&model.Lines).Error
	})
	if err != nil {
		return nil, errors.Wrap(err, "save beer order")
	}
	return ToDomainBeerOrder(model)
}
