// internal/service/beerorder/infrastructure/gorm_model.go
package infrastructure

import (
	"time"
)

// BeerOrderModel 对应数据库中的 beer_order 表。
type BeerOrderModel struct {
	ID          string `gorm:"type:char(36);primaryKey"`
	CustomerRef string `gorm:"type:varchar(255);index"`
	Status      string `gorm:"type:varchar(40)"`
	Lines       []BeerOrderLineModel `gorm:"foreignKey:BeerOrderID;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TableName 指定 GORM 应该使用的表名
func (BeerOrderModel) TableName() string {
	return "beer_order"
}

// BeerOrderLineModel 对应数据库中的 beer_order_line 表。
type BeerOrderLineModel struct {
	ID                string `gorm:"type:char(36);primaryKey"`
	BeerOrderID       string `gorm:"type:char(36);index"`
	UPC               string `gorm:"type:varchar(14)"`
	OrderQuantity     int
	QuantityAllocated *int // 配货完成前为 NULL
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// TableName 指定 GORM 应该使用的表名
func (BeerOrderLineModel) TableName() string {
	return "beer_order_line"
}
