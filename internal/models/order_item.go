package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderItem 订单项表（结算时从购物车项冻结的副本）
type OrderItem struct {
	ID           uint      `gorm:"primarykey" json:"id"`                                                 // 主键
	OrderID      uint      `gorm:"index;not null" json:"order_id"`                                       // 订单ID
	ProductID    string    `gorm:"type:varchar(100);not null" json:"product_id"`                         // 外部商品ID
	ProductName  string    `gorm:"type:varchar(500);not null" json:"product_name"`                       // 商品名称快照
	ProductImage string    `gorm:"type:varchar(1000)" json:"product_image"`                             // 商品图片快照
	UnitPrice    Money     `gorm:"column:unit_price_at_purchase;type:decimal(10,2);not null" json:"price"` // 成交单价
	Quantity     int       `gorm:"not null" json:"quantity"`                                             // 数量
	Marketplace  string    `gorm:"type:varchar(20);not null" json:"marketplace"`                         // 来源平台
	CreatedAt    time.Time `json:"created_at"`                                                           // 创建时间

	Subtotal Money `gorm:"-" json:"subtotal"` // 小计（派生）
}

// TableName 指定表名
func (OrderItem) TableName() string {
	return "order_items"
}

// LineTotal 成交单价 × 数量
func (i OrderItem) LineTotal() Money {
	return NewMoneyFromDecimal(i.UnitPrice.Decimal.Mul(decimal.NewFromInt(int64(i.Quantity))))
}
