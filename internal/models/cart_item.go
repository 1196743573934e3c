package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CartItem 购物车项
// (cart_id, product_id, marketplace) 唯一，同一购物车内不会出现重复商品行
type CartItem struct {
	ID           uint      `gorm:"primarykey" json:"id"`                                                                   // 主键
	CartID       uint      `gorm:"not null;uniqueIndex:idx_cart_item_identity,priority:1" json:"cart_id"`                 // 购物车ID
	ProductID    string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_cart_item_identity,priority:2" json:"product_id"` // 外部商品ID
	ProductName  string    `gorm:"type:varchar(500);not null" json:"product_name"`                                        // 商品名称（首次加入时的快照）
	ProductImage string    `gorm:"type:varchar(1000)" json:"product_image"`                                              // 商品图片
	UnitPrice    Money     `gorm:"column:price;type:decimal(10,2);not null" json:"price"`                                 // 单价（首次加入时的快照）
	Quantity     int       `gorm:"not null" json:"quantity"`                                                              // 数量
	Marketplace  string    `gorm:"type:varchar(20);not null;uniqueIndex:idx_cart_item_identity,priority:3" json:"marketplace"` // 来源平台
	CreatedAt    time.Time `gorm:"index" json:"created_at"`                                                               // 创建时间
	UpdatedAt    time.Time `json:"updated_at"`                                                                            // 更新时间
}

// TableName 指定表名
func (CartItem) TableName() string {
	return "cart_items"
}

// Subtotal 小计 = 单价 × 数量（只读派生值）
func (i CartItem) Subtotal() Money {
	return NewMoneyFromDecimal(i.UnitPrice.Decimal.Mul(decimal.NewFromInt(int64(i.Quantity))))
}
