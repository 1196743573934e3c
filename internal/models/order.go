package models

import (
	"time"
)

// Order 订单表
// 订单创建后仅 status 与 updated_at 会变化；金额不落库，读取时由订单项汇总
type Order struct {
	ID              uint      `gorm:"primarykey" json:"id"`                                 // 主键
	OrderNo         string    `gorm:"type:varchar(40);uniqueIndex;not null" json:"order_no"` // 订单编号
	UserID          uint      `gorm:"index;not null" json:"user_id"`                        // 用户ID
	Status          string    `gorm:"type:varchar(20);index;not null" json:"status"`        // 订单状态
	ShippingAddress string    `gorm:"type:varchar(500);not null" json:"shipping_address"`   // 收货地址
	Phone           string    `gorm:"type:varchar(20);not null" json:"phone"`               // 联系电话
	Note            string    `gorm:"type:varchar(1000)" json:"note"`                       // 备注
	CreatedAt       time.Time `gorm:"index" json:"created_at"`                              // 创建时间
	UpdatedAt       time.Time `json:"updated_at"`                                           // 更新时间

	TotalAmount Money       `gorm:"-" json:"total_amount"`                     // 订单总额（派生）
	Items       []OrderItem `gorm:"foreignKey:OrderID" json:"items,omitempty"` // 订单项
}

// TableName 指定表名
func (Order) TableName() string {
	return "orders"
}

// RecomputeTotal 根据订单项重新计算总额与小计
func (o *Order) RecomputeTotal() Money {
	if o == nil {
		return Money{}
	}
	total := Money{}
	for i := range o.Items {
		o.Items[i].Subtotal = o.Items[i].LineTotal()
		total = total.Add(o.Items[i].Subtotal)
	}
	o.TotalAmount = total
	return total
}
