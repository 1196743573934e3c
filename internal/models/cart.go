package models

import "time"

// Cart 用户购物车（与用户一对一，首次访问时创建）
type Cart struct {
	ID        uint      `gorm:"primarykey" json:"id"`                // 主键
	UserID    uint      `gorm:"uniqueIndex;not null" json:"user_id"` // 用户ID
	CreatedAt time.Time `json:"created_at"`                          // 创建时间
	UpdatedAt time.Time `json:"updated_at"`                          // 更新时间
}

// TableName 指定表名
func (Cart) TableName() string {
	return "carts"
}
