package models

import (
	"time"
)

// User 用户表
type User struct {
	ID           uint       `gorm:"primarykey" json:"id"`                                        // 主键
	Username     string     `gorm:"type:varchar(60);uniqueIndex;not null" json:"username"`       // 用户名
	Email        string     `gorm:"type:varchar(100);uniqueIndex;not null" json:"email"`         // 邮箱
	PasswordHash string     `gorm:"not null" json:"-"`                                           // 密码哈希（不返回给前端）
	FullName     string     `gorm:"type:varchar(100);not null" json:"full_name"`                 // 姓名
	Phone        string     `gorm:"type:varchar(20)" json:"phone"`                               // 电话
	Address      string     `gorm:"type:varchar(500)" json:"address"`                            // 默认地址
	Role         string     `gorm:"type:varchar(20);not null;default:'CUSTOMER'" json:"role"`    // 角色
	Status       string     `gorm:"type:varchar(20);index;not null;default:'ACTIVE'" json:"status"` // 账号状态
	LastLoginAt  *time.Time `json:"last_login_at"`                                               // 最后登录时间
	CreatedAt    time.Time  `gorm:"index" json:"created_at"`                                     // 创建时间
	UpdatedAt    time.Time  `gorm:"index" json:"updated_at"`                                     // 更新时间
}

// TableName 指定表名
func (User) TableName() string {
	return "users"
}
