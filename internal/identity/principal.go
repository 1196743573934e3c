package identity

import (
	"strings"

	"github.com/aptechmall/ordercore/internal/constants"
)

// Role 用户角色
type Role string

// UserStatus 用户状态
type UserStatus string

const (
	RoleAdmin    Role = constants.RoleAdmin
	RoleStaff    Role = constants.RoleStaff
	RoleCustomer Role = constants.RoleCustomer

	StatusActive    UserStatus = constants.UserStatusActive
	StatusSuspended UserStatus = constants.UserStatusSuspended
	StatusDeleted   UserStatus = constants.UserStatusDeleted
)

// Context 核心业务读取的身份断言
type Context interface {
	PrincipalID() uint
	HasElevatedRole() bool
}

// Principal 已解析的请求主体
type Principal struct {
	UserID  uint
	Role    Role
	Status  UserStatus
	TokenID string
}

// PrincipalID 返回当前主体 ID
func (p Principal) PrincipalID() uint {
	return p.UserID
}

// HasElevatedRole 管理员与客服视为高权限
func (p Principal) HasElevatedRole() bool {
	switch p.Role {
	case RoleAdmin, RoleStaff:
		return true
	case RoleCustomer:
		return false
	default:
		return false
	}
}

// IsActive 主体是否可用
func (p Principal) IsActive() bool {
	return p.Status.IsActive()
}

// CanAccess 主体是否可以访问 ownerID 拥有的资源
func CanAccess(ctx Context, ownerID uint) bool {
	if ctx == nil {
		return false
	}
	if ctx.HasElevatedRole() {
		return true
	}
	return ownerID != 0 && ctx.PrincipalID() == ownerID
}

// ParseRole 解析角色字符串
func ParseRole(raw string) (Role, bool) {
	switch Role(strings.ToUpper(strings.TrimSpace(raw))) {
	case RoleAdmin:
		return RoleAdmin, true
	case RoleStaff:
		return RoleStaff, true
	case RoleCustomer:
		return RoleCustomer, true
	default:
		return "", false
	}
}

// ParseUserStatus 解析用户状态字符串
func ParseUserStatus(raw string) (UserStatus, bool) {
	switch UserStatus(strings.ToUpper(strings.TrimSpace(raw))) {
	case StatusActive:
		return StatusActive, true
	case StatusSuspended:
		return StatusSuspended, true
	case StatusDeleted:
		return StatusDeleted, true
	default:
		return "", false
	}
}

// IsActive 仅 ACTIVE 可登录与调用接口
func (s UserStatus) IsActive() bool {
	switch s {
	case StatusActive:
		return true
	case StatusSuspended, StatusDeleted:
		return false
	default:
		return false
	}
}
