package constants

// 订单状态常量
const (
	OrderStatusPending   = "PENDING"
	OrderStatusConfirmed = "CONFIRMED"
	OrderStatusShipped   = "SHIPPED"
	OrderStatusDelivered = "DELIVERED"
	OrderStatusCancelled = "CANCELLED"
)

// 商品来源平台
const (
	MarketplaceAliExpress  = "ALIEXPRESS"
	MarketplaceAlibaba1688 = "ALIBABA1688"
)

// 用户角色
const (
	RoleAdmin    = "ADMIN"
	RoleStaff    = "STAFF"
	RoleCustomer = "CUSTOMER"
)

// 用户状态
const (
	UserStatusActive    = "ACTIVE"
	UserStatusSuspended = "SUSPENDED"
	UserStatusDeleted   = "DELETED"
)

// 令牌类型
const (
	TokenKindAccess  = "access_token"
	TokenKindRefresh = "refresh_token"
)

// 队列与任务
const (
	QueueDefault             = "default"
	QueueCritical            = "critical"
	TaskOrderStatusNotify    = "order:status_notify"
	DefaultOrderNoPrefix     = "AM"
	DefaultOrderNoMaxAttempt = 5
)

// 分页
const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// 购物车
const (
	MaxCartItemQuantity = 9999
	MaxUnitPriceText    = "99999999.99"
)
