package i18n

var catalog = map[string]map[string]string{
	LocaleZH: {
		"error.bad_request":            "请求参数错误",
		"error.validation_failed":      "参数校验失败",
		"error.email_invalid":          "邮箱格式不正确",
		"error.unauthorized":           "未登录或登录已失效",
		"error.token_invalid":          "令牌无效或已过期",
		"error.token_revoked":          "令牌已被吊销",
		"error.invalid_credentials":    "用户名或密码错误",
		"error.user_disabled":          "账号已被停用",
		"error.username_exists":        "用户名已存在",
		"error.email_exists":           "邮箱已被注册",
		"error.forbidden":              "无权访问该资源",
		"error.not_found":              "资源不存在",
		"error.user_not_found":         "用户不存在",
		"error.cart_item_not_found":    "购物车中不存在该商品",
		"error.order_not_found":        "订单不存在",
		"error.empty_cart":             "购物车为空，无法结算",
		"error.invalid_transition":     "当前订单状态不允许该操作",
		"error.order_status_invalid":   "订单状态无效",
		"error.page_invalid":           "分页参数无效",
		"error.conflict":               "数据已被修改，请重试",
		"error.too_many_requests":      "请求过于频繁，请稍后再试",
		"error.login_too_many":         "登录尝试过多，请 %d 秒后再试",
		"error.rate_limit_unavailable": "限流服务不可用",
		"error.auth_header_missing":    "缺少 Authorization 请求头",
		"error.auth_header_invalid":    "Authorization 请求头格式错误",
		"error.store_unavailable":      "服务暂时不可用，请稍后重试",
		"error.internal":               "服务器内部错误",
		"order.status.pending":         "待确认",
		"order.status.confirmed":       "已确认",
		"order.status.shipped":         "已发货",
		"order.status.delivered":       "已送达",
		"order.status.cancelled":       "已取消",
		"email.order_status.subject":   "订单状态更新：%s",
		"email.order_status.body":      "您好，\n\n您的订单状态已更新。\n订单号：%s\n当前状态：%s\n订单金额：%s\n\n感谢您的支持。",
		"email.order_status.created":   "您好，\n\n我们已收到您的订单，正在等待确认。\n订单号：%s\n当前状态：%s\n订单金额：%s\n\n感谢您的支持。",
		"email.order_status.cancelled": "您好，\n\n订单已取消。\n订单号：%s\n当前状态：%s\n订单金额：%s\n\n如有疑问请联系客服。",
	},
	LocaleEN: {
		"error.bad_request":            "Invalid request parameters",
		"error.validation_failed":      "Validation failed",
		"error.email_invalid":          "Invalid email address",
		"error.unauthorized":           "Not logged in or session expired",
		"error.token_invalid":          "Token is invalid or expired",
		"error.token_revoked":          "Token has been revoked",
		"error.invalid_credentials":    "Invalid username or password",
		"error.user_disabled":          "Account is disabled",
		"error.username_exists":        "Username already exists",
		"error.email_exists":           "Email is already registered",
		"error.forbidden":              "Access to this resource is forbidden",
		"error.not_found":              "Resource not found",
		"error.user_not_found":         "User not found",
		"error.cart_item_not_found":    "Item is not in the cart",
		"error.order_not_found":        "Order not found",
		"error.empty_cart":             "Cart is empty",
		"error.invalid_transition":     "The order status does not allow this operation",
		"error.order_status_invalid":   "Invalid order status",
		"error.page_invalid":           "Invalid pagination parameters",
		"error.conflict":               "Data was modified concurrently, please retry",
		"error.too_many_requests":      "Too many requests, please try again later",
		"error.login_too_many":         "Too many login attempts, retry in %d seconds",
		"error.rate_limit_unavailable": "Rate limiter unavailable",
		"error.auth_header_missing":    "Authorization header is missing",
		"error.auth_header_invalid":    "Authorization header is malformed",
		"error.store_unavailable":      "Service temporarily unavailable, please retry",
		"error.internal":               "Internal server error",
		"order.status.pending":         "Pending",
		"order.status.confirmed":       "Confirmed",
		"order.status.shipped":         "Shipped",
		"order.status.delivered":       "Delivered",
		"order.status.cancelled":       "Cancelled",
		"email.order_status.subject":   "Order status updated: %s",
		"email.order_status.body":      "Hello,\n\nYour order status has been updated.\nOrder No: %s\nStatus: %s\nAmount: %s\n\nThank you for shopping with us.",
		"email.order_status.created":   "Hello,\n\nWe have received your order and it is awaiting confirmation.\nOrder No: %s\nStatus: %s\nAmount: %s\n\nThank you for shopping with us.",
		"email.order_status.cancelled": "Hello,\n\nThe order has been cancelled.\nOrder No: %s\nStatus: %s\nAmount: %s\n\nPlease contact support if you have any questions.",
	},
}
