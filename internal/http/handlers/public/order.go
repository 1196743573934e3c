package public

import (
	handlershared "github.com/aptechmall/ordercore/internal/http/handlers/shared"
	"github.com/aptechmall/ordercore/internal/http/response"
	"github.com/aptechmall/ordercore/internal/service"

	"github.com/gin-gonic/gin"
)

// CheckoutRequest 结算请求
type CheckoutRequest struct {
	ShippingAddress string `json:"shipping_address" validate:"required,max=500"`
	Phone           string `json:"phone" validate:"required,max=20"`
	Note            string `json:"note" validate:"max=1000"`
}

// UpdateOrderStatusRequest 订单状态更新请求
type UpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// Checkout 购物车结算
func (h *Handler) Checkout(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	var req CheckoutRequest
	if !handlershared.BindJSON(c, &req) {
		return
	}
	order, err := h.CheckoutService.Checkout(c.Request.Context(), principal.UserID, service.CheckoutInput{
		ShippingAddress: req.ShippingAddress,
		Phone:           req.Phone,
		Note:            req.Note,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, order)
}

// ListOrders 当前用户订单列表
func (h *Handler) ListOrders(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	page, ok := handlershared.ParsePageRequest(c)
	if !ok {
		return
	}
	result, err := h.OrderService.ListUserOrders(c.Request.Context(), principal, principal.UserID, page)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, result.Items, handlershared.PaginationOf(result))
}

// GetOrder 订单详情
func (h *Handler) GetOrder(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	orderID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	order, err := h.OrderService.GetOrderDetail(c.Request.Context(), principal, orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, order)
}

// GetOrderByOrderNo 按订单号查询
func (h *Handler) GetOrderByOrderNo(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	order, err := h.OrderService.GetOrderByNumber(c.Request.Context(), principal, c.Param("order_no"))
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, order)
}

// CancelOrder 取消订单
func (h *Handler) CancelOrder(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	orderID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	order, err := h.OrderService.CancelOrder(c.Request.Context(), principal, orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, order)
}

// UpdateOrderStatus 推进订单状态，仅高权限角色
func (h *Handler) UpdateOrderStatus(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	orderID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	var req UpdateOrderStatusRequest
	if !handlershared.BindJSON(c, &req) {
		return
	}
	order, err := h.OrderService.UpdateOrderStatus(c.Request.Context(), principal, orderID, req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, order)
}
