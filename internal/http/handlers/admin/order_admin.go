package admin

import (
	"strconv"
	"strings"

	handlershared "github.com/aptechmall/ordercore/internal/http/handlers/shared"
	"github.com/aptechmall/ordercore/internal/http/response"
	"github.com/aptechmall/ordercore/internal/models"
	"github.com/aptechmall/ordercore/internal/service"

	"github.com/gin-gonic/gin"
)

// AdminOrderDetail 管理端订单详情返回
type AdminOrderDetail struct {
	models.Order
	UserEmail       string   `json:"user_email,omitempty"`
	UserDisplayName string   `json:"user_display_name,omitempty"`
	NextStatuses    []string `json:"next_statuses"`
}

// AdminUpdateOrderStatusRequest 管理端状态更新请求
type AdminUpdateOrderStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// AdminListOrders 管理端订单列表
func (h *Handler) AdminListOrders(c *gin.Context) {
	operator, ok := getOperator(c)
	if !ok {
		return
	}
	page, ok := handlershared.ParsePageRequest(c)
	if !ok {
		return
	}

	createdFrom, err := parseTimeNullable(strings.TrimSpace(c.Query("created_from")))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	createdTo, err := parseTimeNullable(strings.TrimSpace(c.Query("created_to")))
	if err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	var userID uint
	if raw := strings.TrimSpace(c.Query("user_id")); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			respondError(c, response.CodeBadRequest, "error.bad_request", nil)
			return
		}
		userID = uint(parsed)
	}

	result, err := h.OrderService.ListOrdersForAdmin(c.Request.Context(), operator, service.AdminOrderQuery{
		UserID:      userID,
		Status:      c.Query("status"),
		OrderNo:     c.Query("order_no"),
		CreatedFrom: createdFrom,
		CreatedTo:   createdTo,
	}, page)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, result.Items, handlershared.PaginationOf(result))
}

// AdminGetOrder 管理端订单详情
func (h *Handler) AdminGetOrder(c *gin.Context) {
	operator, ok := getOperator(c)
	if !ok {
		return
	}
	orderID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	order, err := h.OrderService.GetOrderDetail(c.Request.Context(), operator, orderID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	detail := AdminOrderDetail{
		Order:        *order,
		NextStatuses: service.NextOrderStatuses(order.Status),
	}
	if user, err := h.AuthService.GetUser(c.Request.Context(), order.UserID); err == nil {
		detail.UserEmail = user.Email
		detail.UserDisplayName = user.FullName
	} else {
		requestLog(c).Warnw("admin_order_owner_lookup_failed", "order_id", order.ID, "user_id", order.UserID, "error", err)
	}
	response.Success(c, detail)
}

// AdminUpdateOrderStatus 管理端推进订单状态
func (h *Handler) AdminUpdateOrderStatus(c *gin.Context) {
	operator, ok := getOperator(c)
	if !ok {
		return
	}
	orderID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	var req AdminUpdateOrderStatusRequest
	if !handlershared.BindJSON(c, &req) {
		return
	}
	order, err := h.OrderService.UpdateOrderStatus(c.Request.Context(), operator, orderID, req.Status)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	requestLog(c).Infow("admin_order_status_updated",
		"order_id", order.ID,
		"status", order.Status,
		"operator_id", operator.UserID,
	)
	response.Success(c, order)
}

// AdminListUserOrders 查看指定用户的订单
func (h *Handler) AdminListUserOrders(c *gin.Context) {
	operator, ok := getOperator(c)
	if !ok {
		return
	}
	userID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	page, ok := handlershared.ParsePageRequest(c)
	if !ok {
		return
	}
	result, err := h.OrderService.ListUserOrders(c.Request.Context(), operator, userID, page)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.SuccessWithPage(c, result.Items, handlershared.PaginationOf(result))
}
