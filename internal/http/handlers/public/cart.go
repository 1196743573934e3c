package public

import (
	handlershared "github.com/aptechmall/ordercore/internal/http/handlers/shared"
	"github.com/aptechmall/ordercore/internal/http/response"
	"github.com/aptechmall/ordercore/internal/models"
	"github.com/aptechmall/ordercore/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// AddCartItemRequest 加入购物车请求
type AddCartItemRequest struct {
	ProductID    string          `json:"product_id" validate:"required,max=100"`
	ProductName  string          `json:"product_name" validate:"required,max=500"`
	ProductImage string          `json:"product_image" validate:"omitempty,max=1000"`
	Price        decimal.Decimal `json:"price"`
	Quantity     int             `json:"quantity" validate:"min=1,max=9999"`
	Marketplace  string          `json:"marketplace" validate:"required,marketplace"`
}

// UpdateCartItemRequest 修改数量请求，数量 <= 0 表示删除
type UpdateCartItemRequest struct {
	Quantity *int `json:"quantity" validate:"required,max=9999"`
}

// GetCart 获取购物车
func (h *Handler) GetCart(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	view, err := h.CartService.GetCart(c.Request.Context(), principal.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, view)
}

// AddCartItem 加入购物车
func (h *Handler) AddCartItem(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	var req AddCartItemRequest
	if !handlershared.BindJSON(c, &req) {
		return
	}
	view, err := h.CartService.AddToCart(c.Request.Context(), principal.UserID, service.AddToCartInput{
		ProductID:    req.ProductID,
		ProductName:  req.ProductName,
		ProductImage: req.ProductImage,
		UnitPrice:    models.Money{Decimal: req.Price},
		Quantity:     req.Quantity,
		Marketplace:  req.Marketplace,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, view)
}

// UpdateCartItem 修改购物车项数量
func (h *Handler) UpdateCartItem(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	itemID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	var req UpdateCartItemRequest
	if !handlershared.BindJSON(c, &req) {
		return
	}
	view, err := h.CartService.UpdateItemQuantity(c.Request.Context(), principal.UserID, itemID, *req.Quantity)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, view)
}

// RemoveCartItem 删除购物车项
func (h *Handler) RemoveCartItem(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	itemID, ok := handlershared.ParseUintParam(c, "id")
	if !ok {
		return
	}
	view, err := h.CartService.RemoveItem(c.Request.Context(), principal.UserID, itemID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, view)
}

// ClearCart 清空购物车
func (h *Handler) ClearCart(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	view, err := h.CartService.ClearCart(c.Request.Context(), principal.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, view)
}
