package service

import (
	"github.com/aptechmall/ordercore/internal/constants"
	"github.com/aptechmall/ordercore/internal/models"
)

// PageRequest 分页请求，PageIndex 从 0 开始
type PageRequest struct {
	PageIndex int
	PageSize  int
}

// Validate 越界参数直接拒绝，不做截断
func (p PageRequest) Validate() error {
	if p.PageIndex < 0 {
		return invalidInput("page index must be >= 0, got %d", p.PageIndex)
	}
	if p.PageSize < 1 || p.PageSize > constants.MaxPageSize {
		return invalidInput("page size must be within [1, %d], got %d", constants.MaxPageSize, p.PageSize)
	}
	return nil
}

// OrderPage 订单分页结果
type OrderPage struct {
	Items       []models.Order `json:"items"`
	PageIndex   int            `json:"page_index"`
	PageSize    int            `json:"page_size"`
	TotalItems  int64          `json:"total_items"`
	TotalPages  int            `json:"total_pages"`
	HasNext     bool           `json:"has_next"`
	HasPrevious bool           `json:"has_previous"`
}

func newOrderPage(items []models.Order, req PageRequest, total int64) *OrderPage {
	if items == nil {
		items = []models.Order{}
	}
	totalPages := 0
	if req.PageSize > 0 {
		totalPages = int((total + int64(req.PageSize) - 1) / int64(req.PageSize))
	}
	return &OrderPage{
		Items:       items,
		PageIndex:   req.PageIndex,
		PageSize:    req.PageSize,
		TotalItems:  total,
		TotalPages:  totalPages,
		HasNext:     req.PageIndex+1 < totalPages,
		HasPrevious: req.PageIndex > 0,
	}
}
