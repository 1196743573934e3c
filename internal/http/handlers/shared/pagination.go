package shared

import (
	"strconv"
	"strings"

	"github.com/aptechmall/ordercore/internal/constants"
	"github.com/aptechmall/ordercore/internal/http/response"
	"github.com/aptechmall/ordercore/internal/service"

	"github.com/gin-gonic/gin"
)

// ParsePageRequest 读取 page/size 查询参数，越界由业务层拒绝
func ParsePageRequest(c *gin.Context) (service.PageRequest, bool) {
	page, ok := queryInt(c, "page", 0)
	if !ok {
		RespondError(c, response.CodeBadRequest, "error.page_invalid", nil)
		return service.PageRequest{}, false
	}
	size, ok := queryInt(c, "size", constants.DefaultPageSize)
	if !ok {
		RespondError(c, response.CodeBadRequest, "error.page_invalid", nil)
		return service.PageRequest{}, false
	}
	return service.PageRequest{PageIndex: page, PageSize: size}, true
}

// PaginationOf 将分页结果转换为响应分页信息
func PaginationOf(page *service.OrderPage) response.Pagination {
	if page == nil {
		return response.Pagination{}
	}
	return response.Pagination{
		Page:        page.PageIndex,
		PageSize:    page.PageSize,
		Total:       page.TotalItems,
		TotalPage:   page.TotalPages,
		HasNext:     page.HasNext,
		HasPrevious: page.HasPrevious,
	}
}

func queryInt(c *gin.Context, key string, fallback int) (int, bool) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return fallback, true
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return value, true
}
