package repository

import "gorm.io/gorm"

// applyPagination 应用分页参数，pageIndex 从 0 开始，非法值按首页处理。
func applyPagination(query *gorm.DB, pageIndex, pageSize int) *gorm.DB {
	if query == nil || pageSize <= 0 {
		return query
	}
	if pageIndex < 0 {
		pageIndex = 0
	}
	return query.Limit(pageSize).Offset(pageIndex * pageSize)
}
