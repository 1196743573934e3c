package service

import (
	"context"
	"fmt"

	"github.com/aptechmall/ordercore/internal/models"

	"gorm.io/gorm"
)

// dbSession 返回绑定请求上下文的数据库会话
func dbSession(ctx context.Context) (*gorm.DB, error) {
	if models.DB == nil {
		return nil, fmt.Errorf("%w: database not initialized", ErrStoreUnavailable)
	}
	return models.DB.WithContext(ctx), nil
}

// runInTx 在单个数据库事务中执行 fn，返回值经过统一归类
func runInTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	db, err := dbSession(ctx)
	if err != nil {
		return err
	}
	return wrapStoreError(db.Transaction(fn))
}
