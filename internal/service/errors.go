package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

const (
	pgUniqueViolation     = "23505"
	pgDataExceptionPrefix = "22"
)

// 核心业务错误
var (
	ErrInvalidInput      = errors.New("invalid input")
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrConflict          = errors.New("conflict")
	ErrStoreUnavailable  = errors.New("store unavailable")
)

// NotFound 细分错误，均满足 errors.Is(err, ErrNotFound)
var (
	ErrCartNotFound     = fmt.Errorf("cart %w", ErrNotFound)
	ErrCartItemNotFound = fmt.Errorf("cart item %w", ErrNotFound)
	ErrOrderNotFound    = fmt.Errorf("order %w", ErrNotFound)
	ErrUserNotFound     = fmt.Errorf("user %w", ErrNotFound)
)

// 认证与通知错误
var (
	ErrUnauthorized              = errors.New("unauthorized")
	ErrInvalidCredentials        = errors.New("invalid credentials")
	ErrUserDisabled              = errors.New("user disabled")
	ErrUsernameExists            = errors.New("username already exists")
	ErrEmailExists               = errors.New("email already exists")
	ErrTokenInvalid              = errors.New("token invalid")
	ErrTokenRevoked              = errors.New("token revoked")
	ErrEmailServiceDisabled      = errors.New("email service disabled")
	ErrEmailServiceNotConfigured = errors.New("email service not configured")
	ErrEmailRecipientRejected    = errors.New("email recipient rejected")
	ErrInvalidEmail              = errors.New("invalid email")
)

var classifiedErrors = []error{
	ErrInvalidInput,
	ErrNotFound,
	ErrForbidden,
	ErrEmptyCart,
	ErrInvalidTransition,
	ErrConflict,
	ErrStoreUnavailable,
	ErrUnauthorized,
	ErrInvalidCredentials,
	ErrUserDisabled,
	ErrUsernameExists,
	ErrEmailExists,
	ErrTokenInvalid,
	ErrTokenRevoked,
}

// invalidInput 构造带字段说明的 ErrInvalidInput
func invalidInput(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// IsRetryable 调用方可安全重试的错误
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable) || errors.Is(err, ErrConflict)
}

// wrapStoreError 将存储层错误归类，已归类的业务错误原样返回
func wrapStoreError(err error) error {
	if err == nil {
		return nil
	}
	for _, target := range classifiedErrors {
		if errors.Is(err, target) {
			return err
		}
	}
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %w", ErrConflict, err)
	}
	if isDataException(err) {
		return fmt.Errorf("%w: %w", ErrInvalidInput, err)
	}
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}

// isDataException 数值溢出、字段超长等由输入值引起的 postgres 错误（SQLSTATE 22xxx）
func isDataException(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && strings.HasPrefix(pgErr.Code, pgDataExceptionPrefix)
}

// isUniqueViolation 兼容 postgres 与 sqlite 的唯一约束冲突
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
		return true
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "unique constraint failed") ||
		strings.Contains(message, "duplicate key value violates unique constraint")
}

// storeUnavailable 将外部存储故障归为 ErrStoreUnavailable
func storeUnavailable(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
}
