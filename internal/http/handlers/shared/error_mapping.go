package shared

import (
	"errors"

	"github.com/aptechmall/ordercore/internal/http/response"
	"github.com/aptechmall/ordercore/internal/service"

	"github.com/gin-gonic/gin"
)

// MappedHandlerError 定义业务错误到接口错误响应的映射关系。
type MappedHandlerError struct {
	Target error
	Code   int
	Key    string
}

// 细分错误需排在其归属的通用错误之前
var serviceErrorRules = []MappedHandlerError{
	{Target: service.ErrInvalidEmail, Code: response.CodeBadRequest, Key: "error.email_invalid"},
	{Target: service.ErrInvalidInput, Code: response.CodeBadRequest, Key: "error.bad_request"},
	{Target: service.ErrUnauthorized, Code: response.CodeUnauthorized, Key: "error.unauthorized"},
	{Target: service.ErrInvalidCredentials, Code: response.CodeUnauthorized, Key: "error.invalid_credentials"},
	{Target: service.ErrTokenRevoked, Code: response.CodeUnauthorized, Key: "error.token_revoked"},
	{Target: service.ErrTokenInvalid, Code: response.CodeUnauthorized, Key: "error.token_invalid"},
	{Target: service.ErrUserDisabled, Code: response.CodeForbidden, Key: "error.user_disabled"},
	{Target: service.ErrForbidden, Code: response.CodeForbidden, Key: "error.forbidden"},
	{Target: service.ErrCartItemNotFound, Code: response.CodeNotFound, Key: "error.cart_item_not_found"},
	{Target: service.ErrOrderNotFound, Code: response.CodeNotFound, Key: "error.order_not_found"},
	{Target: service.ErrUserNotFound, Code: response.CodeNotFound, Key: "error.user_not_found"},
	{Target: service.ErrNotFound, Code: response.CodeNotFound, Key: "error.not_found"},
	{Target: service.ErrUsernameExists, Code: response.CodeConflict, Key: "error.username_exists"},
	{Target: service.ErrEmailExists, Code: response.CodeConflict, Key: "error.email_exists"},
	{Target: service.ErrEmptyCart, Code: response.CodeUnprocessableEntity, Key: "error.empty_cart"},
	{Target: service.ErrInvalidTransition, Code: response.CodeUnprocessableEntity, Key: "error.invalid_transition"},
	{Target: service.ErrStoreUnavailable, Code: response.CodeServiceUnavailable, Key: "error.store_unavailable"},
	{Target: service.ErrConflict, Code: response.CodeConflict, Key: "error.conflict"},
}

// RespondWithMappedError 按规则表映射错误，未命中时使用兜底码。
func RespondWithMappedError(c *gin.Context, err error, rules []MappedHandlerError, fallbackCode int, fallbackKey string) {
	for _, rule := range rules {
		if errors.Is(err, rule.Target) {
			var logged error
			if rule.Code >= response.CodeInternal {
				logged = err
			}
			RespondError(c, rule.Code, rule.Key, logged)
			return
		}
	}
	RespondError(c, fallbackCode, fallbackKey, err)
}

// RespondServiceError 映射业务层错误
func RespondServiceError(c *gin.Context, err error) {
	RespondWithMappedError(c, err, serviceErrorRules, response.CodeInternal, "error.internal")
}

// ResolveServiceErrorCode 返回错误对应的业务码
func ResolveServiceErrorCode(err error) int {
	for _, rule := range serviceErrorRules {
		if errors.Is(err, rule.Target) {
			return rule.Code
		}
	}
	return response.CodeInternal
}
