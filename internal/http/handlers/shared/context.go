package shared

import (
	"strconv"
	"strings"

	"github.com/aptechmall/ordercore/internal/http/response"
	"github.com/aptechmall/ordercore/internal/identity"
	"github.com/aptechmall/ordercore/internal/service"

	"github.com/gin-gonic/gin"
)

// 上下文键
const (
	ContextKeyPrincipal   = "principal"
	ContextKeyTokenClaims = "token_claims"
	ContextKeyUserID      = "user_id"
	ContextKeyRequestID   = "request_id"
)

// SetPrincipal 写入已认证主体
func SetPrincipal(c *gin.Context, principal identity.Principal, claims *service.TokenClaims) {
	c.Set(ContextKeyPrincipal, principal)
	c.Set(ContextKeyTokenClaims, claims)
	c.Set(ContextKeyUserID, principal.UserID)
}

// GetPrincipal 读取已认证主体，缺失时直接返回 401
func GetPrincipal(c *gin.Context) (identity.Principal, bool) {
	value, exists := c.Get(ContextKeyPrincipal)
	if !exists {
		RespondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return identity.Principal{}, false
	}
	principal, ok := value.(identity.Principal)
	if !ok || principal.UserID == 0 {
		RespondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return identity.Principal{}, false
	}
	return principal, true
}

// GetTokenClaims 读取当前访问令牌声明
func GetTokenClaims(c *gin.Context) (*service.TokenClaims, bool) {
	value, exists := c.Get(ContextKeyTokenClaims)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*service.TokenClaims)
	return claims, ok && claims != nil
}

// ParseUintParam 解析路径中的正整数 ID
func ParseUintParam(c *gin.Context, name string) (uint, bool) {
	raw := strings.TrimSpace(c.Param(name))
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		RespondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return 0, false
	}
	return uint(id), true
}
