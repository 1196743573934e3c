package public

import (
	"net"
	"strings"

	handlershared "github.com/aptechmall/ordercore/internal/http/handlers/shared"
	"github.com/aptechmall/ordercore/internal/http/response"
	"github.com/aptechmall/ordercore/internal/service"

	"github.com/gin-gonic/gin"
)

// RegisterRequest 注册请求
type RegisterRequest struct {
	Username string `json:"username" validate:"required,min=4,max=60,excludes=@"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,max=72"`
	FullName string `json:"full_name" validate:"max=100"`
	Phone    string `json:"phone" validate:"max=20"`
	Address  string `json:"address" validate:"max=500"`
}

// LoginRequest 登录请求，username 可填写用户名或邮箱
type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RefreshRequest 刷新令牌请求
type RefreshRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// LogoutRequest 退出登录请求
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

// Register 用户注册
func (h *Handler) Register(c *gin.Context) {
	var req RegisterRequest
	if !handlershared.BindJSON(c, &req) {
		return
	}
	user, err := h.AuthService.Register(c.Request.Context(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Phone:    req.Phone,
		Address:  req.Address,
	})
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, user)
}

// Login 用户登录
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if !handlershared.BindJSON(c, &req) {
		return
	}
	result, err := h.AuthService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		handlershared.RequestLog(c).Infow("user_login_failed",
			"identifier", strings.TrimSpace(req.Username),
			"client_ip", clientIP(c),
			"error", err,
		)
		respondServiceError(c, err)
		return
	}
	handlershared.RequestLog(c).Infow("user_login_succeeded", "user_id", result.User.ID, "client_ip", clientIP(c))
	response.Success(c, result)
}

// Refresh 刷新令牌
func (h *Handler) Refresh(c *gin.Context) {
	var req RefreshRequest
	if !handlershared.BindJSON(c, &req) {
		return
	}
	result, err := h.AuthService.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, result)
}

// Logout 退出登录
func (h *Handler) Logout(c *gin.Context) {
	claims, ok := handlershared.GetTokenClaims(c)
	if !ok {
		respondError(c, response.CodeUnauthorized, "error.unauthorized", nil)
		return
	}
	var req LogoutRequest
	if c.Request.ContentLength > 0 && !handlershared.BindJSON(c, &req) {
		return
	}
	if err := h.AuthService.Logout(c.Request.Context(), claims, req.RefreshToken); err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, gin.H{"logged_out": true})
}

// GetCurrentUser 获取当前登录用户
func (h *Handler) GetCurrentUser(c *gin.Context) {
	principal, ok := getPrincipal(c)
	if !ok {
		return
	}
	user, err := h.AuthService.GetUser(c.Request.Context(), principal.UserID)
	if err != nil {
		respondServiceError(c, err)
		return
	}
	response.Success(c, user)
}

func clientIP(c *gin.Context) string {
	ip := strings.TrimSpace(c.ClientIP())
	if parsed := net.ParseIP(ip); parsed != nil {
		return parsed.String()
	}
	return ip
}
