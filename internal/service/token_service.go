package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aptechmall/ordercore/internal/cache"
	"github.com/aptechmall/ordercore/internal/config"
	"github.com/aptechmall/ordercore/internal/constants"
	"github.com/aptechmall/ordercore/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenClaims 令牌声明
type TokenClaims struct {
	UserID uint   `json:"uid"`
	Role   string `json:"role"`
	Type   string `json:"type"`
	Email  string `json:"email"`
	Status string `json:"status"`
	jwt.RegisteredClaims
}

// TokenService 令牌签发、解析与吊销
type TokenService struct {
	secret      []byte
	issuer      string
	revocations cache.TokenBlacklist
	now         func() time.Time
}

// NewTokenService 创建令牌服务
func NewTokenService(cfg config.JWTConfig, revocations cache.TokenBlacklist) *TokenService {
	if revocations == nil {
		revocations = cache.NewMemoryTokenBlacklist()
	}
	return &TokenService{
		secret:      []byte(cfg.SecretKey),
		issuer:      strings.TrimSpace(cfg.Issuer),
		revocations: revocations,
		now:         time.Now,
	}
}

// Issue 为用户签发指定类型的令牌
func (s *TokenService) Issue(user *models.User, kind string, ttl time.Duration) (string, *TokenClaims, error) {
	if user == nil || user.ID == 0 {
		return "", nil, ErrUserNotFound
	}
	if kind != constants.TokenKindAccess && kind != constants.TokenKindRefresh {
		return "", nil, fmt.Errorf("unsupported token kind %q", kind)
	}
	now := s.now()
	claims := &TokenClaims{
		UserID: user.ID,
		Role:   user.Role,
		Type:   kind,
		Email:  user.Email,
		Status: user.Status,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    s.issuer,
			Subject:   fmt.Sprintf("%d", user.ID),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", nil, err
	}
	return signed, claims, nil
}

// Parse 校验签名、有效期与令牌类型
func (s *TokenService) Parse(tokenString, kind string) (*TokenClaims, error) {
	tokenString = strings.TrimSpace(tokenString)
	if tokenString == "" {
		return nil, ErrTokenInvalid
	}
	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(s.now),
	)
	claims := &TokenClaims{}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrTokenInvalid, err)
	}
	if !token.Valid || claims.UserID == 0 || strings.TrimSpace(claims.ID) == "" {
		return nil, ErrTokenInvalid
	}
	if kind != "" && claims.Type != kind {
		return nil, fmt.Errorf("%w: expected %s got %s", ErrTokenInvalid, kind, claims.Type)
	}
	return claims, nil
}

// IsRevoked 令牌是否已被吊销
func (s *TokenService) IsRevoked(ctx context.Context, claims *TokenClaims) (bool, error) {
	if claims == nil {
		return false, nil
	}
	return s.revocations.IsRevoked(ctx, claims.ID)
}

// Revoke 吊销令牌直至其自然过期
func (s *TokenService) Revoke(ctx context.Context, claims *TokenClaims) error {
	if claims == nil || claims.ExpiresAt == nil {
		return nil
	}
	remaining := claims.ExpiresAt.Sub(s.now())
	if remaining <= 0 {
		return nil
	}
	return s.revocations.Revoke(ctx, claims.ID, remaining)
}

// ParseActive 解析令牌并拒绝已吊销的令牌
func (s *TokenService) ParseActive(ctx context.Context, tokenString, kind string) (*TokenClaims, error) {
	claims, err := s.Parse(tokenString, kind)
	if err != nil {
		return nil, err
	}
	revoked, err := s.IsRevoked(ctx, claims)
	if err != nil {
		return nil, storeUnavailable(err)
	}
	if revoked {
		return nil, ErrTokenRevoked
	}
	return claims, nil
}
