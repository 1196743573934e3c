package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aptechmall/ordercore/internal/cache"
	"github.com/aptechmall/ordercore/internal/config"
	"github.com/aptechmall/ordercore/internal/constants"
	"github.com/aptechmall/ordercore/internal/identity"
	"github.com/aptechmall/ordercore/internal/logger"
	"github.com/aptechmall/ordercore/internal/models"
	"github.com/aptechmall/ordercore/internal/repository"

	"golang.org/x/crypto/bcrypt"
)

const (
	minUsernameLength = 4
	maxUsernameLength = 60
	minPasswordLength = 6
)

// AuthService 用户注册、登录与令牌续期
type AuthService struct {
	userRepo   repository.UserRepository
	tokens     *TokenService
	accessTTL  time.Duration
	refreshTTL time.Duration
	bcryptCost int
}

// NewAuthService 创建认证服务
func NewAuthService(userRepo repository.UserRepository, tokens *TokenService, jwtCfg config.JWTConfig, securityCfg config.SecurityConfig) *AuthService {
	cost := securityCfg.BcryptCost
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &AuthService{
		userRepo:   userRepo,
		tokens:     tokens,
		accessTTL:  jwtCfg.AccessTTL(),
		refreshTTL: jwtCfg.RefreshTTL(),
		bcryptCost: cost,
	}
}

// RegisterInput 注册输入
type RegisterInput struct {
	Username string
	Email    string
	Password string
	FullName string
	Phone    string
	Address  string
}

// AuthResult 登录或续期结果
type AuthResult struct {
	User             *models.User `json:"user"`
	AccessToken      string       `json:"access_token"`
	RefreshToken     string       `json:"refresh_token"`
	AccessExpiresAt  time.Time    `json:"access_expires_at"`
	RefreshExpiresAt time.Time    `json:"refresh_expires_at"`
}

// Register 注册顾客账号
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*models.User, error) {
	normalized, err := normalizeRegisterInput(input)
	if err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(normalized.Password), s.bcryptCost)
	if err != nil {
		return nil, err
	}

	db, err := dbSession(ctx)
	if err != nil {
		return nil, err
	}
	repo := s.userRepo.WithTx(db)
	existing, err := repo.GetByUsername(normalized.Username)
	if err != nil {
		return nil, wrapStoreError(err)
	}
	if existing != nil {
		return nil, ErrUsernameExists
	}
	existing, err = repo.GetByEmail(normalized.Email)
	if err != nil {
		return nil, wrapStoreError(err)
	}
	if existing != nil {
		return nil, ErrEmailExists
	}

	user := &models.User{
		Username:     normalized.Username,
		Email:        normalized.Email,
		PasswordHash: string(hash),
		FullName:     normalized.FullName,
		Phone:        normalized.Phone,
		Address:      normalized.Address,
		Role:         constants.RoleCustomer,
		Status:       constants.UserStatusActive,
	}
	if err := repo.Create(user); err != nil {
		if isUniqueViolation(err) {
			return nil, ErrUsernameExists
		}
		return nil, wrapStoreError(err)
	}
	logger.Infow("user_registered", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Login 使用用户名或邮箱登录
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*AuthResult, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, invalidInput("username and password are required")
	}
	db, err := dbSession(ctx)
	if err != nil {
		return nil, err
	}
	repo := s.userRepo.WithTx(db)

	var user *models.User
	if strings.Contains(identifier, "@") {
		user, err = repo.GetByEmail(identifier)
	} else {
		user, err = repo.GetByUsername(identifier)
	}
	if err != nil {
		return nil, wrapStoreError(err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		logger.Debugw("user_login_password_mismatch", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}
	if !identity.UserStatus(user.Status).IsActive() {
		return nil, ErrUserDisabled
	}

	now := time.Now()
	if err := repo.UpdateLastLogin(user.ID, now); err != nil {
		logger.Warnw("user_login_touch_failed", "user_id", user.ID, "error", err)
	} else {
		user.LastLoginAt = &now
	}
	if err := cache.SetUserAuthState(ctx, cache.BuildUserAuthState(user)); err != nil {
		logger.Warnw("user_auth_state_cache_set_failed", "user_id", user.ID, "error", err)
	}
	return s.issuePair(user)
}

// Refresh 使用刷新令牌换取新的令牌对，旧刷新令牌随即吊销
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*AuthResult, error) {
	claims, err := s.tokens.ParseActive(ctx, refreshToken, constants.TokenKindRefresh)
	if err != nil {
		return nil, err
	}
	user, err := s.loadActiveUser(ctx, claims.UserID)
	if err != nil {
		return nil, err
	}
	if err := s.tokens.Revoke(ctx, claims); err != nil {
		return nil, storeUnavailable(err)
	}
	return s.issuePair(user)
}

// Logout 吊销当前访问令牌与可选的刷新令牌
func (s *AuthService) Logout(ctx context.Context, accessClaims *TokenClaims, refreshToken string) error {
	if accessClaims == nil {
		return ErrUnauthorized
	}
	if err := s.tokens.Revoke(ctx, accessClaims); err != nil {
		return storeUnavailable(err)
	}
	if strings.TrimSpace(refreshToken) == "" {
		return nil
	}
	refreshClaims, err := s.tokens.Parse(refreshToken, constants.TokenKindRefresh)
	if err != nil {
		return nil
	}
	if refreshClaims.UserID != accessClaims.UserID {
		return ErrForbidden
	}
	if err := s.tokens.Revoke(ctx, refreshClaims); err != nil {
		return storeUnavailable(err)
	}
	return nil
}

// ResolvePrincipal 由访问令牌解析请求主体，角色与状态以用户记录为准
func (s *AuthService) ResolvePrincipal(ctx context.Context, claims *TokenClaims) (*identity.Principal, error) {
	if claims == nil {
		return nil, ErrUnauthorized
	}
	revoked, err := s.tokens.IsRevoked(ctx, claims)
	if err != nil {
		return nil, storeUnavailable(err)
	}
	if revoked {
		return nil, ErrTokenRevoked
	}

	state, hit, err := cache.GetUserAuthState(ctx, claims.UserID)
	if err != nil {
		logger.Warnw("user_auth_state_cache_get_failed", "user_id", claims.UserID, "error", err)
	}
	if !hit || state == nil {
		user, err := s.loadUser(ctx, claims.UserID)
		if err != nil {
			return nil, err
		}
		state = cache.BuildUserAuthState(user)
		if err := cache.SetUserAuthState(ctx, state); err != nil {
			logger.Warnw("user_auth_state_cache_set_failed", "user_id", claims.UserID, "error", err)
		}
	}

	role, ok := identity.ParseRole(state.Role)
	if !ok {
		return nil, ErrForbidden
	}
	status, _ := identity.ParseUserStatus(state.Status)
	if !status.IsActive() {
		return nil, ErrUserDisabled
	}
	return &identity.Principal{
		UserID:  state.UserID,
		Role:    role,
		Status:  status,
		TokenID: claims.ID,
	}, nil
}

// GetUser 获取用户资料
func (s *AuthService) GetUser(ctx context.Context, userID uint) (*models.User, error) {
	return s.loadUser(ctx, userID)
}

// ParseAccessToken 解析访问令牌
func (s *AuthService) ParseAccessToken(ctx context.Context, token string) (*TokenClaims, error) {
	return s.tokens.ParseActive(ctx, token, constants.TokenKindAccess)
}

func (s *AuthService) issuePair(user *models.User) (*AuthResult, error) {
	access, accessClaims, err := s.tokens.Issue(user, constants.TokenKindAccess, s.accessTTL)
	if err != nil {
		return nil, err
	}
	refresh, refreshClaims, err := s.tokens.Issue(user, constants.TokenKindRefresh, s.refreshTTL)
	if err != nil {
		return nil, err
	}
	return &AuthResult{
		User:             user,
		AccessToken:      access,
		RefreshToken:     refresh,
		AccessExpiresAt:  accessClaims.ExpiresAt.Time,
		RefreshExpiresAt: refreshClaims.ExpiresAt.Time,
	}, nil
}

func (s *AuthService) loadUser(ctx context.Context, userID uint) (*models.User, error) {
	db, err := dbSession(ctx)
	if err != nil {
		return nil, err
	}
	user, err := s.userRepo.WithTx(db).GetByID(userID)
	if err != nil {
		return nil, wrapStoreError(err)
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *AuthService) loadActiveUser(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.loadUser(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrTokenInvalid
		}
		return nil, err
	}
	if !identity.UserStatus(user.Status).IsActive() {
		return nil, ErrUserDisabled
	}
	return user, nil
}

func normalizeRegisterInput(input RegisterInput) (RegisterInput, error) {
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.ToLower(strings.TrimSpace(input.Email))
	input.FullName = strings.TrimSpace(input.FullName)
	input.Phone = strings.TrimSpace(input.Phone)
	input.Address = strings.TrimSpace(input.Address)

	length := utf8.RuneCountInString(input.Username)
	if length < minUsernameLength || length > maxUsernameLength {
		return input, invalidInput("username must be %d-%d characters", minUsernameLength, maxUsernameLength)
	}
	if strings.Contains(input.Username, "@") {
		return input, invalidInput("username must not contain @")
	}
	if _, err := mail.ParseAddress(input.Email); err != nil || !strings.Contains(input.Email, "@") {
		return input, ErrInvalidEmail
	}
	if utf8.RuneCountInString(input.Password) < minPasswordLength {
		return input, invalidInput("password must be at least %d characters", minPasswordLength)
	}
	if input.FullName == "" {
		input.FullName = input.Username
	}
	return input, nil
}
