package cache

import (
	"context"
	"strings"
	"sync"
	"time"
)

// TokenBlacklist 已吊销令牌存储，以 jti 为键，过期时间与令牌剩余有效期一致
type TokenBlacklist interface {
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
}

// NewTokenBlacklist Redis 启用时使用 Redis，否则退化为进程内存储
func NewTokenBlacklist() TokenBlacklist {
	if Enabled() {
		return RedisTokenBlacklist{}
	}
	return NewMemoryTokenBlacklist()
}

func tokenBlacklistKey(tokenID string) string {
	return "auth:revoked:" + strings.TrimSpace(tokenID)
}

// RedisTokenBlacklist 基于 Redis 的吊销列表
type RedisTokenBlacklist struct{}

// Revoke 吊销令牌
func (RedisTokenBlacklist) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	if strings.TrimSpace(tokenID) == "" || ttl <= 0 {
		return nil
	}
	return SetString(ctx, tokenBlacklistKey(tokenID), "1", ttl)
}

// IsRevoked 令牌是否已吊销
func (RedisTokenBlacklist) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	if strings.TrimSpace(tokenID) == "" {
		return false, nil
	}
	return Exists(ctx, tokenBlacklistKey(tokenID))
}

// MemoryTokenBlacklist 进程内吊销列表，仅适用于单实例部署
type MemoryTokenBlacklist struct {
	mu      sync.Mutex
	entries map[string]time.Time
	now     func() time.Time
}

// NewMemoryTokenBlacklist 创建进程内吊销列表
func NewMemoryTokenBlacklist() *MemoryTokenBlacklist {
	return &MemoryTokenBlacklist{
		entries: make(map[string]time.Time),
		now:     time.Now,
	}
}

// Revoke 吊销令牌
func (m *MemoryTokenBlacklist) Revoke(_ context.Context, tokenID string, ttl time.Duration) error {
	tokenID = strings.TrimSpace(tokenID)
	if tokenID == "" || ttl <= 0 {
		return nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	now := m.now()
	m.sweepLocked(now)
	m.entries[tokenID] = now.Add(ttl)
	return nil
}

// IsRevoked 令牌是否已吊销
func (m *MemoryTokenBlacklist) IsRevoked(_ context.Context, tokenID string) (bool, error) {
	tokenID = strings.TrimSpace(tokenID)
	if tokenID == "" {
		return false, nil
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	expiresAt, ok := m.entries[tokenID]
	if !ok {
		return false, nil
	}
	if !m.now().Before(expiresAt) {
		delete(m.entries, tokenID)
		return false, nil
	}
	return true, nil
}

func (m *MemoryTokenBlacklist) sweepLocked(now time.Time) {
	for id, expiresAt := range m.entries {
		if !now.Before(expiresAt) {
			delete(m.entries, id)
		}
	}
}
