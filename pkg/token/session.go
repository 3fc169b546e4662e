// Package token 签发并校验聊天机器人的会话 id。
package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidSession 表示会话 id 无法校验（签名错误、过期或格式损坏）。
var ErrInvalidSession = errors.New("invalid session id")

// SessionClaims 是会话 id 中携带的声明，Subject 为会话的 uuid。
type SessionClaims struct {
	jwt.RegisteredClaims
}

// SessionManager 负责签发和校验会话 id。
type SessionManager struct {
	secretKey []byte
	ttl       time.Duration
	now       func() time.Time
}

// NewSessionManager 创建一个新的 SessionManager。ttl 为 0 时会话 id 不过期。
func NewSessionManager(secret string, ttl time.Duration) *SessionManager {
	return &SessionManager{secretKey: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue 生成一个新的签名会话 id，同时返回其中的 uuid。
func (m *SessionManager) Issue() (sessionID string, key string, err error) {
	now := m.now()
	key = uuid.NewString()
	claims := SessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:  key,
			IssuedAt: jwt.NewNumericDate(now),
		},
	}
	if m.ttl > 0 {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(m.ttl))
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secretKey)
	if err != nil {
		return "", "", err
	}
	return signed, key, nil
}

// Verify 校验会话 id，返回其中的 uuid。
func (m *SessionManager) Verify(sessionID string) (string, error) {
	token, err := jwt.ParseWithClaims(sessionID, &SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return m.secretKey, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil {
		return "", ErrInvalidSession
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return "", ErrInvalidSession
	}
	return claims.Subject, nil
}

// Resolve 校验已有的会话 id；为空或无效时签发新的。issued 报告是否为新签发。
func (m *SessionManager) Resolve(sessionID string) (id string, key string, issued bool, err error) {
	if sessionID != "" {
		if key, err := m.Verify(sessionID); err == nil {
			return sessionID, key, false, nil
		}
	}
	id, key, err = m.Issue()
	return id, key, true, err
}
