package jwt

import (
	"errors"
	"testing"
	"time"

	"github.com/Unbornmoral/academic-flow-compass/config"
)

func testManager() *Manager {
	return NewManager(&config.AuthConfig{
		JWTSecret:               "test-secret-0123456789abcdef",
		AccessTokenTTL:          15 * time.Minute,
		RefreshTokenTTLDefault:  24 * time.Hour,
		RefreshTokenTTLRemember: 30 * 24 * time.Hour,
	})
}

func TestManager_AccessTokenRoundTrip(t *testing.T) {
	m := testManager()

	token, err := m.GenerateAccessToken("u1", "lecturer")
	if err != nil {
		t.Fatalf("生成 AccessToken 应成功: %v", err)
	}

	claims, err := m.ParseToken(token)
	if err != nil {
		t.Fatalf("解析应成功: %v", err)
	}
	if claims.UserID != "u1" || claims.Role != "lecturer" {
		t.Errorf("声明不符: %+v", claims)
	}
	if claims.TokenType != "access" {
		t.Errorf("期望 token_type=access，实际=%s", claims.TokenType)
	}
	if claims.ID == "" {
		t.Error("每个 Token 应有唯一 jti")
	}
}

func TestManager_RoleTicketWithoutUser(t *testing.T) {
	m := testManager()

	// local 模式角色票据：无用户 ID
	token, err := m.GenerateAccessToken("", "student")
	if err != nil {
		t.Fatalf("生成角色票据应成功: %v", err)
	}

	claims, err := m.ParseToken(token)
	if err != nil {
		t.Fatalf("解析应成功: %v", err)
	}
	if claims.UserID != "" {
		t.Errorf("角色票据不应携带 user_id，实际=%s", claims.UserID)
	}
	if claims.Role != "student" {
		t.Errorf("期望角色 student，实际=%s", claims.Role)
	}
}

func TestManager_RefreshTokenType(t *testing.T) {
	m := testManager()

	token, err := m.GenerateRefreshToken("u1", "student", true)
	if err != nil {
		t.Fatalf("生成 RefreshToken 应成功: %v", err)
	}

	claims, err := m.ParseToken(token)
	if err != nil {
		t.Fatalf("解析应成功: %v", err)
	}
	if claims.TokenType != "refresh" {
		t.Errorf("期望 token_type=refresh，实际=%s", claims.TokenType)
	}
	if !claims.RememberMe {
		t.Error("remember_me 声明应保留")
	}
}

func TestManager_RejectsForgedSecret(t *testing.T) {
	m := testManager()
	forger := NewManager(&config.AuthConfig{
		JWTSecret:      "another-secret-0123456789abcdef",
		AccessTokenTTL: 15 * time.Minute,
	})

	token, err := forger.GenerateAccessToken("u1", "developer")
	if err != nil {
		t.Fatalf("生成应成功: %v", err)
	}

	if _, err := m.ParseToken(token); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("异密钥签发的 Token 应被拒绝，实际: %v", err)
	}
}

func TestManager_RejectsExpired(t *testing.T) {
	m := NewManager(&config.AuthConfig{
		JWTSecret:      "test-secret-0123456789abcdef",
		AccessTokenTTL: -time.Minute, // 生成即过期
	})

	token, err := m.GenerateAccessToken("u1", "student")
	if err != nil {
		t.Fatalf("生成应成功: %v", err)
	}

	if _, err := m.ParseToken(token); !errors.Is(err, ErrTokenExpired) {
		t.Errorf("过期 Token 应返回 ErrTokenExpired，实际: %v", err)
	}
}

func TestManager_RejectsGarbage(t *testing.T) {
	m := testManager()

	if _, err := m.ParseToken("not-a-jwt"); !errors.Is(err, ErrTokenInvalid) {
		t.Errorf("非法字符串应返回 ErrTokenInvalid，实际: %v", err)
	}
}
