// Package config はアプリケーション設定を提供する。
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config はアプリケーション全体の設定を保持する。
// 環境変数から起動時に1回読み込み、イミュータブルとして扱う。
// 必須変数の欠落はリクエスト単位ではなく起動時の致命的エラーとする。
type Config struct {
	// Database
	DatabaseURL string `env:"DATABASE_URL,required"`

	// Session
	SessionSecret string `env:"SESSION_SECRET,required"`
	SessionMaxAge int    `env:"SESSION_MAX_AGE" envDefault:"86400"`

	// Session cleanup worker
	SessionCleanupInterval time.Duration `env:"SESSION_CLEANUP_INTERVAL" envDefault:"1h"`

	// Rate Limit (req/min)
	RateLimitGeneral int `env:"RATE_LIMIT_GENERAL" envDefault:"120"`
	RateLimitAuth    int `env:"RATE_LIMIT_AUTH" envDefault:"10"`

	// Server
	ServerPort string `env:"SERVER_PORT" envDefault:"8080"`
	BaseURL    string `env:"BASE_URL" envDefault:"http://localhost:8080"`

	// Cookie
	CookieDomain string `env:"COOKIE_DOMAIN"`

	// CORS
	CORSAllowedOrigin string `env:"CORS_ALLOWED_ORIGIN" envDefault:"http://localhost:3000"`
}

// CookieSecure はセッションCookieにSecure属性を付けるかどうかを返す。
// BaseURLのスキームから導出する。
func (c *Config) CookieSecure() bool {
	return strings.HasPrefix(c.BaseURL, "https://")
}

// Load は環境変数からConfigを読み込む。
// 必須環境変数が未設定の場合はエラーを返す。
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}
