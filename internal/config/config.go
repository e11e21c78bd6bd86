// Package config は環境変数から設定を読み込み、アプリケーション全体で使用する設定を提供します。
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/joho/godotenv"
)

// Config はアプリケーションの設定を保持する構造体です。
type Config struct {
	// セッション設定
	SessionSecret    string // セッションクッキー署名用の秘密鍵
	SessionRedisAddr string // Redisセッションストアのアドレス（空ならクッキーストア）
	SessionRedisPass string // Redisセッションストアのパスワード

	// サーバー設定
	Port    string // HTTPサーバーのポート番号
	GinMode string // Ginの実行モード (debug, release, test)

	// CORS設定（/health, /api/* のJSONエンドポイント用）
	CORSAllowedOrigins string // CORS許可オリジン（カンマ区切り）

	// データベース設定
	DatabasePath string // SQLiteデータベースファイルのパス

	// 認証設定
	BcryptCost   int    // bcryptのコストファクター
	CookieSecure string // remember_tokenクッキーのSecure属性 (auto, true, false)
}

// Load は環境変数から設定を読み込みます。
// .env.local ファイルが存在する場合はそこから読み込みます。
func Load() (*Config, error) {
	loadEnvFile()

	config := &Config{
		// セッション設定
		SessionSecret:    getEnv("SESSION_SECRET", ""),
		SessionRedisAddr: getEnv("SESSION_REDIS_ADDR", ""),
		SessionRedisPass: getEnv("SESSION_REDIS_PASSWORD", ""),

		// サーバー設定
		Port:    getEnv("PORT", "8080"),
		GinMode: getEnv("GIN_MODE", "debug"),

		// CORS設定
		CORSAllowedOrigins: getEnv("CORS_ALLOWED_ORIGINS", "http://localhost:5173"),

		// データベース設定
		DatabasePath: getEnv("DATABASE_PATH", "linen-store.db"),

		// 認証設定
		BcryptCost:   getEnvAsInt("BCRYPT_COST", 12),
		CookieSecure: getEnv("COOKIE_SECURE", "auto"),
	}

	// 必須設定のバリデーション
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

func loadEnvFile() {
	if err := godotenv.Load(".env.local"); err == nil {
		return
	}

	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	parent := filepath.Dir(cwd)
	if parent == "" || parent == cwd {
		return
	}

	_ = godotenv.Load(filepath.Join(parent, ".env.local"))
}

// Validate は設定の妥当性を検証します。
func (c *Config) Validate() error {
	// ローカル開発では秘密鍵は任意
	// 本番環境では厳格にチェックする
	if c.GinMode == "release" {
		if c.SessionSecret == "" {
			return fmt.Errorf("SESSION_SECRET is required in release mode")
		}
		if c.DatabasePath == "" {
			return fmt.Errorf("DATABASE_PATH is required in release mode")
		}
	}

	switch c.CookieSecure {
	case "auto", "true", "false":
	default:
		return fmt.Errorf("COOKIE_SECURE must be one of auto, true, false")
	}

	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("BCRYPT_COST must be between 4 and 31")
	}

	return nil
}

// getEnv は環境変数を取得し、存在しない場合はデフォルト値を返します。
func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt は環境変数を整数として取得します。
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
