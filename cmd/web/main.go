// Package main はストアフロントWebサーバーのエントリーポイントです。
package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	sessredis "github.com/gin-contrib/sessions/redis"
	"github.com/gin-gonic/gin"

	"github.com/DoughlasMuthoni/linen-store-sub003/internal/auth"
	"github.com/DoughlasMuthoni/linen-store-sub003/internal/config"
	"github.com/DoughlasMuthoni/linen-store-sub003/internal/store"
	"github.com/DoughlasMuthoni/linen-store-sub003/internal/web"
)

func main() {
	// 設定の読み込み
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Ginのモードを設定
	gin.SetMode(cfg.GinMode)

	ctx := context.Background()

	// データベースを開く（マイグレーションも適用される）
	st, err := store.Open(ctx, cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to open store: %v", err)
	}
	defer st.Close()

	// 期限切れの持続ログイントークンを定期的に掃除する
	go cleanupExpiredTokens(ctx, st)

	// Ginルーターの初期化（デフォルトミドルウェア: Logger, Recovery）
	router := gin.Default()
	router.SetHTMLTemplate(web.Templates())
	router.StaticFS("/static", http.FS(web.StaticFS()))

	// セッションストアの設定（クッキー署名鍵は必須）
	sessionStore, err := newSessionStore(cfg)
	if err != nil {
		log.Fatalf("Failed to create session store: %v", err)
	}
	router.Use(sessions.Sessions(auth.SessionCookieName, sessionStore))

	// CORSミドルウェアの設定（JSONエンドポイント用）
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = strings.Split(cfg.CORSAllowedOrigins, ",")
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{
		"Origin",
		"Content-Type",
		"Accept",
		"X-CSRF-Token", // CSRF保護用ヘッダー
	}
	corsConfig.ExposeHeaders = []string{"X-CSRF-Token"}
	router.Use(cors.New(corsConfig))

	// ルーティングの設定
	setupRoutes(router, cfg, st)

	// サーバーの起動
	addr := ":" + cfg.Port
	log.Printf("Starting web server on %s (mode: %s)", addr, cfg.GinMode)
	if err := router.Run(addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// newSessionStore はセッションストアを作成します。
// SESSION_REDIS_ADDR が設定されていればRedisストア、なければクッキーストアを使います。
func newSessionStore(cfg *config.Config) (sessions.Store, error) {
	secret := cfg.SessionSecret
	if secret == "" {
		// ローカル開発用。再起動のたびにセッションは無効になる
		buf := make([]byte, 32)
		if _, err := rand.Read(buf); err != nil {
			return nil, err
		}
		secret = hex.EncodeToString(buf)
		log.Printf("SESSION_SECRET is not set; using a generated secret (sessions reset on restart)")
	}

	options := sessions.Options{
		Path:     "/",
		MaxAge:   auth.SessionMaxAgeSeconds(),
		HttpOnly: true,
		Secure:   cfg.GinMode == gin.ReleaseMode,
		SameSite: http.SameSiteLaxMode,
	}

	if cfg.SessionRedisAddr != "" {
		redisStore, err := sessredis.NewStore(10, "tcp", cfg.SessionRedisAddr, cfg.SessionRedisPass, []byte(secret))
		if err != nil {
			return nil, err
		}
		redisStore.Options(options)
		return redisStore, nil
	}

	cookieStore := cookie.NewStore([]byte(secret))
	cookieStore.Options(options)
	return cookieStore, nil
}

// cleanupExpiredTokens は期限切れトークンを1時間ごとに削除します。
func cleanupExpiredTokens(ctx context.Context, st *store.Store) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			deleted, err := st.DeleteExpiredRememberTokens(ctx, now.UTC())
			if err != nil {
				log.Printf("Failed to delete expired remember tokens: %v", err)
				continue
			}
			if deleted > 0 {
				log.Printf("Deleted %d expired remember tokens", deleted)
			}
		}
	}
}
