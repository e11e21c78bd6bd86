package main

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DoughlasMuthoni/linen-store-sub003/internal/auth"
	"github.com/DoughlasMuthoni/linen-store-sub003/internal/config"
	"github.com/DoughlasMuthoni/linen-store-sub003/internal/store"
)

// handleHealth はヘルスチェックエンドポイントのハンドラーです。
func handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "ok",
		"service": "linen-store-web",
		"version": "0.1.0",
	})
}

// setupRoutes はページと認証周りの配線を行います。
func setupRoutes(router *gin.Engine, cfg *config.Config, st *store.Store) {
	authManager := auth.NewManager(cfg, st)

	// remember_token クッキーによる自動ログインは全ルートに先行する
	router.Use(authManager.RememberMe())

	router.GET("/health", handleHealth)
	router.GET("/api/session", authManager.SessionInfo)

	router.GET("/", handleHome(authManager))

	authRoutes := router.Group("/auth")
	{
		authRoutes.GET("/login", authManager.ShowLogin)
		authRoutes.POST("/login", authManager.Login)
		authRoutes.GET("/register", authManager.ShowRegister)
		authRoutes.POST("/register", authManager.Register)
		authRoutes.GET("/logout", authManager.RequireLogin(), authManager.ShowLogout)
		authRoutes.POST("/logout", authManager.Logout)
	}

	admin := router.Group("/admin")
	admin.Use(authManager.RequireAdmin())
	{
		admin.GET("", handleAdmin(authManager))
	}
}

// handleHome はトップページのハンドラーを返します。
func handleHome(m *auth.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		data := gin.H{}
		if c.Query("logout_success") == "1" {
			data["LogoutSuccess"] = true
			data["LogoutUser"] = c.Query("user")
		}
		m.Render(c, http.StatusOK, "home.html", data)
	}
}

// handleAdmin は管理ページのハンドラーを返します。RequireAdmin の背後に置きます。
func handleAdmin(m *auth.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		m.Render(c, http.StatusOK, "admin.html", nil)
	}
}
