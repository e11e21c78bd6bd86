package auth

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// SessionInfo は GET /api/session のハンドラーです。
// フォームのクライアント側ミラーバリデーション用スクリプトがログイン状態と
// CSRFトークンを参照するために使います。
func (m *Manager) SessionInfo(c *gin.Context) {
	identity, ok := m.CurrentIdentity(c)
	if !ok {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}

	token, err := m.ensureCSRFToken(c)
	if err != nil {
		log.Printf("failed to issue csrf token: %v", err)
	}
	c.Header(csrfHeader, token)

	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"name":          identity.Name,
		"email":         identity.Email,
		"isAdmin":       identity.IsAdmin,
	})
}
