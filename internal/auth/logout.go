package auth

import (
	"log"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"
)

// ShowLogout は GET /auth/logout のハンドラーです。確認ページを表示します。
// RequireLogin ミドルウェアの背後に置くことを想定しています。
func (m *Manager) ShowLogout(c *gin.Context) {
	identity, ok := m.CurrentIdentity(c)
	if !ok {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	token, err := m.ensureCSRFToken(c)
	if err != nil {
		log.Printf("failed to issue csrf token: %v", err)
		c.String(http.StatusInternalServerError, "something went wrong")
		return
	}

	m.Render(c, http.StatusOK, "logout.html", gin.H{
		"CSRFToken": token,
		"Name":      identity.Name,
	})
}

// Logout は POST /auth/logout のハンドラーです。
// confirm_logout=1 の明示的な確認がある場合のみログアウトを実行します。
// 持続ログイントークンの削除に失敗してもクッキーとセッションは必ず消します。
func (m *Manager) Logout(c *gin.Context) {
	identity, ok := m.CurrentIdentity(c)
	if !ok {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	if !m.verifyCSRF(c) {
		token, err := m.ensureCSRFToken(c)
		if err != nil {
			log.Printf("failed to issue csrf token: %v", err)
		}
		m.Render(c, http.StatusForbidden, "logout.html", gin.H{
			"CSRFToken": token,
			"Name":      identity.Name,
			"Errors":    []string{"Invalid submission. Please try again."},
		})
		return
	}

	if c.PostForm("confirm_logout") != "1" {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}

	m.revokeRememberToken(c)

	m.destroy(c)
	m.SetFlash(c, FlashInfo, "You have been signed out. See you soon!")

	c.Redirect(http.StatusSeeOther, "/?logout_success=1&user="+url.QueryEscape(identity.Name))
}
