package auth

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/DoughlasMuthoni/linen-store-sub003/internal/store"
)

// issueRememberToken は持続ログイントークンを発行します。
// 256ビットの乱数をユーザーIDをキーに保存し（既存トークンは置き換え）、
// 有効期限30日のHTTP-onlyクッキーとして設定します。
func (m *Manager) issueRememberToken(c *gin.Context, userID string) error {
	token, err := generateToken()
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	expiresAt := now.Add(rememberTTL)

	err = m.store.UpsertRememberToken(c.Request.Context(), &store.RememberToken{
		UserID:    userID,
		Token:     token,
		ExpiresAt: expiresAt,
		CreatedAt: now,
	})
	if err != nil {
		return err
	}

	http.SetCookie(c.Writer, &http.Cookie{
		Name:     RememberCookieName,
		Value:    token,
		Path:     "/",
		Expires:  expiresAt,
		MaxAge:   int(rememberTTL.Seconds()),
		HttpOnly: true,
		Secure:   m.shouldUseSecureCookie(c.Request),
		SameSite: http.SameSiteLaxMode,
	})

	return nil
}

// revokeRememberToken はクッキーのトークンをサーバー側から削除し、クッキーを消します。
// トークンが見つからないのは成功扱いです。削除クエリの失敗はログに残すだけで、
// ユーザーから見たログアウトは常に成功します。
func (m *Manager) revokeRememberToken(c *gin.Context) {
	defer m.clearRememberCookie(c)

	cookie, err := c.Request.Cookie(RememberCookieName)
	if err != nil || cookie.Value == "" {
		return
	}

	if err := m.store.DeleteRememberToken(c.Request.Context(), cookie.Value); err != nil {
		if !errors.Is(err, store.ErrTokenNotFound) {
			log.Printf("failed to delete remember token: %v", err)
		}
	}
}

func (m *Manager) clearRememberCookie(c *gin.Context) {
	http.SetCookie(c.Writer, &http.Cookie{
		Name:     RememberCookieName,
		Value:    "",
		Path:     "/",
		Expires:  time.Unix(0, 0),
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   m.shouldUseSecureCookie(c.Request),
		SameSite: http.SameSiteLaxMode,
	})
}

// RememberMe は remember_token クッキーによる自動ログインのミドルウェアを返します。
// 有効期限内のトークンが有効なアカウントを指していれば、パスワードログインと同じ手順で
// セッションを確立します。無効なトークンはクッキーごと破棄します。
// 自動ログインで管理者昇格マーカーが満たされることはありません。
func (m *Manager) RememberMe() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.IsAuthenticated(c) {
			c.Next()
			return
		}

		cookie, err := c.Request.Cookie(RememberCookieName)
		if err != nil || cookie.Value == "" {
			c.Next()
			return
		}

		ctx := c.Request.Context()

		token, err := m.store.GetRememberToken(ctx, cookie.Value)
		if err != nil {
			if !errors.Is(err, store.ErrTokenNotFound) {
				log.Printf("failed to look up remember token: %v", err)
			}
			m.clearRememberCookie(c)
			c.Next()
			return
		}

		if time.Now().After(token.ExpiresAt) {
			if err := m.store.DeleteRememberToken(ctx, token.Token); err != nil && !errors.Is(err, store.ErrTokenNotFound) {
				log.Printf("failed to delete expired remember token: %v", err)
			}
			m.clearRememberCookie(c)
			c.Next()
			return
		}

		user, err := m.store.GetUserByID(ctx, token.UserID)
		if err != nil || !user.IsActive {
			m.clearRememberCookie(c)
			c.Next()
			return
		}

		if err := m.establish(c, user); err != nil {
			log.Printf("failed to establish session from remember token: %v", err)
		}

		c.Next()
	}
}

// shouldUseSecureCookie は remember_token クッキーに Secure 属性を付けるか判定します。
// 設定で明示されていなければ、TLS終端の有無をリクエストから検出します。
func (m *Manager) shouldUseSecureCookie(r *http.Request) bool {
	switch m.cfg.CookieSecure {
	case "true":
		return true
	case "false":
		return false
	}
	if r.TLS != nil {
		return true
	}
	return strings.EqualFold(strings.TrimSpace(r.Header.Get("X-Forwarded-Proto")), "https")
}
