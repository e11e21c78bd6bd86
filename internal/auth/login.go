package auth

import (
	"errors"
	"log"
	"net/http"
	"net/mail"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/DoughlasMuthoni/linen-store-sub003/internal/store"
)

// ShowLogin は GET /auth/login のハンドラーです。
// 認証済みの訪問者は昇格チェックを通した上で即リダイレクトします。
func (m *Manager) ShowLogin(c *gin.Context) {
	if m.IsAuthenticated(c) {
		m.redirectAuthenticated(c)
		return
	}

	token, err := m.ensureCSRFToken(c)
	if err != nil {
		log.Printf("failed to issue csrf token: %v", err)
		c.String(http.StatusInternalServerError, "something went wrong")
		return
	}

	m.Render(c, http.StatusOK, "login.html", gin.H{
		"CSRFToken": token,
		"Email":     "",
		"Remember":  false,
	})
}

// Login は POST /auth/login のハンドラーです。
// CSRF検証 → 入力検証 → 資格情報検証の順で進み、どの失敗もフォームの再表示で回復します。
func (m *Manager) Login(c *gin.Context) {
	if m.IsAuthenticated(c) {
		m.redirectAuthenticated(c)
		return
	}

	email := strings.TrimSpace(c.PostForm("email"))
	password := c.PostForm("password")
	remember := c.PostForm("remember") != ""

	// CSRFが通らない限りDBには触れない
	if !m.verifyCSRF(c) {
		m.renderLogin(c, http.StatusForbidden, email, remember,
			"Invalid submission. Please try again.")
		return
	}

	if msg := validateLoginFields(email, password); msg != "" {
		m.renderLogin(c, http.StatusUnprocessableEntity, email, remember, msg)
		return
	}

	user, err := m.store.GetUserByEmail(c.Request.Context(), email)
	if err != nil {
		if errors.Is(err, store.ErrUserNotFound) {
			// メールアドレスの存在は明かさない
			m.renderLogin(c, http.StatusUnprocessableEntity, email, remember,
				"Invalid email or password.")
			return
		}
		log.Printf("failed to look up user: %v", err)
		m.renderLogin(c, http.StatusInternalServerError, email, remember,
			"Something went wrong. Please try again.")
		return
	}

	if !user.IsActive {
		// 無効化されたアカウントは汎用メッセージと区別する（意図的な情報開示）
		m.renderLogin(c, http.StatusUnprocessableEntity, email, remember,
			"Your account has been deactivated. Please contact support.")
		return
	}

	if !m.hasher.Verify(password, user.PasswordHash) {
		m.renderLogin(c, http.StatusUnprocessableEntity, email, remember,
			"Invalid email or password.")
		return
	}

	// establish がセッションを消去する前に行き先と昇格マーカーを退避する
	redirect, adminGate := m.consumeRedirectHints(c)

	if err := m.establish(c, user); err != nil {
		log.Printf("failed to establish session: %v", err)
		m.renderLogin(c, http.StatusInternalServerError, email, remember,
			"Something went wrong. Please try again.")
		return
	}

	if remember {
		// トークン発行の失敗でログイン自体は妨げない
		if err := m.issueRememberToken(c, user.ID); err != nil {
			log.Printf("failed to issue remember token: %v", err)
		}
	}

	target, denied := m.postLoginRedirect(c, user, redirect, adminGate)
	if !denied {
		m.SetFlash(c, FlashSuccess, "Welcome back, "+user.FirstName+"!")
	}

	c.Redirect(http.StatusSeeOther, target)
}

func validateLoginFields(email, password string) string {
	if email == "" {
		return "Email is required."
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "Enter a valid email address."
	}
	if password == "" {
		return "Password is required."
	}
	return ""
}

// renderLogin は送信値（パスワード以外）を保持したままログインフォームを再表示します。
func (m *Manager) renderLogin(c *gin.Context, status int, email string, remember bool, message string) {
	token, err := m.ensureCSRFToken(c)
	if err != nil {
		log.Printf("failed to issue csrf token: %v", err)
	}

	m.Render(c, status, "login.html", gin.H{
		"CSRFToken": token,
		"Email":     email,
		"Remember":  remember,
		"Errors":    []string{message},
	})
}

// redirectAuthenticated はログイン・登録ページを再訪した認証済みユーザーを送り出します。
// 昇格チェックはセッションのフラグではなく、取得し直したユーザーで行います。
func (m *Manager) redirectAuthenticated(c *gin.Context) {
	identity, _ := m.CurrentIdentity(c)

	user, err := m.store.GetUserByID(c.Request.Context(), identity.UserID)
	if err != nil {
		// 取得できなければ昇格は認めない
		user = &store.User{ID: identity.UserID}
	}

	redirect, adminGate := m.consumeRedirectHints(c)
	target, _ := m.postLoginRedirect(c, user, redirect, adminGate)
	c.Redirect(http.StatusSeeOther, target)
}
