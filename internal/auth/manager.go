// Package auth は認証・認可機能を提供します。
// セッション管理、CSRF保護、パスワード検証、持続ログイン（remember me）をまとめています。
package auth

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"

	"github.com/DoughlasMuthoni/linen-store-sub003/internal/config"
	"github.com/DoughlasMuthoni/linen-store-sub003/internal/store"
)

const (
	SessionCookieName  = "ls_session"
	RememberCookieName = "remember_token"

	sessionKeyUserID    = "user_id"
	sessionKeyEmail     = "email"
	sessionKeyName      = "name"
	sessionKeyAdmin     = "is_admin"
	sessionKeyCSRF      = "csrf_token"
	sessionKeyFlashKind = "flash_kind"
	sessionKeyFlashText = "flash_text"
	sessionKeyRedirect  = "redirect_url"
	sessionKeyAdminGate = "admin_access_requested"

	csrfField  = "csrf_token"
	csrfHeader = "X-CSRF-Token"
)

var (
	maxSessionLifetime = 12 * time.Hour
	rememberTTL        = 30 * 24 * time.Hour
)

// SessionMaxAgeSeconds はセッションクッキーの MaxAge に利用する秒数を返します。
func SessionMaxAgeSeconds() int {
	return int(maxSessionLifetime.Seconds())
}

// Store は認証フローが必要とする永続化操作です。*store.Store が満たします。
type Store interface {
	CreateUser(ctx context.Context, user *store.User) error
	GetUserByEmail(ctx context.Context, email string) (*store.User, error)
	GetUserByID(ctx context.Context, userID string) (*store.User, error)
	UpsertRememberToken(ctx context.Context, token *store.RememberToken) error
	GetRememberToken(ctx context.Context, token string) (*store.RememberToken, error)
	DeleteRememberToken(ctx context.Context, token string) error
}

// Identity はセッションに保持する認証済みユーザーの情報です。
type Identity struct {
	UserID  string
	Email   string
	Name    string
	IsAdmin bool
}

// Manager は認証処理と状態をまとめた構造体です。
type Manager struct {
	cfg    *config.Config
	store  Store
	hasher *Hasher
}

// NewManager は認証マネージャーを作成します。
func NewManager(cfg *config.Config, st Store) *Manager {
	return &Manager{
		cfg:    cfg,
		store:  st,
		hasher: NewHasher(cfg.BcryptCost),
	}
}

// establish は認証成功時にセッションへ識別情報を書き込みます。
// 既存のセッション内容を破棄し、CSRFトークンも作り直すことでセッション固定攻撃を防ぎます。
// ログイン・登録の成功時にのみ呼び出してください。
func (m *Manager) establish(c *gin.Context, user *store.User) error {
	session := sessions.Default(c)

	token, err := generateToken()
	if err != nil {
		return err
	}

	session.Clear()
	session.Set(sessionKeyUserID, user.ID)
	session.Set(sessionKeyEmail, user.Email)
	session.Set(sessionKeyName, user.DisplayName())
	session.Set(sessionKeyAdmin, user.IsAdmin)
	session.Set(sessionKeyCSRF, token)

	return session.Save()
}

// destroy はセッションを全消去し、匿名セッションとして再出発させます。
// 直後にフラッシュメッセージを書けるよう、新しいCSRFトークンを発行します。
func (m *Manager) destroy(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()

	token, err := generateToken()
	if err != nil {
		log.Printf("failed to issue csrf token: %v", err)
		return
	}
	session.Set(sessionKeyCSRF, token)
}

// CurrentIdentity はセッションから認証済みユーザーの情報を取り出します。
func (m *Manager) CurrentIdentity(c *gin.Context) (Identity, bool) {
	session := sessions.Default(c)

	userID, ok := session.Get(sessionKeyUserID).(string)
	if !ok || userID == "" {
		return Identity{}, false
	}

	email, _ := session.Get(sessionKeyEmail).(string)
	name, _ := session.Get(sessionKeyName).(string)
	isAdmin, _ := session.Get(sessionKeyAdmin).(bool)

	return Identity{
		UserID:  userID,
		Email:   email,
		Name:    name,
		IsAdmin: isAdmin,
	}, true
}

// IsAuthenticated はセッションに識別情報があるかどうかを返します。
func (m *Manager) IsAuthenticated(c *gin.Context) bool {
	_, ok := m.CurrentIdentity(c)
	return ok
}

// IsAdmin は認証済みかつ管理者フラグが立っている場合のみ true を返します。
// 未認証の場合はエラーではなく false です。
func (m *Manager) IsAdmin(c *gin.Context) bool {
	identity, ok := m.CurrentIdentity(c)
	return ok && identity.IsAdmin
}

// ensureCSRFToken はセッションにCSRFトークンが無ければ発行して返します。
// フォームを描画するハンドラーが使います。
func (m *Manager) ensureCSRFToken(c *gin.Context) (string, error) {
	session := sessions.Default(c)

	if token, ok := session.Get(sessionKeyCSRF).(string); ok && token != "" {
		return token, nil
	}

	token, err := generateToken()
	if err != nil {
		return "", err
	}

	session.Set(sessionKeyCSRF, token)
	if err := session.Save(); err != nil {
		return "", err
	}

	return token, nil
}

// verifyCSRF は送信されたトークンをセッションの値と定数時間で比較します。
// どちらか一方でも欠けていれば失敗扱いです。DB書き込みより前に必ず呼びます。
func (m *Manager) verifyCSRF(c *gin.Context) bool {
	session := sessions.Default(c)

	expected, ok := session.Get(sessionKeyCSRF).(string)
	if !ok || expected == "" {
		return false
	}

	received := c.PostForm(csrfField)
	if received == "" {
		received = c.GetHeader(csrfHeader)
	}
	if received == "" {
		return false
	}

	return subtle.ConstantTimeCompare([]byte(expected), []byte(received)) == 1
}

// RequireLogin は未認証のリクエストをログインページへ誘導するミドルウェアを返します。
func (m *Manager) RequireLogin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if m.IsAuthenticated(c) {
			c.Next()
			return
		}

		session := sessions.Default(c)
		session.Set(sessionKeyRedirect, c.Request.URL.Path)
		if err := session.Save(); err != nil {
			log.Printf("failed to save session: %v", err)
		}

		c.Redirect(http.StatusSeeOther, "/auth/login")
		c.Abort()
	}
}

// RequireAdmin は管理者専用ページを守るミドルウェアを返します。
// 匿名の訪問者には管理者昇格のマーカーを付けてログインページへ誘導します。
// 認証済みで管理者でない場合はアクセス拒否のフラッシュを出してトップへ戻します。
func (m *Manager) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := m.CurrentIdentity(c)
		if !ok {
			session := sessions.Default(c)
			session.Set(sessionKeyAdminGate, true)
			session.Set(sessionKeyRedirect, c.Request.URL.Path)
			if err := session.Save(); err != nil {
				log.Printf("failed to save session: %v", err)
			}

			c.Redirect(http.StatusSeeOther, "/auth/login")
			c.Abort()
			return
		}

		if !identity.IsAdmin {
			m.SetFlash(c, FlashError, "You do not have permission to access the admin area.")
			c.Redirect(http.StatusSeeOther, "/")
			c.Abort()
			return
		}

		c.Next()
	}
}

// consumeRedirectHints はログイン成功後の行き先と昇格マーカーを読み取り、消去します。
// establish はセッションを全消去するため、必ず establish より前に呼び出して値を退避してください。
func (m *Manager) consumeRedirectHints(c *gin.Context) (redirect string, adminGate bool) {
	session := sessions.Default(c)

	redirect, _ = session.Get(sessionKeyRedirect).(string)
	adminGate, _ = session.Get(sessionKeyAdminGate).(bool)

	session.Delete(sessionKeyRedirect)
	session.Delete(sessionKeyAdminGate)
	if err := session.Save(); err != nil {
		log.Printf("failed to save session: %v", err)
	}

	return redirect, adminGate
}

// postLoginRedirect は認証直後のリダイレクト先を決定します。引数の redirect と
// adminGate には consumeRedirectHints で事前に退避した値を渡します。
// 昇格マーカーが付いていた場合は、取得し直したユーザーの管理者フラグを再確認します。
// 管理者でなければアクセス拒否のフラッシュを残し、公開トップへ戻します。
func (m *Manager) postLoginRedirect(c *gin.Context, user *store.User, redirect string, adminGate bool) (target string, denied bool) {
	if adminGate && !user.IsAdmin {
		m.SetFlash(c, FlashError, "You do not have permission to access the admin area.")
		return "/", true
	}

	if isSafeRedirect(redirect) {
		return redirect, false
	}

	return "/", false
}

// isSafeRedirect はサイト内の絶対パスのみを許可します。
func isSafeRedirect(target string) bool {
	return strings.HasPrefix(target, "/") && !strings.HasPrefix(target, "//")
}

// generateToken は256ビットの乱数を16進文字列で返します。
// CSRFトークンと持続ログイントークンの両方で使います。
func generateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
