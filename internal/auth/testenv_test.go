package auth

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/DoughlasMuthoni/linen-store-sub003/internal/config"
	"github.com/DoughlasMuthoni/linen-store-sub003/internal/store"
	"github.com/DoughlasMuthoni/linen-store-sub003/internal/web"
)

// testEnv は本番と同じ配線のルーターとクッキージャーをまとめたテスト用環境です。
type testEnv struct {
	t       *testing.T
	router  *gin.Engine
	store   Store
	mgr     *Manager
	cookies map[string]*http.Cookie
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	st, err := store.Open(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})

	return newTestEnvWith(t, st)
}

func newTestEnvWith(t *testing.T, st Store) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		GinMode:      gin.TestMode,
		BcryptCost:   bcrypt.MinCost,
		CookieSecure: "false",
	}
	mgr := NewManager(cfg, st)

	router := gin.New()
	router.SetHTMLTemplate(web.Templates())

	sessionStore := cookie.NewStore([]byte("test-session-secret"))
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   SessionMaxAgeSeconds(),
		HttpOnly: true,
	})
	router.Use(sessions.Sessions(SessionCookieName, sessionStore))
	router.Use(mgr.RememberMe())

	router.GET("/", func(c *gin.Context) {
		mgr.Render(c, http.StatusOK, "home.html", gin.H{})
	})
	router.GET("/api/session", mgr.SessionInfo)

	authRoutes := router.Group("/auth")
	{
		authRoutes.GET("/login", mgr.ShowLogin)
		authRoutes.POST("/login", mgr.Login)
		authRoutes.GET("/register", mgr.ShowRegister)
		authRoutes.POST("/register", mgr.Register)
		authRoutes.GET("/logout", mgr.RequireLogin(), mgr.ShowLogout)
		authRoutes.POST("/logout", mgr.Logout)
	}

	admin := router.Group("/admin")
	admin.Use(mgr.RequireAdmin())
	{
		admin.GET("", func(c *gin.Context) {
			mgr.Render(c, http.StatusOK, "admin.html", nil)
		})
	}

	return &testEnv{
		t:       t,
		router:  router,
		store:   st,
		mgr:     mgr,
		cookies: make(map[string]*http.Cookie),
	}
}

// do はクッキーを引き継ぎながらリクエストを実行します。
func (e *testEnv) do(method, target string, form url.Values) *httptest.ResponseRecorder {
	e.t.Helper()

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}

	req := httptest.NewRequest(method, target, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for _, ck := range e.cookies {
		req.AddCookie(ck)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)

	for _, ck := range w.Result().Cookies() {
		if ck.MaxAge < 0 {
			delete(e.cookies, ck.Name)
			continue
		}
		e.cookies[ck.Name] = ck
	}

	return w
}

func (e *testEnv) get(target string) *httptest.ResponseRecorder {
	return e.do(http.MethodGet, target, nil)
}

func (e *testEnv) postForm(target string, form url.Values) *httptest.ResponseRecorder {
	return e.do(http.MethodPost, target, form)
}

func (e *testEnv) dropCookie(name string) {
	delete(e.cookies, name)
}

func (e *testEnv) cookieValue(name string) string {
	if ck, ok := e.cookies[name]; ok {
		return ck.Value
	}
	return ""
}

var csrfPattern = regexp.MustCompile(`name="csrf_token" value="([0-9a-f]{64})"`)

// csrfToken はフォームのHTMLから隠しフィールドのCSRFトークンを取り出します。
func csrfToken(t *testing.T, body string) string {
	t.Helper()

	match := csrfPattern.FindStringSubmatch(body)
	if match == nil {
		t.Fatal("csrf token not found in response body")
	}
	return match[1]
}

// seedUser はテスト用ユーザーを作成します。
func (e *testEnv) seedUser(email, password string, active, admin bool) *store.User {
	e.t.Helper()

	hash, err := e.mgr.hasher.Hash(password)
	if err != nil {
		e.t.Fatalf("failed to hash password: %v", err)
	}

	now := time.Now().UTC()
	user := &store.User{
		ID:           uuid.NewString(),
		FirstName:    "Amara",
		LastName:     "Njeri",
		Email:        email,
		PasswordHash: hash,
		IsActive:     active,
		IsAdmin:      admin,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := e.store.CreateUser(context.Background(), user); err != nil {
		e.t.Fatalf("failed to seed user: %v", err)
	}

	return user
}

// login はログインフォームを取得してPOSTする一連の流れを実行します。
func (e *testEnv) login(email, password string, remember bool) *httptest.ResponseRecorder {
	e.t.Helper()

	page := e.get("/auth/login")
	token := csrfToken(e.t, page.Body.String())

	form := url.Values{
		"csrf_token": {token},
		"email":      {email},
		"password":   {password},
	}
	if remember {
		form.Set("remember", "on")
	}

	return e.postForm("/auth/login", form)
}

// logoutQuietly は確認フローを通してログアウトします。
func (e *testEnv) logoutQuietly() {
	e.t.Helper()

	page := e.get("/auth/logout")
	token := csrfToken(e.t, page.Body.String())

	e.postForm("/auth/logout", url.Values{
		"csrf_token":     {token},
		"confirm_logout": {"1"},
	})
}

func responseCookie(w *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, ck := range w.Result().Cookies() {
		if ck.Name == name {
			return ck
		}
	}
	return nil
}
