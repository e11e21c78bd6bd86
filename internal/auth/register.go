package auth

import (
	"errors"
	"log"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/DoughlasMuthoni/linen-store-sub003/internal/store"
)

// registerForm は登録フォームの送信値です。パスワードは再表示しません。
type registerForm struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string
	Address   string
}

func readRegisterForm(c *gin.Context) registerForm {
	return registerForm{
		FirstName: strings.TrimSpace(c.PostForm("first_name")),
		LastName:  strings.TrimSpace(c.PostForm("last_name")),
		Email:     strings.TrimSpace(c.PostForm("email")),
		Phone:     strings.TrimSpace(c.PostForm("phone")),
		Address:   strings.TrimSpace(c.PostForm("address")),
	}
}

// ShowRegister は GET /auth/register のハンドラーです。
func (m *Manager) ShowRegister(c *gin.Context) {
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

	m.Render(c, http.StatusOK, "register.html", gin.H{
		"CSRFToken": token,
		"Form":      registerForm{},
	})
}

// Register は POST /auth/register のハンドラーです。
// 検証をすべて通過したらアカウントを作成し、そのままログイン状態にします。
func (m *Manager) Register(c *gin.Context) {
	if m.IsAuthenticated(c) {
		m.redirectAuthenticated(c)
		return
	}

	form := readRegisterForm(c)
	password := c.PostForm("password")
	confirm := c.PostForm("confirm_password")
	agreeTerms := c.PostForm("agree_terms") != ""

	// CSRFが通らない限りDBには触れない
	if !m.verifyCSRF(c) {
		m.renderRegister(c, http.StatusForbidden, form, false,
			"Invalid submission. Please try again.")
		return
	}

	var errs []string

	if form.FirstName == "" {
		errs = append(errs, "First name is required.")
	}
	if form.LastName == "" {
		errs = append(errs, "Last name is required.")
	}
	if form.Email == "" {
		errs = append(errs, "Email is required.")
	} else if _, err := mail.ParseAddress(form.Email); err != nil {
		errs = append(errs, "Enter a valid email address.")
	}

	errs = append(errs, PasswordPolicyErrors(password)...)

	if confirm != password {
		errs = append(errs, "Passwords do not match.")
	}
	if !agreeTerms {
		errs = append(errs, "You must accept the terms and conditions.")
	}

	if len(errs) > 0 {
		m.renderRegister(c, http.StatusUnprocessableEntity, form, false, errs...)
		return
	}

	ctx := c.Request.Context()

	// 事前チェックは親切なメッセージのため。同時登録の競合はINSERT時のUNIQUE制約が防ぐ
	if _, err := m.store.GetUserByEmail(ctx, form.Email); err == nil {
		m.renderRegister(c, http.StatusUnprocessableEntity, form, true,
			"This email is already registered.")
		return
	} else if !errors.Is(err, store.ErrUserNotFound) {
		log.Printf("failed to check for existing user: %v", err)
		m.renderRegister(c, http.StatusInternalServerError, form, false,
			"Something went wrong. Please try again.")
		return
	}

	hash, err := m.hasher.Hash(password)
	if err != nil {
		log.Printf("failed to hash password: %v", err)
		m.renderRegister(c, http.StatusInternalServerError, form, false,
			"Something went wrong. Please try again.")
		return
	}

	verification, err := generateToken()
	if err != nil {
		log.Printf("failed to generate verification token: %v", err)
		verification = ""
	}

	now := time.Now().UTC()
	user := &store.User{
		ID:                uuid.NewString(),
		FirstName:         form.FirstName,
		LastName:          form.LastName,
		Email:             form.Email,
		PasswordHash:      hash,
		Phone:             form.Phone,
		Address:           form.Address,
		IsActive:          true,
		IsAdmin:           false,
		VerificationToken: verification,
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	if err := m.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, store.ErrDuplicateEmail) {
			m.renderRegister(c, http.StatusUnprocessableEntity, form, true,
				"This email is already registered.")
			return
		}
		log.Printf("failed to create user: %v", err)
		m.renderRegister(c, http.StatusInternalServerError, form, false,
			"Something went wrong. Please try again.")
		return
	}

	// establish がセッションを消去する前に行き先と昇格マーカーを退避する
	redirect, adminGate := m.consumeRedirectHints(c)

	if err := m.establish(c, user); err != nil {
		log.Printf("failed to establish session: %v", err)
		m.SetFlash(c, FlashSuccess, "Account created. Please log in.")
		c.Redirect(http.StatusSeeOther, "/auth/login")
		return
	}

	target, denied := m.postLoginRedirect(c, user, redirect, adminGate)
	if !denied {
		m.SetFlash(c, FlashSuccess, "Welcome to Linen Store, "+user.FirstName+"!")
	}

	c.Redirect(http.StatusSeeOther, target)
}

// renderRegister は送信値（パスワード以外）を保持したまま登録フォームを再表示します。
// showLoginLink はメール重複時にログインへの導線を出すためのフラグです。
func (m *Manager) renderRegister(c *gin.Context, status int, form registerForm, showLoginLink bool, messages ...string) {
	token, err := m.ensureCSRFToken(c)
	if err != nil {
		log.Printf("failed to issue csrf token: %v", err)
	}

	m.Render(c, status, "register.html", gin.H{
		"CSRFToken":     token,
		"Form":          form,
		"Errors":        messages,
		"ShowLoginLink": showLoginLink,
	})
}
