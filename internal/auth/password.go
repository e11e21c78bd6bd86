package auth

import (
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// Hasher はbcryptによるパスワードのハッシュ化と検証を行います。
// コストはテストで下げられるよう注入可能にしています（既定は12、検証はおよそ250ms以内）。
type Hasher struct {
	cost int
}

// NewHasher はハッシャーを作成します。範囲外のコストは既定値に丸めます。
func NewHasher(cost int) *Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &Hasher{cost: cost}
}

// Hash は平文パスワードをソルト付きでハッシュ化します。
func (h *Hasher) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// Verify は平文がハッシュと一致する場合に true を返します。
func (h *Hasher) Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}

// PasswordPolicyErrors は登録時のパスワード要件を検査し、違反ごとのメッセージを返します。
// 要件: 8文字以上、大文字・小文字・数字を各1文字以上。
func PasswordPolicyErrors(password string) []string {
	var errs []string

	if len(password) < 8 {
		errs = append(errs, "Password must be at least 8 characters long.")
	}

	var hasUpper, hasLower, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsUpper(r):
			hasUpper = true
		case unicode.IsLower(r):
			hasLower = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}

	if !hasUpper {
		errs = append(errs, "Password must contain at least one uppercase letter.")
	}
	if !hasLower {
		errs = append(errs, "Password must contain at least one lowercase letter.")
	}
	if !hasDigit {
		errs = append(errs, "Password must contain at least one digit.")
	}

	return errs
}
