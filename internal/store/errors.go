package store

import "errors"

// ストア共通のエラー
var (
	// ErrUserNotFound はユーザーが見つからなかったことを示します
	ErrUserNotFound = errors.New("user not found")

	// ErrDuplicateEmail は同じメールアドレスのユーザーが既に存在することを示します
	ErrDuplicateEmail = errors.New("email already registered")

	// ErrTokenNotFound は持続ログイントークンが見つからなかったことを示します
	ErrTokenNotFound = errors.New("remember token not found")
)
