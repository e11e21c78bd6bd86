package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// RememberToken は持続ログイントークンのレコードです。
// user_id が主キーのため、1ユーザーにつき有効なトークンは常に1つです。
type RememberToken struct {
	UserID    string
	Token     string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// UpsertRememberToken はトークンを保存します。
// 同じユーザーの既存トークンがあれば置き換えます。
func (s *Store) UpsertRememberToken(ctx context.Context, token *RememberToken) error {
	query := `
		INSERT INTO user_tokens (user_id, token, expires_at, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			token      = excluded.token,
			expires_at = excluded.expires_at
	`

	_, err := s.db.ExecContext(ctx, query,
		token.UserID,
		token.Token,
		token.ExpiresAt,
		token.CreatedAt,
	)

	if err != nil {
		return fmt.Errorf("failed to save remember token: %w", err)
	}

	return nil
}

// GetRememberToken はトークン値でレコードを検索します。
func (s *Store) GetRememberToken(ctx context.Context, token string) (*RememberToken, error) {
	query := `
		SELECT user_id, token, expires_at, created_at
		FROM user_tokens
		WHERE token = ?
	`

	rememberToken := &RememberToken{}

	err := s.db.QueryRowContext(ctx, query, token).Scan(
		&rememberToken.UserID,
		&rememberToken.Token,
		&rememberToken.ExpiresAt,
		&rememberToken.CreatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrTokenNotFound
		}
		return nil, fmt.Errorf("failed to get remember token: %w", err)
	}

	return rememberToken, nil
}

// DeleteRememberToken はトークン値でレコードを削除します。
func (s *Store) DeleteRememberToken(ctx context.Context, token string) error {
	query := `DELETE FROM user_tokens WHERE token = ?`

	result, err := s.db.ExecContext(ctx, query, token)
	if err != nil {
		return fmt.Errorf("failed to delete remember token: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return ErrTokenNotFound
	}

	return nil
}

// DeleteExpiredRememberTokens は期限切れトークンをまとめて削除します。
func (s *Store) DeleteExpiredRememberTokens(ctx context.Context, now time.Time) (int, error) {
	query := `DELETE FROM user_tokens WHERE expires_at < ?`

	result, err := s.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired tokens: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}

	return int(rows), nil
}
