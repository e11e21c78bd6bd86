package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

// User はストアのユーザーレコードです。
type User struct {
	ID                string
	FirstName         string
	LastName          string
	Email             string
	PasswordHash      string
	Phone             string
	Address           string
	IsActive          bool
	IsAdmin           bool
	VerificationToken string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// DisplayName は画面表示用の氏名を返します。
func (u *User) DisplayName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// CreateUser はユーザーを作成します。
// メールアドレスが既に使われている場合は ErrDuplicateEmail を返します。
// UNIQUE制約が正であり、ハンドラー側の事前チェックは親切なメッセージのための最適化です。
func (s *Store) CreateUser(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (id, first_name, last_name, email, password_hash,
			phone, address, is_active, is_admin, verification_token, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.ExecContext(ctx, query,
		user.ID,
		user.FirstName,
		user.LastName,
		user.Email,
		user.PasswordHash,
		nullableString(user.Phone),
		nullableString(user.Address),
		user.IsActive,
		user.IsAdmin,
		nullableString(user.VerificationToken),
		user.CreatedAt,
		user.UpdatedAt,
	)

	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: users.email") {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}

	return nil
}

const userColumns = `id, first_name, last_name, email, password_hash,
	phone, address, is_active, is_admin, verification_token, created_at, updated_at`

// GetUserByEmail はメールアドレスでユーザーを検索します（大文字小文字を区別しません）。
func (s *Store) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = ?`
	return s.scanUser(s.db.QueryRowContext(ctx, query, email))
}

// GetUserByID はIDでユーザーを検索します。
func (s *Store) GetUserByID(ctx context.Context, userID string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return s.scanUser(s.db.QueryRowContext(ctx, query, userID))
}

func (s *Store) scanUser(row *sql.Row) (*User, error) {
	user := &User{}
	var phone, address, verification sql.NullString

	err := row.Scan(
		&user.ID,
		&user.FirstName,
		&user.LastName,
		&user.Email,
		&user.PasswordHash,
		&phone,
		&address,
		&user.IsActive,
		&user.IsAdmin,
		&verification,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	user.Phone = phone.String
	user.Address = address.String
	user.VerificationToken = verification.String

	return user, nil
}

// SetUserActive はアカウントの有効フラグを更新します。
func (s *Store) SetUserActive(ctx context.Context, userID string, active bool) error {
	query := `UPDATE users SET is_active = ?, updated_at = ? WHERE id = ?`

	result, err := s.db.ExecContext(ctx, query, active, time.Now().UTC(), userID)
	if err != nil {
		return fmt.Errorf("failed to update active flag: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}

	if rows == 0 {
		return ErrUserNotFound
	}

	return nil
}

func nullableString(s string) any {
	if s == "" {
		return nil
	}
	return s
}
