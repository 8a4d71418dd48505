package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Kyamuel/shillearnhub-backened/internal/common"
	"github.com/Kyamuel/shillearnhub-backened/internal/db/postgres"
)

type Repository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const userColumns = `id, username, email, phone, first_name, last_name, password_hash,
	otp_secret, otp_valid_until, email_verified, phone_verified, is_admin, is_active,
	created_at, updated_at`

// Create inserts the account inside the caller's transaction, next to
// the wallet row.
func (r *Repository) Create(ctx context.Context, q postgres.Querier, u *User) error {
	err := q.QueryRow(ctx, `
		INSERT INTO users (username, email, phone, first_name, last_name, password_hash, otp_secret)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`, u.Username, u.Email, u.Phone, u.FirstName, u.LastName, u.PasswordHash, u.OTPSecret).
		Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, userID int64) (*User, error) {
	return r.getBy(ctx, "id = $1", userID)
}

func (r *Repository) GetByUsername(ctx context.Context, username string) (*User, error) {
	return r.getBy(ctx, "username = $1", username)
}

func (r *Repository) GetByEmail(ctx context.Context, email string) (*User, error) {
	return r.getBy(ctx, "email = $1", email)
}

func (r *Repository) GetByPhone(ctx context.Context, phone string) (*User, error) {
	return r.getBy(ctx, "phone = $1", phone)
}

func (r *Repository) getBy(ctx context.Context, where string, arg any) (*User, error) {
	var u User
	err := r.db.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE `+where, arg,
	).Scan(
		&u.ID, &u.Username, &u.Email, &u.Phone, &u.FirstName, &u.LastName, &u.PasswordHash,
		&u.OTPSecret, &u.OTPValidUntil, &u.EmailVerified, &u.PhoneVerified, &u.IsAdmin, &u.IsActive,
		&u.CreatedAt, &u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrUserNotFound
		}
		return nil, fmt.Errorf("read user: %w", err)
	}
	return &u, nil
}

// IDByUsername resolves a referral code. Returns 0 when no account
// carries the username.
func (r *Repository) IDByUsername(ctx context.Context, username string) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx, `SELECT id FROM users WHERE username = $1`, username).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("resolve username: %w", err)
	}
	return id, nil
}

func (r *Repository) UsernameByID(ctx context.Context, userID int64) (string, error) {
	var username string
	err := r.db.QueryRow(ctx, `SELECT username FROM users WHERE id = $1`, userID).Scan(&username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", common.ErrUserNotFound
		}
		return "", fmt.Errorf("read username: %w", err)
	}
	return username, nil
}

func (r *Repository) PhoneByID(ctx context.Context, userID int64) (string, error) {
	var phone string
	err := r.db.QueryRow(ctx, `SELECT phone FROM users WHERE id = $1`, userID).Scan(&phone)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", common.ErrUserNotFound
		}
		return "", fmt.Errorf("read phone: %w", err)
	}
	return phone, nil
}

// SetOTPWindow stamps the deadline for the current one-time code.
func (r *Repository) SetOTPWindow(ctx context.Context, userID int64, until time.Time) error {
	_, err := r.db.Exec(ctx,
		`UPDATE users SET otp_valid_until = $2 WHERE id = $1`, userID, until)
	if err != nil {
		return fmt.Errorf("set otp window: %w", err)
	}
	return nil
}

// MarkVerified flags both contact channels after a successful code check.
func (r *Repository) MarkVerified(ctx context.Context, userID int64) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users SET email_verified = TRUE, phone_verified = TRUE, updated_at = NOW()
		WHERE id = $1
	`, userID)
	if err != nil {
		return fmt.Errorf("mark verified: %w", err)
	}
	return nil
}

func (r *Repository) UpdatePassword(ctx context.Context, userID int64, passwordHash string) error {
	_, err := r.db.Exec(ctx,
		`UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`,
		userID, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	return nil
}

// SetActive enables or disables an account (admin surface).
func (r *Repository) SetActive(ctx context.Context, userID int64, active bool) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE users SET is_active = $2, updated_at = NOW() WHERE id = $1`, userID, active)
	if err != nil {
		return fmt.Errorf("set active: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return common.ErrUserNotFound
	}
	return nil
}

// List returns accounts for the admin panel, newest first.
func (r *Repository) List(ctx context.Context, limit, offset int) ([]*User, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+userColumns+` FROM users ORDER BY created_at DESC LIMIT $1 OFFSET $2`,
		limit, offset)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	var out []*User
	for rows.Next() {
		var u User
		if err := rows.Scan(
			&u.ID, &u.Username, &u.Email, &u.Phone, &u.FirstName, &u.LastName, &u.PasswordHash,
			&u.OTPSecret, &u.OTPValidUntil, &u.EmailVerified, &u.PhoneVerified, &u.IsAdmin, &u.IsActive,
			&u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		out = append(out, &u)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("read users: %w", err)
	}
	return out, nil
}
