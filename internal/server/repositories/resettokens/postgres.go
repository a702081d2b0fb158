// Package resettokens provides a PostgreSQL-backed repository for
// single-use password reset tokens.
package resettokens

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/notesauth/internal/common"
	"github.com/dmitrijs2005/notesauth/internal/dbx"
	"github.com/dmitrijs2005/notesauth/internal/server/models"
)

// PostgresRepository implements Repository over dbx.DBTX
// (satisfied by *sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts an unused token for userID expiring at expiry.
func (r *PostgresRepository) Create(ctx context.Context, userID string, token string, expiry time.Time) (*models.ResetToken, error) {
	query := `
		INSERT INTO password_reset_tokens (token, user_id, expiry_date, used)
		VALUES ($1, $2, $3, FALSE)
		RETURNING id, created_at
	`
	t := &models.ResetToken{Token: token, UserID: userID, ExpiryDate: expiry}
	if err := r.db.QueryRowContext(ctx, query, token, userID, expiry).Scan(&t.ID, &t.CreatedAt); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

// Find returns the token row for the given value.
// If not found, it returns common.ErrorNotFound.
func (r *PostgresRepository) Find(ctx context.Context, token string) (*models.ResetToken, error) {
	query := `
		SELECT id, token, user_id, expiry_date, used, created_at
		FROM password_reset_tokens
		WHERE token = $1
	`
	t := &models.ResetToken{}
	err := r.db.QueryRowContext(ctx, query, token).Scan(&t.ID, &t.Token, &t.UserID, &t.ExpiryDate, &t.Used, &t.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return t, nil
}

// MarkUsed flips used to true for a token that is unused and not expired at
// now, in a single statement, and returns the owning user id. When no row
// qualifies it returns common.ErrorNotFound; the caller decides why.
func (r *PostgresRepository) MarkUsed(ctx context.Context, token string, now time.Time) (string, error) {
	query := `
		UPDATE password_reset_tokens
		SET used = TRUE
		WHERE token = $1 AND used = FALSE AND expiry_date > $2
		RETURNING user_id
	`
	var userID string
	if err := r.db.QueryRowContext(ctx, query, token, now).Scan(&userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", common.ErrorNotFound
		}
		return "", fmt.Errorf("db error: %w", err)
	}
	return userID, nil
}

// DeleteExpired removes tokens with expiry_date < now.
func (r *PostgresRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return r.exec(ctx, `DELETE FROM password_reset_tokens WHERE expiry_date < $1`, now)
}

// DeleteUsed removes consumed tokens.
func (r *PostgresRepository) DeleteUsed(ctx context.Context) (int64, error) {
	return r.exec(ctx, `DELETE FROM password_reset_tokens WHERE used = TRUE`)
}

// DeleteExpiredOrUsed removes, in one pass, every row that DeleteExpired or
// DeleteUsed would remove at the same now.
func (r *PostgresRepository) DeleteExpiredOrUsed(ctx context.Context, now time.Time) (int64, error) {
	return r.exec(ctx, `DELETE FROM password_reset_tokens WHERE expiry_date < $1 OR used = TRUE`, now)
}

func (r *PostgresRepository) CountExpired(ctx context.Context, now time.Time) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM password_reset_tokens WHERE expiry_date < $1`, now)
}

func (r *PostgresRepository) CountUsed(ctx context.Context) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM password_reset_tokens WHERE used = TRUE`)
}

func (r *PostgresRepository) CountTotal(ctx context.Context) (int64, error) {
	return r.count(ctx, `SELECT COUNT(*) FROM password_reset_tokens`)
}

func (r *PostgresRepository) exec(ctx context.Context, query string, args ...any) (int64, error) {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) count(ctx context.Context, query string, args ...any) (int64, error) {
	var n int64
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	return n, nil
}
