package accounts

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/notesauth/internal/common"
	"github.com/dmitrijs2005/notesauth/internal/dbx"
	"github.com/dmitrijs2005/notesauth/internal/server/models"
)

const selectAccount = `SELECT u.user_id, u.username, u.email, u.password, u.role_id, r.role_name,
		u.sign_up_method, u.account_non_locked, u.account_non_expired,
		u.credentials_non_expired, u.enabled, u.two_factor_enabled,
		u.created_at, u.updated_at
	FROM users u
	JOIN roles r ON r.role_id = u.role_id
	`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, account *models.Account) (*models.Account, error) {

	query :=
		`INSERT INTO users (username, email, password, role_id, sign_up_method)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING user_id, created_at, updated_at
		 `

	var password sql.NullString
	if account.PasswordHash != nil {
		password = sql.NullString{String: *account.PasswordHash, Valid: true}
	}

	err := r.db.QueryRowContext(ctx, query,
		account.UserName, account.Email, password, account.Role.ID, account.SignUpMethod,
	).Scan(&account.ID, &account.CreatedAt, &account.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	account.AccountNonLocked = true
	account.AccountNonExpired = true
	account.CredentialsNonExpired = true
	account.Enabled = true

	return account, nil
}

func (r *PostgresRepository) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	return r.getOne(ctx, selectAccount+`WHERE u.email = $1`, email)
}

func (r *PostgresRepository) GetByUserName(ctx context.Context, userName string) (*models.Account, error) {
	return r.getOne(ctx, selectAccount+`WHERE u.username = $1`, userName)
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Account, error) {
	return r.getOne(ctx, selectAccount+`WHERE u.user_id = $1`, id)
}

func (r *PostgresRepository) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	query :=
		`UPDATE users SET password = $1, credentials_non_expired = TRUE, updated_at = now()
		 WHERE user_id = $2
		 `

	res, err := r.db.ExecContext(ctx, query, passwordHash, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if n == 0 {
		return common.ErrorNotFound
	}

	return nil
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*models.Account, error) {
	a := &models.Account{}
	var password sql.NullString

	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&a.ID, &a.UserName, &a.Email, &password, &a.Role.ID, &a.Role.Name,
		&a.SignUpMethod, &a.AccountNonLocked, &a.AccountNonExpired,
		&a.CredentialsNonExpired, &a.Enabled, &a.TwoFactorEnabled,
		&a.CreatedAt, &a.UpdatedAt,
	)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	if password.Valid {
		a.PasswordHash = &password.String
	}

	return a, nil
}
