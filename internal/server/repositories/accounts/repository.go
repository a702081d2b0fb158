// Package accounts declares the server-side repository contract for user
// accounts and its PostgreSQL implementation.
package accounts

import (
	"context"

	"github.com/dmitrijs2005/notesauth/internal/server/models"
)

// Repository defines account persistence. Lookups return
// common.ErrorNotFound when no row matches.
type Repository interface {
	// Create inserts the account and fills in its generated ID and timestamps.
	// A unique-constraint hit (email or username) is returned wrapped so that
	// dbx.UniqueViolation can still recognise it.
	Create(ctx context.Context, account *models.Account) (*models.Account, error)

	GetByEmail(ctx context.Context, email string) (*models.Account, error)
	GetByUserName(ctx context.Context, userName string) (*models.Account, error)
	GetByID(ctx context.Context, id string) (*models.Account, error)

	// UpdatePassword replaces the stored password hash.
	UpdatePassword(ctx context.Context, id string, passwordHash string) error
}
