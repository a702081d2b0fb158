// Package services contains server-side business logic: account
// provisioning for federated sign-ins, session issuance, password reset
// tokens and their scheduled cleanup.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/notesauth/internal/common"
	"github.com/dmitrijs2005/notesauth/internal/dbx"
	"github.com/dmitrijs2005/notesauth/internal/logging"
	"github.com/dmitrijs2005/notesauth/internal/server/models"
	"github.com/dmitrijs2005/notesauth/internal/server/repositories/repomanager"
)

// IdentityResolver maps a verified identity assertion to exactly one
// persisted account, creating it on first sight.
type IdentityResolver struct {
	db           *sql.DB
	repomanager  repomanager.RepositoryManager
	defaultRole  models.Role
	storeTimeout time.Duration
	logger       logging.Logger
}

// NewIdentityResolver loads the default role once. A missing role row is a
// deployment problem and fails with common.ErrConfiguration.
func NewIdentityResolver(ctx context.Context, db *sql.DB, m repomanager.RepositoryManager,
	defaultRole models.RoleName, storeTimeout time.Duration, logger logging.Logger) (*IdentityResolver, error) {

	var role *models.Role
	err := dbx.WithTimeout(ctx, storeTimeout, func(ctx context.Context) error {
		var err error
		role, err = m.Roles(db).GetByName(ctx, defaultRole)
		return err
	})
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, fmt.Errorf("%w: default role %q does not exist", common.ErrConfiguration, defaultRole)
		}
		return nil, fmt.Errorf("load default role: %w", err)
	}

	return &IdentityResolver{
		db:           db,
		repomanager:  m,
		defaultRole:  *role,
		storeTimeout: storeTimeout,
		logger:       logger.With("module", "identity"),
	}, nil
}

// Resolve returns the account owning the assertion's email. Concurrent first
// logins for one email converge on the same row: the loser of the insert race
// re-reads the winner's account.
func (r *IdentityResolver) Resolve(ctx context.Context, a models.Assertion) (*models.Account, error) {
	email := common.NormalizeEmail(a.Email)
	if email == "" {
		return nil, fmt.Errorf("%w: email is required", common.ErrInvalidAssertion)
	}

	existing, err := r.findByEmail(ctx, email)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("lookup account: %w", err)
	}

	userName := DeriveUserName(a.Provider, a.Login, email)
	if userName == "" {
		return nil, fmt.Errorf("%w: cannot derive a username", common.ErrInvalidAssertion)
	}

	account := &models.Account{
		UserName:     userName,
		Email:        email,
		Role:         r.defaultRole,
		SignUpMethod: strings.ToLower(a.Provider),
	}

	var created *models.Account
	err = dbx.WithTimeout(ctx, r.storeTimeout, func(ctx context.Context) error {
		var err error
		created, err = r.repomanager.Accounts(r.db).Create(ctx, account)
		return err
	})
	if err == nil {
		r.logger.Info(ctx, "account provisioned", "user_id", created.ID, "provider", created.SignUpMethod)
		return created, nil
	}

	constraint, dup := dbx.UniqueViolation(err)
	if !dup {
		return nil, fmt.Errorf("create account: %w", err)
	}

	existing, err = r.findByEmail(ctx, email)
	if errors.Is(err, common.ErrorNotFound) {
		r.logger.Warn(ctx, "username collision on sign-up", "username", userName, "constraint", constraint)
		return nil, fmt.Errorf("%w: username %q is taken", common.ErrAccountConflict, userName)
	}
	if err != nil {
		return nil, fmt.Errorf("lookup account after conflict: %w", err)
	}
	return existing, nil
}

func (r *IdentityResolver) findByEmail(ctx context.Context, email string) (*models.Account, error) {
	var account *models.Account
	err := dbx.WithTimeout(ctx, r.storeTimeout, func(ctx context.Context) error {
		var err error
		account, err = r.repomanager.Accounts(r.db).GetByEmail(ctx, email)
		return err
	})
	return account, err
}

// DeriveUserName picks the username for a new account. GitHub accounts use
// their login handle, Google accounts the local part of the email, and other
// providers the handle when one is given.
func DeriveUserName(provider, login, email string) string {
	local, _, _ := strings.Cut(email, "@")
	login = strings.TrimSpace(login)

	switch strings.ToLower(provider) {
	case models.ProviderGoogle:
		return local
	case models.ProviderGitHub:
		if login != "" {
			return login
		}
		return local
	default:
		if login != "" {
			return login
		}
		return local
	}
}
