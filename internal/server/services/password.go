package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/notesauth/internal/common"
	"github.com/dmitrijs2005/notesauth/internal/dbx"
	"github.com/dmitrijs2005/notesauth/internal/logging"
	"github.com/dmitrijs2005/notesauth/internal/server/mailer"
	"github.com/dmitrijs2005/notesauth/internal/server/models"
	"github.com/dmitrijs2005/notesauth/internal/server/repositories/repomanager"
	"golang.org/x/crypto/bcrypt"
)

// minPasswordLength applies to passwords set through a reset link.
const minPasswordLength = 8

// dummyHash is compared against when an account has no usable hash, so a
// miss costs the same bcrypt work as a wrong password.
var dummyHash = sync.OnceValue(func() []byte {
	h, _ := bcrypt.GenerateFromPassword([]byte("notesauth-no-such-account"), bcrypt.DefaultCost)
	return h
})

// PasswordService provides local credential operations:
// - Login: verify username/email and password, mint a session token
// - RequestPasswordReset: issue a reset token and mail its link
// - ResetPassword: consume a reset token and store a new password hash
type PasswordService struct {
	db           *sql.DB
	repomanager  repomanager.RepositoryManager
	tokens       *ResetTokenService
	issuer       TokenIssuer
	mailer       mailer.Mailer
	frontendURL  string
	resetTTL     time.Duration
	storeTimeout time.Duration
	logger       logging.Logger

	compare func(hash, password []byte) error
}

func NewPasswordService(db *sql.DB, m repomanager.RepositoryManager, tokens *ResetTokenService, issuer TokenIssuer,
	ml mailer.Mailer, frontendURL string, resetTTL, storeTimeout time.Duration, logger logging.Logger) *PasswordService {
	return &PasswordService{
		db:           db,
		repomanager:  m,
		tokens:       tokens,
		issuer:       issuer,
		mailer:       ml,
		frontendURL:  frontendURL,
		resetTTL:     resetTTL,
		storeTimeout: storeTimeout,
		logger:       logger.With("module", "password"),
		compare:      bcrypt.CompareHashAndPassword,
	}
}

// Login looks the account up by username, or by email when the identifier
// contains '@', and returns a session token. Unknown accounts, wrong
// passwords and accounts that may not sign in all yield
// common.ErrorUnauthorized.
func (s *PasswordService) Login(ctx context.Context, identifier, password string) (string, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return "", common.ErrorUnauthorized
	}

	account, err := s.findAccount(ctx, identifier)
	if err != nil && !errors.Is(err, common.ErrorNotFound) {
		return "", fmt.Errorf("lookup account: %w", err)
	}

	if account == nil || account.PasswordHash == nil {
		_ = s.compare(dummyHash(), []byte(password))
		return "", common.ErrorUnauthorized
	}
	if err := s.compare([]byte(*account.PasswordHash), []byte(password)); err != nil {
		return "", common.ErrorUnauthorized
	}
	if !account.CanSignIn() {
		s.logger.Warn(ctx, "sign-in refused by account flags", "user_id", account.ID)
		return "", common.ErrorUnauthorized
	}

	return s.issuer.Issue(account)
}

// RequestPasswordReset mails a reset link to the owner of email. Unknown
// addresses succeed silently so callers cannot enumerate accounts.
func (s *PasswordService) RequestPasswordReset(ctx context.Context, email string) error {
	email = common.NormalizeEmail(email)
	if email == "" {
		return fmt.Errorf("%w: email is required", common.ErrorValidation)
	}

	var account *models.Account
	err := dbx.WithTimeout(ctx, s.storeTimeout, func(ctx context.Context) error {
		var err error
		account, err = s.repomanager.Accounts(s.db).GetByEmail(ctx, email)
		return err
	})
	if errors.Is(err, common.ErrorNotFound) {
		s.logger.Info(ctx, "password reset requested for unknown email")
		return nil
	}
	if err != nil {
		return fmt.Errorf("lookup account: %w", err)
	}

	token, err := s.tokens.Issue(ctx, account, s.resetTTL)
	if err != nil {
		return err
	}

	link, err := mailer.ResetURL(s.frontendURL, token.Token)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrConfiguration, err)
	}
	if err := s.mailer.SendPasswordReset(ctx, account.Email, link); err != nil {
		return fmt.Errorf("send reset mail: %w", err)
	}
	return nil
}

// ResetPassword consumes token and stores the hash of newPassword in one
// transaction, so a failed update leaves the token usable.
func (s *PasswordService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return fmt.Errorf("%w: password must be at least %d characters", common.ErrorValidation, minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrorValidation, err)
	}

	var userID string
	err = dbx.WithTimeout(ctx, s.storeTimeout, func(ctx context.Context) error {
		return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
			account, err := s.tokens.consume(ctx, tx, token)
			if err != nil {
				return err
			}
			userID = account.ID
			return s.repomanager.Accounts(tx).UpdatePassword(ctx, account.ID, string(hash))
		})
	})
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "password reset", "user_id", userID)
	return nil
}

func (s *PasswordService) findAccount(ctx context.Context, identifier string) (*models.Account, error) {
	var account *models.Account
	err := dbx.WithTimeout(ctx, s.storeTimeout, func(ctx context.Context) error {
		repo := s.repomanager.Accounts(s.db)
		var err error
		account, err = repo.GetByUserName(ctx, identifier)
		if errors.Is(err, common.ErrorNotFound) && strings.Contains(identifier, "@") {
			account, err = repo.GetByEmail(ctx, common.NormalizeEmail(identifier))
		}
		return err
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}
