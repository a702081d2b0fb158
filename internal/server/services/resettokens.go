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
	"github.com/google/uuid"
)

// ResetTokenService owns the lifecycle of password reset tokens: issue,
// single-use consumption, bulk removal and counting.
type ResetTokenService struct {
	db           *sql.DB
	repomanager  repomanager.RepositoryManager
	storeTimeout time.Duration
	logger       logging.Logger

	now      func() time.Time
	newToken func() string
}

func NewResetTokenService(db *sql.DB, m repomanager.RepositoryManager, storeTimeout time.Duration, logger logging.Logger) *ResetTokenService {
	return &ResetTokenService{
		db:           db,
		repomanager:  m,
		storeTimeout: storeTimeout,
		logger:       logger.With("module", "reset_tokens"),
		now:          time.Now,
		newToken:     uuid.NewString,
	}
}

// Issue stores a fresh unused token for account expiring ttl from now.
// A non-positive ttl yields a token that is already expired.
func (s *ResetTokenService) Issue(ctx context.Context, account *models.Account, ttl time.Duration) (*models.ResetToken, error) {
	if account == nil || account.ID == "" {
		return nil, fmt.Errorf("%w: account is required", common.ErrorValidation)
	}

	value := s.newToken()
	expiry := s.now().Add(ttl)

	var token *models.ResetToken
	err := dbx.WithTimeout(ctx, s.storeTimeout, func(ctx context.Context) error {
		var err error
		token, err = s.repomanager.ResetTokens(s.db).Create(ctx, account.ID, value, expiry)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("create reset token: %w", err)
	}
	return token, nil
}

// ValidateAndConsume marks the token used and returns its owner. At most one
// caller ever succeeds for a given value. Failures are common.ErrorNotFound,
// common.ErrTokenExpired (regardless of the used flag) or
// common.ErrTokenAlreadyUsed.
func (s *ResetTokenService) ValidateAndConsume(ctx context.Context, value string) (*models.Account, error) {
	var account *models.Account
	err := dbx.WithTimeout(ctx, s.storeTimeout, func(ctx context.Context) error {
		var err error
		account, err = s.consume(ctx, s.db, value)
		return err
	})
	if err != nil {
		return nil, err
	}
	return account, nil
}

// consume runs against db so callers can include it in a transaction.
func (s *ResetTokenService) consume(ctx context.Context, db dbx.DBTX, value string) (*models.Account, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, common.ErrorNotFound
	}

	tokens := s.repomanager.ResetTokens(db)
	now := s.now()

	userID, err := tokens.MarkUsed(ctx, value, now)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, s.diagnose(ctx, db, value, now)
	}
	if err != nil {
		return nil, fmt.Errorf("consume reset token: %w", err)
	}

	account, err := s.repomanager.Accounts(db).GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load token owner: %w", err)
	}
	return account, nil
}

// diagnose explains why MarkUsed matched nothing. It never writes.
func (s *ResetTokenService) diagnose(ctx context.Context, db dbx.DBTX, value string, now time.Time) error {
	t, err := s.repomanager.ResetTokens(db).Find(ctx, value)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return common.ErrorNotFound
		}
		return fmt.Errorf("find reset token: %w", err)
	}

	switch {
	case !now.Before(t.ExpiryDate):
		return common.ErrTokenExpired
	case t.Used:
		return common.ErrTokenAlreadyUsed
	default:
		// Inserted after the update ran; it did not exist for this attempt.
		return common.ErrorNotFound
	}
}

func (s *ResetTokenService) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return s.withCount(ctx, func(ctx context.Context) (int64, error) {
		return s.repomanager.ResetTokens(s.db).DeleteExpired(ctx, now)
	})
}

func (s *ResetTokenService) DeleteUsed(ctx context.Context) (int64, error) {
	return s.withCount(ctx, func(ctx context.Context) (int64, error) {
		return s.repomanager.ResetTokens(s.db).DeleteUsed(ctx)
	})
}

// DeleteExpiredOrUsed removes expired and used tokens in a single statement.
func (s *ResetTokenService) DeleteExpiredOrUsed(ctx context.Context, now time.Time) (int64, error) {
	return s.withCount(ctx, func(ctx context.Context) (int64, error) {
		return s.repomanager.ResetTokens(s.db).DeleteExpiredOrUsed(ctx, now)
	})
}

func (s *ResetTokenService) CountExpired(ctx context.Context, now time.Time) (int64, error) {
	return s.withCount(ctx, func(ctx context.Context) (int64, error) {
		return s.repomanager.ResetTokens(s.db).CountExpired(ctx, now)
	})
}

func (s *ResetTokenService) CountUsed(ctx context.Context) (int64, error) {
	return s.withCount(ctx, func(ctx context.Context) (int64, error) {
		return s.repomanager.ResetTokens(s.db).CountUsed(ctx)
	})
}

func (s *ResetTokenService) CountTotal(ctx context.Context) (int64, error) {
	return s.withCount(ctx, func(ctx context.Context) (int64, error) {
		return s.repomanager.ResetTokens(s.db).CountTotal(ctx)
	})
}

func (s *ResetTokenService) withCount(ctx context.Context, fn func(ctx context.Context) (int64, error)) (int64, error) {
	var n int64
	err := dbx.WithTimeout(ctx, s.storeTimeout, func(ctx context.Context) error {
		var err error
		n, err = fn(ctx)
		return err
	})
	return n, err
}
