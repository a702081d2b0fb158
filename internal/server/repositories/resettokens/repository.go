package resettokens

import (
	"context"
	"time"

	"github.com/dmitrijs2005/notesauth/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, userID string, token string, expiry time.Time) (*models.ResetToken, error)
	Find(ctx context.Context, token string) (*models.ResetToken, error)
	MarkUsed(ctx context.Context, token string, now time.Time) (string, error)

	DeleteExpired(ctx context.Context, now time.Time) (int64, error)
	DeleteUsed(ctx context.Context) (int64, error)
	DeleteExpiredOrUsed(ctx context.Context, now time.Time) (int64, error)

	CountExpired(ctx context.Context, now time.Time) (int64, error)
	CountUsed(ctx context.Context) (int64, error)
	CountTotal(ctx context.Context) (int64, error)
}
