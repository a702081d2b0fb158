package roles

import (
	"context"

	"github.com/dmitrijs2005/notesauth/internal/server/models"
)

type Repository interface {
	GetByName(ctx context.Context, name models.RoleName) (*models.Role, error)
}
