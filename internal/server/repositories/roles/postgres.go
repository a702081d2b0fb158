// Package roles reads the seeded roles table.
package roles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/notesauth/internal/common"
	"github.com/dmitrijs2005/notesauth/internal/dbx"
	"github.com/dmitrijs2005/notesauth/internal/server/models"
)

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetByName returns common.ErrorNotFound when no role row carries name.
func (r *PostgresRepository) GetByName(ctx context.Context, name models.RoleName) (*models.Role, error) {
	query := `SELECT role_id, role_name FROM roles WHERE role_name = $1`

	role := &models.Role{}
	if err := r.db.QueryRowContext(ctx, query, string(name)).Scan(&role.ID, &role.Name); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return role, nil
}
