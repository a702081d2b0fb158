package repomanager

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/notesauth/internal/dbx"
	"github.com/dmitrijs2005/notesauth/internal/server/repositories/accounts"
	"github.com/dmitrijs2005/notesauth/internal/server/repositories/resettokens"
	"github.com/dmitrijs2005/notesauth/internal/server/repositories/roles"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Accounts(db dbx.DBTX) accounts.Repository
	Roles(db dbx.DBTX) roles.Repository
	ResetTokens(db dbx.DBTX) resettokens.Repository
}
