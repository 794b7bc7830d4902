package repomanager

import (
	"context"
	"database/sql"

	"github.com/mkraev/atelier/internal/dbx"
	"github.com/mkraev/atelier/internal/server/repositories/assets"
	"github.com/mkraev/atelier/internal/server/repositories/folders"
	"github.com/mkraev/atelier/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Assets(db dbx.DBTX) assets.Repository
	Folders(db dbx.DBTX) folders.Repository
}
