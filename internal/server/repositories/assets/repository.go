package assets

import (
	"context"

	"github.com/mkraev/atelier/internal/server/models"
)

type Repository interface {
	CreatePending(ctx context.Context, asset *models.Asset) error
	Commit(ctx context.Context, id string, sizeBytes int64, mimeType string, width, height int) error
	GetByID(ctx context.Context, id string) (*models.Asset, error)
	ListByFolder(ctx context.Context, folder string) ([]*models.Asset, error)
	ExistsCommitted(ctx context.Context, id string) (bool, error)
	CountByFolder(ctx context.Context, folder string) (int64, error)
	Rename(ctx context.Context, id, newID, newFileName string) error
	Move(ctx context.Context, id, newID, newFolder string) error
	Delete(ctx context.Context, id string) error
}
