package folders

import (
	"context"

	"github.com/mkraev/atelier/internal/server/models"
)

type Repository interface {
	CreateIfAbsent(ctx context.Context, folder *models.Folder) error
	GetBySlug(ctx context.Context, slug string) (*models.Folder, error)
	Exists(ctx context.Context, slug string) (bool, error)
	List(ctx context.Context) ([]*models.Folder, error)
	Rename(ctx context.Context, slug, newSlug, newName string) error
	Delete(ctx context.Context, slug string) error
}
