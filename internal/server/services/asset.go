package services

import (
	"context"
	"database/sql"
	"fmt"
	"path"
	"strings"

	"github.com/mkraev/atelier/internal/common"
	"github.com/mkraev/atelier/internal/dbx"
	"github.com/mkraev/atelier/internal/server/models"
	"github.com/mkraev/atelier/internal/server/repositories/assets"
	"github.com/mkraev/atelier/internal/server/repositories/folders"
	"github.com/mkraev/atelier/internal/server/repositories/repomanager"
)

type txRepos struct {
	assets  assets.Repository
	folders folders.Repository
}

// AssetService manages committed asset metadata and folder maintenance.
type AssetService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
}

func NewAssetService(db *sql.DB, m repomanager.RepositoryManager) *AssetService {
	return &AssetService{db: db, repomanager: m}
}

// CommitMetadata confirms a finished upload: the pending row for id becomes
// committed with the verified size, mime type and dimensions. Committing
// twice surfaces ErrorAssetAlreadyCommitted so callers can treat a replayed
// commit as a no-op rather than silently overwriting.
func (s *AssetService) CommitMetadata(ctx context.Context, id string, sizeBytes int64, mimeType string, width, height int) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: empty asset id", common.ErrorValidation)
	}
	repo := s.repomanager.Assets(s.db)
	return repo.Commit(ctx, id, sizeBytes, mimeType, width, height)
}

func (s *AssetService) Get(ctx context.Context, id string) (*models.Asset, error) {
	return s.repomanager.Assets(s.db).GetByID(ctx, id)
}

func (s *AssetService) ListFolder(ctx context.Context, folder string) ([]*models.Asset, error) {
	return s.repomanager.Assets(s.db).ListByFolder(ctx, folder)
}

func (s *AssetService) ListFolders(ctx context.Context) ([]*models.Folder, error) {
	return s.repomanager.Folders(s.db).List(ctx)
}

// RenameAsset gives an asset a new base name inside its folder. The id is
// re-derived so delivery paths stay readable.
func (s *AssetService) RenameAsset(ctx context.Context, id, newFileName string) (string, error) {
	asset, err := s.repomanager.Assets(s.db).GetByID(ctx, id)
	if err != nil {
		return "", err
	}

	base := strings.TrimSuffix(newFileName, path.Ext(newFileName))
	newID := asset.Folder + "/" + common.Slugify(base)
	if newID == id {
		return id, s.repomanager.Assets(s.db).Rename(ctx, id, id, newFileName)
	}

	if err := s.repomanager.Assets(s.db).Rename(ctx, id, newID, newFileName); err != nil {
		return "", err
	}
	return newID, nil
}

// MoveAsset relocates an asset into another folder, keeping its base name.
func (s *AssetService) MoveAsset(ctx context.Context, id, newFolder string) (string, error) {
	folderSlug := common.Slugify(newFolder)

	exists, err := s.repomanager.Folders(s.db).Exists(ctx, folderSlug)
	if err != nil {
		return "", err
	}
	if !exists {
		return "", common.ErrorNotFound
	}

	base := id
	if i := strings.LastIndex(id, "/"); i >= 0 {
		base = id[i+1:]
	}
	newID := folderSlug + "/" + base

	if err := s.repomanager.Assets(s.db).Move(ctx, id, newID, folderSlug); err != nil {
		return "", err
	}
	return newID, nil
}

func (s *AssetService) withTx(ctx context.Context, fn func(context.Context, txRepos) error) error {
	return dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		return fn(ctx, txRepos{assets: s.repomanager.Assets(tx), folders: s.repomanager.Folders(tx)})
	})
}

func (s *AssetService) DeleteAsset(ctx context.Context, id string) error {
	return s.repomanager.Assets(s.db).Delete(ctx, id)
}

// RenameFolder renames a folder. Asset ids embed the folder slug, so every
// contained asset is remapped in the same transaction.
func (s *AssetService) RenameFolder(ctx context.Context, slug, newName string) (string, error) {
	newSlug := common.Slugify(newName)
	if newSlug == "" {
		return "", fmt.Errorf("%w: empty folder name", common.ErrorValidation)
	}

	assets, err := s.repomanager.Assets(s.db).ListByFolder(ctx, slug)
	if err != nil {
		return "", err
	}

	err = s.withTx(ctx, func(ctx context.Context, repos txRepos) error {
		if err := repos.folders.Rename(ctx, slug, newSlug, newName); err != nil {
			return err
		}
		for _, a := range assets {
			base := strings.TrimPrefix(a.ID, slug+"/")
			if err := repos.assets.Move(ctx, a.ID, newSlug+"/"+base, newSlug); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return newSlug, nil
}

// DeleteFolder removes an empty folder. Folders still holding assets are
// refused with ErrorFolderNotEmpty.
func (s *AssetService) DeleteFolder(ctx context.Context, slug string) error {
	count, err := s.repomanager.Assets(s.db).CountByFolder(ctx, slug)
	if err != nil {
		return err
	}
	if count > 0 {
		return common.ErrorFolderNotEmpty
	}
	return s.repomanager.Folders(s.db).Delete(ctx, slug)
}
