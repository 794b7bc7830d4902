package services

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/mkraev/atelier/internal/common"
	"github.com/mkraev/atelier/internal/dbx"
	"github.com/mkraev/atelier/internal/server/models"
	"github.com/mkraev/atelier/internal/server/repositories/assets"
	"github.com/mkraev/atelier/internal/server/repositories/folders"
	"github.com/mkraev/atelier/internal/server/repositories/users"
)

func newSQLMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return db, mock
}

// --- fake repositories ---

type fakeAssetsRepo struct {
	committed map[string]bool
	byID      map[string]*models.Asset
	byFolder  map[string][]*models.Asset

	pending     []*models.Asset
	commits     []string
	moves       [][3]string // id, newID, newFolder
	renames     [][3]string
	deleted     []string
	counts      map[string]int64
	existsErr   error
	commitErr   error
	pendingErr  error
	deleteErr   error
	countByfErr error
}

func newFakeAssetsRepo() *fakeAssetsRepo {
	return &fakeAssetsRepo{
		committed: map[string]bool{},
		byID:      map[string]*models.Asset{},
		byFolder:  map[string][]*models.Asset{},
		counts:    map[string]int64{},
	}
}

func (f *fakeAssetsRepo) CreatePending(ctx context.Context, asset *models.Asset) error {
	if f.pendingErr != nil {
		return f.pendingErr
	}
	f.pending = append(f.pending, asset)
	return nil
}

func (f *fakeAssetsRepo) Commit(ctx context.Context, id string, sizeBytes int64, mimeType string, width, height int) error {
	if f.commitErr != nil {
		return f.commitErr
	}
	f.commits = append(f.commits, id)
	return nil
}

func (f *fakeAssetsRepo) GetByID(ctx context.Context, id string) (*models.Asset, error) {
	if a, ok := f.byID[id]; ok {
		return a, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeAssetsRepo) ListByFolder(ctx context.Context, folder string) ([]*models.Asset, error) {
	return f.byFolder[folder], nil
}

func (f *fakeAssetsRepo) ExistsCommitted(ctx context.Context, id string) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	return f.committed[id], nil
}

func (f *fakeAssetsRepo) CountByFolder(ctx context.Context, folder string) (int64, error) {
	if f.countByfErr != nil {
		return 0, f.countByfErr
	}
	return f.counts[folder], nil
}

func (f *fakeAssetsRepo) Rename(ctx context.Context, id, newID, newFileName string) error {
	f.renames = append(f.renames, [3]string{id, newID, newFileName})
	return nil
}

func (f *fakeAssetsRepo) Move(ctx context.Context, id, newID, newFolder string) error {
	f.moves = append(f.moves, [3]string{id, newID, newFolder})
	return nil
}

func (f *fakeAssetsRepo) Delete(ctx context.Context, id string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeFoldersRepo struct {
	created   []*models.Folder
	existing  map[string]bool
	renamed   [][3]string
	deleted   []string
	deleteErr error
}

func newFakeFoldersRepo() *fakeFoldersRepo {
	return &fakeFoldersRepo{existing: map[string]bool{}}
}

func (f *fakeFoldersRepo) CreateIfAbsent(ctx context.Context, folder *models.Folder) error {
	f.created = append(f.created, folder)
	return nil
}

func (f *fakeFoldersRepo) GetBySlug(ctx context.Context, slug string) (*models.Folder, error) {
	if f.existing[slug] {
		return &models.Folder{Slug: slug}, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeFoldersRepo) Exists(ctx context.Context, slug string) (bool, error) {
	return f.existing[slug], nil
}

func (f *fakeFoldersRepo) List(ctx context.Context) ([]*models.Folder, error) {
	return nil, nil
}

func (f *fakeFoldersRepo) Rename(ctx context.Context, slug, newSlug, newName string) error {
	f.renamed = append(f.renamed, [3]string{slug, newSlug, newName})
	return nil
}

func (f *fakeFoldersRepo) Delete(ctx context.Context, slug string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, slug)
	return nil
}

type fakeUsersRepo struct {
	createOut *models.User
	createErr error
	getOut    *models.User
	getErr    error
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	if f.createOut != nil {
		return f.createOut, nil
	}
	return u, nil
}

func (f *fakeUsersRepo) GetUserByLogin(ctx context.Context, userName string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.getOut, nil
}

// --- fake repository manager ---

type fakeRepoManager struct {
	assets  *fakeAssetsRepo
	folders *fakeFoldersRepo
	users   *fakeUsersRepo
}

func newFakeRepoManager() *fakeRepoManager {
	return &fakeRepoManager{
		assets:  newFakeAssetsRepo(),
		folders: newFakeFoldersRepo(),
		users:   &fakeUsersRepo{},
	}
}

func (m *fakeRepoManager) RunMigrations(ctx context.Context, db *sql.DB) error { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) users.Repository                  { return m.users }
func (m *fakeRepoManager) Assets(db dbx.DBTX) assets.Repository                { return m.assets }
func (m *fakeRepoManager) Folders(db dbx.DBTX) folders.Repository              { return m.folders }

// --- fake signer ---

type fakeSigner struct {
	err  error
	keys []string
}

func (f *fakeSigner) PresignUpload(ctx context.Context, key string) (string, map[string]string, error) {
	if f.err != nil {
		return "", nil, f.err
	}
	f.keys = append(f.keys, key)
	return "https://storage.test/" + key, map[string]string{"key": key, "policy": "p"}, nil
}
