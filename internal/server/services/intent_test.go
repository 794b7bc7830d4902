package services

import (
	"context"
	"errors"
	"testing"

	"github.com/mkraev/atelier/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateIntents_Validation(t *testing.T) {
	db, _ := newSQLMockDB(t)
	defer db.Close()

	svc := NewIntentService(db, newFakeRepoManager(), &fakeSigner{})

	tests := []struct {
		name   string
		params IntentParams
	}{
		{"empty files", IntentParams{TargetFolder: "f", Mode: ModeOverride}},
		{"bad mode", IntentParams{Files: []IntentFileParam{{LocalID: "f/a"}}, TargetFolder: "f", Mode: "merge"}},
		{"empty folder", IntentParams{Files: []IntentFileParam{{LocalID: "f/a"}}, Mode: ModeCopy}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.CreateIntents(context.Background(), tt.params)
			assert.ErrorIs(t, err, common.ErrorValidation)
		})
	}
}

func TestCreateIntents_Override(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()

	rm := newFakeRepoManager()
	signer := &fakeSigner{}
	svc := NewIntentService(db, rm, signer)

	mock.ExpectBegin()
	mock.ExpectCommit()

	res, err := svc.CreateIntents(context.Background(), IntentParams{
		Files: []IntentFileParam{
			{LocalID: "showroom/door-1", FileName: "door-1.jpg", MimeType: "image/jpeg", SizeBytes: 100, Profile: "high"},
			{LocalID: "showroom/door-2", FileName: "door-2.jpg", MimeType: "image/jpeg", SizeBytes: 200},
		},
		TargetFolder: "Showroom",
		Mode:         ModeOverride,
		Profile:      "web",
	})
	require.NoError(t, err)

	assert.Equal(t, "Showroom", res.TargetFolder)
	require.Len(t, res.Intents, 2)
	assert.Equal(t, "showroom/door-1", res.Intents[0].ID)
	assert.Equal(t, "https://storage.test/showroom/door-1", res.Intents[0].UploadURL)
	assert.Equal(t, "showroom/door-1", res.Intents[0].UploadFields["key"])
	assert.Equal(t, "showroom/door-2", res.Intents[1].ID)

	require.Len(t, rm.assets.pending, 2)
	assert.Equal(t, "showroom", rm.assets.pending[0].Folder)
	// A row-level profile wins over the batch default.
	assert.Equal(t, "high", rm.assets.pending[0].Profile)
	assert.Equal(t, "web", rm.assets.pending[1].Profile)
	assert.False(t, rm.assets.pending[0].Committed)

	require.Len(t, rm.folders.created, 1)
	assert.Equal(t, "showroom", rm.folders.created[0].Slug)
	assert.Equal(t, "Showroom", rm.folders.created[0].Name)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateIntents_CopyNoCollision(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()

	rm := newFakeRepoManager()
	svc := NewIntentService(db, rm, &fakeSigner{})

	mock.ExpectBegin()
	mock.ExpectCommit()

	res, err := svc.CreateIntents(context.Background(), IntentParams{
		Files:        []IntentFileParam{{LocalID: "showroom/door-1", FileName: "door-1.jpg"}},
		TargetFolder: "Showroom",
		Mode:         ModeCopy,
	})
	require.NoError(t, err)

	assert.Equal(t, "Showroom", res.TargetFolder)
	assert.Equal(t, "showroom/door-1", res.Intents[0].ID)
}

func TestCreateIntents_CopyCollisionRenamesFolder(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()

	rm := newFakeRepoManager()
	rm.assets.committed["showroom/door-1"] = true
	svc := NewIntentService(db, rm, &fakeSigner{})

	mock.ExpectBegin()
	mock.ExpectCommit()

	res, err := svc.CreateIntents(context.Background(), IntentParams{
		Files: []IntentFileParam{
			{LocalID: "showroom/door-1", FileName: "door-1.jpg"},
			{LocalID: "showroom/door-2", FileName: "door-2.jpg"},
		},
		TargetFolder: "Showroom",
		Mode:         ModeCopy,
	})
	require.NoError(t, err)

	assert.Equal(t, "Showroom (copy)", res.TargetFolder)
	assert.Equal(t, "showroom-copy/door-1", res.Intents[0].ID)
	assert.Equal(t, "showroom-copy/door-2", res.Intents[1].ID)

	require.Len(t, rm.folders.created, 1)
	assert.Equal(t, "showroom-copy", rm.folders.created[0].Slug)
	assert.Equal(t, "Showroom (copy)", rm.folders.created[0].Name)
}

func TestCreateIntents_CopySkipsTakenVariants(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()

	rm := newFakeRepoManager()
	rm.assets.committed["showroom/door-1"] = true
	rm.assets.committed["showroom-copy/door-1"] = true
	svc := NewIntentService(db, rm, &fakeSigner{})

	mock.ExpectBegin()
	mock.ExpectCommit()

	res, err := svc.CreateIntents(context.Background(), IntentParams{
		Files:        []IntentFileParam{{LocalID: "showroom/door-1", FileName: "door-1.jpg"}},
		TargetFolder: "Showroom",
		Mode:         ModeCopy,
	})
	require.NoError(t, err)

	assert.Equal(t, "Showroom (copy 2)", res.TargetFolder)
	assert.Equal(t, "showroom-copy-2/door-1", res.Intents[0].ID)
}

func TestCreateIntents_SignerError(t *testing.T) {
	db, mock := newSQLMockDB(t)
	defer db.Close()

	rm := newFakeRepoManager()
	svc := NewIntentService(db, rm, &fakeSigner{err: errors.New("sign failed")})

	mock.ExpectBegin()
	mock.ExpectCommit()

	_, err := svc.CreateIntents(context.Background(), IntentParams{
		Files:        []IntentFileParam{{LocalID: "showroom/door-1"}},
		TargetFolder: "Showroom",
		Mode:         ModeOverride,
	})
	assert.ErrorContains(t, err, "sign failed")
}

func TestRemapAssetID(t *testing.T) {
	assert.Equal(t, "other/door-1", remapAssetID("showroom/door-1", "other"))
	assert.Equal(t, "other/sub/door-1", remapAssetID("showroom/sub/door-1", "other"))
	assert.Equal(t, "other/bare", remapAssetID("Bare", "other"))
}
