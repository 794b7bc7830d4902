// Package services contains server-side business logic: issuing upload
// intents, committing asset metadata, and authenticating operators.
package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/mkraev/atelier/internal/common"
	"github.com/mkraev/atelier/internal/dbx"
	"github.com/mkraev/atelier/internal/server/models"
	"github.com/mkraev/atelier/internal/server/repositories/repomanager"
)

// IntentFileParam describes one local file an intent is requested for.
type IntentFileParam struct {
	LocalID   string
	FileName  string
	MimeType  string
	SizeBytes int64
	Profile   string
}

// IntentParams is one batch of intent requests aimed at a target folder.
type IntentParams struct {
	Files        []IntentFileParam
	TargetFolder string
	Mode         string
	Profile      string
}

// IssuedIntent pairs a client-side row id with its final asset id and a
// one-time upload authorization: the POST URL plus the signed policy form
// fields.
type IssuedIntent struct {
	LocalID      string
	ID           string
	UploadURL    string
	UploadFields map[string]string
}

// IntentResult carries the issued intents plus the folder the batch was
// actually aimed at, which differs from the requested one after a copy-mode
// rename.
type IntentResult struct {
	Intents      []IssuedIntent
	TargetFolder string
}

const (
	ModeOverride = "override"
	ModeCopy     = "copy"
)

// IntentService turns batches of upload requests into one-time storage URLs
// plus pending asset rows.
type IntentService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	signer      StorageSigner
}

func NewIntentService(db *sql.DB, m repomanager.RepositoryManager, signer StorageSigner) *IntentService {
	return &IntentService{db: db, repomanager: m, signer: signer}
}

// remapAssetID replaces the folder segment of a client-derived id with the
// resolved target folder slug. Ids without a folder segment are nested under
// the slug as-is.
func remapAssetID(localID, folderSlug string) string {
	if _, rest, found := strings.Cut(localID, "/"); found {
		return folderSlug + "/" + rest
	}
	return folderSlug + "/" + common.Slugify(localID)
}

// CreateIntents resolves the target folder, records pending asset rows and
// issues one presigned upload URL per requested file.
//
// In override mode existing asset ids are reused and stored bytes replaced.
// In copy mode a collision with an already committed asset renames the
// target folder to the first free "name (copy)" variant; callers must aim
// subsequent batches at the returned folder.
func (s *IntentService) CreateIntents(ctx context.Context, params IntentParams) (*IntentResult, error) {
	if len(params.Files) == 0 {
		return nil, fmt.Errorf("%w: empty file list", common.ErrorValidation)
	}
	if params.Mode != ModeOverride && params.Mode != ModeCopy {
		return nil, fmt.Errorf("%w: unknown mode %q", common.ErrorValidation, params.Mode)
	}
	if strings.TrimSpace(params.TargetFolder) == "" {
		return nil, fmt.Errorf("%w: empty target folder", common.ErrorValidation)
	}

	folderName := params.TargetFolder
	folderSlug := common.Slugify(folderName)

	if params.Mode == ModeCopy {
		name, slug, err := s.resolveCopyFolder(ctx, folderName, folderSlug, params.Files)
		if err != nil {
			return nil, err
		}
		folderName, folderSlug = name, slug
	}

	result := &IntentResult{TargetFolder: folderName}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		folderRepo := s.repomanager.Folders(tx)
		if err := folderRepo.CreateIfAbsent(ctx, &models.Folder{Slug: folderSlug, Name: folderName, ParentSlug: parentSlug(folderSlug)}); err != nil {
			return err
		}

		assetRepoTx := s.repomanager.Assets(tx)
		for _, f := range params.Files {
			id := remapAssetID(f.LocalID, folderSlug)
			profile := f.Profile
			if profile == "" {
				profile = params.Profile
			}
			if err := assetRepoTx.CreatePending(ctx, &models.Asset{
				ID:        id,
				Folder:    folderSlug,
				FileName:  f.FileName,
				SizeBytes: f.SizeBytes,
				MimeType:  f.MimeType,
				Profile:   profile,
			}); err != nil {
				return err
			}
			result.Intents = append(result.Intents, IssuedIntent{LocalID: f.LocalID, ID: id})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for i := range result.Intents {
		url, fields, err := s.signer.PresignUpload(ctx, result.Intents[i].ID)
		if err != nil {
			return nil, fmt.Errorf("presign error: %w", err)
		}
		result.Intents[i].UploadURL = url
		result.Intents[i].UploadFields = fields
	}

	return result, nil
}

// resolveCopyFolder returns the folder the batch should be aimed at in copy
// mode: the requested folder unless one of the requested ids is already
// committed there, in which case the first collision-free "name (copy)"
// variant is picked.
func (s *IntentService) resolveCopyFolder(ctx context.Context, name, slug string, files []IntentFileParam) (string, string, error) {
	assetRepo := s.repomanager.Assets(s.db)

	candidateName, candidateSlug := name, slug
	for n := 0; ; n++ {
		if n == 1 {
			candidateName = fmt.Sprintf("%s (copy)", name)
		} else if n > 1 {
			candidateName = fmt.Sprintf("%s (copy %d)", name, n)
		}
		if n > 0 {
			candidateSlug = common.Slugify(candidateName)
		}

		collides := false
		for _, f := range files {
			committed, err := assetRepo.ExistsCommitted(ctx, remapAssetID(f.LocalID, candidateSlug))
			if err != nil {
				return "", "", err
			}
			if committed {
				collides = true
				break
			}
		}
		if !collides {
			return candidateName, candidateSlug, nil
		}
	}
}

func parentSlug(slug string) string {
	if i := strings.LastIndex(slug, "/"); i > 0 {
		return slug[:i]
	}
	return ""
}
