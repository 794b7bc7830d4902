package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/mkraev/atelier/internal/common"
	"github.com/mkraev/atelier/internal/server/services"
)

// Wire shapes. Field names are part of the client contract and must not
// drift.

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type loginResponse struct {
	OK          bool   `json:"ok"`
	AccessToken string `json:"accessToken,omitempty"`
	Message     string `json:"message,omitempty"`
}

type intentFile struct {
	LocalID      string `json:"localId"`
	ID           string `json:"id"`
	FileName     string `json:"fileName"`
	RelativePath string `json:"relativePath"`
	MimeType     string `json:"mimeType"`
	SizeBytes    int64  `json:"sizeBytes"`
	Profile      string `json:"profile,omitempty"`
}

type intentRequest struct {
	Files          []intentFile               `json:"files"`
	Transforms     map[string]json.RawMessage `json:"transforms,omitempty"`
	DefaultProfile string                     `json:"defaultProfile"`
	TargetFolder   string                     `json:"targetFolder"`
	Mode           string                     `json:"mode"`
}

type intent struct {
	LocalID      string            `json:"localId"`
	ID           string            `json:"id"`
	UploadURL    string            `json:"uploadURL"`
	UploadFields map[string]string `json:"uploadFields,omitempty"`
}

type intentResponse struct {
	OK           bool     `json:"ok"`
	Intents      []intent `json:"intents"`
	TargetFolder string   `json:"targetFolder"`
	Message      string   `json:"message,omitempty"`
}

type commitRequest struct {
	CFImageID string `json:"cf_image_id"`
	SizeBytes int64  `json:"sizeBytes"`
	MimeType  string `json:"mimeType"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
}

type okResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message,omitempty"`
}

type errorResponse struct {
	OK      bool   `json:"ok"`
	Message string `json:"message"`
}

func (s *Server) handleRegister(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{OK: false, Message: "invalid request"})
	}

	if _, err := s.userService.Register(c.Request().Context(), req.Login, req.Password); err != nil {
		if errors.Is(err, common.ErrorValidation) {
			return c.JSON(http.StatusBadRequest, errorResponse{OK: false, Message: err.Error()})
		}
		return s.internalError(c, err)
	}

	token, err := s.userService.Login(c.Request().Context(), req.Login, req.Password)
	if err != nil {
		return s.internalError(c, err)
	}

	return c.JSON(http.StatusOK, loginResponse{OK: true, AccessToken: token})
}

func (s *Server) handleLogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{OK: false, Message: "invalid request"})
	}

	token, err := s.userService.Login(c.Request().Context(), req.Login, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorInvalidLoginPassword) {
			return c.JSON(http.StatusUnauthorized, errorResponse{OK: false, Message: err.Error()})
		}
		return s.internalError(c, err)
	}

	return c.JSON(http.StatusOK, loginResponse{OK: true, AccessToken: token})
}

func (s *Server) handleCreateIntents(c echo.Context) error {
	var req intentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{OK: false, Message: "invalid request"})
	}

	params := services.IntentParams{
		TargetFolder: req.TargetFolder,
		Mode:         req.Mode,
		Profile:      req.DefaultProfile,
	}
	for _, f := range req.Files {
		params.Files = append(params.Files, services.IntentFileParam{
			LocalID:   f.LocalID,
			FileName:  f.FileName,
			MimeType:  f.MimeType,
			SizeBytes: f.SizeBytes,
			Profile:   f.Profile,
		})
	}

	result, err := s.intentService.CreateIntents(c.Request().Context(), params)
	if err != nil {
		if errors.Is(err, common.ErrorValidation) {
			return c.JSON(http.StatusBadRequest, errorResponse{OK: false, Message: err.Error()})
		}
		return s.internalError(c, err)
	}

	resp := intentResponse{OK: true, TargetFolder: result.TargetFolder, Intents: make([]intent, 0, len(result.Intents))}
	for _, in := range result.Intents {
		resp.Intents = append(resp.Intents, intent{LocalID: in.LocalID, ID: in.ID, UploadURL: in.UploadURL, UploadFields: in.UploadFields})
	}

	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleCommitMetadata(c echo.Context) error {
	var req commitRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{OK: false, Message: "invalid request"})
	}

	err := s.assetService.CommitMetadata(c.Request().Context(), req.CFImageID, req.SizeBytes, req.MimeType, req.Width, req.Height)
	switch {
	case err == nil:
		return c.JSON(http.StatusOK, okResponse{OK: true})
	case errors.Is(err, common.ErrorAssetAlreadyCommitted):
		// replayed commit after a retried request, not a failure
		return c.JSON(http.StatusOK, okResponse{OK: true, Message: err.Error()})
	case errors.Is(err, common.ErrorValidation):
		return c.JSON(http.StatusBadRequest, errorResponse{OK: false, Message: err.Error()})
	case errors.Is(err, common.ErrorNotFound):
		return c.JSON(http.StatusNotFound, errorResponse{OK: false, Message: err.Error()})
	default:
		return s.internalError(c, err)
	}
}

type folderInfo struct {
	Slug       string `json:"slug"`
	Name       string `json:"name"`
	ParentSlug string `json:"parentSlug,omitempty"`
}

type listFoldersResponse struct {
	OK      bool         `json:"ok"`
	Folders []folderInfo `json:"folders"`
}

func (s *Server) handleListFolders(c echo.Context) error {
	folders, err := s.assetService.ListFolders(c.Request().Context())
	if err != nil {
		return s.internalError(c, err)
	}

	resp := listFoldersResponse{OK: true, Folders: make([]folderInfo, 0, len(folders))}
	for _, f := range folders {
		resp.Folders = append(resp.Folders, folderInfo{Slug: f.Slug, Name: f.Name, ParentSlug: f.ParentSlug})
	}
	return c.JSON(http.StatusOK, resp)
}

type assetInfo struct {
	ID        string `json:"id"`
	Folder    string `json:"folder"`
	FileName  string `json:"fileName"`
	SizeBytes int64  `json:"sizeBytes"`
	MimeType  string `json:"mimeType"`
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	Profile   string `json:"profile"`
	Committed bool   `json:"committed"`
}

type listAssetsResponse struct {
	OK     bool        `json:"ok"`
	Assets []assetInfo `json:"assets"`
}

func (s *Server) handleListAssets(c echo.Context) error {
	folder := c.QueryParam("folder")
	if folder == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{OK: false, Message: "folder is required"})
	}

	assets, err := s.assetService.ListFolder(c.Request().Context(), folder)
	if err != nil {
		return s.internalError(c, err)
	}

	resp := listAssetsResponse{OK: true, Assets: make([]assetInfo, 0, len(assets))}
	for _, a := range assets {
		resp.Assets = append(resp.Assets, assetInfo{
			ID: a.ID, Folder: a.Folder, FileName: a.FileName,
			SizeBytes: a.SizeBytes, MimeType: a.MimeType,
			Width: a.Width, Height: a.Height,
			Profile: a.Profile, Committed: a.Committed,
		})
	}
	return c.JSON(http.StatusOK, resp)
}

type renameAssetRequest struct {
	ID          string `json:"id"`
	NewFileName string `json:"newFileName"`
}

type idResponse struct {
	OK bool   `json:"ok"`
	ID string `json:"id"`
}

func (s *Server) handleRenameAsset(c echo.Context) error {
	var req renameAssetRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{OK: false, Message: "invalid request"})
	}

	newID, err := s.assetService.RenameAsset(c.Request().Context(), req.ID, req.NewFileName)
	if err != nil {
		return s.assetError(c, err)
	}
	return c.JSON(http.StatusOK, idResponse{OK: true, ID: newID})
}

type moveAssetRequest struct {
	ID        string `json:"id"`
	NewFolder string `json:"newFolder"`
}

func (s *Server) handleMoveAsset(c echo.Context) error {
	var req moveAssetRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{OK: false, Message: "invalid request"})
	}

	newID, err := s.assetService.MoveAsset(c.Request().Context(), req.ID, req.NewFolder)
	if err != nil {
		return s.assetError(c, err)
	}
	return c.JSON(http.StatusOK, idResponse{OK: true, ID: newID})
}

func (s *Server) handleDeleteAsset(c echo.Context) error {
	id := c.QueryParam("id")
	if id == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{OK: false, Message: "id is required"})
	}

	if err := s.assetService.DeleteAsset(c.Request().Context(), id); err != nil {
		return s.assetError(c, err)
	}
	return c.JSON(http.StatusOK, okResponse{OK: true})
}

type renameFolderRequest struct {
	Slug    string `json:"slug"`
	NewName string `json:"newName"`
}

type slugResponse struct {
	OK   bool   `json:"ok"`
	Slug string `json:"slug"`
}

func (s *Server) handleRenameFolder(c echo.Context) error {
	var req renameFolderRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errorResponse{OK: false, Message: "invalid request"})
	}

	newSlug, err := s.assetService.RenameFolder(c.Request().Context(), req.Slug, req.NewName)
	if err != nil {
		return s.assetError(c, err)
	}
	return c.JSON(http.StatusOK, slugResponse{OK: true, Slug: newSlug})
}

func (s *Server) handleDeleteFolder(c echo.Context) error {
	slug := c.QueryParam("slug")
	if slug == "" {
		return c.JSON(http.StatusBadRequest, errorResponse{OK: false, Message: "slug is required"})
	}

	err := s.assetService.DeleteFolder(c.Request().Context(), slug)
	if err != nil {
		if errors.Is(err, common.ErrorFolderNotEmpty) {
			return c.JSON(http.StatusConflict, errorResponse{OK: false, Message: err.Error()})
		}
		return s.assetError(c, err)
	}
	return c.JSON(http.StatusOK, okResponse{OK: true})
}

func (s *Server) assetError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, common.ErrorValidation):
		return c.JSON(http.StatusBadRequest, errorResponse{OK: false, Message: err.Error()})
	case errors.Is(err, common.ErrorNotFound):
		return c.JSON(http.StatusNotFound, errorResponse{OK: false, Message: err.Error()})
	default:
		return s.internalError(c, err)
	}
}

func (s *Server) internalError(c echo.Context, err error) error {
	s.logger.Error(c.Request().Context(), "request failed", "path", c.Path(), "error", err.Error())
	return c.JSON(http.StatusInternalServerError, errorResponse{OK: false, Message: common.ErrorInternal.Error()})
}
