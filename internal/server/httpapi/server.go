// Package httpapi exposes the control plane over HTTP/JSON: auth, upload
// intents, metadata commits and asset/folder maintenance.
package httpapi

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/mkraev/atelier/internal/logging"
	"github.com/mkraev/atelier/internal/server/services"
)

const shutdownTimeout = 5 * time.Second

// Server wires the echo router to the service layer.
type Server struct {
	echo          *echo.Echo
	addr          string
	logger        logging.Logger
	userService   *services.UserService
	intentService *services.IntentService
	assetService  *services.AssetService
	jwtSecret     []byte
}

func NewServer(addr string, logger logging.Logger, us *services.UserService, is *services.IntentService, as *services.AssetService, jwtSecret []byte) *Server {
	s := &Server{
		echo:          echo.New(),
		addr:          addr,
		logger:        logger,
		userService:   us,
		intentService: is,
		assetService:  as,
		jwtSecret:     jwtSecret,
	}

	s.echo.HideBanner = true
	s.echo.Use(middleware.Recover())
	s.registerRoutes()

	return s
}

func (s *Server) registerRoutes() {
	api := s.echo.Group("/api/v1")

	api.POST("/auth/register", s.handleRegister)
	api.POST("/auth/login", s.handleLogin)

	protected := api.Group("", s.jwtMiddleware)
	protected.POST("/uploads/intents", s.handleCreateIntents)
	protected.POST("/uploads/commit", s.handleCommitMetadata)

	protected.GET("/folders", s.handleListFolders)
	protected.POST("/folders/rename", s.handleRenameFolder)
	protected.DELETE("/folders", s.handleDeleteFolder)

	protected.GET("/assets", s.handleListAssets)
	protected.POST("/assets/rename", s.handleRenameAsset)
	protected.POST("/assets/move", s.handleMoveAsset)
	protected.DELETE("/assets", s.handleDeleteAsset)
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)

	go func() {
		if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info(ctx, "shutting down http server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.echo.Shutdown(shutdownCtx)
	}
}
