package httpapi

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/mkraev/atelier/internal/common"
	"github.com/mkraev/atelier/internal/server/auth"
)

// userIDContextKey is the echo context key the authenticated user id is
// stored under.
const userIDContextKey = "userID"

// jwtMiddleware authenticates requests by the Bearer token in the
// Authorization header and stores the user id in the request context.
func (s *Server) jwtMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		header := c.Request().Header.Get(common.AuthHeaderName)
		if header == "" {
			return c.JSON(http.StatusUnauthorized, errorResponse{OK: false, Message: common.ErrorUnauthorized.Error()})
		}

		scheme, token, found := strings.Cut(header, " ")
		if !found || scheme != common.AuthHeaderScheme || token == "" {
			return c.JSON(http.StatusUnauthorized, errorResponse{OK: false, Message: common.ErrorInvalidAuthHeaderFormat.Error()})
		}

		userID, err := auth.GetUserIDFromToken(token, s.jwtSecret)
		if err != nil {
			return c.JSON(http.StatusUnauthorized, errorResponse{OK: false, Message: common.ErrorInvalidToken.Error()})
		}

		c.Set(userIDContextKey, userID)
		return next(c)
	}
}
