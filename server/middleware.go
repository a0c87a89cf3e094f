package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/existflow/projtrack/internal/auth"
	"github.com/existflow/projtrack/internal/logger"
	"github.com/existflow/projtrack/internal/model"
	"github.com/existflow/projtrack/internal/projects"
	"github.com/existflow/projtrack/internal/store"
)

// authMiddleware checks for valid session token
func (s *Server) authMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		// Get token from Authorization header
		header := c.Request().Header.Get("Authorization")
		if header == "" {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "authorization required"})
		}

		token := strings.TrimPrefix(header, "Bearer ")
		if token == header {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid authorization format"})
		}

		session, err := s.sessions.Get(c.Request().Context(), token)
		if errors.Is(err, ErrSessionNotFound) {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "invalid or expired token"})
		}
		if err != nil {
			return respondError(c, err)
		}

		c.Set("username", session.Username)
		c.Set("token", token)
		return next(c)
	}
}

func currentUser(c echo.Context) string {
	username, _ := c.Get("username").(string)
	return username
}

// respondError maps domain errors to HTTP status codes
func respondError(c echo.Context, err error) error {
	var aerr *auth.Error
	if errors.As(err, &aerr) {
		status := http.StatusBadRequest
		switch aerr.Reason {
		case auth.ReasonUserExists:
			status = http.StatusConflict
		case auth.ReasonLoginFailed:
			status = http.StatusUnauthorized
		}
		return c.JSON(status, map[string]string{
			"error":  aerr.Message,
			"title":  aerr.Title,
			"reason": string(aerr.Reason),
		})
	}

	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": verr.Message})
	case errors.Is(err, store.ErrNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": "project not found"})
	case errors.Is(err, projects.ErrAmbiguous):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.Is(err, model.ErrForbidden):
		return c.JSON(http.StatusForbidden, map[string]string{"error": err.Error()})
	case errors.Is(err, store.ErrConflict):
		return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
	}

	logger.Error("Request failed", logger.F("uri", c.Request().RequestURI), logger.F("error", err))
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
}
