package server

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/existflow/projtrack/internal/logger"
	"github.com/existflow/projtrack/internal/model"
)

type registerRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Confirm  string `json:"confirm"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type authResponse struct {
	Token     string `json:"token"`
	ExpiresAt string `json:"expires_at"`
	Username  string `json:"username"`
}

// handleRegister handles user registration
func (s *Server) handleRegister(c echo.Context) error {
	var req registerRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	// A registration without confirmation repeats the password
	if req.Confirm == "" {
		req.Confirm = req.Password
	}

	u, err := s.gate.Register(c.Request().Context(), req.Username, req.Password, req.Confirm)
	if err != nil {
		return respondError(c, err)
	}

	return s.issueSession(c, u)
}

// handleLogin handles user login
func (s *Server) handleLogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	u, err := s.gate.Login(c.Request().Context(), req.Username, req.Password)
	if err != nil {
		return respondError(c, err)
	}

	return s.issueSession(c, u)
}

// handleLogout ends the current session
func (s *Server) handleLogout(c echo.Context) error {
	token := c.Get("token").(string)
	if err := s.sessions.Delete(c.Request().Context(), token); err != nil {
		return respondError(c, err)
	}
	logger.Info("User logged out", logger.F("username", currentUser(c)))
	return c.NoContent(http.StatusNoContent)
}

// handleMe returns current user info
func (s *Server) handleMe(c echo.Context) error {
	u, err := s.store.FindUser(c.Request().Context(), currentUser(c))
	if err != nil {
		return c.JSON(http.StatusNotFound, map[string]string{"error": "user not found"})
	}
	return c.JSON(http.StatusOK, u)
}

// issueSession creates a session for u and writes the token response
func (s *Server) issueSession(c echo.Context, u model.User) error {
	session, err := s.sessions.Create(c.Request().Context(), u.Username, s.sessionTTL)
	if err != nil {
		logger.Error("Failed to create session", logger.F("username", u.Username), logger.F("error", err))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "internal error"})
	}

	return c.JSON(http.StatusOK, authResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt.Format(time.RFC3339),
		Username:  u.Username,
	})
}
