package server

import (
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/existflow/projtrack/internal/model"
	"github.com/existflow/projtrack/internal/projects"
	"github.com/existflow/projtrack/internal/store"
)

type createProjectRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Date        string  `json:"date"` // RFC 3339 or YYYY-MM-DD, empty means now
	Progress    float64 `json:"progress"`
	IsEditable  *bool   `json:"is_editable"`
}

// updateProjectRequest changes only the fields that are present
type updateProjectRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Category    *string  `json:"category"`
	Date        *string  `json:"date"`
	Progress    *float64 `json:"progress"`
}

type projectListResponse struct {
	Projects []model.Project `json:"projects"`
	Count    int             `json:"count"`
}

func parseRequestDate(s string, fallback time.Time) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return fallback, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, model.NewValidationError("date must be RFC 3339 or YYYY-MM-DD")
	}
	return t, nil
}

func listResponse(list []model.Project) projectListResponse {
	if list == nil {
		list = []model.Project{}
	}
	return projectListResponse{Projects: list, Count: len(list)}
}

// handleListProjects returns all projects, or the caller's with ?mine=true
func (s *Server) handleListProjects(c echo.Context) error {
	if c.QueryParam("mine") == "true" {
		return c.JSON(http.StatusOK, listResponse(s.vm.Mine(currentUser(c))))
	}
	return c.JSON(http.StatusOK, listResponse(s.vm.Projects()))
}

// handleRefreshProjects reloads the list from the store
func (s *Server) handleRefreshProjects(c echo.Context) error {
	list, err := s.vm.Fetch(c.Request().Context())
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, listResponse(list))
}

func (s *Server) handleGetProject(c echo.Context) error {
	p, ok := s.vm.Get(c.Param("id"))
	if !ok {
		return respondError(c, store.ErrNotFound)
	}
	return c.JSON(http.StatusOK, p)
}

func (s *Server) handleCreateProject(c echo.Context) error {
	var req createProjectRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}
	if strings.TrimSpace(req.Title) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "title is required"})
	}

	date, err := parseRequestDate(req.Date, time.Now())
	if err != nil {
		return respondError(c, err)
	}
	editable := true
	if req.IsEditable != nil {
		editable = *req.IsEditable
	}

	p, err := s.vm.Add(c.Request().Context(), req.Title, req.Description, currentUser(c), editable, req.Category, date, req.Progress)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, p)
}

func (s *Server) handleUpdateProject(c echo.Context) error {
	var req updateProjectRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "invalid request"})
	}

	p, ok := s.vm.Get(c.Param("id"))
	if !ok {
		return respondError(c, store.ErrNotFound)
	}
	if err := model.Authorize(currentUser(c), p); err != nil {
		return respondError(c, err)
	}

	u := projects.Update{
		Title:       p.Title,
		Description: p.Description,
		Category:    p.Category,
		Date:        p.Date,
		Progress:    p.Progress,
	}
	if req.Title != nil {
		if strings.TrimSpace(*req.Title) == "" {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": "title cannot be empty"})
		}
		u.Title = *req.Title
	}
	if req.Description != nil {
		u.Description = *req.Description
	}
	if req.Category != nil {
		u.Category = *req.Category
	}
	if req.Date != nil {
		date, err := parseRequestDate(*req.Date, p.Date)
		if err != nil {
			return respondError(c, err)
		}
		u.Date = date
	}
	if req.Progress != nil {
		u.Progress = *req.Progress
	}

	updated, err := s.vm.Edit(c.Request().Context(), p, u)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, updated)
}

func (s *Server) handleDeleteProject(c echo.Context) error {
	p, ok := s.vm.Get(c.Param("id"))
	if !ok {
		return respondError(c, store.ErrNotFound)
	}
	if err := model.Authorize(currentUser(c), p); err != nil {
		return respondError(c, err)
	}

	if err := s.vm.Delete(c.Request().Context(), p); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
