package model

import (
	"math"
	"time"

	"github.com/google/uuid"
)

// Progress bounds, in percent
const (
	MinProgress = 0.0
	MaxProgress = 100.0
)

// Project is a tracked piece of work owned by the user who created it
type Project struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	CreatedBy   string    `json:"created_by"`
	IsEditable  bool      `json:"is_editable"`
	Category    string    `json:"category"`
	Date        time.Time `json:"date"`
	Progress    float64   `json:"progress"`
}

// NewProject creates a project with a fresh ID
func NewProject(title, description, createdBy string, isEditable bool, category string, date time.Time, progress float64) (Project, error) {
	p := Project{
		ID:          uuid.New().String(),
		Title:       title,
		Description: description,
		CreatedBy:   createdBy,
		IsEditable:  isEditable,
		Category:    category,
		Date:        NormalizeDate(date),
		Progress:    progress,
	}
	if err := p.Validate(); err != nil {
		return Project{}, err
	}
	return p, nil
}

// Validate checks the invariants a stored project must hold
func (p *Project) Validate() error {
	if p.ID == "" {
		return NewValidationError("project id is required")
	}
	return ValidateProgress(p.Progress)
}

// ValidateProgress rejects percentages outside [0,100]
func ValidateProgress(progress float64) error {
	if math.IsNaN(progress) || progress < MinProgress || progress > MaxProgress {
		return NewValidationError("progress must be between 0 and 100")
	}
	return nil
}

// NormalizeDate drops the zone and monotonic reading so a date compares
// equal to itself after a round trip through storage
func NormalizeDate(t time.Time) time.Time {
	return t.UTC().Round(0)
}

// WithDefaults fills fields a legacy or partial record may lack
func (p Project) WithDefaults(now time.Time) Project {
	if p.Date.IsZero() {
		p.Date = NormalizeDate(now)
	}
	if math.IsNaN(p.Progress) {
		p.Progress = 0
	}
	return p
}

// ShortID returns the first 8 characters of the ID for display
func (p *Project) ShortID() string {
	if len(p.ID) > 8 {
		return p.ID[:8]
	}
	return p.ID
}
