package model

import "errors"

// ErrForbidden is returned when an actor may not modify a project
var ErrForbidden = errors.New("not allowed to modify this project")

// ValidationError reports input that breaks a model invariant
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// NewValidationError creates a ValidationError
func NewValidationError(msg string) error {
	return &ValidationError{Message: msg}
}

// Authorize returns nil if actor may edit or delete p.
// Only the creator may, and only while the project is editable.
func Authorize(actor string, p Project) error {
	if actor == "" || actor != p.CreatedBy {
		return ErrForbidden
	}
	if !p.IsEditable {
		return ErrForbidden
	}
	return nil
}

// CanModify is the boolean form of Authorize
func CanModify(actor string, p Project) bool {
	return Authorize(actor, p) == nil
}
