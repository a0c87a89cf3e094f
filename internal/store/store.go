// Package store persists projects and users.
//
// Every mutation runs inside a Tx and becomes durable only on Commit, so a
// caller that mirrors records in memory can apply its own change after the
// commit succeeds and never diverge from storage.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/existflow/projtrack/internal/model"
)

var (
	ErrNotFound = errors.New("record not found")
	ErrConflict = errors.New("record already exists")
	ErrTxDone   = errors.New("transaction already committed or rolled back")
)

// ProjectQuery matches projects field by field; empty fields match anything
type ProjectQuery struct {
	ID        string
	Title     string
	CreatedBy string
}

// Match reports whether p satisfies the query
func (q ProjectQuery) Match(p model.Project) bool {
	if q.ID != "" && p.ID != q.ID {
		return false
	}
	if q.Title != "" && p.Title != q.Title {
		return false
	}
	if q.CreatedBy != "" && p.CreatedBy != q.CreatedBy {
		return false
	}
	return true
}

// Store reads records and opens transactions for writing them
type Store interface {
	// Begin starts a write transaction.
	Begin(ctx context.Context) (Tx, error)
	// ListProjects returns all projects in insertion order.
	ListProjects(ctx context.Context) ([]model.Project, error)
	// FindProjects returns the projects matching q in insertion order.
	FindProjects(ctx context.Context, q ProjectQuery) ([]model.Project, error)
	// ListUsers returns all users in insertion order.
	ListUsers(ctx context.Context) ([]model.User, error)
	// FindUser returns the user with exactly this username.
	FindUser(ctx context.Context, username string) (model.User, error)
	// Close releases the underlying connection.
	Close() error
}

// Tx is a unit of work. Rollback after Commit is a no-op.
type Tx interface {
	InsertProject(ctx context.Context, p model.Project) error
	UpdateProject(ctx context.Context, p model.Project) error
	DeleteProject(ctx context.Context, id string) error
	InsertUser(ctx context.Context, u model.User) error
	Commit() error
	Rollback() error
}

// WithTx runs fn in a transaction, committing if fn succeeds and rolling back otherwise
func WithTx(ctx context.Context, s Store, fn func(Tx) error) error {
	tx, err := s.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}
