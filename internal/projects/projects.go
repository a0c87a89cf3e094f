// Package projects keeps the in-memory list of projects that presentation
// code renders, and writes every change through to a store.
//
// A mutation is committed to the store first; the cached list changes only
// after the commit succeeds, so a failed write never leaves the two apart.
package projects

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/existflow/projtrack/internal/logger"
	"github.com/existflow/projtrack/internal/model"
	"github.com/existflow/projtrack/internal/store"
)

// ErrAmbiguous is returned by Resolve when a prefix matches several projects
var ErrAmbiguous = errors.New("id prefix matches more than one project")

// Update carries the editable fields of a project
type Update struct {
	Title       string
	Description string
	Category    string
	Date        time.Time
	Progress    float64
}

// ViewModel mirrors the stored projects in insertion order
type ViewModel struct {
	mu       sync.Mutex
	store    store.Store
	projects []model.Project
	now      func() time.Time
}

// New creates an empty view-model over s. Call Fetch to load it.
func New(s store.Store) *ViewModel {
	return &ViewModel{store: s, now: time.Now}
}

// Fetch replaces the cached list with the stored projects
func (vm *ViewModel) Fetch(ctx context.Context) ([]model.Project, error) {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	stored, err := vm.store.ListProjects(ctx)
	if err != nil {
		logger.Error("Failed to fetch projects", logger.F("error", err))
		return nil, fmt.Errorf("failed to fetch projects: %w", err)
	}

	now := vm.now()
	list := make([]model.Project, 0, len(stored))
	for _, p := range stored {
		list = append(list, p.WithDefaults(now))
	}
	vm.projects = list

	logger.Debug("Fetched projects", logger.F("count", len(list)))
	return vm.snapshot(), nil
}

// dateOrNow keeps a zero date out of the store
func (vm *ViewModel) dateOrNow(date time.Time) time.Time {
	if date.IsZero() {
		date = vm.now()
	}
	return model.NormalizeDate(date)
}

// Add creates a project with a fresh ID, stores it and appends it to the list.
// A zero date becomes the current time.
func (vm *ViewModel) Add(ctx context.Context, title, description, createdBy string, isEditable bool, category string, date time.Time, progress float64) (model.Project, error) {
	date = vm.dateOrNow(date)
	p, err := model.NewProject(title, description, createdBy, isEditable, category, date, progress)
	if err != nil {
		return model.Project{}, err
	}

	vm.mu.Lock()
	defer vm.mu.Unlock()

	err = store.WithTx(ctx, vm.store, func(tx store.Tx) error {
		return tx.InsertProject(ctx, p)
	})
	if err != nil {
		logger.Error("Failed to add project", logger.F("title", title), logger.F("error", err))
		return model.Project{}, err
	}

	vm.projects = append(vm.projects, p)
	logger.Info("Project added", logger.F("id", p.ID), logger.F("created_by", p.CreatedBy))
	return p, nil
}

// Edit applies u to the project with p's ID. A zero date becomes the current time.
func (vm *ViewModel) Edit(ctx context.Context, p model.Project, u Update) (model.Project, error) {
	if err := model.ValidateProgress(u.Progress); err != nil {
		return model.Project{}, err
	}

	vm.mu.Lock()
	defer vm.mu.Unlock()

	i := vm.indexOf(p.ID)
	if i < 0 {
		return model.Project{}, store.ErrNotFound
	}

	updated := vm.projects[i]
	updated.Title = u.Title
	updated.Description = u.Description
	updated.Category = u.Category
	updated.Date = vm.dateOrNow(u.Date)
	updated.Progress = u.Progress

	err := store.WithTx(ctx, vm.store, func(tx store.Tx) error {
		return tx.UpdateProject(ctx, updated)
	})
	if err != nil {
		logger.Error("Failed to edit project", logger.F("id", p.ID), logger.F("error", err))
		return model.Project{}, err
	}

	vm.projects[i] = updated
	logger.Info("Project edited", logger.F("id", p.ID))
	return updated, nil
}

// Delete removes the project with p's ID from the store and the list.
// If the store no longer has it, the stale entry is still dropped and
// store.ErrNotFound is returned.
func (vm *ViewModel) Delete(ctx context.Context, p model.Project) error {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	err := store.WithTx(ctx, vm.store, func(tx store.Tx) error {
		return tx.DeleteProject(ctx, p.ID)
	})
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		logger.Error("Failed to delete project", logger.F("id", p.ID), logger.F("error", err))
		return err
	}

	if i := vm.indexOf(p.ID); i >= 0 {
		vm.projects = append(vm.projects[:i:i], vm.projects[i+1:]...)
	}

	if err != nil {
		logger.Warn("Project already gone from store", logger.F("id", p.ID))
		return err
	}
	logger.Info("Project deleted", logger.F("id", p.ID))
	return nil
}

// Projects returns a copy of the cached list
func (vm *ViewModel) Projects() []model.Project {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return vm.snapshot()
}

// Mine returns the cached projects created by username
func (vm *ViewModel) Mine(username string) []model.Project {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	var out []model.Project
	for _, p := range vm.projects {
		if p.CreatedBy == username {
			out = append(out, p)
		}
	}
	return out
}

// Get returns the cached project with this ID
func (vm *ViewModel) Get(id string) (model.Project, bool) {
	vm.mu.Lock()
	defer vm.mu.Unlock()

	if i := vm.indexOf(id); i >= 0 {
		return vm.projects[i], true
	}
	return model.Project{}, false
}

// Resolve finds the cached project whose ID is or starts with prefix
func (vm *ViewModel) Resolve(prefix string) (model.Project, error) {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return model.Project{}, store.ErrNotFound
	}

	vm.mu.Lock()
	defer vm.mu.Unlock()

	var match []model.Project
	for _, p := range vm.projects {
		if p.ID == prefix {
			return p, nil
		}
		if strings.HasPrefix(p.ID, prefix) {
			match = append(match, p)
		}
	}

	switch len(match) {
	case 0:
		return model.Project{}, store.ErrNotFound
	case 1:
		return match[0], nil
	default:
		return model.Project{}, ErrAmbiguous
	}
}

// Len returns the number of cached projects
func (vm *ViewModel) Len() int {
	vm.mu.Lock()
	defer vm.mu.Unlock()
	return len(vm.projects)
}

func (vm *ViewModel) indexOf(id string) int {
	for i, p := range vm.projects {
		if p.ID == id {
			return i
		}
	}
	return -1
}

func (vm *ViewModel) snapshot() []model.Project {
	out := make([]model.Project, len(vm.projects))
	copy(out, vm.projects)
	return out
}
