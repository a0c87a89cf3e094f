package tui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/existflow/projtrack/internal/auth"
	"github.com/existflow/projtrack/internal/logger"
	"github.com/existflow/projtrack/internal/model"
	"github.com/existflow/projtrack/internal/projects"
)

// Tab selects which projects the list shows
type Tab int

const (
	TabMine Tab = iota
	TabAll
)

// Mode represents the current UI mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeLogin
	ModeRegister
	ModeAddProject
	ModeEditProject
	ModeConfirmDelete
	ModeHelp
)

// Form steps, in the order they are asked
const (
	stepTitle = iota
	stepDescription
	stepCategory
	stepDate
	stepProgress
	stepCount
)

// Auth steps
const (
	authUsername = iota
	authPassword
	authConfirm
)

const dateLayout = "2006-01-02"

// Hooks lets the caller persist login state outside the TUI
type Hooks struct {
	OnLogin  func(username string) error
	OnLogout func() error
}

// projectForm collects the fields of a project being added or edited
type projectForm struct {
	step     int
	values   [stepCount]string
	category int
	target   model.Project // project being edited
}

// authForm collects credentials
type authForm struct {
	step     int
	username string
	password string
}

// Model is the main TUI model
type Model struct {
	vm    *projects.ViewModel
	gate  *auth.Gate
	hooks Hooks
	user  string

	list []model.Project // projects visible in the current tab

	// UI state
	width  int
	height int
	tab    Tab
	mode   Mode
	cursor int

	// Input
	input    textinput.Model
	form     projectForm
	authForm authForm
	bar      progress.Model

	message string
	now     func() time.Time
}

// NewModel creates a new TUI model. An empty user starts at the login screen.
func NewModel(vm *projects.ViewModel, gate *auth.Gate, user string, hooks Hooks) Model {
	logger.Info("Initializing TUI model", logger.F("user", user))

	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 50

	m := Model{
		vm:    vm,
		gate:  gate,
		hooks: hooks,
		user:  user,
		tab:   TabMine,
		mode:  ModeNormal,
		input: ti,
		bar:   progress.New(progress.WithDefaultGradient(), progress.WithWidth(30)),
		now:   time.Now,
	}

	if user == "" {
		m.startAuth(ModeLogin)
	}

	if _, err := vm.Fetch(context.Background()); err != nil {
		m.message = "Error loading projects: " + err.Error()
	}
	m.loadData()

	logger.Debug("TUI model initialized", logger.F("projects", vm.Len()))
	return m
}

// loadData refreshes the visible list from the view-model cache
func (m *Model) loadData() {
	if m.tab == TabMine {
		m.list = m.vm.Mine(m.user)
	} else {
		m.list = m.vm.Projects()
	}
	if m.cursor >= len(m.list) {
		m.cursor = len(m.list) - 1
	}
	if m.cursor < 0 {
		m.cursor = 0
	}
}

func (m *Model) currentProject() *model.Project {
	if m.cursor < len(m.list) {
		return &m.list[m.cursor]
	}
	return nil
}
