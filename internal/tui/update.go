package tui

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/existflow/projtrack/internal/auth"
	"github.com/existflow/projtrack/internal/model"
	"github.com/existflow/projtrack/internal/projects"
	"github.com/existflow/projtrack/internal/store"
)

// Init starts the cursor blinking on the login screen
func (m Model) Init() tea.Cmd {
	if m.mode == ModeLogin {
		return textinput.Blink
	}
	return nil
}

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case ModeLogin, ModeRegister:
			return m.updateAuth(msg)
		case ModeAddProject, ModeEditProject:
			return m.updateForm(msg)
		case ModeConfirmDelete:
			return m.updateConfirmDelete(msg)
		case ModeHelp:
			m.mode = ModeNormal
			return m, nil
		}
		return m.handleNormalKeys(msg)
	}

	return m, nil
}

// handleNormalKeys handles key presses in normal mode
func (m Model) handleNormalKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, keys.Tab):
		if m.tab == TabMine {
			m.tab = TabAll
		} else {
			m.tab = TabMine
		}
		m.cursor = 0
		m.loadData()

	case key.Matches(msg, keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}

	case key.Matches(msg, keys.Down):
		if m.cursor < len(m.list)-1 {
			m.cursor++
		}

	case msg.String() == "G":
		if len(m.list) > 0 {
			m.cursor = len(m.list) - 1
		}

	case key.Matches(msg, keys.Add):
		return m.startAddProject()

	case key.Matches(msg, keys.Edit):
		return m.startEditProject()

	case key.Matches(msg, keys.Delete):
		m.startDelete()

	case key.Matches(msg, keys.Help):
		m.mode = ModeHelp

	case key.Matches(msg, keys.Logout):
		return m.handleLogout()

	case key.Matches(msg, keys.Refresh):
		m.handleRefresh()
	}

	return m, nil
}

func (m *Model) handleRefresh() {
	list, err := m.vm.Fetch(context.Background())
	if err != nil {
		m.message = fmt.Sprintf("Refresh failed: %v", err)
		return
	}
	m.loadData()
	m.message = fmt.Sprintf("Loaded %d projects", len(list))
}

func (m Model) handleLogout() (tea.Model, tea.Cmd) {
	if m.hooks.OnLogout != nil {
		if err := m.hooks.OnLogout(); err != nil {
			m.message = fmt.Sprintf("Logout error: %v", err)
			return m, nil
		}
	}
	m.user = ""
	m.loadData()
	m.startAuth(ModeLogin)
	m.message = "Logged out"
	return m, textinput.Blink
}

// authorizeCurrent returns the selected project if the user may modify it
func (m *Model) authorizeCurrent() (model.Project, bool) {
	p := m.currentProject()
	if p == nil {
		return model.Project{}, false
	}
	if err := model.Authorize(m.user, *p); err != nil {
		if p.CreatedBy == m.user {
			m.message = "This project is locked"
		} else {
			m.message = fmt.Sprintf("Only %s can change this project", p.CreatedBy)
		}
		return model.Project{}, false
	}
	return *p, true
}

func (m Model) startAddProject() (tea.Model, tea.Cmd) {
	m.mode = ModeAddProject
	m.form = projectForm{}
	m.form.values[stepCategory] = model.Categories()[0].Key
	m.form.values[stepDate] = m.now().Format(dateLayout)
	m.form.values[stepProgress] = "0"
	m.showStep()
	return m, textinput.Blink
}

func (m Model) startEditProject() (tea.Model, tea.Cmd) {
	p, ok := m.authorizeCurrent()
	if !ok {
		return m, nil
	}
	m.mode = ModeEditProject
	m.form = projectForm{target: p, category: categoryIndex(p.Category)}
	m.form.values[stepTitle] = p.Title
	m.form.values[stepDescription] = p.Description
	m.form.values[stepCategory] = p.Category
	m.form.values[stepDate] = p.Date.Local().Format(dateLayout)
	m.form.values[stepProgress] = fmt.Sprintf("%g", p.Progress)
	m.showStep()
	return m, textinput.Blink
}

func (m *Model) startDelete() {
	if _, ok := m.authorizeCurrent(); !ok {
		return
	}
	m.mode = ModeConfirmDelete
}

func (m Model) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.mode = ModeNormal
	if !key.Matches(msg, keys.Yes) {
		m.message = "Cancelled"
		return m, nil
	}

	p := m.currentProject()
	if p == nil {
		return m, nil
	}
	title := p.Title
	err := m.vm.Delete(context.Background(), *p)
	switch {
	case errors.Is(err, store.ErrNotFound):
		m.message = "Project was already deleted"
	case err != nil:
		m.message = fmt.Sprintf("Error deleting project: %v", err)
	default:
		m.message = fmt.Sprintf("Deleted: %s", title)
	}
	m.loadData()
	return m, nil
}

// showStep loads the current form step into the input
func (m *Model) showStep() {
	placeholders := [stepCount]string{
		stepTitle:       "Project title...",
		stepDescription: "Description...",
		stepCategory:    "↑/↓ to choose",
		stepDate:        "YYYY-MM-DD",
		stepProgress:    "0-100",
	}
	m.input.EchoMode = textinput.EchoNormal
	m.input.Placeholder = placeholders[m.form.step]
	m.input.SetValue(m.form.values[m.form.step])
	m.input.CursorEnd()
	m.input.Focus()
}

func (m Model) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Escape):
		m.mode = ModeNormal
		m.input.Blur()
		m.message = "Cancelled"
		return m, nil

	case m.form.step == stepCategory && (msg.String() == "up" || msg.String() == "down"):
		n := len(model.Categories())
		if msg.String() == "up" {
			m.form.category = (m.form.category + n - 1) % n
		} else {
			m.form.category = (m.form.category + 1) % n
		}
		m.form.values[stepCategory] = model.Categories()[m.form.category].Key
		m.input.SetValue(m.form.values[stepCategory])
		return m, nil

	case key.Matches(msg, keys.Enter):
		if m.form.step != stepCategory {
			m.form.values[m.form.step] = m.input.Value()
		}
		if m.form.step == stepTitle && m.form.values[stepTitle] == "" {
			m.message = "Title is required"
			return m, nil
		}
		if m.form.step < stepCount-1 {
			m.form.step++
			m.showStep()
			return m, nil
		}
		m.submitForm()
		return m, nil
	}

	if m.form.step == stepCategory {
		return m, nil
	}
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submitForm saves the collected fields. On a validation error the form
// stays open at the offending step.
func (m *Model) submitForm() {
	v := m.form.values
	date, err := parseDate(v[stepDate], m.now())
	if err != nil {
		m.form.step = stepDate
		m.showStep()
		m.message = err.Error()
		return
	}
	pct, err := parseProgress(v[stepProgress])
	if err != nil {
		m.form.step = stepProgress
		m.showStep()
		m.message = err.Error()
		return
	}

	ctx := context.Background()
	if m.mode == ModeAddProject {
		p, err := m.vm.Add(ctx, v[stepTitle], v[stepDescription], m.user, true, v[stepCategory], date, pct)
		if err != nil {
			m.message = fmt.Sprintf("Error adding project: %v", err)
		} else {
			m.message = fmt.Sprintf("Added: %s", p.Title)
		}
	} else {
		p, err := m.vm.Edit(ctx, m.form.target, projects.Update{
			Title:       v[stepTitle],
			Description: v[stepDescription],
			Category:    v[stepCategory],
			Date:        date,
			Progress:    pct,
		})
		if err != nil {
			m.message = fmt.Sprintf("Error updating project: %v", err)
		} else {
			m.message = fmt.Sprintf("Updated: %s", p.Title)
		}
	}

	m.mode = ModeNormal
	m.input.Blur()
	m.loadData()
}

func (m *Model) startAuth(mode Mode) {
	m.mode = mode
	m.authForm = authForm{}
	m.showAuthStep()
}

func (m *Model) showAuthStep() {
	m.input.SetValue("")
	switch m.authForm.step {
	case authUsername:
		m.input.EchoMode = textinput.EchoNormal
		m.input.Placeholder = "Username"
	case authPassword:
		m.input.EchoMode = textinput.EchoPassword
		m.input.Placeholder = "Password"
	case authConfirm:
		m.input.EchoMode = textinput.EchoPassword
		m.input.Placeholder = "Confirm password"
	}
	m.input.Focus()
}

func (m Model) updateAuth(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+c", msg.String() == "esc":
		return m, tea.Quit

	case key.Matches(msg, keys.Tab):
		if m.mode == ModeLogin {
			m.startAuth(ModeRegister)
		} else {
			m.startAuth(ModeLogin)
		}
		m.message = ""
		return m, nil

	case key.Matches(msg, keys.Enter):
		value := m.input.Value()
		switch m.authForm.step {
		case authUsername:
			m.authForm.username = value
			m.authForm.step = authPassword
			m.showAuthStep()
			return m, nil
		case authPassword:
			m.authForm.password = value
			if m.mode == ModeRegister {
				m.authForm.step = authConfirm
				m.showAuthStep()
				return m, nil
			}
			return m.submitAuth("")
		case authConfirm:
			return m.submitAuth(value)
		}
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) submitAuth(confirm string) (tea.Model, tea.Cmd) {
	ctx := context.Background()
	f := m.authForm

	var (
		u   model.User
		err error
	)
	if m.mode == ModeRegister {
		u, err = m.gate.Register(ctx, f.username, f.password, confirm)
	} else {
		u, err = m.gate.Login(ctx, f.username, f.password)
	}
	if err != nil {
		var aerr *auth.Error
		if errors.As(err, &aerr) {
			m.message = aerr.Title + ": " + aerr.Message
		} else {
			m.message = err.Error()
		}
		m.startAuth(m.mode)
		return m, nil
	}

	m.message = ""
	if m.hooks.OnLogin != nil {
		if err := m.hooks.OnLogin(u.Username); err != nil {
			m.message = fmt.Sprintf("Could not save session: %v", err)
		}
	}
	m.user = u.Username
	m.mode = ModeNormal
	m.input.Blur()
	m.input.EchoMode = textinput.EchoNormal
	m.tab = TabMine
	m.cursor = 0
	m.loadData()
	if m.message == "" {
		m.message = "Logged in as " + u.Username
	}
	return m, nil
}
