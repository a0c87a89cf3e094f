package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/existflow/projtrack/internal/model"
)

const listWidth = 36

// View renders the UI
func (m Model) View() string {
	if m.width == 0 {
		return "Loading..."
	}

	statusBar := m.renderStatusBar()

	if m.mode == ModeLogin || m.mode == ModeRegister {
		modal := lipgloss.Place(
			m.width, m.height-2,
			lipgloss.Center, lipgloss.Center,
			m.renderAuth(),
			lipgloss.WithWhitespaceChars(" "),
		)
		return lipgloss.JoinVertical(lipgloss.Left, modal, statusBar)
	}

	mainContent := lipgloss.JoinHorizontal(lipgloss.Top, m.renderList(), m.renderDetail())

	switch m.mode {
	case ModeAddProject, ModeEditProject:
		mainContent = lipgloss.Place(
			m.width, m.height-2,
			lipgloss.Center, lipgloss.Center,
			m.renderForm(),
			lipgloss.WithWhitespaceChars(" "),
		)
	case ModeConfirmDelete:
		mainContent = lipgloss.Place(
			m.width, m.height-2,
			lipgloss.Center, lipgloss.Center,
			m.renderConfirmDelete(),
			lipgloss.WithWhitespaceChars(" "),
		)
	case ModeHelp:
		mainContent = m.renderHelp()
	}

	return lipgloss.JoinVertical(lipgloss.Left, mainContent, statusBar)
}

func (m Model) renderTabs() string {
	mine, all := TabStyle, TabStyle
	if m.tab == TabMine {
		mine = TabActiveStyle
	} else {
		all = TabActiveStyle
	}
	return mine.Render("My projects") + all.Render("All projects")
}

func (m Model) renderList() string {
	var s string

	s += HeaderStyle.Render("ProjTrack") + HelpStyle.Render(m.user) + "\n"
	s += m.renderTabs() + "\n"
	s += lipgloss.NewStyle().Foreground(Border).Render(repeat("─", listWidth-4)) + "\n\n"

	if len(m.list) == 0 {
		if m.tab == TabMine {
			s += HelpStyle.Render("  No projects yet.\n  Press 'a' to add one.")
		} else {
			s += HelpStyle.Render("  No projects.")
		}
	}

	for i, p := range m.list {
		cursor := "  "
		style := ProjectItemStyle
		if i == m.cursor {
			cursor = "❯ "
			style = ProjectItemSelectedStyle
		}
		line := style.Render(fmt.Sprintf("%s%-*s", cursor, listWidth-14, truncate(p.Title, listWidth-14)))
		s += line + " " + FormatProgress(p.Progress) + "\n"
	}

	return ListStyle.Width(listWidth).Height(m.height - 2).Render(s)
}

func (m Model) renderDetail() string {
	width := m.width - listWidth - 2
	p := m.currentProject()
	if p == nil {
		return DetailStyle.Width(width).Height(m.height - 2).Render(HelpStyle.Render("No project selected"))
	}

	var s string
	s += lipgloss.NewStyle().Bold(true).Foreground(Primary).Render(p.Title) + "\n"
	s += lipgloss.NewStyle().Foreground(Border).Render(repeat("─", width-4)) + "\n\n"

	row := func(label, value string) {
		s += LabelStyle.Render(label) + value + "\n"
	}
	row("Category", model.CategoryLabel(p.Category))
	row("Date", p.Date.Local().Format("Jan 2, 2006"))
	row("Created by", p.CreatedBy)
	row("Progress", m.bar.ViewAs(p.Progress/100)+" "+FormatProgress(p.Progress))
	if !p.IsEditable {
		row("Status", "locked")
	}

	if p.Description != "" {
		s += "\n" + lipgloss.NewStyle().Width(width-4).Render(p.Description) + "\n"
	}

	if model.CanModify(m.user, *p) {
		s += "\n" + HelpStyle.Render("e:edit  d:delete")
	}

	return DetailStyle.Width(width).Height(m.height - 2).Render(s)
}

func (m Model) renderStatusBar() string {
	help := "tab:my/all  a:add  e:edit  d:del  r:refresh  ?:help  q:quit  L:logout"
	switch m.mode {
	case ModeLogin:
		help = "enter:next  tab:register instead  esc:quit"
	case ModeRegister:
		help = "enter:next  tab:login instead  esc:quit"
	}
	if m.message != "" {
		help = m.message
	}
	return StatusBarStyle.Width(m.width).Render(help)
}

func (m Model) renderAuth() string {
	title := "Login"
	if m.mode == ModeRegister {
		title = "Register"
	}

	content := lipgloss.NewStyle().Bold(true).Foreground(Primary).Render("ProjTrack") + "  "
	content += HelpStyle.Render(title) + "\n\n"

	if m.authForm.step > authUsername {
		content += LabelStyle.Render("Username") + m.authForm.username + "\n"
	}
	if m.authForm.step > authPassword {
		content += LabelStyle.Render("Password") + strings.Repeat("•", len(m.authForm.password)) + "\n"
	}
	content += m.input.View() + "\n\n"
	content += HelpStyle.Render("Enter:next  Tab:switch  Esc:quit")

	return ModalStyle.Width(50).Render(content)
}

func (m Model) renderForm() string {
	title := "New Project"
	if m.mode == ModeEditProject {
		title = "Edit Project"
	}

	labels := [stepCount]string{"Title", "Description", "Category", "Date", "Progress"}

	content := lipgloss.NewStyle().Bold(true).Render(title) + "\n\n"
	for i := 0; i < stepCount; i++ {
		switch {
		case i < m.form.step:
			value := m.form.values[i]
			if i == stepCategory {
				value = model.CategoryLabel(value)
			}
			content += LabelStyle.Render(labels[i]) + truncate(value, 40) + "\n"
		case i == m.form.step:
			if i == stepCategory {
				content += LabelStyle.Render(labels[i]) + "◀ " + model.CategoryLabel(m.form.values[i]) + " ▶\n"
			} else {
				content += LabelStyle.Render(labels[i]) + m.input.View() + "\n"
			}
		}
	}
	content += "\n" + HelpStyle.Render("Enter:next  Esc:cancel")

	return ModalStyle.Width(60).Render(content)
}

func (m Model) renderConfirmDelete() string {
	p := m.currentProject()
	if p == nil {
		return ""
	}
	content := lipgloss.NewStyle().Bold(true).Foreground(Error).Render("Delete Project") + "\n\n"
	content += fmt.Sprintf("Delete \"%s\"? This cannot be undone.\n\n", truncate(p.Title, 40))
	content += HelpStyle.Render("y:delete  any other key:cancel")
	return DangerModalStyle.Render(content)
}

func (m Model) renderHelp() string {
	help := `
╭─── Keyboard Shortcuts ───╮
│                          │
│  Navigation              │
│  ──────────              │
│  j/↓    Move down        │
│  k/↑    Move up          │
│  G      Go to bottom     │
│  Tab    My / All         │
│                          │
│  Actions                 │
│  ───────                 │
│  a       Add project     │
│  e       Edit            │
│  d       Delete          │
│  r       Refresh         │
│                          │
│  Other                   │
│  ─────                   │
│  L       Logout          │
│  ?       Toggle help     │
│  q       Quit            │
│                          │
╰──────────────────────────╯

     Press any key to close
`
	return lipgloss.Place(m.width, m.height-2, lipgloss.Center, lipgloss.Center, help)
}
