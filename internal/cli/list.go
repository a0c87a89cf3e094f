package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/existflow/projtrack/internal/model"
	"github.com/existflow/projtrack/internal/session"
)

var projectListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List projects",
	Long: `List all projects, or only your own.

Examples:
  projtrack project list
  projtrack project list --mine`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var projectShowCmd = &cobra.Command{
	Use:   "show [project-id]",
	Short: "Show one project",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

var listMine bool

func init() {
	projectListCmd.Flags().BoolVarP(&listMine, "mine", "m", false, "Only projects you created")
}

func runList(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	out := cmd.OutOrStdout()
	title := "All projects"
	list := a.vm.Projects()
	if listMine {
		user, err := requireUser()
		if err != nil {
			return err
		}
		title = "My projects"
		list = a.vm.Mine(user)
	}

	if len(list) == 0 {
		fmt.Fprintln(out, "No projects found. Add one with: projtrack project add \"Title\"")
		return nil
	}

	printProjects(out, title, list)
	return nil
}

func printProjects(out io.Writer, title string, list []model.Project) {
	fmt.Fprintf(out, "\n📁 %s (%d)\n", title, len(list))
	fmt.Fprintln(out, strings.Repeat("─", 78))
	for _, p := range list {
		printProject(out, p)
	}
	fmt.Fprintln(out)
}

func printProject(out io.Writer, p model.Project) {
	title := p.Title
	if len(title) > 30 {
		title = title[:27] + "..."
	}
	lock := " "
	if !p.IsEditable {
		lock = "🔒"
	}
	fmt.Fprintf(out, "  %-8s  %-30s  %-20s  %-10s  %4.0f%% %s\n",
		p.ShortID(), title, model.CategoryLabel(p.Category), p.CreatedBy, p.Progress, lock)
}

func runShow(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := resolveProject(a.vm, args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\n%s\n", p.Title)
	fmt.Fprintln(out, strings.Repeat("─", 40))
	fmt.Fprintf(out, "  %-12s %s\n", "ID", p.ID)
	fmt.Fprintf(out, "  %-12s %s\n", "Category", model.CategoryLabel(p.Category))
	fmt.Fprintf(out, "  %-12s %s\n", "Date", p.Date.Local().Format(dateLayout))
	fmt.Fprintf(out, "  %-12s %s\n", "Created by", p.CreatedBy)
	fmt.Fprintf(out, "  %-12s %s %.0f%%\n", "Progress", progressBar(p.Progress, 20), p.Progress)
	fmt.Fprintf(out, "  %-12s %t\n", "Editable", p.IsEditable)
	if p.Description != "" {
		fmt.Fprintf(out, "\n  %s\n", p.Description)
	}
	if user := session.Current(); model.CanModify(user, p) {
		fmt.Fprintf(out, "\n  edit: projtrack project edit %s\n", p.ShortID())
	}
	fmt.Fprintln(out)
	return nil
}

// progressBar renders pct as a fixed-width bar
func progressBar(pct float64, width int) string {
	filled := int(pct / 100 * float64(width))
	if filled > width {
		filled = width
	}
	if filled < 0 {
		filled = 0
	}
	return "[" + strings.Repeat("█", filled) + strings.Repeat("░", width-filled) + "]"
}
