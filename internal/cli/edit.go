package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/existflow/projtrack/internal/model"
	"github.com/existflow/projtrack/internal/projects"
)

var projectEditCmd = &cobra.Command{
	Use:   "edit [project-id]",
	Short: "Edit a project",
	Long: `Change fields of one of your projects. Only the given flags change.

Examples:
  projtrack project edit 3f2a --progress 75
  projtrack project edit 3f2a --title "Updated Project" -c arts_culture`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

var (
	editTitle       string
	editDescription string
	editCategory    string
	editDate        string
	editProgress    float64
)

func init() {
	projectEditCmd.Flags().StringVarP(&editTitle, "title", "t", "", "New title")
	projectEditCmd.Flags().StringVarP(&editDescription, "description", "d", "", "New description")
	projectEditCmd.Flags().StringVarP(&editCategory, "category", "c", "", "New category key")
	projectEditCmd.Flags().StringVar(&editDate, "date", "", "New date (YYYY-MM-DD)")
	projectEditCmd.Flags().Float64VarP(&editProgress, "progress", "p", 0, "New progress in percent (0-100)")
}

func runEdit(cmd *cobra.Command, args []string) error {
	user, err := requireUser()
	if err != nil {
		return err
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := resolveProject(a.vm, args[0])
	if err != nil {
		return err
	}
	if err := authorize(user, p); err != nil {
		return err
	}

	u := projects.Update{
		Title:       p.Title,
		Description: p.Description,
		Category:    p.Category,
		Date:        p.Date,
		Progress:    p.Progress,
	}
	flags := cmd.Flags()
	if flags.Changed("title") {
		if editTitle == "" {
			return fmt.Errorf("title cannot be empty")
		}
		u.Title = editTitle
	}
	if flags.Changed("description") {
		u.Description = editDescription
	}
	if flags.Changed("category") {
		if err := checkCategory(editCategory); err != nil {
			return err
		}
		u.Category = editCategory
	}
	if flags.Changed("date") {
		if u.Date, err = parseDate(editDate, p.Date); err != nil {
			return err
		}
	}
	if flags.Changed("progress") {
		if err := model.ValidateProgress(editProgress); err != nil {
			return err
		}
		u.Progress = editProgress
	}

	updated, err := a.vm.Edit(cmd.Context(), p, u)
	if err != nil {
		return fmt.Errorf("failed to update project: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Updated [%s]: \"%s\" (%.0f%%)\n", updated.ShortID(), updated.Title, updated.Progress)
	return nil
}
