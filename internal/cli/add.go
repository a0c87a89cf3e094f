package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/existflow/projtrack/internal/model"
)

var projectAddCmd = &cobra.Command{
	Use:   "add [title]",
	Short: "Add a new project",
	Long: `Add a new project owned by the logged-in user.

Examples:
  projtrack project add "Community garden"
  projtrack project add "Reading club" -c education -p 20 --date 2024-09-01
  projtrack project add "Archive" --locked`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

var (
	addDescription string
	addCategory    string
	addDate        string
	addProgress    float64
	addLocked      bool
)

func init() {
	projectAddCmd.Flags().StringVarP(&addDescription, "description", "d", "", "Project description")
	projectAddCmd.Flags().StringVarP(&addCategory, "category", "c", model.CategoryEducation, "Category key")
	projectAddCmd.Flags().StringVar(&addDate, "date", "", "Date (YYYY-MM-DD, 'today', 'tomorrow')")
	projectAddCmd.Flags().Float64VarP(&addProgress, "progress", "p", 0, "Progress in percent (0-100)")
	projectAddCmd.Flags().BoolVar(&addLocked, "locked", false, "Create the project as not editable")
}

func runAdd(cmd *cobra.Command, args []string) error {
	user, err := requireUser()
	if err != nil {
		return err
	}

	title := strings.Join(args, " ")
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("title is required")
	}
	if err := checkCategory(addCategory); err != nil {
		return err
	}
	date, err := parseDate(addDate, time.Now())
	if err != nil {
		return err
	}
	if err := model.ValidateProgress(addProgress); err != nil {
		return err
	}

	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	p, err := a.vm.Add(cmd.Context(), title, addDescription, user, !addLocked, addCategory, date, addProgress)
	if err != nil {
		return fmt.Errorf("failed to add project: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✓ Added [%s]: \"%s\" (%s, %.0f%%)\n",
		p.ShortID(), p.Title, model.CategoryLabel(p.Category), p.Progress)
	return nil
}
