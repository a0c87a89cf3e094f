package cli

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/existflow/projtrack/internal/model"
	"github.com/existflow/projtrack/internal/projects"
	"github.com/existflow/projtrack/internal/store"
)

const dateLayout = "2006-01-02"

var projectCmd = &cobra.Command{
	Use:     "project",
	Aliases: []string{"p"},
	Short:   "Manage projects",
	Long:    `Add, list, show, edit and delete projects.`,
}

var projectCategoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List the project categories",
	Args:  cobra.NoArgs,
	RunE:  runProjectCategories,
}

func init() {
	projectCmd.AddCommand(projectAddCmd)
	projectCmd.AddCommand(projectListCmd)
	projectCmd.AddCommand(projectShowCmd)
	projectCmd.AddCommand(projectEditCmd)
	projectCmd.AddCommand(projectDeleteCmd)
	projectCmd.AddCommand(projectCategoriesCmd)
}

func runProjectCategories(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	for _, c := range model.Categories() {
		fmt.Fprintf(out, "  %-22s  %s\n", c.Key, c.Label)
	}
	fmt.Fprintln(out)
	return nil
}

// resolveProject finds a cached project by ID or ID prefix
func resolveProject(vm *projects.ViewModel, id string) (model.Project, error) {
	p, err := vm.Resolve(id)
	switch {
	case errors.Is(err, store.ErrNotFound):
		return model.Project{}, fmt.Errorf("project not found: %s", id)
	case errors.Is(err, projects.ErrAmbiguous):
		return model.Project{}, fmt.Errorf("'%s' matches more than one project, use a longer id", id)
	}
	return p, err
}

// authorize explains a rejected model.Authorize to the user
func authorize(user string, p model.Project) error {
	if err := model.Authorize(user, p); err != nil {
		if p.CreatedBy != user {
			return fmt.Errorf("only %s can change \"%s\"", p.CreatedBy, p.Title)
		}
		return fmt.Errorf("\"%s\" is locked", p.Title)
	}
	return nil
}

// parseDate accepts YYYY-MM-DD, "today" and "tomorrow"
func parseDate(s string, now time.Time) (time.Time, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "today":
		return now, nil
	case "tomorrow":
		return now.AddDate(0, 0, 1), nil
	}
	t, err := time.ParseInLocation(dateLayout, strings.TrimSpace(s), time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, use YYYY-MM-DD", s)
	}
	return t, nil
}

// checkCategory rejects keys outside the fixed list
func checkCategory(key string) error {
	if key == "" || model.IsKnownCategory(key) {
		return nil
	}
	return fmt.Errorf("unknown category %q, see 'projtrack project categories'", key)
}
