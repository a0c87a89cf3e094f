package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/existflow/projtrack/internal/store"
)

var projectDeleteCmd = &cobra.Command{
	Use:     "delete [project-id]",
	Aliases: []string{"rm"},
	Short:   "Delete a project",
	Long: `Delete one of your projects by its ID or an ID prefix.

Examples:
  projtrack project delete 3f2a9c1b
  projtrack project rm 3f2a --force`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

var deleteForce bool

func init() {
	projectDeleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Do not ask for confirmation")
}

func runDelete(cmd *cobra.Command, args []string) error {
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

	out := cmd.OutOrStdout()
	if cfg.ConfirmDelete && !deleteForce {
		fmt.Fprintf(out, "About to delete: \"%s\" (ID: %s)\n", p.Title, p.ShortID())
		if !newPrompter(cmd).Confirm("Are you sure?") {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
	}

	if err := a.vm.Delete(cmd.Context(), p); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return fmt.Errorf("project already deleted: %s", p.ShortID())
		}
		return fmt.Errorf("failed to delete project: %w", err)
	}

	fmt.Fprintf(out, "🗑️  Deleted: \"%s\"\n", p.Title)
	return nil
}
