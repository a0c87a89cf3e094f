package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/existflow/projtrack/internal/auth"
	"github.com/existflow/projtrack/internal/session"
)

var authCmd = &cobra.Command{
	Use:   "auth",
	Short: "Manage authentication",
	Long:  `Register an account, log in and out, and show who is logged in.`,
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in with username and password",
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Log out",
	RunE:  runLogout,
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create a new account and log in",
	RunE:  runRegister,
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in user",
	RunE:  runWhoami,
}

func init() {
	authCmd.AddCommand(loginCmd)
	authCmd.AddCommand(logoutCmd)
	authCmd.AddCommand(registerCmd)
	authCmd.AddCommand(whoamiCmd)
}

// authFailure turns a gate rejection into a titled message
func authFailure(err error) error {
	var aerr *auth.Error
	if errors.As(err, &aerr) {
		return fmt.Errorf("%s: %s", aerr.Title, aerr.Message)
	}
	return err
}

func runLogin(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	p := newPrompter(cmd)
	username := p.Line("Username: ")
	password := p.Password("Password: ")

	u, err := a.gate.Login(cmd.Context(), username, password)
	if err != nil {
		return authFailure(err)
	}
	if err := session.Set(u.Username); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✅ Logged in as %s\n", u.Username)
	return nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	if session.Current() == "" {
		fmt.Fprintln(cmd.OutOrStdout(), "Not logged in.")
		return nil
	}
	if err := session.Clear(); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "✅ Logged out.")
	return nil
}

func runRegister(cmd *cobra.Command, args []string) error {
	a, err := openApp(cmd.Context())
	if err != nil {
		return err
	}
	defer a.Close()

	p := newPrompter(cmd)
	username := p.Line("Username: ")
	password := p.Password("Password: ")
	confirm := p.Password("Confirm Password: ")

	u, err := a.gate.Register(cmd.Context(), username, password, confirm)
	if err != nil {
		return authFailure(err)
	}
	if err := session.Set(u.Username); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "✅ Account created, logged in as %s\n", u.Username)
	return nil
}

func runWhoami(cmd *cobra.Command, args []string) error {
	user := session.Current()
	if user == "" {
		fmt.Fprintln(cmd.OutOrStdout(), "Not logged in.")
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), user)
	return nil
}
