package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/existflow/projtrack/internal/auth"
	"github.com/existflow/projtrack/internal/config"
	"github.com/existflow/projtrack/internal/logger"
	"github.com/existflow/projtrack/internal/projects"
	"github.com/existflow/projtrack/internal/session"
	"github.com/existflow/projtrack/internal/store"
)

// cfg is loaded by the root command before any subcommand runs
var cfg = config.DefaultConfig()

// app bundles what a command needs to talk to storage
type app struct {
	store store.Store
	vm    *projects.ViewModel
	gate  *auth.Gate
}

// openApp opens the configured store and loads the project list
func openApp(ctx context.Context) (*app, error) {
	s, err := store.Open(cfg.Storage)
	if err != nil {
		logger.Error("Failed to open store", logger.F("driver", cfg.Storage.Driver), logger.F("error", err))
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	vm := projects.New(s)
	if _, err := vm.Fetch(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}

	return &app{
		store: s,
		vm:    vm,
		gate:  auth.NewGate(s, cfg.BcryptCost),
	}, nil
}

func (a *app) Close() {
	if err := a.store.Close(); err != nil {
		logger.Warn("Failed to close store", logger.F("error", err))
	}
}

// requireUser returns the logged-in username
func requireUser() (string, error) {
	user := session.Current()
	if user == "" {
		return "", fmt.Errorf("not logged in, run 'projtrack auth login' first")
	}
	return user, nil
}

// prompter reads answers from the command's input
type prompter struct {
	in     io.Reader
	out    io.Writer
	reader *bufio.Reader
}

func newPrompter(cmd *cobra.Command) *prompter {
	return &prompter{
		in:     cmd.InOrStdin(),
		out:    cmd.OutOrStdout(),
		reader: bufio.NewReader(cmd.InOrStdin()),
	}
}

// Line prints label and reads one trimmed line
func (p *prompter) Line(label string) string {
	fmt.Fprint(p.out, label)
	line, _ := p.reader.ReadString('\n')
	return strings.TrimSpace(line)
}

// Password reads without echo when input is a terminal
func (p *prompter) Password(label string) string {
	fmt.Fprint(p.out, label)
	if f, ok := p.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, _ := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(p.out)
		return string(b)
	}
	line, _ := p.reader.ReadString('\n')
	return strings.TrimRight(line, "\r\n")
}

// Confirm asks a y/N question
func (p *prompter) Confirm(question string) bool {
	answer := p.Line(question + " [y/N]: ")
	return answer == "y" || answer == "Y"
}
