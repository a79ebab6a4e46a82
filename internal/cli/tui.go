package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/chybatronik/goUsersTable/internal/logging"
	"github.com/chybatronik/goUsersTable/internal/models"
	"github.com/chybatronik/goUsersTable/internal/table"
	"github.com/chybatronik/goUsersTable/internal/tui"
)

// ErrNotTerminal is returned by the tui command when stdout is not a terminal
var ErrNotTerminal = errors.New("the interactive table needs a terminal; use `userstable list` instead")

// logRetentionDays is how long old TUI log files are kept
const logRetentionDays = 7

func newTUICmd(root *rootOptions) *cobra.Command {
	var (
		logDir  string
		perPage int
	)

	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Browse the users table interactively",
		Long: `Opens the users table in the terminal.

Keys: / search, 1-6 sort by column (again to reverse), ←/h and →/l change page,
p cycles the page size, q quits.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !isTerminal(os.Stdout) {
				return ErrNotTerminal
			}
			return runTUI(cmd.Context(), root, logDir, perPage)
		},
	}

	cmd.Flags().StringVar(&logDir, "log-dir", filepath.Join(os.TempDir(), serviceName),
		"directory for the session log file")
	cmd.Flags().IntVar(&perPage, "per-page", table.DefaultItemsPerPage, "initial items per page (20, 50 or 100)")

	return cmd
}

func runTUI(ctx context.Context, root *rootOptions, logDir string, perPage int) error {
	if !table.ValidItemsPerPage(perPage) {
		return fmt.Errorf("invalid --per-page %d: must be one of 20, 50, 100", perPage)
	}

	fileLogger, err := logging.NewFileLogger(logDir, root.logLevel, logging.FormatJSON, serviceName, root.version)
	if err != nil {
		return err
	}
	defer fileLogger.Close()

	if removed, err := logging.CleanupOldLogs(logDir, logRetentionDays); err != nil {
		fileLogger.Warn("failed to clean up old logs", logging.Err(err))
	} else if removed > 0 {
		fileLogger.Info("removed old log files", "count", removed)
	}

	src, closeSource := root.newSource(fileLogger.Logger)
	defer closeSource()

	load := func(ctx context.Context) ([]models.User, error) {
		if err := src.Load(ctx); err != nil {
			return nil, err
		}
		return src.Records()
	}

	p := tea.NewProgram(tui.NewModel(ctx, load, perPage), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("failed to run interactive TUI: %w", err)
	}
	return nil
}
