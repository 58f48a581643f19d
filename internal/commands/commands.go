// Package commands implements remindctl, a command line front end that works
// directly on the configured reminder storage.
package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/noahxzhu/med-reminder/internal/config"
	"github.com/noahxzhu/med-reminder/internal/reminder"
	"github.com/noahxzhu/med-reminder/internal/storage"
	"github.com/noahxzhu/med-reminder/internal/worker"
)

const defaultConfigPath = "configs/config.yaml"

type rootOptions struct {
	ConfigPath string
}

func New() *cobra.Command {
	o := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "remindctl",
		Short: "Manage weekly medication reminders from the command line.",
		Long: `Manage weekly medication reminders from the command line.

Stop the server before using remindctl on the same storage: each command
rewrites the stored collection and the running server would overwrite it.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.PersistentFlags().StringVar(&o.ConfigPath, "config", defaultConfigPath,
		"Path to the YAML config file.")

	AddCommands(cmd, o)
	return cmd
}

func AddCommands(topLevel *cobra.Command, o *rootOptions) {
	addList(topLevel, o)
	addAdd(topLevel, o)
	addUpdate(topLevel, o)
	addRemove(topLevel, o)
	addEnable(topLevel, o)
	addRefresh(topLevel, o)
}

// session is a loaded store and the backend it must release. missedOnLoad
// counts the reminders the load itself flagged missed.
type session struct {
	store        *reminder.Store
	missedOnLoad int
	close        func()
}

// open loads the store from the configured backend. Triggers go to an
// unstarted worker, so nothing fires from the CLI process; the server
// reschedules every enabled reminder when it loads.
func (o *rootOptions) open(ctx context.Context) (*session, error) {
	cfg, err := config.LoadConfig(o.ConfigPath)
	if err != nil {
		return nil, err
	}

	backend, err := storage.Open(cfg.Storage.Driver, cfg.Storage.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open storage: %w", err)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Log.SlogLevel()}))
	store := reminder.NewStore(backend, worker.NewWorker(nil), reminder.WithLogger(logger))

	return &session{
		store:        store,
		missedOnLoad: store.Load(ctx),
		close: func() {
			if err := backend.Close(); err != nil {
				logger.Warn("Failed to close storage", "error", err)
			}
		},
	}, nil
}
