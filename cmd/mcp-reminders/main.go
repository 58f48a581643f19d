// Command mcp-reminders serves the weekly reminder store over MCP.
//
// It uses the same config file and storage as the HTTP server, so only one
// of the two should run against a given storage file at a time.
//
// Usage:
//
//	./mcp-reminders          # Start MCP server (stdio)
//	./mcp-reminders --help   # Show help
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/mark3labs/mcp-go/server"

	"github.com/noahxzhu/med-reminder/internal/config"
	"github.com/noahxzhu/med-reminder/internal/mcpserver"
	"github.com/noahxzhu/med-reminder/internal/pushover"
	"github.com/noahxzhu/med-reminder/internal/reminder"
	"github.com/noahxzhu/med-reminder/internal/storage"
	"github.com/noahxzhu/med-reminder/internal/worker"
)

func main() {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--help", "-h":
			printHelp()
			return
		}
	}

	path := os.Getenv("MEDREMIND_CONFIG")
	if path == "" {
		path = "configs/config.yaml"
	}
	cfg, err := config.LoadConfig(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// stdout carries the protocol.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.Log.SlogLevel()}))
	slog.SetDefault(logger)

	backend, err := storage.Open(cfg.Storage.Driver, cfg.Storage.FilePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to open storage: %v\n", err)
		os.Exit(1)
	}
	defer backend.Close()

	var notifier worker.Notifier = worker.LogNotifier{}
	if cfg.Pushover.Enabled() {
		client := pushover.NewClient(cfg.Pushover.Token, cfg.Pushover.User)
		if cfg.Pushover.APIURL != "" {
			client.APIURL = cfg.Pushover.APIURL
		}
		notifier = client
	}
	w := worker.NewWorker(notifier)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx)

	store := reminder.NewStore(backend, w, reminder.WithLogger(logger))
	store.Load(ctx)
	go store.Run(ctx, cfg.Reminders.RefreshInterval)

	s := mcpserver.NewServer(store)
	if err := server.ServeStdio(s.MCPServer()); err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

func printHelp() {
	fmt.Println(`MCP Reminders Server - Weekly medication reminders via MCP protocol

USAGE:
    mcp-reminders          Start MCP server (communicates via stdio)
    mcp-reminders --help   Show this help

ENVIRONMENT:
    MEDREMIND_CONFIG       Path to the YAML config file
                           Default: configs/config.yaml
    MEDREMIND_*            Override any config key, e.g. MEDREMIND_STORAGE_DRIVER=sqlite

TOOLS:
    add_reminder           Add a weekly reminder (name, hour, minute, dosage, weekdays, enabled)
    list_reminders         List reminders with their status
    update_reminder        Change fields of a reminder
    delete_reminder        Delete a reminder and cancel its notifications
    set_reminder_enabled   Enable or disable a reminder
    refresh_missed         Re-check which reminders were missed today`)
}
