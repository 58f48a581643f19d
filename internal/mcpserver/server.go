// Package mcpserver exposes the reminder store as MCP tools.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/noahxzhu/med-reminder/internal/model"
	"github.com/noahxzhu/med-reminder/internal/reminder"
)

const (
	serverName    = "med-reminder"
	serverVersion = "1.0.0"
)

// Server is the MCP server for reminder management.
type Server struct {
	mcpServer *server.MCPServer
	store     *reminder.Store
}

func NewServer(store *reminder.Store) *Server {
	s := &Server{store: store}

	s.mcpServer = server.NewMCPServer(
		serverName,
		serverVersion,
		server.WithToolCapabilities(false),
	)

	s.registerTools()
	return s
}

// MCPServer returns the underlying MCP server for serving.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) registerTools() {
	s.mcpServer.AddTool(
		mcp.NewTool("add_reminder",
			mcp.WithDescription("Add a weekly reminder at a time of day on selected weekdays"),
			mcp.WithString("name", mcp.Required(), mcp.Description("Reminder name, e.g. the medication or activity")),
			mcp.WithNumber("hour", mcp.Required(), mcp.Description("Hour, 0-23")),
			mcp.WithNumber("minute", mcp.Description("Minute, 0-59 (default 0)")),
			mcp.WithString("dosage", mcp.Description("Optional dosage shown in the notification")),
			mcp.WithString("weekdays", mcp.Description("Comma-separated weekdays, Monday=0 .. Sunday=6 (default: every day)")),
			mcp.WithBoolean("enabled", mcp.Description("Whether the reminder is active (default true)")),
		),
		s.handleAdd,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("list_reminders",
			mcp.WithDescription("List all reminders with their status (Upcoming, Missed, Disabled)"),
		),
		s.handleList,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("update_reminder",
			mcp.WithDescription("Update a reminder; omitted fields keep their current value"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Reminder ID")),
			mcp.WithString("name", mcp.Description("New name")),
			mcp.WithString("dosage", mcp.Description("New dosage")),
			mcp.WithNumber("hour", mcp.Description("New hour, 0-23")),
			mcp.WithNumber("minute", mcp.Description("New minute, 0-59")),
			mcp.WithString("weekdays", mcp.Description("New comma-separated weekdays, Monday=0 .. Sunday=6")),
		),
		s.handleUpdate,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("delete_reminder",
			mcp.WithDescription("Delete a reminder and cancel its notifications"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Reminder ID")),
		),
		s.handleDelete,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("set_reminder_enabled",
			mcp.WithDescription("Enable or disable a reminder; disabling clears the missed flag"),
			mcp.WithString("id", mcp.Required(), mcp.Description("Reminder ID")),
			mcp.WithBoolean("enabled", mcp.Required(), mcp.Description("true to enable, false to disable")),
		),
		s.handleSetEnabled,
	)

	s.mcpServer.AddTool(
		mcp.NewTool("refresh_missed",
			mcp.WithDescription("Re-check which reminders were missed today"),
		),
		s.handleRefresh,
	)
}

func (s *Server) handleAdd(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	if _, ok := args["hour"]; !ok {
		return mcp.NewToolResultError("hour is required"), nil
	}
	weekdays, err := model.ParseWeekdays(req.GetString("weekdays", ""))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	r, err := s.store.Add(ctx, model.Draft{
		Name:     req.GetString("name", ""),
		Dosage:   req.GetString("dosage", ""),
		Hour:     int(req.GetFloat("hour", 0)),
		Minute:   int(req.GetFloat("minute", 0)),
		Enabled:  req.GetBool("enabled", true),
		Weekdays: weekdays,
	})
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to add reminder: %v", err)), nil
	}
	return jsonResult(r)
}

func (s *Server) handleList(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list := s.store.List()
	if len(list) == 0 {
		return mcp.NewToolResultText("No reminders found."), nil
	}

	var b strings.Builder
	for _, r := range list {
		fmt.Fprintf(&b, "%s  %s  %s  [%s]  %s\n", r.ID, r.Clock(), r.Name, r.Status(), r.DaysLabel())
	}
	return mcp.NewToolResultText(b.String()), nil
}

func (s *Server) handleUpdate(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("id is required"), nil
	}

	args := req.GetArguments()
	var p model.Patch
	if v, ok := args["name"]; ok {
		name := fmt.Sprint(v)
		p.Name = &name
	}
	if v, ok := args["dosage"]; ok {
		dosage := fmt.Sprint(v)
		p.Dosage = &dosage
	}
	if _, ok := args["hour"]; ok {
		hour := int(req.GetFloat("hour", 0))
		p.Hour = &hour
	}
	if _, ok := args["minute"]; ok {
		minute := int(req.GetFloat("minute", 0))
		p.Minute = &minute
	}
	if _, ok := args["weekdays"]; ok {
		days, err := model.ParseWeekdays(req.GetString("weekdays", ""))
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		if days == nil {
			days = []model.Weekday{}
		}
		p.Weekdays = days
	}

	r, err := s.store.Update(ctx, id, p)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to update reminder: %v", err)), nil
	}
	return jsonResult(r)
}

func (s *Server) handleDelete(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("id is required"), nil
	}
	if err := s.store.Remove(ctx, id); err != nil && !errors.Is(err, reminder.ErrNotFound) {
		return mcp.NewToolResultError(fmt.Sprintf("failed to delete reminder: %v", err)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("Reminder %s deleted.", id)), nil
}

func (s *Server) handleSetEnabled(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	id := req.GetString("id", "")
	if id == "" {
		return mcp.NewToolResultError("id is required"), nil
	}
	if _, ok := req.GetArguments()["enabled"]; !ok {
		return mcp.NewToolResultError("enabled is required"), nil
	}

	r, err := s.store.ToggleEnabled(ctx, id, req.GetBool("enabled", true))
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("failed to set enabled: %v", err)), nil
	}
	return jsonResult(r)
}

func (s *Server) handleRefresh(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	changed := s.store.RefreshMissedFlags(ctx)
	return mcp.NewToolResultText(fmt.Sprintf("%d reminder(s) newly marked missed.", changed)), nil
}

func jsonResult(r *model.Reminder) (*mcp.CallToolResult, error) {
	output, _ := json.MarshalIndent(r, "", "  ")
	return mcp.NewToolResultText(string(output)), nil
}
