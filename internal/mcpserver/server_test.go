package mcpserver

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/noahxzhu/med-reminder/internal/model"
	"github.com/noahxzhu/med-reminder/internal/reminder"
	"github.com/noahxzhu/med-reminder/internal/storage"
	"github.com/noahxzhu/med-reminder/internal/worker"
)

func newTestServer(t *testing.T) *Server {
	t.Helper()
	store := reminder.NewStore(
		storage.NewJSONStore(filepath.Join(t.TempDir(), "reminders.json")),
		worker.NewWorker(nil),
		reminder.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	return NewServer(store)
}

func request(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) == 0 {
		t.Fatal("empty result")
	}
	text, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T", res.Content[0])
	}
	return text.Text
}

func addReminder(t *testing.T, s *Server, args map[string]any) model.Reminder {
	t.Helper()
	res, err := s.handleAdd(context.Background(), request(args))
	if err != nil {
		t.Fatalf("handleAdd: %v", err)
	}
	if res.IsError {
		t.Fatalf("add failed: %s", resultText(t, res))
	}
	var r model.Reminder
	if err := json.Unmarshal([]byte(resultText(t, res)), &r); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	return r
}

func TestAddAndList(t *testing.T) {
	s := newTestServer(t)

	r := addReminder(t, s, map[string]any{"name": "Vitamin D", "hour": float64(8), "weekdays": "4, 0,2"})
	if !slices.Equal(r.Weekdays, []model.Weekday{0, 2, 4}) || len(r.NotificationIDs) != 3 || !r.Enabled {
		t.Errorf("added = %+v", r)
	}

	res, _ := s.handleList(context.Background(), request(nil))
	text := resultText(t, res)
	if !strings.Contains(text, "Vitamin D") || !strings.Contains(text, "Mon, Wed, Fri") {
		t.Errorf("list = %q", text)
	}
}

func TestAddErrors(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		args map[string]any
	}{
		{"missing hour", map[string]any{"name": "x"}},
		{"blank name", map[string]any{"name": " ", "hour": float64(8)}},
		{"bad weekday", map[string]any{"name": "x", "hour": float64(8), "weekdays": "1,9"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := s.handleAdd(context.Background(), request(tt.args))
			if err != nil {
				t.Fatalf("protocol error: %v", err)
			}
			if !res.IsError {
				t.Errorf("expected tool error, got %s", resultText(t, res))
			}
		})
	}
}

func TestUpdateEnableDelete(t *testing.T) {
	s := newTestServer(t)
	ctx := context.Background()
	r := addReminder(t, s, map[string]any{"name": "Pill", "hour": float64(8), "weekdays": "1,3"})

	res, _ := s.handleUpdate(ctx, request(map[string]any{"id": r.ID, "minute": float64(45)}))
	var updated model.Reminder
	json.Unmarshal([]byte(resultText(t, res)), &updated)
	if updated.Minute != 45 || !slices.Equal(updated.Weekdays, []model.Weekday{1, 3}) {
		t.Errorf("updated = %+v", updated)
	}

	res, _ = s.handleSetEnabled(ctx, request(map[string]any{"id": r.ID, "enabled": false}))
	var off model.Reminder
	json.Unmarshal([]byte(resultText(t, res)), &off)
	if off.Enabled || len(off.NotificationIDs) != 0 {
		t.Errorf("disabled = %+v", off)
	}

	res, _ = s.handleSetEnabled(ctx, request(map[string]any{"id": "nope", "enabled": true}))
	if !res.IsError {
		t.Error("enabling unknown id should be a tool error")
	}

	res, _ = s.handleDelete(ctx, request(map[string]any{"id": r.ID}))
	if res.IsError {
		t.Errorf("delete: %s", resultText(t, res))
	}
	res, _ = s.handleList(ctx, request(nil))
	if got := resultText(t, res); got != "No reminders found." {
		t.Errorf("list after delete = %q", got)
	}
}
