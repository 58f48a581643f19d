package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/fatih/color"

	"github.com/noahxzhu/med-reminder/internal/model"
	"github.com/noahxzhu/med-reminder/internal/storage"
)

func init() {
	color.NoColor = true
}

// testEnv writes a config pointing at a fresh JSON file and returns both paths.
func testEnv(t *testing.T) (configPath, dataPath string) {
	t.Helper()
	dir := t.TempDir()
	dataPath = filepath.Join(dir, "reminders.json")
	configPath = filepath.Join(dir, "config.yaml")
	yaml := "storage:\n  driver: json\n  file_path: " + dataPath + "\nlog:\n  level: error\n"
	if err := os.WriteFile(configPath, []byte(yaml), 0644); err != nil {
		t.Fatal(err)
	}
	return configPath, dataPath
}

func run(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()
	cmd := New()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--config", configPath}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func stored(t *testing.T, dataPath string) []*model.Reminder {
	t.Helper()
	list, err := storage.NewJSONStore(dataPath).ReadAll(context.Background())
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	return list
}

func TestAddListRemove(t *testing.T) {
	cfg, data := testEnv(t)

	out, err := run(t, cfg, "add", "Vitamin", "D", "--hour", "8", "--dosage", "1 tablet", "--days", "0,2,4")
	if err != nil {
		t.Fatalf("add: %v (%s)", err, out)
	}
	if !strings.Contains(out, "Vitamin D at 08:00, Mon, Wed, Fri") {
		t.Errorf("add output = %q", out)
	}

	list := stored(t, data)
	if len(list) != 1 {
		t.Fatalf("stored %d reminders", len(list))
	}
	r := list[0]
	if r.Name != "Vitamin D" || r.Dosage != "1 tablet" || !r.Enabled || len(r.NotificationIDs) != 3 {
		t.Errorf("stored = %+v", r)
	}

	out, err = run(t, cfg, "list")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	for _, want := range []string{"ID", "STATUS", r.ID, "Vitamin D (1 tablet)", "Mon, Wed, Fri"} {
		if !strings.Contains(out, want) {
			t.Errorf("list output missing %q:\n%s", want, out)
		}
	}

	if out, err := run(t, cfg, "rm", r.ID); err != nil {
		t.Fatalf("remove: %v (%s)", err, out)
	}
	out, _ = run(t, cfg, "ls")
	if strings.TrimSpace(out) != "No reminders found." {
		t.Errorf("list after remove = %q", out)
	}
}

func TestAddValidation(t *testing.T) {
	cfg, data := testEnv(t)

	tests := []struct {
		name string
		args []string
	}{
		{"missing hour", []string{"add", "Pill"}},
		{"missing name", []string{"add", "--hour", "8"}},
		{"bad hour", []string{"add", "Pill", "--hour", "24"}},
		{"bad days", []string{"add", "Pill", "--hour", "8", "--days", "mon"}},
		{"blank name", []string{"add", "  ", "--hour", "8"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := run(t, cfg, tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}

	if list := stored(t, data); len(list) != 0 {
		t.Errorf("rejected adds stored reminders: %+v", list)
	}
}

func TestUpdateAndToggle(t *testing.T) {
	cfg, data := testEnv(t)
	if _, err := run(t, cfg, "add", "Pill", "--hour", "8", "--days", "weekends"); err != nil {
		t.Fatal(err)
	}
	id := stored(t, data)[0].ID

	if _, err := run(t, cfg, "update", id); err == nil {
		t.Error("update without flags should fail")
	}
	if _, err := run(t, cfg, "update", id, "--days", ""); err == nil {
		t.Error("update to no weekdays should fail")
	}

	if out, err := run(t, cfg, "update", id, "--minute", "45", "--name", "Evening pill"); err != nil {
		t.Fatalf("update: %v (%s)", err, out)
	}
	r := stored(t, data)[0]
	if r.Name != "Evening pill" || r.Minute != 45 || r.Hour != 8 || !slices.Equal(r.Weekdays, model.Weekend()) {
		t.Errorf("updated = %+v", r)
	}

	out, err := run(t, cfg, "disable", id)
	if err != nil {
		t.Fatalf("disable: %v", err)
	}
	if !strings.Contains(out, "Evening pill is now Disabled") {
		t.Errorf("disable output = %q", out)
	}
	if r := stored(t, data)[0]; r.Enabled || r.Missed || len(r.NotificationIDs) != 0 {
		t.Errorf("disabled = %+v", r)
	}

	if _, err := run(t, cfg, "enable", id); err != nil {
		t.Fatalf("enable: %v", err)
	}
	if r := stored(t, data)[0]; !r.Enabled || len(r.NotificationIDs) != 2 {
		t.Errorf("enabled = %+v", r)
	}

	if _, err := run(t, cfg, "enable", "nope"); err == nil {
		t.Error("enable unknown id should fail")
	}
}

func TestRefresh(t *testing.T) {
	tests := []struct {
		name string
		seed []*model.Reminder
		want string
	}{
		{"empty store", nil, "0 reminder(s) newly marked missed."},
		{
			name: "midnight reminder already passed",
			seed: []*model.Reminder{
				{ID: "a", Name: "Pill", Hour: 0, Minute: 0, Enabled: true, Weekdays: model.AllWeekdays(), NotificationIDs: []string{}},
				{ID: "b", Name: "Off", Hour: 0, Minute: 0, Enabled: false, Weekdays: model.AllWeekdays(), NotificationIDs: []string{}},
			},
			want: "1 reminder(s) newly marked missed.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, data := testEnv(t)
			if tt.seed != nil {
				if err := storage.NewJSONStore(data).WriteAll(context.Background(), tt.seed); err != nil {
					t.Fatal(err)
				}
			}

			out, err := run(t, cfg, "refresh")
			if err != nil {
				t.Fatalf("refresh: %v", err)
			}
			if !strings.Contains(out, tt.want) {
				t.Errorf("refresh output = %q, want %q", out, tt.want)
			}
			for _, r := range stored(t, data) {
				if r.Missed != r.Enabled {
					t.Errorf("%s: missed = %v, enabled = %v", r.ID, r.Missed, r.Enabled)
				}
			}

			// A second run has nothing left to flag.
			if out, _ := run(t, cfg, "refresh"); !strings.Contains(out, "0 reminder(s) newly marked missed.") {
				t.Errorf("second refresh output = %q", out)
			}
		})
	}
}

func TestHelpWarnsAboutRunningServer(t *testing.T) {
	cfg, _ := testEnv(t)
	out, err := run(t, cfg, "--help")
	if err != nil {
		t.Fatalf("help: %v", err)
	}
	if !strings.Contains(out, "Stop the server before using remindctl") {
		t.Errorf("help output = %q", out)
	}
}
