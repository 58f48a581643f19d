package storage

import (
	"context"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/noahxzhu/med-reminder/internal/model"
)

func sampleReminders() []*model.Reminder {
	return []*model.Reminder{
		{
			ID: "b", Name: "Evening pill", Dosage: "5mg", Hour: 21, Minute: 15, Enabled: true,
			Weekdays: []model.Weekday{0, 2, 4}, NotificationIDs: []string{"n1", "n2", "n3"}, Missed: true,
		},
		{
			ID: "a", Name: "Walk", Hour: 7, Minute: 0, Enabled: false,
			Weekdays: model.AllWeekdays(), NotificationIDs: []string{},
		},
	}
}

func TestJSONStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "reminders.json")
	s := NewJSONStore(path)
	ctx := context.Background()

	if err := s.WriteAll(ctx, sampleReminders()); err != nil {
		t.Fatalf("WriteAll: %v", err)
	}
	before, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}

	list, err := s.ReadAll(ctx)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if err := s.WriteAll(ctx, list); err != nil {
		t.Fatalf("WriteAll: %v", err)
	}
	after, _ := os.ReadFile(path)

	if string(before) != string(after) {
		t.Errorf("round trip changed file:\n%s\n---\n%s", before, after)
	}
	if len(list) != 2 || list[0].ID != "b" || list[1].ID != "a" {
		t.Errorf("order not preserved: %+v", list)
	}
}

func TestJSONStoreMissingAndEmpty(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	list, err := NewJSONStore(filepath.Join(dir, "none.json")).ReadAll(ctx)
	if err != nil || len(list) != 0 || list == nil {
		t.Errorf("missing file: list=%v err=%v", list, err)
	}

	empty := filepath.Join(dir, "empty.json")
	os.WriteFile(empty, []byte("  \n"), 0644)
	list, err = NewJSONStore(empty).ReadAll(ctx)
	if err != nil || len(list) != 0 {
		t.Errorf("empty file: list=%v err=%v", list, err)
	}
}

func TestJSONStoreCorruptFileIsReset(t *testing.T) {
	path := filepath.Join(t.TempDir(), "reminders.json")
	os.WriteFile(path, []byte(`[{"id": "x", "name": `), 0644)

	list, err := NewJSONStore(path).ReadAll(context.Background())
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if len(list) != 0 {
		t.Errorf("got %d reminders from corrupt file", len(list))
	}
	data, _ := os.ReadFile(path)
	if string(data) != "[]" {
		t.Errorf("file = %q, want reset to []", data)
	}
}

func TestJSONStoreNormalizesLegacyShapes(t *testing.T) {
	tests := []struct {
		name    string
		content string
		check   func(t *testing.T, list []*model.Reminder)
	}{
		{
			name:    "legacy single notification id",
			content: `[{"id":"a","name":"Pill","dosage":"1 tab","hour":8,"minute":0,"enabled":true,"notificationId":"old-1","missed":false}]`,
			check: func(t *testing.T, list []*model.Reminder) {
				r := list[0]
				if !slices.Equal(r.NotificationIDs, []string{"old-1"}) {
					t.Errorf("notificationIds = %v", r.NotificationIDs)
				}
				if !slices.Equal(r.Weekdays, model.AllWeekdays()) {
					t.Errorf("weekdays = %v, want all", r.Weekdays)
				}
			},
		},
		{
			name:    "null legacy id and missing fields",
			content: `[{"id":"a","name":"Pill","hour":8,"minute":0,"enabled":true,"notificationId":null}]`,
			check: func(t *testing.T, list []*model.Reminder) {
				r := list[0]
				if r.NotificationIDs == nil || len(r.NotificationIDs) != 0 {
					t.Errorf("notificationIds = %#v, want empty", r.NotificationIDs)
				}
				if r.Missed {
					t.Error("missed should default to false")
				}
			},
		},
		{
			name:    "object wrapped document",
			content: `{"reminders":[{"id":"a","name":"Pill","hour":8,"minute":0,"enabled":true,"weekdays":[4,1,1]}]}`,
			check: func(t *testing.T, list []*model.Reminder) {
				if !slices.Equal(list[0].Weekdays, []model.Weekday{1, 4}) {
					t.Errorf("weekdays = %v", list[0].Weekdays)
				}
			},
		},
		{
			name:    "duplicate ids and missing id",
			content: `[{"id":"a","name":"First","hour":8,"enabled":true},{"id":"a","name":"Dup","hour":9,"enabled":true},{"name":"NoID","hour":10,"enabled":true}]`,
			check: func(t *testing.T, list []*model.Reminder) {
				if len(list) != 2 {
					t.Fatalf("got %d reminders, want 2", len(list))
				}
				if list[0].Name != "First" || list[1].ID == "" {
					t.Errorf("list = %+v / %+v", list[0], list[1])
				}
			},
		},
		{
			name:    "disabled record cannot be missed",
			content: `[{"id":"a","name":"Pill","hour":30,"minute":-5,"enabled":false,"weekdays":[9],"missed":true}]`,
			check: func(t *testing.T, list []*model.Reminder) {
				r := list[0]
				if r.Missed || r.Hour != 23 || r.Minute != 0 {
					t.Errorf("record = %+v", r)
				}
				if !slices.Equal(r.Weekdays, model.AllWeekdays()) {
					t.Errorf("weekdays = %v", r.Weekdays)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "reminders.json")
			os.WriteFile(path, []byte(tt.content), 0644)

			list, err := NewJSONStore(path).ReadAll(context.Background())
			if err != nil {
				t.Fatalf("ReadAll: %v", err)
			}
			if len(list) == 0 {
				t.Fatal("no reminders read")
			}
			tt.check(t, list)
		})
	}
}
