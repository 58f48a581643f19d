package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"

	"github.com/noahxzhu/med-reminder/internal/model"
)

// JSONStore keeps the reminder collection in a single JSON file.
type JSONStore struct {
	mu       sync.Mutex
	filePath string
}

func NewJSONStore(filePath string) *JSONStore {
	return &JSONStore{filePath: filePath}
}

// ReadAll returns the stored reminders. A missing or empty file yields an
// empty collection; a corrupt file is reset to an empty array.
func (s *JSONStore) ReadAll(_ context.Context) ([]*model.Reminder, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := os.ReadFile(s.filePath)
	if err != nil {
		if os.IsNotExist(err) {
			return []*model.Reminder{}, nil
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return []*model.Reminder{}, nil
	}

	stored, err := decodeReminders(data)
	if err != nil {
		slog.Warn("Reminder file is corrupt, resetting", "path", s.filePath, "error", err)
		if err := s.writeFile([]byte("[]")); err != nil {
			slog.Warn("Failed to reset reminder file", "path", s.filePath, "error", err)
		}
		return []*model.Reminder{}, nil
	}

	return normalize(stored), nil
}

func (s *JSONStore) WriteAll(_ context.Context, reminders []*model.Reminder) error {
	if reminders == nil {
		reminders = []*model.Reminder{}
	}
	data, err := json.MarshalIndent(reminders, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal data: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.writeFile(data)
}

func (s *JSONStore) Close() error { return nil }

func (s *JSONStore) writeFile(data []byte) error {
	// Ensure directory exists
	dir := filepath.Dir(s.filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create storage directory: %w", err)
	}

	if err := os.WriteFile(s.filePath, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}
