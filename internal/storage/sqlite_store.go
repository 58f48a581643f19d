package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"

	"github.com/noahxzhu/med-reminder/internal/model"
)

// SQLiteStore keeps the reminder collection in a SQLite table. Collection
// order is kept in the position column.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (or creates) the database at dbPath and ensures the
// reminders table exists.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set WAL mode: %w", err)
	}

	if err := createTable(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteStore{db: db}, nil
}

func createTable(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS reminders (
			id               TEXT    PRIMARY KEY,
			position         INTEGER NOT NULL,
			name             TEXT    NOT NULL,
			dosage           TEXT    NOT NULL DEFAULT '',
			hour             INTEGER NOT NULL,
			minute           INTEGER NOT NULL,
			enabled          INTEGER NOT NULL DEFAULT 1,
			weekdays         TEXT    NOT NULL DEFAULT '[]',
			notification_ids TEXT    NOT NULL DEFAULT '[]',
			missed           INTEGER NOT NULL DEFAULT 0
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create table: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) ReadAll(ctx context.Context) ([]*model.Reminder, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, dosage, hour, minute, enabled, weekdays, notification_ids, missed
		FROM reminders ORDER BY position ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminders: %w", err)
	}
	defer rows.Close()

	var stored []storedReminder
	for rows.Next() {
		var r storedReminder
		var weekdays, handles string

		if err := rows.Scan(&r.ID, &r.Name, &r.Dosage, &r.Hour, &r.Minute,
			&r.Enabled, &weekdays, &handles, &r.Missed); err != nil {
			return nil, fmt.Errorf("failed to scan reminder: %w", err)
		}

		// Unparseable columns fall back to the defaults applied by normalize.
		if err := json.Unmarshal([]byte(weekdays), &r.Weekdays); err != nil {
			slog.Warn("Reminder weekdays are corrupt, using defaults", "id", r.ID, "error", err)
			r.Weekdays = nil
		}
		if err := json.Unmarshal([]byte(handles), &r.NotificationIDs); err != nil {
			slog.Warn("Reminder notification ids are corrupt, dropping them", "id", r.ID, "error", err)
			r.NotificationIDs = nil
		}

		stored = append(stored, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read reminders: %w", err)
	}

	return normalize(stored), nil
}

// WriteAll replaces the table contents with reminders in one transaction.
func (s *SQLiteStore) WriteAll(ctx context.Context, reminders []*model.Reminder) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM reminders`); err != nil {
		return fmt.Errorf("failed to clear reminders: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO reminders (id, position, name, dosage, hour, minute, enabled, weekdays, notification_ids, missed)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for i, r := range reminders {
		r = r.Clone()
		weekdays, err := json.Marshal(r.Weekdays)
		if err != nil {
			return fmt.Errorf("failed to marshal weekdays: %w", err)
		}
		handles, err := json.Marshal(r.NotificationIDs)
		if err != nil {
			return fmt.Errorf("failed to marshal notification ids: %w", err)
		}
		if _, err := stmt.ExecContext(ctx, r.ID, i, r.Name, r.Dosage, r.Hour, r.Minute,
			r.Enabled, string(weekdays), string(handles), r.Missed); err != nil {
			return fmt.Errorf("failed to insert reminder %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit reminders: %w", err)
	}
	return nil
}
