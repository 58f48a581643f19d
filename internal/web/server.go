package web

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/noahxzhu/med-reminder/internal/model"
	"github.com/noahxzhu/med-reminder/internal/reminder"
	"github.com/noahxzhu/med-reminder/internal/settings"
	"github.com/noahxzhu/med-reminder/internal/worker"
)

type Server struct {
	store    *reminder.Store
	settings *settings.Store
	worker   *worker.Worker
	router   *http.ServeMux
}

func NewServer(store *reminder.Store, st *settings.Store, w *worker.Worker) *Server {
	s := &Server{
		store:    store,
		settings: st,
		worker:   w,
		router:   http.NewServeMux(),
	}
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.HandleFunc("GET /reminders", s.handleList)
	s.router.HandleFunc("POST /reminders", s.handleAdd)
	s.router.HandleFunc("POST /reminders/refresh", s.handleRefresh)
	s.router.HandleFunc("GET /reminders/{id}", s.handleGet)
	s.router.HandleFunc("PATCH /reminders/{id}", s.handleUpdate)
	s.router.HandleFunc("DELETE /reminders/{id}", s.handleRemove)
	s.router.HandleFunc("POST /reminders/{id}/enabled", s.handleToggle)

	s.router.HandleFunc("GET /triggers", s.handleTriggers)

	s.router.HandleFunc("GET /settings", s.handleGetSettings)
	s.router.HandleFunc("PUT /settings", s.handlePutSettings)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// reminderView adds display labels to the stored record.
type reminderView struct {
	*model.Reminder
	Status string `json:"status"`
	Days   string `json:"days"`
	Time   string `json:"time"`
}

func newView(r *model.Reminder) reminderView {
	return reminderView{Reminder: r, Status: string(r.Status()), Days: r.DaysLabel(), Time: r.Clock()}
}

type draftRequest struct {
	Name     string          `json:"name"`
	Dosage   string          `json:"dosage"`
	Hour     int             `json:"hour"`
	Minute   int             `json:"minute"`
	Enabled  *bool           `json:"enabled"`
	Weekdays []model.Weekday `json:"weekdays"`
}

type patchRequest struct {
	Name     *string         `json:"name"`
	Dosage   *string         `json:"dosage"`
	Hour     *int            `json:"hour"`
	Minute   *int            `json:"minute"`
	Enabled  *bool           `json:"enabled"`
	Weekdays []model.Weekday `json:"weekdays"`
}

// Handlers

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	list := s.store.List()
	views := make([]reminderView, 0, len(list))
	for _, rem := range list {
		views = append(views, newView(rem))
	}
	writeJSON(w, http.StatusOK, views)
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	rem, ok := s.store.Get(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, reminder.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, newView(rem))
}

func (s *Server) handleAdd(w http.ResponseWriter, r *http.Request) {
	var req draftRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}
	rem, err := s.store.Add(r.Context(), model.Draft{
		Name:     req.Name,
		Dosage:   req.Dosage,
		Hour:     req.Hour,
		Minute:   req.Minute,
		Enabled:  enabled,
		Weekdays: req.Weekdays,
	})
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newView(rem))
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	var req patchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	rem, err := s.store.Update(r.Context(), r.PathValue("id"), model.Patch{
		Name:     req.Name,
		Dosage:   req.Dosage,
		Hour:     req.Hour,
		Minute:   req.Minute,
		Enabled:  req.Enabled,
		Weekdays: req.Weekdays,
	})
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newView(rem))
}

func (s *Server) handleRemove(w http.ResponseWriter, r *http.Request) {
	// Removing an unknown id is not an error for the client.
	if err := s.store.Remove(r.Context(), r.PathValue("id")); err != nil && !errors.Is(err, reminder.ErrNotFound) {
		s.writeStoreError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Enabled *bool `json:"enabled"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Enabled == nil {
		writeError(w, http.StatusBadRequest, errors.New(`body must be {"enabled": true|false}`))
		return
	}

	rem, err := s.store.ToggleEnabled(r.Context(), r.PathValue("id"), *req.Enabled)
	if err != nil {
		s.writeStoreError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newView(rem))
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	changed := s.store.RefreshMissedFlags(r.Context())
	writeJSON(w, http.StatusOK, map[string]int{"changed": changed})
}

func (s *Server) handleTriggers(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.worker.Pending())
}

func (s *Server) handleGetSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.settings.Get())
}

func (s *Server) handlePutSettings(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ThemeName *string  `json:"themeName"`
		TextScale *float64 `json:"textScale"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if req.ThemeName != nil {
		if _, err := s.settings.SetThemeName(*req.ThemeName); err != nil {
			if errors.Is(err, settings.ErrUnknownTheme) {
				writeError(w, http.StatusBadRequest, err)
				return
			}
			slog.Warn("Failed to save settings", "error", err)
		}
	}
	if req.TextScale != nil {
		if _, err := s.settings.SetTextScale(*req.TextScale); err != nil {
			slog.Warn("Failed to save settings", "error", err)
		}
	}
	writeJSON(w, http.StatusOK, s.settings.Get())
}

func (s *Server) writeStoreError(w http.ResponseWriter, err error) {
	switch {
	case reminder.IsValidation(err):
		writeError(w, http.StatusBadRequest, err)
	case errors.Is(err, reminder.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
	default:
		slog.Error("Request failed", "error", err)
		writeError(w, http.StatusInternalServerError, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
