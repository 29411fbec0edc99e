// Package web exposes the HTTP API: event CRUD, the reminder run trigger,
// the reminder email setting and a health endpoint.
package web

import (
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/cibyj/socialcal/internal/config"
	"github.com/cibyj/socialcal/internal/event"
	"github.com/cibyj/socialcal/internal/reminder"
	"github.com/cibyj/socialcal/internal/store"
)

// Server provides the HTTP API over the store and the reminder runner.
type Server struct {
	cfg    *config.Config
	store  *store.Store
	runner *reminder.Runner
	log    *slog.Logger
	mux    *http.ServeMux
}

// NewServer constructs a new Server.
func NewServer(cfg *config.Config, st *store.Store, runner *reminder.Runner, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	s := &Server{
		cfg:    cfg,
		store:  st,
		runner: runner,
		log:    log,
		mux:    http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the underlying http.Handler for this server.
func (s *Server) Handler() http.Handler {
	h := corsMiddleware(http.Handler(s.mux))
	if s.basicAuthEnabled() {
		s.log.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/events", s.handleEvents)
	s.mux.HandleFunc("/api/events/", s.handleEventByID)
	s.mux.HandleFunc("/api/settings/reminder-email", s.handleReminderEmail)
	s.mux.HandleFunc("/api/reminders/run", s.handleRunReminders)
}

// corsMiddleware emits the permissive CORS surface the UI has always
// depended on, and answers preflight requests directly.
func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
		if r.Method == http.MethodOptions {
			writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
			return
		}
		next.ServeHTTP(w, r)
	})
}

// basicAuthEnabled reports whether HTTP Basic Auth is configured.
func (s *Server) basicAuthEnabled() bool {
	if s.cfg == nil || s.cfg.BasicAuth == nil {
		return false
	}
	return s.cfg.BasicAuth.Username != "" && s.cfg.BasicAuth.Password != ""
}

// basicAuthMiddleware wraps all handlers except /health with HTTP Basic Auth.
func (s *Server) basicAuthMiddleware(next http.Handler) http.Handler {
	username := s.cfg.BasicAuth.Username
	password := s.cfg.BasicAuth.Password

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			next.ServeHTTP(w, r)
			return
		}

		u, p, ok := r.BasicAuth()
		if !ok || !secureCompare(u, username) || !secureCompare(p, password) {
			w.Header().Set("WWW-Authenticate", `Basic realm="socialcal", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// secureCompare compares two strings in constant time.
func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// eventPayload is the request body for creating and updating events.
type eventPayload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	EventTime   string `json:"event_time"`
	UserEmail   string `json:"user_email"`
}

func (p *eventPayload) toEvent() (event.Event, error) {
	t, err := parseEventTime(p.EventTime)
	if err != nil {
		return event.Event{}, err
	}
	return event.Event{
		Title:       strings.TrimSpace(p.Title),
		Description: p.Description,
		EventTime:   t,
		UserEmail:   strings.TrimSpace(p.UserEmail),
	}, nil
}

// parseEventTime accepts RFC 3339 with or without sub-second precision.
// event_time is always a full absolute instant; there is no date+time
// string reassembly anywhere.
func parseEventTime(v string) (time.Time, error) {
	if v == "" {
		return time.Time{}, errors.New("event_time is required")
	}
	t, err := time.Parse(time.RFC3339Nano, v)
	if err != nil {
		return time.Time{}, errors.New("event_time must be an RFC 3339 timestamp")
	}
	return t, nil
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		events, err := s.store.ListEvents(r.Context())
		if err != nil {
			s.log.Error("list events failed", "err", err)
			writeError(w, http.StatusInternalServerError, "failed to list events")
			return
		}
		writeJSON(w, http.StatusOK, events)

	case http.MethodPost:
		var payload eventPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
		ev, err := payload.toEvent()
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		created, err := s.store.CreateEvent(r.Context(), ev)
		if err != nil {
			if errors.Is(err, event.ErrMissingTitle) || errors.Is(err, event.ErrMissingTime) {
				writeError(w, http.StatusBadRequest, err.Error())
				return
			}
			s.log.Error("create event failed", "err", err)
			writeError(w, http.StatusInternalServerError, "failed to create event")
			return
		}
		writeJSON(w, http.StatusOK, created)

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) handleEventByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimPrefix(r.URL.Path, "/api/events/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, http.StatusNotFound, "event not found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		ev, err := s.store.GetEvent(r.Context(), id)
		if err != nil {
			s.respondStoreError(w, err, "get event")
			return
		}
		writeJSON(w, http.StatusOK, ev)

	case http.MethodPut:
		var payload eventPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
		ev, err := payload.toEvent()
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		ev.ID = id
		updated, err := s.store.UpdateEvent(r.Context(), ev)
		if err != nil {
			s.respondStoreError(w, err, "update event")
			return
		}
		writeJSON(w, http.StatusOK, updated)

	case http.MethodDelete:
		if err := s.store.DeleteEvent(r.Context(), id); err != nil {
			s.respondStoreError(w, err, "delete event")
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"success": true})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// reminderEmailPayload is the body for the reminder email setting.
type reminderEmailPayload struct {
	ReminderEmail string `json:"reminder_email"`
}

func (s *Server) handleReminderEmail(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		email, err := s.store.GetSetting(r.Context(), store.SettingReminderEmail)
		if err != nil {
			s.log.Error("get reminder email failed", "err", err)
			writeError(w, http.StatusInternalServerError, "failed to read setting")
			return
		}
		writeJSON(w, http.StatusOK, reminderEmailPayload{ReminderEmail: email})

	case http.MethodPut, http.MethodPost:
		var payload reminderEmailPayload
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON")
			return
		}
		if strings.TrimSpace(payload.ReminderEmail) == "" {
			writeError(w, http.StatusBadRequest, "reminder_email required")
			return
		}
		if err := s.store.SetSetting(r.Context(), store.SettingReminderEmail, payload.ReminderEmail); err != nil {
			s.log.Error("set reminder email failed", "err", err)
			writeError(w, http.StatusInternalServerError, "failed to write setting")
			return
		}
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})

	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// runPayload is the body for the reminder run trigger.
type runPayload struct {
	DryRun    bool   `json:"dryRun"`
	TestEmail string `json:"testEmail"`
	Force     bool   `json:"force"`
}

func (s *Server) handleRunReminders(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	// An empty body means a plain non-dry run.
	var payload runPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil && !errors.Is(err, io.EOF) {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	// Query parameters override for curl convenience.
	q := r.URL.Query()
	if q.Get("dryRun") == "true" {
		payload.DryRun = true
	}
	if v := q.Get("testEmail"); v != "" {
		payload.TestEmail = v
	}

	report, err := s.runner.Run(r.Context(), reminder.RunOptions{
		DryRun:    payload.DryRun,
		TestEmail: payload.TestEmail,
		Force:     payload.Force,
	})
	if err != nil {
		// A completed run with individual failures still returns 200;
		// only a total failure to load events is a 500.
		s.log.Error("reminder run failed", "err", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (s *Server) respondStoreError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "event not found")
	case errors.Is(err, event.ErrMissingTitle), errors.Is(err, event.ErrMissingTime):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		s.log.Error(op+" failed", "err", err)
		writeError(w, http.StatusInternalServerError, "failed to "+op)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
