package web

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"time"

	"eventdate/internal/config"
	"eventdate/internal/eventdate"
	"eventdate/internal/field"
	appLog "eventdate/internal/log"
)

// maxFormatBody caps POST /api/format payloads.
const maxFormatBody = 64 << 10

// Server exposes formatted event dates over HTTP.
type Server struct {
	cfg   *config.Config
	store *field.MemoryStore
	mux   *http.ServeMux
}

// NewServer constructs a new Server reading events from store.
func NewServer(cfg *config.Config, store *field.MemoryStore) *Server {
	s := &Server{
		cfg:   cfg,
		store: store,
		mux:   http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the root handler, wrapped in Basic Auth when configured.
func (s *Server) Handler() http.Handler {
	h := http.Handler(s.mux)
	if s.basicAuthEnabled() {
		appLog.Info("HTTP basic auth enabled", "listen", "http://"+s.cfg.Listen)
		return s.basicAuthMiddleware(h)
	}
	return h
}

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
			w.Header().Set("WWW-Authenticate", `Basic realm="eventdate", charset="UTF-8"`)
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

// Run serves on cfg.Listen until ctx is canceled, then shuts down
// gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Listen,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		appLog.Info("starting HTTP server", "listen", "http://"+s.cfg.Listen)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.HandleFunc("GET /api/events", s.handleEvents)
	s.mux.HandleFunc("GET /api/events/{id...}", s.handleEventDate)
	s.mux.HandleFunc("POST /api/format", s.handleFormat)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// eventDTO is one entry of GET /api/events.
type eventDTO struct {
	ID   string `json:"id"`
	Date string `json:"date"`
}

// handleEvents lists every known event with its formatted date.
func (s *Server) handleEvents(w http.ResponseWriter, _ *http.Request) {
	ids := s.store.IDs()
	out := make([]eventDTO, 0, len(ids))
	for _, id := range ids {
		out = append(out, eventDTO{ID: id, Date: eventdate.FormatEvent(s.store, id)})
	}
	writeJSON(w, http.StatusOK, out)
}

// handleEventDate writes the formatted date of one event as plain text,
// ready to be embedded by the caller. Event ids may contain slashes (feed
// events are "<feed>/<uid>"), so the path is matched as
// /api/events/<id>/date.
//
// Unknown ids return 404; known events with nothing to show return an
// empty 200 body.
func (s *Server) handleEventDate(w http.ResponseWriter, r *http.Request) {
	rest := r.PathValue("id")
	const suffix = "/date"
	if len(rest) <= len(suffix) || rest[len(rest)-len(suffix):] != suffix {
		http.NotFound(w, r)
		return
	}
	id := rest[:len(rest)-len(suffix)]

	if !s.store.Has(id) {
		writeError(w, http.StatusNotFound, "unknown event")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = io.WriteString(w, eventdate.FormatEvent(s.store, id))
}

// formatResponse is the JSON response shape for POST /api/format.
type formatResponse struct {
	Date string `json:"date"`
}

// handleFormat formats an ad-hoc event given as a JSON object of raw
// fields, e.g. {"event_start_date": "June 1, 2024 2:00 pm", "all_day_event": false}.
func (s *Server) handleFormat(w http.ResponseWriter, r *http.Request) {
	var fields field.Fields
	dec := json.NewDecoder(io.LimitReader(r.Body, maxFormatBody))
	if err := dec.Decode(&fields); err != nil {
		writeError(w, http.StatusBadRequest, "invalid field payload: "+err.Error())
		return
	}
	writeJSON(w, http.StatusOK, formatResponse{
		Date: eventdate.FormatEvent(field.MapStore(fields), ""),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		appLog.Error("failed to write JSON response", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	type errResp struct {
		Error string `json:"error"`
	}
	writeJSON(w, status, errResp{Error: msg})
}
