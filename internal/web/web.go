package web

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/vumc-media/atrium-calendar-feed/internal/build"
	"github.com/vumc-media/atrium-calendar-feed/internal/config"
	"github.com/vumc-media/atrium-calendar-feed/internal/feed"
	appLog "github.com/vumc-media/atrium-calendar-feed/internal/log"
	"github.com/vumc-media/atrium-calendar-feed/internal/model"
)

// Server exposes the built board plus a small JSON/ICS API for signage
// operators: /, /health, /api/events, /agenda.ics and /preview.png.
type Server struct {
	cfg      *config.Config
	pipeline *build.Pipeline
	mux      *http.ServeMux

	// Cached selected-window responses, so a wall of browser refreshes
	// does not re-fetch and re-parse the feed each time.
	eventsMu    sync.RWMutex
	eventsCache *eventsCache
}

const eventsCacheTTL = 30 * time.Second

type eventsCache struct {
	events    []model.Event
	updatedAt time.Time
}

// NewServer constructs a Server around an existing pipeline.
func NewServer(cfg *config.Config, pipeline *build.Pipeline) *Server {
	s := &Server{
		cfg:      cfg,
		pipeline: pipeline,
		mux:      http.NewServeMux(),
	}
	s.registerRoutes()
	return s
}

// Handler returns the http.Handler for this server, with basic auth
// applied when configured.
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

// basicAuthMiddleware wraps all handlers except /health.
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
			w.Header().Set("WWW-Authenticate", `Basic realm="Atrium Board", charset="UTF-8"`)
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func secureCompare(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("/health", s.handleHealth)
	s.mux.HandleFunc("/api/events", s.handleEvents)
	s.mux.HandleFunc("/agenda.ics", s.handleAgendaICS)
	s.mux.HandleFunc("/preview.png", s.handlePreview)
	s.mux.HandleFunc("/", s.handleBoard)
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("OK"))
}

// handleBoard serves the last built document. http.ServeFile returns 404
// when no build has completed yet.
func (s *Server) handleBoard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	http.ServeFile(w, r, s.cfg.OutputPath)
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	previewPath := filepath.Join(filepath.Dir(s.cfg.OutputPath), "preview.png")
	http.ServeFile(w, r, previewPath)
}

// eventDTO is the JSON shape for /api/events.
type eventDTO struct {
	Title       string     `json:"title"`
	Location    string     `json:"location,omitempty"`
	Description string     `json:"description,omitempty"`
	AllDay      bool       `json:"all_day"`
	Start       *time.Time `json:"start"`
	End         *time.Time `json:"end,omitempty"`
}

type eventsResponse struct {
	Events          []eventDTO `json:"events"`
	DisplayTimeZone string     `json:"display_timezone"`
	HorizonDays     int        `json:"horizon_days"`
}

// handleEvents returns the currently selected agenda window as JSON.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	events, err := s.selectedEvents(r)
	if err != nil {
		appLog.Error("api events: select failed", err)
		writeError(w, http.StatusBadGateway, "failed to obtain feed")
		return
	}

	dtos := make([]eventDTO, 0, len(events))
	for _, ev := range events {
		dtos = append(dtos, eventDTO{
			Title:       ev.Title,
			Location:    ev.Location,
			Description: ev.Description,
			AllDay:      ev.AllDay,
			Start:       ev.Start,
			End:         ev.End,
		})
	}

	writeJSON(w, http.StatusOK, eventsResponse{
		Events:          dtos,
		DisplayTimeZone: s.cfg.Timezone,
		HorizonDays:     s.cfg.HorizonDays,
	})
}

// handleAgendaICS returns the selected window as a subscribe-able ICS feed.
func (s *Server) handleAgendaICS(w http.ResponseWriter, r *http.Request) {
	events, err := s.selectedEvents(r)
	if err != nil {
		appLog.Error("agenda.ics: select failed", err)
		writeError(w, http.StatusBadGateway, "failed to obtain feed")
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(feed.Export(events, time.Now())))
}

func (s *Server) selectedEvents(r *http.Request) ([]model.Event, error) {
	now := time.Now()

	s.eventsMu.RLock()
	ec := s.eventsCache
	s.eventsMu.RUnlock()
	if ec != nil && now.Sub(ec.updatedAt) < eventsCacheTTL {
		return ec.events, nil
	}

	events, err := s.pipeline.SelectEvents(r.Context(), now)
	if err != nil {
		return nil, err
	}

	s.eventsMu.Lock()
	s.eventsCache = &eventsCache{events: events, updatedAt: time.Now()}
	s.eventsMu.Unlock()

	return events, nil
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
