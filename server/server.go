package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"vehicle-storefront/models"
	"vehicle-storefront/services"
	"vehicle-storefront/storage"
	"vehicle-storefront/utils"
)

// Options configures the loaders the server creates.
type Options struct {
	Loader            services.LoaderConfig
	ScrollThresholdPx int
	DefaultFilter     models.ListingFilter
	AllowedOrigins    []string
}

// Server exposes listing loaders to storefront pages. Each websocket
// connection owns one Loader and receives its state on every change.
type Server struct {
	source    storage.VehicleSource
	validator *services.Validator
	logger    *utils.Logger
	opts      Options
	upgrader  websocket.Upgrader

	mu       sync.Mutex
	sessions map[*session]struct{}
}

// New creates a Server over source.
func New(source storage.VehicleSource, validator *services.Validator, logger *utils.Logger, opts Options) *Server {
	if opts.DefaultFilter == (models.ListingFilter{}) {
		opts.DefaultFilter = models.DefaultFilter()
	}
	s := &Server{
		source:    source,
		validator: validator,
		logger:    logger,
		opts:      opts,
		sessions:  make(map[*session]struct{}),
	}
	s.upgrader = websocket.Upgrader{CheckOrigin: s.checkOrigin}
	return s
}

// Handler returns the HTTP routes.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /ws", s.handleWebSocket)
	mux.HandleFunc("GET /api/vehicles", s.handlePage)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

// Run serves on addr until ctx is cancelled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.logger.Info("[server] Listening on %s", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	s.closeSessions()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Sessions returns the number of connected pages.
func (s *Server) Sessions() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *Server) checkOrigin(r *http.Request) bool {
	if len(s.opts.AllowedOrigins) == 0 {
		return true
	}
	origin := r.Header.Get("Origin")
	for _, o := range s.opts.AllowedOrigins {
		if o == origin {
			return true
		}
	}
	return false
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	filter := s.opts.DefaultFilter
	if raw := r.URL.Query().Get("filter"); raw != "" {
		f, err := models.ParseFilter(raw)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		filter = f
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("[server] ws upgrade error: %v", err)
		return
	}

	sess := newSession(s, conn, filter)
	s.add(sess)
	defer s.remove(sess)

	s.logger.Debug("[server] Session opened for %s (%s)", filter, r.RemoteAddr)
	sess.run()
	s.logger.Debug("[server] Session closed (%s)", r.RemoteAddr)
}

type pageResponse struct {
	Filter    models.ListingFilter     `json:"filter"`
	Page      int                      `json:"page"`
	Items     []*models.VehicleSummary `json:"items"`
	HasMore   bool                     `json:"hasMore"`
	LastError string                   `json:"lastError,omitempty"`
}

// handlePage serves one page as JSON for server-rendered listing pages.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	filter := s.opts.DefaultFilter
	if raw := r.URL.Query().Get("filter"); raw != "" {
		f, err := models.ParseFilter(raw)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
			return
		}
		filter = f
	}
	page := 0
	if raw := r.URL.Query().Get("page"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "page must be a non-negative integer"})
			return
		}
		page = n
	}

	loader := services.NewLoader(s.source, s.validator, s.logger, filter, s.opts.Loader)
	if err := loader.FetchPage(r.Context(), page, true); err != nil {
		s.logger.Error("[server] Page %d for %s failed: %v", page, filter, err)
		st := loader.State()
		writeJSON(w, http.StatusBadGateway, pageResponse{Filter: filter, Page: page, Items: st.Items, LastError: st.LastError})
		return
	}
	st := loader.State()
	writeJSON(w, http.StatusOK, pageResponse{Filter: filter, Page: page, Items: st.Items, HasMore: st.HasMore})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (s *Server) add(sess *session) {
	s.mu.Lock()
	s.sessions[sess] = struct{}{}
	s.mu.Unlock()
}

func (s *Server) remove(sess *session) {
	s.mu.Lock()
	delete(s.sessions, sess)
	s.mu.Unlock()
}

func (s *Server) closeSessions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for sess := range s.sessions {
		_ = sess.conn.Close()
	}
}
