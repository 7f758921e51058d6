package fixture

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// ServerStatus reports runtime lifecycle states for the HTTP server.
type ServerStatus string

const (
	StatusStarting ServerStatus = "starting"
	StatusReady    ServerStatus = "ready"
	StatusDraining ServerStatus = "draining"
)

// Logger is satisfied by *logging.Logger and *log.Logger.
type Logger interface {
	Printf(format string, args ...any)
}

// Server serves the catalog endpoints from a fixture Document.
type Server struct {
	settings Settings
	logger   Logger
	clock    func() time.Time

	mu        sync.RWMutex
	doc       Document
	server    *http.Server
	listener  net.Listener
	status    ServerStatus
	startTime time.Time
	requests  atomic.Int64
}

// Option customizes server construction.
type Option func(*Server)

// WithLogger overrides the default no-op logger.
func WithLogger(l Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithClock allows tests to control timestamps.
func WithClock(clock func() time.Time) Option {
	return func(s *Server) {
		if clock != nil {
			s.clock = clock
		}
	}
}

// WithDocument serves doc instead of loading Settings.FixturePath.
func WithDocument(doc Document) Option {
	return func(s *Server) {
		s.doc = doc
	}
}

// NewServer prepares a fixture server. The fixture file named by settings is
// loaded unless WithDocument supplied one.
func NewServer(settings Settings, opts ...Option) (*Server, error) {
	s := &Server{
		settings: settings,
		logger:   nopLogger{},
		clock:    func() time.Time { return time.Now().UTC() },
		status:   StatusStarting,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.doc.Venues == nil {
		doc, err := LoadDocument(settings.FixturePath)
		if err != nil {
			return nil, err
		}
		s.doc = doc
	}
	return s, nil
}

// Handler returns the routed HTTP handler without binding a listener.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)
	r.Get("/health", s.handleHealth)
	r.Head("/health", s.handleHealth)
	r.Route("/challenge", func(r chi.Router) {
		r.Get("/menu", s.handleMenu)
		r.Get("/venue/{venueID}", s.handleVenue)
	})
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
	})
	return r
}

// Start binds the TCP listener and begins serving HTTP traffic.
func (s *Server) Start(ctx context.Context) error {
	if s == nil {
		return fmt.Errorf("fixture: server is nil")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return fmt.Errorf("fixture: server already started")
	}
	addr := s.settings.Address()
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("fixture: listen %s: %w", addr, err)
	}
	s.listener = listener
	s.startTime = s.clock()
	server := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.settings.ReadTimeout,
		WriteTimeout: s.settings.WriteTimeout,
		IdleTimeout:  s.settings.IdleTimeout,
	}
	if ctx != nil {
		server.BaseContext = func(net.Listener) context.Context { return ctx }
	}
	s.server = server
	s.status = StatusReady
	go func() {
		if err := server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Printf("fixture: serve error: %v", err)
		}
	}()
	s.logger.Printf("fixture: listening on %s", listener.Addr().String())
	return nil
}

// Shutdown stops accepting new connections and waits for in-flight requests to exit.
func (s *Server) Shutdown(ctx context.Context) error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	server := s.server
	if s.listener == nil || server == nil {
		s.mu.Unlock()
		return nil
	}
	s.status = StatusDraining
	s.mu.Unlock()
	// in-flight handlers take the read lock, so it must not be held here
	deadline := ctx
	if deadline == nil {
		var cancel context.CancelFunc
		deadline, cancel = context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
	}
	if err := server.Shutdown(deadline); err != nil {
		return err
	}
	s.mu.Lock()
	s.listener = nil
	s.server = nil
	s.mu.Unlock()
	return nil
}

// Addr returns the bound TCP address once the server has started.
func (s *Server) Addr() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// BaseURL returns the HTTP base URL (scheme + host:port) for the running server.
func (s *Server) BaseURL() string {
	addr := s.Addr()
	if addr == "" {
		return s.settings.URL()
	}
	return "http://" + addr
}

// Status reports the server's lifecycle state.
func (s *Server) Status() ServerStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.status
}

// SetDocument swaps the served fixture.
func (s *Server) SetDocument(doc Document) {
	s.mu.Lock()
	s.doc = doc
	s.mu.Unlock()
}

func (s *Server) document() Document {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.doc
}

func (s *Server) uptimeSeconds() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.startTime.IsZero() {
		return 0
	}
	return int64(s.clock().Sub(s.startTime).Seconds())
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.requests.Add(1)
		s.logger.Printf("fixture: %s %s -> %d", r.Method, r.URL.Path, ww.Status())
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:        string(s.Status()),
		UptimeSeconds: s.uptimeSeconds(),
		Requests:      s.requests.Load(),
	})
}

func (s *Server) handleMenu(w http.ResponseWriter, _ *http.Request) {
	if s.settings.FailMenu {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "menu unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, s.document().MenuPayload())
}

func (s *Server) handleVenue(w http.ResponseWriter, r *http.Request) {
	if s.settings.FailVenue {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": "venue unavailable"})
		return
	}
	venue, ok := s.document().Venue(chi.URLParam(r, "venueID"))
	if !ok {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "unknown venue"})
		return
	}
	writeJSON(w, http.StatusOK, venue)
}

type healthResponse struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	Requests      int64  `json:"requests"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}
