// Package httpview serves the readers screen state as JSON, for kiosks and
// dashboards that cannot render the terminal screen.
package httpview

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/gorilla/mux"
	jsoniter "github.com/json-iterator/go"

	"github.com/mobile-access/readers-go/pkg/history"
	"github.com/mobile-access/readers-go/pkg/readers"
	"github.com/mobile-access/readers-go/pkg/sdk"
	"github.com/mobile-access/readers-go/pkg/sdkstate"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// MaxHistoryLimit caps the limit query parameter.
const MaxHistoryLimit = 1000

// ViewSource is the read side of a readers.Synchronizer.
type ViewSource interface {
	View() readers.View
	Messages() []sdkstate.Message
	Readers() []sdk.Reader
	Reader(id string) (sdk.Reader, bool)
}

var _ ViewSource = (*readers.Synchronizer)(nil)

// Config configures the handler.
type Config struct {
	// Source provides the screen state. Required.
	Source ViewSource

	// History serves /api/v1/history. When nil the route answers 404.
	History history.Store

	// Link reports the SDK link state for /api/v1/health (optional).
	Link func() string

	// Logger for request logging (optional).
	Logger *slog.Logger
}

// Health is the /api/v1/health response.
type Health struct {
	Status  string `json:"status"`
	Link    string `json:"link,omitempty"`
	Version uint64 `json:"version"`
}

type errorBody struct {
	Error string `json:"error"`
}

const apiPrefix = "/api/v1"

// NewRouter builds the /api/v1 routes.
func NewRouter(cfg Config) *mux.Router {
	h := &handlers{cfg: cfg}

	r := mux.NewRouter()
	if cfg.Logger != nil {
		r.Use(h.logRequests)
	}

	// Routes stay on the root router so a wrong method gets 405, not 404.
	r.HandleFunc(apiPrefix+"/health", h.health).Methods(http.MethodGet)
	r.HandleFunc(apiPrefix+"/view", h.view).Methods(http.MethodGet)
	r.HandleFunc(apiPrefix+"/messages", h.messages).Methods(http.MethodGet)
	r.HandleFunc(apiPrefix+"/readers", h.readers).Methods(http.MethodGet)
	r.HandleFunc(apiPrefix+"/readers/{id}", h.reader).Methods(http.MethodGet)
	r.HandleFunc(apiPrefix+"/history", h.history).Methods(http.MethodGet)
	return r
}

type handlers struct {
	cfg Config
}

func (h *handlers) health(w http.ResponseWriter, _ *http.Request) {
	resp := Health{Status: "ok", Version: h.cfg.Source.View().Version}
	if h.cfg.Link != nil {
		resp.Link = h.cfg.Link()
	}
	h.writeJSON(w, http.StatusOK, resp)
}

func (h *handlers) view(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, h.cfg.Source.View())
}

func (h *handlers) messages(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, h.cfg.Source.Messages())
}

func (h *handlers) readers(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, h.cfg.Source.Readers())
}

func (h *handlers) reader(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	reader, ok := h.cfg.Source.Reader(id)
	if !ok {
		h.writeJSON(w, http.StatusNotFound, errorBody{Error: "reader not found"})
		return
	}
	h.writeJSON(w, http.StatusOK, reader)
}

func (h *handlers) history(w http.ResponseWriter, r *http.Request) {
	if h.cfg.History == nil {
		h.writeJSON(w, http.StatusNotFound, errorBody{Error: "history not enabled"})
		return
	}

	q := history.Query{ReaderID: r.URL.Query().Get("reader")}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			h.writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid limit"})
			return
		}
		q.Limit = min(n, MaxHistoryLimit)
	}
	if v := r.URL.Query().Get("kind"); v != "" {
		q.Kind = history.Kind(v)
		if !q.Kind.Valid() {
			h.writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid kind"})
			return
		}
	}

	entries, err := h.cfg.History.List(r.Context(), q)
	if err != nil {
		if h.cfg.Logger != nil {
			h.cfg.Logger.Error("history list failed", "error", err)
		}
		h.writeJSON(w, http.StatusInternalServerError, errorBody{Error: "history unavailable"})
		return
	}
	h.writeJSON(w, http.StatusOK, entries)
}

func (h *handlers) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil && h.cfg.Logger != nil {
		h.cfg.Logger.Warn("write response failed", "error", err)
	}
}

func (h *handlers) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		h.cfg.Logger.Debug("http request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

// Server runs the router on a TCP listener.
type Server struct {
	mu       sync.Mutex
	srv      *http.Server
	listener net.Listener
	done     chan struct{}
}

// NewServer creates a server for cfg.
func NewServer(cfg Config) *Server {
	return &Server{
		srv: &http.Server{
			Handler:           NewRouter(cfg),
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

// Start listens on addr and serves in the background.
func (s *Server) Start(addr string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener != nil {
		return errors.New("http view already running")
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	s.listener = ln
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		_ = s.srv.Serve(ln)
	}()
	return nil
}

// Addr returns the listening address, or nil before Start.
func (s *Server) Addr() net.Addr {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop shuts the server down, waiting for in-flight requests until ctx ends.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	done := s.done
	s.mu.Unlock()
	if done == nil {
		return nil
	}

	err := s.srv.Shutdown(ctx)
	<-done
	return err
}
