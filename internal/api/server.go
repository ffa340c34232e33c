package api

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/r3dlabs/termkit/internal/config"
	tkerrors "github.com/r3dlabs/termkit/internal/errors"
	"github.com/r3dlabs/termkit/internal/history"
	"github.com/r3dlabs/termkit/internal/logger"
	"github.com/r3dlabs/termkit/internal/metrics"
	"github.com/r3dlabs/termkit/internal/refresh"
)

// RequestTimeout bounds every request, including the settle wait of a
// one-shot sample.
const RequestTimeout = 10 * time.Second

// HistoryLister is the part of the history store the server reads.
type HistoryLister interface {
	List(ctx context.Context, f history.Filter) ([]history.Session, error)
}

// Server exposes one-shot snapshots over HTTP as JSON.
type Server struct {
	cfg     *config.Config
	backend metrics.Backend
	history HistoryLister
	clock   refresh.Clock
	settle  time.Duration
	log     logger.Logger
	version string
	started time.Time
	router  chi.Router
}

// Options configures a Server. Zero values use the real provider.
type Options struct {
	Backend *metrics.Backend
	History HistoryLister
	Clock   refresh.Clock
	// Settle is the gap between the two samples of a snapshot.
	Settle  time.Duration
	Logger  logger.Logger
	Version string
}

// NewServer creates a Server with its routes registered.
func NewServer(cfg *config.Config, opts Options) *Server {
	s := &Server{
		cfg:     cfg,
		backend: metrics.DefaultBackend(),
		history: opts.History,
		clock:   opts.Clock,
		settle:  opts.Settle,
		log:     opts.Logger,
		version: opts.Version,
	}
	if opts.Backend != nil {
		s.backend = *opts.Backend
	}
	if s.clock == nil {
		s.clock = refresh.RealClock()
	}
	if s.settle <= 0 {
		s.settle = metrics.DefaultSettle
	}
	if s.log == nil {
		s.log = logger.NewEnvLogger("[serve]")
	}
	s.started = s.clock.Now()

	s.setupRouter()
	return s
}

func (s *Server) setupRouter() {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(RequestTimeout))
	r.Use(s.requestLogger)

	r.Get("/healthz", s.handleHealth)

	r.Route("/api", func(r chi.Router) {
		r.Get("/system", s.handleSystem)
		r.Get("/processes", s.handleProcesses)
		r.Get("/network", s.handleNetwork)
		r.Get("/history", s.handleHistory)
	})

	s.router = r
}

// Router returns the HTTP handler.
func (s *Server) Router() chi.Router {
	return s.router
}

// Serve listens on addr until ctx is cancelled, then shuts down gracefully.
// ready, when non-nil, receives the bound address once listening.
func (s *Server) Serve(ctx context.Context, addr string, ready func(net.Addr)) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return tkerrors.WrapWithCode(err, tkerrors.ErrNet,
			"Can't listen on "+addr,
			"Pick another address with --addr or serve.addr")
	}

	srv := &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	if ready != nil {
		ready(ln.Addr())
	}
	s.log.Info("snapshot API listening on %s", ln.Addr())

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return tkerrors.WrapWithCode(err, tkerrors.ErrNet, "Snapshot API stopped", "")
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return tkerrors.WrapWithCode(err, tkerrors.ErrNet, "Snapshot API did not shut down cleanly", "")
		}
		return nil
	}
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.log.Debug("%s %s %d %s [%s]", r.Method, r.URL.Path, ww.Status(), time.Since(start).Round(time.Millisecond), middleware.GetReqID(r.Context()))
	})
}

func jsonResponse(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func errorResponse(w http.ResponseWriter, status int, message string) {
	jsonResponse(w, status, map[string]string{"error": message})
}

// sampleError maps a sampling failure onto an HTTP status.
func sampleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		errorResponse(w, http.StatusGatewayTimeout, err.Error())
	case errors.Is(err, metrics.ErrUnavailable):
		errorResponse(w, http.StatusServiceUnavailable, err.Error())
	default:
		errorResponse(w, http.StatusInternalServerError, err.Error())
	}
}

type healthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Uptime  string `json:"uptime"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	jsonResponse(w, http.StatusOK, healthResponse{
		Status:  "ok",
		Version: s.version,
		Uptime:  s.clock.Now().Sub(s.started).Round(time.Second).String(),
	})
}

func (s *Server) handleSystem(w http.ResponseWriter, r *http.Request) {
	sampler := metrics.NewSystemSampler(s.backend, "")
	sampler.WithPartitions = r.URL.Query().Get("partitions") == "true"

	snap, err := metrics.Once[metrics.SystemSnapshot](r.Context(), sampler, s.clock, s.settle)
	if err != nil {
		sampleError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, snap)
}

func (s *Server) handleProcesses(w http.ResponseWriter, r *http.Request) {
	q, err := s.processQuery(r)
	if err != nil {
		errorResponse(w, http.StatusBadRequest, err.Error())
		return
	}

	snap, err := metrics.Once[metrics.ProcessSnapshot](r.Context(), metrics.NewProcessSampler(s.backend, q), s.clock, s.settle)
	if err != nil {
		sampleError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, snap)
}

// processQuery reads sort, reverse, filter, user, limit and restricted
// from the query string, defaulting to the config.
func (s *Server) processQuery(r *http.Request) (metrics.ProcessQuery, error) {
	params := r.URL.Query()

	sortKey := s.cfg.Processes.Sort
	if v := params.Get("sort"); v != "" {
		sortKey = v
	}
	key, err := metrics.ParseSortKey(sortKey)
	if err != nil {
		return metrics.ProcessQuery{}, err
	}

	q := metrics.ProcessQuery{
		Sort:       key,
		Reverse:    params.Get("reverse") == "true",
		Filter:     params.Get("filter"),
		User:       params.Get("user"),
		Limit:      s.cfg.Processes.Limit,
		Restricted: s.cfg.Processes.Restricted,
	}

	if v := params.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return metrics.ProcessQuery{}, errors.New("limit must be a non-negative integer")
		}
		q.Limit = n
	}
	if v := params.Get("restricted"); v != "" {
		if v != metrics.RestrictedShow && v != metrics.RestrictedHide {
			return metrics.ProcessQuery{}, errors.New("restricted must be show or hide")
		}
		q.Restricted = v
	}
	return q, nil
}

func (s *Server) handleNetwork(w http.ResponseWriter, r *http.Request) {
	sampler := metrics.NewNetworkSampler(s.backend)
	sampler.WithInterfaces = true

	snap, err := metrics.Once[metrics.NetworkSnapshot](r.Context(), sampler, s.clock, s.settle)
	if err != nil {
		sampleError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, snap)
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.history == nil {
		errorResponse(w, http.StatusNotFound, "session history is disabled")
		return
	}

	f := history.Filter{Tool: r.URL.Query().Get("tool")}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			errorResponse(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		f.Limit = n
	}

	sessions, err := s.history.List(r.Context(), f)
	if err != nil {
		errorResponse(w, http.StatusInternalServerError, err.Error())
		return
	}
	if sessions == nil {
		sessions = []history.Session{}
	}
	jsonResponse(w, http.StatusOK, sessions)
}
