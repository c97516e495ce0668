// Package server exposes position analysis and engine-vs-engine matches over
// HTTP, with a websocket feed of match events and Prometheus metrics.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/hutchinsp01/Cachex-AI-Agent/internal/config"
	"github.com/hutchinsp01/Cachex-AI-Agent/internal/referee"
	"github.com/hutchinsp01/Cachex-AI-Agent/internal/search"
)

const shutdownTimeout = 5 * time.Second

type Server struct {
	store         *config.Store
	logger        *slog.Logger
	hub           *Hub
	matches       *matchRegistry
	registry      *prometheus.Registry
	searchMetrics *search.Metrics
	rejected      prometheus.Counter

	limMu   sync.Mutex
	limiter *rate.Limiter
	limGen  uint64

	ctx    context.Context
	cancel context.CancelFunc
}

// New starts the websocket hub; Close stops it along with any running
// matches.
func New(store *config.Store, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "server")
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	cfg := store.Get().Server

	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		store:         store,
		logger:        logger,
		hub:           NewHub(),
		registry:      reg,
		searchMetrics: search.NewMetrics(reg),
		rejected: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "cachex",
			Subsystem: "server",
			Name:      "analyze_rejected_total",
			Help:      "Analysis requests refused by the rate limiter",
		}),
		limiter: rate.NewLimiter(rate.Limit(cfg.AnalyzeRate), cfg.AnalyzeBurst),
		limGen:  store.Generation(),
		ctx:     ctx,
		cancel:  cancel,
	}
	s.matches = newMatchRegistry(s.hub, logger, s.searchMetrics, referee.NewMetrics(reg))
	go s.hub.Run(ctx)
	return s
}

func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/api/ping", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
	})
	r.Route("/api/analyze", func(r chi.Router) {
		r.Use(s.rateLimit)
		r.Post("/path", s.handleAnalyzePath)
		r.Post("/move", s.handleAnalyzeMove)
	})
	r.Route("/api/matches", func(r chi.Router) {
		r.Post("/", s.handleStartMatch)
		r.Get("/", s.handleListMatches)
		r.Get("/{id}", s.handleGetMatch)
	})
	r.Get("/ws/matches", s.serveWS)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))
	return r
}

// currentLimiter applies the configured rate, picking up config reloads.
func (s *Server) currentLimiter() *rate.Limiter {
	s.limMu.Lock()
	defer s.limMu.Unlock()
	if gen := s.store.Generation(); gen != s.limGen {
		cfg := s.store.Get().Server
		s.limiter.SetLimit(rate.Limit(cfg.AnalyzeRate))
		s.limiter.SetBurst(cfg.AnalyzeBurst)
		s.limGen = gen
	}
	return s.limiter
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.currentLimiter().Allow() {
			s.rejected.Inc()
			w.Header().Set("Retry-After", "1")
			writeJSON(w, http.StatusTooManyRequests, map[string]string{"error": "rate limit exceeded"})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleStartMatch(w http.ResponseWriter, r *http.Request) {
	var req MatchRequest
	// An empty body starts a match from the configured defaults.
	err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req)
	if err != nil && !errors.Is(err, io.EOF) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid payload"})
		return
	}
	cfg := s.store.Get()
	summary, err := s.matches.Start(s.ctx, cfg, req)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	s.matches.Prune(cfg.Server.MaxMatches)
	writeJSON(w, http.StatusAccepted, summary)
}

func (s *Server) handleListMatches(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.matches.List())
}

func (s *Server) handleGetMatch(w http.ResponseWriter, r *http.Request) {
	detail, err := s.matches.Get(chi.URLParam(r, "id"))
	if errors.Is(err, ErrMatchNotFound) {
		writeError(w, http.StatusNotFound, err)
		return
	}
	writeJSON(w, http.StatusOK, detail)
}

// Run serves on the configured address until ctx is done, then shuts down
// gracefully and stops every match.
func (s *Server) Run(ctx context.Context) error {
	addr := s.store.Get().Server.Addr
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	server := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	serverErrCh := make(chan error, 1)
	go func() {
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErrCh <- err
		}
		close(serverErrCh)
	}()
	s.logger.Info("listening", "addr", ln.Addr().String())

	var runErr error
	select {
	case <-ctx.Done():
		s.logger.Info("shutdown requested", "reason", context.Cause(ctx))
	case err, ok := <-serverErrCh:
		if ok {
			runErr = err
			s.logger.Error("server error", "error", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		s.logger.Warn("graceful shutdown failed", "error", err)
		if closeErr := server.Close(); closeErr != nil && !errors.Is(closeErr, http.ErrServerClosed) {
			s.logger.Warn("forced close failed", "error", closeErr)
		}
	}
	s.Close()
	return runErr
}

// Close stops the matches, then the hub.
func (s *Server) Close() {
	s.matches.Stop()
	s.cancel()
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
