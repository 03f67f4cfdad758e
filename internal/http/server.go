// Package http exposes the REST surface: identity save plus spend-log CRUD,
// all JSON.
package http

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"pocketlog/internal/cache"
	"pocketlog/internal/core"
	applog "pocketlog/internal/log"
	"pocketlog/internal/middleware/ratelimit"
	"pocketlog/internal/middleware/security"
	"pocketlog/internal/middleware/trace"
	"pocketlog/internal/services"
)

// logsView is the cached shape of a GET /user/logs response.
type logsView struct {
	Logs       []core.LogEntry `json:"logs"`
	SpendLimit float64         `json:"spendLimit"`
}

type Server struct {
	http.Server

	directory *services.DirectoryService
	logs      *services.LogService

	limiter      *ratelimit.Limiter
	logsCache    *cache.LRU[logsView]
	cacheManager *cache.Manager

	jwtSecret string
	logger    *applog.Logger

	shutdownOnce sync.Once
}

// Config carries the server wiring that is not a service dependency.
type Config struct {
	Addr string
	// JWTSecret enables bearer-token verification on user-scoped endpoints
	// when non-empty.
	JWTSecret string
	Logger    *applog.Logger
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(cfg Config, directory *services.DirectoryService, logs *services.LogService) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig()).WithComponent(applog.ComponentHTTP)
	}

	s := &Server{
		directory:    directory,
		logs:         logs,
		limiter:      ratelimit.NewLimiter(ratelimit.DefaultConfig()),
		logsCache:    cache.NewLRU[logsView](500, 30*time.Second),
		cacheManager: cache.NewManager(),
		jwtSecret:    cfg.JWTSecret,
		logger:       logger,
	}

	s.cacheManager.Register(s.logsCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.Handle("POST /auth/save-user", s.mutating(http.HandlerFunc(s.handleSaveUser)))
	mux.Handle("GET /user/logs", s.authenticated(http.HandlerFunc(s.handleListLogs)))
	mux.Handle("POST /user/logs", s.mutating(s.authenticated(http.HandlerFunc(s.handleAddLog))))
	mux.Handle("PATCH /user/logs/{id}", s.mutating(s.authenticated(http.HandlerFunc(s.handleUpdateLog))))
	mux.Handle("DELETE /user/logs/{id}", s.mutating(s.authenticated(http.HandlerFunc(s.handleDeleteLog))))

	traceMW := trace.NewMiddleware(ratelimit.ClientIP)
	headersMW := security.NewHeadersMiddleware(security.DefaultHeadersConfig())
	loggerMW := applog.Middleware(logger)

	s.Server = http.Server{
		Addr:         cfg.Addr,
		Handler:      traceMW.Middleware(headersMW.Middleware(loggerMW(mux))),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

// mutating applies the per-IP rate limit to write requests.
func (s *Server) mutating(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP := ratelimit.ClientIP(r)
		if !s.limiter.Allow(clientIP) {
			s.logger.WarnContext(r.Context(), "Rate limit exceeded",
				"client_ip", clientIP, "method", r.Method, "path", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// cachedLogsView returns the cached list response for a uid, if fresh.
func (s *Server) cachedLogsView(uid string) (logsView, bool) {
	return s.logsCache.Get(uid)
}

func (s *Server) storeLogsView(uid string, view logsView) {
	s.logsCache.Set(uid, view)
}

// invalidateLogs drops the cached list for a uid after any mutation.
func (s *Server) invalidateLogs(uid string) {
	s.logsCache.Delete(uid)
}

// Shutdown stops the background goroutines and then the listener.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

// decodeJSON decodes a request body into dst, limiting its size.
func decodeJSON(r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(nil, r.Body, 1<<20)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
