// Package http exposes the JSON API: card search, savings reports, the
// card assistant, and the scheduled-post queue.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"cardgenius/internal/cache"
	"cardgenius/internal/catalog"
	"cardgenius/internal/core"
	"cardgenius/internal/genius"
	applog "cardgenius/internal/log"
	"cardgenius/internal/report"
)

// CardFinder is the catalog surface the handlers need.
type CardFinder interface {
	Search(ctx context.Context, req catalog.SearchRequest) ([]core.Card, error)
	Get(ctx context.Context, slug string) (core.Card, error)
}

// Scorer runs a spend profile against one card.
type Scorer interface {
	Score(ctx context.Context, profile core.SpendProfile, cardID int64) (genius.Response, error)
}

// Assistant answers card questions and drafts post copy.
type Assistant interface {
	Chat(ctx context.Context, question string, cards []core.Card) (string, error)
	ComposePost(ctx context.Context, card core.Card, platform core.Platform) (string, error)
}

// PostStore is the scheduled-post repository surface.
type PostStore interface {
	CreatePost(ctx context.Context, p core.Post) (int64, error)
	GetPost(ctx context.Context, id int64) (core.Post, error)
	ListPosts(ctx context.Context, status core.PostStatus) ([]core.Post, error)
	DeletePost(ctx context.Context, id int64) error
}

type Server struct {
	http.Server

	cards     CardFinder
	scorer    Scorer
	assistant Assistant
	posts     PostStore
	logger    *applog.Logger

	rateLimiter *rateLimiter

	// Report building fans out to two upstream APIs; identical requests
	// within the TTL are served from memory.
	reportCache *cache.LRUCache[report.SavingsReport]
	caches      *cache.Manager

	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(addr string, cards CardFinder, scorer Scorer, assistant Assistant, posts PostStore, logger *applog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		cards:       cards,
		scorer:      scorer,
		assistant:   assistant,
		posts:       posts,
		logger:      logger.WithComponent(applog.ComponentHTTP),
		rateLimiter: newRateLimiter(),
		reportCache: cache.NewLRU[report.SavingsReport](100, 5*time.Minute),
		caches:      cache.NewManager(),
	}

	s.caches.Register(s.reportCache)
	s.caches.StartCleanup(10 * time.Minute)

	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", handleReady)

	mux.HandleFunc("POST /api/cards/search", s.withMiddleware(s.handleSearchCards))
	mux.HandleFunc("GET /api/cards/{slug}", s.withMiddleware(s.handleGetCard))
	mux.HandleFunc("POST /api/savings/report", s.withMiddleware(s.handleSavingsReport))
	mux.HandleFunc("POST /api/chat", s.withMiddleware(s.handleChat))
	mux.HandleFunc("POST /api/posts", s.withMiddleware(s.handleCreatePost))
	mux.HandleFunc("GET /api/posts", s.withMiddleware(s.handleListPosts))
	mux.HandleFunc("GET /api/posts/{id}", s.withMiddleware(s.handleGetPost))
	mux.HandleFunc("DELETE /api/posts/{id}", s.withMiddleware(s.handleDeletePost))

	return s
}

// Shutdown stops the HTTP server and the background cleanup goroutines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.caches.Stop()
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})

	return shutdownErr
}

// withMiddleware adds security headers, rate limiting, and request
// logging around a handler.
func (s *Server) withMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		ctx := context.WithValue(r.Context(), requestIDKey{}, requestID)
		r = r.WithContext(ctx)

		slog.InfoContext(ctx, "Request started",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP,
			"user_agent", r.Header.Get("User-Agent"))

		// Mutating methods are rate limited per client.
		if (r.Method == http.MethodPost || r.Method == http.MethodDelete) && !s.rateLimiter.allow(clientIP) {
			slog.WarnContext(ctx, "Rate limit exceeded",
				"client_ip", clientIP, "method", r.Method, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded, try again later")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		slog.InfoContext(ctx, "Request completed",
			"request_id", requestID,
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", clientIP)
	}
}

type requestIDKey struct{}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}
