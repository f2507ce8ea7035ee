// ABOUTME: Admin HTTP API setup for the deck refresh service
// ABOUTME: Builds the router with CORS, request logging and rate limiting

package api

import (
	"net/http"
	"time"

	"deckthumb-cache/api/handlers"
	"deckthumb-cache/api/middleware"
	"deckthumb-cache/core/interfaces"
	"github.com/rs/cors"
)

// APIConfig holds configuration for the API
type APIConfig struct {
	Logger         interfaces.Logger
	RateLimit      int           // requests per window
	RateWindow     time.Duration // rate limit window
	AllowedOrigins []string
}

// NewRouter creates the admin API handler with middleware configured
func NewRouter(cache handlers.DeckCache, source handlers.DeckSource, cfg APIConfig) http.Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = interfaces.NopLogger{}
	}

	mux := http.NewServeMux()
	handlers.NewDeckHandler(cache, source, logger).RegisterRoutes(mux)

	var handler http.Handler = mux
	if cfg.RateLimit > 0 && cfg.RateWindow > 0 {
		limiter := middleware.NewRateLimiter(cfg.RateLimit, cfg.RateWindow)
		handler = middleware.RateLimitMiddleware(limiter)(handler)
	}
	handler = middleware.RequestLoggingMiddleware(logger)(handler)

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	// CORS wraps everything so preflights skip logging and limits
	return cors.New(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID", "X-RateLimit-Limit", "X-RateLimit-Window"},
		MaxAge:         300,
	}).Handler(handler)
}

// NewServer wraps the router in an http.Server with the service timeouts
func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
