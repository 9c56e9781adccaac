package middleware

import (
	"slices"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/sangkips/restopos-api/internal/config"
)

var (
	defaultCORSOrigins = []string{"http://localhost:3000", "http://localhost:5173", "http://127.0.0.1:3000"}
	defaultCORSMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	defaultCORSHeaders = []string{"Accept", "Authorization", "Content-Type", "Origin", RequestIDHeader, IdempotencyKeyHeader}
)

// CORSMiddleware lets the POS frontend call the API. Empty settings fall back
// to local development origins; "*" allows any origin without credentials.
func CORSMiddleware(cfg *config.CORSConfig) gin.HandlerFunc {
	corsConfig := cors.Config{
		AllowMethods: orDefault(cfg.AllowedMethods, defaultCORSMethods),
		AllowHeaders: orDefault(cfg.AllowedHeaders, defaultCORSHeaders),
		ExposeHeaders: []string{
			"Content-Length",
			RequestIDHeader,
			"X-Idempotency-Replayed",
			"X-RateLimit-Limit",
			"X-RateLimit-Remaining",
			"Retry-After",
		},
		MaxAge: 12 * time.Hour,
	}

	origins := orDefault(cfg.AllowedOrigins, defaultCORSOrigins)
	if slices.Contains(origins, "*") {
		corsConfig.AllowAllOrigins = true
	} else {
		corsConfig.AllowOrigins = origins
		corsConfig.AllowCredentials = true
	}

	for _, h := range []string{"Authorization", IdempotencyKeyHeader} {
		if !slices.Contains(corsConfig.AllowHeaders, h) {
			corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, h)
		}
	}

	return cors.New(corsConfig)
}

func orDefault(values, fallback []string) []string {
	if len(values) == 0 {
		return append([]string(nil), fallback...)
	}
	return values
}
