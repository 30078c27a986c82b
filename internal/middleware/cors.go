package middleware

import (
	"net/http"

	"fleet-backend/internal/config"

	"github.com/rs/cors"
)

// NewCORS allows the configured front-end origins. Receipt downloads need
// Content-Disposition and X-Archive-URL exposed to the browser.
func NewCORS(cfg *config.Config) func(http.Handler) http.Handler {
	headers := cfg.Server.CorsAllowedHeaders
	if len(headers) == 0 {
		headers = []string{"Content-Type", "Authorization", RequestIDHeader}
	}
	return cors.New(cors.Options{
		AllowedOrigins:   cfg.Server.CorsAllowedOrigins,
		AllowedMethods:   cfg.Server.CorsAllowedMethods,
		AllowedHeaders:   headers,
		ExposedHeaders:   []string{RequestIDHeader, "Content-Disposition", "X-Archive-URL"},
		AllowCredentials: true,
		MaxAge:           600,
	}).Handler
}
