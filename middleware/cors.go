package middleware

import (
	"net/http"

	"github.com/gorilla/handlers"
)

var (
	corsMethods = []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions}
	corsHeaders = []string{"Content-Type", "Authorization", "X-Request-ID"}
)

// CORS allows the listed origins, or any origin when the list is empty.
// Preflight requests are answered with 204 and never reach the router.
func CORS(allowedOrigins []string) func(http.Handler) http.Handler {
	opts := []handlers.CORSOption{
		handlers.AllowedMethods(corsMethods),
		handlers.AllowedHeaders(corsHeaders),
		handlers.ExposedHeaders([]string{RequestIDHeader}),
		handlers.MaxAge(600),
		handlers.OptionStatusCode(http.StatusNoContent),
	}
	if len(allowedOrigins) > 0 {
		opts = append(opts, handlers.AllowedOrigins(allowedOrigins), handlers.AllowCredentials())
	}
	return handlers.CORS(opts...)
}
