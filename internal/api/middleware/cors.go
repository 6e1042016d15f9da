package middleware

import (
	"github.com/go-chi/cors"
)

// NewCORS builds the CORS middleware for the API. The method list matches
// what the router actually serves, and X-API-Key is allowed so browsers can
// reach the keyed mutating routes.
func NewCORS(allowedOrigins []string) *cors.Cors {
	return cors.New(cors.Options{
		AllowedOrigins: allowedOrigins,
		AllowedMethods: []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{
			"Content-Type",
			"X-API-Key",
		},
		AllowCredentials: true,
		MaxAge:           300,
	})
}
