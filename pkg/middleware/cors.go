package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4/middleware"
)

// AllowedOrigins is the restrictive list of origins the dashboard may be
// served from. No wildcard: credentials are enabled.
var AllowedOrigins = []string{
	"http://localhost:3000",     // Development dashboard
	"http://localhost:5173",     // Development (vite)
	"https://leadpulse.app",     // Production
	"https://www.leadpulse.app", // Production WWW
}

// AllowedMethods lists the HTTP methods the API accepts cross-origin.
// OPTIONS is handled automatically by the CORS middleware.
var AllowedMethods = []string{
	http.MethodGet,
	http.MethodPost,
	http.MethodPut,
	http.MethodPatch,
	http.MethodDelete,
}

// AllowedHeaders lists the request headers allowed on cross-origin calls.
var AllowedHeaders = []string{
	"Origin",
	"Content-Type",
	"Accept",
	"Authorization",
}

// CORSConfig returns the CORS configuration used by the application.
// Centralised here so that both main.go and tests reference the same config.
func CORSConfig() middleware.CORSConfig {
	return middleware.CORSConfig{
		AllowOrigins:     AllowedOrigins,
		AllowMethods:     AllowedMethods,
		AllowCredentials: true,
		AllowHeaders:     AllowedHeaders,
	}
}
