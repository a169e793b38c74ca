package middleware

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var (
	defaultMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	defaultHeaders = []string{"Origin", "Content-Type", apiKeyHeader, "Authorization", requestIDHeader}
)

// CORS returns a configured CORS middleware. With no origins configured
// every origin is allowed, which suits the admin UI during development.
func CORS(origins, methods, headers []string) gin.HandlerFunc {
	if len(methods) == 0 {
		methods = defaultMethods
	}
	if len(headers) == 0 {
		headers = defaultHeaders
	}
	return cors.New(cors.Config{
		AllowAllOrigins: len(origins) == 0,
		AllowOrigins:    origins,
		AllowMethods:    methods,
		AllowHeaders:    headers,
		ExposeHeaders:   []string{requestIDHeader},
	})
}
