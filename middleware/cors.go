package middleware

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// CORS returns a CORS middleware allowing the given origins to use the JSON API
func CORS(origins []string) gin.HandlerFunc {
	config := cors.DefaultConfig()
	if len(origins) == 0 {
		config.AllowAllOrigins = true
	} else {
		config.AllowOrigins = origins
	}
	config.AllowMethods = []string{"GET", "HEAD", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Range"}
	config.ExposeHeaders = []string{"Content-Length", "Content-Range", "Accept-Ranges"}

	return cors.New(config)
}
