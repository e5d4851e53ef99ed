package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// publicPaths are served without an API key: the form page itself,
// login, liveness, static assets and the two permanently disabled
// model-probing endpoints.
var publicPaths = map[string]bool{
	"/":                                  true,
	"/login":                             true,
	"/health":                            true,
	"/api/models/discover/:index":        true,
	"/api/models/validate/:index/*model": true,
}

func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader("X-Request-ID"))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Header("X-Request-ID", requestID)
		c.Set("request_id", requestID)
		c.Next()
		if c.Writer.Status() >= http.StatusInternalServerError {
			log.WithFields(log.Fields{
				"request_id": requestID,
				"method":     c.Request.Method,
				"path":       c.Request.URL.Path,
				"status":     c.Writer.Status(),
			}).Error("request failed")
		}
	}
}

// authGate enforces the API key on every non-exempt route. The key is
// resolved from the X-API-Key header, then an Authorization bearer
// token, then the session, and compared (trimmed) against the
// configured proxy API keys.
func (s *Server) authGate() gin.HandlerFunc {
	return func(c *gin.Context) {
		if publicPaths[c.FullPath()] || strings.HasPrefix(c.Request.URL.Path, "/static/") {
			c.Next()
			return
		}

		key := s.resolveAPIKey(c)
		if key == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "API key required"})
			return
		}
		if !s.keyValid(key) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid API key"})
			return
		}
		c.Next()
	}
}

func (s *Server) resolveAPIKey(c *gin.Context) string {
	if key := strings.TrimSpace(c.GetHeader("X-API-Key")); key != "" {
		return key
	}
	if authHeader := strings.TrimSpace(c.GetHeader("Authorization")); authHeader != "" {
		if token, found := strings.CutPrefix(authHeader, "Bearer "); found {
			if trimmed := strings.TrimSpace(token); trimmed != "" {
				return trimmed
			}
		}
	}
	return strings.TrimSpace(s.sessions.Get(c).APIKey())
}

func (s *Server) keyValid(key string) bool {
	for _, valid := range s.store.ProxyAPIKeys() {
		if strings.TrimSpace(valid) == key {
			return true
		}
	}
	return false
}
