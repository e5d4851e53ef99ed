// Package webui implements the route handlers of the configuration web
// UI: the form page, the save pipeline, the dashboard JSON endpoints
// and the deliberately disabled model-probing endpoints.
package webui

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/router-for-me/ProxyConfigUI/internal/session"
	"github.com/router-for-me/ProxyConfigUI/internal/store"
)

// ServiceName identifies this service in health payloads and logs.
const ServiceName = "proxy-config-webui"

// Handler carries the dependencies shared by all route handlers.
type Handler struct {
	store    *store.Store
	sessions *session.Manager
	logPath  string
}

// NewHandler creates the handler set.
func NewHandler(st *store.Store, sessions *session.Manager, logPath string) *Handler {
	return &Handler{store: st, sessions: sessions, logPath: logPath}
}

// redirectWithFlash queues a flash message and redirects to the form.
func (h *Handler) redirectWithFlash(c *gin.Context, s *session.Session, message, category string) {
	s.AddFlash(message, category)
	h.sessions.Save(c, s)
	c.Redirect(http.StatusSeeOther, "/")
}

// checkCSRF validates the echoed token on a mutating POST. On failure
// it responds and returns false; nothing may be persisted afterwards.
func (h *Handler) checkCSRF(c *gin.Context, s *session.Session) bool {
	if s.CheckCSRF(c.PostForm("csrf_token")) {
		return true
	}
	h.redirectWithFlash(c, s, "Invalid or missing CSRF token", "error")
	return false
}
