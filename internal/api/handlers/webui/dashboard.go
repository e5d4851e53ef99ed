package webui

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/tidwall/gjson"

	"github.com/router-for-me/ProxyConfigUI/internal/logging"
)

// dashboardLogLines bounds how much of the log the dashboard shows.
const dashboardLogLines = 20

// Health returns a static liveness payload with no dependency checks.
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"service":   ServiceName,
	})
}

// DashboardProviders returns the provider snapshot annotated with a
// derived status string.
func (h *Handler) DashboardProviders(c *gin.Context) {
	providers := h.store.Config().Providers
	items := make([]gin.H, 0, len(providers))
	for _, p := range providers {
		status := "disabled"
		if p.Enabled {
			status = "enabled"
		}
		items = append(items, gin.H{
			"name":     p.Name,
			"type":     p.Type,
			"models":   p.Models,
			"priority": p.Priority,
			"forced":   p.Forced,
			"status":   status,
		})
	}
	c.JSON(http.StatusOK, gin.H{"providers": items})
}

// DashboardLogs returns the most recent service log lines. Structured
// JSON lines are broken into time/level/message fields; anything else
// is passed through raw.
func (h *Handler) DashboardLogs(c *gin.Context) {
	lines, err := logging.TailLines(h.logPath, dashboardLogLines)
	if err != nil {
		log.WithError(err).Warn("failed to read service log for dashboard")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to read logs"})
		return
	}

	entries := make([]gin.H, 0, len(lines))
	for _, line := range lines {
		if gjson.Valid(line) {
			parsed := gjson.Parse(line)
			entries = append(entries, gin.H{
				"time":    parsed.Get("time").String(),
				"level":   parsed.Get("level").String(),
				"message": parsed.Get("msg").String(),
			})
			continue
		}
		entries = append(entries, gin.H{"message": line})
	}
	c.JSON(http.StatusOK, gin.H{"logs": entries, "count": len(entries)})
}
