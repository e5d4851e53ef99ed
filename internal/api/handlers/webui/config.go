package webui

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/tidwall/sjson"

	"github.com/router-for-me/ProxyConfigUI/internal/config"
	"github.com/router-for-me/ProxyConfigUI/internal/form"
)

// Index renders the configuration form from the current snapshot.
func (h *Handler) Index(c *gin.Context) {
	s := h.sessions.Get(c)
	data := indexData{
		Providers:    h.store.Config().Providers,
		Env:          h.store.Env(),
		CSRFToken:    h.sessions.CSRFToken(s),
		Flashes:      s.PopFlashes(),
		LoggedIn:     s.APIKey() != "",
		APIKeyHeader: config.DefaultAPIKeyHeader,
	}
	if header := data.Env[config.EnvProxyAPIKeyHeader]; header != "" {
		data.APIKeyHeader = header
	}
	data.Port = data.Env[config.EnvProxyPort]

	var buf bytes.Buffer
	if err := indexTemplate.Execute(&buf, data); err != nil {
		log.WithError(err).Error("failed to render config page")
		c.String(http.StatusInternalServerError, "template error")
		return
	}
	h.sessions.Save(c, s)
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}

// Login validates a submitted API key and stores it in the session.
func (h *Handler) Login(c *gin.Context) {
	s := h.sessions.Get(c)
	submitted := strings.TrimSpace(c.PostForm("api_key"))
	if submitted == "" {
		h.redirectWithFlash(c, s, "API key required", "error")
		return
	}
	for _, valid := range h.store.ProxyAPIKeys() {
		if strings.TrimSpace(valid) == submitted {
			s.SetAPIKey(submitted)
			h.redirectWithFlash(c, s, "Logged in", "success")
			return
		}
	}
	h.redirectWithFlash(c, s, "Invalid API key", "error")
}

// SaveConfig runs the full save pipeline: CSRF, provider rows, server
// settings, then the atomic config and env writes.
func (h *Handler) SaveConfig(c *gin.Context) {
	s := h.sessions.Get(c)
	if !h.checkCSRF(c, s) {
		return
	}
	if err := c.Request.ParseForm(); err != nil {
		h.redirectWithFlash(c, s, "Malformed form submission", "error")
		return
	}
	values := c.Request.PostForm

	providers, envUpdates, errParse := form.ParseProviders(values)
	if errParse != nil {
		h.redirectWithFlash(c, s, userMessage(errParse), "error")
		return
	}
	_, settingsEnv, errSettings := form.ParseServerSettings(values)
	if errSettings != nil {
		h.redirectWithFlash(c, s, userMessage(errSettings), "error")
		return
	}
	for key, value := range settingsEnv {
		envUpdates[key] = value
	}

	if errSave := h.store.SaveConfig(providers); errSave != nil {
		log.WithError(errSave).Error("failed to save configuration")
		h.redirectWithFlash(c, s, "Failed to save configuration", "error")
		return
	}
	if errEnv := h.store.SaveEnv(envUpdates); errEnv != nil {
		log.WithError(errEnv).Error("failed to save environment file")
		h.redirectWithFlash(c, s, "Configuration saved, but updating the environment file failed", "error")
		return
	}

	log.WithField("providers", len(providers)).Info("configuration saved")
	h.redirectWithFlash(c, s, "Configuration saved", "success")
}

// SetKey writes a single allow-listed environment variable.
func (h *Handler) SetKey(c *gin.Context) {
	s := h.sessions.Get(c)
	if !h.checkCSRF(c, s) {
		return
	}

	name := strings.TrimSpace(c.PostForm("key_name"))
	value := c.PostForm("key_value")
	if errName := form.ValidateEnvVarName(name); errName != nil {
		h.redirectWithFlash(c, s, userMessage(errName), "error")
		return
	}
	if errSave := h.store.SaveEnv(map[string]string{name: value}); errSave != nil {
		log.WithError(errSave).WithField("key", name).Error("failed to set environment variable")
		h.redirectWithFlash(c, s, "Failed to update "+name, "error")
		return
	}
	log.WithField("key", name).Info("environment variable updated")
	h.redirectWithFlash(c, s, name+" updated", "success")
}

// ExportConfig returns the config as JSON with the proxy API key list
// stripped, so the export can be shared without leaking credentials.
func (h *Handler) ExportConfig(c *gin.Context) {
	payload, err := json.Marshal(h.store.Config())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to export config"})
		return
	}
	redacted, errRedact := sjson.Delete(string(payload), "proxy_api_keys")
	if errRedact != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to redact config"})
		return
	}
	c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(redacted))
}

func userMessage(err error) string {
	var verr *form.ValidationError
	if errors.As(err, &verr) {
		return verr.Message
	}
	return "Invalid form submission"
}
