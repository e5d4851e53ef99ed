package webui

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Model discovery and validation probed upstream providers inline with
// the request, which could block the serving thread for the duration of
// a slow upstream call. Both endpoints are permanently disabled and
// answer 501 regardless of input.

// DiscoverModels is disabled.
func (h *Handler) DiscoverModels(c *gin.Context) {
	c.JSON(http.StatusNotImplemented, gin.H{
		"error": "model discovery is disabled: upstream probing could block request handling",
	})
}

// ValidateModel is disabled.
func (h *Handler) ValidateModel(c *gin.Context) {
	c.JSON(http.StatusNotImplemented, gin.H{
		"error": "model validation is disabled: upstream probing could block request handling",
	})
}
