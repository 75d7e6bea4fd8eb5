package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"matchoracle/internal/notify"
)

type EventHandler struct {
	Hub *notify.Hub
}

func (h *EventHandler) Register(r *gin.Engine) {
	r.GET("/api/v1/events/ws", h.stream)
}

func (h *EventHandler) stream(c *gin.Context) {
	if h.Hub == nil {
		Error(c, http.StatusServiceUnavailable, "event hub unavailable", nil)
		return
	}
	h.Hub.ServeWS(c.Writer, c.Request)
}
