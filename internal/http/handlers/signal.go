package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/daniel-davidyan/pachu-app-sub003/internal/http/response"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/platform/ctxutil"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/services"
)

type SignalHandler struct {
	signals services.SignalService
}

func NewSignalHandler(signals services.SignalService) *SignalHandler {
	return &SignalHandler{signals: signals}
}

// POST /api/signals
func (h *SignalHandler) Record(c *gin.Context) {
	var req services.SignalInput
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.CodeInvalidRequest, err)
		return
	}
	sig, err := h.signals.Record(c.Request.Context(), ctxutil.UserID(c.Request.Context()), req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, gin.H{"signal": sig})
}
