package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	types "github.com/daniel-davidyan/pachu-app-sub003/internal/domain"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/domain/taste"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/http/response"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/platform/ctxutil"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/services"
)

type ProfileHandler struct {
	profiles   services.ProfileService
	embeddings services.EmbeddingService
}

func NewProfileHandler(profiles services.ProfileService, embeddings services.EmbeddingService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, embeddings: embeddings}
}

// GET /api/profile
func (h *ProfileHandler) Get(c *gin.Context) {
	p, err := h.profiles.Get(c.Request.Context(), ctxutil.UserID(c.Request.Context()))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"profile": p})
}

// PUT /api/profile
// body: any subset of the editable preference fields.
func (h *ProfileHandler) Update(c *gin.Context) {
	var fields types.ProfileFields
	if err := c.ShouldBindJSON(&fields); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.CodeInvalidRequest, err)
		return
	}
	p, err := h.profiles.Update(c.Request.Context(), ctxutil.UserID(c.Request.Context()), fields)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"profile": p})
}

// POST /api/profile/onboarding/complete
func (h *ProfileHandler) CompleteOnboarding(c *gin.Context) {
	p, err := h.profiles.CompleteOnboarding(c.Request.Context(), ctxutil.UserID(c.Request.Context()))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, gin.H{"profile": p})
}

// POST /api/profile/embeddings/rebuild
// body (optional): { "sources": ["onboarding", "chat", "reviews"] }
// Runs synchronously and reports the outcome per source.
func (h *ProfileHandler) RebuildEmbeddings(c *gin.Context) {
	var req struct {
		Sources []string `json:"sources"`
	}
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.RespondError(c, http.StatusBadRequest, response.CodeInvalidRequest, err)
			return
		}
	}
	sources := make([]types.EmbeddingSource, 0, len(req.Sources))
	for _, s := range req.Sources {
		sources = append(sources, taste.EmbeddingSource(strings.ToLower(strings.TrimSpace(s))))
	}
	report, err := h.embeddings.Rebuild(c.Request.Context(), ctxutil.UserID(c.Request.Context()), sources...)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"report": report})
}
