package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/daniel-davidyan/pachu-app-sub003/internal/http/response"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/platform/ctxutil"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/services"
)

// MaxScoreBatch bounds one score request.
const MaxScoreBatch = 200

type ScoreHandler struct {
	scores services.MatchScoreService
}

func NewScoreHandler(scores services.MatchScoreService) *ScoreHandler {
	return &ScoreHandler{scores: scores}
}

type scoreRequest struct {
	RestaurantIDs []string `json:"restaurant_ids"`
}

// POST /api/scores
// body: { "restaurant_ids": ["<uuid or catalog id>", ...] }
// Anonymous callers get the default score for every id.
func (h *ScoreHandler) Score(c *gin.Context) {
	var req scoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.CodeInvalidRequest, err)
		return
	}
	if len(req.RestaurantIDs) == 0 {
		response.RespondError(c, http.StatusBadRequest, response.CodeInvalidRequest, errors.New("restaurant_ids is required"))
		return
	}
	if len(req.RestaurantIDs) > MaxScoreBatch {
		response.RespondError(c, http.StatusBadRequest, response.CodeInvalidRequest, errors.New("too many restaurant_ids"))
		return
	}

	scores, err := h.scores.Score(c.Request.Context(), ctxutil.UserID(c.Request.Context()), req.RestaurantIDs)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"scores": scores})
}
