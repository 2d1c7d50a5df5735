package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/daniel-davidyan/pachu-app-sub003/internal/domain/venue"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/http/response"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/services"
)

type VenueHandler struct {
	venues services.VenueIdentityService
}

func NewVenueHandler(venues services.VenueIdentityService) *VenueHandler {
	return &VenueHandler{venues: venues}
}

// POST /api/venues/resolve
// body: { "name": "...", "address": "...", "locality": "..." }
func (h *VenueHandler) Resolve(c *gin.Context) {
	var q venue.Query
	if err := c.ShouldBindJSON(&q); err != nil {
		response.RespondError(c, http.StatusBadRequest, response.CodeInvalidRequest, err)
		return
	}
	res, err := h.venues.Resolve(c.Request.Context(), q)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}

	switch res.Status {
	case venue.StatusResolved:
		response.RespondOK(c, gin.H{"resolution": res})
	case venue.StatusNoResults, venue.StatusNoMatch:
		c.JSON(http.StatusNotFound, gin.H{
			"error":      response.APIError{Message: "no confident venue match", Code: string(res.Status)},
			"resolution": res,
		})
	default:
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"error":      response.APIError{Message: "venue catalog unavailable, try again", Code: response.CodeUpstreamUnavailable},
			"resolution": res,
		})
	}
}
