package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/daniel-davidyan/pachu-app-sub003/internal/http/response"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/services"
)

type RestaurantHandler struct {
	restaurants services.RestaurantService
}

func NewRestaurantHandler(restaurants services.RestaurantService) *RestaurantHandler {
	return &RestaurantHandler{restaurants: restaurants}
}

// GET /api/restaurants/stale?limit=100
func (h *RestaurantHandler) ListStale(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			response.RespondError(c, http.StatusBadRequest, response.CodeInvalidRequest, err)
			return
		}
		limit = n
	}
	rows, err := h.restaurants.ListStale(c.Request.Context(), limit)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"restaurants": rows})
}
