package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/daniel-davidyan/pachu-app-sub003/internal/http/response"
	"github.com/daniel-davidyan/pachu-app-sub003/internal/platform/ctxutil"
)

// RequireCaller rejects requests that carry no caller identity.
func RequireCaller() gin.HandlerFunc {
	return func(c *gin.Context) {
		if ctxutil.UserID(c.Request.Context()) == uuid.Nil {
			response.RespondError(c, http.StatusUnauthorized, response.CodeUnauthorized, errors.New("missing caller identity"))
			c.Abort()
			return
		}
		c.Next()
	}
}
