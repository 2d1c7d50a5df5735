package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/daniel-davidyan/pachu-app-sub003/internal/platform/ctxutil"
)

// HeaderUserID carries the caller id resolved by the upstream gateway.
const HeaderUserID = "X-User-Id"

// AttachRequestContext stores the caller identity on the request context.
// A missing or malformed header leaves the request anonymous.
func AttachRequestContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		rd := &ctxutil.RequestData{}
		if raw := strings.TrimSpace(c.GetHeader(HeaderUserID)); raw != "" {
			if id, err := uuid.Parse(raw); err == nil {
				rd.UserID = id
			}
		}
		c.Request = c.Request.WithContext(ctxutil.WithRequestData(c.Request.Context(), rd))
		c.Next()
	}
}
