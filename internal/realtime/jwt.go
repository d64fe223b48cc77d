package realtime

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"calendar-booking-api/internal/auth"
	"calendar-booking-api/internal/middleware"
)

const ctxUserID = "user_id"

// JWTAuth accepts a bearer token in the Authorization header or, for
// browsers opening a websocket, in the access_token query parameter.
func (s *Server) JWTAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := middleware.BearerToken(c.GetHeader("Authorization"))
		if raw == "" {
			raw = c.Query("access_token")
		}
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "no token"})
			return
		}
		claims, err := auth.ParseToken(raw, s.secret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "bad token"})
			return
		}
		c.Set(ctxUserID, claims.UserID)
		c.Next()
	}
}
