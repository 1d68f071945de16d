package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/spotfinder/backend/internal/auth"
)

const UserIDKey = "user_id"

// BearerAuth requires an Authorization bearer token carrying a uid and stores
// the caller's identity on the request context for downstream API calls.
func BearerAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := auth.ParseBearer(c.GetHeader("Authorization"))
		if err == nil && id.UserID == "" {
			err = auth.ErrMissingUserID
		}
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "UNAUTHORIZED",
					"message": err.Error(),
				},
			})
			return
		}
		c.Set(UserIDKey, id.UserID)
		c.Request = c.Request.WithContext(auth.WithIdentity(c.Request.Context(), id))
		c.Next()
	}
}
