package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/easypayhq/easypay/pkg/helpers"
	"github.com/easypayhq/easypay/pkg/response"
)

// Auth validates the access token cookie and ensures an active session exists
// in Redis with a matching session id. It sets username in the Gin context on
// success.
func Auth(rdb *redis.Client, jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie("access_token")
		if err != nil || token == "" {
			response.Error[any](c, http.StatusUnauthorized, "missing access token", nil)
			c.Abort()
			return
		}
		claims, err := jwt.ParseAccessToken(token)
		if err != nil {
			response.Error[any](c, http.StatusUnauthorized, "invalid access token", err.Error())
			c.Abort()
			return
		}

		if rdb != nil {
			key := helpers.SessionKey(claims.Username)
			data, err := rdb.HGetAll(c.Request.Context(), key).Result()
			if err != nil || len(data) == 0 || data["sid"] != claims.SessionID {
				response.Error[any](c, http.StatusUnauthorized, "session not found", nil)
				c.Abort()
				return
			}
		}

		c.Set("username", claims.Username)
		c.Next()
	}
}

// Username reads the authenticated seller name set by Auth.
func Username(c *gin.Context) string {
	return c.GetString("username")
}
