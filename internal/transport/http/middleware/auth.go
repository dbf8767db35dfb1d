package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"promptgate/internal/model"
	"promptgate/internal/transport/http/response"
)

const ContextUserKey = "current_user"

// TokenResolver turns a bearer token into its owning user. Revoked or unknown
// tokens resolve to an error.
type TokenResolver interface {
	GetUserByAccessToken(token string) (*model.User, error)
}

// AccessToken authenticates a request by the access_token query parameter.
// Verification is a lookup against the token stored on the user row, so a
// token superseded by a later login is rejected even while its signature is
// still valid.
func AccessToken(resolver TokenResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := strings.TrimSpace(c.Query("access_token"))
		if token == "" {
			response.Fail(c, 401, "Invalid token")
			c.Abort()
			return
		}

		user, err := resolver.GetUserByAccessToken(token)
		if err != nil || user == nil {
			response.Fail(c, 401, "Invalid token")
			c.Abort()
			return
		}

		c.Set(ContextUserKey, user)
		c.Next()
	}
}

// CurrentUser fetches the authenticated user placed by AccessToken.
func CurrentUser(c *gin.Context) (*model.User, bool) {
	value, exists := c.Get(ContextUserKey)
	if !exists {
		return nil, false
	}
	user, ok := value.(*model.User)
	return user, ok
}
