package middleware

import (
	"strings"

	"github.com/Govind-619/Clomora/models"
	"github.com/Govind-619/Clomora/utils"
	"github.com/gin-gonic/gin"
)

// IdentityKey is where the authenticated identity is stored on the context.
const IdentityKey = "identity"

// bearerToken reads the Authorization header. Browsers cannot set headers
// on websocket upgrades, so access_token is accepted as a query fallback.
func bearerToken(c *gin.Context) string {
	if h := c.GetHeader("Authorization"); h != "" {
		if token := strings.TrimPrefix(h, "Bearer "); token != h {
			return strings.TrimSpace(token)
		}
		return ""
	}
	return c.Query("access_token")
}

// AuthMiddleware requires a valid bearer token.
func AuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			utils.LogWarn("Missing bearer token for %s %s", c.Request.Method, c.Request.URL.Path)
			utils.Unauthorized(c, utils.ErrSignInRequired)
			c.Abort()
			return
		}

		identity, err := utils.ValidateToken(token, secret)
		if err != nil {
			utils.LogWarn("Invalid token for %s %s: %v", c.Request.Method, c.Request.URL.Path, err)
			utils.Unauthorized(c, utils.ErrSignInRequired)
			c.Abort()
			return
		}

		c.Set(IdentityKey, identity)
		utils.LogDebug("User %s authenticated", identity.UID)
		c.Next()
	}
}

// OptionalAuthMiddleware attaches the identity when a valid token is sent
// and lets anonymous requests through.
func OptionalAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := bearerToken(c); token != "" {
			if identity, err := utils.ValidateToken(token, secret); err == nil {
				c.Set(IdentityKey, identity)
			} else {
				utils.LogDebug("Ignoring invalid optional token: %v", err)
			}
		}
		c.Next()
	}
}

// AdminMiddleware requires the identity set by AuthMiddleware to carry the
// admin claim.
func AdminMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := CurrentIdentity(c)
		if !ok {
			utils.Unauthorized(c, utils.ErrSignInRequired)
			c.Abort()
			return
		}
		if !identity.Admin {
			utils.LogError("Non-admin user attempted admin access: %s", identity.UID)
			utils.Forbidden(c, "Admin access required")
			c.Abort()
			return
		}
		c.Next()
	}
}

// CurrentIdentity returns the authenticated identity, if any.
func CurrentIdentity(c *gin.Context) (models.Identity, bool) {
	v, exists := c.Get(IdentityKey)
	if !exists {
		return models.Identity{}, false
	}
	identity, ok := v.(models.Identity)
	return identity, ok && identity.Authenticated()
}
