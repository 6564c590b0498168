package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"tourbook/internal/models"
	"tourbook/internal/utils"
	"tourbook/pkg/logger"
)

// Authenticator resolves a bearer token to its user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (*models.User, error)
}

// Protect requires a valid bearer token whose user still exists and has not
// changed password since the token was issued. The user is stored under
// utils.ContextUserKey.
func Protect(auth Authenticator, log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c.GetHeader("Authorization"))
		if token == "" {
			utils.HandleError(c, utils.NewUnauthenticatedError(utils.ErrMsgNotLoggedIn))
			return
		}

		user, err := auth.Authenticate(c.Request.Context(), token)
		if err != nil {
			log.LogSecurityEvent("authentication_failed", "low", map[string]interface{}{
				"client_ip": c.ClientIP(),
				"path":      c.FullPath(),
				"reason":    err.Error(),
			})
			utils.HandleError(c, err)
			return
		}

		c.Set(utils.ContextUserKey, user)
		ctx := context.WithValue(c.Request.Context(), logger.UserIDKey, user.ID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// RestrictTo must run after Protect.
func RestrictTo(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			utils.HandleError(c, utils.NewUnauthenticatedError(utils.ErrMsgNotLoggedIn))
			return
		}

		if !IsRoleAllowed(user.Role, roles) {
			utils.HandleError(c, utils.NewForbiddenError(utils.ErrMsgNoPermission))
			return
		}

		c.Next()
	}
}

func IsRoleAllowed(role models.Role, allowed []models.Role) bool {
	for _, r := range allowed {
		if r == role {
			return true
		}
	}
	return false
}

// CurrentUser returns the user stored by Protect.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, exists := c.Get(utils.ContextUserKey)
	if !exists {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok && user != nil
}

func bearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) <= len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}
