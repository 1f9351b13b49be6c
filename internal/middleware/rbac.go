package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-records/internal/models"
	appErrors "github.com/noah-isme/sma-records/pkg/errors"
	"github.com/noah-isme/sma-records/pkg/response"
)

// RoleChecker answers whether the live session holds a role.
type RoleChecker interface {
	IsInRole(role models.UserRole) bool
}

// RequireRoles lets the request through when the session holds any of roles.
func RequireRoles(auth RoleChecker, roles ...models.UserRole) gin.HandlerFunc {
	return authorize(auth, "", roles)
}

// RequireRolesOrSelf also admits the account whose id equals the path parameter param.
func RequireRolesOrSelf(auth RoleChecker, param string, roles ...models.UserRole) gin.HandlerFunc {
	return authorize(auth, param, roles)
}

func authorize(auth RoleChecker, selfParam string, roles []models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		account := CurrentAccount(c)
		if account == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			return
		}

		for _, role := range roles {
			if auth.IsInRole(role) {
				c.Next()
				return
			}
		}

		if selfParam != "" && !account.Offline {
			if id, err := strconv.ParseInt(c.Param(selfParam), 10, 64); err == nil && id == account.ID {
				c.Next()
				return
			}
		}

		response.Error(c, appErrors.ErrForbidden)
	}
}
