package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/sma-records/internal/models"
	appErrors "github.com/noah-isme/sma-records/pkg/errors"
	"github.com/noah-isme/sma-records/pkg/response"
)

// ContextAccountKey is the gin context key holding the session's *models.Account.
const ContextAccountKey = "currentAccount"

// SessionAuthenticator resolves a session token to the logged-in account.
type SessionAuthenticator interface {
	Authenticate(token string) (*models.Account, error)
}

// Session protects routes by requiring the token of the live session.
func Session(auth SessionAuthenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil {
			response.Error(c, err)
			return
		}

		account, err := auth.Authenticate(token)
		if err != nil {
			response.Error(c, err)
			return
		}

		c.Set(ContextAccountKey, account)
		c.Next()
	}
}

// CurrentAccount returns the account attached by Session, or nil.
func CurrentAccount(c *gin.Context) *models.Account {
	value, exists := c.Get(ContextAccountKey)
	if !exists {
		return nil
	}
	account, _ := value.(*models.Account)
	return account
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", appErrors.ErrUnauthorized
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", appErrors.Clone(appErrors.ErrUnauthorized, "invalid authorization header")
	}
	return strings.TrimSpace(parts[1]), nil
}
