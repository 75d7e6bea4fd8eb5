package handler

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const accountHeader = "X-Account"

const accountKey = "caller_account"

// AccountMiddleware extracts the caller account from the X-Account header.
// Authentication itself is the upstream gateway's job; this service trusts
// the header the same way the platform's other backends trust their bearer
// middleware.
func AccountMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if account := strings.TrimSpace(c.GetHeader(accountHeader)); account != "" {
			c.Set(accountKey, account)
		}
		c.Next()
	}
}

func callerAccount(c *gin.Context) string {
	if v, ok := c.Get(accountKey); ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// requireAccount aborts with 401 when no caller account is present.
func requireAccount(c *gin.Context) (string, bool) {
	account := callerAccount(c)
	if account == "" {
		Error(c, http.StatusUnauthorized, "missing "+accountHeader+" header", nil)
		return "", false
	}
	return account, true
}
