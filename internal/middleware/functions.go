package middleware

import (
	"crypto/subtle"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/01moynul/hidaaya-golang/internal/email"
)

// FunctionSecret guards the notification functions with a shared secret sent
// in the email.FunctionSecretHeader header. With no secret configured every
// call is refused.
func FunctionSecret(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		got := c.GetHeader(email.FunctionSecretHeader)
		if secret == "" || got == "" || subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, email.FunctionResponse{Error: "unauthorized"})
			return
		}
		c.Next()
	}
}
