package middleware

import (
	"log"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/lightmyfireadmin/plombipro-app/internal/auth"
)

const (
	// ContextKeyUserID holds the key for user ID in Gin context.
	ContextKeyUserID = "userID"
	// ContextKeyUserEmail holds the key for the token email in Gin context.
	ContextKeyUserEmail = "userEmail"
)

// AuthMiddleware validates the Supabase access token in the Authorization
// header. Failures use the same 400 envelope as every other error.
func AuthMiddleware(jwtSecret, audience string) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			abortWithError(c, "Authorization header missing.")
			return
		}

		tokenString := strings.TrimSpace(authHeader)
		if len(tokenString) > 7 && strings.EqualFold(tokenString[:7], "bearer ") {
			tokenString = strings.TrimSpace(tokenString[7:])
		}

		claims, err := auth.ValidateJWT(tokenString, jwtSecret, audience)
		if err != nil {
			log.Printf("Auth: rejected token: %v", err)
			abortWithError(c, "User not authenticated.")
			return
		}

		c.Set(ContextKeyUserID, claims.UserID())
		c.Set(ContextKeyUserEmail, claims.Email)
		c.Next()
	}
}
