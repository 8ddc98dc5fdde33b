package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
)

const (
	invalidBodyMessage = "Invalid JSON body."

	// BodyTooLargeMessage is returned when a body exceeds the BodyLimit.
	BodyTooLargeMessage = "Request body too large."
)

// BodyLimit caps request bodies at maxBytes. Zero disables the cap.
func BodyLimit(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		if maxBytes > 0 && c.Request.Body != nil {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		}
		c.Next()
	}
}

// IsBodyTooLarge reports whether err comes from reading past the BodyLimit.
func IsBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

// RequireNumberField rejects the request unless the JSON body carries field
// as a number. The body is cached on the context so later handlers can bind
// it again with ShouldBindBodyWith.
func RequireNumberField(field, message string) gin.HandlerFunc {
	return func(c *gin.Context) {
		var body map[string]interface{}
		if err := c.ShouldBindBodyWith(&body, binding.JSON); err != nil {
			if IsBodyTooLarge(err) {
				abortWithError(c, BodyTooLargeMessage)
				return
			}
			abortWithError(c, invalidBodyMessage)
			return
		}
		if _, ok := body[field].(float64); !ok {
			abortWithError(c, message)
			return
		}
		c.Next()
	}
}
