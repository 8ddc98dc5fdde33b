// Package handlers exposes the backend functions over HTTP.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/lightmyfireadmin/plombipro-app/internal/api/middleware"
)

const invalidBodyMessage = "Invalid JSON body."

// sendErrorResponse writes the failure envelope. Every failure is a 400 and
// the message reaches the client unchanged.
func sendErrorResponse(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"error": message})
}

func sendSuccessResponse(c *gin.Context, payload gin.H) {
	body := gin.H{"success": true}
	for k, v := range payload {
		body[k] = v
	}
	c.JSON(http.StatusOK, body)
}

// bindBody decodes the JSON body and writes the failure envelope when it
// cannot. The body may already have been read by a middleware.
func bindBody(c *gin.Context, dst interface{}) bool {
	if err := c.ShouldBindBodyWith(dst, binding.JSON); err != nil {
		_ = c.Error(err)
		if middleware.IsBodyTooLarge(err) {
			sendErrorResponse(c, middleware.BodyTooLargeMessage)
			return false
		}
		sendErrorResponse(c, invalidBodyMessage)
		return false
	}
	return true
}
