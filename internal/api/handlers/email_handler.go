package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/lightmyfireadmin/plombipro-app/internal/services"
)

// EmailHandler serves the transactional email relay.
type EmailHandler struct {
	emailService services.IEmailService
}

// NewEmailHandler creates a new EmailHandler.
func NewEmailHandler(emailService services.IEmailService) *EmailHandler {
	return &EmailHandler{emailService: emailService}
}

// SendEmail handles POST /functions/v1/send-email.
func (h *EmailHandler) SendEmail(c *gin.Context) {
	var in services.SendEmailInput
	if !bindBody(c, &in) {
		return
	}

	id, err := h.emailService.Send(c.Request.Context(), &in)
	if err != nil {
		sendErrorResponse(c, err.Error())
		return
	}
	sendSuccessResponse(c, gin.H{"data": gin.H{"id": id}})
}
