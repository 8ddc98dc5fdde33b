package email

import (
	"context"
	"fmt"
	"log"

	"github.com/resend/resend-go/v2"
)

// resendEmails is the part of the Resend client used here.
type resendEmails interface {
	SendWithContext(ctx context.Context, params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

// ResendSender delivers email through the Resend API.
type ResendSender struct {
	emails resendEmails
}

// NewResendSender creates a sender for the given API key.
func NewResendSender(apiKey string) *ResendSender {
	client := resend.NewClient(apiKey)
	return &ResendSender{emails: client.Emails}
}

func (s *ResendSender) Send(ctx context.Context, msg *Message) (string, error) {
	req := &resend.SendEmailRequest{
		From:    msg.From,
		To:      msg.To,
		Subject: msg.Subject,
		Html:    msg.HTML,
	}
	for _, a := range msg.Attachments {
		req.Attachments = append(req.Attachments, &resend.Attachment{
			Filename: a.Filename,
			Content:  a.Content,
		})
	}

	resp, err := s.emails.SendWithContext(ctx, req)
	if err != nil {
		log.Printf("Failed to send email via Resend to %v: %v", msg.To, err)
		return "", fmt.Errorf("resend error: %w", err)
	}
	log.Printf("Email sent via Resend to %v (Subject: %s, Id: %s)", msg.To, msg.Subject, resp.Id)
	return resp.Id, nil
}
