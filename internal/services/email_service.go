package services

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/lightmyfireadmin/plombipro-app/internal/config"
	"github.com/lightmyfireadmin/plombipro-app/internal/email"
)

// Recipients accepts either a single address or a list in JSON.
type Recipients []string

func (r *Recipients) UnmarshalJSON(data []byte) error {
	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		if single == "" {
			*r = nil
		} else {
			*r = Recipients{single}
		}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return fmt.Errorf("to must be an email address or a list of addresses")
	}
	*r = list
	return nil
}

// SendEmailInput is the send-email request body.
type SendEmailInput struct {
	To        Recipients             `json:"to"`
	Subject   string                 `json:"subject"`
	Template  string                 `json:"template"`
	Context   map[string]interface{} `json:"context"`
	PDFBase64 string                 `json:"pdf_base64,omitempty"`
	Filename  string                 `json:"filename,omitempty"`
}

// IEmailService renders and sends transactional emails.
type IEmailService interface {
	Send(ctx context.Context, in *SendEmailInput) (string, error)
}

type emailService struct {
	cfg       *config.Config
	templates IEmailTemplateService
	sender    email.Sender
}

// NewEmailService creates a new EmailService.
func NewEmailService(cfg *config.Config, templates IEmailTemplateService, sender email.Sender) IEmailService {
	return &emailService{cfg: cfg, templates: templates, sender: sender}
}

// Send validates the request, renders the template and hands the message to
// the sender. The PDF is attached only when both content and file name are set.
func (s *emailService) Send(ctx context.Context, in *SendEmailInput) (string, error) {
	if in == nil || len(in.To) == 0 {
		return "", inputError("Missing required parameter: to")
	}
	for _, addr := range in.To {
		if strings.TrimSpace(addr) == "" {
			return "", inputError("Missing required parameter: to")
		}
	}
	if strings.TrimSpace(in.Subject) == "" {
		return "", inputError("Missing required parameter: subject")
	}

	rendered, err := s.templates.Render(ctx, in.Template, in.Context)
	if err != nil {
		return "", err
	}

	msg := &email.Message{
		From:       s.cfg.EmailFromAddress,
		To:         in.To,
		Subject:    in.Subject,
		HTML:       rendered.HTML,
		TemplateID: in.Template,
	}
	if in.PDFBase64 != "" && in.Filename != "" {
		content, err := base64.StdEncoding.DecodeString(in.PDFBase64)
		if err != nil {
			return "", inputError("Invalid pdf_base64: not valid base64.")
		}
		msg.Attachments = []email.Attachment{{Filename: in.Filename, Content: content}}
	}

	id, err := s.sender.Send(ctx, msg)
	if err != nil {
		return "", fmt.Errorf("Failed to send email: %w", err)
	}
	return id, nil
}
