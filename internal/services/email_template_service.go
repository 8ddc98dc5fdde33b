package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"log"
	"text/template"

	"github.com/yuin/goldmark"

	"github.com/lightmyfireadmin/plombipro-app/internal/models"
	"github.com/lightmyfireadmin/plombipro-app/internal/repository"
)

const (
	TemplateQuoteSent       = "quote_sent"
	TemplateInvoiceSent     = "invoice_sent"
	TemplatePaymentReminder = "payment_reminder"
)

const defaultEmailHTML = "<p>Notification de PlombiPro.</p>"

type builtinTemplate struct {
	subject string
	body    *htmltemplate.Template
}

func mustBuiltin(id, subject, body string) builtinTemplate {
	return builtinTemplate{
		subject: subject,
		body:    htmltemplate.Must(htmltemplate.New(id).Parse(body)),
	}
}

// Built-in templates used when no override exists in the database.
var defaultEmailTemplates = map[string]builtinTemplate{
	TemplateQuoteSent: mustBuiltin(TemplateQuoteSent, "Votre devis",
		`<h1>Bonjour,</h1>
<p>Veuillez trouver ci-joint votre devis n° <strong>{{.quote_number}}</strong> d'un montant de <strong>{{.amount}}€</strong>.</p>
<p>Ce devis est valide jusqu'au {{.valid_until}}.</p>
<p>Cordialement,</p>
<p>L'équipe {{.company_name}}</p>`),
	TemplateInvoiceSent: mustBuiltin(TemplateInvoiceSent, "Votre facture",
		`<h1>Bonjour,</h1>
<p>Voici votre facture n° <strong>{{.invoice_number}}</strong> pour un montant de <strong>{{.amount}}€</strong>.</p>
<p>Cordialement,</p>
<p>L'équipe {{.company_name}}</p>`),
	TemplatePaymentReminder: mustBuiltin(TemplatePaymentReminder, "Rappel de paiement",
		`<h1>Rappel de paiement</h1>
<p>Bonjour,</p>
<p>Ceci est un rappel amical concernant la facture n° <strong>{{.invoice_number}}</strong> d'un montant de <strong>{{.amount}}€</strong>, qui est maintenant due.</p>
<p>Merci de procéder au paiement dès que possible.</p>
<p>Cordialement,</p>
<p>L'équipe {{.company_name}}</p>`),
}

// RenderedEmail is a template applied to a context.
type RenderedEmail struct {
	Subject string
	HTML    string
}

// IEmailTemplateService defines the interface for email template operations.
type IEmailTemplateService interface {
	Render(ctx context.Context, templateID string, data map[string]interface{}) (*RenderedEmail, error)
}

// emailTemplateService renders database overrides first, then built-ins.
type emailTemplateService struct {
	repo     repository.IEmailTemplateRepository
	markdown goldmark.Markdown
}

// NewEmailTemplateService creates a new EmailTemplateService. repo may be nil
// to use the built-in templates only.
func NewEmailTemplateService(repo repository.IEmailTemplateRepository) IEmailTemplateService {
	return &emailTemplateService{
		repo:     repo,
		markdown: goldmark.New(),
	}
}

// Render picks the override, the built-in template or the default notice,
// in that order.
func (s *emailTemplateService) Render(ctx context.Context, templateID string, data map[string]interface{}) (*RenderedEmail, error) {
	if data == nil {
		data = map[string]interface{}{}
	}

	if s.repo != nil && templateID != "" {
		override, err := s.repo.FindByTemplateID(ctx, templateID)
		switch {
		case err == nil:
			return s.renderOverride(override, data)
		case !errors.Is(err, repository.ErrNotFound):
			return nil, fmt.Errorf("error retrieving template: %w", err)
		}
	}

	builtin, ok := defaultEmailTemplates[templateID]
	if !ok {
		return &RenderedEmail{Subject: "Notification de PlombiPro", HTML: defaultEmailHTML}, nil
	}
	var buf bytes.Buffer
	if err := builtin.body.Execute(&buf, data); err != nil {
		return nil, inputError(fmt.Sprintf("Failed to render template %s: %v", templateID, err))
	}
	return &RenderedEmail{Subject: builtin.subject, HTML: buf.String()}, nil
}

// renderOverride fills the Markdown body placeholders, then converts the
// result to HTML. Raw HTML in the Markdown is not passed through.
func (s *emailTemplateService) renderOverride(tpl *models.EmailTemplate, data map[string]interface{}) (*RenderedEmail, error) {
	body, err := template.New(tpl.TemplateID).Option("missingkey=zero").Parse(tpl.Body)
	if err != nil {
		log.Printf("Email template %s has an invalid body: %v", tpl.TemplateID, err)
		return nil, inputError(fmt.Sprintf("Invalid email template %s", tpl.TemplateID))
	}
	var md bytes.Buffer
	if err := body.Execute(&md, data); err != nil {
		return nil, inputError(fmt.Sprintf("Failed to render template %s: %v", tpl.TemplateID, err))
	}

	var html bytes.Buffer
	if err := s.markdown.Convert(md.Bytes(), &html); err != nil {
		return nil, fmt.Errorf("failed to convert template %s to HTML: %w", tpl.TemplateID, err)
	}
	return &RenderedEmail{Subject: tpl.Subject, HTML: html.String()}, nil
}
