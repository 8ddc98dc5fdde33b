package email

import (
	"context"
	"log"
	"strings"

	"github.com/google/uuid"

	"github.com/lightmyfireadmin/plombipro-app/internal/config"
)

// Attachment is a file sent along with a message.
type Attachment struct {
	Filename string
	Content  []byte
}

// Message is a rendered email ready for delivery.
type Message struct {
	From        string
	To          []string
	Subject     string
	HTML        string
	TemplateID  string // used for mock keys and logs only
	Attachments []Attachment
}

// Sender defines the interface for delivering emails. It returns the
// provider's message id.
type Sender interface {
	Send(ctx context.Context, msg *Message) (string, error)
}

// NewSender returns the Resend sender, or a logging sender when no API key is
// configured.
func NewSender(cfg *config.Config) Sender {
	if cfg.ResendApiKey == "" {
		log.Println("RESEND_API_KEY not configured, using logging email sender.")
		return &LoggingSender{cfg: cfg}
	}
	return NewResendSender(cfg.ResendApiKey)
}

// LoggingSender is a mock implementation that just logs email details.
type LoggingSender struct {
	cfg *config.Config
}

// NewLoggingSender creates a sender that only writes to the process log.
func NewLoggingSender(cfg *config.Config) *LoggingSender {
	return &LoggingSender{cfg: cfg}
}

// Send logs the email details instead of sending.
func (s *LoggingSender) Send(ctx context.Context, msg *Message) (string, error) {
	id := "logged-" + uuid.NewString()
	log.Printf("--- Sending Email (Logged) ---")
	log.Printf("Id: %s", id)
	log.Printf("From: %s", msg.From)
	log.Printf("To: %s", strings.Join(msg.To, ", "))
	log.Printf("Subject: %s", msg.Subject)
	for _, a := range msg.Attachments {
		log.Printf("Attachment: %s (%d bytes)", a.Filename, len(a.Content))
	}
	log.Println("--- HTML ---")
	log.Println(msg.HTML)
	log.Println("--- End Email ---")
	return id, nil
}
