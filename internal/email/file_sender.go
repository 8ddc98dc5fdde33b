package email

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// FileEmailSender implements the Sender interface by appending emails to a file.
type FileEmailSender struct {
	filePath string
	mu       sync.Mutex
}

// NewFileEmailSender creates a new FileEmailSender.
// It ensures the directory for the log file exists.
func NewFileEmailSender(filePath string) (*FileEmailSender, error) {
	if strings.TrimSpace(filePath) == "" {
		return nil, fmt.Errorf("email log file path cannot be empty")
	}

	dir := filepath.Dir(filePath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory for email log file '%s': %w", dir, err)
	}

	return &FileEmailSender{filePath: filePath}, nil
}

// Send writes the email to the configured file.
func (s *FileEmailSender) Send(ctx context.Context, msg *Message) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	file, err := os.OpenFile(s.filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Printf("FileEmailSender: Failed to open log file '%s': %v", s.filePath, err)
		return "", fmt.Errorf("failed to open email log file: %w", err)
	}
	defer file.Close()

	id := "file-" + uuid.NewString()
	var b strings.Builder
	fmt.Fprintf(&b, "--- Email Logged at %s (Id: %s, To: %v, Subject: %s) ---\n",
		time.Now().Format(time.RFC3339Nano), id, msg.To, msg.Subject)
	fmt.Fprintf(&b, "From: %s\n", msg.From)
	for _, a := range msg.Attachments {
		fmt.Fprintf(&b, "Attachment: %s (%d bytes)\n", a.Filename, len(a.Content))
	}
	b.WriteString("\n")
	b.WriteString(msg.HTML)
	b.WriteString("\n--- End Logged Email ---\n\n")

	if _, err := file.WriteString(b.String()); err != nil {
		log.Printf("FileEmailSender: Failed to write to log file '%s': %v", s.filePath, err)
		return "", fmt.Errorf("failed to write email to log file: %w", err)
	}

	log.Printf("FileEmailSender: Email to %v (Subject: %s) logged to %s", msg.To, msg.Subject, s.filePath)
	return id, nil
}
