package email

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// MockEmailTTL is how long a mock email stays readable through the service API.
const MockEmailTTL = 5 * time.Minute

// MockEmailKey is the Redis key under which the last mock email for a
// recipient and template is kept.
func MockEmailKey(to, templateID string) string {
	if templateID == "" {
		templateID = "unknown"
	}
	return fmt.Sprintf("mockemail:%s:%s", to, templateID)
}

// RedisSender implements the Sender interface by storing emails in Redis
type RedisSender struct {
	client *redis.Client
}

// NewRedisSender creates a new RedisSender
func NewRedisSender(client *redis.Client) *RedisSender {
	return &RedisSender{client: client}
}

// Send stores a representation of the email in Redis instead of delivering it.
func (s *RedisSender) Send(ctx context.Context, msg *Message) (string, error) {
	primaryTo := ""
	if len(msg.To) > 0 {
		primaryTo = msg.To[0]
	}

	id := "mock-" + uuid.NewString()
	attachments := make([]string, 0, len(msg.Attachments))
	for _, a := range msg.Attachments {
		attachments = append(attachments, a.Filename)
	}
	emailData := map[string]interface{}{
		"id":          id,
		"to":          strings.Join(msg.To, ", "),
		"from":        msg.From,
		"subject":     msg.Subject,
		"html":        msg.HTML,
		"template":    msg.TemplateID,
		"attachments": attachments,
		"sent_at":     time.Now().UTC().Format(time.RFC3339Nano),
	}

	jsonData, err := json.Marshal(emailData)
	if err != nil {
		return "", fmt.Errorf("failed to marshal email data: %w", err)
	}

	key := MockEmailKey(primaryTo, msg.TemplateID)
	if err := s.client.Set(ctx, key, jsonData, MockEmailTTL).Err(); err != nil {
		return "", fmt.Errorf("failed to store email in Redis key '%s': %w", key, err)
	}

	log.Printf("Mock email stored in Redis key '%s' (TTL: %v, To: %s, Subject: %s)", key, MockEmailTTL, strings.Join(msg.To, ", "), msg.Subject)
	return id, nil
}
