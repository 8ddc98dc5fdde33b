// Package chorus submits Factur-X invoices to the Chorus Pro public
// e-invoicing portal.
package chorus

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"

	"github.com/lightmyfireadmin/plombipro-app/internal/config"
)

// IClient defines the Chorus Pro operations.
type IClient interface {
	Submit(ctx context.Context, xmlContent []byte) (string, error)
}

type client struct {
	apiURL     string
	httpClient *http.Client
}

// NewClient creates a client authenticating with the OAuth2 client
// credentials grant. Tokens are fetched lazily and refreshed on expiry.
func NewClient(cfg *config.Config) IClient {
	timeout := cfg.HTTPTimeout
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	cc := &clientcredentials.Config{
		ClientID:     cfg.ChorusProClientID,
		ClientSecret: cfg.ChorusProClientSecret,
		TokenURL:     cfg.ChorusProTokenURL,
		Scopes:       []string{"openid"},
	}
	tokenCtx := context.WithValue(context.Background(), oauth2.HTTPClient, &http.Client{Timeout: timeout})
	httpClient := cc.Client(tokenCtx)
	httpClient.Timeout = timeout

	return &client{apiURL: cfg.ChorusProApiURL, httpClient: httpClient}
}

// maxResponseBytes bounds the submission response read from the portal.
const maxResponseBytes = 1 << 20

type submitResponse struct {
	Status string `json:"status"`
}

// Submit posts the XML document and returns the portal's submission status.
func (c *client) Submit(ctx context.Context, xmlContent []byte) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiURL+"/invoices/submit", bytes.NewReader(xmlContent))
	if err != nil {
		return "", fmt.Errorf("failed to create Chorus Pro request: %w", err)
	}
	req.Header.Set("Content-Type", "application/xml")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("Error calling Chorus Pro: %v", err)
		return "", fmt.Errorf("failed to contact Chorus Pro: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return "", fmt.Errorf("failed to read Chorus Pro response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		log.Printf("Chorus Pro returned non-OK status: %d - Body: %s", resp.StatusCode, string(body))
		return "", fmt.Errorf("Chorus Pro returned status %d", resp.StatusCode)
	}

	var parsed submitResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", fmt.Errorf("failed to parse Chorus Pro response: %w", err)
	}
	if parsed.Status == "" {
		return "", fmt.Errorf("Chorus Pro response has no status")
	}
	return parsed.Status, nil
}
