package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/lightmyfireadmin/plombipro-app/internal/chorus"
	"github.com/lightmyfireadmin/plombipro-app/internal/models"
	"github.com/lightmyfireadmin/plombipro-app/internal/repository"
	"github.com/lightmyfireadmin/plombipro-app/internal/storage"
)

// maxDocumentBytes bounds a downloaded Factur-X document.
const maxDocumentBytes = 10 << 20

// IChorusProService submits stored Factur-X documents to Chorus Pro.
type IChorusProService interface {
	Submit(ctx context.Context, invoiceID string) (string, error)
}

type chorusProService struct {
	client     chorus.IClient
	invoices   repository.IInvoiceRepository
	store      storage.IObjectStorage
	httpClient *http.Client
	maxBytes   int64
	now        func() time.Time
}

// NewChorusProService creates a new ChorusProService. Documents stored in
// the object store are read directly; other URLs are downloaded.
func NewChorusProService(client chorus.IClient, invoices repository.IInvoiceRepository, store storage.IObjectStorage, timeout time.Duration) IChorusProService {
	return &chorusProService{
		client:     client,
		invoices:   invoices,
		store:      store,
		httpClient: &http.Client{Timeout: timeout},
		maxBytes:   maxDocumentBytes,
		now:        time.Now,
	}
}

// Submit marks the invoice failed when anything after the id check goes wrong.
func (s *chorusProService) Submit(ctx context.Context, invoiceID string) (string, error) {
	if strings.TrimSpace(invoiceID) == "" {
		return "", inputError("Missing required parameter: invoice_id")
	}

	status, err := s.submit(ctx, invoiceID)
	if err != nil {
		if markErr := s.invoices.SetChorusProStatus(ctx, invoiceID, models.ChorusProStatusFailed, nil); markErr != nil && !errors.Is(markErr, repository.ErrNotFound) {
			log.Printf("Chorus Pro: failed to mark invoice %s as failed: %v", invoiceID, markErr)
		}
		return "", err
	}
	return status, nil
}

func (s *chorusProService) submit(ctx context.Context, invoiceID string) (string, error) {
	inv, err := s.invoices.FindByID(ctx, invoiceID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return "", fmt.Errorf("failed to load invoice: %w", err)
	}
	if err != nil || inv.XMLURL == "" {
		return "", inputError("Invoice or Factur-X XML URL not found.")
	}

	xmlContent, err := s.fetchDocument(ctx, inv.XMLURL)
	if err != nil {
		return "", err
	}

	status, err := s.client.Submit(ctx, xmlContent)
	if err != nil {
		return "", err
	}

	submittedAt := s.now().UTC()
	if err := s.invoices.SetChorusProStatus(ctx, invoiceID, status, &submittedAt); err != nil {
		return "", fmt.Errorf("failed to record Chorus Pro status: %w", err)
	}
	log.Printf("Chorus Pro: invoice %s submitted with status %s", invoiceID, status)
	return status, nil
}

func (s *chorusProService) fetchDocument(ctx context.Context, xmlURL string) ([]byte, error) {
	if key, ok := s.store.KeyFromPublicURL(xmlURL); ok {
		data, err := s.store.Get(ctx, key)
		if err != nil {
			return nil, fmt.Errorf("failed to read Factur-X XML: %w", err)
		}
		return data, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, xmlURL, nil)
	if err != nil {
		return nil, fmt.Errorf("invalid Factur-X XML URL: %w", err)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download Factur-X XML: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download Factur-X XML: status %d", resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to download Factur-X XML: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, fmt.Errorf("Factur-X XML exceeds %d bytes", s.maxBytes)
	}
	return data, nil
}
