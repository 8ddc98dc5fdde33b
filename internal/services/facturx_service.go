package services

import (
	"context"
	"fmt"
	"log"

	"github.com/lightmyfireadmin/plombipro-app/internal/facturx"
	"github.com/lightmyfireadmin/plombipro-app/internal/repository"
	"github.com/lightmyfireadmin/plombipro-app/internal/storage"
)

const facturXContentType = "application/xml;charset=utf-8"

// FacturXResult is the stored document.
type FacturXResult struct {
	XMLURL     string
	XMLContent string
}

// IFacturXService generates and stores structured invoice documents.
type IFacturXService interface {
	Generate(ctx context.Context, inv *facturx.Invoice, company *facturx.Company) (*FacturXResult, error)
}

type facturXService struct {
	store    storage.IObjectStorage
	invoices repository.IInvoiceRepository
}

// NewFacturXService creates a new FacturXService.
func NewFacturXService(store storage.IObjectStorage, invoices repository.IInvoiceRepository) IFacturXService {
	return &facturXService{store: store, invoices: invoices}
}

// Generate builds the document, overwrites the object keyed by invoice
// number, then flags the invoice row as electronic. The stored object is kept
// when the row update fails.
func (s *facturXService) Generate(ctx context.Context, inv *facturx.Invoice, company *facturx.Company) (*FacturXResult, error) {
	if inv == nil || company == nil {
		return nil, inputError("Missing invoice or company data in request.")
	}
	doc, err := facturx.Build(inv, company)
	if err != nil {
		return nil, err
	}

	key := facturx.ObjectPath(inv.Number)
	if err := s.store.Put(ctx, key, doc, facturXContentType); err != nil {
		return nil, fmt.Errorf("Failed to upload Factur-X XML: %w", err)
	}
	xmlURL := s.store.PublicURL(key)

	if err := s.invoices.MarkElectronic(ctx, inv.ID, xmlURL); err != nil {
		log.Printf("Factur-X: stored %s but failed to update invoice %s: %v", key, inv.ID, err)
		return nil, fmt.Errorf("Failed to update invoice with XML URL: %w", err)
	}

	return &FacturXResult{XMLURL: xmlURL, XMLContent: string(doc)}, nil
}
