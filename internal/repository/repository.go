// Package repository is the row store behind the backend functions. Two
// backends implement the same interfaces: MongoDB and Postgres through gorm.
package repository

import (
	"context"
	"errors"
	"time"

	"github.com/lightmyfireadmin/plombipro-app/internal/models"
)

// ErrNotFound is returned when no row matches.
var ErrNotFound = errors.New("record not found")

// IProfileRepository defines profile persistence.
type IProfileRepository interface {
	FindByID(ctx context.Context, id string) (*models.Profile, error)
	SetStripeConnectID(ctx context.Context, id, accountID string) error
}

// IInvoiceRepository defines invoice persistence.
type IInvoiceRepository interface {
	FindByID(ctx context.Context, id string) (*models.Invoice, error)
	MarkElectronic(ctx context.Context, id, xmlURL string) error
	// FindOverdue lists unpaid invoices whose due date (YYYY-MM-DD) is before today.
	FindOverdue(ctx context.Context, today string) ([]models.Invoice, error)
	RecordReminder(ctx context.Context, id, sentOn string) error
	SetChorusProStatus(ctx context.Context, id, status string, submittedAt *time.Time) error
}

// IQuoteRepository defines quote persistence.
type IQuoteRepository interface {
	// FindExpired lists sent quotes whose expiry date is before today.
	FindExpired(ctx context.Context, today string) ([]models.Quote, error)
	MarkExpired(ctx context.Context, id string) error
}

// IProductRepository defines catalogue persistence.
type IProductRepository interface {
	Upsert(ctx context.Context, product *models.Product) error
}

// IEmailTemplateRepository looks up operator template overrides.
type IEmailTemplateRepository interface {
	FindByTemplateID(ctx context.Context, templateID string) (*models.EmailTemplate, error)
}

// Repositories bundles one backend's implementations.
type Repositories struct {
	Profiles       IProfileRepository
	Invoices       IInvoiceRepository
	Quotes         IQuoteRepository
	Products       IProductRepository
	EmailTemplates IEmailTemplateRepository
}
