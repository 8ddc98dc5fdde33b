package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/lightmyfireadmin/plombipro-app/internal/db"
	"github.com/lightmyfireadmin/plombipro-app/internal/models"
)

// NewPostgresRepositories wires the gorm backend.
func NewPostgresRepositories(gdb *gorm.DB) *Repositories {
	return &Repositories{
		Profiles:       &gormProfileRepository{db: gdb},
		Invoices:       &gormInvoiceRepository{db: gdb},
		Quotes:         &gormQuoteRepository{db: gdb},
		Products:       &gormProductRepository{db: gdb},
		EmailTemplates: &gormEmailTemplateRepository{db: gdb},
	}
}

func first[T any](ctx context.Context, gdb *gorm.DB, query string, args ...interface{}) (*T, error) {
	var out T
	if err := gdb.WithContext(ctx).Where(query, args...).First(&out).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find row: %w", err)
	}
	return &out, nil
}

func updates(ctx context.Context, gdb *gorm.DB, model interface{}, id string, values map[string]interface{}) error {
	res := gdb.WithContext(ctx).Model(model).Where("id = ?", id).Updates(values)
	if res.Error != nil {
		return fmt.Errorf("failed to update row %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

type gormProfileRepository struct {
	db *gorm.DB
}

func (r *gormProfileRepository) FindByID(ctx context.Context, id string) (*models.Profile, error) {
	return first[models.Profile](ctx, r.db, "id = ?", id)
}

func (r *gormProfileRepository) SetStripeConnectID(ctx context.Context, id, accountID string) error {
	return updates(ctx, r.db, &models.Profile{}, id, map[string]interface{}{"stripe_connect_id": accountID})
}

type gormInvoiceRepository struct {
	db *gorm.DB
}

func (r *gormInvoiceRepository) FindByID(ctx context.Context, id string) (*models.Invoice, error) {
	return first[models.Invoice](ctx, r.db, "id = ?", id)
}

func (r *gormInvoiceRepository) MarkElectronic(ctx context.Context, id, xmlURL string) error {
	return updates(ctx, r.db, &models.Invoice{}, id, map[string]interface{}{
		"xml_url":       xmlURL,
		"is_electronic": true,
	})
}

func (r *gormInvoiceRepository) FindOverdue(ctx context.Context, today string) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := r.db.WithContext(ctx).
		Where("due_date < ?", today).
		Where("payment_status IS DISTINCT FROM ?", models.PaymentStatusPaid).
		Order("due_date").
		Find(&invoices).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query overdue invoices: %w", err)
	}
	return invoices, nil
}

func (r *gormInvoiceRepository) RecordReminder(ctx context.Context, id, sentOn string) error {
	return updates(ctx, r.db, &models.Invoice{}, id, map[string]interface{}{
		"last_reminder_sent":  sentOn,
		"reminder_sent_count": gorm.Expr("COALESCE(reminder_sent_count, 0) + 1"),
	})
}

func (r *gormInvoiceRepository) SetChorusProStatus(ctx context.Context, id, status string, submittedAt *time.Time) error {
	values := map[string]interface{}{"chorus_pro_status": status}
	if submittedAt != nil {
		values["chorus_pro_submitted_at"] = submittedAt.UTC()
	}
	return updates(ctx, r.db, &models.Invoice{}, id, values)
}

type gormQuoteRepository struct {
	db *gorm.DB
}

func (r *gormQuoteRepository) FindExpired(ctx context.Context, today string) ([]models.Quote, error) {
	var quotes []models.Quote
	err := r.db.WithContext(ctx).
		Where("expiry_date < ? AND status = ?", today, models.QuoteStatusSent).
		Find(&quotes).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query expired quotes: %w", err)
	}
	return quotes, nil
}

func (r *gormQuoteRepository) MarkExpired(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Model(&models.Quote{}).
		Where("id = ? AND status = ?", id, models.QuoteStatusSent).
		Update("status", models.QuoteStatusExpired)
	if res.Error != nil {
		return fmt.Errorf("failed to expire quote %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

type gormProductRepository struct {
	db *gorm.DB
}

func (r *gormProductRepository) Upsert(ctx context.Context, product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.NewString()
	}
	if product.UpdatedAt.IsZero() {
		product.UpdatedAt = time.Now().UTC()
	}
	err := db.WithRetries(func() error {
		return r.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "source"}, {Name: "reference"}},
			DoUpdates: clause.AssignmentColumns([]string{"name", "category", "purchase_price_ht", "selling_price_ht", "updated_at"}),
		}).Create(product).Error
	}, db.DefaultMaxRetries, db.IsPostgresDuplicateKeyError)
	if err != nil {
		return fmt.Errorf("failed to upsert product %s/%s: %w", product.Source, product.Reference, err)
	}
	return nil
}

type gormEmailTemplateRepository struct {
	db *gorm.DB
}

func (r *gormEmailTemplateRepository) FindByTemplateID(ctx context.Context, templateID string) (*models.EmailTemplate, error) {
	return first[models.EmailTemplate](ctx, r.db, "template_id = ?", templateID)
}
