package services

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/lightmyfireadmin/plombipro-app/internal/email"
	"github.com/lightmyfireadmin/plombipro-app/internal/models"
	"github.com/lightmyfireadmin/plombipro-app/internal/payments"
	"github.com/lightmyfireadmin/plombipro-app/internal/scraper"
)

type mockProfileRepository struct {
	mock.Mock
}

func (m *mockProfileRepository) FindByID(ctx context.Context, id string) (*models.Profile, error) {
	args := m.Called(ctx, id)
	if p := args.Get(0); p != nil {
		return p.(*models.Profile), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockProfileRepository) SetStripeConnectID(ctx context.Context, id, accountID string) error {
	return m.Called(ctx, id, accountID).Error(0)
}

type mockInvoiceRepository struct {
	mock.Mock
}

func (m *mockInvoiceRepository) FindByID(ctx context.Context, id string) (*models.Invoice, error) {
	args := m.Called(ctx, id)
	if inv := args.Get(0); inv != nil {
		return inv.(*models.Invoice), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockInvoiceRepository) MarkElectronic(ctx context.Context, id, xmlURL string) error {
	return m.Called(ctx, id, xmlURL).Error(0)
}

func (m *mockInvoiceRepository) FindOverdue(ctx context.Context, today string) ([]models.Invoice, error) {
	args := m.Called(ctx, today)
	return args.Get(0).([]models.Invoice), args.Error(1)
}

func (m *mockInvoiceRepository) RecordReminder(ctx context.Context, id, sentOn string) error {
	return m.Called(ctx, id, sentOn).Error(0)
}

func (m *mockInvoiceRepository) SetChorusProStatus(ctx context.Context, id, status string, submittedAt *time.Time) error {
	return m.Called(ctx, id, status, submittedAt).Error(0)
}

type mockQuoteRepository struct {
	mock.Mock
}

func (m *mockQuoteRepository) FindExpired(ctx context.Context, today string) ([]models.Quote, error) {
	args := m.Called(ctx, today)
	return args.Get(0).([]models.Quote), args.Error(1)
}

func (m *mockQuoteRepository) MarkExpired(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockProductRepository struct {
	mock.Mock
}

func (m *mockProductRepository) Upsert(ctx context.Context, product *models.Product) error {
	return m.Called(ctx, product).Error(0)
}

type mockEmailTemplateRepository struct {
	mock.Mock
}

func (m *mockEmailTemplateRepository) FindByTemplateID(ctx context.Context, templateID string) (*models.EmailTemplate, error) {
	args := m.Called(ctx, templateID)
	if tpl := args.Get(0); tpl != nil {
		return tpl.(*models.EmailTemplate), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockObjectStorage struct {
	mock.Mock
	publicBase string
}

func (m *mockObjectStorage) Put(ctx context.Context, key string, body []byte, contentType string) error {
	return m.Called(ctx, key, body, contentType).Error(0)
}

func (m *mockObjectStorage) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	if b := args.Get(0); b != nil {
		return b.([]byte), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockObjectStorage) PublicURL(key string) string {
	return m.publicBase + "/documents/" + key
}

func (m *mockObjectStorage) KeyFromPublicURL(publicURL string) (string, bool) {
	prefix := m.publicBase + "/documents/"
	if m.publicBase == "" || len(publicURL) <= len(prefix) || publicURL[:len(prefix)] != prefix {
		return "", false
	}
	return publicURL[len(prefix):], true
}

type mockSender struct {
	mock.Mock
}

func (m *mockSender) Send(ctx context.Context, msg *email.Message) (string, error) {
	args := m.Called(ctx, msg)
	return args.String(0), args.Error(1)
}

type mockTemplateService struct {
	mock.Mock
}

func (m *mockTemplateService) Render(ctx context.Context, templateID string, data map[string]interface{}) (*RenderedEmail, error) {
	args := m.Called(ctx, templateID, data)
	if r := args.Get(0); r != nil {
		return r.(*RenderedEmail), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockPaymentGateway struct {
	mock.Mock
}

func (m *mockPaymentGateway) CreatePaymentIntent(ctx context.Context, req payments.PaymentIntentRequest) (*payments.PaymentIntent, error) {
	args := m.Called(ctx, req)
	if pi := args.Get(0); pi != nil {
		return pi.(*payments.PaymentIntent), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockPaymentGateway) CreateConnectAccount(ctx context.Context, country string) (string, error) {
	args := m.Called(ctx, country)
	return args.String(0), args.Error(1)
}

func (m *mockPaymentGateway) CreateAccountLink(ctx context.Context, accountID, refreshURL, returnURL string) (string, error) {
	args := m.Called(ctx, accountID, refreshURL, returnURL)
	return args.String(0), args.Error(1)
}

func (m *mockPaymentGateway) Refund(ctx context.Context, paymentIntentID string) (string, error) {
	args := m.Called(ctx, paymentIntentID)
	return args.String(0), args.Error(1)
}

type mockOCRProvider struct {
	mock.Mock
}

func (m *mockOCRProvider) ExtractText(ctx context.Context, data []byte, mimeType string) (string, error) {
	args := m.Called(ctx, data, mimeType)
	return args.String(0), args.Error(1)
}

type mockChorusClient struct {
	mock.Mock
}

func (m *mockChorusClient) Submit(ctx context.Context, xmlContent []byte) (string, error) {
	args := m.Called(ctx, xmlContent)
	return args.String(0), args.Error(1)
}

type mockEmailEnqueuer struct {
	mock.Mock
}

func (m *mockEmailEnqueuer) EnqueueEmail(ctx context.Context, in *SendEmailInput) error {
	return m.Called(ctx, in).Error(0)
}

type mockCatalogScraper struct {
	mock.Mock
}

func (m *mockCatalogScraper) ScrapeSite(ctx context.Context, site scraper.Site) ([]models.Product, error) {
	args := m.Called(ctx, site)
	if p := args.Get(0); p != nil {
		return p.([]models.Product), args.Error(1)
	}
	return nil, args.Error(1)
}
