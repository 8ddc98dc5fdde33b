package handlers_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/lightmyfireadmin/plombipro-app/internal/facturx"
	"github.com/lightmyfireadmin/plombipro-app/internal/invoiceparse"
	"github.com/lightmyfireadmin/plombipro-app/internal/payments"
	"github.com/lightmyfireadmin/plombipro-app/internal/services"
)

// --- Mocks ---

// MockPaymentService implements services.IPaymentService
type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) CreatePaymentIntent(ctx context.Context, userID string, in *services.CreatePaymentIntentInput) (*payments.PaymentIntent, error) {
	args := m.Called(ctx, userID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payments.PaymentIntent), args.Error(1)
}

func (m *MockPaymentService) CreateConnectAccount(ctx context.Context, in *services.ConnectAccountInput) (string, error) {
	args := m.Called(ctx, in)
	return args.String(0), args.Error(1)
}

func (m *MockPaymentService) Refund(ctx context.Context, paymentIntentID string) (string, error) {
	args := m.Called(ctx, paymentIntentID)
	return args.String(0), args.Error(1)
}

// MockEmailService implements services.IEmailService
type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) Send(ctx context.Context, in *services.SendEmailInput) (string, error) {
	args := m.Called(ctx, in)
	return args.String(0), args.Error(1)
}

// MockOCRService implements services.IOCRService
type MockOCRService struct {
	mock.Mock
}

func (m *MockOCRService) ProcessInvoice(ctx context.Context, imageBase64 string) (*invoiceparse.Record, error) {
	args := m.Called(ctx, imageBase64)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*invoiceparse.Record), args.Error(1)
}

// MockFacturXService implements services.IFacturXService
type MockFacturXService struct {
	mock.Mock
}

func (m *MockFacturXService) Generate(ctx context.Context, inv *facturx.Invoice, company *facturx.Company) (*services.FacturXResult, error) {
	args := m.Called(ctx, inv, company)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.FacturXResult), args.Error(1)
}

// MockChorusProService implements services.IChorusProService
type MockChorusProService struct {
	mock.Mock
}

func (m *MockChorusProService) Submit(ctx context.Context, invoiceID string) (string, error) {
	args := m.Called(ctx, invoiceID)
	return args.String(0), args.Error(1)
}
