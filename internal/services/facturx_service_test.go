package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lightmyfireadmin/plombipro-app/internal/facturx"
)

func facturXFixture() (*facturx.Invoice, *facturx.Company) {
	total := decimal.RequireFromString("120")
	ht := decimal.RequireFromString("100")
	tva := decimal.RequireFromString("20")
	return &facturx.Invoice{
			ID:         "inv-1",
			Number:     "F-2024-001",
			Date:       "2024-03-12",
			ClientName: "Mme Durand",
			Items:      []facturx.LineItem{{Description: "Pose", UnitPrice: ht, Quantity: 1}},
			TotalHT:    &ht,
			TotalTVA:   &tva,
			TotalTTC:   &total,
		},
		&facturx.Company{CompanyName: "Plomberie Martin", Siret: "12345678900012"}
}

func TestFacturXService_Generate(t *testing.T) {
	store := &mockObjectStorage{publicBase: "https://x.supabase.co/storage/v1/object/public"}
	invoices := new(mockInvoiceRepository)
	wantURL := "https://x.supabase.co/storage/v1/object/public/documents/factur-x/F-2024-001.xml"

	store.On("Put", mock.Anything, "factur-x/F-2024-001.xml", mock.Anything, "application/xml;charset=utf-8").Return(nil)
	invoices.On("MarkElectronic", mock.Anything, "inv-1", wantURL).Return(nil)

	inv, company := facturXFixture()
	res, err := NewFacturXService(store, invoices).Generate(context.Background(), inv, company)

	require.NoError(t, err)
	assert.Equal(t, wantURL, res.XMLURL)
	assert.True(t, strings.HasPrefix(res.XMLContent, "<?xml"))
	assert.Contains(t, res.XMLContent, "<ram:ID>F-2024-001</ram:ID>")

	stored := store.Calls[0].Arguments.Get(2).([]byte)
	assert.Equal(t, res.XMLContent, string(stored))
	store.AssertExpectations(t)
	invoices.AssertExpectations(t)
}

func TestFacturXService_MissingRecords(t *testing.T) {
	svc := NewFacturXService(&mockObjectStorage{}, new(mockInvoiceRepository))
	inv, company := facturXFixture()

	_, err := svc.Generate(context.Background(), nil, company)
	assert.EqualError(t, err, "Missing invoice or company data in request.")
	_, err = svc.Generate(context.Background(), inv, nil)
	assert.EqualError(t, err, "Missing invoice or company data in request.")
}

func TestFacturXService_ValidationHappensBeforeStoreWrite(t *testing.T) {
	store := &mockObjectStorage{}
	invoices := new(mockInvoiceRepository)
	inv, company := facturXFixture()
	inv.ClientName = ""

	_, err := NewFacturXService(store, invoices).Generate(context.Background(), inv, company)

	assert.EqualError(t, err, "Missing required field in invoice data: client_name")
	store.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	invoices.AssertNotCalled(t, "MarkElectronic", mock.Anything, mock.Anything, mock.Anything)
}

func TestFacturXService_UploadFailure(t *testing.T) {
	store := &mockObjectStorage{}
	invoices := new(mockInvoiceRepository)
	store.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("bucket not found"))

	inv, company := facturXFixture()
	_, err := NewFacturXService(store, invoices).Generate(context.Background(), inv, company)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket not found")
	invoices.AssertNotCalled(t, "MarkElectronic", mock.Anything, mock.Anything, mock.Anything)
}

func TestFacturXService_RowUpdateFailureKeepsDocument(t *testing.T) {
	store := &mockObjectStorage{publicBase: "https://cdn"}
	invoices := new(mockInvoiceRepository)
	store.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	invoices.On("MarkElectronic", mock.Anything, "inv-1", mock.Anything).Return(errors.New("permission denied"))

	inv, company := facturXFixture()
	_, err := NewFacturXService(store, invoices).Generate(context.Background(), inv, company)

	require.Error(t, err)
	assert.Equal(t, "Failed to update invoice with XML URL: permission denied", err.Error())
	store.AssertNumberOfCalls(t, "Put", 1)
}

func TestFacturXService_RegenerateOverwritesSameKey(t *testing.T) {
	store := &mockObjectStorage{publicBase: "https://x.supabase.co/storage/v1/object/public"}
	invoices := new(mockInvoiceRepository)
	wantURL := "https://x.supabase.co/storage/v1/object/public/documents/factur-x/F-2024-001.xml"

	store.On("Put", mock.Anything, "factur-x/F-2024-001.xml", mock.Anything, "application/xml;charset=utf-8").Return(nil).Twice()
	invoices.On("MarkElectronic", mock.Anything, "inv-1", wantURL).Return(nil).Twice()
	svc := NewFacturXService(store, invoices)

	inv, company := facturXFixture()
	first, err := svc.Generate(context.Background(), inv, company)
	require.NoError(t, err)

	inv.ClientName = "M. Leroy"
	second, err := svc.Generate(context.Background(), inv, company)
	require.NoError(t, err)

	assert.Equal(t, first.XMLURL, second.XMLURL)
	require.Len(t, store.Calls, 2)
	for _, call := range store.Calls {
		assert.Equal(t, "factur-x/F-2024-001.xml", call.Arguments.String(1))
	}
	assert.NotContains(t, string(store.Calls[0].Arguments.Get(2).([]byte)), "M. Leroy")
	assert.Contains(t, string(store.Calls[1].Arguments.Get(2).([]byte)), "<ram:Name>M. Leroy</ram:Name>")
	store.AssertExpectations(t)
	invoices.AssertExpectations(t)
}
