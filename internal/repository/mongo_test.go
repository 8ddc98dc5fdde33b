package repository

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lightmyfireadmin/plombipro-app/internal/models"
	"github.com/lightmyfireadmin/plombipro-app/internal/testutil"
)

func TestMongoInvoiceRepository_OverdueAndReminders(t *testing.T) {
	database := testutil.SetupTestDB(t, invoicesCollection)
	repos := NewMongoRepositories(database)
	ctx := context.Background()

	_, err := database.Collection(invoicesCollection).InsertMany(ctx, []interface{}{
		models.Invoice{ID: "a", Number: "F-1", DueDate: "2024-01-10", PaymentStatus: "unpaid"},
		models.Invoice{ID: "b", Number: "F-2", DueDate: "2024-01-10", PaymentStatus: models.PaymentStatusPaid},
		models.Invoice{ID: "c", Number: "F-3", DueDate: "2024-02-10", PaymentStatus: "unpaid"},
	})
	require.NoError(t, err)

	overdue, err := repos.Invoices.FindOverdue(ctx, "2024-02-01")
	require.NoError(t, err)
	require.Len(t, overdue, 1)
	assert.Equal(t, "a", overdue[0].ID)

	require.NoError(t, repos.Invoices.RecordReminder(ctx, "a", "2024-02-01"))
	require.NoError(t, repos.Invoices.RecordReminder(ctx, "a", "2024-02-09"))
	inv, err := repos.Invoices.FindByID(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 2, inv.ReminderSentCount)
	assert.Equal(t, "2024-02-09", inv.LastReminderSent)

	require.NoError(t, repos.Invoices.MarkElectronic(ctx, "c", "https://cdn/documents/factur-x/F-3.xml"))
	inv, err = repos.Invoices.FindByID(ctx, "c")
	require.NoError(t, err)
	assert.True(t, inv.IsElectronic)
	assert.Equal(t, "https://cdn/documents/factur-x/F-3.xml", inv.XMLURL)

	assert.ErrorIs(t, repos.Invoices.MarkElectronic(ctx, "missing", "x"), ErrNotFound)
	_, err = repos.Invoices.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMongoQuoteRepository_ExpiresOnlySentQuotes(t *testing.T) {
	database := testutil.SetupTestDB(t, quotesCollection)
	repos := NewMongoRepositories(database)
	ctx := context.Background()

	_, err := database.Collection(quotesCollection).InsertMany(ctx, []interface{}{
		models.Quote{ID: "q1", ExpiryDate: "2024-01-01", Status: models.QuoteStatusSent},
		models.Quote{ID: "q2", ExpiryDate: "2024-01-01", Status: "accepted"},
		models.Quote{ID: "q3", ExpiryDate: "2030-01-01", Status: models.QuoteStatusSent},
	})
	require.NoError(t, err)

	expired, err := repos.Quotes.FindExpired(ctx, "2024-06-01")
	require.NoError(t, err)
	require.Len(t, expired, 1)
	assert.Equal(t, "q1", expired[0].ID)

	require.NoError(t, repos.Quotes.MarkExpired(ctx, "q1"))
	assert.ErrorIs(t, repos.Quotes.MarkExpired(ctx, "q1"), ErrNotFound)
}

func TestMongoProductRepository_Upsert(t *testing.T) {
	database := testutil.SetupTestDB(t, productsCollection)
	repos := NewMongoRepositories(database)
	ctx := context.Background()

	require.NoError(t, repos.Products.Upsert(ctx, &models.Product{Source: models.ProductSourcePointP, Reference: "R1", Name: "Coude", SellingPriceHT: 2.5}))
	require.NoError(t, repos.Products.Upsert(ctx, &models.Product{Source: models.ProductSourcePointP, Reference: "R1", Name: "Coude 90", SellingPriceHT: 2.75}))

	count, err := database.Collection(productsCollection).CountDocuments(ctx, map[string]interface{}{"reference": "R1"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
