package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lightmyfireadmin/plombipro-app/internal/db"
	"github.com/lightmyfireadmin/plombipro-app/internal/models"
)

const (
	profilesCollection       = "profiles"
	invoicesCollection       = "invoices"
	quotesCollection         = "quotes"
	productsCollection       = "products"
	emailTemplatesCollection = "email_templates"
)

// NewMongoRepositories wires the MongoDB backend.
func NewMongoRepositories(database *mongo.Database) *Repositories {
	return &Repositories{
		Profiles:       &mongoProfileRepository{coll: database.Collection(profilesCollection)},
		Invoices:       &mongoInvoiceRepository{coll: database.Collection(invoicesCollection)},
		Quotes:         &mongoQuoteRepository{coll: database.Collection(quotesCollection)},
		Products:       &mongoProductRepository{coll: database.Collection(productsCollection)},
		EmailTemplates: &mongoEmailTemplateRepository{coll: database.Collection(emailTemplatesCollection)},
	}
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, filter bson.M) (*T, error) {
	var out T
	if err := coll.FindOne(ctx, filter).Decode(&out); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to find %s: %w", coll.Name(), err)
	}
	return &out, nil
}

func updateByID(ctx context.Context, coll *mongo.Collection, id string, update bson.M) error {
	res, err := coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to update %s %s: %w", coll.Name(), id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

type mongoProfileRepository struct {
	coll *mongo.Collection
}

func (r *mongoProfileRepository) FindByID(ctx context.Context, id string) (*models.Profile, error) {
	return findOne[models.Profile](ctx, r.coll, bson.M{"_id": id})
}

func (r *mongoProfileRepository) SetStripeConnectID(ctx context.Context, id, accountID string) error {
	return updateByID(ctx, r.coll, id, bson.M{"$set": bson.M{"stripe_connect_id": accountID}})
}

type mongoInvoiceRepository struct {
	coll *mongo.Collection
}

func (r *mongoInvoiceRepository) FindByID(ctx context.Context, id string) (*models.Invoice, error) {
	return findOne[models.Invoice](ctx, r.coll, bson.M{"_id": id})
}

func (r *mongoInvoiceRepository) MarkElectronic(ctx context.Context, id, xmlURL string) error {
	return updateByID(ctx, r.coll, id, bson.M{"$set": bson.M{"xml_url": xmlURL, "is_electronic": true}})
}

func (r *mongoInvoiceRepository) FindOverdue(ctx context.Context, today string) ([]models.Invoice, error) {
	filter := bson.M{
		"due_date":       bson.M{"$lt": today},
		"payment_status": bson.M{"$ne": models.PaymentStatusPaid},
	}
	cursor, err := r.coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "due_date", Value: 1}}))
	if err != nil {
		return nil, fmt.Errorf("failed to query overdue invoices: %w", err)
	}
	var invoices []models.Invoice
	if err := cursor.All(ctx, &invoices); err != nil {
		return nil, fmt.Errorf("failed to decode overdue invoices: %w", err)
	}
	return invoices, nil
}

func (r *mongoInvoiceRepository) RecordReminder(ctx context.Context, id, sentOn string) error {
	return updateByID(ctx, r.coll, id, bson.M{
		"$set": bson.M{"last_reminder_sent": sentOn},
		"$inc": bson.M{"reminder_sent_count": 1},
	})
}

func (r *mongoInvoiceRepository) SetChorusProStatus(ctx context.Context, id, status string, submittedAt *time.Time) error {
	set := bson.M{"chorus_pro_status": status}
	if submittedAt != nil {
		set["chorus_pro_submitted_at"] = submittedAt.UTC()
	}
	return updateByID(ctx, r.coll, id, bson.M{"$set": set})
}

type mongoQuoteRepository struct {
	coll *mongo.Collection
}

func (r *mongoQuoteRepository) FindExpired(ctx context.Context, today string) ([]models.Quote, error) {
	cursor, err := r.coll.Find(ctx, bson.M{
		"expiry_date": bson.M{"$lt": today},
		"status":      models.QuoteStatusSent,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to query expired quotes: %w", err)
	}
	var quotes []models.Quote
	if err := cursor.All(ctx, &quotes); err != nil {
		return nil, fmt.Errorf("failed to decode expired quotes: %w", err)
	}
	return quotes, nil
}

func (r *mongoQuoteRepository) MarkExpired(ctx context.Context, id string) error {
	res, err := r.coll.UpdateOne(ctx,
		bson.M{"_id": id, "status": models.QuoteStatusSent},
		bson.M{"$set": bson.M{"status": models.QuoteStatusExpired}},
	)
	if err != nil {
		return fmt.Errorf("failed to expire quote %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

type mongoProductRepository struct {
	coll *mongo.Collection
}

func (r *mongoProductRepository) Upsert(ctx context.Context, product *models.Product) error {
	if product.UpdatedAt.IsZero() {
		product.UpdatedAt = time.Now().UTC()
	}
	filter := bson.M{"source": product.Source, "reference": product.Reference}
	update := bson.M{
		"$set": bson.M{
			"name":              product.Name,
			"category":          product.Category,
			"purchase_price_ht": product.PurchasePriceHT,
			"selling_price_ht":  product.SellingPriceHT,
			"updated_at":        product.UpdatedAt,
		},
		"$setOnInsert": bson.M{"_id": uuid.NewString()},
	}
	return db.Try(func() error {
		_, err := r.coll.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
		if err != nil {
			return fmt.Errorf("failed to upsert product %s/%s: %w", product.Source, product.Reference, err)
		}
		return nil
	})
}

type mongoEmailTemplateRepository struct {
	coll *mongo.Collection
}

func (r *mongoEmailTemplateRepository) FindByTemplateID(ctx context.Context, templateID string) (*models.EmailTemplate, error) {
	return findOne[models.EmailTemplate](ctx, r.coll, bson.M{"template_id": templateID})
}
