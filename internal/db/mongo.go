package db

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// ConnectMongo initializes and returns a MongoDB client and database instance.
func ConnectMongo(uri, dbName string) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	ctxPing, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelPing()
	if err := client.Ping(ctxPing, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	database := client.Database(dbName)
	if err := ensureMongoIndexes(ctxPing, database); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, err
	}

	log.Println("Successfully connected to MongoDB!")
	return client, database, nil
}

// ensureMongoIndexes creates the unique keys the repositories rely on.
func ensureMongoIndexes(ctx context.Context, database *mongo.Database) error {
	indexes := map[string]mongo.IndexModel{
		"products": {
			Keys:    bson.D{{Key: "source", Value: 1}, {Key: "reference", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		"email_templates": {
			Keys:    bson.D{{Key: "template_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		"invoices": {
			Keys: bson.D{{Key: "due_date", Value: 1}, {Key: "payment_status", Value: 1}},
		},
	}
	for coll, model := range indexes {
		if _, err := database.Collection(coll).Indexes().CreateOne(ctx, model); err != nil {
			return fmt.Errorf("failed to create index on %s: %w", coll, err)
		}
	}
	return nil
}

// DisconnectMongo closes the MongoDB client connection.
func DisconnectMongo(client *mongo.Client) error {
	if client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect MongoDB: %w", err)
	}
	log.Println("MongoDB connection closed.")
	return nil
}
