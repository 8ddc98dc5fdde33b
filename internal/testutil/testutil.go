package testutil

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gorm.io/gorm"

	"github.com/lightmyfireadmin/plombipro-app/internal/db"
)

var loadOnce sync.Once

// loadTestEnv loads the .env file from the project root (2 levels up from this file)
func loadTestEnv() {
	loadOnce.Do(func() {
		_, filename, _, _ := runtime.Caller(0)
		projectRoot := filepath.Join(filepath.Dir(filename), "..", "..")
		if err := godotenv.Load(filepath.Join(projectRoot, ".env")); err != nil {
			// Try current directory as fallback
			godotenv.Load()
		}
	})
}

// GetTestMongoURI returns MONGO_URI_TEST, or an empty string when the
// store tests should be skipped.
func GetTestMongoURI() string {
	loadTestEnv()
	return os.Getenv("MONGO_URI_TEST")
}

// GetTestPostgresDSN returns POSTGRES_DSN_TEST, or an empty string.
func GetTestPostgresDSN() string {
	loadTestEnv()
	return os.Getenv("POSTGRES_DSN_TEST")
}

// SetupTestDB connects to a throwaway MongoDB database and drops the given
// collections. The database is dropped when the test ends.
func SetupTestDB(t *testing.T, collections ...string) *mongo.Database {
	t.Helper()
	uri := GetTestMongoURI()
	if uri == "" {
		t.Skip("MONGO_URI_TEST not set")
	}

	client, err := mongo.Connect(context.Background(), options.Client().ApplyURI(uri))
	require.NoError(t, err, "Failed to connect to MongoDB")
	t.Cleanup(func() { _ = client.Disconnect(context.Background()) })

	database := client.Database("plombipro_test_" + uuid.NewString()[:8])
	for _, collection := range collections {
		_ = database.Collection(collection).Drop(context.Background())
	}
	t.Cleanup(func() { _ = database.Drop(context.Background()) })
	return database
}

// SetupTestPostgres opens a migrated gorm handle and truncates the given
// tables before and after the test.
func SetupTestPostgres(t *testing.T, tables ...string) *gorm.DB {
	t.Helper()
	dsn := GetTestPostgresDSN()
	if dsn == "" {
		t.Skip("POSTGRES_DSN_TEST not set")
	}

	gdb, err := db.ConnectPostgres(dsn, true)
	require.NoError(t, err, "Failed to connect to Postgres")

	truncate := func() {
		for _, table := range tables {
			gdb.Exec("TRUNCATE TABLE " + table)
		}
	}
	truncate()
	t.Cleanup(func() {
		truncate()
		_ = db.DisconnectPostgres(gdb)
	})
	return gdb
}
