package database

import (
	"context"
	"time"

	"github.com/travigo/fleettrack/pkg/util"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoInstance struct {
	Client   *mongo.Client
	Database *mongo.Database
}

var MongoGlobalInstance *MongoInstance

const defaultMongoConnectionString = "mongodb://localhost:27017/"
const defaultMongoDatabase = "fleettrack"

func Connect() error {
	connectionString := defaultMongoConnectionString
	dbName := defaultMongoDatabase

	env := util.GetEnvironmentVariables()

	if env["FLEETTRACK_MONGODB_CONNECTION"] != "" {
		connectionString = env["FLEETTRACK_MONGODB_CONNECTION"]
	}

	if env["FLEETTRACK_MONGODB_DATABASE"] != "" {
		dbName = env["FLEETTRACK_MONGODB_DATABASE"]
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(connectionString))
	if err != nil {
		return err
	}

	MongoGlobalInstance = &MongoInstance{
		Client:   client,
		Database: client.Database(dbName),
	}

	err = client.Ping(ctx, nil)
	if err != nil {
		return err
	}

	// The locations collection belongs to the ingest side, only touch its indexes when asked
	if env["FLEETTRACK_MONGODB_CREATE_INDEXES"] == "YES" {
		createIndexes()
	}

	return nil
}

func GetCollection(collectionName string) *mongo.Collection {
	return MongoGlobalInstance.Database.Collection(collectionName)
}
