package database

import (
	"context"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const VehicleLocationsCollection = "vehicle_locations"

func createIndexes() {
	createVehicleLocationsIndexes()
}

func createVehicleLocationsIndexes() {
	locationsCollection := GetCollection(VehicleLocationsCollection)
	locationsIndex := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "deviceid", Value: 1}, {Key: "timestamp", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "location", Value: "2dsphere"}},
		},
	}

	opts := options.CreateIndexes()
	_, err := locationsCollection.Indexes().CreateMany(context.Background(), locationsIndex, opts)
	if err != nil {
		log.Error().Err(err).Msg("Creating Index")
	}
}
