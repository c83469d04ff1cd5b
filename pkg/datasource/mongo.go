package datasource

import (
	"context"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/travigo/fleettrack/pkg/ctdf"
	"github.com/travigo/fleettrack/pkg/database"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// VehicleLocation is a document of the vehicle_locations collection, written by
// the ingest side and only ever read here
type VehicleLocation struct {
	DeviceID  string        `bson:"deviceid"`
	Location  ctdf.Location `bson:"location"`
	Speed     float64       `bson:"speed"`
	Timestamp time.Time     `bson:"timestamp"`
}

func (v VehicleLocation) TrackRecord() (ctdf.TrackRecord, bool) {
	point, err := v.Location.Point()
	if err != nil {
		return ctdf.TrackRecord{}, false
	}

	return ctdf.TrackRecord{
		DeviceID:  ctdf.RawValue(v.DeviceID),
		Latitude:  ctdf.RawValue(strconv.FormatFloat(point.Latitude, 'f', -1, 64)),
		Longitude: ctdf.RawValue(strconv.FormatFloat(point.Longitude, 'f', -1, 64)),
		Speed:     ctdf.RawValue(strconv.FormatFloat(v.Speed, 'f', -1, 64)),
		Timestamp: ctdf.RawValue(v.Timestamp.UTC().Format(time.RFC3339)),
	}, true
}

type MongoTrackSource struct {
	Collection *mongo.Collection
}

func NewMongoTrackSource() *MongoTrackSource {
	return &MongoTrackSource{
		Collection: database.GetCollection(database.VehicleLocationsCollection),
	}
}

func (m *MongoTrackSource) FetchTrack(ctx context.Context, deviceID string, window ctdf.TimeWindow) ([]ctdf.TrackRecord, error) {
	cursor, err := m.Collection.Find(ctx, TrackQuery(deviceID, window), options.Find().SetSort(bson.D{{Key: "timestamp", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	records := []ctdf.TrackRecord{}
	for cursor.Next(ctx) {
		var location VehicleLocation
		if err := cursor.Decode(&location); err != nil {
			log.Error().Err(err).Str("device", deviceID).Msg("Failed to decode vehicle location")
			continue
		}

		if record, ok := location.TrackRecord(); ok {
			records = append(records, record)
		}
	}

	return records, cursor.Err()
}

func TrackQuery(deviceID string, window ctdf.TimeWindow) bson.M {
	query := bson.M{"deviceid": deviceID}

	timeQuery := bson.M{}
	if window.From != nil {
		timeQuery["$gte"] = *window.From
	}
	if window.To != nil {
		timeQuery["$lte"] = *window.To
	}
	if len(timeQuery) > 0 {
		query["timestamp"] = timeQuery
	}

	return query
}
